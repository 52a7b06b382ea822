package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/warehouse-twin/warehouse-twin/sim"
)

// validateCmd checks a configuration file without building anything.
var validateCmd = &cobra.Command{
	Use:   "validate <config.yaml>",
	Short: "Validate a configuration file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := validateConfigFile(args[0]); err != nil {
			logrus.Fatalf("%v", err)
		}
		fmt.Printf("%s: OK\n", args[0])
	},
}

// defaultsCmd prints the built-in configuration as YAML.
var defaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Print the built-in configuration",
	Run: func(cmd *cobra.Command, args []string) {
		out, err := renderDefaults()
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		fmt.Print(out)
	},
}

func validateConfigFile(path string) error {
	cfg, err := sim.LoadConfig(path)
	if err != nil {
		return err
	}
	return cfg.Validate()
}

func renderDefaults() (string, error) {
	data, err := yaml.Marshal(sim.DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("render defaults: %w", err)
	}
	return string(data), nil
}

// Package sim provides the core of the warehouse digital twin.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - session.go: the unit of work every row passes through (Add, Flush, Commit, Rollback)
//   - engine.go: the day-by-day tick loop and its commit schedule
//   - rng.go: the single seeded random stream and its checkpoints
//
// # Architecture
//
// The sim package defines the data model, configuration and interfaces;
// implementations live in sub-packages:
//   - sim/world/: seeded construction of the catalog, infrastructure, logistics and opening stock
//   - sim/process/: the daily processors (Inbound, Outbound, Replenishment, Sensor)
//   - sim/twin/: the two-phase runner with replay on persistence failures
//   - sim/memstore/, sim/pgstore/: Backend implementations (in-memory, PostgreSQL)
//   - sim/trace/: decision trace recording
//
// # Key Interfaces
//
//   - Processor: mutates state for one simulated day through the Session
//   - Backend: durable storage behind a Session (Begin, Write, Commit, Rollback)
//
// World is a read-only snapshot of the committed master data; processors
// never write through it.
package sim

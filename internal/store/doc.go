// Package store provides the optional SQLite kind index of typetrace runs.
//
// The index is append-only:
//   - runs: one row per run (UUIDv7 id, input, output, mode, counters, status)
//   - types: one row per normalized record (run, output position, id, kind, name, JSON)
//
// # Ordering
//
// Every query that returns rows orders them explicitly (seq ASC for types,
// count DESC then kind ASC for kind counts), so output is stable across runs.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store

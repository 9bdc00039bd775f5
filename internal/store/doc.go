// Package store provides SQLite-backed storage for suiql.
//
// Two tables live in one database file:
//   - rpc_cache: responses of immutable RPC methods (checkpoints and
//     transaction blocks), keyed by a hash of endpoint, method and params
//   - query_history: one record per executed script
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: 5-second wait on lock contention
//   - Single connection: SQLite allows one writer at a time
//
// The schema is versioned through PRAGMA user_version and migrated on Open.
package store

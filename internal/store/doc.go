// Package store provides SQLite-backed run history for bfjit.
//
// Each executed program can be recorded as one row in the runs table: the
// source path, the program's content hash, instruction counts, execution
// stats and the outcome. Compiled programs themselves are never stored.
//
// # Ordering
//
// Rows are ordered by seq, a logical counter assigned as MAX(seq)+1 inside
// the insert transaction. There are no wall-clock timestamps; listing order
// is ORDER BY seq DESC, id COLLATE BINARY ASC. Filtered listings are
// queryir queries compiled by querysql.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait up to 5s for locks
//   - Single open connection: one writer at a time
//   - Schema embedded from schema.sql, migrations tracked in user_version
package store

// Package queryir provides a small query representation for run history.
//
// A Select names the rows of the runs table to return: an optional filter
// predicate and a row limit. Queries are plain values built by callers
// (the history command builds one from its flags) and compiled to SQL by
// package querysql. Keeping the representation separate from SQL lets the
// CLI and tests construct and validate filters without a database.
//
//	[history flags] -> [queryir.Select] -> [querysql] -> [store]
//
// # Sealed Interfaces
//
// Predicate is sealed with a marker method; only types in this package
// implement it, so backend compilers can switch exhaustively.
//
// # Fields
//
// Predicates reference run columns through Field. Text fields compare
// with Equals; count fields compare with AtLeast. Validate rejects any
// other combination before a query reaches SQL.
package queryir

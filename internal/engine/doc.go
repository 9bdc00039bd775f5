// Package engine executes compiled suiql expressions against Sui fullnodes.
//
// Execution model:
//
// Each ir.Get is dispatched on its entity to a resolver. A resolver fans out
// over the selected chains and, within each chain, over the resolved ids.
// Both levels run in bounded errgroups; the first failure cancels the
// siblings and fails the expression.
//
// Ordering:
// Per-task outputs land in slots indexed by (chain, id) and are concatenated
// at the end, so rows are always in chain-selector order, then id order.
// Network completion order never shows up in the result.
//
// Filters:
// Fields referenced by WHERE filters are fetched even when not selected.
// A row is kept only if it satisfies every filter; afterwards its columns
// are cleared back to the SELECT list.
//
// Dumps:
// A dump clause writes the expression's result to a file after it resolves.
// A dump failure is logged and never fails the query.
package engine

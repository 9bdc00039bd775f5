// Package harness provides conformance testing for suiql queries.
//
// A scenario describes the state of one or more fake fullnodes and a list
// of query steps with expectations. The harness drives the real engine
// against in-memory nodes, so every step exercises the compiler, the
// resolvers and the projection exactly as a live run would.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: checkpoint_range
//	description: "Range reads keep order and projection"
//	chains:
//	  mainnet:
//	    latest: 101
//	    checkpoints:
//	      - seq: 100
//	        transactions: [1, 2]
//	      - seq: 101
//	    transactions:
//	      - digest: 1
//	        checkpoint: 100
//	        sender: 7
//	    balances:
//	      - owner: 7
//	        coin_type: "0x2::sui::SUI"
//	        total: 1000
//	    names:
//	      alice.sui: 7
//	steps:
//	  - query: "SELECT number FROM checkpoint 100:101 ON mainnet"
//	    expect:
//	      rows: 2
//	  - query: "SELECT sui_balance FROM account {{addr 7}} ON mainnet"
//	    expect:
//	      contains:
//	        - sui_balance: "1000"
//	  - query: "SELECT * FROM checkpoint 7 ON mainnet"
//	    expect:
//	      error: NOT_FOUND
//
// Fixture identifiers are single bytes: address 7 is 0x0707...07, digest 1
// is the digest whose 32 bytes are all 1, and object 5 is 0x00...05. Query
// text and contains cells are text/templates with addr, digest and object
// functions that render those identifiers.
//
// # Expectations
//
//   - error: the step's first failing expression has this error code.
//     Later failures in the same step are not checked.
//   - rows: total row count over every successful expression.
//   - contains: each listed row (column → rendered cell) appears in some
//     result of the step. Subset match; unlisted columns are ignored.
//
// # Golden Files
//
// RunWithGolden renders every step's outcomes as text and compares them to
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness

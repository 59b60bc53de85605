// Package harness runs scenario files through the engine.
//
// A scenario is a YAML list of insert/delete steps, each optionally
// carrying the view expected after it is applied:
//
//	name: walkthrough
//	description: Threshold grows with each positive balance
//	steps:
//	  - op: insert
//	    customer: {custkey: 1, nationkey: 5, acctbal: 100}
//	    expect:
//	      view: {5: 0}
//
// Scenario files are validated against an embedded CUE schema before they
// are decoded. Every step is also cross-checked against the SQLite oracle.
//
// Runs are deterministic: timing comes from a step clock and the run id is
// fixed, so the stats sink output can be compared against golden files.
package harness

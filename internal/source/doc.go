// Package source produces decoded events for the engine.
//
// Records arrive as TPC-H style .tbl lines: '|'-separated fields with an
// optional trailing '|'. An optional leading field of "+" or "-" marks the
// record as an insert or a delete; unmarked records are inserts.
//
//	1|Customer#000000001|IVhzIApeRb|15|25-989-741-2988|711.56|BUILDING|comment|
//	-|1|Customer#000000001|IVhzIApeRb|15|25-989-741-2988|711.56|BUILDING|comment|
//
// Every Source returns io.EOF once exhausted. Decoding failures are fatal
// and reported as *DecodeError; nothing is skipped or retried.
package source

import "github.com/roach88/naiveq22/internal/tuple"

// Source supplies events one at a time.
type Source interface {
	// Next returns the next event, or io.EOF when there are no more.
	Next() (tuple.Event, error)
}

// Package sink owns the append-only output files of a run: results, log
// and stats. Each file is buffered, flushed and closed exactly once.
package sink

// Package stats measures the engine without perturbing it.
//
// Two independent counters are kept:
//   - cumulative elapsed time per trigger handler (Recorder.Track)
//   - byte footprint estimates per structure (Footprint), sampled on demand
//
// Samples are written to the stats sink as one line each:
//
//	m,<structure-name>,<estimated-byte-size>
//	h,<handler-name>,<cumulative-seconds>
//
// The same figures are mirrored into a private Prometheus registry that can
// be exported to a text file at shutdown. Nothing in this package starts a
// goroutine or serves HTTP.
package stats

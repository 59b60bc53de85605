// Package engine maintains the Q22 view by full recomputation.
//
// ARCHITECTURE:
//
// Single-Threaded Event Loop:
// Run pulls one event from a source.Source, applies it completely, then
// pulls the next. There is no queue between the source and the handlers and
// no concurrency anywhere in the loop.
//
// Event Processing Flow:
//  1. The source decodes a record into a tuple.Event (a closed union).
//  2. The event dispatches itself onto the Engine's trigger handlers.
//  3. The handler mutates its relation store in the Database.
//  4. Insert-Customer adds the customer's nationkey to the view if absent.
//  5. Every view key is recomputed from the full contents of both stores.
//  6. A deferred guard adds the handler's elapsed time to the recorder.
//
// Every sampleEvery events, and once at shutdown, the loop writes a
// throughput record to the log sink and m/h lines to the stats sink.
//
// The engine favors a simple, reproducible reference over speed. Recompute
// cost is O(|G|·|C|·(|C|+|O|)) per event and is never optimized.
package engine

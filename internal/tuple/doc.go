// Package tuple defines the base relation schemas and the event union that
// carries mutations of those relations into the engine.
//
// All other internal packages import tuple; tuple imports nothing internal.
//
// Key design constraints:
//   - Tuples are plain comparable structs. Identity for multiplicity purposes
//     is full-field value equality, never the primary key alone.
//   - Events are a closed union decoded once at the system boundary. Each
//     event dispatches itself onto Triggers, so the core never type-switches
//     or re-casts a payload.
//   - Canonical encodings (canonical.go) are the only input to content
//     hashes (hash.go).
package tuple

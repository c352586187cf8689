// Package runner drives the frame loop: read a frame, analyze it, let the
// capture recorder decide on a snapshot, then show the annotated copy.
//
// The loop is single-threaded. It stops when the source is exhausted, the
// display reports a quit key, the frame limit is reached or the context is
// cancelled. A failed snapshot write is logged and counted, and the loop
// goes on with the next frame.
package runner

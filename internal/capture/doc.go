// Package capture decides when a frame is worth keeping and writes it.
//
// A Policy is a pure function of the current detections, the current time
// and the last State. It never touches the filesystem. A Recorder owns the
// State and a Writer, and applies a decision only after the snapshot has been
// written, so a failed write never advances the cooldown or the single-shot
// lock.
//
// # Policies
//
//   - Cooldown: at most one snapshot per interval, named
//     detectado_{target}_{YYYYMMDD_HHMMSS}.jpg
//   - SingleShot: the first frame with a detection only, named
//     print_carrinho_{unix}.jpg
//
// Snapshots are always the unannotated frame.
package capture

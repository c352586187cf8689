// Package display shows annotated frames and reports when the user wants to
// stop.
//
// Window uses an OpenCV HighGUI window and needs cgo. Headless discards
// frames and is used for batch runs and tests.
package display

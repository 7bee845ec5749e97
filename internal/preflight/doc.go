// Package preflight provides filesystem readiness checks that run before
// a generation pass.
//
// The generator calls Run before loading anything so the common failure
// modes (missing template, unwritable output directory, unreadable
// credentials directory) surface as one clear report instead of a
// mid-run abort.
package preflight

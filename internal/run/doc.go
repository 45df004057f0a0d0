// Package run allocates versioned p-NNN run directories under a base output
// location and exposes the per-run path arithmetic the stages share.
package run

// Package progress renders bounded per-stage progress indicators, either as
// an interactive tracker on a terminal or as sampled log lines.
package progress

// Package stage supervises one external-process invocation: spawning the
// tool without shell interpretation, draining stdout and stderr concurrently
// for its whole lifetime, extracting monotonic progress counters through a
// pluggable per-stage rule, and turning the exit status plus declared output
// artifact into a structured result.
package stage

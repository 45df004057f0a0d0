// Package pipeline sequences the mesh, render, and encode stages for one
// turntable run. It validates the request, allocates the versioned run
// directory, chains each stage's output into the next stage's input, and
// stops at the first failure.
package pipeline

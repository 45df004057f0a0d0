// Command turntable builds looping turntable videos from captured record
// grooves or prebuilt USDZ models. It drives the mesh reconstruction,
// Blender render, and ffmpeg encode stages in order, writing each run into
// a fresh versioned directory.
package main

// Package blender builds the headless Blender turntable invocation and
// parses its per-frame render output.
package blender

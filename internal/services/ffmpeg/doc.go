// Package ffmpeg builds the WebM encode invocation and parses ffmpeg's
// diagnostic-stream progress output.
package ffmpeg

package blender

import (
	"regexp"
	"strconv"

	"turntable/internal/run"
	"turntable/internal/stage"
)

// StageName identifies the turntable render stage.
const StageName = "render"

var framePattern = regexp.MustCompile(`Fra:(\d+)`)

// Options carries the resolved render invocation parameters.
type Options struct {
	Binary    string
	Script    string
	BaseBlend string
	ModelPath string
	Width     int
	Height    int
	// FrameCount is the last animation frame; Blender renders frames
	// 0..FrameCount inclusive and logs one Fra: line per frame.
	FrameCount int
}

// Spec builds the Blender batch invocation. The script receives its own
// arguments after the "--" separator, the Blender convention for forwarding
// argv to a --python entry point.
func Spec(r run.Run, opts Options) stage.Spec {
	args := []string{
		"--background",
		"--python", opts.Script,
		"--",
		"--usdz_path", opts.ModelPath,
		"--output_path", r.RootDir,
		"--width", strconv.Itoa(opts.Width),
		"--height", strconv.Itoa(opts.Height),
		"--base_blend", opts.BaseBlend,
	}
	return stage.Spec{
		Name:       StageName,
		Position:   2,
		Binary:     opts.Binary,
		Args:       args,
		InputPath:  opts.ModelPath,
		OutputPath: r.FramePath(opts.FrameCount),
		Total:      opts.FrameCount,
		Extract:    ExtractFrame,
	}
}

// ExtractFrame parses the frame counter from Blender's per-frame render
// lines ("Fra:12 Mem:...").
func ExtractFrame(line string) (int, bool) {
	match := framePattern.FindStringSubmatch(line)
	if match == nil {
		return 0, false
	}
	value, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return value, true
}

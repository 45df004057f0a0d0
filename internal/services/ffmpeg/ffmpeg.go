package ffmpeg

import (
	"regexp"
	"strconv"

	"turntable/internal/run"
	"turntable/internal/stage"
)

const (
	// StageName identifies the video encode stage.
	StageName = "encode"

	// Total progress units for the encode stage (percent of the sequence).
	Total = 100
)

var framePattern = regexp.MustCompile(`frame=\s*(\d+)`)

// Options carries the resolved encode invocation parameters.
type Options struct {
	Binary     string
	Framerate  int
	FrameCount int
}

// Spec builds the WebM encode invocation: libvpx with alpha preservation,
// reading the run's JPEG sequence and writing the run-scoped video artifact.
// ffmpeg reports progress on its diagnostic stream as "frame=N" updates.
func Spec(r run.Run, opts Options) stage.Spec {
	fps := strconv.Itoa(opts.Framerate)
	args := []string{
		"-y",
		"-framerate", fps,
		"-i", r.FramePattern(),
		"-c:v", "libvpx",
		"-auto-alt-ref", "0",
		"-pix_fmt", "yuva420p",
		"-metadata:s:v:0", "alpha_mode=1",
		"-crf", "4",
		"-b:v", "10M",
		"-r", fps,
		r.VideoPath(),
	}
	return stage.Spec{
		Name:       StageName,
		Position:   3,
		Binary:     opts.Binary,
		Args:       args,
		InputPath:  r.FramePath(0),
		OutputPath: r.VideoPath(),
		Total:      Total,
		Extract:    NewExtractor(opts.FrameCount),
	}
}

// NewExtractor returns an extractor that scales ffmpeg's frame counter to a
// percentage of the expected sequence length.
func NewExtractor(totalFrames int) stage.Extractor {
	return func(line string) (int, bool) {
		match := framePattern.FindStringSubmatch(line)
		if match == nil {
			return 0, false
		}
		frame, err := strconv.Atoi(match[1])
		if err != nil {
			return 0, false
		}
		if totalFrames <= 0 {
			return 0, false
		}
		percent := frame * 100 / totalFrames
		if percent > 100 {
			percent = 100
		}
		return percent, true
	}
}

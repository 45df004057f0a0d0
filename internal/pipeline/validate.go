package pipeline

import (
	"fmt"
	"os"

	"turntable/internal/run"
	"turntable/internal/services"
)

// Mode selects where the render stage gets its model from.
type Mode string

const (
	// ModeSource reconstructs a mesh from captured source data first.
	ModeSource Mode = "source"
	// ModeModel renders a user-supplied model directly.
	ModeModel Mode = "model"
)

// Request describes one pipeline invocation before validation.
type Request struct {
	SourcePath  string
	ModelPath   string
	OutputPath  string
	Preview     bool
	Final       bool
	Width       int
	Height      int
	BlenderPath string
}

// Validate checks a request without touching the output directory. It
// resolves the mode and quality, defaulting quality to preview when neither
// flag is set.
func Validate(req Request) (Mode, run.Quality, error) {
	if req.SourcePath != "" && req.ModelPath != "" {
		return "", "", services.Wrap(services.ErrValidation, "pipeline", "validate",
			"source-path and model-path are mutually exclusive", nil)
	}
	if req.SourcePath == "" && req.ModelPath == "" {
		return "", "", services.Wrap(services.ErrValidation, "pipeline", "validate",
			"one of source-path or model-path is required", nil)
	}
	if req.OutputPath == "" {
		return "", "", services.Wrap(services.ErrValidation, "pipeline", "validate",
			"output-path is required", nil)
	}
	if req.Preview && req.Final {
		return "", "", services.Wrap(services.ErrValidation, "pipeline", "validate",
			"preview and final are mutually exclusive", nil)
	}
	if req.Width <= 0 || req.Height <= 0 {
		return "", "", services.Wrap(services.ErrValidation, "pipeline", "validate",
			fmt.Sprintf("width and height must be positive (got %dx%d)", req.Width, req.Height), nil)
	}
	if req.BlenderPath != "" {
		if _, err := os.Stat(req.BlenderPath); err != nil {
			return "", "", services.Wrap(services.ErrValidation, "pipeline", "validate",
				fmt.Sprintf("blender executable %s not found", req.BlenderPath), err)
		}
	}

	mode := ModeModel
	if req.SourcePath != "" {
		mode = ModeSource
	}
	quality := run.QualityPreview
	if req.Final {
		quality = run.QualityFinal
	}
	return mode, quality, nil
}

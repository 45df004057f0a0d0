package mesher

import (
	"path/filepath"
	"regexp"
	"strconv"

	"turntable/internal/run"
	"turntable/internal/stage"
)

const (
	// StageName identifies the mesh reconstruction stage.
	StageName = "mesh"

	// Total progress units reported by groove-mesher (percent).
	Total = 100

	flagPreview = "--create-preview"
	flagFinal   = "--create-final-model"

	previewSuffix = ".usdzpreview.usdz"
	finalSuffix   = ".usdz"
)

var progressPattern = regexp.MustCompile(`Progress = (\d+)%`)

// Spec builds the mesh stage invocation. groove-mesher is always handed the
// unsuffixed .usdz output stem; in preview mode it writes the artifact under
// a preview-specific name instead, so the declared output differs from the
// requested path.
func Spec(binary, sourcePath string, r run.Run, quality run.Quality) stage.Spec {
	args := []string{sourcePath, RequestedOutputPath(r)}
	if quality == run.QualityFinal {
		args = append(args, flagFinal)
	} else {
		args = append(args, flagPreview)
	}
	return stage.Spec{
		Name:       StageName,
		Position:   1,
		Binary:     binary,
		Args:       args,
		InputPath:  sourcePath,
		OutputPath: ModelArtifactPath(r, quality),
		Total:      Total,
		Extract:    ExtractProgress,
	}
}

// RequestedOutputPath is the output argument passed to groove-mesher.
func RequestedOutputPath(r run.Run) string {
	return filepath.Join(r.RootDir, r.Label+finalSuffix)
}

// ModelArtifactName maps a quality mode to the artifact filename the mesher
// actually produces for the given run label. The preview suffix is a quirk
// of the tool: it appends "preview.usdz" to the requested stem.
func ModelArtifactName(label string, quality run.Quality) string {
	if quality == run.QualityFinal {
		return label + finalSuffix
	}
	return label + previewSuffix
}

// ModelArtifactPath resolves the produced artifact inside the run directory.
func ModelArtifactPath(r run.Run, quality run.Quality) string {
	return filepath.Join(r.RootDir, ModelArtifactName(r.Label, quality))
}

// ExtractProgress parses "Progress = N%" lines.
func ExtractProgress(line string) (int, bool) {
	match := progressPattern.FindStringSubmatch(line)
	if match == nil {
		return 0, false
	}
	value, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return value, true
}

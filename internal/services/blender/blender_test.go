package blender_test

import (
	"strings"
	"testing"

	"turntable/internal/run"
	"turntable/internal/services/blender"
)

func TestSpecArgumentVector(t *testing.T) {
	r := run.Run{
		Label:      "p-012",
		RootDir:    "/out/p-012",
		RendersDir: "/out/p-012/renders",
	}
	spec := blender.Spec(r, blender.Options{
		Binary:     "/opt/blender/blender",
		Script:     "createTurntable.py",
		BaseBlend:  "turntable_base_v01.blend",
		ModelPath:  "/out/p-012/p-012.usdzpreview.usdz",
		Width:      252,
		Height:     384,
		FrameCount: 180,
	})

	want := []string{
		"--background",
		"--python", "createTurntable.py",
		"--",
		"--usdz_path", "/out/p-012/p-012.usdzpreview.usdz",
		"--output_path", "/out/p-012",
		"--width", "252",
		"--height", "384",
		"--base_blend", "turntable_base_v01.blend",
	}
	if strings.Join(spec.Args, " ") != strings.Join(want, " ") {
		t.Fatalf("unexpected args:\n got %v\nwant %v", spec.Args, want)
	}
	if spec.InputPath != "/out/p-012/p-012.usdzpreview.usdz" {
		t.Fatalf("unexpected input path: %q", spec.InputPath)
	}
	if spec.OutputPath != "/out/p-012/renders/preview.0180.jpg" {
		t.Fatalf("unexpected output path: %q", spec.OutputPath)
	}
	if spec.Total != 180 || spec.Position != 2 {
		t.Fatalf("unexpected spec metadata: %+v", spec)
	}
}

func TestExtractFrame(t *testing.T) {
	cases := []struct {
		line  string
		value int
		ok    bool
	}{
		{"Fra:0 Mem:34.21M (Peak 35.01M) | Time:00:00.42 | Rendering 1 / 64 samples", 0, true},
		{"Fra:37 Mem:41.90M (Peak 44.12M) | Time:00:01.50 | Compositing", 37, true},
		{"Fra:180 Mem:41.90M | Sce: Scene Ve:0 Fa:0 La:0", 180, true},
		{"Saved: '/out/p-012/renders/preview.0001.jpg'", 0, false},
		{"Blender 4.2.0 (hash e1f9a4f)", 0, false},
	}
	for _, tc := range cases {
		value, ok := blender.ExtractFrame(tc.line)
		if ok != tc.ok || value != tc.value {
			t.Fatalf("%q: got (%d,%v) want (%d,%v)", tc.line, value, ok, tc.value, tc.ok)
		}
	}
}

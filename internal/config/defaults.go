package config

import "runtime"

const (
	defaultLogDir          = "~/.local/share/turntable/logs"
	defaultMesherPath      = "./groove-mesher"
	defaultFFmpegPath      = "ffmpeg"
	defaultTurntableScript = "createTurntable.py"
	defaultBaseBlend       = "turntable_base_v01.blend"
	defaultWidth           = 252
	defaultHeight          = 384
	defaultFrameCount      = 180
	defaultFramerate       = 30
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"

	darwinBlenderPath = "/Applications/Blender.app/Contents/MacOS/Blender"
)

// DefaultBlenderPath returns the platform default Blender executable.
func DefaultBlenderPath() string {
	if runtime.GOOS == "darwin" {
		return darwinBlenderPath
	}
	return "blender"
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Tools: Tools{
			MesherPath:      defaultMesherPath,
			BlenderPath:     DefaultBlenderPath(),
			FFmpegPath:      defaultFFmpegPath,
			TurntableScript: defaultTurntableScript,
			BaseBlend:       defaultBaseBlend,
		},
		Render: Render{
			Width:      defaultWidth,
			Height:     defaultHeight,
			FrameCount: defaultFrameCount,
			Framerate:  defaultFramerate,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

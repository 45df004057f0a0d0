package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeTools(); err != nil {
		return err
	}
	c.normalizeRender()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() error {
	c.Tools.MesherPath = strings.TrimSpace(c.Tools.MesherPath)
	if c.Tools.MesherPath == "" {
		c.Tools.MesherPath = defaultMesherPath
	}
	c.Tools.BlenderPath = strings.TrimSpace(c.Tools.BlenderPath)
	if c.Tools.BlenderPath == "" {
		c.Tools.BlenderPath = DefaultBlenderPath()
	}
	c.Tools.FFmpegPath = strings.TrimSpace(c.Tools.FFmpegPath)
	if c.Tools.FFmpegPath == "" {
		c.Tools.FFmpegPath = defaultFFmpegPath
	}
	c.Tools.TurntableScript = strings.TrimSpace(c.Tools.TurntableScript)
	if c.Tools.TurntableScript == "" {
		c.Tools.TurntableScript = defaultTurntableScript
	}
	c.Tools.BaseBlend = strings.TrimSpace(c.Tools.BaseBlend)
	if c.Tools.BaseBlend == "" {
		c.Tools.BaseBlend = defaultBaseBlend
	}
	return nil
}

func (c *Config) normalizeRender() {
	if c.Render.Width == 0 {
		c.Render.Width = defaultWidth
	}
	if c.Render.Height == 0 {
		c.Render.Height = defaultHeight
	}
	if c.Render.FrameCount == 0 {
		c.Render.FrameCount = defaultFrameCount
	}
	if c.Render.Framerate == 0 {
		c.Render.Framerate = defaultFramerate
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

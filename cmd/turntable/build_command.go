package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"turntable/internal/history"
	"turntable/internal/logging"
	"turntable/internal/pipeline"
	"turntable/internal/progress"
)

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var (
		sourcePath  string
		modelPath   string
		outputPath  string
		preview     bool
		final       bool
		width       int
		height      int
		blenderPath string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a turntable video from a groove capture or a USDZ model",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts := []pipeline.Option{
				pipeline.WithReporterFactory(progress.NewFactory(os.Stdout, logger)),
			}
			if cfg.History.Enabled {
				store, storeErr := history.Open(cfg)
				if storeErr != nil {
					logger.Warn("open run ledger", logging.Error(storeErr))
				} else {
					defer store.Close()
					opts = append(opts, pipeline.WithHistory(store))
				}
			}

			if width <= 0 {
				width = cfg.Render.Width
			}
			if height <= 0 {
				height = cfg.Render.Height
			}

			coord := pipeline.New(cfg, logger, opts...)
			report, err := coord.Execute(runCtx, pipeline.Request{
				SourcePath:  sourcePath,
				ModelPath:   modelPath,
				OutputPath:  outputPath,
				Preview:     preview,
				Final:       final,
				Width:       width,
				Height:      height,
				BlenderPath: blenderPath,
			})
			if err != nil {
				if report.FailedStage != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "Run %s failed during %s; partial artifacts kept in %s\n",
						report.Run.Label, report.FailedStage, report.Run.RootDir)
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Turntable ready: %s (%s)\n",
				report.VideoPath, pipeline.FormatDuration(report.Elapsed))
			return nil
		},
	}

	cmd.Flags().StringVar(&sourcePath, "source-path", "", "Groove capture directory to reconstruct a mesh from")
	cmd.Flags().StringVar(&modelPath, "model-path", "", "Existing USDZ model to render directly")
	cmd.Flags().StringVar(&outputPath, "output-path", "", "Directory that receives the versioned run folder")
	cmd.Flags().BoolVarP(&preview, "preview", "p", false, "Reconstruct a preview-quality mesh (default)")
	cmd.Flags().BoolVarP(&final, "final", "f", false, "Reconstruct a final-quality mesh")
	cmd.Flags().IntVar(&width, "width", 0, "Render width in pixels (defaults from config)")
	cmd.Flags().IntVar(&height, "height", 0, "Render height in pixels (defaults from config)")
	cmd.Flags().StringVar(&blenderPath, "blender-path", "", "Blender executable override")

	return cmd
}

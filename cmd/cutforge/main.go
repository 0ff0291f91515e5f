package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cutforge/cutforge/internal/config"
	"github.com/cutforge/cutforge/internal/engine"
	"github.com/cutforge/cutforge/internal/gui"
	"github.com/cutforge/cutforge/internal/logging"
	"github.com/cutforge/cutforge/internal/media"
	"github.com/cutforge/cutforge/internal/project"
	"github.com/cutforge/cutforge/internal/timeline"
	"github.com/cutforge/cutforge/pkg/util"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	ctx := context.Background()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cutforge",
	Short: "cutforge - composition render engine",
	Long:  "Compiles timeline compositions into encoded videos and previews them live with blended transitions.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./cutforge.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "output file (default: project output setting)")
	previewCmd.Flags().StringVar(&previewAt, "at", "", "start playhead (seconds or HH:MM:SS.mmm)")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(configCmd)

	projectNewCmd.Flags().StringVar(&projectName, "name", "", "project name (default: file name)")

	projectCmd.AddCommand(projectNewCmd)
	projectCmd.AddCommand(projectValidateCmd)
	configCmd.AddCommand(configInitCmd)
}

func newEngine(cmd *cobra.Command) (*engine.Engine, *config.Config, error) {
	cfg := config.FromContext(cmd.Context())
	eng, err := engine.New(log.Logger, cfg, media.FileResolver{Base: cfg.WorkDir})
	if err != nil {
		return nil, nil, err
	}
	return eng, cfg, nil
}

var renderOutput string

var renderCmd = &cobra.Command{
	Use:   "render [project file]",
	Short: "Render a project to its output file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := newEngine(cmd)
		if err != nil {
			return err
		}

		proj, err := project.Load(args[0])
		if err != nil {
			return err
		}

		output := renderOutput
		if output == "" {
			output = proj.Output
		}
		if output == "" {
			return fmt.Errorf("no output file: set output in the project or pass --output")
		}

		events, err := eng.Render(cmd.Context(), proj.Timeline, output)
		if err != nil {
			return err
		}

		for event := range events {
			switch {
			case event.Progress != nil:
				fmt.Printf("\r%6.2f%%  %.1fs / %.1fs  %.2fx",
					event.Progress.Percent,
					event.Progress.ElapsedSec,
					event.Progress.TotalSec,
					event.Progress.Speed)
			case event.Err != nil:
				fmt.Println()
				return event.Err
			case event.Done:
				fmt.Println()
				log.Info().Str("output", output).Msg("render finished")
			}
		}
		return nil
	},
}

var previewAt string

var previewCmd = &cobra.Command{
	Use:   "preview [project file]",
	Short: "Open the live preview window",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, cfg, err := newEngine(cmd)
		if err != nil {
			return err
		}

		proj, err := project.Load(args[0])
		if err != nil {
			return err
		}

		var start float64
		if previewAt != "" {
			start, err = util.ParseTimestamp(previewAt)
			if err != nil {
				return err
			}
		}

		return gui.RunPreview(eng, proj.Timeline, cfg.Preview.Width, cfg.Preview.Height, start)
	},
}

var probeCmd = &cobra.Command{
	Use:   "probe [media file]",
	Short: "Probe a media file's streams and duration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		prober, err := media.NewProber(log.Logger, cfg.FFmpeg.ProbePath)
		if err != nil {
			return err
		}

		info, err := prober.Probe(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("duration: %.3fs\n", info.Duration)
		if info.HasVideo {
			fmt.Printf("video:    %s %dx%d %.3f fps\n", info.VideoCodec, info.Width, info.Height, info.FPS)
		}
		if info.HasAudio {
			fmt.Printf("audio:    %s\n", info.AudioCodec)
		}
		return nil
	},
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project file commands",
}

var projectName string

var projectNewCmd = &cobra.Command{
	Use:   "new [project file]",
	Short: "Write a skeleton project file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("refusing to overwrite existing project %s", path)
		}

		name := projectName
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}

		proj := &project.Project{
			Name:     name,
			Output:   name + ".mp4",
			Timeline: &timeline.Timeline{},
		}
		if err := project.Save(path, proj); err != nil {
			return err
		}
		log.Info().Str("path", path).Str("name", name).Msg("project created")
		return nil
	},
}

var projectValidateCmd = &cobra.Command{
	Use:   "validate [project file]",
	Short: "Validate a project and print its compiled filter graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := newEngine(cmd)
		if err != nil {
			return err
		}

		proj, err := project.Load(args[0])
		if err != nil {
			return err
		}

		plan, err := eng.Compile(proj.Timeline)
		if err != nil {
			return err
		}

		fmt.Printf("name:     %s\n", proj.Name)
		fmt.Printf("duration: %.3fs\n", plan.TotalDuration)
		fmt.Printf("inputs:   %d\n", len(plan.Inputs))
		fmt.Printf("graph:    %s\n", plan.FilterComplex())

		// Persist back so newly assigned ids stick
		if err := project.Save(args[0], proj); err != nil {
			return err
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management commands",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config to ./cutforge.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		if err := cfg.Save("cutforge.yaml"); err != nil {
			return err
		}
		log.Info().Str("path", "cutforge.yaml").Msg("config written")
		return nil
	},
}

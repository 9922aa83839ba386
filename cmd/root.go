/*
Copyright © 2022 Daniils Petrovs <thedanpetrov@gmail.com>

*/
package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/DaniruKun/boostmeter-overlay/app"
	"github.com/DaniruKun/boostmeter-overlay/capture"
	"github.com/DaniruKun/boostmeter-overlay/internal/log"
	"github.com/DaniruKun/boostmeter-overlay/overlay"
	"github.com/DaniruKun/boostmeter-overlay/render"
	"github.com/DaniruKun/boostmeter-overlay/utils"
)

const windowTitle = "Boost Meter Overlay"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "boostmeter-overlay",
	Short: "Boost Meter Overlay",
	Long: `An app that reads the three boost meters of a running game from its window
and redraws them as a larger, restyled overlay.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Flags())
		if err != nil {
			return err
		}
		log.Init(cfg.LogLevel)

		source, err := newSource(cfg)
		if err != nil {
			return err
		}

		ov, err := app.New(cfg, source, overlay.NewWindow(windowTitle, cfg.FPS))
		if err != nil {
			closeLogged(log.L(), "capture source", source)
			return err
		}
		if err := ov.Start(); err != nil {
			closeLogged(log.L(), "overlay", ov)
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Running Boost Meter Overlay, press Enter to stop")
		waitForStop(cmd)

		if err := ov.Close(); err != nil {
			log.Error("overlay did not stop cleanly", "error", err)
			return err
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	addFlags(rootCmd.Flags())
}

func addFlags(flags *pflag.FlagSet) {
	defaults := app.DefaultConfig()
	style, _ := render.ParseStyle(defaults.Style)

	flags.String("config", "", "config file (default is $HOME/"+utils.ConfigFileName+")")
	flags.StringP("file", "f", "", "Video file to replay instead of capturing the screen")
	flags.Int("display", defaults.Display, "Index of the display to capture")
	flags.IntSlice("region", nil, "Captured window as x,y,width,height (default is the whole display)")
	flags.StringP("window", "w", defaults.Window, "Name of the game window to follow instead of a fixed region")
	flags.Int("capture-interval", defaults.CaptureIntervalMs, "Milliseconds between screen grabs")
	flags.Int("frame-interval", defaults.FrameInterval, "Video frames to skip between analyzed frames")

	flags.VarP(&style, "style", "t", "Meter style: Rectangle, ArcsSameAngles or ArcsSameLength")
	flags.String("color1", defaults.Color1, "Color of a meter below the minimum boost value")
	flags.String("color2", defaults.Color2, "Color of a meter at or above the minimum boost value")
	flags.String("color3", defaults.Color3, "Color of a meter at or above the color 3 threshold")
	flags.String("color4", defaults.Color4, "Color of a meter at or above the color 4 threshold")
	flags.Float64("threshold3", defaults.Threshold3, "Percent of a full meter at which color 3 is used")
	flags.Float64("threshold4", defaults.Threshold4, "Percent of a full meter at which color 4 is used")
	flags.Float64("arc-start", defaults.ArcStartAngle, "Start angle of the arcs in degrees")
	flags.Float64("arc-end", defaults.ArcEndAngle, "End angle of the arcs in degrees")
	flags.Float64("offset-x", defaults.OffsetX, "Horizontal offset of the meters in pixels")
	flags.Float64("offset-y", defaults.OffsetY, "Vertical offset of the meters in pixels")
	flags.BoolP("mirror", "m", defaults.Mirror, "Draw the meters mirrored on the left side")

	flags.Float64("search-fraction", defaults.SearchFraction, "Fraction of the frame size where the meter search starts")
	flags.Int("fps", defaults.FPS, "Overlay redraw rate")
	flags.BoolP("debug-box", "d", defaults.DebugBox, "Outline the area the meters were found in")
	flags.StringP("save", "s", defaults.DebugImage, "Save the first frame with meters found to this image file")
	flags.Bool("log-fps", defaults.LogFPS, "Log the capture frame rate")
	flags.String("log-level", defaults.LogLevel, "Log level: debug, info, warn or error")
}

// loadConfig layers defaults, the config file and explicitly set flags.
func loadConfig(flags *pflag.FlagSet) (app.Config, error) {
	cfg := app.DefaultConfig()

	explicit, _ := flags.GetString("config")
	path, err := utils.GetConfigPath(explicit)
	if err != nil {
		return cfg, err
	}
	if err := app.LoadConfigFile(path, &cfg); err != nil {
		// the default file is optional
		if explicit != "" || !errors.Is(err, os.ErrNotExist) {
			return cfg, err
		}
	}

	if err := applyFlags(flags, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func applyFlags(flags *pflag.FlagSet, cfg *app.Config) error {
	var err error
	set := func(name string, apply func()) {
		if err == nil && flags.Changed(name) {
			apply()
		}
	}

	set("file", func() { cfg.Source, err = flags.GetString("file") })
	set("display", func() { cfg.Display, err = flags.GetInt("display") })
	set("region", func() { cfg.Region, err = flags.GetIntSlice("region") })
	set("window", func() { cfg.Window, err = flags.GetString("window") })
	set("capture-interval", func() { cfg.CaptureIntervalMs, err = flags.GetInt("capture-interval") })
	set("frame-interval", func() { cfg.FrameInterval, err = flags.GetInt("frame-interval") })

	set("style", func() { cfg.Style = flags.Lookup("style").Value.String() })
	set("color1", func() { cfg.Color1, err = flags.GetString("color1") })
	set("color2", func() { cfg.Color2, err = flags.GetString("color2") })
	set("color3", func() { cfg.Color3, err = flags.GetString("color3") })
	set("color4", func() { cfg.Color4, err = flags.GetString("color4") })
	set("threshold3", func() { cfg.Threshold3, err = flags.GetFloat64("threshold3") })
	set("threshold4", func() { cfg.Threshold4, err = flags.GetFloat64("threshold4") })
	set("arc-start", func() { cfg.ArcStartAngle, err = flags.GetFloat64("arc-start") })
	set("arc-end", func() { cfg.ArcEndAngle, err = flags.GetFloat64("arc-end") })
	set("offset-x", func() { cfg.OffsetX, err = flags.GetFloat64("offset-x") })
	set("offset-y", func() { cfg.OffsetY, err = flags.GetFloat64("offset-y") })
	set("mirror", func() { cfg.Mirror, err = flags.GetBool("mirror") })

	set("search-fraction", func() { cfg.SearchFraction, err = flags.GetFloat64("search-fraction") })
	set("fps", func() { cfg.FPS, err = flags.GetInt("fps") })
	set("debug-box", func() { cfg.DebugBox, err = flags.GetBool("debug-box") })
	set("save", func() { cfg.DebugImage, err = flags.GetString("save") })
	set("log-fps", func() { cfg.LogFPS, err = flags.GetBool("log-fps") })
	set("log-level", func() { cfg.LogLevel, err = flags.GetString("log-level") })
	return err
}

func newSource(cfg app.Config) (capture.Source, error) {
	if cfg.Source == app.SourceScreen {
		interval := time.Duration(cfg.CaptureIntervalMs) * time.Millisecond
		src, err := capture.NewScreenSource(cfg.Display, cfg.ScreenRegion(), interval)
		if err != nil {
			return nil, err
		}
		src.Window = cfg.Window
		return src, nil
	}

	src, err := capture.NewVideoSource(cfg.Source, cfg.FrameInterval)
	if err != nil {
		return nil, err
	}
	return src, nil
}

// closeLogged releases c on an error path where the close error can only be reported.
func closeLogged(logger *slog.Logger, what string, c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Warn("failed to close "+what, "error", err)
	}
}

// waitForStop blocks until Enter is pressed or the process is interrupted.
func waitForStop(cmd *cobra.Command) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)

	enter := make(chan struct{})
	go func() {
		bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		close(enter)
	}()

	select {
	case <-signals:
	case <-enter:
	}
}

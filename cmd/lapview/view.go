package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/lapview/internal/config"
	"github.com/verte-zerg/lapview/internal/lapsync"
	"github.com/verte-zerg/lapview/internal/store"
	"github.com/verte-zerg/lapview/internal/trackmeta"
	"github.com/verte-zerg/lapview/internal/viewer"
)

const (
	defaultMapSize    = lapsync.DefaultSurfaceSize
	defaultPlotHeight = 6
)

var (
	viewMapSize    float64
	viewChannels   string
	viewRotation   float64
	viewPlotHeight int
	viewLogFile    string
)

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <lap-id> [lap-id]",
		Short: "Open the interactive lap viewer",
		Args:  cobra.RangeArgs(1, lapsync.MaxLaps),
		RunE:  runViewCmd,
	}
	cmd.Flags().Float64Var(&viewMapSize, "map-size", defaultMapSize, "map drawing surface size")
	cmd.Flags().StringVar(&viewChannels, "channels", strings.Join(lapsync.DefaultChannels, ","), "comma-separated channels to plot")
	cmd.Flags().Float64Var(&viewRotation, "rotation", 0, "map rotation in degrees (overrides the track default)")
	cmd.Flags().IntVar(&viewPlotHeight, "plot-height", defaultPlotHeight, "rows per graph")
	cmd.Flags().StringVar(&viewLogFile, "log-file", config.DefaultLogPath(), "viewer log file")
	return cmd
}

func runViewCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	applyFloatConfig(cmd, "map-size", &viewMapSize, fileCfg.View.MapSize)
	applyStringConfig(cmd, "channels", &viewChannels, fileCfg.View.Channels)
	applyIntConfig(cmd, "plot-height", &viewPlotHeight, fileCfg.View.PlotHeight)

	if viewMapSize <= 0 {
		return fmt.Errorf("--map-size must be > 0")
	}
	if viewPlotHeight <= 0 {
		return fmt.Errorf("--plot-height must be > 0")
	}
	channels, err := lapsync.ResolveChannels(splitList(viewChannels))
	if err != nil {
		return err
	}
	var rotation *float64
	if cmd.Flags().Changed("rotation") {
		r := viewRotation
		rotation = &r
	}

	viewLog, closeLog, err := openViewerLog(viewLogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	return withStore(func(st *store.Store) error {
		ids := make([]string, 0, len(args))
		for _, arg := range args {
			id, err := st.ResolveID(cmd.Context(), arg)
			if err != nil {
				return fmt.Errorf("lap %s: %w", arg, err)
			}
			ids = append(ids, id)
		}

		opts := viewer.Options{
			LapIDs:     ids,
			Channels:   channels,
			PlotHeight: viewPlotHeight,
			MapSize:    viewMapSize,
			Rotation:   rotation,
			Tracks:     trackmeta.NewCatalog(fileCfg.Tracks),
			Logger:     viewLog,
		}
		program := tea.NewProgram(viewer.NewModel(st, opts), tea.WithAltScreen(), tea.WithMouseAllMotion())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run viewer: %w", err)
		}
		return nil
	})
}

// openViewerLog routes viewer logs to a file while the TUI owns the terminal.
func openViewerLog(path string) (*logrus.Logger, func(), error) {
	l := logrus.New()
	l.SetLevel(log.GetLevel())
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	if path == "" {
		l.SetOutput(io.Discard)
		return l, func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	l.SetOutput(f)
	return l, func() {
		if cerr := f.Close(); cerr != nil {
			log.WithError(cerr).Error("failed to close log file")
		}
	}, nil
}

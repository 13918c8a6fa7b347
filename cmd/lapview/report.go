package main

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/lapview/internal/lapsync"
	"github.com/verte-zerg/lapview/internal/plot"
	"github.com/verte-zerg/lapview/internal/store"
	"github.com/verte-zerg/lapview/internal/trackmap"
	"github.com/verte-zerg/lapview/internal/trackmeta"
)

const defaultDeltaHeight = 10

var (
	deltaHeight int
	deltaColor  bool

	mapOut      string
	mapSize     int
	mapAt       float64
	mapRotation float64
)

func newDeltaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delta <lap-a> <lap-b>",
		Short: "Print the time delta between two laps",
		Args:  cobra.ExactArgs(2),
		RunE:  runDeltaCmd,
	}
	cmd.Flags().IntVar(&deltaHeight, "height", defaultDeltaHeight, "plot rows")
	cmd.Flags().BoolVar(&deltaColor, "color", false, "force colored output")
	return cmd
}

func runDeltaCmd(cmd *cobra.Command, args []string) error {
	return withStore(func(st *store.Store) error {
		laps, err := loadLaps(cmd.Context(), st, args)
		if err != nil {
			return err
		}
		series := lapsync.Delta(laps)
		out := cmd.OutOrStdout()
		if len(series) == 0 {
			_, err := fmt.Fprintln(out, "no delta available: the laps share no positions")
			return err
		}
		title := fmt.Sprintf("Delta %s vs %s (ms)", plot.LapLabel(0, laps[0]), plot.LapLabel(1, laps[1]))
		opts := plot.Options{
			Title:    title,
			Height:   deltaHeight,
			Zoom:     lapsync.DefaultZoom(),
			ZeroLine: true,
			Color:    plot.ShouldUseColor(out, deltaColor),
		}
		if err := plot.Write(out, []plot.Trace{plot.DeltaTrace(series, opts.Zoom)}, opts); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}

		minVal, maxVal := lapsync.DeltaRange(series)
		final := series[len(series)-1]
		rows := [][]string{
			{"Points", strconv.Itoa(len(series))},
			{"Final", formatDeltaMs(final.DeltaMs)},
			{"Best", formatDeltaMs(minVal)},
			{"Worst", formatDeltaMs(maxVal)},
		}
		for _, line := range plot.FormatTable([]plot.Column{{Title: "Delta"}, {Title: "Value", Align: plot.AlignDecimal}}, rows) {
			if _, err := fmt.Fprintln(out, line); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		return nil
	})
}

func formatDeltaMs(ms float64) string {
	return fmt.Sprintf("%+.3fs", ms/1000)
}

func newMapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "map <lap-id> [lap-id]",
		Short: "Export the track map as PNG",
		Args:  cobra.RangeArgs(1, lapsync.MaxLaps),
		RunE:  runMapCmd,
	}
	cmd.Flags().StringVar(&mapOut, "out", "map.png", "output PNG path")
	cmd.Flags().IntVar(&mapSize, "size", int(lapsync.DefaultSurfaceSize), "image size in pixels")
	cmd.Flags().Float64Var(&mapAt, "at", 0, "normalized position (0-1) to mark with car dots")
	cmd.Flags().Float64Var(&mapRotation, "rotation", 0, "map rotation in degrees (overrides the track default)")
	return cmd
}

func runMapCmd(cmd *cobra.Command, args []string) error {
	if mapSize <= 0 {
		return fmt.Errorf("--size must be > 0")
	}
	if cmd.Flags().Changed("at") && (mapAt < 0 || mapAt > 1) {
		return fmt.Errorf("--at must be between 0 and 1")
	}
	catalog, err := loadCatalog()
	if err != nil {
		return err
	}
	return withStore(func(st *store.Store) error {
		laps, err := loadLaps(cmd.Context(), st, args)
		if err != nil {
			return err
		}
		rotation := trackmeta.Rotation(catalog, laps[0].Meta.TrackID)
		if cmd.Flags().Changed("rotation") {
			rotation = mapRotation
		}
		state, err := lapsync.NewSyncState(laps, lapsync.Options{SurfaceSize: float64(mapSize), Rotation: rotation})
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("at") {
			state.ScrubTo(mapAt)
		}
		if err := trackmap.SavePNG(mapOut, state.Projection(), laps, state.CursorDots(), trackmap.ImageOptions{Size: mapSize}); err != nil {
			return fmt.Errorf("failed to write map: %w", err)
		}
		log.WithFields(logrus.Fields{"file": mapOut, "rotation": rotation}).Info("wrote track map")
		return nil
	})
}

func newTracksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tracks",
		Short: "List known tracks",
		Args:  cobra.NoArgs,
		RunE:  runTracksCmd,
	}
}

func runTracksCmd(cmd *cobra.Command, _ []string) error {
	catalog, err := loadCatalog()
	if err != nil {
		return err
	}
	rows := [][]string{}
	for _, t := range catalog.Tracks() {
		rotation := "-"
		if t.Rotation != nil {
			rotation = strconv.FormatFloat(*t.Rotation, 'f', -1, 64)
		}
		rows = append(rows, []string{t.ID, t.Name, rotation, t.Image})
	}
	columns := []plot.Column{
		{Title: "ID"},
		{Title: "Name"},
		{Title: "Rotation", Align: plot.AlignDecimal},
		{Title: "Image"},
	}
	for _, line := range plot.FormatTable(columns, rows) {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/lapview/internal/lapcsv"
	"github.com/verte-zerg/lapview/internal/model"
	"github.com/verte-zerg/lapview/internal/plot"
	"github.com/verte-zerg/lapview/internal/store"
)

const (
	defaultListLimit = 50
	shortIDLen       = 8
)

var (
	importTrack  string
	importCar    string
	importDriver string
	importGrip   int

	listTrack string
	listCar   string
	listLimit int
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.csv>...",
		Short: "Import laps from CSV files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runImportCmd,
	}
	cmd.Flags().StringVar(&importTrack, "track", "", "track id")
	cmd.Flags().StringVar(&importCar, "car", "", "car id")
	cmd.Flags().StringVar(&importDriver, "driver", "", "driver name")
	cmd.Flags().IntVar(&importGrip, "grip", 2, "track grip status (0 green .. 6 flooded)")
	return cmd
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	meta := model.LapMeta{
		TrackID:    importTrack,
		CarID:      importCar,
		DriverName: importDriver,
		TrackGrip:  importGrip,
		RecordedAt: time.Now(),
	}
	return withStore(func(st *store.Store) error {
		for _, path := range args {
			res, err := lapcsv.ReadFile(path, meta)
			if err != nil {
				return err
			}
			entry := log.WithField("file", path)
			if res.Reordered {
				entry.Warn("frames were out of position order and have been sorted")
			}
			id, err := st.InsertLap(cmd.Context(), res.Lap)
			if err != nil {
				return fmt.Errorf("failed to import %s: %w", path, err)
			}
			entry.WithField("frames", len(res.Lap.Frames)).Debug("imported lap")
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), id); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		return nil
	})
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored laps",
		Args:  cobra.NoArgs,
		RunE:  runListCmd,
	}
	cmd.Flags().StringVar(&listTrack, "track", "", "track filter")
	cmd.Flags().StringVar(&listCar, "car", "", "car filter")
	cmd.Flags().IntVar(&listLimit, "limit", defaultListLimit, "maximum number of laps")
	return cmd
}

func runListCmd(cmd *cobra.Command, _ []string) error {
	if listLimit < 0 {
		return fmt.Errorf("--limit must be >= 0")
	}
	catalog, err := loadCatalog()
	if err != nil {
		return err
	}
	return withStore(func(st *store.Store) error {
		laps, err := st.ListLaps(cmd.Context(), model.ListFilter{TrackID: listTrack, CarID: listCar, Limit: listLimit})
		if err != nil {
			return fmt.Errorf("failed to list laps: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(laps) == 0 {
			_, err := fmt.Fprintln(out, "No laps stored. Import with: lapview import <file.csv>")
			return err
		}
		columns := []plot.Column{
			{Title: "ID"},
			{Title: "Track"},
			{Title: "Car"},
			{Title: "Driver"},
			{Title: "Lap time", Align: plot.AlignDecimal},
			{Title: "Grip"},
			{Title: "Frames", Align: plot.AlignRight},
			{Title: "Imported"},
		}
		rows := make([][]string, 0, len(laps))
		for _, lap := range laps {
			rows = append(rows, []string{
				shortID(lap.ID),
				catalog.TrackName(lap.Meta.TrackID),
				catalog.CarName(lap.Meta.CarID),
				lap.Meta.DriverName,
				model.FormatLapTime(lap.Meta.LapTimeMs),
				model.GripName(lap.Meta.TrackGrip),
				strconv.Itoa(lap.FrameCount),
				humanize.Time(lap.ImportedAt),
			})
		}
		for _, line := range plot.FormatTable(columns, rows) {
			if _, err := fmt.Fprintln(out, line); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		return nil
	})
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <lap-id>",
		Short: "Remove a stored lap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(st *store.Store) error {
				id, err := st.ResolveID(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("lap %s: %w", args[0], err)
				}
				if err := st.DeleteLap(cmd.Context(), id); err != nil {
					return fmt.Errorf("failed to delete lap: %w", err)
				}
				log.WithField("lap", id).Info("deleted lap")
				return nil
			})
		},
	}
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <lap-id> <file.csv>",
		Short: "Write a stored lap as CSV",
		Args:  cobra.ExactArgs(2),
		RunE:  runExportCmd,
	}
}

func runExportCmd(cmd *cobra.Command, args []string) error {
	return withStore(func(st *store.Store) error {
		laps, err := loadLaps(cmd.Context(), st, args[:1])
		if err != nil {
			return err
		}
		f, err := os.Create(args[1])
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", args[1], err)
		}
		if err := lapcsv.Write(f, laps[0]); err != nil {
			if cerr := f.Close(); cerr != nil {
				// Best-effort close after a failed write.
				_ = cerr
			}
			return fmt.Errorf("failed to write %s: %w", args[1], err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close %s: %w", args[1], err)
		}
		log.WithField("file", args[1]).Info("exported lap")
		return nil
	})
}

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

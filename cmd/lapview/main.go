// Package main provides the CLI entrypoint for lapview.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/lapview/internal/config"
	"github.com/verte-zerg/lapview/internal/model"
	"github.com/verte-zerg/lapview/internal/store"
	"github.com/verte-zerg/lapview/internal/trackmeta"
)

var (
	rootConfigPath string
	rootDBPath     string
	rootVerbose    bool

	log = logrus.New()
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lapview",
		Short:         "Compare racing laps in the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			setupLogger(rootVerbose)
		},
	}

	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", config.DefaultConfigPath(), "config file path")
	rootCmd.PersistentFlags().StringVar(&rootDBPath, "db", config.DefaultDBPath(), "lap database path")
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newViewCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newDeltaCmd())
	rootCmd.AddCommand(newMapCmd())
	rootCmd.AddCommand(newTracksCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func setupLogger(verbose bool) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
}

func loadFileConfig() (config.FileConfig, error) {
	cfg, err := config.LoadConfig(rootConfigPath)
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func loadCatalog() (*trackmeta.Catalog, error) {
	cfg, err := loadFileConfig()
	if err != nil {
		return nil, err
	}
	return trackmeta.NewCatalog(cfg.Tracks), nil
}

// withStore opens the lap database for the duration of fn.
func withStore(fn func(st *store.Store) error) error {
	log.WithField("path", rootDBPath).Debug("opening lap database")
	st, err := store.Open(rootDBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.WithError(cerr).Error("failed to close db")
		}
	}()
	return fn(st)
}

// loadLaps resolves id prefixes and loads the laps in order.
func loadLaps(ctx context.Context, st *store.Store, ids []string) ([]*model.Lap, error) {
	laps := make([]*model.Lap, 0, len(ids))
	for _, id := range ids {
		full, err := st.ResolveID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("lap %s: %w", id, err)
		}
		lap, err := st.LoadLap(ctx, full)
		if err != nil {
			return nil, fmt.Errorf("lap %s: %w", id, err)
		}
		if sorted, changed := model.NormalizeLap(lap); changed {
			log.WithField("lap", full).Warn("frames were out of position order and have been sorted")
			lap = sorted
		}
		laps = append(laps, lap)
	}
	return laps, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := rootConfigPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.DefaultFileContent), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		log.WithField("path", path).Info("created config file")
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

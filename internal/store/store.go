// Package store handles SQLite persistence of the lap library.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/lapview/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

var (
	// ErrNotFound is returned when no lap matches an id.
	ErrNotFound = errors.New("lap not found")
	// ErrAmbiguousID is returned when an id prefix matches several laps.
	ErrAmbiguousID = errors.New("lap id prefix is ambiguous")
	// ErrNoFrames is returned when inserting a lap without frames.
	ErrNoFrames = errors.New("lap has no frames")
)

// Store wraps SQLite access for laps and their frames.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS laps (
			id TEXT PRIMARY KEY,
			track_id TEXT NOT NULL,
			car_id TEXT NOT NULL,
			driver TEXT NOT NULL,
			lap_time_ms INTEGER NOT NULL,
			recorded_at TEXT NOT NULL,
			track_grip INTEGER NOT NULL,
			frame_count INTEGER NOT NULL,
			imported_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS frames (
			lap_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			position REAL NOT NULL,
			time_ms REAL NOT NULL,
			throttle REAL NOT NULL,
			brake REAL NOT NULL,
			steer REAL NOT NULL,
			gear INTEGER NOT NULL,
			rpm REAL NOT NULL,
			speed_kmh REAL NOT NULL,
			car_x REAL NOT NULL,
			car_z REAL NOT NULL,
			PRIMARY KEY (lap_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_laps_track_car ON laps(track_id, car_id);`,
		`CREATE INDEX IF NOT EXISTS idx_laps_imported_at ON laps(imported_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertLap stores a lap and its frames and returns the new lap id.
// Frames are stored in position order.
func (s *Store) InsertLap(ctx context.Context, lap *model.Lap) (id string, err error) {
	if lap == nil || len(lap.Frames) == 0 {
		return "", fmt.Errorf("insert lap: %w", ErrNoFrames)
	}
	lap, _ = model.NormalizeLap(lap)
	id = uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	meta := lap.Meta
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO laps (id, track_id, car_id, driver, lap_time_ms, recorded_at, track_grip, frame_count, imported_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		meta.TrackID,
		meta.CarID,
		meta.DriverName,
		meta.LapTimeMs,
		meta.RecordedAt.UTC().Format(time.RFC3339Nano),
		meta.TrackGrip,
		len(lap.Frames),
		s.now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return "", err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO frames (lap_id, seq, position, time_ms, throttle, brake, steer, gear, rpm, speed_kmh, car_x, car_z)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for i, f := range lap.Frames {
		if _, err = stmt.ExecContext(ctx, id, i, f.NormalizedPosition, f.TimeMs, f.Throttle, f.Brake,
			f.SteerAngle, f.Gear, f.RPM, f.SpeedKmh, f.CarX, f.CarZ); err != nil {
			return "", err
		}
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// ResolveID expands a unique id prefix to a full lap id.
func (s *Store) ResolveID(ctx context.Context, prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", ErrNotFound
	}
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM laps WHERE id LIKE ? ESCAPE '\' ORDER BY id LIMIT 2`, escaped+"%")
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	switch {
	case len(ids) == 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, prefix)
	case len(ids) > 1 && ids[0] != prefix:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousID, prefix)
	}
	return ids[0], nil
}

// LoadLap reads a lap and all of its frames. The id may be a unique prefix.
func (s *Store) LoadLap(ctx context.Context, id string) (*model.Lap, error) {
	full, err := s.ResolveID(ctx, id)
	if err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, track_id, car_id, driver, lap_time_ms, recorded_at, track_grip, frame_count, imported_at
		 FROM laps WHERE id = ?`, full)
	summary, err := scanSummary(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT position, time_ms, throttle, brake, steer, gear, rpm, speed_kmh, car_x, car_z
		 FROM frames WHERE lap_id = ? ORDER BY seq ASC`, full)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	frames := make([]model.Frame, 0, summary.FrameCount)
	for rows.Next() {
		var f model.Frame
		if err := rows.Scan(&f.NormalizedPosition, &f.TimeMs, &f.Throttle, &f.Brake, &f.SteerAngle,
			&f.Gear, &f.RPM, &f.SpeedKmh, &f.CarX, &f.CarZ); err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &model.Lap{ID: summary.ID, Meta: summary.Meta, Frames: frames}, nil
}

// ListLaps returns lap summaries, newest import first.
func (s *Store) ListLaps(ctx context.Context, filter model.ListFilter) ([]model.LapSummary, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.TrackID != "" {
		clauses = append(clauses, "track_id = ?")
		args = append(args, filter.TrackID)
	}
	if filter.CarID != "" {
		clauses = append(clauses, "car_id = ?")
		args = append(args, filter.CarID)
	}
	query := fmt.Sprintf(`SELECT id, track_id, car_id, driver, lap_time_ms, recorded_at, track_grip, frame_count, imported_at
		FROM laps
		WHERE %s
		ORDER BY imported_at DESC, id ASC`, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var laps []model.LapSummary
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		laps = append(laps, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return laps, nil
}

// DeleteLap removes a lap and its frames.
func (s *Store) DeleteLap(ctx context.Context, id string) (err error) {
	full, err := s.ResolveID(ctx, id)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM frames WHERE lap_id = ?`, full); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM laps WHERE id = ?`, full); err != nil {
		return err
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner) (model.LapSummary, error) {
	var summary model.LapSummary
	var recordedAt, importedAt string
	if err := row.Scan(&summary.ID, &summary.Meta.TrackID, &summary.Meta.CarID, &summary.Meta.DriverName,
		&summary.Meta.LapTimeMs, &recordedAt, &summary.Meta.TrackGrip, &summary.FrameCount, &importedAt); err != nil {
		return model.LapSummary{}, err
	}
	var err error
	if summary.Meta.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt); err != nil {
		return model.LapSummary{}, err
	}
	if summary.ImportedAt, err = time.Parse(time.RFC3339Nano, importedAt); err != nil {
		return model.LapSummary{}, err
	}
	return summary, nil
}

// Package lapcsv reads and writes laps as CSV telemetry files.
package lapcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/verte-zerg/lapview/internal/model"
)

// ErrNoFrames is returned for a file with a header but no samples.
var ErrNoFrames = errors.New("no frames in file")

type column int

const (
	colPosition column = iota
	colTime
	colThrottle
	colBrake
	colSteer
	colGear
	colRPM
	colSpeed
	colX
	colZ
	columnCount
)

// Header is the column order used by Write.
var Header = []string{"normalized_position", "time_ms", "throttle", "brake", "steer_angle", "gear", "rpm", "speed_kmh", "car_x", "car_z"}

var aliases = map[string]column{
	"normalized_position":   colPosition,
	"normalizedcarposition": colPosition,
	"position":              colPosition,
	"time_ms":               colTime,
	"timems":                colTime,
	"time":                  colTime,
	"throttle":              colThrottle,
	"gas":                   colThrottle,
	"brake":                 colBrake,
	"steer_angle":           colSteer,
	"steerangle":            colSteer,
	"steer":                 colSteer,
	"gear":                  colGear,
	"rpm":                   colRPM,
	"speed_kmh":             colSpeed,
	"speedkmh":              colSpeed,
	"speed":                 colSpeed,
	"car_x":                 colX,
	"carx":                  colX,
	"x":                     colX,
	"car_z":                 colZ,
	"carz":                  colZ,
	"z":                     colZ,
}

// Result is a parsed lap plus whether its frames had to be reordered.
type Result struct {
	Lap       *model.Lap
	Reordered bool
}

// ReadFile parses a CSV lap file.
func ReadFile(path string, meta model.LapMeta) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close of a read-only file.
			_ = cerr
		}
	}()
	res, err := Read(f, meta)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

// Read parses a CSV lap with a header row. Column names are matched
// case-insensitively; position and time are required, other channels
// default to zero. Frames out of position order are stably sorted.
func Read(r io.Reader, meta model.LapMeta) (Result, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Result{}, ErrNoFrames
		}
		return Result{}, err
	}
	cols := make([]int, columnCount)
	for i := range cols {
		cols[i] = -1
	}
	for i, h := range headers {
		key := strings.ToLower(strings.TrimSpace(h))
		if c, ok := aliases[key]; ok && cols[c] < 0 {
			cols[c] = i
		}
	}
	if cols[colPosition] < 0 {
		return Result{}, fmt.Errorf("missing required column: %s", Header[colPosition])
	}
	if cols[colTime] < 0 {
		return Result{}, fmt.Errorf("missing required column: %s", Header[colTime])
	}

	var frames []model.Frame
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return Result{}, err
		}
		f, err := parseRow(row, cols)
		if err != nil {
			return Result{}, fmt.Errorf("line %d: %w", line, err)
		}
		frames = append(frames, f)
	}
	if len(frames) == 0 {
		return Result{}, ErrNoFrames
	}

	if meta.LapTimeMs == 0 {
		meta.LapTimeMs = int64(math.Round(frames[len(frames)-1].TimeMs - frames[0].TimeMs))
	}
	lap, reordered := model.NormalizeLap(&model.Lap{Meta: meta, Frames: frames})
	return Result{Lap: lap, Reordered: reordered}, nil
}

func parseRow(row []string, cols []int) (model.Frame, error) {
	field := func(c column) string {
		i := cols[c]
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	parseOrZero := func(c column) float64 {
		v, err := strconv.ParseFloat(field(c), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return v
	}

	pos, err := strconv.ParseFloat(field(colPosition), 64)
	if err != nil || math.IsNaN(pos) || math.IsInf(pos, 0) {
		return model.Frame{}, fmt.Errorf("invalid position %q", field(colPosition))
	}
	ms, err := strconv.ParseFloat(field(colTime), 64)
	if err != nil || math.IsNaN(ms) || math.IsInf(ms, 0) {
		return model.Frame{}, fmt.Errorf("invalid time %q", field(colTime))
	}
	return model.Frame{
		NormalizedPosition: pos,
		TimeMs:             ms,
		Throttle:           parseOrZero(colThrottle),
		Brake:              parseOrZero(colBrake),
		SteerAngle:         parseOrZero(colSteer),
		Gear:               int(parseOrZero(colGear)),
		RPM:                parseOrZero(colRPM),
		SpeedKmh:           parseOrZero(colSpeed),
		CarX:               parseOrZero(colX),
		CarZ:               parseOrZero(colZ),
	}, nil
}

// Write encodes a lap's frames using Header.
func Write(w io.Writer, lap *model.Lap) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return err
	}
	format := func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	for _, f := range lap.Frames {
		row := []string{
			format(f.NormalizedPosition),
			format(f.TimeMs),
			format(f.Throttle),
			format(f.Brake),
			format(f.SteerAngle),
			strconv.Itoa(f.Gear),
			format(f.RPM),
			format(f.SpeedKmh),
			format(f.CarX),
			format(f.CarZ),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

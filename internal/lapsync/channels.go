package lapsync

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/lapview/internal/model"
)

// LineStyle is a stroke pattern for a plotted line.
type LineStyle int

const (
	// Solid draws a continuous line.
	Solid LineStyle = iota
	// Dashed draws a broken line.
	Dashed
)

// LapStyle is the stroke used for a lap across every panel.
type LapStyle struct {
	Color string
	Line  LineStyle
}

var lapStyles = []LapStyle{
	{Color: "#3B82F6", Line: Solid},
	{Color: "#EF4444", Line: Dashed},
}

// StyleForLap returns the stroke for the lap at index i.
func StyleForLap(i int) LapStyle {
	if i < 0 {
		i = 0
	}
	return lapStyles[i%len(lapStyles)]
}

// Channel selects one telemetry value from a frame.
type Channel struct {
	Name   string
	Label  string
	Unit   string
	Select func(model.Frame) float64
}

var channels = []Channel{
	{Name: "speed", Label: "Speed", Unit: "km/h", Select: func(f model.Frame) float64 { return f.SpeedKmh }},
	{Name: "throttle", Label: "Throttle", Unit: "%", Select: func(f model.Frame) float64 { return f.Throttle * 100 }},
	{Name: "brake", Label: "Brake", Unit: "%", Select: func(f model.Frame) float64 { return f.Brake * 100 }},
	{Name: "steer", Label: "Steering", Unit: "deg", Select: func(f model.Frame) float64 { return f.SteerAngle }},
	{Name: "gear", Label: "Gear", Unit: "", Select: func(f model.Frame) float64 { return float64(f.Gear) }},
	{Name: "rpm", Label: "RPM", Unit: "rpm", Select: func(f model.Frame) float64 { return f.RPM }},
}

// DefaultChannels are shown when no selection is configured.
var DefaultChannels = []string{"speed", "throttle", "brake"}

// Channels returns every known channel.
func Channels() []Channel {
	out := make([]Channel, len(channels))
	copy(out, channels)
	return out
}

// ChannelByName looks up a channel by name.
func ChannelByName(name string) (Channel, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, ch := range channels {
		if ch.Name == name {
			return ch, true
		}
	}
	return Channel{}, false
}

// ResolveChannels maps names to channels, rejecting unknown ones.
func ResolveChannels(names []string) ([]Channel, error) {
	if len(names) == 0 {
		names = DefaultChannels
	}
	out := make([]Channel, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		ch, ok := ChannelByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown channel %q", name)
		}
		out = append(out, ch)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no channels selected")
	}
	return out, nil
}

// Values extracts a channel from frames whose positions lie inside zoom,
// returning positions and values side by side.
func Values(ch Channel, frames []model.Frame, zoom ZoomWindow) ([]float64, []float64) {
	var xs, ys []float64
	for _, f := range frames {
		if !zoom.Contains(f.NormalizedPosition) {
			continue
		}
		xs = append(xs, f.NormalizedPosition)
		ys = append(ys, ch.Select(f))
	}
	return xs, ys
}

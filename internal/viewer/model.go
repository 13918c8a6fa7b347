// Package viewer provides the Bubble Tea lap comparison interface.
package viewer

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/lapview/internal/lapsync"
	"github.com/verte-zerg/lapview/internal/model"
	"github.com/verte-zerg/lapview/internal/trackmeta"
)

// LapSource loads laps by id.
type LapSource interface {
	LoadLap(ctx context.Context, id string) (*model.Lap, error)
}

// LapLister lists laps that can be opened for comparison.
type LapLister interface {
	ListLaps(ctx context.Context, filter model.ListFilter) ([]model.LapSummary, error)
}

// Options configures the viewer.
type Options struct {
	LapIDs     []string
	Channels   []lapsync.Channel
	PlotHeight int
	MapSize    float64
	// Rotation overrides the track rotation when set.
	Rotation    *float64
	Tracks      trackmeta.Provider
	Logger      logrus.FieldLogger
	LoadTimeout time.Duration
}

const (
	defaultPlotHeight  = 6
	defaultLoadTimeout = 30 * time.Second
	headerHeight       = 1
	minMapScreenWidth  = 90
	scrubDivisions     = 100
	zoomInFactor       = 0.8
	zoomOutFactor      = 1.25
	panFraction        = 0.1
	pickerLimit        = 200
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	zoomStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	pickerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(0, 1)
)

type lapsLoadedMsg struct {
	seq  int
	ids  []string
	laps []*model.Lap
	err  error
}

type lapListMsg struct {
	laps []model.LapSummary
	err  error
}

// Model implements the Bubble Tea lap viewer.
type Model struct {
	source LapSource
	opts   Options
	log    logrus.FieldLogger

	state    *lapsync.SyncState
	rotation float64
	lapIDs   []string
	seq      int
	loading  bool
	errMsg   string

	width  int
	height int
	keys   keyMap
	help   help.Model

	dragging bool
	dragX    int

	picking   bool
	picker    table.Model
	summaries []model.LapSummary
}

// NewModel constructs a viewer that loads opts.LapIDs from source.
func NewModel(source LapSource, opts Options) *Model {
	if opts.PlotHeight <= 0 {
		opts.PlotHeight = defaultPlotHeight
	}
	if len(opts.Channels) == 0 {
		opts.Channels, _ = lapsync.ResolveChannels(nil)
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = defaultLoadTimeout
	}
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Model{
		source: source,
		opts:   opts,
		log:    log,
		lapIDs: append([]string(nil), opts.LapIDs...),
		keys:   defaultKeyMap(),
		help:   help.New(),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.load(m.lapIDs)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resizeMap()
		m.resizePicker()
		return m, nil
	case lapsLoadedMsg:
		m.applyLoaded(msg)
		return m, nil
	case lapListMsg:
		m.applyList(msg)
		return m, nil
	case tea.MouseMsg:
		if !m.picking {
			m.handleMouse(msg)
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.picking {
			return m.updatePicker(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	footer := m.renderFooter()
	footerHeight := lipgloss.Height(footer)
	bodyHeight := m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	return strings.Join([]string{header, body, fitLines(footer, m.width, footerHeight)}, "\n")
}

// State returns the synchronized lap state, nil until laps are loaded.
func (m *Model) State() *lapsync.SyncState {
	return m.state
}

func (m *Model) load(ids []string) tea.Cmd {
	m.seq++
	m.loading = true
	seq := m.seq
	ids = append([]string(nil), ids...)
	source := m.source
	log := m.log
	timeout := m.opts.LoadTimeout
	log.WithFields(logrus.Fields{"ids": ids, "seq": seq}).Debug("loading laps")
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		laps := make([]*model.Lap, 0, len(ids))
		for _, id := range ids {
			lap, err := source.LoadLap(ctx, id)
			if err != nil {
				return lapsLoadedMsg{seq: seq, ids: ids, err: fmt.Errorf("load lap %s: %w", id, err)}
			}
			normalized, reordered := model.NormalizeLap(lap)
			if reordered {
				log.WithField("lap", id).Warn("lap frames were out of position order; sorted")
			}
			laps = append(laps, normalized)
		}
		return lapsLoadedMsg{seq: seq, ids: ids, laps: laps}
	}
}

func (m *Model) applyLoaded(msg lapsLoadedMsg) {
	if msg.seq != m.seq {
		m.log.WithFields(logrus.Fields{"seq": msg.seq, "current": m.seq}).Debug("discarding stale lap load")
		return
	}
	m.loading = false
	if msg.err != nil {
		m.log.WithError(msg.err).Warn("lap load failed")
		m.errMsg = msg.err.Error()
		return
	}
	rotation := m.resolveRotation(msg.laps)
	if m.state == nil || rotation != m.rotation {
		state, err := lapsync.NewSyncState(msg.laps, lapsync.Options{SurfaceSize: m.opts.MapSize, Rotation: rotation})
		if err != nil {
			m.errMsg = err.Error()
			return
		}
		if m.state != nil {
			zoom := m.state.Zoom()
			state.ResizeZoomLeft(zoom.Min)
			state.ResizeZoomRight(zoom.Max)
		}
		m.state = state
		m.rotation = rotation
	} else if err := m.state.SetLaps(msg.laps); err != nil {
		m.errMsg = err.Error()
		return
	}
	m.lapIDs = msg.ids
	m.errMsg = ""
	m.resizeMap()
	m.log.WithFields(logrus.Fields{"laps": len(msg.laps), "rotation": rotation}).Info("laps loaded")
}

func (m *Model) resolveRotation(laps []*model.Lap) float64 {
	if m.opts.Rotation != nil {
		return *m.opts.Rotation
	}
	if len(laps) == 0 || laps[0] == nil {
		return 0
	}
	return trackmeta.Rotation(m.opts.Tracks, laps[0].Meta.TrackID)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Pick):
		return m, m.openPicker()
	}
	if m.state == nil {
		return m, nil
	}
	zoom := m.state.Zoom()
	switch {
	case key.Matches(msg, m.keys.Left):
		m.state.ScrubTo(m.cursorPosition() - zoom.Span()/scrubDivisions)
	case key.Matches(msg, m.keys.Right):
		m.state.ScrubTo(m.cursorPosition() + zoom.Span()/scrubDivisions)
	case key.Matches(msg, m.keys.PanLeft):
		m.state.DragZoom(-zoom.Span()*panFraction, 1)
	case key.Matches(msg, m.keys.PanRight):
		m.state.DragZoom(zoom.Span()*panFraction, 1)
	case key.Matches(msg, m.keys.ZoomIn):
		m.state.ZoomAround(m.cursorPosition(), zoomInFactor)
	case key.Matches(msg, m.keys.ZoomOut):
		m.state.ZoomAround(m.cursorPosition(), zoomOutFactor)
	case key.Matches(msg, m.keys.Reset):
		m.state.ResetZoom()
	case key.Matches(msg, m.keys.Clear):
		m.state.PointerLeave()
	case key.Matches(msg, m.keys.Drop):
		if len(m.lapIDs) > 1 {
			return m, m.load(m.lapIDs[:1])
		}
	}
	return m, nil
}

// cursorPosition is the hovered position, or the zoom window center.
func (m *Model) cursorPosition() float64 {
	if h := m.state.Hover(); h.Active {
		return h.Position
	}
	zoom := m.state.Zoom()
	return (zoom.Min + zoom.Max) / 2
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if m.state == nil {
		return
	}
	l := m.layout()
	col := msg.X - l.plotLeft
	inColumns := msg.X < l.graphWidth && col >= 0 && col < l.plotWidth
	inGraphs := inColumns && msg.Y >= l.graphTop && msg.Y < l.graphBottom
	switch {
	case msg.Button == tea.MouseButtonWheelUp && inGraphs:
		m.state.ZoomAround(m.state.Zoom().Unproject(float64(col), float64(l.plotWidth-1)), zoomInFactor)
	case msg.Button == tea.MouseButtonWheelDown && inGraphs:
		m.state.ZoomAround(m.state.Zoom().Unproject(float64(col), float64(l.plotWidth-1)), zoomOutFactor)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && inColumns && msg.Y == l.timelineRow:
		m.dragging = true
		m.dragX = msg.X
	case msg.Action == tea.MouseActionRelease:
		m.dragging = false
	case msg.Action == tea.MouseActionMotion && m.dragging:
		m.state.DragZoom(float64(msg.X-m.dragX), float64(l.plotWidth))
		m.dragX = msg.X
	case inGraphs:
		m.state.PointerMove(float64(col), float64(l.plotWidth-1))
	default:
		m.state.PointerLeave()
	}
}

func (m *Model) resizeMap() {
	if m.state == nil || m.width <= 0 || m.height <= 0 {
		return
	}
	l := m.layout()
	if l.mapWidth > 0 {
		m.state.Resize(float64(l.mapWidth*2), float64(l.mapHeight*4))
	}
}

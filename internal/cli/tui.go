package cli

import (
	"context"
	"fmt"
	"image"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/fractalview/pkg/errors"
	"github.com/matzehuels/fractalview/pkg/fractal"
	"github.com/matzehuels/fractalview/pkg/raster"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ExploreModel - Interactive Mandelbrot/Julia explorer
// =============================================================================

const (
	// chromeRows is the number of terminal rows used by title and status.
	chromeRows = 4

	// panDivisor sets the pan step to a fraction of the view width.
	panDivisor = 8

	halfBlock = "▀"
)

// passMsg announces that the refinement worker published a new pass.
type passMsg struct{}

// changedMsg reports the outcome of an explorer operation run as a command.
type changedMsg struct {
	action   string
	refining bool // op started a refinement schedule
	err      error
}

// passFeed hands passes from the refinement worker to the model. The
// worker never blocks: only the latest pass per set is kept and a single
// pending notification wakes the model.
type passFeed struct {
	mu     sync.Mutex
	latest map[fractal.Variant]fractal.Pass
	notify chan struct{}
}

func newPassFeed() *passFeed {
	return &passFeed{
		latest: make(map[fractal.Variant]fractal.Pass),
		notify: make(chan struct{}, 1),
	}
}

func (f *passFeed) push(p fractal.Pass) {
	f.mu.Lock()
	f.latest[p.Variant] = p
	f.mu.Unlock()
	select {
	case f.notify <- struct{}{}:
	default:
	}
}

func (f *passFeed) take(v fractal.Variant) (fractal.Pass, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.latest[v]
	return p, ok
}

func (f *passFeed) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	clear(f.latest)
}

func (f *passFeed) wait(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-f.notify:
			return passMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

// ExploreModel is the bubbletea model for the terminal explorer. Both sets
// are drawn side by side with half-block characters, two pixels per cell.
// Navigation keys act on the focused set.
type ExploreModel struct {
	ctx      context.Context
	explorer *fractal.Explorer
	render   raster.Options
	start    int // refinement start stride

	feed      *passFeed
	grids     map[fractal.Variant]fractal.GridView
	focus     fractal.Variant
	busy      bool
	listening bool
	status    string
	err       error
	sized     bool
}

// NewExploreModel creates an explorer model. No pass runs until the first
// window size message arrives.
func NewExploreModel(ctx context.Context, e *fractal.Explorer, opts raster.Options, startStride int) *ExploreModel {
	return &ExploreModel{
		ctx:      ctx,
		explorer: e,
		render:   opts,
		start:    startStride,
		feed:     newPassFeed(),
		grids:    make(map[fractal.Variant]fractal.GridView),
		focus:    fractal.Mandelbrot,
	}
}

func (m *ExploreModel) Init() tea.Cmd {
	return nil
}

func (m *ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w, h := viewportSize(msg.Width, msg.Height)
		m.sized = true
		return m, m.refine("resize", func(ctx context.Context) error {
			if err := m.explorer.Resize(ctx, w, h); err != nil {
				return err
			}
			return m.explorer.Refine(ctx, m.start, m.feed.push)
		})

	case passMsg:
		for _, v := range variantOrder {
			if p, ok := m.feed.take(v); ok {
				m.grids[v] = p.Grid
			}
		}
		m.listening = false
		return m, m.listen()

	case changedMsg:
		m.busy = false
		m.err = msg.err
		if msg.err == nil {
			m.status = msg.action
			if !msg.refining {
				m.feed.reset() // drop passes of the stopped schedule
			}
			m.snapshotGrids()
		}
		return m, m.listen()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *ExploreModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "q" || key == "ctrl+c" || key == "esc" {
		m.explorer.Close()
		return m, tea.Quit
	}
	if m.busy || !m.sized {
		return m, nil
	}

	e, v := m.explorer, m.focus
	switch key {
	case "tab", "j":
		if m.focus == fractal.Mandelbrot {
			m.focus = fractal.Julia
		} else {
			m.focus = fractal.Mandelbrot
		}
		return m, nil
	case "left":
		return m, m.pan(-1, 0)
	case "right":
		return m, m.pan(1, 0)
	case "up":
		return m, m.pan(0, -1)
	case "down":
		return m, m.pan(0, 1)
	case "+", "=":
		return m, m.run("zoom in", func(ctx context.Context) error { return e.ZoomBy(ctx, v, 2) })
	case "-", "_":
		return m, m.run("zoom out", func(ctx context.Context) error { return e.ZoomBy(ctx, v, 0.5) })
	case "]":
		n := e.Set(v).Params().MaxIterations * 2
		return m, m.run(fmt.Sprintf("iterations %d", n), func(ctx context.Context) error { return e.SetMaxIterations(ctx, n) })
	case "[":
		n := max(e.Set(v).Params().MaxIterations/2, 1)
		return m, m.run(fmt.Sprintf("iterations %d", n), func(ctx context.Context) error { return e.SetMaxIterations(ctx, n) })
	case "c":
		chunk := e.Set(v).Params().ChunkSize * 2
		if chunk > 8 {
			chunk = 1
		}
		return m, m.run(fmt.Sprintf("chunk %d", chunk), func(ctx context.Context) error { return e.SetChunkSize(ctx, chunk) })
	case "p":
		power := e.Set(v).Params().Power + 1
		if power > 5 {
			power = 2
		}
		return m, m.run(fmt.Sprintf("power %g", power), func(ctx context.Context) error { return e.SetPower(ctx, power) })
	case "u":
		return m, m.travel("undo", e.Undo)
	case "r":
		return m, m.travel("redo", e.Redo)
	case " ":
		return m, m.refine("refine", func(ctx context.Context) error { return e.Refine(ctx, m.start, m.feed.push) })
	}
	return m, nil
}

// pan moves the focused view by a step in pixel units.
func (m *ExploreModel) pan(dx, dy int) tea.Cmd {
	set := m.explorer.Set(m.focus)
	w, h := set.Size()
	step := max(w/panDivisor, 1)
	centre := image.Pt(w/2, h/2)
	to := centre.Sub(image.Pt(dx*step, dy*step))
	v := m.focus
	return m.run("pan", func(ctx context.Context) error { return m.explorer.Pan(ctx, v, centre, to) })
}

func (m *ExploreModel) travel(action string, step func(context.Context) (bool, error)) tea.Cmd {
	return m.run(action, func(ctx context.Context) error {
		ok, err := step(ctx)
		if err == nil && !ok {
			return errors.New(errors.ErrCodeInvalidInput, "nothing to %s", action)
		}
		return err
	})
}

// run executes op off the UI goroutine and reports through changedMsg.
func (m *ExploreModel) run(action string, op func(context.Context) error) tea.Cmd {
	return m.exec(action, false, op)
}

// refine is run for an op that ends by starting a refinement schedule,
// whose passes then arrive through the feed.
func (m *ExploreModel) refine(action string, op func(context.Context) error) tea.Cmd {
	m.feed.reset()
	return m.exec(action, true, op)
}

func (m *ExploreModel) exec(action string, refining bool, op func(context.Context) error) tea.Cmd {
	m.busy = true
	m.status = action + "..."
	ctx := m.ctx
	return func() tea.Msg {
		start := time.Now()
		err := op(ctx)
		loggerFromContext(ctx).Debug("explore", "action", action, "elapsed", time.Since(start), "error", err)
		return changedMsg{action: action, refining: refining, err: err}
	}
}

// listen waits for the next refinement pass unless a wait is pending.
func (m *ExploreModel) listen() tea.Cmd {
	if m.listening {
		return nil
	}
	m.listening = true
	return m.feed.wait(m.ctx)
}

func (m *ExploreModel) snapshotGrids() {
	for _, v := range variantOrder {
		m.grids[v] = m.explorer.Set(v).Grid()
	}
}

func (m *ExploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("fractalview"))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render("arrows pan  +/- zoom  [ ] iterations  c chunk  p power  tab focus  u/r undo/redo  space refine  q quit"))
	b.WriteString("\n")

	panels := make([]string, 0, len(variantOrder))
	for _, v := range variantOrder {
		g, ok := m.grids[v]
		if !ok || g.Stride == 0 {
			panels = append(panels, listDimStyle.Render("computing..."))
			continue
		}
		panels = append(panels, halfBlocks(raster.Render(g, m.render)))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panels[0], " ", panels[1]))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

func (m *ExploreModel) statusLine() string {
	s := m.explorer.Snapshot()
	parts := make([]string, 0, len(variantOrder))
	for _, v := range variantOrder {
		p := s.Mandelbrot
		if v == fractal.Julia {
			p = s.Julia
		}
		line := fmt.Sprintf("%s %s ×%g n=%d", v, p.Centre.Format(6), p.Zoom, p.MaxIterations)
		if v == fractal.Julia {
			line += " c=" + p.C.Format(6)
		}
		if v == m.focus {
			parts = append(parts, listSelectedStyle.Render("▸ "+line))
		} else {
			parts = append(parts, listNormalStyle.Render("  "+line))
		}
	}

	status := listDimStyle.Render(m.status)
	if m.err != nil {
		status = styleIconError.Render(iconError) + " " + errors.UserMessage(m.err)
	}
	return strings.Join(parts, "\n") + "\n" + status
}

// viewportSize returns the pixel size of one panel for a terminal of
// cols×rows cells.
func viewportSize(cols, rows int) (width, height int) {
	width = max((cols-1)/2, 1)
	height = max((rows-chromeRows)*2, 2)
	return width, height
}

// halfBlocks draws img with one upper-half block per two pixel rows: the
// foreground is the upper pixel and the background the lower one.
func halfBlocks(img *image.RGBA) string {
	b := img.Bounds()
	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			style := lipgloss.NewStyle().Foreground(hexColor(img, x, y))
			if y+1 < b.Max.Y {
				style = style.Background(hexColor(img, x, y+1))
			}
			sb.WriteString(style.Render(halfBlock))
		}
		if y+2 < b.Max.Y {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func hexColor(img *image.RGBA, x, y int) lipgloss.Color {
	c := img.RGBAAt(x, y)
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "—"
	}

	diff := time.Since(t)

	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}

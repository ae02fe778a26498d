package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/syncgrid-tui/internal/models"
	"github.com/j-veylop/syncgrid-tui/internal/ui/styles"
)

// Frame size limits in cells, relative to the 40x15 default frame: at least
// half its width and tall enough for the chrome, title, plot and axis rows,
// at most twice its height.
const (
	FrameMinWidth  = 20
	FrameMinHeight = 10
	FrameMaxHeight = 30

	// frameChrome is the rows taken by the top border, the drag header and
	// the bottom border.
	frameChrome = 3
)

// Frame is a draggable, resizable chart container on the canvas. X and Y
// are relative to the canvas.
type Frame struct {
	ID      string
	Title   string
	X       int
	Y       int
	Width   int
	Height  int
	Resized bool
}

// Rect returns the frame's outer rectangle.
func (f Frame) Rect() models.Rect {
	return models.Rect{X: f.X, Y: f.Y, Width: f.Width, Height: f.Height}
}

// Content is the area below the drag header, inside the border.
func (f Frame) Content() models.Rect {
	return models.Rect{X: f.X + 1, Y: f.Y + 2, Width: max(f.Width-2, 0), Height: max(f.Height-frameChrome, 0)}
}

// Contains reports whether the cell (x, y) is inside the frame.
func (f Frame) Contains(x, y int) bool {
	return x >= f.X && x < f.X+f.Width && y >= f.Y && y < f.Y+f.Height
}

// OnHeader reports whether (x, y) is on the top border or the drag header.
func (f Frame) OnHeader(x, y int) bool {
	return f.Contains(x, y) && y <= f.Y+1
}

// OnGrip reports whether (x, y) is the bottom-right resize grip.
func (f Frame) OnGrip(x, y int) bool {
	return x == f.X+f.Width-1 && y == f.Y+f.Height-1
}

type dragKind int

const (
	dragNone dragKind = iota
	dragMove
	dragResize
)

// FrameStack arranges frames on a bounded canvas and turns mouse gestures
// into move and resize reports. A resize reports the size first, then the
// position.
type FrameStack struct {
	Frames []Frame

	OnSizeChange     func(id string, width, height int)
	OnPositionChange func(id string, x, y int)

	width, height int

	active       int
	kind         dragKind
	grabX, grabY int
}

// NewFrameStack creates a stack with no drag in progress.
func NewFrameStack() *FrameStack {
	return &FrameStack{active: -1}
}

// SetBounds sets the canvas size and pulls every frame back inside it.
func (s *FrameStack) SetBounds(width, height int) {
	s.width, s.height = width, height
	for i := range s.Frames {
		s.clampSize(&s.Frames[i])
		s.clampPosition(&s.Frames[i])
	}
}

// Bounds returns the canvas size.
func (s *FrameStack) Bounds() (int, int) {
	return s.width, s.height
}

// Order returns frame indices bottom to top. Resized frames draw above the
// rest.
func (s *FrameStack) Order() []int {
	order := make([]int, 0, len(s.Frames))
	for i, f := range s.Frames {
		if !f.Resized {
			order = append(order, i)
		}
	}
	for i, f := range s.Frames {
		if f.Resized {
			order = append(order, i)
		}
	}
	return order
}

// TopAt returns the index of the topmost frame containing (x, y), or -1.
func (s *FrameStack) TopAt(x, y int) int {
	order := s.Order()
	for i := len(order) - 1; i >= 0; i-- {
		if s.Frames[order[i]].Contains(x, y) {
			return order[i]
		}
	}
	return -1
}

// Active returns the index of the frame being dragged, or -1.
func (s *FrameStack) Active() int {
	if s.kind == dragNone {
		return -1
	}
	return s.active
}

// HandleMouse processes a canvas-relative mouse event. It reports whether
// the event was consumed by a frame gesture.
func (s *FrameStack) HandleMouse(msg tea.MouseMsg) bool {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return false
		}
		idx := s.TopAt(msg.X, msg.Y)
		if idx < 0 {
			return false
		}
		f := s.Frames[idx]
		switch {
		case f.OnGrip(msg.X, msg.Y):
			s.kind = dragResize
		case f.OnHeader(msg.X, msg.Y):
			s.kind = dragMove
			s.grabX, s.grabY = msg.X-f.X, msg.Y-f.Y
		default:
			return false
		}
		s.active = idx
		return true

	case tea.MouseActionMotion:
		if s.kind == dragNone {
			return false
		}
		s.drag(msg.X, msg.Y)
		return true

	case tea.MouseActionRelease:
		if s.kind == dragNone {
			return false
		}
		s.drag(msg.X, msg.Y)
		s.finish()
		return true
	}
	return false
}

func (s *FrameStack) drag(x, y int) {
	f := &s.Frames[s.active]
	switch s.kind {
	case dragMove:
		f.X, f.Y = x-s.grabX, y-s.grabY
		s.clampPosition(f)
	case dragResize:
		f.Width, f.Height = x-f.X+1, y-f.Y+1
		s.clampSize(f)
	}
}

func (s *FrameStack) finish() {
	f := &s.Frames[s.active]
	kind := s.kind
	s.kind = dragNone
	s.active = -1

	if kind == dragResize {
		f.Resized = true
		if s.OnSizeChange != nil {
			s.OnSizeChange(f.ID, f.Width, f.Height)
		}
	}
	if s.OnPositionChange != nil {
		s.OnPositionChange(f.ID, f.X, f.Y)
	}
}

// Move shifts frame i by (dx, dy) and reports the new position.
func (s *FrameStack) Move(i, dx, dy int) {
	if i < 0 || i >= len(s.Frames) {
		return
	}
	f := &s.Frames[i]
	f.X += dx
	f.Y += dy
	s.clampPosition(f)
	if s.OnPositionChange != nil {
		s.OnPositionChange(f.ID, f.X, f.Y)
	}
}

// Resize grows frame i by (dw, dh) and reports the new size, then the
// position.
func (s *FrameStack) Resize(i, dw, dh int) {
	if i < 0 || i >= len(s.Frames) {
		return
	}
	s.active, s.kind = i, dragResize
	f := &s.Frames[i]
	f.Width += dw
	f.Height += dh
	s.clampSize(f)
	s.finish()
}

func (s *FrameStack) clampSize(f *Frame) {
	maxW, maxH := f.Width, FrameMaxHeight
	if s.width > 0 {
		maxW = max(s.width-f.X, FrameMinWidth)
	}
	if s.height > 0 {
		maxH = min(maxH, max(s.height-f.Y, FrameMinHeight))
	}
	f.Width = min(max(f.Width, FrameMinWidth), max(maxW, FrameMinWidth))
	f.Height = min(max(f.Height, FrameMinHeight), maxH)
}

func (s *FrameStack) clampPosition(f *Frame) {
	if s.width > 0 {
		f.X = min(f.X, s.width-f.Width)
	}
	if s.height > 0 {
		f.Y = min(f.Y, s.height-f.Height)
	}
	f.X = max(f.X, 0)
	f.Y = max(f.Y, 0)
}

// RenderFrame draws f with body inside its content area.
func RenderFrame(f Frame, body string, active bool) string {
	if f.Width < 2 || f.Height < frameChrome {
		return ""
	}
	border := lipgloss.NewStyle().Foreground(styles.Subtle)
	if active {
		border = border.Foreground(styles.Secondary)
	}
	inner := f.Width - 2
	b := lipgloss.RoundedBorder()

	lines := make([]string, 0, f.Height)
	lines = append(lines, border.Render(b.TopLeft+strings.Repeat(b.Top, inner)+b.TopRight))

	header := fitLine(" "+f.Title, inner-3) + " ⋮⋮"
	lines = append(lines, border.Render(b.Left)+styles.FrameHeaderStyle.Render(fitLine(header, inner))+border.Render(b.Right))

	bodyLines := strings.Split(body, "\n")
	for i := range f.Height - frameChrome {
		line := ""
		if i < len(bodyLines) {
			line = bodyLines[i]
		}
		lines = append(lines, border.Render(b.Left)+fitLine(line, inner)+border.Render(b.Right))
	}

	lines = append(lines, border.Render(b.BottomLeft+strings.Repeat(b.Bottom, inner))+styles.FrameGripStyle.Render("◢"))
	return strings.Join(lines, "\n")
}

// fitLine pads or truncates s to exactly width cells.
func fitLine(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = ansi.Truncate(s, width, "")
	if w := lipgloss.Width(s); w < width {
		s += strings.Repeat(" ", width-w)
	}
	return s
}

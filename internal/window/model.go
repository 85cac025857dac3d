// Package window is the graphical front end: an input line, a plot canvas
// and a status line. Enter submits the line; PageUp/PageDown change the
// dimension.
package window

import (
	"image"
	"strconv"
	"strings"
	"unicode"
)

// Session is what the window drives. Calls arrive one at a time from the
// window's update loop.
type Session interface {
	Submit(line string) (string, error)
	Dimension() int
	SetDimension(d int) error
	Image(width, height int) (image.Image, error)
}

// Options configure the window.
type Options struct {
	Title  string
	Width  int
	Height int
}

// barHeight is the space below the canvas for the input and status lines.
const barHeight = 40

// model holds the window state independently of ebiten.
type model struct {
	s      Session
	input  []rune
	status string
	failed bool
	plot   image.Image
	// dirty is set when plot changed and the GPU copy must be rebuilt.
	dirty         bool
	width, height int
}

func newModel(s Session, opts Options) *model {
	m := &model{s: s, width: opts.Width, height: opts.Height}
	m.setStatus("Enter an equation or a definition. PgUp/PgDn: dimension.", nil)
	return m
}

func (m *model) canvasSize() (int, int) {
	h := m.height - barHeight
	if h < 1 {
		h = 1
	}
	return m.width, h
}

func (m *model) typeRunes(rs []rune) {
	for _, r := range rs {
		if unicode.IsPrint(r) {
			m.input = append(m.input, r)
		}
	}
}

func (m *model) backspace() {
	if len(m.input) > 0 {
		m.input = m.input[:len(m.input)-1]
	}
}

func (m *model) clearInput() { m.input = m.input[:0] }

// enter submits the input line and re-renders. The line is kept on error
// so it can be fixed.
func (m *model) enter() {
	line := strings.TrimSpace(string(m.input))
	if line == "" {
		return
	}
	msg, err := m.s.Submit(line)
	if err != nil {
		m.setStatus("", err)
		return
	}
	m.clearInput()
	m.setStatus(msg, nil)
	m.redraw()
}

func (m *model) changeDimension(delta int) {
	if err := m.s.SetDimension(m.s.Dimension() + delta); err != nil {
		m.setStatus("", err)
		return
	}
	m.setStatus("dimension "+strconv.Itoa(m.s.Dimension()), nil)
	m.redraw()
}

func (m *model) redraw() {
	w, h := m.canvasSize()
	img, err := m.s.Image(w, h)
	if err != nil {
		m.setStatus("", err)
		return
	}
	m.plot = img
	m.dirty = true
}

func (m *model) setStatus(msg string, err error) {
	m.failed = err != nil
	if err != nil {
		msg = "Error: " + err.Error()
	}
	m.status = msg
}

func (m *model) prompt() string { return "> " + string(m.input) }

// barRect is the area below a canvas of height top.
func barRect(width, top, height int) image.Rectangle {
	return image.Rect(0, top, width, height)
}

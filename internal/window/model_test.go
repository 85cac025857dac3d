package window

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	dim       int
	submitted []string
	renders   int
	lastSize  image.Point
	err       error
}

func (f *fakeSession) Submit(line string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.submitted = append(f.submitted, line)
	return "ok " + line, nil
}

func (f *fakeSession) Dimension() int { return f.dim }

func (f *fakeSession) SetDimension(d int) error {
	if d < 2 {
		return errors.New("dimension must be at least 2")
	}
	f.dim = d
	return nil
}

func (f *fakeSession) Image(w, h int) (image.Image, error) {
	f.renders++
	f.lastSize = image.Pt(w, h)
	return image.NewRGBA(image.Rect(0, 0, w, h)), nil
}

func newTestModel() (*model, *fakeSession) {
	s := &fakeSession{dim: 2}
	return newModel(s, Options{Width: 300, Height: 240}), s
}

func TestModel_TypingAndBackspace(t *testing.T) {
	m, _ := newTestModel()

	m.typeRunes([]rune("x^2\t+ y"))
	assert.Equal(t, "> x^2+ y", m.prompt(), "control characters are dropped")

	m.backspace()
	m.backspace()
	assert.Equal(t, "> x^2+", m.prompt())

	m.clearInput()
	m.backspace()
	assert.Equal(t, "> ", m.prompt())
}

func TestModel_EnterSubmitsAndRedraws(t *testing.T) {
	m, s := newTestModel()

	m.typeRunes([]rune("  x^2 + y^2 = 25 "))
	m.enter()

	assert.Equal(t, []string{"x^2 + y^2 = 25"}, s.submitted)
	assert.Equal(t, "> ", m.prompt())
	assert.Equal(t, "ok x^2 + y^2 = 25", m.status)
	assert.False(t, m.failed)
	require.NotNil(t, m.plot)
	assert.True(t, m.dirty)
	assert.Equal(t, image.Pt(300, 200), s.lastSize, "canvas leaves room for the input bar")
}

func TestModel_EnterIgnoresBlankLine(t *testing.T) {
	m, s := newTestModel()
	m.typeRunes([]rune("   "))
	m.enter()
	assert.Empty(t, s.submitted)
	assert.Zero(t, s.renders)
}

func TestModel_ErrorKeepsInput(t *testing.T) {
	m, s := newTestModel()
	s.err = errors.New("syntax error at 3: unbalanced parenthesis")

	m.typeRunes([]rune("(x"))
	m.enter()

	assert.True(t, m.failed)
	assert.Equal(t, "Error: syntax error at 3: unbalanced parenthesis", m.status)
	assert.Equal(t, "> (x", m.prompt())
	assert.Zero(t, s.renders)
}

func TestModel_ChangeDimension(t *testing.T) {
	m, s := newTestModel()

	m.changeDimension(1)
	assert.Equal(t, 3, s.dim)
	assert.Equal(t, "dimension 3", m.status)
	assert.Equal(t, 1, s.renders)

	m.changeDimension(-1)
	m.changeDimension(-1)
	assert.Equal(t, 2, s.dim)
	assert.True(t, m.failed)
	assert.Equal(t, 2, s.renders)
}

func TestModel_CanvasSizeNeverEmpty(t *testing.T) {
	m := newModel(&fakeSession{dim: 2}, Options{Width: 100, Height: 10})
	w, h := m.canvasSize()
	assert.Equal(t, 100, w)
	assert.Equal(t, 1, h)
}

// Package editor implements the BASICfuck REPL's line editor: a
// cursor-addressable input buffer driven by a blocking keypress source,
// with history recall bound to the F1/F2 keys.
//
// The key-handling semantics (ENTER, STOP, CLEAR, BACKSPACE, arrows,
// HOME, INSERT, F1/F2) are grounded on
// original_source/src/text_buffer.c's edit_buffer. The TUI shell
// (Model's Init/Update/View and the tea.NewProgram(...).Run() launcher)
// is grounded on hejops-gone/cpu/debugger.go's model/Debug.
package editor

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"basicfuck/history"
)

// maxInputSize is the largest line, in bytes, the editor will hold.
const maxInputSize = 255

var cursorStyle = lipgloss.NewStyle().Reverse(true)

// Buffer is the cursor-addressable edit buffer, isolated from bubbletea
// so its key-handling semantics can be unit tested without driving a TUI.
type Buffer struct {
	data      [maxInputSize]byte
	cursor    int
	inputSize int
}

// Line returns the bytes currently held in the buffer.
func (b *Buffer) Line() []byte {
	out := make([]byte, b.inputSize)
	copy(out, b.data[:b.inputSize])
	return out
}

// SetLine replaces the buffer's contents with line (truncated to
// maxInputSize) and moves the cursor to its end, matching recall_buffer's
// behavior of navigating to the end of the buffer before redrawing it.
func (b *Buffer) SetLine(line []byte) {
	n := len(line)
	if n > maxInputSize {
		n = maxInputSize
	}
	copy(b.data[:n], line[:n])
	b.inputSize = n
	b.cursor = n
}

// Clear empties the buffer and resets the cursor to the start.
func (b *Buffer) Clear() {
	b.cursor = 0
	b.inputSize = 0
}

// InsertOrOverwrite types c at the cursor: if the cursor sits at the end
// of the buffer the line grows, otherwise the character under the cursor
// is overwritten in place.
func (b *Buffer) InsertOrOverwrite(c byte) {
	if b.cursor >= maxInputSize {
		return
	}
	if b.cursor == b.inputSize {
		b.inputSize++
	}
	b.data[b.cursor] = c
	b.cursor++
}

// Backspace deletes the character before the cursor, shifting the
// remainder of the line left.
func (b *Buffer) Backspace() {
	if b.cursor == 0 {
		return
	}
	copy(b.data[b.cursor-1:b.inputSize-1], b.data[b.cursor:b.inputSize])
	b.inputSize--
	b.cursor--
}

// Left moves the cursor one position left, clamped at 0.
func (b *Buffer) Left() {
	if b.cursor > 0 {
		b.cursor--
	}
}

// Right moves the cursor one position right, clamped at the end of the
// line.
func (b *Buffer) Right() {
	if b.cursor < b.inputSize {
		b.cursor++
	}
}

// Up moves the cursor up one screen line's worth of columns, or to the
// start of the buffer if there is no line above.
func (b *Buffer) Up(screenWidth int) {
	if screenWidth <= 0 {
		screenWidth = 1
	}
	if b.cursor > screenWidth {
		b.cursor -= screenWidth
	} else {
		b.cursor = 0
	}
}

// Down moves the cursor down one screen line's worth of columns, or to
// the end of the filled buffer if there is no line below.
func (b *Buffer) Down(screenWidth int) {
	if screenWidth <= 0 {
		screenWidth = 1
	}
	if b.inputSize-b.cursor > screenWidth {
		b.cursor += screenWidth
	} else {
		b.cursor = b.inputSize
	}
}

// Home moves the cursor to the start of the line.
func (b *Buffer) Home() {
	b.cursor = 0
}

// InsertSpace opens a gap at the cursor by shifting the remainder of the
// line right and filling the gap with a space, unless the buffer is full
// or the cursor is already at the end (nothing to shift).
func (b *Buffer) InsertSpace() {
	if b.inputSize >= maxInputSize || b.cursor == b.inputSize {
		return
	}
	copy(b.data[b.cursor+1:b.inputSize+1], b.data[b.cursor:b.inputSize])
	b.data[b.cursor] = ' '
	b.inputSize++
}

// model is the bubbletea Model wrapping Buffer with history recall and
// screen rendering.
type model struct {
	buf         Buffer
	hist        *history.Ring
	screenWidth int
	prompt      string

	quit      bool
	cancelled bool
}

func newModel(hist *history.Ring, prompt string, screenWidth int) model {
	return model{hist: hist, prompt: prompt, screenWidth: screenWidth}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.Type {
	case tea.KeyEnter:
		m.quit = true
		return m, tea.Quit

	case tea.KeyCtrlC, tea.KeyEsc:
		m.buf.Clear()
		m.quit = true
		m.cancelled = true
		return m, tea.Quit

	case tea.KeyCtrlL:
		m.buf.Clear()

	case tea.KeyBackspace:
		m.buf.Backspace()

	case tea.KeyLeft:
		m.buf.Left()

	case tea.KeyRight:
		m.buf.Right()

	case tea.KeyUp:
		m.buf.Up(m.screenWidth)

	case tea.KeyDown:
		m.buf.Down(m.screenWidth)

	case tea.KeyHome:
		m.buf.Home()

	case tea.KeyInsert:
		m.buf.InsertSpace()

	case tea.KeyF1:
		if entry, ok := m.hist.Backward(); ok {
			m.buf.SetLine(entry)
		}

	case tea.KeyF2:
		if entry, ok := m.hist.Forward(); ok {
			m.buf.SetLine(entry)
		}

	case tea.KeyRunes:
		for _, r := range keyMsg.Runes {
			if r >= 0x20 && r < 0x7f {
				m.buf.InsertOrOverwrite(byte(r))
			}
		}
	}

	return m, nil
}

func (m model) View() string {
	line := m.buf.Line()
	var b strings.Builder
	b.WriteString(m.prompt)
	for i, c := range line {
		if i == m.buf.cursor {
			b.WriteString(cursorStyle.Render(string(c)))
		} else {
			b.WriteByte(c)
		}
	}
	if m.buf.cursor == len(line) {
		b.WriteString(cursorStyle.Render(" "))
	}
	return b.String()
}

// ReadLine runs the line editor as an interactive bubbletea program,
// blocking until the user presses ENTER or STOP, and returns the
// finalized line. The line (even an empty one) is always saved to hist
// on the way out, matching text_buffer.c's edit_buffer, which calls
// save_buffer() unconditionally at exit.
func ReadLine(hist *history.Ring, prompt string, screenWidth int) ([]byte, error) {
	p := tea.NewProgram(newModel(hist, prompt, screenWidth))
	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("editor: %w", err)
	}

	m := finalModel.(model)
	line := m.buf.Line()
	hist.Save(line)
	if m.cancelled {
		return nil, nil
	}
	return line, nil
}

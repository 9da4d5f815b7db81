package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsertOrOverwriteAppendsAtEnd(t *testing.T) {
	var b Buffer
	b.InsertOrOverwrite('a')
	b.InsertOrOverwrite('b')
	assert.Equal(t, []byte("ab"), b.Line())
	assert.Equal(t, 2, b.cursor)
}

func TestInsertOrOverwriteOverwritesInPlace(t *testing.T) {
	var b Buffer
	b.SetLine([]byte("abc"))
	b.Home()
	b.InsertOrOverwrite('X')
	assert.Equal(t, []byte("Xbc"), b.Line())
}

func TestBackspaceShiftsLineLeft(t *testing.T) {
	var b Buffer
	b.SetLine([]byte("abc"))
	b.Backspace()
	assert.Equal(t, []byte("ab"), b.Line())
	assert.Equal(t, 2, b.cursor)
}

func TestBackspaceAtStartIsNoOp(t *testing.T) {
	var b Buffer
	b.SetLine([]byte("abc"))
	b.Home()
	b.Backspace()
	assert.Equal(t, []byte("abc"), b.Line())
}

func TestLeftRightClampToBounds(t *testing.T) {
	var b Buffer
	b.SetLine([]byte("ab"))
	b.Home()
	b.Left()
	assert.Equal(t, 0, b.cursor)

	b.Right()
	b.Right()
	b.Right()
	assert.Equal(t, 2, b.cursor)
}

func TestInsertSpaceOpensGap(t *testing.T) {
	var b Buffer
	b.SetLine([]byte("ac"))
	b.Home()
	b.Right()
	b.InsertSpace()
	assert.Equal(t, []byte("a c"), b.Line())
}

func TestInsertSpaceNoOpAtEnd(t *testing.T) {
	var b Buffer
	b.SetLine([]byte("ab"))
	b.InsertSpace()
	assert.Equal(t, []byte("ab"), b.Line())
}

func TestUpDownMoveByScreenWidth(t *testing.T) {
	var b Buffer
	b.SetLine([]byte("0123456789"))
	b.Up(4)
	assert.Equal(t, 6, b.cursor)
	b.Up(4)
	assert.Equal(t, 2, b.cursor)
	b.Up(4)
	assert.Equal(t, 0, b.cursor, "clamps at the start of the buffer")

	b.Down(4)
	assert.Equal(t, 4, b.cursor)
	b.Down(4)
	assert.Equal(t, 8, b.cursor)
	b.Down(4)
	assert.Equal(t, 10, b.cursor, "clamps at the end of the filled buffer")
}

func TestClearEmptiesBuffer(t *testing.T) {
	var b Buffer
	b.SetLine([]byte("abc"))
	b.Clear()
	assert.Equal(t, []byte{}, b.Line())
	assert.Equal(t, 0, b.cursor)
}

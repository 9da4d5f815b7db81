package compile

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"

	"basicfuck/bytecode"
)

func TestCompileCountedRun(t *testing.T) {
	c := NewCompiler(256)
	assert.NoError(t, c.Compile([]byte("+++++")))

	buf := c.Bytecode()
	assert.Equal(t, byte(bytecode.OpIncrement), buf[0])
	assert.Equal(t, byte(5), buf[1])
	assert.Equal(t, byte(bytecode.OpHalt), buf[2])
}

func TestCompileChunksRunsOver255(t *testing.T) {
	source := make([]byte, 300)
	for i := range source {
		source[i] = '+'
	}

	c := NewCompiler(256)
	assert.NoError(t, c.Compile(source))

	buf := c.Bytecode()
	assert.Equal(t, byte(bytecode.OpIncrement), buf[0])
	assert.Equal(t, byte(255), buf[1])
	assert.Equal(t, byte(bytecode.OpIncrement), buf[2])
	assert.Equal(t, byte(45), buf[3])
	assert.Equal(t, byte(bytecode.OpHalt), buf[4])
}

func TestCompileOutOfMemory(t *testing.T) {
	source := make([]byte, 300)
	for i := range source {
		source[i] = '+'
	}

	c := NewCompiler(4)
	err := c.Compile(source)
	assert.ErrorIs(t, err, ErrOutOfMemory)
}

func TestCompileIgnoresNonInstructionBytes(t *testing.T) {
	c := NewCompiler(256)
	assert.NoError(t, c.Compile([]byte("he+llo-")))

	buf := c.Bytecode()
	assert.Equal(t, byte(bytecode.OpIncrement), buf[0])
	assert.Equal(t, byte(1), buf[1])
	assert.Equal(t, byte(bytecode.OpDecrement), buf[2])
	assert.Equal(t, byte(1), buf[3])
	assert.Equal(t, byte(bytecode.OpHalt), buf[4])
}

func TestCompileMatchesSimpleLoop(t *testing.T) {
	c := NewCompiler(256)
	assert.NoError(t, c.Compile([]byte("+[-]")))

	buf := c.Bytecode()
	// +  -> 0,1   (2 bytes)
	// [  -> 2     (3 bytes, target at 7)
	// -  -> 5,1   (2 bytes)
	// ]  -> 7     (3 bytes, target at 2)
	// halt -> 10
	assert.Equal(t, byte(bytecode.OpJEQ), buf[2])
	assert.Equal(t, uint16(7), binary.LittleEndian.Uint16(buf[3:]))
	assert.Equal(t, byte(bytecode.OpJNE), buf[7])
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(buf[8:]))
	assert.Equal(t, byte(bytecode.OpHalt), buf[10])
}

func TestCompileNestedLoops(t *testing.T) {
	c := NewCompiler(256)
	// [[]] -> outer JEQ at 0, inner JEQ at 3, inner JNE at 6, outer JNE at 9.
	assert.NoError(t, c.Compile([]byte("[[]]")))

	buf := c.Bytecode()
	assert.Equal(t, uint16(9), binary.LittleEndian.Uint16(buf[1:])) // outer JEQ -> outer JNE
	assert.Equal(t, uint16(6), binary.LittleEndian.Uint16(buf[4:])) // inner JEQ -> inner JNE
	assert.Equal(t, uint16(3), binary.LittleEndian.Uint16(buf[7:])) // inner JNE -> inner JEQ
	assert.Equal(t, uint16(0), binary.LittleEndian.Uint16(buf[10:])) // outer JNE -> outer JEQ
}

func TestCompileUnterminatedLoopOpen(t *testing.T) {
	c := NewCompiler(256)
	err := c.Compile([]byte("[+"))
	assert.ErrorIs(t, err, ErrUnterminatedLoop)
}

func TestCompileUnterminatedLoopClose(t *testing.T) {
	c := NewCompiler(256)
	err := c.Compile([]byte("+]"))
	assert.ErrorIs(t, err, ErrUnterminatedLoop)
}

func TestCompileEmptySource(t *testing.T) {
	c := NewCompiler(256)
	assert.NoError(t, c.Compile([]byte{}))
	assert.Equal(t, byte(bytecode.OpHalt), c.Bytecode()[0])
}

func TestCompileReusesBufferAcrossCalls(t *testing.T) {
	c := NewCompiler(256)
	assert.NoError(t, c.Compile([]byte("+++++++++")))
	assert.NoError(t, c.Compile([]byte("+")))

	buf := c.Bytecode()
	assert.Equal(t, byte(bytecode.OpIncrement), buf[0])
	assert.Equal(t, byte(1), buf[1])
	assert.Equal(t, byte(bytecode.OpHalt), buf[2])
}

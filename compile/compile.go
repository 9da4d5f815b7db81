// Package compile implements the two-pass BASICfuck bytecode compiler:
// pass one collapses source characters into counted bytecode instructions,
// pass two resolves loop jump targets.
package compile

import (
	"encoding/binary"
	"errors"

	"basicfuck/bytecode"
)

// ErrOutOfMemory is returned when a program's compiled bytecode would not
// fit in the compiler's write buffer.
var ErrOutOfMemory = errors.New("out of memory")

// ErrUnterminatedLoop is returned when a '[' has no matching ']', or vice
// versa.
var ErrUnterminatedLoop = errors.New("unterminated loop")

// jumpPlaceholder marks a jump instruction's target as not-yet-patched.
const jumpPlaceholder = 0xFFFF

// Compiler owns a fixed-capacity bytecode buffer and compiles BASICfuck
// source into it. The buffer is reused across calls to Compile, mirroring
// src/basicfuck.h's BAFCompiler: one owned write buffer, recompiled in
// place for every REPL line.
type Compiler struct {
	buf []byte
}

// NewCompiler allocates a Compiler whose bytecode buffer has the given
// capacity in bytes.
func NewCompiler(capacity int) *Compiler {
	return &Compiler{buf: make([]byte, capacity)}
}

// Bytecode returns the compiler's bytecode buffer. The returned slice is
// only valid until the next call to Compile.
func (c *Compiler) Bytecode() []byte {
	return c.buf
}

// Compile bytecode-compiles source, a sequence of BASICfuck source
// characters, into the compiler's buffer. A null byte or the end of
// source both terminate the scan implicitly. Compile returns
// ErrOutOfMemory if the compiled program would not fit, or
// ErrUnterminatedLoop if a loop bracket is unmatched.
func (c *Compiler) Compile(source []byte) error {
	for i := range c.buf {
		c.buf[i] = 0
	}
	if err := c.pass1(source); err != nil {
		return err
	}
	return link(c.buf)
}

// pass1 performs the run-length collapse of source into instructions,
// grounded on src/basicfuck.h's baf_compile_first_pass.
func (c *Compiler) pass1(source []byte) error {
	k := 0
	i := 0
	for i < len(source) {
		b := source[i]
		op, ok := bytecode.Lookup(b)
		if !ok {
			i++
			continue
		}
		if op == bytecode.OpHalt {
			return c.emitHalt(k)
		}

		switch {
		case bytecode.IsJump(op):
			var err error
			k, err = c.emitJumpPlaceholder(k, op)
			if err != nil {
				return err
			}
			i++

		case bytecode.IsCounted(op):
			run := 1
			for i+run < len(source) && source[i+run] == b {
				run++
			}
			remaining := run
			for remaining > 0 {
				chunk := remaining
				if chunk > 255 {
					chunk = 255
				}
				var err error
				k, err = c.emitCounted(k, op, byte(chunk))
				if err != nil {
					return err
				}
				remaining -= chunk
			}
			i += run

		default:
			var err error
			k, err = c.emitBare(k, op)
			if err != nil {
				return err
			}
			i++
		}
	}
	return c.emitHalt(k)
}

// fits reports whether n more bytes can be written at k while still
// leaving room for the implicit HALT that always terminates the program.
func (c *Compiler) fits(k, n int) bool {
	return k+n <= len(c.buf)-1
}

func (c *Compiler) emitBare(k int, op bytecode.Opcode) (int, error) {
	if !c.fits(k, 1) {
		return k, ErrOutOfMemory
	}
	c.buf[k] = byte(op)
	return k + 1, nil
}

func (c *Compiler) emitCounted(k int, op bytecode.Opcode, count byte) (int, error) {
	if !c.fits(k, 2) {
		return k, ErrOutOfMemory
	}
	c.buf[k] = byte(op)
	c.buf[k+1] = count
	return k + 2, nil
}

func (c *Compiler) emitJumpPlaceholder(k int, op bytecode.Opcode) (int, error) {
	if !c.fits(k, 3) {
		return k, ErrOutOfMemory
	}
	c.buf[k] = byte(op)
	binary.LittleEndian.PutUint16(c.buf[k+1:], jumpPlaceholder)
	return k + 3, nil
}

func (c *Compiler) emitHalt(k int) error {
	if k > len(c.buf)-1 {
		return ErrOutOfMemory
	}
	c.buf[k] = byte(bytecode.OpHalt)
	return nil
}

// link performs the compiler's second pass: a left-to-right scan that,
// on each JEQ, seeks forward (tracking nesting depth) for its matching
// JNE and patches both instructions' jump targets to point at each
// other's absolute offset. Grounded on
// src/basicfuck.h's baf_compile_second_pass.
func link(buf []byte) error {
	pos := 0
	for {
		if pos >= len(buf) {
			return ErrUnterminatedLoop
		}
		op := bytecode.Opcode(buf[pos])
		if op == bytecode.OpHalt {
			return nil
		}

		switch op {
		case bytecode.OpJEQ:
			matched, err := matchLoop(buf, pos)
			if err != nil {
				return err
			}
			binary.LittleEndian.PutUint16(buf[pos+1:], uint16(matched))
			binary.LittleEndian.PutUint16(buf[matched+1:], uint16(pos))

		case bytecode.OpJNE:
			if binary.LittleEndian.Uint16(buf[pos+1:]) == jumpPlaceholder {
				return ErrUnterminatedLoop
			}
		}

		pos += bytecode.Size(op)
	}
}

// matchLoop seeks forward from a JEQ at pos to its matching JNE, returning
// the matching instruction's offset.
func matchLoop(buf []byte, pos int) (int, error) {
	depth := 1
	seek := pos + bytecode.Size(bytecode.OpJEQ)
	for {
		if seek >= len(buf) {
			return 0, ErrUnterminatedLoop
		}
		sop := bytecode.Opcode(buf[seek])
		if sop == bytecode.OpHalt {
			return 0, ErrUnterminatedLoop
		}
		switch sop {
		case bytecode.OpJEQ:
			depth++
		case bytecode.OpJNE:
			depth--
			if depth == 0 {
				return seek, nil
			}
		}
		seek += bytecode.Size(sop)
	}
}

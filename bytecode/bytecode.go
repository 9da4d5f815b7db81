// Package bytecode defines the BASICfuck instruction set: the opcode
// values, their encoded sizes, and the table mapping source characters to
// opcodes.
package bytecode

// Opcode identifies a single BASICfuck instruction. The numeric values
// match the layout produced by the compiler and consumed by the
// interpreter; they are part of the in-memory bytecode format exposed to
// the REPL's '#' dump command, so they must not be renumbered casually.
type Opcode byte

const (
	// OpHalt ends the current program. Takes no argument.
	OpHalt Opcode = iota
	// OpIncrement adds the argument byte to the current cell.
	OpIncrement
	// OpDecrement subtracts the argument byte from the current cell.
	OpDecrement
	// OpBFLeft moves the cell pointer left by the argument, clamping at 0.
	OpBFLeft
	// OpBFRight moves the cell pointer right by the argument, unless doing
	// so would run past the end of cell memory, in which case the pointer
	// is left unchanged.
	OpBFRight
	// OpPrint writes the current cell to the output stream.
	OpPrint
	// OpInput blocks for one keypress and stores it in the current cell.
	OpInput
	// OpJEQ jumps to its 16-bit absolute target if the current cell is 0.
	OpJEQ
	// OpJNE jumps to its 16-bit absolute target if the current cell is
	// not 0.
	OpJNE
	// OpCMemRead copies the byte at the host memory pointer into the
	// current cell.
	OpCMemRead
	// OpCMemWrite copies the current cell to the host memory pointer.
	OpCMemWrite
	// OpCMemLeft moves the host memory pointer left, clamping at 0.
	OpCMemLeft
	// OpCMemRight moves the host memory pointer right, clamping at 0xFFFF.
	OpCMemRight
	// OpExecute invokes the host subroutine at the host memory pointer,
	// passing the current and next two cells as register inputs.
	OpExecute

	numOpcodes = iota
)

// sourceTable maps a source byte to its opcode. Unlisted bytes are not
// instructions and are skipped by the compiler.
var sourceTable = map[byte]Opcode{
	0:    OpHalt,
	'+':  OpIncrement,
	'-':  OpDecrement,
	'<':  OpBFLeft,
	'>':  OpBFRight,
	'.':  OpPrint,
	',':  OpInput,
	'[':  OpJEQ,
	']':  OpJNE,
	'@':  OpCMemRead,
	'*':  OpCMemWrite,
	'(':  OpCMemLeft,
	')':  OpCMemRight,
	'%':  OpExecute,
}

// Lookup returns the opcode for a source byte, and whether it is a
// recognized instruction character (or the null terminator).
func Lookup(b byte) (Opcode, bool) {
	op, ok := sourceTable[b]
	return op, ok
}

// sizeTable mirrors src/basicfuck.h's baf_opcode_size_table: the number of
// bytes, including the opcode byte itself, each instruction occupies in
// compiled bytecode.
var sizeTable = [numOpcodes]int{
	OpHalt:      1,
	OpIncrement: 2,
	OpDecrement: 2,
	OpBFLeft:    2,
	OpBFRight:   2,
	OpPrint:     1,
	OpInput:     1,
	OpJEQ:       3,
	OpJNE:       3,
	OpCMemRead:  1,
	OpCMemWrite: 1,
	OpCMemLeft:  2,
	OpCMemRight: 2,
	OpExecute:   1,
}

// Size returns the encoded size, in bytes, of op. Unknown opcodes report
// size 1 so that a scan over corrupt bytecode still terminates.
func Size(op Opcode) int {
	if int(op) < 0 || int(op) >= numOpcodes {
		return 1
	}
	return sizeTable[op]
}

// IsCounted reports whether op takes an 8-bit repeat count argument.
func IsCounted(op Opcode) bool {
	switch op {
	case OpIncrement, OpDecrement, OpBFLeft, OpBFRight, OpCMemLeft, OpCMemRight:
		return true
	}
	return false
}

// IsJump reports whether op takes a 16-bit absolute bytecode address
// argument, patched by the compiler's second pass.
func IsJump(op Opcode) bool {
	return op == OpJEQ || op == OpJNE
}

// Valid reports whether op is a member of the instruction set.
func Valid(op Opcode) bool {
	return int(op) >= 0 && int(op) < numOpcodes
}

// Package vm implements the BASICfuck interpreter: cell memory, the host
// memory window, the HostCall capability backing EXECUTE, and the
// dispatch-table execution loop over compiled bytecode.
//
// The dispatch table design is grounded on hejops-gone/cpu/opcodes.go's
// Opcodes map, which pairs each 6502 opcode byte with a method-value
// handler; the step/run loop shape is grounded on
// hejops-gone/cpu/cpu.go's tick()/loop().
package vm

import (
	"encoding/binary"
	"errors"
	"io"

	"basicfuck/bytecode"
)

// ErrAbort is returned when an asynchronous STOP keypress, or a STOP
// keypress in answer to INPUT, cancels the running program.
var ErrAbort = errors.New("abort")

// ErrHostUnavailable is returned by EXECUTE when the configured HostCall
// refuses to run.
var ErrHostUnavailable = errors.New("host unavailable")

// ErrOutOfCellRange is returned when EXECUTE's register window (the
// current cell and the following two) runs past the end of cell memory.
var ErrOutOfCellRange = errors.New("out of cell range")

// ErrUnknownOpcode is returned when the interpreter encounters a byte in
// the bytecode stream that is not a member of the instruction set. This
// should not happen for bytecode produced by this repo's compiler; it
// guards against running hand-crafted or corrupt bytecode.
var ErrUnknownOpcode = errors.New("unknown opcode")

// Keyboard is the blocking/non-blocking keypress source backing INPUT and
// the interpreter's asynchronous abort poll. It is an external
// collaborator: this package defines the contract, not a concrete
// terminal driver.
type Keyboard interface {
	// ReadKeyBlocking waits for and returns the next keypress.
	ReadKeyBlocking() (byte, error)
	// KeyReady reports whether a keypress is available without blocking,
	// returning it if so.
	KeyReady() (byte, bool)
}

// Interpreter executes compiled BASICfuck bytecode.
type Interpreter struct {
	// Code is the bytecode currently being executed.
	Code []byte
	// PC is the current program counter, an offset into Code.
	PC int

	// Cells is BASICfuck cell memory.
	Cells []byte
	// CellPtr is the cell pointer, kept within [0, len(Cells)): moves left
	// clamp at 0, and a move right past the end leaves it unchanged.
	CellPtr int

	// HostPtr is the host memory pointer, saturating at [0, 0xFFFF].
	HostPtr int

	Host HostMemory
	Call HostCall
	Out  io.Writer
	Keys Keyboard

	// StopKey is the keycode that triggers an abort, both asynchronously
	// between instructions and as an INPUT result.
	StopKey byte

	// PollEvery amortizes the asynchronous abort check to once every
	// PollEvery steps, rather than every step. Defaults to 1 (poll every
	// step) if left at zero; values above 256 are treated as 256.
	PollEvery int

	stepsSincePoll int
}

// NewInterpreter constructs an Interpreter with the given cell count and
// collaborators. Cell memory is zeroed once, here, at construction.
// StopKey defaults to the conventional Ctrl-C byte and PollEvery to 1;
// both can be overridden directly on the returned value.
func NewInterpreter(cellCount int, host HostMemory, call HostCall, out io.Writer, keys Keyboard) *Interpreter {
	return &Interpreter{
		Cells:     make([]byte, cellCount),
		Host:      host,
		Call:      call,
		Out:       out,
		Keys:      keys,
		StopKey:   0x03,
		PollEvery: 1,
	}
}

// Reset loads a freshly compiled program and rewinds PC to its start,
// ready to run. Cell memory, the cell pointer, and the host memory
// pointer all persist across calls: per spec.md's data model, BASICfuck
// state accumulates across REPL turns rather than resetting per line.
// Mirrors src/repl.c, whose BASICfuck_memory and BASICfuck_memory_index
// are process-lifetime globals never reset inside its REPL loop; only
// program_index (PC) is reinitialized per baf_interpret() call.
func (vm *Interpreter) Reset(code []byte) {
	vm.Code = code
	vm.PC = 0
	vm.stepsSincePoll = 0
}

// Run executes Code from PC until it reaches HALT or an error occurs.
func (vm *Interpreter) Run() error {
	for {
		if vm.PC < 0 || vm.PC >= len(vm.Code) {
			return ErrUnknownOpcode
		}
		op := bytecode.Opcode(vm.Code[vm.PC])
		if op == bytecode.OpHalt {
			return nil
		}

		if err := vm.pollAbort(); err != nil {
			return err
		}
		if err := vm.step(op); err != nil {
			return err
		}
	}
}

func (vm *Interpreter) pollAbort() error {
	pollEvery := vm.PollEvery
	if pollEvery <= 0 {
		pollEvery = 1
	}
	if pollEvery > 256 {
		pollEvery = 256
	}
	vm.stepsSincePoll++
	if vm.stepsSincePoll < pollEvery {
		return nil
	}
	vm.stepsSincePoll = 0

	if key, ready := vm.Keys.KeyReady(); ready && key == vm.StopKey {
		return ErrAbort
	}
	return nil
}

// step dispatches and executes a single instruction, then advances PC for
// every opcode class except jumps, which set PC themselves on both the
// taken and not-taken path.
func (vm *Interpreter) step(op bytecode.Opcode) error {
	h := dispatch[op]
	if h == nil {
		return ErrUnknownOpcode
	}
	if err := h(vm); err != nil {
		return err
	}
	if !bytecode.IsJump(op) {
		vm.PC += bytecode.Size(op)
	}
	return nil
}

// handler is the dispatch-table entry type, a method-value over
// *Interpreter, mirroring hejops-gone/cpu/opcodes.go's
// Instruction func(c *Cpu) byte.
type handler func(vm *Interpreter) error

var dispatch = [...]handler{
	bytecode.OpHalt:      execHalt,
	bytecode.OpIncrement: execIncrement,
	bytecode.OpDecrement: execDecrement,
	bytecode.OpBFLeft:    execBFLeft,
	bytecode.OpBFRight:   execBFRight,
	bytecode.OpPrint:     execPrint,
	bytecode.OpInput:     execInput,
	bytecode.OpJEQ:       execJEQ,
	bytecode.OpJNE:       execJNE,
	bytecode.OpCMemRead:  execCMemRead,
	bytecode.OpCMemWrite: execCMemWrite,
	bytecode.OpCMemLeft:  execCMemLeft,
	bytecode.OpCMemRight: execCMemRight,
	bytecode.OpExecute:   execExecute,
}

func execHalt(vm *Interpreter) error { return nil }

func (vm *Interpreter) arg() byte {
	return vm.Code[vm.PC+1]
}

func (vm *Interpreter) jumpTarget() uint16 {
	return binary.LittleEndian.Uint16(vm.Code[vm.PC+1:])
}

func execIncrement(vm *Interpreter) error {
	vm.Cells[vm.CellPtr] += vm.arg()
	return nil
}

func execDecrement(vm *Interpreter) error {
	vm.Cells[vm.CellPtr] -= vm.arg()
	return nil
}

// execBFLeft clamps at 0 rather than wrapping.
func execBFLeft(vm *Interpreter) error {
	n := int(vm.arg())
	if vm.CellPtr > n {
		vm.CellPtr -= n
	} else {
		vm.CellPtr = 0
	}
	return nil
}

// execBFRight leaves the pointer unchanged if the move would run past the
// end of cell memory, rather than clamping to the last cell. This
// asymmetry with execBFLeft is intentional; see spec.md's Component D.
func execBFRight(vm *Interpreter) error {
	n := int(vm.arg())
	if vm.CellPtr+n < len(vm.Cells) {
		vm.CellPtr += n
	}
	return nil
}

func execPrint(vm *Interpreter) error {
	_, err := vm.Out.Write([]byte{vm.Cells[vm.CellPtr]})
	return err
}

func execInput(vm *Interpreter) error {
	key, err := vm.Keys.ReadKeyBlocking()
	if err != nil {
		return err
	}
	if key == vm.StopKey {
		return ErrAbort
	}
	vm.Cells[vm.CellPtr] = key
	return nil
}

func execJEQ(vm *Interpreter) error {
	if vm.Cells[vm.CellPtr] == 0 {
		vm.PC = int(vm.jumpTarget())
	} else {
		vm.PC += bytecode.Size(bytecode.OpJEQ)
	}
	return nil
}

func execJNE(vm *Interpreter) error {
	if vm.Cells[vm.CellPtr] != 0 {
		vm.PC = int(vm.jumpTarget())
	} else {
		vm.PC += bytecode.Size(bytecode.OpJNE)
	}
	return nil
}

func execCMemRead(vm *Interpreter) error {
	vm.Cells[vm.CellPtr] = vm.Host.Read(uint16(vm.HostPtr))
	return nil
}

func execCMemWrite(vm *Interpreter) error {
	vm.Host.Write(uint16(vm.HostPtr), vm.Cells[vm.CellPtr])
	return nil
}

// execCMemLeft clamps at 0.
func execCMemLeft(vm *Interpreter) error {
	n := int(vm.arg())
	if vm.HostPtr > n {
		vm.HostPtr -= n
	} else {
		vm.HostPtr = 0
	}
	return nil
}

// execCMemRight clamps at 0xFFFF.
func execCMemRight(vm *Interpreter) error {
	n := int(vm.arg())
	if vm.HostPtr+n <= 0xFFFF {
		vm.HostPtr += n
	} else {
		vm.HostPtr = 0xFFFF
	}
	return nil
}

func execExecute(vm *Interpreter) error {
	cp := vm.CellPtr
	if cp+2 >= len(vm.Cells) {
		return ErrOutOfCellRange
	}
	a, x, y := vm.Cells[cp], vm.Cells[cp+1], vm.Cells[cp+2]
	ra, rx, ry, err := vm.Call.Call(a, x, y, uint16(vm.HostPtr))
	if err != nil {
		return err
	}
	vm.Cells[cp], vm.Cells[cp+1], vm.Cells[cp+2] = ra, rx, ry
	return nil
}

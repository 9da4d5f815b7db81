// Command basicfuck is an interactive read-eval-print loop for
// BASICfuck, an extended-Brainfuck language with instructions for peeking
// and poking host memory and calling host subroutines.
//
// Grounded on original_source/src/repl.c's main(), with flag parsing
// adapted from chriskillpack-bbcdisasm/cmd/bbcdisasm's use of
// github.com/urfave/cli.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/urfave/cli"

	"basicfuck/compile"
	"basicfuck/editor"
	"basicfuck/history"
	"basicfuck/vm"
)

const (
	productName    = "BASICfuck"
	productVersion = "1.0.0"
	prompt         = "YOUR WILL? "
	screenWidth    = 80
)

// stdinKeyboard is the default vm.Keyboard, backed by raw reads from
// standard input. Unlike the cc65 target's cgetc()/kbhit(), it has no way
// to check for a pending byte without blocking, so KeyReady never reports
// a key ready; asynchronous abort (a STOP pressed mid-run, rather than in
// answer to an INPUT instruction) is a capability a richer terminal
// driver can add without changing this interface.
type stdinKeyboard struct {
	r *bufio.Reader
}

func newStdinKeyboard() *stdinKeyboard {
	return &stdinKeyboard{r: bufio.NewReader(os.Stdin)}
}

func (k *stdinKeyboard) ReadKeyBlocking() (byte, error) {
	return k.r.ReadByte()
}

func (k *stdinKeyboard) KeyReady() (byte, bool) {
	return 0, false
}

func helpText() string {
	return `REPL Commands (must be at start of line):

! - Exits REPL.
? - Displays this help menu.
L - Displays license information.
# - Displays bytecode of last program.

BASICfuck Instructions:

+ - Increment cell.
- - Decrement cell.
> - Move to next cell.
< - Move to previous cell.
. - Display value in cell as character.
, - Store value of key from keyboard in cell.
[ - Jump to corresponding ']' if value of cell is 0.
] - Jump to corresponding '[' if value of cell is not 0.
) - Move to next location in computer memory.
( - Move to previous location in computer memory.
@ - Read value from computer memory into cell.
* - Write value from cell into computer memory.
% - Execute location in computer memory as subroutine. The values of the
    current and next two cells are used for the A, X, and Y registers;
    resulting register values are stored back into the same cells.
`
}

// licenseText is a stub: the license menu's actual content is an
// out-of-scope collaborator per spec.md's Non-goals, left for the
// embedding distribution to supply.
func licenseText() string {
	return productName + " " + productVersion + "\nNo license information configured for this build."
}

func repl(cellCount, historySize, programSize int) {
	fmt.Printf("%s %s\n\n%d CELLS FREE\n\nEnter '?' for HELP\nEnter '!' to EXIT\n", productName, productVersion, cellCount)

	hist := history.NewRing(historySize)
	comp := compile.NewCompiler(programSize)
	interp := vm.NewInterpreter(cellCount, vm.NewFlatHostMemory(), vm.IdentityHostCall{}, os.Stdout, newStdinKeyboard())

	for {
		line, err := editor.ReadLine(hist, prompt, screenWidth)
		if err != nil {
			fmt.Println(err)
			continue
		}
		if len(line) == 0 {
			continue
		}

		switch line[0] {
		case '!':
			fmt.Println("SO BE IT.")
			return
		case '?':
			fmt.Println(helpText())
			continue
		case 'L':
			fmt.Println(licenseText())
			continue
		case '#':
			fmt.Println(spew.Sdump(comp.Bytecode()))
			continue
		}

		if err := comp.Compile(line); err != nil {
			printCompileError(err)
			continue
		}

		interp.Reset(comp.Bytecode())
		if err := interp.Run(); err != nil {
			printRuntimeError(err)
			continue
		}

		fmt.Printf("%03d (Cell %05d, Memory $%04X)\n", interp.Cells[interp.CellPtr], interp.CellPtr, interp.HostPtr)
	}
}

func printCompileError(err error) {
	switch {
	case errors.Is(err, compile.ErrOutOfMemory):
		fmt.Println("?OUT OF MEMORY")
	case errors.Is(err, compile.ErrUnterminatedLoop):
		fmt.Println("?UNTERMINATED LOOP")
	default:
		fmt.Println(err)
	}
}

func printRuntimeError(err error) {
	switch {
	case errors.Is(err, vm.ErrAbort):
		fmt.Println("?ABORT")
	case errors.Is(err, vm.ErrHostUnavailable):
		fmt.Println("?HOST UNAVAILABLE")
	case errors.Is(err, vm.ErrOutOfCellRange):
		fmt.Println("?OUT OF CELL RANGE")
	default:
		fmt.Println(err)
	}
}

func main() {
	app := cli.NewApp()
	app.Name = "basicfuck"
	app.Usage = "interactive extended-Brainfuck environment"
	app.Version = productVersion
	app.Flags = []cli.Flag{
		cli.IntFlag{Name: "memory", Value: 30000, Usage: "number of BASICfuck memory cells"},
		cli.IntFlag{Name: "history", Value: 2048, Usage: "size in bytes of the input history ring"},
		cli.IntFlag{Name: "program", Value: 256, Usage: "size in bytes of the compiled bytecode buffer"},
	}
	app.Action = func(c *cli.Context) error {
		repl(c.Int("memory"), c.Int("history"), c.Int("program"))
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

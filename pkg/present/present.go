// Package present renders a SymState (and pools of them) for humans:
// colorized console dumps mirroring original_source/src/SymExec.py's
// print_c-based SymState.print_steps/print_stack/print_state/
// print_satisfying_assignment family, reimplemented over
// zerolog.ConsoleWriter instead of termcolor.
package present

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/rs/zerolog"

	"github.com/swvm/symexec/pkg/ast"
	"github.com/swvm/symexec/pkg/smt"
	"github.com/swvm/symexec/pkg/state"
)

// Dumper writes colorized SymState dumps to an underlying writer. Zero
// value is not usable; build one with NewDumper.
type Dumper struct {
	logger zerolog.Logger
}

// NewDumper builds a Dumper writing to w (typically colorable.NewColorableStdout()).
func NewDumper(w io.Writer) *Dumper {
	cw := zerolog.ConsoleWriter{Out: w, NoColor: false, PartsOrder: []string{zerolog.MessageFieldName}}
	return &Dumper{logger: zerolog.New(cw).With().Logger()}
}

// NewStdoutDumper builds a Dumper over the Windows-safe colorable stdout,
// the same wrapping zerolog's own console writer recommends and the
// teacher's logging stack (via joeycumines-go-utilpkg/logiface-zerolog)
// pulls in go-colorable for.
func NewStdoutDumper() *Dumper {
	return NewDumper(colorable.NewColorableStdout())
}

func (d *Dumper) line(level zerolog.Level, format string, args ...interface{}) {
	d.logger.WithLevel(level).Msg(fmt.Sprintf(format, args...))
}

// Steps prints the path trace, one line per recorded transition —
// print_steps's analogue.
func (d *Dumper) Steps(s *state.SymState) {
	d.line(zerolog.InfoLevel, "Path Taken")
	for _, step := range s.Trace {
		d.line(zerolog.InfoLevel, "\t%s", step)
	}
}

// Stack prints the continuation stack bottom-to-top, one line per node —
// print_stack's analogue. The stack is stored bottom-first (index 0 is
// the bottom, matching the teacher's own orientation), so this prints in
// index order and labels both ends explicitly.
func (d *Dumper) Stack(s *state.SymState) {
	d.line(zerolog.DebugLevel, "Stack")
	d.line(zerolog.DebugLevel, "\tstack Bottom")
	for _, n := range s.Stack {
		d.line(zerolog.DebugLevel, "\t%d -- %s", n.Line, n.Unparse())
	}
	d.line(zerolog.DebugLevel, "\tstack Top")
}

// Condition prints the rendered path condition — print_state's analogue.
func (d *Dumper) Condition(s *state.SymState) {
	d.line(zerolog.InfoLevel, "Symbolic State")
	d.line(zerolog.InfoLevel, "\t%s", s.Condition.Render())
}

// SatisfyingAssignment checks s's condition against bridge and, if SAT,
// prints a witness restricted to formals; otherwise prints a red "No
// satisfying assignment" line — print_satisfying_assignment's analogue.
func (d *Dumper) SatisfyingAssignment(ctx context.Context, s *state.SymState, bridge smt.Bridge, formals []string, bound int64) {
	d.line(zerolog.InfoLevel, "Satisfying Assignment")
	status, err := bridge.Check(ctx, s.Condition, bound)
	if err != nil || status == smt.UNSAT {
		d.line(zerolog.WarnLevel, "No satisfying assignment")
		return
	}
	model, err := bridge.Model(ctx, s.Condition, formals, bound)
	if err != nil {
		d.line(zerolog.WarnLevel, "No satisfying assignment")
		return
	}
	names := make([]string, 0, len(model))
	for name := range model {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		d.line(zerolog.InfoLevel, "\t%s = %d", name, model[name])
	}
}

// Full runs Steps, Stack, Condition, and SatisfyingAssignment in the same
// order the original's interactive prompts call them.
func (d *Dumper) Full(ctx context.Context, s *state.SymState, bridge smt.Bridge, formals []string, bound int64) {
	d.Steps(s)
	d.Stack(s)
	d.Condition(s)
	d.SatisfyingAssignment(ctx, s, bridge, formals, bound)
}

// FunctionText renders fn's body as indented source-like text, the way
// the demo programs read in original_source's .py files — used by
// cmd/symexec's describe subcommand.
func FunctionText(fn *ast.Function) string {
	var b strings.Builder
	fmt.Fprintf(&b, "def %s(%s):\n", fn.Name, strings.Join(fn.Formals, ", "))
	writeBlock(&b, fn.Body, 1)
	return b.String()
}

func writeBlock(b *strings.Builder, body []ast.Node, depth int) {
	indent := strings.Repeat("    ", depth)
	for _, n := range body {
		fmt.Fprintf(b, "%s%s\n", indent, n.Unparse())
		switch n.Kind {
		case ast.KindWhile, ast.KindIf:
			writeBlock(b, n.Body, depth+1)
			if len(n.Else) > 0 {
				fmt.Fprintf(b, "%selse:\n", indent)
				writeBlock(b, n.Else, depth+1)
			}
		}
	}
}

// PoolSummary prints a one-line-per-pool count summary, used by
// cmd/symexec and cmd/symexecd to report a Result without dumping every
// individual state.
func (d *Dumper) PoolSummary(frontier, unreachable, terminated, reaching int) {
	d.line(zerolog.InfoLevel, "frontier=%d unreachable=%d terminated=%d reaching=%d",
		frontier, unreachable, terminated, reaching)
}

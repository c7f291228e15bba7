// Package env implements the versioned (SSA-like) variable environment
// described in §3/§4.1 of the core: a name-to-version-counter map paired
// with a name-to-term-history map, so re-assignment never invalidates a
// constraint already committed to a path condition.
package env

import (
	"errors"
	"fmt"

	"github.com/swvm/symexec/pkg/smt"
)

// ErrUndefinedRead is returned by Current for a name that has never been
// assigned — including a read-before-first-assignment along some branch
// (§7).
var ErrUndefinedRead = errors.New("env: undefined read")

// Env is the versioned environment. Zero value is not usable; build one
// with New.
type Env struct {
	counters map[string]int
	history  map[string][]smt.IntTerm
}

// New returns an empty Env.
func New() *Env {
	return &Env{
		counters: make(map[string]int),
		history:  make(map[string][]smt.IntTerm),
	}
}

// Assign increments name's version (initializing it to 0 on first use),
// builds a fresh smt.IntVar whose display name is "name" at version 0
// and "name_k" for version k>0, appends it to name's history, and
// returns it.
func (e *Env) Assign(name string) smt.IntTerm {
	counter, seen := e.counters[name]
	if !seen {
		counter = 0
	} else {
		counter++
	}
	e.counters[name] = counter

	display := name
	if counter > 0 {
		display = fmt.Sprintf("%s_%d", name, counter)
	}
	term := smt.IntVar{Name: display}
	e.history[name] = append(e.history[name], term)
	return term
}

// Current returns the most recently assigned term for name, or
// ErrUndefinedRead if name has never been assigned.
func (e *Env) Current(name string) (smt.IntTerm, error) {
	h, ok := e.history[name]
	if !ok || len(h) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUndefinedRead, name)
	}
	return h[len(h)-1], nil
}

// Counter returns name's current version counter and whether name has
// ever been assigned. Exposed for the env-monotonicity test property
// (§8): len(history(name)) must equal Counter(name)+1 whenever assigned
// is true.
func (e *Env) Counter(name string) (counter int, assigned bool) {
	c, ok := e.counters[name]
	return c, ok
}

// HistoryLen returns the number of terms ever assigned to name.
func (e *Env) HistoryLen(name string) int {
	return len(e.history[name])
}

// Clone deep-copies both maps so the receiver and the result share no
// mutable state — required at every branch point (§3 Ownership, §5
// Concurrency: "deep cloning is mandated at every branch point").
func (e *Env) Clone() *Env {
	out := New()
	for k, v := range e.counters {
		out.counters[k] = v
	}
	for k, v := range e.history {
		cp := make([]smt.IntTerm, len(v))
		copy(cp, v)
		out.history[k] = cp
	}
	return out
}

// Names returns every name ever assigned in this environment, in no
// particular order.
func (e *Env) Names() []string {
	out := make([]string, 0, len(e.counters))
	for k := range e.counters {
		out = append(out, k)
	}
	return out
}

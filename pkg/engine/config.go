package engine

// OnUnknown selects how the scheduler reacts when the SMT Bridge returns
// UNKNOWN for a state's feasibility (§6/§7).
type OnUnknown int

const (
	// Keep leaves the state in-progress/feasible — the default, and the
	// spec's recommended conservative choice.
	Keep OnUnknown = iota
	// Prune drops the state as if it were UNSAT. Documented as lossy:
	// a state that might have been reachable is discarded.
	Prune
)

// DeepCopyMode documents the §9 design-notes knob without this
// implementation needing two code paths: Go's env.Env.Clone is already a
// plain deep copy, and a persistent/structural-sharing variant would be
// a pure internal optimization of Clone with identical observable
// semantics. The field exists so Config's shape matches §9's
// recommended `{target_name, on_solver_unknown, deep_copy_mode}` knob
// set; only Eager is implemented today.
type DeepCopyMode int

const (
	Eager DeepCopyMode = iota
	Persistent
)

// Config parameterizes a Scheduler. Start from DefaultConfig: the zero
// value is not filled in with defaults, so an empty TargetName matches no
// call and a zero SolverBound limits every variable to 0.
type Config struct {
	// TargetName is the reserved call-statement identifier that marks
	// the goal location (§6). Defaults to "target".
	TargetName string
	// OnSolverUnknown selects §6/§7's UNKNOWN policy.
	OnSolverUnknown OnUnknown
	// SolverBound bounds every free integer variable to
	// [-SolverBound, SolverBound] in the bridge's bounded search.
	SolverBound int64
	// DeepCopyMode is documented above; Persistent is accepted but
	// behaves identically to Eager in this implementation.
	DeepCopyMode DeepCopyMode
}

// DefaultConfig returns the engine's default configuration: sentinel
// name "target", UNKNOWN kept as feasible, a solver bound of 256, eager
// deep copies.
func DefaultConfig() Config {
	return Config{
		TargetName:      "target",
		OnSolverUnknown: Keep,
		SolverBound:     256,
		DeepCopyMode:    Eager,
	}
}

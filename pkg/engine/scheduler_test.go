package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swvm/symexec/pkg/ast"
	"github.com/swvm/symexec/pkg/demo"
	"github.com/swvm/symexec/pkg/engine"
	"github.com/swvm/symexec/pkg/smt"
)

func newScheduler(t *testing.T, scenario string) (*engine.Scheduler, *ast.Function) {
	t.Helper()
	s, err := demo.Find(scenario)
	require.NoError(t, err)
	fn, err := s.Source.Produce()
	require.NoError(t, err)
	bridge, err := smt.NewPrologBridge()
	require.NoError(t, err)
	sch, err := engine.New(fn, bridge, engine.DefaultConfig(), zerolog.Nop())
	require.NoError(t, err)
	return sch, fn
}

func TestNewRejectsMalformedInput(t *testing.T) {
	bridge, err := smt.NewPrologBridge()
	require.NoError(t, err)
	cfg := engine.DefaultConfig()

	_, err = engine.New(nil, bridge, cfg, zerolog.Nop())
	require.ErrorIs(t, err, engine.ErrMalformedInput)

	_, err = engine.New(&ast.Function{}, bridge, cfg, zerolog.Nop())
	require.ErrorIs(t, err, engine.ErrMalformedInput)

	fn := &ast.Function{Body: []ast.Node{}, Formals: []string{}}
	_, err = engine.New(fn, nil, cfg, zerolog.Nop())
	require.ErrorIs(t, err, engine.ErrMalformedInput)
}

func TestNewAcceptsZeroFormalFunction(t *testing.T) {
	bridge, err := smt.NewPrologBridge()
	require.NoError(t, err)
	fn := &ast.Function{
		Name:    "noop",
		Formals: []string{},
		Body:    []ast.Node{{Kind: ast.KindReturn, Value: ast.IntConst(0)}},
	}
	sch, err := engine.New(fn, bridge, engine.DefaultConfig(), zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, sch.Formals())
}

func TestExploreScenario1ReachesTarget(t *testing.T) {
	sch, _ := newScheduler(t, "scenario1")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := sch.FindPathToTarget(ctx, 40)
	require.NoError(t, err)
	require.NotEmpty(t, result.Reaching, "scenario1 must find a path through the unbounded while to target()")
}

func TestExploreScenario3EnumeratesAllBranches(t *testing.T) {
	sch, _ := newScheduler(t, "scenario3")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := sch.Explore(ctx, 20)
	require.NoError(t, err)
	assert.False(t, result.BudgetExhausted)
	assert.Empty(t, result.Frontier)
	assert.Len(t, result.Reaching, 64, "six binary branches fan out to 2^6 = 64 reaching paths")
}

func TestExploreScenario5DeadBranchNeverReachesSecondTarget(t *testing.T) {
	sch, _ := newScheduler(t, "scenario5")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := sch.Explore(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, result.Reaching, 1, "only the else-branch target() is reachable; `if False` never is")
}

func TestExploreScenario6BreakThenReachesTarget(t *testing.T) {
	sch, _ := newScheduler(t, "scenario6")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	result, err := sch.FindPathToTarget(ctx, 120)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Reaching, "x eventually exceeds 19 and breaks, but target() still runs after the loop")
}

func TestFindPathToTargetResetsReachingAcrossCalls(t *testing.T) {
	sch, _ := newScheduler(t, "scenario1")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	first, err := sch.FindPathToTarget(ctx, 40)
	require.NoError(t, err)
	require.NotEmpty(t, first.Reaching)

	second, err := sch.FindPathToTargetFrom(ctx, first.Reaching[0], 5)
	require.NoError(t, err)
	assert.Empty(t, second.Reaching, "a state already past target() has no further call to hit")
}

func TestExploreFromResumesFromRecordedState(t *testing.T) {
	sch, _ := newScheduler(t, "scenario1")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	first, err := sch.Explore(ctx, 3)
	require.NoError(t, err)
	require.NotEmpty(t, first.Frontier, "a handful of rounds on the unbounded while should leave states mid-stack")

	resumed, err := sch.ExploreFrom(ctx, first.Frontier[0], 5)
	require.NoError(t, err)
	assert.Equal(t, 5, resumed.StepsRun)
}

func TestWitnessReplaysToHitTarget(t *testing.T) {
	sch, fn := newScheduler(t, "scenario2")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	result, err := sch.FindPathToTarget(ctx, 80)
	require.NoError(t, err)
	require.NotEmpty(t, result.Reaching)

	bridge, err := smt.NewPrologBridge()
	require.NoError(t, err)
	witness, err := result.Reaching[0].Witness(ctx, bridge, sch.Formals(), 256)
	require.NoError(t, err)

	report, err := demo.Replay(fn, witness, 10_000)
	require.NoError(t, err)
	assert.True(t, report.HitTarget, "a witness the solver produced must actually drive concrete execution to target()")
}

// TestBranchDeterminism is the §8 "Branch determinism" property: two
// independent explorations of the same function must agree on the set of
// reaching witnesses, since nothing in the stepper consults any source of
// nondeterminism. go-cmp gives a much more readable failure than a bare
// reflect.DeepEqual would if this ever regresses.
func TestBranchDeterminism(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	bridge, err := smt.NewPrologBridge()
	require.NoError(t, err)

	collectWitnesses := func() []map[string]int64 {
		s, err := demo.Find("scenario3")
		require.NoError(t, err)
		fn, err := s.Source.Produce()
		require.NoError(t, err)
		sch, err := engine.New(fn, bridge, engine.DefaultConfig(), zerolog.Nop())
		require.NoError(t, err)

		result, err := sch.Explore(ctx, 20)
		require.NoError(t, err)

		witnesses := make([]map[string]int64, 0, len(result.Reaching))
		for _, rs := range result.Reaching {
			w, err := rs.Witness(ctx, bridge, sch.Formals(), 256)
			require.NoError(t, err)
			witnesses = append(witnesses, w)
		}
		return witnesses
	}

	first := collectWitnesses()
	second := collectWitnesses()

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeated explorations of the same function disagree on witnesses (-first +second):\n%s", diff)
	}
}

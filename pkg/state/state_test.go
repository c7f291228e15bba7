package state_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swvm/symexec/pkg/ast"
	"github.com/swvm/symexec/pkg/smt"
	"github.com/swvm/symexec/pkg/state"
)

func testFunction() *ast.Function {
	return &ast.Function{
		Name:    "f",
		Formals: []string{"a", "b"},
		Body: []ast.Node{
			{Kind: ast.KindAssign, Line: 1, Target: "c", Value: ast.Bin(ast.OpAdd, ast.Name("a"), ast.Name("b"))},
			{Kind: ast.KindReturn, Line: 2, Value: ast.Name("c")},
		},
	}
}

func TestNewSeedsStackAndEnv(t *testing.T) {
	fn := testFunction()
	s := state.New(fn)

	require.Len(t, s.Stack, len(fn.Body))
	assert.Equal(t, fn.Body[0], s.Stack[len(s.Stack)-1], "reversed body pops in source order")
	assert.Nil(t, s.Condition)
	assert.Nil(t, s.Trace)

	for _, formal := range fn.Formals {
		term, err := s.Env.Current(formal)
		require.NoError(t, err)
		assert.Equal(t, smt.IntVar{Name: formal}, term)
	}
}

func TestIsTerminated(t *testing.T) {
	s := state.New(testFunction())
	assert.False(t, s.IsTerminated())

	s.Stack = nil
	assert.True(t, s.IsTerminated())
}

func TestIsFeasible(t *testing.T) {
	bridge, err := smt.NewPrologBridge()
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s := state.New(testFunction())
	s.Condition = smt.Conjunction{smt.Gt(smt.IntVar{Name: "a"}, smt.IntConst{Value: 0})}
	feasible, err := s.IsFeasible(ctx, bridge, 100, true)
	require.NoError(t, err)
	assert.True(t, feasible)

	s.Condition = smt.Conjunction{
		smt.Gt(smt.IntVar{Name: "a"}, smt.IntConst{Value: 10}),
		smt.Lt(smt.IntVar{Name: "a"}, smt.IntConst{Value: 5}),
	}
	feasible, err = s.IsFeasible(ctx, bridge, 100, true)
	require.NoError(t, err)
	assert.False(t, feasible)
}

func TestIsFeasiblePruneDropsUnknown(t *testing.T) {
	bridge, err := smt.NewPrologBridge()
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s := state.New(testFunction())
	s.Condition = smt.Conjunction{smt.Gt(smt.IntVar{Name: "a"}, smt.IntConst{Value: 0})}

	// An already-expired context makes Check report UNKNOWN regardless of
	// satisfiability; treatUnknownAsFeasible=false (Config.Prune) must
	// drop the state just like a genuine UNSAT would.
	expired, cancelExpired := context.WithTimeout(ctx, 0)
	defer cancelExpired()
	<-expired.Done()

	feasible, err := s.IsFeasible(expired, bridge, 100, false)
	require.NoError(t, err)
	assert.False(t, feasible, "Prune policy must drop UNKNOWN states")

	feasible, err = s.IsFeasible(expired, bridge, 100, true)
	require.NoError(t, err)
	assert.True(t, feasible, "Keep policy must retain UNKNOWN states")
}

func TestWitnessRestrictsToFormals(t *testing.T) {
	bridge, err := smt.NewPrologBridge()
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s := state.New(testFunction())
	s.Condition = smt.Conjunction{smt.Eq(smt.IntVar{Name: "a"}, smt.IntConst{Value: 3})}

	witness, err := s.Witness(ctx, bridge, []string{"a", "b"}, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(3), witness["a"])
}

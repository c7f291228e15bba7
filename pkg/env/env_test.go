package env_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swvm/symexec/pkg/env"
	"github.com/swvm/symexec/pkg/smt"
)

func TestAssignVersioning(t *testing.T) {
	e := env.New()

	first := e.Assign("a")
	assert.Equal(t, smt.IntVar{Name: "a"}, first)

	second := e.Assign("a")
	assert.Equal(t, smt.IntVar{Name: "a_1"}, second)

	third := e.Assign("a")
	assert.Equal(t, smt.IntVar{Name: "a_2"}, third)

	counter, assigned := e.Counter("a")
	assert.True(t, assigned)
	assert.Equal(t, 2, counter)
}

func TestCurrentUndefinedRead(t *testing.T) {
	e := env.New()
	_, err := e.Current("never_assigned")
	assert.True(t, errors.Is(err, env.ErrUndefinedRead))
}

func TestCurrentReturnsLatest(t *testing.T) {
	e := env.New()
	e.Assign("a")
	want := e.Assign("a")

	got, err := e.Current("a")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCloneIsIndependent(t *testing.T) {
	e := env.New()
	e.Assign("a")

	clone := e.Clone()
	clone.Assign("a")
	clone.Assign("b")

	_, originalHasB := e.Counter("b")
	assert.False(t, originalHasB)

	originalCounter, _ := e.Counter("a")
	cloneCounter, _ := clone.Counter("a")
	assert.Equal(t, 0, originalCounter)
	assert.Equal(t, 1, cloneCounter)
}

func TestEnvMonotonicity(t *testing.T) {
	e := env.New()
	for i := 0; i < 5; i++ {
		e.Assign("a")
	}
	counter, assigned := e.Counter("a")
	require.True(t, assigned)
	assert.Equal(t, counter+1, e.HistoryLen("a"))
}

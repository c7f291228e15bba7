package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/swvm/symexec/pkg/engine"
)

func TestDefaultConfig(t *testing.T) {
	cfg := engine.DefaultConfig()
	assert.Equal(t, "target", cfg.TargetName)
	assert.Equal(t, engine.Keep, cfg.OnSolverUnknown)
	assert.Equal(t, int64(256), cfg.SolverBound)
	assert.Equal(t, engine.Eager, cfg.DeepCopyMode)
}

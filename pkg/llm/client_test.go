package llm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swvm/symexec/pkg/llm"
)

func TestBuildPromptReachedGoal(t *testing.T) {
	c := llm.New()
	prompt := c.BuildPrompt(llm.WitnessReport{
		FunctionName: "non_reachable",
		Trace:        []string{"(1)\tAssign: a = 1"},
		Condition:    "(A > 0)",
		Witness:      map[string]int64{"a": 4, "b": 16},
		ReachedGoal:  true,
	})
	assert.Contains(t, prompt, "Function: non_reachable")
	assert.Contains(t, prompt, "Path Taken:")
	assert.Contains(t, prompt, "a = 4")
	assert.Contains(t, prompt, "b = 16")
	assert.Contains(t, prompt, "reaches the target() sentinel call")
}

func TestBuildPromptNoWitness(t *testing.T) {
	c := llm.New()
	prompt := c.BuildPrompt(llm.WitnessReport{
		FunctionName: "f",
		Condition:    "true",
		ReachedGoal:  false,
	})
	assert.Contains(t, prompt, "Satisfying Assignment: none found")
	assert.Contains(t, prompt, "does not reach the target()")
}

func TestChatFallsBackToMockWithoutAPIKey(t *testing.T) {
	c := llm.New()
	c.SetOpenAIKey("")
	c.SetAnthropicKey("")
	c.SetProvider(llm.ProviderOpenAI)

	prompt := c.BuildPrompt(llm.WitnessReport{FunctionName: "non_reachable", ReachedGoal: true})
	text, err := c.Chat(context.Background(), prompt)
	require.NoError(t, err)
	assert.Contains(t, text, "non_reachable")
	assert.Contains(t, text, "OPENAI_API_KEY")
}

func TestHasAPIKeyAndProviderName(t *testing.T) {
	c := llm.New()
	c.SetOpenAIKey("")
	c.SetAnthropicKey("")
	assert.False(t, c.HasAPIKey())
	assert.Equal(t, "Mock (no API key)", c.ProviderName())

	c.SetAnthropicKey("test-key")
	c.SetProvider(llm.ProviderAnthropic)
	assert.True(t, c.HasAPIKey())
	assert.Contains(t, c.ProviderName(), "Claude")
}

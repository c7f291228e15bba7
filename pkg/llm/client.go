// Package llm adapts the teacher's hand-rolled Anthropic/OpenAI chat
// client to a narrower job: turning a finished exploration's witness and
// trace into a prose explanation, instead of generating a Prolog
// specification from a user's free-text description.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
)

// Provider specifies which LLM to use.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

// Client handles LLM API interactions for witness explanations.
type Client struct {
	provider     Provider
	anthropicKey string
	openaiKey    string
	anthropicURL string
	openaiURL    string
	claudeModel  string
	gptModel     string
	httpClient   *http.Client
}

// New creates a new LLM client, defaulting to OpenAI if its key is set,
// else Anthropic, else the mock fallback — same precedence the teacher
// uses.
func New() *Client {
	c := &Client{
		anthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
		openaiKey:    os.Getenv("OPENAI_API_KEY"),
		anthropicURL: "https://api.anthropic.com/v1",
		openaiURL:    "https://api.openai.com/v1",
		claudeModel:  "claude-sonnet-4-20250514",
		gptModel:     "gpt-4o",
		httpClient:   http.DefaultClient,
	}
	if c.openaiKey != "" {
		c.provider = ProviderOpenAI
	} else if c.anthropicKey != "" {
		c.provider = ProviderAnthropic
	}
	return c
}

// SetProvider sets the LLM provider.
func (c *Client) SetProvider(p Provider) { c.provider = p }

// GetProvider returns the current provider.
func (c *Client) GetProvider() Provider { return c.provider }

// SystemPrompt steers the model to explain a symbolic execution witness
// rather than generate a specification.
const SystemPrompt = `You are a program analysis assistant that explains the output of a
forward symbolic execution engine to a developer.

You will be given:
- the function's source-like statement trace for one explored path
- the accumulated path condition, rendered as a conjunction of arithmetic
  and comparison goals
- a satisfying assignment (witness) for the function's formal parameters,
  if one was found

Explain in plain prose:
1. What sequence of branches the path takes, and why (referencing the
   path condition's constraints).
2. What concrete inputs (the witness) drive execution down that path.
3. Whether the path reaches the sentinel target() call, and if so what
   that means for the function under analysis.

Be concise. Do not invent constraints or statements that were not given
to you.`

// WitnessReport is the structured input BuildPrompt renders into prose
// for the LLM — the trace/condition/witness triple a finished
// exploration produces for one SymState.
type WitnessReport struct {
	FunctionName string
	Trace        []string
	Condition    string
	Witness      map[string]int64
	ReachedGoal  bool
}

// BuildPrompt renders a WitnessReport into the user message the chat
// call sends, the same role BuildPrompt's free-text assembly played in
// the teacher, now fed structured exploration data instead of a raw
// user message.
func (c *Client) BuildPrompt(report WitnessReport) string {
	var b bytes.Buffer

	fmt.Fprintf(&b, "Function: %s\n\n", report.FunctionName)

	b.WriteString("Path Taken:\n")
	for _, step := range report.Trace {
		fmt.Fprintf(&b, "\t%s\n", step)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Path Condition:\n\t%s\n\n", report.Condition)

	if len(report.Witness) > 0 {
		names := make([]string, 0, len(report.Witness))
		for name := range report.Witness {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("Satisfying Assignment:\n")
		for _, name := range names {
			fmt.Fprintf(&b, "\t%s = %d\n", name, report.Witness[name])
		}
		b.WriteString("\n")
	} else {
		b.WriteString("Satisfying Assignment: none found\n\n")
	}

	if report.ReachedGoal {
		b.WriteString("This path reaches the target() sentinel call.\n")
	} else {
		b.WriteString("This path does not reach the target() sentinel call.\n")
	}

	return b.String()
}

// Chat sends prompt to the configured provider and returns its
// response, falling back to a mock explanation when no API key is set.
func (c *Client) Chat(ctx context.Context, prompt string) (string, error) {
	switch c.provider {
	case ProviderOpenAI:
		if c.openaiKey == "" {
			return c.mockResponse(prompt), nil
		}
		return c.chatOpenAI(ctx, prompt)
	case ProviderAnthropic:
		if c.anthropicKey == "" {
			return c.mockResponse(prompt), nil
		}
		return c.chatAnthropic(ctx, prompt)
	default:
		return c.mockResponse(prompt), nil
	}
}

func (c *Client) chatOpenAI(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model": c.gptModel,
		"messages": []map[string]string{
			{"role": "system", "content": SystemPrompt},
			{"role": "user", "content": prompt},
		},
		"max_tokens": 1024,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.openaiURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.openaiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("OpenAI API error %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}
	return result.Choices[0].Message.Content, nil
}

func (c *Client) chatAnthropic(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model":      c.claudeModel,
		"max_tokens": 1024,
		"system":     SystemPrompt,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.anthropicURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.anthropicKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Anthropic API error %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(result.Content) == 0 {
		return "", fmt.Errorf("empty response from Anthropic")
	}
	return result.Content[0].Text, nil
}

// mockResponse gives a deterministic, API-key-free explanation by
// echoing the prompt's own structure back in prose, so cmd/symexec and
// cmd/symexecd remain usable without any credentials configured.
func (c *Client) mockResponse(prompt string) string {
	lines := strings.Split(prompt, "\n")
	var fn string
	for _, l := range lines {
		if strings.HasPrefix(l, "Function: ") {
			fn = strings.TrimPrefix(l, "Function: ")
			break
		}
	}
	reached := strings.Contains(prompt, "reaches the target()")
	if fn == "" {
		fn = "the function"
	}
	if reached {
		return fmt.Sprintf("This path through %s satisfies its accumulated constraints and reaches the target() call; see the satisfying assignment above for inputs that drive it there.\n\n(Set OPENAI_API_KEY or ANTHROPIC_API_KEY for a fuller, model-generated explanation.)", fn)
	}
	return fmt.Sprintf("This path through %s satisfies its accumulated constraints but does not reach target().\n\n(Set OPENAI_API_KEY or ANTHROPIC_API_KEY for a fuller, model-generated explanation.)", fn)
}

// SetGPTModel sets the OpenAI model to use.
func (c *Client) SetGPTModel(model string) { c.gptModel = model }

// SetClaudeModel sets the Anthropic model to use.
func (c *Client) SetClaudeModel(model string) { c.claudeModel = model }

// SetOpenAIKey sets the OpenAI API key.
func (c *Client) SetOpenAIKey(key string) { c.openaiKey = key }

// SetAnthropicKey sets the Anthropic API key.
func (c *Client) SetAnthropicKey(key string) { c.anthropicKey = key }

// HasAPIKey returns true if at least one API key is configured.
func (c *Client) HasAPIKey() bool { return c.openaiKey != "" || c.anthropicKey != "" }

// ProviderName returns a human-readable provider name.
func (c *Client) ProviderName() string {
	switch c.provider {
	case ProviderOpenAI:
		return "ChatGPT (" + c.gptModel + ")"
	case ProviderAnthropic:
		return "Claude (" + c.claudeModel + ")"
	default:
		return "Mock (no API key)"
	}
}

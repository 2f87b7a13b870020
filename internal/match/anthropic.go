package match

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
)

// AnthropicArbiter asks a Claude model whether an ambiguous
// (constraint, rule) pair refers to the same validation fact. It is the
// production tier-5 oracle; always wrap it in a Pool.
type AnthropicArbiter struct {
	client *anthropic.Client
	model  anthropic.Model
}

// DefaultArbiterModel is the model used when none is configured.
const DefaultArbiterModel = anthropic.ModelClaude3Dot5SonnetLatest

// NewAnthropicArbiter creates the oracle client. An empty model uses
// DefaultArbiterModel.
func NewAnthropicArbiter(apiKey string, model anthropic.Model) *AnthropicArbiter {
	if model == "" {
		model = DefaultArbiterModel
	}
	return &AnthropicArbiter{client: anthropic.NewClient(apiKey), model: model}
}

const arbitrationPrompt = `You are judging whether an extracted validation rule from generated code refers to the same fact as a declared constraint.

Declared constraint:
  entity: %s
  field: %s
  kind: %s

Extracted rule:
  entity: %s
  field: %s
  kind: %s
  string similarity: %.2f

Answer whether the two field names refer to the same domain concept (e.g. "unit_price" and "price" on the same entity usually do; "created_at" and "updated_at" do not).

Return ONLY JSON: {"same": true|false}`

func (a *AnthropicArbiter) Judge(ctx context.Context, p Pairing) (bool, error) {
	prompt := fmt.Sprintf(arbitrationPrompt,
		p.Constraint.Entity, p.Constraint.Field, p.Constraint.Kind,
		p.Rule.Entity, p.Rule.Field, p.Rule.Kind,
		p.Score)

	resp, err := a.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     a.model,
		MaxTokens: 64,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				{Type: "text", Text: &prompt},
			}},
		},
	})
	if err != nil {
		return false, fmt.Errorf("arbitration request: %w", err)
	}

	var verdict struct {
		Same bool `json:"same"`
	}
	text := firstText(resp)
	if err := json.Unmarshal([]byte(extractJSON(text)), &verdict); err != nil {
		return false, fmt.Errorf("arbitration response %q: %w", text, err)
	}
	return verdict.Same, nil
}

func firstText(resp anthropic.MessagesResponse) string {
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			return *block.Text
		}
	}
	return ""
}

// extractJSON trims any prose around the first JSON object in a model
// response.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

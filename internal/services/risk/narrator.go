package risk

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"auri/internal/domain/models"
	"auri/pkg/logger"
)

// Narrator produces a risk narrative for a mint. When no Gemini client is
// configured, or the model call or parse fails, it degrades silently to
// LocalDecision and reports usedFallback.
type Narrator struct {
	client      *genai.Client
	model       string
	temperature float32
	timeout     time.Duration
	log         *logger.Logger
}

// NarratorOption configures Narrator.
type NarratorOption func(*Narrator)

// WithModel sets the Gemini model name.
func WithModel(model string) NarratorOption {
	return func(n *Narrator) { n.model = model }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) NarratorOption {
	return func(n *Narrator) { n.temperature = t }
}

// WithCallTimeout bounds each model call.
func WithCallTimeout(d time.Duration) NarratorOption {
	return func(n *Narrator) { n.timeout = d }
}

// NewNarrator creates a Narrator. apiKey may be empty, in which case every
// call takes the local fallback path.
func NewNarrator(ctx context.Context, apiKey string, log *logger.Logger, opts ...NarratorOption) (*Narrator, error) {
	n := &Narrator{
		model:       "gemini-2.5-flash",
		temperature: 0.1,
		timeout:     30 * time.Second,
		log:         log,
	}
	for _, opt := range opts {
		opt(n)
	}

	if apiKey != "" {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
		if err != nil {
			return nil, fmt.Errorf("create genai client: %w", err)
		}
		n.client = client
	}

	return n, nil
}

// Model returns the configured model name, or "local" when no client exists.
func (n *Narrator) Model() string {
	if n.client == nil {
		return "local"
	}
	return n.model
}

// Narrate returns the narrative for one mint. It never fails: any model or
// parse error yields the deterministic local decision.
func (n *Narrator) Narrate(ctx context.Context, m models.TokenRiskMetrics, snapshot models.TokenMarketSnapshot) (models.RiskNarrative, string, bool) {
	if n.client == nil {
		return LocalDecision(m, snapshot), "", true
	}

	raw, err := n.generate(ctx, buildPrompt(m, snapshot))
	if err != nil {
		n.log.Warn("narrator call failed, using local decision",
			logger.String("mint", m.Mint), logger.Error(err))
		return LocalDecision(m, snapshot), raw, true
	}

	narrative, err := parseNarrative(raw, snapshot)
	if err != nil {
		n.log.Warn("narrator response unparseable, using local decision",
			logger.String("mint", m.Mint), logger.Error(err))
		return LocalDecision(m, snapshot), raw, true
	}

	return narrative, raw, false
}

// generate streams one model response and accumulates its text.
func (n *Narrator) generate(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](n.temperature),
		ResponseMIMEType: "application/json",
		Tools: []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		},
		ThinkingConfig: &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr[int32](-1),
		},
	}

	var sb strings.Builder
	for resp, err := range n.client.Models.GenerateContentStream(callCtx, n.model, genai.Text(prompt), cfg) {
		if err != nil {
			return sb.String(), fmt.Errorf("stream: %w", err)
		}
		sb.WriteString(resp.Text())
	}

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return text, fmt.Errorf("empty model response")
	}
	return text, nil
}

// parseNarrative parses the strict-JSON model output. Markdown fences are
// tolerated and stripped.
func parseNarrative(raw string, snapshot models.TokenMarketSnapshot) (models.RiskNarrative, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	var n models.RiskNarrative
	if err := json.Unmarshal([]byte(text), &n); err != nil {
		return models.RiskNarrative{}, fmt.Errorf("decode narrative: %w", err)
	}

	switch strings.ToUpper(n.Risk) {
	case RiskHigh, RiskLow:
		n.Risk = strings.ToUpper(n.Risk)
	default:
		return models.RiskNarrative{}, fmt.Errorf("unexpected risk label %q", n.Risk)
	}

	if n.Results == (models.TokenMarketSnapshot{}) {
		n.Results = snapshot
	}
	if n.Factors == nil {
		n.Factors = snapshotFactors(snapshot)
	}
	return n, nil
}

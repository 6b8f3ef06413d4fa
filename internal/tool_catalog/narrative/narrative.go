// Package narrative produces the short catalog summary for a tool from its spreadsheet row.
package narrative

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"tool-catalog/pkg/config"
)

// Generator writes a summary for one tool. An empty result means "no narrative".
type Generator interface {
	Summarize(ctx context.Context, in Input) (string, error)
}

// Input is the row context handed to the generator.
type Input struct {
	Name     string
	Vendor   string
	Category string
	Website  string
	Fields   map[string]string
}

const systemPrompt = `You write neutral catalog summaries of software tools for buyers comparing vendors.
Write two or three plain sentences. No marketing language, no lists, no headings.
Only use facts present in the input.`

// Gemini is the genai-backed Generator.
type Gemini struct {
	Log     *zap.Logger
	client  *genai.Client
	model   string
	timeout time.Duration
}

// New returns nil when no API key is configured; callers treat a nil Generator as disabled.
func New(ctx context.Context, log *zap.Logger, cfg config.NarrativeConfig) (Generator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		log.Info("Narrative generation disabled: no API key configured")
		return nil, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{
		Log:     log,
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}, nil
}

func (g *Gemini) Summarize(ctx context.Context, in Input) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(BuildPrompt(in)), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.2),
	})
	if err != nil {
		return "", fmt.Errorf("generate summary for %q: %w", in.Name, err)
	}
	text := strings.TrimSpace(resp.Text())

	g.Log.Debug("Generated summary",
		zap.String("tool", in.Name),
		zap.String("model", g.model),
		zap.Int("length", len(text)),
		zap.Duration("took", time.Since(start)),
	)
	return text, nil
}

// BuildPrompt renders the row context; fields are listed in key order.
func BuildPrompt(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tool: %s\n", in.Name)
	if in.Vendor != "" {
		fmt.Fprintf(&b, "Vendor: %s\n", in.Vendor)
	}
	if in.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", in.Category)
	}
	if in.Website != "" {
		fmt.Fprintf(&b, "Website: %s\n", in.Website)
	}
	keys := make([]string, 0, len(in.Fields))
	for k := range in.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > 0 {
		b.WriteString("Survey answers:\n")
	}
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %s\n", k, in.Fields[k])
	}
	b.WriteString("\nWrite the summary.")
	return b.String()
}

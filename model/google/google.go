// Package google provides a gateway implementation using the Gemini API via
// the google.golang.org/genai SDK. Gemini has no assistant role; CouchBot
// assistant messages map to the "model" role and system content rides in
// the generation config's SystemInstruction.
package google

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/couchbot/couchbot/core"
	"github.com/couchbot/couchbot/model"
)

// Options configures the Gemini gateway.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int32
	APIKey      string
}

// Gateway wraps the Gemini GenerateContent API behind the generic model.Gateway interface.
type Gateway struct {
	client *genai.Client
	opts   Options
}

// NewGateway creates a new Gemini gateway. Unlike the other providers the
// genai client construction can fail, so the error is surfaced here.
func NewGateway(ctx context.Context, optFns ...func(o *Options)) (*Gateway, error) {
	opts := Options{
		Model:       "gemini-2.0-flash",
		Temperature: 0.7,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	cfg := &genai.ClientConfig{}
	if opts.APIKey != "" {
		cfg.APIKey = opts.APIKey
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Gateway{client: client, opts: opts}, nil
}

// NewGatewayFromClient creates a new Gemini gateway from an existing client.
func NewGatewayFromClient(client *genai.Client, optFns ...func(o *Options)) *Gateway {
	opts := Options{
		Model:       "gemini-2.0-flash",
		Temperature: 0.7,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Gateway{client: client, opts: opts}
}

// Invoke implements model.Gateway.
func (g *Gateway) Invoke(ctx context.Context, req model.Request) (core.Message, error) {
	contents := buildContents(req.Messages)
	config := g.buildConfig(req)

	resp, err := g.client.Models.GenerateContent(ctx, g.opts.Model, contents, config)
	if err != nil {
		return core.Message{}, fmt.Errorf("gemini api error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return core.Message{}, &core.ValidationError{Reason: "gemini returned no candidates"}
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
	}
	msg := core.NewAssistantMessage(text.String())
	if resp.UsageMetadata != nil {
		msg.Usage = &core.TokenUsage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return msg, nil
}

// buildContents converts CouchBot messages to Gemini content with role
// mapping (assistant -> model, system handled via SystemInstruction, tool
// results flattened into user turns).
func buildContents(messages []core.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		var role genai.Role
		content := m.Content
		switch m.Role {
		case core.RoleUser:
			role = genai.RoleUser
		case core.RoleAssistant:
			role = genai.RoleModel
		case core.RoleTool:
			role = genai.RoleUser
			content = "Tool result: " + m.Content
		default:
			continue // system handled via config
		}
		contents = append(contents, genai.NewContentFromText(content, role))
	}
	if len(contents) == 0 {
		contents = append(contents, genai.NewContentFromText("", genai.RoleUser))
	}
	return contents
}

// buildConfig assembles the generation config, merging the request system
// string with any system messages in the history.
func (g *Gateway) buildConfig(req model.Request) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}

	var system []string
	if req.System != "" {
		system = append(system, req.System)
	}
	for _, m := range req.Messages {
		if m.Role == core.RoleSystem && m.Content != "" {
			system = append(system, m.Content)
		}
	}
	if len(system) > 0 {
		config.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}

	temp := float32(g.opts.Temperature)
	if req.Temperature > 0 {
		temp = float32(req.Temperature)
	}
	config.Temperature = &temp

	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	} else if g.opts.MaxTokens > 0 {
		config.MaxOutputTokens = g.opts.MaxTokens
	}

	return config
}

// Info returns metadata describing this Gemini gateway implementation.
func (g *Gateway) Info() model.Info {
	return model.Info{
		Name:     g.opts.Model,
		Provider: "google",
	}
}

package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/couchbot/couchbot/core"
	"github.com/couchbot/couchbot/model"
)

// ScriptedGateway is a model.Gateway whose replies are driven by substring
// rules matched against the last user message of each request. Rules are
// evaluated in registration order; the first match wins. An unmatched
// request is an error so tests fail loudly on unexpected model calls.
type ScriptedGateway struct {
	mu       sync.Mutex
	rules    []scriptRule
	requests []model.Request
}

type scriptRule struct {
	contains string
	reply    string
	err      error
}

// NewScriptedGateway creates an empty scripted gateway.
func NewScriptedGateway() *ScriptedGateway { return &ScriptedGateway{} }

// On registers a reply for requests whose last user message contains the
// given substring (chainable).
func (g *ScriptedGateway) On(contains, reply string) *ScriptedGateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rules = append(g.rules, scriptRule{contains: contains, reply: reply})
	return g
}

// OnErr registers an error for requests whose last user message contains
// the given substring (chainable).
func (g *ScriptedGateway) OnErr(contains string, err error) *ScriptedGateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rules = append(g.rules, scriptRule{contains: contains, err: err})
	return g
}

// Invoke implements model.Gateway.
func (g *ScriptedGateway) Invoke(_ context.Context, req model.Request) (core.Message, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)

	prompt := lastUserContent(req)
	for _, r := range g.rules {
		if r.contains != "" && strings.Contains(prompt, r.contains) {
			if r.err != nil {
				return core.Message{}, r.err
			}
			return core.NewAssistantMessage(r.reply), nil
		}
	}
	return core.Message{}, fmt.Errorf("scripted gateway: no rule matches prompt %.80q", prompt)
}

// Info implements model.Gateway.
func (g *ScriptedGateway) Info() model.Info {
	return model.Info{Name: "scripted", Provider: "testutil"}
}

// CallCount returns how many requests the gateway has served.
func (g *ScriptedGateway) CallCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

// Requests returns a copy of all requests seen so far.
func (g *ScriptedGateway) Requests() []model.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]model.Request, len(g.requests))
	copy(out, g.requests)
	return out
}

func lastUserContent(req model.Request) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == core.RoleUser {
			return req.Messages[i].Content
		}
	}
	return ""
}

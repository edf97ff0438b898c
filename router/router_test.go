package router

import (
	"context"
	"testing"
	"time"

	"github.com/couchbot/couchbot/core"
	"github.com/couchbot/couchbot/dialog"
	"github.com/couchbot/couchbot/internal/testutil"
	"github.com/couchbot/couchbot/model"
	"github.com/couchbot/couchbot/render"
	"github.com/couchbot/couchbot/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mediaStub struct {
	calls int
	reply core.Reply
	err   error
}

func (m *mediaStub) HandleTurn(_ context.Context, _, _ string, _ []core.Message) (core.Reply, error) {
	m.calls++
	return m.reply, m.err
}

// sequenceGateway returns scripted assistant messages in order; used where
// tool-call responses are needed.
type sequenceGateway struct {
	replies []core.Message
	calls   int
}

func (g *sequenceGateway) Invoke(_ context.Context, _ model.Request) (core.Message, error) {
	i := g.calls
	if i >= len(g.replies) {
		i = len(g.replies) - 1
	}
	g.calls++
	return g.replies[i], nil
}

func (g *sequenceGateway) Info() model.Info { return model.Info{Name: "sequence", Provider: "test"} }

func fastExecutor() *resilience.Executor {
	return resilience.New(func(o *resilience.Options) {
		o.Sleep = func(ctx context.Context, d time.Duration) error { return nil }
	})
}

func newRouter(gw model.Gateway, contexts dialog.Store, media MediaHandler, optFns ...func(o *Options)) *Router {
	base := func(o *Options) {
		o.SystemPrompt = "You are CouchBot."
		o.Renderer = render.NewFake()
		o.Executor = fastExecutor()
	}
	return New(gw, contexts, media, append([]func(o *Options){base}, optFns...)...)
}

func TestDefaultChatTurn(t *testing.T) {
	gw := testutil.NewScriptedGateway().
		On("Classify the user's message", "default").
		On("capital of france", "Paris.")
	r := newRouter(gw, dialog.NewInMemoryStore(), &mediaStub{})

	reply, history, err := r.HandleTurn(context.Background(), "u1", "what's the capital of france?", nil)

	require.NoError(t, err)
	assert.Equal(t, "Paris.", reply.Content)
	require.Len(t, history, 3)
	assert.True(t, history[0].IsSystemPrompt())
	assert.Equal(t, core.RoleUser, history[1].Role)
	assert.Equal(t, core.RoleAssistant, history[2].Role)
}

func TestLiveWorkflowSkipsClassification(t *testing.T) {
	gw := testutil.NewScriptedGateway()
	contexts := dialog.NewInMemoryStore()
	contexts.Set("u1", core.NewWorkflowContext(core.WorkflowMovieDownload, "heat", []core.Candidate{testutil.Movie("Heat", 1995)}))
	media := &mediaStub{reply: core.TextReply("which one?")}
	r := newRouter(gw, contexts, media)

	reply, _, err := r.HandleTurn(context.Background(), "u1", "the first one", nil)

	require.NoError(t, err)
	assert.Equal(t, "which one?", reply.Content)
	assert.Equal(t, 1, media.calls)
	assert.Equal(t, 0, gw.CallCount(), "a live workflow must bypass model classification")
}

func TestUnparseableCategoryApologizes(t *testing.T) {
	gw := testutil.NewScriptedGateway().On("gibberish", "I think this might be about movies?")
	r := newRouter(gw, dialog.NewInMemoryStore(), &mediaStub{})

	reply, _, err := r.HandleTurn(context.Background(), "u1", "gibberish", nil)

	require.NoError(t, err)
	assert.Equal(t, apologyReply, reply.Content)
}

func TestTokenCeilingDropsHistory(t *testing.T) {
	gw := testutil.NewScriptedGateway().
		On("Classify the user's message", "default").
		On("hello again", "Hi!")
	r := newRouter(gw, dialog.NewInMemoryStore(), &mediaStub{})

	old := core.NewAssistantMessage("a very long conversation")
	old.Usage = &core.TokenUsage{TotalTokens: DefaultTokenCeiling}
	history := []core.Message{core.NewUserMessage("earlier"), old}

	_, updated, err := r.HandleTurn(context.Background(), "u1", "hello again", history)

	require.NoError(t, err)
	require.Len(t, updated, 3, "old history must be dropped at the ceiling")
	assert.True(t, updated[0].IsSystemPrompt())
	assert.Equal(t, "hello again", updated[1].Content)
}

func TestHistoryBelowCeilingKeptAndPersonaNotDuplicated(t *testing.T) {
	gw := testutil.NewScriptedGateway().
		On("Classify the user's message", "default").
		On("one more", "Sure.")
	r := newRouter(gw, dialog.NewInMemoryStore(), &mediaStub{})

	old := core.NewAssistantMessage("hi")
	old.Usage = &core.TokenUsage{TotalTokens: 500}
	history := []core.Message{core.NewSystemMessage("You are CouchBot."), core.NewUserMessage("hey"), old}

	_, updated, err := r.HandleTurn(context.Background(), "u1", "and one more", history)

	require.NoError(t, err)
	require.Len(t, updated, 5)
	personas := 0
	for _, m := range updated {
		if m.IsSystemPrompt() {
			personas++
		}
	}
	assert.Equal(t, 1, personas)
}

func TestToolLoop(t *testing.T) {
	withTools := core.NewAssistantMessage("")
	withTools.ToolCalls = []core.ToolCallRecord{{ID: "call-1", Name: "clock", Arguments: "{}"}}
	gw := &sequenceGateway{replies: []core.Message{
		core.NewAssistantMessage("default"),
		withTools,
		core.NewAssistantMessage("It is noon."),
	}}

	tools := NewRegistry()
	executed := 0
	tools.Register(model.ToolDefinition{Name: "clock", Description: "current time"}, func(_ context.Context, _ string) (string, error) {
		executed++
		return "12:00", nil
	})

	r := newRouter(gw, dialog.NewInMemoryStore(), &mediaStub{}, func(o *Options) {
		o.Tools = tools
	})

	reply, history, err := r.HandleTurn(context.Background(), "u1", "what time is it?", nil)

	require.NoError(t, err)
	assert.Equal(t, "It is noon.", reply.Content)
	assert.Equal(t, 1, executed)

	var sawToolResult bool
	for _, m := range history {
		if m.Role == core.RoleTool {
			sawToolResult = true
			assert.Equal(t, "call-1", m.ToolCallID)
			assert.Equal(t, "12:00", m.Content)
		}
	}
	assert.True(t, sawToolResult)
}

func TestToolRoundBudget(t *testing.T) {
	withTools := core.NewAssistantMessage("")
	withTools.ToolCalls = []core.ToolCallRecord{{ID: "c", Name: "clock", Arguments: "{}"}}
	gw := &sequenceGateway{replies: []core.Message{
		core.NewAssistantMessage("default"),
		withTools, // every subsequent call requests tools again
	}}

	tools := NewRegistry()
	tools.Register(model.ToolDefinition{Name: "clock"}, func(_ context.Context, _ string) (string, error) {
		return "12:00", nil
	})

	r := newRouter(gw, dialog.NewInMemoryStore(), &mediaStub{}, func(o *Options) {
		o.Tools = tools
		o.MaxToolRounds = 2
	})

	reply, _, err := r.HandleTurn(context.Background(), "u1", "what time is it?", nil)

	require.NoError(t, err)
	assert.Contains(t, reply.Content, "couldn't finish")
}

func TestMathTurnRendersEquation(t *testing.T) {
	gw := testutil.NewScriptedGateway().
		On("Classify the user's message", "math").
		On("Convert the mathematical content", `\int x^2 \, dx`)
	renderer := render.NewFake()
	r := newRouter(gw, dialog.NewInMemoryStore(), &mediaStub{}, func(o *Options) {
		o.Renderer = renderer
	})

	reply, _, err := r.HandleTurn(context.Background(), "u1", "integrate x squared", nil)

	require.NoError(t, err)
	require.Len(t, reply.Images, 1)
	require.Len(t, renderer.Specs, 1)
	assert.Equal(t, render.KindEquation, renderer.Specs[0].Kind)
	assert.Equal(t, `\int x^2 \, dx`, renderer.Specs[0].Input)
}

func TestImageTurnRendersPrompt(t *testing.T) {
	gw := testutil.NewScriptedGateway().
		On("Classify the user's message", "image").
		On("Rewrite the user's message", "a watercolor castle at dusk")
	renderer := render.NewFake()
	r := newRouter(gw, dialog.NewInMemoryStore(), &mediaStub{}, func(o *Options) {
		o.Renderer = renderer
	})

	reply, _, err := r.HandleTurn(context.Background(), "u1", "draw me a castle", nil)

	require.NoError(t, err)
	require.Len(t, reply.Images, 1)
	assert.Equal(t, render.KindImage, renderer.Specs[0].Kind)
	assert.Equal(t, "a watercolor castle at dusk", renderer.Specs[0].Input)
}

func TestChatModelFailureEchoesDiagnostic(t *testing.T) {
	gw := testutil.NewScriptedGateway().
		On("Classify the user's message", "default")
	// No rule matches the chat request itself, so Invoke fails.
	r := newRouter(gw, dialog.NewInMemoryStore(), &mediaStub{})

	reply, _, err := r.HandleTurn(context.Background(), "u1", "hello there", nil)

	require.NoError(t, err)
	assert.Contains(t, reply.Content, "technical problem")
}

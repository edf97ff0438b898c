// Package router implements the per-turn dialogue state machine. A turn
// walks an explicit node graph: classify the response category (or skip
// classification when a live media workflow exists), trim oversized
// histories, inject the persona prompt, then dispatch to the handler node
// for the category. The default handler loops through tool execution until
// the model stops requesting tools.
package router

import (
	"context"
	"fmt"

	"github.com/couchbot/couchbot/core"
	"github.com/couchbot/couchbot/dialog"
	"github.com/couchbot/couchbot/internal/util"
	"github.com/couchbot/couchbot/logging"
	"github.com/couchbot/couchbot/model"
	"github.com/couchbot/couchbot/render"
	"github.com/couchbot/couchbot/resilience"
)

// Node identifies one state of the per-turn dialogue graph.
type Node string

const (
	NodeStart             Node = "start"
	NodeCheckResponseType Node = "check_response_type"
	NodeTrimMessages      Node = "trim_messages"
	NodeAddSystemPrompt   Node = "add_system_prompt"
	NodeRespondDefault    Node = "respond_default"
	NodeRespondMath       Node = "respond_math"
	NodeRespondImage      Node = "respond_image"
	NodeRespondMedia      Node = "respond_media"
	NodeInvokeTools       Node = "invoke_tools"
	NodeEnd               Node = "end"
)

// Category is the classified response type of a turn.
type Category string

const (
	CategoryDefault Category = "default"
	CategoryMath    Category = "math"
	CategoryImage   Category = "image"
	CategoryMedia   Category = "media"
)

// Defaults applied when the corresponding option is zero.
const (
	// DefaultTokenCeiling is the reported-usage threshold above which the
	// accumulated history is dropped for a fresh context.
	DefaultTokenCeiling = 100000
	// DefaultMaxToolRounds bounds the tool-execution loop per turn.
	DefaultMaxToolRounds = 5
)

// MediaHandler is the media resolver boundary as the router sees it.
type MediaHandler interface {
	HandleTurn(ctx context.Context, userID, input string, history []core.Message) (core.Reply, error)
}

// turnState is the mutable state threaded through one walk of the graph.
type turnState struct {
	userID   string
	input    string
	messages []core.Message
	category Category
	pending  core.Message // last assistant message, possibly carrying tool calls
	rounds   int          // completed tool-execution rounds
	reply    core.Reply
}

// transition returns the successor node for the current node and turn
// state. It is pure: all side effects live in the node actions.
func transition(n Node, st *turnState, maxRounds int) Node {
	switch n {
	case NodeStart:
		return NodeCheckResponseType
	case NodeCheckResponseType:
		return NodeTrimMessages
	case NodeTrimMessages:
		return NodeAddSystemPrompt
	case NodeAddSystemPrompt:
		switch st.category {
		case CategoryMath:
			return NodeRespondMath
		case CategoryImage:
			return NodeRespondImage
		case CategoryMedia:
			return NodeRespondMedia
		default:
			return NodeRespondDefault
		}
	case NodeRespondDefault:
		if st.pending.HasToolCalls() && st.rounds < maxRounds {
			return NodeInvokeTools
		}
		return NodeEnd
	case NodeInvokeTools:
		return NodeRespondDefault
	default:
		return NodeEnd
	}
}

// Options configures a Router.
type Options struct {
	SystemPrompt  string
	TokenCeiling  int
	MaxToolRounds int
	Tools         ToolSet
	Renderer      render.Renderer
	Executor      *resilience.Executor
	Logger        logging.Logger
}

// Router drives one conversation turn through the dialogue graph.
type Router struct {
	gateway       model.Gateway
	contexts      dialog.Store
	media         MediaHandler
	renderer      render.Renderer
	tools         ToolSet
	exec          *resilience.Executor
	logger        logging.Logger
	systemPrompt  string
	tokenCeiling  int
	maxToolRounds int
}

// New wires a Router from its collaborators.
func New(gateway model.Gateway, contexts dialog.Store, media MediaHandler, optFns ...func(o *Options)) *Router {
	opts := Options{
		TokenCeiling:  DefaultTokenCeiling,
		MaxToolRounds: DefaultMaxToolRounds,
		Executor:      resilience.New(),
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Router{
		gateway:       gateway,
		contexts:      contexts,
		media:         media,
		renderer:      opts.Renderer,
		tools:         opts.Tools,
		exec:          opts.Executor,
		logger:        opts.Logger,
		systemPrompt:  opts.SystemPrompt,
		tokenCeiling:  opts.TokenCeiling,
		maxToolRounds: opts.MaxToolRounds,
	}
}

// HandleTurn runs one turn through the graph and returns the reply together
// with the updated message history. The caller owns persisting the history.
// Unexpected errors never escape: the turn degrades to an apology reply.
func (r *Router) HandleTurn(ctx context.Context, userID, input string, history []core.Message) (core.Reply, []core.Message, error) {
	st := &turnState{userID: userID, input: input, messages: history}

	for node := NodeStart; node != NodeEnd; node = transition(node, st, r.maxToolRounds) {
		if err := r.runNode(ctx, node, st); err != nil {
			r.logger.Error("turn failed", "user_id", userID, "node", string(node), "error", err.Error())
			r.contexts.Clear(userID)
			st.reply = core.TextReply(apologyReply)
			break
		}
	}
	return st.reply, st.messages, nil
}

func (r *Router) runNode(ctx context.Context, node Node, st *turnState) error {
	switch node {
	case NodeStart:
		return nil
	case NodeCheckResponseType:
		return r.checkResponseType(ctx, st)
	case NodeTrimMessages:
		r.trimMessages(st)
		return nil
	case NodeAddSystemPrompt:
		r.addSystemPrompt(st)
		return nil
	case NodeRespondDefault:
		return r.respondDefault(ctx, st)
	case NodeInvokeTools:
		return r.invokeTools(ctx, st)
	case NodeRespondMath:
		return r.respondMath(ctx, st)
	case NodeRespondImage:
		return r.respondImage(ctx, st)
	case NodeRespondMedia:
		return r.respondMedia(ctx, st)
	default:
		return fmt.Errorf("router: no action for node %q", node)
	}
}

// checkResponseType resolves the turn's category. A live media workflow for
// the user skips model classification entirely: it is both the latency
// optimization and the mechanism by which multi-turn selection dialogues
// continue without re-classifying intent each turn.
func (r *Router) checkResponseType(ctx context.Context, st *turnState) error {
	if r.contexts.Has(st.userID) {
		st.category = CategoryMedia
		r.logger.Debug("live workflow found, skipping classification", "user_id", st.userID)
		return nil
	}

	msg, err := resilience.Do(ctx, r.exec, "model.classify_category", func(ctx context.Context) (core.Message, error) {
		return r.gateway.Invoke(ctx, model.Request{
			Messages: []core.Message{core.NewUserMessage(categoryPrompt + st.input)},
		})
	})
	if err != nil {
		return err
	}

	token, err := util.ParseToken(msg.Content, string(CategoryDefault), string(CategoryMath), string(CategoryImage), string(CategoryMedia))
	if err != nil {
		return &core.UnhandledResponseError{Category: msg.Content}
	}
	st.category = Category(token)
	r.logger.Debug("turn classified", "user_id", st.userID, "category", token)
	return nil
}

// trimMessages drops the accumulated history when the most recent assistant
// message reports token usage at or above the ceiling.
func (r *Router) trimMessages(st *turnState) {
	for i := len(st.messages) - 1; i >= 0; i-- {
		m := st.messages[i]
		if m.Role != core.RoleAssistant {
			continue
		}
		if m.Usage != nil && m.Usage.TotalTokens >= r.tokenCeiling {
			r.logger.Info("token ceiling reached, starting fresh context",
				"user_id", st.userID, "total_tokens", m.Usage.TotalTokens)
			st.messages = nil
		}
		return
	}
}

// addSystemPrompt ensures exactly one persona prompt heads the history,
// then appends the new user message.
func (r *Router) addSystemPrompt(st *turnState) {
	if r.systemPrompt != "" && !hasSystemPrompt(st.messages) {
		st.messages = append([]core.Message{core.NewSystemMessage(r.systemPrompt)}, st.messages...)
	}
	st.messages = append(st.messages, core.NewUserMessage(st.input))
}

func hasSystemPrompt(messages []core.Message) bool {
	for _, m := range messages {
		if m.IsSystemPrompt() {
			return true
		}
	}
	return false
}

package router

import (
	"context"
	"strings"

	"github.com/couchbot/couchbot/core"
	"github.com/couchbot/couchbot/model"
	"github.com/couchbot/couchbot/render"
	"github.com/couchbot/couchbot/resilience"
)

// respondDefault runs general chat generation. The model may answer
// directly or request tool execution; tool requests park the assistant
// message in st.pending and the graph loops through NodeInvokeTools until
// the model produces plain text or the round budget runs out.
//
// Model failures here take the diagnostic echo path: direct chat is where
// users report problems, so the error summary goes into the reply instead
// of a generic apology.
func (r *Router) respondDefault(ctx context.Context, st *turnState) error {
	req := model.Request{
		System:   r.systemPrompt,
		Messages: withoutSystemPrompt(st.messages),
	}
	if r.tools != nil {
		req.Tools = r.tools.Definitions()
	}

	msg, err := resilience.Do(ctx, r.exec, "model.chat", func(ctx context.Context) (core.Message, error) {
		return r.gateway.Invoke(ctx, req)
	})
	if err != nil {
		r.logger.Error("chat generation failed", "user_id", st.userID, "error", err.Error())
		st.pending = core.Message{}
		st.reply = core.TextReply("I ran into a technical problem answering that: " + err.Error())
		return nil
	}

	st.messages = append(st.messages, msg)
	st.pending = msg
	if msg.HasToolCalls() {
		if st.rounds >= r.maxToolRounds {
			r.logger.Warn("tool round budget exhausted", "user_id", st.userID, "rounds", st.rounds)
			st.pending = core.Message{}
			st.reply = core.TextReply("I couldn't finish that: it needed more tool calls than I allow in one turn.")
		}
		return nil
	}
	st.reply = core.TextReply(msg.Content)
	return nil
}

// invokeTools executes every tool call in the pending assistant message and
// appends the results to the history. Tool errors become tool-result
// content so the model can react to them.
func (r *Router) invokeTools(ctx context.Context, st *turnState) error {
	for _, call := range st.pending.ToolCalls {
		result, err := r.tools.Execute(ctx, call.Name, call.Arguments)
		if err != nil {
			r.logger.Warn("tool execution failed", "tool", call.Name, "error", err.Error())
		}
		st.messages = append(st.messages, core.NewToolResultMessage(call.ID, result, err))
	}
	st.rounds++
	st.pending = core.Message{}
	return nil
}

// respondMath extracts LaTeX from the question and renders it to an image.
func (r *Router) respondMath(ctx context.Context, st *turnState) error {
	msg, err := resilience.Do(ctx, r.exec, "model.math", func(ctx context.Context) (core.Message, error) {
		return r.gateway.Invoke(ctx, model.Request{
			Messages: []core.Message{core.NewUserMessage(mathPrompt + st.input)},
		})
	})
	if err != nil {
		return err
	}

	latex := strings.TrimSpace(msg.Content)
	image, err := r.renderer.Render(ctx, render.Spec{
		Kind:  render.KindEquation,
		Input: latex,
		Title: "Rendered equation",
	})
	if err != nil {
		return err
	}

	st.reply = core.Reply{Content: "Here's that equation rendered:", Images: []core.Image{image}}
	st.messages = append(st.messages, core.NewAssistantMessage(st.reply.Content))
	return nil
}

// respondImage refines the request into a generation prompt, renders it and
// attaches the result.
func (r *Router) respondImage(ctx context.Context, st *turnState) error {
	msg, err := resilience.Do(ctx, r.exec, "model.image", func(ctx context.Context) (core.Message, error) {
		return r.gateway.Invoke(ctx, model.Request{
			Messages: []core.Message{core.NewUserMessage(imagePrompt + st.input)},
		})
	})
	if err != nil {
		return err
	}

	prompt := strings.TrimSpace(msg.Content)
	image, err := r.renderer.Render(ctx, render.Spec{
		Kind:  render.KindImage,
		Input: prompt,
		Title: prompt,
	})
	if err != nil {
		return err
	}

	st.reply = core.Reply{Content: "Here you go:", Images: []core.Image{image}}
	st.messages = append(st.messages, core.NewAssistantMessage(st.reply.Content))
	return nil
}

// respondMedia hands the turn to the media resolver. History is passed
// without the persona prompt; the resolver builds its own prompts.
func (r *Router) respondMedia(ctx context.Context, st *turnState) error {
	reply, err := r.media.HandleTurn(ctx, st.userID, st.input, withoutSystemPrompt(st.messages))
	if err != nil {
		return err
	}
	st.reply = reply
	st.messages = append(st.messages, core.NewAssistantMessage(reply.Content))
	return nil
}

// withoutSystemPrompt filters the persona message; gateways receive it via
// Request.System instead.
func withoutSystemPrompt(messages []core.Message) []core.Message {
	out := make([]core.Message, 0, len(messages))
	for _, m := range messages {
		if m.IsSystemPrompt() {
			continue
		}
		out = append(out, m)
	}
	return out
}

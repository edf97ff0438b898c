// Package media implements the media request resolver: the strategy layer
// that routes a media-category turn across {movie, series} x {download,
// delete, browse} x {new search, continuing selection}. It drives each
// workflow to completion or to a clarifying re-prompt, storing in-progress
// state in the dialog store and wrapping every model and catalog call in
// the resilience layer.
package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/couchbot/couchbot/catalog"
	"github.com/couchbot/couchbot/core"
	"github.com/couchbot/couchbot/dialog"
	"github.com/couchbot/couchbot/internal/util"
	"github.com/couchbot/couchbot/logging"
	"github.com/couchbot/couchbot/model"
	"github.com/couchbot/couchbot/resilience"
	"github.com/couchbot/couchbot/selection"
)

// DefaultMaxCandidates caps how many search results a workflow context
// stores and shows.
const DefaultMaxCandidates = 5

// Options configures a Resolver.
type Options struct {
	MaxCandidates int
	Executor      *resilience.Executor
	Logger        logging.Logger
}

// Resolver handles media-category turns. It is stateless apart from its
// collaborators; all mutable per-user state lives in the dialog store, so a
// single Resolver serves all users concurrently.
type Resolver struct {
	gateway       model.Gateway
	movies        catalog.Client
	series        catalog.Client
	contexts      dialog.Store
	exec          *resilience.Executor
	logger        logging.Logger
	maxCandidates int
}

// NewResolver wires a Resolver from its collaborators.
func NewResolver(gateway model.Gateway, movies, series catalog.Client, contexts dialog.Store, optFns ...func(o *Options)) *Resolver {
	opts := Options{
		MaxCandidates: DefaultMaxCandidates,
		Executor:      resilience.New(),
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Resolver{
		gateway:       gateway,
		movies:        movies,
		series:        series,
		contexts:      contexts,
		exec:          opts.Executor,
		logger:        opts.Logger,
		maxCandidates: opts.MaxCandidates,
	}
}

// HandleTurn processes one media-category turn. Unexpected errors never
// escape: the user's context is cleared (fail safe to a clean slate) and a
// generic apology is returned, so the caller always has a reply to post.
func (r *Resolver) HandleTurn(ctx context.Context, userID, input string, history []core.Message) (core.Reply, error) {
	reply, err := r.handle(ctx, userID, input, history)
	if err != nil {
		r.logger.Error("media turn failed", "user_id", userID, "error", err.Error())
		r.contexts.Clear(userID)
		return core.TextReply(apologyMessage), nil
	}
	return reply, nil
}

func (r *Resolver) handle(ctx context.Context, userID, input string, history []core.Message) (core.Reply, error) {
	if wc, ok := r.contexts.Get(userID); ok {
		return r.continueWorkflow(ctx, userID, input, history, wc)
	}
	return r.startWorkflow(ctx, userID, input, history)
}

// startWorkflow handles a turn with no live context: status bypass, intent
// classification, then the download/delete/browse strategies.
func (r *Resolver) startWorkflow(ctx context.Context, userID, input string, history []core.Message) (core.Reply, error) {
	// Status queries bypass classification entirely so the reply is always
	// grounded in live queue data.
	if isStatusQuery(input) {
		return r.handleStatus(ctx, input)
	}

	intent, err := r.classifyIntent(ctx, input)
	if err != nil {
		if _, ok := errAsValidation(err); ok {
			// The model produced garbage; ask the user instead of guessing.
			r.logger.Warn("media intent unparseable", "user_id", userID, "error", err.Error())
			return core.TextReply("I couldn't quite work out what you'd like me to do with that. Could you rephrase it?"), nil
		}
		return core.Reply{}, err
	}

	r.logger.Debug("media intent classified",
		"user_id", userID,
		"action", intent.Action,
		"media_type", intent.MediaType,
		"terms", intent.SearchTerms,
	)

	switch intent.Action {
	case actionDownload:
		return r.handleDownload(ctx, userID, intent)
	case actionDelete:
		return r.handleDelete(ctx, userID, intent)
	default:
		return r.handleBrowse(ctx, input, intent)
	}
}

// continueWorkflow treats the turn as input to an existing workflow: check
// for a topic switch, parse the new utterance as a selection, merge with
// the stored references and either execute, ask for granularity, or
// re-prompt with the same candidate list.
func (r *Resolver) continueWorkflow(ctx context.Context, userID, input string, history []core.Message, wc core.WorkflowContext) (core.Reply, error) {
	// Selection (download) workflows get a topic-switch escape hatch before
	// the utterance is forced into the old selection flow.
	if !wc.Kind.IsDelete() {
		if r.detectTopicSwitch(ctx, input, wc) {
			r.logger.Info("topic switch detected, abandoning workflow", "user_id", userID, "kind", string(wc.Kind))
			r.contexts.Clear(userID)
			return r.startWorkflow(ctx, userID, input, history)
		}
	}

	ref, granular := r.parseSelection(ctx, input)

	// Merge with references captured when the workflow was created.
	if ref == nil {
		ref = wc.SelectionRef
	}
	if granular == nil {
		granular = wc.Granular
	}

	var chosen *core.Candidate
	switch {
	case len(wc.Candidates) == 1:
		chosen = &wc.Candidates[0]
	case ref != nil:
		chosen = selection.Resolve(*ref, wc.Candidates)
	}

	if chosen == nil {
		// Still ambiguous: self-loop on the same candidate list.
		return choicePrompt(workflowVerb(wc.Kind), wc.Candidates), nil
	}

	needsGranularity := !wc.Kind.IsDelete() && chosen.Type == core.MediaTypeSeries && !granular.Specified()
	if needsGranularity {
		narrowed := wc
		narrowed.Candidates = []core.Candidate{*chosen}
		narrowed.SelectionRef = ref
		r.contexts.Set(userID, narrowed)
		return granularityPrompt(*chosen), nil
	}

	r.contexts.Clear(userID)
	return r.execute(ctx, wc.Kind, *chosen, granular)
}

// execute performs the terminal catalog operation for a resolved workflow.
// The catalog client is picked from the candidate's own media type so mixed
// movie/series candidate lists route correctly.
func (r *Resolver) execute(ctx context.Context, kind core.WorkflowKind, c core.Candidate, granular *core.GranularSelection) (core.Reply, error) {
	client := r.clientFor(c.Type)

	if kind.IsDelete() {
		_, err := resilience.Do(ctx, r.exec, "catalog.delete", func(ctx context.Context) (struct{}, error) {
			return struct{}{}, client.UnmonitorAndDelete(ctx, c.ExternalID, catalog.DeleteOptions{DeleteFiles: true})
		})
		if err != nil {
			return core.Reply{}, err
		}
		return core.TextReply(fmt.Sprintf("Deleted %s from the library.", titleWithYear(c))), nil
	}

	_, err := resilience.Do(ctx, r.exec, "catalog.add", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, client.AddAndMonitor(ctx, c.ExternalID, catalog.AddOptions{Granular: granular})
	})
	if err != nil {
		return core.Reply{}, err
	}

	if c.Type == core.MediaTypeSeries && granular.Specified() && !granular.WholeSeries() {
		return core.TextReply(fmt.Sprintf("Got it - grabbing %s of %s.", describeGranular(granular), titleWithYear(c))), nil
	}
	return core.TextReply(fmt.Sprintf("Got it - %s is on its way.", titleWithYear(c))), nil
}

// parseSelection extracts selection/granular references from a continuation
// utterance: cheap heuristics first, one model round-trip as fallback.
// Failures are never fatal; (nil, nil) simply re-prompts.
func (r *Resolver) parseSelection(ctx context.Context, input string) (*core.SelectionRef, *core.GranularSelection) {
	ref := parseSelectionHeuristic(input)
	granular := parseGranularHeuristic(input)
	if ref != nil || granular != nil {
		return ref, granular
	}

	msg, err := r.invokeModel(ctx, "model.parse_selection", selectionPrompt+input)
	if err != nil {
		r.logger.Warn("selection parse model call failed", "error", err.Error())
		return nil, nil
	}
	payload, err := util.DecodeJSON[struct {
		Selection *selectionPayload `json:"selection"`
		Granular  *granularPayload  `json:"granular"`
	}](msg.Content)
	if err != nil {
		// Parse failures are not retried against the model; the caller
		// re-prompts instead.
		r.logger.Debug("selection parse unparseable", "raw", msg.Content)
		return nil, nil
	}
	return payload.Selection.toRef(), payload.Granular.toGranular()
}

// detectTopicSwitch asks the model a binary question: did the user abandon
// the pending selection? Model failure counts as "no switch" so a flaky
// model cannot wipe a healthy workflow.
func (r *Resolver) detectTopicSwitch(ctx context.Context, input string, wc core.WorkflowContext) bool {
	// Obvious selections skip the model round-trip.
	if parseSelectionHeuristic(input) != nil || parseGranularHeuristic(input) != nil {
		return false
	}

	prompt := fmt.Sprintf(topicSwitchPrompt, wc.Query) + input
	msg, err := r.invokeModel(ctx, "model.topic_switch", prompt)
	if err != nil {
		r.logger.Warn("topic switch check failed", "error", err.Error())
		return false
	}
	answer, err := util.ParseToken(msg.Content, "yes", "no")
	if err != nil {
		return false
	}
	return answer == "yes"
}

// invokeModel runs a single-prompt model call through the resilience layer.
func (r *Resolver) invokeModel(ctx context.Context, label, prompt string) (core.Message, error) {
	return resilience.Do(ctx, r.exec, label, func(ctx context.Context) (core.Message, error) {
		return r.gateway.Invoke(ctx, model.Request{
			Messages: []core.Message{core.NewUserMessage(prompt)},
		})
	})
}

func (r *Resolver) clientFor(t core.MediaType) catalog.Client {
	if t == core.MediaTypeSeries {
		return r.series
	}
	return r.movies
}

func workflowVerb(kind core.WorkflowKind) string {
	if kind.IsDelete() {
		return "delete"
	}
	return "download"
}

func errAsValidation(err error) (*core.ValidationError, bool) {
	var verr *core.ValidationError
	ok := errors.As(err, &verr)
	return verr, ok
}

// Package couchbot provides a high-level façade over the dialogue router,
// media resolver and supporting services (dialog store, resilience layer,
// logging) for building a conversational media assistant. Most applications
// interact with this package by:
//  1. Creating a Bot via New() with a model gateway and catalog clients
//  2. Calling HandleTurn per incoming user message
//  3. Persisting the returned message history in their own conversation log
//
// The façade delegates orchestration to router.Router while keeping setup
// ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply a structured logger and
// tuned retry policy.
package couchbot

import (
	"context"

	"github.com/couchbot/couchbot/catalog"
	"github.com/couchbot/couchbot/core"
	"github.com/couchbot/couchbot/dialog"
	"github.com/couchbot/couchbot/logging"
	"github.com/couchbot/couchbot/media"
	"github.com/couchbot/couchbot/model"
	"github.com/couchbot/couchbot/render"
	"github.com/couchbot/couchbot/resilience"
	"github.com/couchbot/couchbot/router"
)

// DefaultSystemPrompt is the persona used when none is supplied.
const DefaultSystemPrompt = "You are CouchBot, a friendly assistant that helps manage a home media library. Keep replies short and conversational."

// Options configures a Bot.
type Options struct {
	// Gateway is the language model used for classification, parsing and
	// chat. Required.
	Gateway model.Gateway

	// MovieCatalog and SeriesCatalog are the media-catalog services.
	// Required for media turns; a nil catalog fails those turns gracefully.
	MovieCatalog  catalog.Client
	SeriesCatalog catalog.Client

	// Contexts stores in-progress media workflows. Defaults to an
	// in-memory store with the standard TTL.
	Contexts dialog.Store

	// Renderer serves math and image turns. Optional.
	Renderer render.Renderer

	// Tools are exposed to the default chat handler. Optional.
	Tools router.ToolSet

	// Executor wraps every model and catalog call. Defaults to the
	// standard retry policy.
	Executor *resilience.Executor

	// Logger defaults to NoOp.
	Logger logging.Logger

	// SystemPrompt overrides the default persona.
	SystemPrompt string

	// TokenCeiling overrides the history-trim threshold.
	TokenCeiling int

	// MaxCandidates caps stored media search results per workflow.
	MaxCandidates int
}

// Bot is the high-level façade aggregating the router and media resolver.
type Bot struct {
	opts     Options
	router   *router.Router
	contexts dialog.Store
}

// New creates a Bot with optional overrides. Any unset service is
// initialized with an in-memory implementation.
func New(gateway model.Gateway, movies, series catalog.Client, optFns ...func(o *Options)) *Bot {
	opts := Options{
		Gateway:       gateway,
		MovieCatalog:  movies,
		SeriesCatalog: series,
		Contexts:      dialog.NewInMemoryStore(),
		Executor:      resilience.New(),
		Logger:        logging.NoOpLogger{},
		SystemPrompt:  DefaultSystemPrompt,
		TokenCeiling:  router.DefaultTokenCeiling,
		MaxCandidates: media.DefaultMaxCandidates,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	resolver := media.NewResolver(opts.Gateway, opts.MovieCatalog, opts.SeriesCatalog, opts.Contexts, func(o *media.Options) {
		o.MaxCandidates = opts.MaxCandidates
		o.Executor = opts.Executor
		o.Logger = opts.Logger
	})

	rt := router.New(opts.Gateway, opts.Contexts, resolver, func(o *router.Options) {
		o.SystemPrompt = opts.SystemPrompt
		o.TokenCeiling = opts.TokenCeiling
		o.Tools = opts.Tools
		o.Renderer = opts.Renderer
		o.Executor = opts.Executor
		o.Logger = opts.Logger
	})

	return &Bot{opts: opts, router: rt, contexts: opts.Contexts}
}

// HandleTurn processes one user message and returns the reply plus the
// updated conversation history. The caller owns persisting the history and
// passing it back on the next turn.
func (b *Bot) HandleTurn(ctx context.Context, userID, input string, history []core.Message) (core.Reply, []core.Message, error) {
	return b.router.HandleTurn(ctx, userID, input, history)
}

// Contexts exposes the workflow store, mainly so callers can start the
// optional background sweeper.
func (b *Bot) Contexts() dialog.Store { return b.contexts }

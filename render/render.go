// Package render defines the image / equation rendering gateway boundary.
// The math and image handlers hand a spec to a Renderer and attach the
// returned URL to the reply; the rendering service itself (chart backend,
// LaTeX rasterizer, image generator) is an excluded collaborator.
package render

import (
	"context"
	"fmt"
	"sync"

	"github.com/couchbot/couchbot/core"
)

// Kind selects the rendering backend for a spec.
type Kind string

const (
	// KindEquation renders a LaTeX equation to an image.
	KindEquation Kind = "equation"
	// KindImage generates an image from a free-text prompt.
	KindImage Kind = "image"
)

// Spec describes one rendering request.
type Spec struct {
	Kind  Kind   `json:"kind"`
	Input string `json:"input"` // LaTeX source or generation prompt
	Title string `json:"title,omitempty"`
}

// Renderer turns a spec into a hosted image URL.
type Renderer interface {
	Render(ctx context.Context, spec Spec) (core.Image, error)
}

// Fake is an in-memory Renderer for tests and examples. It fabricates
// deterministic URLs and records every spec.
type Fake struct {
	mu    sync.Mutex
	Err   error
	Specs []Spec
}

// NewFake constructs a Fake renderer.
func NewFake() *Fake { return &Fake{} }

// Render implements Renderer.
func (f *Fake) Render(_ context.Context, spec Spec) (core.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return core.Image{}, f.Err
	}
	f.Specs = append(f.Specs, spec)
	return core.Image{
		Title: spec.Title,
		URL:   fmt.Sprintf("https://render.invalid/%s/%d", spec.Kind, len(f.Specs)),
	}, nil
}

// Package llmtest provides a scripted llm.Generator for tests.
package llmtest

import (
	"context"
	"io"
	"sync"

	"github.com/forgeapp/forge/internal/infrastructure/llm"
)

// Generator replays Parts on every stream it opens.
type Generator struct {
	Parts        []string
	Usage        *llm.Usage
	FinishReason string

	// OpenErr fails StreamText itself.
	OpenErr error
	// RecvErr is returned once every part has been delivered.
	RecvErr error
	// Block makes the stream wait for its context after the last part.
	Block bool

	mu       sync.Mutex
	requests []llm.Request
	closed   int
}

var _ llm.Generator = (*Generator)(nil)

func (g *Generator) StreamText(ctx context.Context, req llm.Request) (llm.Stream, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	g.mu.Unlock()

	if g.OpenErr != nil {
		return nil, g.OpenErr
	}
	return &stream{ctx: ctx, g: g}, nil
}

// Requests returns every request seen so far.
func (g *Generator) Requests() []llm.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]llm.Request(nil), g.requests...)
}

// LastRequest panics if no stream was opened.
func (g *Generator) LastRequest() llm.Request {
	reqs := g.Requests()
	return reqs[len(reqs)-1]
}

// Closed counts streams the caller closed.
func (g *Generator) Closed() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}

type stream struct {
	ctx  context.Context
	g    *Generator
	next int
}

func (s *stream) Recv() (string, error) {
	if err := s.ctx.Err(); err != nil {
		return "", err
	}
	if s.next < len(s.g.Parts) {
		part := s.g.Parts[s.next]
		s.next++
		return part, nil
	}
	if s.g.RecvErr != nil {
		return "", s.g.RecvErr
	}
	if s.g.Block {
		<-s.ctx.Done()
		return "", s.ctx.Err()
	}
	return "", io.EOF
}

func (s *stream) Usage() *llm.Usage {
	return s.g.Usage
}

func (s *stream) FinishReason() string {
	return s.g.FinishReason
}

func (s *stream) Close() error {
	s.g.mu.Lock()
	defer s.g.mu.Unlock()
	s.g.closed++
	return nil
}

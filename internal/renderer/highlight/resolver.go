package highlight

import (
	"sync/atomic"

	"github.com/dshills/textstore/internal/renderer/core"
)

// AttributeResolver maps a capture name to a display style. It reports false
// for captures it does not style; such spans are not highlighted.
type AttributeResolver interface {
	Resolve(capture string) (core.Style, bool)
}

// ResolverFunc adapts a function to AttributeResolver.
type ResolverFunc func(capture string) (core.Style, bool)

// Resolve implements AttributeResolver.
func (f ResolverFunc) Resolve(capture string) (core.Style, bool) {
	return f(capture)
}

// Chain asks each resolver in turn and returns the first answer.
type Chain []AttributeResolver

// Resolve implements AttributeResolver.
func (c Chain) Resolve(capture string) (core.Style, bool) {
	for _, r := range c {
		if r == nil {
			continue
		}
		if style, ok := r.Resolve(capture); ok {
			return style, true
		}
	}
	return core.Style{}, false
}

type resolverBox struct {
	r AttributeResolver
}

// Swappable is a resolver whose target can be replaced at any time, from any
// goroutine.
type Swappable struct {
	p atomic.Pointer[resolverBox]
}

// NewSwappable returns a Swappable resolving through r.
func NewSwappable(r AttributeResolver) *Swappable {
	s := &Swappable{}
	s.Set(r)
	return s
}

// Set replaces the target resolver.
func (s *Swappable) Set(r AttributeResolver) {
	s.p.Store(&resolverBox{r: r})
}

// Get returns the current target.
func (s *Swappable) Get() AttributeResolver {
	if b := s.p.Load(); b != nil {
		return b.r
	}
	return nil
}

// Resolve implements AttributeResolver.
func (s *Swappable) Resolve(capture string) (core.Style, bool) {
	r := s.Get()
	if r == nil {
		return core.Style{}, false
	}
	return r.Resolve(capture)
}

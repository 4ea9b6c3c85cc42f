package textstore

import (
	"context"
	"errors"
	"sync"

	"github.com/dshills/textstore/internal/logging"
)

// asyncHighlighter runs highlight passes on a worker goroutine. Scheduling a
// pass cancels the one in flight; a pass whose job was superseded by a newer
// one is discarded when it finishes.
type asyncHighlighter struct {
	store *Store

	mu      sync.Mutex
	next    *job
	cancel  context.CancelFunc
	settled chan struct{} // closed and replaced whenever a pass ends
	closed  bool

	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
}

func newAsyncHighlighter(s *Store) *asyncHighlighter {
	a := &asyncHighlighter{
		store:   s,
		settled: make(chan struct{}),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	a.wg.Add(1)
	go a.loop()
	return a
}

func (a *asyncHighlighter) schedule(j job) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	if a.cancel != nil {
		a.cancel()
	}
	a.next = &j
	a.mu.Unlock()

	select {
	case a.wake <- struct{}{}:
	default:
	}
}

func (a *asyncHighlighter) loop() {
	defer a.wg.Done()
	for {
		select {
		case <-a.done:
			return
		case <-a.wake:
		}

		a.mu.Lock()
		j := a.next
		a.next = nil
		if j == nil {
			a.mu.Unlock()
			continue
		}
		ctx, cancel := context.WithCancel(context.Background())
		a.cancel = cancel
		a.mu.Unlock()

		a.run(ctx, *j)

		a.mu.Lock()
		cancel()
		a.cancel = nil
		a.mu.Unlock()
		a.notify()
	}
}

func (a *asyncHighlighter) run(ctx context.Context, j job) {
	s := a.store
	p, err := s.parse(ctx, j)
	if err == nil {
		err = s.rehighlight(ctx, j, &p)
	}

	s.mu.Lock()
	switch {
	case j.seq != s.seq:
		s.mu.Unlock()
		s.logger.Debug("discarded superseded highlights", logging.FieldVersion, j.version)
	case err != nil:
		s.dropTreeLocked(j.seq, err)
		s.mu.Unlock()
		if !errors.Is(err, context.Canceled) {
			s.logger.Warn("reparse failed", logging.FieldVersion, j.version, logging.FieldError, err)
		}
	default:
		s.commitLocked(j, p)
		s.mu.Unlock()
		s.publishHighlights(p.fresh)
	}
}

func (a *asyncHighlighter) notify() {
	a.mu.Lock()
	close(a.settled)
	a.settled = make(chan struct{})
	a.mu.Unlock()
}

// wait blocks until the latest scheduled pass has finished.
func (a *asyncHighlighter) wait(ctx context.Context) error {
	for {
		a.mu.Lock()
		ch, closed := a.settled, a.closed
		a.mu.Unlock()

		if done, err := a.store.settledState(); done {
			return err
		}
		if closed {
			return ErrClosed
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (a *asyncHighlighter) close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	a.next = nil
	if a.cancel != nil {
		a.cancel()
	}
	a.mu.Unlock()

	close(a.done)
	a.wg.Wait()
	a.notify()
}

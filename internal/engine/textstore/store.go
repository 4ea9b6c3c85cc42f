package textstore

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/dshills/textstore/internal/engine/lineindex"
	"github.com/dshills/textstore/internal/engine/rope"
	"github.com/dshills/textstore/internal/engine/tracking"
	"github.com/dshills/textstore/internal/logging"
	"github.com/dshills/textstore/internal/renderer/highlight"
	"github.com/dshills/textstore/internal/syntax"
	"github.com/dshills/textstore/internal/syntax/backend"
)

// Type aliases for convenience.
type (
	ByteOffset     = lineindex.ByteOffset
	Position       = lineindex.Position
	Edit           = lineindex.Edit
	LineEnding     = lineindex.LineEnding
	HighlightRange = highlight.HighlightRange
)

// State is the phase of the edit cycle a store is in.
type State uint32

const (
	// Clean means no edit is running.
	Clean State = iota
	Editing
	Reparsing
	Rehighlighting
)

// String returns the state name.
func (st State) String() string {
	switch st {
	case Clean:
		return "clean"
	case Editing:
		return "editing"
	case Reparsing:
		return "reparsing"
	case Rehighlighting:
		return "rehighlighting"
	default:
		return "unknown"
	}
}

// EditResult describes an applied edit.
type EditResult struct {
	// Version is the text version the edit produced.
	Version uint64

	Edit   Edit
	Change tracking.Change
	Delta  tracking.ParserDelta
	Lines  lineindex.LineChangeSet

	// ChangedRanges and Highlights describe the rehighlighted region. Both
	// are empty under deferred highlighting.
	ChangedRanges []syntax.ByteRange
	Highlights    []HighlightRange
}

// Store owns the text of one document, its line index and its syntax tree,
// and keeps the highlight ranges of the document current across edits.
//
// Queries may run from any goroutine, also while an edit is running, and
// always see one whole version. Edits must be serialised by the caller; an edit that starts while another is running is rejected with
// ErrConcurrentEditRejected.
type Store struct {
	id     uuid.UUID
	state  atomic.Uint32
	closed atomic.Bool
	logger *log.Logger

	backend   syntax.Backend
	selection *backend.Request
	resolver  highlight.AttributeResolver
	deferred  bool
	maxUndo   int
	history   *history
	async     *asyncHighlighter

	mu sync.RWMutex

	// text and index are replaced, never modified, by an edit cycle. Readers
	// other than the editing goroutine take them under mu.
	text  rope.Rope
	index *lineindex.Index

	version    uint64
	seq        uint64 // bumped per scheduled highlight pass
	settled    uint64 // seq of the last finished pass
	lastErr    error
	tree       syntax.Tree
	treeIndex  *lineindex.Index      // index the tree was parsed against
	pending    *tracking.ParserDelta // edits since the tree was parsed
	dirty      []syntax.ByteRange    // regions whose highlights were dropped
	highlights []HighlightRange

	observers    []observerEntry
	nextObserver int
}

// New creates a store holding text. The whole document is parsed and
// highlighted before New returns.
func New(text string, opts ...Option) (*Store, error) {
	s := &Store{
		id:       uuid.New(),
		logger:   logging.Default(),
		resolver: highlight.DefaultTheme(),
		maxUndo:  DefaultMaxUndoEntries,
		text:     rope.FromString(text),
		index:    lineindex.Build(text),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.history = newHistory(s.maxUndo)

	if s.backend == nil {
		b, err := s.selectBackend(text)
		if err != nil {
			return nil, err
		}
		s.backend = b
	}
	s.logger = s.logger.With(logging.FieldStore, s.id.String())

	defer s.finish()
	s.mu.Lock()
	s.seq++
	j := s.jobLocked()
	s.mu.Unlock()

	p, err := s.run(context.Background(), j)
	if err != nil {
		return nil, fmt.Errorf("initial parse: %w", err)
	}

	s.logger.Debug("store created",
		logging.FieldBackend, s.backend.Name(),
		"lines", s.index.LineCount(),
		logging.FieldRanges, len(p.fresh))

	if s.deferred {
		s.async = newAsyncHighlighter(s)
	}
	return s, nil
}

// NewFromReader creates a store from the contents of r.
func NewFromReader(r io.Reader, opts ...Option) (*Store, error) {
	text, err := rope.FromReader(r)
	if err != nil {
		return nil, err
	}
	return New(text.String(), opts...)
}

func (s *Store) selectBackend(text string) (syntax.Backend, error) {
	if s.selection == nil {
		return backend.Plain{}, nil
	}
	req := *s.selection
	req.Content = []byte(text)
	if req.Logger == nil {
		req.Logger = s.logger
	}
	b, err := backend.Select(req)
	if err != nil {
		return nil, fmt.Errorf("select backend: %w", err)
	}
	return b, nil
}

// Close stops the background highlighter, if any. Edits after Close fail
// with ErrClosed; queries keep working.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if s.async != nil {
		s.async.close()
	}
	return nil
}

// ID returns the store's unique ID.
func (s *Store) ID() uuid.UUID {
	return s.id
}

// State returns the current phase of the edit cycle.
func (s *Store) State() State {
	return State(s.state.Load())
}

// Version returns the text version. It starts at 0 and grows by one for
// every applied edit.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Backend returns the name of the parser backend.
func (s *Store) Backend() string {
	return s.backend.Name()
}

// current returns the text and line index of the latest version.
func (s *Store) current() (rope.Rope, *lineindex.Index) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text, s.index
}

// Text returns the full text.
func (s *Store) Text() string {
	text, _ := s.current()
	return text.String()
}

// WriteTo writes the full text to w.
func (s *Store) WriteTo(w io.Writer) (int64, error) {
	text, _ := s.current()
	return text.WriteTo(w)
}

// Len returns the text length in bytes.
func (s *Store) Len() ByteOffset {
	text, _ := s.current()
	return text.Len()
}

// Substring returns the text in [start, end).
func (s *Store) Substring(start, end ByteOffset) (string, error) {
	text, _ := s.current()
	if start < 0 || end < start || end > text.Len() {
		return "", fmt.Errorf("substring [%d, %d) of %d bytes: %w", start, end, text.Len(), ErrOutOfRange)
	}
	return text.Slice(start, end), nil
}

// UTF16Len returns the number of UTF-16 code units in [start, end).
func (s *Store) UTF16Len(start, end ByteOffset) int64 {
	text, _ := s.current()
	return text.UTF16Len(start, end)
}

// LineCount returns the number of lines. It is always at least 1.
func (s *Store) LineCount() uint32 {
	_, idx := s.current()
	return idx.LineCount()
}

// LineText returns the content of line without its terminator.
func (s *Store) LineText(line uint32) (string, error) {
	text, idx := s.current()
	r, err := idx.Line(line)
	if err != nil {
		return "", err
	}
	start, err := idx.OffsetOfLine(line)
	if err != nil {
		return "", err
	}
	return text.Slice(start, start+r.ByteLength), nil
}

// OffsetOfLine returns the offset of the first byte of line.
func (s *Store) OffsetOfLine(line uint32) (ByteOffset, error) {
	_, idx := s.current()
	return idx.OffsetOfLine(line)
}

// PositionForOffset converts an offset to a line and byte column.
func (s *Store) PositionForOffset(off ByteOffset) (Position, error) {
	_, idx := s.current()
	return idx.PositionForOffset(off)
}

// OffsetForPosition converts a line and byte column to an offset.
func (s *Store) OffsetForPosition(pos Position) (ByteOffset, error) {
	_, idx := s.current()
	return idx.OffsetForPosition(pos)
}

// LineEnding returns the dominant line terminator of the text.
func (s *Store) LineEnding() LineEnding {
	text, idx := s.current()
	return idx.LineEnding(text)
}

// Highlights returns all highlight ranges in document order.
func (s *Store) Highlights() []HighlightRange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.highlights)
}

// HighlightsInLines returns the highlight ranges intersecting lines
// [from, to].
func (s *Store) HighlightsInLines(from, to uint32) []HighlightRange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return highlight.InLines(s.highlights, from, to)
}

// WaitHighlights blocks until the highlights reflect the latest edit. It
// returns the error of the last highlight pass, if it failed. Without
// deferred highlighting it returns immediately.
func (s *Store) WaitHighlights(ctx context.Context) error {
	if s.async == nil {
		return nil
	}
	return s.async.wait(ctx)
}

func (s *Store) settledState() (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settled == s.seq, s.lastErr
}

// Replace replaces [start, end) with text.
func (s *Store) Replace(ctx context.Context, start, end ByteOffset, text string) (EditResult, error) {
	return s.ApplyEdit(ctx, lineindex.NewEdit(start, end, text))
}

// Insert inserts text at off.
func (s *Store) Insert(ctx context.Context, off ByteOffset, text string) (EditResult, error) {
	return s.ApplyEdit(ctx, lineindex.InsertEdit(off, text))
}

// Delete removes [start, end).
func (s *Store) Delete(ctx context.Context, start, end ByteOffset) (EditResult, error) {
	return s.ApplyEdit(ctx, lineindex.DeleteEdit(start, end))
}

// ApplyEdit applies one edit. If the edit is invalid nothing changes. If
// reparsing fails the text is still updated and the returned error wraps
// ErrReparseFailed.
func (s *Store) ApplyEdit(ctx context.Context, edit Edit) (EditResult, error) {
	if err := s.begin(); err != nil {
		return EditResult{}, err
	}
	defer s.finish()

	results, changes, err := s.perform(ctx, []Edit{edit})
	s.history.push(changes)
	if len(results) == 0 {
		return EditResult{Version: s.Version(), Edit: edit}, err
	}
	return results[0], err
}

// ReplaceBatch applies non-overlapping edits, all expressed against the
// current text. They are applied from the last to the first so earlier
// offsets stay valid, and are undone as one step.
func (s *Store) ReplaceBatch(ctx context.Context, edits []Edit) ([]EditResult, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.finish()

	ordered := slices.Clone(edits)
	slices.SortStableFunc(ordered, func(a, b Edit) int {
		switch {
		case a.Start > b.Start:
			return -1
		case a.Start < b.Start:
			return 1
		}
		return 0
	})
	for i, e := range ordered {
		if err := e.Check(s.text.Len()); err != nil {
			return nil, err
		}
		if i > 0 {
			if prev := ordered[i-1]; e.Start == prev.Start || e.OldEnd > prev.Start {
				return nil, fmt.Errorf("%v and %v: %w", e, prev, ErrEditsOverlap)
			}
		}
	}

	results, changes, err := s.perform(ctx, ordered)
	s.history.push(changes)
	return results, err
}

// Undo reverts the most recent edit or batch.
func (s *Store) Undo(ctx context.Context) ([]EditResult, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.finish()

	entry, ok := s.history.popUndo()
	if !ok {
		return nil, ErrNothingToUndo
	}
	edits := make([]Edit, len(entry.changes))
	for i, c := range entry.changes {
		edits[len(edits)-1-i] = c.Invert().Edit()
	}
	results, _, err := s.perform(ctx, edits)
	if len(results) == 0 && err != nil {
		s.history.pushUndo(entry)
		return nil, err
	}
	s.history.pushRedo(entry)
	return results, err
}

// Redo reapplies the most recently undone edit or batch.
func (s *Store) Redo(ctx context.Context) ([]EditResult, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.finish()

	entry, ok := s.history.popRedo()
	if !ok {
		return nil, ErrNothingToRedo
	}
	edits := make([]Edit, len(entry.changes))
	for i, c := range entry.changes {
		edits[i] = c.Edit()
	}
	results, _, err := s.perform(ctx, edits)
	if len(results) == 0 && err != nil {
		s.history.pushRedo(entry)
		return nil, err
	}
	s.history.pushUndo(entry)
	return results, err
}

// CanUndo returns true if undo is available.
func (s *Store) CanUndo() bool {
	n, _ := s.history.counts()
	return n > 0
}

// CanRedo returns true if redo is available.
func (s *Store) CanRedo() bool {
	_, n := s.history.counts()
	return n > 0
}

// ClearHistory discards all undo and redo entries.
func (s *Store) ClearHistory() {
	s.history.clear()
}

// Rehighlight restyles the whole document, for example after the resolver
// changed. The tree is reused when it is current.
func (s *Store) Rehighlight(ctx context.Context) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.finish()

	s.mu.Lock()
	s.dirty = append(s.dirty, syntax.ByteRange{Start: 0, End: s.text.Len()})
	s.seq++
	j := s.jobLocked()
	s.mu.Unlock()

	if s.async != nil {
		s.async.schedule(j)
		s.publishFinished()
		return nil
	}
	p, err := s.run(ctx, j)
	if err == nil {
		s.publishHighlights(p.fresh)
	}
	s.publishFinished()
	return err
}

func (s *Store) begin() error {
	if s.closed.Load() {
		return ErrClosed
	}
	if !s.state.CompareAndSwap(uint32(Clean), uint32(Editing)) {
		return ErrConcurrentEditRejected
	}
	return nil
}

func (s *Store) finish() {
	s.state.Store(uint32(Clean))
}

func (s *Store) setState(st State) {
	s.state.Store(uint32(st))
}

// perform applies edits one after another, each with its own reparse, and
// publishes EditingFinished once. It stops at the first edit that could not
// be applied; reparse failures do not stop it.
func (s *Store) perform(ctx context.Context, edits []Edit) ([]EditResult, []tracking.Change, error) {
	var (
		results  []EditResult
		changes  []tracking.Change
		firstErr error
	)
	for _, e := range edits {
		res, applied, err := s.edit(ctx, e)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if !applied {
			if err != nil {
				break
			}
			continue
		}
		results = append(results, res)
		changes = append(changes, res.Change)
	}
	if len(results) > 0 {
		s.publishFinished()
	}
	return results, changes, firstErr
}

// edit runs one edit through the cycle. applied reports whether the text
// changed.
func (s *Store) edit(ctx context.Context, e Edit) (res EditResult, applied bool, err error) {
	s.setState(Editing)
	if err := e.Check(s.text.Len()); err != nil {
		return EditResult{}, false, err
	}
	if e.IsNoOp() {
		return EditResult{}, false, nil
	}

	removed := s.text.Slice(e.Start, e.OldEnd)
	text := s.text.Replace(e.Start, e.OldEnd, e.Text)
	index := s.index.Snapshot()
	tr, err := tracking.Apply(index, e, text)
	if err != nil {
		return EditResult{}, false, fmt.Errorf("apply %v: %w", e, err)
	}

	s.mu.Lock()
	s.text = text
	s.index = index
	s.version++
	s.seq++
	res = EditResult{
		Version: s.version,
		Edit:    e,
		Change:  tracking.NewChange(e, removed, s.version),
		Delta:   tr.Delta,
		Lines:   tr.Lines,
	}
	s.shiftLocked(tr.Delta)
	s.composeLocked(tr.Delta)
	j := s.jobLocked()
	s.mu.Unlock()

	s.logger.Debug("edit applied",
		logging.FieldVersion, res.Version,
		logging.FieldStart, e.Start,
		logging.FieldOldEnd, e.OldEnd,
		logging.FieldNewEnd, e.NewEnd(),
		logging.FieldInserted, len(tr.Lines.Inserted),
		logging.FieldRemoved, len(tr.Lines.Removed))

	if s.async != nil {
		s.publishLines(tr.Lines)
		s.async.schedule(j)
		return res, true, nil
	}

	p, err := s.run(ctx, j)
	s.publishLines(tr.Lines)
	if err != nil {
		s.logger.Warn("reparse failed", logging.FieldVersion, res.Version, logging.FieldError, err)
		return res, true, err
	}
	res.ChangedRanges = p.ranges
	res.Highlights = p.fresh
	s.publishHighlights(p.fresh)
	return res, true, nil
}

// run parses and highlights j on the calling goroutine and installs the
// result. On failure the tree is dropped so the next pass parses in full.
func (s *Store) run(ctx context.Context, j job) (parsed, error) {
	s.setState(Reparsing)
	p, err := s.parse(ctx, j)
	s.setState(Rehighlighting)
	if err == nil {
		err = s.rehighlight(ctx, j, &p)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.dropTreeLocked(j.seq, err)
		return parsed{}, fmt.Errorf("%w: %w", ErrReparseFailed, err)
	}
	s.commitLocked(j, p)
	return p, nil
}

// LastError returns the error of the most recent highlight pass, or nil if
// it succeeded.
func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

package textstore

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/dshills/textstore/internal/engine/lineindex"
	"github.com/dshills/textstore/internal/engine/rope"
	"github.com/dshills/textstore/internal/engine/tracking"
	"github.com/dshills/textstore/internal/logging"
	"github.com/dshills/textstore/internal/renderer/highlight"
	"github.com/dshills/textstore/internal/syntax"
)

// job is everything a highlight pass reads, captured at one text version.
// Its fields are never mutated after capture.
type job struct {
	seq        uint64
	version    uint64
	text       rope.Rope
	index      *lineindex.Index
	tree       syntax.Tree
	delta      *tracking.ParserDelta
	dirty      []syntax.ByteRange
	highlights []HighlightRange
}

// parsed is the outcome of a highlight pass.
type parsed struct {
	tree   syntax.Tree
	ranges []syntax.ByteRange // regions whose highlights are replaced
	fresh  []HighlightRange
}

func (s *Store) jobLocked() job {
	j := job{
		seq:        s.seq,
		version:    s.version,
		text:       s.text,
		index:      s.index.Snapshot(),
		tree:       s.tree,
		dirty:      slices.Clone(s.dirty),
		highlights: s.highlights,
	}
	if s.tree != nil && s.pending != nil {
		d := *s.pending
		j.delta = &d
	}
	return j
}

// parse updates the tree for j. A current tree with no pending edits is
// reused as is.
func (s *Store) parse(ctx context.Context, j job) (parsed, error) {
	p := parsed{tree: j.tree}
	if j.tree != nil && j.delta == nil {
		p.ranges = j.dirty
		return p, nil
	}

	start := time.Now()
	res, err := s.backend.Parse(ctx, j.text, j.tree, j.delta)
	if err != nil {
		return parsed{}, fmt.Errorf("parse: %w", err)
	}
	p.tree = res.Tree
	p.ranges = append(p.ranges, res.ChangedRanges...)
	if j.delta != nil {
		p.ranges = append(p.ranges, j.delta.NewRange())
	}
	p.ranges = append(p.ranges, j.dirty...)

	s.logger.Debug("reparsed",
		logging.FieldVersion, j.version,
		logging.FieldBackend, s.backend.Name(),
		logging.FieldChanged, len(res.ChangedRanges),
		logging.FieldDuration, time.Since(start))
	return p, nil
}

// rehighlight queries captures for the changed regions of p and maps them to
// highlight ranges.
func (s *Store) rehighlight(ctx context.Context, j job, p *parsed) error {
	p.ranges = requeryRanges(p.ranges, j.highlights, j.text.Len())

	mapper := highlight.Mapper{Index: j.index}
	for _, r := range p.ranges {
		spans, err := s.backend.Captures(ctx, p.tree, j.text, r)
		if err != nil {
			return fmt.Errorf("captures %v: %w", r, err)
		}
		hs, err := mapper.ResolveCaptures(spans, s.resolver)
		if err != nil {
			return fmt.Errorf("map captures %v: %w", r, err)
		}
		p.fresh = append(p.fresh, hs...)
	}
	highlight.SortRanges(p.fresh)

	s.logger.Debug("rehighlighted",
		logging.FieldVersion, j.version,
		logging.FieldChanged, len(p.ranges),
		logging.FieldRanges, len(p.fresh))
	return nil
}

// requeryRanges clamps and merges the regions to query and grows them until
// no stored highlight straddles a region boundary. Empty regions are dropped.
func requeryRanges(want []syntax.ByteRange, stored []HighlightRange, length ByteOffset) []syntax.ByteRange {
	ranges := make([]syntax.ByteRange, 0, len(want))
	for _, r := range want {
		r.Start, r.End = max(0, r.Start), min(r.End, length)
		if r.Start <= r.End {
			ranges = append(ranges, r)
		}
	}

	for {
		slices.SortFunc(ranges, func(a, b syntax.ByteRange) int {
			return cmp.Compare(a.Start, b.Start)
		})
		ranges = tracking.MergeRanges(ranges)

		grown := false
		for i, r := range ranges {
			for _, h := range stored {
				if h.Range.Start >= r.End {
					break
				}
				if h.Range.Overlaps(r) && (h.Range.Start < r.Start || h.Range.End > r.End) {
					r = r.Union(h.Range)
					grown = true
				}
			}
			ranges[i] = r
		}
		if !grown {
			break
		}
	}

	return slices.DeleteFunc(ranges, func(r syntax.ByteRange) bool { return r.IsEmpty() })
}

// commitLocked installs the result of a pass: stored highlights inside the
// queried regions are replaced by the fresh ones.
func (s *Store) commitLocked(j job, p parsed) {
	kept := make([]HighlightRange, 0, len(s.highlights)+len(p.fresh))
	for _, h := range s.highlights {
		if !overlapsAny(h.Range, p.ranges) {
			kept = append(kept, h)
		}
	}
	kept = append(kept, p.fresh...)
	highlight.SortRanges(kept)

	s.highlights = kept
	s.tree = p.tree
	s.treeIndex = j.index
	s.pending = nil
	s.dirty = nil
	s.settled = j.seq
	s.lastErr = nil
}

// dropTreeLocked records a failed pass. The next pass parses from scratch.
func (s *Store) dropTreeLocked(seq uint64, err error) {
	s.tree = nil
	s.treeIndex = nil
	s.pending = nil
	s.dirty = nil
	s.settled = seq
	s.lastErr = err
}

func overlapsAny(r syntax.ByteRange, ranges []syntax.ByteRange) bool {
	for _, o := range ranges {
		if r.Overlaps(o) {
			return true
		}
	}
	return false
}

// shiftLocked moves stored highlights past the edit d. Highlights the edit
// cut into are dropped and their surviving extent is marked dirty.
func (s *Store) shiftLocked(d tracking.ParserDelta) {
	for i, r := range s.dirty {
		s.dirty[i] = d.MapRange(r)
	}

	mapper := highlight.Mapper{Index: s.index}
	out := make([]HighlightRange, 0, len(s.highlights))
	for _, h := range s.highlights {
		r, ok := d.ShiftRange(h.Range)
		if !ok {
			s.dirty = append(s.dirty, d.MapRange(h.Range))
			continue
		}
		if h.Range.End >= d.StartByte {
			moved, err := mapper.Relocate(h, r)
			if err != nil {
				s.dirty = append(s.dirty, r)
				continue
			}
			h = moved
		}
		out = append(out, h)
	}
	s.highlights = out
}

// composeLocked folds d into the edits pending since the tree was parsed, so
// one delta takes the tree to the current text.
func (s *Store) composeLocked(d tracking.ParserDelta) {
	if s.tree == nil {
		return
	}
	if s.pending == nil {
		s.pending = &d
		return
	}

	p := *s.pending
	start := min(p.StartByte, d.StartByte)
	newEnd := max(d.NewEndByte, d.MapRange(p.NewRange()).End)
	oldEnd := newEnd - p.Delta() - d.Delta()

	edit := lineindex.NewEdit(start, oldEnd, s.text.Slice(start, newEnd))
	merged, err := tracking.Translate(edit, s.treeIndex, s.index)
	if err != nil {
		s.logger.Warn("pending edits not merged, next parse is full", logging.FieldError, err)
		s.tree, s.treeIndex, s.pending = nil, nil, nil
		return
	}
	s.pending = &merged
}

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dshills/textstore/internal/app"
	"github.com/dshills/textstore/internal/engine/lineindex"
	"github.com/dshills/textstore/internal/engine/textstore"
	"github.com/dshills/textstore/internal/logging"
	"github.com/dshills/textstore/internal/lsp"
	"github.com/dshills/textstore/internal/renderer/highlight"
)

// Script is a list of edit steps replayed against a document.
//
//	steps:
//	  - op: insert
//	    at: 12
//	    text: "hello"
//	  - op: replace
//	    at: 0
//	    end: 7
//	    text: "package"
//	  - op: batch
//	    edits:
//	      - {at: 0, end: 1, text: "P"}
//	      - {at: 4, text: "!"}
//	  - op: undo
//	    count: 2
//	  - op: replaceAll
//	    find: '(\w+)_name'
//	    method: regex
//	    text: '\u$1Name'
type Script struct {
	Steps []Step `yaml:"steps"`
}

// Step is one operation of a script.
type Step struct {
	Op    string     `yaml:"op"`
	At    int64      `yaml:"at"`
	End   int64      `yaml:"end"`
	Text  string     `yaml:"text"`
	Edits []EditSpec `yaml:"edits"`
	Count int        `yaml:"count"`

	// replaceAll
	Find          string `yaml:"find"`
	Method        string `yaml:"method"`
	CaseSensitive bool   `yaml:"caseSensitive"`
}

func (s Step) query() (textstore.SearchQuery, error) {
	q := textstore.SearchQuery{Text: s.Find, CaseSensitive: s.CaseSensitive}
	if s.Method != "" {
		m, err := textstore.ParseMatchMethod(s.Method)
		if err != nil {
			return q, err
		}
		q.Method = m
	}
	return q, nil
}

// EditSpec is one edit of a batch step. A zero End inserts at At.
type EditSpec struct {
	At   int64  `yaml:"at"`
	End  int64  `yaml:"end"`
	Text string `yaml:"text"`
}

func (e EditSpec) edit() lineindex.Edit {
	if e.End <= e.At {
		return lineindex.InsertEdit(e.At, e.Text)
	}
	return lineindex.NewEdit(e.At, e.End, e.Text)
}

// ParseScript decodes a YAML script. Unknown keys are rejected.
func ParseScript(data []byte) (*Script, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return &s, nil
		}
		return nil, fmt.Errorf("parse script: %w", err)
	}
	for i, st := range s.Steps {
		switch st.Op {
		case "insert", "delete", "replace", "undo", "redo", "rehighlight":
		case "batch":
			if len(st.Edits) == 0 {
				return nil, fmt.Errorf("step %d: batch without edits", i+1)
			}
		case "replaceAll":
			if st.Find == "" {
				return nil, fmt.Errorf("step %d: replaceAll without find", i+1)
			}
			if _, err := st.query(); err != nil {
				return nil, fmt.Errorf("step %d: %w", i+1, err)
			}
		default:
			return nil, fmt.Errorf("step %d: unknown op %q", i+1, st.Op)
		}
	}
	return &s, nil
}

type replayOptions struct {
	lsp    bool
	events bool
	print  bool
	write  bool
}

func newReplayCommand(g *globalOptions) *cobra.Command {
	var opts replayOptions

	cmd := &cobra.Command{
		Use:   "replay FILE SCRIPT",
		Short: "Apply a YAML script of edits to a file",
		Long: `Load FILE, apply the steps of the YAML SCRIPT in order and report the
version, length delta, line changes and rehighlighted ranges of every edit.

Supported ops: insert (at, text), delete (at, end), replace (at, end, text),
batch (edits), replaceAll (find, method, caseSensitive, text), undo (count),
redo (count) and rehighlight. The replaceAll methods are contains, fullWord,
startsWith, endsWith and regex; a regex replacement may use $N and the case
modifiers \u, \U, \l and \L.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			script, err := ParseScript(data)
			if err != nil {
				return err
			}
			return runReplay(cmd.Context(), cmd.OutOrStdout(), g, opts, args[0], script)
		},
	}

	cmd.Flags().BoolVar(&opts.lsp, "lsp", false, "print each edit as an LSP content change")
	cmd.Flags().BoolVar(&opts.events, "events", false, "print observer events")
	cmd.Flags().BoolVar(&opts.print, "print", false, "print the final text")
	cmd.Flags().BoolVar(&opts.write, "write", false, "save the final text to FILE")
	return cmd
}

func runReplay(ctx context.Context, w io.Writer, g *globalOptions, opts replayOptions, path string, script *Script) error {
	a, err := app.New(g.appOptions())
	if err != nil {
		return err
	}
	defer a.Shutdown()
	ctx = logging.WithLogger(ctx, a.Logger())

	doc, err := a.Open(path)
	if err != nil {
		return err
	}
	st := NewStyles(w, IsColorEnabled(g.color, w))

	var events *eventLog
	if opts.events {
		events = &eventLog{}
		defer doc.Store.AddObserver(events.observer())()
	}

	conv := lsp.Converter{Store: doc.Store}
	for i, step := range script.Steps {
		results, err := applyStep(ctx, doc.Store, step)
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
		}
		logging.FromContext(ctx).Debug("step applied", "step", i+1, "op", step.Op,
			logging.FieldVersion, doc.Store.Version())
		fmt.Fprintf(w, "%s %s\n", st.Label.Render(fmt.Sprintf("step %d", i+1)), step.Op)
		for _, res := range results {
			printResult(w, st, res)
			if opts.lsp {
				if err := printChangeEvent(w, conv, res); err != nil {
					return fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
				}
			}
		}
		events.flush(w, st)
	}

	if err := doc.Store.WaitHighlights(ctx); err != nil {
		return err
	}
	events.flush(w, st)
	fmt.Fprintf(w, "%s version %d, %d bytes, %d lines, %d highlights\n",
		st.Success.Render("done"), doc.Store.Version(), doc.Store.Len(),
		doc.Store.LineCount(), len(doc.Store.Highlights()))

	if opts.print {
		fmt.Fprint(w, doc.Store.Text())
	}
	if opts.write {
		return doc.Save()
	}
	return nil
}

func applyStep(ctx context.Context, s *textstore.Store, step Step) ([]textstore.EditResult, error) {
	one := func(res textstore.EditResult, err error) ([]textstore.EditResult, error) {
		if err != nil {
			return nil, err
		}
		return []textstore.EditResult{res}, nil
	}

	switch step.Op {
	case "insert":
		return one(s.Insert(ctx, step.At, step.Text))
	case "delete":
		return one(s.Delete(ctx, step.At, step.End))
	case "replace":
		return one(s.Replace(ctx, step.At, step.End, step.Text))
	case "batch":
		edits := make([]lineindex.Edit, len(step.Edits))
		for i, e := range step.Edits {
			edits[i] = e.edit()
		}
		return s.ReplaceBatch(ctx, edits)
	case "replaceAll":
		q, err := step.query()
		if err != nil {
			return nil, err
		}
		return s.ReplaceAll(ctx, q, step.Text)
	case "undo", "redo":
		var out []textstore.EditResult
		for range max(step.Count, 1) {
			var res []textstore.EditResult
			var err error
			if step.Op == "undo" {
				res, err = s.Undo(ctx)
			} else {
				res, err = s.Redo(ctx)
			}
			if err != nil {
				return out, err
			}
			out = append(out, res...)
		}
		return out, nil
	case "rehighlight":
		return nil, s.Rehighlight(ctx)
	default:
		return nil, fmt.Errorf("unknown op %q", step.Op)
	}
}

func printResult(w io.Writer, st *Styles, res textstore.EditResult) {
	lines := res.Lines
	fmt.Fprintf(w, "  v%d %s [%d,%d)->[%d,%d) delta %+d lines +%d -%d ~%d",
		res.Version, res.Change.Type, res.Change.Range.Start, res.Change.Range.End,
		res.Change.NewRange.Start, res.Change.NewRange.End, res.Delta.Delta(),
		len(lines.Inserted), len(lines.Removed), len(lines.Edited))
	if len(res.ChangedRanges) > 0 {
		fmt.Fprintf(w, " changed")
		for _, r := range res.ChangedRanges {
			fmt.Fprintf(w, " [%d,%d)", r.Start, r.End)
		}
	}
	fmt.Fprintln(w, st.Dim.Render(fmt.Sprintf(" highlights %d", len(res.Highlights))))
}

func printChangeEvent(w io.Writer, conv lsp.Converter, res textstore.EditResult) error {
	ev, err := conv.ChangeEvent(res)
	if err != nil {
		return err
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "  lsp %s\n", data)
	return nil
}

// eventLog collects observer events. Deferred highlighting reports from the
// worker goroutine, so events are buffered and printed between steps.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (e *eventLog) add(format string, args ...any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, fmt.Sprintf(format, args...))
}

func (e *eventLog) observer() textstore.Observer {
	return textstore.Observer{
		LineRemoved:  func(l uint32) { e.add("line removed %d", l+1) },
		LineInserted: func(l uint32) { e.add("line inserted %d", l+1) },
		HighlightRangesChanged: func(r []highlight.HighlightRange) {
			e.add("highlights changed (%d)", len(r))
		},
		EditingFinished: func() { e.add("editing finished") },
	}
}

func (e *eventLog) flush(w io.Writer, st *Styles) {
	if e == nil {
		return
	}
	e.mu.Lock()
	events := e.events
	e.events = nil
	e.mu.Unlock()
	for _, ev := range events {
		fmt.Fprintf(w, "  %s\n", st.Dim.Render("event: "+ev))
	}
}

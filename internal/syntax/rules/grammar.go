package rules

import (
	"embed"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/textstore/internal/syntax/pattern"
)

//go:embed grammars/*.yaml
var builtinFS embed.FS

// Block is a construct that may span lines, such as a block comment. Start
// and End are literal strings.
type Block struct {
	Start   string `yaml:"start"`
	End     string `yaml:"end"`
	Capture string `yaml:"capture"`
}

// Rule assigns a capture to every match of a pattern. When Group is set only
// that capture group is tagged, though the whole match is consumed.
type Rule struct {
	Pattern    string `yaml:"pattern"`
	Capture    string `yaml:"capture"`
	Group      int    `yaml:"group,omitempty"`
	IgnoreCase bool   `yaml:"ignore_case,omitempty"`

	matcher *pattern.Matcher
}

// Grammar is a line-scoped rule set for one language.
type Grammar struct {
	Name       string              `yaml:"name"`
	Extensions []string            `yaml:"extensions"`
	Blocks     []Block             `yaml:"blocks"`
	Rules      []Rule              `yaml:"rules"`
	Keywords   map[string][]string `yaml:"keywords"`

	// Identifier, when set, tags identifiers that are not keywords.
	Identifier string `yaml:"identifier,omitempty"`

	words map[string]string
}

// ParseGrammar decodes and compiles a YAML grammar. Patterns are compiled
// through cache when it is non-nil.
func ParseGrammar(r io.Reader, cache *pattern.Cache) (*Grammar, error) {
	var g Grammar
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&g); err != nil {
		return nil, fmt.Errorf("decode grammar: %w", err)
	}
	if err := g.compile(cache); err != nil {
		return nil, err
	}
	return &g, nil
}

// LoadGrammar reads a YAML grammar file.
func LoadGrammar(file string, cache *pattern.Cache) (*Grammar, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := ParseGrammar(f, cache)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return g, nil
}

func (g *Grammar) compile(cache *pattern.Cache) error {
	if g.Name == "" {
		return fmt.Errorf("grammar has no name")
	}
	for i, b := range g.Blocks {
		if b.Start == "" || b.End == "" || b.Capture == "" {
			return fmt.Errorf("grammar %s: block %d needs start, end and capture", g.Name, i)
		}
	}
	for i := range g.Rules {
		r := &g.Rules[i]
		if r.Capture == "" {
			return fmt.Errorf("grammar %s: rule %d has no capture", g.Name, i)
		}
		opts := pattern.Options{IgnoreCase: r.IgnoreCase}
		var err error
		if cache != nil {
			r.matcher, err = cache.Compile(r.Pattern, opts)
		} else {
			r.matcher, err = pattern.CompileString(r.Pattern, opts)
		}
		if err != nil {
			return fmt.Errorf("grammar %s: rule %d: %w", g.Name, i, err)
		}
	}

	g.words = make(map[string]string)
	captures := make([]string, 0, len(g.Keywords))
	for capture := range g.Keywords {
		captures = append(captures, capture)
	}
	// Later captures win for words listed twice; sort for a stable result.
	sort.Strings(captures)
	for _, capture := range captures {
		for _, word := range g.Keywords[capture] {
			g.words[word] = capture
		}
	}
	return nil
}

// Registry holds grammars by name and file extension.
type Registry struct {
	cache  *pattern.Cache
	byName map[string]*Grammar
	byExt  map[string]*Grammar
}

// NewRegistry creates a registry holding the built-in grammars.
func NewRegistry() (*Registry, error) {
	r := &Registry{
		cache:  pattern.NewCache(),
		byName: make(map[string]*Grammar),
		byExt:  make(map[string]*Grammar),
	}

	entries, err := builtinFS.ReadDir("grammars")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		f, err := builtinFS.Open(path.Join("grammars", e.Name()))
		if err != nil {
			return nil, err
		}
		g, err := ParseGrammar(f, r.cache)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("builtin %s: %w", e.Name(), err)
		}
		r.Register(g)
	}
	return r, nil
}

// Register adds g, replacing any grammar with the same name or extensions.
func (r *Registry) Register(g *Grammar) {
	r.byName[g.Name] = g
	for _, ext := range g.Extensions {
		r.byExt[strings.ToLower(ext)] = g
	}
}

// LoadFile reads a grammar file and registers it.
func (r *Registry) LoadFile(file string) (*Grammar, error) {
	g, err := LoadGrammar(file, r.cache)
	if err != nil {
		return nil, err
	}
	r.Register(g)
	return g, nil
}

// Get returns the grammar registered under name.
func (r *Registry) Get(name string) (*Grammar, bool) {
	g, ok := r.byName[name]
	return g, ok
}

// ForFile returns the grammar registered for the file's extension.
func (r *Registry) ForFile(filename string) (*Grammar, bool) {
	g, ok := r.byExt[strings.ToLower(filepath.Ext(filename))]
	return g, ok
}

// Names returns the registered grammar names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

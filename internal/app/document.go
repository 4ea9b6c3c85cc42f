package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/dshills/textstore/internal/engine/textstore"
	"github.com/dshills/textstore/internal/syntax/langdetect"
)

// Document is an open file and the store holding its text.
type Document struct {
	// Path is the absolute file path (empty for unsaved documents).
	Path string

	// Name is the display name (file name or "Untitled").
	Name string

	Store *textstore.Store

	// LanguageID is the detected language.
	LanguageID string

	mu           sync.Mutex
	savedVersion uint64 // store version last written to Path
}

// IsModified reports whether the text changed since it was loaded or saved.
func (d *Document) IsModified() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Store.Version() != d.savedVersion
}

// IsScratch reports whether the document has no file.
func (d *Document) IsScratch() bool {
	return d.Path == ""
}

// Save writes the text to the document's file.
func (d *Document) Save() error {
	if d.IsScratch() {
		return &FileError{Op: "save", Path: d.Name, Err: errors.New("document has no file")}
	}
	return d.SaveAs(d.Path)
}

// SaveAs writes the text to path. The document keeps its own path.
func (d *Document) SaveAs(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	version := d.Store.Version()
	if err := saveTo(path, d.Store); err != nil {
		return &FileError{Op: "save", Path: path, Err: err}
	}
	if path == d.Path {
		d.savedVersion = version
	}
	return nil
}

func saveTo(path string, src io.WriterTo) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := src.WriteTo(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// StoreOptionsFunc returns the store options for a file name.
type StoreOptionsFunc func(filename string) []textstore.Option

// DocumentManager manages all open documents.
type DocumentManager struct {
	mu        sync.RWMutex
	documents map[string]*Document // key -> document
	order     []string             // open order
	counter   int                  // for naming unsaved documents
}

// NewDocumentManager creates a new document manager.
func NewDocumentManager() *DocumentManager {
	return &DocumentManager{documents: make(map[string]*Document)}
}

// Open opens a document from a file. Returns the existing document if the
// file is already open.
func (dm *DocumentManager) Open(path string, opts StoreOptionsFunc) (*Document, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, &FileError{Op: "open", Path: path, Err: err}
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()

	if doc, ok := dm.documents[absPath]; ok {
		return doc, nil
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, &FileError{Op: "open", Path: absPath, Err: err}
	}
	doc, err := newDocument(absPath, filepath.Base(absPath), string(content), opts)
	if err != nil {
		return nil, &FileError{Op: "open", Path: absPath, Err: err}
	}
	dm.add(absPath, doc)
	return doc, nil
}

// Create opens an unsaved document holding text.
func (dm *DocumentManager) Create(name, text string, opts StoreOptionsFunc) (*Document, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	dm.counter++
	display := name
	if display == "" {
		display = "Untitled"
		if dm.counter > 1 {
			display = fmt.Sprintf("Untitled-%d", dm.counter)
		}
	}

	doc, err := newDocument("", display, text, func(string) []textstore.Option { return opts(name) })
	if err != nil {
		return nil, err
	}
	dm.add(scratchKey(dm.counter), doc)
	return doc, nil
}

func newDocument(path, name, text string, opts StoreOptionsFunc) (*Document, error) {
	filename := path
	if filename == "" {
		filename = name
	}
	store, err := textstore.New(text, opts(filename)...)
	if err != nil {
		return nil, err
	}
	return &Document{
		Path:         path,
		Name:         name,
		Store:        store,
		LanguageID:   langdetect.Detect(filename, []byte(text)),
		savedVersion: store.Version(),
	}, nil
}

func (dm *DocumentManager) add(key string, doc *Document) {
	dm.documents[key] = doc
	dm.order = append(dm.order, key)
}

// Key returns the key doc is registered under, or "" if it is not open.
func (dm *DocumentManager) Key(doc *Document) string {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	for key, d := range dm.documents {
		if d == doc {
			return key
		}
	}
	return ""
}

// Close closes a document by key and its store.
func (dm *DocumentManager) Close(key string) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	doc, ok := dm.documents[key]
	if !ok {
		return fmt.Errorf("%s: %w", key, ErrDocumentNotFound)
	}
	delete(dm.documents, key)
	for i, k := range dm.order {
		if k == key {
			dm.order = append(dm.order[:i], dm.order[i+1:]...)
			break
		}
	}
	return doc.Store.Close()
}

// CloseAll closes every document.
func (dm *DocumentManager) CloseAll() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	var errs []error
	for _, key := range dm.order {
		errs = append(errs, dm.documents[key].Store.Close())
	}
	dm.documents = make(map[string]*Document)
	dm.order = nil
	return errors.Join(errs...)
}

// Get returns a document by key.
func (dm *DocumentManager) Get(key string) (*Document, bool) {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	doc, ok := dm.documents[key]
	return doc, ok
}

// All returns all open documents in open order.
func (dm *DocumentManager) All() []*Document {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	docs := make([]*Document, 0, len(dm.order))
	for _, key := range dm.order {
		docs = append(docs, dm.documents[key])
	}
	return docs
}

// Count returns the number of open documents.
func (dm *DocumentManager) Count() int {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return len(dm.documents)
}

// DirtyDocuments returns all documents with unsaved changes.
func (dm *DocumentManager) DirtyDocuments() []*Document {
	var dirty []*Document
	for _, doc := range dm.All() {
		if doc.IsModified() {
			dirty = append(dirty, doc)
		}
	}
	return dirty
}

func scratchKey(n int) string {
	return fmt.Sprintf("scratch:%d", n)
}

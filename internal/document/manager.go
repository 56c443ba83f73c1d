package document

import (
	"fmt"
	"sync"
)

// Manager encapsulates the current snapshot for each open URI.
// Snapshots are replaced wholesale; the pipeline never accumulates edits.
type Manager struct {
	mu   sync.Mutex
	docs map[string]*Document
}

// NewManager creates an initialized Manager.
func NewManager() *Manager {
	return &Manager{
		docs: make(map[string]*Document),
	}
}

// Open stores the initial snapshot for a URI.
func (m *Manager) Open(uri string, languageID string, text string) *Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc := New(uri, languageID, text)
	m.docs[uri] = doc
	return doc
}

// Update replaces the text for a URI, keeping its language.
func (m *Manager) Update(uri string, text string) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.docs[uri]
	if !ok {
		return nil, fmt.Errorf("document not loaded for %s", uri)
	}
	doc := New(uri, old.LanguageID, text)
	m.docs[uri] = doc
	return doc, nil
}

// Get returns the current snapshot for a URI.
func (m *Manager) Get(uri string) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[uri]
	if !ok {
		return nil, fmt.Errorf("document not loaded for %s", uri)
	}
	return doc, nil
}

// Release drops the snapshot for a URI.
func (m *Manager) Release(uri string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, uri)
}

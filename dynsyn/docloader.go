package dynsyn

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/pquerna/cachecontrol"
)

// RemoteDocument is a fetched JSON-LD document or context.
type RemoteDocument struct {
	DocumentURL string
	Document    interface{}
	ContextURL  string
}

// DocumentLoader fetches remote JSON-LD contexts for the JSON-LD parser
// backend. Implementations must be safe for reuse across parses.
type DocumentLoader interface {
	LoadDocument(iri string) (RemoteDocument, error)
}

type cachedDocument struct {
	doc     RemoteDocument
	expires time.Time
}

// CachingDocumentLoader fetches documents over HTTP and keeps them in memory
// for as long as the response cache headers allow. Context documents rarely
// change and are fetched repeatedly by JSON-LD processing, so honoring
// Cache-Control avoids refetching on every parse.
type CachingDocumentLoader struct {
	client *http.Client

	mu    sync.Mutex
	cache map[string]cachedDocument
}

// NewCachingDocumentLoader returns a loader using client, or
// http.DefaultClient when client is nil.
func NewCachingDocumentLoader(client *http.Client) *CachingDocumentLoader {
	if client == nil {
		client = http.DefaultClient
	}
	return &CachingDocumentLoader{
		client: client,
		cache:  map[string]cachedDocument{},
	}
}

// LoadDocument implements DocumentLoader.
func (l *CachingDocumentLoader) LoadDocument(iri string) (RemoteDocument, error) {
	l.mu.Lock()
	if entry, ok := l.cache[iri]; ok && time.Now().Before(entry.expires) {
		l.mu.Unlock()
		return entry.doc, nil
	}
	l.mu.Unlock()

	req, err := http.NewRequest(http.MethodGet, iri, nil)
	if err != nil {
		return RemoteDocument{}, fmt.Errorf("dynsyn: load context <%s>: %w", iri, err)
	}
	req.Header.Set("Accept", "application/ld+json, application/json")
	resp, err := l.client.Do(req)
	if err != nil {
		return RemoteDocument{}, fmt.Errorf("dynsyn: load context <%s>: %w", iri, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return RemoteDocument{}, fmt.Errorf("dynsyn: load context <%s>: unexpected status %s", iri, resp.Status)
	}

	var doc interface{}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return RemoteDocument{}, fmt.Errorf("dynsyn: load context <%s>: %w", iri, err)
	}
	remote := RemoteDocument{DocumentURL: iri, Document: doc}

	reasons, expires, err := cachecontrol.CachableResponse(req, resp, cachecontrol.Options{})
	if err == nil && len(reasons) == 0 && expires.After(time.Now()) {
		l.mu.Lock()
		l.cache[iri] = cachedDocument{doc: remote, expires: expires}
		l.mu.Unlock()
	}
	return remote, nil
}

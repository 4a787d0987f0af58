package server

import (
	"errors"
	"sort"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/chazu/sol25/compiler"
	"github.com/chazu/sol25/lib/runtime"
	"github.com/chazu/sol25/pkg/ast"
)

// ErrStopped is returned by Worker.Do after Stop.
var ErrStopped = errors.New("server: worker stopped")

// Document is an open editor buffer and the result of analyzing it.
type Document struct {
	URI      protocol.DocumentUri
	Text     string
	Program  *ast.Program      // nil when the text does not parse
	Registry *runtime.Registry // built-in classes plus any user classes that checked out
	Errors   []*compiler.Error
}

// Workspace tracks open documents. It is owned by a Worker.
type Workspace struct {
	docs map[protocol.DocumentUri]*Document
}

// NewWorkspace returns an empty workspace.
func NewWorkspace() *Workspace {
	return &Workspace{docs: make(map[protocol.DocumentUri]*Document)}
}

// Update replaces the text of uri and re-analyzes it.
func (ws *Workspace) Update(uri protocol.DocumentUri, text string) *Document {
	doc := analyze(uri, text)
	ws.docs[uri] = doc
	return doc
}

// Get returns the document for uri, or nil.
func (ws *Workspace) Get(uri protocol.DocumentUri) *Document {
	return ws.docs[uri]
}

// Close forgets uri.
func (ws *Workspace) Close(uri protocol.DocumentUri) {
	delete(ws.docs, uri)
}

// URIs returns the open documents in sorted order.
func (ws *Workspace) URIs() []protocol.DocumentUri {
	uris := make([]protocol.DocumentUri, 0, len(ws.docs))
	for uri := range ws.docs {
		uris = append(uris, uri)
	}
	sort.Slice(uris, func(i, j int) bool { return uris[i] < uris[j] })
	return uris
}

func analyze(uri protocol.DocumentUri, text string) *Document {
	doc := &Document{URI: uri, Text: text}

	p := compiler.NewParser(text)
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		doc.Errors = errs
		doc.Registry = runtime.NewRegistry()
		return doc
	}

	a := compiler.NewAnalyzer()
	a.Check(prog)
	doc.Program = prog
	doc.Registry = a.Registry()
	doc.Errors = a.Errors()
	log.Debugf("analyzed %s: %d classes, %d problems", uri, len(prog.Classes), len(doc.Errors))
	return doc
}

// Selectors returns every selector understood by some class in the
// document's registry, sorted and without duplicates.
func (d *Document) Selectors() []string {
	seen := make(map[string]bool)
	var out []string
	for _, cls := range d.Registry.All() {
		for _, m := range cls.Methods {
			if !seen[m.Selector] {
				seen[m.Selector] = true
				out = append(out, m.Selector)
			}
		}
	}
	sort.Strings(out)
	return out
}

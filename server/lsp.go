// Package server implements the SOL25 language server.
package server

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/chazu/sol25/compiler"
	"github.com/chazu/sol25/lib/runtime"
	"github.com/chazu/sol25/pkg/ast"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "sol25-lsp"

var log = commonlog.GetLogger("sol.server")

// LspServer bridges LSP editor features to the SOL25 front end via Worker.
type LspServer struct {
	worker *Worker

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// NewLSP creates a new LSP server with an empty workspace.
func NewLSP(version string) *LspServer {
	s := &LspServer{
		worker:  NewWorker(NewWorkspace()),
		version: version,
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,
		TextDocumentDefinition: s.textDocumentDefinition,
		TextDocumentReferences: s.textDocumentReferences,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)

	return s
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LspServer) Run() error {
	defer s.worker.Stop()
	return s.server.RunStdio()
}

// --- LSP lifecycle handlers ---

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Info("SOL25 LSP initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{":"},
	}

	capabilities.HoverProvider = true
	capabilities.DefinitionProvider = true
	capabilities.ReferencesProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	s.worker.Stop()
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.update(ctx, params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.update(ctx, params.TextDocument.URI, whole.Text)
		}
	}
	return nil
}

func (s *LspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.worker.Do(func(ws *Workspace) any {
		ws.Close(uri)
		return nil
	})

	// Clear diagnostics for the closed document
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (s *LspServer) update(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	result, err := s.worker.Do(func(ws *Workspace) any {
		return diagnostics(ws.Update(uri, text))
	})
	if err != nil {
		log.Errorf("analyzing %s: %s", uri, err)
		return
	}

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: result.([]protocol.Diagnostic),
	})
}

// --- Language features ---

// withWord runs fn on the worker with the open document and the word at
// pos. It returns nil when the document is unknown or there is no word.
func (s *LspServer) withWord(uri protocol.DocumentUri, pos protocol.Position, prefixOnly bool, fn func(*Document, string) any) any {
	result, err := s.worker.Do(func(ws *Workspace) any {
		doc := ws.Get(uri)
		if doc == nil {
			return nil
		}
		var word string
		if prefixOnly {
			word = extractPrefix(doc.Text, pos)
		} else {
			word = extractWord(doc.Text, pos)
		}
		if word == "" {
			return nil
		}
		return fn(doc, word)
	})
	if err != nil {
		log.Errorf("%s: %s", uri, err)
		return nil
	}
	return result
}

func (s *LspServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	result := s.withWord(params.TextDocument.URI, params.Position, true, func(doc *Document, prefix string) any {
		return complete(doc, prefix)
	})
	if result == nil {
		return nil, nil
	}
	return result, nil
}

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	result := s.withWord(params.TextDocument.URI, params.Position, false, func(doc *Document, word string) any {
		return hover(doc, word)
	})
	h, _ := result.(*protocol.Hover)
	return h, nil
}

func (s *LspServer) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	result := s.withWord(params.TextDocument.URI, params.Position, false, func(doc *Document, word string) any {
		return definition(doc, word)
	})
	if locs, _ := result.([]protocol.Location); len(locs) > 0 {
		return locs, nil
	}
	return nil, nil
}

func (s *LspServer) textDocumentReferences(ctx *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	result := s.withWord(params.TextDocument.URI, params.Position, false, func(doc *Document, word string) any {
		return references(doc, word)
	})
	locs, _ := result.([]protocol.Location)
	return locs, nil
}

// --- Document-backed logic (called on worker goroutine) ---

func complete(doc *Document, prefix string) []protocol.CompletionItem {
	var items []protocol.CompletionItem
	lowerPrefix := strings.ToLower(prefix)

	// Class names
	for _, cls := range doc.Registry.All() {
		if strings.HasPrefix(strings.ToLower(cls.Name), lowerPrefix) {
			kind := protocol.CompletionItemKindClass
			detail := "class"
			if cls.Superclass != "" {
				detail = fmt.Sprintf("class (: %s)", cls.Superclass)
			}
			name := cls.Name
			items = append(items, protocol.CompletionItem{
				Label:      name,
				Kind:       &kind,
				Detail:     &detail,
				InsertText: &name,
			})
		}
	}

	// Selectors
	for _, name := range doc.Selectors() {
		if strings.HasPrefix(strings.ToLower(name), lowerPrefix) {
			kind := protocol.CompletionItemKindFunction
			detail := "selector"
			nameCopy := name
			items = append(items, protocol.CompletionItem{
				Label:      name,
				Kind:       &kind,
				Detail:     &detail,
				InsertText: &nameCopy,
			})
		}
	}

	// Limit results
	const maxItems = 100
	if len(items) > maxItems {
		items = items[:maxItems]
	}

	return items
}

func hover(doc *Document, word string) *protocol.Hover {
	reg := doc.Registry

	// Uppercase word → class lookup
	if isClassName(word) {
		cls := reg.Lookup(word)
		if cls == nil {
			return nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "**%s**", cls.Name)
		if cls.Superclass != "" {
			fmt.Fprintf(&b, " : %s", cls.Superclass)
		}
		if cls.Builtin {
			b.WriteString(" (built-in)")
		}
		b.WriteString("\n\n")

		selectors := make([]string, len(cls.Methods))
		for i, m := range cls.Methods {
			selectors[i] = m.Selector
		}
		fmt.Fprintf(&b, "%d methods", len(selectors))
		if len(selectors) > 0 {
			fmt.Fprintf(&b, ": `%s`", strings.Join(selectors, "` `"))
		}

		// Show hierarchy
		supers := cls.Superclasses()
		if len(supers) > 0 {
			b.WriteString("\n\n**Hierarchy:** ")
			names := make([]string, len(supers))
			for i, sup := range supers {
				names[i] = sup.Name
			}
			b.WriteString(strings.Join(names, " → "))
			fmt.Fprintf(&b, " → **%s**", cls.Name)
		}

		return markdown(b.String())
	}

	// Lowercase word → selector lookup (find implementors)
	var selectors []string
	implementors := make(map[string][]string)
	for _, cls := range reg.All() {
		for _, m := range cls.Methods {
			if !matchesSelector(m.Selector, word) {
				continue
			}
			if _, ok := implementors[m.Selector]; !ok {
				selectors = append(selectors, m.Selector)
			}
			implementors[m.Selector] = append(implementors[m.Selector], cls.Name)
		}
	}
	if len(selectors) == 0 {
		return nil
	}

	var b strings.Builder
	for _, sel := range selectors {
		fmt.Fprintf(&b, "**%s** (%d arguments)\n\n", sel, ast.Arity(sel))
		fmt.Fprintf(&b, "Implemented by %d classes:\n", len(implementors[sel]))
		for _, name := range implementors[sel] {
			fmt.Fprintf(&b, "- %s\n", name)
		}
		b.WriteString("\n")
	}
	return markdown(strings.TrimSuffix(b.String(), "\n"))
}

func definition(doc *Document, word string) []protocol.Location {
	if doc.Program == nil {
		return nil
	}

	if isClassName(word) {
		cls := doc.Program.Class(word)
		if cls == nil {
			return nil
		}
		return []protocol.Location{location(doc.URI, cls.Location, len("class"))}
	}

	var locations []protocol.Location
	for _, cls := range doc.Program.Classes {
		for _, m := range cls.Methods {
			if matchesSelector(m.Selector, word) {
				locations = append(locations, location(doc.URI, m.Location, len(word)))
			}
		}
	}
	return locations
}

func references(doc *Document, word string) []protocol.Location {
	if doc.Program == nil {
		return nil
	}

	var locations []protocol.Location
	ast.InspectProgram(doc.Program, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.Send:
			if matchesSelector(n.Selector, word) {
				locations = append(locations, location(doc.URI, n.Location, len(word)))
			}
		case *ast.Literal:
			if n.Class == ast.LiteralClass && n.Value == word {
				locations = append(locations, location(doc.URI, n.Location, len(word)))
			}
		}
		return true
	})
	return locations
}

// --- Diagnostics ---

func diagnostics(doc *Document) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(doc.Errors))
	for _, e := range doc.Errors {
		severity := protocol.DiagnosticSeverityError
		source := lspName
		out = append(out, protocol.Diagnostic{
			Range:    toRange(e.Pos, 1),
			Severity: &severity,
			Code:     &protocol.IntegerOrString{Value: protocol.Integer(e.Code)},
			Source:   &source,
			Message:  fmt.Sprintf("%s (%s)", e.Msg, codeName(e.Code)),
		})
	}
	return out
}

func codeName(code int) string {
	switch code {
	case compiler.CodeLexical:
		return "lexical error"
	case compiler.CodeSyntax:
		return "syntax error"
	case compiler.CodeMissingMain:
		return "missing " + runtime.EntryClass + ">>" + runtime.EntrySelector
	case compiler.CodeUndefined:
		return "undefined"
	case compiler.CodeArity:
		return "arity mismatch"
	case compiler.CodeAssignParam:
		return "assignment to parameter"
	}
	return "semantic error"
}

// --- Positions ---

// toRange converts a 1-based source position into an LSP range width
// characters wide. Positions without a location map to the document start.
func toRange(pos ast.Position, width int) protocol.Range {
	if !pos.IsValid() {
		return protocol.Range{}
	}
	start := protocol.Position{Line: protocol.UInteger(pos.Line - 1), Character: protocol.UInteger(pos.Column - 1)}
	end := start
	end.Character += protocol.UInteger(width)
	return protocol.Range{Start: start, End: end}
}

func location(uri protocol.DocumentUri, pos ast.Position, width int) protocol.Location {
	return protocol.Location{URI: uri, Range: toRange(pos, width)}
}

func markdown(s string) *protocol.Hover {
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: s,
		},
	}
}

// --- Text extraction helpers ---

// matchesSelector reports whether selector is word itself or starts with
// the keyword part word:.
func matchesSelector(selector, word string) bool {
	return selector == word || strings.HasPrefix(selector, word+":")
}

func isClassName(word string) bool {
	return word != "" && unicode.IsUpper(rune(word[0]))
}

// extractPrefix returns the word fragment before the cursor for completion.
func extractPrefix(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	// Walk backwards from cursor to find the start of the identifier
	start := col
	for start > 0 {
		ch := rune(line[start-1])
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' || ch == ':' {
			start--
		} else {
			break
		}
	}

	if start == col {
		return ""
	}

	return line[start:col]
}

// extractWord returns the full identifier under the cursor.
func extractWord(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	// Find start
	start := col
	for start > 0 {
		ch := rune(line[start-1])
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' {
			start--
		} else {
			break
		}
	}

	// Find end
	end := col
	for end < len(line) {
		ch := rune(line[end])
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' {
			end++
		} else {
			break
		}
	}

	if start == end {
		return ""
	}

	return line[start:end]
}

func boolPtr(b bool) *bool {
	return &b
}

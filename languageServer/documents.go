package languageServer

import (
	"context"
	"errors"
	"sync"

	"github.com/sourcegraph/jsonrpc2"
	"github.gatech.edu/ECEInnovation/rv32ias/assembler"
	"github.gatech.edu/ECEInnovation/rv32ias/util"
)

// documentStore holds the open documents of one connection.
type documentStore struct {
	mu   sync.Mutex
	docs map[DocumentUri]TextDocumentItem
}

func newDocumentStore() *documentStore {
	return &documentStore{docs: make(map[DocumentUri]TextDocumentItem)}
}

func (s *documentStore) get(uri DocumentUri) (TextDocumentItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	return doc, ok
}

func (s *documentStore) put(doc TextDocumentItem) {
	s.mu.Lock()
	s.docs[doc.URI] = doc
	s.mu.Unlock()
}

func (s *documentStore) remove(uri DocumentUri) {
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
}

// diagnosticsFor assembles text. A failed assembly yields its single error, otherwise the warnings.
func diagnosticsFor(text string) []assembler.Diagnostic {
	res, err := assembler.Assemble(text)
	if err != nil {
		var asmErr *assembler.AsmError
		if errors.As(err, &asmErr) {
			return []assembler.Diagnostic{asmErr.Diagnostic()}
		}
		return []assembler.Diagnostic{{Message: err.Error(), Source: "Assembler", Severity: assembler.Error}}
	}

	if res.Warnings == nil {
		return make([]assembler.Diagnostic, 0)
	}
	return res.Warnings
}

func (h handler) publishDiagnostics(ctx context.Context, conn *jsonrpc2.Conn, doc TextDocumentItem) {
	diagnostics := diagnosticsFor(doc.Text)
	util.LogF("rv32ias Language Server: %d diagnostics for %s", len(diagnostics), doc.URI)
	conn.Notify(ctx, "textDocument/publishDiagnostics", PublishDiagnosticsParams{
		URI:         doc.URI,
		Version:     doc.Version,
		Diagnostics: diagnostics,
	})
}

func (h handler) documentOpenNotification(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := DidOpenTextDocumentParams{}
	if !decodeParams(ctx, conn, req, &decodedParams) {
		return
	}

	h.documents.put(decodedParams.TextDocument)
	h.publishDiagnostics(ctx, conn, decodedParams.TextDocument)
}

func (h handler) documentCloseNotification(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := DidCloseTextDocumentParams{}
	if !decodeParams(ctx, conn, req, &decodedParams) {
		return
	}

	h.documents.remove(decodedParams.TextDocument.URI)
	conn.Notify(ctx, "textDocument/publishDiagnostics", PublishDiagnosticsParams{
		URI:         decodedParams.TextDocument.URI,
		Diagnostics: make([]assembler.Diagnostic, 0),
	})
}

func (h handler) documentChangeNotification(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := DidChangeTextDocumentParams{}
	if !decodeParams(ctx, conn, req, &decodedParams) || len(decodedParams.ContentChanges) == 0 {
		return
	}

	doc, _ := h.documents.get(decodedParams.TextDocument.URI)
	doc.URI = decodedParams.TextDocument.URI
	// full sync: the last change holds the whole document
	doc.Text = decodedParams.ContentChanges[len(decodedParams.ContentChanges)-1].Text
	doc.Version = decodedParams.TextDocument.Version
	h.documents.put(doc)

	h.publishDiagnostics(ctx, conn, doc)
}

func (h handler) documentDiagnostics(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := DocumentDiagnosticsParams{}
	if !decodeParams(ctx, conn, req, &decodedParams) {
		return
	}

	doc, _ := h.documents.get(decodedParams.TextDocument.URI)
	conn.Reply(ctx, req.ID, DocumentDiagnosticsReport{
		Kind:  "full",
		Items: diagnosticsFor(doc.Text),
	})
}

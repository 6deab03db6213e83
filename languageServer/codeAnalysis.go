package languageServer

import (
	"context"

	"github.com/sourcegraph/jsonrpc2"
	"github.gatech.edu/ECEInnovation/rv32ias/assembler"
)

func (h handler) hoverRequest(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := TextDocumentPositionParams{}
	if !decodeParams(ctx, conn, req, &decodedParams) {
		return
	}

	doc, ok := h.documents.get(decodedParams.TextDocument.URI)
	if !ok {
		conn.Reply(ctx, req.ID, nil)
		return
	}

	text, ok := assembler.EvaluateHover(doc.Text, decodedParams.Position)
	if !ok {
		conn.Reply(ctx, req.ID, nil)
		return
	}

	conn.Reply(ctx, req.ID, Hover{
		Contents: MarkupContent{
			Kind:  "markdown",
			Value: text,
		},
	})
}

package languageServer

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf16"

	"github.com/sourcegraph/jsonrpc2"
	"github.gatech.edu/ECEInnovation/rv32ias/assembler"
	"github.gatech.edu/ECEInnovation/rv32ias/util"
)

var (
	commaSpacing      = regexp.MustCompile(`\s*,\s*`)
	openParenSpacing  = regexp.MustCompile(`\s*\(\s*`)
	closeParenSpacing = regexp.MustCompile(`\s*\)`)
	repeatedSpace     = regexp.MustCompile(`\s+`)
)

func normalizeInstruction(body string) string {
	body = repeatedSpace.ReplaceAllString(body, " ")
	body = commaSpacing.ReplaceAllString(body, ", ")
	body = openParenSpacing.ReplaceAllString(body, "(")
	return closeParenSpacing.ReplaceAllString(body, ")")
}

// ReformatDocument puts labels in the first column and indents everything else past the longest label.
func ReformatDocument(text string) string {
	lines := assembler.AnalyzeLines(text)

	maxLabelLength := 0
	for _, line := range lines {
		if line.Kind == assembler.LineLabel && len(line.Body) > maxLabelLength {
			maxLabelLength = len(line.Body)
		}
	}
	indent := strings.Repeat(" ", maxLabelLength+2)

	out := make([]string, len(lines))
	for i, line := range lines {
		withComment := ""
		if line.Comment != "" {
			withComment = " " + line.Comment
		}

		switch line.Kind {
		case assembler.LineEmpty:
			out[i] = ""
		case assembler.LineComment:
			out[i] = indent + line.Comment
		case assembler.LineLabel:
			out[i] = line.Body + withComment
		case assembler.LineInstruction:
			out[i] = indent + normalizeInstruction(line.Body) + withComment
		}
	}
	return strings.Join(out, "\n")
}

// formatEdits replaces the whole document, or returns no edit when it is already formatted.
func formatEdits(text string) []TextEdit {
	edits := make([]TextEdit, 0, 1)
	formatted := ReformatDocument(text)
	if formatted == text {
		return edits
	}

	lines := strings.Split(text, "\n")
	return append(edits, TextEdit{
		Range: assembler.TextRange{
			Start: assembler.TextPosition{Line: 0, Char: 0},
			End:   assembler.TextPosition{Line: len(lines) - 1, Char: len(utf16.Encode([]rune(lines[len(lines)-1])))},
		},
		NewText: formatted,
	})
}

func (h handler) documentWillSaveWaitUntil(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := DocumentWillSaveWaitUntilParams{}
	if !decodeParams(ctx, conn, req, &decodedParams) {
		return
	}

	doc, _ := h.documents.get(decodedParams.TextDocument.URI)
	conn.Reply(ctx, req.ID, formatEdits(doc.Text))
	util.LogF("rv32ias Language Server: reformatted %s", doc.URI)
}

func (h handler) documentFormatting(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := DocumentFormattingParams{}
	if !decodeParams(ctx, conn, req, &decodedParams) {
		return
	}

	doc, _ := h.documents.get(decodedParams.TextDocument.URI)
	conn.Reply(ctx, req.ID, formatEdits(doc.Text))
}

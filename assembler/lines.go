package assembler

import (
	"strings"
)

type LineKind int

const (
	LineEmpty LineKind = iota
	LineComment
	LineLabel
	LineInstruction
)

func (k LineKind) String() string {
	switch k {
	case LineEmpty:
		return "empty"
	case LineComment:
		return "comment"
	case LineLabel:
		return "label"
	case LineInstruction:
		return "instruction"
	}
	return "unknown"
}

const commentMarker = "#"

// SourceLine is one line of the input as seen by both passes. Offsets are byte offsets into Raw.
type SourceLine struct {
	Index         int // zero-based
	Kind          LineKind
	Raw           string
	Body          string // without comment and surrounding whitespace
	BodyOffset    int
	Comment       string // trailing or full-line comment, marker included
	CommentOffset int
	Address       uint32 // set for labels and instructions; a label holds the next instruction's address
}

// HasAddress reports whether the line takes part in instruction-memory addressing.
func (l SourceLine) HasAddress() bool {
	return l.Kind == LineLabel || l.Kind == LineInstruction
}

const whitespace = " \t\r\v\f"

func trimAndGetFrontDiffCount(str, cutset string) (string, int) {
	strOut := strings.Trim(str, cutset)
	return strOut, len(str) - len(strings.TrimLeft(str, cutset))
}

// isLabelLine checks the shape "token:" only; whether token is a legal name is decided by the jump table builder.
func isLabelLine(body string) bool {
	if len(body) < 2 || body[len(body)-1] != ':' {
		return false
	}
	return !strings.ContainsAny(body[:len(body)-1], whitespace+",:()")
}

// AnalyzeLines classifies every line of source and assigns instruction-memory addresses.
func AnalyzeLines(source string) []SourceLine {
	rawLines := strings.Split(source, "\n")
	lines := make([]SourceLine, 0, len(rawLines))
	address := uint32(0)

	for i, raw := range rawLines {
		line := SourceLine{Index: i, Raw: raw}
		body, diff := trimAndGetFrontDiffCount(raw, whitespace)

		if len(body) == 0 {
			line.Kind = LineEmpty
			lines = append(lines, line)
			continue
		}

		if strings.HasPrefix(body, commentMarker) {
			line.Kind = LineComment
			line.Comment = body
			line.CommentOffset = diff
			lines = append(lines, line)
			continue
		}

		if idx := strings.Index(body, commentMarker); idx != -1 {
			line.Comment = strings.TrimRight(body[idx:], whitespace)
			line.CommentOffset = diff + idx
			body = strings.TrimRight(body[:idx], whitespace)
		}
		line.Body = body
		line.BodyOffset = diff
		line.Address = address

		if isLabelLine(body) {
			line.Kind = LineLabel
		} else {
			line.Kind = LineInstruction
			address += 4
		}
		lines = append(lines, line)
	}

	return lines
}

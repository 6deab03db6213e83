package assembler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

type ErrorKind int

const (
	KindInvalidSyntax ErrorKind = iota
	KindDuplicateLabel
	KindUndefinedLabel
	KindInvalidInstruction
	KindInvalidRegister
)

var (
	ErrInvalidSyntax      = errors.New("invalid syntax")
	ErrDuplicateLabel     = errors.New("duplicate label")
	ErrUndefinedLabel     = errors.New("undefined label")
	ErrInvalidInstruction = errors.New("invalid instruction")
	ErrInvalidRegister    = errors.New("invalid register")
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidSyntax:
		return "Syntax Error"
	case KindDuplicateLabel:
		return "Duplicate Label"
	case KindUndefinedLabel:
		return "Undefined Label"
	case KindInvalidInstruction:
		return "Invalid Instruction"
	case KindInvalidRegister:
		return "Invalid Register"
	}
	return "Error"
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindDuplicateLabel:
		return ErrDuplicateLabel
	case KindUndefinedLabel:
		return ErrUndefinedLabel
	case KindInvalidInstruction:
		return ErrInvalidInstruction
	case KindInvalidRegister:
		return ErrInvalidRegister
	}
	return ErrInvalidSyntax
}

// Notes carried by AsmError.Note.
const (
	NoteInvalidLabelName      = "invalid label name"
	NoteDuplicateLabel        = "duplicate label"
	NoteUndefinedLabel        = "undefined label"
	NoteInvalidInstruction    = "invalid instruction"
	NoteInvalidRegister       = "invalid register"
	NoteIncompleteInstruction = "incomplete instruction"
	NoteInvalidArguments      = "invalid instruction arguments"
	NoteInvalidImmediate      = "invalid immediate value"
	NoteImmediateOutOfRange   = "immediate out of range"
	NoteMisalignedOffset      = "misaligned offset"
)

// AsmError is the single error type produced by the assembler. Assembly stops at the first one.
type AsmError struct {
	Kind    ErrorKind
	Line    int    // 1-based
	Context string // rendered 3-line window
	Note    string
	Token   string // offending source text, may be empty
	Range   TextRange
}

func (e *AsmError) Error() string {
	return fmt.Sprintf("%s found at line %d: %s\n%s", e.Kind, e.Line, e.Note, e.Context)
}

func (e *AsmError) Unwrap() error {
	return e.Kind.sentinel()
}

// Message is the one-line human readable form used by editors.
func (e *AsmError) Message() string {
	if e.Token == "" {
		return e.Kind.String() + ": " + e.Note
	}
	return e.Kind.String() + ": " + e.Note + " \"" + e.Token + "\""
}

func (e *AsmError) Diagnostic() Diagnostic {
	return Diagnostic{
		Range:    e.Range,
		Message:  e.Message(),
		Source:   "Assembler",
		Severity: Error,
	}
}

// RenderContext renders the lines around index, marking the failing line with err! and
// underlining span (relative to the line's body). A nil span underlines the whole body.
func RenderContext(lines []SourceLine, index int, span *Span) string {
	if len(lines) == 0 || index < 0 || index >= len(lines) {
		return ""
	}

	start, end := index-1, index+1
	if start < 0 {
		start, end = 0, 2
	}
	if end > len(lines)-1 {
		end = len(lines) - 1
		start = end - 2
	}
	if start < 0 {
		start = 0
	}

	width := len(strconv.Itoa(end + 1))
	var sb strings.Builder
	for i := start; i <= end; i++ {
		raw := strings.TrimRight(lines[i].Raw, "\r")
		marker := "    "
		if i == index {
			marker = "err!"
		}
		fmt.Fprintf(&sb, "%s %*d | %s\n", marker, width, i+1, raw)

		if i == index {
			col, length := underlineBounds(lines[i], span)
			col = min(col, len(raw))
			end := min(col+length, len(raw))
			pad := []rune(raw[:col])
			for j := range pad {
				if pad[j] != '\t' {
					pad[j] = ' '
				}
			}
			carets := utf8.RuneCountInString(raw[col:end]) + col + length - end
			fmt.Fprintf(&sb, "     %s | %s%s\n", strings.Repeat(" ", width), string(pad), strings.Repeat("^", carets))
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func underlineBounds(line SourceLine, span *Span) (int, int) {
	if span == nil {
		length := len(line.Body)
		if length == 0 {
			length = 1
		}
		return line.BodyOffset, length
	}
	length := span.Length
	if length < 1 {
		length = 1
	}
	return line.BodyOffset + span.Offset, length
}

// utf16Len counts s in UTF-16 code units, the unit of LSP character offsets.
func utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// byteOffset converts an LSP character offset on raw back to a byte offset.
func byteOffset(raw string, char int) int {
	units := 0
	for i, r := range raw {
		if units >= char {
			return i
		}
		units++
		if r >= 0x10000 {
			units++
		}
	}
	return len(raw) + char - units
}

// bodyRange converts a byte span of the line's body to an LSP range.
func bodyRange(line SourceLine, span *Span) TextRange {
	col, length := underlineBounds(line, span)
	raw := line.Raw
	start := min(col, len(raw))
	end := min(col+length, len(raw))

	startChar := utf16Len(raw[:start]) + col - start
	endChar := startChar + utf16Len(raw[start:end]) + col + length - end
	return TextRange{
		Start: TextPosition{Line: line.Index, Char: startChar},
		End:   TextPosition{Line: line.Index, Char: endChar},
	}
}

// Errors
type assemblyError struct{}

var Errors assemblyError

func (assemblyError) build(kind ErrorKind, lines []SourceLine, index int, span *Span, note, token string) *AsmError {
	err := &AsmError{
		Kind:    kind,
		Line:    index + 1,
		Context: RenderContext(lines, index, span),
		Note:    note,
		Token:   token,
	}
	if index >= 0 && index < len(lines) {
		err.Range = bodyRange(lines[index], span)
	}
	return err
}

func (a assemblyError) InvalidSyntax(lines []SourceLine, index int, span *Span, note string) *AsmError {
	token := ""
	if span != nil && index >= 0 && index < len(lines) {
		body := lines[index].Body
		if span.Offset+span.Length <= len(body) {
			token = body[span.Offset : span.Offset+span.Length]
		}
	}
	return a.build(KindInvalidSyntax, lines, index, span, note, token)
}

func (a assemblyError) DuplicateLabel(lines []SourceLine, index int, label string) *AsmError {
	return a.build(KindDuplicateLabel, lines, index, &Span{Length: len(label)}, NoteDuplicateLabel, label)
}

func (a assemblyError) UndefinedLabel(lines []SourceLine, index int, span Span, label string) *AsmError {
	return a.build(KindUndefinedLabel, lines, index, &span, NoteUndefinedLabel, label)
}

func (a assemblyError) InvalidInstruction(lines []SourceLine, index int, mnemonic string) *AsmError {
	return a.build(KindInvalidInstruction, lines, index, &Span{Length: len(mnemonic)}, NoteInvalidInstruction, mnemonic)
}

func (a assemblyError) InvalidRegister(lines []SourceLine, index int, span Span, register string) *AsmError {
	return a.build(KindInvalidRegister, lines, index, &span, NoteInvalidRegister, register)
}

// Warnings
type assemblyWarning struct{}

var Warnings assemblyWarning

func (assemblyWarning) UnusedLabel(label string, r TextRange) Diagnostic {
	return Diagnostic{
		Range:    r,
		Message:  "Unused label: \"" + label + "\"",
		Source:   "Assembler",
		Severity: Warning,
	}
}

func (assemblyWarning) ShiftAmountWillBeTruncated(value string, r TextRange) Diagnostic {
	return Diagnostic{
		Range:    r,
		Message:  "Shift amount \"" + value + "\" is outside 0..31, only its lower 5 bits are encoded",
		Source:   "Assembler",
		Severity: Warning,
	}
}

func (assemblyWarning) ImmediateBitsWillBeDiscarded(value string, r TextRange) Diagnostic {
	return Diagnostic{
		Range:    r,
		Message:  "Lower 12 bits of \"" + value + "\" will be discarded",
		Source:   "Assembler",
		Severity: Warning,
	}
}

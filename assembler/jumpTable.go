package assembler

import (
	"regexp"
	"sort"

	"github.com/samber/lo"
)

// label names follow C identifiers: a leading digit is rejected, a leading underscore is allowed
var labelNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func checkValidSymbolName(name string) bool {
	return labelNameRe.MatchString(name)
}

// JumpTable maps label names to instruction-memory addresses. It is immutable once built.
type JumpTable struct {
	labels map[string]uint32
	lines  map[string]int
}

func (t JumpTable) Lookup(label string) (uint32, bool) {
	addr, ok := t.labels[label]
	return addr, ok
}

// DefinitionLine returns the zero-based line index where label is declared.
func (t JumpTable) DefinitionLine(label string) (int, bool) {
	line, ok := t.lines[label]
	return line, ok
}

func (t JumpTable) Len() int {
	return len(t.labels)
}

// Labels returns all label names sorted alphabetically.
func (t JumpTable) Labels() []string {
	names := lo.Keys(t.labels)
	sort.Strings(names)
	return names
}

// LabelsAt returns the labels bound to address, in declaration order.
func (t JumpTable) LabelsAt(address uint32) []string {
	names := lo.Filter(lo.Keys(t.labels), func(name string, _ int) bool {
		return t.labels[name] == address
	})
	sort.Slice(names, func(i, j int) bool {
		return t.lines[names[i]] < t.lines[names[j]]
	})
	return names
}

// BuildJumpTable binds every label line to the address of the instruction that follows it.
// It must run over the whole file before any instruction is parsed.
func BuildJumpTable(lines []SourceLine) (JumpTable, error) {
	table := JumpTable{
		labels: make(map[string]uint32),
		lines:  make(map[string]int),
	}

	for _, line := range lines {
		if line.Kind != LineLabel {
			continue
		}

		name := line.Body[:len(line.Body)-1]
		if !checkValidSymbolName(name) {
			return JumpTable{}, Errors.InvalidSyntax(lines, line.Index, &Span{Length: len(line.Body)}, NoteInvalidLabelName)
		}
		if _, ok := table.labels[name]; ok {
			return JumpTable{}, Errors.DuplicateLabel(lines, line.Index, name)
		}

		table.labels[name] = line.Address
		table.lines[name] = line.Index
	}

	return table, nil
}

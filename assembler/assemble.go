package assembler

import (
	"sort"
)

// Assemble assembles input with the package configuration.
func Assemble(input string) (*AssembledResult, error) {
	return AssembleWithConfig(input, GetConfig())
}

// AssembleWithConfig runs both passes over input. On error the result is nil: there is no partial output.
func AssembleWithConfig(input string, config AssemblerConfig) (*AssembledResult, error) {
	lines := AnalyzeLines(input)

	table, err := BuildJumpTable(lines)
	if err != nil {
		return nil, err
	}

	p := &parser{lines: lines, table: table, config: config, referenced: map[string]bool{}}
	instructions, err := p.parseAll()
	if err != nil {
		return nil, err
	}

	result := &AssembledResult{
		Lines:         lines,
		Labels:        table,
		Instructions:  instructions,
		ProgramText:   EncodeProgram(instructions),
		AddressToLine: make(map[uint32]int, len(instructions)),
		Warnings:      p.warnings,
	}
	for _, inst := range instructions {
		result.AddressToLine[inst.Address] = inst.Line
	}

	for _, name := range table.Labels() {
		if p.referenced[name] {
			continue
		}
		index, _ := table.DefinitionLine(name)
		span := Span{Length: len(name)}
		result.Warnings = append(result.Warnings, Warnings.UnusedLabel(name, bodyRange(lines[index], &span)))
	}
	sort.SliceStable(result.Warnings, func(i, j int) bool {
		return result.Warnings[i].Range.Start.Line < result.Warnings[j].Range.Start.Line
	})

	return result, nil
}

// LineForAddress returns the zero-based source line of the instruction at address.
func (a *AssembledResult) LineForAddress(address uint32) (int, bool) {
	line, ok := a.AddressToLine[address]
	return line, ok
}

// LabelsAt returns the labels that resolve to address, in declaration order.
func (a *AssembledResult) LabelsAt(address uint32) []string {
	return a.Labels.LabelsAt(address)
}

// InstructionAtLine returns the instruction parsed from the zero-based source line.
func (a *AssembledResult) InstructionAtLine(line int) (Instruction, bool) {
	if line < 0 || line >= len(a.Lines) || a.Lines[line].Kind != LineInstruction {
		return Instruction{}, false
	}
	idx := sort.Search(len(a.Instructions), func(i int) bool {
		return a.Instructions[i].Line >= line
	})
	if idx < len(a.Instructions) && a.Instructions[idx].Line == line {
		return a.Instructions[idx], true
	}
	return Instruction{}, false
}

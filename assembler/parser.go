package assembler

import (
	"sort"
	"strconv"
	"strings"
)

type parser struct {
	lines      []SourceLine
	table      JumpTable
	config     AssemblerConfig
	referenced map[string]bool
	warnings   []Diagnostic
}

// ParseInstructions is the second pass: it turns every instruction line into an Instruction, in source order.
// table must already hold every label of the file.
func ParseInstructions(lines []SourceLine, table JumpTable, config AssemblerConfig) ([]Instruction, error) {
	p := &parser{lines: lines, table: table, config: config, referenced: map[string]bool{}}
	return p.parseAll()
}

func (p *parser) parseAll() ([]Instruction, error) {
	instructions := make([]Instruction, 0, len(p.lines))
	for _, line := range p.lines {
		if line.Kind != LineInstruction {
			continue
		}
		inst, err := p.parseLine(line)
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, inst)
	}
	return instructions, nil
}

// parseImmediate accepts Go integer literals: 42, -42, 0x2A, 0o52, 052, 0b101010, 1_000.
func parseImmediate(text string) (int64, error) {
	return strconv.ParseInt(text, 0, 64)
}

// a label operand starting with a digit or sign is an explicit byte offset
func isNumericOperand(text string) bool {
	if text == "" {
		return false
	}
	c := text[0]
	return c == '-' || c == '+' || (c >= '0' && c <= '9')
}

func (p *parser) parseLine(line SourceLine) (Instruction, error) {
	body := line.Body
	split := strings.IndexAny(body, whitespace)
	if split == -1 {
		return Instruction{}, Errors.InvalidSyntax(p.lines, line.Index, &Span{Length: len(body)}, NoteIncompleteInstruction)
	}

	mnemonic := body[:split]
	entry, ok := LookupInstruction(mnemonic)
	if !ok {
		return Instruction{}, Errors.InvalidInstruction(p.lines, line.Index, mnemonic)
	}

	args, diff := trimAndGetFrontDiffCount(body[split:], whitespace)
	argsOffset := split + diff

	var operands map[string]OperandMatch
	matched := false
	for _, g := range entry.Grammars {
		if operands, matched = g.Match(args); matched {
			break
		}
	}
	if !matched {
		return Instruction{}, Errors.InvalidSyntax(p.lines, line.Index, &Span{Offset: argsOffset, Length: len(args)}, NoteInvalidArguments)
	}

	spanOf := func(m OperandMatch) Span {
		return Span{Offset: argsOffset + m.Offset, Length: len(m.Text)}
	}

	imm := int64(0)
	var immSpan Span
	if m, ok := operands[operandImm]; ok {
		immSpan = spanOf(m)
		v, err := parseImmediate(m.Text)
		if err != nil {
			return Instruction{}, Errors.InvalidSyntax(p.lines, line.Index, &immSpan, NoteInvalidImmediate)
		}
		imm = v
	}

	if m, ok := operands[operandLabel]; ok {
		immSpan = spanOf(m)
		if isNumericOperand(m.Text) {
			v, err := parseImmediate(m.Text)
			if err != nil {
				return Instruction{}, Errors.InvalidSyntax(p.lines, line.Index, &immSpan, NoteInvalidImmediate)
			}
			imm = v
		} else {
			target, ok := p.table.Lookup(m.Text)
			if !ok {
				return Instruction{}, Errors.UndefinedLabel(p.lines, line.Index, immSpan, m.Text)
			}
			p.referenced[m.Text] = true
			imm = int64(target) - int64(line.Address)
		}
	}

	regs, err := p.resolveRegisters(line, operands, spanOf)
	if err != nil {
		return Instruction{}, err
	}

	if err := p.checkImmediate(line, entry, imm, immSpan); err != nil {
		return Instruction{}, err
	}

	inst := Instruction{
		Line:     line.Index,
		Address:  line.Address,
		Mnemonic: entry.Mnemonic,
		Entry:    entry,
	}

	switch entry.Format {
	case FormatR:
		inst.Operands = ROperands{Rd: regs[operandRd], Rs1: regs[operandRs1], Rs2: regs[operandRs2]}
	case FormatI:
		inst.Operands = IOperands{Rd: regs[operandRd], Rs1: regs[operandRs1], Imm: imm}
		if entry.IsShiftImmediate() && (imm < 0 || imm > 31) {
			m := operands[operandImm]
			p.warnings = append(p.warnings, Warnings.ShiftAmountWillBeTruncated(m.Text, bodyRange(line, &immSpan)))
		}
	case FormatS:
		inst.Operands = SOperands{Rs1: regs[operandRs1], Rs2: regs[operandRs2], Imm: imm}
	case FormatB:
		inst.Operands = BOperands{Rs1: regs[operandRs1], Rs2: regs[operandRs2], Imm: imm}
	case FormatU:
		inst.Operands = UOperands{Rd: regs[operandRd], Imm: imm}
		if imm&0xFFF != 0 {
			m := operands[operandImm]
			p.warnings = append(p.warnings, Warnings.ImmediateBitsWillBeDiscarded(m.Text, bodyRange(line, &immSpan)))
		}
	case FormatJ:
		inst.Operands = JOperands{Rd: regs[operandRd], Imm: imm}
	}

	return inst, nil
}

// resolveRegisters validates register operands left to right so the first bad one is reported.
func (p *parser) resolveRegisters(line SourceLine, operands map[string]OperandMatch, spanOf func(OperandMatch) Span) (map[string]Register, error) {
	names := make([]string, 0, 3)
	for _, name := range []string{operandRd, operandRs1, operandRs2} {
		if _, ok := operands[name]; ok {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		return operands[names[i]].Offset < operands[names[j]].Offset
	})

	regs := make(map[string]Register, len(names))
	for _, name := range names {
		m := operands[name]
		idx, ok := ResolveRegister(m.Text)
		if !ok {
			return nil, Errors.InvalidRegister(p.lines, line.Index, spanOf(m), m.Text)
		}
		regs[name] = Register{Name: m.Text, Index: idx}
	}
	return regs, nil
}

func (p *parser) checkImmediate(line SourceLine, entry *CatalogEntry, imm int64, span Span) error {
	if p.config.StrictAlignment && (entry.Format == FormatB || entry.Format == FormatJ) && imm%2 != 0 {
		return Errors.InvalidSyntax(p.lines, line.Index, &span, NoteMisalignedOffset)
	}
	if !p.config.StrictImmediates {
		return nil
	}

	lo, hi := immediateRange(entry)
	if imm < lo || imm > hi {
		return Errors.InvalidSyntax(p.lines, line.Index, &span, NoteImmediateOutOfRange)
	}
	return nil
}

// immediateRange is the inclusive range an immediate must fall in to be encoded without loss.
func immediateRange(entry *CatalogEntry) (int64, int64) {
	switch entry.Format {
	case FormatI:
		if entry.IsShiftImmediate() {
			return 0, 31
		}
		return -2048, 2047
	case FormatS:
		return -2048, 2047
	case FormatB:
		return -4096, 4095
	case FormatJ:
		return -(1 << 20), 1<<20 - 1
	case FormatU:
		return -(1 << 31), 1<<32 - 1
	}
	return 0, 0
}

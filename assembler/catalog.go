package assembler

import (
	"regexp"
	"sort"
	"strings"

	"github.com/samber/lo"
)

type Format int

const (
	FormatR Format = iota
	FormatI
	FormatS
	FormatB
	FormatU
	FormatJ
)

func (f Format) String() string {
	switch f {
	case FormatR:
		return "R"
	case FormatI:
		return "I"
	case FormatS:
		return "S"
	case FormatB:
		return "B"
	case FormatU:
		return "U"
	case FormatJ:
		return "J"
	}
	return "?"
}

// opcode groups
const (
	OPCODE_RTYPE    = 0b0110011
	OPCODE_ITYPE    = 0b0010011
	OPCODE_MEMITYPE = 0b0000011
	OPCODE_STYPE    = 0b0100011
	OPCODE_BTYPE    = 0b1100011
	OPCODE_JAL      = 0b1101111
	OPCODE_JALR     = 0b1100111
	OPCODE_LUI      = 0b0110111
	OPCODE_AUIPC    = 0b0010111
)

// operand group names recognized inside a grammar template
const (
	operandRd    = "rd"
	operandRs1   = "rs1"
	operandRs2   = "rs2"
	operandImm   = "imm"
	operandLabel = "label"
)

var operandPatterns = map[string]string{
	operandRd:    `\w+`,
	operandRs1:   `\w+`,
	operandRs2:   `\w+`,
	operandImm:   `[-+]?\w+`,
	operandLabel: `[-+]?\w+`,
}

// Grammar is the operand pattern of a mnemonic, e.g. "rd, imm(rs1)".
type Grammar struct {
	Template string
	re       *regexp.Regexp
}

// OperandMatch is a captured operand and its byte offset within the matched text.
type OperandMatch struct {
	Text   string
	Offset int
}

func compileGrammar(template string) Grammar {
	var sb strings.Builder
	sb.WriteString(`^`)
	i := 0
	for i < len(template) {
		c := template[i]
		switch {
		case c == ',':
			sb.WriteString(`\s*,\s*`)
			i++
		case c == '(':
			sb.WriteString(`\s*\(\s*`)
			i++
		case c == ')':
			sb.WriteString(`\s*\)`)
			i++
		case c == ' ':
			i++
		default:
			j := i
			for j < len(template) && strings.IndexByte(", ()", template[j]) == -1 {
				j++
			}
			name := template[i:j]
			pattern, ok := operandPatterns[name]
			if !ok {
				panic("unknown operand group in grammar: " + name)
			}
			sb.WriteString(`(?P<` + name + `>` + pattern + `)`)
			i = j
		}
	}
	sb.WriteString(`$`)
	return Grammar{Template: template, re: regexp.MustCompile(sb.String())}
}

// Match returns the named operands of text, or false if text does not follow the grammar.
func (g Grammar) Match(text string) (map[string]OperandMatch, bool) {
	loc := g.re.FindStringSubmatchIndex(text)
	if loc == nil {
		return nil, false
	}
	res := make(map[string]OperandMatch)
	for i, name := range g.re.SubexpNames() {
		if name == "" || loc[2*i] < 0 {
			continue
		}
		res[name] = OperandMatch{Text: text[loc[2*i]:loc[2*i+1]], Offset: loc[2*i]}
	}
	return res, true
}

// CatalogEntry describes how one mnemonic is parsed and encoded. Entries are shared read-only.
type CatalogEntry struct {
	Mnemonic    string
	Format      Format
	Opcode      uint32
	Funct3      uint32
	Funct7      uint32
	HasFunct3   bool
	HasFunct7   bool
	Grammars    []Grammar // tried in order, first match wins
	Description string
}

// Grammar returns the primary operand grammar.
func (e *CatalogEntry) Grammar() Grammar {
	return e.Grammars[0]
}

// IsShiftImmediate reports whether funct7 is carried in imm[11:5].
func (e *CatalogEntry) IsShiftImmediate() bool {
	return e.Format == FormatI && e.HasFunct7
}

var (
	grammarRdRs1Rs2   = compileGrammar("rd, rs1, rs2")
	grammarRdRs1Imm   = compileGrammar("rd, rs1, imm")
	grammarRdImm      = compileGrammar("rd, imm")
	grammarRdMem      = compileGrammar("rd, imm(rs1)")
	grammarRs2Mem     = compileGrammar("rs2, imm(rs1)")
	grammarRdLabel    = compileGrammar("rd, label")
	grammarRs1Rs2Lbl  = compileGrammar("rs1, rs2, label")
	grammarRdRs1Label = compileGrammar("rd, rs1, label")
)

func rType(mnemonic string, funct3, funct7 uint32, desc string) *CatalogEntry {
	return &CatalogEntry{Mnemonic: mnemonic, Format: FormatR, Opcode: OPCODE_RTYPE, Funct3: funct3, Funct7: funct7,
		HasFunct3: true, HasFunct7: true, Grammars: []Grammar{grammarRdRs1Rs2}, Description: desc}
}

func iType(mnemonic string, opcode, funct3 uint32, grammar Grammar, desc string) *CatalogEntry {
	return &CatalogEntry{Mnemonic: mnemonic, Format: FormatI, Opcode: opcode, Funct3: funct3,
		HasFunct3: true, Grammars: []Grammar{grammar}, Description: desc}
}

func shiftType(mnemonic string, funct3, funct7 uint32, desc string) *CatalogEntry {
	e := iType(mnemonic, OPCODE_ITYPE, funct3, grammarRdRs1Imm, desc)
	e.Funct7 = funct7
	e.HasFunct7 = true
	return e
}

func sType(mnemonic string, funct3 uint32, desc string) *CatalogEntry {
	return &CatalogEntry{Mnemonic: mnemonic, Format: FormatS, Opcode: OPCODE_STYPE, Funct3: funct3,
		HasFunct3: true, Grammars: []Grammar{grammarRs2Mem}, Description: desc}
}

func bType(mnemonic string, funct3 uint32, desc string) *CatalogEntry {
	return &CatalogEntry{Mnemonic: mnemonic, Format: FormatB, Opcode: OPCODE_BTYPE, Funct3: funct3,
		HasFunct3: true, Grammars: []Grammar{grammarRs1Rs2Lbl}, Description: desc}
}

var catalog = buildCatalog([]*CatalogEntry{
	// register compute
	rType("add", 0b000, 0b0000000, "x[rd] = x[rs1] + x[rs2]"),
	rType("sub", 0b000, 0b0100000, "x[rd] = x[rs1] - x[rs2]"),
	rType("xor", 0b100, 0b0000000, "x[rd] = x[rs1] ^ x[rs2]"),
	rType("or", 0b110, 0b0000000, "x[rd] = x[rs1] | x[rs2]"),
	rType("and", 0b111, 0b0000000, "x[rd] = x[rs1] & x[rs2]"),
	rType("sll", 0b001, 0b0000000, "x[rd] = x[rs1] << x[rs2][4:0]"),
	rType("srl", 0b101, 0b0000000, "x[rd] = x[rs1] >> x[rs2][4:0], zero fill"),
	rType("sra", 0b101, 0b0100000, "x[rd] = x[rs1] >> x[rs2][4:0], sign fill"),
	rType("slt", 0b010, 0b0000000, "x[rd] = x[rs1] < x[rs2] (signed) ? 1 : 0"),
	rType("sltu", 0b011, 0b0000000, "x[rd] = x[rs1] < x[rs2] (unsigned) ? 1 : 0"),

	// immediate compute
	iType("addi", OPCODE_ITYPE, 0b000, grammarRdRs1Imm, "x[rd] = x[rs1] + sext(imm)"),
	iType("xori", OPCODE_ITYPE, 0b100, grammarRdRs1Imm, "x[rd] = x[rs1] ^ sext(imm)"),
	iType("ori", OPCODE_ITYPE, 0b110, grammarRdRs1Imm, "x[rd] = x[rs1] | sext(imm)"),
	iType("andi", OPCODE_ITYPE, 0b111, grammarRdRs1Imm, "x[rd] = x[rs1] & sext(imm)"),
	shiftType("slli", 0b001, 0b0000000, "x[rd] = x[rs1] << shamt"),
	shiftType("srli", 0b101, 0b0000000, "x[rd] = x[rs1] >> shamt, zero fill"),
	shiftType("srai", 0b101, 0b0100000, "x[rd] = x[rs1] >> shamt, sign fill"),
	iType("slti", OPCODE_ITYPE, 0b010, grammarRdRs1Imm, "x[rd] = x[rs1] < sext(imm) (signed) ? 1 : 0"),
	iType("sltiu", OPCODE_ITYPE, 0b011, grammarRdRs1Imm, "x[rd] = x[rs1] < sext(imm) (unsigned) ? 1 : 0"),

	// loads
	iType("lb", OPCODE_MEMITYPE, 0b000, grammarRdMem, "x[rd] = sext(M[x[rs1] + sext(imm)][7:0])"),
	iType("lh", OPCODE_MEMITYPE, 0b001, grammarRdMem, "x[rd] = sext(M[x[rs1] + sext(imm)][15:0])"),
	iType("lw", OPCODE_MEMITYPE, 0b010, grammarRdMem, "x[rd] = M[x[rs1] + sext(imm)][31:0]"),
	iType("lbu", OPCODE_MEMITYPE, 0b100, grammarRdMem, "x[rd] = zext(M[x[rs1] + sext(imm)][7:0])"),
	iType("lhu", OPCODE_MEMITYPE, 0b101, grammarRdMem, "x[rd] = zext(M[x[rs1] + sext(imm)][15:0])"),

	// stores
	sType("sb", 0b000, "M[x[rs1] + sext(imm)] = x[rs2][7:0]"),
	sType("sh", 0b001, "M[x[rs1] + sext(imm)] = x[rs2][15:0]"),
	sType("sw", 0b010, "M[x[rs1] + sext(imm)] = x[rs2][31:0]"),

	// branches
	bType("beq", 0b000, "if (x[rs1] == x[rs2]) pc += offset"),
	bType("bne", 0b001, "if (x[rs1] != x[rs2]) pc += offset"),
	bType("blt", 0b100, "if (x[rs1] < x[rs2]) pc += offset (signed)"),
	bType("bge", 0b101, "if (x[rs1] >= x[rs2]) pc += offset (signed)"),
	bType("bltu", 0b110, "if (x[rs1] < x[rs2]) pc += offset (unsigned)"),
	bType("bgeu", 0b111, "if (x[rs1] >= x[rs2]) pc += offset (unsigned)"),

	// jumps
	{Mnemonic: "jal", Format: FormatJ, Opcode: OPCODE_JAL, Grammars: []Grammar{grammarRdLabel},
		Description: "x[rd] = pc + 4; pc += offset"},
	{Mnemonic: "jalr", Format: FormatI, Opcode: OPCODE_JALR, Funct3: 0b000, HasFunct3: true,
		Grammars:    []Grammar{grammarRdRs1Label, grammarRdMem},
		Description: "t = pc + 4; pc = (x[rs1] + sext(offset)) & ~1; x[rd] = t"},

	// upper immediates
	{Mnemonic: "lui", Format: FormatU, Opcode: OPCODE_LUI, Grammars: []Grammar{grammarRdImm},
		Description: "x[rd] = imm[31:12] << 12"},
	{Mnemonic: "auipc", Format: FormatU, Opcode: OPCODE_AUIPC, Grammars: []Grammar{grammarRdImm},
		Description: "x[rd] = pc + (imm[31:12] << 12)"},
})

func buildCatalog(entries []*CatalogEntry) map[string]*CatalogEntry {
	res := make(map[string]*CatalogEntry, len(entries))
	for _, e := range entries {
		if _, dup := res[e.Mnemonic]; dup {
			panic("duplicate catalog entry: " + e.Mnemonic)
		}
		res[e.Mnemonic] = e
	}
	return res
}

// LookupInstruction finds the catalog entry of a mnemonic. Mnemonics are case-insensitive.
func LookupInstruction(mnemonic string) (*CatalogEntry, bool) {
	e, ok := catalog[strings.ToLower(mnemonic)]
	return e, ok
}

// Mnemonics lists every supported mnemonic in alphabetical order.
func Mnemonics() []string {
	names := lo.Keys(catalog)
	sort.Strings(names)
	return names
}

package assembler

import (
	"fmt"
	"strconv"
)

type AssembledResult struct {
	Lines         []SourceLine
	Labels        JumpTable
	Instructions  []Instruction
	ProgramText   []uint32
	AddressToLine map[uint32]int // address (relative) to zero-based line index
	Warnings      []Diagnostic
}

// Register is a register operand as written in the source and as resolved.
type Register struct {
	Name  string
	Index uint32
}

func (r Register) String() string {
	if r.Name != "" {
		return r.Name
	}
	return "x" + strconv.Itoa(int(r.Index))
}

func abiReg(index uint32) Register {
	return Register{Name: ABIName(index), Index: index}
}

// Operands is one of ROperands, IOperands, SOperands, BOperands, UOperands or JOperands.
type Operands interface {
	Format() Format
	sealed()
}

type ROperands struct {
	Rd, Rs1, Rs2 Register
}

type IOperands struct {
	Rd, Rs1 Register
	Imm     int64
}

type SOperands struct {
	Rs1, Rs2 Register
	Imm      int64
}

type BOperands struct {
	Rs1, Rs2 Register
	Imm      int64 // byte offset from the branch
}

type UOperands struct {
	Rd  Register
	Imm int64 // bits 31:12 are used as is
}

type JOperands struct {
	Rd  Register
	Imm int64 // byte offset from the jump
}

func (ROperands) Format() Format { return FormatR }
func (IOperands) Format() Format { return FormatI }
func (SOperands) Format() Format { return FormatS }
func (BOperands) Format() Format { return FormatB }
func (UOperands) Format() Format { return FormatU }
func (JOperands) Format() Format { return FormatJ }

func (ROperands) sealed() {}
func (IOperands) sealed() {}
func (SOperands) sealed() {}
func (BOperands) sealed() {}
func (UOperands) sealed() {}
func (JOperands) sealed() {}

// Instruction is a parsed instruction line. It is never modified after the parser creates it.
type Instruction struct {
	Line     int // zero-based source line index
	Address  uint32
	Mnemonic string
	Entry    *CatalogEntry
	Operands Operands
}

// String renders the instruction in canonical form, e.g. "lw a0, 8(sp)".
func (inst Instruction) String() string {
	switch op := inst.Operands.(type) {
	case ROperands:
		return fmt.Sprintf("%s %s, %s, %s", inst.Mnemonic, op.Rd, op.Rs1, op.Rs2)
	case IOperands:
		if inst.Entry != nil && inst.Entry.Opcode != OPCODE_ITYPE {
			return fmt.Sprintf("%s %s, %d(%s)", inst.Mnemonic, op.Rd, op.Imm, op.Rs1)
		}
		return fmt.Sprintf("%s %s, %s, %d", inst.Mnemonic, op.Rd, op.Rs1, op.Imm)
	case SOperands:
		return fmt.Sprintf("%s %s, %d(%s)", inst.Mnemonic, op.Rs2, op.Imm, op.Rs1)
	case BOperands:
		return fmt.Sprintf("%s %s, %s, %d", inst.Mnemonic, op.Rs1, op.Rs2, op.Imm)
	case UOperands:
		return fmt.Sprintf("%s %s, 0x%x", inst.Mnemonic, op.Rd, uint32(op.Imm)&0xFFFFF000)
	case JOperands:
		return fmt.Sprintf("%s %s, %d", inst.Mnemonic, op.Rd, op.Imm)
	}
	return inst.Mnemonic
}

// Span is a byte range relative to a line's Body.
type Span struct {
	Offset int
	Length int
}

type TextPosition struct {
	Line int `json:"line"`
	Char int `json:"character"`
}

type TextRange struct {
	Start TextPosition `json:"start"`
	End   TextPosition `json:"end"`
}

type CodeDescription struct {
	URL string `json:"href"`
}

type DiagnosticSeverity int

const (
	Error       DiagnosticSeverity = 1
	Warning     DiagnosticSeverity = 2
	Information DiagnosticSeverity = 3
	Hint        DiagnosticSeverity = 4
)

type Diagnostic struct {
	Range           TextRange          `json:"range"`
	Message         string             `json:"message"`
	Source          string             `json:"source,omitempty"`
	CodeDescription *CodeDescription   `json:"codeDescription,omitempty"`
	Severity        DiagnosticSeverity `json:"severity,omitempty"`
}

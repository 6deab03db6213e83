package assembler_test

import (
	"testing"

	"github.gatech.edu/ECEInnovation/rv32ias/assembler"
)

const roundTripSource = `
top:
	add s0, a0, a1
	sub t0, t1, t2
	xor a0, a0, a0
	or a1, a2, a3
	and a4, a5, a6
	sll s1, s2, s3
	srl s4, s5, s6
	sra s7, s8, s9
	slt s10, s11, t3
	sltu t4, t5, t6
	addi sp, sp, -16
	xori a0, a0, -1
	ori a0, a0, 0x7ff
	andi a0, a0, 255
	slli a0, a0, 31
	srli a0, a0, 1
	srai a0, a0, 7
	slti a0, a1, -2048
	sltiu a0, a1, 1
	lb a0, -4(sp)
	lh a0, 2(sp)
	lw ra, 12(sp)
	lbu a0, 0(a1)
	lhu a0, 2047(a1)
	sb a0, -1(sp)
	sh a0, 6(sp)
	sw ra, 12(sp)
	beq a0, zero, top
	bne a0, a1, bottom
	blt a0, a1, top
	bge a0, a1, bottom
	bltu a0, a1, top
	bgeu a0, a1, bottom
	jal ra, top
	jalr zero, 0(ra)
	lui a0, 0xABCDE000
	auipc t0, 0x1000
bottom:
	jal zero, bottom
`

func TestDecodeRoundTrip(t *testing.T) {
	program, err := assembler.Assemble(roundTripSource)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	for i, word := range program.ProgramText {
		decoded, ok := assembler.Decode(word)
		if !ok {
			t.Errorf("Expected 0x%08x to decode", word)
			continue
		}

		original := program.Instructions[i]
		if decoded.Mnemonic != original.Mnemonic {
			t.Errorf("Expected mnemonic %s, got %s", original.Mnemonic, decoded.Mnemonic)
		}
		if decoded.Operands.Format() != original.Operands.Format() {
			t.Errorf("Expected format %s for %s, got %s", original.Operands.Format(), original.Mnemonic, decoded.Operands.Format())
		}
		if !sameOperands(original.Operands, decoded.Operands) {
			t.Errorf("Expected operands %v, got %v", original, decoded)
		}
		if again := assembler.EncodeInstruction(decoded); again != word {
			t.Errorf("Expected re-encoding of %s to be 0x%08x, got 0x%08x", original.Mnemonic, word, again)
		}
	}
}

func sameOperands(a, b assembler.Operands) bool {
	switch x := a.(type) {
	case assembler.ROperands:
		y := b.(assembler.ROperands)
		return x.Rd.Index == y.Rd.Index && x.Rs1.Index == y.Rs1.Index && x.Rs2.Index == y.Rs2.Index
	case assembler.IOperands:
		y := b.(assembler.IOperands)
		return x.Rd.Index == y.Rd.Index && x.Rs1.Index == y.Rs1.Index && x.Imm == y.Imm
	case assembler.SOperands:
		y := b.(assembler.SOperands)
		return x.Rs1.Index == y.Rs1.Index && x.Rs2.Index == y.Rs2.Index && x.Imm == y.Imm
	case assembler.BOperands:
		y := b.(assembler.BOperands)
		return x.Rs1.Index == y.Rs1.Index && x.Rs2.Index == y.Rs2.Index && x.Imm == y.Imm
	case assembler.UOperands:
		y := b.(assembler.UOperands)
		return x.Rd.Index == y.Rd.Index && uint32(x.Imm)&0xFFFFF000 == uint32(y.Imm)
	case assembler.JOperands:
		y := b.(assembler.JOperands)
		return x.Rd.Index == y.Rd.Index && x.Imm == y.Imm
	}
	return false
}

func TestEncodeFieldPositions(t *testing.T) {
	// one representative per format, fields checked by hand
	tests := []struct {
		source   string
		expected uint32
	}{
		{"add x1, x2, x3", 0b0000000_00011_00010_000_00001_0110011},
		{"addi x5, x0, -1", 0b111111111111_00000_000_00101_0010011},
		{"sw x5, 4(x6)", 0b0000000_00101_00110_010_00100_0100011},
		{"beq x0, x0, 8", 0b0_000000_00000_00000_000_0100_0_1100011},
		{"lui x7, 0x12345000", 0b00010010001101000101_00111_0110111},
		{"jal x1, 2048", 0b0_0000000000_1_00000000_00001_1101111},
	}

	for _, test := range tests {
		program, err := assembler.Assemble(test.source)
		if err != nil {
			t.Errorf("Expected %s to assemble, got %v", test.source, err)
			continue
		}
		if program.ProgramText[0] != test.expected {
			t.Errorf("Expected %s to encode to 0x%08x, got 0x%08x", test.source, test.expected, program.ProgramText[0])
		}
	}
}

func TestEncodeUnknownOperandsPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Expected panic for instruction without operands")
		}
	}()
	entry, _ := assembler.LookupInstruction("add")
	assembler.EncodeInstruction(assembler.Instruction{Mnemonic: "add", Entry: entry})
}

func TestDisassemble(t *testing.T) {
	lines := assembler.Disassemble([]uint32{0x003100B3, 0x00812503, 0xFFFFFFFF, 0x40315093})
	expected := []string{
		"add ra, sp, gp",
		"lw a0, 8(sp)",
		".word 0xffffffff",
		"srai ra, sp, 3",
	}

	for i := range expected {
		if lines[i] != expected[i] {
			t.Errorf("Expected \"%s\", got \"%s\"", expected[i], lines[i])
		}
	}
}

func TestCatalog(t *testing.T) {
	mnemonics := assembler.Mnemonics()
	if len(mnemonics) != 37 {
		t.Errorf("Expected 37 mnemonics, got %d", len(mnemonics))
	}

	entry, ok := assembler.LookupInstruction("SRAI")
	if !ok {
		t.Fatalf("Expected srai to be found")
	}
	if !entry.IsShiftImmediate() || entry.Funct7 != 0b0100000 {
		t.Errorf("Expected srai to carry funct7 0100000 in its immediate")
	}
	if entry.Grammar().Template != "rd, rs1, imm" {
		t.Errorf("Unexpected grammar %s", entry.Grammar().Template)
	}

	for _, unsupported := range []string{"ecall", "ebreak", "mul", "nop"} {
		if _, ok := assembler.LookupInstruction(unsupported); ok {
			t.Errorf("Expected %s to be unsupported", unsupported)
		}
	}
}

package assembler

import "fmt"

func makeRTypeInstruction(opcode, rd, rs1, rs2, func7, func3 uint32) uint32 {
	return (func7 << 25) | (rs2 << 20) | (rs1 << 15) | (func3 << 12) | (rd << 7) | opcode
}

func makeITypeInstruction(opcode, rd, rs1, imm, func3 uint32) uint32 {
	imm = imm & 0xFFF
	return (imm << 20) | (rs1 << 15) | (func3 << 12) | (rd << 7) | opcode
}

func makeSTypeInstruction(opcode, rs1, rs2, imm, func3 uint32) uint32 {
	imm = imm & 0xFFF
	return ((imm >> 5) << 25) | (rs2 << 20) | (rs1 << 15) | (func3 << 12) | ((imm & 0x1F) << 7) | opcode
}

// imm is the byte offset, bit 0 is dropped
func makeBTypeInstruction(opcode, rs1, rs2, imm, func3 uint32) uint32 {
	imm = imm & 0x1FFF

	instr := (rs2 << 20) | (rs1 << 15) | (func3 << 12) | opcode
	instr |= ((imm >> 12) & 0x1) << 31
	instr |= ((imm >> 11) & 0x1) << 7
	instr |= ((imm >> 5) & 0x3F) << 25
	instr |= ((imm >> 1) & 0xF) << 8

	return instr
}

// imm bits 31:12 land in the word as is
func makeUTypeInstruction(opcode, rd, imm uint32) uint32 {
	return (imm & 0xFFFFF000) | (rd << 7) | opcode
}

// imm is the byte offset, bit 0 is dropped
func makeJTypeInstruction(opcode, rd, imm uint32) uint32 {
	imm = imm & 0x1FFFFF

	instr := (rd << 7) | opcode
	instr |= ((imm >> 20) & 0x1) << 31
	instr |= ((imm >> 1) & 0x3FF) << 21
	instr |= ((imm >> 11) & 0x1) << 20
	instr |= ((imm >> 12) & 0xFF) << 12

	return instr
}

// EncodeInstruction packs inst into its 32-bit machine word. Immediates are truncated to their field.
func EncodeInstruction(inst Instruction) uint32 {
	e := inst.Entry
	switch op := inst.Operands.(type) {
	case ROperands:
		return makeRTypeInstruction(e.Opcode, op.Rd.Index, op.Rs1.Index, op.Rs2.Index, e.Funct7, e.Funct3)
	case IOperands:
		imm := uint32(op.Imm)
		if e.IsShiftImmediate() {
			imm = (e.Funct7 << 5) | (imm & 0x1F)
		}
		return makeITypeInstruction(e.Opcode, op.Rd.Index, op.Rs1.Index, imm, e.Funct3)
	case SOperands:
		return makeSTypeInstruction(e.Opcode, op.Rs1.Index, op.Rs2.Index, uint32(op.Imm), e.Funct3)
	case BOperands:
		return makeBTypeInstruction(e.Opcode, op.Rs1.Index, op.Rs2.Index, uint32(op.Imm), e.Funct3)
	case UOperands:
		return makeUTypeInstruction(e.Opcode, op.Rd.Index, uint32(op.Imm))
	case JOperands:
		return makeJTypeInstruction(e.Opcode, op.Rd.Index, uint32(op.Imm))
	}
	panic(fmt.Sprintf("unknown operand variant %T for %s", inst.Operands, inst.Mnemonic))
}

// EncodeProgram encodes instructions in order; word i belongs to address 4*i.
func EncodeProgram(instructions []Instruction) []uint32 {
	words := make([]uint32, len(instructions))
	for i, inst := range instructions {
		words[i] = EncodeInstruction(inst)
	}
	return words
}

func DecodeRTypeInstruction(instruction uint32) (opcode, rd, rs1, rs2, func7, func3 uint32) {
	opcode = instruction & 0x7F
	rd = (instruction >> 7) & 0x1F
	func3 = (instruction >> 12) & 0x7
	rs1 = (instruction >> 15) & 0x1F
	rs2 = (instruction >> 20) & 0x1F
	func7 = (instruction >> 25) & 0x7F
	return
}

func DecodeITypeInstruction(instruction uint32) (opcode, rd, rs1, imm, func3 uint32) {
	opcode = instruction & 0x7F
	rd = (instruction >> 7) & 0x1F
	func3 = (instruction >> 12) & 0x7
	rs1 = (instruction >> 15) & 0x1F
	imm = (instruction >> 20) & 0xFFF
	return
}

func DecodeSTypeInstruction(instruction uint32) (opcode, rs1, rs2, imm, func3 uint32) {
	opcode = instruction & 0x7F
	func3 = (instruction >> 12) & 0x7
	rs1 = (instruction >> 15) & 0x1F
	rs2 = (instruction >> 20) & 0x1F
	imm = (((instruction >> 25) & 0x7F) << 5) | ((instruction >> 7) & 0x1F)
	return
}

func DecodeBTypeInstruction(instruction uint32) (opcode, rs1, rs2, imm, func3 uint32) {
	opcode = instruction & 0x7F
	func3 = (instruction >> 12) & 0x7
	rs1 = (instruction >> 15) & 0x1F
	rs2 = (instruction >> 20) & 0x1F
	imm = ((instruction >> 31) & 0x1) << 12
	imm |= ((instruction >> 7) & 0x1) << 11
	imm |= ((instruction >> 25) & 0x3F) << 5
	imm |= ((instruction >> 8) & 0xF) << 1
	return
}

func DecodeUTypeInstruction(instruction uint32) (opcode, rd, imm uint32) {
	opcode = instruction & 0x7F
	rd = (instruction >> 7) & 0x1F
	imm = instruction & 0xFFFFF000
	return
}

func DecodeJTypeInstruction(instruction uint32) (opcode, rd, imm uint32) {
	opcode = instruction & 0x7F
	rd = (instruction >> 7) & 0x1F
	imm = ((instruction >> 31) & 0x1) << 20
	imm |= ((instruction >> 21) & 0x3FF) << 1
	imm |= ((instruction >> 20) & 0x1) << 11
	imm |= ((instruction >> 12) & 0xFF) << 12
	return
}

func GetOpCode(instruction uint32) uint32 {
	return instruction & 0x7F
}

// signExtend treats the low bits of v as a two's complement number.
func signExtend(v uint32, bits uint) int64 {
	shift := 32 - bits
	return int64(int32(v<<shift) >> shift)
}

type decodeKey struct {
	opcode, funct3, funct7 uint32
}

var decodeTable = buildDecodeTable()

func buildDecodeTable() map[decodeKey]*CatalogEntry {
	table := make(map[decodeKey]*CatalogEntry, len(catalog))
	for _, e := range catalog {
		table[decodeKey{e.Opcode, e.Funct3, e.Funct7}] = e
	}
	return table
}

func lookupEncoding(opcode, funct3, funct7 uint32) (*CatalogEntry, bool) {
	e, ok := decodeTable[decodeKey{opcode, funct3, funct7}]
	return e, ok
}

// Decode turns a machine word back into an Instruction at address 0.
// Registers are named by their ABI alias. It reports false for words outside the supported set.
func Decode(word uint32) (Instruction, bool) {
	opcode := GetOpCode(word)
	var entry *CatalogEntry
	var operands Operands
	ok := false

	switch opcode {
	case OPCODE_RTYPE:
		_, rd, rs1, rs2, funct7, funct3 := DecodeRTypeInstruction(word)
		entry, ok = lookupEncoding(opcode, funct3, funct7)
		operands = ROperands{Rd: abiReg(rd), Rs1: abiReg(rs1), Rs2: abiReg(rs2)}
	case OPCODE_ITYPE, OPCODE_MEMITYPE, OPCODE_JALR:
		_, rd, rs1, imm, funct3 := DecodeITypeInstruction(word)
		if opcode == OPCODE_ITYPE && (funct3 == 0b001 || funct3 == 0b101) {
			entry, ok = lookupEncoding(opcode, funct3, imm>>5)
			operands = IOperands{Rd: abiReg(rd), Rs1: abiReg(rs1), Imm: int64(imm & 0x1F)}
		} else {
			entry, ok = lookupEncoding(opcode, funct3, 0)
			operands = IOperands{Rd: abiReg(rd), Rs1: abiReg(rs1), Imm: signExtend(imm, 12)}
		}
	case OPCODE_STYPE:
		_, rs1, rs2, imm, funct3 := DecodeSTypeInstruction(word)
		entry, ok = lookupEncoding(opcode, funct3, 0)
		operands = SOperands{Rs1: abiReg(rs1), Rs2: abiReg(rs2), Imm: signExtend(imm, 12)}
	case OPCODE_BTYPE:
		_, rs1, rs2, imm, funct3 := DecodeBTypeInstruction(word)
		entry, ok = lookupEncoding(opcode, funct3, 0)
		operands = BOperands{Rs1: abiReg(rs1), Rs2: abiReg(rs2), Imm: signExtend(imm, 13)}
	case OPCODE_LUI, OPCODE_AUIPC:
		_, rd, imm := DecodeUTypeInstruction(word)
		entry, ok = lookupEncoding(opcode, 0, 0)
		operands = UOperands{Rd: abiReg(rd), Imm: int64(imm)}
	case OPCODE_JAL:
		_, rd, imm := DecodeJTypeInstruction(word)
		entry, ok = lookupEncoding(opcode, 0, 0)
		operands = JOperands{Rd: abiReg(rd), Imm: signExtend(imm, 21)}
	}

	if !ok {
		return Instruction{}, false
	}
	return Instruction{Line: -1, Mnemonic: entry.Mnemonic, Entry: entry, Operands: operands}, true
}

// Disassemble decodes a program; words that do not decode are rendered as ".word 0x...".
func Disassemble(words []uint32) []string {
	res := make([]string, len(words))
	for i, w := range words {
		inst, ok := Decode(w)
		if !ok {
			res[i] = fmt.Sprintf(".word 0x%08x", w)
			continue
		}
		inst.Address = uint32(i * 4)
		res[i] = inst.String()
	}
	return res
}

package cpu

import (
	"fmt"

	"github.com/valerio/go-chip8/chip8/bit"
)

// Kind identifies one of the 35 instruction shapes.
type Kind uint8

const (
	OpInvalid Kind = iota
	OpNOP          // 0000
	OpCLS          // 00E0
	OpRET          // 00EE
	OpJP           // 1nnn
	OpCALL         // 2nnn
	OpSEByte       // 3xnn
	OpSNEByte      // 4xnn
	OpSEReg        // 5xy0
	OpLDByte       // 6xnn
	OpADDByte      // 7xnn
	OpLDReg        // 8xy0
	OpOR           // 8xy1
	OpAND          // 8xy2
	OpXOR          // 8xy3
	OpADDReg       // 8xy4
	OpSUB          // 8xy5
	OpSHR          // 8xy6
	OpSUBN         // 8xy7
	OpSHL          // 8xyE
	OpSNEReg       // 9xy0
	OpLDI          // Annn
	OpJPV0         // Bnnn
	OpRND          // Cxnn
	OpDRW          // Dxyn
	OpSKP          // Ex9E
	OpSKNP         // ExA1
	OpLDVxDT       // Fx07
	OpLDVxK        // Fx0A
	OpLDDTVx       // Fx15
	OpLDSTVx       // Fx18
	OpADDI         // Fx1E
	OpLDF          // Fx29
	OpLDB          // Fx33
	OpLDIVx        // Fx55
	OpLDVxI        // Fx65

	kindCount
)

var kindNames = [kindCount]string{
	OpInvalid: "???",
	OpNOP:     "NOP",
	OpCLS:     "CLS",
	OpRET:     "RET",
	OpJP:      "JP addr",
	OpCALL:    "CALL addr",
	OpSEByte:  "SE Vx, byte",
	OpSNEByte: "SNE Vx, byte",
	OpSEReg:   "SE Vx, Vy",
	OpLDByte:  "LD Vx, byte",
	OpADDByte: "ADD Vx, byte",
	OpLDReg:   "LD Vx, Vy",
	OpOR:      "OR Vx, Vy",
	OpAND:     "AND Vx, Vy",
	OpXOR:     "XOR Vx, Vy",
	OpADDReg:  "ADD Vx, Vy",
	OpSUB:     "SUB Vx, Vy",
	OpSHR:     "SHR Vx",
	OpSUBN:    "SUBN Vx, Vy",
	OpSHL:     "SHL Vx",
	OpSNEReg:  "SNE Vx, Vy",
	OpLDI:     "LD I, addr",
	OpJPV0:    "JP V0, addr",
	OpRND:     "RND Vx, byte",
	OpDRW:     "DRW Vx, Vy, n",
	OpSKP:     "SKP Vx",
	OpSKNP:    "SKNP Vx",
	OpLDVxDT:  "LD Vx, DT",
	OpLDVxK:   "LD Vx, K",
	OpLDDTVx:  "LD DT, Vx",
	OpLDSTVx:  "LD ST, Vx",
	OpADDI:    "ADD I, Vx",
	OpLDF:     "LD F, Vx",
	OpLDB:     "LD B, Vx",
	OpLDIVx:   "LD [I], Vx",
	OpLDVxI:   "LD Vx, [I]",
}

func (k Kind) String() string {
	if k >= kindCount {
		return kindNames[OpInvalid]
	}
	return kindNames[k]
}

// Instruction is a decoded opcode with all of its operand fields extracted.
type Instruction struct {
	Kind   Kind
	Opcode uint16
	X      uint8  // second nibble, register index
	Y      uint8  // third nibble, register index
	N      uint8  // lowest nibble
	NN     uint8  // low byte
	NNN    uint16 // low 12 bits, address
}

func (i Instruction) String() string {
	return fmt.Sprintf("%04X %s", i.Opcode, i.Kind)
}

// pattern matches an opcode when opcode&mask == value. Wildcard nibbles are
// zero in the mask.
type pattern struct {
	mask  uint16
	value uint16
	kind  Kind
}

// patterns is the complete opcode table. Entries are pairwise disjoint, so
// the order only matters for lookup speed.
var patterns = [...]pattern{
	{0xFFFF, 0x0000, OpNOP},
	{0xFFFF, 0x00E0, OpCLS},
	{0xFFFF, 0x00EE, OpRET},
	{0xF000, 0x1000, OpJP},
	{0xF000, 0x2000, OpCALL},
	{0xF000, 0x3000, OpSEByte},
	{0xF000, 0x4000, OpSNEByte},
	{0xF00F, 0x5000, OpSEReg},
	{0xF000, 0x6000, OpLDByte},
	{0xF000, 0x7000, OpADDByte},
	{0xF00F, 0x8000, OpLDReg},
	{0xF00F, 0x8001, OpOR},
	{0xF00F, 0x8002, OpAND},
	{0xF00F, 0x8003, OpXOR},
	{0xF00F, 0x8004, OpADDReg},
	{0xF00F, 0x8005, OpSUB},
	{0xF00F, 0x8006, OpSHR},
	{0xF00F, 0x8007, OpSUBN},
	{0xF00F, 0x800E, OpSHL},
	{0xF00F, 0x9000, OpSNEReg},
	{0xF000, 0xA000, OpLDI},
	{0xF000, 0xB000, OpJPV0},
	{0xF000, 0xC000, OpRND},
	{0xF000, 0xD000, OpDRW},
	{0xF0FF, 0xE09E, OpSKP},
	{0xF0FF, 0xE0A1, OpSKNP},
	{0xF0FF, 0xF007, OpLDVxDT},
	{0xF0FF, 0xF00A, OpLDVxK},
	{0xF0FF, 0xF015, OpLDDTVx},
	{0xF0FF, 0xF018, OpLDSTVx},
	{0xF0FF, 0xF01E, OpADDI},
	{0xF0FF, 0xF029, OpLDF},
	{0xF0FF, 0xF033, OpLDB},
	{0xF0FF, 0xF055, OpLDIVx},
	{0xF0FF, 0xF065, OpLDVxI},
}

// Decode splits an opcode into its nibbles and identifies the instruction.
// Opcodes that match no pattern decode to OpInvalid with ok set to false.
func Decode(opcode uint16) (ins Instruction, ok bool) {
	ins = Instruction{
		Opcode: opcode,
		X:      bit.Nibble(1, opcode),
		Y:      bit.Nibble(2, opcode),
		N:      bit.Nibble(3, opcode),
		NN:     bit.Low(opcode),
		NNN:    bit.Address(opcode),
	}

	for _, p := range patterns {
		if opcode&p.mask == p.value {
			ins.Kind = p.kind
			return ins, true
		}
	}

	return ins, false
}

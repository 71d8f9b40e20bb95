package cpu

import (
	"github.com/valerio/go-chip8/chip8/bit"
	"github.com/valerio/go-chip8/chip8/memory"
)

// Opcode represents a function that executes a decoded instruction.
type Opcode func(*CPU, Instruction) error

var opcodes = [kindCount]Opcode{
	OpInvalid: opInvalid,
	OpNOP:     opNOP,
	OpCLS:     opCLS,
	OpRET:     opRET,
	OpJP:      opJP,
	OpCALL:    opCALL,
	OpSEByte:  opSEByte,
	OpSNEByte: opSNEByte,
	OpSEReg:   opSEReg,
	OpLDByte:  opLDByte,
	OpADDByte: opADDByte,
	OpLDReg:   opLDReg,
	OpOR:      opOR,
	OpAND:     opAND,
	OpXOR:     opXOR,
	OpADDReg:  opADDReg,
	OpSUB:     opSUB,
	OpSHR:     opSHR,
	OpSUBN:    opSUBN,
	OpSHL:     opSHL,
	OpSNEReg:  opSNEReg,
	OpLDI:     opLDI,
	OpJPV0:    opJPV0,
	OpRND:     opRND,
	OpDRW:     opDRW,
	OpSKP:     opSKP,
	OpSKNP:    opSKNP,
	OpLDVxDT:  opLDVxDT,
	OpLDVxK:   opLDVxK,
	OpLDDTVx:  opLDDTVx,
	OpLDSTVx:  opLDSTVx,
	OpADDI:    opADDI,
	OpLDF:     opLDF,
	OpLDB:     opLDB,
	OpLDIVx:   opLDIVx,
	OpLDVxI:   opLDVxI,
}

// unimplemented opcode, address is the one the opcode was fetched from
func opInvalid(c *CPU, ins Instruction) error {
	return &OpcodeError{Opcode: ins.Opcode, Address: c.pc - opcodeSize}
}

// 0000
func opNOP(c *CPU, ins Instruction) error {
	return nil
}

// 00E0
func opCLS(c *CPU, ins Instruction) error {
	c.display.Clear()
	return nil
}

// 00EE
func opRET(c *CPU, ins Instruction) error {
	address, err := c.popStack()
	if err != nil {
		return err
	}
	c.pc = address
	return nil
}

// 1nnn
func opJP(c *CPU, ins Instruction) error {
	c.pc = ins.NNN
	return nil
}

// 2nnn, PC already points past the call so it is the return address.
func opCALL(c *CPU, ins Instruction) error {
	if err := c.pushStack(c.pc); err != nil {
		return err
	}
	c.pc = ins.NNN
	return nil
}

// 3xnn
func opSEByte(c *CPU, ins Instruction) error {
	if c.v[ins.X] == ins.NN {
		c.skip()
	}
	return nil
}

// 4xnn
func opSNEByte(c *CPU, ins Instruction) error {
	if c.v[ins.X] != ins.NN {
		c.skip()
	}
	return nil
}

// 5xy0
func opSEReg(c *CPU, ins Instruction) error {
	if c.v[ins.X] == c.v[ins.Y] {
		c.skip()
	}
	return nil
}

// 6xnn
func opLDByte(c *CPU, ins Instruction) error {
	c.v[ins.X] = ins.NN
	return nil
}

// 7xnn, wraps without touching VF.
func opADDByte(c *CPU, ins Instruction) error {
	c.v[ins.X] += ins.NN
	return nil
}

// 8xy0
func opLDReg(c *CPU, ins Instruction) error {
	c.v[ins.X] = c.v[ins.Y]
	return nil
}

// 8xy1
func opOR(c *CPU, ins Instruction) error {
	c.v[ins.X] |= c.v[ins.Y]
	return nil
}

// 8xy2
func opAND(c *CPU, ins Instruction) error {
	c.v[ins.X] &= c.v[ins.Y]
	return nil
}

// 8xy3
func opXOR(c *CPU, ins Instruction) error {
	c.v[ins.X] ^= c.v[ins.Y]
	return nil
}

// The flag is always written after the result: with x = F the flag wins.

// 8xy4, VF = carry
func opADDReg(c *CPU, ins Instruction) error {
	result, overflow := bit.CheckedAdd(c.v[ins.X], c.v[ins.Y])
	c.v[ins.X] = result
	c.setFlag(overflow)
	return nil
}

// 8xy5, Vx = Vx - Vy, VF = NOT borrow
func opSUB(c *CPU, ins Instruction) error {
	result, borrow := bit.CheckedSub(c.v[ins.X], c.v[ins.Y])
	c.v[ins.X] = result
	c.setFlag(!borrow)
	return nil
}

// 8xy6, VF = dropped bit
func opSHR(c *CPU, ins Instruction) error {
	value := c.v[ins.X]
	c.v[ins.X] = value >> 1
	c.setFlag(bit.IsSet(0, value))
	return nil
}

// 8xy7, Vx = Vy - Vx, VF = NOT borrow
func opSUBN(c *CPU, ins Instruction) error {
	result, borrow := bit.CheckedSub(c.v[ins.Y], c.v[ins.X])
	c.v[ins.X] = result
	c.setFlag(!borrow)
	return nil
}

// 8xyE, VF = dropped bit
func opSHL(c *CPU, ins Instruction) error {
	value := c.v[ins.X]
	c.v[ins.X] = value << 1
	c.setFlag(bit.IsSet(7, value))
	return nil
}

// 9xy0
func opSNEReg(c *CPU, ins Instruction) error {
	if c.v[ins.X] != c.v[ins.Y] {
		c.skip()
	}
	return nil
}

// Annn
func opLDI(c *CPU, ins Instruction) error {
	c.i = ins.NNN
	return nil
}

// Bnnn
func opJPV0(c *CPU, ins Instruction) error {
	c.pc = uint16(c.v[0]) + ins.NNN
	return nil
}

// Cxnn
func opRND(c *CPU, ins Instruction) error {
	c.v[ins.X] = c.rng.Byte() & ins.NN
	return nil
}

// Dxyn draws an 8 pixel wide, n rows tall sprite read from I at (Vx, Vy).
// Pixels are XORed in and wrap around both edges of the screen.
// VF is set if any pixel was turned off.
func opDRW(c *CPU, ins Instruction) error {
	rows := uint16(ins.N)
	if err := c.mem.Check(c.i, int(rows)); err != nil {
		return err
	}

	originX := uint(c.v[ins.X])
	originY := uint(c.v[ins.Y])
	erased := false

	for row := uint16(0); row < rows; row++ {
		sprite := c.mem.Read(c.i + row)
		for col := uint8(0); col < 8; col++ {
			if !bit.IsSet(7-col, sprite) {
				continue
			}
			if c.display.Flip(originX+uint(col), originY+uint(row)) {
				erased = true
			}
		}
	}

	c.setFlag(erased)
	return nil
}

// Ex9E
func opSKP(c *CPU, ins Instruction) error {
	pressed, err := c.keys.IsPressed(c.v[ins.X])
	if err != nil {
		return err
	}
	if pressed {
		c.skip()
	}
	return nil
}

// ExA1
func opSKNP(c *CPU, ins Instruction) error {
	pressed, err := c.keys.IsPressed(c.v[ins.X])
	if err != nil {
		return err
	}
	if !pressed {
		c.skip()
	}
	return nil
}

// Fx07
func opLDVxDT(c *CPU, ins Instruction) error {
	c.v[ins.X] = c.dt
	return nil
}

// Fx0A waits for a key by rewinding PC, so the same instruction is fetched
// again on the next tick. Vx is only written once a key is captured.
func opLDVxK(c *CPU, ins Instruction) error {
	key, ok := c.keys.FirstPressed()
	if !ok {
		c.pc -= opcodeSize
		return nil
	}
	c.v[ins.X] = key
	return nil
}

// Fx15
func opLDDTVx(c *CPU, ins Instruction) error {
	c.dt = c.v[ins.X]
	return nil
}

// Fx18
func opLDSTVx(c *CPU, ins Instruction) error {
	c.st = c.v[ins.X]
	return nil
}

// Fx1E, wraps at 16 bits
func opADDI(c *CPU, ins Instruction) error {
	c.i += uint16(c.v[ins.X])
	return nil
}

// Fx29
func opLDF(c *CPU, ins Instruction) error {
	c.i = memory.GlyphAddress(c.v[ins.X])
	return nil
}

// Fx33
func opLDB(c *CPU, ins Instruction) error {
	if err := c.mem.Check(c.i, 3); err != nil {
		return err
	}
	hundreds, tens, ones := bit.BCD(c.v[ins.X])
	c.mem.Write(c.i, hundreds)
	c.mem.Write(c.i+1, tens)
	c.mem.Write(c.i+2, ones)
	return nil
}

// Fx55, I is left unchanged.
func opLDIVx(c *CPU, ins Instruction) error {
	count := uint16(ins.X) + 1
	if err := c.mem.Check(c.i, int(count)); err != nil {
		return err
	}
	for r := uint16(0); r < count; r++ {
		c.mem.Write(c.i+r, c.v[r])
	}
	return nil
}

// Fx65, I is left unchanged.
func opLDVxI(c *CPU, ins Instruction) error {
	count := uint16(ins.X) + 1
	if err := c.mem.Check(c.i, int(count)); err != nil {
		return err
	}
	for r := uint16(0); r < count; r++ {
		c.v[r] = c.mem.Read(c.i + r)
	}
	return nil
}

package cpu

import "fmt"

// Instruction is one entry of an opcode table.
type Instruction struct {
	Mnemonic string
	Length   uint8 // encoded length in bytes, including any prefix
	Cycles   uint8 // T-cycles, or the not-taken cost of a conditional branch
	// BranchCycles is the cost when a conditional branch is taken.
	BranchCycles uint8

	// exec runs the instruction. It either advances PC by Length or sets
	// PC itself, and reports whether a conditional branch was taken.
	exec func(c *CPU, bus Bus, in *Instruction) bool
}

// Defined reports whether the opcode is assigned an instruction.
func (in Instruction) Defined() bool {
	return in.exec != nil
}

var (
	baseOpcodes [256]Instruction
	cbOpcodes   [256]Instruction
)

// Lookup returns the base table entry for op. 0xCB is the prefix entry;
// the instruction it selects is found with LookupCB.
func Lookup(op uint8) Instruction {
	return baseOpcodes[op]
}

// LookupCB returns the entry for the byte following a 0xCB prefix.
func LookupCB(op uint8) Instruction {
	return cbOpcodes[op]
}

// Operand locations in the order of the 3-bit register encoding.
type loc uint8

const (
	locB loc = iota
	locC
	locD
	locE
	locH
	locL
	locHLInd // (HL)
	locA
	locImm // d8 following the opcode
)

var locNames = [...]string{"B", "C", "D", "E", "H", "L", "(HL)", "A", "d8"}

var locRegs = [...]Reg{B, C, D, E, H, L, 0, A}

func (c *CPU) read(bus Bus, l loc) uint8 {
	switch l {
	case locHLInd:
		return bus.Read(c.Registers.HL())
	case locImm:
		return c.imm8(bus)
	default:
		return c.Registers.Get(locRegs[l])
	}
}

func (c *CPU) write(bus Bus, l loc, value uint8) {
	if l == locHLInd {
		bus.Write(c.Registers.HL(), value)
		return
	}
	c.Registers.Set(locRegs[l], value)
}

// rr16 is the BC, DE, HL, SP encoding used by loads and 16-bit arithmetic.
var rr16Names = [4]string{"BC", "DE", "HL", "SP"}

func (c *CPU) getRR(i uint8) uint16 {
	if i == 3 {
		return c.SP
	}
	return c.Registers.Get16(Pair(i + 1))
}

func (c *CPU) setRR(i uint8, value uint16) {
	if i == 3 {
		c.SP = value
		return
	}
	c.Registers.Set16(Pair(i+1), value)
}

// Stack pairs use AF in place of SP.
var (
	stackPairs = [4]Pair{BC, DE, HL, AF}
	stackNames = [4]string{"BC", "DE", "HL", "AF"}
)

var condNames = [4]string{"NZ", "Z", "NC", "C"}

var aluNames = [8]string{"ADD A,", "ADC A,", "SUB ", "SBC A,", "AND ", "XOR ", "OR ", "CP "}

// alu applies one of the eight accumulator operations in encoding order.
func (c *CPU) alu(op, value uint8) {
	r := c.Registers
	switch op {
	case 0:
		r.A = c.add8(r.A, value, 0)
	case 1:
		r.A = c.add8(r.A, value, r.carry())
	case 2:
		r.A = c.sub8(r.A, value, 0)
	case 3:
		r.A = c.sub8(r.A, value, r.carry())
	case 4:
		c.and(value)
	case 5:
		c.xor(value)
	case 6:
		c.or(value)
	default:
		c.sub8(r.A, value, 0)
	}
}

// def fills one base table entry.
func def(op uint8, mnemonic string, length, cycles, branch uint8,
	exec func(c *CPU, bus Bus, in *Instruction) bool,
) {
	baseOpcodes[op] = Instruction{
		Mnemonic:     mnemonic,
		Length:       length,
		Cycles:       cycles,
		BranchCycles: branch,
		exec:         exec,
	}
}

// simple wraps a handler that never branches and always falls through.
func simple(fn func(c *CPU, bus Bus)) func(c *CPU, bus Bus, in *Instruction) bool {
	return func(c *CPU, bus Bus, in *Instruction) bool {
		fn(c, bus)
		c.advance(in)
		return false
	}
}

func init() {
	buildLoads()
	buildArithmetic()
	buildControl()
	buildMisc()
	buildCB()

	baseOpcodes[0xCB] = Instruction{Mnemonic: "PREFIX CB", Length: 1, Cycles: 4}
	for _, op := range []uint8{0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD} {
		baseOpcodes[op] = Instruction{Mnemonic: fmt.Sprintf("ILLEGAL_%02X", op), Length: 1}
	}
}

func buildLoads() {
	// LD r, r' and LD r, d8
	for dst := locB; dst <= locA; dst++ {
		for src := locB; src <= locA; src++ {
			op := 0x40 | uint8(dst)<<3 | uint8(src)
			if op == 0x76 {
				continue // HALT
			}
			cycles := uint8(4)
			if dst == locHLInd || src == locHLInd {
				cycles = 8
			}
			def(op, "LD "+locNames[dst]+","+locNames[src], 1, cycles, 0, simple(func(c *CPU, bus Bus) {
				c.write(bus, dst, c.read(bus, src))
			}))
		}

		cycles := uint8(8)
		if dst == locHLInd {
			cycles = 12
		}
		def(0x06|uint8(dst)<<3, "LD "+locNames[dst]+",d8", 2, cycles, 0, simple(func(c *CPU, bus Bus) {
			c.write(bus, dst, c.imm8(bus))
		}))
	}

	// LD rr, d16
	for i := range uint8(4) {
		def(0x01|i<<4, "LD "+rr16Names[i]+",d16", 3, 12, 0, simple(func(c *CPU, bus Bus) {
			c.setRR(i, c.imm16(bus))
		}))
	}

	// Indirect accumulator loads through BC, DE, HL+ and HL-
	indirect := []struct {
		name string
		addr func(c *CPU) uint16
	}{
		{"(BC)", func(c *CPU) uint16 { return c.Registers.Get16(BC) }},
		{"(DE)", func(c *CPU) uint16 { return c.Registers.Get16(DE) }},
		{"(HL+)", func(c *CPU) uint16 { hl := c.Registers.HL(); c.Registers.SetHL(hl + 1); return hl }},
		{"(HL-)", func(c *CPU) uint16 { hl := c.Registers.HL(); c.Registers.SetHL(hl - 1); return hl }},
	}
	for i, ind := range indirect {
		op := uint8(i) << 4 //nolint:gosec // G115: i < 4
		def(op|0x02, "LD "+ind.name+",A", 1, 8, 0, simple(func(c *CPU, bus Bus) {
			bus.Write(ind.addr(c), c.Registers.A)
		}))
		def(op|0x0A, "LD A,"+ind.name, 1, 8, 0, simple(func(c *CPU, bus Bus) {
			c.Registers.A = bus.Read(ind.addr(c))
		}))
	}

	def(0x08, "LD (a16),SP", 3, 20, 0, simple(func(c *CPU, bus Bus) {
		addr := c.imm16(bus)
		bus.Write(addr, uint8(c.SP))      //nolint:gosec // G115: Intentional byte extraction
		bus.Write(addr+1, uint8(c.SP>>8)) //nolint:gosec // G115: Intentional byte extraction
	}))

	def(0xE0, "LDH (a8),A", 2, 12, 0, simple(func(c *CPU, bus Bus) {
		bus.Write(0xFF00|uint16(c.imm8(bus)), c.Registers.A)
	}))
	def(0xF0, "LDH A,(a8)", 2, 12, 0, simple(func(c *CPU, bus Bus) {
		c.Registers.A = bus.Read(0xFF00 | uint16(c.imm8(bus)))
	}))
	def(0xE2, "LD (C),A", 1, 8, 0, simple(func(c *CPU, bus Bus) {
		bus.Write(0xFF00|uint16(c.Registers.C), c.Registers.A)
	}))
	def(0xF2, "LD A,(C)", 1, 8, 0, simple(func(c *CPU, bus Bus) {
		c.Registers.A = bus.Read(0xFF00 | uint16(c.Registers.C))
	}))
	def(0xEA, "LD (a16),A", 3, 16, 0, simple(func(c *CPU, bus Bus) {
		bus.Write(c.imm16(bus), c.Registers.A)
	}))
	def(0xFA, "LD A,(a16)", 3, 16, 0, simple(func(c *CPU, bus Bus) {
		c.Registers.A = bus.Read(c.imm16(bus))
	}))

	def(0xF8, "LD HL,SP+r8", 2, 12, 0, simple(func(c *CPU, bus Bus) {
		c.Registers.SetHL(c.addSP(c.imm8(bus)))
	}))
	def(0xF9, "LD SP,HL", 1, 8, 0, simple(func(c *CPU, _ Bus) {
		c.SP = c.Registers.HL()
	}))

	// PUSH and POP
	for i, pair := range stackPairs {
		op := uint8(i) << 4 //nolint:gosec // G115: i < 4
		name := stackNames[i]
		def(0xC5|op, "PUSH "+name, 1, 16, 0, simple(func(c *CPU, bus Bus) {
			c.push(bus, c.Registers.Get16(pair))
		}))
		def(0xC1|op, "POP "+name, 1, 12, 0, simple(func(c *CPU, bus Bus) {
			c.Registers.Set16(pair, c.pop(bus))
		}))
	}
}

func buildArithmetic() {
	for r := locB; r <= locA; r++ {
		cycles := uint8(4)
		if r == locHLInd {
			cycles = 12
		}
		def(0x04|uint8(r)<<3, "INC "+locNames[r], 1, cycles, 0, simple(func(c *CPU, bus Bus) {
			c.write(bus, r, c.inc8(c.read(bus, r)))
		}))
		def(0x05|uint8(r)<<3, "DEC "+locNames[r], 1, cycles, 0, simple(func(c *CPU, bus Bus) {
			c.write(bus, r, c.dec8(c.read(bus, r)))
		}))
	}

	// ALU A, r and ALU A, d8
	for op := range uint8(8) {
		for src := locB; src <= locA; src++ {
			cycles := uint8(4)
			if src == locHLInd {
				cycles = 8
			}
			def(0x80|op<<3|uint8(src), aluNames[op]+locNames[src], 1, cycles, 0, simple(func(c *CPU, bus Bus) {
				c.alu(op, c.read(bus, src))
			}))
		}
		def(0xC6|op<<3, aluNames[op]+"d8", 2, 8, 0, simple(func(c *CPU, bus Bus) {
			c.alu(op, c.read(bus, locImm))
		}))
	}

	for i := range uint8(4) {
		def(0x03|i<<4, "INC "+rr16Names[i], 1, 8, 0, simple(func(c *CPU, _ Bus) {
			c.setRR(i, c.getRR(i)+1)
		}))
		def(0x0B|i<<4, "DEC "+rr16Names[i], 1, 8, 0, simple(func(c *CPU, _ Bus) {
			c.setRR(i, c.getRR(i)-1)
		}))
		def(0x09|i<<4, "ADD HL,"+rr16Names[i], 1, 8, 0, simple(func(c *CPU, _ Bus) {
			c.Registers.SetHL(c.add16(c.Registers.HL(), c.getRR(i)))
		}))
	}

	def(0xE8, "ADD SP,r8", 2, 16, 0, simple(func(c *CPU, bus Bus) {
		c.SP = c.addSP(c.imm8(bus))
	}))

	def(0x27, "DAA", 1, 4, 0, simple(func(c *CPU, _ Bus) { c.daa() }))
	def(0x2F, "CPL", 1, 4, 0, simple(func(c *CPU, _ Bus) {
		c.Registers.A = ^c.Registers.A
		c.Registers.SetFlag(FlagN).SetFlag(FlagH)
	}))
	def(0x37, "SCF", 1, 4, 0, simple(func(c *CPU, _ Bus) {
		c.Registers.UnsetFlag(FlagN).UnsetFlag(FlagH).SetFlag(FlagC)
	}))
	def(0x3F, "CCF", 1, 4, 0, simple(func(c *CPU, _ Bus) {
		c.Registers.UnsetFlag(FlagN).UnsetFlag(FlagH).
			ToggleFlag(FlagC, !c.Registers.IsFlagSet(FlagC))
	}))

	// Accumulator rotates always clear Z.
	rotates := []struct {
		op   uint8
		name string
		fn   func(c *CPU, v uint8) uint8
	}{
		{0x07, "RLCA", (*CPU).rlc},
		{0x0F, "RRCA", (*CPU).rrc},
		{0x17, "RLA", (*CPU).rl},
		{0x1F, "RRA", (*CPU).rr},
	}
	for _, rot := range rotates {
		def(rot.op, rot.name, 1, 4, 0, simple(func(c *CPU, _ Bus) {
			c.Registers.A = rot.fn(c, c.Registers.A)
			c.Registers.UnsetFlag(FlagZ)
		}))
	}
}

func buildControl() {
	def(0x18, "JR r8", 2, 12, 0, func(c *CPU, bus Bus, _ *Instruction) bool {
		c.PC = c.relTarget(bus)
		return false
	})
	def(0xC3, "JP a16", 3, 16, 0, func(c *CPU, bus Bus, _ *Instruction) bool {
		c.PC = c.imm16(bus)
		return false
	})
	def(0xE9, "JP (HL)", 1, 4, 0, func(c *CPU, _ Bus, _ *Instruction) bool {
		c.PC = c.Registers.HL()
		return false
	})
	def(0xCD, "CALL a16", 3, 24, 0, func(c *CPU, bus Bus, _ *Instruction) bool {
		c.call(bus, c.imm16(bus))
		return false
	})
	def(0xC9, "RET", 1, 16, 0, func(c *CPU, bus Bus, _ *Instruction) bool {
		c.PC = c.pop(bus)
		return false
	})
	def(0xD9, "RETI", 1, 16, 0, func(c *CPU, bus Bus, _ *Instruction) bool {
		c.PC = c.pop(bus)
		c.IME = true
		return false
	})

	for cc := range uint8(4) {
		name := condNames[cc]

		def(0x20|cc<<3, "JR "+name+",r8", 2, 8, 12, func(c *CPU, bus Bus, in *Instruction) bool {
			if c.checkCondition(cc) {
				c.PC = c.relTarget(bus)
				return true
			}
			c.advance(in)
			return false
		})
		def(0xC2|cc<<3, "JP "+name+",a16", 3, 12, 16, func(c *CPU, bus Bus, in *Instruction) bool {
			if c.checkCondition(cc) {
				c.PC = c.imm16(bus)
				return true
			}
			c.advance(in)
			return false
		})
		def(0xC4|cc<<3, "CALL "+name+",a16", 3, 12, 24, func(c *CPU, bus Bus, in *Instruction) bool {
			if c.checkCondition(cc) {
				c.call(bus, c.imm16(bus))
				return true
			}
			c.advance(in)
			return false
		})
		def(0xC0|cc<<3, "RET "+name, 1, 8, 20, func(c *CPU, bus Bus, in *Instruction) bool {
			if c.checkCondition(cc) {
				c.PC = c.pop(bus)
				return true
			}
			c.advance(in)
			return false
		})
	}

	for n := range uint8(8) {
		target := uint16(n) * 8
		def(0xC7|n<<3, fmt.Sprintf("RST %02XH", target), 1, 16, 0, func(c *CPU, bus Bus, _ *Instruction) bool {
			c.push(bus, c.PC+1)
			c.PC = target
			return false
		})
	}
}

func buildMisc() {
	def(0x00, "NOP", 1, 4, 0, simple(func(*CPU, Bus) {}))
	def(0x10, "STOP", 2, 4, 0, simple(func(c *CPU, _ Bus) { c.stopped = true }))
	def(0x76, "HALT", 1, 4, 0, simple(func(c *CPU, _ Bus) { c.halted = true }))
	def(0xF3, "DI", 1, 4, 0, simple(func(c *CPU, _ Bus) { c.IME = false }))
	def(0xFB, "EI", 1, 4, 0, simple(func(c *CPU, _ Bus) { c.IME = true }))
}

// relTarget computes the destination of a JR at PC.
func (c *CPU) relTarget(bus Bus) uint16 {
	offset := int8(c.imm8(bus)) //nolint:gosec // G115: signed jump offset
	return c.PC + 2 + uint16(offset)
}

// call pushes the address following a 3-byte CALL and jumps to target.
func (c *CPU) call(bus Bus, target uint16) {
	c.push(bus, c.PC+3)
	c.PC = target
}

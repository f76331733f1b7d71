// Package cpu implements the Sharp SM83 CPU emulation for the Game Boy.
package cpu

import (
	"errors"
	"fmt"

	"github.com/richardwooding/sm83emu/internal/log"
	"github.com/richardwooding/sm83emu/internal/memory"
)

// Bus is the view of the memory bus the CPU needs.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
	ReadNext8(pc uint16) uint8
	ReadNext16(pc uint16) uint16
}

// Interrupt registers polled while halted.
const (
	addrIF = 0xFF0F
	addrIE = 0xFFFF
)

// ErrIllegalOpcode indicates an opcode with no assigned instruction.
var ErrIllegalOpcode = errors.New("illegal opcode")

// Fault stops the CPU. It records where execution failed and why.
type Fault struct {
	PC       uint16
	Opcode   uint8
	Prefixed bool // Opcode is the byte following a 0xCB prefix
	Err      error
}

func (f *Fault) Error() string {
	op := fmt.Sprintf("%02X", f.Opcode)
	if f.Prefixed {
		op = "CB " + op
	}
	return fmt.Sprintf("cpu fault at PC=0x%04X (opcode %s): %v", f.PC, op, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// CPU represents the Sharp SM83 CPU.
type CPU struct {
	PC        uint16
	SP        uint16
	Registers *Registers

	// Interrupt master enable flag
	IME bool

	// CurrentOp is the last opcode fetched, for diagnostics.
	CurrentOp uint8

	// Cycle counter (T-cycles)
	Cycles uint64

	halted  bool
	stopped bool
	fault   *Fault

	log log.Logger
}

// Option configures a CPU.
type Option func(*CPU)

// WithLogger sets the logger receiving the per-instruction trace.
func WithLogger(l log.Logger) Option {
	return func(c *CPU) {
		c.log = l
	}
}

// New creates a CPU in the state the DMG boot ROM hands over in:
// PC at the cartridge entry point 0x0100 and SP at 0xFFFE.
func New(opts ...Option) *CPU {
	c := &CPU{log: log.NewNullLogger()}
	for _, opt := range opts {
		opt(c)
	}
	c.Reset()
	return c
}

// Reset restores the post-boot register state and clears any fault.
func (c *CPU) Reset() {
	c.PC = 0x0100
	c.SP = 0xFFFE
	c.Registers = NewRegisters()
	c.IME = false
	c.CurrentOp = 0
	c.Cycles = 0
	c.halted = false
	c.stopped = false
	c.fault = nil
}

// Halted reports whether the CPU is waiting in HALT.
func (c *CPU) Halted() bool {
	return c.halted
}

// Stopped reports whether STOP has been executed.
func (c *CPU) Stopped() bool {
	return c.stopped
}

// Fault returns the fault that stopped the CPU, or nil.
func (c *CPU) Fault() *Fault {
	return c.fault
}

// Step executes one instruction and returns the T-cycles it took.
//
// Undefined opcodes and fatal bus accesses stop the CPU with a *Fault; every
// later call returns the same fault until Reset.
func (c *CPU) Step(bus Bus) (cycles uint8, err error) {
	if c.fault != nil {
		return 0, c.fault
	}

	pc := c.PC
	op := uint8(0)
	prefixed := false
	defer func() {
		if r := recover(); r != nil {
			busErr, ok := r.(error)
			var ae *memory.AccessError
			var be *memory.BoundsError
			if !ok || !(errors.As(busErr, &ae) || errors.As(busErr, &be)) {
				panic(r)
			}
			c.fault = &Fault{PC: pc, Opcode: op, Prefixed: prefixed, Err: busErr}
			cycles, err = 0, c.fault
		}
	}()

	if c.stopped {
		c.Cycles += 4
		return 4, nil
	}
	if c.halted {
		// Leave HALT once any enabled interrupt is requested. Dispatch is
		// not emulated, so execution simply continues after the HALT.
		if bus.Read(addrIE)&bus.Read(addrIF)&0x1F == 0 {
			c.Cycles += 4
			return 4, nil
		}
		c.halted = false
	}

	c.CurrentOp = bus.Read(pc)
	op = c.CurrentOp
	in := &baseOpcodes[op]
	if op == 0xCB {
		sub := bus.ReadNext8(pc)
		op, prefixed = sub, true
		in = &cbOpcodes[op]
	}

	if in.exec == nil {
		c.fault = &Fault{PC: pc, Opcode: op, Prefixed: prefixed, Err: ErrIllegalOpcode}
		return 0, c.fault
	}

	c.log.Debugf("PC=%04X op=%02X %-14s %s SP=%04X", pc, c.CurrentOp, in.Mnemonic, c.Registers, c.SP)

	cycles = in.Cycles
	if in.exec(c, bus, in) {
		cycles = in.BranchCycles
	}
	c.Cycles += uint64(cycles)

	return cycles, nil
}

// advance moves PC past the current instruction.
func (c *CPU) advance(in *Instruction) {
	c.PC += uint16(in.Length)
}

// imm8 reads the 8-bit operand of the instruction at PC.
func (c *CPU) imm8(bus Bus) uint8 {
	return bus.ReadNext8(c.PC)
}

// imm16 reads the 16-bit operand of the instruction at PC.
func (c *CPU) imm16(bus Bus) uint16 {
	return bus.ReadNext16(c.PC)
}

// push pushes a 16-bit value onto the stack.
func (c *CPU) push(bus Bus, value uint16) {
	c.SP -= 2
	bus.Write(c.SP, uint8(value))      //nolint:gosec // G115: Intentional byte extraction from 16-bit value
	bus.Write(c.SP+1, uint8(value>>8)) //nolint:gosec // G115: Intentional byte extraction from 16-bit value
}

// pop pops a 16-bit value from the stack.
func (c *CPU) pop(bus Bus) uint16 {
	low := uint16(bus.Read(c.SP))
	high := uint16(bus.Read(c.SP + 1))
	c.SP += 2
	return high<<8 | low
}

// Helper methods for arithmetic operations

// add8 performs 8-bit addition of a, b and carry-in and sets all flags.
func (c *CPU) add8(a, b, carry uint8) uint8 {
	result := a + b + carry

	c.Registers.ToggleFlag(FlagZ, result == 0).
		UnsetFlag(FlagN).
		ToggleFlag(FlagH, (a&0x0F)+(b&0x0F)+carry > 0x0F).
		ToggleFlag(FlagC, uint16(a)+uint16(b)+uint16(carry) > 0xFF)

	return result
}

// sub8 performs 8-bit subtraction of b and borrow-in from a and sets all flags.
func (c *CPU) sub8(a, b, carry uint8) uint8 {
	result := a - b - carry

	c.Registers.ToggleFlag(FlagZ, result == 0).
		SetFlag(FlagN).
		ToggleFlag(FlagH, uint16(a&0x0F) < uint16(b&0x0F)+uint16(carry)).
		ToggleFlag(FlagC, uint16(a) < uint16(b)+uint16(carry))

	return result
}

// add16 performs 16-bit addition for ADD HL, rr. Z is not affected.
func (c *CPU) add16(a, b uint16) uint16 {
	result := a + b

	c.Registers.UnsetFlag(FlagN).
		ToggleFlag(FlagH, (a&0x0FFF)+(b&0x0FFF) > 0x0FFF).
		ToggleFlag(FlagC, uint32(a)+uint32(b) > 0xFFFF)

	return result
}

// addSP computes SP plus a signed offset for ADD SP, r8 and LD HL, SP+r8.
// H and C come from the unsigned low-byte addition.
func (c *CPU) addSP(offset uint8) uint16 {
	sp := c.SP
	result := sp + uint16(int8(offset)) //nolint:gosec // G115: sign extension is intended

	c.Registers.UnsetFlag(FlagZ).
		UnsetFlag(FlagN).
		ToggleFlag(FlagH, (sp&0x0F)+uint16(offset&0x0F) > 0x0F).
		ToggleFlag(FlagC, (sp&0xFF)+uint16(offset) > 0xFF)

	return result
}

// and performs bitwise AND into A.
func (c *CPU) and(value uint8) {
	c.Registers.A &= value
	c.Registers.ToggleFlag(FlagZ, c.Registers.A == 0).
		UnsetFlag(FlagN).
		SetFlag(FlagH).
		UnsetFlag(FlagC)
}

// or performs bitwise OR into A.
func (c *CPU) or(value uint8) {
	c.Registers.A |= value
	c.setLogicFlags()
}

// xor performs bitwise XOR into A.
func (c *CPU) xor(value uint8) {
	c.Registers.A ^= value
	c.setLogicFlags()
}

func (c *CPU) setLogicFlags() {
	c.Registers.ToggleFlag(FlagZ, c.Registers.A == 0).
		UnsetFlag(FlagN).
		UnsetFlag(FlagH).
		UnsetFlag(FlagC)
}

// inc8 increments an 8-bit value. Carry is not affected.
func (c *CPU) inc8(value uint8) uint8 {
	result := value + 1

	c.Registers.ToggleFlag(FlagZ, result == 0).
		UnsetFlag(FlagN).
		ToggleFlag(FlagH, value&0x0F == 0x0F)

	return result
}

// dec8 decrements an 8-bit value. Carry is not affected.
func (c *CPU) dec8(value uint8) uint8 {
	result := value - 1

	c.Registers.ToggleFlag(FlagZ, result == 0).
		SetFlag(FlagN).
		ToggleFlag(FlagH, value&0x0F == 0)

	return result
}

// daa adjusts A to packed BCD after an addition or subtraction.
func (c *CPU) daa() {
	a := c.Registers.A
	carry := c.Registers.IsFlagSet(FlagC)
	adjust := uint8(0)

	if !c.Registers.IsFlagSet(FlagN) {
		if c.Registers.IsFlagSet(FlagH) || a&0x0F > 0x09 {
			adjust |= 0x06
		}
		if carry || a > 0x99 {
			adjust |= 0x60
			carry = true
		}
		a += adjust
	} else {
		if c.Registers.IsFlagSet(FlagH) {
			adjust |= 0x06
		}
		if carry {
			adjust |= 0x60
		}
		a -= adjust
	}

	c.Registers.A = a
	c.Registers.ToggleFlag(FlagZ, a == 0).
		UnsetFlag(FlagH).
		ToggleFlag(FlagC, carry)
}

// Rotate and shift helpers. All of them set Z from the result; the
// accumulator forms clear it afterwards.

func (c *CPU) setShiftFlags(result uint8, carry bool) {
	c.Registers.ToggleFlag(FlagZ, result == 0).
		UnsetFlag(FlagN).
		UnsetFlag(FlagH).
		ToggleFlag(FlagC, carry)
}

// rlc rotates left, copying bit 7 into carry and bit 0.
func (c *CPU) rlc(value uint8) uint8 {
	result := value<<1 | value>>7
	c.setShiftFlags(result, value&0x80 != 0)
	return result
}

// rl rotates left through carry.
func (c *CPU) rl(value uint8) uint8 {
	result := value<<1 | c.Registers.carry()
	c.setShiftFlags(result, value&0x80 != 0)
	return result
}

// rrc rotates right, copying bit 0 into carry and bit 7.
func (c *CPU) rrc(value uint8) uint8 {
	result := value>>1 | value<<7
	c.setShiftFlags(result, value&0x01 != 0)
	return result
}

// rr rotates right through carry.
func (c *CPU) rr(value uint8) uint8 {
	result := value>>1 | c.Registers.carry()<<7
	c.setShiftFlags(result, value&0x01 != 0)
	return result
}

// sla shifts left arithmetic.
func (c *CPU) sla(value uint8) uint8 {
	result := value << 1
	c.setShiftFlags(result, value&0x80 != 0)
	return result
}

// sra shifts right arithmetic (preserves sign bit).
func (c *CPU) sra(value uint8) uint8 {
	result := value>>1 | value&0x80
	c.setShiftFlags(result, value&0x01 != 0)
	return result
}

// swap swaps upper and lower nibbles.
func (c *CPU) swap(value uint8) uint8 {
	result := value<<4 | value>>4
	c.setShiftFlags(result, false)
	return result
}

// srl shifts right logical.
func (c *CPU) srl(value uint8) uint8 {
	result := value >> 1
	c.setShiftFlags(result, value&0x01 != 0)
	return result
}

// bit tests a bit. Carry and the operand are not affected.
func (c *CPU) bit(value uint8, n uint8) {
	c.Registers.ToggleFlag(FlagZ, value&(1<<n) == 0).
		UnsetFlag(FlagN).
		SetFlag(FlagH)
}

// checkCondition evaluates the NZ, Z, NC, C branch conditions.
func (c *CPU) checkCondition(cond uint8) bool {
	switch cond {
	case 0: // NZ - Not Zero
		return !c.Registers.IsFlagSet(FlagZ)
	case 1: // Z - Zero
		return c.Registers.IsFlagSet(FlagZ)
	case 2: // NC - Not Carry
		return !c.Registers.IsFlagSet(FlagC)
	default: // C - Carry
		return c.Registers.IsFlagSet(FlagC)
	}
}

package cpu

import "fmt"

// Flag is a bit mask selecting one flag in the F register.
type Flag uint8

// Flag register bits. The low nibble of F is always zero.
const (
	FlagZ Flag = 0b10000000 // Zero flag (bit 7)
	FlagN Flag = 0b01000000 // Subtraction flag (bit 6)
	FlagH Flag = 0b00100000 // Half-carry flag (bit 5)
	FlagC Flag = 0b00010000 // Carry flag (bit 4)
)

// Reg names one 8-bit register.
type Reg uint8

// 8-bit registers.
const (
	A Reg = iota
	F
	B
	C
	D
	E
	H
	L
)

// Pair names one 16-bit register view. Pairs share storage with their
// 8-bit halves.
type Pair uint8

// 16-bit register pairs.
const (
	AF Pair = iota
	BC
	DE
	HL
)

// Registers represents the SM83 register file.
type Registers struct {
	A uint8 // Accumulator
	F uint8 // Flags (only upper 4 bits used)
	B uint8
	C uint8
	D uint8
	E uint8
	H uint8 // High byte of HL pointer
	L uint8 // Low byte of HL pointer
}

// NewRegisters returns the register values the DMG boot ROM leaves behind.
func NewRegisters() *Registers {
	return &Registers{
		A: 0x01,
		F: 0xB0,
		B: 0x00,
		C: 0x13,
		D: 0x00,
		E: 0xD8,
		H: 0x01,
		L: 0x4D,
	}
}

func (r *Registers) ptr(reg Reg) *uint8 {
	switch reg {
	case A:
		return &r.A
	case F:
		return &r.F
	case B:
		return &r.B
	case C:
		return &r.C
	case D:
		return &r.D
	case E:
		return &r.E
	case H:
		return &r.H
	case L:
		return &r.L
	default:
		panic(fmt.Sprintf("cpu: invalid register %d", reg))
	}
}

// Get returns the value of an 8-bit register.
func (r *Registers) Get(reg Reg) uint8 {
	return *r.ptr(reg)
}

// Set writes an 8-bit register. Writes to F drop the low nibble.
func (r *Registers) Set(reg Reg, value uint8) *Registers {
	if reg == F {
		value &= 0xF0
	}
	*r.ptr(reg) = value
	return r
}

func (p Pair) halves() (hi, lo Reg) {
	switch p {
	case AF:
		return A, F
	case BC:
		return B, C
	case DE:
		return D, E
	case HL:
		return H, L
	default:
		panic(fmt.Sprintf("cpu: invalid register pair %d", p))
	}
}

// Get16 returns the combined value of a register pair.
func (r *Registers) Get16(p Pair) uint16 {
	hi, lo := p.halves()
	return uint16(r.Get(hi))<<8 | uint16(r.Get(lo))
}

// Set16 writes both halves of a register pair.
func (r *Registers) Set16(p Pair, value uint16) *Registers {
	hi, lo := p.halves()
	r.Set(hi, uint8(value>>8))     //nolint:gosec // G115: Intentional byte extraction from 16-bit register
	return r.Set(lo, uint8(value)) //nolint:gosec // G115: Intentional byte extraction from 16-bit register
}

// HL returns the 16-bit HL register pair.
func (r *Registers) HL() uint16 {
	return uint16(r.H)<<8 | uint16(r.L)
}

// SetHL sets the 16-bit HL register pair.
func (r *Registers) SetHL(value uint16) {
	r.H = uint8(value >> 8) //nolint:gosec // G115: Intentional byte extraction from 16-bit register
	r.L = uint8(value)      //nolint:gosec // G115: Intentional byte extraction from 16-bit register
}

// IsFlagSet checks if a flag is set.
func (r *Registers) IsFlagSet(flag Flag) bool {
	return r.F&uint8(flag) != 0
}

// SetFlag sets a flag to 1.
func (r *Registers) SetFlag(flag Flag) *Registers {
	r.F |= uint8(flag)
	return r
}

// UnsetFlag sets a flag to 0.
func (r *Registers) UnsetFlag(flag Flag) *Registers {
	r.F &^= uint8(flag)
	return r
}

// ToggleFlag sets flag when cond holds and clears it otherwise.
func (r *Registers) ToggleFlag(flag Flag, cond bool) *Registers {
	if cond {
		return r.SetFlag(flag)
	}
	return r.UnsetFlag(flag)
}

func (r *Registers) carry() uint8 {
	if r.IsFlagSet(FlagC) {
		return 1
	}
	return 0
}

// String formats the register file for traces and the run command.
func (r *Registers) String() string {
	flags := []byte("----")
	for i, f := range []Flag{FlagZ, FlagN, FlagH, FlagC} {
		if r.IsFlagSet(f) {
			flags[i] = "ZNHC"[i]
		}
	}
	return fmt.Sprintf("A=%02X F=%02X [%s] B=%02X C=%02X D=%02X E=%02X H=%02X L=%02X",
		r.A, r.F, flags, r.B, r.C, r.D, r.E, r.H, r.L)
}

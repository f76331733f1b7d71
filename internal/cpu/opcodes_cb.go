package cpu

import "fmt"

// CB-prefixed opcodes are laid out as xx yyy zzz: xx selects the group,
// yyy the shift operation or bit number, zzz the operand.
func buildCB() {
	shifts := [8]struct {
		name string
		fn   func(c *CPU, v uint8) uint8
	}{
		{"RLC", (*CPU).rlc},
		{"RRC", (*CPU).rrc},
		{"RL", (*CPU).rl},
		{"RR", (*CPU).rr},
		{"SLA", (*CPU).sla},
		{"SRA", (*CPU).sra},
		{"SWAP", (*CPU).swap},
		{"SRL", (*CPU).srl},
	}

	for y := range uint8(8) {
		for r := locB; r <= locA; r++ {
			z := uint8(r)
			// (HL) forms read and write memory; BIT only reads it.
			cycles, bitCycles := uint8(8), uint8(8)
			if r == locHLInd {
				cycles, bitCycles = 16, 12
			}

			shift := shifts[y]
			defCB(y<<3|z, shift.name+" "+locNames[r], cycles, func(c *CPU, bus Bus) {
				c.write(bus, r, shift.fn(c, c.read(bus, r)))
			})

			n := y
			defCB(0x40|y<<3|z, fmt.Sprintf("BIT %d,%s", n, locNames[r]), bitCycles, func(c *CPU, bus Bus) {
				c.bit(c.read(bus, r), n)
			})
			defCB(0x80|y<<3|z, fmt.Sprintf("RES %d,%s", n, locNames[r]), cycles, func(c *CPU, bus Bus) {
				c.write(bus, r, c.read(bus, r)&^(1<<n))
			})
			defCB(0xC0|y<<3|z, fmt.Sprintf("SET %d,%s", n, locNames[r]), cycles, func(c *CPU, bus Bus) {
				c.write(bus, r, c.read(bus, r)|1<<n)
			})
		}
	}
}

// defCB fills one CB table entry. Every prefixed instruction is two bytes long.
func defCB(op uint8, mnemonic string, cycles uint8, fn func(c *CPU, bus Bus)) {
	cbOpcodes[op] = Instruction{
		Mnemonic: mnemonic,
		Length:   2,
		Cycles:   cycles,
		exec:     simple(fn),
	}
}

package memory

// BankedMemory is a paged byte store: a fixed number of equally sized banks
// and the index of the bank currently mapped into the visible window.
type BankedMemory struct {
	banks    [][]uint8
	bankSize int
	active   int
}

// NewBankedMemory allocates bankCount zeroed banks of bankSize bytes.
func NewBankedMemory(active, bankSize, bankCount int) *BankedMemory {
	m := &BankedMemory{
		banks:    make([][]uint8, bankCount),
		bankSize: bankSize,
	}
	for i := range m.banks {
		m.banks[i] = make([]uint8, bankSize)
	}
	m.SetActive(active)
	return m
}

// NewBankedMemoryFrom splits data into banks of bankSize bytes. The last bank
// is padded with 0xFF and at least two banks are always allocated, so a small
// image still fills both ROM windows.
func NewBankedMemoryFrom(data []byte, bankSize, active int) *BankedMemory {
	count := max((len(data)+bankSize-1)/bankSize, 2)

	m := &BankedMemory{
		banks:    make([][]uint8, count),
		bankSize: bankSize,
	}
	for i := range m.banks {
		bank := make([]uint8, bankSize)
		start := i * bankSize
		n := 0
		if start < len(data) {
			n = copy(bank, data[start:])
		}
		for j := n; j < bankSize; j++ {
			bank[j] = 0xFF
		}
		m.banks[i] = bank
	}
	m.SetActive(active)
	return m
}

func (m *BankedMemory) check(bank, offset int) {
	if bank < 0 || bank >= len(m.banks) || offset < 0 || offset >= m.bankSize {
		panic(&BoundsError{Bank: bank, Offset: offset, Banks: len(m.banks), BankSize: m.bankSize})
	}
}

// ReadActive reads offset from the active bank.
func (m *BankedMemory) ReadActive(offset int) uint8 {
	return m.ReadBank(m.active, offset)
}

// ReadBank reads offset from an explicit bank.
func (m *BankedMemory) ReadBank(bank, offset int) uint8 {
	m.check(bank, offset)
	return m.banks[bank][offset]
}

// WriteActive writes value at offset in the active bank.
func (m *BankedMemory) WriteActive(offset int, value uint8) {
	m.check(m.active, offset)
	m.banks[m.active][offset] = value
}

// SetActive maps bank into the visible window.
func (m *BankedMemory) SetActive(bank int) {
	m.check(bank, 0)
	m.active = bank
}

// Active returns the index of the mapped bank.
func (m *BankedMemory) Active() int {
	return m.active
}

// Banks returns the number of banks.
func (m *BankedMemory) Banks() int {
	return len(m.banks)
}

// BankSize returns the size of each bank in bytes.
func (m *BankedMemory) BankSize() int {
	return m.bankSize
}


package memory

import (
	"errors"
	"fmt"
)

// ErrUnusableAddress indicates an access to the prohibited 0xFEA0-0xFEFF range.
var ErrUnusableAddress = errors.New("unusable address")

// ErrOutOfBounds indicates a bank or offset outside a BankedMemory.
var ErrOutOfBounds = errors.New("bank access out of bounds")

// AccessError is raised (as a panic value) when the decoder is asked to touch
// an address that no backing store answers for.
type AccessError struct {
	Addr  uint16
	Write bool
	Err   error
}

func (e *AccessError) Error() string {
	op := "read"
	if e.Write {
		op = "write"
	}
	return fmt.Sprintf("%s 0x%04X: %v", op, e.Addr, e.Err)
}

func (e *AccessError) Unwrap() error {
	return e.Err
}

// BoundsError is raised (as a panic value) when a BankedMemory is indexed
// past its bank count or bank size. It always indicates a decoder bug.
type BoundsError struct {
	Bank     int
	Offset   int
	Banks    int
	BankSize int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("%v: bank %d offset 0x%04X (have %d banks of 0x%04X bytes)",
		ErrOutOfBounds, e.Bank, e.Offset, e.Banks, e.BankSize)
}

func (e *BoundsError) Unwrap() error {
	return ErrOutOfBounds
}

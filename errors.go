package vmnv

import (
	"fmt"

	"github.com/go-errors/errors"
)

var (
	// ErrFormat is returned when proof files or protocol information are malformed or inconsistent.
	ErrFormat = errors.New("invalid proof data")
	// ErrParameters is returned when the shuffle parameters of a proof directory contradict the
	// protocol information.
	ErrParameters = errors.New("inconsistent shuffle parameters")
)

// Equation identifies one of the verification equations of the proof of shuffle.
type Equation int

const (
	EquationA Equation = iota
	EquationB
	EquationC
	EquationD
	EquationF
)

func (e Equation) String() string {
	switch e {
	case EquationA:
		return "A"
	case EquationB:
		return "B"
	case EquationC:
		return "C"
	case EquationD:
		return "D"
	case EquationF:
		return "F"
	default:
		return fmt.Sprintf("Equation(%d)", int(e))
	}
}

// ProofError is returned when the proof is well-formed but one of its equations does not hold.
type ProofError struct {
	Equation Equation
	// Index is the failing position in the B chain, or -1.
	Index int
}

func (e *ProofError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("proof equation %s does not hold at index %d", e.Equation, e.Index)
	}
	return fmt.Sprintf("proof equation %s does not hold", e.Equation)
}

func proofError(eq Equation) error {
	return &ProofError{Equation: eq, Index: -1}
}

func wrapf(err error, format string, a ...interface{}) error {
	return errors.Errorf(format+": %w", append(a, err)...)
}

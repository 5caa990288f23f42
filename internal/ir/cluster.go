package ir

import (
	"errors"
	"fmt"
	"strings"
)

// ErrClassMismatch is returned when the classification of a cluster does not
// match the statements it contains.
var ErrClassMismatch = errors.New("cluster classification mismatch")

// Class is a set of control flow classification flags of a cluster.
type Class uint8

// Classification flags.
const (
	Linear              Class = 1 << iota // falls through to the next instruction
	ConditionalTransfer                   // may branch
	Transfer                              // always leaves the linear flow
	CallClass                             // invokes a subroutine
	ReturnClass                           // leaves the subroutine
	InvalidClass                          // undecodable instruction
)

var classNames = []struct {
	flag Class
	name string
}{
	{Linear, "Linear"},
	{ConditionalTransfer, "ConditionalTransfer"},
	{Transfer, "Transfer"},
	{CallClass, "Call"},
	{ReturnClass, "Return"},
	{InvalidClass, "Invalid"},
}

// Has returns whether all of the given flags are set.
func (c Class) Has(flags Class) bool {
	return c&flags == flags
}

func (c Class) String() string {
	if c == 0 {
		return "None"
	}
	var names []string
	for _, n := range classNames {
		if c&n.flag != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}

// Cluster is the ordered IR statement list produced for one machine instruction.
type Cluster struct {
	Address    Address
	Length     int
	Class      Class
	Statements []Statement
}

// NewInvalidCluster returns the cluster used for undecodable instructions.
func NewInvalidCluster(address Address, length int) *Cluster {
	return &Cluster{
		Address:    address,
		Length:     length,
		Class:      InvalidClass,
		Statements: []Statement{&InvalidStatement{}},
	}
}

func (c *Cluster) String() string {
	buf := &strings.Builder{}
	fmt.Fprintf(buf, "%s(%d): %s\n", c.Address, c.Length, c.Class)
	for _, stmt := range c.Statements {
		fmt.Fprintf(buf, "  %s\n", stmt)
	}
	return buf.String()
}

// Validate checks that the classification and the statements agree.
func (c *Cluster) Validate() error {
	var branches, gotos, calls, returns, invalids int
	for _, stmt := range c.Statements {
		switch stmt.(type) {
		case *Branch:
			branches++
		case *Goto:
			gotos++
		case *Call:
			calls++
		case *Return:
			returns++
		case *InvalidStatement:
			invalids++
		}
	}

	if c.Class == 0 {
		return fmt.Errorf("%w: %s has no classification", ErrClassMismatch, c.Address)
	}
	if c.Class.Has(InvalidClass) != (invalids > 0) {
		return fmt.Errorf("%w: %s invalid flag without invalid statement", ErrClassMismatch, c.Address)
	}

	control := ConditionalTransfer | Transfer | CallClass | ReturnClass
	if c.Class.Has(Linear) && c.Class&control != 0 {
		return fmt.Errorf("%w: %s linear cluster classified as %s", ErrClassMismatch, c.Address, c.Class)
	}
	if c.Class.Has(ConditionalTransfer) != (branches > 0) {
		return fmt.Errorf("%w: %s has %d branches but class %s", ErrClassMismatch, c.Address, branches, c.Class)
	}
	if gotos > 0 && !c.Class.Has(Transfer) {
		return fmt.Errorf("%w: %s goto without transfer class", ErrClassMismatch, c.Address)
	}
	if c.Class.Has(CallClass) != (calls > 0) || (calls > 0 && !c.Class.Has(Transfer)) {
		return fmt.Errorf("%w: %s has %d calls but class %s", ErrClassMismatch, c.Address, calls, c.Class)
	}
	if c.Class.Has(ReturnClass) != (returns > 0) || (returns > 0 && !c.Class.Has(Transfer)) {
		return fmt.Errorf("%w: %s has %d returns but class %s", ErrClassMismatch, c.Address, returns, c.Class)
	}
	if c.Class.Has(Transfer) && gotos+calls+returns == 0 {
		return fmt.Errorf("%w: %s transfer without control statement", ErrClassMismatch, c.Address)
	}
	return nil
}

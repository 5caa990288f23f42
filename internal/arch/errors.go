package arch

import "errors"

// Construction errors.
var (
	ErrNilCollaborator       = errors.New("nil collaborator")
	ErrWrongArchitecture     = errors.New("collaborator belongs to a different architecture")
	ErrDuplicateRegistration = errors.New("registers already populated")
	ErrMissingRegister       = errors.New("register not found")
	ErrUnknownMode           = errors.New("unknown processor mode")
	ErrDuplicateMode         = errors.New("processor mode already registered")
)

// Decode errors.
var (
	ErrEndOfStream = errors.New("end of instruction stream")
)

// Rewrite errors.
var (
	ErrInvalidOperand = errors.New("invalid operand")
	ErrNotImplemented = errors.New("instruction rewrite not implemented")
)

package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrGatewayFailure matches every error returned through Wrap.
	ErrGatewayFailure = errors.New("gateway failure")

	// ErrMalformedResponse indicates the generator returned something other
	// than a task list.
	ErrMalformedResponse = errors.New("malformed gateway response")
)

// Op names a gateway operation.
type Op string

const (
	OpExecute  Op = "execute"
	OpGenerate Op = "generate"
)

// Error wraps a collaborator failure with the operation that produced it.
type Error struct {
	Op  Op
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s gateway: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes every *Error match ErrGatewayFailure.
func (e *Error) Is(target error) bool {
	return target == ErrGatewayFailure
}

// Wrap tags err with op. Nil stays nil and already wrapped errors are returned
// unchanged.
func Wrap(op Op, err error) error {
	if err == nil {
		return nil
	}
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return err
	}
	return &Error{Op: op, Err: err}
}

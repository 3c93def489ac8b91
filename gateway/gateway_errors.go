package gateway

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	QueryFailed ErrorKind = iota + 1
)

var ErrQueryFailed = errors.New("provider query failed")

func (k ErrorKind) String() string {
	if k == QueryFailed {
		return "QueryFailed"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// GatewayError wraps any failure talking to the data provider. Op names the
// query that failed.
type GatewayError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func queryFailed(op string, err error) *GatewayError {
	return &GatewayError{Kind: QueryFailed, Op: op, Err: err}
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s (%s): %v", ErrQueryFailed, e.Op, e.Err)
}

func (e *GatewayError) Unwrap() []error {
	return []error{ErrQueryFailed, e.Err}
}

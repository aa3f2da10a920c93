package registrar

import (
	"errors"
	"fmt"
)

// ErrUnknownProduct is returned when an artifact prefix maps to no product.
var ErrUnknownProduct = errors.New("unknown artifact product")

// VerificationError reports a row count mismatch, or price differences that
// survived the apply step.
type VerificationError struct {
	Table   string
	Want    int64
	Got     int64
	Pending int
}

func (e *VerificationError) Error() string {
	if e.Pending > 0 {
		return fmt.Sprintf("table %s: %d price differences remain after apply", e.Table, e.Pending)
	}
	return fmt.Sprintf("table %s: row count want=%d got=%d", e.Table, e.Want, e.Got)
}

// StagingTableError wraps a failure creating, loading or dropping a staging table.
type StagingTableError struct {
	Table string
	Op    string
	Err   error
}

func (e *StagingTableError) Error() string {
	return fmt.Sprintf("staging table %s: %s: %v", e.Table, e.Op, e.Err)
}

func (e *StagingTableError) Unwrap() error { return e.Err }

// DuplicateKeyError reports two input records sharing a composite key. First
// and Second are their artifact indexes.
type DuplicateKeyError struct {
	Table  string
	Key    string
	First  int
	Second int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("table %s: records %d and %d share composite key %s", e.Table, e.First, e.Second, e.Key)
}

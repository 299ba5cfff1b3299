// Package errors defines the named failure conditions of linkage
// construction and composite key lookup.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel conditions. Every KeyError unwraps to exactly one of these, so
// callers branch with errors.Is.
var (
	ErrNullKeyValue    = errors.New("key array contains null values")
	ErrLengthMismatch  = errors.New("key array length differs from table length")
	ErrKeyTypeMismatch = errors.New("key types differ")
	ErrKeyNameMismatch = errors.New("key names differ")
	ErrEmptyKeySet     = errors.New("no key columns")
)

// Side names the table a key array belongs to
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
	SideNone  Side = ""
)

// KeyError describes a rejected key configuration
type KeyError struct {
	Kind   error  // one of the Err* sentinels
	Side   Side   // table side, empty when both sides are involved
	Key    string // key column name (empty for single-key linkages)
	Reason string // human-readable detail
	Nulls  int    // null count, for ErrNullKeyValue
	Want   int    // expected length, for ErrLengthMismatch
	Got    int    // actual length, for ErrLengthMismatch
}

func (e *KeyError) Error() string {
	var parts []string

	subject := "key"
	if e.Side != SideNone {
		subject = string(e.Side) + " key"
	}
	if e.Key != "" {
		subject = fmt.Sprintf("%s %q", subject, e.Key)
	}
	parts = append(parts, subject)

	if e.Kind != nil {
		parts = append(parts, e.Kind.Error())
	}

	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}

	return strings.Join(parts, " - ")
}

func (e *KeyError) Unwrap() error {
	return e.Kind
}

func NewNullKeyValue(side Side, key string, nulls int) *KeyError {
	return &KeyError{
		Kind:   ErrNullKeyValue,
		Side:   side,
		Key:    key,
		Nulls:  nulls,
		Reason: fmt.Sprintf("%d null(s)", nulls),
	}
}

func NewLengthMismatch(side Side, key string, keys, rows int) *KeyError {
	return &KeyError{
		Kind:   ErrLengthMismatch,
		Side:   side,
		Key:    key,
		Want:   rows,
		Got:    keys,
		Reason: fmt.Sprintf("%d keys for %d rows", keys, rows),
	}
}

func NewKeyTypeMismatch(key, left, right string) *KeyError {
	return &KeyError{
		Kind:   ErrKeyTypeMismatch,
		Key:    key,
		Reason: fmt.Sprintf("left=%s, right=%s", left, right),
	}
}

// NewKeyNameMismatch reports two differing name sets. Names are listed in
// the order given.
func NewKeyNameMismatch(have, want []string) *KeyError {
	return &KeyError{
		Kind:   ErrKeyNameMismatch,
		Reason: fmt.Sprintf("have [%s], want [%s]", strings.Join(have, ", "), strings.Join(want, ", ")),
	}
}

// NewDuplicateKeyName reports a name declared twice on one side
func NewDuplicateKeyName(side Side, key string) *KeyError {
	return &KeyError{
		Kind:   ErrKeyNameMismatch,
		Side:   side,
		Key:    key,
		Reason: "declared more than once",
	}
}

// NewBlankKeyName reports a key column declared without a name
func NewBlankKeyName(side Side) *KeyError {
	return &KeyError{
		Kind:   ErrKeyNameMismatch,
		Side:   side,
		Reason: "key column has no name",
	}
}

// NewFieldTypeMismatch reports a lookup value that cannot be represented
// as the key field's type
func NewFieldTypeMismatch(key, want string, cause error) *KeyError {
	return &KeyError{
		Kind:   ErrKeyTypeMismatch,
		Key:    key,
		Reason: fmt.Sprintf("want %s: %v", want, cause),
	}
}

func NewEmptyKeySet() *KeyError {
	return &KeyError{
		Kind:   ErrEmptyKeySet,
		Reason: "at least one key column is required",
	}
}

// IsKeyError reports whether err is, or wraps, a *KeyError
func IsKeyError(err error) bool {
	var ke *KeyError
	return errors.As(err, &ke)
}

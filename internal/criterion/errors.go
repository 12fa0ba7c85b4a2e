package criterion

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCriterionNotFound is matched by lookups of a child that does not exist.
	ErrCriterionNotFound = errors.New("criterion not found")

	// ErrInvalidArgument is matched by merges of two differently named criteria.
	ErrInvalidArgument = errors.New("invalid argument")
)

// NotFoundError is returned by GetCriterion, DeleteCriterion and RemoveCriterion.
type NotFoundError struct {
	Name      string
	Available []string
}

func (e *NotFoundError) Error() string {
	quoted := make([]string, len(e.Available))
	for i, name := range e.Available {
		quoted[i] = "`" + name + "`"
	}

	return fmt.Sprintf("The criterion `%s` was not found. Available criterions are the following : [%s]",
		e.Name, strings.Join(quoted, ", "))
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrCriterionNotFound
}

// MergeError is returned when two criteria of different identity are merged.
type MergeError struct {
	Had string
	Got string
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("Can't merge two different criteria. Had `%s` and `%s`", e.Had, e.Got)
}

func (e *MergeError) Is(target error) bool {
	return target == ErrInvalidArgument
}

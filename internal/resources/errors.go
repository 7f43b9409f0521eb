package resources

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInputs is matched by errors.Is for inputs documents that do
	// not fit the resource type's shape.
	ErrInvalidInputs = errors.New("invalid resource inputs")

	// ErrInvalidOutputs is matched by errors.Is for outputs documents that do
	// not fit the resource type's shape.
	ErrInvalidOutputs = errors.New("invalid resource outputs")

	// ErrStartPlaceDeletion is returned when deleting the start place of an experience.
	ErrStartPlaceDeletion = errors.New("cannot delete the start place of an experience, try creating a new experience instead")
)

type documentKind string

const (
	inputsDocument  documentKind = "inputs"
	outputsDocument documentKind = "outputs"
)

// DocumentError reports a document that could not be converted to or from a
// resource type's typed record.
type DocumentError struct {
	Type ResourceType
	Kind string
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("failed to deserialize %s %s: %v", e.Type, e.Kind, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

func (e *DocumentError) Is(target error) bool {
	switch target {
	case ErrInvalidInputs:
		return e.Kind == string(inputsDocument)
	case ErrInvalidOutputs:
		return e.Kind == string(outputsDocument)
	}
	return false
}

package state

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/picklr-io/stagehand/internal/ir"
)

const stateHeader = "# stagehand state file. Edit with `stagehand state` rather than by hand.\n"

// NewState returns an empty state with a fresh lineage.
func NewState() *ir.State {
	return &ir.State{
		Version: ir.StateVersion,
		Lineage: uuid.NewString(),
	}
}

// EncodeState renders state as YAML.
func EncodeState(state *ir.State) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(stateHeader)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(state); err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeState parses state written by EncodeState, decrypting it first if
// needed. Empty content yields a new state.
func DecodeState(content []byte) (*ir.State, error) {
	content, err := DecryptState(content)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return NewState(), nil
	}

	var state ir.State
	if err := yaml.Unmarshal(content, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state: %w", err)
	}
	if state.Version > ir.StateVersion {
		return nil, fmt.Errorf("state version %d is newer than this build supports (%d)", state.Version, ir.StateVersion)
	}
	if state.Version == 0 {
		state.Version = ir.StateVersion
	}
	if state.Lineage == "" {
		state.Lineage = uuid.NewString()
	}
	return &state, nil
}

// marshalState encodes and, when a key is configured, encrypts state.
func marshalState(state *ir.State) ([]byte, error) {
	content, err := EncodeState(state)
	if err != nil {
		return nil, err
	}
	encrypted, err := EncryptState(content)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt state: %w", err)
	}
	return encrypted, nil
}

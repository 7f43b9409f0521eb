package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picklr-io/stagehand/internal/ir"
)

func sampleState() *ir.State {
	return &ir.State{
		Version: ir.StateVersion,
		Serial:  3,
		Lineage: "3f1c2a8e-0000-4000-8000-000000000000",
		Resources: []*ir.ResourceState{
			{
				Type:       "experience",
				Name:       "singleton",
				Inputs:     map[string]any{"groupId": nil},
				InputsHash: "abc",
				Outputs:    map[string]any{"assetId": 100, "startPlaceId": 200},
			},
			{
				Type:         "place",
				Name:         "start",
				Inputs:       map[string]any{"isStart": true},
				InputsHash:   "def",
				Outputs:      map[string]any{"assetId": 200},
				Dependencies: []string{"experience/singleton"},
			},
		},
	}
}

func TestManager_ReadMissingFile(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "state.yml"))

	state, err := m.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ir.StateVersion, state.Version)
	assert.Zero(t, state.Serial)
	assert.NotEmpty(t, state.Lineage)
	assert.Empty(t, state.Resources)
}

func TestManager_WriteRead(t *testing.T) {
	t.Setenv(EncryptionKeyEnvVar, "")
	path := filepath.Join(t.TempDir(), "nested", "state.yml")
	m := NewManager(path)
	ctx := context.Background()

	require.NoError(t, m.Write(ctx, sampleState()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "lineage: 3f1c2a8e")
	assert.NoFileExists(t, path+".tmp")

	state, err := m.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, state.Serial)
	require.Len(t, state.Resources, 2)
	assert.Equal(t, "place/start", state.Resources[1].Address())
	assert.Equal(t, []string{"experience/singleton"}, state.Resources[1].Dependencies)
	assert.Equal(t, 100, state.Find("experience/singleton").Outputs["assetId"])
}

func TestManager_WriteReadEncrypted(t *testing.T) {
	t.Setenv(EncryptionKeyEnvVar, "secret")
	path := filepath.Join(t.TempDir(), "state.yml")
	m := NewManager(path)
	ctx := context.Background()

	require.NoError(t, m.Write(ctx, sampleState()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, IsEncrypted(raw))

	state, err := m.Read(ctx)
	require.NoError(t, err)
	assert.Len(t, state.Resources, 2)
}

func TestDecodeState_RejectsNewerVersion(t *testing.T) {
	_, err := DecodeState([]byte("version: 99\nserial: 1\n"))
	assert.ErrorContains(t, err, "newer")
}

func TestDecodeState_FillsMissingFields(t *testing.T) {
	state, err := DecodeState([]byte("serial: 2\n"))
	require.NoError(t, err)
	assert.Equal(t, ir.StateVersion, state.Version)
	assert.NotEmpty(t, state.Lineage)
}

func TestManager_Lock(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "state.yml"))
	ctx := context.Background()

	require.NoError(t, m.Lock(ctx))
	assert.ErrorIs(t, m.Lock(ctx), ErrLocked)

	require.NoError(t, m.Unlock(ctx))
	require.NoError(t, m.Lock(ctx))
	require.NoError(t, m.Unlock(ctx))
	require.NoError(t, m.Unlock(ctx))
}

func TestManager_LockTakesOverStaleLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yml")
	m := NewManager(path)
	lockPath := path + ".lock"

	require.NoError(t, os.WriteFile(lockPath, []byte("pid=1\n"), 0o644))
	old := time.Now().Add(-StaleLockAge - time.Minute)
	require.NoError(t, os.Chtimes(lockPath, old, old))

	require.NoError(t, m.Lock(context.Background()))
}

package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/picklr-io/stagehand/internal/ir"
	"github.com/picklr-io/stagehand/internal/resources"
	"github.com/picklr-io/stagehand/internal/resources/mocks"
)

func TestRetryingPlatform_RetriesTransientCalls(t *testing.T) {
	platform := &mocks.Platform{}
	platform.On("CreatePlace", mock.Anything, resources.AssetID(1)).
		Return(nil, statusError{retry: true}).Twice()
	platform.On("CreatePlace", mock.Anything, resources.AssetID(1)).
		Return(&resources.CreatePlaceResponse{PlaceID: 3}, nil).Once()

	p := NewRetryingPlatform(platform, fastPolicy(3))
	resp, err := p.CreatePlace(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, resources.AssetID(3), resp.PlaceID)
	platform.AssertNumberOfCalls(t, "CreatePlace", 3)
}

func TestRetryingPlatform_StopsOnPermanentError(t *testing.T) {
	platform := &mocks.Platform{}
	denied := errors.New("forbidden")
	platform.On("RemovePlaceFromExperience", mock.Anything, resources.AssetID(1), resources.AssetID(3)).
		Return(denied)

	p := NewRetryingPlatform(platform, fastPolicy(3))
	err := p.RemovePlaceFromExperience(context.Background(), 1, 3)
	assert.ErrorIs(t, err, denied)
	platform.AssertNumberOfCalls(t, "RemovePlaceFromExperience", 1)
}

// A thumbnail update deletes the old image and uploads the new one. A
// transient upload failure must retry the upload alone, never the delete.
func TestApplyPlan_ThumbnailReplaceRetriesUploadOnly(t *testing.T) {
	platform := &mocks.Platform{}
	platform.On("DeleteExperienceThumbnail", mock.Anything, resources.AssetID(1), resources.AssetID(300)).
		Return(nil).Once()
	platform.On("UploadThumbnail", mock.Anything, resources.AssetID(1), "/abs/a.png").
		Return(nil, statusError{retry: true}).Once()
	platform.On("UploadThumbnail", mock.Anything, resources.AssetID(1), "/abs/a.png").
		Return(&resources.UploadImageResponse{TargetID: 301}, nil).Once()

	manager := resources.NewManager(NewRetryingPlatform(platform, fastPolicy(3)), "/project")
	e := newTestEngine(manager)

	state := &ir.State{Resources: []*ir.ResourceState{{
		Type:       "experienceThumbnail",
		Name:       "a.png",
		Inputs:     map[string]any{"experienceId": 1, "filePath": "/abs/a.png", "fileHash": "old"},
		InputsHash: "old",
		Outputs:    map[string]any{"assetId": 300},
	}}}
	desired := []*ir.Resource{{
		Type:   "experienceThumbnail",
		Name:   "a.png",
		Inputs: map[string]any{"experienceId": 1, "filePath": "/abs/a.png", "fileHash": "new"},
	}}

	plan, err := e.CreatePlan(context.Background(), desired, state)
	require.NoError(t, err)
	require.Len(t, plan.Changes, 1)
	assert.Equal(t, ir.ActionUpdate, plan.Changes[0].Action)

	state, err = e.ApplyPlan(context.Background(), plan, state)
	require.NoError(t, err)

	platform.AssertExpectations(t)
	platform.AssertNumberOfCalls(t, "DeleteExperienceThumbnail", 1)
	assert.Equal(t, map[string]any{"assetId": 301}, state.Find("experienceThumbnail/a.png").Outputs)
}

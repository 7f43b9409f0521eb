package resources

import (
	"context"
	"fmt"
)

// createPlace adopts an existing place, claims the start place the platform
// made with the experience, or adds a new place to the experience.
func (m *Manager) createPlace(ctx context.Context, doc Document) (Document, error) {
	inputs, err := decodeInputs[PlaceInputs](Place, doc)
	if err != nil {
		return nil, err
	}

	var assetID AssetID
	switch {
	case inputs.AssetID != nil:
		assetID = *inputs.AssetID
	case inputs.IsStart:
		assetID = inputs.StartPlaceID
	default:
		resp, err := m.platform.CreatePlace(ctx, inputs.ExperienceID)
		if err != nil {
			return nil, fmt.Errorf("failed to create place in experience %d: %w", inputs.ExperienceID, err)
		}
		assetID = resp.PlaceID
	}

	return encodeOutputs(Place, PlaceOutputs{AssetID: assetID})
}

func (m *Manager) deletePlace(ctx context.Context, inputsDoc, outputsDoc Document) error {
	inputs, err := decodeInputs[PlaceInputs](Place, inputsDoc)
	if err != nil {
		return err
	}
	// Checked before the outputs so a broken outputs document still gets the guidance.
	if inputs.IsStart {
		return ErrStartPlaceDeletion
	}

	outputs, err := decodeOutputs[PlaceOutputs](Place, outputsDoc)
	if err != nil {
		return err
	}

	if err := m.platform.RemovePlaceFromExperience(ctx, inputs.ExperienceID, outputs.AssetID); err != nil {
		return fmt.Errorf("failed to remove place %d from experience %d: %w", outputs.AssetID, inputs.ExperienceID, err)
	}
	return nil
}

func (m *Manager) createPlaceFile(ctx context.Context, doc Document) (Document, error) {
	inputs, err := decodeInputs[PlaceFileInputs](PlaceFile, doc)
	if err != nil {
		return nil, err
	}

	if err := m.platform.UploadPlace(ctx, m.resolvePath(inputs.FilePath), inputs.AssetID); err != nil {
		return nil, fmt.Errorf("failed to upload place file %s: %w", inputs.FilePath, err)
	}

	resp, err := m.platform.GetPlace(ctx, inputs.AssetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get place %d: %w", inputs.AssetID, err)
	}
	return encodeOutputs(PlaceFile, PlaceFileOutputs{Version: resp.CurrentSavedVersion})
}

func (m *Manager) createPlaceConfiguration(ctx context.Context, doc Document) (Document, error) {
	inputs, err := decodeInputs[PlaceConfigurationInputs](PlaceConfiguration, doc)
	if err != nil {
		return nil, err
	}

	if err := m.platform.ConfigurePlace(ctx, inputs.AssetID, &inputs.Configuration); err != nil {
		return nil, fmt.Errorf("failed to configure place %d: %w", inputs.AssetID, err)
	}
	return nil, nil
}

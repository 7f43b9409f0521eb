package resources

import (
	"context"
	"fmt"

	"github.com/picklr-io/stagehand/internal/logging"
)

func (m *Manager) createExperience(ctx context.Context, doc Document) (Document, error) {
	inputs, err := decodeInputs[ExperienceInputs](Experience, doc)
	if err != nil {
		return nil, err
	}

	var outputs ExperienceOutputs
	if inputs.AssetID != nil {
		resp, err := m.platform.GetExperience(ctx, *inputs.AssetID)
		if err != nil {
			return nil, fmt.Errorf("failed to get experience %d: %w", *inputs.AssetID, err)
		}
		outputs = ExperienceOutputs{
			AssetID:      *inputs.AssetID,
			StartPlaceID: resp.RootPlaceID,
		}
	} else {
		resp, err := m.platform.CreateExperience(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create experience: %w", err)
		}
		outputs = ExperienceOutputs{
			AssetID:      resp.UniverseID,
			StartPlaceID: resp.RootPlaceID,
		}
	}

	return encodeOutputs(Experience, outputs)
}

// deleteExperience archives the experience. Experiences cannot be deleted,
// and every configuration field other than isArchived is left as it is.
func (m *Manager) deleteExperience(ctx context.Context, doc Document) error {
	outputs, err := decodeOutputs[ExperienceOutputs](Experience, doc)
	if err != nil {
		return err
	}

	archived := true
	if err := m.platform.ConfigureExperience(ctx, outputs.AssetID, &ExperienceConfigurationModel{
		IsArchived: &archived,
	}); err != nil {
		return fmt.Errorf("failed to archive experience %d: %w", outputs.AssetID, err)
	}
	return nil
}

func (m *Manager) createExperienceConfiguration(ctx context.Context, doc Document) (Document, error) {
	inputs, err := decodeInputs[ExperienceConfigurationInputs](ExperienceConfiguration, doc)
	if err != nil {
		return nil, err
	}

	if err := m.platform.ConfigureExperience(ctx, inputs.ExperienceID, &inputs.Configuration); err != nil {
		return nil, fmt.Errorf("failed to configure experience %d: %w", inputs.ExperienceID, err)
	}
	return nil, nil
}

func (m *Manager) createExperienceActivation(ctx context.Context, doc Document) (Document, error) {
	inputs, err := decodeInputs[ExperienceActivationInputs](ExperienceActivation, doc)
	if err != nil {
		return nil, err
	}

	if err := m.platform.SetExperienceActive(ctx, inputs.ExperienceID, inputs.IsActive); err != nil {
		return nil, fmt.Errorf("failed to set experience %d active=%t: %w", inputs.ExperienceID, inputs.IsActive, err)
	}
	return nil, nil
}

func (m *Manager) createExperienceIcon(ctx context.Context, doc Document) (Document, error) {
	inputs, err := decodeInputs[ExperienceIconInputs](ExperienceIcon, doc)
	if err != nil {
		return nil, err
	}

	resp, err := m.platform.UploadIcon(ctx, inputs.ExperienceID, m.resolvePath(inputs.FilePath))
	if err != nil {
		return nil, fmt.Errorf("failed to upload icon %s: %w", inputs.FilePath, err)
	}
	return encodeOutputs(ExperienceIcon, ImageOutputs{AssetID: resp.TargetID})
}

// deleteExperienceIcon cannot remove anything: the platform has no operation
// for deleting an experience icon. The old icon stays until it is replaced.
func (m *Manager) deleteExperienceIcon(doc Document) error {
	inputs, err := decodeInputs[ExperienceIconInputs](ExperienceIcon, doc)
	if err != nil {
		return err
	}

	logging.Warn("experience icon left in place: the platform provides no way to delete icons",
		"experience_id", inputs.ExperienceID,
		"file", inputs.FilePath,
	)
	return nil
}

func (m *Manager) createExperienceThumbnail(ctx context.Context, doc Document) (Document, error) {
	inputs, err := decodeInputs[ExperienceThumbnailInputs](ExperienceThumbnail, doc)
	if err != nil {
		return nil, err
	}

	resp, err := m.platform.UploadThumbnail(ctx, inputs.ExperienceID, m.resolvePath(inputs.FilePath))
	if err != nil {
		return nil, fmt.Errorf("failed to upload thumbnail %s: %w", inputs.FilePath, err)
	}
	return encodeOutputs(ExperienceThumbnail, ImageOutputs{AssetID: resp.TargetID})
}

func (m *Manager) deleteExperienceThumbnail(ctx context.Context, inputsDoc, outputsDoc Document) error {
	inputs, err := decodeInputs[ExperienceThumbnailInputs](ExperienceThumbnail, inputsDoc)
	if err != nil {
		return err
	}
	outputs, err := decodeOutputs[ImageOutputs](ExperienceThumbnail, outputsDoc)
	if err != nil {
		return err
	}

	if err := m.platform.DeleteExperienceThumbnail(ctx, inputs.ExperienceID, outputs.AssetID); err != nil {
		return fmt.Errorf("failed to delete thumbnail %d: %w", outputs.AssetID, err)
	}
	return nil
}

func (m *Manager) createExperienceThumbnailOrder(ctx context.Context, doc Document) (Document, error) {
	inputs, err := decodeInputs[ExperienceThumbnailOrderInputs](ExperienceThumbnailOrder, doc)
	if err != nil {
		return nil, err
	}

	if err := m.platform.SetExperienceThumbnailOrder(ctx, inputs.ExperienceID, inputs.AssetIDs); err != nil {
		return nil, fmt.Errorf("failed to order thumbnails of experience %d: %w", inputs.ExperienceID, err)
	}
	return nil, nil
}

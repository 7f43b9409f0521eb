package resources

import (
	"context"
	"fmt"
	"time"
)

// deprecatedTimeLayout is UTC to microsecond precision so that repeated
// delete/recreate cycles never produce the same name.
const deprecatedTimeLayout = "2006-01-02 15:04:05.000000"

// DeprecatedNamePrefix starts the name given to developer products that were deleted.
const DeprecatedNamePrefix = "zzz_DEPRECATED("

func (m *Manager) createDeveloperProductIcon(ctx context.Context, doc Document) (Document, error) {
	inputs, err := decodeInputs[ExperienceDeveloperProductIconInputs](ExperienceDeveloperProductIcon, doc)
	if err != nil {
		return nil, err
	}

	assetID, err := m.platform.CreateDeveloperProductIcon(ctx, inputs.ExperienceID, m.resolvePath(inputs.FilePath))
	if err != nil {
		return nil, fmt.Errorf("failed to upload developer product icon %s: %w", inputs.FilePath, err)
	}
	return encodeOutputs(ExperienceDeveloperProductIcon, ImageOutputs{AssetID: assetID})
}

// createDeveloperProduct creates the product and looks it up again: the id
// returned by creation is not the id that later updates must address.
func (m *Manager) createDeveloperProduct(ctx context.Context, doc Document) (Document, error) {
	inputs, err := decodeInputs[ExperienceDeveloperProductInputs](ExperienceDeveloperProduct, doc)
	if err != nil {
		return nil, err
	}

	created, err := m.platform.CreateDeveloperProduct(ctx, inputs.ExperienceID, DeveloperProduct{
		Name:        inputs.Name,
		Price:       inputs.Price,
		Description: inputs.Description,
		IconAssetID: inputs.IconAssetID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create developer product %q: %w", inputs.Name, err)
	}

	found, err := m.platform.FindDeveloperProductByID(ctx, inputs.ExperienceID, created.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to find developer product %d: %w", created.ID, err)
	}

	return encodeOutputs(ExperienceDeveloperProduct, ExperienceDeveloperProductOutputs{
		AssetID:   found.ProductID,
		ProductID: created.ID,
		ShopID:    created.ShopID,
	})
}

func (m *Manager) updateDeveloperProduct(ctx context.Context, inputsDoc, outputsDoc Document) (Document, error) {
	inputs, err := decodeInputs[ExperienceDeveloperProductInputs](ExperienceDeveloperProduct, inputsDoc)
	if err != nil {
		return nil, err
	}
	outputs, err := decodeOutputs[ExperienceDeveloperProductOutputs](ExperienceDeveloperProduct, outputsDoc)
	if err != nil {
		return nil, err
	}

	if err := m.platform.UpdateDeveloperProduct(ctx, inputs.ExperienceID, outputs.AssetID, DeveloperProduct{
		Name:        inputs.Name,
		Price:       inputs.Price,
		Description: inputs.Description,
		IconAssetID: inputs.IconAssetID,
	}); err != nil {
		return nil, fmt.Errorf("failed to update developer product %d: %w", outputs.AssetID, err)
	}
	return outputsDoc, nil
}

// deleteDeveloperProduct renames the product out of the way. Products cannot
// be deleted, so the old name and description are kept in the new description.
func (m *Manager) deleteDeveloperProduct(ctx context.Context, inputsDoc, outputsDoc Document) error {
	inputs, err := decodeInputs[ExperienceDeveloperProductInputs](ExperienceDeveloperProduct, inputsDoc)
	if err != nil {
		return err
	}
	outputs, err := decodeOutputs[ExperienceDeveloperProductOutputs](ExperienceDeveloperProduct, outputsDoc)
	if err != nil {
		return err
	}

	if err := m.platform.UpdateDeveloperProduct(ctx, inputs.ExperienceID, outputs.AssetID, DeveloperProduct{
		Name:        DeprecatedName(m.clock.Now()),
		Price:       inputs.Price,
		Description: fmt.Sprintf("Name: %s\nDescription:\n%s", inputs.Name, inputs.Description),
		IconAssetID: inputs.IconAssetID,
	}); err != nil {
		return fmt.Errorf("failed to deprecate developer product %d: %w", outputs.AssetID, err)
	}
	return nil
}

// DeprecatedName returns the name given to a developer product deleted at t.
func DeprecatedName(t time.Time) string {
	return DeprecatedNamePrefix + t.UTC().Format(deprecatedTimeLayout) + ")"
}

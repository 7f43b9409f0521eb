package resources

// AssetID is a platform-assigned identifier (experience, place, product or image).
type AssetID = uint64

// ResourceType tags one of the closed set of resource kinds the Manager reconciles.
type ResourceType string

const (
	Experience                     ResourceType = "experience"
	ExperienceConfiguration        ResourceType = "experienceConfiguration"
	ExperienceActivation           ResourceType = "experienceActivation"
	ExperienceIcon                 ResourceType = "experienceIcon"
	ExperienceThumbnail            ResourceType = "experienceThumbnail"
	ExperienceThumbnailOrder       ResourceType = "experienceThumbnailOrder"
	ExperienceDeveloperProduct     ResourceType = "experienceDeveloperProduct"
	ExperienceDeveloperProductIcon ResourceType = "experienceDeveloperProductIcon"
	Place                          ResourceType = "place"
	PlaceFile                      ResourceType = "placeFile"
	PlaceConfiguration             ResourceType = "placeConfiguration"
)

// SingletonResourceName names resources that exist at most once per experience.
const SingletonResourceName = "singleton"

// AllResourceTypes lists every type the Manager handles, in dependency-friendly order.
var AllResourceTypes = []ResourceType{
	Experience,
	ExperienceConfiguration,
	ExperienceActivation,
	ExperienceIcon,
	ExperienceThumbnail,
	ExperienceThumbnailOrder,
	ExperienceDeveloperProductIcon,
	ExperienceDeveloperProduct,
	Place,
	PlaceFile,
	PlaceConfiguration,
}

// IsKnownType reports whether t is one of AllResourceTypes.
// Callers holding data from outside the program (state files, config)
// must check this before calling the Manager, which panics on unknown types.
func IsKnownType(t string) bool {
	for _, known := range AllResourceTypes {
		if string(known) == t {
			return true
		}
	}
	return false
}

// OwnedByParent reports whether a resource's lifecycle belongs to the resource
// it depends on, so that deleting the parent also disposes of it. The start
// place of an experience is the only such resource.
func OwnedByParent(t ResourceType, inputs Document) bool {
	if t != Place {
		return false
	}
	isStart, _ := inputs["isStart"].(bool)
	return isStart
}

type ExperienceInputs struct {
	AssetID *AssetID `yaml:"assetId"`
}

type ExperienceOutputs struct {
	AssetID      AssetID `yaml:"assetId"`
	StartPlaceID AssetID `yaml:"startPlaceId"`
}

type ExperienceConfigurationInputs struct {
	ExperienceID  AssetID                      `yaml:"experienceId"`
	Configuration ExperienceConfigurationModel `yaml:"configuration"`
}

type ExperienceActivationInputs struct {
	ExperienceID AssetID `yaml:"experienceId"`
	IsActive     bool    `yaml:"isActive"`
}

// FileInputs is shared by every resource backed by a local file upload.
type FileInputs struct {
	ExperienceID AssetID `yaml:"experienceId"`
	FilePath     string  `yaml:"filePath"`
	FileHash     string  `yaml:"fileHash"`
}

type ExperienceIconInputs = FileInputs
type ExperienceThumbnailInputs = FileInputs
type ExperienceDeveloperProductIconInputs = FileInputs

// ImageOutputs records the platform image id of an uploaded file.
type ImageOutputs struct {
	AssetID AssetID `yaml:"assetId"`
}

type ExperienceThumbnailOrderInputs struct {
	ExperienceID AssetID   `yaml:"experienceId"`
	AssetIDs     []AssetID `yaml:"assetIds"`
}

type ExperienceDeveloperProductInputs struct {
	ExperienceID AssetID  `yaml:"experienceId"`
	Name         string   `yaml:"name"`
	Price        uint32   `yaml:"price"`
	Description  string   `yaml:"description"`
	IconAssetID  *AssetID `yaml:"iconAssetId"`
}

// ExperienceDeveloperProductOutputs carries both product identities: AssetID is
// the id later updates address, ProductID is the id returned at creation.
type ExperienceDeveloperProductOutputs struct {
	AssetID   AssetID `yaml:"assetId"`
	ProductID AssetID `yaml:"productId"`
	ShopID    AssetID `yaml:"shopId"`
}

type PlaceInputs struct {
	ExperienceID AssetID  `yaml:"experienceId"`
	StartPlaceID AssetID  `yaml:"startPlaceId"`
	AssetID      *AssetID `yaml:"assetId"`
	IsStart      bool     `yaml:"isStart"`
}

type PlaceOutputs struct {
	AssetID AssetID `yaml:"assetId"`
}

type PlaceFileInputs struct {
	AssetID  AssetID `yaml:"assetId"`
	FilePath string  `yaml:"filePath"`
	FileHash string  `yaml:"fileHash"`
}

type PlaceFileOutputs struct {
	Version uint32 `yaml:"version,omitempty"`
}

type PlaceConfigurationInputs struct {
	AssetID       AssetID                 `yaml:"assetId"`
	Configuration PlaceConfigurationModel `yaml:"configuration"`
}

package resources

import "context"

// Platform is the set of remote operations the Manager drives. It is
// implemented by the roblox package; tests use mocks.Platform.
type Platform interface {
	CreateExperience(ctx context.Context) (*CreateExperienceResponse, error)
	GetExperience(ctx context.Context, experienceID AssetID) (*GetExperienceResponse, error)
	ConfigureExperience(ctx context.Context, experienceID AssetID, cfg *ExperienceConfigurationModel) error
	SetExperienceActive(ctx context.Context, experienceID AssetID, active bool) error
	SetExperienceThumbnailOrder(ctx context.Context, experienceID AssetID, thumbnailIDs []AssetID) error
	DeleteExperienceThumbnail(ctx context.Context, experienceID, thumbnailID AssetID) error

	UploadIcon(ctx context.Context, experienceID AssetID, path string) (*UploadImageResponse, error)
	UploadThumbnail(ctx context.Context, experienceID AssetID, path string) (*UploadImageResponse, error)
	CreateDeveloperProductIcon(ctx context.Context, experienceID AssetID, path string) (AssetID, error)

	CreateDeveloperProduct(ctx context.Context, experienceID AssetID, product DeveloperProduct) (*CreateDeveloperProductResponse, error)
	FindDeveloperProductByID(ctx context.Context, experienceID, productID AssetID) (*GetDeveloperProductResponse, error)
	UpdateDeveloperProduct(ctx context.Context, experienceID, productAssetID AssetID, product DeveloperProduct) error

	CreatePlace(ctx context.Context, experienceID AssetID) (*CreatePlaceResponse, error)
	GetPlace(ctx context.Context, placeID AssetID) (*GetPlaceResponse, error)
	UploadPlace(ctx context.Context, path string, placeID AssetID) error
	RemovePlaceFromExperience(ctx context.Context, experienceID, placeID AssetID) error
	ConfigurePlace(ctx context.Context, placeID AssetID, cfg *PlaceConfigurationModel) error
}

type CreateExperienceResponse struct {
	UniverseID  AssetID `json:"universeId"`
	RootPlaceID AssetID `json:"rootPlaceId"`
}

type GetExperienceResponse struct {
	RootPlaceID AssetID `json:"rootPlaceId"`
}

type UploadImageResponse struct {
	TargetID AssetID `json:"targetId"`
}

type CreateDeveloperProductResponse struct {
	ID     AssetID `json:"id"`
	ShopID AssetID `json:"shopId"`
}

type GetDeveloperProductResponse struct {
	ProductID          AssetID `json:"ProductId"`
	DeveloperProductID AssetID `json:"DeveloperProductId"`
}

type CreatePlaceResponse struct {
	PlaceID AssetID `json:"PlaceId"`
}

type GetPlaceResponse struct {
	CurrentSavedVersion uint32 `json:"currentSavedVersion"`
}

// DeveloperProduct is the mutable part of a developer product.
type DeveloperProduct struct {
	Name        string
	Price       uint32
	Description string
	IconAssetID *AssetID
}

// ExperienceConfigurationModel is a sparse overlay: nil fields are left untouched
// on the platform.
type ExperienceConfigurationModel struct {
	Genre                     *string                `json:"genre,omitempty" yaml:"genre,omitempty" pkl:"genre"`
	PlayableDevices           []string               `json:"playableDevices,omitempty" yaml:"playableDevices,omitempty" pkl:"playableDevices"`
	IsFriendsOnly             *bool                  `json:"isFriendsOnly,omitempty" yaml:"isFriendsOnly,omitempty" pkl:"isFriendsOnly"`
	AllowPrivateServers       *bool                  `json:"allowPrivateServers,omitempty" yaml:"allowPrivateServers,omitempty" pkl:"allowPrivateServers"`
	PrivateServerPrice        *uint32                `json:"privateServerPrice,omitempty" yaml:"privateServerPrice,omitempty" pkl:"privateServerPrice"`
	IsForSale                 *bool                  `json:"isForSale,omitempty" yaml:"isForSale,omitempty" pkl:"isForSale"`
	Price                     *uint32                `json:"price,omitempty" yaml:"price,omitempty" pkl:"price"`
	StudioAccessToApisAllowed *bool                  `json:"studioAccessToApisAllowed,omitempty" yaml:"studioAccessToApisAllowed,omitempty" pkl:"studioAccessToApisAllowed"`
	Permissions               *ExperiencePermissions `json:"permissions,omitempty" yaml:"permissions,omitempty" pkl:"permissions"`
	UniverseAvatarType        *string                `json:"universeAvatarType,omitempty" yaml:"universeAvatarType,omitempty" pkl:"universeAvatarType"`
	UniverseAnimationType     *string                `json:"universeAnimationType,omitempty" yaml:"universeAnimationType,omitempty" pkl:"universeAnimationType"`
	UniverseCollisionType     *string                `json:"universeCollisionType,omitempty" yaml:"universeCollisionType,omitempty" pkl:"universeCollisionType"`
	IsArchived                *bool                  `json:"isArchived,omitempty" yaml:"isArchived,omitempty" pkl:"isArchived"`
}

type ExperiencePermissions struct {
	IsThirdPartyPurchaseAllowed *bool `json:"IsThirdPartyPurchaseAllowed,omitempty" yaml:"isThirdPartyPurchaseAllowed,omitempty" pkl:"isThirdPartyPurchaseAllowed"`
	IsThirdPartyTeleportAllowed *bool `json:"IsThirdPartyTeleportAllowed,omitempty" yaml:"isThirdPartyTeleportAllowed,omitempty" pkl:"isThirdPartyTeleportAllowed"`
}

// PlaceConfigurationModel is a sparse overlay like ExperienceConfigurationModel.
type PlaceConfigurationModel struct {
	Name                   *string `json:"name,omitempty" yaml:"name,omitempty" pkl:"name"`
	Description            *string `json:"description,omitempty" yaml:"description,omitempty" pkl:"description"`
	MaxPlayerCount         *uint32 `json:"maxPlayerCount,omitempty" yaml:"maxPlayerCount,omitempty" pkl:"maxPlayerCount"`
	AllowCopying           *bool   `json:"allowCopying,omitempty" yaml:"allowCopying,omitempty" pkl:"allowCopying"`
	SocialSlotType         *string `json:"socialSlotType,omitempty" yaml:"socialSlotType,omitempty" pkl:"socialSlotType"`
	CustomSocialSlotsCount *uint32 `json:"customSocialSlotsCount,omitempty" yaml:"customSocialSlotsCount,omitempty" pkl:"customSocialSlotsCount"`
}

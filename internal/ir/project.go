package ir

import "github.com/picklr-io/stagehand/internal/resources"

// StartPlaceName is the place key that must name the experience's start place.
const StartPlaceName = "start"

// Project is the desired state declared in stagehand.yml or main.pkl.
type Project struct {
	Experience ExperienceDecl        `yaml:"experience" pkl:"experience"`
	Places     map[string]*PlaceDecl `yaml:"places" pkl:"places"`
}

type ExperienceDecl struct {
	// AssetID adopts an existing experience instead of creating one.
	AssetID       *uint64                                 `yaml:"assetId,omitempty" pkl:"assetId"`
	Configuration *resources.ExperienceConfigurationModel `yaml:"configuration,omitempty" pkl:"configuration"`
	Active        *bool                                   `yaml:"active,omitempty" pkl:"active"`
	Icon          string                                  `yaml:"icon,omitempty" pkl:"icon"`
	Thumbnails    []string                                `yaml:"thumbnails,omitempty" pkl:"thumbnails"`
	Products      map[string]*ProductDecl                 `yaml:"products,omitempty" pkl:"products"`
}

type ProductDecl struct {
	Name        string `yaml:"name" pkl:"name"`
	Description string `yaml:"description,omitempty" pkl:"description"`
	Price       uint32 `yaml:"price" pkl:"price"`
	Icon        string `yaml:"icon,omitempty" pkl:"icon"`
}

type PlaceDecl struct {
	AssetID       *uint64                            `yaml:"assetId,omitempty" pkl:"assetId"`
	File          string                             `yaml:"file,omitempty" pkl:"file"`
	Configuration *resources.PlaceConfigurationModel `yaml:"configuration,omitempty" pkl:"configuration"`
}

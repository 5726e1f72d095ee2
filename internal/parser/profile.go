package parser

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultProfileName         = "default"
	DefaultTitleSelector       = "h1"
	DefaultDescriptionSelector = "div.product-tab-content"
	DefaultImageSelector       = "img#main-product-image"
	DefaultOptionSelector      = "select option"
	DefaultFallbackTitle       = "Unknown Product"
)

// SiteProfile holds the selectors used to read one shop's product pages.
type SiteProfile struct {
	Name                string   `toml:"name"`
	Hosts               []string `toml:"hosts"`
	BaseURL             string   `toml:"base_url"`
	TitleSelector       string   `toml:"title_selector"`
	DescriptionSelector string   `toml:"description_selector"`
	ImageSelector       string   `toml:"image_selector"`
	OptionSelector      string   `toml:"option_selector"`
	FallbackTitle       string   `toml:"fallback_title"`
}

type profileFile struct {
	Profiles []SiteProfile `toml:"profile"`
}

// DefaultProfile returns the selectors of the original shop layout.
func DefaultProfile(baseURL string) SiteProfile {
	return SiteProfile{
		Name:                DefaultProfileName,
		BaseURL:             baseURL,
		TitleSelector:       DefaultTitleSelector,
		DescriptionSelector: DefaultDescriptionSelector,
		ImageSelector:       DefaultImageSelector,
		OptionSelector:      DefaultOptionSelector,
		FallbackTitle:       DefaultFallbackTitle,
	}
}

// LoadProfiles reads [[profile]] tables from a TOML file.
func LoadProfiles(path string, defaults SiteProfile) ([]SiteProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read site profiles: %w", err)
	}

	return ParseProfiles(data, defaults)
}

// ParseProfiles decodes profiles and fills every unset field from defaults.
func ParseProfiles(data []byte, defaults SiteProfile) ([]SiteProfile, error) {
	var file profileFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse site profiles: %w", err)
	}

	profiles := make([]SiteProfile, 0, len(file.Profiles))
	for i, p := range file.Profiles {
		if p.Name == "" {
			return nil, fmt.Errorf("site profile %d has no name", i+1)
		}
		profiles = append(profiles, p.withDefaults(defaults))
	}

	return profiles, nil
}

func (p SiteProfile) withDefaults(d SiteProfile) SiteProfile {
	if p.BaseURL == "" {
		p.BaseURL = d.BaseURL
	}
	if p.TitleSelector == "" {
		p.TitleSelector = d.TitleSelector
	}
	if p.DescriptionSelector == "" {
		p.DescriptionSelector = d.DescriptionSelector
	}
	if p.ImageSelector == "" {
		p.ImageSelector = d.ImageSelector
	}
	if p.OptionSelector == "" {
		p.OptionSelector = d.OptionSelector
	}
	if p.FallbackTitle == "" {
		p.FallbackTitle = d.FallbackTitle
	}
	return p
}

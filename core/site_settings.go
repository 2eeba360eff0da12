package core

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SiteSettings are optional operator overrides loaded from a YAML file.
// Everything here has an env/default fallback; the file exists so a deploy
// can adjust display settings without re-rolling the process environment.
type SiteSettings struct {
	SiteTitle      string `yaml:"site_title"`
	CDNSubdomain   string `yaml:"cdn_subdomain"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// LoadSiteSettings reads path if set and present. A missing file is not an
// error; a present but unparsable file is.
func LoadSiteSettings(path string) (SiteSettings, error) {
	s := SiteSettings{SiteTitle: "AniShare Admin"}
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, err
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse site settings %s: %w", path, err)
	}
	if s.SiteTitle == "" {
		s.SiteTitle = "AniShare Admin"
	}
	return s, nil
}

// Apply merges the non-zero overrides into cfg and returns the result.
func (s SiteSettings) Apply(cfg Config) Config {
	if s.CDNSubdomain != "" {
		cfg.CDNSubdomain = s.CDNSubdomain
	}
	if s.MaxUploadBytes > 0 {
		cfg.MaxUploadBytes = s.MaxUploadBytes
	}
	return cfg
}

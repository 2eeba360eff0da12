package core

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSiteSettingsMissingFile(t *testing.T) {
	s, err := LoadSiteSettings(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if s.SiteTitle != "AniShare Admin" {
		t.Fatalf("default title %q", s.SiteTitle)
	}
}

func TestLoadSiteSettingsEmptyPath(t *testing.T) {
	s, err := LoadSiteSettings("")
	if err != nil {
		t.Fatalf("empty path must not error: %v", err)
	}
	if s.SiteTitle != "AniShare Admin" {
		t.Fatalf("default title %q", s.SiteTitle)
	}
}

func TestLoadSiteSettingsParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	content := "site_title: Neko Admin\ncdn_subdomain: images\nmax_upload_bytes: 1048576\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSiteSettings(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.SiteTitle != "Neko Admin" || s.CDNSubdomain != "images" || s.MaxUploadBytes != 1<<20 {
		t.Fatalf("unexpected settings: %+v", s)
	}
}

func TestLoadSiteSettingsRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	if err := os.WriteFile(path, []byte("site_title: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSiteSettings(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSiteSettingsApply(t *testing.T) {
	cfg := Config{CDNSubdomain: "cdn", MaxUploadBytes: 5 << 20}

	applied := SiteSettings{CDNSubdomain: "images", MaxUploadBytes: 1 << 20}.Apply(cfg)
	if applied.CDNSubdomain != "images" || applied.MaxUploadBytes != 1<<20 {
		t.Fatalf("overrides not applied: %+v", applied)
	}

	untouched := SiteSettings{}.Apply(cfg)
	if untouched.CDNSubdomain != "cdn" || untouched.MaxUploadBytes != 5<<20 {
		t.Fatalf("zero settings must not override: %+v", untouched)
	}
}

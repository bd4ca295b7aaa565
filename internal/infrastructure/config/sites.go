package config

import (
	_ "embed"
	"fmt"
	"os"

	"apply-agent/internal/application/service"
	"apply-agent/internal/domain/entity"

	"gopkg.in/yaml.v3"
)

//go:embed sites.yaml
var defaultSites []byte

type sitesFile struct {
	Layouts map[string]entity.SiteConfig `yaml:"layouts"`
	Sites   []entity.SiteConfig          `yaml:"sites"`
}

// LoadSites builds the registry from path, or from the built-in list when
// path is empty. Sections without an escalation get fallback.
func LoadSites(path string, fallback entity.Escalation) (*service.SiteRegistry, error) {
	data := defaultSites
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read sites file: %w", err)
		}
	}

	sites, err := ParseSites(data)
	if err != nil {
		return nil, err
	}

	for i := range sites {
		for j := range sites[i].Sections {
			if sites[i].Sections[j].Escalation == "" {
				sites[i].Sections[j].Escalation = fallback
			}
		}
	}
	return service.NewSiteRegistry(sites)
}

// ParseSites decodes a sites document and resolves layouts.
func ParseSites(data []byte) ([]entity.SiteConfig, error) {
	var f sitesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse sites: %w", err)
	}

	sites := make([]entity.SiteConfig, 0, len(f.Sites))
	for _, site := range f.Sites {
		if site.Layout != "" {
			layout, ok := f.Layouts[site.Layout]
			if !ok {
				return nil, fmt.Errorf("site %s: unknown layout %q", site.Name, site.Layout)
			}
			site = merge(layout, site)
		}
		sites = append(sites, site)
	}
	return sites, nil
}

// merge overlays what a site sets on top of its layout.
func merge(layout, site entity.SiteConfig) entity.SiteConfig {
	out := layout
	out.Name = site.Name
	out.Layout = site.Layout
	out.URL = site.URL
	if len(site.Sections) > 0 {
		out.Sections = site.Sections
	} else {
		out.Sections = append([]entity.SectionSpec(nil), layout.Sections...)
	}
	if site.Auth != (entity.AuthSpec{}) {
		out.Auth = site.Auth
	}
	if site.SubmitButton != "" {
		out.SubmitButton = site.SubmitButton
	}
	if site.MaxSkills > 0 {
		out.MaxSkills = site.MaxSkills
	}
	return out
}

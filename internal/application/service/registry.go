package service

import (
	"fmt"
	"sort"

	"apply-agent/internal/domain/entity"
)

// SiteRegistry holds the known sites. It is built once and never mutated,
// so runs can share it without locking.
type SiteRegistry struct {
	sites map[string]entity.SiteConfig
}

// NewSiteRegistry validates every site and rejects duplicate names.
func NewSiteRegistry(sites []entity.SiteConfig) (*SiteRegistry, error) {
	r := &SiteRegistry{sites: make(map[string]entity.SiteConfig, len(sites))}
	for _, site := range sites {
		if err := site.Validate(); err != nil {
			return nil, err
		}
		if _, ok := r.sites[site.Name]; ok {
			return nil, fmt.Errorf("duplicate site %q", site.Name)
		}
		r.sites[site.Name] = cloneSite(site)
	}
	return r, nil
}

// Get returns a copy of the named site.
func (r *SiteRegistry) Get(name string) (entity.SiteConfig, bool) {
	site, ok := r.sites[name]
	if !ok {
		return entity.SiteConfig{}, false
	}
	return cloneSite(site), true
}

func (r *SiteRegistry) Names() []string {
	names := make([]string, 0, len(r.sites))
	for name := range r.sites {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *SiteRegistry) Len() int {
	return len(r.sites)
}

func cloneSite(site entity.SiteConfig) entity.SiteConfig {
	site.Sections = append([]entity.SectionSpec(nil), site.Sections...)
	return site
}

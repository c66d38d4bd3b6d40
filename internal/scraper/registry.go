package scraper

import (
	"fmt"
	"sort"
)

// Registry maps OTA identifiers to their adapters. Registration happens at
// startup; after that the registry is read-only, so lookups need no locking.
type Registry struct {
	scrapers map[string]Scraper
}

func NewRegistry() *Registry {
	return &Registry{scrapers: make(map[string]Scraper)}
}

func (r *Registry) Register(s Scraper) error {
	ota := s.OTA()
	if _, exists := r.scrapers[ota]; exists {
		return fmt.Errorf("scraper already registered for OTA %q", ota)
	}
	r.scrapers[ota] = s
	return nil
}

func (r *Registry) Get(ota string) (Scraper, bool) {
	s, ok := r.scrapers[ota]
	return s, ok
}

func (r *Registry) OTAs() []string {
	names := make([]string, 0, len(r.scrapers))
	for name := range r.scrapers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

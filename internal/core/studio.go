package core

import (
	"context"
	"strings"
)

// ResolveStudio returns the studio named name, creating it if needed.
// The lookup is an exact match on the cleaned name.
func (s *Service) ResolveStudio(ctx context.Context, name string) (Studio, error) {
	name = CleanText(name)
	if name == "" {
		return Studio{}, newValidationError("studio", "", "Studio name is required")
	}
	return s.store.UpsertStudio(ctx, name)
}

// studioCache memoizes studio ids for the duration of one import, so a file
// with thousands of rows for one studio upserts it once.
type studioCache map[string]int64

func (c studioCache) resolve(ctx context.Context, s *Service, name string) (int64, error) {
	if id, ok := c[name]; ok {
		return id, nil
	}
	studio, err := s.ResolveStudio(ctx, name)
	if err != nil {
		return 0, err
	}
	c[name] = studio.ID
	return studio.ID, nil
}

// normalizeStudioFilter maps the "all studios" selections to no filter.
// Any other name is kept as an exact filter, so a studio that does not
// exist yields an empty result rather than an unfiltered one.
func normalizeStudioFilter(studio string) string {
	studio = strings.TrimSpace(studio)
	if strings.EqualFold(studio, "all") {
		return ""
	}
	return studio
}

package dataset

import (
	"regexp"
)

// Source resolves the two input files through a Cache.
type Source struct {
	passengers  Spec
	coordinates Spec
	drop        *regexp.Regexp
	cache       *Cache
}

// NewSource creates a Source. A nil drop pattern only removes blank headers;
// a nil cache gets a default one.
func NewSource(passengers, coordinates Spec, drop *regexp.Regexp, cache *Cache) *Source {
	if cache == nil {
		cache = NewCache(CacheConfig{})
	}
	return &Source{
		passengers:  passengers,
		coordinates: coordinates,
		drop:        drop,
		cache:       cache,
	}
}

// Passengers returns the passenger table, loading it on a cache miss.
func (s *Source) Passengers() (*PassengerTable, error) {
	return cached(s.cache, s.passengers.Path, func() (*PassengerTable, error) {
		return LoadPassengers(s.passengers, s.drop)
	})
}

// Coordinates returns the coordinate table, loading it on a cache miss.
func (s *Source) Coordinates() (*CoordinateTable, error) {
	return cached(s.cache, s.coordinates.Path, func() (*CoordinateTable, error) {
		return LoadCoordinates(s.coordinates)
	})
}

// PassengerSpec returns the passenger file spec.
func (s *Source) PassengerSpec() Spec { return s.passengers }

// CoordinateSpec returns the coordinate file spec.
func (s *Source) CoordinateSpec() Spec { return s.coordinates }

// Paths returns both data file paths.
func (s *Source) Paths() []string {
	return []string{s.passengers.Path, s.coordinates.Path}
}

// Invalidate drops the cached table for path.
func (s *Source) Invalidate(path string) bool { return s.cache.Invalidate(path) }

// Purge drops every cached table.
func (s *Source) Purge() { s.cache.Purge() }

// Cache returns the underlying cache.
func (s *Source) Cache() *Cache { return s.cache }

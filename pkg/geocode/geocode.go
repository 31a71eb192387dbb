// Package geocode resolves Indian pincodes to coordinates. The India Post
// directory is asked first; OpenStreetMap Nominatim is the fallback, either
// with the district/state India Post returned or with the bare pincode.
package geocode

import (
	"context"
	"fmt"

	"franchise-crm/internal/models"
)

// PostalDirectory looks a pincode up in a national postal directory.
type PostalDirectory interface {
	LookupPincode(ctx context.Context, pincode string) (*PostOffice, error)
}

// SearchProvider is an open geocoding search service.
type SearchProvider interface {
	SearchPostalCode(ctx context.Context, postalCode, country string) (*Place, error)
	SearchText(ctx context.Context, query string) (*Place, error)
}

// Logger is a printf-style logging function.
type Logger func(format string, args ...any)

// Resolver is what the distance service needs from this package.
type Resolver interface {
	Resolve(ctx context.Context, pincode string) (models.Location, bool)
}

// Geocoder chains a PostalDirectory and a SearchProvider. It never returns an
// error: every provider failure is logged and treated as "not found".
type Geocoder struct {
	directory PostalDirectory
	search    SearchProvider
	country   string
	logf      Logger
}

// NewGeocoder builds the fallback chain. logf may be nil.
func NewGeocoder(directory PostalDirectory, search SearchProvider, country string, logf Logger) *Geocoder {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Geocoder{directory: directory, search: search, country: country, logf: logf}
}

// Resolve returns the coordinates of pincode, or false when no provider could
// produce a non-zero point.
func (g *Geocoder) Resolve(ctx context.Context, pincode string) (models.Location, bool) {
	if loc, ok := g.fromDirectory(ctx, pincode); ok {
		return loc, true
	}

	place, err := g.search.SearchPostalCode(ctx, pincode, g.country)
	if err != nil {
		g.logf("geocode: postal search %s: %v", pincode, err)
		return models.Location{}, false
	}
	return models.Location{
		Coordinates: place.Coordinates,
		Label:       place.DisplayName,
		Source:      SourceNominatimPostal,
	}, true
}

// fromDirectory tries India Post, and when it knows the district but has no
// coordinates, a text search for "district, state, country".
func (g *Geocoder) fromDirectory(ctx context.Context, pincode string) (models.Location, bool) {
	po, err := g.directory.LookupPincode(ctx, pincode)
	if err != nil {
		g.logf("geocode: india post %s: %v", pincode, err)
		return models.Location{}, false
	}

	if c := po.Coordinates(); !c.Unresolved() {
		return models.Location{
			Coordinates: c,
			Label:       fmt.Sprintf("%s, %s, %s", po.Name, po.District, po.State),
			Source:      SourceIndiaPost,
		}, true
	}
	if po.District == "" {
		return models.Location{}, false
	}

	query := fmt.Sprintf("%s, %s, %s", po.District, po.State, g.country)
	place, err := g.search.SearchText(ctx, query)
	if err != nil {
		g.logf("geocode: text search %q: %v", query, err)
		return models.Location{}, false
	}
	return models.Location{
		Coordinates: place.Coordinates,
		Label:       place.DisplayName,
		Source:      SourceNominatimDistrict,
	}, true
}

// Location sources.
const (
	SourceIndiaPost         = "india_post"
	SourceNominatimDistrict = "nominatim_district"
	SourceNominatimPostal   = "nominatim_postal"
)

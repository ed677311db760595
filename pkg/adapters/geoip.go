package adapters

import (
	"context"
	"net"

	"github.com/oschwald/geoip2-golang"
	"github.com/pkg/errors"

	"github.com/gokaycavdar/riskguard/pkg/model"
)

// GeoIPLookup implements GeoLookup against a local MaxMind City database,
// grounded on the teacher's pkg/geoip.Service (same reader, same
// Open/Close lifecycle), narrowed to the single City() call this
// service's Location needs.
type GeoIPLookup struct {
	reader *geoip2.Reader
}

// NewGeoIPLookup opens the MaxMind City database at dbPath.
func NewGeoIPLookup(dbPath string) (*GeoIPLookup, error) {
	reader, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "open geoip city database")
	}
	return &GeoIPLookup{reader: reader}, nil
}

// Close releases the underlying database file handle.
func (g *GeoIPLookup) Close() error {
	return g.reader.Close()
}

// Lookup resolves ip to a coarse Location. An unparseable address or a
// miss in the database both return the zero Location with a nil error —
// the engine's enrichment step treats "unknown" as a valid outcome. A
// failure of the database read itself is returned as an error.
func (g *GeoIPLookup) Lookup(_ context.Context, ip string) (model.Location, error) {
	addr := net.ParseIP(ip)
	if addr == nil {
		return model.Location{}, nil
	}
	record, err := g.reader.City(addr)
	if err != nil {
		return model.Location{}, errors.Wrap(err, "geoip city lookup")
	}
	if record.Country.IsoCode == "" && record.City.Names["en"] == "" {
		return model.Location{}, nil
	}
	return model.Location{
		Country:   record.Country.Names["en"],
		City:      record.City.Names["en"],
		Latitude:  record.Location.Latitude,
		Longitude: record.Location.Longitude,
	}, nil
}

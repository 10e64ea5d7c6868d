package banzone

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
	"truck-eta-service/internal/curfew"
	"truck-eta-service/internal/domain"

	"gopkg.in/yaml.v2"
)

// Record is one ban window as written in a catalog file or table.
//
// The area is taken from Polygon when present ([lon, lat] pairs), otherwise
// from Lat/Lon with RadiusKm (or the catalog default radius).
type Record struct {
	City      string      `json:"city" yaml:"city"`
	DayOfWeek string      `json:"day_of_week" yaml:"day_of_week"`
	TimeStart string      `json:"time_start" yaml:"time_start"`
	TimeEnd   string      `json:"time_end" yaml:"time_end"`
	Lat       *float64    `json:"lat,omitempty" yaml:"lat,omitempty"`
	Lon       *float64    `json:"lon,omitempty" yaml:"lon,omitempty"`
	RadiusKm  *float64    `json:"radius_km,omitempty" yaml:"radius_km,omitempty"`
	Polygon   [][]float64 `json:"polygon,omitempty" yaml:"polygon,omitempty"`
}

type featureCollection struct {
	Features []struct {
		Properties struct {
			City string `json:"city"`
		} `json:"properties"`
		Geometry struct {
			Type        string          `json:"type"`
			Coordinates json.RawMessage `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// LoadRecords reads the ban times file (JSON, or YAML by extension) and, when
// polygonsPath is set, attaches each city's GeoJSON polygon to its records.
func LoadRecords(polygonsPath, banTimesPath string) ([]Record, error) {
	records, err := readBanTimes(banTimesPath)
	if err != nil {
		return nil, domain.CatalogLoad(err)
	}

	if strings.TrimSpace(polygonsPath) == "" {
		return records, nil
	}

	polygons, err := readPolygons(polygonsPath)
	if err != nil {
		return nil, domain.CatalogLoad(err)
	}

	for i := range records {
		if len(records[i].Polygon) > 0 {
			continue
		}
		if ring, ok := polygons[records[i].City]; ok {
			records[i].Polygon = ring
		}
	}

	return records, nil
}

// Build parses records into zones, preserving order. Bad time or weekday
// strings fail the whole catalog; records without a usable area become
// zones that never match.
func Build(records []Record, defaultRadiusKm float64) ([]domain.BanZone, error) {
	zones := make([]domain.BanZone, 0, len(records))
	for i, r := range records {
		start, err := curfew.ParseClock(r.TimeStart)
		if err != nil {
			return nil, domain.CatalogLoad(fmt.Errorf("record #%d city=%q time_start: %w", i+1, r.City, err))
		}
		end, err := curfew.ParseClock(r.TimeEnd)
		if err != nil {
			return nil, domain.CatalogLoad(fmt.Errorf("record #%d city=%q time_end: %w", i+1, r.City, err))
		}
		weekday, err := curfew.ParseWeekday(r.DayOfWeek)
		if err != nil {
			return nil, domain.CatalogLoad(fmt.Errorf("record #%d city=%q day_of_week: %w", i+1, r.City, err))
		}

		zones = append(zones, domain.BanZone{
			City:    strings.TrimSpace(r.City),
			Area:    recordArea(r, defaultRadiusKm),
			Weekday: weekday,
			Start:   start,
			End:     end,
		})
	}
	return zones, nil
}

func recordArea(r Record, defaultRadiusKm float64) domain.Area {
	if len(r.Polygon) > 0 {
		vertices := make([]domain.Coordinate, 0, len(r.Polygon))
		for _, pt := range r.Polygon {
			if len(pt) < 2 {
				return nil
			}
			vertices = append(vertices, domain.Coordinate{Lon: pt[0], Lat: pt[1]})
		}
		return Polygon{Vertices: vertices}
	}

	if r.Lat != nil && r.Lon != nil {
		radius := defaultRadiusKm
		if r.RadiusKm != nil {
			radius = *r.RadiusKm
		}
		return Circle{Center: domain.Coordinate{Lat: *r.Lat, Lon: *r.Lon}, RadiusKm: radius}
	}

	return nil
}

func readBanTimes(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ban times %q: %w", path, err)
	}

	var records []Record
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("parse ban times yaml %q: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("parse ban times json %q: %w", path, err)
		}
	}

	return records, nil
}

// readPolygons returns the outer ring of each city's polygon as [lon, lat] pairs.
func readPolygons(path string) (map[string][][]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read polygons %q: %w", path, err)
	}

	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse polygons geojson %q: %w", path, err)
	}

	out := make(map[string][][]float64, len(fc.Features))
	for i, f := range fc.Features {
		city := strings.TrimSpace(f.Properties.City)
		if city == "" {
			log.Printf("banzone: polygons feature #%d has no city, skipping", i+1)
			continue
		}
		if f.Geometry.Type != "Polygon" {
			log.Printf("banzone: polygons feature #%d city=%q type=%q unsupported, skipping", i+1, city, f.Geometry.Type)
			continue
		}

		var rings [][][]float64
		if err := json.Unmarshal(f.Geometry.Coordinates, &rings); err != nil {
			return nil, fmt.Errorf("parse polygon for %q: %w", city, err)
		}
		if len(rings) == 0 {
			continue
		}
		out[city] = rings[0]
	}

	return out, nil
}

// LoadCatalog reads catalog files and builds a Catalog in one step.
func LoadCatalog(polygonsPath, banTimesPath string, defaultRadiusKm float64, loc *time.Location) (*Catalog, error) {
	records, err := LoadRecords(polygonsPath, banTimesPath)
	if err != nil {
		return nil, err
	}
	zones, err := Build(records, defaultRadiusKm)
	if err != nil {
		return nil, err
	}
	return NewCatalog(zones, loc), nil
}

package zarrcm

import "github.com/pkg/errors"

// geo-proj convention: https://github.com/zarr-experimental/geo-proj

const (
	GeoProjUUID      = "f17cb550-5864-4468-aeb7-f3180cfb622f"
	GeoProjSchemaURL = "https://raw.githubusercontent.com/zarr-experimental/geo-proj/refs/tags/v1/schema.json"
	GeoProjSpecURL   = "https://github.com/zarr-experimental/geo-proj/blob/v1/README.md"
)

var GeoProjCMO = CMO{
	UUID:        GeoProjUUID,
	SchemaURL:   GeoProjSchemaURL,
	SpecURL:     GeoProjSpecURL,
	Name:        "proj:",
	Description: "Coordinate reference system information for geospatial data",
}

var geoProjKeys = []string{"proj:code", "proj:wkt2", "proj:projjson"}

// GeoProjKeys returns the attribute keys reserved by the geo-proj convention.
func GeoProjKeys() []string {
	return append([]string(nil), geoProjKeys...)
}

// GeoProj holds one of the three supported CRS encodings. Exactly one field
// must be set.
type GeoProj struct {
	Code     string
	WKT2     string
	ProjJSON M
}

func (gp GeoProj) data() M {
	d := make(M)
	if gp.Code != "" {
		d["proj:code"] = gp.Code
	}
	if gp.WKT2 != "" {
		d["proj:wkt2"] = gp.WKT2
	}
	if gp.ProjJSON != nil {
		d["proj:projjson"] = gp.ProjJSON
	}
	return d
}

// CreateGeoProj builds validated geo-proj convention data.
func CreateGeoProj(gp GeoProj) (M, error) {
	d := gp.data()
	if err := ValidateGeoProj(d); err != nil {
		return nil, err
	}
	return d, nil
}

// InsertGeoProj merges geo-proj convention data into an attributes map.
func InsertGeoProj(attrs M, data M, overwrite bool) (M, error) {
	return InsertConvention(attrs, GeoProjCMO, data, overwrite)
}

// ExtractGeoProj removes the geo-proj convention from an attributes map,
// returning the remaining attrs and the convention data.
func ExtractGeoProj(attrs M) (M, M, error) {
	remaining, data := ExtractConvention(attrs, geoProjKeys, matchUUID(GeoProjUUID))
	return remaining, data, nil
}

// ValidateGeoProj checks that exactly one of the three CRS encodings is
// present.
func ValidateGeoProj(data M) error {
	var present []string
	for _, k := range geoProjKeys {
		if data.Has(k) {
			present = append(present, k)
		}
	}

	if len(present) != 1 {
		return errors.Wrapf(
			ErrInvalidConventionData,
			"exactly one of 'proj:code', 'proj:wkt2', 'proj:projjson' must be present, got %v",
			present,
		)
	}

	return nil
}

func geoProjConvention() *Convention {
	return &Convention{
		name:     "geo-proj",
		cmo:      GeoProjCMO,
		keys:     geoProjKeys,
		validate: ValidateGeoProj,
		insert:   InsertGeoProj,
		extract:  ExtractGeoProj,
	}
}

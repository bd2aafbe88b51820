package zarrcm

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// spatial convention: https://github.com/zarr-conventions/spatial

const (
	SpatialUUID      = "689b58e2-cf7b-45e0-9fff-9cfc0883d6b4"
	SpatialSchemaURL = "https://raw.githubusercontent.com/zarr-conventions/spatial/refs/tags/v1/schema.json"
	SpatialSpecURL   = "https://github.com/zarr-conventions/spatial/blob/v1/README.md"
)

var SpatialCMO = CMO{
	UUID:        SpatialUUID,
	SchemaURL:   SpatialSchemaURL,
	SpecURL:     SpatialSpecURL,
	Name:        "spatial:",
	Description: "Spatial coordinate information",
}

var spatialKeys = []string{
	"spatial:dimensions",
	"spatial:bbox",
	"spatial:transform_type",
	"spatial:transform",
	"spatial:shape",
	"spatial:registration",
}

// SpatialKeys returns the attribute keys reserved by the spatial convention.
func SpatialKeys() []string {
	return append([]string(nil), spatialKeys...)
}

var spatialLengths = []struct {
	key   string
	valid []int
}{
	{"spatial:dimensions", []int{2, 3}},
	{"spatial:bbox", []int{4, 6}},
	{"spatial:transform", []int{6, 9}},
	{"spatial:shape", []int{2, 3}},
}

var spatialRegistrations = []string{"node", "pixel"}

// Spatial holds spatial coordinate information. Dimensions is required;
// everything else is optional.
type Spatial struct {
	Dimensions    []string
	BBox          []float64
	TransformType string
	Transform     []float64
	Shape         []int
	Registration  string
}

func (sp Spatial) data() M {
	d := M{"spatial:dimensions": sp.Dimensions}
	if sp.BBox != nil {
		d["spatial:bbox"] = sp.BBox
	}
	if sp.TransformType != "" {
		d["spatial:transform_type"] = sp.TransformType
	}
	if sp.Transform != nil {
		d["spatial:transform"] = sp.Transform
	}
	if sp.Shape != nil {
		d["spatial:shape"] = sp.Shape
	}
	if sp.Registration != "" {
		d["spatial:registration"] = sp.Registration
	}
	return d
}

// CreateSpatial builds validated spatial convention data.
func CreateSpatial(sp Spatial) (M, error) {
	d := sp.data()
	if err := ValidateSpatial(d); err != nil {
		return nil, err
	}
	return d, nil
}

// InsertSpatial merges spatial convention data into an attributes map.
func InsertSpatial(attrs M, data M, overwrite bool) (M, error) {
	return InsertConvention(attrs, SpatialCMO, data, overwrite)
}

// ExtractSpatial removes the spatial convention from an attributes map,
// returning the remaining attrs and the convention data.
func ExtractSpatial(attrs M) (M, M, error) {
	remaining, data := ExtractConvention(attrs, spatialKeys, matchUUID(SpatialUUID))
	return remaining, data, nil
}

// ValidateSpatial checks that spatial:dimensions is present, that every
// array-valued key has an allowed length and that spatial:registration,
// when present, is one of the allowed values.
func ValidateSpatial(data M) error {
	if !data.Has("spatial:dimensions") {
		return errors.Wrap(ErrInvalidConventionData, "'spatial:dimensions' is required")
	}

	for _, lc := range spatialLengths {
		v, ok := data[lc.key]
		if !ok {
			continue
		}

		n, isArray := arrayLen(v)
		if !isArray {
			return errors.Wrapf(ErrInvalidConventionData, "'%s' must be an array", lc.key)
		}
		if !containsInt(lc.valid, n) {
			return errors.Wrapf(
				ErrInvalidConventionData,
				"'%s' must have %s items, got %d",
				lc.key, orJoin(lc.valid), n,
			)
		}
	}

	if v, ok := data["spatial:registration"]; ok {
		s, isString := v.(string)
		if !isString || !containsString(spatialRegistrations, s) {
			return errors.Wrapf(
				ErrInvalidConventionData,
				"'spatial:registration' must be one of %v, got %v",
				spatialRegistrations, v,
			)
		}
	}

	return nil
}

func spatialConvention() *Convention {
	return &Convention{
		name:     "spatial",
		cmo:      SpatialCMO,
		keys:     spatialKeys,
		validate: ValidateSpatial,
		insert:   InsertSpatial,
		extract:  ExtractSpatial,
	}
}

func arrayLen(v interface{}) (int, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return rv.Len(), true
	}
	return 0, false
}

func containsInt(ns []int, n int) bool {
	for _, c := range ns {
		if c == n {
			return true
		}
	}
	return false
}

func containsString(ss []string, s string) bool {
	for _, c := range ss {
		if c == s {
			return true
		}
	}
	return false
}

func orJoin(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, " or ")
}

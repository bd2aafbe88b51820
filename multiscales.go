package zarrcm

import "github.com/pkg/errors"

// multiscales convention: https://github.com/zarr-conventions/multiscales

const (
	MultiscalesUUID      = "d35379db-88df-4056-af3a-620245f8e347"
	MultiscalesSchemaURL = "https://raw.githubusercontent.com/zarr-conventions/multiscales/refs/tags/v1/schema.json"
	MultiscalesSpecURL   = "https://github.com/zarr-conventions/multiscales/blob/v1/README.md"
)

var MultiscalesCMO = CMO{
	UUID:        MultiscalesUUID,
	SchemaURL:   MultiscalesSchemaURL,
	SpecURL:     MultiscalesSpecURL,
	Name:        "multiscales",
	Description: "Multiscale layout of zarr datasets",
}

const multiscalesContainer = "multiscales"

var multiscalesKeys = []string{multiscalesContainer}

// MultiscalesKeys returns the attribute keys reserved by the multiscales
// convention.
func MultiscalesKeys() []string {
	return append([]string(nil), multiscalesKeys...)
}

// Transform is a coordinate transformation with scale and translation.
type Transform struct {
	Scale       []float64
	Translation []float64
}

func (tr Transform) data() M {
	d := make(M)
	if tr.Scale != nil {
		d["scale"] = tr.Scale
	}
	if tr.Translation != nil {
		d["translation"] = tr.Translation
	}
	return d
}

// LayoutObject is a single resolution level in a multiscale pyramid. A level
// derived from another must carry the transform relating the two.
type LayoutObject struct {
	Asset            string
	DerivedFrom      string
	Transform        *Transform
	ResamplingMethod string
}

func (lo LayoutObject) data() M {
	d := M{"asset": lo.Asset}
	if lo.DerivedFrom != "" {
		d["derived_from"] = lo.DerivedFrom
	}
	if lo.Transform != nil {
		d["transform"] = lo.Transform.data()
	}
	if lo.ResamplingMethod != "" {
		d["resampling_method"] = lo.ResamplingMethod
	}
	return d
}

// Multiscales describes the pyramid layout stored under the multiscales
// container key.
type Multiscales struct {
	Layout           []LayoutObject
	ResamplingMethod string
}

func (ms Multiscales) data() M {
	layout := make([]interface{}, 0, len(ms.Layout))
	for _, lo := range ms.Layout {
		layout = append(layout, lo.data())
	}

	d := M{"layout": layout}
	if ms.ResamplingMethod != "" {
		d["resampling_method"] = ms.ResamplingMethod
	}
	return d
}

// CreateMultiscales builds validated multiscales convention data.
func CreateMultiscales(ms Multiscales) (M, error) {
	d := ms.data()
	if err := ValidateMultiscales(d); err != nil {
		return nil, err
	}
	return d, nil
}

// InsertMultiscales merges multiscales convention data into an attributes
// map, nested under the multiscales container key.
func InsertMultiscales(attrs M, data M, overwrite bool) (M, error) {
	return InsertConvention(attrs, MultiscalesCMO, M{multiscalesContainer: data}, overwrite)
}

// ExtractMultiscales removes the multiscales convention from an attributes
// map. An absent convention yields an empty layout; a present convention
// whose container key is gone fails with ErrMissingConventionContainer.
func ExtractMultiscales(attrs M) (M, M, error) {
	remaining, data := ExtractConvention(attrs, multiscalesKeys, matchUUID(MultiscalesUUID))
	if len(data) == 0 {
		return remaining, M{"layout": []interface{}{}}, nil
	}

	inner, err := nestedData(data, multiscalesContainer)
	if err != nil {
		return nil, nil, err
	}
	return remaining, inner, nil
}

// ValidateMultiscales checks that layout is a non-empty array of objects and
// that every entry with derived_from also carries transform.
func ValidateMultiscales(data M) error {
	v, ok := data["layout"]
	if !ok {
		return errors.Wrap(ErrInvalidConventionData, "'layout' is required")
	}

	entries, ok := layoutEntries(v)
	if !ok {
		return errors.Wrap(ErrInvalidConventionData, "'layout' must be an array of objects")
	}
	if len(entries) < 1 {
		return errors.Wrap(ErrInvalidConventionData, "'layout' must have at least one item")
	}

	for i, entry := range entries {
		if entry.Has("derived_from") && !entry.Has("transform") {
			return errors.Wrapf(
				ErrInvalidConventionData,
				"layout[%d] has 'derived_from' but is missing 'transform'",
				i,
			)
		}
	}

	return nil
}

func layoutEntries(v interface{}) ([]M, bool) {
	switch tv := v.(type) {
	case []M:
		return tv, true
	case []map[string]interface{}:
		out := make([]M, 0, len(tv))
		for _, e := range tv {
			out = append(out, M(e))
		}
		return out, true
	case []interface{}:
		out := make([]M, 0, len(tv))
		for _, e := range tv {
			switch te := e.(type) {
			case M:
				out = append(out, te)
			case map[string]interface{}:
				out = append(out, M(te))
			default:
				return nil, false
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func multiscalesConvention() *Convention {
	return &Convention{
		name:      "multiscales",
		cmo:       MultiscalesCMO,
		keys:      multiscalesKeys,
		container: multiscalesContainer,
		validate:  ValidateMultiscales,
		insert:    InsertMultiscales,
		extract:   ExtractMultiscales,
	}
}

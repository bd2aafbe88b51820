package zarrcm

import "github.com/pkg/errors"

// uom convention: https://github.com/clbarnes/zarr-convention-uom

const (
	UOMUUID      = "3bbe438d-df37-49fe-8e2b-739296d46dfb"
	UOMSchemaURL = "https://raw.githubusercontent.com/clbarnes/zarr-convention-uom/refs/tags/v1/schema.json"
	UOMSpecURL   = "https://github.com/clbarnes/zarr-convention-uom/blob/v1/README.md"
)

var UOMCMO = CMO{
	UUID:        UOMUUID,
	SchemaURL:   UOMSchemaURL,
	SpecURL:     UOMSpecURL,
	Name:        "uom",
	Description: "Units of measurement for Zarr arrays",
}

const uomContainer = "uom"

var uomKeys = []string{uomContainer}

// UOMKeys returns the attribute keys reserved by the uom convention.
func UOMKeys() []string {
	return append([]string(nil), uomKeys...)
}

// UCUM is Unified Code for Units of Measurement information.
type UCUM struct {
	Unit    string
	Version string
}

func (u UCUM) data() M {
	d := make(M)
	if u.Unit != "" {
		d["unit"] = u.Unit
	}
	if u.Version != "" {
		d["version"] = u.Version
	}
	return d
}

// UOM is unit-of-measurement metadata for an array. The UCUM record is
// required but may be empty.
type UOM struct {
	UCUM        UCUM
	Description string
}

func (u UOM) data() M {
	d := M{"ucum": u.UCUM.data()}
	if u.Description != "" {
		d["description"] = u.Description
	}
	return d
}

// CreateUOM builds validated uom convention data.
func CreateUOM(u UOM) (M, error) {
	d := u.data()
	if err := ValidateUOM(d); err != nil {
		return nil, err
	}
	return d, nil
}

// InsertUOM merges uom convention data into an attributes map, nested under
// the uom container key.
func InsertUOM(attrs M, data M, overwrite bool) (M, error) {
	return InsertConvention(attrs, UOMCMO, M{uomContainer: data}, overwrite)
}

// ExtractUOM removes the uom convention from an attributes map. An absent
// convention yields an empty ucum record; a present convention whose
// container key is gone fails with ErrMissingConventionContainer.
func ExtractUOM(attrs M) (M, M, error) {
	remaining, data := ExtractConvention(attrs, uomKeys, matchUUID(UOMUUID))
	if len(data) == 0 {
		return remaining, M{"ucum": M{}}, nil
	}

	inner, err := nestedData(data, uomContainer)
	if err != nil {
		return nil, nil, err
	}
	return remaining, inner, nil
}

// ValidateUOM checks that the ucum key is present. Its contents are not
// constrained.
func ValidateUOM(data M) error {
	if !data.Has("ucum") {
		return errors.Wrap(ErrInvalidConventionData, "'ucum' is required")
	}

	return nil
}

func uomConvention() *Convention {
	return &Convention{
		name:      "uom",
		cmo:       UOMCMO,
		keys:      uomKeys,
		container: uomContainer,
		validate:  ValidateUOM,
		insert:    InsertUOM,
		extract:   ExtractUOM,
	}
}

package zarrcm

import (
	"strings"

	"github.com/pkg/errors"
)

// license convention: https://github.com/clbarnes/zarr-convention-license

const (
	LicenseUUID      = "b77365e5-2b0c-4141-b917-c03b7c68e935"
	LicenseSchemaURL = "https://raw.githubusercontent.com/clbarnes/zarr-convention-license/refs/tags/v1/schema.json"
	LicenseSpecURL   = "https://github.com/clbarnes/zarr-convention-license/blob/v1/README.md"
)

var LicenseCMO = CMO{
	UUID:        LicenseUUID,
	SchemaURL:   LicenseSchemaURL,
	SpecURL:     LicenseSpecURL,
	Name:        "license",
	Description: "License specifier for Zarr data",
}

const licenseContainer = "license"

var licenseKeys = []string{licenseContainer}

// LicenseKeys returns the attribute keys reserved by the license convention.
func LicenseKeys() []string {
	return append([]string(nil), licenseKeys...)
}

var licenseFields = []string{"spdx", "url", "text", "file", "path"}

// License identifies the license of a node's data in at least one of five
// ways.
type License struct {
	SPDX string
	URL  string
	Text string
	File string
	Path string
}

func (lc License) data() M {
	d := make(M)
	if lc.SPDX != "" {
		d["spdx"] = lc.SPDX
	}
	if lc.URL != "" {
		d["url"] = lc.URL
	}
	if lc.Text != "" {
		d["text"] = lc.Text
	}
	if lc.File != "" {
		d["file"] = lc.File
	}
	if lc.Path != "" {
		d["path"] = lc.Path
	}
	return d
}

// CreateLicense builds validated license convention data.
func CreateLicense(lc License) (M, error) {
	d := lc.data()
	if err := ValidateLicense(d); err != nil {
		return nil, err
	}
	return d, nil
}

// InsertLicense merges license convention data into an attributes map,
// nested under the license container key.
func InsertLicense(attrs M, data M, overwrite bool) (M, error) {
	return InsertConvention(attrs, LicenseCMO, M{licenseContainer: data}, overwrite)
}

// ExtractLicense removes the license convention from an attributes map. An
// absent convention yields an empty map; a present convention whose
// container key is gone fails with ErrMissingConventionContainer.
func ExtractLicense(attrs M) (M, M, error) {
	remaining, data := ExtractConvention(attrs, licenseKeys, matchUUID(LicenseUUID))
	if len(data) == 0 {
		return remaining, M{}, nil
	}

	inner, err := nestedData(data, licenseContainer)
	if err != nil {
		return nil, nil, err
	}
	return remaining, inner, nil
}

// ValidateLicense checks that at least one of the license fields is present.
func ValidateLicense(data M) error {
	for _, k := range licenseFields {
		if data.Has(k) {
			return nil
		}
	}

	return errors.Wrapf(
		ErrInvalidConventionData,
		"at least one of '%s' must be present",
		strings.Join(licenseFields, "', '"),
	)
}

func licenseConvention() *Convention {
	return &Convention{
		name:      "license",
		cmo:       LicenseCMO,
		keys:      licenseKeys,
		container: licenseContainer,
		validate:  ValidateLicense,
		insert:    InsertLicense,
		extract:   ExtractLicense,
	}
}

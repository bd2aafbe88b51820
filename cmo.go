package zarrcm

import "github.com/pkg/errors"

var ErrCMOWithoutIdentifier = errors.New("convention metadata object must have at least one of 'uuid', 'schema_url' or 'spec_url'")

// ConventionsKey is the reserved attribute key holding the array of
// convention metadata objects.
const ConventionsKey = "zarr_conventions"

// CMO is a convention metadata object, one element of the zarr_conventions
// array. All fields are optional on the wire; absent fields are omitted.
type CMO struct {
	UUID        string `json:"uuid,omitempty"`
	SchemaURL   string `json:"schema_url,omitempty"`
	SpecURL     string `json:"spec_url,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// ValidateCMO checks that a convention metadata object carries at least one
// of its three identifying fields.
func ValidateCMO(cmo CMO) error {
	if cmo.UUID == "" && cmo.SchemaURL == "" && cmo.SpecURL == "" {
		return ErrCMOWithoutIdentifier
	}

	return nil
}

func cmoFromMap(m map[string]interface{}) CMO {
	get := func(k string) string {
		v, _ := m[k].(string)
		return v
	}

	return CMO{
		UUID:        get("uuid"),
		SchemaURL:   get("schema_url"),
		SpecURL:     get("spec_url"),
		Name:        get("name"),
		Description: get("description"),
	}
}

// conventionsOf normalizes the zarr_conventions value of an attributes map
// to []CMO. It accepts the decoded JSON forms as well as []CMO itself.
// Anything else is treated as an absent list.
func conventionsOf(attrs M) []CMO {
	switch v := attrs[ConventionsKey].(type) {
	case []CMO:
		return v
	case []interface{}:
		out := make([]CMO, 0, len(v))
		for _, el := range v {
			switch tel := el.(type) {
			case CMO:
				out = append(out, tel)
			case M:
				out = append(out, cmoFromMap(tel))
			case map[string]interface{}:
				out = append(out, cmoFromMap(tel))
			}
		}
		return out
	default:
		return nil
	}
}

func matchUUID(id string) func(CMO) bool {
	return func(cmo CMO) bool {
		return cmo.UUID == id
	}
}

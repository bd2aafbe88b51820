package zarrcm

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

var ErrAttrsJsonInvalid = errors.New("attrs json could not be unmarshalled, probably is invalid")
var ErrAttrsJsonPathInvalid = errors.New("attrs json path is invalid")

// ParseAttrs decodes a JSON object into an attributes map.
func ParseAttrs(b []byte) (M, error) {
	if !gjson.ValidBytes(b) {
		return nil, ErrAttrsJsonInvalid
	}

	var m M
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, errors.Wrap(ErrAttrsJsonInvalid, err.Error())
	}
	if m == nil {
		return nil, errors.Wrap(ErrAttrsJsonInvalid, "root is not an object")
	}

	return m, nil
}

// Doc is a read-only view over the raw JSON attributes of a storage node,
// for callers that hold serialized metadata and want to inspect conventions
// without a full unmarshal. Path getters use gjson syntax.
type Doc struct {
	b []byte
}

func NewDoc(b []byte) *Doc {
	return &Doc{b: b}
}

func (d *Doc) String(path string) (string, error) {
	raw := gjson.GetBytes(d.b, path)
	if !raw.Exists() {
		return "", ErrAttrsJsonPathInvalid
	}
	return raw.String(), nil
}

func (d *Doc) StringOrDefault(path, def string) string {
	if v, err := d.String(path); err != nil {
		return def
	} else {
		return v
	}
}

func (d *Doc) Float(path string) (float64, error) {
	get := gjson.GetBytes(d.b, path)
	if !get.Exists() {
		return 0, ErrAttrsJsonPathInvalid
	}
	return get.Float(), nil
}

func (d *Doc) FloatOrDefault(path string, def float64) float64 {
	if v, err := d.Float(path); err != nil {
		return def
	} else {
		return v
	}
}

func (d *Doc) Int(path string) (int, error) {
	get := gjson.GetBytes(d.b, path)
	if !get.Exists() {
		return 0, ErrAttrsJsonPathInvalid
	}
	return int(get.Int()), nil
}

func (d *Doc) IntOrDefault(path string, def int) int {
	if v, err := d.Int(path); err != nil {
		return def
	} else {
		return v
	}
}

// Conventions reads the zarr_conventions array straight from the raw bytes.
func (d *Doc) Conventions() []CMO {
	res := gjson.GetBytes(d.b, ConventionsKey)
	if !res.IsArray() {
		return nil
	}

	var out []CMO
	for _, el := range res.Array() {
		out = append(out, CMO{
			UUID:        el.Get("uuid").String(),
			SchemaURL:   el.Get("schema_url").String(),
			SpecURL:     el.Get("spec_url").String(),
			Name:        el.Get("name").String(),
			Description: el.Get("description").String(),
		})
	}
	return out
}

// Detect returns the names of the registered conventions declared by the
// document, in lexicographic order.
func (d *Doc) Detect() []string {
	return detectFrom(d.Conventions())
}

// Attrs decodes the full attributes map.
func (d *Doc) Attrs() (M, error) {
	return ParseAttrs(d.b)
}

package zarrcm

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
)

// M is an attributes map attached to a storage node: string keys, arbitrary
// JSON-compatible values.
type M map[string]interface{}

func (m M) Has(k string) bool {
	_, ok := m[k]
	return ok
}

func (m M) String(k string) string {
	v, ok := m[k].(string)
	if !ok {
		return ""
	}
	return v
}

func (m M) HasString(k string) bool {
	_, ok := m[k].(string)
	return ok
}

func (m M) Int(k string) int {
	v, ok := m[k].(int)
	if !ok {
		return 0
	}
	return v
}

func (m M) HasInt(k string) bool {
	_, ok := m[k].(int)
	return ok
}

func (m M) Bool(k string) bool {
	v, ok := m[k].(bool)
	if !ok {
		return false
	}
	return v
}

func (m M) HasBool(k string) bool {
	_, ok := m[k].(bool)
	return ok
}

func (m M) Float(k string) float64 {
	v, ok := m[k].(float64)
	if !ok {
		return 0
	}
	return v
}

func (m M) HasFloat(k string) bool {
	_, ok := m[k].(float64)
	return ok
}

// Conventions returns the normalized zarr_conventions array, or nil when
// the map declares none.
func (m M) Conventions() []CMO {
	return conventionsOf(m)
}

// Clone returns a deep copy sharing no values with m. Every operation in
// this package already returns a fresh map; Clone is for callers that want
// to mutate nested values without touching the original.
func (m M) Clone() M {
	if m == nil {
		return nil
	}

	cp := make(M, len(m))
	if err := copier.CopyWithOption(&cp, m, copier.Option{DeepCopy: true}); err != nil {
		panic("could not copy attrs: " + err.Error())
	}

	return cp
}

// Fingerprint hashes the canonical JSON encoding of the map, keys sorted.
// Two maps with equal contents produce equal fingerprints regardless of
// construction order, which makes it usable as a cheap change marker by
// storage layers persisting attributes.
func (m M) Fingerprint() (uint64, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	for _, k := range keys {
		b, err := json.Marshal(m[k])
		if err != nil {
			return 0, errors.Wrapf(err, "could not fingerprint attrs key '%s'", k)
		}
		buf.WriteString(k)
		buf.WriteByte(0)
		buf.Write(b)
		buf.WriteByte(0)
	}

	return xxhash.Sum64(buf.Bytes()), nil
}

package zarrcm

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var ErrKeyCollision = errors.New("attrs already contain keys that would be overwritten by convention data")
var ErrInvalidConventionData = errors.New("invalid convention data")
var ErrMissingConventionContainer = errors.New("extracted convention data does not contain its container key")

// InsertConvention merges convention data into an attributes map and appends
// cmo to the zarr_conventions array, unless a structurally equal CMO is
// already there. It returns a fresh map; attrs is never mutated.
//
// Unless overwrite is set, keys shared between attrs and data (the reserved
// zarr_conventions key aside) make the insert fail with ErrKeyCollision
// naming the colliding keys in sorted order.
func InsertConvention(attrs M, cmo CMO, data M, overwrite bool) (M, error) {
	if !overwrite {
		var collisions []string
		for k := range data {
			if k == ConventionsKey {
				continue
			}
			if _, ok := attrs[k]; ok {
				collisions = append(collisions, k)
			}
		}

		if len(collisions) > 0 {
			sort.Strings(collisions)
			return nil, errors.Wrapf(
				ErrKeyCollision,
				"colliding keys [%s], pass overwrite to allow",
				strings.Join(collisions, ", "),
			)
		}
	}

	result := make(M, len(attrs)+len(data)+1)
	for k, v := range attrs {
		result[k] = v
	}
	for k, v := range data {
		result[k] = v
	}

	existing := conventionsOf(result)
	merged := make([]CMO, 0, len(existing)+1)
	appended := false
	for _, c := range existing {
		if c == cmo {
			appended = true
		}
		merged = append(merged, c)
	}
	if !appended {
		merged = append(merged, cmo)
	}
	result[ConventionsKey] = merged

	return result, nil
}

// ExtractConvention partitions an attributes map into the attrs that do not
// belong to the convention and the convention's own data, removing every CMO
// accepted by match from the zarr_conventions array. The filtered array is
// kept in the remaining attrs only when non-empty.
//
// Extracting an absent convention is a no-op: data comes back empty and
// remaining equals attrs.
func ExtractConvention(attrs M, conventionKeys []string, match func(CMO) bool) (M, M) {
	reserved := make(map[string]struct{}, len(conventionKeys))
	for _, k := range conventionKeys {
		reserved[k] = struct{}{}
	}

	remaining := make(M)
	data := make(M)
	for k, v := range attrs {
		if k == ConventionsKey {
			continue
		}
		if _, ok := reserved[k]; ok {
			data[k] = v
		} else {
			remaining[k] = v
		}
	}

	var kept []CMO
	for _, cmo := range conventionsOf(attrs) {
		if !match(cmo) {
			kept = append(kept, cmo)
		}
	}
	if len(kept) > 0 {
		remaining[ConventionsKey] = kept
	}

	return remaining, data
}

// nestedData unwraps the container sub-map of a nested convention. A present
// convention whose container key is gone is structural corruption, not an
// absent convention.
func nestedData(data M, container string) (M, error) {
	v, ok := data[container]
	if !ok {
		return nil, errors.Wrapf(ErrMissingConventionContainer, "'%s'", container)
	}

	switch tv := v.(type) {
	case M:
		return tv, nil
	case map[string]interface{}:
		return M(tv), nil
	default:
		return nil, errors.Wrapf(ErrMissingConventionContainer, "'%s' is not an object", container)
	}
}

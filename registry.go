package zarrcm

import (
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	btr "github.com/tidwall/btree"
)

var ErrUnknownConvention = errors.New("unknown convention")

// Convention binds one registered convention to the shared protocol: its
// identity record, its reserved keys and its four operations.
type Convention struct {
	name      string
	cmo       CMO
	keys      []string
	container string // empty for flat conventions
	validate  func(M) error
	insert    func(M, M, bool) (M, error)
	extract   func(M) (M, M, error)
}

func (c *Convention) Name() string {
	return c.name
}

func (c *Convention) CMO() CMO {
	return c.cmo
}

func (c *Convention) Keys() []string {
	return append([]string(nil), c.keys...)
}

func (c *Convention) Validate(data M) error {
	return c.validate(data)
}

func (c *Convention) Insert(attrs M, data M, overwrite bool) (M, error) {
	return c.insert(attrs, data, overwrite)
}

func (c *Convention) Extract(attrs M) (M, M, error) {
	return c.extract(attrs)
}

// dataIn gathers the convention's data as it sits inside attrs, without
// removing it. Flat conventions yield their present reserved keys; nested
// conventions yield the container sub-map and fail with
// ErrMissingConventionContainer when it is gone.
func (c *Convention) dataIn(attrs M) (M, error) {
	if c.container == "" {
		d := make(M)
		for _, k := range c.keys {
			if v, ok := attrs[k]; ok {
				d[k] = v
			}
		}
		return d, nil
	}

	return nestedData(attrs, c.container)
}

type convItem struct {
	name string
	c    *Convention
}

func byConventionName(a, b interface{}) bool {
	i1, i2 := a.(*convItem), b.(*convItem)
	return i1.name < i2.name
}

type conventionRegistry struct {
	btr    *btr.BTree
	byUUID map[string]*Convention
}

func newConventionRegistry(conventions ...*Convention) *conventionRegistry {
	r := &conventionRegistry{
		btr:    btr.New(byConventionName),
		byUUID: make(map[string]*Convention),
	}

	for _, c := range conventions {
		r.btr.Set(&convItem{name: c.name, c: c})
		r.byUUID[c.cmo.UUID] = c
	}

	return r
}

func (r *conventionRegistry) get(name string) *Convention {
	item := r.btr.Get(&convItem{name: name})
	if item == nil {
		return nil
	}
	return item.(*convItem).c
}

// getByUUID resolves a CMO uuid to a registered convention. Well-formed
// uuids are matched case-insensitively through canonical parsing; anything
// unparsable is compared verbatim.
func (r *conventionRegistry) getByUUID(id string) *Convention {
	if c, ok := r.byUUID[id]; ok {
		return c
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil
	}
	return r.byUUID[parsed.String()]
}

// ascend iterates registered conventions in name order.
func (r *conventionRegistry) ascend(f func(c *Convention) bool) {
	r.btr.Ascend(nil, func(item interface{}) bool {
		return f(item.(*convItem).c)
	})
}

// The convention set is closed and known at build time.
var registry = newConventionRegistry(
	geoProjConvention(),
	spatialConvention(),
	multiscalesConvention(),
	licenseConvention(),
	uomConvention(),
)

// Lookup resolves a convention by name.
func Lookup(name string) (*Convention, error) {
	c := registry.get(name)
	if c == nil {
		return nil, errors.Wrapf(ErrUnknownConvention, "'%s'", name)
	}
	return c, nil
}

// ConventionNames returns every registered convention name in lexicographic
// order.
func ConventionNames() []string {
	names := make([]string, 0, registry.btr.Len())
	registry.ascend(func(c *Convention) bool {
		names = append(names, c.name)
		return true
	})
	return names
}

// AllConventionKeys returns the union of every convention's reserved keys,
// sorted. The shared zarr_conventions key is not part of it.
func AllConventionKeys() []string {
	var keys []string
	registry.ascend(func(c *Convention) bool {
		keys = append(keys, c.keys...)
		return true
	})
	sort.Strings(keys)
	return keys
}

// Detect returns the names, in lexicographic order, of the registered
// conventions whose UUID appears in the zarr_conventions array of attrs.
func Detect(attrs M) []string {
	return detectFrom(conventionsOf(attrs))
}

func detectFrom(cmos []CMO) []string {
	found := make(map[string]struct{})
	for _, cmo := range cmos {
		if c := registry.getByUUID(cmo.UUID); c != nil {
			found[c.name] = struct{}{}
		}
	}

	names := make([]string, 0, len(found))
	registry.ascend(func(c *Convention) bool {
		if _, ok := found[c.name]; ok {
			names = append(names, c.name)
		}
		return true
	})
	return names
}

func sortedNames(conventions map[string]M) []string {
	names := make([]string, 0, len(conventions))
	for name := range conventions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CreateMany validates and inserts several conventions into a fresh
// attributes map. Names are applied in lexicographic order, so the
// zarr_conventions array is deterministic.
func CreateMany(conventions map[string]M) (M, error) {
	attrs := make(M)
	for _, name := range sortedNames(conventions) {
		c, err := Lookup(name)
		if err != nil {
			return nil, err
		}

		data := conventions[name]
		if err := c.validate(data); err != nil {
			return nil, err
		}

		attrs, err = c.insert(attrs, data, false)
		if err != nil {
			return nil, err
		}
	}
	return attrs, nil
}

// InsertMany inserts several conventions into attrs, names applied in
// lexicographic order. Data is not validated; use CreateMany for that.
func InsertMany(attrs M, conventions map[string]M, overwrite bool) (M, error) {
	result := attrs
	for _, name := range sortedNames(conventions) {
		c, err := Lookup(name)
		if err != nil {
			return nil, err
		}

		result, err = c.insert(result, conventions[name], overwrite)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// ValidateMany validates the data of the named conventions as it sits in
// attrs, in caller order.
func ValidateMany(attrs M, names []string) error {
	for _, name := range names {
		c, err := Lookup(name)
		if err != nil {
			return err
		}

		data, err := c.dataIn(attrs)
		if err != nil {
			return errors.Wrapf(err, "convention '%s'", name)
		}
		if err := c.validate(data); err != nil {
			return errors.Wrapf(err, "convention '%s'", name)
		}
	}
	return nil
}

// ValidateAll validates every convention detected in attrs via its CMO.
func ValidateAll(attrs M) error {
	return ValidateMany(attrs, Detect(attrs))
}

// ExtractMany extracts the named conventions from attrs in caller order,
// returning the remaining attrs and the per-convention data.
func ExtractMany(attrs M, names []string) (M, map[string]M, error) {
	remaining := attrs
	extracted := make(map[string]M, len(names))
	for _, name := range names {
		c, err := Lookup(name)
		if err != nil {
			return nil, nil, err
		}

		var data M
		remaining, data, err = c.extract(remaining)
		if err != nil {
			return nil, nil, err
		}
		extracted[name] = data
	}
	return remaining, extracted, nil
}

// ExtractAll extracts every convention detected in attrs via its CMO.
func ExtractAll(attrs M) (M, map[string]M, error) {
	return ExtractMany(attrs, Detect(attrs))
}

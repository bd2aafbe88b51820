package zarrcm_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	zarrcm "github.com/zarr-experimental/zarr-cm-go"
)

func TestConventionNames(t *testing.T) {
	assert.Equal(t, []string{"geo-proj", "license", "multiscales", "spatial", "uom"}, zarrcm.ConventionNames())
}

func TestAllConventionKeys(t *testing.T) {
	assert.Equal(t, []string{
		"license",
		"multiscales",
		"proj:code",
		"proj:projjson",
		"proj:wkt2",
		"spatial:bbox",
		"spatial:dimensions",
		"spatial:registration",
		"spatial:shape",
		"spatial:transform",
		"spatial:transform_type",
		"uom",
	}, zarrcm.AllConventionKeys())
}

func TestLookup(t *testing.T) {
	t.Run("known name", func(t *testing.T) {
		c, err := zarrcm.Lookup("geo-proj")
		require.NoError(t, err)
		assert.Equal(t, "geo-proj", c.Name())
		assert.Equal(t, zarrcm.GeoProjCMO, c.CMO())
		assert.Equal(t, zarrcm.GeoProjKeys(), c.Keys())
	})

	t.Run("every registered name resolves", func(t *testing.T) {
		for _, name := range zarrcm.ConventionNames() {
			c, err := zarrcm.Lookup(name)
			require.NoError(t, err, name)
			assert.Equal(t, name, c.Name())
			require.NoError(t, zarrcm.ValidateCMO(c.CMO()), name)
		}
	})

	t.Run("unknown name fails", func(t *testing.T) {
		_, err := zarrcm.Lookup("not-a-convention")
		require.Error(t, err)
		assert.True(t, errors.Is(err, zarrcm.ErrUnknownConvention))
		assert.Contains(t, err.Error(), "not-a-convention")
	})
}

func TestDetect(t *testing.T) {
	t.Run("no conventions", func(t *testing.T) {
		assert.Empty(t, zarrcm.Detect(zarrcm.M{"foo": "bar"}))
	})

	t.Run("detects by uuid", func(t *testing.T) {
		attrs, err := zarrcm.CreateMany(map[string]zarrcm.M{
			"license": {"spdx": "MIT"},
			"uom":     {"ucum": zarrcm.M{}},
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"license", "uom"}, zarrcm.Detect(attrs))
	})

	t.Run("uppercase uuid still matches", func(t *testing.T) {
		attrs := zarrcm.M{zarrcm.ConventionsKey: []zarrcm.CMO{
			{UUID: strings.ToUpper(zarrcm.LicenseUUID)},
		}}

		assert.Equal(t, []string{"license"}, zarrcm.Detect(attrs))
	})

	t.Run("unknown uuids are ignored", func(t *testing.T) {
		attrs := zarrcm.M{zarrcm.ConventionsKey: []zarrcm.CMO{
			{UUID: "00000000-0000-0000-0000-000000000000"},
			{UUID: "not even a uuid"},
		}}

		assert.Empty(t, zarrcm.Detect(attrs))
	})
}

func Test_MultiConventionOps(t *testing.T) {
	suite.Run(t, &multiConventionSuite{})
}

type multiConventionSuite struct {
	suite.Suite
}

func (s *multiConventionSuite) TestCreateManySingle() {
	result, err := zarrcm.CreateMany(map[string]zarrcm.M{
		"geo-proj": {"proj:code": "EPSG:4326"},
	})
	s.Require().NoError(err)

	s.Assert().Equal("EPSG:4326", result.String("proj:code"))
	s.Assert().Len(result.Conventions(), 1)
}

func (s *multiConventionSuite) TestCreateManyMixed() {
	result, err := zarrcm.CreateMany(map[string]zarrcm.M{
		"geo-proj": {"proj:code": "EPSG:4326"},
		"license":  {"spdx": "MIT"},
	})
	s.Require().NoError(err)

	s.Assert().Equal("EPSG:4326", result.String("proj:code"))
	s.Assert().Equal(zarrcm.M{"spdx": "MIT"}, result["license"])
	s.Assert().Equal([]zarrcm.CMO{zarrcm.GeoProjCMO, zarrcm.LicenseCMO}, result.Conventions())
}

func (s *multiConventionSuite) TestCreateManyAll() {
	result, err := zarrcm.CreateMany(map[string]zarrcm.M{
		"geo-proj":    {"proj:code": "EPSG:4326"},
		"spatial":     {"spatial:dimensions": []string{"y", "x"}},
		"multiscales": {"layout": []interface{}{zarrcm.M{"asset": "0"}}},
		"license":     {"spdx": "MIT"},
		"uom":         {"ucum": zarrcm.M{"unit": "kg"}},
	})
	s.Require().NoError(err)

	s.Assert().Len(result.Conventions(), 5)
	s.Assert().Equal("EPSG:4326", result.String("proj:code"))
	s.Assert().Equal([]string{"y", "x"}, result["spatial:dimensions"])
	s.Assert().Equal(zarrcm.M{"layout": []interface{}{zarrcm.M{"asset": "0"}}}, result["multiscales"])
	s.Assert().Equal(zarrcm.M{"spdx": "MIT"}, result["license"])
	s.Assert().Equal(zarrcm.M{"ucum": zarrcm.M{"unit": "kg"}}, result["uom"])
}

func (s *multiConventionSuite) TestCreateManyUnknownName() {
	_, err := zarrcm.CreateMany(map[string]zarrcm.M{"not-a-convention": {}})
	s.Require().Error(err)
	s.Assert().True(errors.Is(err, zarrcm.ErrUnknownConvention))
}

func (s *multiConventionSuite) TestCreateManyInvalidData() {
	_, err := zarrcm.CreateMany(map[string]zarrcm.M{"geo-proj": {}})
	s.Require().Error(err)
	s.Assert().True(errors.Is(err, zarrcm.ErrInvalidConventionData))
	s.Assert().Contains(err.Error(), "exactly one")
}

func (s *multiConventionSuite) TestValidateMany() {
	attrs, err := zarrcm.CreateMany(map[string]zarrcm.M{
		"geo-proj": {"proj:code": "EPSG:4326"},
		"license":  {"spdx": "MIT"},
	})
	s.Require().NoError(err)

	s.Require().NoError(zarrcm.ValidateMany(attrs, []string{"geo-proj", "license"}))
	s.Require().NoError(zarrcm.ValidateMany(attrs, []string{"geo-proj"}))
}

func (s *multiConventionSuite) TestValidateManyCorruptData() {
	attrs, err := zarrcm.CreateMany(map[string]zarrcm.M{"license": {"spdx": "MIT"}})
	s.Require().NoError(err)

	attrs["license"] = zarrcm.M{}

	err = zarrcm.ValidateMany(attrs, []string{"license"})
	s.Require().Error(err)
	s.Assert().True(errors.Is(err, zarrcm.ErrInvalidConventionData))
	s.Assert().Contains(err.Error(), "convention 'license'")
}

func (s *multiConventionSuite) TestValidateManyMissingContainer() {
	attrs, err := zarrcm.CreateMany(map[string]zarrcm.M{"uom": {"ucum": zarrcm.M{}}})
	s.Require().NoError(err)

	delete(attrs, "uom")

	err = zarrcm.ValidateMany(attrs, []string{"uom"})
	s.Require().Error(err)
	s.Assert().True(errors.Is(err, zarrcm.ErrMissingConventionContainer))
}

func (s *multiConventionSuite) TestValidateAll() {
	attrs, err := zarrcm.CreateMany(map[string]zarrcm.M{
		"geo-proj": {"proj:code": "EPSG:4326"},
		"license":  {"spdx": "MIT"},
		"uom":      {"ucum": zarrcm.M{"unit": "kg"}},
	})
	s.Require().NoError(err)

	s.Require().NoError(zarrcm.ValidateAll(attrs))
}

func (s *multiConventionSuite) TestInsertManyEmptyAttrs() {
	result, err := zarrcm.InsertMany(zarrcm.M{}, map[string]zarrcm.M{
		"geo-proj": {"proj:code": "EPSG:4326"},
		"license":  {"spdx": "MIT"},
	}, false)
	s.Require().NoError(err)

	s.Assert().Equal("EPSG:4326", result.String("proj:code"))
	s.Assert().Equal(zarrcm.M{"spdx": "MIT"}, result["license"])
}

func (s *multiConventionSuite) TestInsertManyPreservesAttrs() {
	result, err := zarrcm.InsertMany(zarrcm.M{"foo": "bar"}, map[string]zarrcm.M{
		"geo-proj": {"proj:code": "EPSG:4326"},
	}, false)
	s.Require().NoError(err)

	s.Assert().Equal("bar", result.String("foo"))
	s.Assert().Equal("EPSG:4326", result.String("proj:code"))
}

func (s *multiConventionSuite) TestInsertManyCollision() {
	attrs := zarrcm.M{"proj:code": "EPSG:3857"}

	_, err := zarrcm.InsertMany(attrs, map[string]zarrcm.M{
		"geo-proj": {"proj:code": "EPSG:4326"},
	}, false)
	s.Require().Error(err)
	s.Assert().True(errors.Is(err, zarrcm.ErrKeyCollision))

	result, err := zarrcm.InsertMany(attrs, map[string]zarrcm.M{
		"geo-proj": {"proj:code": "EPSG:4326"},
	}, true)
	s.Require().NoError(err)
	s.Assert().Equal("EPSG:4326", result.String("proj:code"))
}

func (s *multiConventionSuite) TestExtractMany() {
	attrs, err := zarrcm.CreateMany(map[string]zarrcm.M{
		"geo-proj": {"proj:code": "EPSG:4326"},
		"license":  {"spdx": "MIT"},
	})
	s.Require().NoError(err)

	remaining, extracted, err := zarrcm.ExtractMany(attrs, []string{"geo-proj", "license"})
	s.Require().NoError(err)

	s.Assert().Equal(zarrcm.M{}, remaining)
	s.Assert().Equal(zarrcm.M{"proj:code": "EPSG:4326"}, extracted["geo-proj"])
	s.Assert().Equal(zarrcm.M{"spdx": "MIT"}, extracted["license"])
}

func (s *multiConventionSuite) TestExtractManySubset() {
	attrs, err := zarrcm.CreateMany(map[string]zarrcm.M{
		"geo-proj": {"proj:code": "EPSG:4326"},
		"license":  {"spdx": "MIT"},
	})
	s.Require().NoError(err)

	remaining, extracted, err := zarrcm.ExtractMany(attrs, []string{"geo-proj"})
	s.Require().NoError(err)

	s.Assert().Contains(extracted, "geo-proj")
	s.Assert().NotContains(extracted, "license")
	s.Assert().Equal(zarrcm.M{"spdx": "MIT"}, remaining["license"])
	s.Assert().Equal([]zarrcm.CMO{zarrcm.LicenseCMO}, remaining.Conventions())
}

func (s *multiConventionSuite) TestExtractManyPreservesUnrelatedKeys() {
	attrs, err := zarrcm.CreateMany(map[string]zarrcm.M{
		"geo-proj": {"proj:code": "EPSG:4326"},
	})
	s.Require().NoError(err)
	attrs["foo"] = "bar"

	remaining, extracted, err := zarrcm.ExtractMany(attrs, []string{"geo-proj"})
	s.Require().NoError(err)

	s.Assert().Equal(zarrcm.M{"foo": "bar"}, remaining)
	s.Assert().Equal(zarrcm.M{"proj:code": "EPSG:4326"}, extracted["geo-proj"])
}

func (s *multiConventionSuite) TestExtractAll() {
	attrs, err := zarrcm.CreateMany(map[string]zarrcm.M{
		"geo-proj": {"proj:code": "EPSG:4326"},
		"license":  {"spdx": "MIT"},
	})
	s.Require().NoError(err)

	remaining, extracted, err := zarrcm.ExtractAll(attrs)
	s.Require().NoError(err)

	s.Assert().Equal(zarrcm.M{}, remaining)
	s.Assert().Equal(zarrcm.M{"proj:code": "EPSG:4326"}, extracted["geo-proj"])
	s.Assert().Equal(zarrcm.M{"spdx": "MIT"}, extracted["license"])
}

func (s *multiConventionSuite) TestRoundTrip() {
	conventions := map[string]zarrcm.M{
		"geo-proj": {"proj:code": "EPSG:4326"},
		"spatial":  {"spatial:dimensions": []string{"y", "x"}},
		"license":  {"spdx": "MIT"},
	}

	attrs, err := zarrcm.CreateMany(conventions)
	s.Require().NoError(err)

	remaining, extracted, err := zarrcm.ExtractMany(attrs, []string{"geo-proj", "spatial", "license"})
	s.Require().NoError(err)

	s.Assert().Equal(zarrcm.M{}, remaining)
	s.Assert().Equal(conventions, extracted)
}

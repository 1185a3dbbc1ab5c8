package apidoc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const familySrc = `// Package njord ships things.
package njord

// Store persists entries.
//
//refdocs:family storage
//refdocs:order 2
type Store struct{}

// Cache memoizes entries.
//
//refdocs:family storage
//refdocs:order 1
type Cache struct{}

// Dial opens a connection.
//
//refdocs:family client-api
func Dial(addr string) error { return nil }

// Tally counts entries.
func Tally(n int) int { return n }
`

func loadFamilies(t *testing.T, opts LoadOptions) *Package {
	t.Helper()
	opts.Dir = writePackage(t, map[string]string{"njord.go": familySrc})
	opts.ImportPath = "example.test/njord"
	pkg, err := Load(opts)
	require.NoError(t, err)
	return pkg
}

func TestSections_FamilyGrouping(t *testing.T) {
	pkg := loadFamilies(t, LoadOptions{})

	require.Len(t, pkg.Sections, 3)

	// Families first, in first-seen order; unfamilied objects fall back to
	// the default kind sections.
	require.Equal(t, "storage", pkg.Sections[0].Key)
	require.Equal(t, "client-api", pkg.Sections[1].Key)
	require.Equal(t, "functions", pkg.Sections[2].Key)

	// refdocs:order sorts within the family.
	require.Equal(t, []string{"Cache", "Store"}, objectNames(pkg.Sections[0]))
	require.Equal(t, []string{"Tally"}, objectNames(pkg.Sections[2]))
}

func TestSections_FamilyTitles(t *testing.T) {
	auto := loadFamilies(t, LoadOptions{})
	require.Equal(t, "Client Api", auto.Sections[1].Title)
	require.Equal(t, "Storage", auto.Sections[0].Title)

	overridden := loadFamilies(t, LoadOptions{
		Families: map[string]string{"client-api": "Client API"},
	})
	require.Equal(t, "Client API", overridden.Sections[1].Title)
}

func TestSections_LargeTypeSplit(t *testing.T) {
	src := `// Package pool.
package pool

// Pool hands out workers.
type Pool struct{}

// Get borrows a worker.
func (p *Pool) Get() {}

// Put returns a worker.
func (p *Pool) Put() {}

// Close drains the pool.
func (p *Pool) Close() {}

// Tiny does one thing.
type Tiny struct{}

// Ping pokes the tiny thing.
func (t *Tiny) Ping() {}
`
	dir := writePackage(t, map[string]string{"pool.go": src})
	pkg, err := Load(LoadOptions{Dir: dir, ImportPath: "example.test/pool", LargeTypeThreshold: 2})
	require.NoError(t, err)

	require.Len(t, pkg.Sections, 2)
	require.Equal(t, "types", pkg.Sections[0].Key)
	require.Equal(t, "pool-methods", pkg.Sections[1].Key)
	require.Equal(t, "Pool methods", pkg.Sections[1].Title)

	var pool *Object
	for _, obj := range pkg.Sections[0].Objects {
		if obj.Name == "Pool" {
			pool = obj
		}
	}
	require.NotNil(t, pool)
	require.True(t, pool.SplitMethods)

	require.Equal(t, []string{"Pool.Get", "Pool.Put", "Pool.Close"}, objectNames(pkg.Sections[1]))
	require.Equal(t, KindMethod, pkg.Sections[1].Objects[0].Kind)

	// Tiny stays below the threshold and keeps its methods inline.
	for _, obj := range pkg.Sections[0].Objects {
		if obj.Name == "Tiny" {
			require.False(t, obj.SplitMethods)
		}
	}
}

func TestSections_ThresholdDisabled(t *testing.T) {
	pkg := loadWidget(t, LoadOptions{LargeTypeThreshold: 0})
	for _, s := range pkg.Sections {
		require.NotContains(t, s.Key, "-methods")
	}
}

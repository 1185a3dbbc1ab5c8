package apidoc

// autoExcluded names are exported build/toolchain metadata that packages
// rarely want in their reference. An explicit include brings them back.
var autoExcluded = map[string]bool{
	"Version":     true,
	"VersionInfo": true,
	"Commit":      true,
	"GitCommit":   true,
	"BuildDate":   true,
	"BuildTime":   true,
	"Main":        true,
}

// nameFilter decides which exported names are documented.
type nameFilter struct {
	manifest bool
	include  map[string]bool
	exclude  map[string]bool
}

func newNameFilter(manifest bool, include, exclude []string) *nameFilter {
	f := &nameFilter{
		manifest: manifest,
		include:  make(map[string]bool, len(include)),
		exclude:  make(map[string]bool, len(exclude)),
	}
	for _, n := range include {
		f.include[n] = true
	}
	for _, n := range exclude {
		f.exclude[n] = true
	}
	return f
}

// keep applies the precedence rules: exclude always wins; include overrides
// the auto-excluded set in exported mode; manifest mode documents exactly
// the include list.
func (f *nameFilter) keep(name string) bool {
	if f.exclude[name] {
		return false
	}
	if f.manifest {
		return f.include[name]
	}
	if autoExcluded[name] && !f.include[name] {
		return false
	}
	return true
}

// missing returns include entries that matched nothing, for warnings.
func (f *nameFilter) missing(seen map[string]bool) []string {
	var out []string
	for n := range f.include {
		if !seen[n] {
			out = append(out, n)
		}
	}
	return out
}

package version

import "testing"

func TestBuildMetadataInitialized(t *testing.T) {
	// All three are ldflags targets; until set by a release build they
	// carry the literal "unknown", never the empty string.
	for name, v := range map[string]string{
		"Version":   Version,
		"BuildTime": BuildTime,
		"GitCommit": GitCommit,
	} {
		if v == "" {
			t.Errorf("%s should not be empty", name)
		}
	}
}

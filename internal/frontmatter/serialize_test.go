package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerializeFields_EmptyMap_ReturnsEmpty(t *testing.T) {
	out, err := SerializeFields(map[string]any{}, Style{Newline: "\n"})
	require.NoError(t, err)
	require.Equal(t, "", string(out))
}

func TestSerializeFields_DeterministicOrderAndTrailingNewline(t *testing.T) {
	fields := map[string]any{
		"weight": 3,
		"title":  "Widget",
		"uid":    "abc",
	}

	out1, err := SerializeFields(fields, Style{Newline: "\n"})
	require.NoError(t, err)
	out2, err := SerializeFields(fields, Style{Newline: "\n"})
	require.NoError(t, err)
	require.Equal(t, string(out1), string(out2))

	require.Equal(t, "title: Widget\nuid: abc\nweight: 3\n", string(out1))
}

func TestSerializeFields_NewlineStyle_CRLF(t *testing.T) {
	out, err := SerializeFields(map[string]any{"title": "Widget"}, Style{Newline: "\r\n"})
	require.NoError(t, err)
	require.Equal(t, "title: Widget\r\n", string(out))
}

func TestSerializeFields_NestedMap_SortsKeysRecursively(t *testing.T) {
	fields := map[string]any{
		"params": map[string]any{
			"github":   "acme/widget",
			"darkMode": true,
		},
	}

	out, err := SerializeFields(fields, Style{Newline: "\n"})
	require.NoError(t, err)
	require.Equal(t, "params:\n  darkMode: true\n  github: acme/widget\n", string(out))
}

func TestSerializeFields_StringSlices(t *testing.T) {
	out, err := SerializeFields(map[string]any{"aliases": []string{"/_uid/abc/"}}, Style{Newline: "\n"})
	require.NoError(t, err)
	require.Equal(t, "aliases:\n  - /_uid/abc/\n", string(out))
}

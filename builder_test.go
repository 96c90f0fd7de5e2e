package confdoc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRender tests document rendering without disk I/O
func TestRender(t *testing.T) {
	t.Run("PrimitiveEntries", func(t *testing.T) {
		n := NewNamespace()
		require.NoError(t, n.Register("name", "service"))
		require.NoError(t, n.Register("port", 8080))
		require.NoError(t, n.Register("debug", false))

		out, err := n.Render(DefaultGenerateOptions())
		require.NoError(t, err)

		text := string(out)
		assert.Contains(t, text, `name = "service"`)
		assert.Contains(t, text, "port = 8080")
		assert.Contains(t, text, "debug = false")
	})

	t.Run("RegistrationOrderPreserved", func(t *testing.T) {
		n := NewNamespace()
		require.NoError(t, n.Register("zebra", 1))
		require.NoError(t, n.Register("alpha", 2))

		out, err := n.Render(DefaultGenerateOptions())
		require.NoError(t, err)

		text := string(out)
		assert.Less(t, strings.Index(text, "zebra"), strings.Index(text, "alpha"))
	})

	t.Run("SourceOrderOverridesRegistration", func(t *testing.T) {
		n := NewNamespace()
		require.NoError(t, n.Register("second", 2))
		require.NoError(t, n.Register("first", 1))

		opts := DefaultGenerateOptions()
		opts.Source = "first = 1\nsecond = 2\n"

		out, err := n.Render(opts)
		require.NoError(t, err)

		text := string(out)
		assert.Less(t, strings.Index(text, "first"), strings.Index(text, "second"))
	})

	t.Run("UnscannedVariablesAppendedLast", func(t *testing.T) {
		n := NewNamespace()
		require.NoError(t, n.Register("extra", true))
		require.NoError(t, n.Register("known", 1))

		opts := DefaultGenerateOptions()
		opts.Source = "known = 1\n"

		out, err := n.Render(opts)
		require.NoError(t, err)

		text := string(out)
		assert.Less(t, strings.Index(text, "known"), strings.Index(text, "extra"))
	})

	t.Run("UnregisteredSourceNamesDropped", func(t *testing.T) {
		n := NewNamespace()
		require.NoError(t, n.Register("kept", 1))

		opts := DefaultGenerateOptions()
		opts.Source = "kept = 1\nstray = 2\n"

		out, err := n.Render(opts)
		require.NoError(t, err)
		assert.NotContains(t, string(out), "stray")
	})

	t.Run("CommentFidelity", func(t *testing.T) {
		n := NewNamespace()
		require.NoError(t, n.Register("timeout", 30))

		opts := DefaultGenerateOptions()
		opts.Source = "# first line\n# second line\ntimeout = 30  # seconds\n"

		out, err := n.Render(opts)
		require.NoError(t, err)

		assert.Equal(t, "# first line\n# second line\ntimeout = 30 # seconds\n", string(out))
	})

	t.Run("CommentsDroppedWhenDisabled", func(t *testing.T) {
		n := NewNamespace()
		require.NoError(t, n.Register("timeout", 30))

		opts := GenerateOptions{
			Source: "# docs\ntimeout = 30  # seconds\n",
		}

		out, err := n.Render(opts)
		require.NoError(t, err)
		assert.Equal(t, "timeout = 30\n", string(out))
	})

	t.Run("InlineCommentOnTableHeader", func(t *testing.T) {
		n := NewNamespace()
		require.NoError(t, n.Register("server", map[string]any{"host": "a"}))

		opts := DefaultGenerateOptions()
		opts.Source = "server = {'host': 'a'}  # main server\n"

		out, err := n.Render(opts)
		require.NoError(t, err)

		text := string(out)
		assert.Contains(t, text, "[server] # main server")
		assert.Contains(t, text, `host = "a"`)
	})

	t.Run("EntriesSeparatedByBlankLine", func(t *testing.T) {
		n := NewNamespace()
		require.NoError(t, n.Register("a", 1))
		require.NoError(t, n.Register("b", 2))

		out, err := n.Render(DefaultGenerateOptions())
		require.NoError(t, err)
		assert.Contains(t, string(out), "a = 1\n\nb = 2\n")
	})

	t.Run("CapabilityValueRendered", func(t *testing.T) {
		n := NewNamespace()
		require.NoError(t, n.Register("server", endpoint{Host: "db", Port: 5432}))

		out, err := n.Render(DefaultGenerateOptions())
		require.NoError(t, err)

		text := string(out)
		assert.Contains(t, text, "[server]")
		assert.Contains(t, text, `host = "db"`)
		assert.Contains(t, text, "port = 5432")
	})

	t.Run("SerializationFailureAborts", func(t *testing.T) {
		n := NewNamespace()
		require.NoError(t, n.Register("good", 1))
		require.NoError(t, n.Register("bad", opaque{}))

		_, err := n.Render(DefaultGenerateOptions())
		require.Error(t, err)

		_, ok := err.(*SerializationError)
		assert.True(t, ok)
	})

	t.Run("MalformedSourcePropagates", func(t *testing.T) {
		n := NewNamespace()
		require.NoError(t, n.Register("ok", 1))

		opts := DefaultGenerateOptions()
		opts.Source = "ok = \"unterminated\n"

		_, err := n.Render(opts)
		require.Error(t, err)

		_, ok := err.(*ScanError)
		assert.True(t, ok)
	})
}

// TestGenerate tests writing documents to disk
func TestGenerate(t *testing.T) {
	t.Run("WritesDocument", func(t *testing.T) {
		n := NewNamespace()
		require.NoError(t, n.Register("port", 8080))

		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, n.Generate(path, DefaultGenerateOptions()))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "port = 8080")
	})

	t.Run("RefusesOverwrite", func(t *testing.T) {
		n := NewNamespace()
		require.NoError(t, n.Register("port", 8080))

		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, n.Generate(path, DefaultGenerateOptions()))

		err := n.Generate(path, DefaultGenerateOptions())
		assert.ErrorIs(t, err, ErrDocumentExists)
	})

	t.Run("OverwriteWhenPermitted", func(t *testing.T) {
		n := NewNamespace()
		require.NoError(t, n.Register("port", 8080))

		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, n.Generate(path, DefaultGenerateOptions()))

		require.NoError(t, n.Set("port", 9090))
		opts := DefaultGenerateOptions()
		opts.Overwrite = true
		require.NoError(t, n.Generate(path, opts))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "port = 9090")
	})

	t.Run("CreatesMissingDirectories", func(t *testing.T) {
		n := NewNamespace()
		require.NoError(t, n.Register("port", 8080))

		path := filepath.Join(t.TempDir(), "nested", "deeper", "config.toml")
		require.NoError(t, n.Generate(path, DefaultGenerateOptions()))

		_, err := os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("FailureLeavesNoFile", func(t *testing.T) {
		n := NewNamespace()
		require.NoError(t, n.Register("bad", opaque{}))

		path := filepath.Join(t.TempDir(), "config.toml")
		require.Error(t, n.Generate(path, DefaultGenerateOptions()))

		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})
}

package resolve_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosass/sass/internal/resolve"
	"github.com/gosass/sass/internal/scanner"
)

type stubImporter struct {
	contents map[string]string
}

func (s stubImporter) Canonicalize(url string, fromImport bool) (string, bool) {
	if _, ok := s.contents[url]; ok {
		return "stub:" + url, true
	}
	return "", false
}

func (s stubImporter) Load(canonicalURL string) (resolve.LoadResult, bool) {
	for url, text := range s.contents {
		if "stub:"+url == canonicalURL {
			return resolve.LoadResult{Contents: text, Syntax: scanner.SCSS}, true
		}
	}
	return resolve.LoadResult{}, false
}

func TestLoadStampsNodeWithUUID(t *testing.T) {
	imp := stubImporter{contents: map[string]string{"foo": "a { b: 1; }"}}
	r := resolve.New([]resolve.Importer{imp})

	node, err := r.Load("foo", false)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, node.ID)

	id, ok := r.NodeID(node.URL)
	require.True(t, ok)
	assert.Equal(t, node.ID, id)
}

func TestLoadMemoizesSameNodeAndID(t *testing.T) {
	imp := stubImporter{contents: map[string]string{"foo": "a { b: 1; }"}}
	r := resolve.New([]resolve.Importer{imp})

	first, err := r.Load("foo", false)
	require.NoError(t, err)
	second, err := r.Load("foo", false)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestLoadedURLsSortedAndDeduplicated(t *testing.T) {
	imp := stubImporter{contents: map[string]string{"b": "a{b:1}", "a": "a{b:1}"}}
	r := resolve.New([]resolve.Importer{imp})

	_, err := r.Load("b", false)
	require.NoError(t, err)
	_, err = r.Load("a", false)
	require.NoError(t, err)
	_, err = r.Load("a", false)
	require.NoError(t, err)

	assert.Equal(t, []string{"stub:a", "stub:b"}, r.LoadedURLs())
}

func TestLoadUnresolvableURLFails(t *testing.T) {
	r := resolve.New([]resolve.Importer{stubImporter{contents: map[string]string{}}})
	_, err := r.Load("missing", false)
	assert.Error(t, err)
}

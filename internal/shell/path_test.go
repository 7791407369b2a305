package shell

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath_ReadWrite(t *testing.T) {
	sh := New(WithDir(t.TempDir()))

	p := sh.Path("nested/dir/notes.txt")
	assert.False(t, p.Exists())
	require.NoError(t, p.WriteText("hello\n"))
	assert.True(t, p.Exists())
	assert.True(t, p.IsFile())
	assert.False(t, p.IsDir())
	assert.True(t, p.Parent().IsDir())
	assert.Equal(t, "notes.txt", p.Base())

	text, err := p.ReadText()
	require.NoError(t, err)
	assert.Equal(t, "hello\n", text)

	_, err = sh.Path("missing.txt").ReadText()
	assert.Error(t, err)
}

func TestPath_JoinAndAbsolute(t *testing.T) {
	dir := t.TempDir()
	sh := New(WithDir(dir))
	assert.Equal(t, filepath.Join(dir, "a", "b"), sh.Path("a").Join("b").String())
	assert.Equal(t, "/etc", sh.Path("/etc/../etc").String())
}

func TestPath_ReadJSONAndYAML(t *testing.T) {
	sh := New(WithDir(t.TempDir()))
	require.NoError(t, sh.Path("c.json").WriteText(`{"name":"clite","tags":["a","b"]}`))
	require.NoError(t, sh.Path("c.yaml").WriteText("name: clite\ntags: [a, b]\n"))

	type config struct {
		Name string   `json:"name" yaml:"name"`
		Tags []string `json:"tags" yaml:"tags"`
	}
	var fromJSON, fromYAML config
	require.NoError(t, sh.Path("c.json").ReadJSON(&fromJSON))
	require.NoError(t, sh.Path("c.yaml").ReadYAML(&fromYAML))
	assert.Equal(t, config{Name: "clite", Tags: []string{"a", "b"}}, fromJSON)
	assert.Equal(t, fromJSON, fromYAML)

	require.NoError(t, sh.Path("bad.json").WriteText("{"))
	assert.ErrorContains(t, sh.Path("bad.json").ReadJSON(&fromJSON), "parsing")
}

func TestPath_GitRootAndIgnored(t *testing.T) {
	root := t.TempDir()
	_, err := git.PlainInit(root, false)
	require.NoError(t, err)

	sh := New(WithDir(root))
	require.NoError(t, sh.Path(".gitignore").WriteText("*.log\n# comment\n\nbuild/\n"))
	require.NoError(t, sh.Path("pkg/.gitignore").WriteText("secret.txt\n"))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "build"), 0o755))
	require.NoError(t, sh.Path("pkg/code.go").WriteText("package pkg\n"))

	got, err := sh.Path("pkg/code.go").GitRoot()
	require.NoError(t, err)
	assert.Equal(t, root, got.String())

	tests := []struct {
		path string
		want bool
	}{
		{"pkg/code.go", false},
		{"pkg/debug.log", true},
		{"pkg/secret.txt", true},
		{"secret.txt", false},
		{"build", true},
	}
	for _, tc := range tests {
		ignored, err := sh.Path(tc.path).Ignored()
		require.NoError(t, err, tc.path)
		assert.Equal(t, tc.want, ignored, tc.path)
	}

	_, err = New(WithDir(t.TempDir())).Path(".").GitRoot()
	assert.Error(t, err)
}

package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) func() {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	return func() { _ = os.Chdir(old) }
}

func TestEnsureDir_RelativeResolvesAgainstCWD(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	got, err := EnsureDir(filepath.Join("public", "temp"))
	require.NoError(t, err)

	want := filepath.Join(tmp, "public", "temp")
	gotEval, _ := filepath.EvalSymlinks(got)
	wantEval, _ := filepath.EvalSymlinks(want)
	require.Equal(t, wantEval, gotEval)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")

	if runtime.GOOS != "windows" {
		require.Equal(t, os.FileMode(0o700), fi.Mode().Perm()&0o700)
	}
}

func TestEnsureDir_AbsoluteAndIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "staging")

	first, err := EnsureDir(dir)
	require.NoError(t, err)
	second, err := EnsureDir(dir)
	require.NoError(t, err)

	require.Equal(t, dir, first)
	require.Equal(t, first, second)
}

func TestEnsureDir_FailsIfFileWithSameNameExists(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "staging")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o660))

	_, err := EnsureDir(path)
	require.Error(t, err, "should fail when a file exists with the same name")
}

const (
	pngMagic  = "\x89PNG\r\n\x1a\n"
	jpegMagic = "\xff\xd8\xff\xe0"
	gifMagic  = "GIF89a"
	webpMagic = "RIFF\x00\x00\x00\x00WEBPVP8 "
)

func TestStage_WritesContentUnderRandomName(t *testing.T) {
	dir := t.TempDir()
	body := pngMagic + strings.Repeat("p", 2048)

	p1, err := Stage(dir, strings.NewReader(body))
	require.NoError(t, err)
	p2, err := Stage(dir, strings.NewReader(pngMagic+"other"))
	require.NoError(t, err)

	require.NotEqual(t, p1, p2)
	require.Equal(t, dir, filepath.Dir(p1), "must stay inside the staging dir")
	require.Equal(t, ".png", filepath.Ext(p1))

	b, err := os.ReadFile(p1)
	require.NoError(t, err)
	require.Equal(t, body, string(b), "sniffed prefix must be written back")
}

func TestStage_ExtensionFollowsContent(t *testing.T) {
	tests := []struct {
		content string
		ext     string
	}{
		{pngMagic, ".png"},
		{jpegMagic, ".jpg"},
		{gifMagic, ".gif"},
		{webpMagic, ".webp"},
	}
	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			p, err := Stage(t.TempDir(), strings.NewReader(tt.content+"rest"))
			require.NoError(t, err)
			require.Equal(t, tt.ext, filepath.Ext(p))
		})
	}
}

func TestStage_RejectsNonImages(t *testing.T) {
	for name, content := range map[string]string{
		"html":  "<html><script>alert(1)</script></html>",
		"svg":   `<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"></svg>`,
		"text":  "plain text",
		"empty": "",
	} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			_, err := Stage(dir, strings.NewReader(content))
			require.ErrorIs(t, err, ErrUnsupportedType)

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			require.Empty(t, entries, "nothing is staged")
		})
	}
}

func TestRemove_IgnoresMissingAndEmpty(t *testing.T) {
	dir := t.TempDir()
	p, err := Stage(dir, strings.NewReader(jpegMagic+"jpg"))
	require.NoError(t, err)

	require.NoError(t, Remove(p, "", filepath.Join(dir, "missing.jpg")))

	_, err = os.Stat(p)
	require.True(t, os.IsNotExist(err))
}

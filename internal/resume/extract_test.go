package resume

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowedExtension(t *testing.T) {
	tests := []struct {
		filename string
		allowed  bool
	}{
		{"resume.pdf", true},
		{"Resume.PDF", true},
		{"resume.docx", true},
		{"resume.doc", true},
		{"resume.txt", true},
		{"resume.exe", false},
		{"resume.png", false},
		{"resume", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.allowed, AllowedExtension(tt.filename))
		})
	}
}

func TestStoreSaveAndRemove(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	path, err := store.Save("resume.txt", strings.NewReader("Ada Lovelace, engineer"))
	require.NoError(t, err)
	assert.Equal(t, ".txt", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace, engineer", string(data))

	require.NoError(t, store.Remove(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// removing twice is not an error
	assert.NoError(t, store.Remove(path))
}

func TestExtractTextPlain(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.txt")
	require.NoError(t, os.WriteFile(path, []byte("  Ada Lovelace\nGo, PostgreSQL\n"), 0o644))

	text, err := ExtractText(path)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace\nGo, PostgreSQL", text)
}

func TestExtractTextEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.txt")
	require.NoError(t, os.WriteFile(path, []byte("   \n\t  "), 0o644))

	_, err := ExtractText(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no extractable text")
}

func TestExtractTextUnsupported(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.exe")
	require.NoError(t, os.WriteFile(path, []byte("binary"), 0o644))

	_, err := ExtractText(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported resume format")
}

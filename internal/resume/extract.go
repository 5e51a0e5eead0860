// Package resume handles stored resume files and text extraction.
package resume

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
	"github.com/google/uuid"
)

// MaxUploadSize caps resume uploads at 10MB.
const MaxUploadSize = 10 << 20

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".doc":  true,
	".txt":  true,
}

// AllowedExtension reports whether the filename carries a supported resume
// extension.
func AllowedExtension(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Store persists uploaded resume files on local disk.
type Store struct {
	dir string
}

// NewStore creates the uploads directory if needed and returns a store.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes the upload to disk under a unique name and returns the path.
// The original extension is kept so extraction can dispatch on it.
func (s *Store) Save(filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	path := filepath.Join(s.dir, uuid.New().String()+ext)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to store resume: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to store resume: %w", err)
	}
	return path, nil
}

// Remove deletes a stored resume file. Missing files are not an error.
func (s *Store) Remove(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove resume: %w", err)
	}
	return nil
}

// ExtractText pulls plain text out of a stored resume file, dispatching on
// the file extension.
func ExtractText(path string) (string, error) {
	var text string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".docx", ".doc":
		res, err := docconv.ConvertPath(path)
		if err != nil {
			return "", fmt.Errorf("failed to extract resume text: %w", err)
		}
		text = res.Body
	case ".txt":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read resume: %w", err)
		}
		text = string(data)
	default:
		return "", fmt.Errorf("unsupported resume format: %s", filepath.Ext(path))
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("resume contains no extractable text")
	}
	return text, nil
}

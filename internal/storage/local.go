// Package storage stores uploaded task documents and hands back publicly
// resolvable URLs for them.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStore writes documents under a root directory that the HTTP layer
// serves statically at /uploads. Keys are namespaced by project and task so
// files from different tasks can never collide, and the stored name is a
// fresh UUID so two uploads of "report.pdf" remain distinct objects.
type LocalStore struct {
	Root    string // directory files are written into
	BaseURL string // public base URL, e.g. https://workflow.example.com
}

func NewLocalStore(root, baseURL string) *LocalStore {
	return &LocalStore{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}
}

// Save streams one uploaded file into the store and returns its public URL.
// The original file name only contributes its extension; the stored key is
// <projectID>/<taskID>/<uuid><ext>.
func (s *LocalStore) Save(projectID, taskID uint64, fileName string, r io.Reader) (string, error) {
	ext := filepath.Ext(fileName)
	key := fmt.Sprintf("%d/%d/%s%s", projectID, taskID, uuid.NewString(), ext)

	path := filepath.Join(s.Root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		// Remove the partial file so a failed upload leaves nothing behind.
		_ = os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	return s.BaseURL + "/uploads/" + key, nil
}

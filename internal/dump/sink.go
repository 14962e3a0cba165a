package dump

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	apperrors "github.com/kurosawa0120/wecom-dump/internal/errors"
)

const emptyTagsHeader = "These tags has no member:\n"

// EmptyTag records a tag that returned zero members with a success status
type EmptyTag struct {
	ID   uint32
	Name string
}

// Sink persists fetched payloads as pretty-printed JSON under a single
// output root
type Sink struct {
	root string
}

// Prepare sets up the output directory. An existing path is a
// configuration error unless overwrite is set, in which case it is removed
// first.
func Prepare(path string, overwrite bool) (*Sink, error) {
	if _, err := os.Stat(path); err == nil {
		if !overwrite {
			return nil, apperrors.NewConfigError(fmt.Sprintf("output path %q already exists, pass --overwrite to replace it", path))
		}
		if err := os.RemoveAll(path); err != nil {
			return nil, apperrors.NewFilesystemError(fmt.Sprintf("failed to remove existing output path %q", path), err)
		}
	} else if !os.IsNotExist(err) {
		return nil, apperrors.NewFilesystemError(fmt.Sprintf("failed to stat output path %q", path), err)
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, apperrors.NewFilesystemError(fmt.Sprintf("failed to create output directory %q", path), err)
	}
	return &Sink{root: path}, nil
}

// Root returns the output root directory
func (s *Sink) Root() string {
	return s.root
}

// EnsureDir creates a per-job subdirectory under the output root
func (s *Sink) EnsureDir(dir string) error {
	path := filepath.Join(s.root, dir)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return apperrors.NewFilesystemError(fmt.Sprintf("failed to create directory %q", path), err)
	}
	return nil
}

// WriteJSON writes v as pretty-printed JSON to a fixed file name in the
// output root and returns the path written
func (s *Sink) WriteJSON(name string, v any) (string, error) {
	return s.writeJSON(filepath.Join(s.root, name), v)
}

// WriteItem writes v under dir with a name assembled from prefix, id and
// name, sanitized as a whole. Returns the path written.
func (s *Sink) WriteItem(dir, prefix string, id uint32, name string, v any) (string, error) {
	file := SanitizeFileName(fmt.Sprintf("%s-%d-%s.json", prefix, id, name))
	return s.writeJSON(filepath.Join(s.root, dir, file), v)
}

// WriteEmptyTags writes the accumulated empty-tag records to tags/_empty.txt
func (s *Sink) WriteEmptyTags(entries []EmptyTag) (string, error) {
	path := filepath.Join(s.root, "tags", "_empty.txt")
	f, err := os.Create(path)
	if err != nil {
		return "", apperrors.NewFilesystemError(fmt.Sprintf("failed to create %q", path), err)
	}
	defer f.Close()

	if _, err := f.WriteString(emptyTagsHeader); err != nil {
		return "", apperrors.NewFilesystemError(fmt.Sprintf("failed to write %q", path), err)
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(f, "%d - %s\n", e.ID, e.Name); err != nil {
			return "", apperrors.NewFilesystemError(fmt.Sprintf("failed to write %q", path), err)
		}
	}
	return path, nil
}

func (s *Sink) writeJSON(path string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", apperrors.NewFilesystemError(fmt.Sprintf("failed to serialize payload for %q", path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", apperrors.NewFilesystemError(fmt.Sprintf("failed to write %q", path), err)
	}
	return path, nil
}

package plsfile

import (
	"os"
	"path/filepath"
)

// WriteFile serializes doc to path atomically: the document is staged in a
// temporary file in the target directory, synced, then renamed into place.
// A failed write never leaves a partial or corrupted file at path.
func WriteFile(path string, doc Document) (retErr error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".pls-*")
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	if err := Encode(tmp, doc); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ReadFile decodes a positionlist document from path.
func ReadFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}

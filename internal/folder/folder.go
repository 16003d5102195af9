// Package folder enumerates the scanned card images inside a single
// directory and tracks which one the operator is looking at. The cursor
// clamps at both ends, it never wraps.
package folder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNotFound marks a folder path that does not exist or is not a
	// directory.
	ErrNotFound = errors.New("folder not found")

	// ErrEmptyFolder marks a directory with no supported image files.
	ErrEmptyFolder = errors.New("no supported images in folder")

	// ErrNoMoreImages is returned when a move is requested at a
	// boundary the cursor already sits on.
	ErrNoMoreImages = errors.New("no more images")
)

// supportedExtensions lists the image formats the viewer can decode.
var supportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".gif":  true,
}

// IsSupported reports whether the filename carries a displayable image
// extension. The check is case-insensitive.
func IsSupported(name string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(name))]
}

// Folder is a snapshot of the supported images in one directory plus a
// cursor. It is not safe for concurrent use; the interactive loop owns
// it.
type Folder struct {
	dir   string
	names []string
	index int
}

// Open lists the supported images in dir sorted by filename and places
// the cursor on the first one.
func Open(dir string) (*Folder, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", dir, ErrNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory: %w", dir, ErrNotFound)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	// os.ReadDir returns entries sorted by filename, which is the
	// order records are persisted in.
	var names []string
	for _, e := range entries {
		if e.IsDir() || !IsSupported(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrEmptyFolder)
	}

	return &Folder{dir: dir, names: names}, nil
}

// Dir returns the directory this folder was opened from.
func (f *Folder) Dir() string { return f.dir }

// Len returns the number of images.
func (f *Folder) Len() int { return len(f.names) }

// Index returns the zero-based cursor position.
func (f *Folder) Index() int { return f.index }

// Current returns the filename under the cursor.
func (f *Folder) Current() string { return f.names[f.index] }

// Names returns the filenames in display order.
func (f *Folder) Names() []string {
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// Path returns the absolute-ish path of a filename inside the folder.
func (f *Folder) Path(name string) string {
	return filepath.Join(f.dir, name)
}

// Next advances the cursor and returns the new current filename.
// At the last image it stays put and returns ErrNoMoreImages.
func (f *Folder) Next() (string, error) {
	return f.JumpTo(f.index + 1)
}

// Previous moves the cursor back and returns the new current filename.
// At the first image it stays put and returns ErrNoMoreImages.
func (f *Folder) Previous() (string, error) {
	return f.JumpTo(f.index - 1)
}

// JumpTo moves the cursor to i, clamped to the valid range. Asking to
// move past a boundary the cursor is already on returns ErrNoMoreImages
// without moving.
func (f *Folder) JumpTo(i int) (string, error) {
	target := i
	if target < 0 {
		target = 0
	}
	if target > len(f.names)-1 {
		target = len(f.names) - 1
	}
	if target == f.index && target != i {
		return "", ErrNoMoreImages
	}
	f.index = target
	return f.names[f.index], nil
}

// Rename renames an image on disk and in the listing. The listing keeps
// its position so the operator does not lose their place; the sorted
// order is re-established the next time the folder is opened.
func (f *Folder) Rename(oldName, newName string) error {
	if oldName == newName {
		return nil
	}
	pos := -1
	for i, n := range f.names {
		if n == oldName {
			pos = i
			break
		}
	}
	if pos < 0 {
		return fmt.Errorf("rename %s: %w", oldName, ErrNotFound)
	}
	for _, n := range f.names {
		if n == newName {
			return fmt.Errorf("rename %s: %s already exists", oldName, newName)
		}
	}
	if _, err := os.Lstat(f.Path(newName)); err == nil {
		return fmt.Errorf("rename %s: %s already exists on disk", oldName, newName)
	}
	if err := os.Rename(f.Path(oldName), f.Path(newName)); err != nil {
		return fmt.Errorf("rename %s to %s: %w", oldName, newName, err)
	}
	f.names[pos] = newName
	return nil
}

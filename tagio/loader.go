package tagio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/PumbleCorp/invader/hek"
)

// ErrTagNotFound is returned when no tag root has the requested path.
var ErrTagNotFound = errors.New("tagio: tag not found in any root")

// RawTag is a loaded-but-not-yet-precompiled tag: its class, the root it
// was shadowed from, and a bounds-checked reader over its file bytes.
type RawTag struct {
	Path   string
	Class  hek.TagClass
	Root   string
	Reader *Reader
}

// Loader resolves tag paths against an ordered list of tag roots (earlier
// roots shadow later ones, matching how the engine's own tag tree lookup
// behaves) and hands out a stable slot index per distinct (path, class)
// before the tag's bytes are even read, so a cyclic reference graph
// resolves to the allocated slot instead of reloading or recursing
// forever.
type Loader struct {
	roots []string

	slots    []*RawTag
	indexOf  map[string]int
}

// NewLoader returns a Loader probing roots in order.
func NewLoader(roots []string) *Loader {
	return &Loader{
		roots:   roots,
		indexOf: make(map[string]int),
	}
}

func slotKey(path string, class hek.TagClass) string {
	return fmt.Sprintf("%s.%s", path, class.String())
}

// Reserve returns the slot index for (path, class), allocating one (and
// reading the tag's bytes from the first root that has it) on first
// request. Subsequent calls with the same path/class return the same
// index without touching the filesystem again.
func (l *Loader) Reserve(path string, class hek.TagClass) (int, error) {
	key := slotKey(path, class)
	if idx, ok := l.indexOf[key]; ok {
		return idx, nil
	}

	// Allocate the slot before resolving the file so a cycle that
	// references this same (path, class) mid-load sees a valid, if not
	// yet populated, index rather than recursing.
	idx := len(l.slots)
	l.slots = append(l.slots, nil)
	l.indexOf[key] = idx

	root, data, err := l.findInRoots(path, class)
	if err != nil {
		return idx, err
	}

	l.slots[idx] = &RawTag{
		Path:   path,
		Class:  class,
		Root:   root,
		Reader: NewReader(data),
	}
	return idx, nil
}

// findInRoots returns the first root (in root order) containing path with
// the on-disk extension for class.
func (l *Loader) findInRoots(path string, class hek.TagClass) (root string, data []byte, err error) {
	ext := extensionFor(class)
	rel := path + "." + ext
	for _, r := range l.roots {
		full := filepath.Join(r, filepath.FromSlash(rel))
		b, err := os.ReadFile(full)
		if err == nil {
			return r, b, nil
		}
		if !os.IsNotExist(err) {
			return "", nil, err
		}
	}
	return "", nil, fmt.Errorf("%w: %s.%s", ErrTagNotFound, path, ext)
}

// Get returns the tag at slot idx. It is nil if Reserve failed for that
// slot and the caller chose to continue (e.g. a broken, non-fatal
// reference in a report-only pass).
func (l *Loader) Get(idx int) *RawTag {
	if idx < 0 || idx >= len(l.slots) {
		return nil
	}
	return l.slots[idx]
}

// Len returns the number of reserved slots.
func (l *Loader) Len() int {
	return len(l.slots)
}

// Tags returns every reserved slot in allocation order.
func (l *Loader) Tags() []*RawTag {
	return l.slots
}

func extensionFor(class hek.TagClass) string {
	if ext, ok := hek.ExtensionForClass(class); ok {
		return ext
	}
	return class.String()
}

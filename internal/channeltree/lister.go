package channeltree

import (
	"fmt"
	"io"
)

// Lister prints channel listings, one entry per line. It never mutates the
// directory or any cursor.
type Lister struct {
	dir *Directory
	w   io.Writer
}

// NewLister returns a Lister that writes to w.
func NewLister(dir *Directory, w io.Writer) *Lister {
	return &Lister{dir: dir, w: w}
}

// List prints the immediate children of id as "<prefix>/<name>". The prefix
// is the absolute path of id with full and empty otherwise, so a plain
// listing prints "/name" wherever id is, the same shape ListRecursive uses
// at the root.
func (l *Lister) List(id NodeID, full bool) error {
	prefix := ""
	if full {
		prefix = l.dir.FullPath(id)
	}

	for _, c := range l.dir.Children(id) {
		if _, err := fmt.Fprintf(l.w, "%s/%s\n", prefix, l.dir.nodes[c].name); err != nil {
			return fmt.Errorf("writing listing: %w", err)
		}
	}

	return nil
}

// ListRecursive prints every descendant of id in depth-first pre-order,
// keeping the stored child order. Paths are absolute with full; otherwise
// they are relative to id ("./x/y"), or rooted ("/x/y") when id is the root.
func (l *Lister) ListRecursive(id NodeID, full bool) error {
	var prefix string

	switch {
	case full:
		prefix = l.dir.FullPath(id)
	case l.dir.IsRoot(id):
		prefix = ""
	default:
		prefix = "."
	}

	return l.listFrom(id, prefix)
}

func (l *Lister) listFrom(id NodeID, prefix string) error {
	for _, c := range l.dir.Children(id) {
		path := prefix + "/" + l.dir.nodes[c].name

		if _, err := fmt.Fprintln(l.w, path); err != nil {
			return fmt.Errorf("writing listing: %w", err)
		}

		if err := l.listFrom(c, path); err != nil {
			return err
		}
	}

	return nil
}

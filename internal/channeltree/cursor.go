package channeltree

import "strings"

// Path segments with special meaning.
const (
	SegmentRoot    = "/"
	SegmentParent  = ".."
	SegmentCurrent = "."
)

// Cursor is a "current channel" pointer into a Directory. Navigation is
// all-or-nothing: a failed multi-segment walk leaves the cursor where it was.
// A Cursor is not safe for concurrent use.
type Cursor struct {
	dir     *Directory
	current NodeID
}

// NewCursor returns a cursor positioned at the root of dir.
func NewCursor(dir *Directory) *Cursor {
	return &Cursor{dir: dir, current: dir.Root()}
}

// Directory returns the hierarchy the cursor walks.
func (c *Cursor) Directory() *Directory {
	return c.dir
}

// Current returns the node the cursor points at.
func (c *Cursor) Current() NodeID {
	return c.current
}

// Go splits path and walks it. See GoPath.
func (c *Cursor) Go(path string) error {
	return c.GoPath(SplitPath(path))
}

// GoPath applies segments left to right and stops at the first failure.
// "/" moves to the root, ".." to the parent (ErrNoParent at the root), "." is
// a no-op, and anything else moves to the child with exactly that name
// (*NotFoundError otherwise). On error the cursor is unchanged.
func (c *Cursor) GoPath(segments []string) error {
	target, err := c.walk(c.current, segments)
	if err != nil {
		return err
	}

	c.current = target

	return nil
}

// NameToID resolves path relative to the cursor and returns the channel ID
// it names. The cursor never moves, even on success.
func (c *Cursor) NameToID(path string) (string, error) {
	target, err := c.walk(c.current, SplitPath(path))
	if err != nil {
		return "", err
	}

	return c.dir.nodes[target].id, nil
}

// walk computes the node reached from start without touching cursor state.
func (c *Cursor) walk(start NodeID, segments []string) (NodeID, error) {
	cur := start

	for _, seg := range segments {
		switch seg {
		case SegmentRoot:
			cur = c.dir.Root()
		case SegmentCurrent:
		case SegmentParent:
			parent, ok := c.dir.Parent(cur)
			if !ok {
				return NoNode, ErrNoParent
			}

			cur = parent
		default:
			child, ok := c.dir.child(cur, seg)
			if !ok {
				return NoNode, &NotFoundError{Name: seg}
			}

			cur = child
		}
	}

	return cur, nil
}

// SplitPath breaks a slash-separated channel path into segments. A leading
// slash becomes the root segment "/"; empty components are dropped.
//
//	"/A/B"  -> ["/", "A", "B"]
//	"../C/" -> ["..", "C"]
//	""      -> []
func SplitPath(path string) []string {
	var segments []string

	if strings.HasPrefix(path, "/") {
		segments = append(segments, SegmentRoot)
	}

	for _, part := range strings.Split(path, "/") {
		if part == "" {
			continue
		}

		segments = append(segments, part)
	}

	return segments
}

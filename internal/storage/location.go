package storage

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Blob identifies one object inside a container.
type Blob struct {
	// Container is the container (bucket) name.
	Container string
	// Name is the unescaped blob path inside the container, e.g. "d/games/abc.png".
	Name string
	// URL is the full escaped blob address.
	URL string
}

// ContainerLocation is a container address plus a path inside it. It is a
// value type: With returns a new location and never touches the receiver.
type ContainerLocation struct {
	BaseAddress string
	Container   string
	Segments    []string
}

var errNoFileName = errors.New("address has no file name")

// ErrInvalidPath is returned for paths with "." or ".." segments, which
// would resolve outside the location they are appended to.
var ErrInvalidPath = errors.New("path contains dot segments")

// CheckPath rejects p when any of its segments is "." or "..". Backslashes
// count as separators since some stores normalize them to slashes.
func CheckPath(p string) error {
	for _, s := range strings.FieldsFunc(p, func(r rune) bool { return r == '/' || r == '\\' }) {
		if s == "." || s == ".." {
			return fmt.Errorf("%w: %q", ErrInvalidPath, p)
		}
	}
	return nil
}

// NewContainerLocation builds the root location of container under serviceURL.
func NewContainerLocation(serviceURL, container string) ContainerLocation {
	return ContainerLocation{
		BaseAddress: strings.TrimRight(serviceURL, "/") + "/" + container,
		Container:   container,
	}
}

// With returns a copy of l extended by segments. Each argument may itself
// contain slashes; empty parts are dropped.
func (l ContainerLocation) With(segments ...string) ContainerLocation {
	next := make([]string, len(l.Segments), len(l.Segments)+len(segments))
	copy(next, l.Segments)
	for _, s := range segments {
		next = append(next, splitPath(s)...)
	}
	return ContainerLocation{BaseAddress: l.BaseAddress, Container: l.Container, Segments: next}
}

// Address returns the escaped URL of the location.
func (l ContainerLocation) Address() string {
	if len(l.Segments) == 0 {
		return l.BaseAddress
	}
	escaped := make([]string, len(l.Segments))
	for i, s := range l.Segments {
		escaped[i] = url.PathEscape(s)
	}
	return l.BaseAddress + "/" + strings.Join(escaped, "/")
}

// Blob returns the blob called name at this location.
func (l ContainerLocation) Blob(name string) Blob {
	parts := make([]string, 0, len(l.Segments)+1)
	parts = append(parts, l.Segments...)
	parts = append(parts, name)
	return Blob{
		Container: l.Container,
		Name:      strings.Join(parts, "/"),
		URL:       l.Address() + "/" + url.PathEscape(name),
	}
}

// Locate reverses Blob: it strips the container address from address and
// recovers the path and file name used at upload time.
func (l ContainerLocation) Locate(address string) (Blob, error) {
	rest, ok := strings.CutPrefix(address, l.BaseAddress)
	if !ok || (rest != "" && rest[0] != '/') {
		return Blob{}, &NotFoundError{Address: address, Err: fmt.Errorf("not under container %s", l.BaseAddress)}
	}
	parts := splitPath(rest)
	if len(parts) == 0 {
		return Blob{}, &NotFoundError{Address: address, Err: errNoFileName}
	}
	for i, p := range parts {
		unescaped, err := url.PathUnescape(p)
		if err != nil {
			return Blob{}, &NotFoundError{Address: address, Err: fmt.Errorf("unescape segment %q: %w", p, err)}
		}
		if err := CheckPath(unescaped); err != nil {
			return Blob{}, &NotFoundError{Address: address, Err: err}
		}
		parts[i] = unescaped
	}
	name := parts[len(parts)-1]
	return l.With(parts[:len(parts)-1]...).Blob(name), nil
}

func splitPath(p string) []string {
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

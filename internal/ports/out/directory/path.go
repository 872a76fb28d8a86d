package directory

import (
	"net/url"
	"strings"
)

// Path addresses a single document: alternating collection and document ids joined by "/",
// e.g. "municipalCouncils/colombo/districts/Colombo".
type Path string

// CollectionRef addresses a collection: an odd number of segments.
type CollectionRef string

// Collection returns a top-level collection reference.
func Collection(id string) CollectionRef { return CollectionRef(id) }

// Doc returns the path of document id inside the collection.
func (c CollectionRef) Doc(id string) Path { return Path(string(c) + "/" + id) }

// ID returns the last segment of the collection reference.
func (c CollectionRef) ID() string { return lastSegment(string(c)) }

// Parent returns the document owning the collection; empty for top-level collections.
func (c CollectionRef) Parent() Path {
	i := strings.LastIndexByte(string(c), '/')
	if i < 0 {
		return ""
	}
	return Path(string(c)[:i])
}

// Collection returns a sub-collection of the document.
func (p Path) Collection(id string) CollectionRef { return CollectionRef(string(p) + "/" + id) }

// ID returns the document id (last segment).
func (p Path) ID() string { return lastSegment(string(p)) }

// Parent returns the collection holding the document.
func (p Path) Parent() CollectionRef {
	i := strings.LastIndexByte(string(p), '/')
	if i < 0 {
		return ""
	}
	return CollectionRef(string(p)[:i])
}

// Valid reports whether p has an even, non-zero number of non-empty segments.
func (p Path) Valid() bool {
	segs := strings.Split(string(p), "/")
	if len(segs) == 0 || len(segs)%2 != 0 {
		return false
	}
	for _, s := range segs {
		if s == "" {
			return false
		}
	}
	return true
}

// KeyID turns an arbitrary value (an email, a plate) into a single path segment.
func KeyID(value string) string {
	return url.PathEscape(value)
}

func lastSegment(s string) string {
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		return s[i+1:]
	}
	return s
}

package wire

import "strings"

// ClassReaderFunc decodes one object instance, given its already-resolved
// class name, by popping that class's fields off d's Reader in declaration
// order. It returns the decoded value to be cached and returned from
// ReadObject.
type ClassReaderFunc func(d *Decoder, className string) (any, error)

// Registry maps GWT class-marker strings to ClassReaderFuncs using
// longest-prefix match, since a marker carries a trailing content hash that
// a registered name does not (§4.C step 6).
type Registry struct {
	entries []registryEntry
}

type registryEntry struct {
	prefix string
	read   ClassReaderFunc
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register associates classNamePrefix (a full Java package path, e.g.
// "dk.dcgi.studiewebextern.client.skema.SkemaBegivenhed") with read. Later
// registrations of the same prefix replace earlier ones.
func (r *Registry) Register(classNamePrefix string, read ClassReaderFunc) {
	for i, e := range r.entries {
		if e.prefix == classNamePrefix {
			r.entries[i].read = read
			return
		}
	}
	r.entries = append(r.entries, registryEntry{prefix: classNamePrefix, read: read})
}

// lookup finds the longest registered prefix of marker, returning its
// reader and the prefix (not the full marker) the reader should be invoked
// with, or ok=false if nothing matches.
func (r *Registry) lookup(marker string) (ClassReaderFunc, string, bool) {
	var best registryEntry
	bestLen := -1
	for _, e := range r.entries {
		if strings.HasPrefix(marker, e.prefix) && len(e.prefix) > bestLen {
			best = e
			bestLen = len(e.prefix)
		}
	}
	if bestLen < 0 {
		return nil, "", false
	}
	return best.read, best.prefix, true
}

// Opaque is the placeholder value produced for a marker whose class has no
// registered reader (§4.C step 7). The scanner and domain layer ignore it;
// it exists so a cache back-reference to an unregistered object still
// resolves to something rather than nil.
type Opaque struct {
	ClassName string
	Unknown   bool
}

// Decoder wraps a Reader with the object cache and class Registry needed to
// resolve GWT object markers and back-references (§4.C).
type Decoder struct {
	*Reader
	objects  []any
	registry *Registry
}

// NewDecoder builds a Decoder over env using registry to resolve class
// markers.
func NewDecoder(env *Envelope, registry *Registry) *Decoder {
	return &Decoder{Reader: NewReader(env), registry: registry}
}

// isClassMarker reports whether s has the "<package.Class>/<hash>" shape a
// GWT class marker string takes: at least one '/' with digits (a content
// hash) after the last one, and at least one '.' before it (a package
// path). Strings that are plain field values (dates, free text) never take
// this shape.
func isClassMarker(s string) bool {
	slash := strings.LastIndexByte(s, '/')
	if slash < 0 || slash == len(s)-1 {
		return false
	}
	hash := s[slash+1:]
	for _, c := range hash {
		if c < '0' || c > '9' {
			return false
		}
	}
	return strings.IndexByte(s[:slash], '.') >= 0
}

// IsClassMarker is the exported form of isClassMarker, used by callers
// outside this package that want to inspect an Envelope's string table
// without running a full decode (e.g. the transport layer's schema-drift
// detector).
func IsClassMarker(s string) bool { return isClassMarker(s) }

// ClassMarkers returns every string-table entry in env that is shaped like
// a class marker, in table order.
func ClassMarkers(env *Envelope) []string {
	var out []string
	for _, s := range env.Strings {
		if isClassMarker(s) {
			out = append(out, s)
		}
	}
	return out
}

// ReadObject implements the GWT object dispatch contract (§4.C):
//
//  1. pop b
//  2. if b is not an integer, there is no object here: return nil
//  3. if b < 0, it is a back-reference into the object cache at -(b+1)
//  4. if b == 0 or b exceeds the string table, return nil
//  5. resolve s = strings[b-1]; if s is not class-marker shaped, this was a
//     raw value, not an object header — return the popped int as-is
//  6. longest-prefix match s against the registry
//  7. no match: cache and return an Opaque placeholder
//  8. match: reserve a nil slot in the cache BEFORE invoking the reader (so
//     a field that refers back to the object under construction resolves),
//     run the reader, store the result into the reserved slot, return it
func (d *Decoder) ReadObject() (any, error) {
	v, ok := d.Pop()
	if !ok {
		return nil, &DecodeError{Kind: DecodeErrorUnderflow}
	}

	b, isInt := toInt(v)
	if !isInt {
		return nil, nil
	}

	if b < 0 {
		idx := -(b + 1)
		if idx < 0 || idx >= len(d.objects) {
			// An unresolved back-reference; treat it like any other
			// undefined field rather than failing the whole object.
			return nil, nil
		}
		return d.objects[idx], nil
	}

	if b == 0 || b > len(d.strings) {
		return nil, nil
	}

	s := d.strings[b-1]
	if !isClassMarker(s) {
		return b, nil
	}

	read, prefix, found := d.registry.lookup(s)
	if !found {
		placeholder := Opaque{ClassName: s, Unknown: true}
		d.objects = append(d.objects, placeholder)
		return placeholder, nil
	}

	slot := len(d.objects)
	d.objects = append(d.objects, nil)

	result, err := read(d, prefix)
	if err != nil {
		return nil, err
	}

	d.objects[slot] = result
	return result, nil
}

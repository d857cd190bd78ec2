package wire

import "strings"

// defaultRegistry backs the scanner functions: a nested field inside a
// scanned object (e.g. a SkemaBegivenhed's room/teacher/activity lists)
// still goes through the ordinary object dispatcher, so it needs every
// class reader registered even though the scan itself jumps straight to
// the outer object's reader.
var defaultRegistry = buildDefaultRegistry()

func buildDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaultClasses(r)
	return r
}

// findMarker returns the 1-based string-table index of the first string
// with the given class-marker prefix, or ok=false if none is registered in
// the envelope (§4.E step 1).
func findMarker(strs []string, prefix string) (int, bool) {
	for i, s := range strs {
		if strings.HasPrefix(s, prefix) {
			return i + 1, true
		}
	}
	return 0, false
}

// findPositions returns every stack index whose raw value equals marker
// (§4.E step 2).
func findPositions(data []any, marker int) []int {
	var positions []int
	for i, v := range data {
		if n, ok := toInt(v); ok && n == marker {
			positions = append(positions, i)
		}
	}
	return positions
}

// scanAt repositions d directly at i (NOT i+1 — i already holds the
// marker value itself, and the per-class reader is invoked directly rather
// than through ReadObject, so no further marker pop happens), resets the
// object cache so back-references from one scanned instance never leak
// into the next, and runs read.
func scanAt(d *Decoder, i int, className string, read ClassReaderFunc) (any, error) {
	d.SetPos(i)
	d.objects = nil
	return read(d, className)
}

// ScanLessons locates every SkemaBegivenhed marker in env's string table
// and deserializes each occurrence directly, bypassing PersSkemaData's
// wrapper structure entirely (§4.E). A decoded instance is kept only if it
// carries a subject, room, or teacher — markers that decode to nothing
// meaningful are silently dropped, matching the reference's own filter.
func ScanLessons(env *Envelope) ([]*decodedLesson, error) {
	const prefix = "dk.uddata.model.skema.SkemaBegivenhed/"
	marker, found := findMarker(env.Strings, prefix)
	if !found {
		return nil, nil
	}

	d := NewDecoder(env, defaultRegistry)
	var lessons []*decodedLesson
	for _, pos := range findPositions(env.Data, marker) {
		v, err := scanAt(d, pos, prefix, readSkemaBegivenhed)
		if err != nil {
			continue
		}
		lesson, ok := v.(*decodedLesson)
		if !ok {
			continue
		}
		if lesson.Subject == "" && len(lesson.Rooms) == 0 && len(lesson.Teachers) == 0 {
			continue
		}
		lessons = append(lessons, lesson)
	}
	return lessons, nil
}

// ScanNotes locates every SkemaNote2 marker and deserializes each
// occurrence directly (§4.E). An instance with neither plain text nor
// HTML is dropped.
func ScanNotes(env *Envelope) ([]*decodedNote, error) {
	const prefix = "dk.uddata.model.skemanoter.SkemaNote2/"
	marker, found := findMarker(env.Strings, prefix)
	if !found {
		return nil, nil
	}

	d := NewDecoder(env, defaultRegistry)
	var notes []*decodedNote
	for _, pos := range findPositions(env.Data, marker) {
		v, err := scanAt(d, pos, prefix, readSkemaNote)
		if err != nil {
			continue
		}
		note, ok := v.(*decodedNote)
		if !ok {
			continue
		}
		if note.PlainText == "" && note.HTML == "" {
			continue
		}
		notes = append(notes, note)
	}
	return notes, nil
}

// ScanAssignments locates every OpgaveElev marker and deserializes each
// occurrence directly (§4.E), then deduplicates by (subject, title) since
// the same assignment detail is frequently embedded at more than one stack
// offset in a single response.
func ScanAssignments(env *Envelope) ([]*decodedOpgaveElev, error) {
	const prefix = "dk.uddata.model.opgave.OpgaveElev/"
	marker, found := findMarker(env.Strings, prefix)
	if !found {
		return nil, nil
	}

	d := NewDecoder(env, defaultRegistry)
	type key struct{ subject, title string }
	seen := make(map[key]bool)
	var out []*decodedOpgaveElev
	for _, pos := range findPositions(env.Data, marker) {
		v, err := scanAt(d, pos, prefix, readOpgaveElev)
		if err != nil {
			continue
		}
		oe, ok := v.(*decodedOpgaveElev)
		if !ok {
			continue
		}
		if oe.Subject == "" && oe.Title == "" {
			continue
		}
		k := key{oe.Subject, oe.Title}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, oe)
	}
	return out, nil
}

// ScanRessources locates every Ressource marker (a file attached to a
// lesson or assignment container) and deserializes each occurrence
// directly (§4.E).
func ScanRessources(env *Envelope) ([]*decodedRessource, error) {
	const prefix = "dk.uddata.model.ressourcer.Ressource/"
	marker, found := findMarker(env.Strings, prefix)
	if !found {
		return nil, nil
	}

	d := NewDecoder(env, defaultRegistry)
	var out []*decodedRessource
	for _, pos := range findPositions(env.Data, marker) {
		v, err := scanAt(d, pos, prefix, readRessource)
		if err != nil {
			continue
		}
		r, ok := v.(*decodedRessource)
		if !ok || r.FileName == "" || r.FileID <= 0 {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

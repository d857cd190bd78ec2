package wire

import "github.com/ccoodduu/studieplus-scraper/domain"

// DecodeLessons parses a GWT response body into domain lessons, scanning
// for SkemaBegivenhed markers directly rather than walking the
// PersSkemaData wrapper (§4.E).
func DecodeLessons(body []byte) ([]domain.Lesson, error) {
	env, err := ParseEnvelope(body)
	if err != nil {
		return nil, err
	}
	raw, err := ScanLessons(env)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Lesson, 0, len(raw))
	for _, l := range raw {
		out = append(out, domain.Lesson{
			LessonID:  l.LessonID,
			Subject:   l.Subject,
			ClassName: l.ClassName,
			Teachers:  l.Teachers,
			Rooms:     l.Rooms,
			StartTime: l.StartTime,
			EndTime:   l.EndTime,
		})
	}
	return out, nil
}

// DecodeNotes parses a GWT response body into domain notes, scanning for
// SkemaNote2 markers directly (§4.E).
func DecodeNotes(body []byte) ([]domain.Note, error) {
	env, err := ParseEnvelope(body)
	if err != nil {
		return nil, err
	}
	raw, err := ScanNotes(env)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Note, 0, len(raw))
	for i, n := range raw {
		out = append(out, domain.Note{
			ID:        n.ID,
			ClassName: n.ClassName,
			PlainText: n.PlainText,
			HTML:      n.HTML,
			Date:      n.Date,
		})
		_ = i
	}
	return out, nil
}

// DecodeAssignments parses a GWT response body's root ArrayList<Aflevering>
// via the ordinary object dispatcher (the assignment list response is
// shallow enough that the wrapper walk is reliable, unlike the deeply
// nested schedule response), returning one domain.Assignment per
// Aflevering with RowIndex set to its position in the decoded list.
func DecodeAssignments(body []byte) ([]domain.Assignment, error) {
	env, err := ParseEnvelope(body)
	if err != nil {
		return nil, err
	}

	registry := defaultRegistry
	d := NewDecoder(env, registry)
	root, err := d.ReadObject()
	if err != nil {
		return nil, err
	}
	items, _ := root.([]any)

	out := make([]domain.Assignment, 0, len(items))
	for i, it := range items {
		a, ok := it.(*decodedAssignment)
		if !ok {
			continue
		}
		out = append(out, domain.Assignment{
			ContainerID:    a.ContainerID,
			Subject:        a.Subject,
			Title:          a.Title,
			Description:    a.Description,
			Deadline:       a.Deadline,
			BudgetHours:    a.BudgetHours,
			SpentHours:     a.SpentHours,
			ClassName:      a.ClassName,
			WeekNumber:     a.WeekNumber,
			Submitted:      a.Submitted,
			SubmissionDate: a.SubmissionDate,
			StatusOrdinal:  a.StatusOrdinal,
			Evaluated:      a.Evaluated,
			EvaluationDate: a.EvaluationDate,
			Grade:          a.Grade,
			RowIndex:       i,
		})
	}
	return out, nil
}

// DecodeFileDescriptors parses a findRessourcerPerContainer response into
// domain file descriptors, scanning for Ressource markers directly (§4.E).
// DownloadURL is left empty; resolving it is a separate RPC per file
// (§4.K), not part of decoding this response.
func DecodeFileDescriptors(body []byte) ([]domain.FileDescriptor, error) {
	env, err := ParseEnvelope(body)
	if err != nil {
		return nil, err
	}
	raw, err := ScanRessources(env)
	if err != nil {
		return nil, err
	}
	out := make([]domain.FileDescriptor, 0, len(raw))
	for _, r := range raw {
		out = append(out, domain.FileDescriptor{
			Name:        r.FileName,
			ResourceID:  r.FileID,
			UUID:        r.UUID,
			ContainerID: r.ContainerID,
		})
	}
	return out, nil
}

// DecodeSignedURL parses a hentRessourceUrl response, whose root value is a
// single string (the signed S3 download URL), and returns it. An envelope
// whose root resolves to anything other than a string yields an empty
// string rather than an error, matching the reference client's
// best-effort treatment of a failed URL resolution (§4.H: "failure to
// obtain a URL yields an empty string without failing the overall call").
func DecodeSignedURL(body []byte) (string, error) {
	env, err := ParseEnvelope(body)
	if err != nil {
		return "", err
	}
	// The root return value of a String-typed RPC method is wire-encoded
	// exactly like any other string field: a 1-based string-table index,
	// or 0 for null. Reading it through ReadObject would be wrong here —
	// that dispatcher exists to distinguish object markers from raw
	// values, and a root String response is never class-marker shaped.
	r := NewReader(env)
	return r.ReadString()
}

// DecodeSingleAssignment parses a getAflevering-style response whose root
// object is a single Aflevering rather than a list.
func DecodeSingleAssignment(body []byte) (domain.Assignment, error) {
	env, err := ParseEnvelope(body)
	if err != nil {
		return domain.Assignment{}, err
	}
	d := NewDecoder(env, defaultRegistry)
	root, err := d.ReadObject()
	if err != nil {
		return domain.Assignment{}, err
	}
	a, ok := root.(*decodedAssignment)
	if !ok {
		return domain.Assignment{}, &DecodeError{Kind: DecodeErrorFieldShape, ClassName: "Aflevering"}
	}
	return domain.Assignment{
		ContainerID:    a.ContainerID,
		Subject:        a.Subject,
		Title:          a.Title,
		Description:    a.Description,
		Deadline:       a.Deadline,
		BudgetHours:    a.BudgetHours,
		SpentHours:     a.SpentHours,
		ClassName:      a.ClassName,
		WeekNumber:     a.WeekNumber,
		Submitted:      a.Submitted,
		SubmissionDate: a.SubmissionDate,
		StatusOrdinal:  a.StatusOrdinal,
		Evaluated:      a.Evaluated,
		EvaluationDate: a.EvaluationDate,
		Grade:          a.Grade,
	}, nil
}

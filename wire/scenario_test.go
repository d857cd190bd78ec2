package wire

import (
	"testing"
	"time"
)

// buildLessonStack assembles a fabricated GWT stack for a single
// SkemaBegivenhed with one AktiviteterISkema (className), one
// MedarbejderISkema (teacher), one LokalerISkema (room), and start/end
// UDates, matching the reference scenario: lessonId 440123, subject
// "Matematik", className "htxqr24", teacher "jdoe", room "M1304", start
// 2025-11-10T08:15, end 2025-11-10T09:15.
func buildLessonStack() *Envelope {
	strs := []string{
		"java.lang.Integer/7",                                              // 1
		"java.util.ArrayList/2",                                            // 2
		"dk.uddata.model.skema.SkemaBegivenhed$AktiviteterISkema/3",        // 3
		"HOLD",                                                              // 4
		"htxqr24",                                                           // 5
		"dk.uddata.model.skema.SkemaBegivenhed$LokalerISkema/4",            // 6
		"M1304",                                                             // 7
		"dk.uddata.model.skema.SkemaBegivenhed$MedarbejderISkema/5",        // 8
		"jdoe",                                                              // 9
		"Matematik",                                                        // 10
		"dk.uddata.gwt.comm.shared.UDate/6",                                // 11
		"UDate:",                                                           // 12
		"dk.uddata.model.skema.SkemaBegivenhed/1",                           // 13
	}

	// tokens enumerates every primitive popped by readSkemaBegivenhed, in
	// the exact chronological order it pops them (field a through field V).
	tokens := []any{
		// field a: aktivitetList ArrayList[1]{AktiviteterISkema}
		2, 1, 3, 1, 2, 4, 5, 0,
		// field c: bemerkning (empty)
		0,
		// field d
		0,
		// field e
		0,
		// field f
		0,
		// field g
		0,
		// field i
		0,
		// field j
		0,
		// field k
		0,
		// field n
		0,
		// field o
		0,
		// field p
		0,
		// field q
		0,
		// field r
		0,
		// field s
		0,
		// field t: subject
		10,
		// field u
		0,
		// field w
		0,
		// field A: lokaleList ArrayList[1]{LokalerISkema}
		2, 1, 6, 1304, 7, 0,
		// field B
		0,
		// field C: medarbejderList ArrayList[1]{MedarbejderISkema}
		2, 1, 8, 42, 9, 0, 0,
		// field D
		0,
		// field F
		0,
		// field G
		0,
		// field H
		0,
		// field I
		0,
		// field J
		0,
		// field K
		0,
		// field L
		0,
		// field M
		0,
		// field N: skemaID Integer wrapper — this is the lesson ID field
		1, 440123,
		// field O
		0,
		// field P
		0,
		// field Q: end UDate 2025-11-10 09:15:00
		11, 12, 125, 10, 10, 9, 15, 0,
		// field R: start UDate 2025-11-10 08:15:00
		11, 12, 125, 10, 10, 8, 15, 0,
		// field S
		0,
		// field T
		0,
		// field V
		0,
	}

	n := len(tokens)
	data := make([]any, n+1)
	for k, tok := range tokens {
		data[n-1-k] = tok
	}
	// The SkemaBegivenhed marker itself, at the scan position. Its string
	// index (13) appears nowhere else in the stack, so the scanner finds
	// exactly one candidate position.
	data[n] = 13

	return &Envelope{Data: data, Strings: strs}
}

func TestScanLessons_SingleLesson(t *testing.T) {
	env := buildLessonStack()

	lessons, err := ScanLessons(env)
	if err != nil {
		t.Fatalf("ScanLessons: %v", err)
	}
	if len(lessons) != 1 {
		t.Fatalf("expected 1 lesson, got %d", len(lessons))
	}

	l := lessons[0]
	if l.LessonID != 440123 {
		t.Errorf("LessonID = %d, want 440123", l.LessonID)
	}
	if l.Subject != "Matematik" {
		t.Errorf("Subject = %q, want Matematik", l.Subject)
	}
	if l.ClassName != "htxqr24" {
		t.Errorf("ClassName = %q, want htxqr24", l.ClassName)
	}
	if len(l.Teachers) != 1 || l.Teachers[0] != "jdoe" {
		t.Errorf("Teachers = %v, want [jdoe]", l.Teachers)
	}
	if len(l.Rooms) != 1 || l.Rooms[0] != "M1304" {
		t.Errorf("Rooms = %v, want [M1304]", l.Rooms)
	}
	wantStart := time.Date(2025, time.November, 10, 8, 15, 0, 0, time.Local)
	wantEnd := time.Date(2025, time.November, 10, 9, 15, 0, 0, time.Local)
	if !l.StartTime.Equal(wantStart) {
		t.Errorf("StartTime = %v, want %v", l.StartTime, wantStart)
	}
	if !l.EndTime.Equal(wantEnd) {
		t.Errorf("EndTime = %v, want %v", l.EndTime, wantEnd)
	}
}

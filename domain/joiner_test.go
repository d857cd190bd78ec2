package domain

import (
	"testing"
	"time"
)

func mathLesson(start, end time.Time) Lesson {
	return Lesson{
		LessonID:  440123,
		Subject:   "Matematik",
		ClassName: "htxqr24",
		Teachers:  []string{"jdoe"},
		Rooms:     []string{"M1304"},
		StartTime: start,
		EndTime:   end,
	}
}

func TestJoin_HomeworkNote(t *testing.T) {
	start := time.Date(2025, time.November, 10, 8, 15, 0, 0, time.Local)
	end := time.Date(2025, time.November, 10, 9, 15, 0, 0, time.Local)
	lessons := []Lesson{mathLesson(start, end)}
	notes := []Note{{
		ClassName: "htxqr24",
		PlainText: "Lektier: læs kap. 3",
		Date:      time.Date(2025, time.November, 10, 0, 0, 0, 0, time.Local),
	}}

	joined := Join(lessons, notes, JoinOptions{})
	if len(joined) != 1 {
		t.Fatalf("expected 1 lesson, got %d", len(joined))
	}
	l := joined[0]
	if !l.HasHomework || l.Homework != "Lektier: læs kap. 3" {
		t.Errorf("expected homework attached, got HasHomework=%v Homework=%q", l.HasHomework, l.Homework)
	}
	if l.HasNote {
		t.Errorf("expected hasNote=false when the note is classified as homework")
	}
}

func TestJoin_PlainNoteNotClassifiedAsHomework(t *testing.T) {
	start := time.Date(2025, time.November, 10, 8, 15, 0, 0, time.Local)
	end := time.Date(2025, time.November, 10, 9, 15, 0, 0, time.Local)
	lessons := []Lesson{mathLesson(start, end)}
	notes := []Note{{
		ClassName: "htxqr24",
		PlainText: "Husk lommeregner",
		Date:      time.Date(2025, time.November, 10, 0, 0, 0, 0, time.Local),
	}}

	joined := Join(lessons, notes, JoinOptions{})
	l := joined[0]
	if l.HasHomework {
		t.Errorf("expected hasHomework=false for a plain note")
	}
	if !l.HasNote || l.Note != "Husk lommeregner" {
		t.Errorf("expected note attached, got HasNote=%v Note=%q", l.HasNote, l.Note)
	}
}

func TestJoin_NoteWrongClassNotAttached(t *testing.T) {
	start := time.Date(2025, time.November, 10, 8, 15, 0, 0, time.Local)
	end := time.Date(2025, time.November, 10, 9, 15, 0, 0, time.Local)
	lessons := []Lesson{mathLesson(start, end)}
	notes := []Note{{
		ClassName: "other-class",
		PlainText: "Lektier: skal ikke vises",
		Date:      time.Date(2025, time.November, 10, 0, 0, 0, 0, time.Local),
	}}

	joined := Join(lessons, notes, JoinOptions{})
	l := joined[0]
	if l.HasHomework || l.HasNote {
		t.Errorf("note for a different className must not attach, got %+v", l)
	}
}

// TestJoin_ConsecutiveDedup covers the display-dedup rule: two consecutive
// periods of the same subject on the same day carrying the same homework
// note only surface it on the first.
func TestJoin_ConsecutiveDedup(t *testing.T) {
	day := time.Date(2025, time.November, 10, 0, 0, 0, 0, time.Local)
	first := Lesson{
		Subject: "Matematik", ClassName: "htxqr24",
		StartTime: day.Add(8*time.Hour + 15*time.Minute),
		EndTime:   day.Add(9*time.Hour + 15*time.Minute),
	}
	second := Lesson{
		Subject: "Matematik", ClassName: "htxqr24",
		StartTime: day.Add(9*time.Hour + 15*time.Minute),
		EndTime:   day.Add(10*time.Hour + 15*time.Minute),
	}
	notes := []Note{{
		ClassName: "htxqr24",
		PlainText: "Lektier: læs kap. 3",
		Date:      day,
	}}

	joined := Join([]Lesson{first, second}, notes, JoinOptions{})
	if len(joined) != 2 {
		t.Fatalf("expected 2 lessons, got %d", len(joined))
	}
	if !joined[0].HasHomework {
		t.Errorf("expected first consecutive lesson to carry homework")
	}
	if joined[1].HasHomework {
		t.Errorf("expected second consecutive lesson to have homework suppressed by dedup")
	}
}

func TestJoin_ConsecutiveDedupCanBeDisabled(t *testing.T) {
	day := time.Date(2025, time.November, 10, 0, 0, 0, 0, time.Local)
	first := Lesson{
		Subject: "Matematik", ClassName: "htxqr24",
		StartTime: day.Add(8*time.Hour + 15*time.Minute),
		EndTime:   day.Add(9*time.Hour + 15*time.Minute),
	}
	second := Lesson{
		Subject: "Matematik", ClassName: "htxqr24",
		StartTime: day.Add(9*time.Hour + 15*time.Minute),
		EndTime:   day.Add(10*time.Hour + 15*time.Minute),
	}
	notes := []Note{{ClassName: "htxqr24", PlainText: "Lektier: læs kap. 3", Date: day}}

	joined := Join([]Lesson{first, second}, notes, JoinOptions{DisableConsecutiveDedup: true})
	if !joined[0].HasHomework || !joined[1].HasHomework {
		t.Errorf("expected both lessons to carry homework when dedup disabled")
	}
}

func TestJoin_SortsByStartTime(t *testing.T) {
	day := time.Date(2025, time.November, 10, 0, 0, 0, 0, time.Local)
	late := Lesson{Subject: "Dansk", StartTime: day.Add(10 * time.Hour), EndTime: day.Add(11 * time.Hour)}
	early := Lesson{Subject: "Matematik", StartTime: day.Add(8 * time.Hour), EndTime: day.Add(9 * time.Hour)}

	joined := Join([]Lesson{late, early}, nil, JoinOptions{})
	if joined[0].Subject != "Matematik" || joined[1].Subject != "Dansk" {
		t.Fatalf("expected sorted order Matematik, Dansk, got %s, %s", joined[0].Subject, joined[1].Subject)
	}
}

func TestAssignment_IsOpen(t *testing.T) {
	cases := []struct {
		name string
		a    Assignment
		want bool
	}{
		{"untouched is open", Assignment{}, true},
		{"submitted is not open", Assignment{Submitted: true}, false},
		{"locked status is not open", Assignment{StatusOrdinal: 1}, false},
		{"evaluated is not open", Assignment{Evaluated: true}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.IsOpen(); got != tc.want {
				t.Errorf("IsOpen() = %v, want %v", got, tc.want)
			}
		})
	}
}

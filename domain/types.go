// Package domain holds the schedule/assignment entities produced by the
// wire decoder and consumed by the cached domain API (§3, §4.H of
// SPEC_FULL.md).
package domain

import "time"

// Lesson is one scheduled class period. Identity for joining notes against
// lessons is (StartTime.Date, ClassName).
type Lesson struct {
	LessonID  int
	Subject   string
	ClassName string
	Teachers  []string
	Rooms     []string
	StartTime time.Time
	EndTime   time.Time

	Note        string
	Homework    string
	HasNote     bool
	HasHomework bool
	HasFiles    bool
}

// Note is a schedule annotation decoded alongside lessons. The joiner
// matches it to a Lesson by (date, className) and classifies it as
// homework or a plain note depending on whether PlainText contains
// "Lektier".
type Note struct {
	ID        int
	ClassName string
	PlainText string
	HTML      string
	Date      time.Time
}

// Assignment is a StudiePlus "Aflevering" joined with its OpgaveElev detail
// and evaluation record.
type Assignment struct {
	ContainerID    int
	Subject        string
	Title          string
	Description    string
	Deadline       time.Time
	BudgetHours    float64
	SpentHours     float64
	ClassName      string
	WeekNumber     int
	Submitted      bool
	SubmissionDate time.Time
	StatusOrdinal  int
	Evaluated      bool
	EvaluationDate time.Time
	Grade          string

	// RowIndex is assigned by the caller at decode time (its position in
	// the decoded list), so GetAssignmentDetail can address one by index.
	RowIndex int
}

// IsOpen reports whether the assignment is still open: not submitted, with
// an open (or absent) status ordinal, and not yet evaluated by a teacher.
// statusOrdinal 0 is the "AABEN" (open) value; a nil status is treated the
// same as open (§4.H, §9 glossary "Open assignment").
func (a Assignment) IsOpen() bool {
	openStatus := a.StatusOrdinal == 0
	return !a.Submitted && openStatus && !a.Evaluated
}

// FileDescriptor describes one file attached to a lesson or assignment.
// DownloadURL is populated best-effort by Component K; a failed resolution
// leaves it empty without failing the surrounding batch.
type FileDescriptor struct {
	Name        string
	ResourceID  int
	UUID        string
	ContainerID int
	DownloadURL string
}

// Person is the display projection of a StudiePlus user (teacher or
// student) — only the fields the scraper domain actually surfaces.
type Person struct {
	Name     string
	Initials string
}

// CourseSummary is a teaching-sequence summary ("Undervisningsforloeb").
type CourseSummary struct {
	Title string
	Start time.Time
	End   time.Time
}

package domain

import (
	"sort"
	"strings"
)

// JoinOptions configures Join's behavior. The zero value matches the
// observed reference behavior exactly.
type JoinOptions struct {
	// DisableConsecutiveDedup turns off the "flag only on the first lesson
	// of a consecutive run" display rule (§3, §4.F, §9 open question: this
	// rule is inferred from observed behavior, not stated as a requirement
	// by the source, so implementers may want to disable it).
	DisableConsecutiveDedup bool
}

type noteKey struct {
	date      string // YYYY-MM-DD
	className string
}

// Join attaches Notes to Lessons by (date, className), classifies each
// match as homework or a plain note, sorts the result by (date, startTime),
// and applies the consecutive-lesson display-dedup pass (§4.F).
func Join(lessons []Lesson, notes []Note, opts JoinOptions) []Lesson {
	byKey := make(map[noteKey][]Note, len(notes))
	for _, n := range notes {
		if n.Date.IsZero() {
			continue
		}
		k := noteKey{date: n.Date.Format("2006-01-02"), className: n.ClassName}
		byKey[k] = append(byKey[k], n)
	}

	joined := make([]Lesson, len(lessons))
	copy(joined, lessons)

	for i := range joined {
		l := &joined[i]
		if l.StartTime.IsZero() {
			continue
		}
		k := noteKey{date: l.StartTime.Format("2006-01-02"), className: l.ClassName}
		for _, n := range byKey[k] {
			if strings.Contains(n.PlainText, "Lektier") || strings.Contains(n.HTML, "Lektier") {
				l.HasHomework = true
				l.Homework = n.PlainText
				continue
			}
			l.HasNote = true
			if l.Note == "" || l.Note == l.Subject {
				text := n.PlainText
				if text == "" {
					text = boundedSlice(n.HTML, 200)
				}
				l.Note = text
			}
		}
	}

	sort.SliceStable(joined, func(i, j int) bool {
		if !joined[i].StartTime.Equal(joined[j].StartTime) {
			return joined[i].StartTime.Before(joined[j].StartTime)
		}
		return false
	})

	if !opts.DisableConsecutiveDedup {
		dedupConsecutive(joined)
	}

	return joined
}

// dedupConsecutive clears hasHomework/hasNote on a lesson whose (date,
// subject) matches the immediately preceding lesson and the preceding
// lesson carried a flag, so a display walking the sorted list never shows
// the same note/homework twice for a split double period (§4.F step 4).
func dedupConsecutive(lessons []Lesson) {
	var prevDate string
	var prevSubject string
	var prevCarried bool

	for i := range lessons {
		l := &lessons[i]
		date := l.StartTime.Format("2006-01-02")
		carried := l.HasHomework || l.HasNote

		if i > 0 && date == prevDate && l.Subject == prevSubject && prevCarried {
			l.HasHomework = false
			l.HasNote = false
			l.Homework = ""
			l.Note = ""
			carried = false
		}

		prevDate = date
		prevSubject = l.Subject
		prevCarried = carried
	}
}

func boundedSlice(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

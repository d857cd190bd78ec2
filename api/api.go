// Package api is the cache-backed domain API a caller (the poll loop, the
// status endpoint, or a future collaborator adapter) talks to. It owns the
// TTL cache and ties the transport, wire decoder, domain joiner, and file
// worker pool together into the handful of read operations SPEC_FULL.md §4.H
// names (parseSchedule, getDayOverview, getWeekOverview, getAssignments,
// getAssignmentDetail, getLessonFiles).
package api

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/ccoodduu/studieplus-scraper/cache"
	"github.com/ccoodduu/studieplus-scraper/domain"
	"github.com/ccoodduu/studieplus-scraper/metrics"
	"github.com/ccoodduu/studieplus-scraper/transport"
	"github.com/ccoodduu/studieplus-scraper/wire"
	"github.com/ccoodduu/studieplus-scraper/worker"
)

// API is the cache-backed facade over one Transport.
type API struct {
	t       *transport.Transport
	cache   *cache.Cache
	metrics *metrics.Metrics
	files   *worker.WorkerPool

	joinOpts domain.JoinOptions
}

// New constructs an API over an already-constructed Transport. filePool must
// already have had Start called; API does not own its lifecycle (Component J
// starts and stops it once, shared across every API instance in the
// process — there is normally only one).
func New(t *transport.Transport, c *cache.Cache, m *metrics.Metrics, filePool *worker.WorkerPool) *API {
	return &API{t: t, cache: c, metrics: m, files: filePool}
}

// fileResolveTimeout bounds a single file's signed-URL resolution job,
// subordinate to the caller's context (§4.K).
const fileResolveTimeout = 10 * time.Second

func weekBounds(weekOffset int) (start, end time.Time) {
	start = mondayOf(time.Now()).AddDate(0, 0, 7*weekOffset)
	end = start.AddDate(0, 0, 6)
	return start, end
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseSchedule fetches and decodes the schedule for the week at weekOffset
// (0 = current week), joins notes onto lessons, and returns the lesson list
// alongside the ISO week number, year, and the week's seven dates
// (YYYY-MM-DD). Results are cached for cache.ScheduleTTL.
func (a *API) ParseSchedule(ctx context.Context, weekOffset int) ([]domain.Lesson, string, string, []string, error) {
	start, end := weekBounds(weekOffset)
	key := fmt.Sprintf("schedule:%d", weekOffset)

	type cached struct {
		lessons []domain.Lesson
		week    string
		year    string
		dates   []string
	}

	if v, ok := a.cache.Get(key); ok {
		a.metrics.IncrementCacheHit()
		c := v.(cached)
		return c.lessons, c.week, c.year, c.dates, nil
	}
	a.metrics.IncrementCacheMiss()

	a.metrics.IncrementRPCAttempt()
	scheduleBody, err := a.t.GetSchedule(ctx, start, end)
	if err != nil {
		a.metrics.IncrementRPCFailed()
		return nil, "", "", nil, err
	}
	notesBody, err := a.t.GetNotesInRange(ctx, start, end)
	if err != nil {
		a.metrics.IncrementRPCFailed()
		return nil, "", "", nil, err
	}
	a.metrics.IncrementRPCSuccess()

	lessons, err := wire.DecodeLessons([]byte(scheduleBody))
	if err != nil {
		return nil, "", "", nil, err
	}
	notes, err := wire.DecodeNotes([]byte(notesBody))
	if err != nil {
		return nil, "", "", nil, err
	}

	joined := domain.Join(lessons, notes, a.joinOpts)

	_, isoWeek := start.ISOWeek()
	week := strconv.Itoa(isoWeek)
	year := strconv.Itoa(start.Year())
	dates := make([]string, 7)
	for i := 0; i < 7; i++ {
		dates[i] = start.AddDate(0, 0, i).Format("2006-01-02")
	}

	a.cache.Set(key, cached{lessons: joined, week: week, year: year, dates: dates}, cache.ScheduleTTL)
	return joined, week, year, dates, nil
}

// DayOverview is the flattened view of a single day's schedule plus any
// assignments due that day.
type DayOverview struct {
	Date           string
	Weekday        string
	Lessons        []domain.Lesson
	Homework       []string
	Notes          []string
	AssignmentsDue []domain.Assignment
	FirstLesson    *domain.Lesson
	LastLesson     *domain.Lesson
}

var weekdayNames = []string{"Søndag", "Mandag", "Tirsdag", "Onsdag", "Torsdag", "Fredag", "Lørdag"}

// GetDayOverview returns the overview for the day at dayOffset from today
// (0 = today). It computes the containing week via ParseSchedule and filters
// to the requested date.
func (a *API) GetDayOverview(ctx context.Context, dayOffset int) (DayOverview, error) {
	target := truncateToDay(time.Now()).AddDate(0, 0, dayOffset)
	weekOffset := int(math.Round(mondayOf(target).Sub(mondayOf(time.Now())).Hours() / 24 / 7))

	lessons, _, _, _, err := a.ParseSchedule(ctx, weekOffset)
	if err != nil {
		return DayOverview{}, err
	}

	targetDate := target.Format("2006-01-02")
	out := DayOverview{Date: targetDate, Weekday: weekdayNames[int(target.Weekday())]}

	for i := range lessons {
		l := lessons[i]
		if l.StartTime.Format("2006-01-02") != targetDate {
			continue
		}
		out.Lessons = append(out.Lessons, l)
		if l.HasHomework {
			out.Homework = append(out.Homework, l.Homework)
		}
		if l.HasNote {
			out.Notes = append(out.Notes, l.Note)
		}
	}

	a.annotateHasFiles(ctx, out.Lessons)

	for i := range out.Lessons {
		l := out.Lessons[i]
		if out.FirstLesson == nil || l.StartTime.Before(out.FirstLesson.StartTime) {
			ll := l
			out.FirstLesson = &ll
		}
		if out.LastLesson == nil || l.StartTime.After(out.LastLesson.StartTime) {
			ll := l
			out.LastLesson = &ll
		}
	}

	assignments, err := a.GetAssignments(ctx, AssignmentFilter{})
	if err != nil {
		return DayOverview{}, err
	}
	for _, asg := range assignments {
		if !asg.Deadline.IsZero() && asg.Deadline.Format("2006-01-02") == targetDate {
			out.AssignmentsDue = append(out.AssignmentsDue, asg)
		}
	}

	return out, nil
}

// mondayOf returns the Monday of t's week, at midnight.
func mondayOf(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return truncateToDay(t).AddDate(0, 0, -(weekday - 1))
}

// WeekOverview groups a week's lessons by date and summarizes flag counts.
type WeekOverview struct {
	Week          string
	Days          map[string][]domain.Lesson
	HomeworkCount int
	NotesCount    int
	Assignments   []domain.Assignment
}

// GetWeekOverview returns the grouped overview for the week at weekOffset.
func (a *API) GetWeekOverview(ctx context.Context, weekOffset int) (WeekOverview, error) {
	lessons, week, _, dates, err := a.ParseSchedule(ctx, weekOffset)
	if err != nil {
		return WeekOverview{}, err
	}

	out := WeekOverview{Week: week, Days: make(map[string][]domain.Lesson, 7)}
	for _, d := range dates {
		out.Days[d] = nil
	}
	for _, l := range lessons {
		d := l.StartTime.Format("2006-01-02")
		out.Days[d] = append(out.Days[d], l)
		if l.HasHomework {
			out.HomeworkCount++
		}
		if l.HasNote {
			out.NotesCount++
		}
	}
	for _, d := range dates {
		a.annotateHasFiles(ctx, out.Days[d])
	}

	assignments, err := a.GetAssignments(ctx, AssignmentFilter{})
	if err != nil {
		return WeekOverview{}, err
	}
	if len(dates) > 0 {
		minDate, maxDate := dates[0], dates[len(dates)-1]
		for _, asg := range assignments {
			if asg.Deadline.IsZero() {
				continue
			}
			d := asg.Deadline.Format("2006-01-02")
			if d >= minDate && d <= maxDate {
				out.Assignments = append(out.Assignments, asg)
			}
		}
	}

	return out, nil
}

// AssignmentFilter narrows GetAssignments' result set. With
// IncludeSubmitted false (the zero value) only open assignments, as
// reported by domain.Assignment.IsOpen, are returned.
type AssignmentFilter struct {
	IncludeSubmitted bool
	DaysAhead        int // 0 means unbounded
	Subject          string
}

// GetAssignments fetches and decodes every assignment, applies filter, and
// returns them ordered by deadline. Results are cached for
// cache.AssignmentsTTL (the unfiltered decode, not the filtered view, so
// different filters share one cache entry).
func (a *API) GetAssignments(ctx context.Context, filter AssignmentFilter) ([]domain.Assignment, error) {
	const key = "assignments:all"

	var all []domain.Assignment
	if v, ok := a.cache.Get(key); ok {
		a.metrics.IncrementCacheHit()
		all = v.([]domain.Assignment)
	} else {
		a.metrics.IncrementCacheMiss()
		a.metrics.IncrementRPCAttempt()
		body, err := a.t.GetAssignments(ctx)
		if err != nil {
			a.metrics.IncrementRPCFailed()
			return nil, err
		}
		a.metrics.IncrementRPCSuccess()

		decoded, err := wire.DecodeAssignments([]byte(body))
		if err != nil {
			return nil, err
		}
		all = decoded
		a.cache.Set(key, all, cache.AssignmentsTTL)
	}

	now := time.Now()
	out := make([]domain.Assignment, 0, len(all))
	for _, asg := range all {
		if !filter.IncludeSubmitted && !asg.IsOpen() {
			continue
		}
		if filter.Subject != "" && asg.Subject != filter.Subject {
			continue
		}
		if filter.DaysAhead > 0 && !asg.Deadline.IsZero() {
			if asg.Deadline.After(now.AddDate(0, 0, filter.DaysAhead)) {
				continue
			}
		}
		out = append(out, asg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Deadline.Before(out[j].Deadline) })
	return out, nil
}

// AssignmentDetail is a single assignment plus its resolved file list.
type AssignmentDetail struct {
	Assignment domain.Assignment
	Files      []domain.FileDescriptor
}

// GetAssignmentDetail looks up the assignment at rowIndex (as assigned by
// wire.DecodeAssignments) and resolves its attached files via the
// containerID RPC, using the bounded file worker pool for the signed-URL
// resolution fan-out.
func (a *API) GetAssignmentDetail(ctx context.Context, rowIndex int) (AssignmentDetail, error) {
	all, err := a.GetAssignments(ctx, AssignmentFilter{IncludeSubmitted: true})
	if err != nil {
		return AssignmentDetail{}, err
	}
	for _, asg := range all {
		if asg.RowIndex != rowIndex {
			continue
		}
		files, err := a.resolveFiles(ctx, asg.ContainerID, transport.ContainerOpgave)
		if err != nil {
			return AssignmentDetail{}, err
		}
		return AssignmentDetail{Assignment: asg, Files: files}, nil
	}
	return AssignmentDetail{}, &domain.DomainError{Kind: domain.ErrAssignmentNotFound, RowIndex: rowIndex}
}

// GetLessonFiles returns every file attached to lessonID with its signed
// download URL resolved via the bounded worker pool (§4.K).
func (a *API) GetLessonFiles(ctx context.Context, lessonID int) ([]domain.FileDescriptor, error) {
	return a.resolveFiles(ctx, lessonID, transport.ContainerSkema)
}

// GetAssignmentFiles returns every file attached to an assignment's
// containerID, with signed download URLs resolved the same way as
// GetLessonFiles.
func (a *API) GetAssignmentFiles(ctx context.Context, containerID int) ([]domain.FileDescriptor, error) {
	return a.resolveFiles(ctx, containerID, transport.ContainerOpgave)
}

func (a *API) resolveFiles(ctx context.Context, containerID int, kind transport.ContainerKind) ([]domain.FileDescriptor, error) {
	body, err := a.t.GetFilesForContainer(ctx, containerID, kind)
	if err != nil {
		return nil, err
	}
	descriptors, err := wire.DecodeFileDescriptors([]byte(body))
	if err != nil {
		return nil, err
	}

	type result struct {
		idx int
		url string
	}
	resultCh := make(chan result, len(descriptors))
	for i, d := range descriptors {
		i, d := i, d
		a.files.Submit(func() {
			jobCtx, cancel := context.WithTimeout(ctx, fileResolveTimeout)
			defer cancel()
			url, err := a.resolveDownloadURL(jobCtx, d.ResourceID)
			if err != nil {
				url = ""
			}
			resultCh <- result{idx: i, url: url}
		})
	}
	for range descriptors {
		r := <-resultCh
		descriptors[r.idx].DownloadURL = r.url
	}
	return descriptors, nil
}

// annotateHasFiles populates HasFiles on each lesson by checking whether its
// container has any attached file, fanned out across the bounded worker pool
// (§4.K). It skips signed-URL resolution since only presence matters here; a
// lookup failure leaves HasFiles at its zero value rather than failing the
// overview.
func (a *API) annotateHasFiles(ctx context.Context, lessons []domain.Lesson) {
	type result struct {
		idx      int
		hasFiles bool
	}
	resultCh := make(chan result, len(lessons))
	for i, l := range lessons {
		i, l := i, l
		a.files.Submit(func() {
			jobCtx, cancel := context.WithTimeout(ctx, fileResolveTimeout)
			defer cancel()
			hasFiles := false
			if body, err := a.t.GetFilesForContainer(jobCtx, l.LessonID, transport.ContainerSkema); err == nil {
				if descriptors, err := wire.DecodeFileDescriptors([]byte(body)); err == nil {
					hasFiles = len(descriptors) > 0
				}
			}
			resultCh <- result{idx: i, hasFiles: hasFiles}
		})
	}
	for range lessons {
		r := <-resultCh
		lessons[r.idx].HasFiles = r.hasFiles
	}
}

func (a *API) resolveDownloadURL(ctx context.Context, resourceID int) (string, error) {
	body, err := a.t.GetFileDownloadURL(ctx, resourceID)
	if err != nil {
		return "", err
	}
	return wire.DecodeSignedURL([]byte(body))
}

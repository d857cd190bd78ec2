package wire

import "time"

// RawObject is a loosely-typed decoded instance for classes the domain
// layer only partially cares about. Field names follow the source's own
// single-letter field labels (a, b, c, ... A, B, ...) since that is the
// only naming the wire format carries.
type RawObject struct {
	Class  string
	Fields map[string]any
}

func (r RawObject) field(k string) any { return r.Fields[k] }

func (r RawObject) str(k string) string {
	s, _ := r.Fields[k].(string)
	return s
}

func (r RawObject) intv(k string) int {
	n, _ := r.Fields[k].(int)
	return n
}

// RegisterDefaultClasses registers every class reader the scraper domain
// needs against its GWT class-marker prefix (§4.D). Prefixes are full Java
// package paths; ReadObject resolves a marker by longest matching prefix,
// so a base class (e.g. SkemaBegivenhed) and its nested classes
// (SkemaBegivenhed$LokalerISkema) can coexist in the same registry.
func RegisterDefaultClasses(r *Registry) {
	r.Register("java.util.ArrayList", readArrayList)
	r.Register("java.util.HashMap", readHashMap)
	r.Register("java.lang.Integer", readIntegerWrapper)
	r.Register("java.lang.Boolean", readBooleanWrapper)

	r.Register("dk.uddata.gwt.comm.shared.UDate", readUDate)

	r.Register("dk.uddata.model.skema.PersSkemaData", readPersSkemaData)
	r.Register("dk.uddata.model.skema.SkemaBegivenhed$LokalerISkema", readLokaler)
	r.Register("dk.uddata.model.skema.SkemaBegivenhed$MedarbejderISkema", readMedarbejder)
	r.Register("dk.uddata.model.skema.SkemaBegivenhed$AktiviteterISkema", readAktiviteter)
	r.Register("dk.uddata.model.skema.SkemaBegivenhed$Status", readEnum)
	r.Register("dk.uddata.model.skema.SkemaBegivenhed", readSkemaBegivenhed)
	r.Register("dk.uddata.model.skemanoter.SkemaNote2", readSkemaNote)

	r.Register("dk.uddata.model.skema.Aarstyp$AarsagsType", readEnum)
	r.Register("dk.uddata.model.skema.Aarstyp$AmuKode", readEnum)
	r.Register("dk.uddata.model.skema.Aarstyp$Status", readEnum)
	r.Register("dk.uddata.model.skema.Aarstyp", readAarstyp)

	r.Register("dk.uddata.model.skema.Frareg$Status", readEnum)
	r.Register("dk.uddata.model.skema.Frareg", readFrareg)

	r.Register("dk.uddata.model.skema.Fravk$FravkStatus", readEnum)
	r.Register("dk.uddata.model.skema.Fravk", readFravk)

	r.Register("dk.uddata.model.bruger.Skemaelev", readSkemaelev)
	r.Register("dk.uddata.model.skema.SkemaUvfo", readSkemaUvfo)
	r.Register("dk.uddata.model.skema.SkemaTools$FravaStatus", readEnum)
	r.Register("dk.uddata.model.skema.SkemaTools$RegModel", readEnum)
	r.Register("dk.uddata.model.skema.SkemaTools$RegStatus", readEnum)

	r.Register("dk.uddata.model.opgave.Aflevering", readAflevering)
	r.Register("dk.uddata.model.opgave.OpgaveElev", readOpgaveElev)
	r.Register("dk.uddata.model.opgave.AfleveringBedoemmelse", readAfleveringBedoemmelse)
	r.Register("dk.uddata.model.opgave.AfleveringStatus", readEnum)
	r.Register("dk.uddata.model.opgave.BedoemmelsesForm", readEnum)

	r.Register("dk.uddata.model.bruger.Medarbejder", readMedarbejderBruger)
	r.Register("dk.uddata.model.bruger.Elev", readElevBruger)
	r.Register("dk.uddata.gwt.comm.shared.user.RolleType", readEnum)

	r.Register("dk.uddata.model.undervisningsplan.UndervisningsforloebResume", readUndervisningsforloebResume)

	r.Register("dk.uddata.model.ressourcer.RessourceObjektType", readEnum)
	r.Register("dk.uddata.model.ressourcer.Ressource", readRessource)
}

// decodedRessource is one file attached to a lesson or assignment
// container, as returned by findRessourcerPerContainer.
type decodedRessource struct {
	ContainerID int
	FileName    string
	FileID      int
	UUID        string
}

// readRessource deserializes a Ressource: container id (int), file name
// (pqd string), file id (int), uuid (pqd string), then a Type object this
// scraper domain has no use for and so discards via the ordinary
// dispatcher. Field order grounded on the reference client's own positional
// comment ("b.c = int, b.d = pqd string, b.e = int, b.f = pqd string,
// b.g = object").
func readRessource(d *Decoder, _ string) (any, error) {
	containerID, err := d.ReadInt() // c
	if err != nil {
		return nil, err
	}
	fileName, err := d.ReadString() // d
	if err != nil {
		return nil, err
	}
	fileID, err := d.ReadInt() // e
	if err != nil {
		return nil, err
	}
	uuid, err := d.ReadString() // f
	if err != nil {
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // g: Type, unused
		return nil, err
	}
	return &decodedRessource{ContainerID: containerID, FileName: fileName, FileID: fileID, UUID: uuid}, nil
}

// readArrayList deserializes a java.util.ArrayList: a count, then that many
// ReadObject calls (§4.D, ArrayList).
func readArrayList(d *Decoder, _ string) (any, error) {
	n, err := d.ReadInt()
	if err != nil {
		return nil, err
	}
	items := make([]any, 0, n)
	for i := 0; i < n; i++ {
		v, err := d.ReadObject()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}

// readHashMap deserializes a java.util.HashMap: a count, then that many
// key/value ReadObject pairs. String keys are used as-is and int keys in
// decimal form; a key of any other type maps to "", and nil keys are dropped.
func readHashMap(d *Decoder, _ string) (any, error) {
	n, err := d.ReadInt()
	if err != nil {
		return nil, err
	}
	result := make(map[string]any, n)
	for i := 0; i < n; i++ {
		k, err := d.ReadObject()
		if err != nil {
			return nil, err
		}
		v, err := d.ReadObject()
		if err != nil {
			return nil, err
		}
		if k != nil {
			result[toMapKey(k)] = v
		}
	}
	return result, nil
}

func toMapKey(v any) string {
	switch k := v.(type) {
	case string:
		return k
	case int:
		return itoa(k)
	default:
		return ""
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func readIntegerWrapper(d *Decoder, _ string) (any, error) { return d.ReadInt() }
func readBooleanWrapper(d *Decoder, _ string) (any, error) { return d.ReadBool() }

// readEnum deserializes any GWT enum: a single ordinal pop, no further
// fields (§4.D).
func readEnum(d *Decoder, className string) (any, error) {
	ordinal, err := d.ReadInt()
	if err != nil {
		return nil, err
	}
	return RawObject{Class: className, Fields: map[string]any{"ordinal": ordinal}}, nil
}

// readUDate deserializes a UDate: a discarded "UDate:" string-table marker
// followed by year/month/day/hour/minute/second as individual int pops.
// Year is relative to 1900 and month is 0-based, matching java.util.Date.
func readUDate(d *Decoder, _ string) (any, error) {
	if _, err := d.ReadInt(); err != nil { // discard "UDate:" marker slot
		return nil, err
	}
	year, err := d.ReadInt()
	if err != nil {
		return nil, err
	}
	month, err := d.ReadInt()
	if err != nil {
		return nil, err
	}
	day, err := d.ReadInt()
	if err != nil {
		return nil, err
	}
	hour, err := d.ReadInt()
	if err != nil {
		return nil, err
	}
	minute, err := d.ReadInt()
	if err != nil {
		return nil, err
	}
	second, err := d.ReadInt()
	if err != nil {
		return nil, err
	}
	return time.Date(year+1900, time.Month(month+1), day, hour, minute, second, 0, time.Local), nil
}

// readLokaler deserializes SkemaBegivenhed$LokalerISkema (a room): id,
// name, and a trailing int.
func readLokaler(d *Decoder, className string) (any, error) {
	id, err := d.ReadInt()
	if err != nil {
		return nil, err
	}
	name, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	if _, err := d.ReadInt(); err != nil {
		return nil, err
	}
	return RawObject{Class: className, Fields: map[string]any{"id": id, "navn": name}}, nil
}

// readMedarbejder deserializes SkemaBegivenhed$MedarbejderISkema (a
// teacher reference): id, name, an int, and a nested object.
func readMedarbejder(d *Decoder, className string) (any, error) {
	id, err := d.ReadInt()
	if err != nil {
		return nil, err
	}
	name, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	if _, err := d.ReadInt(); err != nil {
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil {
		return nil, err
	}
	return RawObject{Class: className, Fields: map[string]any{"id": id, "navn": name}}, nil
}

// readAktiviteter deserializes SkemaBegivenhed$AktiviteterISkema: two ints,
// two strings (the second is the class/hold code, e.g. "htxqr24"), and a
// trailing int.
func readAktiviteter(d *Decoder, className string) (any, error) {
	a, err := d.ReadInt()
	if err != nil {
		return nil, err
	}
	b, err := d.ReadInt()
	if err != nil {
		return nil, err
	}
	c, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	holdCode, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	e, err := d.ReadInt()
	if err != nil {
		return nil, err
	}
	return RawObject{Class: className, Fields: map[string]any{"a": a, "b": b, "c": c, "d": holdCode, "e": e}}, nil
}

func asTime(v any) time.Time {
	t, _ := v.(time.Time)
	return t
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asStrings(items []any, get func(any) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s := get(it); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// decodedLesson is the full-fidelity intermediate result the scanner maps
// into a domain.Lesson.
type decodedLesson struct {
	LessonID  int
	Subject   string
	ClassName string
	Note      string
	Rooms     []string
	Teachers  []string
	StartTime time.Time
	EndTime   time.Time
}

// readSkemaBegivenhed deserializes SkemaBegivenhed (a scheduled lesson),
// popping exactly the 38 fields the source reads in order (labelled a, c,
// d, e, f, g, i, j, k, n, o, p, q, r, s, t, u, w, A, B, C, D, F, G, H, I, J,
// K, L, M, N, O, P, Q, R, S, T, V — "b", "h", "x", "y", "z" are never used
// as field labels in the source). Only the fields the domain layer uses
// are kept; the rest are popped and discarded to keep the stack aligned.
func readSkemaBegivenhed(d *Decoder, className string) (any, error) {
	lesson := &decodedLesson{}

	aktivitetList, err := d.ReadObject() // a
	if err != nil {
		return nil, err
	}
	if items, ok := aktivitetList.([]any); ok {
		for _, it := range items {
			if akt, ok := it.(RawObject); ok {
				if code := akt.str("d"); code != "" {
					lesson.ClassName = code
					break
				}
			}
		}
	}

	bemerkning, err := d.ReadString() // c
	if err != nil {
		return nil, err
	}
	if _, err := d.ReadString(); err != nil { // d
		return nil, err
	}
	if _, err := d.ReadBool(); err != nil { // e
		return nil, err
	}
	if _, err := d.ReadInt(); err != nil { // f
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // g
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // i
		return nil, err
	}
	if _, err := d.ReadInt(); err != nil { // j
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // k
		return nil, err
	}
	if _, err := d.ReadBool(); err != nil { // n
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // o
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // p
		return nil, err
	}
	if _, err := d.ReadInt(); err != nil { // q
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // r
		return nil, err
	}
	if _, err := d.ReadInt(); err != nil { // s
		return nil, err
	}

	skolefag, err := d.ReadString() // t - SUBJECT
	if err != nil {
		return nil, err
	}
	lesson.Subject = skolefag

	if _, err := d.ReadBool(); err != nil { // u
		return nil, err
	}
	if _, err := d.ReadInt(); err != nil { // w
		return nil, err
	}

	lokaleList, err := d.ReadObject() // A - ROOMS
	if err != nil {
		return nil, err
	}
	if items, ok := lokaleList.([]any); ok {
		lesson.Rooms = asStrings(items, func(v any) string {
			if ro, ok := v.(RawObject); ok {
				return ro.str("navn")
			}
			return ""
		})
	}

	if _, err := d.ReadBool(); err != nil { // B
		return nil, err
	}

	medarbejderList, err := d.ReadObject() // C - TEACHERS
	if err != nil {
		return nil, err
	}
	if items, ok := medarbejderList.([]any); ok {
		lesson.Teachers = asStrings(items, func(v any) string {
			if ro, ok := v.(RawObject); ok {
				return ro.str("navn")
			}
			return ""
		})
	}

	if _, err := d.ReadBool(); err != nil { // D
		return nil, err
	}
	if _, err := d.ReadString(); err != nil { // F
		return nil, err
	}

	if _, err := d.ReadObject(); err != nil { // G
		return nil, err
	}

	if _, err := d.ReadString(); err != nil { // H
		return nil, err
	}
	if _, err := d.ReadBool(); err != nil { // I
		return nil, err
	}
	if _, err := d.ReadString(); err != nil { // J
		return nil, err
	}
	if _, err := d.ReadBool(); err != nil { // K
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // L
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // M
		return nil, err
	}

	skemaID, err := d.ReadObject() // N - LESSON ID
	if err != nil {
		return nil, err
	}
	if n, ok := skemaID.(int); ok {
		lesson.LessonID = n
	}

	if _, err := d.ReadObject(); err != nil { // O
		return nil, err
	}
	if _, err := d.ReadString(); err != nil { // P
		return nil, err
	}

	slut, err := d.ReadObject() // Q - END TIME
	if err != nil {
		return nil, err
	}
	lesson.EndTime = asTime(slut)

	start, err := d.ReadObject() // R - START TIME
	if err != nil {
		return nil, err
	}
	lesson.StartTime = asTime(start)

	if _, err := d.ReadObject(); err != nil { // S
		return nil, err
	}
	if _, err := d.ReadInt(); err != nil { // T
		return nil, err
	}
	if _, err := d.ReadBool(); err != nil { // V
		return nil, err
	}

	lesson.Note = bemerkning
	_ = className
	return lesson, nil
}

// decodedNote is the full-fidelity intermediate result for SkemaNote2.
type decodedNote struct {
	ID        int
	ClassName string
	PlainText string
	HTML      string
	Date      time.Time
}

// readSkemaNote deserializes SkemaNote2, a 16-field note/homework entry.
// Field e is the plain-text body and field f its HTML rendering; field o
// is the UDate the note applies to.
func readSkemaNote(d *Decoder, _ string) (any, error) {
	id, err := d.ReadInt() // a
	if err != nil {
		return nil, err
	}
	className, err := d.ReadString() // b
	if err != nil {
		return nil, err
	}
	if _, err := d.ReadInt(); err != nil { // c
		return nil, err
	}
	if _, err := d.ReadBool(); err != nil { // d
		return nil, err
	}
	plainText, err := d.ReadString() // e
	if err != nil {
		return nil, err
	}
	html, err := d.ReadString() // f
	if err != nil {
		return nil, err
	}
	if _, err := d.ReadString(); err != nil { // g
		return nil, err
	}
	if _, err := d.ReadString(); err != nil { // i
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // j
		return nil, err
	}
	if _, err := d.ReadString(); err != nil { // k
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // n
		return nil, err
	}
	date, err := d.ReadObject() // o - UDate
	if err != nil {
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // p
		return nil, err
	}
	if _, err := d.ReadInt(); err != nil { // q
		return nil, err
	}
	if _, err := d.ReadInt(); err != nil { // r
		return nil, err
	}
	if _, err := d.ReadString(); err != nil { // s
		return nil, err
	}

	return &decodedNote{
		ID:        id,
		ClassName: className,
		PlainText: plainText,
		HTML:      html,
		Date:      asTime(date),
	}, nil
}

func readAarstyp(d *Decoder, className string) (any, error) {
	if _, err := d.ReadObject(); err != nil { // a AarsagsType
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // b
		return nil, err
	}
	if _, err := d.ReadInt(); err != nil { // c
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // d AmuKode
		return nil, err
	}
	if _, err := d.ReadString(); err != nil { // e
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // f Status
		return nil, err
	}
	return RawObject{Class: className}, nil
}

func readFrareg(d *Decoder, className string) (any, error) {
	if _, err := d.ReadInt(); err != nil {
		return nil, err
	}
	if _, err := d.ReadInt(); err != nil {
		return nil, err
	}
	if _, err := d.ReadInt(); err != nil {
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil {
		return nil, err
	}
	return RawObject{Class: className}, nil
}

func readFravk(d *Decoder, className string) (any, error) {
	if _, err := d.ReadString(); err != nil {
		return nil, err
	}
	if _, err := d.ReadString(); err != nil {
		return nil, err
	}
	if _, err := d.ReadString(); err != nil {
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil {
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil {
		return nil, err
	}
	return RawObject{Class: className}, nil
}

// readSkemaelev deserializes Skemaelev (a student schedule-slot
// reference). Only the name (field f) is useful to the domain layer.
func readSkemaelev(d *Decoder, className string) (any, error) {
	if _, err := d.ReadObject(); err != nil { // a
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // b
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // c
		return nil, err
	}
	if _, err := d.ReadString(); err != nil { // d
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // e
		return nil, err
	}
	name, err := d.ReadString() // f
	if err != nil {
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // g
		return nil, err
	}
	if _, err := d.ReadString(); err != nil { // i
		return nil, err
	}
	if _, err := d.ReadString(); err != nil { // pb
		return nil, err
	}
	return RawObject{Class: className, Fields: map[string]any{"name": name}}, nil
}

// readSkemaUvfo deserializes SkemaUvfo (a teaching-sequence schedule
// reference). Only the name (field d) is useful to the domain layer.
func readSkemaUvfo(d *Decoder, className string) (any, error) {
	if _, err := d.ReadInt(); err != nil { // a
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // b UDate
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // c UDate
		return nil, err
	}
	name, err := d.ReadString() // d
	if err != nil {
		return nil, err
	}
	if _, err := d.ReadInt(); err != nil { // e
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // f UDate
		return nil, err
	}
	if _, err := d.ReadString(); err != nil { // g
		return nil, err
	}
	if _, err := d.ReadInt(); err != nil { // skip
		return nil, err
	}
	if _, err := d.ReadInt(); err != nil { // i
		return nil, err
	}
	if _, err := d.ReadInt(); err != nil { // j
		return nil, err
	}
	if _, err := d.ReadInt(); err != nil { // k
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // n UDate
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // o UDate
		return nil, err
	}
	return RawObject{Class: className, Fields: map[string]any{"name": name}}, nil
}

// decodedAssignment is the full-fidelity intermediate result for
// Aflevering+OpgaveElev+AfleveringBedoemmelse, assembled by readAflevering.
type decodedAssignment struct {
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
}

// readAflevering deserializes Aflevering (the submission wrapper): a
// submission UDate, an AfleveringBedoemmelse, the container id used for
// the file-resource lookup, two opaque objects, two booleans, another
// opaque object, the OpgaveElev payload (subject/title/hours/deadline),
// an opaque object, the AfleveringStatus enum, and a trailing boolean.
func readAflevering(d *Decoder, _ string) (any, error) {
	submission, err := d.ReadObject() // a UDate
	if err != nil {
		return nil, err
	}
	bedoemmelse, err := d.ReadObject() // b AfleveringBedoemmelse
	if err != nil {
		return nil, err
	}
	containerID, err := d.ReadInt() // c
	if err != nil {
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // d
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // e
		return nil, err
	}
	if _, err := d.ReadBool(); err != nil { // f
		return nil, err
	}
	if _, err := d.ReadBool(); err != nil { // g
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // i
		return nil, err
	}
	opgaveElev, err := d.ReadObject() // j OpgaveElev
	if err != nil {
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // k
		return nil, err
	}
	status, err := d.ReadObject() // n AfleveringStatus
	if err != nil {
		return nil, err
	}
	if _, err := d.ReadBool(); err != nil { // o
		return nil, err
	}

	a := &decodedAssignment{
		ContainerID:    containerID,
		Submitted:      !asTime(submission).IsZero(),
		SubmissionDate: asTime(submission),
	}
	if ro, ok := status.(RawObject); ok {
		a.StatusOrdinal = ro.intv("ordinal")
	}
	if oe, ok := opgaveElev.(*decodedOpgaveElev); ok {
		a.Subject = oe.Subject
		a.Title = oe.Title
		a.Description = oe.Description
		a.Deadline = oe.Deadline
		a.BudgetHours = oe.BudgetHours
		a.SpentHours = oe.SpentHours
		a.ClassName = oe.ClassName
		a.WeekNumber = oe.WeekNumber
	}
	if eval, ok := bedoemmelse.(*decodedEvaluation); ok {
		a.Evaluated = eval.Grade != "" || !eval.Date.IsZero()
		a.EvaluationDate = eval.Date
		a.Grade = eval.Grade
	}

	return a, nil
}

type decodedOpgaveElev struct {
	Subject     string
	Title       string
	Description string
	ClassName   string
	Deadline    time.Time
	BudgetHours float64
	SpentHours  float64
	WeekNumber  int
}

// readOpgaveElev deserializes OpgaveElev (the per-student assignment
// detail carrying subject/title/hours/deadline), 20 fields in order:
// f, g, i, j, k, n, o, p, q, r, s, t, u, v, w, A, B, C, D, F.
func readOpgaveElev(d *Decoder, _ string) (any, error) {
	deadlineHint, err := d.ReadObject() // f - shown as the deadline in the UI
	if err != nil {
		return nil, err
	}
	if _, err := d.ReadInt(); err != nil { // g - opgave id
		return nil, err
	}
	className, err := d.ReadString() // i
	if err != nil {
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // j
		return nil, err
	}
	description, err := d.ReadString() // k
	if err != nil {
		return nil, err
	}
	budgetHours, err := d.ReadFloat() // n
	if err != nil {
		return nil, err
	}
	spentHours, err := d.ReadFloat() // o
	if err != nil {
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // p
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // q
		return nil, err
	}
	week, err := d.ReadInt() // r
	if err != nil {
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // s
		return nil, err
	}
	if _, err := d.ReadInt(); err != nil { // t
		return nil, err
	}
	if _, err := d.ReadInt(); err != nil { // u
		return nil, err
	}
	// v and A read in this order despite the names below: the source's own
	// comments label v "TITLE" and A "SUBJECT", but its returned dict
	// actually assigns subject=v, title=A — this follows the executed
	// assignment, not the stale comment.
	subject, err := d.ReadString() // v
	if err != nil {
		return nil, err
	}
	if _, err := d.ReadBool(); err != nil { // w
		return nil, err
	}
	title, err := d.ReadString() // A
	if err != nil {
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // B
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // C - start date UDate, unused
		return nil, err
	}
	deadline, err := d.ReadObject() // D
	if err != nil {
		return nil, err
	}
	if _, err := d.ReadBool(); err != nil { // F
		return nil, err
	}

	dl := asTime(deadline)
	if dl.IsZero() {
		dl = asTime(deadlineHint)
	}

	return &decodedOpgaveElev{
		Subject:     subject,
		Title:       title,
		Description: description,
		ClassName:   className,
		Deadline:    dl,
		BudgetHours: budgetHours,
		SpentHours:  spentHours,
		WeekNumber:  week,
	}, nil
}

type decodedEvaluation struct {
	Date  time.Time
	Grade string
}

// readAfleveringBedoemmelse deserializes AfleveringBedoemmelse (a
// teacher's evaluation of an assignment): id, evaluation UDate, two
// strings (the grade is the second), an int, and two opaque objects.
func readAfleveringBedoemmelse(d *Decoder, _ string) (any, error) {
	if _, err := d.ReadInt(); err != nil { // a
		return nil, err
	}
	date, err := d.ReadObject() // b
	if err != nil {
		return nil, err
	}
	if _, err := d.ReadString(); err != nil { // c
		return nil, err
	}
	grade, err := d.ReadString() // d
	if err != nil {
		return nil, err
	}
	if _, err := d.ReadInt(); err != nil { // e
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // f
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // g
		return nil, err
	}
	return &decodedEvaluation{Date: asTime(date), Grade: grade}, nil
}

type brugerBase struct {
	Name     string
	Initials string
}

// readBrugerBase deserializes the 24-field Bruger base class shared by
// Medarbejder and Elev.
func readBrugerBase(d *Decoder) (brugerBase, error) {
	for _, kind := range []byte{'o', 'o', 's', 'o', 's', 's', 'o'} {
		if kind == 's' {
			if _, err := d.ReadString(); err != nil {
				return brugerBase{}, err
			}
		} else {
			if _, err := d.ReadObject(); err != nil {
				return brugerBase{}, err
			}
		}
	}
	initials, err := d.ReadString() // c8c
	if err != nil {
		return brugerBase{}, err
	}
	if _, err := d.ReadObject(); err != nil { // d8c
		return brugerBase{}, err
	}
	name, err := d.ReadString() // e8c
	if err != nil {
		return brugerBase{}, err
	}
	if _, err := d.ReadString(); err != nil { // f8c
		return brugerBase{}, err
	}
	for i := 0; i < 6; i++ { // g8c..l8c
		if _, err := d.ReadObject(); err != nil {
			return brugerBase{}, err
		}
	}
	for i := 0; i < 2; i++ { // m8c, n8c
		if _, err := d.ReadObject(); err != nil {
			return brugerBase{}, err
		}
	}
	for i := 0; i < 3; i++ { // o8c, p8c, q8c
		if _, err := d.ReadString(); err != nil {
			return brugerBase{}, err
		}
	}
	if _, err := d.ReadString(); err != nil { // pb (role)
		return brugerBase{}, err
	}
	return brugerBase{Name: name, Initials: initials}, nil
}

// readMedarbejderBruger deserializes Medarbejder (a teacher account): an
// object, two ints, a string (initials), then the Bruger base fields.
func readMedarbejderBruger(d *Decoder, className string) (any, error) {
	if _, err := d.ReadObject(); err != nil {
		return nil, err
	}
	if _, err := d.ReadInt(); err != nil {
		return nil, err
	}
	if _, err := d.ReadInt(); err != nil {
		return nil, err
	}
	initials, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	base, err := readBrugerBase(d)
	if err != nil {
		return nil, err
	}
	if initials == "" {
		initials = base.Initials
	}
	return RawObject{Class: className, Fields: map[string]any{"navn": base.Name, "initialer": initials}}, nil
}

// readElevBruger deserializes Elev (a student account): 15 Elev-specific
// fields, then the shared Bruger base fields.
func readElevBruger(d *Decoder, className string) (any, error) {
	if _, err := d.ReadObject(); err != nil { // J8c
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // K8c
		return nil, err
	}
	if _, err := d.ReadBool(); err != nil { // L8c
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // M8c UDate
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // N8c UDate
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // O8c
		return nil, err
	}
	if _, err := d.ReadBool(); err != nil { // P8c
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // Q8c
		return nil, err
	}
	elevnr, err := d.ReadString() // R8c
	if err != nil {
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // S8c UDate
		return nil, err
	}
	if _, err := d.ReadString(); err != nil { // T8c
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // U8c
		return nil, err
	}
	if _, err := d.ReadBool(); err != nil { // V8c
		return nil, err
	}
	klasse, err := d.ReadString() // W8c
	if err != nil {
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // X8c UDate
		return nil, err
	}

	base, err := readBrugerBase(d)
	if err != nil {
		return nil, err
	}

	return RawObject{Class: className, Fields: map[string]any{
		"navn": base.Name, "elevnr": elevnr, "klasse": klasse,
	}}, nil
}

// readUndervisningsforloebResume deserializes UndervisningsforloebResume
// (a course summary): title, start UDate, end UDate.
func readUndervisningsforloebResume(d *Decoder, _ string) (any, error) {
	title, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	start, err := d.ReadObject()
	if err != nil {
		return nil, err
	}
	end, err := d.ReadObject()
	if err != nil {
		return nil, err
	}
	return RawObject{Class: "UndervisningsforloebResume", Fields: map[string]any{
		"title": title, "start": asTime(start), "end": asTime(end),
	}}, nil
}

// readPersSkemaData deserializes PersSkemaData, the top-level response
// envelope for a schedule poll. Only field d (the lesson list) is
// propagated; the scanner usually bypasses this reader entirely by
// locating SkemaBegivenhed markers directly, but a direct decode of the
// envelope is kept working for completeness and for tests that exercise
// the dispatcher end-to-end.
func readPersSkemaData(d *Decoder, _ string) (any, error) {
	if _, err := d.ReadObject(); err != nil { // a
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // b UDate
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // c
		return nil, err
	}
	lessons, err := d.ReadObject() // d - ArrayList<SkemaBegivenhed>
	if err != nil {
		return nil, err
	}
	for _, field := range []byte{'o', 'o', 'o'} { // e, f, g
		_ = field
		if _, err := d.ReadObject(); err != nil {
			return nil, err
		}
	}
	if _, err := d.ReadObject(); err != nil { // i
		return nil, err
	}
	for i := 0; i < 5; i++ { // j, k, n, o, p
		if _, err := d.ReadInt(); err != nil {
			return nil, err
		}
	}
	if _, err := d.ReadObject(); err != nil { // q
		return nil, err
	}
	if _, err := d.ReadBool(); err != nil { // r
		return nil, err
	}
	if _, err := d.ReadInt(); err != nil { // s
		return nil, err
	}
	if _, err := d.ReadInt(); err != nil { // t
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // u UDate
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // v
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // w ArrayList
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // A
		return nil, err
	}
	if _, err := d.ReadObject(); err != nil { // B
		return nil, err
	}

	list, _ := lessons.([]any)
	return RawObject{Class: "PersSkemaData", Fields: map[string]any{"lessons": list}}, nil
}

// Package transport implements the HTTP/GWT-RPC transport layer that talks
// to one StudiePlus institution: institution discovery, two-step login,
// GWT-RPC envelope calls, and the per-method payload templates each domain
// operation needs (§5, §6 of SPEC_FULL.md).
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ccoodduu/studieplus-scraper/client"
	"github.com/ccoodduu/studieplus-scraper/wire"
)

// Config bundles the knobs Transport needs at construction time.
type Config struct {
	BaseURL         string
	Username        string
	Password        string
	School          string
	LoginTimeout    time.Duration
	RPCTimeout      time.Duration
	DownloadTimeout time.Duration
	MaxBodyBytes    int64
	DebugCaptureDir string
	Proxy           string

	// UTLSFingerprint selects an optional uTLS ClientHello fingerprint name
	// ("chrome120", "chrome131") to dial with instead of the stock Go TLS
	// stack. Empty uses the stock stack.
	UTLSFingerprint string
}

// schoolListPattern extracts the inline JSON institution list embedded in
// the landing page's bootstrap script.
var schoolListPattern = regexp.MustCompile(`const data = JSON\.parse\('(.+?)'\);`)

type school struct {
	Navn   string `json:"navn"`
	Instnr string `json:"instnr"`
}

// Transport holds one authenticated HTTP session against a single
// institution's GWT endpoints.
//
// Architecture notes:
//   - One *http.Client per Transport, built by client.NewHTTPClient so the
//     cookie jar carries the session cookie across every call.
//   - A sync.RWMutex protects instnr and loggedIn, the only fields mutated
//     after construction; every other field is set once in New and never
//     mutated, so it can be read without locking.
//   - skemaPermutation/opgavePermutation are the GWT module strong-name
//     hashes baked into the institution's compiled JS. They drift whenever
//     StudiePlus redeploys; a //EX response whose body mentions
//     "SerializationException" or "permutation" is surfaced as
//     ErrStaleHashes so an operator knows to refresh them rather than
//     treating it as an ordinary RPC failure.
type Transport struct {
	cfg    Config
	client *http.Client

	mu       sync.RWMutex
	instnr   string
	loggedIn bool

	skemaPermutation  string
	opgavePermutation string

	drift *SchemaDriftDetector
}

// New constructs a Transport. It does not perform any network I/O; call
// Login to authenticate.
func New(cfg Config) (*Transport, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://all.studieplus.dk"
	}
	var hc *http.Client
	if cfg.UTLSFingerprint != "" {
		helloID, err := client.ResolveUTLSFingerprint(cfg.UTLSFingerprint)
		if err != nil {
			return nil, fmt.Errorf("transport: %w", err)
		}
		hc, err = client.NewHTTPClientWithTLS(cfg.Proxy, cfg.RPCTimeout, helloID)
		if err != nil {
			return nil, fmt.Errorf("transport: build uTLS http client: %w", err)
		}
	} else {
		var err error
		hc, err = client.NewHTTPClient(cfg.Proxy, cfg.RPCTimeout)
		if err != nil {
			return nil, fmt.Errorf("transport: build http client: %w", err)
		}
	}
	return &Transport{
		cfg:    cfg,
		client: hc,
		// GWT module hashes observed from the production client; they only
		// need updating when StudiePlus redeploys the skema/opgave modules.
		skemaPermutation:  "B0742ABB769CAA45E3CD75BA219C6E04",
		opgavePermutation: "ED91C3E5761A98C33045A799A1B8B8B1",
		drift:             NewSchemaDriftDetector(),
	}, nil
}

// CheckDrift parses body as a GWT-RPC envelope and reports any schema drift
// against the learned baseline for method (an arbitrary caller-chosen label
// such as "schedule" or "assignments"). A parse failure is reported as an
// error rather than silently skipping the check, since a change big enough
// to break envelope parsing is itself the most important drift signal.
func (t *Transport) CheckDrift(method, body string) ([]Drift, error) {
	env, err := wire.ParseEnvelope([]byte(body))
	if err != nil {
		return nil, err
	}
	return t.drift.Observe(method, wire.ClassMarkers(env)), nil
}

// LoggedIn reports whether Login has completed successfully.
func (t *Transport) LoggedIn() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.loggedIn
}

// Login discovers the institution number for cfg.School and performs the
// two-step StudiePlus login (institution selection, then credentials). It is
// idempotent: a second call on an already-logged-in Transport returns nil
// immediately without any network I/O.
func (t *Transport) Login(ctx context.Context) error {
	if t.LoggedIn() {
		return nil
	}

	instnr, err := t.findSchoolInstnr(ctx)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.instnr = instnr
	t.mu.Unlock()

	jarURL := t.cfg.BaseURL + "/"
	t.setCookie(jarURL, "instkey", instnr)
	t.setCookie(jarURL, "instnr", instnr)

	// First POST selects the institution's direct-login flow.
	if _, err := t.postForm(ctx, "/login/doLogin", map[string]string{
		"instnr":     instnr,
		"acr_values": "",
		"how":        "DIREKTE",
	}); err != nil {
		return &Error{Kind: ErrAuthFailed, URL: t.cfg.BaseURL + "/login/doLogin", Err: err}
	}

	resp, err := t.postForm(ctx, "/login/doLogin", map[string]string{
		"instnr": instnr,
		"user":   t.cfg.Username,
		"pass":   t.cfg.Password,
		"how":    "DIREKTE",
	})
	if err != nil {
		return &Error{Kind: ErrAuthFailed, URL: t.cfg.BaseURL + "/login/doLogin", Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	finalURL := resp.Request.URL.String()
	if !strings.Contains(finalURL, "skema") && !strings.Contains(finalURL, "forside") {
		return &Error{Kind: ErrAuthFailed, URL: finalURL}
	}

	t.mu.Lock()
	t.loggedIn = true
	t.mu.Unlock()
	return nil
}

// findSchoolInstnr fetches the landing page and extracts the institution
// number matching cfg.School from the embedded institution list.
func (t *Transport) findSchoolInstnr(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.cfg.BaseURL+"/", nil)
	if err != nil {
		return "", fmt.Errorf("transport: build landing page request: %w", err)
	}
	client.ChromeOrderedHeaders().ApplyToRequest(req)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", classifyDoErr(err, t.cfg.BaseURL+"/")
	}
	defer resp.Body.Close()

	reader, err := decompressBody(resp)
	if err != nil {
		return "", fmt.Errorf("transport: decompress landing page: %w", err)
	}
	body, err := io.ReadAll(io.LimitReader(reader, t.maxBody()))
	if err != nil {
		return "", fmt.Errorf("transport: read landing page: %w", err)
	}

	m := schoolListPattern.FindSubmatch(body)
	if m == nil {
		return "", &Error{Kind: ErrSchoolNotFound}
	}
	jsonStr := strings.ReplaceAll(string(m[1]), `\`, "")

	var schools []school
	if err := json.Unmarshal([]byte(jsonStr), &schools); err != nil {
		return "", fmt.Errorf("transport: parse institution list: %w", err)
	}
	for _, s := range schools {
		if s.Navn == t.cfg.School {
			return s.Instnr, nil
		}
	}
	return "", &Error{Kind: ErrSchoolNotFound}
}

func (t *Transport) postForm(ctx context.Context, path string, form map[string]string) (*http.Response, error) {
	vals := make([]string, 0, len(form))
	for k, v := range form {
		vals = append(vals, k+"="+v)
	}
	body := strings.NewReader(strings.Join(vals, "&"))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, classifyDoErr(err, t.cfg.BaseURL+path)
	}
	return resp, nil
}

func (t *Transport) setCookie(rawURL, name, value string) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return
	}
	jar := t.client.Jar
	if jar == nil {
		return
	}
	jar.SetCookies(req.URL, []*http.Cookie{{Name: name, Value: value}})
}

// encodeDate renders a time.Time as a GWT-RPC date literal: a year-1900 /
// zero-based-month tuple matching java.util.Date's legacy constructor
// semantics, with an all-zero time-of-day component (the schedule/homework
// range endpoints are always whole days).
func encodeDate(year, month, day int) string {
	return fmt.Sprintf("5|6|%d|%d|%d|0|0|0|", year-1900, month-1, day)
}

func (t *Transport) maxBody() int64 {
	if t.cfg.MaxBodyBytes <= 0 {
		return 8 * 1024 * 1024
	}
	return t.cfg.MaxBodyBytes
}

// gwtHeaders builds the four headers every GWT-RPC call requires, in the
// order the production client sends them.
func gwtHeaders(baseURL, permutation, module string) *client.OrderedHeader {
	h := &client.OrderedHeader{}
	h.Add("Content-Type", "text/x-gwt-rpc; charset=UTF-8")
	h.Add("X-GWT-Permutation", permutation)
	h.Add("X-GWT-Module-Base", fmt.Sprintf("%s/%s/%s/", baseURL, module, module))
	h.Add("modulename", module)
	return h
}

// rpcCall POSTs payload to serviceURL with GWT-RPC headers and returns the
// raw response body. It classifies //EX bodies that mention either
// "SerializationException" or "permutation" as ErrStaleHashes so callers can
// surface a distinct, actionable error instead of a generic decode failure.
func (t *Transport) rpcCall(ctx context.Context, serviceURL, payload, permutation, module string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serviceURL, strings.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("transport: build rpc request: %w", err)
	}
	gwtHeaders(t.cfg.BaseURL, permutation, module).ApplyToRequest(req)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", classifyDoErr(err, serviceURL)
	}
	defer resp.Body.Close()

	reader, err := decompressBody(resp)
	if err != nil {
		return "", fmt.Errorf("transport: decompress response from %s: %w", serviceURL, err)
	}
	body, err := io.ReadAll(io.LimitReader(reader, t.maxBody()))
	if err != nil {
		return "", fmt.Errorf("transport: read response from %s: %w", serviceURL, err)
	}
	text := string(body)

	t.captureDebug(serviceURL, text)

	if strings.HasPrefix(text, "//EX") && (strings.Contains(text, "SerializationException") || strings.Contains(text, "permutation")) {
		return "", &Error{Kind: ErrStaleHashes, URL: serviceURL, Err: fmt.Errorf("%s", strings.TrimSpace(text[4:]))}
	}
	return text, nil
}

// captureDebug writes text to cfg.DebugCaptureDir, if configured, mirroring
// the reference scraper's DEBUG_SAVE_RAW_RESPONSES flag. Errors are ignored:
// debug capture must never fail a real call.
func (t *Transport) captureDebug(serviceURL, text string) {
	if t.cfg.DebugCaptureDir == "" {
		return
	}
	name := fmt.Sprintf("gwt_response_%d.txt", time.Now().UnixNano())
	_ = os.MkdirAll(t.cfg.DebugCaptureDir, 0o755)
	_ = os.WriteFile(filepath.Join(t.cfg.DebugCaptureDir, name), []byte(serviceURL+"\n"+text), 0o644)
}

func classifyDoErr(err error, url string) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: ErrTimeout, URL: url, Err: err}
	case errors.Is(err, context.Canceled):
		return &Error{Kind: ErrCancelled, URL: url, Err: err}
	default:
		if ue, ok := err.(interface{ Timeout() bool }); ok && ue.Timeout() {
			return &Error{Kind: ErrTimeout, URL: url, Err: err}
		}
		return &Error{Kind: ErrHTTPStatus, URL: url, Err: err}
	}
}

// ---- per-method payload builders -------------------------------------

// GetSchedule fetches the raw GWT-RPC response for the lessons scheduled
// between start and end (inclusive day bounds).
func (t *Transport) GetSchedule(ctx context.Context, start, end time.Time) (string, error) {
	payload := "7|0|6|" +
		t.cfg.BaseURL + "/skema/skema/|" +
		"83C0398D428292FBFA6ED34FEEEA605B|" +
		"dk.uddata.services.interfaces.SkemaService|" +
		"hentEgnePersSkemaData|" +
		"dk.uddata.gwt.comm.shared.UDate/2314285719|" +
		"UDate:|" +
		"1|2|3|4|2|5|5|" +
		encodeDate(start.Year(), int(start.Month()), start.Day()) +
		encodeDate(end.Year(), int(end.Month()), end.Day())

	return t.rpcCall(ctx, t.cfg.BaseURL+"/skema/skema/skemaservice", payload, t.skemaPermutation, "skema")
}

// GetNotesInRange fetches the raw GWT-RPC response for every schedule note
// (SkemaNote2) posted between start and end.
func (t *Transport) GetNotesInRange(ctx context.Context, start, end time.Time) (string, error) {
	payload := "7|0|6|" +
		t.cfg.BaseURL + "/skema/skema/|" +
		"366DFB19BE92393600809C88D33DD15A|" +
		"dk.uddata.services.interfaces.AktivitetskalenderService|" +
		"hentAlleMineBeskeder|" +
		"dk.uddata.gwt.comm.shared.UDate/2314285719|" +
		"UDate:|" +
		"1|2|3|4|2|5|5|" +
		encodeDate(start.Year(), int(start.Month()), start.Day()) +
		encodeDate(end.Year(), int(end.Month()), end.Day())

	return t.rpcCall(ctx, t.cfg.BaseURL+"/skema/skema/aktivitetskalenderservice", payload, t.skemaPermutation, "skema")
}

// GetNoteForLesson fetches the SkemaNote2 response for a single lesson ID.
func (t *Transport) GetNoteForLesson(ctx context.Context, skemaID int) (string, error) {
	payload := "7|0|5|" +
		t.cfg.BaseURL + "/skema/skema/|" +
		"EB1BAA9F2AD8A53B59DC22F1082E0E1B|" +
		"dk.uddata.services.interfaces.SkemaNote2Service|" +
		"hentNoteForSkema|" +
		"I|" +
		"1|2|3|4|1|5|" + strconv.Itoa(skemaID) + "|"

	return t.rpcCall(ctx, t.cfg.BaseURL+"/skema/skema/skemanoteservice", payload, t.skemaPermutation, "skema")
}

// GetAssignments fetches every assignment (Aflevering) for the logged-in
// student.
func (t *Transport) GetAssignments(ctx context.Context) (string, error) {
	payload := "7|0|4|" +
		t.cfg.BaseURL + "/opgave/opgave/|" +
		"459B74E0E07134BC40784E117D837355|" +
		"dk.uddata.services.interfaces.OpgaveService|" +
		"getAlleAfleveringer|" +
		"1|2|3|4|0|"

	return t.rpcCall(ctx, t.cfg.BaseURL+"/opgave/opgave/opgaveservice", payload, t.opgavePermutation, "opgave")
}

// GetAssignmentDetail fetches a single assignment's detail record
// (OpgaveElev + evaluation) by assignment ID.
func (t *Transport) GetAssignmentDetail(ctx context.Context, afleveringID int) (string, error) {
	payload := "7|0|5|" +
		t.cfg.BaseURL + "/opgave/opgave/|" +
		"459B74E0E07134BC40784E117D837355|" +
		"dk.uddata.services.interfaces.OpgaveService|" +
		"getAflevering|" +
		"I|" +
		"1|2|3|4|1|5|" + strconv.Itoa(afleveringID) + "|"

	return t.rpcCall(ctx, t.cfg.BaseURL+"/opgave/opgave/opgaveservice", payload, t.opgavePermutation, "opgave")
}

// ContainerKind distinguishes the two containers RessourceService serves
// files from.
type ContainerKind int

const (
	// ContainerSkema addresses files attached to a lesson.
	ContainerSkema ContainerKind = 12
	// ContainerOpgave addresses files attached to an assignment.
	ContainerOpgave ContainerKind = 5
)

// GetFilesForContainer fetches the raw findRessourcerPerContainer response
// for containerID, scoped to kind (lesson or assignment).
func (t *Transport) GetFilesForContainer(ctx context.Context, containerID int, kind ContainerKind) (string, error) {
	payload := "7|0|6|" +
		t.cfg.BaseURL + "/skema/skema/|" +
		"09D4724C79CC98B839803FCB9CBF2218|" +
		"dk.uddata.services.interfaces.RessourceService|" +
		"findRessourcerPerContainer|" +
		"dk.uddata.model.ressourcer.RessourceKey/785242658|" +
		"dk.uddata.model.ressourcer.RessourceObjektType/3745084519|" +
		fmt.Sprintf("1|2|3|4|1|5|5|%d|6|%d|", containerID, int(kind))

	return t.rpcCall(ctx, t.cfg.BaseURL+"/skema/skema/ressourceservice", payload, t.skemaPermutation, "skema")
}

// GetFileDownloadURL fetches the signed S3 URL for one resource/file ID.
func (t *Transport) GetFileDownloadURL(ctx context.Context, fileID int) (string, error) {
	payload := "7|0|7|" +
		t.cfg.BaseURL + "/skema/skema/|" +
		"09D4724C79CC98B839803FCB9CBF2218|" +
		"dk.uddata.services.interfaces.RessourceService|" +
		"hentRessourceUrl|" +
		"I|java.lang.String/2004016611|" +
		fmt.Sprintf("1|2|3|4|2|5|%d|6|", fileID)

	return t.rpcCall(ctx, t.cfg.BaseURL+"/skema/skema/ressourceservice", payload, t.skemaPermutation, "skema")
}

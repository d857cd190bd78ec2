package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestEncodeDate(t *testing.T) {
	// 2025-11-10 -> year-1900=125, month-1=10 (November is month 11).
	got := encodeDate(2025, 11, 10)
	want := "5|6|125|10|10|0|0|0|"
	if got != want {
		t.Errorf("encodeDate = %q, want %q", got, want)
	}
}

func newTestTransport(t *testing.T, baseURL string) *Transport {
	t.Helper()
	tr, err := New(Config{
		BaseURL:      baseURL,
		Username:     "student",
		Password:     "secret",
		School:       "Test Gymnasium",
		RPCTimeout:   5 * time.Second,
		MaxBodyBytes: 1 << 20,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tr
}

func TestTransport_FindSchoolInstnr_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><script>const data = JSON.parse('[{\"navn\":\"Test Gymnasium\",\"instnr\":\"4242\"}]');</script></html>`))
	}))
	defer srv.Close()

	tr := newTestTransport(t, srv.URL)
	instnr, err := tr.findSchoolInstnr(context.Background())
	if err != nil {
		t.Fatalf("findSchoolInstnr: %v", err)
	}
	if instnr != "4242" {
		t.Errorf("instnr = %q, want 4242", instnr)
	}
}

func TestTransport_FindSchoolInstnr_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><script>const data = JSON.parse('[{\"navn\":\"Other School\",\"instnr\":\"1\"}]');</script></html>`))
	}))
	defer srv.Close()

	tr := newTestTransport(t, srv.URL)
	_, err := tr.findSchoolInstnr(context.Background())
	var te *Error
	if !errors.As(err, &te) || te.Kind != ErrSchoolNotFound {
		t.Fatalf("expected ErrSchoolNotFound, got %v", err)
	}
}

func TestTransport_Login_Success(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><script>const data = JSON.parse('[{\"navn\":\"Test Gymnasium\",\"instnr\":\"4242\"}]');</script></html>`))
	})
	mux.HandleFunc("/login/doLogin", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.FormValue("pass") != "" {
			http.Redirect(w, r, "/skema/forside", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/skema/forside", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	tr := newTestTransport(t, srv.URL)
	if err := tr.Login(context.Background()); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !tr.LoggedIn() {
		t.Fatalf("expected LoggedIn() == true")
	}
	// A second call must be a no-op (no further requests attempted); since
	// the test server would still respond correctly either way, the
	// meaningful assertion is simply that it does not error.
	if err := tr.Login(context.Background()); err != nil {
		t.Fatalf("second Login call: %v", err)
	}
}

func TestTransport_Login_Failure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><script>const data = JSON.parse('[{\"navn\":\"Test Gymnasium\",\"instnr\":\"4242\"}]');</script></html>`))
	})
	mux.HandleFunc("/login/doLogin", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login/fejl", http.StatusFound)
	})
	mux.HandleFunc("/login/fejl", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("wrong credentials"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	tr := newTestTransport(t, srv.URL)
	err := tr.Login(context.Background())
	var te *Error
	if !errors.As(err, &te) || te.Kind != ErrAuthFailed {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
	if tr.LoggedIn() {
		t.Fatalf("expected LoggedIn() == false after a failed login")
	}
}

func TestTransport_GetSchedule_StaleHashes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/skema/skema/skemaservice", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Content-Type"); got != "text/x-gwt-rpc; charset=UTF-8" {
			t.Errorf("Content-Type = %q", got)
		}
		if got := r.Header.Get("X-GWT-Permutation"); got == "" {
			t.Errorf("X-GWT-Permutation header missing")
		}
		w.Write([]byte("//EX[0,\"com.google.gwt.user.client.rpc.SerializationException: Type not found\"]"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	tr := newTestTransport(t, srv.URL)
	start := time.Date(2025, time.November, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 6)
	_, err := tr.GetSchedule(context.Background(), start, end)

	var te *Error
	if !errors.As(err, &te) || te.Kind != ErrStaleHashes {
		t.Fatalf("expected ErrStaleHashes, got %v", err)
	}
}

func TestTransport_GetAssignmentDetail_PayloadContainsID(t *testing.T) {
	var capturedBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 4096)
		n, _ := r.Body.Read(buf)
		capturedBody = string(buf[:n])
		w.Write([]byte("//OK[[],0,1]"))
	}))
	defer srv.Close()

	tr := newTestTransport(t, srv.URL)
	_, err := tr.GetAssignmentDetail(context.Background(), 987654)
	if err != nil {
		t.Fatalf("GetAssignmentDetail: %v", err)
	}
	if !strings.Contains(capturedBody, "987654") {
		t.Errorf("expected payload to contain assignment ID, got %q", capturedBody)
	}
}

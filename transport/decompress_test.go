package transport

import (
	"bytes"
	"io"
	"net/http"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
)

func TestDecompressBody_Identity(t *testing.T) {
	resp := &http.Response{Header: http.Header{}, Body: io.NopCloser(bytes.NewBufferString("//OK[]"))}
	r, err := decompressBody(resp)
	if err != nil {
		t.Fatalf("decompressBody: %v", err)
	}
	got, _ := io.ReadAll(r)
	if string(got) != "//OK[]" {
		t.Errorf("got %q, want //OK[]", got)
	}
}

func TestDecompressBody_Gzip(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	gw.Write([]byte("//OK[[],0,1]"))
	gw.Close()

	resp := &http.Response{
		Header: http.Header{"Content-Encoding": []string{"gzip"}},
		Body:   io.NopCloser(&buf),
	}
	r, err := decompressBody(resp)
	if err != nil {
		t.Fatalf("decompressBody: %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read decompressed: %v", err)
	}
	if string(got) != "//OK[[],0,1]" {
		t.Errorf("got %q", got)
	}
}

func TestDecompressBody_Brotli(t *testing.T) {
	var buf bytes.Buffer
	bw := brotli.NewWriter(&buf)
	bw.Write([]byte("//OK[[],0,1]"))
	bw.Close()

	resp := &http.Response{
		Header: http.Header{"Content-Encoding": []string{"br"}},
		Body:   io.NopCloser(&buf),
	}
	r, err := decompressBody(resp)
	if err != nil {
		t.Fatalf("decompressBody: %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read decompressed: %v", err)
	}
	if string(got) != "//OK[[],0,1]" {
		t.Errorf("got %q", got)
	}
}

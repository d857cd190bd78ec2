package wire

import (
	"errors"
	"testing"
)

func TestParseEnvelope_OK(t *testing.T) {
	body := []byte(`//OK[1,2,["a","b"],0,7]`)
	env, err := ParseEnvelope(body)
	if err != nil {
		t.Fatalf("ParseEnvelope: %v", err)
	}
	if len(env.Data) != 2 || env.Data[0] != float64(1) || env.Data[1] != float64(2) {
		t.Fatalf("unexpected data: %v", env.Data)
	}
	if len(env.Strings) != 2 || env.Strings[0] != "a" || env.Strings[1] != "b" {
		t.Fatalf("unexpected strings: %v", env.Strings)
	}
}

func TestParseEnvelope_NoOKPrefix(t *testing.T) {
	// Neither "//OK" nor "//EX": the spec requires a hard failure here, not
	// a lenient fall-through to the JSON body.
	body := []byte(`[1,["x"],0,7]`)
	_, err := ParseEnvelope(body)
	var de *DecodeError
	if !errors.As(err, &de) || de.Kind != DecodeErrorEnvelope {
		t.Fatalf("expected envelope DecodeError, got %v", err)
	}
}

func TestParseEnvelope_Exception(t *testing.T) {
	body := []byte(`//EX[0,"boom"]`)
	_, err := ParseEnvelope(body)
	var de *DecodeError
	if !errors.As(err, &de) || de.Kind != DecodeErrorRemoteException {
		t.Fatalf("expected remote exception DecodeError, got %v", err)
	}
}

func TestParseEnvelope_TooShort(t *testing.T) {
	body := []byte(`//OK[1,2]`)
	_, err := ParseEnvelope(body)
	var de *DecodeError
	if !errors.As(err, &de) || de.Kind != DecodeErrorEnvelope {
		t.Fatalf("expected envelope DecodeError, got %v", err)
	}
}

func TestParseEnvelope_MalformedJSON(t *testing.T) {
	body := []byte(`//OK{not json`)
	_, err := ParseEnvelope(body)
	var de *DecodeError
	if !errors.As(err, &de) || de.Kind != DecodeErrorEnvelope {
		t.Fatalf("expected envelope DecodeError, got %v", err)
	}
}

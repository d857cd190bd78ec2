package wire

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Envelope is a parsed GWT-RPC response: the flat element stack plus the
// string table it indexes into (§4.A).
type Envelope struct {
	// Data holds every element of the response array that precedes the
	// trailing string-table / flags / typeid triple. Index 0 of Data is the
	// bottom of the deserialization stack; the last element is its top.
	Data []any
	// Strings is the 1-based string table: Strings[i-1] is referenced by a
	// dispatcher value of i.
	Strings []string
}

const (
	okPrefix  = "//OK"
	exPrefix  = "//EX"
	trailerLen = 3 // [..., stringTable, flags, typeid] trailing elements
)

// ParseEnvelope strips the GWT-RPC status prefix, decodes the JSON array
// body, and splits off the trailing string table (§4.A). A "//EX" prefix
// yields a DecodeError of kind DecodeErrorRemoteException carrying the raw
// payload; any other shape mismatch yields DecodeErrorEnvelope.
func ParseEnvelope(body []byte) (*Envelope, error) {
	s := strings.TrimSpace(string(body))

	if strings.HasPrefix(s, exPrefix) {
		return nil, &DecodeError{Kind: DecodeErrorRemoteException, Payload: strings.TrimSpace(s[len(exPrefix):])}
	}
	if strings.HasPrefix(s, okPrefix) {
		s = s[len(okPrefix):]
	} else {
		return nil, &DecodeError{Kind: DecodeErrorEnvelope, Err: fmt.Errorf("response missing %q/%q prefix", okPrefix, exPrefix)}
	}

	var raw []any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, &DecodeError{Kind: DecodeErrorEnvelope, Err: fmt.Errorf("parse response array: %w", err)}
	}
	if len(raw) < trailerLen {
		return nil, &DecodeError{Kind: DecodeErrorEnvelope, Err: fmt.Errorf("response array too short: %d elements", len(raw))}
	}

	// The string table is the element at index -3 (third from the end);
	// the two elements after it (flags, typeid) are protocol metadata and
	// are not part of the deserialization stack.
	tableIdx := len(raw) - trailerLen
	tableRaw, ok := raw[tableIdx].([]any)
	if !ok {
		return nil, &DecodeError{Kind: DecodeErrorEnvelope, Err: fmt.Errorf("element %d is not a string table array", tableIdx)}
	}

	strs := make([]string, 0, len(tableRaw))
	for _, v := range tableRaw {
		sv, ok := v.(string)
		if !ok {
			return nil, &DecodeError{Kind: DecodeErrorEnvelope, Err: fmt.Errorf("string table entry %v is not a string", v)}
		}
		strs = append(strs, sv)
	}

	data := make([]any, tableIdx)
	copy(data, raw[:tableIdx])

	return &Envelope{Data: data, Strings: strs}, nil
}

package message

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/filetalk/filetalk/internal/errors"
)

// Required wire-format keys. A line missing any of these fails decoding.
var requiredKeys = []string{"type", "nick", "ts", "id"}

// Encode serializes a record as a single self-contained JSON line without a
// trailing newline. Unknown keys captured in Extra are written alongside the
// schema fields; schema fields win on key collision.
//
// The output never contains an embedded newline: encoding/json escapes
// control characters inside string values.
func Encode(r Record) ([]byte, error) {
	if r.Nick == "" {
		return nil, errors.NewValidationError("nick must not be empty").WithField("nick")
	}
	if !ValidType(r.Type) {
		return nil, errors.NewValidationError("unrecognized record type").
			WithField("type").
			WithValue(string(r.Type)).
			WithCause(errors.ErrUnknownType)
	}

	obj := make(map[string]any, len(r.Extra)+6)
	for k, v := range r.Extra {
		obj[k] = v
	}
	obj["type"] = string(r.Type)
	obj["nick"] = r.Nick
	obj["text"] = r.Text
	obj["ts"] = r.TS
	obj["id"] = r.ID
	obj["source"] = r.Source

	data, err := json.Marshal(obj)
	if err != nil {
		return nil, errors.NewValidationError("marshal record").WithCause(err)
	}
	return data, nil
}

// Decode parses one history line into a Record. Trailing whitespace and
// newline variance are tolerated; field presence is not.
//
// Decoding fails with a ValidationError when the line is not a JSON object,
// when a required field (type, nick, ts, id) is missing or empty, or when
// the type is outside the recognized set. Unknown keys are retained in
// Extra and survive re-encoding.
func Decode(line []byte) (Record, error) {
	line = bytes.TrimRight(line, " \t\r\n")
	if len(line) == 0 {
		return Record{}, errors.NewValidationError("empty line").WithCause(errors.ErrMalformedRecord)
	}

	var obj map[string]any
	if err := json.Unmarshal(line, &obj); err != nil {
		return Record{}, errors.NewValidationError("not a JSON object").
			WithCause(errors.Join(errors.ErrMalformedRecord, err))
	}

	for _, key := range requiredKeys {
		v, ok := obj[key]
		if !ok {
			return Record{}, errors.NewValidationError(fmt.Sprintf("missing field %q", key)).
				WithField(key).
				WithCause(errors.ErrMissingField)
		}
		if s, isStr := v.(string); !isStr || (s == "" && key != "ts") {
			return Record{}, errors.NewValidationError(fmt.Sprintf("field %q must be a non-empty string", key)).
				WithField(key).
				WithValue(v)
		}
	}

	r := Record{
		Type: Type(obj["type"].(string)),
		Nick: obj["nick"].(string),
		TS:   obj["ts"].(string),
		ID:   obj["id"].(string),
	}
	if !ValidType(r.Type) {
		return Record{}, errors.NewValidationError("unrecognized record type").
			WithField("type").
			WithValue(string(r.Type)).
			WithCause(errors.ErrUnknownType)
	}

	// text and source are optional on the wire: text may be empty for
	// presence records, and source is absent in records written by older
	// producers.
	if s, ok := obj["text"].(string); ok {
		r.Text = s
	}
	if s, ok := obj["source"].(string); ok {
		r.Source = s
	}

	delete(obj, "type")
	delete(obj, "nick")
	delete(obj, "text")
	delete(obj, "ts")
	delete(obj, "id")
	delete(obj, "source")
	if len(obj) > 0 {
		r.Extra = obj
	}

	return r, nil
}

package grading

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/apperr"
)

// AnswerKey is the canonical form of a question's correct answer: an
// unordered, non-empty set of option ids. Every legacy storage shape
// maps to exactly one AnswerKey.
type AnswerKey map[string]struct{}

// legacy object encodings: {"answer":"x"} and {"answers":["x","y"]}.
type answerObject struct {
	Answer  *string  `json:"answer"`
	Answers []string `json:"answers"`
}

// ParseAnswerKey normalizes a stored correct-answer payload. It accepts
// exactly four encodings:
//
//	"opt1"
//	["opt1","opt2"]
//	{"answer":"opt1"}
//	{"answers":["opt1","opt2"]}
//
// Anything else (empty payloads, empty sets, objects carrying both or
// neither field) is a data-integrity error. Content bugs must surface
// at the boundary rather than silently misgrade every submission.
func ParseAnswerKey(raw json.RawMessage) (AnswerKey, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, apperr.New(apperr.KindDataIntegrity, "correct answer is missing")
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, malformedKey(trimmed, err)
		}
		return keyFromIDs([]string{s}, trimmed)

	case '[':
		var ids []string
		if err := json.Unmarshal(trimmed, &ids); err != nil {
			return nil, malformedKey(trimmed, err)
		}
		return keyFromIDs(ids, trimmed)

	case '{':
		var obj answerObject
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, malformedKey(trimmed, err)
		}
		if obj.Answer != nil && len(obj.Answers) > 0 {
			return nil, apperr.Newf(apperr.KindDataIntegrity,
				"correct answer %s sets both 'answer' and 'answers'", trimmed)
		}
		if obj.Answer != nil {
			return keyFromIDs([]string{*obj.Answer}, trimmed)
		}
		if len(obj.Answers) > 0 {
			return keyFromIDs(obj.Answers, trimmed)
		}
		return nil, apperr.Newf(apperr.KindDataIntegrity,
			"correct answer %s sets neither 'answer' nor 'answers'", trimmed)

	default:
		return nil, malformedKey(trimmed, nil)
	}
}

func keyFromIDs(ids []string, raw []byte) (AnswerKey, error) {
	key := make(AnswerKey, len(ids))
	for _, id := range ids {
		if id == "" {
			return nil, apperr.Newf(apperr.KindDataIntegrity,
				"correct answer %s contains an empty option id", raw)
		}
		key[id] = struct{}{}
	}
	if len(key) == 0 {
		return nil, apperr.Newf(apperr.KindDataIntegrity, "correct answer %s is empty", raw)
	}
	return key, nil
}

func malformedKey(raw []byte, err error) error {
	return apperr.Wrap(apperr.KindDataIntegrity,
		fmt.Sprintf("correct answer %s cannot be normalized", raw), err)
}

// Contains reports whether id is part of the key.
func (k AnswerKey) Contains(id string) bool {
	_, ok := k[id]
	return ok
}

// Equals reports exact set equality: same size, same members.
func (k AnswerKey) Equals(other AnswerKey) bool {
	if len(k) != len(other) {
		return false
	}
	for id := range k {
		if _, ok := other[id]; !ok {
			return false
		}
	}
	return true
}

// IDs returns the member option ids in unspecified order.
func (k AnswerKey) IDs() []string {
	ids := make([]string, 0, len(k))
	for id := range k {
		ids = append(ids, id)
	}
	return ids
}

// MarshalJSON re-serializes the key in the canonical array encoding.
func (k AnswerKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.IDs())
}

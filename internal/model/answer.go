package model

import (
	"encoding/json"
	"fmt"
)

// AnswerKind discriminates the closed answer union.
type AnswerKind string

const (
	AnswerKindLikert AnswerKind = "likert"
	AnswerKindChoice AnswerKind = "choice"
)

// AnswerValue is a tagged union: a Likert rating (1-5) or a selected option
// index. A question never carries both; the kind tag makes invalid shapes
// unrepresentable after decoding.
type AnswerValue struct {
	Kind   AnswerKind `json:"kind"`
	Likert int        `json:"likert,omitempty"`
	Choice int        `json:"choice,omitempty"`
}

// LikertAnswer builds a Likert answer value.
func LikertAnswer(v int) AnswerValue {
	return AnswerValue{Kind: AnswerKindLikert, Likert: v}
}

// ChoiceAnswer builds a selected-option answer value.
func ChoiceAnswer(idx int) AnswerValue {
	return AnswerValue{Kind: AnswerKindChoice, Choice: idx}
}

// Valid reports whether the value is well-formed for its kind.
func (a AnswerValue) Valid() bool {
	switch a.Kind {
	case AnswerKindLikert:
		return a.Likert >= 1 && a.Likert <= 5
	case AnswerKindChoice:
		return a.Choice >= 0
	default:
		return false
	}
}

// UnmarshalJSON decodes and rejects malformed shapes in one step, so an
// AnswerValue read from a client or from Redis is always valid or an error.
func (a *AnswerValue) UnmarshalJSON(data []byte) error {
	type raw AnswerValue
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	v := AnswerValue(r)
	if !v.Valid() {
		return fmt.Errorf("invalid answer value: kind=%q likert=%d choice=%d", v.Kind, v.Likert, v.Choice)
	}
	*a = v
	return nil
}

package enrichment

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ExtractionKind identifies which step of extraction rejected the provider payload.
type ExtractionKind string

const (
	MalformedEnvelope       ExtractionKind = "malformed_envelope"
	UnexpectedEnvelopeShape ExtractionKind = "unexpected_envelope_shape"
	MalformedAnalysis       ExtractionKind = "malformed_analysis"
)

var (
	// ErrMalformedEnvelope matches payloads that are not JSON at all.
	ErrMalformedEnvelope = errors.New("provider payload is not valid JSON")
	// ErrUnexpectedEnvelopeShape matches payloads without candidates[0].content.parts[0].text.
	ErrUnexpectedEnvelopeShape = errors.New("provider payload has no candidate text")
	// ErrMalformedAnalysis matches candidate text that is not a JSON document.
	ErrMalformedAnalysis = errors.New("candidate text is not valid JSON")
)

// ExtractionError is returned by Extract. Callers treat every kind the same way; the kind is for diagnostics.
type ExtractionError struct {
	Kind ExtractionKind
	Err  error
}

func (e *ExtractionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("extraction failed: %s", e.Kind)
	}
	return fmt.Sprintf("extraction failed: %s: %v", e.Kind, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Is lets errors.Is match the kind sentinels.
func (e *ExtractionError) Is(target error) bool {
	switch target {
	case ErrMalformedEnvelope:
		return e.Kind == MalformedEnvelope
	case ErrUnexpectedEnvelopeShape:
		return e.Kind == UnexpectedEnvelopeShape
	case ErrMalformedAnalysis:
		return e.Kind == MalformedAnalysis
	}
	return false
}

// Improvement is a single improvement entry suggested by the provider.
type Improvement struct {
	Area           string
	Recommendation string
}

func (i Improvement) String() string { return i.Area + ": " + i.Recommendation }

// Suggestion is a follow-up workout suggested by the provider.
type Suggestion struct {
	Workout     string
	Description string
}

func (s Suggestion) String() string { return s.Workout + ": " + s.Description }

// Analysis is the typed form of the provider's answer. Nil narrative fields are absent.
type Analysis struct {
	Overall        *string
	Pace           *string
	HeartRate      *string
	CaloriesBurned *string
	Improvements   []Improvement
	Suggestions    []Suggestion
	Safety         []string
}

// Extract locates the candidate answer in a raw provider payload and parses it into an Analysis.
func Extract(raw string) (*Analysis, error) {
	if !json.Valid([]byte(raw)) {
		return nil, &ExtractionError{Kind: MalformedEnvelope}
	}

	text, err := candidateText([]byte(raw))
	if err != nil {
		return nil, &ExtractionError{Kind: UnexpectedEnvelopeShape, Err: err}
	}

	document := []byte(StripFences(text))
	if !json.Valid(document) {
		return nil, &ExtractionError{Kind: MalformedAnalysis}
	}
	return parseAnalysis(document), nil
}

// candidateText follows candidates[0].content.parts[0].text. Only the first element is decoded at each
// level, so malformed siblings do not affect the answer.
func candidateText(raw []byte) (string, error) {
	var root struct {
		Candidates []json.RawMessage `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &root); err != nil {
		return "", err
	}
	if len(root.Candidates) == 0 {
		return "", errors.New("candidates is empty")
	}

	var candidate struct {
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(root.Candidates[0], &candidate); err != nil {
		return "", err
	}
	if isAbsent(candidate.Content) {
		return "", errors.New("candidate has no content")
	}

	var content struct {
		Parts []json.RawMessage `json:"parts"`
	}
	if err := json.Unmarshal(candidate.Content, &content); err != nil {
		return "", err
	}
	if len(content.Parts) == 0 {
		return "", errors.New("content has no parts")
	}

	var part struct {
		Text *string `json:"text"`
	}
	if err := json.Unmarshal(content.Parts[0], &part); err != nil {
		return "", err
	}
	if part.Text == nil {
		return "", errors.New("part has no text")
	}
	return *part.Text, nil
}

func isAbsent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// StripFences removes a leading ```json (or bare ```) fence, a trailing ``` fence and surrounding whitespace.
// Text without fences is returned trimmed.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if len(text) >= 4 && strings.EqualFold(text[:4], "json") {
			text = text[4:]
		}
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func parseAnalysis(document []byte) *Analysis {
	out := &Analysis{}

	var root map[string]json.RawMessage
	if err := json.Unmarshal(document, &root); err != nil {
		return out
	}

	var sections map[string]json.RawMessage
	if raw, ok := root["analysis"]; ok {
		_ = json.Unmarshal(raw, &sections)
	}
	out.Overall = optionalText(sections["overall"])
	out.Pace = optionalText(sections["pace"])
	out.HeartRate = optionalText(sections["heartRate"])
	out.CaloriesBurned = optionalText(sections["caloriesBurned"])

	for _, entry := range objectElements(root["improvements"]) {
		out.Improvements = append(out.Improvements, Improvement{
			Area:           textOrEmpty(entry["area"]),
			Recommendation: textOrEmpty(entry["recommendation"]),
		})
	}
	for _, entry := range objectElements(root["suggestions"]) {
		out.Suggestions = append(out.Suggestions, Suggestion{
			Workout:     textOrEmpty(entry["workout"]),
			Description: textOrEmpty(entry["description"]),
		})
	}
	for _, element := range arrayElements(root["safety"]) {
		if tip := optionalText(element); tip != nil {
			out.Safety = append(out.Safety, *tip)
		}
	}
	return out
}

// optionalText reads a scalar as text. Strings are used verbatim, numbers and booleans by their literal;
// null, objects, arrays and missing values are absent.
func optionalText(raw json.RawMessage) *string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		return &s
	case '{', '[', 'n':
		return nil
	default:
		s := string(raw)
		return &s
	}
}

func textOrEmpty(raw json.RawMessage) string {
	if s := optionalText(raw); s != nil {
		return *s
	}
	return ""
}

func arrayElements(raw json.RawMessage) []json.RawMessage {
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil
	}
	return elements
}

// objectElements yields one field set per array element. Elements that are not objects yield an
// empty set, so every element still produces an entry with empty fields.
func objectElements(raw json.RawMessage) []map[string]json.RawMessage {
	elements := arrayElements(raw)
	out := make([]map[string]json.RawMessage, 0, len(elements))
	for _, element := range elements {
		var obj map[string]json.RawMessage
		_ = json.Unmarshal(element, &obj)
		out = append(out, obj)
	}
	return out
}

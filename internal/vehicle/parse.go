package vehicle

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/Simplici0/importcalc/internal/apperr"
)

// Defaults used when the model leaves year or emissions out.
const (
	DefaultModelYear = 2020
	DefaultCO2       = 180
)

// Analysis is a Description enriched with what the vision model reports about the photos.
type Analysis struct {
	Description
	Trim                   string   `json:"trim"`
	Condition              string   `json:"condition"`
	Modifications          string   `json:"modifications"`
	Confidence             int      `json:"confidence"`
	ClarificationQuestions []string `json:"clarificationQuestions"`
	PhotoRecommendations   []string `json:"photoRecommendations"`
}

// PlaceholderAnalysis wraps Placeholder with zero confidence.
func PlaceholderAnalysis() Analysis {
	return Analysis{
		Description:            Placeholder(),
		ClarificationQuestions: []string{},
		PhotoRecommendations:   []string{},
	}
}

// ParseError reports model output that could not be read as a vehicle description.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unreadable model output: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var (
	fencePattern  = regexp.MustCompile("(?m)^```[a-zA-Z]*\\s*|\\s*```$")
	objectPattern = regexp.MustCompile(`(?s)\{.*\}`)
	intPattern    = regexp.MustCompile(`-?\d+`)
	floatPattern  = regexp.MustCompile(`\d+(?:\.\d+)?`)

	strict = bluemonday.StrictPolicy()
)

// ParseAnalysis reads the model's answer. Failures are MalformedExternalResponse
// errors wrapping a *ParseError and carrying the raw text in the "raw" field.
func ParseAnalysis(text string) (Analysis, error) {
	fields, err := decodeObject(text)
	if err != nil {
		return Analysis{}, err
	}

	a := Analysis{
		Description: Description{
			Make:              cleanText(fields["make"]),
			Model:             cleanText(fields["model"]),
			ModelYear:         intOr(fields["year"], DefaultModelYear),
			EngineDescription: cleanText(fields["engine"]),
			CO2:               intOr(fields["co2"], DefaultCO2),
		},
		Trim:                   cleanText(fields["trim"]),
		Condition:              cleanText(fields["condition"]),
		Modifications:          cleanText(fields["modifications"]),
		Confidence:             clampPercent(intOr(fields["confidence"], 0)),
		ClarificationQuestions: cleanList(fields["clarificationQuestions"]),
		PhotoRecommendations:   cleanList(fields["photoRecommendations"]),
	}
	if a.CO2 < 0 {
		a.CO2 = DefaultCO2
	}
	// Unknown fuel words fall back to gasoline; the user can correct it through clarification.
	if ft, err := ParseFuelType(cleanText(fields["fuel"])); err == nil {
		a.FuelType = ft
	} else {
		a.FuelType = FuelGasoline
	}
	return a, nil
}

// decodeObject strips markdown fences and parses the first JSON object in text.
func decodeObject(text string) (map[string]any, error) {
	trimmed := fencePattern.ReplaceAllString(strings.TrimSpace(text), "")

	var fields map[string]any
	err := json.Unmarshal([]byte(trimmed), &fields)
	if err == nil && fields != nil {
		return fields, nil
	}
	if m := objectPattern.FindString(text); m != "" {
		if err = json.Unmarshal([]byte(m), &fields); err == nil && fields != nil {
			return fields, nil
		}
	}
	if err == nil {
		err = errors.New("no JSON object found")
	}
	return nil, apperr.Malformed("failed to parse model response", &ParseError{Raw: text, Err: err}).
		With("raw", text)
}

func cleanText(v any) string {
	var s string
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		s = t
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	default:
		s = fmt.Sprint(t)
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

func cleanList(v any) []string {
	out := []string{}
	items, ok := v.([]any)
	if !ok {
		if s := cleanText(v); s != "" {
			out = append(out, s)
		}
		return out
	}
	for _, item := range items {
		if s := cleanText(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// intOr reads the first integer out of a number or string such as "2018-2020" or "180 g/km".
func intOr(v any, def int) int {
	switch t := v.(type) {
	case float64:
		return int(math.Round(t))
	case string:
		if m := intPattern.FindString(t); m != "" {
			if n, err := strconv.Atoi(m); err == nil {
				return n
			}
		}
	}
	return def
}

// amount reads a money figure, ignoring currency symbols and thousands separators.
func amount(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		s := strings.NewReplacer(",", "", " ", "", "\u00a0", "").Replace(t)
		if m := floatPattern.FindString(s); m != "" {
			f, err := strconv.ParseFloat(m, 64)
			return f, err == nil
		}
	}
	return 0, false
}

func clampPercent(n int) int {
	return max(0, min(n, 100))
}

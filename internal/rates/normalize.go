package rates

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"fxetl/internal/domain"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

const sampleLimit = 300

// UnrecognizedShapeError means the payload matched none of the known
// timeseries shapes. Sample holds the head of the raw body for diagnostics.
type UnrecognizedShapeError struct {
	Sample string
}

func (e *UnrecognizedShapeError) Error() string {
	return fmt.Sprintf("unrecognized timeseries shape: %s", e.Sample)
}

// ProviderError is an API-level failure reported inside an otherwise
// successful HTTP response ("success": false payloads).
type ProviderError struct {
	Detail string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider reported an error: %s", e.Detail)
}

// envelope is a loose superset of every known provider payload.
type envelope struct {
	Success *bool           `json:"success"`
	Error   json.RawMessage `json:"error"`
	Base    string          `json:"base"`
	Source  string          `json:"source"`
	Rates   json.RawMessage `json:"rates"`
	Quotes  json.RawMessage `json:"quotes"`
}

// Normalize converts a raw timeseries payload into long-format observations.
//
// Two shapes are recognized, tried in order: a date-keyed mapping of bare
// currency codes under "rates", and a date-keyed mapping of source-prefixed
// pair codes (e.g. "USDEUR") under "quotes". Entries with null or
// non-numeric rate values are dropped; zero is kept. Rows whose base cannot
// be read from the payload get fallbackBase. The result is sorted by
// (currency_code, date), so the same body always normalizes to the same rows.
func Normalize(body []byte, fallbackBase string) ([]domain.RateObservation, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &UnrecognizedShapeError{Sample: sample(body)}
	}

	if env.Success != nil && !*env.Success {
		return nil, &ProviderError{Detail: payloadDetail(env.Error, body)}
	}

	series := decodeSeries(env.Rates)
	if series == nil {
		series = decodeSeries(env.Quotes)
	}
	if len(series) == 0 {
		return nil, &UnrecognizedShapeError{Sample: sample(body)}
	}

	source := strings.ToUpper(strings.TrimSpace(env.Source))
	base := strings.ToUpper(strings.TrimSpace(env.Base))
	if base == "" {
		base = source
	}
	if base == "" {
		base = strings.ToUpper(strings.TrimSpace(fallbackBase))
	}
	prefix := source
	if prefix == "" {
		prefix = "USD"
	}

	rows := make([]domain.RateObservation, 0, len(series))
	for date, entries := range series {
		if _, err := time.Parse(domain.DateLayout, date); err != nil {
			continue
		}
		for key, raw := range entries {
			code, ok := currencyKey(key, prefix)
			if !ok {
				continue
			}
			rate, ok := coerceRate(raw)
			if !ok {
				continue
			}
			rows = append(rows, domain.RateObservation{
				Date:         date,
				CurrencyCode: code,
				RateToBase:   rate,
				Base:         base,
			})
		}
	}
	if len(rows) == 0 {
		return nil, domain.ErrEmptyResult
	}

	slices.SortFunc(rows, func(a, b domain.RateObservation) int {
		if c := cmp.Compare(a.CurrencyCode, b.CurrencyCode); c != 0 {
			return c
		}
		return cmp.Compare(a.Date, b.Date)
	})
	return rows, nil
}

// decodeSeries unmarshals a date -> code -> value mapping, returning nil
// when the field is absent, null, or not that shape.
func decodeSeries(raw json.RawMessage) map[string]map[string]json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

// currencyKey recovers a bare 3-letter code from an inner key, stripping a
// leading source prefix from pair codes. Keys in neither form are skipped.
func currencyKey(key, prefix string) (string, bool) {
	key = strings.ToUpper(strings.TrimSpace(key))
	if len(key) == 3 {
		return key, true
	}
	if len(key) == len(prefix)+3 && strings.HasPrefix(key, prefix) {
		return key[len(prefix):], true
	}
	return "", false
}

// coerceRate turns a raw rate value into a finite float64. Null, NaN,
// infinities and anything non-numeric fail the coercion.
func coerceRate(raw json.RawMessage) (float64, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(trimmed, &f); err == nil {
		return f, finite(f)
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		return f, finite(f)
	}
	return 0, false
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func payloadDetail(errField json.RawMessage, body []byte) string {
	trimmed := bytes.TrimSpace(errField)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		return sample(trimmed)
	}
	return sample(body)
}

func sample(b []byte) string {
	s := string(bytes.TrimSpace(b))
	if len(s) > sampleLimit {
		s = s[:sampleLimit]
	}
	return s
}

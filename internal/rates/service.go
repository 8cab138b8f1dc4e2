package rates

import (
	"context"
	"fmt"
	"fxetl/internal/adapters"
	"fxetl/internal/domain"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultBatchSize     = 20
	DefaultMaxWindowDays = 365
)

// Config carries the orchestration knobs. The zero value gets the defaults.
type Config struct {
	BatchSize     int
	MaxWindowDays int
	// PrimaryKeyMissing marks a keyed provider configured without a usable
	// API key. Requests then go straight to the fallback with the forced
	// base instead of failing.
	PrimaryKeyMissing bool
}

// Service fetches an exchange-rate timeseries in symbol batches, degrading
// from the primary provider to the fallback on auth and restriction errors.
type Service struct {
	primary  adapters.RateProvider
	fallback adapters.RateProvider
	cfg      Config
}

// FetchTimeseries returns one observation per (date, currency) for the
// inclusive date window. Symbols are trimmed, uppercased, deduplicated and
// filtered to 3-letter codes before batching; the batches keep that sorted
// order, so output order is deterministic. An empty symbols slice or a
// reversed window yields an empty table, not an error. A failed batch aborts
// the whole call.
func (s *Service) FetchTimeseries(ctx context.Context, symbols []string, start, end time.Time, base string) ([]domain.RateObservation, error) {
	if len(symbols) == 0 {
		return []domain.RateObservation{}, nil
	}

	clean := SanitizeSymbols(symbols)
	if len(clean) == 0 {
		return nil, domain.ErrInvalidSymbolSet
	}

	if end.Before(start) {
		return []domain.RateObservation{}, nil
	}

	days := int(end.Sub(start).Hours()/24) + 1
	if days > s.cfg.MaxWindowDays {
		return nil, fmt.Errorf("%w: %d days requested, %d allowed", domain.ErrWindowTooLarge, days, s.cfg.MaxWindowDays)
	}

	base = strings.ToUpper(strings.TrimSpace(base))
	batches := chunkSymbols(clean, s.cfg.BatchSize)

	out := make([]domain.RateObservation, 0, len(clean)*days)
	for i, batch := range batches {
		req := domain.ProviderRequest{Symbols: batch, Start: start, End: end, Base: base}
		rows, err := s.fetchBatch(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch batch %d of %d: %w", i+1, len(batches), err)
		}
		out = append(out, rows...)
	}
	return out, nil
}

// fetchBatch walks the fallback tree for a single batch:
//   - no primary: fallback directly, base forced only when a key was missing
//   - auth failure: fallback with the forced base
//   - base restriction: same provider with the forced base, then fallback
//   - anything else: fallback with the original base
//
// A fallback failure propagates as is.
func (s *Service) fetchBatch(ctx context.Context, req domain.ProviderRequest) ([]domain.RateObservation, error) {
	if s.primary == nil {
		if s.cfg.PrimaryKeyMissing {
			logrus.Warnf("No usable API key for the configured provider, using %s with base %s instead", s.fallback.Name(), FallbackBase)
			req.Base = FallbackBase
		}
		return s.fallback.FetchTimeseries(ctx, req)
	}

	rows, err := s.primary.FetchTimeseries(ctx, req)
	if err == nil {
		return rows, nil
	}

	switch Classify(err) {
	case FailureAuth:
		logrus.Warnf("Provider %s rejected the request (%s), falling back to %s with base %s", s.primary.Name(), err, s.fallback.Name(), FallbackBase)
		req.Base = FallbackBase
		return s.fallback.FetchTimeseries(ctx, req)

	case FailureRestriction:
		logrus.Warnf("Provider %s restricts base %s, retrying with base %s", s.primary.Name(), req.Base, FallbackBase)
		req.Base = FallbackBase
		rows, retryErr := s.primary.FetchTimeseries(ctx, req)
		if retryErr == nil {
			return rows, nil
		}
		logrus.Warnf("Provider %s failed again (%s), falling back to %s", s.primary.Name(), retryErr, s.fallback.Name())
		return s.fallback.FetchTimeseries(ctx, req)

	default:
		logrus.Warnf("Provider %s failed (%s), falling back to %s with base %s", s.primary.Name(), err, s.fallback.Name(), req.Base)
		return s.fallback.FetchTimeseries(ctx, req)
	}
}

// SanitizeSymbols trims, uppercases, deduplicates and sorts the requested
// currency codes, dropping anything that is not exactly 3 characters.
func SanitizeSymbols(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	clean := make([]string, 0, len(symbols))
	for _, s := range symbols {
		code := strings.ToUpper(strings.TrimSpace(s))
		if len(code) != 3 {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		clean = append(clean, code)
	}
	slices.Sort(clean)
	return clean
}

func chunkSymbols(symbols []string, size int) [][]string {
	chunks := make([][]string, 0, (len(symbols)+size-1)/size)
	for size < len(symbols) {
		chunks = append(chunks, symbols[:size])
		symbols = symbols[size:]
	}
	if len(symbols) > 0 {
		chunks = append(chunks, symbols)
	}
	return chunks
}

func NewService(primary, fallback adapters.RateProvider, cfg Config) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.MaxWindowDays <= 0 {
		cfg.MaxWindowDays = DefaultMaxWindowDays
	}
	return &Service{primary: primary, fallback: fallback, cfg: cfg}
}

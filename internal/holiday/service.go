package holiday

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/patrickmn/go-cache"

	"hutplan-backend/config"
)

// ErrNoSource is returned when every source failed for a year.
var ErrNoSource = errors.New("no holiday source available")

// Service answers holiday lookups from the first source that succeeds and
// keeps the result in memory for the refresh interval.
type Service struct {
	country string
	refresh time.Duration
	sources []Source
	cache   *cache.Cache
	now     func() time.Time
}

// NewService builds the sources from cfg. The HTTP source is used only when
// an API URL is configured; the static table is always the last resort.
func NewService(cfg config.HolidayConfig) *Service {
	var sources []Source
	if cfg.APIURL != "" {
		sources = append(sources, NewHTTPSource(cfg.APIURL, cfg.HTTPProxy))
	}
	sources = append(sources, StaticSource{})
	return NewServiceWithSources(cfg.Country, cfg.RefreshInterval, sources...)
}

// NewServiceWithSources creates a service trying sources in order.
func NewServiceWithSources(country string, refresh time.Duration, sources ...Source) *Service {
	if refresh <= 0 {
		refresh = 24 * time.Hour
	}
	return &Service{
		country: country,
		refresh: refresh,
		sources: sources,
		cache:   cache.New(refresh, 2*refresh),
		now:     time.Now,
	}
}

// Country is the configured ISO country code.
func (s *Service) Country() string { return s.country }

// Holidays returns the holidays of year.
func (s *Service) Holidays(ctx context.Context, year int) ([]Holiday, error) {
	key := fmt.Sprintf("%s-%d", s.country, year)
	if v, found := s.cache.Get(key); found {
		return v.([]Holiday), nil
	}

	var errs []error
	for _, src := range s.sources {
		holidays, err := src.Fetch(ctx, s.country, year)
		if err != nil {
			log.Printf("Holiday source %s failed for %s: %v", src.Name(), key, err)
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		s.cache.Set(key, holidays, cache.DefaultExpiration)
		return holidays, nil
	}
	return nil, fmt.Errorf("%w for %s: %w", ErrNoSource, key, errors.Join(errs...))
}

// Between returns the holidays in [from, to).
func (s *Service) Between(ctx context.Context, from, to time.Time) ([]Holiday, error) {
	var out []Holiday
	for year := from.Year(); year <= to.Year(); year++ {
		holidays, err := s.Holidays(ctx, year)
		if err != nil {
			return nil, err
		}
		for _, h := range holidays {
			if !h.Date.Before(from) && h.Date.Before(to) {
				out = append(out, h)
			}
		}
	}
	return out, nil
}

// Run warms the cache for the current and the next year, then again on
// every refresh tick until ctx is done.
func (s *Service) Run(ctx context.Context) {
	log.Println("Starting holiday service...")
	s.warm(ctx)

	timer := time.NewTimer(s.refresh)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Holiday service shutting down.")
			return
		case <-timer.C:
			s.cache.Flush()
			s.warm(ctx)
			timer.Reset(s.refresh)
		}
	}
}

func (s *Service) warm(ctx context.Context) {
	year := s.now().Year()
	for _, y := range []int{year, year + 1} {
		if _, err := s.Holidays(ctx, y); err != nil {
			log.Printf("Warning: could not load holidays for %d: %v", y, err)
		}
	}
}

package holiday

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Holiday is a public holiday. Date is UTC midnight.
type Holiday struct {
	Date time.Time `json:"date"`
	Name string    `json:"name"`
}

// MarshalJSON writes Date as YYYY-MM-DD.
func (h Holiday) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date string `json:"date"`
		Name string `json:"name"`
	}{h.Date.Format(time.DateOnly), h.Name})
}

// Source provides the holidays of one country and year.
type Source interface {
	Name() string
	Fetch(ctx context.Context, country string, year int) ([]Holiday, error)
}

// HTTPSource reads holidays from a Nager.Date compatible JSON API.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSource creates a source for baseURL, optionally through an HTTP proxy.
func NewHTTPSource(baseURL, proxy string) *HTTPSource {
	var transport http.RoundTripper = &http.Transport{}
	if proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			log.Printf("Warning: Invalid proxy URL %q: %v. Holiday source will not use a proxy.", proxy, err)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
	}
}

func (s *HTTPSource) Name() string { return "http" }

type apiHoliday struct {
	Date      string `json:"date"`
	LocalName string `json:"localName"`
	Name      string `json:"name"`
}

// Fetch requests GET {base}/api/v3/PublicHolidays/{year}/{country}.
func (s *HTTPSource) Fetch(ctx context.Context, country string, year int) ([]Holiday, error) {
	endpoint := fmt.Sprintf("%s/api/v3/PublicHolidays/%d/%s", s.baseURL, year, url.PathEscape(country))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var items []apiHoliday
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal holiday response: %w", err)
	}

	holidays := make([]Holiday, 0, len(items))
	for _, item := range items {
		d, err := time.Parse(time.DateOnly, item.Date)
		if err != nil {
			log.Printf("Warning: skipping holiday with bad date %q", item.Date)
			continue
		}
		name := item.LocalName
		if name == "" {
			name = item.Name
		}
		holidays = append(holidays, Holiday{Date: d, Name: name})
	}
	sortHolidays(holidays)
	return holidays, nil
}

// StaticSource knows the Austrian public holidays without network access.
type StaticSource struct{}

func (StaticSource) Name() string { return "static" }

// Fetch returns the built-in table; countries other than AT are unknown.
func (StaticSource) Fetch(_ context.Context, country string, year int) ([]Holiday, error) {
	if !strings.EqualFold(country, "AT") {
		return nil, fmt.Errorf("no built-in holidays for %q", country)
	}

	fixed := func(m time.Month, d int, name string) Holiday {
		return Holiday{Date: time.Date(year, m, d, 0, 0, 0, 0, time.UTC), Name: name}
	}
	easter := easterSunday(year)
	moving := func(offset int, name string) Holiday {
		return Holiday{Date: easter.AddDate(0, 0, offset), Name: name}
	}

	holidays := []Holiday{
		fixed(time.January, 1, "Neujahr"),
		fixed(time.January, 6, "Heilige Drei Könige"),
		moving(1, "Ostermontag"),
		fixed(time.May, 1, "Staatsfeiertag"),
		moving(39, "Christi Himmelfahrt"),
		moving(50, "Pfingstmontag"),
		moving(60, "Fronleichnam"),
		fixed(time.August, 15, "Mariä Himmelfahrt"),
		fixed(time.October, 26, "Nationalfeiertag"),
		fixed(time.November, 1, "Allerheiligen"),
		fixed(time.December, 8, "Mariä Empfängnis"),
		fixed(time.December, 25, "Christtag"),
		fixed(time.December, 26, "Stefanitag"),
	}
	sortHolidays(holidays)
	return holidays, nil
}

// easterSunday uses the anonymous Gregorian algorithm.
func easterSunday(year int) time.Time {
	a := year % 19
	b, c := year/100, year%100
	d, e := b/4, b%4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i, k := c/4, c%4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func sortHolidays(h []Holiday) {
	sort.SliceStable(h, func(i, j int) bool { return h[i].Date.Before(h[j].Date) })
}

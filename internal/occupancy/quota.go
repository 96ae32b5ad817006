package occupancy

import (
	"encoding/json"
	"time"

	"hutplan-backend/internal/parse"
)

// QuotaDay is the quota contribution folded into one day of a report.
type QuotaDay struct {
	Places   Places    `json:"places"`
	From     time.Time `json:"dateFrom"`
	To       time.Time `json:"dateTo"`
	MultiDay bool      `json:"multiDay"`
	// Names of the contributing quotas in input order.
	Names []string `json:"names,omitempty"`
}

// MarshalJSON writes the span boundaries as YYYY-MM-DD, or null on days
// without an active quota.
func (q QuotaDay) MarshalJSON() ([]byte, error) {
	type quotaDay QuotaDay
	var from, to *string
	if !q.From.IsZero() {
		f, t := q.From.Format(time.DateOnly), q.To.Format(time.DateOnly)
		from, to = &f, &t
	}
	return json.Marshal(struct {
		quotaDay
		From *string `json:"dateFrom"`
		To   *string `json:"dateTo"`
	}{quotaDay(q), from, to})
}

// QuotaFor folds every quota active on day into a single QuotaDay. Places are
// summed, the span is the min From / max To of the active quotas and MultiDay
// is set when the widest of them covers more than one day.
func QuotaFor(day time.Time, quotas []Quota) QuotaDay {
	day = parse.Day(day)
	var (
		out    QuotaDay
		widest int
	)
	for _, q := range quotas {
		if !q.Active(day) {
			continue
		}
		out.Places = out.Places.Add(q.Places)
		if out.From.IsZero() || q.From.Before(out.From) {
			out.From = q.From
		}
		if q.To.After(out.To) {
			out.To = q.To
		}
		if span := parse.DaysBetween(q.From, q.To); span > widest {
			widest = span
		}
		if q.Name != "" {
			out.Names = append(out.Names, q.Name)
		}
	}
	out.MultiDay = widest > 1
	return out
}

// MergeQuota returns a copy of reports with the quota fields of each day filled in.
// Days without an active quota carry zero places and MultiDay=false.
func MergeQuota(reports []DayReport, quotas []Quota) []DayReport {
	merged := make([]DayReport, len(reports))
	for i, r := range reports {
		q := QuotaFor(r.Date, quotas)
		r.Quota = &q
		merged[i] = r
	}
	return merged
}

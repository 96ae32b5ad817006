package occupancy

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"hutplan-backend/internal/parse"
)

// Reason classifies a row-level problem found while normalizing or validating.
type Reason string

const (
	ReasonBadDate          Reason = "BAD_DATE"
	ReasonNonPositiveRange Reason = "ZERO_OR_NEGATIVE_DURATION"
	ReasonNegativeWeight   Reason = "NEGATIVE_WEIGHT"
	ReasonMissingField     Reason = "MISSING_FIELD"
	ReasonCapacityExceeded Reason = "CAPACITY_EXCEEDED"
)

// ErrMalformedBatch is returned when no row of a non-empty batch carries the
// required identifiers, which points at a broken query rather than bad data.
var ErrMalformedBatch = errors.New("every row is missing required fields")

// RawRow is a reservation row as delivered by the storage layer.
type RawRow struct {
	ID         string         `json:"id"`
	ResourceID string         `json:"resourceId"`
	Start      string         `json:"start"`
	End        string         `json:"end"`
	Weight     string         `json:"weight"`
	Cancelled  bool           `json:"storno,omitempty"`
	Label      string         `json:"label,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// UnmarshalJSON accepts the weight either as a JSON number or as a string.
func (r *RawRow) UnmarshalJSON(data []byte) error {
	type rawRow RawRow
	aux := struct {
		*rawRow
		Weight json.RawMessage `json:"weight"`
	}{rawRow: (*rawRow)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Weight = string(bytes.Trim(aux.Weight, `"`))
	if r.Weight == "null" {
		r.Weight = ""
	}
	return nil
}

// RejectedRow names a row that was dropped or adjusted and why.
type RejectedRow struct {
	ID     string `json:"id"`
	Reason Reason `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// Batch is the outcome of Normalize.
type Batch struct {
	Intervals []Interval    `json:"intervals"`
	Rejected  []RejectedRow `json:"rejected,omitempty"`
	// Clamped rows were kept with their weight forced to 0.
	Clamped   []RejectedRow `json:"clamped,omitempty"`
	Cancelled int           `json:"cancelled"`
}

// Skipped is the number of rows that did not make it into Intervals, cancelled
// rows excluded.
func (b Batch) Skipped() int {
	return len(b.Rejected)
}

// Normalize turns raw rows into validated intervals. Bad rows are reported
// and skipped; they never abort the batch. Cancelled rows are dropped here and
// nowhere else.
func Normalize(rows []RawRow) (Batch, error) {
	var batch Batch
	batch.Intervals = make([]Interval, 0, len(rows))

	missing := 0
	for _, row := range rows {
		id := strings.TrimSpace(row.ID)
		resourceID := strings.TrimSpace(row.ResourceID)
		if id == "" || resourceID == "" {
			missing++
			batch.Rejected = append(batch.Rejected, RejectedRow{ID: id, Reason: ReasonMissingField, Detail: "id and resource id are required"})
			continue
		}
		if row.Cancelled {
			batch.Cancelled++
			continue
		}

		start, err := parse.Date(row.Start)
		if err != nil {
			batch.Rejected = append(batch.Rejected, RejectedRow{ID: id, Reason: ReasonBadDate, Detail: err.Error()})
			continue
		}
		end, err := parse.Date(row.End)
		if err != nil {
			batch.Rejected = append(batch.Rejected, RejectedRow{ID: id, Reason: ReasonBadDate, Detail: err.Error()})
			continue
		}
		if !end.After(start) {
			batch.Rejected = append(batch.Rejected, RejectedRow{ID: id, Reason: ReasonNonPositiveRange, Detail: row.Start + " - " + row.End})
			continue
		}

		weight, ok := parse.Weight(row.Weight)
		if !ok {
			batch.Clamped = append(batch.Clamped, RejectedRow{ID: id, Reason: ReasonNegativeWeight, Detail: row.Weight})
		}

		batch.Intervals = append(batch.Intervals, Interval{
			ID:         id,
			ResourceID: resourceID,
			Start:      start,
			End:        end,
			Weight:     weight,
			Label:      row.Label,
			Metadata:   row.Metadata,
		})
	}

	if len(rows) > 0 && missing == len(rows) {
		return Batch{}, ErrMalformedBatch
	}
	return batch, nil
}

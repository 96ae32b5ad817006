package main

import (
	"encoding/json"
	"fmt"
	"os"

	"hutplan-backend/internal/occupancy"
	"hutplan-backend/internal/parse"
)

// snapshotFile is the on-disk input of every subcommand.
type snapshotFile struct {
	Resources []occupancy.Resource `json:"resources"`
	Quotas    []quotaFile          `json:"quotas"`
	Rows      []occupancy.RawRow   `json:"rows"`
}

type quotaFile struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	DateFrom string           `json:"dateFrom"`
	DateTo   string           `json:"dateTo"`
	Places   occupancy.Places `json:"places"`
}

func loadSnapshot(path string) (occupancy.Snapshot, occupancy.Batch, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return occupancy.Snapshot{}, occupancy.Batch{}, err
	}
	var file snapshotFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return occupancy.Snapshot{}, occupancy.Batch{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	batch, err := occupancy.Normalize(file.Rows)
	if err != nil {
		return occupancy.Snapshot{}, batch, err
	}

	quotas := make([]occupancy.Quota, 0, len(file.Quotas))
	for _, q := range file.Quotas {
		from, to, err := parse.DateRange(q.DateFrom, q.DateTo)
		if err != nil {
			return occupancy.Snapshot{}, batch, fmt.Errorf("quota %s: %w", q.ID, err)
		}
		quotas = append(quotas, occupancy.Quota{ID: q.ID, Name: q.Name, From: from, To: to, Places: q.Places})
	}

	return occupancy.NewSnapshot(batch.Intervals, file.Resources, quotas), batch, nil
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"hutplan-backend/internal/occupancy"
	"hutplan-backend/internal/parse"
)

var errRejected = errors.New("assignment rejected")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hutplanctl",
		Short:         "Inspect lane layouts and occupancy of a snapshot file",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("file", "snapshot.json", "Snapshot file with resources, quotas and rows")

	root.AddCommand(newLanesCmd(), newReportCmd(), newValidateCmd())
	return root
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type lanesOutput struct {
	Rejected  []occupancy.RejectedRow `json:"rejected"`
	Clamped   []occupancy.RejectedRow `json:"clamped"`
	Cancelled int                     `json:"cancelled"`
	Groups    []laneGroup             `json:"groups"`
}

type laneGroup struct {
	ResourceID string                `json:"resourceId"`
	Lanes      int                   `json:"lanes"`
	Placements []occupancy.Placement `json:"placements"`
}

func newLanesCmd() *cobra.Command {
	var (
		master bool
		opts   occupancy.StackOptions
	)
	cmd := &cobra.Command{
		Use:   "lanes",
		Short: "Stack every resource group into lanes",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			snap, batch, err := loadSnapshot(path)
			if err != nil {
				return err
			}

			stack := occupancy.RoomStackOptions()
			if master {
				stack = occupancy.MasterStackOptions()
			}
			if cmd.Flags().Changed("tolerance") {
				stack.Tolerance = opts.Tolerance
			}
			if cmd.Flags().Changed("padding") {
				stack.Padding = opts.Padding
			}
			if cmd.Flags().Changed("inset") {
				stack.Inset = opts.Inset
			}

			layouts := snap.Lanes(stack)
			ids := make([]string, 0, len(layouts))
			for id := range layouts {
				ids = append(ids, id)
			}
			sort.Strings(ids)

			out := lanesOutput{Rejected: batch.Rejected, Clamped: batch.Clamped, Cancelled: batch.Cancelled}
			for _, id := range ids {
				layout := layouts[id]
				out.Groups = append(out.Groups, laneGroup{
					ResourceID: id,
					Lanes:      layout.LaneCount(),
					Placements: layout.Placements(snap.On(id)),
				})
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().BoolVar(&master, "master", false, "Use the overview defaults instead of the room defaults")
	cmd.Flags().Float64Var(&opts.Tolerance, "tolerance", 0, "Overlap tolerance in days")
	cmd.Flags().Float64Var(&opts.Padding, "padding", 0, "Lane padding in days")
	cmd.Flags().Float64Var(&opts.Inset, "inset", 0, "Bar inset in days")
	return cmd
}

func newReportCmd() *cobra.Command {
	var room, category, from, to string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Day-by-day occupancy of a room, a category, or all categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parse.DateRange(from, to)
			if err != nil {
				return err
			}
			path, _ := cmd.Flags().GetString("file")
			snap, _, err := loadSnapshot(path)
			if err != nil {
				return err
			}

			switch {
			case room != "":
				days, err := snap.RangeReport(room, start, end)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), days)
			case category != "":
				days, err := snap.CategoryReport(occupancy.Category(category), start, end)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), days)
			}
			days, err := snap.Histogram(start, end)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), days)
		},
	}
	cmd.Flags().StringVar(&room, "room", "", "Resource id")
	cmd.Flags().StringVar(&category, "category", "", "Category (dorm, bed, double, special)")
	cmd.Flags().StringVar(&from, "from", "", "First day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Day after the last day (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var room, id, from, to string
	var guests int
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check whether an interval fits into a room",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parse.DateRange(from, to)
			if err != nil {
				return err
			}
			path, _ := cmd.Flags().GetString("file")
			snap, _, err := loadSnapshot(path)
			if err != nil {
				return err
			}

			v, err := snap.Validate(room, occupancy.Interval{ID: id, ResourceID: room, Start: start, End: end, Weight: guests})
			if err != nil {
				return err
			}
			if err := writeJSON(cmd.OutOrStdout(), v); err != nil {
				return err
			}
			if !v.Allowed {
				return fmt.Errorf("%w: %s", errRejected, v.Reason())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&room, "room", "", "Resource id")
	cmd.Flags().StringVar(&id, "id", "", "Id of the interval being moved, empty for a new one")
	cmd.Flags().StringVar(&from, "from", "", "Arrival (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Departure (YYYY-MM-DD)")
	cmd.Flags().IntVar(&guests, "guests", 1, "Number of guests")
	_ = cmd.MarkFlagRequired("room")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

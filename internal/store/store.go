package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hutplan-backend/internal/model"
	"hutplan-backend/internal/occupancy"
)

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB
	ListRooms(ctx context.Context) ([]model.Room, error)
	ListQuotas(ctx context.Context, from, to time.Time) ([]model.Quota, error)
	LoadSnapshot(ctx context.Context, level Level, from, to time.Time) (occupancy.Snapshot, occupancy.Batch, error)
	AssignRoom(ctx context.Context, req AssignmentRequest) (AssignmentResult, error)
	DeleteAssignment(ctx context.Context, id int64) (model.RoomAssignment, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// ListRooms returns all rooms in display order.
func (s *gormStore) ListRooms(ctx context.Context) ([]model.Room, error) {
	var rooms []model.Room
	if err := s.db.WithContext(ctx).Order("display_order, id").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

// ListQuotas returns the quotas overlapping [from, to).
func (s *gormStore) ListQuotas(ctx context.Context, from, to time.Time) ([]model.Quota, error) {
	var quotas []model.Quota
	if err := s.db.WithContext(ctx).
		Where("date_from < ? AND date_to > ?", to, from).
		Order("date_from, id").
		Find(&quotas).Error; err != nil {
		return nil, fmt.Errorf("failed to list quotas: %w", err)
	}
	return quotas, nil
}

// LoadSnapshot reads rooms, quotas and the rows of the requested level that
// overlap [from, to) and normalizes them. Malformed rows are reported in the
// returned batch rather than failing the call.
func (s *gormStore) LoadSnapshot(ctx context.Context, level Level, from, to time.Time) (occupancy.Snapshot, occupancy.Batch, error) {
	rooms, err := s.ListRooms(ctx)
	if err != nil {
		return occupancy.Snapshot{}, occupancy.Batch{}, err
	}
	quotaRows, err := s.ListQuotas(ctx, from, to)
	if err != nil {
		return occupancy.Snapshot{}, occupancy.Batch{}, err
	}

	var rows []occupancy.RawRow
	switch level {
	case LevelMaster:
		rows, err = s.reservationRows(ctx, from, to)
	case LevelRoom:
		rows, err = s.assignmentRows(ctx, from, to)
	default:
		err = fmt.Errorf("unknown snapshot level %q", level)
	}
	if err != nil {
		return occupancy.Snapshot{}, occupancy.Batch{}, err
	}

	batch, err := occupancy.Normalize(rows)
	if err != nil {
		return occupancy.Snapshot{}, occupancy.Batch{}, fmt.Errorf("failed to normalize %s rows: %w", level, err)
	}
	if n := batch.Skipped(); n > 0 {
		log.Printf("Skipped %d malformed %s rows between %s and %s", n, level, from.Format(time.DateOnly), to.Format(time.DateOnly))
	}

	resources := make([]occupancy.Resource, 0, len(rooms))
	for _, r := range rooms {
		resources = append(resources, ResourceFromRoom(r))
	}
	quotas := make([]occupancy.Quota, 0, len(quotaRows))
	for _, q := range quotaRows {
		if quota, ok := QuotaFromModel(q); ok {
			quotas = append(quotas, quota)
		} else {
			log.Printf("Warning: quota %d has an empty date range, ignoring it", q.ID)
		}
	}

	return occupancy.NewSnapshot(batch.Intervals, resources, quotas), batch, nil
}

func (s *gormStore) reservationRows(ctx context.Context, from, to time.Time) ([]occupancy.RawRow, error) {
	var reservations []model.Reservation
	if err := s.db.WithContext(ctx).
		Where("arrival < ? AND departure > ?", to, from).
		Order("arrival, id").
		Find(&reservations).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch reservations: %w", err)
	}
	rows := make([]occupancy.RawRow, 0, len(reservations))
	for _, r := range reservations {
		rows = append(rows, RowFromReservation(r))
	}
	return rows, nil
}

func (s *gormStore) assignmentRows(ctx context.Context, from, to time.Time) ([]occupancy.RawRow, error) {
	var assignments []model.RoomAssignment
	if err := s.db.WithContext(ctx).
		Preload("Reservation").
		Where("arrival < ? AND departure > ?", to, from).
		Order("arrival, id").
		Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch room assignments: %w", err)
	}
	rows := make([]occupancy.RawRow, 0, len(assignments))
	for _, a := range assignments {
		rows = append(rows, RowFromAssignment(a))
	}
	return rows, nil
}

// AssignRoom validates the requested placement against a fresh read of the
// room and commits it by deleting the previous row and inserting the new one.
// Room, reservation and, for moves, the previous assignment must exist.
// When the room would be over capacity on any day nothing is written and
// ErrCapacityExceeded is returned together with the validation.
func (s *gormStore) AssignRoom(ctx context.Context, req AssignmentRequest) (AssignmentResult, error) {
	var result AssignmentResult
	if !req.Departure.After(req.Arrival) {
		return result, fmt.Errorf("assignment %s..%s: %w", req.Arrival.Format(time.DateOnly), req.Departure.Format(time.DateOnly), occupancy.ErrInvalidRange)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room model.Room
		if err := tx.First(&room, req.RoomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("room %d: %w", req.RoomID, ErrNotFound)
			}
			return fmt.Errorf("failed to load room %d: %w", req.RoomID, err)
		}
		result.Room = room

		if req.ID != 0 {
			var previous model.RoomAssignment
			if err := tx.First(&previous, req.ID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("assignment %d: %w", req.ID, ErrNotFound)
				}
				return fmt.Errorf("failed to load assignment %d: %w", req.ID, err)
			}
			if req.ReservationID == 0 {
				req.ReservationID = previous.ReservationID
			}
		}
		if req.ReservationID == 0 {
			return fmt.Errorf("assignment without reservation: %w", ErrNotFound)
		}
		if err := tx.Select("id").First(&model.Reservation{}, req.ReservationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("reservation %d: %w", req.ReservationID, ErrNotFound)
			}
			return fmt.Errorf("failed to load reservation %d: %w", req.ReservationID, err)
		}

		var existing []model.RoomAssignment
		if err := tx.
			Where("room_id = ? AND arrival < ? AND departure > ?", req.RoomID, req.Departure, req.Arrival).
			Find(&existing).Error; err != nil {
			return fmt.Errorf("failed to fetch assignments of room %d: %w", req.RoomID, err)
		}
		rows := make([]occupancy.RawRow, 0, len(existing))
		for _, a := range existing {
			rows = append(rows, RowFromAssignment(a))
		}
		batch, err := occupancy.Normalize(rows)
		if err != nil {
			return fmt.Errorf("failed to normalize assignments of room %d: %w", req.RoomID, err)
		}

		candidate := occupancy.Interval{
			ID:         candidateID(req.ID),
			ResourceID: formatID(req.RoomID),
			Start:      req.Arrival,
			End:        req.Departure,
			Weight:     req.Guests,
		}
		result.Validation = occupancy.ValidateAssignment(room.Capacity, candidate, batch.Intervals)
		if !result.Validation.Allowed {
			return ErrCapacityExceeded
		}

		if req.ID != 0 {
			if err := tx.Delete(&model.RoomAssignment{}, req.ID).Error; err != nil {
				return fmt.Errorf("failed to delete assignment %d: %w", req.ID, err)
			}
		}
		assignment := model.RoomAssignment{
			ID:            req.ID,
			ReservationID: req.ReservationID,
			RoomID:        req.RoomID,
			Arrival:       req.Arrival,
			Departure:     req.Departure,
			Guests:        req.Guests,
			Note:          req.Note,
		}
		if err := tx.Omit(clause.Associations).Create(&assignment).Error; err != nil {
			return fmt.Errorf("failed to insert assignment: %w", err)
		}
		result.Assignment = assignment
		return nil
	})
	return result, err
}

// candidateID is the interval id used for a request; new assignments get an
// id no stored row can carry.
func candidateID(id int64) string {
	if id == 0 {
		return "new"
	}
	return formatID(id)
}

// DeleteAssignment removes an assignment and returns the deleted row with its room.
func (s *gormStore) DeleteAssignment(ctx context.Context, id int64) (model.RoomAssignment, error) {
	var assignment model.RoomAssignment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Room").First(&assignment, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("assignment %d: %w", id, ErrNotFound)
			}
			return err
		}
		return tx.Delete(&model.RoomAssignment{}, id).Error
	})
	return assignment, err
}

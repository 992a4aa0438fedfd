package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/autoservice-manager/workshop-api/models"
	"github.com/autoservice-manager/workshop-api/workflow"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderInput is the full set of editable order fields
type OrderInput struct {
	CustomerID    uint
	VehicleID     uint
	Description   string
	Priority      models.Priority
	EstimatedCost decimal.Decimal
}

// OrderFilter narrows order listings
type OrderFilter struct {
	Status *models.OrderStatus
	Skip   int
	Limit  int
}

// QueueView groups orders the way the scheduling board shows them
type QueueView struct {
	Station1        []models.Order `json:"station_1"`
	Station2        []models.Order `json:"station_2"`
	Waiting         []models.Order `json:"waiting"`
	WaitingForParts []models.Order `json:"waiting_for_parts"`
	Completed       []models.Order `json:"completed"`
}

// StationInfo describes one repair bay and the order occupying it
type StationInfo struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Occupied bool   `json:"occupied"`
	OrderID  *uint  `json:"order_id"`
}

// OrderService owns order records and their lifecycle transitions
type OrderService struct {
	db *gorm.DB
}

// NewOrderService creates an order service on top of db
func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

// Create stores a new order in status new with no station
func (s *OrderService) Create(ctx context.Context, in OrderInput) (*models.Order, error) {
	db := s.db.WithContext(ctx)
	if err := validateOrderInput(db, &in); err != nil {
		return nil, err
	}

	order := models.Order{
		CustomerID:    in.CustomerID,
		VehicleID:     in.VehicleID,
		Description:   in.Description,
		Priority:      in.Priority,
		Status:        models.StatusNew,
		EstimatedCost: in.EstimatedCost,
	}
	if err := db.Create(&order).Error; err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	log.Info().Uint("order_id", order.ID).Uint("vehicle_id", order.VehicleID).Msg("order created")
	return s.Get(ctx, order.ID)
}

// Get loads an order with its customer and vehicle
func (s *OrderService) Get(ctx context.Context, id uint) (*models.Order, error) {
	return findByID[models.Order](s.db.WithContext(ctx).Preload("Customer").Preload("Vehicle"), "order", id)
}

// List returns orders by priority (urgent first) and age
func (s *OrderService) List(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{})
	if filter.Status != nil {
		if !filter.Status.Valid() {
			return nil, validationError("unknown status %q", *filter.Status)
		}
		query = query.Where("status = ?", *filter.Status)
	}

	query, err := paginate(query, filter.Skip, filter.Limit)
	if err != nil {
		return nil, err
	}

	orders := []models.Order{}
	if err := query.Preload("Customer").Preload("Vehicle").
		Order(models.PriorityOrderSQL).
		Order("created_at ASC").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// Update replaces the editable fields of an order. Status and station are
// only changed through ApplyEvent.
func (s *OrderService) Update(ctx context.Context, id uint, in OrderInput) (*models.Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := findByID[models.Order](tx, "order", id)
		if err != nil {
			return err
		}
		if order.Status == models.StatusInvoiced {
			return invalidState(id, order.Status, "edit an invoiced order")
		}
		if err := validateOrderInput(tx, &in); err != nil {
			return err
		}

		return tx.Model(order).Updates(map[string]interface{}{
			"customer_id":    in.CustomerID,
			"vehicle_id":     in.VehicleID,
			"description":    in.Description,
			"priority":       in.Priority,
			"estimated_cost": in.EstimatedCost,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint("order_id", id).Msg("order updated")
	return s.Get(ctx, id)
}

// ApplyEvent runs one lifecycle event against an order. The write is
// conditional on the status and station read, so a concurrent change makes
// this call fail instead of overwriting it.
func (s *OrderService) ApplyEvent(ctx context.Context, id uint, ev workflow.Event) (*models.Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := findByID[models.Order](tx, "order", id)
		if err != nil {
			return err
		}

		// invoicing needs a final cost and goes through InvoiceFinalizer
		if ev.Kind() == workflow.EventFinalize {
			return invalidState(id, order.Status, "invoice without a final cost")
		}

		from := workflow.StateOf(order)
		next, err := workflow.Apply(from, ev)
		if err != nil {
			log.Warn().Uint("order_id", id).Stringer("status", from.Status).Str("event", string(ev.Kind())).Msg("transition rejected")
			return invalidTransition(id, from.Status, ev.Kind())
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"status":          next.Status,
			"work_station_id": next.Station,
			"updated_at":      now,
		}
		if next.Status == models.StatusInProgress && order.StartedAt == nil {
			updates["started_at"] = now
		}
		if next.Status == models.StatusCompleted && order.CompletedAt == nil {
			updates["completed_at"] = now
		}

		query := tx.Model(&models.Order{}).Where("id = ? AND status = ?", id, from.Status)
		result := whereNullable(query, "work_station_id", from.Station).Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to update order %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			log.Warn().Uint("order_id", id).Msg("order changed concurrently, transition rejected")
			return invalidTransition(id, from.Status, ev.Kind())
		}

		event := log.Info().Uint("order_id", id).Stringer("from", from.Status).Stringer("to", next.Status)
		if next.Station != nil {
			event = event.Int("station", *next.Station)
		}
		event.Msg("order transitioned")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes an order, giving the stock of all its parts back
func (s *OrderService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findByID[models.Order](tx, "order", id); err != nil {
			return err
		}

		var parts []models.OrderPart
		if err := tx.Where("order_id = ?", id).Find(&parts).Error; err != nil {
			return fmt.Errorf("failed to load parts of order %d: %w", id, err)
		}
		for _, op := range parts {
			if err := restoreStock(tx, op.PartID, op.Quantity); err != nil {
				return err
			}
		}

		if err := tx.Where("order_id = ?", id).Delete(&models.OrderPart{}).Error; err != nil {
			return fmt.Errorf("failed to delete parts of order %d: %w", id, err)
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.Invoice{}).Error; err != nil {
			return fmt.Errorf("failed to delete invoice of order %d: %w", id, err)
		}
		if err := tx.Delete(&models.Order{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete order %d: %w", id, err)
		}

		log.Info().Uint("order_id", id).Int("parts_released", len(parts)).Msg("order deleted")
		return nil
	})
}

// Queue builds the scheduling board
func (s *OrderService) Queue(ctx context.Context) (*QueueView, error) {
	db := s.db.WithContext(ctx).Preload("Customer").Preload("Vehicle").Session(&gorm.Session{})
	active := []models.OrderStatus{models.StatusInProgress, models.StatusWaitingForParts}
	view := &QueueView{}

	queries := []struct {
		dest  *[]models.Order
		query *gorm.DB
	}{
		{&view.Station1, db.Where("work_station_id = ? AND status IN ?", 1, active).Order("started_at ASC")},
		{&view.Station2, db.Where("work_station_id = ? AND status IN ?", 2, active).Order("started_at ASC")},
		{&view.Waiting, db.Where("work_station_id IS NULL AND status = ?", models.StatusNew).
			Order(models.PriorityOrderSQL).Order("created_at ASC")},
		{&view.WaitingForParts, db.Where("work_station_id IS NULL AND status = ?", models.StatusWaitingForParts).
			Order(models.PriorityOrderSQL).Order("created_at ASC")},
		{&view.Completed, db.Where("status = ?", models.StatusCompleted).Order("completed_at ASC")},
	}

	for _, q := range queries {
		*q.dest = []models.Order{}
		if err := q.query.Find(q.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to load queue: %w", err)
		}
	}
	return view, nil
}

// Stations reports which repair bays are occupied
func (s *OrderService) Stations(ctx context.Context) ([]StationInfo, error) {
	var assigned []models.Order
	if err := s.db.WithContext(ctx).Where("work_station_id IS NOT NULL").Find(&assigned).Error; err != nil {
		return nil, fmt.Errorf("failed to load station assignments: %w", err)
	}

	stations := make([]StationInfo, 0, len(workflow.Stations))
	for _, id := range workflow.Stations {
		info := StationInfo{ID: id, Name: fmt.Sprintf("Station %d", id)}
		if occupant, ok := workflow.Occupant(assigned, id); ok {
			orderID := occupant.ID
			info.Occupied = true
			info.OrderID = &orderID
		}
		stations = append(stations, info)
	}
	return stations, nil
}

func validateOrderInput(tx *gorm.DB, in *OrderInput) error {
	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" {
		return validationError("description is required")
	}
	if in.Priority == "" {
		in.Priority = models.PriorityNormal
	}
	if !in.Priority.Valid() {
		return validationError("unknown priority %q", in.Priority)
	}
	if err := validateMoney("estimated cost", in.EstimatedCost); err != nil {
		return err
	}

	if _, err := findByID[models.Customer](tx, "customer", in.CustomerID); err != nil {
		return err
	}
	vehicle, err := findByID[models.Vehicle](tx, "vehicle", in.VehicleID)
	if err != nil {
		return err
	}
	if vehicle.CustomerID != in.CustomerID {
		return validationError("vehicle %d does not belong to customer %d", in.VehicleID, in.CustomerID)
	}
	return nil
}

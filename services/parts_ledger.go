package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/autoservice-manager/workshop-api/models"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderParts is the parts list of one order with its cost
type OrderParts struct {
	OrderID        uint               `json:"order_id"`
	Parts          []models.OrderPart `json:"parts"`
	TotalPartsCost decimal.Decimal    `json:"total_parts_cost"`
}

// PartsLedger attaches parts to orders and is the only writer of stock quantities
type PartsLedger struct {
	db *gorm.DB
}

// NewPartsLedger creates a parts ledger on top of db
func NewPartsLedger(db *gorm.DB) *PartsLedger {
	return &PartsLedger{db: db}
}

// AttachPart takes quantity units of a part from stock and records them on the
// order. unitPrice defaults to the current catalog price.
func (l *PartsLedger) AttachPart(ctx context.Context, orderID, partID uint, quantity int, unitPrice *decimal.Decimal) (*models.OrderPart, error) {
	if quantity <= 0 {
		return nil, validationError("quantity must be a positive integer")
	}
	if unitPrice != nil {
		if err := validateMoney("unit price", *unitPrice); err != nil {
			return nil, err
		}
	}

	var attached models.OrderPart
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := findByID[models.Order](tx, "order", orderID)
		if err != nil {
			return err
		}
		if order.Status == models.StatusInvoiced {
			return invalidState(orderID, order.Status, "change parts of an invoiced order")
		}

		part, err := findByID[models.Part](tx, "part", partID)
		if err != nil {
			return err
		}
		if err := takeStock(tx, partID, quantity); err != nil {
			return err
		}

		price := part.Price
		if unitPrice != nil {
			price = *unitPrice
		}
		attached = models.OrderPart{
			OrderID:   orderID,
			PartID:    partID,
			Quantity:  quantity,
			UnitPrice: price,
		}
		if err := tx.Create(&attached).Error; err != nil {
			return fmt.Errorf("failed to attach part %d to order %d: %w", partID, orderID, err)
		}
		return nil
	})
	if err != nil {
		if IsKind(err, KindInsufficientStock) {
			log.Warn().Err(err).Uint("order_id", orderID).Uint("part_id", partID).Msg("attach rejected")
		}
		return nil, err
	}

	log.Info().Uint("order_id", orderID).Uint("part_id", partID).Int("quantity", quantity).
		Str("unit_price", attached.UnitPrice.String()).Msg("part attached")
	return findByID[models.OrderPart](l.db.WithContext(ctx).Preload("Part"), "order part", attached.ID)
}

// DetachPart removes a part from an order and puts its quantity back in stock
func (l *PartsLedger) DetachPart(ctx context.Context, orderID, orderPartID uint) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := findByID[models.Order](tx, "order", orderID)
		if err != nil {
			return err
		}
		if order.Status == models.StatusInvoiced {
			return invalidState(orderID, order.Status, "change parts of an invoiced order")
		}

		var op models.OrderPart
		if err := tx.Where("id = ? AND order_id = ?", orderPartID, orderID).First(&op).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				notFoundErr := notFound("order part", orderPartID)
				notFoundErr.OrderID = orderID
				return notFoundErr
			}
			return fmt.Errorf("failed to load order part %d: %w", orderPartID, err)
		}

		if err := restoreStock(tx, op.PartID, op.Quantity); err != nil {
			return err
		}
		if err := tx.Delete(&op).Error; err != nil {
			return fmt.Errorf("failed to detach order part %d: %w", orderPartID, err)
		}

		log.Info().Uint("order_id", orderID).Uint("part_id", op.PartID).Int("quantity", op.Quantity).Msg("part detached")
		return nil
	})
}

// ListOrderParts returns the parts attached to an order and their total cost
func (l *PartsLedger) ListOrderParts(ctx context.Context, orderID uint) (*OrderParts, error) {
	db := l.db.WithContext(ctx)
	if _, err := findByID[models.Order](db, "order", orderID); err != nil {
		return nil, err
	}

	parts := []models.OrderPart{}
	if err := db.Preload("Part").Where("order_id = ?", orderID).Order("id ASC").Find(&parts).Error; err != nil {
		return nil, fmt.Errorf("failed to load parts of order %d: %w", orderID, err)
	}

	return &OrderParts{
		OrderID:        orderID,
		Parts:          parts,
		TotalPartsCost: sumLines(parts),
	}, nil
}

// TotalPartsCost sums quantity * unit price over the parts of an order
func (l *PartsLedger) TotalPartsCost(ctx context.Context, orderID uint) (decimal.Decimal, error) {
	list, err := l.ListOrderParts(ctx, orderID)
	if err != nil {
		return decimal.Zero, err
	}
	return list.TotalPartsCost, nil
}

// AdjustStock applies a manual correction or a received shipment to a part
func (l *PartsLedger) AdjustStock(ctx context.Context, partID uint, delta int) (*models.Part, error) {
	db := l.db.WithContext(ctx)
	result := db.Model(&models.Part{}).
		Where("id = ? AND stock_quantity + ? >= 0", partID, delta).
		Updates(map[string]interface{}{
			"stock_quantity": gorm.Expr("stock_quantity + ?", delta),
			"updated_at":     time.Now().UTC(),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to adjust stock of part %d: %w", partID, result.Error)
	}

	part, err := findByID[models.Part](db, "part", partID)
	if err != nil {
		return nil, err
	}
	if result.RowsAffected == 0 {
		log.Warn().Uint("part_id", partID).Int("delta", delta).Int("stock", part.StockQuantity).Msg("stock adjustment rejected")
		return nil, insufficientStock(partID, -delta, part.StockQuantity)
	}

	log.Info().Uint("part_id", partID).Int("delta", delta).Int("stock", part.StockQuantity).Msg("stock adjusted")
	return part, nil
}

// takeStock decrements stock in a single statement guarded by the stock check
func takeStock(tx *gorm.DB, partID uint, quantity int) error {
	result := tx.Model(&models.Part{}).
		Where("id = ? AND stock_quantity >= ?", partID, quantity).
		Updates(map[string]interface{}{
			"stock_quantity": gorm.Expr("stock_quantity - ?", quantity),
			"updated_at":     time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to take stock of part %d: %w", partID, result.Error)
	}
	if result.RowsAffected == 0 {
		part, err := findByID[models.Part](tx, "part", partID)
		if err != nil {
			return err
		}
		return insufficientStock(partID, quantity, part.StockQuantity)
	}
	return nil
}

// restoreStock puts quantity units back
func restoreStock(tx *gorm.DB, partID uint, quantity int) error {
	result := tx.Unscoped().Model(&models.Part{}).
		Where("id = ?", partID).
		Updates(map[string]interface{}{
			"stock_quantity": gorm.Expr("stock_quantity + ?", quantity),
			"updated_at":     time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to restore stock of part %d: %w", partID, result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound("part", partID)
	}
	return nil
}

func sumLines(parts []models.OrderPart) decimal.Decimal {
	total := decimal.Zero
	for _, op := range parts {
		total = total.Add(op.LineTotal())
	}
	return total
}

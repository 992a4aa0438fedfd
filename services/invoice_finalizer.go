package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/autoservice-manager/workshop-api/models"
	"github.com/autoservice-manager/workshop-api/workflow"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const pdfContentType = "application/pdf"

// InvoiceFinalizer freezes the final cost of completed orders and issues
// their invoice documents
type InvoiceFinalizer struct {
	db       *gorm.DB
	store    DocumentStore
	renderer *InvoiceRenderer
}

// NewInvoiceFinalizer creates a finalizer writing documents to store
func NewInvoiceFinalizer(db *gorm.DB, store DocumentStore, renderer *InvoiceRenderer) *InvoiceFinalizer {
	return &InvoiceFinalizer{db: db, store: store, renderer: renderer}
}

// Finalize invoices a completed order, or corrects the final cost of an
// already invoiced one. The status and invoice record are committed before
// the document is generated; a failed document leaves DocumentKey nil and can
// be retried with RegenerateDocument.
func (f *InvoiceFinalizer) Finalize(ctx context.Context, orderID uint, finalCost decimal.Decimal, notes *string) (*models.Invoice, error) {
	if err := validateMoney("final cost", finalCost); err != nil {
		return nil, err
	}

	var invoice models.Invoice
	err := f.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := findByID[models.Order](tx, "order", orderID)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"final_cost": decimal.NewNullDecimal(finalCost),
			"updated_at": time.Now().UTC(),
		}
		switch order.Status {
		case models.StatusCompleted:
			next, err := workflow.Apply(workflow.StateOf(order), workflow.Finalize{})
			if err != nil {
				return invalidTransition(orderID, order.Status, workflow.EventFinalize)
			}
			updates["status"] = next.Status
		case models.StatusInvoiced:
		default:
			log.Warn().Uint("order_id", orderID).Stringer("status", order.Status).Msg("finalize rejected")
			return invalidState(orderID, order.Status, "finalize")
		}

		result := tx.Model(&models.Order{}).Where("id = ? AND status = ?", orderID, order.Status).Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to finalize order %d: %w", orderID, result.Error)
		}
		if result.RowsAffected == 0 {
			return invalidTransition(orderID, order.Status, workflow.EventFinalize)
		}

		var parts []models.OrderPart
		if err := tx.Where("order_id = ?", orderID).Find(&parts).Error; err != nil {
			return fmt.Errorf("failed to load parts of order %d: %w", orderID, err)
		}

		return upsertInvoice(tx, &invoice, orderID, finalCost, sumLines(parts), notes)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint("order_id", orderID).Str("invoice_number", invoice.InvoiceNumber).
		Str("final_cost", finalCost.String()).Msg("order invoiced")

	if err := f.generateDocument(ctx, &invoice); err != nil {
		log.Warn().Err(err).Uint("order_id", orderID).Msg("invoice document pending")
	}
	f.attachURL(ctx, &invoice)
	return &invoice, nil
}

// RegenerateDocument renders and stores the document of an invoiced order again
func (f *InvoiceFinalizer) RegenerateDocument(ctx context.Context, orderID uint) (*models.Invoice, error) {
	invoice, err := f.findInvoice(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := f.generateDocument(ctx, invoice); err != nil {
		return nil, err
	}
	f.attachURL(ctx, invoice)
	return invoice, nil
}

// GetInvoice returns the invoice of an order with its download URL
func (f *InvoiceFinalizer) GetInvoice(ctx context.Context, orderID uint) (*models.Invoice, error) {
	invoice, err := f.findInvoice(ctx, orderID)
	if err != nil {
		return nil, err
	}
	f.attachURL(ctx, invoice)
	return invoice, nil
}

func (f *InvoiceFinalizer) findInvoice(ctx context.Context, orderID uint) (*models.Invoice, error) {
	db := f.db.WithContext(ctx)
	if _, err := findByID[models.Order](db, "order", orderID); err != nil {
		return nil, err
	}

	var invoice models.Invoice
	if err := db.Where("order_id = ?", orderID).First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFoundErr := notFound("invoice", orderID)
			notFoundErr.Message = fmt.Sprintf("order %d has no invoice", orderID)
			notFoundErr.OrderID = orderID
			return nil, notFoundErr
		}
		return nil, fmt.Errorf("failed to load invoice of order %d: %w", orderID, err)
	}
	return &invoice, nil
}

func (f *InvoiceFinalizer) generateDocument(ctx context.Context, invoice *models.Invoice) error {
	if f.store == nil || f.renderer == nil {
		return errors.New("no document store configured")
	}

	db := f.db.WithContext(ctx)
	order, err := findByID[models.Order](db.Preload("Customer").Preload("Vehicle"), "order", invoice.OrderID)
	if err != nil {
		return err
	}
	var parts []models.OrderPart
	if err := db.Preload("Part").Where("order_id = ?", invoice.OrderID).Order("id ASC").Find(&parts).Error; err != nil {
		return fmt.Errorf("failed to load parts of order %d: %w", invoice.OrderID, err)
	}

	content, err := f.renderer.Render(InvoiceDocument{Invoice: *invoice, Order: *order, Parts: parts})
	if err != nil {
		return err
	}

	key := fmt.Sprintf("invoices/%s/%s.pdf", invoice.InvoiceNumber, uuid.NewString())
	if err := f.store.Put(ctx, key, content, pdfContentType); err != nil {
		return fmt.Errorf("failed to store invoice document: %w", err)
	}

	// Update writes through invoice.DocumentKey, so keep the old value first
	var previous string
	if invoice.DocumentKey != nil {
		previous = *invoice.DocumentKey
	}
	if err := db.Model(invoice).Update("document_key", key).Error; err != nil {
		return fmt.Errorf("failed to record invoice document: %w", err)
	}
	invoice.DocumentKey = &key

	if previous != "" && previous != key {
		if err := f.store.Delete(ctx, previous); err != nil {
			log.Warn().Err(err).Str("key", previous).Msg("failed to delete superseded invoice document")
		}
	}

	log.Info().Uint("order_id", invoice.OrderID).Str("key", key).Msg("invoice document stored")
	return nil
}

func (f *InvoiceFinalizer) attachURL(ctx context.Context, invoice *models.Invoice) {
	if invoice.DocumentKey == nil || f.store == nil {
		return
	}
	url, err := f.store.URL(ctx, *invoice.DocumentKey)
	if err != nil {
		log.Warn().Err(err).Uint("order_id", invoice.OrderID).Msg("failed to build invoice document URL")
		return
	}
	invoice.DocumentURL = &url
}

func upsertInvoice(tx *gorm.DB, invoice *models.Invoice, orderID uint, total, partsCost decimal.Decimal, notes *string) error {
	err := tx.Where("order_id = ?", orderID).First(invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		issued := time.Now().UTC()
		*invoice = models.Invoice{
			OrderID:       orderID,
			InvoiceNumber: models.InvoiceNumberFor(orderID, issued),
			IssueDate:     issued,
			TotalAmount:   total,
			PartsCost:     partsCost,
			Notes:         notes,
		}
		if err := tx.Create(invoice).Error; err != nil {
			return fmt.Errorf("failed to create invoice for order %d: %w", orderID, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load invoice of order %d: %w", orderID, err)
	}

	invoice.TotalAmount = total
	invoice.PartsCost = partsCost
	if notes != nil {
		invoice.Notes = notes
	}
	if err := tx.Save(invoice).Error; err != nil {
		return fmt.Errorf("failed to update invoice for order %d: %w", orderID, err)
	}
	return nil
}

package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/autoservice-manager/workshop-api/models"
	"github.com/autoservice-manager/workshop-api/tests/testutil"
	"github.com/autoservice-manager/workshop-api/workflow"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFinalizer(t *testing.T) (*InvoiceFinalizer, *MockDocumentStore) {
	t.Helper()
	store := NewMockDocumentStore()
	db := testutil.NewTestDB(t)
	return NewInvoiceFinalizer(db, store, NewInvoiceRenderer("Test Garage")), store
}

func TestInvoiceFinalizer_FinalizeAndCorrect(t *testing.T) {
	finalizer, store := newTestFinalizer(t)
	db := finalizer.db
	ctx := context.Background()

	order := testutil.CreateOrder(t, db, models.StatusCompleted, nil)
	part := testutil.CreatePart(t, db, "BP-100", "20.00", 5)
	_, err := NewPartsLedger(db).AttachPart(ctx, order.ID, part.ID, 2, nil)
	require.NoError(t, err)

	notes := "Customer brought own oil"
	invoice, err := finalizer.Finalize(ctx, order.ID, decimal.NewFromInt(350), &notes)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceNumberFor(order.ID, time.Now().UTC()), invoice.InvoiceNumber)
	assert.True(t, invoice.TotalAmount.Equal(decimal.NewFromInt(350)))
	assert.True(t, invoice.PartsCost.Equal(decimal.NewFromInt(40)))
	require.NotNil(t, invoice.DocumentKey)
	require.NotNil(t, invoice.DocumentURL)
	assert.True(t, store.Exists(*invoice.DocumentKey))
	assert.True(t, bytes.HasPrefix(store.Documents()[*invoice.DocumentKey], []byte("%PDF")))

	stored := testutil.ReloadOrder(t, db, order.ID)
	assert.Equal(t, models.StatusInvoiced, stored.Status)
	require.True(t, stored.FinalCost.Valid)
	assert.True(t, stored.FinalCost.Decimal.Equal(decimal.NewFromInt(350)))

	// finalizing again corrects the cost and reissues the document
	firstKey := *invoice.DocumentKey
	corrected, err := finalizer.Finalize(ctx, order.ID, decimal.NewFromInt(375), nil)
	require.NoError(t, err)
	assert.Equal(t, invoice.ID, corrected.ID)
	assert.Equal(t, invoice.InvoiceNumber, corrected.InvoiceNumber)
	assert.True(t, corrected.TotalAmount.Equal(decimal.NewFromInt(375)))
	require.NotNil(t, corrected.Notes)
	assert.Equal(t, notes, *corrected.Notes)
	assert.False(t, store.Exists(firstKey))
	assert.Len(t, store.Documents(), 1)

	stored = testutil.ReloadOrder(t, db, order.ID)
	assert.Equal(t, models.StatusInvoiced, stored.Status)
	assert.True(t, stored.FinalCost.Decimal.Equal(decimal.NewFromInt(375)))

	var count int64
	require.NoError(t, db.Model(&models.Invoice{}).Where("order_id = ?", order.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestInvoiceFinalizer_RejectsUnfinishedOrders(t *testing.T) {
	finalizer, store := newTestFinalizer(t)
	db := finalizer.db
	ctx := context.Background()

	for _, status := range []models.OrderStatus{models.StatusNew, models.StatusInProgress, models.StatusWaitingForParts} {
		t.Run(string(status), func(t *testing.T) {
			var station *int
			if status == models.StatusInProgress {
				station = testutil.IntPtr(1)
			}
			order := testutil.CreateOrder(t, db, status, station)

			_, err := finalizer.Finalize(ctx, order.ID, decimal.NewFromInt(350), nil)
			var svcErr *Error
			require.ErrorAs(t, err, &svcErr)
			assert.Equal(t, KindInvalidState, svcErr.Kind)
			assert.Equal(t, status, svcErr.Status)

			stored := testutil.ReloadOrder(t, db, order.ID)
			assert.Equal(t, status, stored.Status)
			assert.False(t, stored.FinalCost.Valid)
		})
	}
	assert.Empty(t, store.Documents())

	_, err := finalizer.Finalize(ctx, 999, decimal.NewFromInt(1), nil)
	assert.True(t, IsKind(err, KindNotFound))

	order := testutil.CreateOrder(t, db, models.StatusCompleted, nil)
	_, err = finalizer.Finalize(ctx, order.ID, decimal.NewFromInt(-1), nil)
	assert.True(t, IsKind(err, KindValidation))
	assert.Equal(t, models.StatusCompleted, testutil.ReloadOrder(t, db, order.ID).Status)
}

func TestInvoiceFinalizer_DocumentFailureIsRecoverable(t *testing.T) {
	finalizer, store := newTestFinalizer(t)
	db := finalizer.db
	ctx := context.Background()
	store.PutErr = errors.New("bucket unavailable")

	order := testutil.CreateOrder(t, db, models.StatusCompleted, nil)
	invoice, err := finalizer.Finalize(ctx, order.ID, decimal.NewFromInt(120), nil)
	require.NoError(t, err)
	assert.Nil(t, invoice.DocumentKey)
	assert.Nil(t, invoice.DocumentURL)
	assert.Equal(t, models.StatusInvoiced, testutil.ReloadOrder(t, db, order.ID).Status)

	_, err = finalizer.RegenerateDocument(ctx, order.ID)
	assert.Error(t, err)

	store.PutErr = nil
	regenerated, err := finalizer.RegenerateDocument(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, regenerated.DocumentKey)
	assert.True(t, store.Exists(*regenerated.DocumentKey))

	fetched, err := finalizer.GetInvoice(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, *regenerated.DocumentKey, *fetched.DocumentKey)
	require.NotNil(t, fetched.DocumentURL)
	assert.Contains(t, *fetched.DocumentURL, *fetched.DocumentKey)
}

func TestInvoiceFinalizer_RegenerateReplacesDocument(t *testing.T) {
	finalizer, store := newTestFinalizer(t)
	ctx := context.Background()
	order := testutil.CreateOrder(t, finalizer.db, models.StatusCompleted, nil)

	invoice, err := finalizer.Finalize(ctx, order.ID, decimal.NewFromInt(80), nil)
	require.NoError(t, err)
	require.NotNil(t, invoice.DocumentKey)
	firstKey := *invoice.DocumentKey

	regenerated, err := finalizer.RegenerateDocument(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, regenerated.DocumentKey)
	assert.NotEqual(t, firstKey, *regenerated.DocumentKey)
	assert.False(t, store.Exists(firstKey), "superseded document should be deleted")
	assert.True(t, store.Exists(*regenerated.DocumentKey))
	assert.Len(t, store.Documents(), 1)
}

func TestInvoiceFinalizer_LosesToConcurrentChange(t *testing.T) {
	finalizer, store := newTestFinalizer(t)
	db := finalizer.db
	order := testutil.CreateOrder(t, db, models.StatusCompleted, nil)

	// the order is dragged back onto a station between read and write
	testutil.ChangeOrderBeforeNextUpdate(t, db, order.ID, models.StatusInProgress, testutil.IntPtr(2))

	_, err := finalizer.Finalize(context.Background(), order.ID, decimal.NewFromInt(350), nil)
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindInvalidTransition, svcErr.Kind)
	assert.Equal(t, models.StatusCompleted, svcErr.Status)

	stored := testutil.ReloadOrder(t, db, order.ID)
	assert.Equal(t, models.StatusCompleted, stored.Status)
	assert.Nil(t, stored.WorkStationID)
	assert.False(t, stored.FinalCost.Valid)

	var count int64
	require.NoError(t, db.Model(&models.Invoice{}).Where("order_id = ?", order.ID).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, store.Documents())
}

func TestInvoiceFinalizer_RejectsSubCentFinalCost(t *testing.T) {
	finalizer, _ := newTestFinalizer(t)
	db := finalizer.db
	order := testutil.CreateOrder(t, db, models.StatusCompleted, nil)

	_, err := finalizer.Finalize(context.Background(), order.ID, decimal.RequireFromString("350.005"), nil)
	assert.True(t, IsKind(err, KindValidation))

	stored := testutil.ReloadOrder(t, db, order.ID)
	assert.Equal(t, models.StatusCompleted, stored.Status)
	assert.False(t, stored.FinalCost.Valid)

	invoice, err := finalizer.Finalize(context.Background(), order.ID, decimal.RequireFromString("350.50"), nil)
	require.NoError(t, err)
	assert.Equal(t, "350.5", invoice.TotalAmount.String())
}

func TestInvoiceFinalizer_GetInvoiceMissing(t *testing.T) {
	finalizer, _ := newTestFinalizer(t)
	ctx := context.Background()
	order := testutil.CreateOrder(t, finalizer.db, models.StatusCompleted, nil)

	_, err := finalizer.GetInvoice(ctx, order.ID)
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindNotFound, svcErr.Kind)
	assert.Equal(t, "invoice", svcErr.Resource)

	_, err = finalizer.RegenerateDocument(ctx, 999)
	assert.True(t, IsKind(err, KindNotFound))
}

// final_cost is present exactly when the order is invoiced, whatever mix of
// transitions and finalize calls ran before
func TestInvoiceFinalizer_FinalCostOnlyWhenInvoiced(t *testing.T) {
	finalizer, _ := newTestFinalizer(t)
	db := finalizer.db
	svc := NewOrderService(db)
	ctx := context.Background()

	orders := make([]*models.Order, 0, len(models.AllStatuses))
	for _, status := range []models.OrderStatus{models.StatusNew, models.StatusWaitingForParts, models.StatusCompleted} {
		orders = append(orders, testutil.CreateOrder(t, db, status, nil))
	}
	orders = append(orders, testutil.CreateOrder(t, db, models.StatusInProgress, testutil.IntPtr(2)))

	for _, order := range orders {
		_, _ = finalizer.Finalize(ctx, order.ID, decimal.NewFromInt(99), nil)
		_, _ = svc.ApplyEvent(ctx, order.ID, workflow.MarkCompleted{})
		_, _ = finalizer.Finalize(ctx, order.ID, decimal.NewFromInt(100), nil)
	}

	var all []models.Order
	require.NoError(t, db.Find(&all).Error)
	require.Len(t, all, len(orders))
	for _, order := range all {
		assert.Equal(t, order.Status == models.StatusInvoiced, order.FinalCost.Valid, "order %d", order.ID)
		assert.Equal(t, models.StatusInvoiced, order.Status)
	}
}

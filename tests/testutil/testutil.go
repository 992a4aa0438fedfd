package testutil

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/autoservice-manager/workshop-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbCounter atomic.Int64

// RequireTestEnvironment fails the test unless GO_ENV=test, so a stray run
// never points at a development or production database.
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	env := os.Getenv("GO_ENV")
	if env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test. Current GO_ENV=%q.", env)
	}
}

// RunTests is the body of a package TestMain: it refuses to run the
// package unless GO_ENV=test and returns the exit code of m.Run.
func RunTests(m *testing.M) int {
	if env := os.Getenv("GO_ENV"); env != "test" {
		fmt.Fprintf(os.Stderr, "SAFETY CHECK FAILED: tests must run with GO_ENV=test (current %q)\n", env)
		fmt.Fprintln(os.Stderr, "  GO_ENV=test go test ./...")
		return 1
	}
	return m.Run()
}

// NewTestDB opens a private in-memory SQLite database with the full schema.
// All connections share one cache and are serialized, so goroutines in a
// test see the same data.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	RequireTestEnvironment(t)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=on", name, dbCounter.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...), "Failed to migrate test database")
	return db
}

// CreateCustomer stores a customer with the given name
func CreateCustomer(t *testing.T, db *gorm.DB, name string) *models.Customer {
	t.Helper()

	customer := &models.Customer{Name: name}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

// CreateVehicle stores a vehicle owned by customerID
func CreateVehicle(t *testing.T, db *gorm.DB, customerID uint, registration string) *models.Vehicle {
	t.Helper()

	vehicle := &models.Vehicle{
		CustomerID:         customerID,
		Brand:              "Skoda",
		Model:              "Octavia",
		RegistrationNumber: registration,
	}
	require.NoError(t, db.Create(vehicle).Error)
	return vehicle
}

// CreatePart stores a catalog part
func CreatePart(t *testing.T, db *gorm.DB, code, price string, stock int) *models.Part {
	t.Helper()

	part := &models.Part{
		Code:          code,
		Name:          "Part " + code,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
	}
	require.NoError(t, db.Create(part).Error)
	return part
}

// CreateOrder stores an order in the given status, with a fresh customer and vehicle
func CreateOrder(t *testing.T, db *gorm.DB, status models.OrderStatus, station *int) *models.Order {
	t.Helper()

	n := dbCounter.Add(1)
	customer := CreateCustomer(t, db, fmt.Sprintf("Customer %d", n))
	vehicle := CreateVehicle(t, db, customer.ID, fmt.Sprintf("REG-%d", n))

	order := &models.Order{
		CustomerID:    customer.ID,
		VehicleID:     vehicle.ID,
		Description:   "Brake inspection",
		Priority:      models.PriorityNormal,
		Status:        status,
		WorkStationID: station,
		EstimatedCost: decimal.RequireFromString("100.00"),
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

// ChangeOrderBeforeNextUpdate makes the next UPDATE against the orders table
// first move the order to status and station on the same connection, the way
// a request committing between another request's read and write would.
func ChangeOrderBeforeNextUpdate(t *testing.T, db *gorm.DB, orderID uint, status models.OrderStatus, station *int) {
	t.Helper()

	var fired atomic.Bool
	name := fmt.Sprintf("testutil:change_order_%d", dbCounter.Add(1))
	err := db.Callback().Update().Before("gorm:update").Register(name, func(tx *gorm.DB) {
		if tx.Statement.Table != "orders" || !fired.CompareAndSwap(false, true) {
			return
		}
		err := tx.Session(&gorm.Session{NewDB: true}).
			Exec("UPDATE orders SET status = ?, work_station_id = ? WHERE id = ?", string(status), station, orderID).Error
		if err != nil {
			_ = tx.AddError(err)
		}
	})
	require.NoError(t, err)
}

// ReloadPart reads the current stock of a part
func ReloadPart(t *testing.T, db *gorm.DB, id uint) *models.Part {
	t.Helper()

	var part models.Part
	require.NoError(t, db.First(&part, id).Error)
	return &part
}

// ReloadOrder reads the current state of an order
func ReloadOrder(t *testing.T, db *gorm.DB, id uint) *models.Order {
	t.Helper()

	var order models.Order
	require.NoError(t, db.First(&order, id).Error)
	return &order
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}

package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/autoservice-manager/workshop-api/models"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CustomerInput holds the editable customer fields
type CustomerInput struct {
	Name    string
	Phone   *string
	Email   *string
	Address *string
}

// VehicleInput holds the editable vehicle fields
type VehicleInput struct {
	CustomerID         uint
	Brand              string
	Model              string
	Year               *int
	RegistrationNumber string
	VIN                *string
}

// PartInput holds the catalog fields of a part. Stock is not part of it.
type PartInput struct {
	Code        string
	Name        string
	Description *string
	Price       decimal.Decimal
}

// PartFilter narrows part listings
type PartFilter struct {
	Search      string
	InStockOnly bool
	Skip        int
	Limit       int
}

// CatalogService manages customers, vehicles and catalog parts
type CatalogService struct {
	db *gorm.DB
}

// NewCatalogService creates a catalog service on top of db
func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// CreateCustomer stores a new customer
func (s *CatalogService) CreateCustomer(ctx context.Context, in CustomerInput) (*models.Customer, error) {
	if err := validateCustomer(&in); err != nil {
		return nil, err
	}
	customer := models.Customer{Name: in.Name, Phone: in.Phone, Email: in.Email, Address: in.Address}
	if err := s.db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	log.Info().Uint("customer_id", customer.ID).Msg("customer created")
	return &customer, nil
}

// ListCustomers returns customers by name
func (s *CatalogService) ListCustomers(ctx context.Context, skip, limit int) ([]models.Customer, error) {
	query, err := paginate(s.db.WithContext(ctx), skip, limit)
	if err != nil {
		return nil, err
	}
	customers := []models.Customer{}
	if err := query.Order("name ASC").Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

// GetCustomer loads one customer
func (s *CatalogService) GetCustomer(ctx context.Context, id uint) (*models.Customer, error) {
	return findByID[models.Customer](s.db.WithContext(ctx), "customer", id)
}

// UpdateCustomer replaces the customer fields
func (s *CatalogService) UpdateCustomer(ctx context.Context, id uint, in CustomerInput) (*models.Customer, error) {
	if err := validateCustomer(&in); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	customer, err := findByID[models.Customer](db, "customer", id)
	if err != nil {
		return nil, err
	}

	customer.Name, customer.Phone, customer.Email, customer.Address = in.Name, in.Phone, in.Email, in.Address
	if err := db.Save(customer).Error; err != nil {
		return nil, fmt.Errorf("failed to update customer %d: %w", id, err)
	}
	return customer, nil
}

// DeleteCustomer removes a customer that owns no vehicles and no orders
func (s *CatalogService) DeleteCustomer(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findByID[models.Customer](tx, "customer", id); err != nil {
			return err
		}

		var orders, vehicles int64
		if err := tx.Model(&models.Order{}).Where("customer_id = ?", id).Count(&orders).Error; err != nil {
			return fmt.Errorf("failed to count orders of customer %d: %w", id, err)
		}
		if orders > 0 {
			return conflict("customer", id, "customer %d has %d orders", id, orders)
		}
		if err := tx.Model(&models.Vehicle{}).Where("customer_id = ?", id).Count(&vehicles).Error; err != nil {
			return fmt.Errorf("failed to count vehicles of customer %d: %w", id, err)
		}
		if vehicles > 0 {
			return conflict("customer", id, "customer %d has %d vehicles", id, vehicles)
		}

		if err := tx.Delete(&models.Customer{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete customer %d: %w", id, err)
		}
		log.Info().Uint("customer_id", id).Msg("customer deleted")
		return nil
	})
}

// CustomerVehicles lists the vehicles owned by a customer
func (s *CatalogService) CustomerVehicles(ctx context.Context, customerID uint) ([]models.Vehicle, error) {
	db := s.db.WithContext(ctx)
	if _, err := findByID[models.Customer](db, "customer", customerID); err != nil {
		return nil, err
	}
	vehicles := []models.Vehicle{}
	if err := db.Where("customer_id = ?", customerID).Order("id ASC").Find(&vehicles).Error; err != nil {
		return nil, fmt.Errorf("failed to list vehicles of customer %d: %w", customerID, err)
	}
	return vehicles, nil
}

// CreateVehicle registers a vehicle for an existing customer
func (s *CatalogService) CreateVehicle(ctx context.Context, in VehicleInput) (*models.Vehicle, error) {
	db := s.db.WithContext(ctx)
	if err := validateVehicle(db, &in); err != nil {
		return nil, err
	}

	vehicle := models.Vehicle{
		CustomerID:         in.CustomerID,
		Brand:              in.Brand,
		Model:              in.Model,
		Year:               in.Year,
		RegistrationNumber: in.RegistrationNumber,
		VIN:                in.VIN,
	}
	if err := db.Create(&vehicle).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("vehicle", 0, "a vehicle with registration %s or this VIN already exists", in.RegistrationNumber)
		}
		return nil, fmt.Errorf("failed to create vehicle: %w", err)
	}
	log.Info().Uint("vehicle_id", vehicle.ID).Uint("customer_id", vehicle.CustomerID).Msg("vehicle created")
	return s.GetVehicle(ctx, vehicle.ID)
}

// ListVehicles returns vehicles with their owners
func (s *CatalogService) ListVehicles(ctx context.Context, skip, limit int) ([]models.Vehicle, error) {
	query, err := paginate(s.db.WithContext(ctx), skip, limit)
	if err != nil {
		return nil, err
	}
	vehicles := []models.Vehicle{}
	if err := query.Preload("Owner").Order("id ASC").Find(&vehicles).Error; err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	return vehicles, nil
}

// GetVehicle loads one vehicle with its owner
func (s *CatalogService) GetVehicle(ctx context.Context, id uint) (*models.Vehicle, error) {
	return findByID[models.Vehicle](s.db.WithContext(ctx).Preload("Owner"), "vehicle", id)
}

// UpdateVehicle replaces the vehicle fields
func (s *CatalogService) UpdateVehicle(ctx context.Context, id uint, in VehicleInput) (*models.Vehicle, error) {
	db := s.db.WithContext(ctx)
	vehicle, err := findByID[models.Vehicle](db, "vehicle", id)
	if err != nil {
		return nil, err
	}
	if err := validateVehicle(db, &in); err != nil {
		return nil, err
	}

	vehicle.CustomerID = in.CustomerID
	vehicle.Brand, vehicle.Model, vehicle.Year = in.Brand, in.Model, in.Year
	vehicle.RegistrationNumber, vehicle.VIN = in.RegistrationNumber, in.VIN
	if err := db.Save(vehicle).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("vehicle", id, "a vehicle with registration %s or this VIN already exists", in.RegistrationNumber)
		}
		return nil, fmt.Errorf("failed to update vehicle %d: %w", id, err)
	}
	return s.GetVehicle(ctx, id)
}

// DeleteVehicle removes a vehicle no order refers to. The row is dropped so
// its registration number and VIN can be used again.
func (s *CatalogService) DeleteVehicle(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findByID[models.Vehicle](tx, "vehicle", id); err != nil {
			return err
		}
		// archived orders keep their vehicle reference
		var orders int64
		if err := tx.Unscoped().Model(&models.Order{}).Where("vehicle_id = ?", id).Count(&orders).Error; err != nil {
			return fmt.Errorf("failed to count orders of vehicle %d: %w", id, err)
		}
		if orders > 0 {
			return conflict("vehicle", id, "vehicle %d has %d orders", id, orders)
		}
		if err := tx.Unscoped().Delete(&models.Vehicle{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete vehicle %d: %w", id, err)
		}
		log.Info().Uint("vehicle_id", id).Msg("vehicle deleted")
		return nil
	})
}

// CreatePart adds a catalog part with its opening stock
func (s *CatalogService) CreatePart(ctx context.Context, in PartInput, openingStock int) (*models.Part, error) {
	if err := validatePart(&in); err != nil {
		return nil, err
	}
	if openingStock < 0 {
		return nil, validationError("stock quantity must not be negative")
	}

	part := models.Part{
		Code:          in.Code,
		Name:          in.Name,
		Description:   in.Description,
		Price:         in.Price,
		StockQuantity: openingStock,
	}
	if err := s.db.WithContext(ctx).Create(&part).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("part", 0, "part %s already exists", in.Code)
		}
		return nil, fmt.Errorf("failed to create part: %w", err)
	}
	log.Info().Uint("part_id", part.ID).Str("code", part.Code).Int("stock", part.StockQuantity).Msg("part created")
	return &part, nil
}

// ListParts searches the catalog by name or code
func (s *CatalogService) ListParts(ctx context.Context, filter PartFilter) ([]models.Part, error) {
	query := s.db.WithContext(ctx).Model(&models.Part{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := containsPattern(strings.ToLower(search))
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(code) LIKE ? ESCAPE '\'`, pattern, pattern)
	}
	if filter.InStockOnly {
		query = query.Where("stock_quantity > 0")
	}

	query, err := paginate(query, filter.Skip, filter.Limit)
	if err != nil {
		return nil, err
	}
	parts := []models.Part{}
	if err := query.Order("code ASC").Find(&parts).Error; err != nil {
		return nil, fmt.Errorf("failed to list parts: %w", err)
	}
	return parts, nil
}

// GetPart loads one part
func (s *CatalogService) GetPart(ctx context.Context, id uint) (*models.Part, error) {
	return findByID[models.Part](s.db.WithContext(ctx), "part", id)
}

// UpdatePart changes catalog fields. Prices already captured on orders stay as they are.
func (s *CatalogService) UpdatePart(ctx context.Context, id uint, in PartInput) (*models.Part, error) {
	if err := validatePart(&in); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if _, err := findByID[models.Part](db, "part", id); err != nil {
		return nil, err
	}

	err := db.Model(&models.Part{}).Where("id = ?", id).Updates(map[string]interface{}{
		"code":        in.Code,
		"name":        in.Name,
		"description": in.Description,
		"price":       in.Price,
		"updated_at":  time.Now().UTC(),
	}).Error
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("part", id, "part %s already exists", in.Code)
		}
		return nil, fmt.Errorf("failed to update part %d: %w", id, err)
	}
	return s.GetPart(ctx, id)
}

// DeletePart removes a part that was never attached to an order, freeing its code
func (s *CatalogService) DeletePart(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findByID[models.Part](tx, "part", id); err != nil {
			return err
		}
		var used int64
		if err := tx.Model(&models.OrderPart{}).Where("part_id = ?", id).Count(&used).Error; err != nil {
			return fmt.Errorf("failed to count usage of part %d: %w", id, err)
		}
		if used > 0 {
			return conflict("part", id, "part %d is used in %d orders", id, used)
		}
		if err := tx.Unscoped().Delete(&models.Part{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete part %d: %w", id, err)
		}
		log.Info().Uint("part_id", id).Msg("part deleted")
		return nil
	})
}

func validateCustomer(in *CustomerInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return validationError("name is required")
	}
	return nil
}

func validateVehicle(tx *gorm.DB, in *VehicleInput) error {
	in.Brand = strings.TrimSpace(in.Brand)
	in.Model = strings.TrimSpace(in.Model)
	in.RegistrationNumber = strings.ToUpper(strings.TrimSpace(in.RegistrationNumber))
	if in.Brand == "" || in.Model == "" || in.RegistrationNumber == "" {
		return validationError("brand, model and registration number are required")
	}
	if in.Year != nil && (*in.Year < 1900 || *in.Year > time.Now().Year()+1) {
		return validationError("invalid year %d", *in.Year)
	}
	if in.VIN != nil {
		vin := strings.ToUpper(strings.TrimSpace(*in.VIN))
		if vin == "" {
			in.VIN = nil
		} else {
			in.VIN = &vin
		}
	}
	if _, err := findByID[models.Customer](tx, "customer", in.CustomerID); err != nil {
		return err
	}
	return nil
}

func validatePart(in *PartInput) error {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	if in.Code == "" || in.Name == "" {
		return validationError("code and name are required")
	}
	if err := validateMoney("price", in.Price); err != nil {
		return err
	}
	return nil
}

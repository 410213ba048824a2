package store

import (
	"context"
	"errors"
	"time"

	"marocpos/backend/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Repository is the persistence contract shared by the postgres store and
// the in-memory store. Report methods are read-only aggregations; date
// bounds arrive already normalized (start of day / end of day) and a nil
// bound means "no filter on that side".
type Repository interface {
	// Catalog
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, req domain.ProductUpdateRequest) (*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	CreateVariant(ctx context.Context, variant domain.ProductVariant) (*domain.ProductVariant, error)
	ListVariants(ctx context.Context, productID int64) ([]domain.ProductVariant, error)
	CreateCategory(ctx context.Context, category domain.Category) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, id int64, req domain.CustomerUpdateRequest) (*domain.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*domain.Customer, error)
	ListCustomers(ctx context.Context) ([]domain.Customer, error)

	// Sales and stock
	CreateSale(ctx context.Context, sale domain.Sale, lines []domain.SaleLineRequest, payments []domain.PaymentEntry) (*domain.Sale, error)
	GetSale(ctx context.Context, id int64) (*domain.Sale, error)
	RecordStockMovement(ctx context.Context, movement domain.StockMovement) (*domain.StockMovement, error)

	// Payment ledger
	ListPaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error)
	GetPaymentMethod(ctx context.Context, id int64) (*domain.PaymentMethod, error)
	AddPaymentMethod(ctx context.Context, method domain.PaymentMethod) (*domain.PaymentMethod, error)
	UpdatePaymentMethod(ctx context.Context, id int64, req domain.PaymentMethodUpdateRequest) (*domain.PaymentMethod, error)
	AddPaymentToSale(ctx context.Context, saleID int64, payments []domain.PaymentEntry) error
	GetSalePayments(ctx context.Context, saleID int64) ([]domain.SalePayment, error)
	PaymentSummary(ctx context.Context, from, to *time.Time) ([]domain.PaymentMethodSalesRow, error)

	// Report engine
	DailySales(ctx context.Context, day string, from, to time.Time) (*domain.DailySalesReport, error)
	SalesRange(ctx context.Context, from, to time.Time) (*domain.SalesRangeReport, error)
	ProductPerformance(ctx context.Context, productID int64, from, to *time.Time) (*domain.ProductPerformanceReport, error)
	InventoryReport(ctx context.Context) (*domain.InventoryReport, error)
	ProfitMarginReport(ctx context.Context, from, to *time.Time) (*domain.ProfitMarginReport, error)
	StockMovementReport(ctx context.Context, from, to *time.Time, productID int64) (*domain.StockMovementReport, error)
	CustomerSalesReport(ctx context.Context, from, to *time.Time, customerID int64) (*domain.CustomerSalesReport, error)

	// Users
	CreateUser(ctx context.Context, user domain.UserAccount) error
	GetUserByUsername(ctx context.Context, username string) (*domain.UserAccount, error)
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}

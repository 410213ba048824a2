package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"marocpos/backend/internal/cache"
	"marocpos/backend/internal/domain"
	"marocpos/backend/internal/store"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo        store.Repository
	reportCache cache.ReportCache
	reportTTL   time.Duration
}

func New(repo store.Repository, reportCache cache.ReportCache, reportTTL time.Duration) *Service {
	if reportCache == nil {
		reportCache = cache.NoopReportCache{}
	}
	if reportTTL < time.Second {
		reportTTL = 30 * time.Second
	}

	return &Service{
		repo:        repo,
		reportCache: reportCache,
		reportTTL:   reportTTL,
	}
}

func requireAdmin(ctx context.Context) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return fmt.Errorf("admin role required")
	}
	return nil
}

// Catalog

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	if id < 1 {
		return nil, store.ErrInvalidInput
	}
	return s.repo.GetProduct(ctx, id)
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Product{}, err
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Barcode = strings.TrimSpace(req.Barcode)
	if req.Name == "" {
		return domain.Product{}, store.ErrInvalidInput
	}
	if req.UnitPrice < 0 || req.PurchasePrice < 0 || req.Stock < 0 || req.MinStock < 0 || req.ReorderPoint < 0 {
		return domain.Product{}, store.ErrInvalidInput
	}

	created, err := s.repo.CreateProduct(ctx, domain.Product{
		Name:          req.Name,
		Barcode:       req.Barcode,
		CategoryID:    req.CategoryID,
		UnitPrice:     req.UnitPrice,
		PurchasePrice: req.PurchasePrice,
		Stock:         req.Stock,
		MinStock:      req.MinStock,
		ReorderPoint:  req.ReorderPoint,
	})
	if err != nil {
		return domain.Product{}, err
	}
	return *created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, req domain.ProductUpdateRequest) (domain.Product, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Product{}, err
	}
	if id < 1 {
		return domain.Product{}, store.ErrInvalidInput
	}
	updated, err := s.repo.UpdateProduct(ctx, id, req)
	if err != nil {
		return domain.Product{}, err
	}
	return *updated, nil
}

func (s *Service) CreateVariant(ctx context.Context, req domain.VariantCreateRequest) (domain.ProductVariant, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.ProductVariant{}, err
	}
	if req.ProductID < 1 || req.Stock < 0 {
		return domain.ProductVariant{}, store.ErrInvalidInput
	}
	if strings.TrimSpace(req.AttributeValues) == "" {
		req.AttributeValues = "{}"
	}

	created, err := s.repo.CreateVariant(ctx, domain.ProductVariant{
		ProductID:       req.ProductID,
		AttributeValues: req.AttributeValues,
		Stock:           req.Stock,
		PriceAdjustment: req.PriceAdjustment,
	})
	if err != nil {
		return domain.ProductVariant{}, err
	}
	return *created, nil
}

func (s *Service) ListVariants(ctx context.Context, productID int64) ([]domain.ProductVariant, error) {
	if productID < 1 {
		return nil, store.ErrInvalidInput
	}
	return s.repo.ListVariants(ctx, productID)
}

func (s *Service) CreateCategory(ctx context.Context, category domain.Category) (domain.Category, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Category{}, err
	}
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return domain.Category{}, store.ErrInvalidInput
	}
	created, err := s.repo.CreateCategory(ctx, category)
	if err != nil {
		return domain.Category{}, err
	}
	return *created, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) CreateCustomer(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	customer.Name = strings.TrimSpace(customer.Name)
	if customer.Name == "" {
		return domain.Customer{}, store.ErrInvalidInput
	}
	created, err := s.repo.CreateCustomer(ctx, customer)
	if err != nil {
		return domain.Customer{}, err
	}
	return *created, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, id int64, req domain.CustomerUpdateRequest) (domain.Customer, error) {
	if id < 1 {
		return domain.Customer{}, store.ErrInvalidInput
	}
	updated, err := s.repo.UpdateCustomer(ctx, id, req)
	if err != nil {
		return domain.Customer{}, err
	}
	return *updated, nil
}

func (s *Service) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.repo.ListCustomers(ctx)
}

// Sales

// RecordSale runs the checkout: prices come from the catalog, a sale
// reference is generated, stock is decremented and the payment splits are
// attached atomically by the repository.
func (s *Service) RecordSale(ctx context.Context, req domain.SaleCreateRequest) (domain.Sale, error) {
	if len(req.Items) == 0 || req.Discount < 0 {
		return domain.Sale{}, store.ErrInvalidInput
	}
	for _, line := range req.Items {
		if line.ProductID < 1 || line.Quantity <= 0 {
			return domain.Sale{}, store.ErrInvalidInput
		}
	}

	label, err := s.paymentLabel(ctx, req.Payments)
	if err != nil {
		return domain.Sale{}, err
	}

	sale := domain.Sale{
		CustomerID:    req.CustomerID,
		Discount:      req.Discount,
		PaymentMethod: label,
		Reference:     newReference("sale"),
	}
	if actor, ok := ActorFromContext(ctx); ok {
		if user, err := s.repo.GetUserByUsername(ctx, actor.Username); err == nil {
			sale.UserID = &user.ID
		}
	}

	created, err := s.repo.CreateSale(ctx, sale, req.Items, req.Payments)
	if err != nil {
		return domain.Sale{}, err
	}
	return *created, nil
}

// paymentLabel derives the sale's legacy payment_method label from its
// splits: the method name for a single split, "Mixte" for several, and
// "Espèces" when no split was recorded.
func (s *Service) paymentLabel(ctx context.Context, payments []domain.PaymentEntry) (string, error) {
	var names []string
	for _, p := range payments {
		if p.Amount <= 0 {
			continue
		}
		method, err := s.repo.GetPaymentMethod(ctx, p.MethodID)
		if err != nil {
			return "", err
		}
		if !method.IsActive {
			return "", store.ErrInvalidInput
		}
		if method.RequiresReference && strings.TrimSpace(p.Reference) == "" {
			return "", store.ErrInvalidInput
		}
		names = append(names, method.Name)
	}
	switch len(names) {
	case 0:
		return "Espèces", nil
	case 1:
		return names[0], nil
	default:
		return "Mixte", nil
	}
}

// newReference issues a prefixed opaque identifier for sales and stock
// movements, shown on tickets and in the movement journal.
func newReference(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

func (s *Service) GetSale(ctx context.Context, id int64) (*domain.Sale, error) {
	if id < 1 {
		return nil, store.ErrInvalidInput
	}
	return s.repo.GetSale(ctx, id)
}

// AdjustStock records a manual stock movement outside the sales flow
// (receipts, corrections, losses, transfers).
func (s *Service) AdjustStock(ctx context.Context, req domain.StockAdjustmentRequest) (domain.StockMovement, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.StockMovement{}, err
	}
	if req.ProductID < 1 || req.Quantity <= 0 {
		return domain.StockMovement{}, store.ErrInvalidInput
	}
	if !domain.KnownMovementType(req.MovementType) || req.MovementType == domain.MovementSale {
		return domain.StockMovement{}, store.ErrInvalidInput
	}

	movement := domain.StockMovement{
		ProductID:    req.ProductID,
		VariantID:    req.VariantID,
		MovementType: req.MovementType,
		Quantity:     req.Quantity,
		Reference:    newReference("mov"),
		Notes:        strings.TrimSpace(req.Notes),
	}
	if product, err := s.repo.GetProduct(ctx, req.ProductID); err == nil {
		movement.UnitPrice = product.PurchasePrice
	}
	if actor, ok := ActorFromContext(ctx); ok {
		if user, err := s.repo.GetUserByUsername(ctx, actor.Username); err == nil {
			movement.UserID = &user.ID
		}
	}

	created, err := s.repo.RecordStockMovement(ctx, movement)
	if err != nil {
		return domain.StockMovement{}, err
	}
	return *created, nil
}

// Payment ledger

func (s *Service) ListPaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error) {
	return s.repo.ListPaymentMethods(ctx)
}

func (s *Service) AddPaymentMethod(ctx context.Context, req domain.PaymentMethodCreateRequest) (domain.PaymentMethod, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.PaymentMethod{}, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.PaymentMethod{}, store.ErrInvalidInput
	}

	created, err := s.repo.AddPaymentMethod(ctx, domain.PaymentMethod{
		Name:              req.Name,
		Code:              strings.TrimSpace(req.Code),
		RequiresReference: req.RequiresReference,
		ReferenceLabel:    strings.TrimSpace(req.ReferenceLabel),
	})
	if err != nil {
		return domain.PaymentMethod{}, err
	}
	return *created, nil
}

func (s *Service) UpdatePaymentMethod(ctx context.Context, id int64, req domain.PaymentMethodUpdateRequest) (domain.PaymentMethod, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.PaymentMethod{}, err
	}
	if id < 1 {
		return domain.PaymentMethod{}, store.ErrInvalidInput
	}
	updated, err := s.repo.UpdatePaymentMethod(ctx, id, req)
	if err != nil {
		return domain.PaymentMethod{}, err
	}
	return *updated, nil
}

// AddPaymentToSale appends payment splits to an existing sale. Entries with
// a non-positive amount are dropped silently, matching the ledger's
// insert-only contract.
func (s *Service) AddPaymentToSale(ctx context.Context, saleID int64, payments []domain.PaymentEntry) error {
	if saleID < 1 || len(payments) == 0 {
		return store.ErrInvalidInput
	}
	for _, p := range payments {
		if p.Amount <= 0 {
			continue
		}
		method, err := s.repo.GetPaymentMethod(ctx, p.MethodID)
		if err != nil {
			return err
		}
		if method.RequiresReference && strings.TrimSpace(p.Reference) == "" {
			return store.ErrInvalidInput
		}
	}
	return s.repo.AddPaymentToSale(ctx, saleID, payments)
}

func (s *Service) GetSalePayments(ctx context.Context, saleID int64) ([]domain.SalePayment, error) {
	if saleID < 1 {
		return nil, store.ErrInvalidInput
	}
	return s.repo.GetSalePayments(ctx, saleID)
}

// Users

func (s *Service) CreateUser(ctx context.Context, req domain.UserCreateRequest) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	// Usernames are stored lowercase; login lowercases before lookup.
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	if req.Username == "" || len(req.Password) < 8 {
		return store.ErrInvalidInput
	}
	if req.Role != domain.RoleAdmin && req.Role != domain.RoleCashier {
		return store.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.CreateUser(ctx, domain.UserAccount{
		Username: req.Username,
		Password: string(hash),
		Role:     req.Role,
	})
}

func (s *Service) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListUsers(ctx)
}

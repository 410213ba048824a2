// Package memory implements store.Repository entirely in process memory.
// It backs dev/demo mode (no DATABASE_URL) and the test suites; report
// aggregations are computed in Go over the same data the postgres store
// would aggregate in SQL.
package memory

import (
	"context"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"marocpos/backend/internal/domain"
	"marocpos/backend/internal/store"
)

type Store struct {
	mu              sync.RWMutex
	products        map[int64]domain.Product
	variants        map[int64]domain.ProductVariant
	categories      map[int64]domain.Category
	customers       map[int64]domain.Customer
	sales           map[int64]domain.Sale
	saleItems       []domain.SaleItem
	movements       []domain.StockMovement
	paymentMethods  map[int64]domain.PaymentMethod
	salePayments    []domain.SalePayment
	usersByUsername map[string]domain.UserAccount

	nextProductID       int64
	nextVariantID       int64
	nextCategoryID      int64
	nextCustomerID      int64
	nextSaleID          int64
	nextSaleItemID      int64
	nextMovementID      int64
	nextPaymentMethodID int64
	nextSalePaymentID   int64
	nextUserID          int64
}

func New() *Store {
	s := &Store{
		products:        make(map[int64]domain.Product),
		variants:        make(map[int64]domain.ProductVariant),
		categories:      make(map[int64]domain.Category),
		customers:       make(map[int64]domain.Customer),
		sales:           make(map[int64]domain.Sale),
		saleItems:       make([]domain.SaleItem, 0, 64),
		movements:       make([]domain.StockMovement, 0, 64),
		paymentMethods:  make(map[int64]domain.PaymentMethod),
		salePayments:    make([]domain.SalePayment, 0, 64),
		usersByUsername: make(map[string]domain.UserAccount),
	}
	s.seedPaymentMethods()
	return s
}

// NewSeeded returns a store preloaded with demo users, categories, products
// and variants for dev mode and tests.
func NewSeeded() *Store {
	s := New()
	s.seedUsers()

	now := time.Now().UTC()
	grocery, _ := s.CreateCategory(context.Background(), domain.Category{Name: "Épicerie", Description: "Produits alimentaires de base"})
	textile, _ := s.CreateCategory(context.Background(), domain.Category{Name: "Textile"})

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range []domain.Product{
		{Name: "Huile d'olive 1L", Barcode: "6111000000011", CategoryID: &grocery.ID, UnitPrice: 85, PurchasePrice: 62, Stock: 40, MinStock: 5, ReorderPoint: 12},
		{Name: "Thé vert 200g", Barcode: "6111000000028", CategoryID: &grocery.ID, UnitPrice: 32, PurchasePrice: 21, Stock: 60, MinStock: 10, ReorderPoint: 20},
		{Name: "Sucre 2kg", Barcode: "6111000000035", CategoryID: &grocery.ID, UnitPrice: 24, PurchasePrice: 19, Stock: 90, MinStock: 15, ReorderPoint: 30},
		{Name: "Farine 5kg", CategoryID: &grocery.ID, UnitPrice: 45, PurchasePrice: 36, Stock: 25, MinStock: 8, ReorderPoint: 15},
	} {
		s.nextProductID++
		p.ID = s.nextProductID
		p.CreatedAt = now
		s.products[p.ID] = p
	}

	s.nextProductID++
	shirt := domain.Product{
		ID:            s.nextProductID,
		Name:          "T-shirt coton",
		CategoryID:    &textile.ID,
		UnitPrice:     120,
		PurchasePrice: 70,
		HasVariants:   true,
		CreatedAt:     now,
	}
	s.products[shirt.ID] = shirt

	for _, v := range []domain.ProductVariant{
		{ProductID: shirt.ID, AttributeValues: `{"taille":"M","couleur":"Bleu"}`, Stock: 12},
		{ProductID: shirt.ID, AttributeValues: `{"taille":"L","couleur":"Bleu"}`, Stock: 4, PriceAdjustment: 10},
		{ProductID: shirt.ID, AttributeValues: `{"taille":"XL","couleur":"Noir"}`, Stock: 0, PriceAdjustment: 15},
	} {
		s.nextVariantID++
		v.ID = s.nextVariantID
		s.variants[v.ID] = v
	}

	return s
}

// seedPaymentMethods installs the default method catalog. It only runs when
// the catalog is empty so operator-added methods survive restarts of a
// persistent store; here it simply runs once at construction.
func (s *Store) seedPaymentMethods() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.paymentMethods) > 0 {
		return
	}
	now := time.Now().UTC()
	for _, m := range []domain.PaymentMethod{
		{Name: "Espèces", Code: "CASH"},
		{Name: "Carte", Code: "CARD", RequiresReference: true, ReferenceLabel: "N° Transaction"},
		{Name: "Chèque", Code: "CHECK", RequiresReference: true, ReferenceLabel: "N° Chèque"},
		{Name: "Virement", Code: "TRANSFER", RequiresReference: true, ReferenceLabel: "Référence"},
		{Name: "Crédit", Code: "CREDIT"},
	} {
		s.nextPaymentMethodID++
		m.ID = s.nextPaymentMethodID
		m.IsActive = true
		m.CreatedAt = now
		s.paymentMethods[m.ID] = m
	}
}

// seedUsers builds the initial accounts for dev/demo mode. Credentials come
// from SEED_ADMIN_PASSWORD and SEED_CASHIER_PASSWORD; hardcoded dev defaults
// are used with a warning when unset.
func (s *Store) seedUsers() {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	cashierPwd := envOr("SEED_CASHIER_PASSWORD", "cashier123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_CASHIER_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_CASHIER_PASSWORD to override.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, domain.RoleAdmin},
		{"cashier", cashierPwd, domain.RoleCashier},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		s.nextUserID++
		s.usersByUsername[u.username] = domain.UserAccount{
			ID:        s.nextUserID,
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func cmpString(a, b string) int {
	return strings.Compare(a, b)
}

// Catalog

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.Name == "" || product.UnitPrice < 0 || product.PurchasePrice < 0 {
		return nil, store.ErrInvalidInput
	}
	if product.Stock < 0 || product.MinStock < 0 || product.ReorderPoint < 0 {
		return nil, store.ErrInvalidInput
	}
	if product.CategoryID != nil {
		if _, ok := s.categories[*product.CategoryID]; !ok {
			return nil, store.ErrInvalidInput
		}
	}

	s.nextProductID++
	product.ID = s.nextProductID
	product.HasVariants = false
	product.CreatedAt = time.Now().UTC()
	s.products[product.ID] = product
	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(_ context.Context, id int64, req domain.ProductUpdateRequest) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if req.Name != nil {
		if *req.Name == "" {
			return nil, store.ErrInvalidInput
		}
		product.Name = *req.Name
	}
	if req.Barcode != nil {
		product.Barcode = *req.Barcode
	}
	if req.CategoryID != nil {
		if _, ok := s.categories[*req.CategoryID]; !ok {
			return nil, store.ErrInvalidInput
		}
		product.CategoryID = req.CategoryID
	}
	if req.UnitPrice != nil {
		if *req.UnitPrice < 0 {
			return nil, store.ErrInvalidInput
		}
		product.UnitPrice = *req.UnitPrice
	}
	if req.PurchasePrice != nil {
		if *req.PurchasePrice < 0 {
			return nil, store.ErrInvalidInput
		}
		product.PurchasePrice = *req.PurchasePrice
	}
	if req.MinStock != nil {
		product.MinStock = *req.MinStock
	}
	if req.ReorderPoint != nil {
		product.ReorderPoint = *req.ReorderPoint
	}

	s.products[id] = product
	updated := product
	return &updated, nil
}

func (s *Store) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copyProduct := product
	return &copyProduct, nil
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	slices.SortFunc(products, func(a, b domain.Product) int {
		return cmpString(a.Name, b.Name)
	})
	return products, nil
}

func (s *Store) CreateVariant(_ context.Context, variant domain.ProductVariant) (*domain.ProductVariant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[variant.ProductID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if variant.Stock < 0 {
		return nil, store.ErrInvalidInput
	}

	s.nextVariantID++
	variant.ID = s.nextVariantID
	s.variants[variant.ID] = variant

	if !product.HasVariants {
		product.HasVariants = true
		s.products[product.ID] = product
	}

	created := variant
	return &created, nil
}

func (s *Store) ListVariants(_ context.Context, productID int64) ([]domain.ProductVariant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.products[productID]; !ok {
		return nil, store.ErrNotFound
	}
	variants := make([]domain.ProductVariant, 0, 4)
	for _, v := range s.variants {
		if v.ProductID == productID {
			variants = append(variants, v)
		}
	}
	slices.SortFunc(variants, func(a, b domain.ProductVariant) int {
		return int(a.ID - b.ID)
	})
	return variants, nil
}

func (s *Store) CreateCategory(_ context.Context, category domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if category.Name == "" {
		return nil, store.ErrInvalidInput
	}
	s.nextCategoryID++
	category.ID = s.nextCategoryID
	s.categories[category.ID] = category
	created := category
	return &created, nil
}

func (s *Store) ListCategories(_ context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := make([]domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		categories = append(categories, c)
	}
	slices.SortFunc(categories, func(a, b domain.Category) int {
		return cmpString(a.Name, b.Name)
	})
	return categories, nil
}

func (s *Store) CreateCustomer(_ context.Context, customer domain.Customer) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if customer.Name == "" {
		return nil, store.ErrInvalidInput
	}
	s.nextCustomerID++
	customer.ID = s.nextCustomerID
	customer.CreatedAt = time.Now().UTC()
	s.customers[customer.ID] = customer
	created := customer
	return &created, nil
}

func (s *Store) UpdateCustomer(_ context.Context, id int64, req domain.CustomerUpdateRequest) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	customer, ok := s.customers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if req.Name != nil {
		if *req.Name == "" {
			return nil, store.ErrInvalidInput
		}
		customer.Name = *req.Name
	}
	if req.Email != nil {
		customer.Email = *req.Email
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	s.customers[id] = customer
	updated := customer
	return &updated, nil
}

func (s *Store) GetCustomer(_ context.Context, id int64) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customer, ok := s.customers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copyCustomer := customer
	return &copyCustomer, nil
}

func (s *Store) ListCustomers(_ context.Context) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customers := make([]domain.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		customers = append(customers, c)
	}
	slices.SortFunc(customers, func(a, b domain.Customer) int {
		return cmpString(a.Name, b.Name)
	})
	return customers, nil
}

// Sales and stock

func (s *Store) CreateSale(_ context.Context, sale domain.Sale, lines []domain.SaleLineRequest, payments []domain.PaymentEntry) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(lines) == 0 || sale.Discount < 0 {
		return nil, store.ErrInvalidInput
	}
	if sale.CustomerID != nil {
		if _, ok := s.customers[*sale.CustomerID]; !ok {
			return nil, store.ErrNotFound
		}
	}

	// Validate every line before mutating anything so a failed checkout
	// leaves stock untouched.
	type pricedLine struct {
		line      domain.SaleLineRequest
		unitPrice float64
		unitCost  float64
	}
	priced := make([]pricedLine, 0, len(lines))
	for _, ln := range lines {
		if ln.Quantity <= 0 {
			return nil, store.ErrInvalidInput
		}
		product, ok := s.products[ln.ProductID]
		if !ok {
			return nil, store.ErrNotFound
		}
		unitPrice := product.UnitPrice
		if ln.VariantID != nil {
			variant, ok := s.variants[*ln.VariantID]
			if !ok || variant.ProductID != ln.ProductID {
				return nil, store.ErrNotFound
			}
			if variant.Stock < ln.Quantity {
				return nil, store.ErrInsufficientStock
			}
			unitPrice += variant.PriceAdjustment
		} else if product.Stock < ln.Quantity {
			return nil, store.ErrInsufficientStock
		}
		priced = append(priced, pricedLine{line: ln, unitPrice: unitPrice, unitCost: product.PurchasePrice})
	}

	for _, p := range payments {
		if p.Amount > 0 {
			if _, ok := s.paymentMethods[p.MethodID]; !ok {
				return nil, store.ErrInvalidInput
			}
		}
	}

	s.nextSaleID++
	sale.ID = s.nextSaleID
	sale.CreatedAt = time.Now().UTC()
	sale.TotalAmount = 0
	sale.Items = make([]domain.SaleItem, 0, len(priced))

	for _, p := range priced {
		subtotal := p.unitPrice * float64(p.line.Quantity)
		sale.TotalAmount += subtotal

		s.nextSaleItemID++
		item := domain.SaleItem{
			ID:        s.nextSaleItemID,
			SaleID:    sale.ID,
			ProductID: p.line.ProductID,
			VariantID: p.line.VariantID,
			Quantity:  p.line.Quantity,
			UnitPrice: p.unitPrice,
			UnitCost:  p.unitCost,
			Subtotal:  subtotal,
		}
		s.saleItems = append(s.saleItems, item)
		sale.Items = append(sale.Items, item)

		if p.line.VariantID != nil {
			variant := s.variants[*p.line.VariantID]
			variant.Stock -= p.line.Quantity
			s.variants[variant.ID] = variant
		} else {
			product := s.products[p.line.ProductID]
			product.Stock -= p.line.Quantity
			s.products[product.ID] = product
		}

		s.nextMovementID++
		s.movements = append(s.movements, domain.StockMovement{
			ID:           s.nextMovementID,
			ProductID:    p.line.ProductID,
			VariantID:    p.line.VariantID,
			MovementType: domain.MovementSale,
			Quantity:     p.line.Quantity,
			UnitPrice:    p.unitPrice,
			Reference:    sale.Reference,
			UserID:       sale.UserID,
			CreatedAt:    sale.CreatedAt,
		})
	}

	sale.FinalTotal = sale.TotalAmount - sale.Discount
	s.sales[sale.ID] = sale
	s.insertSalePaymentsLocked(sale.ID, payments)

	created := sale
	return &created, nil
}

func (s *Store) GetSale(_ context.Context, id int64) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, ok := s.sales[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copySale := sale
	copySale.Items = make([]domain.SaleItem, len(sale.Items))
	copy(copySale.Items, sale.Items)
	return &copySale, nil
}

func (s *Store) RecordStockMovement(_ context.Context, movement domain.StockMovement) (*domain.StockMovement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if movement.Quantity <= 0 || !domain.KnownMovementType(movement.MovementType) {
		return nil, store.ErrInvalidInput
	}
	product, ok := s.products[movement.ProductID]
	if !ok {
		return nil, store.ErrNotFound
	}

	delta := movement.Quantity
	if domain.MovementTypeDirection(movement.MovementType) == domain.DirectionOut {
		delta = -delta
	}

	if movement.VariantID != nil {
		variant, ok := s.variants[*movement.VariantID]
		if !ok || variant.ProductID != movement.ProductID {
			return nil, store.ErrNotFound
		}
		if variant.Stock+delta < 0 {
			return nil, store.ErrInsufficientStock
		}
		variant.Stock += delta
		s.variants[variant.ID] = variant
	} else {
		if product.Stock+delta < 0 {
			return nil, store.ErrInsufficientStock
		}
		product.Stock += delta
		s.products[product.ID] = product
	}

	s.nextMovementID++
	movement.ID = s.nextMovementID
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now().UTC()
	}
	s.movements = append(s.movements, movement)
	created := movement
	return &created, nil
}

// Payment ledger

func (s *Store) ListPaymentMethods(_ context.Context) ([]domain.PaymentMethod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	methods := make([]domain.PaymentMethod, 0, len(s.paymentMethods))
	for _, m := range s.paymentMethods {
		if !m.IsActive {
			continue
		}
		methods = append(methods, m)
	}
	slices.SortFunc(methods, func(a, b domain.PaymentMethod) int {
		return cmpString(a.Name, b.Name)
	})
	return methods, nil
}

func (s *Store) GetPaymentMethod(_ context.Context, id int64) (*domain.PaymentMethod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	method, ok := s.paymentMethods[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copyMethod := method
	return &copyMethod, nil
}

func (s *Store) AddPaymentMethod(_ context.Context, method domain.PaymentMethod) (*domain.PaymentMethod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if method.Name == "" {
		return nil, store.ErrInvalidInput
	}
	for _, existing := range s.paymentMethods {
		if existing.Name == method.Name {
			return nil, store.ErrInvalidInput
		}
	}

	s.nextPaymentMethodID++
	method.ID = s.nextPaymentMethodID
	method.IsActive = true
	method.CreatedAt = time.Now().UTC()
	s.paymentMethods[method.ID] = method
	created := method
	return &created, nil
}

func (s *Store) UpdatePaymentMethod(_ context.Context, id int64, req domain.PaymentMethodUpdateRequest) (*domain.PaymentMethod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	method, ok := s.paymentMethods[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if req.Name == nil && req.Code == nil && req.IsActive == nil && req.RequiresReference == nil && req.ReferenceLabel == nil {
		return nil, store.ErrInvalidInput
	}
	if req.Name != nil {
		if *req.Name == "" {
			return nil, store.ErrInvalidInput
		}
		method.Name = *req.Name
	}
	if req.Code != nil {
		method.Code = *req.Code
	}
	if req.IsActive != nil {
		method.IsActive = *req.IsActive
	}
	if req.RequiresReference != nil {
		method.RequiresReference = *req.RequiresReference
	}
	if req.ReferenceLabel != nil {
		method.ReferenceLabel = *req.ReferenceLabel
	}
	s.paymentMethods[id] = method
	updated := method
	return &updated, nil
}

// insertSalePaymentsLocked appends the split entries for a sale. Entries
// with a non-positive amount are skipped without error. Callers hold the
// write lock.
func (s *Store) insertSalePaymentsLocked(saleID int64, payments []domain.PaymentEntry) {
	now := time.Now().UTC()
	for _, p := range payments {
		if p.Amount <= 0 {
			continue
		}
		methodID := p.MethodID
		s.nextSalePaymentID++
		s.salePayments = append(s.salePayments, domain.SalePayment{
			ID:        s.nextSalePaymentID,
			SaleID:    saleID,
			MethodID:  &methodID,
			Amount:    p.Amount,
			Reference: p.Reference,
			CreatedAt: now,
		})
	}
}

func (s *Store) AddPaymentToSale(_ context.Context, saleID int64, payments []domain.PaymentEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sales[saleID]; !ok {
		return store.ErrNotFound
	}
	for _, p := range payments {
		if p.Amount > 0 {
			if _, ok := s.paymentMethods[p.MethodID]; !ok {
				return store.ErrInvalidInput
			}
		}
	}
	s.insertSalePaymentsLocked(saleID, payments)
	return nil
}

func (s *Store) GetSalePayments(_ context.Context, saleID int64) ([]domain.SalePayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.sales[saleID]; !ok {
		return nil, store.ErrNotFound
	}
	payments := make([]domain.SalePayment, 0, 4)
	for _, sp := range s.salePayments {
		if sp.SaleID != saleID {
			continue
		}
		enriched := sp
		if sp.MethodID != nil {
			if method, ok := s.paymentMethods[*sp.MethodID]; ok {
				enriched.PaymentMethod = method.Name
				enriched.Code = method.Code
			}
		}
		payments = append(payments, enriched)
	}
	return payments, nil
}

// Users

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.Username == "" || user.Password == "" {
		return store.ErrInvalidInput
	}
	if _, exists := s.usersByUsername[user.Username]; exists {
		return store.ErrInvalidInput
	}
	s.nextUserID++
	user.ID = s.nextUserID
	user.Active = true
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.usersByUsername[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	copyUser := user
	return &copyUser, nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, u := range s.usersByUsername {
		u.Password = ""
		users = append(users, u)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return cmpString(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.usersByUsername[username]
	if !ok {
		return store.ErrNotFound
	}
	if password == "" {
		return store.ErrInvalidInput
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}

func (s *Store) userNameForID(id *int64) string {
	if id == nil {
		return ""
	}
	for _, u := range s.usersByUsername {
		if u.ID == *id {
			return u.Username
		}
	}
	return ""
}

func (s *Store) categoryNameFor(categoryID *int64) string {
	if categoryID == nil {
		return "Non catégorisé"
	}
	if c, ok := s.categories[*categoryID]; ok {
		return c.Name
	}
	return "Non catégorisé"
}

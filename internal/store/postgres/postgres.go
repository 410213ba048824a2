package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"marocpos/backend/internal/domain"
	"marocpos/backend/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Catalog

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.Name == "" || product.UnitPrice < 0 || product.PurchasePrice < 0 {
		return nil, store.ErrInvalidInput
	}
	if product.Stock < 0 || product.MinStock < 0 || product.ReorderPoint < 0 {
		return nil, store.ErrInvalidInput
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO products (name, barcode, category_id, unit_price, purchase_price, stock, min_stock, reorder_point, has_variants, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,false,now())
		RETURNING id, created_at
	`, product.Name, nullIfEmpty(product.Barcode), product.CategoryID, product.UnitPrice, product.PurchasePrice,
		product.Stock, product.MinStock, product.ReorderPoint).Scan(&product.ID, &product.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) || isForeignKeyViolation(err) {
			return nil, store.ErrInvalidInput
		}
		return nil, err
	}
	product.CreatedAt = product.CreatedAt.UTC()
	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(ctx context.Context, id int64, req domain.ProductUpdateRequest) (*domain.Product, error) {
	if req.Name != nil && *req.Name == "" {
		return nil, store.ErrInvalidInput
	}
	if (req.UnitPrice != nil && *req.UnitPrice < 0) || (req.PurchasePrice != nil && *req.PurchasePrice < 0) {
		return nil, store.ErrInvalidInput
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = COALESCE($2, name),
			barcode = COALESCE($3, barcode),
			category_id = COALESCE($4, category_id),
			unit_price = COALESCE($5, unit_price),
			purchase_price = COALESCE($6, purchase_price),
			min_stock = COALESCE($7, min_stock),
			reorder_point = COALESCE($8, reorder_point)
		WHERE id = $1
	`, id, req.Name, req.Barcode, req.CategoryID, req.UnitPrice, req.PurchasePrice, req.MinStock, req.ReorderPoint)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, store.ErrInvalidInput
		}
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetProduct(ctx, id)
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var product domain.Product
	var barcode sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, barcode, category_id, unit_price, purchase_price, stock, min_stock, reorder_point, has_variants, created_at
		FROM products
		WHERE id = $1
	`, id).Scan(&product.ID, &product.Name, &barcode, &product.CategoryID, &product.UnitPrice, &product.PurchasePrice,
		&product.Stock, &product.MinStock, &product.ReorderPoint, &product.HasVariants, &product.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	product.Barcode = barcode.String
	product.CreatedAt = product.CreatedAt.UTC()
	return &product, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, barcode, category_id, unit_price, purchase_price, stock, min_stock, reorder_point, has_variants, created_at
		FROM products
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 128)
	for rows.Next() {
		var p domain.Product
		var barcode sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &barcode, &p.CategoryID, &p.UnitPrice, &p.PurchasePrice,
			&p.Stock, &p.MinStock, &p.ReorderPoint, &p.HasVariants, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Barcode = barcode.String
		p.CreatedAt = p.CreatedAt.UTC()
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Store) CreateVariant(ctx context.Context, variant domain.ProductVariant) (*domain.ProductVariant, error) {
	if variant.Stock < 0 {
		return nil, store.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO product_variants (product_id, attribute_values, stock, price_adjustment)
		VALUES ($1,$2,$3,$4)
		RETURNING id
	`, variant.ProductID, variant.AttributeValues, variant.Stock, variant.PriceAdjustment).Scan(&variant.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE products SET has_variants = true WHERE id = $1
	`, variant.ProductID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	created := variant
	return &created, nil
}

func (s *Store) ListVariants(ctx context.Context, productID int64) ([]domain.ProductVariant, error) {
	if _, err := s.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, attribute_values, stock, price_adjustment
		FROM product_variants
		WHERE product_id = $1
		ORDER BY id
	`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	variants := make([]domain.ProductVariant, 0, 8)
	for rows.Next() {
		var v domain.ProductVariant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.AttributeValues, &v.Stock, &v.PriceAdjustment); err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return variants, nil
}

func (s *Store) CreateCategory(ctx context.Context, category domain.Category) (*domain.Category, error) {
	if category.Name == "" {
		return nil, store.ErrInvalidInput
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, description)
		VALUES ($1,$2)
		RETURNING id
	`, category.Name, category.Description).Scan(&category.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidInput
		}
		return nil, err
	}
	created := category
	return &created, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description
		FROM categories
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]domain.Category, 0, 16)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *Store) CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	if customer.Name == "" {
		return nil, store.ErrInvalidInput
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO customers (name, email, phone, created_at)
		VALUES ($1,$2,$3,now())
		RETURNING id, created_at
	`, customer.Name, customer.Email, customer.Phone).Scan(&customer.ID, &customer.CreatedAt)
	if err != nil {
		return nil, err
	}
	customer.CreatedAt = customer.CreatedAt.UTC()
	created := customer
	return &created, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, id int64, req domain.CustomerUpdateRequest) (*domain.Customer, error) {
	if req.Name != nil && *req.Name == "" {
		return nil, store.ErrInvalidInput
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE customers
		SET name = COALESCE($2, name),
			email = COALESCE($3, email),
			phone = COALESCE($4, phone)
		WHERE id = $1
	`, id, req.Name, req.Email, req.Phone)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetCustomer(ctx, id)
}

func (s *Store) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	var customer domain.Customer
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, created_at
		FROM customers
		WHERE id = $1
	`, id).Scan(&customer.ID, &customer.Name, &customer.Email, &customer.Phone, &customer.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	customer.CreatedAt = customer.CreatedAt.UTC()
	return &customer, nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, phone, created_at
		FROM customers
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0, 64)
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.CreatedAt = c.CreatedAt.UTC()
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return customers, nil
}

// Sales and stock

// CreateSale runs the full checkout in one serializable transaction: price
// the lines from current catalog data, insert the sale and its items,
// decrement product or variant stock with an in-database guard, record one
// stock movement per line and attach the payment splits.
func (s *Store) CreateSale(ctx context.Context, sale domain.Sale, lines []domain.SaleLineRequest, payments []domain.PaymentEntry) (*domain.Sale, error) {
	if len(lines) == 0 || sale.Discount < 0 {
		return nil, store.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	type pricedLine struct {
		line      domain.SaleLineRequest
		unitPrice float64
		unitCost  float64
	}
	priced := make([]pricedLine, 0, len(lines))
	sale.TotalAmount = 0

	for _, ln := range lines {
		if ln.Quantity <= 0 {
			return nil, store.ErrInvalidInput
		}

		var unitPrice, unitCost float64
		var stock int
		err := tx.QueryRowContext(ctx, `
			SELECT unit_price, purchase_price, stock
			FROM products
			WHERE id = $1
			FOR UPDATE
		`, ln.ProductID).Scan(&unitPrice, &unitCost, &stock)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, store.ErrNotFound
			}
			return nil, err
		}

		if ln.VariantID != nil {
			var adjustment float64
			err := tx.QueryRowContext(ctx, `
				SELECT price_adjustment, stock
				FROM product_variants
				WHERE id = $1 AND product_id = $2
				FOR UPDATE
			`, *ln.VariantID, ln.ProductID).Scan(&adjustment, &stock)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return nil, store.ErrNotFound
				}
				return nil, err
			}
			unitPrice += adjustment
		}
		if stock < ln.Quantity {
			return nil, store.ErrInsufficientStock
		}

		priced = append(priced, pricedLine{line: ln, unitPrice: unitPrice, unitCost: unitCost})
		sale.TotalAmount += unitPrice * float64(ln.Quantity)
	}
	sale.FinalTotal = sale.TotalAmount - sale.Discount

	err = tx.QueryRowContext(ctx, `
		INSERT INTO sales (user_id, customer_id, total_amount, discount, final_total, payment_method, reference, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,now())
		RETURNING id, created_at
	`, sale.UserID, sale.CustomerID, sale.TotalAmount, sale.Discount, sale.FinalTotal, sale.PaymentMethod, sale.Reference).
		Scan(&sale.ID, &sale.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	sale.CreatedAt = sale.CreatedAt.UTC()

	sale.Items = make([]domain.SaleItem, 0, len(priced))
	for _, p := range priced {
		subtotal := p.unitPrice * float64(p.line.Quantity)
		item := domain.SaleItem{
			SaleID:    sale.ID,
			ProductID: p.line.ProductID,
			VariantID: p.line.VariantID,
			Quantity:  p.line.Quantity,
			UnitPrice: p.unitPrice,
			UnitCost:  p.unitCost,
			Subtotal:  subtotal,
		}
		err := tx.QueryRowContext(ctx, `
			INSERT INTO sale_items (sale_id, product_id, variant_id, quantity, unit_price, unit_cost, subtotal)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			RETURNING id
		`, item.SaleID, item.ProductID, item.VariantID, item.Quantity, item.UnitPrice, item.UnitCost, item.Subtotal).Scan(&item.ID)
		if err != nil {
			return nil, err
		}
		sale.Items = append(sale.Items, item)

		if p.line.VariantID != nil {
			_, err = tx.ExecContext(ctx, `
				UPDATE product_variants SET stock = stock - $2 WHERE id = $1
			`, *p.line.VariantID, p.line.Quantity)
		} else {
			_, err = tx.ExecContext(ctx, `
				UPDATE products SET stock = stock - $2 WHERE id = $1
			`, p.line.ProductID, p.line.Quantity)
		}
		if err != nil {
			return nil, err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO stock_movements (product_id, variant_id, movement_type, quantity, unit_price, reference, notes, user_id, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,'',$7,$8)
		`, p.line.ProductID, p.line.VariantID, domain.MovementSale, p.line.Quantity, p.unitPrice, sale.Reference, sale.UserID, sale.CreatedAt)
		if err != nil {
			return nil, err
		}
	}

	if err := insertSalePayments(ctx, tx, sale.ID, payments); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	created := sale
	return &created, nil
}

func (s *Store) GetSale(ctx context.Context, id int64) (*domain.Sale, error) {
	var sale domain.Sale
	var reference sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, customer_id, total_amount, discount, final_total, payment_method, reference, created_at
		FROM sales
		WHERE id = $1
	`, id).Scan(&sale.ID, &sale.UserID, &sale.CustomerID, &sale.TotalAmount, &sale.Discount, &sale.FinalTotal,
		&sale.PaymentMethod, &reference, &sale.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	sale.Reference = reference.String
	sale.CreatedAt = sale.CreatedAt.UTC()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sale_id, product_id, variant_id, quantity, unit_price, unit_cost, subtotal
		FROM sale_items
		WHERE sale_id = $1
		ORDER BY id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sale.Items = make([]domain.SaleItem, 0, 8)
	for rows.Next() {
		var item domain.SaleItem
		if err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.VariantID, &item.Quantity,
			&item.UnitPrice, &item.UnitCost, &item.Subtotal); err != nil {
			return nil, err
		}
		sale.Items = append(sale.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &sale, nil
}

func (s *Store) RecordStockMovement(ctx context.Context, movement domain.StockMovement) (*domain.StockMovement, error) {
	if movement.Quantity <= 0 || !domain.KnownMovementType(movement.MovementType) {
		return nil, store.ErrInvalidInput
	}

	delta := movement.Quantity
	if domain.MovementTypeDirection(movement.MovementType) == domain.DirectionOut {
		delta = -delta
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var stock int
	if movement.VariantID != nil {
		err = tx.QueryRowContext(ctx, `
			SELECT stock FROM product_variants WHERE id = $1 AND product_id = $2 FOR UPDATE
		`, *movement.VariantID, movement.ProductID).Scan(&stock)
	} else {
		err = tx.QueryRowContext(ctx, `
			SELECT stock FROM products WHERE id = $1 FOR UPDATE
		`, movement.ProductID).Scan(&stock)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if stock+delta < 0 {
		return nil, store.ErrInsufficientStock
	}

	if movement.VariantID != nil {
		_, err = tx.ExecContext(ctx, `
			UPDATE product_variants SET stock = stock + $2 WHERE id = $1
		`, *movement.VariantID, delta)
	} else {
		_, err = tx.ExecContext(ctx, `
			UPDATE products SET stock = stock + $2 WHERE id = $1
		`, movement.ProductID, delta)
	}
	if err != nil {
		return nil, err
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO stock_movements (product_id, variant_id, movement_type, quantity, unit_price, reference, notes, user_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,now())
		RETURNING id, created_at
	`, movement.ProductID, movement.VariantID, movement.MovementType, movement.Quantity, movement.UnitPrice,
		movement.Reference, movement.Notes, movement.UserID).Scan(&movement.ID, &movement.CreatedAt)
	if err != nil {
		return nil, err
	}
	movement.CreatedAt = movement.CreatedAt.UTC()

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	created := movement
	return &created, nil
}

// Payment ledger

func (s *Store) ListPaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, code, is_active, requires_reference, reference_label, created_at
		FROM payment_methods
		WHERE is_active = true
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	methods := make([]domain.PaymentMethod, 0, 8)
	for rows.Next() {
		var m domain.PaymentMethod
		if err := rows.Scan(&m.ID, &m.Name, &m.Code, &m.IsActive, &m.RequiresReference, &m.ReferenceLabel, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.CreatedAt = m.CreatedAt.UTC()
		methods = append(methods, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return methods, nil
}

func (s *Store) GetPaymentMethod(ctx context.Context, id int64) (*domain.PaymentMethod, error) {
	var m domain.PaymentMethod
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, code, is_active, requires_reference, reference_label, created_at
		FROM payment_methods
		WHERE id = $1
	`, id).Scan(&m.ID, &m.Name, &m.Code, &m.IsActive, &m.RequiresReference, &m.ReferenceLabel, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	m.CreatedAt = m.CreatedAt.UTC()
	return &m, nil
}

func (s *Store) AddPaymentMethod(ctx context.Context, method domain.PaymentMethod) (*domain.PaymentMethod, error) {
	if method.Name == "" {
		return nil, store.ErrInvalidInput
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO payment_methods (name, code, is_active, requires_reference, reference_label, created_at)
		VALUES ($1,$2,true,$3,$4,now())
		RETURNING id, created_at
	`, method.Name, method.Code, method.RequiresReference, method.ReferenceLabel).Scan(&method.ID, &method.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidInput
		}
		return nil, err
	}
	method.IsActive = true
	method.CreatedAt = method.CreatedAt.UTC()
	created := method
	return &created, nil
}

func (s *Store) UpdatePaymentMethod(ctx context.Context, id int64, req domain.PaymentMethodUpdateRequest) (*domain.PaymentMethod, error) {
	if req.Name == nil && req.Code == nil && req.IsActive == nil && req.RequiresReference == nil && req.ReferenceLabel == nil {
		return nil, store.ErrInvalidInput
	}
	if req.Name != nil && *req.Name == "" {
		return nil, store.ErrInvalidInput
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE payment_methods
		SET name = COALESCE($2, name),
			code = COALESCE($3, code),
			is_active = COALESCE($4, is_active),
			requires_reference = COALESCE($5, requires_reference),
			reference_label = COALESCE($6, reference_label)
		WHERE id = $1
	`, id, req.Name, req.Code, req.IsActive, req.RequiresReference, req.ReferenceLabel)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidInput
		}
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetPaymentMethod(ctx, id)
}

// insertSalePayments writes the split entries inside the caller's
// transaction. Non-positive amounts are skipped without failing the batch.
func insertSalePayments(ctx context.Context, tx *sql.Tx, saleID int64, payments []domain.PaymentEntry) error {
	for _, p := range payments {
		if p.Amount <= 0 {
			continue
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sale_payments (sale_id, payment_method_id, amount, reference, created_at)
			VALUES ($1,$2,$3,$4,now())
		`, saleID, p.MethodID, p.Amount, p.Reference)
		if err != nil {
			if isForeignKeyViolation(err) {
				return store.ErrInvalidInput
			}
			return err
		}
	}
	return nil
}

func (s *Store) AddPaymentToSale(ctx context.Context, saleID int64, payments []domain.PaymentEntry) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	if err := tx.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM sales WHERE id = $1)
	`, saleID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return store.ErrNotFound
	}

	if err := insertSalePayments(ctx, tx, saleID, payments); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) GetSalePayments(ctx context.Context, saleID int64) ([]domain.SalePayment, error) {
	if _, err := s.GetSale(ctx, saleID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT sp.id, sp.sale_id, sp.payment_method_id,
			COALESCE(pm.name, '') AS payment_method, COALESCE(pm.code, '') AS code,
			sp.amount, COALESCE(sp.reference, ''), sp.created_at
		FROM sale_payments sp
		LEFT JOIN payment_methods pm ON sp.payment_method_id = pm.id
		WHERE sp.sale_id = $1
		ORDER BY sp.id
	`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]domain.SalePayment, 0, 4)
	for rows.Next() {
		var sp domain.SalePayment
		if err := rows.Scan(&sp.ID, &sp.SaleID, &sp.MethodID, &sp.PaymentMethod, &sp.Code, &sp.Amount, &sp.Reference, &sp.CreatedAt); err != nil {
			return nil, err
		}
		sp.CreatedAt = sp.CreatedAt.UTC()
		payments = append(payments, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}

// Users

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	if user.Username == "" || user.Password == "" {
		return store.ErrInvalidInput
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password, role, active, created_at)
		VALUES ($1,$2,$3,true,now())
	`, user.Username, user.Password, user.Role)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrInvalidInput
		}
		return err
	}
	return nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.UserAccount, error) {
	var user domain.UserAccount
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, password, role, active, created_at
		FROM users
		WHERE username = $1
	`, username).Scan(&user.ID, &user.Username, &user.Password, &user.Role, &user.Active, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	user.CreatedAt = user.CreatedAt.UTC()
	return &user, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, role, active, created_at
		FROM users
		ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 8)
	for rows.Next() {
		var u domain.UserAccount
		if err := rows.Scan(&u.ID, &u.Username, &u.Role, &u.Active, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.CreatedAt = u.CreatedAt.UTC()
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	if password == "" {
		return store.ErrInvalidInput
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET password = $2 WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}

func nullTime(val *time.Time) any {
	if val == nil {
		return nil
	}
	return *val
}

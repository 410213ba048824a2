package domain

import "time"

type Product struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Barcode       string    `json:"barcode,omitempty"`
	CategoryID    *int64    `json:"category_id,omitempty"`
	UnitPrice     float64   `json:"unit_price"`
	PurchasePrice float64   `json:"purchase_price"`
	Stock         int       `json:"stock"`
	MinStock      int       `json:"min_stock"`
	ReorderPoint  int       `json:"reorder_point"`
	HasVariants   bool      `json:"has_variants"`
	CreatedAt     time.Time `json:"created_at"`
}

type ProductCreateRequest struct {
	Name          string  `json:"name"`
	Barcode       string  `json:"barcode,omitempty"`
	CategoryID    *int64  `json:"category_id,omitempty"`
	UnitPrice     float64 `json:"unit_price"`
	PurchasePrice float64 `json:"purchase_price"`
	Stock         int     `json:"stock"`
	MinStock      int     `json:"min_stock"`
	ReorderPoint  int     `json:"reorder_point"`
}

type ProductUpdateRequest struct {
	Name          *string  `json:"name,omitempty"`
	Barcode       *string  `json:"barcode,omitempty"`
	CategoryID    *int64   `json:"category_id,omitempty"`
	UnitPrice     *float64 `json:"unit_price,omitempty"`
	PurchasePrice *float64 `json:"purchase_price,omitempty"`
	MinStock      *int     `json:"min_stock,omitempty"`
	ReorderPoint  *int     `json:"reorder_point,omitempty"`
}

// ProductVariant carries a JSON-encoded attribute map (e.g. size, color)
// plus its own stock and a price adjustment over the base product price.
type ProductVariant struct {
	ID              int64   `json:"id"`
	ProductID       int64   `json:"product_id"`
	AttributeValues string  `json:"attribute_values"`
	Stock           int     `json:"stock"`
	PriceAdjustment float64 `json:"price_adjustment"`
}

type VariantCreateRequest struct {
	ProductID       int64   `json:"product_id"`
	AttributeValues string  `json:"attribute_values"`
	Stock           int     `json:"stock"`
	PriceAdjustment float64 `json:"price_adjustment"`
}

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type CustomerUpdateRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

type Sale struct {
	ID            int64      `json:"id"`
	UserID        *int64     `json:"user_id,omitempty"`
	CustomerID    *int64     `json:"customer_id,omitempty"`
	TotalAmount   float64    `json:"total_amount"`
	Discount      float64    `json:"discount"`
	FinalTotal    float64    `json:"final_total"`
	PaymentMethod string     `json:"payment_method"`
	Reference     string     `json:"reference,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	Items         []SaleItem `json:"items,omitempty"`
}

type SaleItem struct {
	ID        int64   `json:"id"`
	SaleID    int64   `json:"sale_id"`
	ProductID int64   `json:"product_id"`
	VariantID *int64  `json:"variant_id,omitempty"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	UnitCost  float64 `json:"unit_cost"`
	Subtotal  float64 `json:"subtotal"`
}

type SaleLineRequest struct {
	ProductID int64  `json:"product_id"`
	VariantID *int64 `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity"`
}

// PaymentEntry is one split of a sale's total against a payment method.
type PaymentEntry struct {
	MethodID  int64   `json:"method_id"`
	Amount    float64 `json:"amount"`
	Reference string  `json:"reference,omitempty"`
}

type SaleCreateRequest struct {
	CustomerID *int64            `json:"customer_id,omitempty"`
	Discount   float64           `json:"discount"`
	Items      []SaleLineRequest `json:"items"`
	Payments   []PaymentEntry    `json:"payments,omitempty"`
}

// StockMovement is a historical record of a quantity delta against a
// product (and optionally one of its variants). Rows are never mutated.
type StockMovement struct {
	ID           int64     `json:"id"`
	ProductID    int64     `json:"product_id"`
	VariantID    *int64    `json:"variant_id,omitempty"`
	MovementType string    `json:"movement_type"`
	Quantity     int       `json:"quantity"`
	UnitPrice    float64   `json:"unit_price"`
	Reference    string    `json:"reference,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	UserID       *int64    `json:"user_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type StockAdjustmentRequest struct {
	ProductID    int64  `json:"product_id"`
	VariantID    *int64 `json:"variant_id,omitempty"`
	MovementType string `json:"movement_type"`
	Quantity     int    `json:"quantity"`
	Notes        string `json:"notes,omitempty"`
}

type PaymentMethod struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Code              string    `json:"code,omitempty"`
	IsActive          bool      `json:"is_active"`
	RequiresReference bool      `json:"requires_reference"`
	ReferenceLabel    string    `json:"reference_label,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

type PaymentMethodCreateRequest struct {
	Name              string `json:"name"`
	Code              string `json:"code,omitempty"`
	RequiresReference bool   `json:"requires_reference"`
	ReferenceLabel    string `json:"reference_label,omitempty"`
}

type PaymentMethodUpdateRequest struct {
	Name              *string `json:"name,omitempty"`
	Code              *string `json:"code,omitempty"`
	IsActive          *bool   `json:"is_active,omitempty"`
	RequiresReference *bool   `json:"requires_reference,omitempty"`
	ReferenceLabel    *string `json:"reference_label,omitempty"`
}

type SalePayment struct {
	ID            int64     `json:"id"`
	SaleID        int64     `json:"sale_id"`
	MethodID      *int64    `json:"payment_method_id,omitempty"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	Code          string    `json:"code,omitempty"`
	Amount        float64   `json:"amount"`
	Reference     string    `json:"reference,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

type UserCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	ID        int64
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

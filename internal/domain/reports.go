package domain

import "time"

// Report results are typed records rather than generic row maps: one summary
// struct plus named row slices per report. List fields are always non-nil;
// summary aggregates coalesce missing data to zero.

type SalesSummary struct {
	SaleCount     int64   `json:"sale_count"`
	TotalSales    float64 `json:"total_sales"`
	AverageSale   float64 `json:"average_sale"`
	MinSale       float64 `json:"min_sale"`
	MaxSale       float64 `json:"max_sale"`
	TotalDiscount float64 `json:"total_discount"`
}

type SaleRow struct {
	SaleID      int64     `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Username    string    `json:"username"`
	ItemCount   int64     `json:"item_count"`
	TotalAmount float64   `json:"total_amount"`
	Discount    float64   `json:"discount"`
	FinalTotal  float64   `json:"final_total"`
}

type HourlySalesRow struct {
	Hour       string  `json:"hour"`
	SaleCount  int64   `json:"sale_count"`
	TotalSales float64 `json:"total_sales"`
}

type PaymentMethodSalesRow struct {
	PaymentMethod    string  `json:"payment_method"`
	TransactionCount int64   `json:"transaction_count"`
	TotalAmount      float64 `json:"total_amount"`
}

type ProductSalesRow struct {
	ProductID    int64   `json:"product_id"`
	ProductName  string  `json:"product_name"`
	QuantitySold int64   `json:"quantity_sold"`
	TotalSales   float64 `json:"total_sales"`
	SaleCount    int64   `json:"number_of_sales"`
}

type CategorySalesRow struct {
	CategoryName string  `json:"category_name"`
	ItemsSold    int64   `json:"items_sold"`
	TotalSales   float64 `json:"total_sales"`
}

type DailySalesReport struct {
	Date           string                  `json:"date"`
	Summary        SalesSummary            `json:"summary"`
	Sales          []SaleRow               `json:"sales"`
	HourlySales    []HourlySalesRow        `json:"hourly_sales"`
	PaymentMethods []PaymentMethodSalesRow `json:"payment_methods"`
	TopProducts    []ProductSalesRow       `json:"top_products"`
	TopCategories  []CategorySalesRow      `json:"top_categories"`
}

type DailyTotalsRow struct {
	Day        string  `json:"day"`
	SaleCount  int64   `json:"sale_count"`
	TotalSales float64 `json:"total_sales"`
}

type UserSalesRow struct {
	Username   string  `json:"user"`
	SaleCount  int64   `json:"sale_count"`
	TotalSales float64 `json:"total_sales"`
}

type SalesRangeReport struct {
	StartDate      string                  `json:"start_date"`
	EndDate        string                  `json:"end_date"`
	Summary        SalesSummary            `json:"summary"`
	DailySales     []DailyTotalsRow        `json:"daily_sales"`
	PaymentMethods []PaymentMethodSalesRow `json:"payment_methods"`
	TopProducts    []ProductSalesRow       `json:"top_products"`
	TopCategories  []CategorySalesRow      `json:"top_categories"`
	SalesByUser    []UserSalesRow          `json:"sales_by_user"`
}

type ProductPerformanceSummary struct {
	ProductID     int64   `json:"product_id"`
	ProductName   string  `json:"product_name"`
	CurrentPrice  float64 `json:"current_price"`
	CurrentCost   float64 `json:"current_cost"`
	TotalQuantity int64   `json:"total_quantity"`
	TotalSales    float64 `json:"total_sales"`
	SaleCount     int64   `json:"number_of_sales"`
	AveragePrice  float64 `json:"average_price"`
	FirstSold     string  `json:"first_sold,omitempty"`
	LastSold      string  `json:"last_sold,omitempty"`
}

type MonthlySalesRow struct {
	Month        string  `json:"month"`
	QuantitySold int64   `json:"quantity_sold"`
	TotalSales   float64 `json:"total_sales"`
	SaleCount    int64   `json:"number_of_sales"`
}

type VariantSalesRow struct {
	VariantID    int64             `json:"variant_id"`
	VariantName  string            `json:"variant_name"`
	Attributes   map[string]string `json:"attributes"`
	QuantitySold int64             `json:"quantity_sold"`
	TotalSales   float64           `json:"total_sales"`
	SaleCount    int64             `json:"number_of_sales"`
}

type ProductPerformanceReport struct {
	Product      ProductPerformanceSummary `json:"product"`
	MonthlySales []MonthlySalesRow         `json:"monthly_sales"`
	VariantSales []VariantSalesRow         `json:"variant_sales"`
}

type InventorySummary struct {
	TotalProducts        int     `json:"total_products"`
	LowStockProducts     int     `json:"low_stock_products"`
	WarningStockProducts int     `json:"warning_stock_products"`
	TotalStockValue      float64 `json:"total_stock_value"`
	TotalRetailValue     float64 `json:"total_retail_value"`
	PotentialProfit      float64 `json:"potential_profit"`
}

type InventoryProductRow struct {
	ProductID    int64       `json:"product_id"`
	ProductName  string      `json:"product_name"`
	CategoryName string      `json:"category_name"`
	CurrentStock int         `json:"current_stock"`
	MinimumStock int         `json:"minimum_stock"`
	ReorderPoint int         `json:"reorder_point"`
	Cost         float64     `json:"cost"`
	Price        float64     `json:"price"`
	HasVariants  bool        `json:"has_variants"`
	StockStatus  StockStatus `json:"stock_status"`
	StockValue   float64     `json:"stock_value"`
	RetailValue  float64     `json:"retail_value"`
}

type InventoryVariantRow struct {
	VariantID       int64             `json:"variant_id"`
	ProductID       int64             `json:"product_id"`
	ProductName     string            `json:"product_name"`
	VariantName     string            `json:"variant_name"`
	Attributes      map[string]string `json:"attributes"`
	CurrentStock    int               `json:"current_stock"`
	PriceAdjustment float64           `json:"price_adjustment"`
	BaseCost        float64           `json:"base_cost"`
	BasePrice       float64           `json:"base_price"`
	VariantPrice    float64           `json:"variant_price"`
	StockStatus     StockStatus       `json:"stock_status"`
	StockValue      float64           `json:"stock_value"`
}

type InventoryReport struct {
	Summary  InventorySummary      `json:"summary"`
	Products []InventoryProductRow `json:"products"`
	Variants []InventoryVariantRow `json:"variants"`
}

type ProfitSummary struct {
	TotalRevenue     float64 `json:"total_revenue"`
	TotalCost        float64 `json:"total_cost"`
	TotalProfit      float64 `json:"total_profit"`
	MarginPercentage float64 `json:"margin_percentage"`
}

type ProductMarginRow struct {
	ProductID        int64   `json:"product_id"`
	ProductName      string  `json:"product_name"`
	CategoryName     string  `json:"category_name"`
	QuantitySold     int64   `json:"quantity_sold"`
	Revenue          float64 `json:"revenue"`
	Cost             float64 `json:"cost"`
	Profit           float64 `json:"profit"`
	MarginPercentage float64 `json:"margin_percentage"`
}

type CategoryMarginRow struct {
	CategoryName     string  `json:"category_name"`
	ProductCount     int64   `json:"product_count"`
	QuantitySold     int64   `json:"quantity_sold"`
	Revenue          float64 `json:"revenue"`
	Cost             float64 `json:"cost"`
	Profit           float64 `json:"profit"`
	MarginPercentage float64 `json:"margin_percentage"`
}

type MonthlyMarginRow struct {
	Month            string  `json:"month"`
	Revenue          float64 `json:"revenue"`
	Cost             float64 `json:"cost"`
	Profit           float64 `json:"profit"`
	MarginPercentage float64 `json:"margin_percentage"`
}

type ProfitMarginReport struct {
	StartDate    string              `json:"start_date,omitempty"`
	EndDate      string              `json:"end_date,omitempty"`
	Summary      ProfitSummary       `json:"summary"`
	Products     []ProductMarginRow  `json:"products"`
	Categories   []CategoryMarginRow `json:"categories"`
	MonthlyTrend []MonthlyMarginRow  `json:"monthly_trend"`
}

type StockMovementSummary struct {
	StartDate      string `json:"start_date,omitempty"`
	EndDate        string `json:"end_date,omitempty"`
	TotalMovements int    `json:"total_movements"`
	TotalIn        int64  `json:"total_in"`
	TotalOut       int64  `json:"total_out"`
	NetChange      int64  `json:"net_change"`
}

type MovementTypeRow struct {
	MovementType  string  `json:"movement_type"`
	MovementCount int64   `json:"movement_count"`
	TotalQuantity int64   `json:"total_quantity"`
	TotalValue    float64 `json:"total_value"`
}

type MovementRow struct {
	MovementID   int64     `json:"movement_id"`
	ProductID    int64     `json:"product_id"`
	ProductName  string    `json:"product_name"`
	VariantID    *int64    `json:"variant_id,omitempty"`
	VariantName  string    `json:"variant_name,omitempty"`
	MovementType string    `json:"movement_type"`
	Quantity     int       `json:"quantity"`
	UnitPrice    float64   `json:"unit_price"`
	Reference    string    `json:"reference,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	Username     string    `json:"user_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type StockMovementReport struct {
	Summary       StockMovementSummary `json:"summary"`
	MovementTypes []MovementTypeRow    `json:"movement_types"`
	Movements     []MovementRow        `json:"movements"`
}

type CustomerSalesSummary struct {
	StartDate          string  `json:"start_date,omitempty"`
	EndDate            string  `json:"end_date,omitempty"`
	TotalCustomers     int     `json:"total_customers"`
	TotalSales         int64   `json:"total_sales"`
	TotalRevenue       float64 `json:"total_revenue"`
	AveragePerCustomer float64 `json:"average_per_customer"`
}

type CustomerRow struct {
	CustomerID    int64     `json:"customer_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email,omitempty"`
	CustomerPhone string    `json:"customer_phone,omitempty"`
	SaleCount     int64     `json:"sale_count"`
	TotalSpent    float64   `json:"total_spent"`
	AverageSale   float64   `json:"average_sale"`
	FirstPurchase time.Time `json:"first_purchase"`
	LastPurchase  time.Time `json:"last_purchase"`
}

type CustomerPurchaseRow struct {
	SaleID        int64     `json:"sale_id"`
	CreatedAt     time.Time `json:"created_at"`
	Subtotal      float64   `json:"subtotal"`
	Discount      float64   `json:"discount"`
	FinalTotal    float64   `json:"final_total"`
	PaymentMethod string    `json:"payment_method"`
	ItemCount     int64     `json:"item_count"`
}

type FavoriteProductRow struct {
	ProductID         int64   `json:"product_id"`
	ProductName       string  `json:"product_name"`
	QuantityPurchased int64   `json:"quantity_purchased"`
	PurchaseCount     int64   `json:"purchase_count"`
	TotalSpent        float64 `json:"total_spent"`
}

// CustomerSalesReport: CustomerPurchases and FavoriteProducts are populated
// only when the report was requested for a single customer; otherwise they
// stay empty and callers must not rely on them.
type CustomerSalesReport struct {
	Summary           CustomerSalesSummary  `json:"summary"`
	Customers         []CustomerRow         `json:"customers"`
	CustomerPurchases []CustomerPurchaseRow `json:"customer_purchases"`
	FavoriteProducts  []FavoriteProductRow  `json:"favorite_products"`
}

type PaymentSummaryReport struct {
	StartDate string                  `json:"start_date,omitempty"`
	EndDate   string                  `json:"end_date,omitempty"`
	Methods   []PaymentMethodSalesRow `json:"methods"`
}

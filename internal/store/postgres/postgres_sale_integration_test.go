package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"marocpos/backend/internal/domain"
)

func TestCreateSaleDecrementsStockAndRecordsPayments(t *testing.T) {
	databaseURL := os.Getenv("MAROCPOS_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set MAROCPOS_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	if err := s.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	stamp := time.Now().UnixNano()
	product, err := s.CreateProduct(ctx, domain.Product{
		Name:          fmt.Sprintf("Produit IT %d", stamp),
		Barcode:       fmt.Sprintf("IT-%d", stamp),
		UnitPrice:     50,
		PurchasePrice: 30,
		Stock:         10,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	var saleID int64
	t.Cleanup(func() {
		if saleID != 0 {
			_, _ = s.db.ExecContext(ctx, `DELETE FROM sale_payments WHERE sale_id = $1`, saleID)
			_, _ = s.db.ExecContext(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, saleID)
			_, _ = s.db.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, saleID)
		}
		_, _ = s.db.ExecContext(ctx, `DELETE FROM stock_movements WHERE product_id = $1`, product.ID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, product.ID)
	})

	methods, err := s.ListPaymentMethods(ctx)
	if err != nil || len(methods) == 0 {
		t.Fatalf("list payment methods: %v (%d rows)", err, len(methods))
	}
	methodID := methods[0].ID

	sale, err := s.CreateSale(ctx, domain.Sale{
		PaymentMethod: methods[0].Name,
		Reference:     fmt.Sprintf("sale-it-%d", stamp),
	}, []domain.SaleLineRequest{
		{ProductID: product.ID, Quantity: 3},
	}, []domain.PaymentEntry{
		{MethodID: methodID, Amount: 150},
		{MethodID: methodID, Amount: 0}, // must be skipped
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	saleID = sale.ID

	refreshed, err := s.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if refreshed.Stock != 7 {
		t.Fatalf("expected stock 7 after selling 3 of 10, got %d", refreshed.Stock)
	}

	payments, err := s.GetSalePayments(ctx, sale.ID)
	if err != nil {
		t.Fatalf("get sale payments: %v", err)
	}
	if len(payments) != 1 {
		t.Fatalf("expected 1 recorded payment (zero amount skipped), got %d", len(payments))
	}
	if payments[0].Amount != 150 {
		t.Fatalf("expected amount 150, got %v", payments[0].Amount)
	}

	var movements int
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM stock_movements
		WHERE product_id = $1 AND movement_type = 'sale'
	`, product.ID).Scan(&movements); err != nil {
		t.Fatalf("query movements: %v", err)
	}
	if movements != 1 {
		t.Fatalf("expected one sale movement row, got %d", movements)
	}
}

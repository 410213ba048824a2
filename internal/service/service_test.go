package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"marocpos/backend/internal/cache"
	"marocpos/backend/internal/domain"
	"marocpos/backend/internal/store"
	"marocpos/backend/internal/store/memory"
)

// Seeded fixture layout: products 1-4 are simple grocery items, product 5
// is a shirt with variants 1 (M, stock 12), 2 (L, +10, stock 4) and
// 3 (XL, +15, stock 0). Payment methods 1-5 are the default catalog in
// insertion order (Espèces, Carte, Chèque, Virement, Crédit).

func newTestService() *Service {
	repo := memory.NewSeeded()
	return New(repo, cache.NoopReportCache{}, 5*time.Second)
}

func adminCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{Username: "admin", Role: domain.RoleAdmin})
}

func TestRecordSaleComputesTotalsAndDecrementsStock(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	sale, err := svc.RecordSale(ctx, domain.SaleCreateRequest{
		Items:    []domain.SaleLineRequest{{ProductID: 1, Quantity: 2}},
		Payments: []domain.PaymentEntry{{MethodID: 1, Amount: 170}},
	})
	if err != nil {
		t.Fatalf("record sale failed: %v", err)
	}
	if sale.TotalAmount != 170 || sale.FinalTotal != 170 {
		t.Fatalf("expected total 170, got total=%v final=%v", sale.TotalAmount, sale.FinalTotal)
	}
	if sale.PaymentMethod != "Espèces" {
		t.Fatalf("expected payment label Espèces, got %q", sale.PaymentMethod)
	}
	if sale.Reference == "" {
		t.Fatalf("expected a generated sale reference")
	}

	product, err := svc.GetProduct(ctx, 1)
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if product.Stock != 38 {
		t.Fatalf("expected stock 38 after selling 2 of 40, got %d", product.Stock)
	}
}

func TestRecordSaleAppliesVariantPriceAdjustment(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	variantID := int64(2)
	sale, err := svc.RecordSale(ctx, domain.SaleCreateRequest{
		Items: []domain.SaleLineRequest{{ProductID: 5, VariantID: &variantID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("record sale failed: %v", err)
	}
	if sale.FinalTotal != 130 {
		t.Fatalf("expected variant price 120+10, got %v", sale.FinalTotal)
	}

	variants, err := svc.ListVariants(ctx, 5)
	if err != nil {
		t.Fatalf("list variants failed: %v", err)
	}
	for _, v := range variants {
		if v.ID == variantID && v.Stock != 3 {
			t.Fatalf("expected variant stock 3 after sale, got %d", v.Stock)
		}
	}
}

func TestRecordSaleInsufficientVariantStock(t *testing.T) {
	svc := newTestService()

	variantID := int64(3)
	_, err := svc.RecordSale(adminCtx(), domain.SaleCreateRequest{
		Items: []domain.SaleLineRequest{{ProductID: 5, VariantID: &variantID, Quantity: 1}},
	})
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
}

func TestRecordSaleRequiresReferenceWhenMethodDemandsOne(t *testing.T) {
	svc := newTestService()

	_, err := svc.RecordSale(adminCtx(), domain.SaleCreateRequest{
		Items:    []domain.SaleLineRequest{{ProductID: 1, Quantity: 1}},
		Payments: []domain.PaymentEntry{{MethodID: 2, Amount: 85}},
	})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for card payment without reference, got %v", err)
	}

	sale, err := svc.RecordSale(adminCtx(), domain.SaleCreateRequest{
		Items:    []domain.SaleLineRequest{{ProductID: 1, Quantity: 1}},
		Payments: []domain.PaymentEntry{{MethodID: 2, Amount: 85, Reference: "TX-1001"}},
	})
	if err != nil {
		t.Fatalf("record sale with reference failed: %v", err)
	}
	if sale.PaymentMethod != "Carte" {
		t.Fatalf("expected payment label Carte, got %q", sale.PaymentMethod)
	}
}

func TestDailySalesSummaryMatchesSaleList(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	for _, qty := range []int{1, 3} {
		if _, err := svc.RecordSale(ctx, domain.SaleCreateRequest{
			Items:    []domain.SaleLineRequest{{ProductID: 2, Quantity: qty}},
			Payments: []domain.PaymentEntry{{MethodID: 1, Amount: float64(qty) * 32}},
		}); err != nil {
			t.Fatalf("record sale failed: %v", err)
		}
	}

	report, err := svc.DailySales(ctx, "")
	if err != nil {
		t.Fatalf("daily sales failed: %v", err)
	}
	if report.Summary.SaleCount != int64(len(report.Sales)) {
		t.Fatalf("summary count %d does not match %d listed sales", report.Summary.SaleCount, len(report.Sales))
	}
	if report.Summary.SaleCount != 2 {
		t.Fatalf("expected 2 sales, got %d", report.Summary.SaleCount)
	}
	if report.Summary.TotalSales != 128 {
		t.Fatalf("expected total 128, got %v", report.Summary.TotalSales)
	}
	if report.Summary.MinSale != 32 || report.Summary.MaxSale != 96 {
		t.Fatalf("unexpected min/max: %v/%v", report.Summary.MinSale, report.Summary.MaxSale)
	}
	if len(report.PaymentMethods) != 1 || report.PaymentMethods[0].PaymentMethod != "Espèces" {
		t.Fatalf("unexpected payment method rows: %+v", report.PaymentMethods)
	}
	if len(report.TopProducts) != 1 || report.TopProducts[0].QuantitySold != 4 {
		t.Fatalf("unexpected top products: %+v", report.TopProducts)
	}
}

func TestDailySalesEmptyDayIsZeroedNotNil(t *testing.T) {
	svc := newTestService()

	report, err := svc.DailySales(context.Background(), "2001-01-02")
	if err != nil {
		t.Fatalf("daily sales failed: %v", err)
	}
	if report.Summary.SaleCount != 0 || report.Summary.TotalSales != 0 || report.Summary.MinSale != 0 {
		t.Fatalf("expected zeroed summary, got %+v", report.Summary)
	}
	if report.Sales == nil || report.HourlySales == nil || report.PaymentMethods == nil ||
		report.TopProducts == nil || report.TopCategories == nil {
		t.Fatalf("expected empty lists, not nil")
	}
	if len(report.Sales) != 0 {
		t.Fatalf("expected no sales on an empty day")
	}
}

func TestSalesRangeAcceptsAlreadySuffixedBounds(t *testing.T) {
	svc := newTestService()

	report, err := svc.SalesRange(context.Background(), "2001-01-01 00:00:00", "2001-01-31 23:59:59")
	if err != nil {
		t.Fatalf("sales range failed: %v", err)
	}
	if report.StartDate != "2001-01-01" || report.EndDate != "2001-01-31" {
		t.Fatalf("unexpected range labels: %s..%s", report.StartDate, report.EndDate)
	}

	if _, err := svc.SalesRange(context.Background(), "2001-02-01", "2001-01-01"); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for inverted range, got %v", err)
	}
}

func TestStockMovementReportBalancesInAndOut(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	if _, err := svc.AdjustStock(ctx, domain.StockAdjustmentRequest{
		ProductID: 2, MovementType: domain.MovementPurchase, Quantity: 10,
	}); err != nil {
		t.Fatalf("purchase adjustment failed: %v", err)
	}
	if _, err := svc.AdjustStock(ctx, domain.StockAdjustmentRequest{
		ProductID: 2, MovementType: domain.MovementDamage, Quantity: 3,
	}); err != nil {
		t.Fatalf("damage adjustment failed: %v", err)
	}
	if _, err := svc.RecordSale(ctx, domain.SaleCreateRequest{
		Items: []domain.SaleLineRequest{{ProductID: 2, Quantity: 5}},
	}); err != nil {
		t.Fatalf("record sale failed: %v", err)
	}

	report, err := svc.StockMovements(ctx, "", "", 0)
	if err != nil {
		t.Fatalf("stock movement report failed: %v", err)
	}
	if report.Summary.TotalIn != 10 {
		t.Fatalf("expected total in 10, got %d", report.Summary.TotalIn)
	}
	if report.Summary.TotalOut != 8 {
		t.Fatalf("expected total out 8 (damage 3 + sale 5), got %d", report.Summary.TotalOut)
	}
	if report.Summary.NetChange != report.Summary.TotalIn-report.Summary.TotalOut {
		t.Fatalf("net change %d does not balance", report.Summary.NetChange)
	}
	if report.Summary.TotalMovements != len(report.Movements) {
		t.Fatalf("summary counts %d movements, list has %d", report.Summary.TotalMovements, len(report.Movements))
	}
}

func TestAdjustStockRejectsUnknownAndSaleTypes(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	if _, err := svc.AdjustStock(ctx, domain.StockAdjustmentRequest{
		ProductID: 2, MovementType: "recount", Quantity: 1,
	}); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown type, got %v", err)
	}
	if _, err := svc.AdjustStock(ctx, domain.StockAdjustmentRequest{
		ProductID: 2, MovementType: domain.MovementSale, Quantity: 1,
	}); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for manual sale movement, got %v", err)
	}

	if _, err := svc.AdjustStock(context.Background(), domain.StockAdjustmentRequest{
		ProductID: 2, MovementType: domain.MovementPurchase, Quantity: 1,
	}); err == nil {
		t.Fatalf("expected adjustment without admin actor to fail")
	}
}

func TestProfitMarginBreakdownSkipsZeroCostProducts(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	freebie, err := svc.CreateProduct(ctx, domain.ProductCreateRequest{
		Name: "Sac promotionnel", UnitPrice: 5, PurchasePrice: 0, Stock: 100,
	})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	if _, err := svc.RecordSale(ctx, domain.SaleCreateRequest{
		Items: []domain.SaleLineRequest{
			{ProductID: 1, Quantity: 2},
			{ProductID: freebie.ID, Quantity: 4},
		},
	}); err != nil {
		t.Fatalf("record sale failed: %v", err)
	}

	report, err := svc.ProfitMargin(ctx, "", "")
	if err != nil {
		t.Fatalf("profit margin failed: %v", err)
	}

	// 2x85 + 4x5 revenue; cost only from the tracked product.
	if report.Summary.TotalRevenue != 190 {
		t.Fatalf("expected summary revenue 190, got %v", report.Summary.TotalRevenue)
	}
	if report.Summary.TotalCost != 124 {
		t.Fatalf("expected summary cost 124, got %v", report.Summary.TotalCost)
	}
	for _, row := range report.Products {
		if row.ProductID == freebie.ID {
			t.Fatalf("zero-cost product leaked into margin breakdown: %+v", row)
		}
		if row.Cost <= 0 {
			t.Fatalf("breakdown row with non-positive cost: %+v", row)
		}
	}
	if len(report.Products) != 1 {
		t.Fatalf("expected one costed product row, got %d", len(report.Products))
	}
}

func TestCustomerDetailOnlyForSingleCustomerQueries(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	alice, err := svc.CreateCustomer(ctx, domain.Customer{Name: "Alice", Phone: "0600000001"})
	if err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	bob, err := svc.CreateCustomer(ctx, domain.Customer{Name: "Bob"})
	if err != nil {
		t.Fatalf("create customer failed: %v", err)
	}

	for _, customerID := range []int64{alice.ID, alice.ID, bob.ID} {
		id := customerID
		if _, err := svc.RecordSale(ctx, domain.SaleCreateRequest{
			CustomerID: &id,
			Items:      []domain.SaleLineRequest{{ProductID: 3, Quantity: 1}},
		}); err != nil {
			t.Fatalf("record sale failed: %v", err)
		}
	}

	all, err := svc.CustomerSales(ctx, "", "", 0)
	if err != nil {
		t.Fatalf("customer sales failed: %v", err)
	}
	if all.Summary.TotalCustomers != 2 || all.Summary.TotalSales != 3 {
		t.Fatalf("unexpected summary: %+v", all.Summary)
	}
	if all.CustomerPurchases == nil || len(all.CustomerPurchases) != 0 {
		t.Fatalf("expected empty purchase detail for multi-customer query")
	}
	if all.FavoriteProducts == nil || len(all.FavoriteProducts) != 0 {
		t.Fatalf("expected empty favorites for multi-customer query")
	}

	single, err := svc.CustomerSales(ctx, "", "", alice.ID)
	if err != nil {
		t.Fatalf("customer sales failed: %v", err)
	}
	if len(single.Customers) != 1 || single.Customers[0].SaleCount != 2 {
		t.Fatalf("unexpected single-customer rows: %+v", single.Customers)
	}
	if len(single.CustomerPurchases) != 2 {
		t.Fatalf("expected 2 purchases for Alice, got %d", len(single.CustomerPurchases))
	}
	if len(single.FavoriteProducts) != 1 || single.FavoriteProducts[0].QuantityPurchased != 2 {
		t.Fatalf("unexpected favorites: %+v", single.FavoriteProducts)
	}
}

func TestPaymentSummaryGroupsSplitPayments(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	sale, err := svc.RecordSale(ctx, domain.SaleCreateRequest{
		Items: []domain.SaleLineRequest{{ProductID: 1, Quantity: 2}},
		Payments: []domain.PaymentEntry{
			{MethodID: 1, Amount: 100},
			{MethodID: 2, Amount: 70, Reference: "TX-42"},
		},
	})
	if err != nil {
		t.Fatalf("record sale failed: %v", err)
	}
	if sale.PaymentMethod != "Mixte" {
		t.Fatalf("expected Mixte label for split payment, got %q", sale.PaymentMethod)
	}

	// Zero and negative amounts are dropped without error.
	if err := svc.AddPaymentToSale(ctx, sale.ID, []domain.PaymentEntry{
		{MethodID: 1, Amount: 0},
		{MethodID: 5, Amount: -3},
	}); err != nil {
		t.Fatalf("add payment failed: %v", err)
	}

	payments, err := svc.GetSalePayments(ctx, sale.ID)
	if err != nil {
		t.Fatalf("get sale payments failed: %v", err)
	}
	if len(payments) != 2 {
		t.Fatalf("expected 2 recorded splits, got %d", len(payments))
	}

	summary, err := svc.PaymentSummary(ctx, "", "")
	if err != nil {
		t.Fatalf("payment summary failed: %v", err)
	}
	if len(summary.Methods) != 2 {
		t.Fatalf("expected 2 method rows, got %+v", summary.Methods)
	}
	if summary.Methods[0].PaymentMethod != "Espèces" || summary.Methods[0].TotalAmount != 100 {
		t.Fatalf("unexpected first row: %+v", summary.Methods[0])
	}
	if summary.Methods[1].PaymentMethod != "Carte" || summary.Methods[1].TotalAmount != 70 {
		t.Fatalf("unexpected second row: %+v", summary.Methods[1])
	}
}

func TestProductPerformanceVariantBreakdown(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	mID, lID := int64(1), int64(2)
	for _, v := range []struct {
		id  *int64
		qty int
	}{{&mID, 3}, {&lID, 1}} {
		if _, err := svc.RecordSale(ctx, domain.SaleCreateRequest{
			Items: []domain.SaleLineRequest{{ProductID: 5, VariantID: v.id, Quantity: v.qty}},
		}); err != nil {
			t.Fatalf("record sale failed: %v", err)
		}
	}

	report, err := svc.ProductPerformance(ctx, 5, "", "")
	if err != nil {
		t.Fatalf("product performance failed: %v", err)
	}
	if report.Product.TotalQuantity != 4 {
		t.Fatalf("expected 4 units sold, got %d", report.Product.TotalQuantity)
	}
	if len(report.VariantSales) != 2 {
		t.Fatalf("expected 2 variant rows, got %d", len(report.VariantSales))
	}
	top := report.VariantSales[0]
	if top.VariantID != mID || top.QuantitySold != 3 {
		t.Fatalf("expected M variant first with qty 3, got %+v", top)
	}
	if top.VariantName != "M / Bleu" {
		t.Fatalf("unexpected variant display name %q", top.VariantName)
	}
	if top.Attributes["taille"] != "M" {
		t.Fatalf("unexpected attributes %+v", top.Attributes)
	}
}

func TestInventoryReportClassifiesVariantThresholds(t *testing.T) {
	svc := newTestService()

	report, err := svc.InventoryReport(context.Background())
	if err != nil {
		t.Fatalf("inventory report failed: %v", err)
	}
	if report.Summary.TotalProducts != 5 {
		t.Fatalf("expected 5 products, got %d", report.Summary.TotalProducts)
	}

	statusByVariant := map[int64]domain.StockStatus{}
	for _, v := range report.Variants {
		statusByVariant[v.VariantID] = v.StockStatus
	}
	if statusByVariant[1] != domain.StockOK {
		t.Fatalf("variant stock 12 should be ok, got %s", statusByVariant[1])
	}
	if statusByVariant[2] != domain.StockWarning {
		t.Fatalf("variant stock 4 should be warning, got %s", statusByVariant[2])
	}
	if statusByVariant[3] != domain.StockLow {
		t.Fatalf("variant stock 0 should be low, got %s", statusByVariant[3])
	}
	if report.Summary.PotentialProfit != report.Summary.TotalRetailValue-report.Summary.TotalStockValue {
		t.Fatalf("potential profit does not balance: %+v", report.Summary)
	}
}

func TestReportRegistry(t *testing.T) {
	svc := newTestService()

	if _, err := svc.Report(context.Background(), "no-such-report", ReportParams{}); !errors.Is(err, ErrUnknownReport) {
		t.Fatalf("expected ErrUnknownReport, got %v", err)
	}

	payload, err := svc.Report(context.Background(), "inventory", ReportParams{})
	if err != nil {
		t.Fatalf("inventory report failed: %v", err)
	}
	var decoded domain.InventoryReport
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("report payload is not valid JSON: %v", err)
	}
	if decoded.Summary.TotalProducts != 5 {
		t.Fatalf("expected 5 products in decoded report, got %d", decoded.Summary.TotalProducts)
	}

	ids := ReportIDs()
	if len(ids) != 8 {
		t.Fatalf("expected 8 registered reports, got %v", ids)
	}
}

func TestPaymentMethodAdminLifecycle(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	created, err := svc.AddPaymentMethod(ctx, domain.PaymentMethodCreateRequest{
		Name: "Bon d'achat", Code: "VOUCHER", RequiresReference: true, ReferenceLabel: "N° Bon",
	})
	if err != nil {
		t.Fatalf("add payment method failed: %v", err)
	}
	if !created.IsActive {
		t.Fatalf("new methods must start active")
	}

	inactive := false
	updated, err := svc.UpdatePaymentMethod(ctx, created.ID, domain.PaymentMethodUpdateRequest{IsActive: &inactive})
	if err != nil {
		t.Fatalf("update payment method failed: %v", err)
	}
	if updated.IsActive {
		t.Fatalf("expected method to be deactivated")
	}

	methods, err := svc.ListPaymentMethods(ctx)
	if err != nil {
		t.Fatalf("list payment methods failed: %v", err)
	}
	for _, m := range methods {
		if m.ID == created.ID {
			t.Fatalf("deactivated method should not be listed")
		}
	}

	cashierCtx := WithActor(context.Background(), domain.Actor{Username: "cashier", Role: domain.RoleCashier})
	if _, err := svc.AddPaymentMethod(cashierCtx, domain.PaymentMethodCreateRequest{Name: "X"}); err == nil {
		t.Fatalf("expected cashier to be rejected from method management")
	}
}

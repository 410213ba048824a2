package memory

import (
	"context"
	"slices"
	"time"

	"marocpos/backend/internal/domain"
	"marocpos/backend/internal/store"
)

// Report aggregations mirror the SQL the postgres store runs: same grouping
// keys, same fallback labels, same ordering and row limits.

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

func dateLabel(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func (s *Store) salesBetween(from, to *time.Time) []domain.Sale {
	sales := make([]domain.Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		if inRange(sale.CreatedAt, from, to) {
			sales = append(sales, sale)
		}
	}
	slices.SortFunc(sales, func(a, b domain.Sale) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return int(a.ID - b.ID)
		}
		if a.CreatedAt.Before(b.CreatedAt) {
			return -1
		}
		return 1
	})
	return sales
}

func salesSummaryOf(sales []domain.Sale) domain.SalesSummary {
	summary := domain.SalesSummary{SaleCount: int64(len(sales))}
	for i, sale := range sales {
		summary.TotalSales += sale.FinalTotal
		summary.TotalDiscount += sale.Discount
		if i == 0 || sale.FinalTotal < summary.MinSale {
			summary.MinSale = sale.FinalTotal
		}
		if sale.FinalTotal > summary.MaxSale {
			summary.MaxSale = sale.FinalTotal
		}
	}
	if summary.SaleCount > 0 {
		summary.AverageSale = summary.TotalSales / float64(summary.SaleCount)
	}
	return summary
}

func (s *Store) saleRowsOf(sales []domain.Sale) []domain.SaleRow {
	rows := make([]domain.SaleRow, 0, len(sales))
	for _, sale := range sales {
		username := s.userNameForID(sale.UserID)
		if username == "" {
			username = "Inconnu"
		}
		rows = append(rows, domain.SaleRow{
			SaleID:      sale.ID,
			CreatedAt:   sale.CreatedAt,
			Username:    username,
			ItemCount:   int64(len(sale.Items)),
			TotalAmount: sale.TotalAmount,
			Discount:    sale.Discount,
			FinalTotal:  sale.FinalTotal,
		})
	}
	return rows
}

// paymentMethodRowsOf buckets sales by payment method. A sale with split
// payment records contributes one bucket entry per split under the method
// name; a sale without splits falls back to its legacy payment_method label
// and its final total.
func (s *Store) paymentMethodRowsOf(sales []domain.Sale) []domain.PaymentMethodSalesRow {
	type bucket struct {
		saleIDs map[int64]struct{}
		total   float64
	}
	buckets := make(map[string]*bucket)
	add := func(name string, saleID int64, amount float64) {
		b, ok := buckets[name]
		if !ok {
			b = &bucket{saleIDs: make(map[int64]struct{})}
			buckets[name] = b
		}
		b.saleIDs[saleID] = struct{}{}
		b.total += amount
	}

	for _, sale := range sales {
		split := false
		for _, sp := range s.salePayments {
			if sp.SaleID != sale.ID {
				continue
			}
			split = true
			name := sale.PaymentMethod
			if sp.MethodID != nil {
				if method, ok := s.paymentMethods[*sp.MethodID]; ok {
					name = method.Name
				}
			}
			add(name, sale.ID, sp.Amount)
		}
		if !split {
			add(sale.PaymentMethod, sale.ID, sale.FinalTotal)
		}
	}

	rows := make([]domain.PaymentMethodSalesRow, 0, len(buckets))
	for name, b := range buckets {
		rows = append(rows, domain.PaymentMethodSalesRow{
			PaymentMethod:    name,
			TransactionCount: int64(len(b.saleIDs)),
			TotalAmount:      b.total,
		})
	}
	slices.SortFunc(rows, func(a, b domain.PaymentMethodSalesRow) int {
		if a.TotalAmount == b.TotalAmount {
			return cmpString(a.PaymentMethod, b.PaymentMethod)
		}
		if a.TotalAmount > b.TotalAmount {
			return -1
		}
		return 1
	})
	return rows
}

func (s *Store) topProductRowsOf(sales []domain.Sale, limit int) []domain.ProductSalesRow {
	type bucket struct {
		name     string
		quantity int64
		total    float64
		saleIDs  map[int64]struct{}
	}
	buckets := make(map[int64]*bucket)
	for _, sale := range sales {
		for _, item := range sale.Items {
			b, ok := buckets[item.ProductID]
			if !ok {
				name := ""
				if p, found := s.products[item.ProductID]; found {
					name = p.Name
				}
				b = &bucket{name: name, saleIDs: make(map[int64]struct{})}
				buckets[item.ProductID] = b
			}
			b.quantity += int64(item.Quantity)
			b.total += item.Subtotal
			b.saleIDs[sale.ID] = struct{}{}
		}
	}

	rows := make([]domain.ProductSalesRow, 0, len(buckets))
	for productID, b := range buckets {
		rows = append(rows, domain.ProductSalesRow{
			ProductID:    productID,
			ProductName:  b.name,
			QuantitySold: b.quantity,
			TotalSales:   b.total,
			SaleCount:    int64(len(b.saleIDs)),
		})
	}
	slices.SortFunc(rows, func(a, b domain.ProductSalesRow) int {
		if a.QuantitySold == b.QuantitySold {
			return int(a.ProductID - b.ProductID)
		}
		return int(b.QuantitySold - a.QuantitySold)
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

func (s *Store) topCategoryRowsOf(sales []domain.Sale) []domain.CategorySalesRow {
	type bucket struct {
		items int64
		total float64
	}
	buckets := make(map[string]*bucket)
	for _, sale := range sales {
		for _, item := range sale.Items {
			name := "Non catégorisé"
			if p, ok := s.products[item.ProductID]; ok {
				name = s.categoryNameFor(p.CategoryID)
			}
			b, ok := buckets[name]
			if !ok {
				b = &bucket{}
				buckets[name] = b
			}
			b.items++
			b.total += item.Subtotal
		}
	}

	rows := make([]domain.CategorySalesRow, 0, len(buckets))
	for name, b := range buckets {
		rows = append(rows, domain.CategorySalesRow{
			CategoryName: name,
			ItemsSold:    b.items,
			TotalSales:   b.total,
		})
	}
	slices.SortFunc(rows, func(a, b domain.CategorySalesRow) int {
		if a.TotalSales == b.TotalSales {
			return cmpString(a.CategoryName, b.CategoryName)
		}
		if a.TotalSales > b.TotalSales {
			return -1
		}
		return 1
	})
	return rows
}

func (s *Store) DailySales(_ context.Context, day string, from, to time.Time) (*domain.DailySalesReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sales := s.salesBetween(&from, &to)

	hourly := make(map[string]*domain.HourlySalesRow)
	for _, sale := range sales {
		hour := sale.CreatedAt.Format("15")
		row, ok := hourly[hour]
		if !ok {
			row = &domain.HourlySalesRow{Hour: hour}
			hourly[hour] = row
		}
		row.SaleCount++
		row.TotalSales += sale.FinalTotal
	}
	hourlyRows := make([]domain.HourlySalesRow, 0, len(hourly))
	for _, row := range hourly {
		hourlyRows = append(hourlyRows, *row)
	}
	slices.SortFunc(hourlyRows, func(a, b domain.HourlySalesRow) int {
		return cmpString(a.Hour, b.Hour)
	})

	return &domain.DailySalesReport{
		Date:           day,
		Summary:        salesSummaryOf(sales),
		Sales:          s.saleRowsOf(sales),
		HourlySales:    hourlyRows,
		PaymentMethods: s.paymentMethodRowsOf(sales),
		TopProducts:    s.topProductRowsOf(sales, 10),
		TopCategories:  s.topCategoryRowsOf(sales),
	}, nil
}

func (s *Store) SalesRange(_ context.Context, from, to time.Time) (*domain.SalesRangeReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sales := s.salesBetween(&from, &to)

	daily := make(map[string]*domain.DailyTotalsRow)
	for _, sale := range sales {
		day := sale.CreatedAt.Format("2006-01-02")
		row, ok := daily[day]
		if !ok {
			row = &domain.DailyTotalsRow{Day: day}
			daily[day] = row
		}
		row.SaleCount++
		row.TotalSales += sale.FinalTotal
	}
	dailyRows := make([]domain.DailyTotalsRow, 0, len(daily))
	for _, row := range daily {
		dailyRows = append(dailyRows, *row)
	}
	slices.SortFunc(dailyRows, func(a, b domain.DailyTotalsRow) int {
		return cmpString(a.Day, b.Day)
	})

	byUser := make(map[string]*domain.UserSalesRow)
	for _, sale := range sales {
		username := s.userNameForID(sale.UserID)
		if username == "" {
			continue
		}
		row, ok := byUser[username]
		if !ok {
			row = &domain.UserSalesRow{Username: username}
			byUser[username] = row
		}
		row.SaleCount++
		row.TotalSales += sale.FinalTotal
	}
	userRows := make([]domain.UserSalesRow, 0, len(byUser))
	for _, row := range byUser {
		userRows = append(userRows, *row)
	}
	slices.SortFunc(userRows, func(a, b domain.UserSalesRow) int {
		if a.TotalSales == b.TotalSales {
			return cmpString(a.Username, b.Username)
		}
		if a.TotalSales > b.TotalSales {
			return -1
		}
		return 1
	})

	return &domain.SalesRangeReport{
		StartDate:      from.Format("2006-01-02"),
		EndDate:        to.Format("2006-01-02"),
		Summary:        salesSummaryOf(sales),
		DailySales:     dailyRows,
		PaymentMethods: s.paymentMethodRowsOf(sales),
		TopProducts:    s.topProductRowsOf(sales, 20),
		TopCategories:  s.topCategoryRowsOf(sales),
		SalesByUser:    userRows,
	}, nil
}

func (s *Store) ProductPerformance(_ context.Context, productID int64, from, to *time.Time) (*domain.ProductPerformanceReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.products[productID]
	if !ok {
		return nil, store.ErrNotFound
	}

	summary := domain.ProductPerformanceSummary{
		ProductID:    product.ID,
		ProductName:  product.Name,
		CurrentPrice: product.UnitPrice,
		CurrentCost:  product.PurchasePrice,
	}

	type saleItemRow struct {
		item domain.SaleItem
		at   time.Time
	}
	matched := make([]saleItemRow, 0, 16)
	for _, sale := range s.sales {
		if !inRange(sale.CreatedAt, from, to) {
			continue
		}
		for _, item := range sale.Items {
			if item.ProductID == productID {
				matched = append(matched, saleItemRow{item: item, at: sale.CreatedAt})
			}
		}
	}

	var priceSum float64
	saleIDs := make(map[int64]struct{})
	var firstSold, lastSold time.Time
	for i, row := range matched {
		summary.TotalQuantity += int64(row.item.Quantity)
		summary.TotalSales += row.item.Subtotal
		priceSum += row.item.UnitPrice
		saleIDs[row.item.SaleID] = struct{}{}
		if i == 0 || row.at.Before(firstSold) {
			firstSold = row.at
		}
		if row.at.After(lastSold) {
			lastSold = row.at
		}
	}
	summary.SaleCount = int64(len(saleIDs))
	if len(matched) > 0 {
		summary.AveragePrice = priceSum / float64(len(matched))
		summary.FirstSold = firstSold.Format("2006-01-02")
		summary.LastSold = lastSold.Format("2006-01-02")
	}

	monthly := make(map[string]*domain.MonthlySalesRow)
	monthlySaleIDs := make(map[string]map[int64]struct{})
	for _, row := range matched {
		month := row.at.Format("2006-01")
		mrow, ok := monthly[month]
		if !ok {
			mrow = &domain.MonthlySalesRow{Month: month}
			monthly[month] = mrow
			monthlySaleIDs[month] = make(map[int64]struct{})
		}
		mrow.QuantitySold += int64(row.item.Quantity)
		mrow.TotalSales += row.item.Subtotal
		monthlySaleIDs[month][row.item.SaleID] = struct{}{}
	}
	monthlyRows := make([]domain.MonthlySalesRow, 0, len(monthly))
	for month, mrow := range monthly {
		mrow.SaleCount = int64(len(monthlySaleIDs[month]))
		monthlyRows = append(monthlyRows, *mrow)
	}
	slices.SortFunc(monthlyRows, func(a, b domain.MonthlySalesRow) int {
		return cmpString(a.Month, b.Month)
	})

	variantRows := make([]domain.VariantSalesRow, 0, 4)
	if product.HasVariants {
		type vbucket struct {
			quantity int64
			total    float64
			saleIDs  map[int64]struct{}
		}
		buckets := make(map[int64]*vbucket)
		for _, row := range matched {
			if row.item.VariantID == nil {
				continue
			}
			id := *row.item.VariantID
			b, ok := buckets[id]
			if !ok {
				b = &vbucket{saleIDs: make(map[int64]struct{})}
				buckets[id] = b
			}
			b.quantity += int64(row.item.Quantity)
			b.total += row.item.Subtotal
			b.saleIDs[row.item.SaleID] = struct{}{}
		}
		for id, b := range buckets {
			raw := ""
			if v, ok := s.variants[id]; ok {
				raw = v.AttributeValues
			}
			attrs, name := domain.DecodeVariantAttributes(id, raw)
			variantRows = append(variantRows, domain.VariantSalesRow{
				VariantID:    id,
				VariantName:  name,
				Attributes:   attrs,
				QuantitySold: b.quantity,
				TotalSales:   b.total,
				SaleCount:    int64(len(b.saleIDs)),
			})
		}
		slices.SortFunc(variantRows, func(a, b domain.VariantSalesRow) int {
			if a.QuantitySold == b.QuantitySold {
				return int(a.VariantID - b.VariantID)
			}
			return int(b.QuantitySold - a.QuantitySold)
		})
	}

	return &domain.ProductPerformanceReport{
		Product:      summary,
		MonthlySales: monthlyRows,
		VariantSales: variantRows,
	}, nil
}

func (s *Store) InventoryReport(_ context.Context) (*domain.InventoryReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	productRows := make([]domain.InventoryProductRow, 0, len(s.products))
	for _, p := range s.products {
		productRows = append(productRows, domain.InventoryProductRow{
			ProductID:    p.ID,
			ProductName:  p.Name,
			CategoryName: s.categoryNameFor(p.CategoryID),
			CurrentStock: p.Stock,
			MinimumStock: p.MinStock,
			ReorderPoint: p.ReorderPoint,
			Cost:         p.PurchasePrice,
			Price:        p.UnitPrice,
			HasVariants:  p.HasVariants,
			StockStatus:  domain.ProductStockStatus(p.Stock, p.MinStock, p.ReorderPoint),
			StockValue:   p.PurchasePrice * float64(p.Stock),
			RetailValue:  p.UnitPrice * float64(p.Stock),
		})
	}
	slices.SortFunc(productRows, func(a, b domain.InventoryProductRow) int {
		if a.StockStatus == b.StockStatus {
			return cmpString(a.ProductName, b.ProductName)
		}
		return cmpString(string(a.StockStatus), string(b.StockStatus))
	})

	variantRows := make([]domain.InventoryVariantRow, 0, len(s.variants))
	for _, v := range s.variants {
		p, ok := s.products[v.ProductID]
		if !ok || !p.HasVariants {
			continue
		}
		attrs, name := domain.DecodeVariantAttributes(v.ID, v.AttributeValues)
		variantPrice := p.UnitPrice + v.PriceAdjustment
		variantRows = append(variantRows, domain.InventoryVariantRow{
			VariantID:       v.ID,
			ProductID:       p.ID,
			ProductName:     p.Name,
			VariantName:     name,
			Attributes:      attrs,
			CurrentStock:    v.Stock,
			PriceAdjustment: v.PriceAdjustment,
			BaseCost:        p.PurchasePrice,
			BasePrice:       p.UnitPrice,
			VariantPrice:    variantPrice,
			StockStatus:     domain.VariantStockStatus(v.Stock),
			StockValue:      variantPrice * float64(v.Stock),
		})
	}
	slices.SortFunc(variantRows, func(a, b domain.InventoryVariantRow) int {
		if a.ProductName == b.ProductName {
			return int(a.VariantID - b.VariantID)
		}
		return cmpString(a.ProductName, b.ProductName)
	})

	summary := domain.InventorySummary{TotalProducts: len(productRows)}
	for _, row := range productRows {
		switch row.StockStatus {
		case domain.StockLow:
			summary.LowStockProducts++
		case domain.StockWarning:
			summary.WarningStockProducts++
		}
		summary.TotalStockValue += row.StockValue
		summary.TotalRetailValue += row.RetailValue
	}
	for _, row := range variantRows {
		summary.TotalStockValue += row.StockValue
	}
	summary.PotentialProfit = summary.TotalRetailValue - summary.TotalStockValue

	return &domain.InventoryReport{
		Summary:  summary,
		Products: productRows,
		Variants: variantRows,
	}, nil
}

func (s *Store) ProfitMarginReport(_ context.Context, from, to *time.Time) (*domain.ProfitMarginReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type itemRow struct {
		item domain.SaleItem
		at   time.Time
	}
	items := make([]itemRow, 0, len(s.saleItems))
	for _, sale := range s.sales {
		if !inRange(sale.CreatedAt, from, to) {
			continue
		}
		for _, item := range sale.Items {
			items = append(items, itemRow{item: item, at: sale.CreatedAt})
		}
	}

	// The overall summary aggregates every item; the breakdowns below only
	// include items with a recorded positive unit cost so untracked costs
	// cannot distort per-group margins.
	summary := domain.ProfitSummary{}
	for _, row := range items {
		summary.TotalRevenue += row.item.Subtotal
		summary.TotalCost += row.item.UnitCost * float64(row.item.Quantity)
	}
	summary.TotalProfit = summary.TotalRevenue - summary.TotalCost
	if summary.TotalRevenue != 0 {
		summary.MarginPercentage = summary.TotalProfit / summary.TotalRevenue * 100
	}

	costed := make([]itemRow, 0, len(items))
	for _, row := range items {
		if row.item.UnitCost > 0 {
			costed = append(costed, row)
		}
	}

	marginPct := func(profit, revenue float64) float64 {
		if revenue == 0 {
			return 0
		}
		return profit / revenue * 100
	}

	type pbucket struct {
		name     string
		category string
		quantity int64
		revenue  float64
		cost     float64
	}
	productBuckets := make(map[int64]*pbucket)
	for _, row := range costed {
		b, ok := productBuckets[row.item.ProductID]
		if !ok {
			name := ""
			category := "Non catégorisé"
			if p, found := s.products[row.item.ProductID]; found {
				name = p.Name
				category = s.categoryNameFor(p.CategoryID)
			}
			b = &pbucket{name: name, category: category}
			productBuckets[row.item.ProductID] = b
		}
		b.quantity += int64(row.item.Quantity)
		b.revenue += row.item.Subtotal
		b.cost += row.item.UnitCost * float64(row.item.Quantity)
	}
	productRows := make([]domain.ProductMarginRow, 0, len(productBuckets))
	for productID, b := range productBuckets {
		profit := b.revenue - b.cost
		productRows = append(productRows, domain.ProductMarginRow{
			ProductID:        productID,
			ProductName:      b.name,
			CategoryName:     b.category,
			QuantitySold:     b.quantity,
			Revenue:          b.revenue,
			Cost:             b.cost,
			Profit:           profit,
			MarginPercentage: marginPct(profit, b.revenue),
		})
	}
	slices.SortFunc(productRows, func(a, b domain.ProductMarginRow) int {
		if a.MarginPercentage == b.MarginPercentage {
			return int(a.ProductID - b.ProductID)
		}
		if a.MarginPercentage > b.MarginPercentage {
			return -1
		}
		return 1
	})

	type cbucket struct {
		productIDs map[int64]struct{}
		quantity   int64
		revenue    float64
		cost       float64
	}
	categoryBuckets := make(map[string]*cbucket)
	for _, row := range costed {
		category := "Non catégorisé"
		if p, ok := s.products[row.item.ProductID]; ok {
			category = s.categoryNameFor(p.CategoryID)
		}
		b, ok := categoryBuckets[category]
		if !ok {
			b = &cbucket{productIDs: make(map[int64]struct{})}
			categoryBuckets[category] = b
		}
		b.productIDs[row.item.ProductID] = struct{}{}
		b.quantity += int64(row.item.Quantity)
		b.revenue += row.item.Subtotal
		b.cost += row.item.UnitCost * float64(row.item.Quantity)
	}
	categoryRows := make([]domain.CategoryMarginRow, 0, len(categoryBuckets))
	for category, b := range categoryBuckets {
		profit := b.revenue - b.cost
		categoryRows = append(categoryRows, domain.CategoryMarginRow{
			CategoryName:     category,
			ProductCount:     int64(len(b.productIDs)),
			QuantitySold:     b.quantity,
			Revenue:          b.revenue,
			Cost:             b.cost,
			Profit:           profit,
			MarginPercentage: marginPct(profit, b.revenue),
		})
	}
	slices.SortFunc(categoryRows, func(a, b domain.CategoryMarginRow) int {
		if a.Profit == b.Profit {
			return cmpString(a.CategoryName, b.CategoryName)
		}
		if a.Profit > b.Profit {
			return -1
		}
		return 1
	})

	type mbucket struct {
		revenue float64
		cost    float64
	}
	monthlyBuckets := make(map[string]*mbucket)
	for _, row := range costed {
		month := row.at.Format("2006-01")
		b, ok := monthlyBuckets[month]
		if !ok {
			b = &mbucket{}
			monthlyBuckets[month] = b
		}
		b.revenue += row.item.Subtotal
		b.cost += row.item.UnitCost * float64(row.item.Quantity)
	}
	monthlyRows := make([]domain.MonthlyMarginRow, 0, len(monthlyBuckets))
	for month, b := range monthlyBuckets {
		profit := b.revenue - b.cost
		monthlyRows = append(monthlyRows, domain.MonthlyMarginRow{
			Month:            month,
			Revenue:          b.revenue,
			Cost:             b.cost,
			Profit:           profit,
			MarginPercentage: marginPct(profit, b.revenue),
		})
	}
	slices.SortFunc(monthlyRows, func(a, b domain.MonthlyMarginRow) int {
		return cmpString(a.Month, b.Month)
	})

	return &domain.ProfitMarginReport{
		StartDate:    dateLabel(from),
		EndDate:      dateLabel(to),
		Summary:      summary,
		Products:     productRows,
		Categories:   categoryRows,
		MonthlyTrend: monthlyRows,
	}, nil
}

func (s *Store) StockMovementReport(_ context.Context, from, to *time.Time, productID int64) (*domain.StockMovementReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.StockMovement, 0, len(s.movements))
	for _, m := range s.movements {
		if productID != 0 && m.ProductID != productID {
			continue
		}
		if !inRange(m.CreatedAt, from, to) {
			continue
		}
		matched = append(matched, m)
	}

	typeBuckets := make(map[string]*domain.MovementTypeRow)
	for _, m := range matched {
		row, ok := typeBuckets[m.MovementType]
		if !ok {
			row = &domain.MovementTypeRow{MovementType: m.MovementType}
			typeBuckets[m.MovementType] = row
		}
		row.MovementCount++
		row.TotalQuantity += int64(m.Quantity)
		row.TotalValue += float64(m.Quantity) * m.UnitPrice
	}
	typeRows := make([]domain.MovementTypeRow, 0, len(typeBuckets))
	for _, row := range typeBuckets {
		typeRows = append(typeRows, *row)
	}
	slices.SortFunc(typeRows, func(a, b domain.MovementTypeRow) int {
		if a.TotalQuantity == b.TotalQuantity {
			return cmpString(a.MovementType, b.MovementType)
		}
		return int(b.TotalQuantity - a.TotalQuantity)
	})

	slices.SortFunc(matched, func(a, b domain.StockMovement) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return int(b.ID - a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if len(matched) > 1000 {
		matched = matched[:1000]
	}

	movementRows := make([]domain.MovementRow, 0, len(matched))
	for _, m := range matched {
		productName := ""
		if p, ok := s.products[m.ProductID]; ok {
			productName = p.Name
		}
		variantName := ""
		if m.VariantID != nil {
			raw := ""
			if v, ok := s.variants[*m.VariantID]; ok {
				raw = v.AttributeValues
			}
			_, variantName = domain.DecodeVariantAttributes(*m.VariantID, raw)
		}
		movementRows = append(movementRows, domain.MovementRow{
			MovementID:   m.ID,
			ProductID:    m.ProductID,
			ProductName:  productName,
			VariantID:    m.VariantID,
			VariantName:  variantName,
			MovementType: m.MovementType,
			Quantity:     m.Quantity,
			UnitPrice:    m.UnitPrice,
			Reference:    m.Reference,
			Notes:        m.Notes,
			Username:     s.userNameForID(m.UserID),
			CreatedAt:    m.CreatedAt,
		})
	}

	summary := domain.StockMovementSummary{
		StartDate:      dateLabel(from),
		EndDate:        dateLabel(to),
		TotalMovements: len(movementRows),
	}
	for _, row := range typeRows {
		switch domain.MovementTypeDirection(row.MovementType) {
		case domain.DirectionIn:
			summary.TotalIn += row.TotalQuantity
		case domain.DirectionOut:
			summary.TotalOut += row.TotalQuantity
		}
	}
	summary.NetChange = summary.TotalIn - summary.TotalOut

	return &domain.StockMovementReport{
		Summary:       summary,
		MovementTypes: typeRows,
		Movements:     movementRows,
	}, nil
}

func (s *Store) CustomerSalesReport(_ context.Context, from, to *time.Time, customerID int64) (*domain.CustomerSalesReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type cragg struct {
		count int64
		total float64
		first time.Time
		last  time.Time
	}
	aggregates := make(map[int64]*cragg)
	for _, sale := range s.sales {
		if sale.CustomerID == nil {
			continue
		}
		if customerID != 0 && *sale.CustomerID != customerID {
			continue
		}
		if !inRange(sale.CreatedAt, from, to) {
			continue
		}
		agg, ok := aggregates[*sale.CustomerID]
		if !ok {
			agg = &cragg{first: sale.CreatedAt, last: sale.CreatedAt}
			aggregates[*sale.CustomerID] = agg
		}
		agg.count++
		agg.total += sale.FinalTotal
		if sale.CreatedAt.Before(agg.first) {
			agg.first = sale.CreatedAt
		}
		if sale.CreatedAt.After(agg.last) {
			agg.last = sale.CreatedAt
		}
	}

	customerRows := make([]domain.CustomerRow, 0, len(aggregates))
	for id, agg := range aggregates {
		row := domain.CustomerRow{
			CustomerID:    id,
			SaleCount:     agg.count,
			TotalSpent:    agg.total,
			FirstPurchase: agg.first,
			LastPurchase:  agg.last,
		}
		if agg.count > 0 {
			row.AverageSale = agg.total / float64(agg.count)
		}
		if c, ok := s.customers[id]; ok {
			row.CustomerName = c.Name
			row.CustomerEmail = c.Email
			row.CustomerPhone = c.Phone
		}
		customerRows = append(customerRows, row)
	}
	slices.SortFunc(customerRows, func(a, b domain.CustomerRow) int {
		if a.TotalSpent == b.TotalSpent {
			return int(a.CustomerID - b.CustomerID)
		}
		if a.TotalSpent > b.TotalSpent {
			return -1
		}
		return 1
	})

	// Purchase history and favorite products are per-customer views and
	// only populated when a single customer was requested. They cover the
	// customer's full history, not just the filtered window.
	purchases := make([]domain.CustomerPurchaseRow, 0)
	favorites := make([]domain.FavoriteProductRow, 0)
	if customerID != 0 {
		for _, sale := range s.sales {
			if sale.CustomerID == nil || *sale.CustomerID != customerID {
				continue
			}
			purchases = append(purchases, domain.CustomerPurchaseRow{
				SaleID:        sale.ID,
				CreatedAt:     sale.CreatedAt,
				Subtotal:      sale.TotalAmount,
				Discount:      sale.Discount,
				FinalTotal:    sale.FinalTotal,
				PaymentMethod: sale.PaymentMethod,
				ItemCount:     int64(len(sale.Items)),
			})
		}
		slices.SortFunc(purchases, func(a, b domain.CustomerPurchaseRow) int {
			if a.CreatedAt.Equal(b.CreatedAt) {
				return int(b.SaleID - a.SaleID)
			}
			if a.CreatedAt.After(b.CreatedAt) {
				return -1
			}
			return 1
		})

		type fbucket struct {
			name     string
			quantity int64
			total    float64
			saleIDs  map[int64]struct{}
		}
		buckets := make(map[int64]*fbucket)
		for _, sale := range s.sales {
			if sale.CustomerID == nil || *sale.CustomerID != customerID {
				continue
			}
			for _, item := range sale.Items {
				b, ok := buckets[item.ProductID]
				if !ok {
					name := ""
					if p, found := s.products[item.ProductID]; found {
						name = p.Name
					}
					b = &fbucket{name: name, saleIDs: make(map[int64]struct{})}
					buckets[item.ProductID] = b
				}
				b.quantity += int64(item.Quantity)
				b.total += item.Subtotal
				b.saleIDs[sale.ID] = struct{}{}
			}
		}
		for id, b := range buckets {
			favorites = append(favorites, domain.FavoriteProductRow{
				ProductID:         id,
				ProductName:       b.name,
				QuantityPurchased: b.quantity,
				PurchaseCount:     int64(len(b.saleIDs)),
				TotalSpent:        b.total,
			})
		}
		slices.SortFunc(favorites, func(a, b domain.FavoriteProductRow) int {
			if a.QuantityPurchased == b.QuantityPurchased {
				return int(a.ProductID - b.ProductID)
			}
			return int(b.QuantityPurchased - a.QuantityPurchased)
		})
		if len(favorites) > 10 {
			favorites = favorites[:10]
		}
	}

	summary := domain.CustomerSalesSummary{
		StartDate:      dateLabel(from),
		EndDate:        dateLabel(to),
		TotalCustomers: len(customerRows),
	}
	for _, row := range customerRows {
		summary.TotalSales += row.SaleCount
		summary.TotalRevenue += row.TotalSpent
	}
	if summary.TotalCustomers > 0 {
		summary.AveragePerCustomer = summary.TotalRevenue / float64(summary.TotalCustomers)
	}

	return &domain.CustomerSalesReport{
		Summary:           summary,
		Customers:         customerRows,
		CustomerPurchases: purchases,
		FavoriteProducts:  favorites,
	}, nil
}

func (s *Store) PaymentSummary(_ context.Context, from, to *time.Time) ([]domain.PaymentMethodSalesRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type bucket struct {
		count int64
		total float64
	}
	buckets := make(map[string]*bucket)
	for _, sp := range s.salePayments {
		sale, ok := s.sales[sp.SaleID]
		if !ok || !inRange(sale.CreatedAt, from, to) {
			continue
		}
		name := "Autre"
		if sp.MethodID != nil {
			if method, found := s.paymentMethods[*sp.MethodID]; found {
				name = method.Name
			}
		}
		b, ok := buckets[name]
		if !ok {
			b = &bucket{}
			buckets[name] = b
		}
		b.count++
		b.total += sp.Amount
	}

	rows := make([]domain.PaymentMethodSalesRow, 0, len(buckets))
	for name, b := range buckets {
		rows = append(rows, domain.PaymentMethodSalesRow{
			PaymentMethod:    name,
			TransactionCount: b.count,
			TotalAmount:      b.total,
		})
	}
	slices.SortFunc(rows, func(a, b domain.PaymentMethodSalesRow) int {
		if a.TotalAmount == b.TotalAmount {
			return cmpString(a.PaymentMethod, b.PaymentMethod)
		}
		if a.TotalAmount > b.TotalAmount {
			return -1
		}
		return 1
	})
	return rows, nil
}

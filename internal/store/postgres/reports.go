package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"marocpos/backend/internal/domain"
)

// Report queries aggregate in SQL and return typed records. Summary rows
// coalesce missing aggregates to zero; list fields are always non-nil.

func (s *Store) salesSummary(ctx context.Context, from, to time.Time) (domain.SalesSummary, error) {
	var summary domain.SalesSummary
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(final_total), 0),
			COALESCE(AVG(final_total), 0),
			COALESCE(MIN(final_total), 0),
			COALESCE(MAX(final_total), 0),
			COALESCE(SUM(discount), 0)
		FROM sales
		WHERE created_at BETWEEN $1 AND $2
	`, from, to).Scan(&summary.SaleCount, &summary.TotalSales, &summary.AverageSale,
		&summary.MinSale, &summary.MaxSale, &summary.TotalDiscount)
	return summary, err
}

func (s *Store) paymentMethodRows(ctx context.Context, from, to time.Time) ([]domain.PaymentMethodSalesRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(pm.name, s.payment_method) AS payment_method,
			COUNT(DISTINCT s.id),
			COALESCE(SUM(COALESCE(sp.amount, s.final_total)), 0)
		FROM sales s
		LEFT JOIN sale_payments sp ON s.id = sp.sale_id
		LEFT JOIN payment_methods pm ON sp.payment_method_id = pm.id
		WHERE s.created_at BETWEEN $1 AND $2
		GROUP BY COALESCE(pm.name, s.payment_method)
		ORDER BY 3 DESC
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.PaymentMethodSalesRow, 0, 8)
	for rows.Next() {
		var row domain.PaymentMethodSalesRow
		if err := rows.Scan(&row.PaymentMethod, &row.TransactionCount, &row.TotalAmount); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (s *Store) topProductRows(ctx context.Context, from, to time.Time, limit int) ([]domain.ProductSalesRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name,
			COALESCE(SUM(si.quantity), 0),
			COALESCE(SUM(si.subtotal), 0),
			COUNT(DISTINCT s.id)
		FROM sale_items si
		JOIN sales s ON si.sale_id = s.id
		JOIN products p ON si.product_id = p.id
		WHERE s.created_at BETWEEN $1 AND $2
		GROUP BY p.id, p.name
		ORDER BY 3 DESC
		LIMIT $3
	`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.ProductSalesRow, 0, limit)
	for rows.Next() {
		var row domain.ProductSalesRow
		if err := rows.Scan(&row.ProductID, &row.ProductName, &row.QuantitySold, &row.TotalSales, &row.SaleCount); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (s *Store) topCategoryRows(ctx context.Context, from, to time.Time) ([]domain.CategorySalesRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(c.name, 'Non catégorisé') AS category_name,
			COUNT(DISTINCT si.id),
			COALESCE(SUM(si.subtotal), 0)
		FROM sale_items si
		JOIN sales s ON si.sale_id = s.id
		JOIN products p ON si.product_id = p.id
		LEFT JOIN categories c ON p.category_id = c.id
		WHERE s.created_at BETWEEN $1 AND $2
		GROUP BY COALESCE(c.name, 'Non catégorisé')
		ORDER BY 3 DESC
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.CategorySalesRow, 0, 16)
	for rows.Next() {
		var row domain.CategorySalesRow
		if err := rows.Scan(&row.CategoryName, &row.ItemsSold, &row.TotalSales); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (s *Store) DailySales(ctx context.Context, day string, from, to time.Time) (*domain.DailySalesReport, error) {
	summary, err := s.salesSummary(ctx, from, to)
	if err != nil {
		return nil, err
	}

	saleRows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.created_at, COALESCE(u.username, 'Inconnu'),
			COUNT(si.id), s.total_amount, s.discount, s.final_total
		FROM sales s
		LEFT JOIN users u ON s.user_id = u.id
		LEFT JOIN sale_items si ON s.id = si.sale_id
		WHERE s.created_at BETWEEN $1 AND $2
		GROUP BY s.id, u.username
		ORDER BY s.created_at
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer saleRows.Close()

	sales := make([]domain.SaleRow, 0, 64)
	for saleRows.Next() {
		var row domain.SaleRow
		if err := saleRows.Scan(&row.SaleID, &row.CreatedAt, &row.Username, &row.ItemCount,
			&row.TotalAmount, &row.Discount, &row.FinalTotal); err != nil {
			return nil, err
		}
		row.CreatedAt = row.CreatedAt.UTC()
		sales = append(sales, row)
	}
	if err := saleRows.Err(); err != nil {
		return nil, err
	}

	hourlyRows, err := s.db.QueryContext(ctx, `
		SELECT to_char(created_at, 'HH24') AS hour,
			COUNT(*), COALESCE(SUM(final_total), 0)
		FROM sales
		WHERE created_at BETWEEN $1 AND $2
		GROUP BY to_char(created_at, 'HH24')
		ORDER BY hour
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer hourlyRows.Close()

	hourly := make([]domain.HourlySalesRow, 0, 24)
	for hourlyRows.Next() {
		var row domain.HourlySalesRow
		if err := hourlyRows.Scan(&row.Hour, &row.SaleCount, &row.TotalSales); err != nil {
			return nil, err
		}
		hourly = append(hourly, row)
	}
	if err := hourlyRows.Err(); err != nil {
		return nil, err
	}

	paymentMethods, err := s.paymentMethodRows(ctx, from, to)
	if err != nil {
		return nil, err
	}
	topProducts, err := s.topProductRows(ctx, from, to, 10)
	if err != nil {
		return nil, err
	}
	topCategories, err := s.topCategoryRows(ctx, from, to)
	if err != nil {
		return nil, err
	}

	return &domain.DailySalesReport{
		Date:           day,
		Summary:        summary,
		Sales:          sales,
		HourlySales:    hourly,
		PaymentMethods: paymentMethods,
		TopProducts:    topProducts,
		TopCategories:  topCategories,
	}, nil
}

func (s *Store) SalesRange(ctx context.Context, from, to time.Time) (*domain.SalesRangeReport, error) {
	summary, err := s.salesSummary(ctx, from, to)
	if err != nil {
		return nil, err
	}

	dailyRows, err := s.db.QueryContext(ctx, `
		SELECT to_char(created_at, 'YYYY-MM-DD') AS day,
			COUNT(*), COALESCE(SUM(final_total), 0)
		FROM sales
		WHERE created_at BETWEEN $1 AND $2
		GROUP BY to_char(created_at, 'YYYY-MM-DD')
		ORDER BY day
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer dailyRows.Close()

	daily := make([]domain.DailyTotalsRow, 0, 31)
	for dailyRows.Next() {
		var row domain.DailyTotalsRow
		if err := dailyRows.Scan(&row.Day, &row.SaleCount, &row.TotalSales); err != nil {
			return nil, err
		}
		daily = append(daily, row)
	}
	if err := dailyRows.Err(); err != nil {
		return nil, err
	}

	userRows, err := s.db.QueryContext(ctx, `
		SELECT u.username, COUNT(s.id), COALESCE(SUM(s.final_total), 0)
		FROM sales s
		JOIN users u ON s.user_id = u.id
		WHERE s.created_at BETWEEN $1 AND $2
		GROUP BY u.username
		ORDER BY 3 DESC
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer userRows.Close()

	byUser := make([]domain.UserSalesRow, 0, 8)
	for userRows.Next() {
		var row domain.UserSalesRow
		if err := userRows.Scan(&row.Username, &row.SaleCount, &row.TotalSales); err != nil {
			return nil, err
		}
		byUser = append(byUser, row)
	}
	if err := userRows.Err(); err != nil {
		return nil, err
	}

	paymentMethods, err := s.paymentMethodRows(ctx, from, to)
	if err != nil {
		return nil, err
	}
	topProducts, err := s.topProductRows(ctx, from, to, 20)
	if err != nil {
		return nil, err
	}
	topCategories, err := s.topCategoryRows(ctx, from, to)
	if err != nil {
		return nil, err
	}

	return &domain.SalesRangeReport{
		StartDate:      from.Format("2006-01-02"),
		EndDate:        to.Format("2006-01-02"),
		Summary:        summary,
		DailySales:     daily,
		PaymentMethods: paymentMethods,
		TopProducts:    topProducts,
		TopCategories:  topCategories,
		SalesByUser:    byUser,
	}, nil
}

func (s *Store) ProductPerformance(ctx context.Context, productID int64, from, to *time.Time) (*domain.ProductPerformanceReport, error) {
	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	summary := domain.ProductPerformanceSummary{
		ProductID:    product.ID,
		ProductName:  product.Name,
		CurrentPrice: product.UnitPrice,
		CurrentCost:  product.PurchasePrice,
	}

	var firstSold, lastSold sql.NullString
	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(si.quantity), 0),
			COALESCE(SUM(si.subtotal), 0),
			COUNT(DISTINCT s.id),
			COALESCE(AVG(si.unit_price), 0),
			to_char(MIN(s.created_at), 'YYYY-MM-DD'),
			to_char(MAX(s.created_at), 'YYYY-MM-DD')
		FROM sale_items si
		JOIN sales s ON si.sale_id = s.id
		WHERE si.product_id = $1
			AND ($2::timestamptz IS NULL OR s.created_at >= $2)
			AND ($3::timestamptz IS NULL OR s.created_at <= $3)
	`, productID, nullTime(from), nullTime(to)).Scan(&summary.TotalQuantity, &summary.TotalSales,
		&summary.SaleCount, &summary.AveragePrice, &firstSold, &lastSold)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	summary.FirstSold = firstSold.String
	summary.LastSold = lastSold.String

	monthlyRows, err := s.db.QueryContext(ctx, `
		SELECT to_char(s.created_at, 'YYYY-MM') AS month,
			COALESCE(SUM(si.quantity), 0),
			COALESCE(SUM(si.subtotal), 0),
			COUNT(DISTINCT s.id)
		FROM sale_items si
		JOIN sales s ON si.sale_id = s.id
		WHERE si.product_id = $1
			AND ($2::timestamptz IS NULL OR s.created_at >= $2)
			AND ($3::timestamptz IS NULL OR s.created_at <= $3)
		GROUP BY to_char(s.created_at, 'YYYY-MM')
		ORDER BY month
	`, productID, nullTime(from), nullTime(to))
	if err != nil {
		return nil, err
	}
	defer monthlyRows.Close()

	monthly := make([]domain.MonthlySalesRow, 0, 12)
	for monthlyRows.Next() {
		var row domain.MonthlySalesRow
		if err := monthlyRows.Scan(&row.Month, &row.QuantitySold, &row.TotalSales, &row.SaleCount); err != nil {
			return nil, err
		}
		monthly = append(monthly, row)
	}
	if err := monthlyRows.Err(); err != nil {
		return nil, err
	}

	variantSales := make([]domain.VariantSalesRow, 0, 4)
	if product.HasVariants {
		variantRows, err := s.db.QueryContext(ctx, `
			SELECT si.variant_id, pv.attribute_values,
				COALESCE(SUM(si.quantity), 0),
				COALESCE(SUM(si.subtotal), 0),
				COUNT(DISTINCT s.id)
			FROM sale_items si
			JOIN sales s ON si.sale_id = s.id
			JOIN product_variants pv ON si.variant_id = pv.id
			WHERE si.product_id = $1 AND si.variant_id IS NOT NULL
				AND ($2::timestamptz IS NULL OR s.created_at >= $2)
				AND ($3::timestamptz IS NULL OR s.created_at <= $3)
			GROUP BY si.variant_id, pv.attribute_values
			ORDER BY 3 DESC
		`, productID, nullTime(from), nullTime(to))
		if err != nil {
			return nil, err
		}
		defer variantRows.Close()

		for variantRows.Next() {
			var row domain.VariantSalesRow
			var raw string
			if err := variantRows.Scan(&row.VariantID, &raw, &row.QuantitySold, &row.TotalSales, &row.SaleCount); err != nil {
				return nil, err
			}
			row.Attributes, row.VariantName = domain.DecodeVariantAttributes(row.VariantID, raw)
			variantSales = append(variantSales, row)
		}
		if err := variantRows.Err(); err != nil {
			return nil, err
		}
	}

	return &domain.ProductPerformanceReport{
		Product:      summary,
		MonthlySales: monthly,
		VariantSales: variantSales,
	}, nil
}

func (s *Store) InventoryReport(ctx context.Context) (*domain.InventoryReport, error) {
	productRows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, COALESCE(c.name, 'Non catégorisé'),
			p.stock, p.min_stock, p.reorder_point,
			p.purchase_price, p.unit_price, p.has_variants,
			CASE
				WHEN p.stock <= p.min_stock THEN 'low'
				WHEN p.stock <= p.reorder_point THEN 'warning'
				ELSE 'ok'
			END AS stock_status,
			p.purchase_price * p.stock,
			p.unit_price * p.stock
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
		ORDER BY stock_status, p.name
	`)
	if err != nil {
		return nil, err
	}
	defer productRows.Close()

	products := make([]domain.InventoryProductRow, 0, 128)
	for productRows.Next() {
		var row domain.InventoryProductRow
		if err := productRows.Scan(&row.ProductID, &row.ProductName, &row.CategoryName,
			&row.CurrentStock, &row.MinimumStock, &row.ReorderPoint,
			&row.Cost, &row.Price, &row.HasVariants, &row.StockStatus,
			&row.StockValue, &row.RetailValue); err != nil {
			return nil, err
		}
		products = append(products, row)
	}
	if err := productRows.Err(); err != nil {
		return nil, err
	}

	variantRows, err := s.db.QueryContext(ctx, `
		SELECT pv.id, p.id, p.name, pv.attribute_values, pv.stock, pv.price_adjustment,
			COALESCE(p.purchase_price, 0), COALESCE(p.unit_price, 0),
			COALESCE(p.unit_price, 0) + COALESCE(pv.price_adjustment, 0),
			CASE
				WHEN pv.stock <= 0 THEN 'low'
				WHEN pv.stock <= 5 THEN 'warning'
				ELSE 'ok'
			END AS stock_status
		FROM product_variants pv
		JOIN products p ON pv.product_id = p.id
		WHERE p.has_variants = true
		ORDER BY p.name, pv.id
	`)
	if err != nil {
		return nil, err
	}
	defer variantRows.Close()

	variants := make([]domain.InventoryVariantRow, 0, 64)
	for variantRows.Next() {
		var row domain.InventoryVariantRow
		var raw string
		if err := variantRows.Scan(&row.VariantID, &row.ProductID, &row.ProductName, &raw,
			&row.CurrentStock, &row.PriceAdjustment, &row.BaseCost, &row.BasePrice,
			&row.VariantPrice, &row.StockStatus); err != nil {
			return nil, err
		}
		row.Attributes, row.VariantName = domain.DecodeVariantAttributes(row.VariantID, raw)
		row.StockValue = row.VariantPrice * float64(row.CurrentStock)
		variants = append(variants, row)
	}
	if err := variantRows.Err(); err != nil {
		return nil, err
	}

	summary := domain.InventorySummary{TotalProducts: len(products)}
	for _, row := range products {
		switch row.StockStatus {
		case domain.StockLow:
			summary.LowStockProducts++
		case domain.StockWarning:
			summary.WarningStockProducts++
		}
		summary.TotalStockValue += row.StockValue
		summary.TotalRetailValue += row.RetailValue
	}
	for _, row := range variants {
		summary.TotalStockValue += row.StockValue
	}
	summary.PotentialProfit = summary.TotalRetailValue - summary.TotalStockValue

	return &domain.InventoryReport{
		Summary:  summary,
		Products: products,
		Variants: variants,
	}, nil
}

func (s *Store) ProfitMarginReport(ctx context.Context, from, to *time.Time) (*domain.ProfitMarginReport, error) {
	var summary domain.ProfitSummary
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(si.subtotal), 0),
			COALESCE(SUM(si.quantity * si.unit_cost), 0),
			COALESCE(SUM(si.subtotal - (si.quantity * si.unit_cost)), 0),
			CASE WHEN COALESCE(SUM(si.subtotal), 0) = 0 THEN 0
				ELSE SUM(si.subtotal - (si.quantity * si.unit_cost)) / SUM(si.subtotal) * 100
			END
		FROM sale_items si
		JOIN sales s ON si.sale_id = s.id
		WHERE ($1::timestamptz IS NULL OR s.created_at >= $1)
			AND ($2::timestamptz IS NULL OR s.created_at <= $2)
	`, nullTime(from), nullTime(to)).Scan(&summary.TotalRevenue, &summary.TotalCost,
		&summary.TotalProfit, &summary.MarginPercentage)
	if err != nil {
		return nil, err
	}

	// Per-group breakdowns only aggregate items with a recorded positive
	// unit cost; the overall summary above includes everything.
	productRows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, COALESCE(c.name, 'Non catégorisé'),
			SUM(si.quantity), SUM(si.subtotal),
			SUM(si.quantity * si.unit_cost),
			SUM(si.subtotal - (si.quantity * si.unit_cost)),
			CASE WHEN SUM(si.subtotal) = 0 THEN 0
				ELSE SUM(si.subtotal - (si.quantity * si.unit_cost)) / SUM(si.subtotal) * 100
			END AS margin_percentage
		FROM sale_items si
		JOIN sales s ON si.sale_id = s.id
		JOIN products p ON si.product_id = p.id
		LEFT JOIN categories c ON p.category_id = c.id
		WHERE si.unit_cost > 0
			AND ($1::timestamptz IS NULL OR s.created_at >= $1)
			AND ($2::timestamptz IS NULL OR s.created_at <= $2)
		GROUP BY p.id, p.name, c.name
		ORDER BY margin_percentage DESC
	`, nullTime(from), nullTime(to))
	if err != nil {
		return nil, err
	}
	defer productRows.Close()

	products := make([]domain.ProductMarginRow, 0, 64)
	for productRows.Next() {
		var row domain.ProductMarginRow
		if err := productRows.Scan(&row.ProductID, &row.ProductName, &row.CategoryName,
			&row.QuantitySold, &row.Revenue, &row.Cost, &row.Profit, &row.MarginPercentage); err != nil {
			return nil, err
		}
		products = append(products, row)
	}
	if err := productRows.Err(); err != nil {
		return nil, err
	}

	categoryRows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(c.name, 'Non catégorisé') AS category_name,
			COUNT(DISTINCT p.id), SUM(si.quantity), SUM(si.subtotal),
			SUM(si.quantity * si.unit_cost),
			SUM(si.subtotal - (si.quantity * si.unit_cost)) AS profit,
			CASE WHEN SUM(si.subtotal) = 0 THEN 0
				ELSE SUM(si.subtotal - (si.quantity * si.unit_cost)) / SUM(si.subtotal) * 100
			END
		FROM sale_items si
		JOIN sales s ON si.sale_id = s.id
		JOIN products p ON si.product_id = p.id
		LEFT JOIN categories c ON p.category_id = c.id
		WHERE si.unit_cost > 0
			AND ($1::timestamptz IS NULL OR s.created_at >= $1)
			AND ($2::timestamptz IS NULL OR s.created_at <= $2)
		GROUP BY COALESCE(c.name, 'Non catégorisé')
		ORDER BY profit DESC
	`, nullTime(from), nullTime(to))
	if err != nil {
		return nil, err
	}
	defer categoryRows.Close()

	categories := make([]domain.CategoryMarginRow, 0, 16)
	for categoryRows.Next() {
		var row domain.CategoryMarginRow
		if err := categoryRows.Scan(&row.CategoryName, &row.ProductCount, &row.QuantitySold,
			&row.Revenue, &row.Cost, &row.Profit, &row.MarginPercentage); err != nil {
			return nil, err
		}
		categories = append(categories, row)
	}
	if err := categoryRows.Err(); err != nil {
		return nil, err
	}

	monthlyRows, err := s.db.QueryContext(ctx, `
		SELECT to_char(s.created_at, 'YYYY-MM') AS month,
			SUM(si.subtotal), SUM(si.quantity * si.unit_cost),
			SUM(si.subtotal - (si.quantity * si.unit_cost)),
			CASE WHEN SUM(si.subtotal) = 0 THEN 0
				ELSE SUM(si.subtotal - (si.quantity * si.unit_cost)) / SUM(si.subtotal) * 100
			END
		FROM sale_items si
		JOIN sales s ON si.sale_id = s.id
		WHERE si.unit_cost > 0
			AND ($1::timestamptz IS NULL OR s.created_at >= $1)
			AND ($2::timestamptz IS NULL OR s.created_at <= $2)
		GROUP BY to_char(s.created_at, 'YYYY-MM')
		ORDER BY month
	`, nullTime(from), nullTime(to))
	if err != nil {
		return nil, err
	}
	defer monthlyRows.Close()

	monthly := make([]domain.MonthlyMarginRow, 0, 12)
	for monthlyRows.Next() {
		var row domain.MonthlyMarginRow
		if err := monthlyRows.Scan(&row.Month, &row.Revenue, &row.Cost, &row.Profit, &row.MarginPercentage); err != nil {
			return nil, err
		}
		monthly = append(monthly, row)
	}
	if err := monthlyRows.Err(); err != nil {
		return nil, err
	}

	return &domain.ProfitMarginReport{
		StartDate:    dateLabel(from),
		EndDate:      dateLabel(to),
		Summary:      summary,
		Products:     products,
		Categories:   categories,
		MonthlyTrend: monthly,
	}, nil
}

func (s *Store) StockMovementReport(ctx context.Context, from, to *time.Time, productID int64) (*domain.StockMovementReport, error) {
	typeRows, err := s.db.QueryContext(ctx, `
		SELECT sm.movement_type, COUNT(*),
			COALESCE(SUM(sm.quantity), 0),
			COALESCE(SUM(sm.quantity * sm.unit_price), 0)
		FROM stock_movements sm
		WHERE ($1 = 0 OR sm.product_id = $1)
			AND ($2::timestamptz IS NULL OR sm.created_at >= $2)
			AND ($3::timestamptz IS NULL OR sm.created_at <= $3)
		GROUP BY sm.movement_type
		ORDER BY 3 DESC
	`, productID, nullTime(from), nullTime(to))
	if err != nil {
		return nil, err
	}
	defer typeRows.Close()

	movementTypes := make([]domain.MovementTypeRow, 0, 8)
	for typeRows.Next() {
		var row domain.MovementTypeRow
		if err := typeRows.Scan(&row.MovementType, &row.MovementCount, &row.TotalQuantity, &row.TotalValue); err != nil {
			return nil, err
		}
		movementTypes = append(movementTypes, row)
	}
	if err := typeRows.Err(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT sm.id, sm.product_id, p.name, sm.variant_id,
			COALESCE(pv.attribute_values, ''),
			sm.movement_type, sm.quantity, sm.unit_price,
			sm.reference, sm.notes, COALESCE(u.username, ''), sm.created_at
		FROM stock_movements sm
		JOIN products p ON sm.product_id = p.id
		LEFT JOIN product_variants pv ON sm.variant_id = pv.id
		LEFT JOIN users u ON sm.user_id = u.id
		WHERE ($1 = 0 OR sm.product_id = $1)
			AND ($2::timestamptz IS NULL OR sm.created_at >= $2)
			AND ($3::timestamptz IS NULL OR sm.created_at <= $3)
		ORDER BY sm.created_at DESC
		LIMIT 1000
	`, productID, nullTime(from), nullTime(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movements := make([]domain.MovementRow, 0, 256)
	for rows.Next() {
		var row domain.MovementRow
		var raw string
		if err := rows.Scan(&row.MovementID, &row.ProductID, &row.ProductName, &row.VariantID, &raw,
			&row.MovementType, &row.Quantity, &row.UnitPrice, &row.Reference, &row.Notes,
			&row.Username, &row.CreatedAt); err != nil {
			return nil, err
		}
		row.CreatedAt = row.CreatedAt.UTC()
		if row.VariantID != nil {
			_, row.VariantName = domain.DecodeVariantAttributes(*row.VariantID, raw)
		}
		movements = append(movements, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	summary := domain.StockMovementSummary{
		StartDate:      dateLabel(from),
		EndDate:        dateLabel(to),
		TotalMovements: len(movements),
	}
	for _, row := range movementTypes {
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
		MovementTypes: movementTypes,
		Movements:     movements,
	}, nil
}

func (s *Store) CustomerSalesReport(ctx context.Context, from, to *time.Time, customerID int64) (*domain.CustomerSalesReport, error) {
	customerRows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.email, c.phone,
			COUNT(s.id), COALESCE(SUM(s.final_total), 0), COALESCE(AVG(s.final_total), 0),
			MIN(s.created_at), MAX(s.created_at)
		FROM sales s
		JOIN customers c ON s.customer_id = c.id
		WHERE s.customer_id IS NOT NULL
			AND ($1 = 0 OR s.customer_id = $1)
			AND ($2::timestamptz IS NULL OR s.created_at >= $2)
			AND ($3::timestamptz IS NULL OR s.created_at <= $3)
		GROUP BY c.id, c.name, c.email, c.phone
		ORDER BY 6 DESC
	`, customerID, nullTime(from), nullTime(to))
	if err != nil {
		return nil, err
	}
	defer customerRows.Close()

	customers := make([]domain.CustomerRow, 0, 64)
	for customerRows.Next() {
		var row domain.CustomerRow
		if err := customerRows.Scan(&row.CustomerID, &row.CustomerName, &row.CustomerEmail, &row.CustomerPhone,
			&row.SaleCount, &row.TotalSpent, &row.AverageSale, &row.FirstPurchase, &row.LastPurchase); err != nil {
			return nil, err
		}
		row.FirstPurchase = row.FirstPurchase.UTC()
		row.LastPurchase = row.LastPurchase.UTC()
		customers = append(customers, row)
	}
	if err := customerRows.Err(); err != nil {
		return nil, err
	}

	// Purchase history and favorite products are per-customer views and
	// only populated for single-customer queries. They cover the full
	// history, not just the filtered window.
	purchases := make([]domain.CustomerPurchaseRow, 0)
	favorites := make([]domain.FavoriteProductRow, 0)
	if customerID != 0 {
		purchaseRows, err := s.db.QueryContext(ctx, `
			SELECT s.id, s.created_at, s.total_amount, s.discount, s.final_total,
				s.payment_method, COUNT(si.id)
			FROM sales s
			LEFT JOIN sale_items si ON s.id = si.sale_id
			WHERE s.customer_id = $1
			GROUP BY s.id
			ORDER BY s.created_at DESC
		`, customerID)
		if err != nil {
			return nil, err
		}
		defer purchaseRows.Close()

		for purchaseRows.Next() {
			var row domain.CustomerPurchaseRow
			if err := purchaseRows.Scan(&row.SaleID, &row.CreatedAt, &row.Subtotal, &row.Discount,
				&row.FinalTotal, &row.PaymentMethod, &row.ItemCount); err != nil {
				return nil, err
			}
			row.CreatedAt = row.CreatedAt.UTC()
			purchases = append(purchases, row)
		}
		if err := purchaseRows.Err(); err != nil {
			return nil, err
		}

		favoriteRows, err := s.db.QueryContext(ctx, `
			SELECT p.id, p.name,
				COALESCE(SUM(si.quantity), 0),
				COUNT(DISTINCT s.id),
				COALESCE(SUM(si.subtotal), 0)
			FROM sale_items si
			JOIN sales s ON si.sale_id = s.id
			JOIN products p ON si.product_id = p.id
			WHERE s.customer_id = $1
			GROUP BY p.id, p.name
			ORDER BY 3 DESC
			LIMIT 10
		`, customerID)
		if err != nil {
			return nil, err
		}
		defer favoriteRows.Close()

		for favoriteRows.Next() {
			var row domain.FavoriteProductRow
			if err := favoriteRows.Scan(&row.ProductID, &row.ProductName, &row.QuantityPurchased,
				&row.PurchaseCount, &row.TotalSpent); err != nil {
				return nil, err
			}
			favorites = append(favorites, row)
		}
		if err := favoriteRows.Err(); err != nil {
			return nil, err
		}
	}

	summary := domain.CustomerSalesSummary{
		StartDate:      dateLabel(from),
		EndDate:        dateLabel(to),
		TotalCustomers: len(customers),
	}
	for _, row := range customers {
		summary.TotalSales += row.SaleCount
		summary.TotalRevenue += row.TotalSpent
	}
	if summary.TotalCustomers > 0 {
		summary.AveragePerCustomer = summary.TotalRevenue / float64(summary.TotalCustomers)
	}

	return &domain.CustomerSalesReport{
		Summary:           summary,
		Customers:         customers,
		CustomerPurchases: purchases,
		FavoriteProducts:  favorites,
	}, nil
}

func (s *Store) PaymentSummary(ctx context.Context, from, to *time.Time) ([]domain.PaymentMethodSalesRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(pm.name, 'Autre') AS payment_method,
			COUNT(sp.id), COALESCE(SUM(sp.amount), 0)
		FROM sale_payments sp
		LEFT JOIN payment_methods pm ON sp.payment_method_id = pm.id
		LEFT JOIN sales s ON sp.sale_id = s.id
		WHERE ($1::timestamptz IS NULL OR s.created_at >= $1)
			AND ($2::timestamptz IS NULL OR s.created_at <= $2)
		GROUP BY COALESCE(pm.name, 'Autre')
		ORDER BY 3 DESC
	`, nullTime(from), nullTime(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.PaymentMethodSalesRow, 0, 8)
	for rows.Next() {
		var row domain.PaymentMethodSalesRow
		if err := rows.Scan(&row.PaymentMethod, &row.TransactionCount, &row.TotalAmount); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func dateLabel(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

package domain

// Movement types form a closed vocabulary. An unrecognized type is kept in
// the movement history but counts toward neither the "in" nor "out" bucket.
const (
	MovementPurchase      = "purchase"
	MovementSale          = "sale"
	MovementAdjustmentIn  = "adjustment_in"
	MovementAdjustmentOut = "adjustment_out"
	MovementLoss          = "loss"
	MovementDamage        = "damage"
	MovementReturn        = "return"
	MovementTransferIn    = "transfer_in"
	MovementTransferOut   = "transfer_out"
)

type MovementDirection int

const (
	DirectionNone MovementDirection = iota
	DirectionIn
	DirectionOut
)

func MovementTypeDirection(movementType string) MovementDirection {
	switch movementType {
	case MovementPurchase, MovementAdjustmentIn, MovementReturn, MovementTransferIn:
		return DirectionIn
	case MovementSale, MovementAdjustmentOut, MovementDamage, MovementLoss, MovementTransferOut:
		return DirectionOut
	default:
		return DirectionNone
	}
}

func KnownMovementType(movementType string) bool {
	return MovementTypeDirection(movementType) != DirectionNone
}

type StockStatus string

const (
	StockLow     StockStatus = "low"
	StockWarning StockStatus = "warning"
	StockOK      StockStatus = "ok"
)

// ProductStockStatus classifies against the product's own thresholds.
func ProductStockStatus(stock, minStock, reorderPoint int) StockStatus {
	switch {
	case stock <= minStock:
		return StockLow
	case stock <= reorderPoint:
		return StockWarning
	default:
		return StockOK
	}
}

// VariantStockStatus uses fixed absolute thresholds (0 and 5) rather than
// the product-relative ones above. The asymmetry is inherited behavior and
// kept as-is.
func VariantStockStatus(stock int) StockStatus {
	switch {
	case stock <= 0:
		return StockLow
	case stock <= 5:
		return StockWarning
	default:
		return StockOK
	}
}

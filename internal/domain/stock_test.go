package domain

import "testing"

func TestProductStockStatus(t *testing.T) {
	cases := []struct {
		stock, min, reorder int
		want                StockStatus
	}{
		{3, 5, 10, StockLow},
		{5, 5, 10, StockLow},
		{7, 5, 10, StockWarning},
		{10, 5, 10, StockWarning},
		{15, 5, 10, StockOK},
	}
	for _, tc := range cases {
		if got := ProductStockStatus(tc.stock, tc.min, tc.reorder); got != tc.want {
			t.Errorf("ProductStockStatus(%d,%d,%d) = %s, want %s", tc.stock, tc.min, tc.reorder, got, tc.want)
		}
	}
}

func TestVariantStockStatus(t *testing.T) {
	cases := []struct {
		stock int
		want  StockStatus
	}{
		{-2, StockLow},
		{0, StockLow},
		{1, StockWarning},
		{5, StockWarning},
		{6, StockOK},
	}
	for _, tc := range cases {
		if got := VariantStockStatus(tc.stock); got != tc.want {
			t.Errorf("VariantStockStatus(%d) = %s, want %s", tc.stock, got, tc.want)
		}
	}
}

func TestMovementTypeDirection(t *testing.T) {
	in := []string{MovementPurchase, MovementAdjustmentIn, MovementReturn, MovementTransferIn}
	for _, mt := range in {
		if MovementTypeDirection(mt) != DirectionIn {
			t.Errorf("expected %s to count in", mt)
		}
	}
	out := []string{MovementSale, MovementAdjustmentOut, MovementDamage, MovementLoss, MovementTransferOut}
	for _, mt := range out {
		if MovementTypeDirection(mt) != DirectionOut {
			t.Errorf("expected %s to count out", mt)
		}
	}
	if MovementTypeDirection("recount") != DirectionNone {
		t.Errorf("unrecognized type must contribute to neither bucket")
	}
	if KnownMovementType("recount") {
		t.Errorf("recount must not be a known movement type")
	}
}

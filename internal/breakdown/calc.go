package breakdown

import (
	"github.com/cardboardcollective/mechabot/internal/config"
)

// Result is the derived break-even report for one completed record. Values
// are kept unrounded; rounding happens only at render time.
type Result struct {
	Spots      int
	Boxes      int
	CostPerBox float64

	ProductCost float64
	TxFees      float64
	Supplies    float64
	Shipping    float64

	FeeRate      float64
	TxFeePerSpot float64

	BreakevenRevenueNoShip   float64
	BreakevenPerSpotNoShip   float64
	BreakevenRevenueWithShip float64
	BreakevenPerSpotWithShip float64
}

// Calculate derives the break-even report from a completed record and the fee
// schedule. Pure function: identical inputs always yield identical outputs.
//
// Preconditions (guaranteed by config validation and the data model, not
// checked here): fees.FeeRate in [0, 1), rec.Spots > 0.
func Calculate(rec Record, fees config.FeeSchedule) Result {
	spots := float64(rec.Spots)

	productCost := float64(rec.Boxes) * rec.CostPerBox
	txFees := spots * fees.TxFeePerSpot
	supplies := spots * fees.SupplyPerSpot
	shipping := spots * fees.ShipPerSpot

	core := productCost + txFees + supplies
	revenueNoShip := core / (1 - fees.FeeRate)
	revenueWithShip := (core + shipping) / (1 - fees.FeeRate)

	return Result{
		Spots:      rec.Spots,
		Boxes:      rec.Boxes,
		CostPerBox: rec.CostPerBox,

		ProductCost: productCost,
		TxFees:      txFees,
		Supplies:    supplies,
		Shipping:    shipping,

		FeeRate:      fees.FeeRate,
		TxFeePerSpot: fees.TxFeePerSpot,

		BreakevenRevenueNoShip:   revenueNoShip,
		BreakevenPerSpotNoShip:   revenueNoShip / spots,
		BreakevenRevenueWithShip: revenueWithShip,
		BreakevenPerSpotWithShip: revenueWithShip / spots,
	}
}

package breakdown

import (
	"fmt"
	"math"
	"strings"
)

// money renders a monetary value with exactly two decimals and a leading
// currency marker. Non-finite values render as a placeholder dash.
func money(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return "—"
	}
	return fmt.Sprintf("$%.2f", n)
}

// FormatReport renders the fixed-layout breakdown report.
func FormatReport(r Result) string {
	var b strings.Builder

	b.WriteString("**🧠🥞 Mecha Waffles Breakdown**\n")
	fmt.Fprintf(&b, "Spots: **%d** | Boxes: **%d** @ **%s**\n\n", r.Spots, r.Boxes, money(r.CostPerBox))

	b.WriteString("**Costs**\n")
	fmt.Fprintf(&b, "• Product: %s\n", money(r.ProductCost))
	fmt.Fprintf(&b, "• Tx fees: %s (%s / spot)\n", money(r.TxFees), money(r.TxFeePerSpot))
	fmt.Fprintf(&b, "• Supplies: %s\n", money(r.Supplies))
	fmt.Fprintf(&b, "• Shipping (Whatnot-handled): %s\n\n", money(r.Shipping))

	b.WriteString("**Break-even (No Shipping — Whatnot Standard)**\n")
	fmt.Fprintf(&b, "• Revenue needed: **%s** (%s/spot)\n\n", money(r.BreakevenRevenueNoShip), money(r.BreakevenPerSpotNoShip))

	b.WriteString("**Break-even (With Shipping — Informational Only)**\n")
	fmt.Fprintf(&b, "• Revenue needed: %s (%s/spot)\n\n", money(r.BreakevenRevenueWithShip), money(r.BreakevenPerSpotWithShip))

	b.WriteString("_Shipping is shown for reference only. Whatnot collects shipping separately._")

	return b.String()
}

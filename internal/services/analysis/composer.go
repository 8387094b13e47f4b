package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ternarybob/pricewatch/internal/models"
)

// ComposeContext renders weekly summaries into the self-contained textual
// report embedded in explainer prompts. The output is deterministic for a
// given input: header, overall statistics, the three cheapest weeks, up to
// five high-volatility weeks, the full weekly breakdown, and a closing
// recommendation.
func ComposeContext(summaries []models.WeekSummary, productTitle, platform string, currentPrice float64) string {
	var b strings.Builder

	totalPoints := 0
	for _, w := range summaries {
		totalPoints += w.PointCount
	}
	periodDays := totalPoints - 1
	if periodDays < 0 {
		periodDays = 0
	}

	fmt.Fprintf(&b, "Product: %s\n", productTitle)
	fmt.Fprintf(&b, "Platform: %s\n", platform)
	fmt.Fprintf(&b, "Current Price: ₹%.0f\n", currentPrice)
	fmt.Fprintf(&b, "Analysis Period: %d days (%d weeks)\n\n", periodDays, len(summaries))

	// Overall statistics
	overallMin := math.Inf(1)
	overallMax := math.Inf(-1)
	avgSum := 0.0
	for _, w := range summaries {
		if w.MinPrice < overallMin {
			overallMin = w.MinPrice
		}
		if w.MaxPrice > overallMax {
			overallMax = w.MaxPrice
		}
		avgSum += w.AvgPrice
	}
	overallAvg := 0.0
	if len(summaries) > 0 {
		overallAvg = math.Round(avgSum / float64(len(summaries)))
	}
	rangePct := 0.0
	if overallAvg != 0 {
		rangePct = (overallMax - overallMin) / overallAvg * 100
	}

	b.WriteString("OVERALL SUMMARY:\n")
	fmt.Fprintf(&b, "- Average Price: ₹%.0f\n", overallAvg)
	fmt.Fprintf(&b, "- Lowest Price: ₹%.0f\n", overallMin)
	fmt.Fprintf(&b, "- Highest Price: ₹%.0f\n", overallMax)
	fmt.Fprintf(&b, "- Price Range: ₹%.0f (%.1f%%)\n\n", overallMax-overallMin, rangePct)

	// Best weeks to buy: lowest minimum price, ties broken by earliest week
	sortedByMin := make([]models.WeekSummary, len(summaries))
	copy(sortedByMin, summaries)
	sort.SliceStable(sortedByMin, func(i, j int) bool {
		return sortedByMin[i].MinPrice < sortedByMin[j].MinPrice
	})

	b.WriteString("BEST WEEKS TO BUY (Lowest Prices):\n")
	for i := 0; i < len(sortedByMin) && i < 3; i++ {
		w := sortedByMin[i]
		fmt.Fprintf(&b, "- Week %d (%s): ₹%.0f\n", w.Index, w.StartDate.Format("02/01/2006"), w.MinPrice)
	}
	b.WriteString("\n")

	// High volatility weeks in chronological order
	var highVol []models.WeekSummary
	for _, w := range summaries {
		if w.HighVolatility {
			highVol = append(highVol, w)
		}
	}
	if len(highVol) > 0 {
		b.WriteString("HIGH VOLATILITY WEEKS (Price Fluctuations):\n")
		for i := 0; i < len(highVol) && i < 5; i++ {
			w := highVol[i]
			fmt.Fprintf(&b, "- Week %d: ₹%.0f-₹%.0f (%s)\n", w.Index, w.MinPrice, w.MaxPrice, w.Trend)
		}
		b.WriteString("\n")
	}

	// Weekly breakdown
	b.WriteString("WEEKLY PRICE ANALYSIS:\n")
	for _, w := range summaries {
		fmt.Fprintf(&b, "Week %d (%s to %s):\n", w.Index, w.StartDate.Format("02/01/2006"), w.EndDate.Format("02/01/2006"))
		fmt.Fprintf(&b, "  Average: ₹%.0f | Range: ₹%.0f-₹%.0f\n", w.AvgPrice, w.MinPrice, w.MaxPrice)
		fmt.Fprintf(&b, "  Trend: %s (%s%%)\n", w.Trend, formatPct(w.ChangePct))
		if w.HighVolatility {
			b.WriteString("  Note: High price volatility detected\n")
		}
		b.WriteString("\n")
	}

	// Recommendation
	b.WriteString("RECOMMENDATIONS:\n")
	switch {
	case currentPrice <= overallMin*1.05:
		b.WriteString("- Current price is near historical low. Good time to buy.\n")
	case currentPrice >= overallMax*0.95:
		b.WriteString("- Current price is near historical high. Consider waiting.\n")
	default:
		b.WriteString("- Current price is moderate. Monitor for better deals.\n")
	}

	return b.String()
}

// formatPct renders a percent change with an explicit sign on positive
// values, matching the report's historical format.
func formatPct(pct float64) string {
	if pct > 0 {
		return fmt.Sprintf("+%.2f", pct)
	}
	return fmt.Sprintf("%.2f", pct)
}

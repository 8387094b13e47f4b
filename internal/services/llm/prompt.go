package llm

import (
	"fmt"
	"strings"

	"github.com/ternarybob/pricewatch/internal/models"
)

// BuildStrategyPrompt assembles the one-shot prompt for a price-change
// explanation. The analytical context must be self-contained; the model
// sees nothing else about the product.
func BuildStrategyPrompt(product *models.Product, context string, oldPrice, newPrice float64) string {
	priceChange := newPrice - oldPrice
	priceChangePct := 0.0
	if oldPrice != 0 {
		priceChangePct = priceChange / oldPrice * 100
	}
	changeType := "increased"
	if priceChange < 0 {
		changeType = "decreased"
	}

	var b strings.Builder

	b.WriteString("You are a senior competitive pricing strategist for e-commerce sellers. ")
	b.WriteString("A seller is monitoring their competitor's product price changes to protect their market position and prevent losses.\n\n")

	b.WriteString("COMPETITOR PRICE CHANGE DETECTED:\n")
	fmt.Fprintf(&b, "- Competitor Product: %s\n", product.Title)
	fmt.Fprintf(&b, "- Platform: %s\n", product.Platform)
	fmt.Fprintf(&b, "- Previous Price: ₹%.0f\n", oldPrice)
	fmt.Fprintf(&b, "- New Price: ₹%.0f\n", newPrice)
	fmt.Fprintf(&b, "- Change: ₹%.0f (%.2f%%)\n", priceChange, priceChangePct)
	fmt.Fprintf(&b, "- Status: Competitor %s their price\n\n", changeType)

	b.WriteString("COMPETITOR'S 180-DAY PRICE HISTORY:\n")
	b.WriteString(context)
	b.WriteString("\n")

	b.WriteString(`YOUR TASK:
- Analyze the competitor's pricing move using the history above.
- Recommend a clear, practical strategy for the seller to protect profit and market share.
- Focus on specific pricing and action recommendations, not generic theory.

OUTPUT FORMAT (IMPORTANT):
- Respond in clean, professional Markdown.
- Begin with a heading "## Overview" followed by 4-6 bullet points only (no paragraphs).
- Then use clear section headings in this order:
  - ## Immediate Action
  - ## Competitive Analysis
  - ## Pricing Strategy
  - ## Risk Assessment
  - ## Competitor Prediction
  - ## Action Plan (Step-by-Step)
  - ## Long-Term Strategy (30-90 Days)
- Under each heading, use bullet points where each bullet looks like: **Short Title**: detailed explanation (1-2 sentences) with concrete, actionable guidance.

Keep your response tightly focused on specific seller actions, with bolded bullet titles and neat, easy-to-follow structure.`)

	return b.String()
}

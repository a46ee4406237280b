// Package cost projects the token count and USD price of a generation call
// before it is made.
package cost

import (
	"math"
	"slices"

	"github.com/alnah/go-flashgen/internal/token"
)

// DefaultModel is used when no model is configured, and for pricing of
// models missing from the table.
const DefaultModel = "gpt-4o"

// Price is the USD cost per one million tokens.
type Price struct {
	Input  float64
	Output float64
}

// USD returns the price of input and output tokens, rounded to 4 decimal places.
func (p Price) USD(input, output int) float64 {
	return round4((float64(input)*p.Input + float64(output)*p.Output) / 1_000_000)
}

// pricing maps chat models to their per-million-token prices.
var pricing = map[string]Price{
	"gpt-4o-mini": {Input: 0.15, Output: 0.60},
	"gpt-4o":      {Input: 2.50, Output: 10.00},
	"gpt-4-turbo": {Input: 10.00, Output: 30.00},
}

// Models returns the priced model names in sorted order.
func Models() []string {
	names := make([]string, 0, len(pricing))
	for name := range pricing {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// PriceOf returns the price row for model, falling back to DefaultModel.
// known reports whether model had its own row.
func PriceOf(model string) (p Price, known bool) {
	if p, ok := pricing[model]; ok {
		return p, true
	}
	return pricing[DefaultModel], false
}

// Estimate is a projected cost of generating cards from one text.
type Estimate struct {
	EstimatedTokens  int     `json:"estimated_tokens"`
	EstimatedCostUSD float64 `json:"estimated_cost_usd"`
	Model            string  `json:"model"`
}

// For estimates the cost of sending text to model.
// Output is projected at half the input tokens; EstimatedTokens reports both
// directions combined. The cost is rounded to 4 decimal places. Model is
// echoed as given even when its price falls back to DefaultModel.
func For(text, model string, est token.Estimator) Estimate {
	if est == nil {
		est = token.CharEstimator{}
	}
	if model == "" {
		model = DefaultModel
	}
	input := est.Estimate(text)
	output := input / 2
	p, _ := PriceOf(model)
	return Estimate{
		EstimatedTokens:  input + output,
		EstimatedCostUSD: p.USD(input, output),
		Model:            model,
	}
}

func round4(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}

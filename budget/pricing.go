package budget

import "unicode/utf8"

// Pricing is the completion price in dollars per million tokens.
type Pricing struct {
	PromptPerMillion     float64 `yaml:"prompt_per_million"`
	CompletionPerMillion float64 `yaml:"completion_per_million"`
}

// DefaultPricing matches gpt-4o-mini list prices.
func DefaultPricing() Pricing {
	return Pricing{PromptPerMillion: 0.15, CompletionPerMillion: 0.60}
}

// Usage is the token count of one completion. Zero means the backend did not report it.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Cost prices u. When a side of u is zero, its tokens are estimated from the text.
func (p Pricing) Cost(u Usage, prompt, completion string) float64 {
	pt, ct := u.PromptTokens, u.CompletionTokens
	if pt <= 0 {
		pt = EstimateTokens(prompt)
	}
	if ct <= 0 {
		ct = EstimateTokens(completion)
	}
	return (float64(pt)*p.PromptPerMillion + float64(ct)*p.CompletionPerMillion) / 1_000_000
}

// EstimateTokens approximates a token count as one token per four characters, rounded up.
func EstimateTokens(s string) int {
	n := utf8.RuneCountInString(s)
	return (n + 3) / 4
}

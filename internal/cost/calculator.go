// Package cost prices API usage: capability tokens per model and
// flat-rate evidence lookups.
package cost

// Rates holds per-provider pricing configuration.
type Rates struct {
	Anthropic  map[string]ModelRate `yaml:"anthropic" mapstructure:"anthropic"`
	Jobwire    JobwireRate          `yaml:"jobwire" mapstructure:"jobwire"`
	Stackprint StackprintRate       `yaml:"stackprint" mapstructure:"stackprint"`
}

// ModelRate holds per-model token pricing (per million tokens).
type ModelRate struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// JobwireRate holds job-search API pricing.
type JobwireRate struct {
	PerSearch float64 `yaml:"per_search" mapstructure:"per_search"`
}

// StackprintRate holds technology-lookup pricing.
type StackprintRate struct {
	PerLookup float64 `yaml:"per_lookup" mapstructure:"per_lookup"`
}

// Calculator computes costs for API usage.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Claude computes the cost of one capability call. Unknown models cost 0.
func (c *Calculator) Claude(model string, input, output int64) float64 {
	rate, ok := c.rates.Anthropic[model]
	if !ok {
		return 0
	}
	return (float64(input)/1e6)*rate.Input + (float64(output)/1e6)*rate.Output
}

// JobwireSearches prices n keyword searches.
func (c *Calculator) JobwireSearches(n int) float64 {
	return float64(n) * c.rates.Jobwire.PerSearch
}

// StackprintLookups prices n technology lookups.
func (c *Calculator) StackprintLookups(n int) float64 {
	return float64(n) * c.rates.Stackprint.PerLookup
}

// DefaultRates returns the default pricing rates.
func DefaultRates() Rates {
	return Rates{
		Anthropic: map[string]ModelRate{
			"claude-haiku-4-5-20251001":  {Input: 0.80, Output: 4.00},
			"claude-sonnet-4-5-20250929": {Input: 3.00, Output: 15.00},
		},
		Jobwire:    JobwireRate{PerSearch: 0.01},
		Stackprint: StackprintRate{PerLookup: 0.004},
	}
}

package service

import "strings"

// Qwen list prices in USD per million tokens.
var qwenPricing = map[string]struct {
	InputPerMTok  float64
	OutputPerMTok float64
}{
	"qwen-turbo": {0.05, 0.2},
	"qwen-plus":  {0.4, 1.2},
	"qwen-max":   {1.6, 6.4},
}

const fallbackPricingModel = "qwen-plus"

// CalculateCost estimates the USD cost of tokens at the averaged input/output
// rate of model. Dated or suffixed model names ("qwen-max-latest") use their
// family price; unknown models use qwen-plus. Telemetry only.
func CalculateCost(tokens int, model string) float64 {
	if tokens <= 0 {
		return 0
	}
	pricing, ok := qwenPricing[model]
	if !ok {
		pricing = qwenPricing[fallbackPricingModel]
		for name, p := range qwenPricing {
			if strings.HasPrefix(model, name+"-") {
				pricing = p
				break
			}
		}
	}
	avg := (pricing.InputPerMTok + pricing.OutputPerMTok) / 2
	return float64(tokens) / 1_000_000 * avg
}

package tool

import "github.com/BrendanGraham14/steer-sub006/internal/provider"

// ToProviderTool converts an aggregated ToolSchema into the wire-facing
// provider.Tool shape sent to a model's completion request.
func ToProviderTool(s ToolSchema) provider.Tool {
	return provider.Tool{
		Name:        s.Name,
		Description: s.Description,
		Parameters:  s.Parameters,
	}
}

// ToProviderTools converts a whole schema slice, in order.
func ToProviderTools(schemas []ToolSchema) []provider.Tool {
	out := make([]provider.Tool, len(schemas))
	for i, s := range schemas {
		out[i] = ToProviderTool(s)
	}
	return out
}

package dimension

import "time"

type Dimension struct {
	ID           string            `json:"id"`
	TenantID     string            `json:"tenantId"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Category     Category          `json:"category"`
	ScaleFamily  ScaleFamily       `json:"scaleFamily"`
	MinValue     float64           `json:"minValue"`
	MaxValue     float64           `json:"maxValue"`
	ScaleLabels  map[string]string `json:"scaleLabels,omitempty"`
	Weight       float64           `json:"weight"`
	Active       bool              `json:"active"`
	System       bool              `json:"system"`
	DisplayOrder int               `json:"displayOrder"`
	CreatedAt    time.Time         `json:"createdAt"`
}

type UsageAnalysis struct {
	ProfileCount    int     `json:"profileCount"`
	BindingCount    int     `json:"bindingCount"`
	AverageWeight   float64 `json:"averageWeight"`
	AverageMinScore float64 `json:"averageMinScore"`
}

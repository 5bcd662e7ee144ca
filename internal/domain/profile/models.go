package profile

import (
	"time"

	"hrapp/internal/domain/dimension"
)

type Profile struct {
	ID                 string    `json:"id"`
	TenantID           string    `json:"tenantId"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	ScopeType          ScopeType `json:"scopeType"`
	PositionID         string    `json:"positionId,omitempty"`
	DepartmentID       string    `json:"departmentId,omitempty"`
	MinSuccessScore    float64   `json:"minSuccessScore"`
	TargetSuccessScore float64   `json:"targetSuccessScore"`
	Active             bool      `json:"active"`
	System             bool      `json:"system"`
	CreatedAt          time.Time `json:"createdAt"`
}

// Binding ties one dimension into a profile with its weight and thresholds.
// MinScore and TargetScore are expressed on the dimension's own scale, not as
// percentages.
type Binding struct {
	ID           string              `json:"id"`
	ProfileID    string              `json:"profileId"`
	Dimension    dimension.Dimension `json:"dimension"`
	Weight       float64             `json:"weight"`
	MinScore     float64             `json:"minScore"`
	TargetScore  float64             `json:"targetScore"`
	Critical     bool                `json:"critical"`
	Active       bool                `json:"active"`
	Notes        string              `json:"notes,omitempty"`
	DisplayOrder int                 `json:"displayOrder"`
}

// Observations maps dimension id to an observed raw score. Dimensions with no
// observation are simply absent.
type Observations map[string]float64

type DimensionResult struct {
	DimensionID string            `json:"dimensionId"`
	Name        string            `json:"name"`
	Status      PerformanceStatus `json:"status"`
	RawScore    *float64          `json:"rawScore,omitempty"`
	Normalized  *float64          `json:"normalized,omitempty"`
	Weight      float64           `json:"weight"`
	Critical    bool              `json:"critical"`
}

type Evaluation struct {
	ProfileID        string            `json:"profileId"`
	SuccessScore     float64           `json:"successScore"`
	MeetsMinimum     bool              `json:"meetsMinimum"`
	MeetsTarget      bool              `json:"meetsTarget"`
	CriticalFailures []string          `json:"criticalFailures"`
	PerDimension     []DimensionResult `json:"perDimension"`
}

package profile

// ScopeType says what slice of the organization a success profile applies to.
type ScopeType string

const (
	ScopePositionSpecific ScopeType = "position_specific"
	ScopeDepartmentWide   ScopeType = "department_wide"
	ScopeCompanyWide      ScopeType = "company_wide"
	ScopeRoleBased        ScopeType = "role_based"
	ScopeLevelBased       ScopeType = "level_based"
	ScopeCustom           ScopeType = "custom"
)

var ScopeTypes = []ScopeType{
	ScopePositionSpecific,
	ScopeDepartmentWide,
	ScopeCompanyWide,
	ScopeRoleBased,
	ScopeLevelBased,
	ScopeCustom,
}

func (s ScopeType) Valid() bool {
	for _, candidate := range ScopeTypes {
		if s == candidate {
			return true
		}
	}
	return false
}

func (s ScopeType) DisplayName() string {
	switch s {
	case ScopePositionSpecific:
		return "Position Specific"
	case ScopeDepartmentWide:
		return "Department Wide"
	case ScopeCompanyWide:
		return "Company Wide"
	case ScopeRoleBased:
		return "Role Based"
	case ScopeLevelBased:
		return "Level Based"
	case ScopeCustom:
		return "Custom"
	}
	return string(s)
}

// PerformanceStatus classifies one observed score against a binding's thresholds.
type PerformanceStatus string

const (
	StatusInvalid       PerformanceStatus = "invalid"
	StatusBelowMinimum  PerformanceStatus = "below_minimum"
	StatusMeetsMinimum  PerformanceStatus = "meets_minimum"
	StatusExceedsTarget PerformanceStatus = "exceeds_target"
)

func (p PerformanceStatus) DisplayName() string {
	switch p {
	case StatusInvalid:
		return "Not Assessed"
	case StatusBelowMinimum:
		return "Below Minimum"
	case StatusMeetsMinimum:
		return "Meets Minimum"
	case StatusExceedsTarget:
		return "Exceeds Target"
	}
	return string(p)
}

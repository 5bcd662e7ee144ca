package dimension

// Category is a closed set of competency groupings.
type Category string

const (
	CategoryTechnical      Category = "technical"
	CategoryBehavioral     Category = "behavioral"
	CategoryLeadership     Category = "leadership"
	CategoryCoreCompetency Category = "core_competency"
	CategoryFunctional     Category = "functional"
	CategorySoftSkills     Category = "soft_skills"
	CategoryCommunication  Category = "communication"
	CategoryProblemSolving Category = "problem_solving"
	CategoryTeamwork       Category = "teamwork"
	CategoryCustomerFocus  Category = "customer_focus"
	CategoryInnovation     Category = "innovation"
	CategoryAdaptability   Category = "adaptability"
)

var Categories = []Category{
	CategoryTechnical,
	CategoryBehavioral,
	CategoryLeadership,
	CategoryCoreCompetency,
	CategoryFunctional,
	CategorySoftSkills,
	CategoryCommunication,
	CategoryProblemSolving,
	CategoryTeamwork,
	CategoryCustomerFocus,
	CategoryInnovation,
	CategoryAdaptability,
}

func (c Category) Valid() bool {
	for _, candidate := range Categories {
		if c == candidate {
			return true
		}
	}
	return false
}

func (c Category) DisplayName() string {
	switch c {
	case CategoryTechnical:
		return "Technical Competencies"
	case CategoryBehavioral:
		return "Behavioral Competencies"
	case CategoryLeadership:
		return "Leadership Competencies"
	case CategoryCoreCompetency:
		return "Core Competencies"
	case CategoryFunctional:
		return "Functional Competencies"
	case CategorySoftSkills:
		return "Soft Skills"
	case CategoryCommunication:
		return "Communication Skills"
	case CategoryProblemSolving:
		return "Problem Solving"
	case CategoryTeamwork:
		return "Teamwork"
	case CategoryCustomerFocus:
		return "Customer Focus"
	case CategoryInnovation:
		return "Innovation"
	case CategoryAdaptability:
		return "Adaptability"
	}
	return string(c)
}

// ScaleFamily identifies the measurement scale a dimension is scored on.
type ScaleFamily string

const (
	ScaleLikert3     ScaleFamily = "likert_3"
	ScaleLikert5     ScaleFamily = "likert_5"
	ScaleLikert7     ScaleFamily = "likert_7"
	ScaleLikert10    ScaleFamily = "likert_10"
	ScalePercentage  ScaleFamily = "percentage"
	ScaleNumeric     ScaleFamily = "numeric"
	ScaleYesNo       ScaleFamily = "yes_no"
	ScaleRatingStars ScaleFamily = "rating_stars"
	ScaleCustom      ScaleFamily = "custom"
)

var ScaleFamilies = []ScaleFamily{
	ScaleLikert3,
	ScaleLikert5,
	ScaleLikert7,
	ScaleLikert10,
	ScalePercentage,
	ScaleNumeric,
	ScaleYesNo,
	ScaleRatingStars,
	ScaleCustom,
}

func (f ScaleFamily) Valid() bool {
	for _, candidate := range ScaleFamilies {
		if f == candidate {
			return true
		}
	}
	return false
}

func (f ScaleFamily) DisplayName() string {
	switch f {
	case ScaleLikert3:
		return "3-point Likert"
	case ScaleLikert5:
		return "5-point Likert"
	case ScaleLikert7:
		return "7-point Likert"
	case ScaleLikert10:
		return "10-point Likert"
	case ScalePercentage:
		return "Percentage"
	case ScaleNumeric:
		return "Numeric"
	case ScaleYesNo:
		return "Yes / No"
	case ScaleRatingStars:
		return "Star Rating"
	case ScaleCustom:
		return "Custom Scale"
	}
	return string(f)
}

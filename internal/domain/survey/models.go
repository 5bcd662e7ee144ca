package survey

import "time"

type Survey struct {
	ID            string     `json:"id"`
	TenantID      string     `json:"tenantId"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Kind          Kind       `json:"kind"`
	Status        Status     `json:"status"`
	StartDate     *time.Time `json:"startDate,omitempty"`
	EndDate       *time.Time `json:"endDate,omitempty"`
	Anonymous     bool       `json:"anonymous"`
	Repeatable    bool       `json:"repeatable"`
	Active        bool       `json:"active"`
	System        bool       `json:"system"`
	MaxResponses  *int       `json:"maxResponses,omitempty"`
	ResponseCount int        `json:"responseCount"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type Question struct {
	ID           string       `json:"id"`
	SurveyID     string       `json:"surveyId"`
	Text         string       `json:"text"`
	Type         QuestionType `json:"type"`
	DimensionID  string       `json:"dimensionId,omitempty"`
	Options      []string     `json:"options,omitempty"`
	Required     bool         `json:"required"`
	Active       bool         `json:"active"`
	DisplayOrder int          `json:"displayOrder"`
}

type Response struct {
	ID                   string         `json:"id"`
	SurveyID             string         `json:"surveyId"`
	RespondentID         string         `json:"respondentId,omitempty"`
	Status               ResponseStatus `json:"status"`
	CompletionPercentage float64        `json:"completionPercentage"`
	TotalScore           *float64       `json:"totalScore,omitempty"`
	WeightedScore        *float64       `json:"weightedScore,omitempty"`
	Anonymous            bool           `json:"anonymous"`
	StartedAt            *time.Time     `json:"startedAt,omitempty"`
	SubmittedAt          *time.Time     `json:"submittedAt,omitempty"`
}

type Statistics struct {
	TotalQuestions     int      `json:"totalQuestions"`
	TotalResponses     int      `json:"totalResponses"`
	SubmittedResponses int      `json:"submittedResponses"`
	CompletionRate     *float64 `json:"completionRate,omitempty"`
	CurrentlyActive    bool     `json:"currentlyActive"`
	Full               bool     `json:"full"`
	RemainingDays      *int     `json:"remainingDays,omitempty"`
}

package survey

// Status is the lifecycle state of a data-collection campaign.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
	StatusCancelled Status = "cancelled"
)

var Statuses = []Status{
	StatusDraft,
	StatusPublished,
	StatusActive,
	StatusPaused,
	StatusCompleted,
	StatusArchived,
	StatusCancelled,
}

func (s Status) Valid() bool {
	for _, candidate := range Statuses {
		if s == candidate {
			return true
		}
	}
	return false
}

func (s Status) DisplayName() string {
	switch s {
	case StatusDraft:
		return "Draft"
	case StatusPublished:
		return "Published"
	case StatusActive:
		return "Active"
	case StatusPaused:
		return "Paused"
	case StatusCompleted:
		return "Completed"
	case StatusArchived:
		return "Archived"
	case StatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

// ResponseStatus tracks one respondent's progress through a survey.
type ResponseStatus string

const (
	ResponseStarted    ResponseStatus = "started"
	ResponseInProgress ResponseStatus = "in_progress"
	ResponseCompleted  ResponseStatus = "completed"
	ResponseSubmitted  ResponseStatus = "submitted"
	ResponseExpired    ResponseStatus = "expired"
	ResponseCancelled  ResponseStatus = "cancelled"
)

func (s ResponseStatus) DisplayName() string {
	switch s {
	case ResponseStarted:
		return "Started"
	case ResponseInProgress:
		return "In Progress"
	case ResponseCompleted:
		return "Completed"
	case ResponseSubmitted:
		return "Submitted"
	case ResponseExpired:
		return "Expired"
	case ResponseCancelled:
		return "Cancelled"
	}
	return string(s)
}

// Kind describes what a survey is for. Informational; the lifecycle rules do
// not depend on it.
type Kind string

const (
	KindPerformance  Kind = "performance"
	KindFeedback360  Kind = "feedback_360"
	KindSatisfaction Kind = "satisfaction"
	KindEngagement   Kind = "engagement"
	KindCompetency   Kind = "competency"
	KindCustom       Kind = "custom"
)

var Kinds = []Kind{
	KindPerformance,
	KindFeedback360,
	KindSatisfaction,
	KindEngagement,
	KindCompetency,
	KindCustom,
}

func (k Kind) Valid() bool {
	for _, candidate := range Kinds {
		if k == candidate {
			return true
		}
	}
	return false
}

// QuestionType is the answer format of one question. Likert-family types get
// canonical option labels when added to a survey.
type QuestionType string

const (
	QuestionLikert5     QuestionType = "likert_5"
	QuestionLikert7     QuestionType = "likert_7"
	QuestionLikert10    QuestionType = "likert_10"
	QuestionYesNo       QuestionType = "yes_no"
	QuestionRatingStars QuestionType = "rating_stars"
	QuestionMultiChoice QuestionType = "multiple_choice"
	QuestionTextShort   QuestionType = "text_short"
	QuestionTextLong    QuestionType = "text_long"
	QuestionNumber      QuestionType = "number"
)

var QuestionTypes = []QuestionType{
	QuestionLikert5,
	QuestionLikert7,
	QuestionLikert10,
	QuestionYesNo,
	QuestionRatingStars,
	QuestionMultiChoice,
	QuestionTextShort,
	QuestionTextLong,
	QuestionNumber,
}

func (q QuestionType) Valid() bool {
	for _, candidate := range QuestionTypes {
		if q == candidate {
			return true
		}
	}
	return false
}

// Scorable reports whether answers of this type roll up into a dimension score.
func (q QuestionType) Scorable() bool {
	switch q {
	case QuestionLikert5, QuestionLikert7, QuestionLikert10, QuestionYesNo, QuestionRatingStars, QuestionNumber:
		return true
	}
	return false
}

// DefaultOptions returns the canonical answer labels for scale-style question
// types, lowest to highest.
func (q QuestionType) DefaultOptions() []string {
	switch q {
	case QuestionLikert5:
		return []string{"Strongly Disagree", "Disagree", "Neutral", "Agree", "Strongly Agree"}
	case QuestionLikert7:
		return []string{"Strongly Disagree", "Disagree", "Somewhat Disagree", "Neutral", "Somewhat Agree", "Agree", "Strongly Agree"}
	case QuestionLikert10:
		return []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}
	case QuestionYesNo:
		return []string{"No", "Yes"}
	case QuestionRatingStars:
		return []string{"1 Star", "2 Stars", "3 Stars", "4 Stars", "5 Stars"}
	}
	return nil
}

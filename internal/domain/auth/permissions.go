package auth

const (
	PermDimensionsRead   = "assessments.dimensions.read"
	PermDimensionsWrite  = "assessments.dimensions.write"
	PermProfilesRead     = "assessments.profiles.read"
	PermProfilesWrite    = "assessments.profiles.write"
	PermProfilesEvaluate = "assessments.profiles.evaluate"
	PermSurveysRead      = "surveys.read"
	PermSurveysWrite     = "surveys.write"
	PermSurveysPublish   = "surveys.publish"
	PermSurveysRespond   = "surveys.respond"
	PermReportsRead      = "reports.read"
	PermAuditRead        = "audit.read"
	PermSystemAdmin      = "admin.system"
)

var DefaultPermissions = []string{
	PermDimensionsRead,
	PermDimensionsWrite,
	PermProfilesRead,
	PermProfilesWrite,
	PermProfilesEvaluate,
	PermSurveysRead,
	PermSurveysWrite,
	PermSurveysPublish,
	PermSurveysRespond,
	PermReportsRead,
	PermAuditRead,
	PermSystemAdmin,
}

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermDimensionsRead,
		PermSurveysRead,
		PermSurveysRespond,
	},
	RoleManager: {
		PermDimensionsRead,
		PermProfilesRead,
		PermProfilesEvaluate,
		PermSurveysRead,
		PermSurveysRespond,
		PermReportsRead,
	},
	RoleHR: {
		PermDimensionsRead,
		PermDimensionsWrite,
		PermProfilesRead,
		PermProfilesWrite,
		PermProfilesEvaluate,
		PermSurveysRead,
		PermSurveysWrite,
		PermSurveysPublish,
		PermSurveysRespond,
		PermReportsRead,
		PermAuditRead,
	},
	RoleSystemAdmin: {
		PermSystemAdmin,
	},
}

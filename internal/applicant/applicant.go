// Package applicant holds the Airtable schema of the recruiting base and the
// compressed document stored on every applicant.
package applicant

// Field names used across tables.
const (
	FieldApplicantLink  = "Applicant"
	FieldCompressedJSON = "Compressed JSON"
	FieldLLMSummary     = "LLM Summary"
	FieldLLMScore       = "LLM Score"
	FieldLLMFollowUps   = "LLM Follow-Ups"
	FieldScoreReason    = "Score Reason"

	FieldCompany       = "Company"
	FieldLocation      = "Location"
	FieldPreferredRate = "Preferred Rate"
	FieldAvailability  = "Availability (hrs/wk)"
)

// Tables maps the logical tables onto Airtable table names.
type Tables struct {
	Applicants        string `mapstructure:"applicants"`
	PersonalDetails   string `mapstructure:"personal-details"`
	WorkExperience    string `mapstructure:"work-experience"`
	SalaryPreferences string `mapstructure:"salary-preferences"`
	ShortlistedLeads  string `mapstructure:"shortlisted-leads"`
}

// DefaultTables returns the table names of the reference base.
func DefaultTables() Tables {
	return Tables{
		Applicants:        "Applicants",
		PersonalDetails:   "Personal Details",
		WorkExperience:    "Work Experience",
		SalaryPreferences: "Salary Preferences",
		ShortlistedLeads:  "Shortlisted Leads",
	}
}

// WithDefaults fills empty names from DefaultTables.
func (t Tables) WithDefaults() Tables {
	defaults := DefaultTables()
	if t.Applicants == "" {
		t.Applicants = defaults.Applicants
	}
	if t.PersonalDetails == "" {
		t.PersonalDetails = defaults.PersonalDetails
	}
	if t.WorkExperience == "" {
		t.WorkExperience = defaults.WorkExperience
	}
	if t.SalaryPreferences == "" {
		t.SalaryPreferences = defaults.SalaryPreferences
	}
	if t.ShortlistedLeads == "" {
		t.ShortlistedLeads = defaults.ShortlistedLeads
	}
	return t
}

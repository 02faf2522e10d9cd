package enrollment

// EnrollmentFields binds canonical enrollment fields to CRM column names.
type EnrollmentFields struct {
	ID               string `mapstructure:"id" yaml:"id"`
	Student          string `mapstructure:"student" yaml:"student"`
	College          string `mapstructure:"college" yaml:"college"`
	StartDate        string `mapstructure:"start_date" yaml:"start_date"`
	EndDate          string `mapstructure:"end_date" yaml:"end_date"`
	LastVerified     string `mapstructure:"last_verified" yaml:"last_verified"`
	Status           string `mapstructure:"status" yaml:"status"`
	Degree           string `mapstructure:"degree_type" yaml:"degree_type"`
	DataSource       string `mapstructure:"data_source" yaml:"data_source"`
	DegreeText       string `mapstructure:"degree_text" yaml:"degree_text"`
	MajorText        string `mapstructure:"major_text" yaml:"major_text"`
	WithdrawalReason string `mapstructure:"withdrawal_reason" yaml:"withdrawal_reason"`
	WithdrawalCode   string `mapstructure:"withdrawal_code" yaml:"withdrawal_code"`
}

// ContactFields binds contact fields to CRM column names.
type ContactFields struct {
	ID           string `mapstructure:"id" yaml:"id"`
	LastName     string `mapstructure:"last_name" yaml:"last_name"`
	FirstName    string `mapstructure:"first_name" yaml:"first_name"`
	HSClass      string `mapstructure:"hs_class" yaml:"hs_class"`
	HighSchool   string `mapstructure:"high_school" yaml:"high_school"`
	StudentID    string `mapstructure:"student_id" yaml:"student_id"`
	NeedsReview  string `mapstructure:"needs_review" yaml:"needs_review"`
	ReviewReason string `mapstructure:"review_reason" yaml:"review_reason"`
}

// AccountFields binds account (college) fields to CRM column names.
type AccountFields struct {
	ID          string `mapstructure:"id" yaml:"id"`
	Name        string `mapstructure:"name" yaml:"name"`
	CollegeType string `mapstructure:"college_type" yaml:"college_type"`
	NCESID      string `mapstructure:"nces_id" yaml:"nces_id"`
}

// Fields is the full CRM schema namespace.
type Fields struct {
	Enrollment EnrollmentFields `mapstructure:"enrollment" yaml:"enrollment"`
	Contact    ContactFields    `mapstructure:"contact" yaml:"contact"`
	Account    AccountFields    `mapstructure:"account" yaml:"account"`
}

// DefaultFields returns the Salesforce-style field names of the alumni database.
func DefaultFields() Fields {
	return Fields{
		Enrollment: EnrollmentFields{
			ID:               "Id",
			Student:          "Student__c",
			College:          "College__c",
			StartDate:        "Start_Date__c",
			EndDate:          "End_Date__c",
			LastVerified:     "Date_Last_Verified__c",
			Status:           "Status__c",
			Degree:           "Degree_Type__c",
			DataSource:       "Data_Source__c",
			DegreeText:       "Degree_Text__c",
			MajorText:        "Major_Text__c",
			WithdrawalReason: "Withdrawal_reason__c",
			WithdrawalCode:   "Withdrawal_code__c",
		},
		Contact: ContactFields{
			ID:           "Id",
			LastName:     "LastName",
			FirstName:    "FirstName",
			HSClass:      "HS_Class__c",
			HighSchool:   "High_School__c",
			StudentID:    "Network_Student_ID__c",
			NeedsReview:  "Needs_NSC_Review__c",
			ReviewReason: "NSC_Review_Reason__c",
		},
		Account: AccountFields{
			ID:          "Id",
			Name:        "Name",
			CollegeType: "College_Type__c",
			NCESID:      "NCES_ID__c",
		},
	}
}

// Columns returns the enrollment columns in record order; withDB appends
// the CRM-only columns.
func (f EnrollmentFields) Columns(withDB bool) []string {
	cols := []string{
		f.Student,
		f.College,
		f.StartDate,
		f.EndDate,
		f.LastVerified,
		f.Status,
		f.Degree,
		f.DataSource,
		f.DegreeText,
		f.MajorText,
	}
	if withDB {
		cols = append(cols, f.ID, f.WithdrawalReason, f.WithdrawalCode)
	}
	return cols
}

// UpdateColumns returns the header of the enrollment update table.
func (f EnrollmentFields) UpdateColumns() []string {
	return []string{
		f.ID,
		f.StartDate,
		f.EndDate,
		f.LastVerified,
		f.Status,
		f.Degree,
		f.DataSource,
		f.DegreeText,
		f.MajorText,
	}
}

// FlagColumns returns the header of the contact flag table.
func (f ContactFields) FlagColumns() []string {
	return []string{f.ID, f.NeedsReview, f.ReviewReason}
}

// Package clearinghouse converts a National Student Clearinghouse detail
// export into the clearinghouse enrollment table consumed by the merge step.
//
// The pipeline runs a pre-flight reference check, parses term rows,
// combines contiguous terms into spans, derives status and degree type,
// resolves the transient T/W status and translates ids to CRM ids.
package clearinghouse

import "github.com/agentstation/enrollsync/pkg/enrollment"

// Columns names the columns of the clearinghouse detail export.
type Columns struct {
	UniqueID         string `mapstructure:"unique_id" yaml:"unique_id"`
	FirstName        string `mapstructure:"first_name" yaml:"first_name"`
	LastName         string `mapstructure:"last_name" yaml:"last_name"`
	HSGradDate       string `mapstructure:"hs_grad_date" yaml:"hs_grad_date"`
	RecordFound      string `mapstructure:"record_found" yaml:"record_found"`
	CollegeCode      string `mapstructure:"college_code" yaml:"college_code"`
	CollegeName      string `mapstructure:"college_name" yaml:"college_name"`
	CollegeState     string `mapstructure:"college_state" yaml:"college_state"`
	TwoYearFourYear  string `mapstructure:"two_year_four_year" yaml:"two_year_four_year"`
	PublicPrivate    string `mapstructure:"public_private" yaml:"public_private"`
	EnrollmentBegin  string `mapstructure:"enrollment_begin" yaml:"enrollment_begin"`
	EnrollmentEnd    string `mapstructure:"enrollment_end" yaml:"enrollment_end"`
	EnrollmentStatus string `mapstructure:"enrollment_status" yaml:"enrollment_status"`
	Graduated        string `mapstructure:"graduated" yaml:"graduated"`
	GraduationDate   string `mapstructure:"graduation_date" yaml:"graduation_date"`
	DegreeTitle      string `mapstructure:"degree_title" yaml:"degree_title"`
	Major            string `mapstructure:"major" yaml:"major"`
}

// DefaultColumns returns the header names of the standard detail report.
func DefaultColumns() Columns {
	return Columns{
		UniqueID:         "YOUR_UNIQUE_IDENTIFIER",
		FirstName:        "FIRST_NAME",
		LastName:         "LAST_NAME",
		HSGradDate:       "HIGH_SCHOOL_GRAD_DATE",
		RecordFound:      "RECORD_FOUND_Y/N",
		CollegeCode:      "COLLEGE_CODE/BRANCH",
		CollegeName:      "COLLEGE_NAME",
		CollegeState:     "COLLEGE_STATE",
		TwoYearFourYear:  "2-YEAR/4-YEAR",
		PublicPrivate:    "PUBLIC/PRIVATE",
		EnrollmentBegin:  "ENROLLMENT_BEGIN",
		EnrollmentEnd:    "ENROLLMENT_END",
		EnrollmentStatus: "ENROLLMENT_STATUS",
		Graduated:        "GRADUATED",
		GraduationDate:   "GRADUATION_DATE",
		DegreeTitle:      "DEGREE_TITLE",
		Major:            "MAJOR",
	}
}

// required returns the columns a detail export must carry.
func (c Columns) required() []string {
	return []string{
		c.UniqueID, c.FirstName, c.LastName, c.HSGradDate, c.RecordFound,
		c.CollegeCode, c.CollegeName, c.CollegeState, c.TwoYearFourYear,
		c.PublicPrivate, c.EnrollmentBegin, c.EnrollmentEnd,
		c.EnrollmentStatus, c.Graduated, c.GraduationDate, c.DegreeTitle, c.Major,
	}
}

// OutputHeader returns the header of the clearinghouse enrollment table:
// descriptive columns followed by the CRM enrollment columns.
func OutputHeader(f enrollment.EnrollmentFields) []string {
	return []string{
		"Student ID",
		"Last Name",
		"First Name",
		HSClassColumn,
		"College NCES ID",
		"College Name",
		f.Student,
		f.College,
		f.StartDate,
		f.EndDate,
		f.Status,
		f.Degree,
		f.DataSource,
		f.LastVerified,
		f.DegreeText,
		f.MajorText,
	}
}

// HSClassColumn is the output column carrying the high school class.
const HSClassColumn = "HS Class"

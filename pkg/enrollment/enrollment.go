// Package enrollment defines the canonical enrollment record shared by the
// clearinghouse feed and the CRM, together with the status and degree
// vocabularies and the CRM field-name namespaces.
package enrollment

import "strings"

// Status is the enrollment status. The empty status is "null".
type Status string

// Enrollment statuses.
const (
	StatusNone        Status = ""
	Attending         Status = "Attending"
	Graduated         Status = "Graduated"
	Withdrew          Status = "Withdrew"
	TransferredOut    Status = "Transferred out"
	Matriculating     Status = "Matriculating"
	DidNotMatriculate Status = "Did not matriculate"

	// TransferredOrWithdrew is the intermediate status produced while
	// deriving clearinghouse statuses; it never reaches the matcher.
	TransferredOrWithdrew Status = "T/W"
)

// IsNull reports whether the status is unspecified.
func (s Status) IsNull() bool { return s == StatusNone }

// Left reports whether the status is Transferred out or Withdrew.
func (s Status) Left() bool { return s == TransferredOut || s == Withdrew }

// PreEnrollment reports whether the status is Matriculating or Did not matriculate.
func (s Status) PreEnrollment() bool { return s == Matriculating || s == DidNotMatriculate }

// String implements fmt.Stringer.
func (s Status) String() string { return string(s) }

// Degree is the enrollment degree type. The empty degree is "null".
type Degree string

// Degree types.
const (
	DegreeNone              Degree = ""
	Bachelors               Degree = "Bachelor's"
	Masters                 Degree = "Master's"
	Associates              Degree = "Associate's"
	AssociatesOrCertificate Degree = "Associate's or Certificate (TBD)"
	Certificate             Degree = "Certificate"
	TradeVocational         Degree = "Trade/Vocational"
	Employment              Degree = "Employment"
)

// IsNull reports whether the degree is unspecified.
func (d Degree) IsNull() bool { return d == DegreeNone }

// HasPrefix reports whether the degree name starts with prefix.
func (d Degree) HasPrefix(prefix string) bool { return strings.HasPrefix(string(d), prefix) }

// String implements fmt.Stringer.
func (d Degree) String() string { return string(d) }

// Data sources written by the matcher.
const (
	SourceNSC                 = "NSC"
	SourceCoordinatorVerified = "Coordinator Verified"
	SourceTranscript          = "Transcript/Grade Report"
)

// Record is one enrollment of one student at one college.
type Record struct {
	StudentID    string `json:"student_id" yaml:"student_id"`
	CollegeID    string `json:"college_id" yaml:"college_id"`
	Start        Date   `json:"start_date" yaml:"start_date"`
	End          Date   `json:"end_date" yaml:"end_date"`
	LastVerified Date   `json:"last_verified" yaml:"last_verified"`
	Status       Status `json:"status" yaml:"status"`
	Degree       Degree `json:"degree_type" yaml:"degree_type"`
	DataSource   string `json:"data_source" yaml:"data_source"`
	DegreeText   string `json:"degree_text" yaml:"degree_text"`
	MajorText    string `json:"major_text" yaml:"major_text"`

	// Index is the stable position of the record in its source table.
	Index int `json:"index" yaml:"index"`
}

// DBRecord is an enrollment read from the CRM.
type DBRecord struct {
	Record           `yaml:",inline"`
	ID               string `json:"id" yaml:"id"`
	WithdrawalReason string `json:"withdrawal_reason" yaml:"withdrawal_reason"`
	WithdrawalCode   string `json:"withdrawal_code" yaml:"withdrawal_code"`
}

// Institution is a college (CRM account).
type Institution struct {
	ID   string
	Name string
	Type string // e.g. "4 yr", "2 yr", "Trade", "Military Enlistment"
}

// Contact is a student (CRM contact).
type Contact struct {
	ID         string
	LastName   string
	FirstName  string
	HSClass    string
	HighSchool string
}

// Directory resolves the ids carried by enrollment records.
type Directory struct {
	Colleges map[string]Institution
	Students map[string]Contact
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		Colleges: make(map[string]Institution),
		Students: make(map[string]Contact),
	}
}

// College looks up an institution by CRM id.
func (d *Directory) College(id string) (Institution, bool) {
	if d == nil {
		return Institution{}, false
	}
	inst, ok := d.Colleges[id]
	return inst, ok
}

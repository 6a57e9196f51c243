package models

import "time"

// EducationDetails captures one education level of an applicant.
type EducationDetails struct {
	Level      string `json:"level"`
	Stream     string `json:"stream"`
	Degree     string `json:"degree"`
	Percentage string `json:"percentage"`
	Year       string `json:"year"`
	Institute  string `json:"institute"`
	Board      string `json:"board"`
	University string `json:"university"`
}

// IsZero reports whether every field is blank.
func (e EducationDetails) IsZero() bool {
	return e == EducationDetails{}
}

// AcademicRecord is an additional degree listed by the applicant.
type AcademicRecord struct {
	Degree     string `json:"degree"`
	University string `json:"university"`
	Year       string `json:"year"`
}

// ExamEntry stores the sub-scores of one standardised test attempt.
type ExamEntry struct {
	Type   ExamType           `json:"type"`
	Scores map[string]float64 `json:"scores"`
}

// Clone returns a copy that shares no state with the receiver.
func (e ExamEntry) Clone() ExamEntry {
	out := ExamEntry{Type: e.Type, Scores: make(map[string]float64, len(e.Scores))}
	for k, v := range e.Scores {
		out.Scores[k] = v
	}
	return out
}

// WorkExperience is one employment record.
type WorkExperience struct {
	CompanyName string `json:"company_name"`
	Designation string `json:"designation"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Ongoing     bool   `json:"ongoing"`
}

// Refusal is a previous visa refusal.
type Refusal struct {
	Country      string `json:"country"`
	Date         string `json:"date"`
	VisaCategory string `json:"visa_category"`
	Reason       string `json:"reason"`
}

// ProfileData holds every group collected by the detailed enquiry wizard.
type ProfileData struct {
	CurrentEducation    EducationDetails `json:"current_education_details"`
	TenthEducation      EducationDetails `json:"tenth_education_details"`
	TwelfthEducation    EducationDetails `json:"twelfth_education_details"`
	GraduationEducation EducationDetails `json:"graduation_education_details"`
	Academics           []AcademicRecord `json:"academics"`
	Exams               []ExamEntry      `json:"exams"`
	WorkExperiences     []WorkExperience `json:"work_experiences"`
	FatherOccupation    string           `json:"father_occupation"`
	FatherAnnualIncome  string           `json:"father_annual_income"`
	Refusals            []Refusal        `json:"refusals"`
	ProfileDocuments
	ConfirmedServices []string      `json:"confirmed_services"`
	EnquiryStatus     EnquiryStatus `json:"enquiry_status"`
}

// Clone deep copies the profile data.
func (p ProfileData) Clone() ProfileData {
	out := p
	out.Academics = append([]AcademicRecord{}, p.Academics...)
	out.Exams = make([]ExamEntry, len(p.Exams))
	for i, exam := range p.Exams {
		out.Exams[i] = exam.Clone()
	}
	out.WorkExperiences = append([]WorkExperience{}, p.WorkExperiences...)
	out.Refusals = append([]Refusal{}, p.Refusals...)
	out.ConfirmedServices = append([]string{}, p.ConfirmedServices...)
	return out
}

// DetailedProfile is the persisted record written once per successful submission.
type DetailedProfile struct {
	ID        string `json:"id,omitempty"`
	EnquiryID string `json:"enquiry_id"`
	ProfileData
	CreatedBy      string     `json:"created_by,omitempty"`
	LastModifiedBy string     `json:"last_modified_by,omitempty"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

package wizard

import "github.com/noah-isme/edu-crm-api/internal/models"

// Step is a 1-based wizard page index.
type Step int

const (
	StepAcademicHistory Step = iota + 1
	StepTestScores
	StepWorkExperience
	StepFamilyAndRefusals
	StepDocuments
	StepServicesAndStatus
	StepReview
)

const (
	FirstStep = StepAcademicHistory
	LastStep  = StepReview
)

// StepDefinition describes one page of the wizard.
type StepDefinition struct {
	Step   Step        `json:"step"`
	Label  string      `json:"label"`
	Fields []FieldPath `json:"fields"`
}

// Steps is the ordered step registry.
var Steps = []StepDefinition{
	{
		Step:  StepAcademicHistory,
		Label: "Academic History",
		Fields: []FieldPath{
			FieldCurrentEducation,
			FieldTenthEducation,
			FieldTwelfthEducation,
			FieldGraduationEducation,
			FieldAcademics,
		},
	},
	{Step: StepTestScores, Label: "Test Scores", Fields: []FieldPath{FieldExams}},
	{Step: StepWorkExperience, Label: "Work Experience", Fields: []FieldPath{FieldWorkExperiences}},
	{
		Step:   StepFamilyAndRefusals,
		Label:  "Family & Refusals",
		Fields: []FieldPath{FieldFatherOccupation, FieldFatherAnnualIncome, FieldRefusals},
	},
	{Step: StepDocuments, Label: "Documents"},
	{
		Step:   StepServicesAndStatus,
		Label:  "Services & Status",
		Fields: []FieldPath{FieldConfirmedServices, FieldEnquiryStatus},
	},
	{Step: StepReview, Label: "Review"},
}

// Valid reports whether s is inside the registry.
func (s Step) Valid() bool {
	return s >= FirstStep && s <= LastStep
}

// Definition returns the registry entry for s.
func (s Step) Definition() (StepDefinition, bool) {
	if !s.Valid() {
		return StepDefinition{}, false
	}
	return Steps[s-1], true
}

// Label returns the human label of s.
func (s Step) Label() string {
	if def, ok := s.Definition(); ok {
		return def.Label
	}
	return ""
}

// Owns reports whether path belongs to one of the step's fields.
func (s Step) Owns(path FieldPath) bool {
	def, ok := s.Definition()
	if !ok {
		return false
	}
	for _, f := range def.Fields {
		if path.Within(f) {
			return true
		}
	}
	return false
}

// OwnerOf returns the step owning path. Document slots belong to the
// documents step even though it declares no validated fields.
func OwnerOf(path FieldPath) (Step, bool) {
	for _, def := range Steps {
		if def.Step.Owns(path) {
			return def.Step, true
		}
	}
	if models.DocumentField(path.Root()).Valid() {
		return StepDocuments, true
	}
	return 0, false
}

// NextStep increments s, capped at the review step.
func NextStep(s Step) Step {
	if s >= LastStep {
		return LastStep
	}
	if s < FirstStep {
		return FirstStep
	}
	return s + 1
}

// PrevStep decrements s, capped at the first step.
func PrevStep(s Step) Step {
	if s <= FirstStep {
		return FirstStep
	}
	if s > LastStep {
		return LastStep
	}
	return s - 1
}

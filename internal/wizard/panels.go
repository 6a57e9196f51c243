package wizard

import (
	"fmt"
	"sort"

	"github.com/noah-isme/edu-crm-api/internal/models"
	appErrors "github.com/noah-isme/edu-crm-api/pkg/errors"
)

// ViewContext carries collaborator data needed to render panels.
type ViewContext struct {
	Services []models.ServiceItem
}

// StepView is the rendered form of one step.
type StepView struct {
	Step   Step                     `json:"step"`
	Label  string                   `json:"label"`
	Active bool                     `json:"active"`
	States map[FieldPath]FieldState `json:"states,omitempty"`
	Errors map[FieldPath]string     `json:"errors,omitempty"`
	Panel  interface{}              `json:"panel"`
}

// EducationGroupView is one fixed education sub-form.
type EducationGroupView struct {
	Field    FieldPath               `json:"field"`
	Label    string                  `json:"label"`
	Values   models.EducationDetails `json:"values"`
	Required []FieldPath             `json:"required,omitempty"`
}

// AcademicPanel renders the academic history step.
type AcademicPanel struct {
	Education []EducationGroupView    `json:"education"`
	Academics []models.AcademicRecord `json:"academics"`
}

// ExamView is one exam entry with the inputs of its type.
type ExamView struct {
	Index  int                `json:"index"`
	Type   models.ExamType    `json:"type"`
	Label  string             `json:"label"`
	Scores map[string]float64 `json:"scores"`
	Inputs []models.SubScore  `json:"inputs"`
}

// TestScoresPanel renders the test scores step. The full catalog is always
// offered.
type TestScoresPanel struct {
	Catalog []models.ExamTypeDefinition `json:"catalog"`
	Exams   []ExamView                  `json:"exams"`
}

// WorkExperienceView adds presentation flags to a work record.
type WorkExperienceView struct {
	models.WorkExperience
	Index           int  `json:"index"`
	EndDateDisabled bool `json:"end_date_disabled"`
}

// WorkExperiencePanel renders the work experience step.
type WorkExperiencePanel struct {
	WorkExperiences []WorkExperienceView `json:"work_experiences"`
}

// FamilyPanel renders the family and refusal history step.
type FamilyPanel struct {
	FatherOccupation   string           `json:"father_occupation"`
	FatherAnnualIncome string           `json:"father_annual_income"`
	Refusals           []models.Refusal `json:"refusals"`
	Countries          []models.Country `json:"countries"`
}

// DocumentSlot is one drop zone of the documents step.
type DocumentSlot struct {
	Field  models.DocumentField `json:"field"`
	Label  string               `json:"label"`
	Accept string               `json:"accept"`
	Status StagedKind           `json:"status"`
	Value  string               `json:"value"`
	Size   int                  `json:"size,omitempty"`
}

// DocumentsPanel renders the documents step.
type DocumentsPanel struct {
	Slots []DocumentSlot `json:"slots"`
}

// ServiceOption is a selectable service.
type ServiceOption struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Selected bool    `json:"selected"`
}

// ServicesPanel renders the services and status step.
type ServicesPanel struct {
	Services      []ServiceOption        `json:"services"`
	Statuses      []models.EnquiryStatus `json:"statuses"`
	EnquiryStatus models.EnquiryStatus   `json:"enquiry_status"`
}

var educationLabels = map[FieldPath]string{
	FieldCurrentEducation:    "Current Education",
	FieldTenthEducation:      "10th Education",
	FieldTwelfthEducation:    "12th Education",
	FieldGraduationEducation: "Graduation",
}

// View renders step. Any step can be viewed; only the active one accepts
// patches.
func (w *Wizard) View(step Step, vc ViewContext) (StepView, error) {
	def, ok := step.Definition()
	if !ok {
		return StepView{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown step %d", step))
	}
	view := StepView{
		Step:   step,
		Label:  def.Label,
		Active: step == w.step,
		States: make(map[FieldPath]FieldState),
		Errors: make(map[FieldPath]string),
	}
	for p, st := range w.states {
		if owner, ok := OwnerOf(p); ok && owner == step {
			view.States[p] = st
		}
	}
	for p, msg := range w.errors {
		if owner, ok := OwnerOf(p); ok && owner == step {
			view.Errors[p] = msg
		}
	}

	data := w.draft.All()
	switch step {
	case StepAcademicHistory:
		view.Panel = academicPanel(data)
	case StepTestScores:
		view.Panel = testScoresPanel(data)
	case StepWorkExperience:
		view.Panel = workExperiencePanel(data)
	case StepFamilyAndRefusals:
		view.Panel = FamilyPanel{
			FatherOccupation:   data.FatherOccupation,
			FatherAnnualIncome: data.FatherAnnualIncome,
			Refusals:           data.Refusals,
			Countries:          models.Countries,
		}
	case StepDocuments:
		view.Panel = w.documentsPanel(data)
	case StepServicesAndStatus:
		view.Panel = servicesPanel(data, vc.Services)
	case StepReview:
		view.Panel = w.Review()
	}
	return view, nil
}

func academicPanel(data models.ProfileData) AcademicPanel {
	values := map[FieldPath]models.EducationDetails{
		FieldCurrentEducation:    data.CurrentEducation,
		FieldTenthEducation:      data.TenthEducation,
		FieldTwelfthEducation:    data.TwelfthEducation,
		FieldGraduationEducation: data.GraduationEducation,
	}
	panel := AcademicPanel{Academics: data.Academics}
	for _, group := range EducationGroups {
		gv := EducationGroupView{Field: group, Label: educationLabels[group], Values: values[group]}
		for _, req := range RequiredFields {
			if req.Root() == group {
				gv.Required = append(gv.Required, req)
			}
		}
		panel.Education = append(panel.Education, gv)
	}
	return panel
}

func testScoresPanel(data models.ProfileData) TestScoresPanel {
	panel := TestScoresPanel{Catalog: models.ExamTypes, Exams: make([]ExamView, 0, len(data.Exams))}
	for i, exam := range data.Exams {
		ev := ExamView{Index: i, Type: exam.Type, Label: string(exam.Type), Scores: exam.Scores}
		if def, ok := models.LookupExamType(exam.Type); ok {
			ev.Label = def.Label
			ev.Inputs = def.SubScores
		}
		panel.Exams = append(panel.Exams, ev)
	}
	return panel
}

func workExperiencePanel(data models.ProfileData) WorkExperiencePanel {
	panel := WorkExperiencePanel{WorkExperiences: make([]WorkExperienceView, 0, len(data.WorkExperiences))}
	for i, item := range data.WorkExperiences {
		panel.WorkExperiences = append(panel.WorkExperiences, WorkExperienceView{
			WorkExperience:  item,
			Index:           i,
			EndDateDisabled: item.Ongoing,
		})
	}
	return panel
}

func (w *Wizard) documentsPanel(data models.ProfileData) DocumentsPanel {
	panel := DocumentsPanel{Slots: make([]DocumentSlot, 0, len(models.DocumentFields))}
	for _, field := range models.DocumentFields {
		staged := w.staging.Get(field)
		panel.Slots = append(panel.Slots, DocumentSlot{
			Field:  field,
			Label:  field.Label(),
			Accept: PDFContentType,
			Status: staged.Kind(),
			Value:  data.Document(field),
			Size:   staged.Size(),
		})
	}
	return panel
}

func servicesPanel(data models.ProfileData, catalog []models.ServiceItem) ServicesPanel {
	selected := make(map[string]struct{}, len(data.ConfirmedServices))
	for _, name := range data.ConfirmedServices {
		selected[name] = struct{}{}
	}
	panel := ServicesPanel{Statuses: models.EnquiryStatuses, EnquiryStatus: data.EnquiryStatus}
	for _, item := range catalog {
		if !item.Active {
			continue
		}
		_, isSelected := selected[item.Name]
		panel.Services = append(panel.Services, ServiceOption{Name: item.Name, Price: item.Price, Selected: isSelected})
	}
	sort.SliceStable(panel.Services, func(i, j int) bool { return panel.Services[i].Name < panel.Services[j].Name })
	return panel
}

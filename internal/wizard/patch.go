package wizard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/noah-isme/edu-crm-api/internal/models"
	appErrors "github.com/noah-isme/edu-crm-api/pkg/errors"
)

// Patch is a typed change set produced by one step panel.
type Patch interface {
	Step() Step
	apply(d *Draft) ([]FieldPath, error)
}

// AcademicPatch updates the academic history step. Nil groups are left as
// they are; list entries are addressed by index.
type AcademicPatch struct {
	CurrentEducation    *models.EducationDetails      `json:"current_education_details,omitempty"`
	TenthEducation      *models.EducationDetails      `json:"tenth_education_details,omitempty"`
	TwelfthEducation    *models.EducationDetails      `json:"twelfth_education_details,omitempty"`
	GraduationEducation *models.EducationDetails      `json:"graduation_education_details,omitempty"`
	Academics           map[int]models.AcademicRecord `json:"academics,omitempty"`
}

func (AcademicPatch) Step() Step { return StepAcademicHistory }

func (p AcademicPatch) apply(d *Draft) ([]FieldPath, error) {
	var changed []FieldPath
	groups := []struct {
		path  FieldPath
		value *models.EducationDetails
	}{
		{FieldCurrentEducation, p.CurrentEducation},
		{FieldTenthEducation, p.TenthEducation},
		{FieldTwelfthEducation, p.TwelfthEducation},
		{FieldGraduationEducation, p.GraduationEducation},
	}
	for _, g := range groups {
		if g.value == nil {
			continue
		}
		paths, err := assign(d, g.path, educationLeaves(*d.education(g.path)), educationLeaves(*g.value))
		if err != nil {
			return nil, err
		}
		changed = append(changed, paths...)
	}
	paths, err := assignItems(d, FieldAcademics, p.Academics, func(i int) models.AcademicRecord {
		return d.data.Academics[i]
	}, academicLeaves)
	if err != nil {
		return nil, err
	}
	return append(changed, paths...), nil
}

// ExamPatch updates exam entries by index.
type ExamPatch struct {
	Exams map[int]models.ExamEntry `json:"exams,omitempty"`
}

func (ExamPatch) Step() Step { return StepTestScores }

func (p ExamPatch) apply(d *Draft) ([]FieldPath, error) {
	// scores are checked against the entry's type, so a new type lands first
	var changed []FieldPath
	for i, exam := range p.Exams {
		if i < 0 || i >= d.Len(FieldExams) || d.data.Exams[i].Type == exam.Type {
			continue
		}
		path := ItemPath(FieldExams, i, "type")
		if err := d.Set(path, string(exam.Type)); err != nil {
			return nil, err
		}
		changed = append(changed, path)
	}
	paths, err := assignItems(d, FieldExams, p.Exams, func(i int) models.ExamEntry {
		return d.data.Exams[i]
	}, examLeaves)
	if err != nil {
		return nil, err
	}
	return append(changed, paths...), nil
}

// WorkExperiencePatch updates employment records by index.
type WorkExperiencePatch struct {
	WorkExperiences map[int]models.WorkExperience `json:"work_experiences,omitempty"`
}

func (WorkExperiencePatch) Step() Step { return StepWorkExperience }

func (p WorkExperiencePatch) apply(d *Draft) ([]FieldPath, error) {
	return assignItems(d, FieldWorkExperiences, p.WorkExperiences, func(i int) models.WorkExperience {
		return d.data.WorkExperiences[i]
	}, workLeaves)
}

// FamilyPatch updates the family and refusal history step.
type FamilyPatch struct {
	FatherOccupation   *string                `json:"father_occupation,omitempty"`
	FatherAnnualIncome *string                `json:"father_annual_income,omitempty"`
	Refusals           map[int]models.Refusal `json:"refusals,omitempty"`
}

func (FamilyPatch) Step() Step { return StepFamilyAndRefusals }

func (p FamilyPatch) apply(d *Draft) ([]FieldPath, error) {
	var changed []FieldPath
	scalars := []struct {
		path  FieldPath
		value *string
	}{
		{FieldFatherOccupation, p.FatherOccupation},
		{FieldFatherAnnualIncome, p.FatherAnnualIncome},
	}
	for _, s := range scalars {
		if s.value == nil {
			continue
		}
		current, _ := d.Get(s.path)
		if current == *s.value {
			continue
		}
		if err := d.Set(s.path, *s.value); err != nil {
			return nil, err
		}
		changed = append(changed, s.path)
	}
	paths, err := assignItems(d, FieldRefusals, p.Refusals, func(i int) models.Refusal {
		return d.data.Refusals[i]
	}, refusalLeaves)
	if err != nil {
		return nil, err
	}
	return append(changed, paths...), nil
}

// ServicesPatch updates the services and status step. ConfirmedServices
// replaces the whole selection.
type ServicesPatch struct {
	ConfirmedServices *[]string             `json:"confirmed_services,omitempty"`
	EnquiryStatus     *models.EnquiryStatus `json:"enquiry_status,omitempty"`
}

func (ServicesPatch) Step() Step { return StepServicesAndStatus }

func (p ServicesPatch) apply(d *Draft) ([]FieldPath, error) {
	var changed []FieldPath
	if p.ConfirmedServices != nil {
		d.SetServices(*p.ConfirmedServices)
		changed = append(changed, FieldConfirmedServices)
	}
	if p.EnquiryStatus != nil && *p.EnquiryStatus != d.data.EnquiryStatus {
		d.data.EnquiryStatus = *p.EnquiryStatus
		changed = append(changed, FieldEnquiryStatus)
	}
	return changed, nil
}

// DecodePatch parses the JSON patch body for step.
func DecodePatch(step Step, raw []byte) (Patch, error) {
	switch step {
	case StepAcademicHistory:
		return decodeInto[AcademicPatch](raw)
	case StepTestScores:
		return decodeInto[ExamPatch](raw)
	case StepWorkExperience:
		return decodeInto[WorkExperiencePatch](raw)
	case StepFamilyAndRefusals:
		return decodeInto[FamilyPatch](raw)
	case StepServicesAndStatus:
		return decodeInto[ServicesPatch](raw)
	case StepDocuments:
		return nil, appErrors.Clone(appErrors.ErrValidation, "documents are changed through the document endpoints")
	case StepReview:
		return nil, appErrors.Clone(appErrors.ErrValidation, "the review step is read only")
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown step %d", step))
}

func decodeInto[T Patch](raw []byte) (Patch, error) {
	var patch T
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid step payload")
	}
	return patch, nil
}

// assign writes the leaves of next that differ from prev under prefix.
func assign(d *Draft, prefix FieldPath, prev, next map[string]string) ([]FieldPath, error) {
	keys := make(map[string]struct{}, len(prev)+len(next))
	for k := range prev {
		keys[k] = struct{}{}
	}
	for k := range next {
		keys[k] = struct{}{}
	}
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	var changed []FieldPath
	for _, k := range sorted {
		if prev[k] == next[k] {
			continue
		}
		p := Path(prefix, k)
		if err := d.Set(p, next[k]); err != nil {
			return nil, err
		}
		changed = append(changed, p)
	}
	return changed, nil
}

func assignItems[T any](d *Draft, group ListGroup, items map[int]T, current func(int) T, leaves func(T) map[string]string) ([]FieldPath, error) {
	indexes := make([]int, 0, len(items))
	for i := range items {
		if i < 0 || i >= d.Len(group) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s has no element %d", group, i))
		}
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	var changed []FieldPath
	for _, i := range indexes {
		paths, err := assign(d, ItemPath(group, i), leaves(current(i)), leaves(items[i]))
		if err != nil {
			return nil, err
		}
		changed = append(changed, paths...)
	}
	return changed, nil
}

func educationLeaves(e models.EducationDetails) map[string]string {
	out := make(map[string]string, len(educationKeys))
	for _, k := range educationKeys {
		out[k] = *educationField(&e, k)
	}
	return out
}

func academicLeaves(a models.AcademicRecord) map[string]string {
	out := make(map[string]string, len(academicKeys))
	for _, k := range academicKeys {
		out[k] = *academicField(&a, k)
	}
	return out
}

func examLeaves(e models.ExamEntry) map[string]string {
	out := map[string]string{"type": string(e.Type)}
	for name, score := range e.Scores {
		out["scores."+name] = strconv.FormatFloat(score, 'f', -1, 64)
	}
	return out
}

func workLeaves(w models.WorkExperience) map[string]string {
	out := make(map[string]string, len(workKeys)+1)
	for _, k := range workKeys {
		out[k] = *workField(&w, k)
	}
	out["ongoing"] = strconv.FormatBool(w.Ongoing)
	return out
}

func refusalLeaves(r models.Refusal) map[string]string {
	out := make(map[string]string, len(refusalKeys))
	for _, k := range refusalKeys {
		out[k] = *refusalField(&r, k)
	}
	return out
}

package wizard

import (
	"fmt"
	"strconv"

	"github.com/noah-isme/edu-crm-api/internal/models"
	appErrors "github.com/noah-isme/edu-crm-api/pkg/errors"
)

// Draft is the in-memory working copy of a detailed profile. It is owned by a
// single wizard and is not safe for concurrent use.
type Draft struct {
	data models.ProfileData
}

// NewDraft copies data into a fresh draft.
func NewDraft(data models.ProfileData) *Draft {
	return &Draft{data: data.Clone()}
}

// All returns a deep copy of the draft.
func (d *Draft) All() models.ProfileData {
	return d.data.Clone()
}

// Get returns the value stored at p.
func (d *Draft) Get(p FieldPath) (string, bool) {
	value, ok := d.Leaves()[p]
	return value, ok
}

// Len returns the number of elements in a list group.
func (d *Draft) Len(group ListGroup) int {
	switch group {
	case FieldAcademics:
		return len(d.data.Academics)
	case FieldExams:
		return len(d.data.Exams)
	case FieldWorkExperiences:
		return len(d.data.WorkExperiences)
	case FieldRefusals:
		return len(d.data.Refusals)
	case FieldConfirmedServices:
		return len(d.data.ConfirmedServices)
	}
	return 0
}

// Set stores value at p. Numeric and boolean leaves are parsed from their
// text form; an empty exam score removes it.
func (d *Draft) Set(p FieldPath, value string) error {
	parts := p.Segments()
	root := p.Root()

	if doc := models.DocumentField(root); doc.Valid() && len(parts) == 1 {
		d.data.SetDocument(doc, value)
		return nil
	}

	switch {
	case isEducationGroup(root):
		if len(parts) == 2 {
			if field := educationField(d.education(root), parts[1]); field != nil {
				*field = value
				return nil
			}
		}
	case root == FieldFatherOccupation && len(parts) == 1:
		d.data.FatherOccupation = value
		return nil
	case root == FieldFatherAnnualIncome && len(parts) == 1:
		d.data.FatherAnnualIncome = value
		return nil
	case root == FieldEnquiryStatus && len(parts) == 1:
		d.data.EnquiryStatus = models.EnquiryStatus(value)
		return nil
	case isListGroup(root) && len(parts) >= 2:
		idx, err := strconv.Atoi(parts[1])
		if err != nil || idx < 0 || idx >= d.Len(root) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s has no element %s", root, parts[1]))
		}
		return d.setItem(root, idx, parts[2:], value)
	}

	return unknownField(p)
}

func (d *Draft) setItem(group ListGroup, idx int, keys []string, value string) error {
	path := ItemPath(group, idx, keys...)
	switch group {
	case FieldConfirmedServices:
		if len(keys) == 0 {
			d.data.ConfirmedServices[idx] = value
			return nil
		}
	case FieldAcademics:
		if len(keys) == 1 {
			if field := academicField(&d.data.Academics[idx], keys[0]); field != nil {
				*field = value
				return nil
			}
		}
	case FieldRefusals:
		if len(keys) == 1 {
			if field := refusalField(&d.data.Refusals[idx], keys[0]); field != nil {
				*field = value
				return nil
			}
		}
	case FieldWorkExperiences:
		if len(keys) == 1 {
			item := &d.data.WorkExperiences[idx]
			if keys[0] == "ongoing" {
				ongoing, err := parseBool(value)
				if err != nil {
					return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must be true or false", path))
				}
				item.Ongoing = ongoing
				return nil
			}
			if field := workField(item, keys[0]); field != nil {
				*field = value
				return nil
			}
		}
	case FieldExams:
		exam := &d.data.Exams[idx]
		if len(keys) == 1 && keys[0] == "type" {
			exam.Type = models.ExamType(value)
			return nil
		}
		if len(keys) == 2 && keys[0] == "scores" {
			scores := make(map[string]float64, len(exam.Scores)+1)
			for k, v := range exam.Scores {
				scores[k] = v
			}
			if value == "" {
				delete(scores, keys[1])
			} else {
				if !hasSubScore(exam.Type, keys[1]) {
					return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s is not a score of exam type %q", path, exam.Type))
				}
				score, err := strconv.ParseFloat(value, 64)
				if err != nil {
					return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must be numeric", path))
				}
				scores[keys[1]] = score
			}
			exam.Scores = scores
			return nil
		}
	}
	return unknownField(path)
}

// AppendAcademic adds an empty degree record and returns its index.
func (d *Draft) AppendAcademic() int {
	d.data.Academics = appendItem(d.data.Academics, models.AcademicRecord{})
	return len(d.data.Academics) - 1
}

// AppendExam adds an exam of type t with no scores.
func (d *Draft) AppendExam(t models.ExamType) int {
	d.data.Exams = appendItem(d.data.Exams, models.ExamEntry{Type: t, Scores: map[string]float64{}})
	return len(d.data.Exams) - 1
}

// AppendWorkExperience adds an empty employment record.
func (d *Draft) AppendWorkExperience() int {
	d.data.WorkExperiences = appendItem(d.data.WorkExperiences, models.WorkExperience{})
	return len(d.data.WorkExperiences) - 1
}

// AppendRefusal adds an empty refusal record.
func (d *Draft) AppendRefusal() int {
	d.data.Refusals = appendItem(d.data.Refusals, models.Refusal{})
	return len(d.data.Refusals) - 1
}

// RemoveAt deletes element i of group, shifting later elements down.
func (d *Draft) RemoveAt(group ListGroup, i int) error {
	var ok bool
	switch group {
	case FieldAcademics:
		d.data.Academics, ok = removeItem(d.data.Academics, i)
	case FieldExams:
		d.data.Exams, ok = removeItem(d.data.Exams, i)
	case FieldWorkExperiences:
		d.data.WorkExperiences, ok = removeItem(d.data.WorkExperiences, i)
	case FieldRefusals:
		d.data.Refusals, ok = removeItem(d.data.Refusals, i)
	case FieldConfirmedServices:
		d.data.ConfirmedServices, ok = removeItem(d.data.ConfirmedServices, i)
	default:
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s is not a list", group))
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s has no element %d", group, i))
	}
	return nil
}

// SetServices replaces the selected services. The selection is a set:
// repeated names keep their first position only.
func (d *Draft) SetServices(names []string) {
	seen := make(map[string]struct{}, len(names))
	services := make([]string, 0, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		services = append(services, name)
	}
	d.data.ConfirmedServices = services
}

// Leaves flattens the draft into path/value pairs.
func (d *Draft) Leaves() map[FieldPath]string {
	leaves := make(map[FieldPath]string)
	for _, group := range EducationGroups {
		e := d.education(group)
		for _, key := range educationKeys {
			leaves[Path(group, key)] = *educationField(e, key)
		}
	}
	for i := range d.data.Academics {
		for _, key := range academicKeys {
			leaves[ItemPath(FieldAcademics, i, key)] = *academicField(&d.data.Academics[i], key)
		}
	}
	for i, exam := range d.data.Exams {
		leaves[ItemPath(FieldExams, i, "type")] = string(exam.Type)
		for name, score := range exam.Scores {
			leaves[ItemPath(FieldExams, i, "scores", name)] = strconv.FormatFloat(score, 'f', -1, 64)
		}
	}
	for i := range d.data.WorkExperiences {
		item := &d.data.WorkExperiences[i]
		for _, key := range workKeys {
			leaves[ItemPath(FieldWorkExperiences, i, key)] = *workField(item, key)
		}
		leaves[ItemPath(FieldWorkExperiences, i, "ongoing")] = strconv.FormatBool(item.Ongoing)
	}
	for i := range d.data.Refusals {
		for _, key := range refusalKeys {
			leaves[ItemPath(FieldRefusals, i, key)] = *refusalField(&d.data.Refusals[i], key)
		}
	}
	for i, name := range d.data.ConfirmedServices {
		leaves[ItemPath(FieldConfirmedServices, i)] = name
	}
	leaves[FieldFatherOccupation] = d.data.FatherOccupation
	leaves[FieldFatherAnnualIncome] = d.data.FatherAnnualIncome
	leaves[FieldEnquiryStatus] = string(d.data.EnquiryStatus)
	for _, doc := range models.DocumentFields {
		leaves[DocumentPath(doc)] = d.data.Document(doc)
	}
	return leaves
}

func (d *Draft) education(group FieldPath) *models.EducationDetails {
	switch group {
	case FieldCurrentEducation:
		return &d.data.CurrentEducation
	case FieldTenthEducation:
		return &d.data.TenthEducation
	case FieldTwelfthEducation:
		return &d.data.TwelfthEducation
	case FieldGraduationEducation:
		return &d.data.GraduationEducation
	}
	return nil
}

func educationField(e *models.EducationDetails, key string) *string {
	if e == nil {
		return nil
	}
	switch key {
	case KeyLevel:
		return &e.Level
	case KeyStream:
		return &e.Stream
	case KeyDegree:
		return &e.Degree
	case KeyPercentage:
		return &e.Percentage
	case KeyYear:
		return &e.Year
	case KeyInstitute:
		return &e.Institute
	case KeyBoard:
		return &e.Board
	case KeyUniversity:
		return &e.University
	}
	return nil
}

var academicKeys = []string{"degree", "university", "year"}

func academicField(a *models.AcademicRecord, key string) *string {
	switch key {
	case "degree":
		return &a.Degree
	case "university":
		return &a.University
	case "year":
		return &a.Year
	}
	return nil
}

func hasSubScore(t models.ExamType, name string) bool {
	def, ok := models.LookupExamType(t)
	if !ok {
		return false
	}
	for _, sub := range def.SubScores {
		if sub.Name == name {
			return true
		}
	}
	return false
}

var workKeys = []string{"company_name", "designation", "start_date", "end_date"}

func workField(w *models.WorkExperience, key string) *string {
	switch key {
	case "company_name":
		return &w.CompanyName
	case "designation":
		return &w.Designation
	case "start_date":
		return &w.StartDate
	case "end_date":
		return &w.EndDate
	}
	return nil
}

var refusalKeys = []string{"country", "date", "visa_category", "reason"}

func refusalField(r *models.Refusal, key string) *string {
	switch key {
	case "country":
		return &r.Country
	case "date":
		return &r.Date
	case "visa_category":
		return &r.VisaCategory
	case "reason":
		return &r.Reason
	}
	return nil
}

func appendItem[T any](items []T, item T) []T {
	out := make([]T, len(items), len(items)+1)
	copy(out, items)
	return append(out, item)
}

func removeItem[T any](items []T, i int) ([]T, bool) {
	if i < 0 || i >= len(items) {
		return items, false
	}
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...), true
}

func parseBool(value string) (bool, error) {
	if value == "" {
		return false, nil
	}
	return strconv.ParseBool(value)
}

func unknownField(p FieldPath) error {
	return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown field %q", p))
}

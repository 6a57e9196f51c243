package wizard

import (
	"strconv"
	"strings"

	"github.com/noah-isme/edu-crm-api/internal/models"
)

// FieldPath addresses one value of the draft, e.g.
// "current_education_details.level" or "academics.0.year".
type FieldPath string

// Top level groups of the draft.
const (
	FieldCurrentEducation    FieldPath = "current_education_details"
	FieldTenthEducation      FieldPath = "tenth_education_details"
	FieldTwelfthEducation    FieldPath = "twelfth_education_details"
	FieldGraduationEducation FieldPath = "graduation_education_details"
	FieldAcademics           FieldPath = "academics"
	FieldExams               FieldPath = "exams"
	FieldWorkExperiences     FieldPath = "work_experiences"
	FieldFatherOccupation    FieldPath = "father_occupation"
	FieldFatherAnnualIncome  FieldPath = "father_annual_income"
	FieldRefusals            FieldPath = "refusals"
	FieldConfirmedServices   FieldPath = "confirmed_services"
	FieldEnquiryStatus       FieldPath = "enquiry_status"
)

// Education sub keys.
const (
	KeyLevel      = "level"
	KeyStream     = "stream"
	KeyDegree     = "degree"
	KeyPercentage = "percentage"
	KeyYear       = "year"
	KeyInstitute  = "institute"
	KeyBoard      = "board"
	KeyUniversity = "university"
)

// EducationGroups lists the fixed education sub-forms of the first step.
var EducationGroups = []FieldPath{
	FieldCurrentEducation,
	FieldTenthEducation,
	FieldTwelfthEducation,
	FieldGraduationEducation,
}

var educationKeys = []string{KeyLevel, KeyStream, KeyDegree, KeyPercentage, KeyYear, KeyInstitute, KeyBoard, KeyUniversity}

// ListGroup is a user extensible sequence of the draft.
type ListGroup = FieldPath

var listGroups = map[FieldPath]struct{}{
	FieldAcademics:         {},
	FieldExams:             {},
	FieldWorkExperiences:   {},
	FieldRefusals:          {},
	FieldConfirmedServices: {},
}

// Path joins segments into a FieldPath.
func Path(root FieldPath, segments ...string) FieldPath {
	if len(segments) == 0 {
		return root
	}
	return FieldPath(string(root) + "." + strings.Join(segments, "."))
}

// ItemPath addresses key of the i-th element of a list group.
func ItemPath(group ListGroup, i int, key ...string) FieldPath {
	return Path(group, append([]string{strconv.Itoa(i)}, key...)...)
}

// DocumentPath addresses a document slot.
func DocumentPath(f models.DocumentField) FieldPath {
	return FieldPath(f)
}

// Root returns the top level group of p.
func (p FieldPath) Root() FieldPath {
	root, _, _ := strings.Cut(string(p), ".")
	return FieldPath(root)
}

// Segments returns the dot separated parts of p.
func (p FieldPath) Segments() []string {
	return strings.Split(string(p), ".")
}

// Pattern replaces list indexes with "*" so rules can match any element.
func (p FieldPath) Pattern() string {
	parts := p.Segments()
	for i, part := range parts {
		if _, err := strconv.Atoi(part); err == nil {
			parts[i] = "*"
		}
	}
	return strings.Join(parts, ".")
}

// Within reports whether p equals root or lies underneath it.
func (p FieldPath) Within(root FieldPath) bool {
	return p == root || strings.HasPrefix(string(p), string(root)+".")
}

func isEducationGroup(p FieldPath) bool {
	for _, g := range EducationGroups {
		if g == p {
			return true
		}
	}
	return false
}

func isListGroup(p FieldPath) bool {
	_, ok := listGroups[p]
	return ok
}

// FieldState tracks user interaction and validation outcome of one path.
type FieldState int

const (
	Untouched FieldState = iota
	Touched
	Valid
	Invalid
)

func (s FieldState) String() string {
	switch s {
	case Touched:
		return "touched"
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return "untouched"
	}
}

// MarshalText renders the state name in JSON views.
func (s FieldState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// FieldStates maps paths to their state. Missing paths are Untouched.
type FieldStates map[FieldPath]FieldState

// Get returns the state of p.
func (s FieldStates) Get(p FieldPath) FieldState {
	return s[p]
}

// Clone copies the map.
func (s FieldStates) Clone() FieldStates {
	out := make(FieldStates, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// AnyWithin reports whether some path under root has left the Untouched state.
func (s FieldStates) AnyWithin(root FieldPath) bool {
	for p, st := range s {
		if st != Untouched && p.Within(root) {
			return true
		}
	}
	return false
}

// reindex drops the entries of element i of group and shifts later
// elements down so entries follow their items.
func reindex[V any](m map[FieldPath]V, group ListGroup, i int) {
	shifted := make(map[FieldPath]V)
	for p, v := range m {
		if !p.Within(group) || p == group {
			continue
		}
		parts := p.Segments()
		idx, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		delete(m, p)
		switch {
		case idx == i:
		case idx > i:
			parts[1] = strconv.Itoa(idx - 1)
			shifted[FieldPath(strings.Join(parts, "."))] = v
		default:
			shifted[p] = v
		}
	}
	for p, v := range shifted {
		m[p] = v
	}
}

// dropWithin removes every entry under root.
func dropWithin[V any](m map[FieldPath]V, root FieldPath) {
	for p := range m {
		if p.Within(root) {
			delete(m, p)
		}
	}
}

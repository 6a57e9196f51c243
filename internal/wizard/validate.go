package wizard

import "sort"

// Checker validates a single value against a validator tag and returns a
// message when it fails.
type Checker interface {
	Check(value interface{}, tag string) string
}

const dateTag = "omitempty,datetime=2006-01-02"

// fieldRules maps path patterns to validator tags. Paths without a rule are
// always valid.
var fieldRules = map[string]string{
	"current_education_details.level": "notblank",
	"academics.*.year":                "omitempty,year",
	"exams.*.type":                    "required,examtype",
	"work_experiences.*.start_date":   dateTag,
	"work_experiences.*.end_date":     dateTag,
	"refusals.*.country":              "omitempty,country",
	"refusals.*.date":                 dateTag,
	"father_annual_income":            "omitempty,numeric",
	"confirmed_services.*":            "notblank",
	"enquiry_status":                  "omitempty,enquirystatus",
}

func init() {
	for _, group := range EducationGroups {
		fieldRules[string(Path(group, KeyPercentage))] = "omitempty,percentage"
		fieldRules[string(Path(group, KeyYear))] = "omitempty,year"
	}
}

// RequiredFields lists paths rendered with a required marker.
var RequiredFields = []FieldPath{Path(FieldCurrentEducation, KeyLevel)}

// FieldIssue is a validation failure of one path.
type FieldIssue struct {
	Path    FieldPath
	Message string
}

// ValidationResult is the outcome of validating a step.
type ValidationResult struct {
	Valid   bool                 `json:"valid"`
	Checked []FieldPath          `json:"checked"`
	Errors  map[FieldPath]string `json:"errors"`
	States  FieldStates          `json:"-"`
}

// ValidateField checks one path and returns the failure message, if any.
func ValidateField(p FieldPath, value string, checker Checker) string {
	tag, ok := fieldRules[p.Pattern()]
	if !ok || checker == nil {
		return ""
	}
	return checker.Check(value, tag)
}

// ValidateStep re-validates the fields of step that the user has interacted
// with. Object groups are checked per sub-key, other fields as a whole. When
// nothing is scheduled the step passes. states is not modified; the updated
// states are returned in the result.
func ValidateStep(step Step, draft *Draft, states FieldStates, checker Checker) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: make(map[FieldPath]string),
		States: states.Clone(),
	}
	def, ok := step.Definition()
	if !ok {
		return result
	}

	leaves := draft.Leaves()
	scheduled := make(map[FieldPath]struct{})
	for _, field := range def.Fields {
		switch {
		case isEducationGroup(field):
			for _, key := range educationKeys {
				p := Path(field, key)
				if states.Get(p) != Untouched {
					scheduled[p] = struct{}{}
				}
			}
		case isListGroup(field):
			if !states.AnyWithin(field) {
				continue
			}
			for p := range leaves {
				if p.Within(field) {
					scheduled[p] = struct{}{}
				}
			}
			result.States[field] = Valid
		default:
			if states.Get(field) != Untouched {
				scheduled[field] = struct{}{}
			}
		}
	}

	for p := range scheduled {
		result.Checked = append(result.Checked, p)
		if msg := ValidateField(p, leaves[p], checker); msg != "" {
			result.Valid = false
			result.Errors[p] = msg
			result.States[p] = Invalid
			if root := p.Root(); isListGroup(root) {
				result.States[root] = Invalid
			}
			continue
		}
		result.States[p] = Valid
	}
	sort.Slice(result.Checked, func(i, j int) bool { return result.Checked[i] < result.Checked[j] })
	return result
}

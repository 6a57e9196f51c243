package wizard

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/noah-isme/edu-crm-api/internal/models"
)

// Review placeholders.
const (
	NotProvided  = "Not provided"
	NoDocuments  = "No documents selected for upload."
	FileSelected = "File selected"
)

// ReviewItem is one labelled value of the summary.
type ReviewItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ReviewSection groups items under a title. Placeholder is set when the
// group has nothing to show.
type ReviewSection struct {
	Title       string       `json:"title"`
	Items       []ReviewItem `json:"items,omitempty"`
	Placeholder string       `json:"placeholder,omitempty"`
}

// Review is the read-only summary shown on the last step.
type Review struct {
	Sections []ReviewSection `json:"sections"`
}

// Review projects the draft into a grouped summary without mutating it.
func (w *Wizard) Review() Review {
	data := w.draft.All()
	var sections []ReviewSection

	for _, group := range EducationGroups {
		sections = append(sections, section(educationLabels[group], educationItems(*w.draft.education(group))))
	}

	var academics []ReviewItem
	for i, a := range data.Academics {
		academics = append(academics, numbered(i, []ReviewItem{
			{"Degree", a.Degree}, {"University", a.University}, {"Year", a.Year},
		})...)
	}
	sections = append(sections, section("Additional Academics", academics))

	var exams []ReviewItem
	for _, e := range data.Exams {
		exams = append(exams, ReviewItem{Label: examLabel(e.Type), Value: formatScores(e)})
	}
	sections = append(sections, section("Test Scores", exams))

	var work []ReviewItem
	for i, item := range data.WorkExperiences {
		end := item.EndDate
		if item.Ongoing {
			end = "Present"
		}
		period := ""
		if item.StartDate != "" || end != "" {
			period = strings.TrimSpace(item.StartDate + " to " + end)
		}
		work = append(work, numbered(i, []ReviewItem{
			{"Company", item.CompanyName}, {"Designation", item.Designation}, {"Period", period},
		})...)
	}
	sections = append(sections, section("Work Experience", work))

	sections = append(sections, section("Family Details", compact([]ReviewItem{
		{"Father's Occupation", data.FatherOccupation},
		{"Father's Annual Income", data.FatherAnnualIncome},
	})))

	var refusals []ReviewItem
	for i, r := range data.Refusals {
		country := r.Country
		if c, ok := models.LookupCountry(r.Country); ok {
			country = c.Name
		}
		refusals = append(refusals, numbered(i, []ReviewItem{
			{"Country", country}, {"Date", r.Date}, {"Visa Category", r.VisaCategory}, {"Reason", r.Reason},
		})...)
	}
	sections = append(sections, section("Visa Refusals", refusals))

	docs := ReviewSection{Title: "Documents"}
	for _, field := range models.DocumentFields {
		display := data.Document(field)
		staged := w.staging.Get(field)
		if display == "" && staged.Kind() == StagedEmpty {
			continue
		}
		value := FileSelected
		switch {
		case staged.Kind() == StagedPending:
			value = staged.Name()
		case display != "":
			value = display
		}
		docs.Items = append(docs.Items, ReviewItem{Label: field.Label(), Value: value})
	}
	if len(docs.Items) == 0 {
		docs.Placeholder = NoDocuments
	}
	sections = append(sections, docs)

	sections = append(sections, section("Services & Status", compact([]ReviewItem{
		{"Confirmed Services", strings.Join(nonBlank(data.ConfirmedServices), ", ")},
		{"Enquiry Status", string(data.EnquiryStatus)},
	})))

	return Review{Sections: sections}
}

func section(title string, items []ReviewItem) ReviewSection {
	s := ReviewSection{Title: title, Items: items}
	if len(items) == 0 {
		s.Placeholder = NotProvided
	}
	return s
}

func educationItems(e models.EducationDetails) []ReviewItem {
	return compact([]ReviewItem{
		{"Level", e.Level},
		{"Stream", e.Stream},
		{"Degree", e.Degree},
		{"Percentage", e.Percentage},
		{"Year", e.Year},
		{"Institute", e.Institute},
		{"Board", e.Board},
		{"University", e.University},
	})
}

// numbered drops blank items and prefixes labels with the 1-based entry number.
func numbered(i int, items []ReviewItem) []ReviewItem {
	items = compact(items)
	for k := range items {
		items[k].Label = fmt.Sprintf("%d. %s", i+1, items[k].Label)
	}
	return items
}

func compact(items []ReviewItem) []ReviewItem {
	out := items[:0]
	for _, item := range items {
		if strings.TrimSpace(item.Value) != "" {
			out = append(out, item)
		}
	}
	return out
}

func nonBlank(values []string) []string {
	var out []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func examLabel(t models.ExamType) string {
	if def, ok := models.LookupExamType(t); ok {
		return def.Label
	}
	return string(t)
}

func formatScores(e models.ExamEntry) string {
	if len(e.Scores) == 0 {
		return "No scores entered"
	}
	var parts []string
	seen := make(map[string]struct{}, len(e.Scores))
	if def, ok := models.LookupExamType(e.Type); ok {
		for _, sub := range def.SubScores {
			if score, ok := e.Scores[sub.Name]; ok {
				parts = append(parts, sub.Label+": "+strconv.FormatFloat(score, 'f', -1, 64))
				seen[sub.Name] = struct{}{}
			}
		}
	}
	var extra []string
	for name := range e.Scores {
		if _, ok := seen[name]; !ok {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		parts = append(parts, name+": "+strconv.FormatFloat(e.Scores[name], 'f', -1, 64))
	}
	return strings.Join(parts, ", ")
}

package models

// ExamType enumerates the supported standardised tests.
type ExamType string

const (
	ExamIELTS    ExamType = "IELTS"
	ExamTOEFL    ExamType = "TOEFL"
	ExamPTE      ExamType = "PTE"
	ExamDuolingo ExamType = "DUOLINGO"
	ExamGRE      ExamType = "GRE"
	ExamGMAT     ExamType = "GMAT"
	ExamSAT      ExamType = "SAT"
)

// SubScore describes one score input of an exam type. Bounds are advisory.
type SubScore struct {
	Name  string  `json:"name"`
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Step  float64 `json:"step"`
}

// ExamTypeDefinition is an exam type together with its sub-score inputs.
type ExamTypeDefinition struct {
	Type      ExamType   `json:"type"`
	Label     string     `json:"label"`
	SubScores []SubScore `json:"sub_scores"`
}

func bands(min, max, step float64, names ...string) []SubScore {
	scores := make([]SubScore, 0, len(names)/2)
	for i := 0; i+1 < len(names); i += 2 {
		scores = append(scores, SubScore{Name: names[i], Label: names[i+1], Min: min, Max: max, Step: step})
	}
	return scores
}

// ExamTypes is the fixed exam catalog offered by the test scores step.
var ExamTypes = []ExamTypeDefinition{
	{
		Type:  ExamIELTS,
		Label: "IELTS",
		SubScores: bands(0, 9, 0.5,
			"listening", "Listening", "reading", "Reading", "writing", "Writing",
			"speaking", "Speaking", "overall", "Overall Band"),
	},
	{
		Type:  ExamTOEFL,
		Label: "TOEFL iBT",
		SubScores: append(bands(0, 30, 1,
			"reading", "Reading", "listening", "Listening", "speaking", "Speaking", "writing", "Writing"),
			SubScore{Name: "total", Label: "Total", Min: 0, Max: 120, Step: 1}),
	},
	{
		Type:  ExamPTE,
		Label: "PTE Academic",
		SubScores: bands(10, 90, 1,
			"listening", "Listening", "reading", "Reading", "speaking", "Speaking",
			"writing", "Writing", "overall", "Overall"),
	},
	{
		Type:  ExamDuolingo,
		Label: "Duolingo English Test",
		SubScores: bands(10, 160, 5,
			"literacy", "Literacy", "comprehension", "Comprehension", "conversation", "Conversation",
			"production", "Production", "overall", "Overall"),
	},
	{
		Type:  ExamGRE,
		Label: "GRE",
		SubScores: append(bands(130, 170, 1, "verbal", "Verbal Reasoning", "quantitative", "Quantitative Reasoning"),
			SubScore{Name: "analytical_writing", Label: "Analytical Writing", Min: 0, Max: 6, Step: 0.5}),
	},
	{
		Type:  ExamGMAT,
		Label: "GMAT",
		SubScores: []SubScore{
			{Name: "quantitative", Label: "Quantitative", Min: 6, Max: 51, Step: 1},
			{Name: "verbal", Label: "Verbal", Min: 6, Max: 51, Step: 1},
			{Name: "integrated_reasoning", Label: "Integrated Reasoning", Min: 1, Max: 8, Step: 1},
			{Name: "analytical_writing", Label: "Analytical Writing", Min: 0, Max: 6, Step: 0.5},
			{Name: "overall", Label: "Overall", Min: 200, Max: 800, Step: 10},
		},
	},
	{
		Type:  ExamSAT,
		Label: "SAT",
		SubScores: append(bands(200, 800, 10, "reading_writing", "Reading & Writing", "math", "Math"),
			SubScore{Name: "total", Label: "Total", Min: 400, Max: 1600, Step: 10}),
	},
}

// LookupExamType returns the catalog entry for t.
func LookupExamType(t ExamType) (ExamTypeDefinition, bool) {
	for _, def := range ExamTypes {
		if def.Type == t {
			return def, true
		}
	}
	return ExamTypeDefinition{}, false
}

// EnquiryStatus is the pipeline stage of an enquiry.
type EnquiryStatus string

const (
	EnquiryStatusNew                  EnquiryStatus = "New"
	EnquiryStatusContacted            EnquiryStatus = "Contacted"
	EnquiryStatusInProgress           EnquiryStatus = "In Progress"
	EnquiryStatusDocumentsPending     EnquiryStatus = "Documents Pending"
	EnquiryStatusApplicationSubmitted EnquiryStatus = "Application Submitted"
	EnquiryStatusConverted            EnquiryStatus = "Converted"
	EnquiryStatusClosed               EnquiryStatus = "Closed"
)

// EnquiryStatuses lists the selectable statuses in display order.
var EnquiryStatuses = []EnquiryStatus{
	EnquiryStatusNew,
	EnquiryStatusContacted,
	EnquiryStatusInProgress,
	EnquiryStatusDocumentsPending,
	EnquiryStatusApplicationSubmitted,
	EnquiryStatusConverted,
	EnquiryStatusClosed,
}

// Valid reports whether s is a known status.
func (s EnquiryStatus) Valid() bool {
	for _, status := range EnquiryStatuses {
		if status == s {
			return true
		}
	}
	return false
}

// Country is an ISO 3166-1 alpha-2 code with its display name.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Countries is the country catalog used by the refusal history.
var Countries = []Country{
	{"AE", "United Arab Emirates"},
	{"AT", "Austria"},
	{"AU", "Australia"},
	{"BD", "Bangladesh"},
	{"BE", "Belgium"},
	{"CA", "Canada"},
	{"CH", "Switzerland"},
	{"CN", "China"},
	{"CY", "Cyprus"},
	{"CZ", "Czech Republic"},
	{"DE", "Germany"},
	{"DK", "Denmark"},
	{"ES", "Spain"},
	{"FI", "Finland"},
	{"FR", "France"},
	{"GB", "United Kingdom"},
	{"GE", "Georgia"},
	{"HK", "Hong Kong"},
	{"HU", "Hungary"},
	{"ID", "Indonesia"},
	{"IE", "Ireland"},
	{"IN", "India"},
	{"IT", "Italy"},
	{"JP", "Japan"},
	{"KR", "South Korea"},
	{"LK", "Sri Lanka"},
	{"LT", "Lithuania"},
	{"LV", "Latvia"},
	{"MT", "Malta"},
	{"MY", "Malaysia"},
	{"NL", "Netherlands"},
	{"NO", "Norway"},
	{"NP", "Nepal"},
	{"NZ", "New Zealand"},
	{"PH", "Philippines"},
	{"PK", "Pakistan"},
	{"PL", "Poland"},
	{"PT", "Portugal"},
	{"RU", "Russia"},
	{"SE", "Sweden"},
	{"SG", "Singapore"},
	{"TH", "Thailand"},
	{"TR", "Turkey"},
	{"UA", "Ukraine"},
	{"US", "United States"},
	{"VN", "Vietnam"},
}

// LookupCountry returns the catalog entry for an alpha-2 code.
func LookupCountry(code string) (Country, bool) {
	for _, c := range Countries {
		if c.Code == code {
			return c, true
		}
	}
	return Country{}, false
}

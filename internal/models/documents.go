package models

// DocumentField names one of the uploadable applicant documents.
type DocumentField string

const (
	DocumentTenth                 DocumentField = "tenth_document"
	DocumentTwelfth               DocumentField = "twelfth_document"
	DocumentGraduationMarksheet   DocumentField = "graduation_marksheet"
	DocumentGraduationCertificate DocumentField = "graduation_certificate"
	DocumentUGMarksheet           DocumentField = "ug_marksheet"
	DocumentUGCertificate         DocumentField = "ug_certificate"
	DocumentWorkExperience        DocumentField = "work_experience_document"
	DocumentPassport              DocumentField = "passport_document"
	DocumentOfferLetter           DocumentField = "offer_letter"
	DocumentIELTSResult           DocumentField = "ielts_result"
	DocumentTOEFLResult           DocumentField = "toefl_result"
	DocumentPTEResult             DocumentField = "pte_result"
	DocumentDuolingoResult        DocumentField = "duolingo_result"
	DocumentGREResult             DocumentField = "gre_result"
	DocumentGMATResult            DocumentField = "gmat_result"
)

// DocumentFields lists every document slot in display order.
var DocumentFields = []DocumentField{
	DocumentTenth,
	DocumentTwelfth,
	DocumentGraduationMarksheet,
	DocumentGraduationCertificate,
	DocumentUGMarksheet,
	DocumentUGCertificate,
	DocumentWorkExperience,
	DocumentPassport,
	DocumentOfferLetter,
	DocumentIELTSResult,
	DocumentTOEFLResult,
	DocumentPTEResult,
	DocumentDuolingoResult,
	DocumentGREResult,
	DocumentGMATResult,
}

var documentLabels = map[DocumentField]string{
	DocumentTenth:                 "10th Certificate",
	DocumentTwelfth:               "12th Certificate",
	DocumentGraduationMarksheet:   "Graduation Marksheet",
	DocumentGraduationCertificate: "Graduation Certificate",
	DocumentUGMarksheet:           "UG Marksheet",
	DocumentUGCertificate:         "UG Certificate",
	DocumentWorkExperience:        "Work Experience Letter",
	DocumentPassport:              "Passport",
	DocumentOfferLetter:           "Offer Letter",
	DocumentIELTSResult:           "IELTS Result",
	DocumentTOEFLResult:           "TOEFL Result",
	DocumentPTEResult:             "PTE Result",
	DocumentDuolingoResult:        "Duolingo Result",
	DocumentGREResult:             "GRE Result",
	DocumentGMATResult:            "GMAT Result",
}

// Valid reports whether f is one of the known document slots.
func (f DocumentField) Valid() bool {
	_, ok := documentLabels[f]
	return ok
}

// Label returns the human readable slot name.
func (f DocumentField) Label() string {
	if label, ok := documentLabels[f]; ok {
		return label
	}
	return string(f)
}

// ProfileDocuments holds one value per document slot. In a persisted profile
// the values are durable URLs.
type ProfileDocuments struct {
	TenthDocument          string `json:"tenth_document"`
	TwelfthDocument        string `json:"twelfth_document"`
	GraduationMarksheet    string `json:"graduation_marksheet"`
	GraduationCertificate  string `json:"graduation_certificate"`
	UGMarksheet            string `json:"ug_marksheet"`
	UGCertificate          string `json:"ug_certificate"`
	WorkExperienceDocument string `json:"work_experience_document"`
	PassportDocument       string `json:"passport_document"`
	OfferLetter            string `json:"offer_letter"`
	IELTSResult            string `json:"ielts_result"`
	TOEFLResult            string `json:"toefl_result"`
	PTEResult              string `json:"pte_result"`
	DuolingoResult         string `json:"duolingo_result"`
	GREResult              string `json:"gre_result"`
	GMATResult             string `json:"gmat_result"`
}

func (d *ProfileDocuments) slot(f DocumentField) *string {
	switch f {
	case DocumentTenth:
		return &d.TenthDocument
	case DocumentTwelfth:
		return &d.TwelfthDocument
	case DocumentGraduationMarksheet:
		return &d.GraduationMarksheet
	case DocumentGraduationCertificate:
		return &d.GraduationCertificate
	case DocumentUGMarksheet:
		return &d.UGMarksheet
	case DocumentUGCertificate:
		return &d.UGCertificate
	case DocumentWorkExperience:
		return &d.WorkExperienceDocument
	case DocumentPassport:
		return &d.PassportDocument
	case DocumentOfferLetter:
		return &d.OfferLetter
	case DocumentIELTSResult:
		return &d.IELTSResult
	case DocumentTOEFLResult:
		return &d.TOEFLResult
	case DocumentPTEResult:
		return &d.PTEResult
	case DocumentDuolingoResult:
		return &d.DuolingoResult
	case DocumentGREResult:
		return &d.GREResult
	case DocumentGMATResult:
		return &d.GMATResult
	}
	return nil
}

// Document returns the value stored for f.
func (d ProfileDocuments) Document(f DocumentField) string {
	if p := d.slot(f); p != nil {
		return *p
	}
	return ""
}

// SetDocument stores value for f. Unknown fields are ignored.
func (d *ProfileDocuments) SetDocument(f DocumentField, value string) {
	if p := d.slot(f); p != nil {
		*p = value
	}
}

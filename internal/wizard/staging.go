package wizard

import "github.com/noah-isme/edu-crm-api/internal/models"

// PDFContentType is the only content type accepted for documents.
const PDFContentType = "application/pdf"

// StagedKind tags the variant held by a StagedDocument.
type StagedKind int

const (
	StagedEmpty StagedKind = iota
	StagedPending
	StagedPersisted
)

func (k StagedKind) String() string {
	switch k {
	case StagedPending:
		return "pending"
	case StagedPersisted:
		return "persisted"
	default:
		return "empty"
	}
}

// MarshalText renders the kind name in JSON views.
func (k StagedKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// StagedDocument is either empty, a local file waiting for upload, or the
// durable URL of an already stored document.
type StagedDocument struct {
	kind        StagedKind
	name        string
	contentType string
	data        []byte
	url         string
}

// Pending wraps a selected file that has not been uploaded yet.
func Pending(name, contentType string, data []byte) StagedDocument {
	return StagedDocument{kind: StagedPending, name: name, contentType: contentType, data: data}
}

// Persisted wraps a durable URL that is passed through on submit.
func Persisted(url string) StagedDocument {
	return StagedDocument{kind: StagedPersisted, url: url}
}

func (d StagedDocument) Kind() StagedKind    { return d.kind }
func (d StagedDocument) Name() string        { return d.name }
func (d StagedDocument) ContentType() string { return d.contentType }
func (d StagedDocument) Data() []byte        { return d.data }
func (d StagedDocument) URL() string         { return d.url }
func (d StagedDocument) Size() int           { return len(d.data) }

// StagingArea maps document slots to staged documents.
type StagingArea struct {
	entries map[models.DocumentField]StagedDocument
}

// NewStagingArea returns an empty staging area.
func NewStagingArea() *StagingArea {
	return &StagingArea{entries: make(map[models.DocumentField]StagedDocument)}
}

// Get returns the entry for field; missing entries are Empty.
func (s *StagingArea) Get(field models.DocumentField) StagedDocument {
	return s.entries[field]
}

// Pending returns the pending uploads in slot order.
func (s *StagingArea) Pending() []models.DocumentField {
	var fields []models.DocumentField
	for _, field := range models.DocumentFields {
		if s.entries[field].kind == StagedPending {
			fields = append(fields, field)
		}
	}
	return fields
}

// Len counts the non-empty entries.
func (s *StagingArea) Len() int {
	n := 0
	for _, entry := range s.entries {
		if entry.kind != StagedEmpty {
			n++
		}
	}
	return n
}

// Snapshot copies the entries.
func (s *StagingArea) Snapshot() map[models.DocumentField]StagedDocument {
	out := make(map[models.DocumentField]StagedDocument, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}

func (s *StagingArea) put(field models.DocumentField, doc StagedDocument) {
	s.entries[field] = doc
}

func (s *StagingArea) clear(field models.DocumentField) {
	delete(s.entries, field)
}

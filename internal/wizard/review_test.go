package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-crm-api/internal/models"
)

func TestReviewOfEmptyDraft(t *testing.T) {
	w := newTestWizard(Seed{})
	review := w.Review()

	require.NotEmpty(t, review.Sections)
	for _, s := range review.Sections {
		assert.Empty(t, s.Items, s.Title)
		if s.Title == "Documents" {
			assert.Equal(t, NoDocuments, s.Placeholder)
			continue
		}
		assert.Equal(t, NotProvided, s.Placeholder, s.Title)
	}
}

func TestReviewOfEmptyListEntries(t *testing.T) {
	w := newTestWizard(Seed{})
	_, err := w.AppendItem(FieldAcademics, "")
	require.NoError(t, err)
	_, err = w.AppendItem(FieldRefusals, "")
	require.NoError(t, err)

	sections := reviewByTitle(w.Review())
	assert.Equal(t, NotProvided, sections["Additional Academics"].Placeholder)
	assert.Equal(t, NotProvided, sections["Visa Refusals"].Placeholder)
}

func TestReviewOfPopulatedDraft(t *testing.T) {
	w := newTestWizard(Seed{Profile: editProfile()})
	require.NoError(t, w.StageDocument(models.DocumentTenth, "tenth.pdf", PDFContentType, pdf()))

	before := w.Data()
	sections := reviewByTitle(w.Review())
	assert.Equal(t, before, w.Data())

	current := sections["Current Education"]
	assert.Empty(t, current.Placeholder)
	assert.Contains(t, current.Items, ReviewItem{Label: "Level", Value: "Bachelors"})
	assert.Equal(t, NotProvided, sections["10th Education"].Placeholder)

	assert.Contains(t, sections["Test Scores"].Items, ReviewItem{Label: "IELTS", Value: "Overall Band: 7.5"})
	assert.Contains(t, sections["Work Experience"].Items, ReviewItem{Label: "1. Period", Value: "2021-07-01 to Present"})
	assert.Contains(t, sections["Visa Refusals"].Items, ReviewItem{Label: "1. Country", Value: "Canada"})

	docs := sections["Documents"]
	assert.Empty(t, docs.Placeholder)
	assert.Contains(t, docs.Items, ReviewItem{Label: "10th Certificate", Value: "tenth.pdf"})
	assert.Contains(t, docs.Items, ReviewItem{Label: "Passport", Value: "my passport.pdf"})

	status := sections["Services & Status"]
	assert.Contains(t, status.Items, ReviewItem{Label: "Enquiry Status", Value: "In Progress"})
}

func reviewByTitle(r Review) map[string]ReviewSection {
	out := make(map[string]ReviewSection, len(r.Sections))
	for _, s := range r.Sections {
		out[s.Title] = s
	}
	return out
}

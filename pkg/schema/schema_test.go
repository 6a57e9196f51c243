package schema

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-crm-api/internal/models"
	appErrors "github.com/noah-isme/edu-crm-api/pkg/errors"
)

func TestRegistryAcceptsProfile(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)
	require.True(t, reg.Has("detailed_enquiries"))

	profile := models.DetailedProfile{
		EnquiryID: "enq-1",
		ProfileData: models.ProfileData{
			Exams:             []models.ExamEntry{{Type: models.ExamIELTS, Scores: map[string]float64{"overall": 7.5}}},
			ConfirmedServices: []string{"Visa"},
			EnquiryStatus:     models.EnquiryStatus("In Progress"),
		},
	}
	profile.PassportDocument = "https://files.example.com/p.pdf"
	require.NoError(t, reg.Validate("detailed_enquiries", profile, false))
}

func TestRegistryRejectsInvalidProfile(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	err = reg.Validate("detailed_enquiries", []byte(`{"enquiry_id":"e","exams":[{"type":"LSAT"}],"passport_document":7}`), false)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	require.Contains(t, appErr.Message, "exams")
	require.Contains(t, appErr.Message, "passport_document")
}

func TestRegistryAcceptsLegacyDocumentReference(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	profile := models.DetailedProfile{EnquiryID: "enq-1"}
	profile.PassportDocument = "passport-scan-2019.pdf"
	require.NoError(t, reg.Validate("detailed_enquiries", profile, false))
}

func TestRegistryPartialSkipsRequired(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	require.Error(t, reg.Validate("detailed_enquiries", map[string]interface{}{"father_occupation": "Engineer"}, false))
	require.NoError(t, reg.Validate("detailed_enquiries", map[string]interface{}{"father_occupation": "Engineer"}, true))
}

func TestRegistryUnknownCollectionPasses(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)
	require.NoError(t, reg.Validate("notes", map[string]interface{}{"anything": 1}, false))
}

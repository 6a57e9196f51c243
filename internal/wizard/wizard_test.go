package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-crm-api/internal/models"
	appErrors "github.com/noah-isme/edu-crm-api/pkg/errors"
)

func TestAdvanceGatingOnCurrentEducationLevel(t *testing.T) {
	level := Path(FieldCurrentEducation, KeyLevel)

	w := newTestWizard(Seed{})
	value, ok := w.Get(level)
	require.True(t, ok)
	require.Empty(t, value)

	result := w.Next(nil)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Checked)
	assert.Equal(t, StepTestScores, w.Step())

	w = newTestWizard(Seed{})
	require.NoError(t, w.Touch(level))
	assert.Equal(t, Invalid, w.States().Get(level))

	notifier := &recordingNotifier{}
	result = w.Next(notifier)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, level)
	assert.Equal(t, StepAcademicHistory, w.Step())
	assert.Equal(t, []string{BlockedMessage}, notifier.errors)

	require.NoError(t, w.Set(level, "Bachelors"))
	result = w.Next(notifier)
	assert.True(t, result.Valid)
	assert.Equal(t, StepTestScores, w.Step())
	assert.Empty(t, w.Errors())
}

func TestAdvanceRevalidatesOnlyTouchedSubKeys(t *testing.T) {
	w := newTestWizard(Seed{})
	require.NoError(t, w.Set(Path(FieldTenthEducation, KeyYear), "20"))
	require.NoError(t, w.Set(Path(FieldTwelfthEducation, KeyPercentage), "150"))

	result := w.Next(nil)
	assert.False(t, result.Valid)
	assert.ElementsMatch(t, []FieldPath{
		Path(FieldTenthEducation, KeyYear),
		Path(FieldTwelfthEducation, KeyPercentage),
	}, result.Checked)
	assert.NotContains(t, result.Checked, Path(FieldCurrentEducation, KeyLevel))
}

func TestAdvanceValidatesTouchedListAsWhole(t *testing.T) {
	w := newTestWizard(Seed{})
	idx, err := w.AppendItem(FieldAcademics, "")
	require.NoError(t, err)
	require.NoError(t, w.Set(ItemPath(FieldAcademics, idx, "year"), "nineteen"))

	result := w.Next(nil)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Checked, ItemPath(FieldAcademics, 0, "degree"))
	assert.Contains(t, result.Errors, ItemPath(FieldAcademics, 0, "year"))
	assert.Equal(t, Invalid, w.States().Get(FieldAcademics))
}

func TestNavigatorCaps(t *testing.T) {
	w := newTestWizard(Seed{})
	w.Prev()
	assert.Equal(t, FirstStep, w.Step())

	advanceToReview(w)
	assert.Equal(t, StepReview, w.Step())
	w.Next(nil)
	assert.Equal(t, LastStep, w.Step())

	w.Prev()
	assert.Equal(t, StepServicesAndStatus, w.Step())

	assert.Equal(t, LastStep, NextStep(LastStep))
	assert.Equal(t, FirstStep, PrevStep(FirstStep))
}

func TestStepIsolation(t *testing.T) {
	level := Path(FieldCurrentEducation, KeyLevel)
	w := newTestWizard(Seed{})
	require.NoError(t, w.Touch(level))
	statesBefore := w.States()
	errorsBefore := w.Errors()

	require.NoError(t, w.Set(FieldFatherOccupation, "Engineer"))
	require.NoError(t, w.Set(FieldFatherAnnualIncome, "not a number"))
	idx, err := w.AppendItem(FieldRefusals, "")
	require.NoError(t, err)
	require.NoError(t, w.Set(ItemPath(FieldRefusals, idx, "country"), "ZZ"))

	result := ValidateStep(StepFamilyAndRefusals, w.draft, w.states, testChecker)
	assert.False(t, result.Valid)
	for _, p := range result.Checked {
		owner, ok := OwnerOf(p)
		require.True(t, ok)
		assert.Equal(t, StepFamilyAndRefusals, owner)
	}

	assert.Equal(t, statesBefore.Get(level), w.States().Get(level))
	assert.Equal(t, errorsBefore[level], w.Errors()[level])
	assert.Equal(t, Invalid, result.States.Get(level))
}

func TestApplyPatchOnlyOnActiveStep(t *testing.T) {
	w := newTestWizard(Seed{})
	occupation := "Teacher"

	_, err := w.Apply(FamilyPatch{FatherOccupation: &occupation})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)

	changed, err := w.Apply(AcademicPatch{
		CurrentEducation: &models.EducationDetails{Level: "Masters", Percentage: "78"},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []FieldPath{
		Path(FieldCurrentEducation, KeyLevel),
		Path(FieldCurrentEducation, KeyPercentage),
	}, changed)
	assert.Equal(t, Touched, w.States().Get(Path(FieldCurrentEducation, KeyLevel)))
	assert.Equal(t, Untouched, w.States().Get(Path(FieldCurrentEducation, KeyStream)))
}

func TestApplyPatchIsAtomic(t *testing.T) {
	w := newTestWizard(Seed{})
	_, err := w.AppendItem(FieldAcademics, "")
	require.NoError(t, err)
	before := w.Data()

	_, err = w.Apply(AcademicPatch{
		CurrentEducation: &models.EducationDetails{Level: "Diploma"},
		Academics:        map[int]models.AcademicRecord{3: {Degree: "MBA"}},
	})
	require.Error(t, err)
	assert.Equal(t, before, w.Data())
}

func TestWorkExperienceKeepsEndDateWhenOngoing(t *testing.T) {
	w := newTestWizard(Seed{})
	w.Next(nil)
	w.Next(nil)
	require.Equal(t, StepWorkExperience, w.Step())

	_, err := w.AppendItem(FieldWorkExperiences, "")
	require.NoError(t, err)
	_, err = w.Apply(WorkExperiencePatch{WorkExperiences: map[int]models.WorkExperience{
		0: {CompanyName: "Acme", StartDate: "2020-01-01", EndDate: "2022-06-30", Ongoing: true},
	}})
	require.NoError(t, err)

	assert.Equal(t, "2022-06-30", w.Data().WorkExperiences[0].EndDate)
	view, err := w.View(StepWorkExperience, ViewContext{})
	require.NoError(t, err)
	panel := view.Panel.(WorkExperiencePanel)
	assert.True(t, panel.WorkExperiences[0].EndDateDisabled)
}

func TestListInvariants(t *testing.T) {
	w := newTestWizard(Seed{})
	appends := 0
	for i := 0; i < 4; i++ {
		_, err := w.AppendItem(FieldExams, models.ExamIELTS)
		require.NoError(t, err)
		require.NoError(t, w.Set(ItemPath(FieldExams, i, "scores", "overall"), []string{"6", "6.5", "7", "7.5"}[i]))
		appends++
	}
	_, err := w.AppendItem(FieldExams, models.ExamIELTS)
	require.NoError(t, err)
	appends++

	before := w.Data().Exams
	require.NoError(t, w.RemoveItem(FieldExams, 1))
	after := w.Data().Exams

	assert.Len(t, after, appends-1)
	assert.Equal(t, before[0], after[0])
	assert.Equal(t, before[2], after[1])
	assert.Equal(t, before[3], after[2])

	after[0].Scores["overall"] = 1
	assert.Equal(t, 6.0, w.Data().Exams[0].Scores["overall"])

	snapshot := w.Data().Exams
	require.NoError(t, w.Set(ItemPath(FieldExams, 2, "scores", "overall"), "9"))
	assert.Equal(t, 7.5, snapshot[2].Scores["overall"])

	require.Error(t, w.RemoveItem(FieldExams, 10))
	assert.Len(t, w.Data().Exams, appends-1)
}

func TestRemoveItemShiftsFieldStates(t *testing.T) {
	w := newTestWizard(Seed{})
	for i := 0; i < 3; i++ {
		_, err := w.AppendItem(FieldAcademics, "")
		require.NoError(t, err)
	}
	require.NoError(t, w.Set(ItemPath(FieldAcademics, 2, "year"), "abcd"))
	require.NoError(t, w.Touch(ItemPath(FieldAcademics, 2, "year")))
	require.NotEmpty(t, w.Errors()[ItemPath(FieldAcademics, 2, "year")])

	require.NoError(t, w.RemoveItem(FieldAcademics, 0))

	assert.Equal(t, Invalid, w.States().Get(ItemPath(FieldAcademics, 1, "year")))
	assert.NotEmpty(t, w.Errors()[ItemPath(FieldAcademics, 1, "year")])
	assert.Equal(t, Untouched, w.States().Get(ItemPath(FieldAcademics, 2, "year")))
}

func TestAppendRejectsUnknownExamType(t *testing.T) {
	w := newTestWizard(Seed{})
	_, err := w.AppendItem(FieldExams, "CAT")
	require.Error(t, err)
	assert.Equal(t, 0, w.draft.Len(FieldExams))
}

func TestContentTypeGateForEveryDocumentField(t *testing.T) {
	rejected := []string{"image/png", "application/msword", "", "application/pdf; charset=binary", "APPLICATION/PDF", "APPLICATION/PDF; x=y"}

	for _, field := range models.DocumentFields {
		t.Run(string(field), func(t *testing.T) {
			w := newTestWizard(Seed{Profile: &models.DetailedProfile{
				ID:        "p-1",
				EnquiryID: "enq-1",
				ProfileData: models.ProfileData{ProfileDocuments: models.ProfileDocuments{
					PassportDocument: "https://files.example.com/x/passport_document_1700000000000_passport.pdf",
				}},
			}})
			dataBefore := w.Data()
			stagingBefore := w.Staged().Snapshot()
			statesBefore := w.States()

			for _, ct := range rejected {
				err := w.StageDocument(field, "scan.png", ct, []byte("bytes"))
				require.Error(t, err)
				assert.Equal(t, appErrors.ErrUnsupportedMedia.Code, appErrors.FromError(err).Code)
			}

			assert.Equal(t, dataBefore, w.Data())
			assert.Equal(t, stagingBefore, w.Staged().Snapshot())
			assert.Equal(t, statesBefore, w.States())
		})
	}
}

func TestStageAndRemoveDocument(t *testing.T) {
	w := newTestWizard(Seed{})

	require.NoError(t, w.StageDocument(models.DocumentPassport, "passport.pdf", PDFContentType, pdf()))
	assert.Equal(t, StagedPending, w.Staged().Get(models.DocumentPassport).Kind())
	assert.Equal(t, "passport.pdf", w.Data().PassportDocument)
	assert.Equal(t, Touched, w.States().Get(DocumentPath(models.DocumentPassport)))

	require.NoError(t, w.RemoveDocument(models.DocumentPassport))
	assert.Equal(t, StagedEmpty, w.Staged().Get(models.DocumentPassport).Kind())
	assert.Empty(t, w.Data().PassportDocument)

	err := w.StageDocument(models.DocumentOfferLetter, "huge.pdf", PDFContentType, make([]byte, 2<<20))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPayloadTooLarge.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 0, w.Staged().Len())

	err = w.StageDocument("cv_document", "cv.pdf", PDFContentType, pdf())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDecodePatch(t *testing.T) {
	patch, err := DecodePatch(StepTestScores, []byte(`{"exams":{"0":{"type":"GRE","scores":{"verbal":160}}}}`))
	require.NoError(t, err)
	exams := patch.(ExamPatch)
	assert.Equal(t, models.ExamGRE, exams.Exams[0].Type)
	assert.Equal(t, 160.0, exams.Exams[0].Scores["verbal"])

	_, err = DecodePatch(StepTestScores, []byte(`{"unknown":true}`))
	require.Error(t, err)

	_, err = DecodePatch(StepDocuments, []byte(`{}`))
	require.Error(t, err)
	_, err = DecodePatch(StepReview, []byte(`{}`))
	require.Error(t, err)
}

func TestServicesViewFiltersInactive(t *testing.T) {
	w := newTestWizard(Seed{Enquiry: &models.Enquiry{
		ID:                 "enq-1",
		InterestedServices: []string{"Visa Assistance"},
		EnquiryStatus:      models.EnquiryStatusContacted,
	}})

	view, err := w.View(StepServicesAndStatus, ViewContext{Services: []models.ServiceItem{
		{Name: "Visa Assistance", Price: 250, Active: true},
		{Name: "Admission Counselling", Price: 400, Active: true},
		{Name: "Legacy Coaching", Price: 90, Active: false},
	}})
	require.NoError(t, err)
	assert.False(t, view.Active)

	panel := view.Panel.(ServicesPanel)
	require.Len(t, panel.Services, 2)
	assert.Equal(t, ServiceOption{Name: "Admission Counselling", Price: 400}, panel.Services[0])
	assert.Equal(t, ServiceOption{Name: "Visa Assistance", Price: 250, Selected: true}, panel.Services[1])
	assert.Equal(t, models.EnquiryStatusContacted, panel.EnquiryStatus)
}

func advanceTo(t *testing.T, w *Wizard, step Step) {
	t.Helper()
	for w.Step() < step {
		require.True(t, w.Next(nil).Valid, "blocked on step %d", w.Step())
	}
}

func TestConfirmedServicesAreASet(t *testing.T) {
	d := NewDraft(models.ProfileData{})
	d.SetServices([]string{"IELTS Coaching", "Visa Assistance", "IELTS Coaching"})
	assert.Equal(t, []string{"IELTS Coaching", "Visa Assistance"}, d.All().ConfirmedServices)
}

func TestConfirmedServicesMustBeActive(t *testing.T) {
	w := newTestWizard(Seed{Enquiry: &models.Enquiry{ID: "enq-1", InterestedServices: []string{"Visa Assistance"}}})
	w.SetServiceCatalog([]models.ServiceItem{
		{Name: "Visa Assistance", Active: true},
		{Name: "IELTS Coaching", Active: true},
		{Name: "Legacy Coaching", Active: false},
	})
	advanceTo(t, w, StepServicesAndStatus)

	patch, err := DecodePatch(StepServicesAndStatus, []byte(`{"confirmed_services":["IELTS Coaching","IELTS Coaching","Not In Catalog"]}`))
	require.NoError(t, err)
	_, err = w.Apply(patch)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Contains(t, err.Error(), "Not In Catalog")
	assert.Equal(t, []string{"Visa Assistance"}, w.Data().ConfirmedServices)

	patch, err = DecodePatch(StepServicesAndStatus, []byte(`{"confirmed_services":["Legacy Coaching"]}`))
	require.NoError(t, err)
	_, err = w.Apply(patch)
	require.Error(t, err)

	patch, err = DecodePatch(StepServicesAndStatus, []byte(`{"confirmed_services":["IELTS Coaching","IELTS Coaching"]}`))
	require.NoError(t, err)
	_, err = w.Apply(patch)
	require.NoError(t, err)
	assert.Equal(t, []string{"IELTS Coaching"}, w.Data().ConfirmedServices)

	result := w.Next(nil)
	assert.True(t, result.Valid)
	assert.Equal(t, StepReview, w.Step())
}

func TestAdvanceBlocksSeededServiceMissingFromCatalog(t *testing.T) {
	w := newTestWizard(Seed{Enquiry: &models.Enquiry{ID: "enq-1", InterestedServices: []string{"Retired Package"}}})
	advanceTo(t, w, StepServicesAndStatus)
	w.SetServiceCatalog([]models.ServiceItem{{Name: "Visa Assistance", Active: true}})

	notifier := &recordingNotifier{}
	result := w.Next(notifier)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, ItemPath(FieldConfirmedServices, 0))
	assert.Equal(t, StepServicesAndStatus, w.Step())
	assert.Equal(t, []string{BlockedMessage}, notifier.errors)

	w.SetServiceCatalog(nil)
	assert.True(t, w.Next(nil).Valid)
}

func TestExamScoresFollowExamType(t *testing.T) {
	w := newTestWizard(Seed{Enquiry: &models.Enquiry{ID: "enq-1"}})
	_, err := w.AppendItem(FieldExams, models.ExamIELTS)
	require.NoError(t, err)

	err = w.Set(ItemPath(FieldExams, 0, "scores", "foo"), "7")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	err = w.Set(ItemPath(FieldExams, 0, "scores", "verbal"), "150")
	require.Error(t, err)
	require.NoError(t, w.Set(ItemPath(FieldExams, 0, "scores", "overall"), "7"))
	assert.Equal(t, map[string]float64{"overall": 7}, w.Data().Exams[0].Scores)

	advanceTo(t, w, StepTestScores)
	patch, err := DecodePatch(StepTestScores, []byte(`{"exams":{"0":{"type":"IELTS","scores":{"overall":7,"foo":1}}}}`))
	require.NoError(t, err)
	_, err = w.Apply(patch)
	require.Error(t, err)
	assert.Equal(t, map[string]float64{"overall": 7}, w.Data().Exams[0].Scores)

	patch, err = DecodePatch(StepTestScores, []byte(`{"exams":{"0":{"type":"GRE","scores":{"verbal":160}}}}`))
	require.NoError(t, err)
	_, err = w.Apply(patch)
	require.NoError(t, err)
	assert.Equal(t, models.ExamGRE, w.Data().Exams[0].Type)
	assert.Equal(t, map[string]float64{"verbal": 160}, w.Data().Exams[0].Scores)
}

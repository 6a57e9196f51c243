package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-crm-api/internal/dto"
	"github.com/noah-isme/edu-crm-api/internal/middleware"
	"github.com/noah-isme/edu-crm-api/internal/models"
	"github.com/noah-isme/edu-crm-api/internal/service"
	"github.com/noah-isme/edu-crm-api/internal/wizard"
	appErrors "github.com/noah-isme/edu-crm-api/pkg/errors"
	"github.com/noah-isme/edu-crm-api/pkg/response"
	"github.com/noah-isme/edu-crm-api/pkg/validation"
)

type wizardServiceMock struct {
	caller      service.Caller
	mountReq    dto.MountWizardRequest
	step        wizard.Step
	patch       string
	fields      []string
	group       string
	examType    models.ExamType
	index       int
	docField    models.DocumentField
	docName     string
	docType     string
	docData     []byte
	format      string
	stateErr    error
	nextErr     error
	submitErr   error
	stageErr    error
	submitResp  *dto.SubmitResponse
	exportFile  *dto.ExportFile
	discardedID string
}

func (m *wizardServiceMock) state(id string) *dto.WizardState {
	return &dto.WizardState{ID: id, Step: wizard.StepAcademicHistory}
}

func (m *wizardServiceMock) Mount(ctx context.Context, caller service.Caller, req dto.MountWizardRequest) (*dto.WizardState, error) {
	m.caller, m.mountReq = caller, req
	return m.state("wiz-1"), m.stateErr
}

func (m *wizardServiceMock) Reseed(ctx context.Context, caller service.Caller, id string, req dto.MountWizardRequest) (*dto.WizardState, error) {
	m.mountReq = req
	return m.state(id), m.stateErr
}

func (m *wizardServiceMock) State(ctx context.Context, caller service.Caller, id string) (*dto.WizardState, error) {
	m.caller = caller
	if m.stateErr != nil {
		return nil, m.stateErr
	}
	return m.state(id), nil
}

func (m *wizardServiceMock) StepView(ctx context.Context, caller service.Caller, id string, step wizard.Step) (*wizard.StepView, error) {
	m.step = step
	return &wizard.StepView{Step: step}, nil
}

func (m *wizardServiceMock) ApplyPatch(ctx context.Context, caller service.Caller, id string, step wizard.Step, raw []byte) (*dto.WizardState, error) {
	m.step, m.patch = step, string(raw)
	return m.state(id), nil
}

func (m *wizardServiceMock) Touch(ctx context.Context, caller service.Caller, id string, fields []string) (*dto.WizardState, error) {
	m.fields = fields
	return m.state(id), nil
}

func (m *wizardServiceMock) AppendItem(ctx context.Context, caller service.Caller, id, group string, examType models.ExamType) (*dto.AppendItemResponse, error) {
	m.group, m.examType = group, examType
	return &dto.AppendItemResponse{Index: 0, State: m.state(id)}, nil
}

func (m *wizardServiceMock) RemoveItem(ctx context.Context, caller service.Caller, id, group string, index int) (*dto.WizardState, error) {
	m.group, m.index = group, index
	return m.state(id), nil
}

func (m *wizardServiceMock) Next(ctx context.Context, caller service.Caller, id string, notifier wizard.Notifier) (*dto.WizardState, error) {
	if m.nextErr != nil {
		notifier.Error(wizard.BlockedMessage)
	}
	return m.state(id), m.nextErr
}

func (m *wizardServiceMock) Prev(ctx context.Context, caller service.Caller, id string) (*dto.WizardState, error) {
	return m.state(id), nil
}

func (m *wizardServiceMock) StageDocument(ctx context.Context, caller service.Caller, id string, field models.DocumentField, name, contentType string, data []byte, notifier wizard.Notifier) (*dto.WizardState, error) {
	m.docField, m.docName, m.docType, m.docData = field, name, contentType, data
	if m.stageErr != nil {
		notifier.Error(appErrors.FromError(m.stageErr).Message)
		return nil, m.stageErr
	}
	return m.state(id), nil
}

func (m *wizardServiceMock) RemoveDocument(ctx context.Context, caller service.Caller, id string, field models.DocumentField) (*dto.WizardState, error) {
	m.docField = field
	return m.state(id), nil
}

func (m *wizardServiceMock) Review(ctx context.Context, caller service.Caller, id string) (*dto.ReviewResponse, error) {
	return &dto.ReviewResponse{ID: id}, nil
}

func (m *wizardServiceMock) ExportReview(ctx context.Context, caller service.Caller, id, format string) (*dto.ExportFile, error) {
	m.format = format
	return m.exportFile, nil
}

func (m *wizardServiceMock) Submit(ctx context.Context, caller service.Caller, id string, notifier wizard.Notifier) (*dto.SubmitResponse, error) {
	if m.submitErr != nil {
		notifier.Error(wizard.FailureMessage)
		return nil, m.submitErr
	}
	notifier.Success(wizard.CreatedMessage)
	return m.submitResp, nil
}

func (m *wizardServiceMock) Discard(ctx context.Context, caller service.Caller, id string) error {
	m.discardedID = id
	return nil
}

func newWizardRouter(svc profileWizardService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewProfileWizardHandler(svc, validation.New(), 1024, nil)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleCounsellor})
		c.Next()
	})
	RegisterWizardRoutes(router.Group(""), h)
	return router
}

func do(router http.Handler, method, target string, body []byte, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestWizardHandlerMount(t *testing.T) {
	svc := &wizardServiceMock{}
	router := newWizardRouter(svc)

	rec := do(router, http.MethodPost, "/wizards", []byte(`{"enquiryId":"enq-1"}`), "application/json")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "enq-1", svc.mountReq.EnquiryID)
	assert.Equal(t, "user-1", svc.caller.UserID)
	assert.Equal(t, models.RoleCounsellor, svc.caller.Role)

	rec = do(router, http.MethodPost, "/wizards", nil, "")
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = do(router, http.MethodPost, "/wizards", []byte(`{"enquiryId":`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWizardHandlerGetMapsServiceErrors(t *testing.T) {
	svc := &wizardServiceMock{stateErr: appErrors.Clone(appErrors.ErrNotFound, "wizard session not found")}
	rec := do(newWizardRouter(svc), http.MethodGet, "/wizards/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "wizard session not found")
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestWizardHandlerSteps(t *testing.T) {
	svc := &wizardServiceMock{}
	router := newWizardRouter(svc)

	rec := do(router, http.MethodGet, "/wizards/wiz-1/steps/6", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, wizard.StepServicesAndStatus, svc.step)

	for _, bad := range []string{"0", "8", "two"} {
		rec = do(router, http.MethodGet, "/wizards/wiz-1/steps/"+bad, nil, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}

	body := `{"current_education_details":{"level":"Bachelors"}}`
	rec = do(router, http.MethodPatch, "/wizards/wiz-1/steps/1", []byte(body), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, wizard.StepAcademicHistory, svc.step)
	assert.JSONEq(t, body, svc.patch)

	rec = do(router, http.MethodPatch, "/wizards/wiz-1/steps/1", nil, "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWizardHandlerTouchValidatesBody(t *testing.T) {
	svc := &wizardServiceMock{}
	router := newWizardRouter(svc)

	rec := do(router, http.MethodPost, "/wizards/wiz-1/touch", []byte(`{"fields":[]}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodPost, "/wizards/wiz-1/touch", []byte(`{"fields":["tenth_education_details.year"]}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"tenth_education_details.year"}, svc.fields)
}

func TestWizardHandlerLists(t *testing.T) {
	svc := &wizardServiceMock{}
	router := newWizardRouter(svc)

	rec := do(router, http.MethodPost, "/wizards/wiz-1/lists/exams", []byte(`{"examType":"IELTS"}`), "application/json")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "exams", svc.group)
	assert.Equal(t, models.ExamIELTS, svc.examType)

	rec = do(router, http.MethodPost, "/wizards/wiz-1/lists/exams", []byte(`{"examType":"CAT"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodDelete, "/wizards/wiz-1/lists/refusals/2", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "refusals", svc.group)
	assert.Equal(t, 2, svc.index)

	rec = do(router, http.MethodDelete, "/wizards/wiz-1/lists/refusals/-1", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWizardHandlerNextBlockedCarriesStateAndNotification(t *testing.T) {
	svc := &wizardServiceMock{nextErr: appErrors.Clone(appErrors.ErrStepBlocked, wizard.BlockedMessage)}
	rec := do(newWizardRouter(svc), http.MethodPost, "/wizards/wiz-1/next", nil, "")

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Contains(t, string(envelope["data"]), `"id":"wiz-1"`)

	var notes []response.Notification
	require.NoError(t, json.Unmarshal(envelope["notifications"], &notes))
	require.Len(t, notes, 1)
	assert.Equal(t, response.KindError, notes[0].Kind)
}

func multipartBody(t *testing.T, filename, contentType string, data []byte) ([]byte, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return buf.Bytes(), writer.FormDataContentType()
}

func TestWizardHandlerUploadDocument(t *testing.T) {
	svc := &wizardServiceMock{}
	router := newWizardRouter(svc)

	body, ct := multipartBody(t, "passport.pdf", "application/pdf", []byte("%PDF-1.7"))
	rec := do(router, http.MethodPut, "/wizards/wiz-1/documents/passport_document", body, ct)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.DocumentPassport, svc.docField)
	assert.Equal(t, "passport.pdf", svc.docName)
	assert.Equal(t, "application/pdf", svc.docType)
	assert.Equal(t, []byte("%PDF-1.7"), svc.docData)

	body, ct = multipartBody(t, "scan.pdf", "", []byte("%PDF-1.4 sniffed"))
	rec = do(router, http.MethodPut, "/wizards/wiz-1/documents/tenth_document", body, ct)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", svc.docType)

	body, ct = multipartBody(t, "shout.pdf", "APPLICATION/PDF; x=y", []byte("%PDF-1.7"))
	rec = do(router, http.MethodPut, "/wizards/wiz-1/documents/tenth_document", body, ct)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "APPLICATION/PDF; x=y", svc.docType)

	rec = do(router, http.MethodPut, "/wizards/wiz-1/documents/selfie", body, ct)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	big, ct := multipartBody(t, "big.pdf", "application/pdf", bytes.Repeat([]byte("x"), 2048))
	rec = do(router, http.MethodPut, "/wizards/wiz-1/documents/tenth_document", big, ct)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = do(router, http.MethodPut, "/wizards/wiz-1/documents/tenth_document", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWizardHandlerUploadRejectionReturnsNotification(t *testing.T) {
	svc := &wizardServiceMock{stageErr: appErrors.Clone(appErrors.ErrUnsupportedMedia, "Passport must be a PDF file")}
	body, ct := multipartBody(t, "passport.png", "image/png", []byte("png"))
	rec := do(newWizardRouter(svc), http.MethodPut, "/wizards/wiz-1/documents/passport_document", body, ct)

	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.NotContains(t, envelope, "data")
	assert.Contains(t, string(envelope["notifications"]), "Passport must be a PDF file")
}

func TestWizardHandlerReviewExport(t *testing.T) {
	svc := &wizardServiceMock{exportFile: &dto.ExportFile{Filename: "detailed-enquiry-enq-1.csv", ContentType: "text/csv", Data: []byte("Section,Field,Value\n")}}
	router := newWizardRouter(svc)

	rec := do(router, http.MethodGet, "/wizards/wiz-1/review?format=csv", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", svc.format)
	assert.Equal(t, `attachment; filename="detailed-enquiry-enq-1.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "Section,Field,Value\n", rec.Body.String())

	rec = do(router, http.MethodGet, "/wizards/wiz-1/review", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"wiz-1"`)
}

func TestWizardHandlerSubmit(t *testing.T) {
	svc := &wizardServiceMock{submitResp: &dto.SubmitResponse{ProfileID: "profile-new", Created: true}}
	router := newWizardRouter(svc)

	rec := do(router, http.MethodPost, "/wizards/wiz-1/submit", nil, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), wizard.CreatedMessage)

	svc.submitErr = appErrors.Clone(appErrors.ErrUploadFailed, appErrors.ErrUploadFailed.Message)
	rec = do(router, http.MethodPost, "/wizards/wiz-1/submit", nil, "")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.NotContains(t, envelope, "data")
	assert.Contains(t, string(envelope["notifications"]), wizard.FailureMessage)
}

func TestWizardHandlerDiscard(t *testing.T) {
	svc := &wizardServiceMock{}
	rec := do(newWizardRouter(svc), http.MethodDelete, "/wizards/wiz-9", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "wiz-9", svc.discardedID)
}

func TestWizardHandlerWithoutService(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewProfileWizardHandler(nil, nil, 0, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/wizards/x", nil)

	h.Get(c)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

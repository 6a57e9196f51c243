package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-crm-api/internal/dto"
	"github.com/noah-isme/edu-crm-api/internal/models"
	"github.com/noah-isme/edu-crm-api/internal/service"
	"github.com/noah-isme/edu-crm-api/internal/wizard"
	appErrors "github.com/noah-isme/edu-crm-api/pkg/errors"
	"github.com/noah-isme/edu-crm-api/pkg/response"
)

type profileWizardService interface {
	Mount(ctx context.Context, caller service.Caller, req dto.MountWizardRequest) (*dto.WizardState, error)
	Reseed(ctx context.Context, caller service.Caller, id string, req dto.MountWizardRequest) (*dto.WizardState, error)
	State(ctx context.Context, caller service.Caller, id string) (*dto.WizardState, error)
	StepView(ctx context.Context, caller service.Caller, id string, step wizard.Step) (*wizard.StepView, error)
	ApplyPatch(ctx context.Context, caller service.Caller, id string, step wizard.Step, raw []byte) (*dto.WizardState, error)
	Touch(ctx context.Context, caller service.Caller, id string, fields []string) (*dto.WizardState, error)
	AppendItem(ctx context.Context, caller service.Caller, id, group string, examType models.ExamType) (*dto.AppendItemResponse, error)
	RemoveItem(ctx context.Context, caller service.Caller, id, group string, index int) (*dto.WizardState, error)
	Next(ctx context.Context, caller service.Caller, id string, notifier wizard.Notifier) (*dto.WizardState, error)
	Prev(ctx context.Context, caller service.Caller, id string) (*dto.WizardState, error)
	StageDocument(ctx context.Context, caller service.Caller, id string, field models.DocumentField, name, contentType string, data []byte, notifier wizard.Notifier) (*dto.WizardState, error)
	RemoveDocument(ctx context.Context, caller service.Caller, id string, field models.DocumentField) (*dto.WizardState, error)
	Review(ctx context.Context, caller service.Caller, id string) (*dto.ReviewResponse, error)
	ExportReview(ctx context.Context, caller service.Caller, id, format string) (*dto.ExportFile, error)
	Submit(ctx context.Context, caller service.Caller, id string, notifier wizard.Notifier) (*dto.SubmitResponse, error)
	Discard(ctx context.Context, caller service.Caller, id string) error
}

type structValidator interface {
	Struct(payload interface{}) error
}

// ProfileWizardHandler exposes the detailed enquiry wizard.
type ProfileWizardHandler struct {
	service     profileWizardService
	validator   structValidator
	maxFileSize int64
	logger      *zap.Logger
}

// NewProfileWizardHandler builds the handler. maxFileSize bounds document
// uploads in bytes.
func NewProfileWizardHandler(svc profileWizardService, validator structValidator, maxFileSize int64, logger *zap.Logger) *ProfileWizardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileWizardHandler{service: svc, validator: validator, maxFileSize: maxFileSize, logger: logger}
}

// Mount godoc
// @Summary Open a detailed enquiry wizard
// @Description Seeds the draft from an enquiry, an existing profile, or nothing.
// @Tags Wizards
// @Accept json
// @Produce json
// @Param payload body dto.MountWizardRequest false "Seed source"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /wizards [post]
func (h *ProfileWizardHandler) Mount(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	var req dto.MountWizardRequest
	if !h.bindOptional(c, &req, "invalid wizard payload") {
		return
	}
	state, err := h.service.Mount(c.Request.Context(), callerFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, state)
}

// Reseed godoc
// @Summary Re-seed a wizard from a new source
// @Tags Wizards
// @Accept json
// @Produce json
// @Param id path string true "Wizard session ID"
// @Param payload body dto.MountWizardRequest false "Seed source"
// @Success 200 {object} response.Envelope
// @Router /wizards/{id}/reseed [post]
func (h *ProfileWizardHandler) Reseed(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	var req dto.MountWizardRequest
	if !h.bindOptional(c, &req, "invalid wizard payload") {
		return
	}
	state, err := h.service.Reseed(c.Request.Context(), callerFromContext(c), c.Param("id"), req)
	h.respond(c, state, err)
}

// Get godoc
// @Summary Get wizard state
// @Tags Wizards
// @Produce json
// @Param id path string true "Wizard session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /wizards/{id} [get]
func (h *ProfileWizardHandler) Get(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	state, err := h.service.State(c.Request.Context(), callerFromContext(c), c.Param("id"))
	h.respond(c, state, err)
}

// GetStep godoc
// @Summary Render one wizard step
// @Tags Wizards
// @Produce json
// @Param id path string true "Wizard session ID"
// @Param step path int true "Step number (1-7)"
// @Success 200 {object} response.Envelope
// @Router /wizards/{id}/steps/{step} [get]
func (h *ProfileWizardHandler) GetStep(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	step, ok := stepParam(c)
	if !ok {
		return
	}
	view, err := h.service.StepView(c.Request.Context(), callerFromContext(c), c.Param("id"), step)
	h.respond(c, view, err)
}

// PatchStep godoc
// @Summary Edit the fields of the active step
// @Description The body is the typed patch of the step, e.g. {"current_education_details":{"level":"Bachelors"}} for step 1.
// @Tags Wizards
// @Accept json
// @Produce json
// @Param id path string true "Wizard session ID"
// @Param step path int true "Step number (1-6)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /wizards/{id}/steps/{step} [patch]
func (h *ProfileWizardHandler) PatchStep(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	step, ok := stepParam(c)
	if !ok {
		return
	}
	raw, err := c.GetRawData()
	if err != nil || len(strings.TrimSpace(string(raw))) == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "patch body is required"))
		return
	}
	state, err := h.service.ApplyPatch(c.Request.Context(), callerFromContext(c), c.Param("id"), step, raw)
	h.respond(c, state, err)
}

// Touch godoc
// @Summary Mark fields as touched and validate them
// @Tags Wizards
// @Accept json
// @Produce json
// @Param id path string true "Wizard session ID"
// @Param payload body dto.TouchFieldsRequest true "Field paths"
// @Success 200 {object} response.Envelope
// @Router /wizards/{id}/touch [post]
func (h *ProfileWizardHandler) Touch(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	var req dto.TouchFieldsRequest
	if !h.bind(c, &req, "invalid touch payload") {
		return
	}
	state, err := h.service.Touch(c.Request.Context(), callerFromContext(c), c.Param("id"), req.Fields)
	h.respond(c, state, err)
}

// AppendItem godoc
// @Summary Append an item to a repeatable group
// @Tags Wizards
// @Accept json
// @Produce json
// @Param id path string true "Wizard session ID"
// @Param group path string true "academics, exams, work_experiences or refusals"
// @Param payload body dto.AppendItemRequest false "Exam type for exams"
// @Success 201 {object} response.Envelope
// @Router /wizards/{id}/lists/{group} [post]
func (h *ProfileWizardHandler) AppendItem(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	var req dto.AppendItemRequest
	if !h.bindOptional(c, &req, "invalid item payload") {
		return
	}
	result, err := h.service.AppendItem(c.Request.Context(), callerFromContext(c), c.Param("id"), c.Param("group"), req.ExamType)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// RemoveItem godoc
// @Summary Remove an item from a repeatable group
// @Tags Wizards
// @Produce json
// @Param id path string true "Wizard session ID"
// @Param group path string true "Group name"
// @Param index path int true "Zero based index"
// @Success 200 {object} response.Envelope
// @Router /wizards/{id}/lists/{group}/{index} [delete]
func (h *ProfileWizardHandler) RemoveItem(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "index must be a non-negative integer"))
		return
	}
	state, err := h.service.RemoveItem(c.Request.Context(), callerFromContext(c), c.Param("id"), c.Param("group"), index)
	h.respond(c, state, err)
}

// Next godoc
// @Summary Validate the active step and advance
// @Tags Wizards
// @Produce json
// @Param id path string true "Wizard session ID"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /wizards/{id}/next [post]
func (h *ProfileWizardHandler) Next(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	notes := service.NewNotificationCollector(h.logger)
	state, err := h.service.Next(c.Request.Context(), callerFromContext(c), c.Param("id"), notes)
	h.respondWithNotes(c, http.StatusOK, state, err, notes)
}

// Prev godoc
// @Summary Go back one step
// @Tags Wizards
// @Produce json
// @Param id path string true "Wizard session ID"
// @Success 200 {object} response.Envelope
// @Router /wizards/{id}/prev [post]
func (h *ProfileWizardHandler) Prev(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	state, err := h.service.Prev(c.Request.Context(), callerFromContext(c), c.Param("id"))
	h.respond(c, state, err)
}

// UploadDocument godoc
// @Summary Stage a PDF for a document slot
// @Description The file is held in the session and uploaded on submit.
// @Tags Wizards
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Wizard session ID"
// @Param field path string true "Document field, e.g. passport_document"
// @Param file formData file true "PDF file"
// @Success 200 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Failure 415 {object} response.Envelope
// @Router /wizards/{id}/documents/{field} [put]
func (h *ProfileWizardHandler) UploadDocument(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	field, ok := documentParam(c)
	if !ok {
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "multipart field \"file\" is required"))
		return
	}
	if h.maxFileSize > 0 && header.Size > h.maxFileSize {
		response.Error(c, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("%s exceeds the %d byte limit", header.Filename, h.maxFileSize)))
		return
	}
	data, err := readUpload(header, h.maxFileSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	notes := service.NewNotificationCollector(h.logger)
	state, err := h.service.StageDocument(c.Request.Context(), callerFromContext(c), c.Param("id"), field,
		header.Filename, uploadContentType(header), data, notes)
	h.respondWithNotes(c, http.StatusOK, state, err, notes)
}

// RemoveDocument godoc
// @Summary Clear a document slot
// @Tags Wizards
// @Produce json
// @Param id path string true "Wizard session ID"
// @Param field path string true "Document field"
// @Success 200 {object} response.Envelope
// @Router /wizards/{id}/documents/{field} [delete]
func (h *ProfileWizardHandler) RemoveDocument(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	field, ok := documentParam(c)
	if !ok {
		return
	}
	state, err := h.service.RemoveDocument(c.Request.Context(), callerFromContext(c), c.Param("id"), field)
	h.respond(c, state, err)
}

// Review godoc
// @Summary Read-only summary of the draft
// @Tags Wizards
// @Produce json
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Wizard session ID"
// @Param format query string false "csv or pdf to download the summary"
// @Success 200 {object} response.Envelope
// @Router /wizards/{id}/review [get]
func (h *ProfileWizardHandler) Review(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	if format := c.Query("format"); format != "" {
		file, err := h.service.ExportReview(c.Request.Context(), callerFromContext(c), c.Param("id"), format)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Attachment(c, file.Filename, file.ContentType, file.Data)
		return
	}
	review, err := h.service.Review(c.Request.Context(), callerFromContext(c), c.Param("id"))
	h.respond(c, review, err)
}

// Submit godoc
// @Summary Upload staged documents and save the detailed profile
// @Tags Wizards
// @Produce json
// @Param id path string true "Wizard session ID"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /wizards/{id}/submit [post]
func (h *ProfileWizardHandler) Submit(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	notes := service.NewNotificationCollector(h.logger)
	result, err := h.service.Submit(c.Request.Context(), callerFromContext(c), c.Param("id"), notes)
	status := http.StatusOK
	if err == nil && result.Created {
		status = http.StatusCreated
	}
	h.respondWithNotes(c, status, result, err, notes)
}

// Discard godoc
// @Summary Close a wizard without saving
// @Tags Wizards
// @Param id path string true "Wizard session ID"
// @Success 204
// @Router /wizards/{id} [delete]
func (h *ProfileWizardHandler) Discard(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	if err := h.service.Discard(c.Request.Context(), callerFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *ProfileWizardHandler) ready(c *gin.Context) bool {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "wizard service unavailable"))
		return false
	}
	return true
}

func (h *ProfileWizardHandler) bind(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message))
		return false
	}
	return h.validate(c, dest)
}

// bindOptional accepts an empty body as the zero request.
func (h *ProfileWizardHandler) bindOptional(c *gin.Context, dest interface{}, message string) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return h.validate(c, dest)
	}
	if err := c.ShouldBindJSON(dest); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message))
		return false
	}
	return h.validate(c, dest)
}

func (h *ProfileWizardHandler) validate(c *gin.Context, dest interface{}) bool {
	if h.validator == nil {
		return true
	}
	if err := h.validator.Struct(dest); err != nil {
		response.Error(c, err)
		return false
	}
	return true
}

func (h *ProfileWizardHandler) respond(c *gin.Context, data interface{}, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, data, nil)
}

// respondWithNotes keeps the notifications, and any state returned with a
// failure, in the envelope.
func (h *ProfileWizardHandler) respondWithNotes(c *gin.Context, status int, data interface{}, err error, notes *service.NotificationCollector) {
	if err != nil {
		if isNilState(data) {
			data = nil
		}
		response.ErrorWithNotifications(c, err, data, notes.Notifications())
		return
	}
	response.WithNotifications(c, status, data, notes.Notifications())
}

func isNilState(data interface{}) bool {
	switch v := data.(type) {
	case nil:
		return true
	case *dto.WizardState:
		return v == nil
	case *dto.SubmitResponse:
		return v == nil
	}
	return false
}

func stepParam(c *gin.Context) (wizard.Step, bool) {
	n, err := strconv.Atoi(c.Param("step"))
	step := wizard.Step(n)
	if err != nil || !step.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("step must be between %d and %d", wizard.FirstStep, wizard.LastStep)))
		return 0, false
	}
	return step, true
}

func documentParam(c *gin.Context) (models.DocumentField, bool) {
	field := models.DocumentField(c.Param("field"))
	if !field.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("unknown document field %q", c.Param("field"))))
		return "", false
	}
	return field, true
}

func readUpload(header *multipart.FileHeader, limit int64) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unable to read uploaded file")
	}
	defer file.Close()

	var reader io.Reader = file
	if limit > 0 {
		reader = io.LimitReader(file, limit+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unable to read uploaded file")
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("%s exceeds the %d byte limit", header.Filename, limit))
	}
	return data, nil
}

// uploadContentType passes the declared part type through unchanged so the
// wizard compares it exactly. It sniffs only when the client sent none.
func uploadContentType(header *multipart.FileHeader) string {
	if declared := strings.TrimSpace(header.Header.Get("Content-Type")); declared != "" {
		return declared
	}
	file, err := header.Open()
	if err != nil {
		return ""
	}
	defer file.Close()
	sniff := make([]byte, 512)
	n, _ := io.ReadFull(file, sniff)
	return strings.SplitN(http.DetectContentType(sniff[:n]), ";", 2)[0]
}

package dto

import (
	"time"

	"github.com/noah-isme/edu-crm-api/internal/models"
	"github.com/noah-isme/edu-crm-api/internal/wizard"
)

// MountWizardRequest selects what a new wizard session is seeded from. An
// empty request opens a blank draft.
type MountWizardRequest struct {
	EnquiryID string `json:"enquiryId" validate:"omitempty,max=64"`
	ProfileID string `json:"profileId" validate:"omitempty,max=64"`
}

// TouchFieldsRequest lists the fields that lost focus.
type TouchFieldsRequest struct {
	Fields []string `json:"fields" validate:"required,min=1,dive,notblank"`
}

// AppendItemRequest carries the exam type when appending to exams.
type AppendItemRequest struct {
	ExamType models.ExamType `json:"examType" validate:"omitempty,examtype"`
}

// StepSummary is one entry of the step indicator.
type StepSummary struct {
	Step    wizard.Step `json:"step"`
	Label   string      `json:"label"`
	Current bool        `json:"current"`
}

// DocumentStatus describes one document slot of a session.
type DocumentStatus struct {
	Field  models.DocumentField `json:"field"`
	Label  string               `json:"label"`
	Status wizard.StagedKind    `json:"status"`
	Name   string               `json:"name,omitempty"`
	Size   int                  `json:"size,omitempty"`
	URL    string               `json:"url,omitempty"`
}

// WizardState is the full client view of a wizard session.
type WizardState struct {
	ID        string             `json:"id"`
	EnquiryID string             `json:"enquiryId,omitempty"`
	ProfileID string             `json:"profileId,omitempty"`
	Editing   bool               `json:"editing"`
	Step      wizard.Step        `json:"step"`
	Steps     []StepSummary      `json:"steps"`
	Data      models.ProfileData `json:"data"`
	Documents []DocumentStatus   `json:"documents"`
	View      wizard.StepView    `json:"view"`
	ExpiresAt time.Time          `json:"expiresAt"`
}

// AppendItemResponse reports where the new element landed.
type AppendItemResponse struct {
	Index int          `json:"index"`
	State *WizardState `json:"state"`
}

// ReviewResponse wraps the read-only summary.
type ReviewResponse struct {
	ID     string        `json:"id"`
	Review wizard.Review `json:"review"`
}

// SubmitResponse reports the persisted profile.
type SubmitResponse struct {
	ProfileID string                          `json:"profileId"`
	Created   bool                            `json:"created"`
	Profile   *models.DetailedProfile         `json:"profile"`
	Uploaded  map[models.DocumentField]string `json:"uploaded,omitempty"`
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// CatalogResponse bundles the wizard lookup lists.
type CatalogResponse struct {
	Services        []models.ServiceItem        `json:"services,omitempty"`
	ExamTypes       []models.ExamTypeDefinition `json:"examTypes,omitempty"`
	Countries       []models.Country            `json:"countries,omitempty"`
	EnquiryStatuses []models.EnquiryStatus      `json:"enquiryStatuses,omitempty"`
}

package wizard

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/edu-crm-api/internal/models"
	appErrors "github.com/noah-isme/edu-crm-api/pkg/errors"
)

// Submission messages.
const (
	FailureMessage        = "Failed to save detailed enquiry"
	CreatedMessage        = "Detailed enquiry created successfully"
	UpdatedMessage        = "Detailed enquiry updated successfully"
	MissingActorMessage   = "You must be signed in to save a detailed enquiry"
	MissingEnquiryMessage = "No enquiry selected for this profile"
)

// ProgressFunc receives upload progress in bytes.
type ProgressFunc = func(sent, total int64)

// FileStore stores document bytes durably and returns their URL.
type FileStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte, progress ProgressFunc) (string, error)
}

// ProfileStore persists detailed profiles in a named collection.
type ProfileStore interface {
	Create(ctx context.Context, collection string, profile *models.DetailedProfile) (string, error)
	Update(ctx context.Context, collection, id string, profile *models.DetailedProfile) error
}

// Actor identifies the user submitting the wizard.
type Actor struct {
	UserID string
}

// UploadError reports the failed upload of one document.
type UploadError struct {
	Field models.DocumentField
	Err   error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s: %v", e.Field, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// SubmitResult describes a successful submission.
type SubmitResult struct {
	ProfileID string                          `json:"profile_id"`
	Created   bool                            `json:"created"`
	Profile   *models.DetailedProfile         `json:"profile"`
	Uploaded  map[models.DocumentField]string `json:"uploaded,omitempty"`
}

// Submitter drains staged documents into durable storage and persists the
// composite profile once.
type Submitter struct {
	Files      FileStore
	Profiles   ProfileStore
	Collection string
	Now        func() time.Time
	// OnProgress is called from upload goroutines.
	OnProgress func(field models.DocumentField, sent, total int64)
}

// Submit runs the pipeline. Any failure leaves the wizard untouched and is
// reported through notifier; nothing is persisted unless every upload
// succeeded. Uploads run under ctx and stop when it is cancelled.
func (s *Submitter) Submit(ctx context.Context, w *Wizard, actor Actor, notifier Notifier) (*SubmitResult, error) {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if w.Step() != StepReview {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "submission is only available from the review step")
	}
	if strings.TrimSpace(actor.UserID) == "" {
		notifier.Error(MissingActorMessage)
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, MissingActorMessage)
	}
	enquiryID := w.EnquiryID()
	if strings.TrimSpace(enquiryID) == "" {
		notifier.Error(MissingEnquiryMessage)
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, MissingEnquiryMessage)
	}

	pending := w.staging.Pending()
	for _, field := range pending {
		if doc := w.staging.Get(field); doc.ContentType() != PDFContentType {
			msg := fmt.Sprintf("%s must be a PDF file", field.Label())
			notifier.Error(msg)
			return nil, appErrors.Clone(appErrors.ErrUnsupportedMedia, msg)
		}
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	uploaded, err := s.uploadAll(ctx, w, enquiryID, pending, now())
	if err != nil {
		var uploadErr *UploadError
		for _, e := range unwrapJoined(err) {
			if errors.As(e, &uploadErr) {
				notifier.Error(fmt.Sprintf("Failed to upload %s", uploadErr.Field.Label()))
			}
		}
		notifier.Error(FailureMessage)
		return nil, appErrors.Wrap(err, appErrors.ErrUploadFailed.Code, appErrors.ErrUploadFailed.Status, appErrors.ErrUploadFailed.Message)
	}

	profile := s.merge(w, enquiryID, uploaded)
	stamp := now().UTC()
	profile.LastModifiedBy = actor.UserID
	profile.UpdatedAt = &stamp

	result := &SubmitResult{Profile: profile, Uploaded: uploaded}
	if w.Editing() {
		profile.ID = w.ProfileID()
		err = s.Profiles.Update(ctx, s.Collection, profile.ID, profile)
	} else {
		profile.CreatedBy = actor.UserID
		profile.CreatedAt = &stamp
		profile.ID, err = s.Profiles.Create(ctx, s.Collection, profile)
		result.Created = true
	}
	if err != nil {
		notifier.Error(FailureMessage)
		return nil, appErrors.Wrap(err, appErrors.ErrPersistFailed.Code, appErrors.ErrPersistFailed.Status, appErrors.ErrPersistFailed.Message)
	}
	result.ProfileID = profile.ID

	for field, url := range uploaded {
		w.staging.put(field, Persisted(url))
	}
	if result.Created {
		notifier.Success(CreatedMessage)
	} else {
		notifier.Success(UpdatedMessage)
	}
	return result, nil
}

// uploadAll starts one upload per pending document and waits for all of them.
// A failing upload does not stop its siblings.
func (s *Submitter) uploadAll(ctx context.Context, w *Wizard, enquiryID string, pending []models.DocumentField, at time.Time) (map[models.DocumentField]string, error) {
	type outcome struct {
		url string
		err error
	}
	outcomes := make([]outcome, len(pending))

	var wg sync.WaitGroup
	for i, field := range pending {
		doc := w.staging.Get(field)
		key := ObjectKey(s.Collection, enquiryID, field, at, doc.Name())
		wg.Add(1)
		go func(i int, field models.DocumentField, doc StagedDocument) {
			defer wg.Done()
			url, err := s.Files.Upload(ctx, key, doc.ContentType(), doc.Data(), s.progressFor(field))
			if err == nil && url == "" {
				err = errors.New("storage returned an empty url")
			}
			outcomes[i] = outcome{url: url, err: err}
		}(i, field, doc)
	}
	wg.Wait()

	uploaded := make(map[models.DocumentField]string, len(pending))
	var errs []error
	for i, field := range pending {
		if outcomes[i].err != nil {
			errs = append(errs, &UploadError{Field: field, Err: outcomes[i].err})
			continue
		}
		uploaded[field] = outcomes[i].url
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return uploaded, nil
}

// merge builds the record to persist. Document values prefer a fresh URL,
// then a pass-through URL, then empty.
func (s *Submitter) merge(w *Wizard, enquiryID string, uploaded map[models.DocumentField]string) *models.DetailedProfile {
	profile := &models.DetailedProfile{EnquiryID: enquiryID, ProfileData: w.Data()}
	for _, field := range models.DocumentFields {
		value := ""
		if url, ok := uploaded[field]; ok {
			value = url
		} else if staged := w.staging.Get(field); staged.Kind() == StagedPersisted {
			value = staged.URL()
		}
		profile.SetDocument(field, value)
	}
	return profile
}

func (s *Submitter) progressFor(field models.DocumentField) ProgressFunc {
	if s.OnProgress == nil {
		return nil
	}
	return func(sent, total int64) {
		s.OnProgress(field, sent, total)
	}
}

// ObjectKey names the stored object of a document:
// <collection>/<enquiry>/<field>_<unix millis>_<file name>.
func ObjectKey(collection, enquiryID string, field models.DocumentField, at time.Time, name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "document.pdf"
	}
	return fmt.Sprintf("%s/%s/%s_%d_%s", collection, enquiryID, field, at.UnixMilli(), base)
}

func unwrapJoined(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}

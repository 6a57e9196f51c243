package wizard

import (
	"fmt"

	"github.com/noah-isme/edu-crm-api/internal/models"
	appErrors "github.com/noah-isme/edu-crm-api/pkg/errors"
)

// Notifier receives user facing messages. Implementations decide how they
// reach the user.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// BlockedMessage is reported when advancing is refused.
const BlockedMessage = "Please fix the highlighted fields before continuing"

// Options tune a wizard.
type Options struct {
	Checker     Checker
	MaxFileSize int64
}

// Wizard is the state of one detailed enquiry form: the draft, its field
// states, the staged documents and the current step. It is single threaded;
// callers serialise access.
type Wizard struct {
	opts    Options
	seed    Seed
	step    Step
	draft   *Draft
	staging *StagingArea
	states  FieldStates
	errors  map[FieldPath]string
	// active service names; nil leaves the selection unchecked
	services map[string]struct{}
}

// New creates a wizard positioned on the first step and seeded from seed.
func New(seed Seed, opts Options) *Wizard {
	w := &Wizard{opts: opts, step: FirstStep}
	w.Reseed(seed)
	return w
}

// Reseed replaces the draft, staging and field states wholesale. The current
// step is kept.
func (w *Wizard) Reseed(seed Seed) {
	data, staging := BuildDraft(seed)
	w.seed = seed
	w.draft = NewDraft(data)
	w.staging = staging
	w.states = make(FieldStates)
	w.errors = make(map[FieldPath]string)
}

func (w *Wizard) Step() Step                { return w.step }
func (w *Wizard) Seed() Seed                { return w.seed }
func (w *Wizard) ProfileID() string         { return w.seed.ProfileID() }
func (w *Wizard) EnquiryID() string         { return w.seed.EnquiryID() }
func (w *Wizard) Data() models.ProfileData  { return w.draft.All() }
func (w *Wizard) Staged() *StagingArea      { return w.staging }
func (w *Wizard) States() FieldStates       { return w.states.Clone() }
func (w *Wizard) Editing() bool             { return w.seed.ProfileID() != "" }

// Errors returns the current inline validation messages.
func (w *Wizard) Errors() map[FieldPath]string {
	out := make(map[FieldPath]string, len(w.errors))
	for k, v := range w.errors {
		out[k] = v
	}
	return out
}

// SetServiceCatalog restricts confirmed services to the names of the active
// items. A nil slice lifts the restriction.
func (w *Wizard) SetServiceCatalog(items []models.ServiceItem) {
	if items == nil {
		w.services = nil
		return
	}
	w.services = make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.Active {
			w.services[item.Name] = struct{}{}
		}
	}
}

// unknownServices lists, in selection order, the selected services missing
// from the catalog.
func (w *Wizard) unknownServices(d *Draft) []FieldIssue {
	if w.services == nil {
		return nil
	}
	var unknown []FieldIssue
	for i, name := range d.data.ConfirmedServices {
		if _, ok := w.services[name]; !ok {
			unknown = append(unknown, FieldIssue{
				Path:    ItemPath(FieldConfirmedServices, i),
				Message: fmt.Sprintf("%q is not an active service", name),
			})
		}
	}
	return unknown
}

// Get reads one leaf of the draft.
func (w *Wizard) Get(p FieldPath) (string, bool) {
	return w.draft.Get(p)
}

// Set writes one leaf and marks it dirty.
func (w *Wizard) Set(p FieldPath, value string) error {
	if err := w.draft.Set(p, value); err != nil {
		return err
	}
	w.markDirty(p)
	return nil
}

// Touch records focus and blur of paths and validates each of them.
func (w *Wizard) Touch(paths ...FieldPath) error {
	leaves := w.draft.Leaves()
	for _, p := range paths {
		if _, ok := leaves[p]; !ok {
			return unknownField(p)
		}
	}
	for _, p := range paths {
		if msg := ValidateField(p, leaves[p], w.opts.Checker); msg != "" {
			w.states[p] = Invalid
			w.errors[p] = msg
			continue
		}
		w.states[p] = Valid
		delete(w.errors, p)
	}
	return nil
}

// Apply runs a step patch against a copy of the draft and commits it when
// every assignment succeeds. Only the active step may be patched.
func (w *Wizard) Apply(patch Patch) ([]FieldPath, error) {
	if patch == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "patch is required")
	}
	if patch.Step() != w.step {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed,
			fmt.Sprintf("step %d is not the active step", patch.Step()))
	}
	next := NewDraft(w.draft.All())
	changed, err := patch.apply(next)
	if err != nil {
		return nil, err
	}
	if patch.Step() == StepServicesAndStatus {
		if unknown := w.unknownServices(next); len(unknown) > 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, unknown[0].Message)
		}
	}
	w.draft = next
	for _, p := range changed {
		w.markDirty(p)
	}
	return changed, nil
}

// AppendItem adds a default element to group. Exams start with examType.
func (w *Wizard) AppendItem(group ListGroup, examType models.ExamType) (int, error) {
	var idx int
	switch group {
	case FieldAcademics:
		idx = w.draft.AppendAcademic()
	case FieldExams:
		if _, ok := models.LookupExamType(examType); !ok {
			return 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported exam type %q", examType))
		}
		idx = w.draft.AppendExam(examType)
	case FieldWorkExperiences:
		idx = w.draft.AppendWorkExperience()
	case FieldRefusals:
		idx = w.draft.AppendRefusal()
	default:
		return 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s does not accept new items", group))
	}
	w.states[group] = Touched
	return idx, nil
}

// RemoveItem deletes element i of group. States and errors of later
// elements move with them.
func (w *Wizard) RemoveItem(group ListGroup, i int) error {
	if err := w.draft.RemoveAt(group, i); err != nil {
		return err
	}
	reindex(w.states, group, i)
	reindex(w.errors, group, i)
	w.states[group] = Touched
	return nil
}

// Next validates the active step and advances when it passes. A blocked
// advance reports a single message through notifier.
func (w *Wizard) Next(notifier Notifier) ValidationResult {
	result := ValidateStep(w.step, w.draft, w.states, w.opts.Checker)
	if w.step == StepServicesAndStatus {
		for _, issue := range w.unknownServices(w.draft) {
			result.Valid = false
			result.Checked = append(result.Checked, issue.Path)
			result.Errors[issue.Path] = issue.Message
			result.States[issue.Path] = Invalid
			result.States[FieldConfirmedServices] = Invalid
		}
	}
	w.states = result.States
	for _, p := range result.Checked {
		delete(w.errors, p)
	}
	for p, msg := range result.Errors {
		w.errors[p] = msg
	}
	if !result.Valid {
		if notifier != nil {
			notifier.Error(BlockedMessage)
		}
		return result
	}
	w.step = NextStep(w.step)
	return result
}

// Prev moves one step back without validation.
func (w *Wizard) Prev() {
	w.step = PrevStep(w.step)
}

// StageDocument accepts a PDF for field. Rejected files leave the wizard
// untouched.
func (w *Wizard) StageDocument(field models.DocumentField, name, contentType string, data []byte) error {
	if !field.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown document field %q", field))
	}
	if contentType != PDFContentType {
		return appErrors.Clone(appErrors.ErrUnsupportedMedia, fmt.Sprintf("%s must be a PDF file", field.Label()))
	}
	if len(data) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s is empty", name))
	}
	if w.opts.MaxFileSize > 0 && int64(len(data)) > w.opts.MaxFileSize {
		return appErrors.Clone(appErrors.ErrPayloadTooLarge,
			fmt.Sprintf("%s exceeds the %d byte limit", name, w.opts.MaxFileSize))
	}
	w.staging.put(field, Pending(name, contentType, data))
	w.draft.data.SetDocument(field, name)
	w.markDirty(DocumentPath(field))
	return nil
}

// RemoveDocument clears both the staged entry and the display value.
func (w *Wizard) RemoveDocument(field models.DocumentField) error {
	if !field.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown document field %q", field))
	}
	w.staging.clear(field)
	w.draft.data.SetDocument(field, "")
	w.markDirty(DocumentPath(field))
	return nil
}

func (w *Wizard) markDirty(p FieldPath) {
	w.states[p] = Touched
	delete(w.errors, p)
}

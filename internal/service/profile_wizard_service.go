package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-crm-api/internal/dto"
	"github.com/noah-isme/edu-crm-api/internal/models"
	"github.com/noah-isme/edu-crm-api/internal/wizard"
	appErrors "github.com/noah-isme/edu-crm-api/pkg/errors"
	"github.com/noah-isme/edu-crm-api/pkg/export"
)

// Reasons a session leaves the registry.
const (
	CloseSubmitted = "submitted"
	CloseDiscarded = "discarded"
	CloseExpired   = "expired"
	CloseShutdown  = "shutdown"
)

// Export formats for the review summary.
const (
	ExportCSV = "csv"
	ExportPDF = "pdf"
)

type enquiryFinder interface {
	FindByID(ctx context.Context, id string) (*models.Enquiry, error)
}

type profileRepository interface {
	wizard.ProfileStore
	Load(ctx context.Context, collection, id string) (*models.DetailedProfile, error)
}

type activeServices interface {
	ActiveServices(ctx context.Context) ([]models.ServiceItem, error)
}

type auditRecorder interface {
	Record(entry models.AuditLog) error
}

// WizardConfig tunes session handling.
type WizardConfig struct {
	SessionTTL      time.Duration
	JanitorInterval time.Duration
	MaxFileSize     int64
	Collection      string
}

// WizardDependencies are the collaborators a wizard session talks to.
type WizardDependencies struct {
	Enquiries enquiryFinder
	Profiles  profileRepository
	Files     wizard.FileStore
	Catalog   activeServices
	Audit     auditRecorder
	Checker   wizard.Checker
}

// Caller identifies who drives a session.
type Caller struct {
	UserID    string
	Role      models.UserRole
	IP        string
	UserAgent string
}

type session struct {
	id        string
	owner     string
	createdAt time.Time
	lastSeen  atomic.Int64
	busy      atomic.Int32

	mu     sync.Mutex
	wiz    *wizard.Wizard
	ctx    context.Context
	cancel context.CancelFunc
}

// join derives a context that ends when either ctx or the session ends.
func (s *session) join(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// ProfileWizardService hosts detailed enquiry wizards, one per mount. Every
// operation on a session is serialised by the session's mutex.
type ProfileWizardService struct {
	deps      WizardDependencies
	submitter *wizard.Submitter
	cfg       WizardConfig
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time

	baseCtx    context.Context
	cancelBase context.CancelFunc
	startOnce  sync.Once

	mu       sync.Mutex
	sessions map[string]*session
}

// NewProfileWizardService constructs the service.
func NewProfileWizardService(deps WizardDependencies, cfg WizardConfig, metrics *MetricsService, logger *zap.Logger) *ProfileWizardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 2 * time.Hour
	}
	if cfg.JanitorInterval <= 0 {
		cfg.JanitorInterval = 5 * time.Minute
	}
	if cfg.Collection == "" {
		cfg.Collection = "detailed_enquiries"
	}
	baseCtx, cancel := context.WithCancel(context.Background())
	s := &ProfileWizardService{
		deps:       deps,
		cfg:        cfg,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
		baseCtx:    baseCtx,
		cancelBase: cancel,
		sessions:   make(map[string]*session),
	}
	s.submitter = &wizard.Submitter{
		Files:      &instrumentedFileStore{next: deps.Files, metrics: metrics},
		Profiles:   deps.Profiles,
		Collection: cfg.Collection,
		Now:        func() time.Time { return s.now() },
		OnProgress: func(field models.DocumentField, sent, total int64) {
			logger.Debug("document upload progress", zap.String("field", string(field)), zap.Int64("sent", sent), zap.Int64("total", total))
		},
	}
	return s
}

// Start launches the idle session janitor. It stops with ctx.
func (s *ProfileWizardService) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		go s.janitor(ctx)
	})
}

// Shutdown closes every session, cancelling in-flight uploads.
func (s *ProfileWizardService) Shutdown() {
	s.mu.Lock()
	open := make([]*session, 0, len(s.sessions))
	for id, sess := range s.sessions {
		open = append(open, sess)
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	for _, sess := range open {
		s.closed(sess, CloseShutdown)
	}
	s.cancelBase()
}

// ActiveSessions reports how many sessions are open.
func (s *ProfileWizardService) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Mount opens a session seeded from the requested enquiry or profile.
func (s *ProfileWizardService) Mount(ctx context.Context, caller Caller, req dto.MountWizardRequest) (*dto.WizardState, error) {
	if strings.TrimSpace(caller.UserID) == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, wizard.MissingActorMessage)
	}
	seed, err := s.resolveSeed(ctx, req)
	if err != nil {
		return nil, err
	}

	sessCtx, cancel := context.WithCancel(s.baseCtx)
	sess := &session{
		id:        uuid.NewString(),
		owner:     caller.UserID,
		createdAt: s.now(),
		wiz:       wizard.New(seed, wizard.Options{Checker: s.deps.Checker, MaxFileSize: s.cfg.MaxFileSize}),
		ctx:       sessCtx,
		cancel:    cancel,
	}
	sess.lastSeen.Store(sess.createdAt.UnixNano())

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	s.metrics.SessionOpened()
	s.logger.Info("wizard mounted",
		zap.String("session_id", sess.id),
		zap.String("user_id", caller.UserID),
		zap.String("enquiry_id", seed.EnquiryID()),
		zap.String("profile_id", seed.ProfileID()),
	)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.state(ctx, sess)
}

// Reseed replaces the draft of a session from a new source. Loading the same
// source twice yields the same draft.
func (s *ProfileWizardService) Reseed(ctx context.Context, caller Caller, id string, req dto.MountWizardRequest) (*dto.WizardState, error) {
	seed, err := s.resolveSeed(ctx, req)
	if err != nil {
		return nil, err
	}
	var state *dto.WizardState
	err = s.withSession(caller, id, func(sess *session) error {
		sess.wiz.Reseed(seed)
		state, err = s.state(ctx, sess)
		return err
	})
	return state, err
}

// State returns the session with the view of its active step.
func (s *ProfileWizardService) State(ctx context.Context, caller Caller, id string) (*dto.WizardState, error) {
	var state *dto.WizardState
	err := s.withSession(caller, id, func(sess *session) error {
		var err error
		state, err = s.state(ctx, sess)
		return err
	})
	return state, err
}

// StepView renders any step of the session, active or not.
func (s *ProfileWizardService) StepView(ctx context.Context, caller Caller, id string, step wizard.Step) (*wizard.StepView, error) {
	var view wizard.StepView
	err := s.withSession(caller, id, func(sess *session) error {
		var err error
		view, err = s.view(ctx, sess.wiz, step)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// ApplyPatch decodes and applies a typed patch for step.
func (s *ProfileWizardService) ApplyPatch(ctx context.Context, caller Caller, id string, step wizard.Step, raw []byte) (*dto.WizardState, error) {
	patch, err := wizard.DecodePatch(step, raw)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, caller, id, func(w *wizard.Wizard) error {
		if err := s.restrictServices(ctx, w, patch.Step()); err != nil {
			return err
		}
		_, err := w.Apply(patch)
		return err
	})
}

// Touch validates the given fields as if they lost focus.
func (s *ProfileWizardService) Touch(ctx context.Context, caller Caller, id string, fields []string) (*dto.WizardState, error) {
	paths := make([]wizard.FieldPath, len(fields))
	for i, f := range fields {
		paths[i] = wizard.FieldPath(strings.TrimSpace(f))
	}
	return s.mutate(ctx, caller, id, func(w *wizard.Wizard) error {
		return w.Touch(paths...)
	})
}

// AppendItem adds a default element to a list group.
func (s *ProfileWizardService) AppendItem(ctx context.Context, caller Caller, id, group string, examType models.ExamType) (*dto.AppendItemResponse, error) {
	var index int
	state, err := s.mutate(ctx, caller, id, func(w *wizard.Wizard) error {
		var err error
		index, err = w.AppendItem(wizard.ListGroup(group), examType)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dto.AppendItemResponse{Index: index, State: state}, nil
}

// RemoveItem deletes element index of a list group.
func (s *ProfileWizardService) RemoveItem(ctx context.Context, caller Caller, id, group string, index int) (*dto.WizardState, error) {
	return s.mutate(ctx, caller, id, func(w *wizard.Wizard) error {
		return w.RemoveItem(wizard.ListGroup(group), index)
	})
}

// Next validates the active step and advances. A blocked advance returns the
// state with its inline errors together with ErrStepBlocked.
func (s *ProfileWizardService) Next(ctx context.Context, caller Caller, id string, notifier wizard.Notifier) (*dto.WizardState, error) {
	var state *dto.WizardState
	err := s.withSession(caller, id, func(sess *session) error {
		if err := s.restrictServices(ctx, sess.wiz, sess.wiz.Step()); err != nil {
			return err
		}
		result := sess.wiz.Next(notifier)
		var err error
		if state, err = s.state(ctx, sess); err != nil {
			return err
		}
		if !result.Valid {
			return appErrors.Clone(appErrors.ErrStepBlocked, wizard.BlockedMessage)
		}
		return nil
	})
	return state, err
}

// Prev moves one step back.
func (s *ProfileWizardService) Prev(ctx context.Context, caller Caller, id string) (*dto.WizardState, error) {
	return s.mutate(ctx, caller, id, func(w *wizard.Wizard) error {
		w.Prev()
		return nil
	})
}

// StageDocument holds a file for field until submission. Rejections are
// reported through notifier as well as returned.
func (s *ProfileWizardService) StageDocument(ctx context.Context, caller Caller, id string, field models.DocumentField, name, contentType string, data []byte, notifier wizard.Notifier) (*dto.WizardState, error) {
	state, err := s.mutate(ctx, caller, id, func(w *wizard.Wizard) error {
		return w.StageDocument(field, name, contentType, data)
	})
	if err != nil && notifier != nil {
		if !errors.Is(err, appErrors.ErrNotFound) && !errors.Is(err, appErrors.ErrForbidden) {
			notifier.Error(appErrors.FromError(err).Message)
		}
	}
	return state, err
}

// RemoveDocument clears a document slot.
func (s *ProfileWizardService) RemoveDocument(ctx context.Context, caller Caller, id string, field models.DocumentField) (*dto.WizardState, error) {
	return s.mutate(ctx, caller, id, func(w *wizard.Wizard) error {
		return w.RemoveDocument(field)
	})
}

// Review returns the read-only summary of the draft.
func (s *ProfileWizardService) Review(ctx context.Context, caller Caller, id string) (*dto.ReviewResponse, error) {
	var out *dto.ReviewResponse
	err := s.withSession(caller, id, func(sess *session) error {
		out = &dto.ReviewResponse{ID: sess.id, Review: sess.wiz.Review()}
		return nil
	})
	return out, err
}

// ExportReview renders the review summary as CSV or PDF.
func (s *ProfileWizardService) ExportReview(ctx context.Context, caller Caller, id, format string) (*dto.ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != ExportCSV && format != ExportPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	var (
		review wizard.Review
		name   string
	)
	if err := s.withSession(caller, id, func(sess *session) error {
		review = sess.wiz.Review()
		name = sess.wiz.EnquiryID()
		if name == "" {
			name = sess.id
		}
		return nil
	}); err != nil {
		return nil, err
	}

	dataset := reviewDataset(review)
	filename := fmt.Sprintf("detailed-enquiry-%s.%s", name, format)
	var (
		data []byte
		err  error
		ct   string
	)
	switch format {
	case ExportCSV:
		data, err = export.NewCSVExporter().Render(dataset)
		ct = "text/csv"
	case ExportPDF:
		data, err = export.NewPDFExporter().Render(dataset, "Detailed Enquiry Review")
		ct = "application/pdf"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render review export")
	}
	return &dto.ExportFile{Filename: filename, ContentType: ct, Data: data}, nil
}

// Submit runs the submission pipeline. On success the session is closed and
// an audit entry is queued; on failure the session keeps its draft.
func (s *ProfileWizardService) Submit(ctx context.Context, caller Caller, id string, notifier wizard.Notifier) (*dto.SubmitResponse, error) {
	var out *dto.SubmitResponse
	err := s.withSession(caller, id, func(sess *session) error {
		runCtx, release := sess.join(ctx)
		defer release()

		editing := sess.wiz.Editing()
		start := s.now()
		result, err := s.submitter.Submit(runCtx, sess.wiz, wizard.Actor{UserID: caller.UserID}, notifier)
		s.metrics.ObserveSubmission(editing, s.now().Sub(start), err)
		if err != nil {
			s.logger.Warn("wizard submission failed", zap.String("session_id", sess.id), zap.Error(err))
			return err
		}

		out = &dto.SubmitResponse{
			ProfileID: result.ProfileID,
			Created:   result.Created,
			Profile:   result.Profile,
			Uploaded:  result.Uploaded,
		}
		action := models.AuditActionProfileUpdate
		if result.Created {
			action = models.AuditActionProfileCreate
		}
		s.audit(caller, action, result.ProfileID, result.Profile)

		if s.remove(sess.id) {
			s.closed(sess, CloseSubmitted)
		}
		return nil
	})
	return out, err
}

// Discard closes a session without saving. In-flight uploads are cancelled.
func (s *ProfileWizardService) Discard(ctx context.Context, caller Caller, id string) error {
	sess, err := s.lookup(caller, id)
	if err != nil {
		return err
	}
	if !s.remove(id) {
		return appErrors.Clone(appErrors.ErrNotFound, "wizard session not found")
	}
	s.closed(sess, CloseDiscarded)
	s.audit(caller, models.AuditActionWizardDiscard, sess.id, nil)
	return nil
}

func (s *ProfileWizardService) mutate(ctx context.Context, caller Caller, id string, fn func(*wizard.Wizard) error) (*dto.WizardState, error) {
	var state *dto.WizardState
	err := s.withSession(caller, id, func(sess *session) error {
		if err := fn(sess.wiz); err != nil {
			return err
		}
		var err error
		state, err = s.state(ctx, sess)
		return err
	})
	return state, err
}

func (s *ProfileWizardService) lookup(caller Caller, id string) (*session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "wizard session not found")
	}
	if sess.owner != caller.UserID && !caller.Role.Supervises() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "wizard session belongs to another user")
	}
	return sess, nil
}

func (s *ProfileWizardService) withSession(caller Caller, id string, fn func(*session) error) error {
	sess, err := s.lookup(caller, id)
	if err != nil {
		return err
	}
	sess.busy.Add(1)
	defer sess.busy.Add(-1)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.ctx.Err() != nil {
		return appErrors.Clone(appErrors.ErrNotFound, "wizard session has been closed")
	}
	sess.lastSeen.Store(s.now().UnixNano())
	defer func() { sess.lastSeen.Store(s.now().UnixNano()) }()
	return fn(sess)
}

func (s *ProfileWizardService) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

func (s *ProfileWizardService) closed(sess *session, reason string) {
	sess.cancel()
	s.metrics.SessionClosed(reason)
	s.logger.Info("wizard closed", zap.String("session_id", sess.id), zap.String("reason", reason))
}

func (s *ProfileWizardService) janitor(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.JanitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.baseCtx.Done():
			return
		case <-ticker.C:
			if n := s.ExpireIdle(); n > 0 {
				s.logger.Sugar().Infow("expired idle wizard sessions", "count", n)
			}
		}
	}
}

// ExpireIdle closes sessions idle for longer than the session TTL and
// returns how many were closed. Sessions with a running operation are kept.
func (s *ProfileWizardService) ExpireIdle() int {
	cutoff := s.now().Add(-s.cfg.SessionTTL).UnixNano()
	s.mu.Lock()
	var expired []*session
	for id, sess := range s.sessions {
		if sess.busy.Load() == 0 && sess.lastSeen.Load() < cutoff {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()
	for _, sess := range expired {
		s.closed(sess, CloseExpired)
	}
	return len(expired)
}

func (s *ProfileWizardService) resolveSeed(ctx context.Context, req dto.MountWizardRequest) (wizard.Seed, error) {
	enquiryID := strings.TrimSpace(req.EnquiryID)
	profileID := strings.TrimSpace(req.ProfileID)
	var seed wizard.Seed

	if profileID != "" {
		profile, err := s.deps.Profiles.Load(ctx, s.cfg.Collection, profileID)
		if err != nil {
			return seed, err
		}
		if enquiryID != "" && profile.EnquiryID != "" && enquiryID != profile.EnquiryID {
			return seed, appErrors.Clone(appErrors.ErrValidation, "profile belongs to another enquiry")
		}
		seed.Profile = profile
		if enquiryID == "" {
			enquiryID = profile.EnquiryID
		}
	}
	if enquiryID == "" {
		return seed, nil
	}

	enquiry, err := s.deps.Enquiries.FindByID(ctx, enquiryID)
	switch {
	case err == nil:
		seed.Enquiry = enquiry
	case errors.Is(err, sql.ErrNoRows) && seed.Profile != nil:
		s.logger.Warn("profile references a missing enquiry", zap.String("profile_id", profileID), zap.String("enquiry_id", enquiryID))
	case errors.Is(err, sql.ErrNoRows):
		return seed, appErrors.Clone(appErrors.ErrNotFound, "enquiry not found")
	default:
		return seed, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enquiry")
	}
	return seed, nil
}

// restrictServices loads the active catalog into w before the services step
// is edited or left. Without a catalog the selection cannot be checked, so
// the operation fails.
func (s *ProfileWizardService) restrictServices(ctx context.Context, w *wizard.Wizard, step wizard.Step) error {
	if step != wizard.StepServicesAndStatus || s.deps.Catalog == nil {
		return nil
	}
	services, err := s.deps.Catalog.ActiveServices(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "services catalog unavailable")
	}
	if services == nil {
		services = []models.ServiceItem{}
	}
	w.SetServiceCatalog(services)
	return nil
}

func (s *ProfileWizardService) view(ctx context.Context, w *wizard.Wizard, step wizard.Step) (wizard.StepView, error) {
	var vc wizard.ViewContext
	if step == wizard.StepServicesAndStatus && s.deps.Catalog != nil {
		services, err := s.deps.Catalog.ActiveServices(ctx)
		if err != nil {
			s.logger.Warn("services catalog unavailable", zap.Error(err))
		}
		vc.Services = services
	}
	return w.View(step, vc)
}

func (s *ProfileWizardService) state(ctx context.Context, sess *session) (*dto.WizardState, error) {
	w := sess.wiz
	view, err := s.view(ctx, w, w.Step())
	if err != nil {
		return nil, err
	}

	steps := make([]dto.StepSummary, len(wizard.Steps))
	for i, def := range wizard.Steps {
		steps[i] = dto.StepSummary{Step: def.Step, Label: def.Label, Current: def.Step == w.Step()}
	}

	staged := w.Staged()
	docs := make([]dto.DocumentStatus, len(models.DocumentFields))
	for i, field := range models.DocumentFields {
		doc := staged.Get(field)
		docs[i] = dto.DocumentStatus{
			Field:  field,
			Label:  field.Label(),
			Status: doc.Kind(),
			Name:   doc.Name(),
			Size:   doc.Size(),
			URL:    doc.URL(),
		}
	}

	return &dto.WizardState{
		ID:        sess.id,
		EnquiryID: w.EnquiryID(),
		ProfileID: w.ProfileID(),
		Editing:   w.Editing(),
		Step:      w.Step(),
		Steps:     steps,
		Data:      w.Data(),
		Documents: docs,
		View:      view,
		ExpiresAt: time.Unix(0, sess.lastSeen.Load()).Add(s.cfg.SessionTTL).UTC(),
	}, nil
}

func (s *ProfileWizardService) audit(caller Caller, action, resourceID string, payload interface{}) {
	if s.deps.Audit == nil {
		return
	}
	userID := caller.UserID
	entry := models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   s.cfg.Collection,
		ResourceID: &resourceID,
		IPAddress:  caller.IP,
		UserAgent:  caller.UserAgent,
	}
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			values := string(raw)
			entry.NewValues = &values
		}
	}
	if err := s.deps.Audit.Record(entry); err != nil {
		s.logger.Warn("audit entry dropped", zap.String("action", action), zap.Error(err))
	}
}

func reviewDataset(review wizard.Review) export.Dataset {
	const (
		colSection = "Section"
		colField   = "Field"
		colValue   = "Value"
	)
	ds := export.Dataset{Headers: []string{colSection, colField, colValue}, GroupBy: colSection}
	for _, sec := range review.Sections {
		if len(sec.Items) == 0 {
			ds.Rows = append(ds.Rows, map[string]string{colSection: sec.Title, colValue: sec.Placeholder})
			continue
		}
		for _, item := range sec.Items {
			ds.Rows = append(ds.Rows, map[string]string{colSection: sec.Title, colField: item.Label, colValue: item.Value})
		}
	}
	return ds
}

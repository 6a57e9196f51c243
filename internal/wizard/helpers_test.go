package wizard

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/noah-isme/edu-crm-api/internal/models"
	"github.com/noah-isme/edu-crm-api/pkg/validation"
)

var testChecker = validation.New()

func newTestWizard(seed Seed) *Wizard {
	return New(seed, Options{Checker: testChecker, MaxFileSize: 1 << 20})
}

func advanceToReview(w *Wizard) {
	for w.Step() != StepReview {
		before := w.Step()
		w.Next(nil)
		if w.Step() == before {
			panic(fmt.Sprintf("wizard blocked on step %d", before))
		}
	}
}

type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

func (n *recordingNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
}

type uploadGate struct {
	arrived chan struct{}
	release chan struct{}
}

type fileStoreStub struct {
	mu   sync.Mutex
	fail map[models.DocumentField]bool
	keys []string
	gate *uploadGate
}

func (f *fileStoreStub) Upload(ctx context.Context, key, contentType string, data []byte, progress ProgressFunc) (string, error) {
	f.mu.Lock()
	f.keys = append(f.keys, key)
	f.mu.Unlock()

	if f.gate != nil {
		f.gate.arrived <- struct{}{}
		select {
		case <-f.gate.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if progress != nil {
		progress(int64(len(data)), int64(len(data)))
	}
	for field := range f.fail {
		if strings.Contains(key, "/"+string(field)+"_") {
			return "", fmt.Errorf("storage unavailable")
		}
	}
	return "https://files.example.com/" + key, nil
}

type profileStoreStub struct {
	created   []*models.DetailedProfile
	updated   []*models.DetailedProfile
	updateIDs []string
	err       error
}

func (p *profileStoreStub) Create(ctx context.Context, collection string, profile *models.DetailedProfile) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.created = append(p.created, profile)
	return "profile-new", nil
}

func (p *profileStoreStub) Update(ctx context.Context, collection, id string, profile *models.DetailedProfile) error {
	if p.err != nil {
		return p.err
	}
	p.updateIDs = append(p.updateIDs, id)
	p.updated = append(p.updated, profile)
	return nil
}

func pdf() []byte {
	return []byte("%PDF-1.7 test")
}

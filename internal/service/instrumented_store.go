package service

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/noah-isme/edu-crm-api/internal/models"
	"github.com/noah-isme/edu-crm-api/internal/wizard"
)

// instrumentedFileStore records upload metrics around a wizard.FileStore.
type instrumentedFileStore struct {
	next    wizard.FileStore
	metrics *MetricsService
}

func (s *instrumentedFileStore) Upload(ctx context.Context, key, contentType string, data []byte, progress wizard.ProgressFunc) (string, error) {
	start := time.Now()
	url, err := s.next.Upload(ctx, key, contentType, data, progress)
	s.metrics.ObserveUpload(fieldFromKey(key), len(data), time.Since(start), err)
	return url, err
}

// fieldFromKey recovers the document field from an object key built by
// wizard.ObjectKey.
func fieldFromKey(key string) string {
	base := path.Base(key)
	for _, field := range models.DocumentFields {
		if strings.HasPrefix(base, string(field)+"_") {
			return string(field)
		}
	}
	return "unknown"
}

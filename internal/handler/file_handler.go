package handler

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/edu-crm-api/pkg/errors"
	"github.com/noah-isme/edu-crm-api/pkg/response"
)

type signedFileOpener interface {
	OpenSigned(key, token string) (*os.File, error)
}

// FileHandler serves documents kept by the local storage driver through
// signed URLs.
type FileHandler struct {
	files  signedFileOpener
	logger *zap.Logger
}

// NewFileHandler builds a file handler.
func NewFileHandler(files signedFileOpener, logger *zap.Logger) *FileHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileHandler{files: files, logger: logger}
}

// Download godoc
// @Summary Download a stored document
// @Tags Files
// @Produce application/pdf
// @Param key path string true "Object key"
// @Param token query string true "Signed token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /files/{key} [get]
func (h *FileHandler) Download(c *gin.Context) {
	if h.files == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "file downloads are not served by this storage driver"))
		return
	}
	key := strings.TrimPrefix(c.Param("key"), "/")
	token := c.Query("token")
	if key == "" || token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "signed token required"))
		return
	}

	file, err := h.files.OpenSigned(key, token)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "file not found"))
			return
		}
		h.logger.Debug("file download refused", zap.String("key", key), zap.Error(err))
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired link"))
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read file"))
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.Header("Content-Disposition", "inline; filename=\""+path.Base(key)+"\"")
	http.ServeContent(c.Writer, c.Request, path.Base(key), info.ModTime(), file)
}

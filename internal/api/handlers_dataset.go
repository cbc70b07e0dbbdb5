// handlers_dataset.go - Session, upload and question handlers
package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/KaramelBytes/dataqa-cli/internal/analysis"
	"github.com/KaramelBytes/dataqa-cli/internal/answer"
	"github.com/KaramelBytes/dataqa-cli/internal/ingest"
	"github.com/KaramelBytes/dataqa-cli/internal/observability"
	"github.com/KaramelBytes/dataqa-cli/internal/utils"
	"github.com/labstack/echo/v4"
)

// DatasetHandler serves the upload, preview and ask flow.
type DatasetHandler struct {
	sessions    *SessionStore
	answerer    Answerer
	ingest      ingest.Options
	previewRows int
	logger      *slog.Logger
}

// NewDatasetHandler creates a dataset handler from shared dependencies
func NewDatasetHandler(deps *Dependencies) *DatasetHandler {
	return &DatasetHandler{
		sessions:    deps.Sessions,
		answerer:    deps.Answerer,
		ingest:      deps.Ingest,
		previewRows: deps.PreviewRows,
		logger:      deps.Logger,
	}
}

type datasetResponse struct {
	SessionID string `json:"session_id"`
	ingest.Metadata
	Preview     string `json:"preview"`
	PreviewRows int    `json:"preview_rows"`
}

type askRequest struct {
	DatasetType string `json:"dataset_type"`
	Question    string `json:"question"`
}

type askResponse struct {
	answer.Result
	Error string `json:"error,omitempty"`
}

// HandleListTypes returns the supported dataset type labels
func (h *DatasetHandler) HandleListTypes(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"types": answer.DatasetTypes(),
	})
}

// HandleCreateSession starts an empty session
func (h *DatasetHandler) HandleCreateSession(c echo.Context) error {
	return c.JSON(http.StatusCreated, h.sessions.Create())
}

// HandleDeleteSession discards a session and its dataset
func (h *DatasetHandler) HandleDeleteSession(c echo.Context) error {
	id := c.Param("id")
	if !h.sessions.Delete(id) {
		return NewNotFoundError("session", id)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleUploadDataset accepts a multipart "file" and replaces the session's dataset.
// On failure the previous dataset is kept.
func (h *DatasetHandler) HandleUploadDataset(c echo.Context) error {
	id := c.Param("id")
	if _, ok := h.sessions.Get(id); !ok {
		return NewNotFoundError("session", id)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return NewBadRequestError("no file provided", err)
	}
	src, err := file.Open()
	if err != nil {
		return NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	opt := h.ingest
	opt.Logger = h.logger
	opt.SheetName = strings.TrimSpace(c.FormValue("sheet"))

	tbl, err := ingest.Clean(ingest.RawFile{Name: file.Filename, Reader: src}, opt)
	if err != nil {
		var tooLarge *ingest.TooLargeError
		if errors.As(err, &tooLarge) {
			observability.IncrementIngestFailure("too_large")
			return NewPayloadTooLargeError(fmt.Sprintf("file exceeds the %s upload limit", utils.HumanBytes(tooLarge.Limit)))
		}
		observability.IncrementIngestFailure("unreadable")
		h.logger.Warn("upload rejected",
			slog.String("request_id", observability.RequestIDFromContext(c.Request().Context())),
			slog.String("file", file.Filename),
			slog.String("error", err.Error()),
		)
		var unreadable *ingest.UnreadableFileError
		if errors.As(err, &unreadable) {
			return NewUnreadableFileError(file.Filename, unreadable.Err)
		}
		return NewBadRequestError("failed to read uploaded file", err)
	}
	if !h.sessions.SetTable(id, tbl) {
		return NewNotFoundError("session", id)
	}
	observability.ObserveUpload(tbl.Format, tbl.NumRows())
	return c.JSON(http.StatusOK, h.datasetResponse(id, tbl))
}

// HandleGetDataset returns the preview of the session's current dataset
func (h *DatasetHandler) HandleGetDataset(c echo.Context) error {
	id := c.Param("id")
	sess, ok := h.sessions.Get(id)
	if !ok {
		return NewNotFoundError("session", id)
	}
	if sess.Table == nil {
		return NewNotFoundError("dataset for session", id)
	}
	return c.JSON(http.StatusOK, h.datasetResponse(id, sess.Table))
}

// HandleGetProfile returns per-column statistics for the session's dataset.
func (h *DatasetHandler) HandleGetProfile(c echo.Context) error {
	id := c.Param("id")
	sess, ok := h.sessions.Get(id)
	if !ok {
		return NewNotFoundError("session", id)
	}
	if sess.Table == nil {
		return NewNotFoundError("dataset for session", id)
	}
	return c.JSON(http.StatusOK, analysis.Describe(sess.Table, analysis.DefaultOptions()))
}

// HandleAsk answers a question about the session's dataset. Remote failures
// are reported inside the result body with status 200.
func (h *DatasetHandler) HandleAsk(c echo.Context) error {
	id := c.Param("id")
	sess, ok := h.sessions.Get(id)
	if !ok {
		return NewNotFoundError("session", id)
	}
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	dt, err := answer.ParseDatasetType(req.DatasetType)
	if err != nil {
		return NewValidationError("dataset_type", err)
	}
	if sess.Table == nil {
		return NewConflictError("upload a dataset before asking questions")
	}
	if h.answerer == nil {
		return NewInternalError("answer service unavailable", nil)
	}

	res := h.answerer.Answer(c.Request().Context(), dt, sess.Table, req.Question)
	out := askResponse{Result: res}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	status := http.StatusOK
	switch res.Status {
	case answer.StatusInvalidInput:
		status = http.StatusBadRequest
	case answer.StatusConfigError:
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, out)
}

func (h *DatasetHandler) datasetResponse(id string, tbl *ingest.Table) datasetResponse {
	n := h.previewRows
	if n > tbl.NumRows() {
		n = tbl.NumRows()
	}
	return datasetResponse{
		SessionID:   id,
		Metadata:    tbl.Metadata(),
		Preview:     tbl.Preview(n),
		PreviewRows: n,
	}
}

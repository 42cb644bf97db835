package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deepsift/deepsift/internal/auth"
	"github.com/deepsift/deepsift/internal/classify"
	"github.com/deepsift/deepsift/internal/history"
	"github.com/deepsift/deepsift/internal/storage"
)

// UploadHandler accepts direct file uploads from the web application.
type UploadHandler struct {
	logger     *slog.Logger
	uploader   storage.Provider
	records    *history.Service
	classifier *classify.Classifier
}

// NewUploadHandler creates the upload handler.
func NewUploadHandler(log *slog.Logger, uploader storage.Provider, records *history.Service, classifier *classify.Classifier) *UploadHandler {
	if log == nil {
		log = slog.Default()
	}
	return &UploadHandler{
		logger:     log.With(slog.String("handler", "upload")),
		uploader:   uploader,
		records:    records,
		classifier: classifier,
	}
}

// Register registers the upload route.
func (h *UploadHandler) Register(e *echo.Echo) {
	e.POST("/api/upload", h.HandleUpload)
}

// HandleUpload stores an uploaded file and creates a pending detection
// record. Ownership comes from the bearer token when present, otherwise
// from the submitted user_id/session_id, otherwise a temp session.
func (h *UploadHandler) HandleUpload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "no file provided")
	}
	if fileHeader.Filename == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "no file selected")
	}

	userID := auth.UserIDFromContext(c)
	if userID == "" {
		userID = c.FormValue("user_id")
	}
	sessionID := c.FormValue("session_id")
	if userID == "" && sessionID == "" {
		sessionID = classify.TempSessionID()
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable file")
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable file")
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	ext, category, bucket := h.classifier.Classify(fileHeader.Filename, mimeType)
	key := classify.MakeKey(userID, sessionID, fileHeader.Filename)

	ctx := c.Request().Context()
	fileURL, err := h.uploader.Upload(ctx, bucket, key, data, mimeType)
	if err != nil {
		h.logger.Error("upload failed", slog.String("bucket", bucket), slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to upload file to storage")
	}

	record, err := h.records.Insert(ctx, history.InsertInput{
		UserID:        userID,
		SessionID:     sessionID,
		FileURL:       fileURL,
		Filename:      key,
		FileType:      string(category),
		FileSize:      int64(len(data)),
		FileExtension: ext,
	})
	if err != nil {
		h.logger.Error("persist record failed", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store file metadata")
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"success": true,
		"data": map[string]any{
			"id":         record.ID,
			"file_url":   fileURL,
			"filename":   key,
			"file_type":  string(category),
			"bucket":     bucket,
			"size":       len(data),
			"user_id":    record.UserID,
			"session_id": record.SessionID,
			"created_at": record.CreatedAt,
		},
	})
}

// Package history persists detection records, one per stored asset.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/deepsift/deepsift/internal/classify"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("detection record not found")

// DB is the pgx query surface the service needs; *pgxpool.Pool satisfies it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Service reads and writes detection_history rows.
type Service struct {
	db     DB
	logger *slog.Logger
}

// NewService creates a history service.
func NewService(log *slog.Logger, db DB) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		db:     db,
		logger: log.With(slog.String("service", "history")),
	}
}

const recordColumns = `id, user_id, session_id, file_url, filename, file_type, file_size,
	file_extension, detection_result, confidence_score, detection_metadata,
	is_file_available, created_at, updated_at`

// Insert creates a record with status pending. Ownership is exclusive-or:
// an authenticated user id wins, an anonymous call gets its session id,
// and when neither is present a temporary session id is synthesized so the
// row never ends up ownerless.
func (s *Service) Insert(ctx context.Context, input InsertInput) (Record, error) {
	userID := strings.TrimSpace(input.UserID)
	sessionID := strings.TrimSpace(input.SessionID)
	if userID != "" {
		sessionID = ""
	} else if sessionID == "" {
		sessionID = classify.TempSessionID()
	}

	extension := input.FileExtension
	if extension == "" {
		extension = "unknown"
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO detection_history (
			user_id, session_id, file_url, filename, file_type, file_size,
			file_extension, detection_result, confidence_score, detection_metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, '{}'::jsonb)
		RETURNING `+recordColumns,
		nullable(userID), nullable(sessionID), input.FileURL, input.Filename,
		input.FileType, input.FileSize, extension, string(StatusPending), 0)

	record, err := scanRecord(row)
	if err != nil {
		return Record{}, fmt.Errorf("insert detection record: %w", err)
	}
	s.logger.Info("detection record created",
		slog.String("id", record.ID),
		slog.String("file_type", record.FileType),
		slog.String("filename", record.Filename))
	return record, nil
}

// UpdateResult writes the terminal detection outcome. It is the single
// post-insert mutation a record receives.
func (s *Service) UpdateResult(ctx context.Context, id string, status Status, confidence int, metadata map[string]any) error {
	if metadata == nil {
		metadata = map[string]any{}
	}
	metaBytes, err := json.Marshal(metadata)
	if err != nil {
		metaBytes = []byte("{}")
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE detection_history
		SET detection_result = $2, confidence_score = $3,
			detection_metadata = $4, updated_at = now()
		WHERE id = $1`,
		id, string(status), confidence, metaBytes)
	if err != nil {
		return fmt.Errorf("update detection record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Get returns a record by id.
func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRow(ctx, `SELECT `+recordColumns+` FROM detection_history WHERE id = $1`, id)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("get detection record: %w", err)
	}
	return record, nil
}

// ListByUser returns a user's records, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Record, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+recordColumns+` FROM detection_history
		WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

// ListBySession returns an anonymous session's records, newest first.
func (s *Service) ListBySession(ctx context.Context, sessionID string) ([]Record, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+recordColumns+` FROM detection_history
		WHERE user_id IS NULL AND session_id = $1 ORDER BY created_at DESC`, sessionID)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

// MarkStalePending flips pending records older than maxAge to error so
// history reads never show permanently-pending rows.
func (s *Service) MarkStalePending(ctx context.Context, maxAge time.Duration) (int64, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE detection_history
		SET detection_result = $1,
			detection_metadata = detection_metadata || '{"error": "detection never completed"}'::jsonb,
			updated_at = now()
		WHERE detection_result = $2 AND created_at < now() - $3::interval`,
		string(StatusError), string(StatusPending),
		fmt.Sprintf("%d seconds", int(maxAge.Seconds())))
	if err != nil {
		return 0, fmt.Errorf("mark stale pending: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanRecord(row pgx.Row) (Record, error) {
	var (
		record    Record
		userID    *string
		sessionID *string
		metaBytes []byte
		status    string
	)
	err := row.Scan(&record.ID, &userID, &sessionID, &record.FileURL,
		&record.Filename, &record.FileType, &record.FileSize,
		&record.FileExtension, &status, &record.Confidence, &metaBytes,
		&record.FileAvailable, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return Record{}, err
	}
	if userID != nil {
		record.UserID = *userID
	}
	if sessionID != nil {
		record.SessionID = *sessionID
	}
	record.Status = Status(status)
	if len(metaBytes) > 0 {
		_ = json.Unmarshal(metaBytes, &record.Metadata)
	}
	return record, nil
}

func scanRecords(rows pgx.Rows) ([]Record, error) {
	defer rows.Close()
	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func nullable(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

package dataport

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/core/events"
)

type ExportRepository interface {
	ExportAll(ctx context.Context) (*ExportData, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type ServiceAPI interface {
	Export(ctx context.Context) (*ExportDocument, error)
	Import(ctx context.Context, body []byte, actor *internal.CurrentUser) (*Result, error)
}

type Service struct {
	exporter  ExportRepository
	pipeline  *Pipeline
	publisher EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(exporter ExportRepository, pipeline *Pipeline, publisher EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		exporter:  exporter,
		pipeline:  pipeline,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) Export(ctx context.Context) (*ExportDocument, error) {
	data, err := s.exporter.ExportAll(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to export data", err)
	}
	return &ExportDocument{Version: FormatVersion, ExportedAt: s.now().UTC(), Data: *data}, nil
}

// Import accepts a full export document or just its data object.
func (s *Service) Import(ctx context.Context, body []byte, actor *internal.CurrentUser) (*Result, error) {
	data, err := ParseImport(body)
	if err != nil {
		return nil, err
	}

	result, err := s.pipeline.Run(ctx, data)
	if err != nil {
		return nil, internal.NewInternalError("data import failed", err)
	}

	var actorID int64
	if actor != nil {
		actorID = actor.ID
	}
	s.logger.InfoContext(ctx, "data import finished",
		"imported", result.Imported,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"user_id", actorID)

	if s.publisher != nil {
		event := events.NewDataImportedEvent(result.Imported, result.Updated, result.Skipped, actorID)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.WarnContext(ctx, "failed to publish data.imported", "error", err)
		}
	}
	return result, nil
}

func ParseImport(body []byte) (ImportData, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, internal.NewValidationError("import document is empty", internal.ErrCodeValidationFailed)
	}

	var envelope struct {
		Data ImportData `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, internal.NewValidationError("import document must be a JSON object of entity arrays", internal.ErrCodeValidationFailed)
	}
	if envelope.Data != nil {
		return envelope.Data, nil
	}

	var bare map[string]json.RawMessage
	if err := json.Unmarshal(body, &bare); err != nil {
		return nil, internal.NewValidationError("import document must be a JSON object", internal.ErrCodeValidationFailed)
	}
	data := ImportData{}
	for name, raw := range bare {
		if name == "version" || name == "exportedAt" {
			continue
		}
		var records []json.RawMessage
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, internal.NewValidationFieldError(name, name+" must be an array", internal.ErrCodeValidationFailed)
		}
		data[name] = records
	}
	return data, nil
}

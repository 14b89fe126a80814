package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/agency-ops/internal"
	notificationDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/notification"
)

type RepositoryAPI interface {
	GetTelegramConfig(ctx context.Context) (*notificationDatamodel.TelegramConfig, error)
	SaveTelegramConfig(ctx context.Context, c *notificationDatamodel.TelegramConfig) error
	ListChatIDs(ctx context.Context, activeOnly bool) ([]*notificationDatamodel.TelegramChatID, error)
	GetChatID(ctx context.Context, id int64) (*notificationDatamodel.TelegramChatID, error)
	FindChatID(ctx context.Context, chatID string) (*notificationDatamodel.TelegramChatID, error)
	CreateChatID(ctx context.Context, c *notificationDatamodel.TelegramChatID) error
	DeleteChatID(ctx context.Context, id int64) error
	GetEmailConfig(ctx context.Context) (*notificationDatamodel.EmailConfig, error)
	SaveEmailConfig(ctx context.Context, c *notificationDatamodel.EmailConfig) error
}

type ServiceAPI interface {
	GetTelegramConfig(ctx context.Context) (*TelegramConfigResponse, error)
	UpdateTelegramConfig(ctx context.Context, dto TelegramConfigDTO) (*TelegramConfigResponse, error)
	ListChatIDs(ctx context.Context) ([]*notificationDatamodel.TelegramChatID, error)
	AddChatID(ctx context.Context, dto ChatIDDTO) (*notificationDatamodel.TelegramChatID, error)
	DeleteChatID(ctx context.Context, id int64) error
	SendTelegramTest(ctx context.Context, dto TestMessageDTO) (*TelegramTestResult, error)
	GetEmailConfig(ctx context.Context) (*EmailConfigResponse, error)
	UpdateEmailConfig(ctx context.Context, dto EmailConfigDTO) (*EmailConfigResponse, error)
	SendEmailTest(ctx context.Context, dto TestMessageDTO) (*EmailTestResult, error)
}

type Service struct {
	repo     RepositoryAPI
	telegram TelegramSender
	email    EmailSender
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, telegram TelegramSender, email EmailSender, logger *slog.Logger) *Service {
	return &Service{repo: repo, telegram: telegram, email: email, logger: logger}
}

// ----------------- TELEGRAM -----------------

func (s *Service) GetTelegramConfig(ctx context.Context) (*TelegramConfigResponse, error) {
	cfg, err := s.repo.GetTelegramConfig(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to load telegram config", err)
	}
	resp := toTelegramResponse(cfg)
	return &resp, nil
}

// UpdateTelegramConfig ignores a bot token that still carries the read mask.
func (s *Service) UpdateTelegramConfig(ctx context.Context, dto TelegramConfigDTO) (*TelegramConfigResponse, error) {
	cfg, err := s.repo.GetTelegramConfig(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to load telegram config", err)
	}
	if cfg == nil {
		cfg = &notificationDatamodel.TelegramConfig{}
	}
	if dto.BotToken != nil && !isMasked(*dto.BotToken) {
		cfg.BotToken = strings.TrimSpace(*dto.BotToken)
	}
	if dto.IsEnabled != nil {
		cfg.IsEnabled = *dto.IsEnabled
	}
	if err := s.repo.SaveTelegramConfig(ctx, cfg); err != nil {
		return nil, internal.NewInternalError("failed to save telegram config", err)
	}
	s.logger.InfoContext(ctx, "telegram config updated", "enabled", cfg.IsEnabled, "has_token", cfg.BotToken != "")
	resp := toTelegramResponse(cfg)
	return &resp, nil
}

func (s *Service) ListChatIDs(ctx context.Context) ([]*notificationDatamodel.TelegramChatID, error) {
	chats, err := s.repo.ListChatIDs(ctx, false)
	if err != nil {
		return nil, internal.NewInternalError("failed to list chat ids", err)
	}
	return chats, nil
}

func (s *Service) AddChatID(ctx context.Context, dto ChatIDDTO) (*notificationDatamodel.TelegramChatID, error) {
	dto.ChatID = strings.TrimSpace(dto.ChatID)
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	existing, err := s.repo.FindChatID(ctx, dto.ChatID)
	if err != nil {
		return nil, internal.NewInternalError("failed to check chat id", err)
	}
	if existing != nil {
		return nil, internal.NewConflictError(fmt.Sprintf("chat id %s is already registered", dto.ChatID), internal.ErrCodeDuplicate)
	}

	chat := &notificationDatamodel.TelegramChatID{ChatID: dto.ChatID, Name: dto.Name, IsActive: true}
	if dto.IsActive != nil {
		chat.IsActive = *dto.IsActive
	}
	if err := s.repo.CreateChatID(ctx, chat); err != nil {
		return nil, internal.NewInternalError("failed to add chat id", err)
	}
	return chat, nil
}

func (s *Service) DeleteChatID(ctx context.Context, id int64) error {
	chat, err := s.repo.GetChatID(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to load chat id", err)
	}
	if chat == nil {
		return internal.NewNotFoundError("chat id not found", internal.ErrCodeNotFound)
	}
	if err := s.repo.DeleteChatID(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete chat id", err)
	}
	return nil
}

// SendTelegramTest delivers synchronously so the caller sees each chat's outcome.
// It works while notifications are disabled so a token can be checked first.
func (s *Service) SendTelegramTest(ctx context.Context, dto TestMessageDTO) (*TelegramTestResult, error) {
	cfg, err := s.repo.GetTelegramConfig(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to load telegram config", err)
	}
	if cfg == nil || cfg.BotToken == "" {
		return nil, internal.NewValidationError("telegram bot token is not configured", internal.ErrCodeNotificationDisabled)
	}
	chats, err := s.repo.ListChatIDs(ctx, true)
	if err != nil {
		return nil, internal.NewInternalError("failed to list chat ids", err)
	}
	if len(chats) == 0 {
		return nil, internal.NewValidationError("no active telegram chat ids", internal.ErrCodeNotificationDisabled)
	}

	result := &TelegramTestResult{Results: make([]ChatResult, 0, len(chats))}
	text := dto.text()
	for _, chat := range chats {
		r := ChatResult{ChatID: chat.ChatID, Name: chat.Name, Success: true}
		if err := s.telegram.SendMessage(ctx, cfg.BotToken, chat.ChatID, text); err != nil {
			r.Success = false
			r.Error = err.Error()
			result.Failed++
		} else {
			result.Sent++
		}
		result.Results = append(result.Results, r)
	}
	return result, nil
}

// ----------------- EMAIL -----------------

func (s *Service) GetEmailConfig(ctx context.Context) (*EmailConfigResponse, error) {
	cfg, err := s.repo.GetEmailConfig(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to load email config", err)
	}
	resp := toEmailResponse(cfg)
	return &resp, nil
}

func (s *Service) UpdateEmailConfig(ctx context.Context, dto EmailConfigDTO) (*EmailConfigResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	cfg, err := s.repo.GetEmailConfig(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to load email config", err)
	}
	if cfg == nil {
		cfg = &notificationDatamodel.EmailConfig{}
	}
	if dto.APIKey != nil && !isMasked(*dto.APIKey) {
		cfg.APIKey = strings.TrimSpace(*dto.APIKey)
	}
	if dto.FromAddress != nil {
		cfg.FromAddress = strings.TrimSpace(*dto.FromAddress)
	}
	if dto.Recipients != nil {
		cfg.Recipients = strings.Join(dto.Recipients, ",")
	}
	if dto.IsEnabled != nil {
		cfg.IsEnabled = *dto.IsEnabled
	}
	if err := s.repo.SaveEmailConfig(ctx, cfg); err != nil {
		return nil, internal.NewInternalError("failed to save email config", err)
	}
	s.logger.InfoContext(ctx, "email config updated", "enabled", cfg.IsEnabled, "recipients", len(SplitRecipients(cfg.Recipients)))
	resp := toEmailResponse(cfg)
	return &resp, nil
}

func (s *Service) SendEmailTest(ctx context.Context, dto TestMessageDTO) (*EmailTestResult, error) {
	cfg, err := s.repo.GetEmailConfig(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to load email config", err)
	}
	if cfg == nil || cfg.APIKey == "" || cfg.FromAddress == "" {
		return nil, internal.NewValidationError("email API key and sender address are not configured", internal.ErrCodeNotificationDisabled)
	}
	recipients := SplitRecipients(cfg.Recipients)
	if len(recipients) == 0 {
		return nil, internal.NewValidationError("no email recipients configured", internal.ErrCodeNotificationDisabled)
	}

	email := Email{From: cfg.FromAddress, To: recipients, Subject: "Test notification", Text: dto.text()}
	if err := s.email.SendEmail(ctx, cfg.APIKey, email); err != nil {
		return nil, internal.NewExternalError("failed to send test email", err)
	}
	return &EmailTestResult{Recipients: recipients, Success: true}, nil
}

// ----------------- DELIVERY -----------------

// Deliver sends msg to every enabled channel. It is the dispatcher's
// DeliverFunc; a disabled or unconfigured channel is skipped silently.
func (s *Service) Deliver(ctx context.Context, msg Message) error {
	var failures []string

	if err := s.deliverTelegram(ctx, msg); err != nil {
		failures = append(failures, err.Error())
	}
	if err := s.deliverEmail(ctx, msg); err != nil {
		failures = append(failures, err.Error())
	}

	if len(failures) > 0 {
		return fmt.Errorf("notification delivery: %s", strings.Join(failures, "; "))
	}
	return nil
}

func (s *Service) deliverTelegram(ctx context.Context, msg Message) error {
	cfg, err := s.repo.GetTelegramConfig(ctx)
	if err != nil {
		return fmt.Errorf("load telegram config: %w", err)
	}
	if cfg == nil || !cfg.IsEnabled || cfg.BotToken == "" {
		return nil
	}
	chats, err := s.repo.ListChatIDs(ctx, true)
	if err != nil {
		return fmt.Errorf("list chat ids: %w", err)
	}

	text := msg.Text
	if msg.Subject != "" {
		text = msg.Subject + "\n" + msg.Text
	}
	failed := 0
	for _, chat := range chats {
		if err := s.telegram.SendMessage(ctx, cfg.BotToken, chat.ChatID, text); err != nil {
			s.logger.WarnContext(ctx, "telegram delivery failed", "chat_id", chat.ChatID, "error", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("telegram: %d of %d chats failed", failed, len(chats))
	}
	return nil
}

func (s *Service) deliverEmail(ctx context.Context, msg Message) error {
	cfg, err := s.repo.GetEmailConfig(ctx)
	if err != nil {
		return fmt.Errorf("load email config: %w", err)
	}
	if cfg == nil || !cfg.IsEnabled || cfg.APIKey == "" || cfg.FromAddress == "" {
		return nil
	}
	recipients := SplitRecipients(cfg.Recipients)
	if len(recipients) == 0 {
		return nil
	}
	email := Email{From: cfg.FromAddress, To: recipients, Subject: msg.Subject, Text: msg.Text}
	if err := s.email.SendEmail(ctx, cfg.APIKey, email); err != nil {
		return fmt.Errorf("email: %w", err)
	}
	return nil
}

package notification

import (
	"strings"
	"time"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/core/common/validation"
	notificationDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/notification"
)

const DefaultTestMessage = "Test notification from agency-ops"

// Message is one outbound notification fanned out to every enabled channel.
type Message struct {
	Subject string
	Text    string
}

type TelegramConfigDTO struct {
	BotToken  *string `json:"botToken"`
	IsEnabled *bool   `json:"isEnabled"`
}

type TelegramConfigResponse struct {
	BotToken  string     `json:"botToken"`
	HasToken  bool       `json:"hasToken"`
	IsEnabled bool       `json:"isEnabled"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

func toTelegramResponse(c *notificationDatamodel.TelegramConfig) TelegramConfigResponse {
	if c == nil {
		return TelegramConfigResponse{}
	}
	updated := c.UpdatedAt
	return TelegramConfigResponse{
		BotToken:  MaskSecret(c.BotToken),
		HasToken:  c.BotToken != "",
		IsEnabled: c.IsEnabled,
		UpdatedAt: &updated,
	}
}

type ChatIDDTO struct {
	ChatID   string `json:"chatId"`
	Name     string `json:"name"`
	IsActive *bool  `json:"isActive"`
}

func (d ChatIDDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("chatId", d.ChatID).Required().MaxLength(64)
	v.Field("name", d.Name).MaxLength(100)
	return v.Validate()
}

type TestMessageDTO struct {
	Message string `json:"message"`
}

func (d TestMessageDTO) text() string {
	if strings.TrimSpace(d.Message) == "" {
		return DefaultTestMessage
	}
	return d.Message
}

// ChatResult reports delivery to a single Telegram chat.
type ChatResult struct {
	ChatID  string `json:"chatId"`
	Name    string `json:"name,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type TelegramTestResult struct {
	Sent    int          `json:"sent"`
	Failed  int          `json:"failed"`
	Results []ChatResult `json:"results"`
}

type EmailConfigDTO struct {
	APIKey      *string  `json:"apiKey"`
	FromAddress *string  `json:"fromAddress"`
	Recipients  []string `json:"recipients"`
	IsEnabled   *bool    `json:"isEnabled"`
}

func (d EmailConfigDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	if d.FromAddress != nil {
		v.Field("fromAddress", *d.FromAddress).Email()
	}
	for _, r := range d.Recipients {
		v.Field("recipients", r).Required().Email()
	}
	return v.Validate()
}

type EmailConfigResponse struct {
	APIKey      string     `json:"apiKey"`
	HasAPIKey   bool       `json:"hasApiKey"`
	FromAddress string     `json:"fromAddress"`
	Recipients  []string   `json:"recipients"`
	IsEnabled   bool       `json:"isEnabled"`
	UpdatedAt   *time.Time `json:"updatedAt"`
}

func toEmailResponse(c *notificationDatamodel.EmailConfig) EmailConfigResponse {
	if c == nil {
		return EmailConfigResponse{Recipients: []string{}}
	}
	updated := c.UpdatedAt
	return EmailConfigResponse{
		APIKey:      MaskSecret(c.APIKey),
		HasAPIKey:   c.APIKey != "",
		FromAddress: c.FromAddress,
		Recipients:  SplitRecipients(c.Recipients),
		IsEnabled:   c.IsEnabled,
		UpdatedAt:   &updated,
	}
}

type EmailTestResult struct {
	Recipients []string `json:"recipients"`
	Success    bool     `json:"success"`
}

// MaskSecret keeps the last four characters of a credential.
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", 8) + s[len(s)-4:]
}

func isMasked(s string) bool {
	return strings.HasPrefix(s, "********")
}

func SplitRecipients(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

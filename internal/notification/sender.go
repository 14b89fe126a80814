package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type TelegramSender interface {
	SendMessage(ctx context.Context, token, chatID, text string) error
}

type EmailSender interface {
	SendEmail(ctx context.Context, apiKey string, email Email) error
}

type Email struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

// TelegramClient calls the Bot API sendMessage method.
type TelegramClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewTelegramClient(baseURL string, timeout time.Duration) *TelegramClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TelegramClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *TelegramClient) SendMessage(ctx context.Context, token, chatID, text string) error {
	payload := map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, token)

	resp, err := postJSON(ctx, c.httpClient, url, "", payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var apiResponse struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
		}
		return fmt.Errorf("failed to decode telegram response: %w", err)
	}
	if !apiResponse.OK || resp.StatusCode >= http.StatusBadRequest {
		if apiResponse.Description != "" {
			return fmt.Errorf("telegram API error: %s", apiResponse.Description)
		}
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}
	return nil
}

// EmailClient posts to a Resend-compatible /emails endpoint.
type EmailClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewEmailClient(baseURL string, timeout time.Duration) *EmailClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &EmailClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *EmailClient) SendEmail(ctx context.Context, apiKey string, email Email) error {
	resp, err := postJSON(ctx, c.httpClient, c.baseURL+"/emails", apiKey, email)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("email API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

func postJSON(ctx context.Context, client *http.Client, url, bearer string, payload interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	return resp, nil
}

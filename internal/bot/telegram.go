package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Telegram is a minimal Bot API client: long-poll updates, send replies,
// download voice files.
type Telegram struct {
	apiBase  string
	fileBase string
	client   *http.Client
}

// NewTelegram creates a client for the public Bot API.
func NewTelegram(token string) *Telegram {
	return NewTelegramWithBase("https://api.telegram.org", token)
}

// NewTelegramWithBase allows pointing the client at a different API host.
func NewTelegramWithBase(base, token string) *Telegram {
	base = strings.TrimRight(base, "/")
	return &Telegram{
		apiBase:  base + "/bot" + token,
		fileBase: base + "/file/bot" + token,
		// Timeout must exceed the long-poll window.
		client: &http.Client{Timeout: 70 * time.Second},
	}
}

// Update is one incoming event from getUpdates.
type Update struct {
	UpdateID int64            `json:"update_id"`
	Message  *IncomingMessage `json:"message"`
}

// IncomingMessage carries the fields the bot consumes.
type IncomingMessage struct {
	MessageID int64  `json:"message_id"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
	Voice     *Voice `json:"voice"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type Voice struct {
	FileID   string `json:"file_id"`
	Duration int    `json:"duration"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

// GetUpdates long-polls for updates after offset.
func (t *Telegram) GetUpdates(ctx context.Context, offset int64, timeoutSeconds int) ([]Update, error) {
	params := url.Values{}
	params.Set("offset", strconv.FormatInt(offset, 10))
	params.Set("timeout", strconv.Itoa(timeoutSeconds))
	params.Set("allowed_updates", `["message"]`)

	raw, err := t.call(ctx, "getUpdates", params)
	if err != nil {
		return nil, err
	}
	var updates []Update
	if err := json.Unmarshal(raw, &updates); err != nil {
		return nil, fmt.Errorf("parse updates: %w", err)
	}
	return updates, nil
}

// SendMessage sends a plain-text reply to a chat.
func (t *Telegram) SendMessage(ctx context.Context, chatID int64, text string) error {
	params := url.Values{}
	params.Set("chat_id", strconv.FormatInt(chatID, 10))
	params.Set("text", text)
	_, err := t.call(ctx, "sendMessage", params)
	return err
}

// DownloadFile resolves a file id and downloads its content.
func (t *Telegram) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	params := url.Values{}
	params.Set("file_id", fileID)
	raw, err := t.call(ctx, "getFile", params)
	if err != nil {
		return nil, err
	}
	var file struct {
		FilePath string `json:"file_path"`
	}
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse getFile response: %w", err)
	}
	if file.FilePath == "" {
		return nil, fmt.Errorf("getFile returned no file_path for %s", fileID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.fileBase+"/"+file.FilePath, nil)
	if err != nil {
		return nil, err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}

func (t *Telegram) call(ctx context.Context, method string, params url.Values) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.apiBase+"/"+method, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed apiResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("telegram %s: parse response: %w", method, err)
	}
	if !parsed.OK {
		return nil, fmt.Errorf("telegram %s failed: %s", method, parsed.Description)
	}
	return parsed.Result, nil
}

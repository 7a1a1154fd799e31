package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Command is a parsed chat command such as "!daily" or "/safe@OskoFlowBot".
type Command struct {
	Name   string // lower-case, without prefix or bot mention
	Args   []string
	UserID int64
	ChatID string
}

// CommandHandler is called for every recognised command.
type CommandHandler func(ctx context.Context, cmd Command)

// telegramUpdate represents a Telegram update from long polling.
type telegramUpdate struct {
	UpdateID int `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		From *struct {
			ID int64 `json:"id"`
		} `json:"from"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

// ParseCommand parses message text into a Command. It accepts both the "!cmd"
// and "/cmd[@bot]" forms and reports false for anything else.
func ParseCommand(text string) (Command, bool) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 {
		return Command{}, false
	}
	head := fields[0]
	if len(head) < 2 || (head[0] != '!' && head[0] != '/') {
		return Command{}, false
	}
	name := head[1:]
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	if name == "" {
		return Command{}, false
	}
	return Command{Name: strings.ToLower(name), Args: fields[1:]}, true
}

// StartPolling begins long-polling for Telegram commands. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	offset := 0
	client := t.pollClient()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("telegram polling stopped")
			return
		default:
		}

		updates, err := t.getUpdates(ctx, client, offset)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Msg("polling request failed")
			sleepCtx(ctx, 5*time.Second)
			continue
		}

		for _, update := range updates {
			offset = update.UpdateID + 1
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			cmd, ok := ParseCommand(update.Message.Text)
			if !ok {
				continue
			}
			if update.Message.From != nil {
				cmd.UserID = update.Message.From.ID
			}
			cmd.ChatID = strconv.FormatInt(update.Message.Chat.ID, 10)
			log.Info().Str("command", cmd.Name).Int64("user_id", cmd.UserID).Str("chat_id", cmd.ChatID).Msg("received command")
			handler(ctx, cmd)
		}
	}
}

// pollClient outlives the 30s long-poll timeout and shares the send transport,
// so a configured proxy applies to getUpdates too.
func (t *TelegramNotifier) pollClient() *http.Client {
	var transport http.RoundTripper
	if t.Client != nil {
		transport = t.Client.Transport
	}
	return &http.Client{Timeout: 35 * time.Second, Transport: transport}
}

func (t *TelegramNotifier) getUpdates(ctx context.Context, client *http.Client, offset int) ([]telegramUpdate, error) {
	apiURL := fmt.Sprintf("%s?offset=%d&timeout=30", t.method("getUpdates"), offset)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create polling request: %w", redactURL(err))
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get updates: %w", redactURL(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read polling response: %w", err)
	}
	var result struct {
		OK     bool             `json:"ok"`
		Result []telegramUpdate `json:"result"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode polling response: %w", err)
	}
	if !result.OK {
		return nil, fmt.Errorf("telegram API error: status %d", resp.StatusCode)
	}
	return result.Result, nil
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

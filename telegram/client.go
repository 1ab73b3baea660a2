package telegram

import (
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mroshb/quizbot/internal/quiz"
	"github.com/mroshb/quizbot/pkg/logger"
)

// API is the subset of *tgbotapi.BotAPI used to talk to chats.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Client delivers engine output to Telegram.
type Client struct {
	api        API
	maxRetries int
	backoff    time.Duration
}

func NewClient(api API) *Client {
	return &Client{
		api:        api,
		maxRetries: 3,
		backoff:    time.Second,
	}
}

// SendMessage sends an HTML message, with answer buttons when choices are given.
func (c *Client) SendMessage(chatID int64, text string, choices []quiz.Choice) (quiz.MessageRef, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if len(choices) > 0 {
		msg.ReplyMarkup = AnswerKeyboard(choices)
	}

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		sent, err := c.api.Send(msg)
		if err == nil {
			return quiz.MessageRef(sent.MessageID), nil
		}
		lastErr = err
		logger.Error("Failed to send message", "error", err, "chat_id", chatID, "attempt", i+1)

		if !isNetworkError(err) {
			break
		}
		time.Sleep(time.Duration(i+1) * c.backoff)
	}
	return 0, lastErr
}

// RevokeChoices strips the answer buttons from a sent message.
func (c *Client) RevokeChoices(chatID int64, ref quiz.MessageRef) error {
	if ref == 0 {
		return nil
	}
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, int(ref), EmptyKeyboard())
	_, err := c.api.Request(edit)
	return err
}

// Acknowledge answers a callback query; non-empty text is shown as a toast.
func (c *Client) Acknowledge(queryID, text string) error {
	callback := tgbotapi.NewCallback(queryID, text)
	callback.ShowAlert = false
	_, err := c.api.Request(callback)
	return err
}

func isNetworkError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "network is unreachable")
}

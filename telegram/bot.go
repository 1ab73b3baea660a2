package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mroshb/quizbot/internal/config"
	"github.com/mroshb/quizbot/internal/middleware"
	"github.com/mroshb/quizbot/internal/quiz"
	"github.com/mroshb/quizbot/internal/security"
	"github.com/mroshb/quizbot/pkg/errors"
	"github.com/mroshb/quizbot/pkg/logger"
)

// Commands understood in chats. Aliases map to the same action.
const (
	CmdHost        = "host"
	CmdJoin        = "gabung"
	CmdJoinAlias   = "join"
	CmdStart       = "startgame"
	CmdStartAlias  = "start_game"
	CmdLeaders     = "juara"
	CmdLeaderAlias = "leaderboard"
	CmdHelp        = "help"
	CmdBotStart    = "start"
)

type Bot struct {
	api     *tgbotapi.BotAPI
	config  *config.Config
	client  *Client
	engine  *quiz.Engine
	limiter *middleware.RateLimiter

	// Worker pool; updates for one chat always land on the same worker.
	workerChans []chan tgbotapi.Update
	wg          sync.WaitGroup
}

// NewAPI authorizes against the Bot API with the configured token.
func NewAPI(cfg *config.Config) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	if cfg.AppEnv == "development" {
		api.Debug = true
	}

	logger.Info("Authorized on account", "username", api.Self.UserName)
	return api, nil
}

func NewBot(cfg *config.Config, api *tgbotapi.BotAPI, client *Client, engine *quiz.Engine, limiter *middleware.RateLimiter) *Bot {
	workers := cfg.WorkerCount
	if workers <= 0 {
		workers = 1
	}
	return &Bot{
		api:         api,
		config:      cfg,
		client:      client,
		engine:      engine,
		limiter:     limiter,
		workerChans: make([]chan tgbotapi.Update, workers),
	}
}

// Run polls for updates until ctx is done, then drains the workers.
func (b *Bot) Run(ctx context.Context) error {
	// In-flight updates finish even while shutting down.
	workCtx := context.WithoutCancel(ctx)
	for i := range b.workerChans {
		b.workerChans[i] = make(chan tgbotapi.Update, 100)
		b.wg.Add(1)
		go b.startWorker(workCtx, b.workerChans[i])
	}
	defer func() {
		for _, ch := range b.workerChans {
			close(ch)
		}
		b.wg.Wait()
		logger.Info("Workers drained")
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	for {
		logger.Info("Starting update listener...")
		updates := b.api.GetUpdatesChan(u)

		if stopped := b.listen(ctx, updates); stopped {
			return nil
		}

		logger.Warn("Update channel closed. Restarting in 5 seconds...")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(5 * time.Second):
		}
	}
}

// listen routes updates to workers. It reports true when ctx ended.
func (b *Bot) listen(ctx context.Context, updates tgbotapi.UpdatesChannel) bool {
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			logger.Info("Bot stopped receiving updates")
			return true
		case update, ok := <-updates:
			if !ok {
				return ctx.Err() != nil
			}
			b.route(update)
		}
	}
}

func (b *Bot) route(update tgbotapi.Update) {
	chatID, ok := updateChatID(update)
	if !ok {
		return
	}
	b.workerChans[workerIndex(chatID, len(b.workerChans))] <- update
}

func updateChatID(update tgbotapi.Update) (int64, bool) {
	switch {
	case update.Message != nil && update.Message.Chat != nil:
		return update.Message.Chat.ID, true
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil:
		return update.CallbackQuery.Message.Chat.ID, true
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		return update.CallbackQuery.From.ID, true
	}
	return 0, false
}

func workerIndex(chatID int64, workers int) int {
	idx := chatID % int64(workers)
	if idx < 0 {
		idx = -idx
	}
	return int(idx)
}

func (b *Bot) startWorker(ctx context.Context, ch chan tgbotapi.Update) {
	defer b.wg.Done()
	for update := range ch {
		b.handleUpdate(ctx, update)
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			err := errors.New(errors.ErrCodeInternalError, fmt.Sprint(r))
			logger.Error("Panic in handleUpdate", "error", err, "update_id", update.UpdateID)
		}
	}()

	if update.Message != nil {
		b.handleMessage(ctx, update.Message)
	} else if update.CallbackQuery != nil {
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.From == nil || message.Chat == nil || !message.IsCommand() {
		return
	}

	userID := message.From.ID
	if err := b.allow(userID); err != nil {
		logger.Warn("Command dropped", "user_id", userID, "chat_id", message.Chat.ID, "command", message.Command(), "error", err)
		return
	}

	logger.Debug("Received command",
		"command", message.Command(),
		"chat_id", message.Chat.ID,
		"chat_type", message.Chat.Type,
		"user_id", userID,
	)

	cmd := quiz.Command{
		ChatID:      message.Chat.ID,
		ChatKind:    quiz.ChatKind(message.Chat.Type),
		UserID:      userID,
		DisplayName: DisplayName(message.From),
	}

	var err error
	switch message.Command() {
	case CmdHost:
		err = b.engine.CreateRoom(ctx, cmd)
	case CmdJoin, CmdJoinAlias:
		err = b.engine.Join(ctx, cmd)
	case CmdStart, CmdStartAlias:
		err = b.engine.Start(ctx, cmd)
	case CmdLeaders, CmdLeaderAlias:
		err = b.engine.ShowLeaderboard(ctx, cmd)
	case CmdHelp, CmdBotStart:
		if _, sendErr := b.client.SendMessage(cmd.ChatID, b.engine.Messages().Help, nil); sendErr != nil {
			logger.Error("Failed to send help", "chat_id", cmd.ChatID, "error", sendErr)
		}
	default:
		return
	}

	if err != nil {
		// The engine already told the chat; this is for the operator.
		logger.Debug("Command rejected", "command", message.Command(), "chat_id", cmd.ChatID, "user_id", userID, "error", err)
	}
}

func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.From == nil {
		return
	}

	roomID, option, ok := ParseAnswer(query.Data)
	if !ok || query.Message == nil || query.Message.Chat == nil {
		logger.Debug("Ignoring unknown callback", "data", query.Data, "user_id", query.From.ID)
		b.acknowledge(query.ID, "")
		return
	}

	if err := b.allow(query.From.ID); err != nil {
		logger.Warn("Selection dropped", "user_id", query.From.ID, "chat_id", query.Message.Chat.ID, "error", err)
		b.acknowledge(query.ID, security.PlainText(b.engine.Messages().RateLimited))
		return
	}

	outcome := b.engine.SubmitAnswer(ctx, quiz.Selection{
		ID:          query.ID,
		ChatID:      query.Message.Chat.ID,
		UserID:      query.From.ID,
		DisplayName: DisplayName(query.From),
		RoomID:      roomID,
		Option:      option,
		Message:     quiz.MessageRef(query.Message.MessageID),
	})
	logger.Debug("Answer handled",
		"chat_id", query.Message.Chat.ID,
		"user_id", query.From.ID,
		"option", option,
		"outcome", outcome.String(),
	)
}

// allow charges one request to the user's rate limit window.
func (b *Bot) allow(userID int64) error {
	if !b.limiter.CheckUserLimit(userID) {
		return errors.New(errors.ErrCodeRateLimitExceeded, fmt.Sprintf("user %d is over the request limit", userID))
	}
	if b.limiter.GetUserRemaining(userID) == 0 {
		logger.Debug("Rate limit window used up", "user_id", userID)
	}
	return nil
}

func (b *Bot) acknowledge(queryID, text string) {
	if err := b.client.Acknowledge(queryID, text); err != nil {
		logger.Error("Failed to answer callback query", "error", err, "query_id", queryID)
	}
}

// DisplayName is "@username" when the user has one, else their first name.
func DisplayName(user *tgbotapi.User) string {
	if user == nil {
		return ""
	}
	if user.UserName != "" {
		return "@" + user.UserName
	}
	return strings.TrimSpace(user.FirstName)
}

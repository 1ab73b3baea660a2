package telegram

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mroshb/quizbot/internal/config"
	"github.com/mroshb/quizbot/internal/ledger"
	"github.com/mroshb/quizbot/internal/middleware"
	"github.com/mroshb/quizbot/internal/questions"
	"github.com/mroshb/quizbot/internal/quiz"
	apperrors "github.com/mroshb/quizbot/pkg/errors"
)

type fakeAPI struct {
	mu       sync.Mutex
	nextID   int
	messages []tgbotapi.MessageConfig
	edits    []tgbotapi.EditMessageReplyMarkupConfig
	answers  []tgbotapi.CallbackConfig
	sendErrs []error
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sendErrs) > 0 {
		err := f.sendErrs[0]
		f.sendErrs = f.sendErrs[1:]
		return tgbotapi.Message{}, err
	}
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.messages = append(f.messages, msg)
	}
	f.nextID++
	return tgbotapi.Message{MessageID: f.nextID}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := c.(type) {
	case tgbotapi.EditMessageReplyMarkupConfig:
		f.edits = append(f.edits, v)
	case tgbotapi.CallbackConfig:
		f.answers = append(f.answers, v)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) lastText() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		return ""
	}
	return f.messages[len(f.messages)-1].Text
}

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		room   int64
		option int
		ok     bool
	}{
		{"valid", "ans|-100123|2", -100123, 2, true},
		{"roundtrip", EncodeAnswer(-42, 3), -42, 3, true},
		{"wrong prefix", "btn|1|2", 0, 0, false},
		{"missing part", "ans|1", 0, 0, false},
		{"bad room", "ans|x|1", 0, 0, false},
		{"bad option", "ans|1|y", 0, 0, false},
		{"empty", "", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room, option, ok := ParseAnswer(tt.data)
			if ok != tt.ok || room != tt.room || option != tt.option {
				t.Errorf("ParseAnswer(%q) = (%d, %d, %v), want (%d, %d, %v)",
					tt.data, room, option, ok, tt.room, tt.option, tt.ok)
			}
		})
	}
}

func TestAnswerKeyboard(t *testing.T) {
	choices := []quiz.Choice{
		{Label: "A", RoomID: -1, Option: 0},
		{Label: "B", RoomID: -1, Option: 1},
		{Label: "C", RoomID: -1, Option: 2},
		{Label: "D", RoomID: -1, Option: 3},
	}

	kb := AnswerKeyboard(choices)
	if len(kb.InlineKeyboard) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(kb.InlineKeyboard))
	}
	for _, row := range kb.InlineKeyboard {
		if len(row) != 2 {
			t.Fatalf("expected 2 buttons per row, got %d", len(row))
		}
	}
	btn := kb.InlineKeyboard[1][1]
	if btn.Text != "D" || btn.CallbackData == nil || *btn.CallbackData != "ans|-1|3" {
		t.Errorf("unexpected button %+v", btn)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user *tgbotapi.User
		want string
	}{
		{"username", &tgbotapi.User{UserName: "alice", FirstName: "Alice"}, "@alice"},
		{"first name", &tgbotapi.User{FirstName: " Bob "}, "Bob"},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayName(tt.user); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWorkerIndex(t *testing.T) {
	for _, chatID := range []int64{-100123, -1, 0, 7, 1 << 40} {
		idx := workerIndex(chatID, 10)
		if idx < 0 || idx >= 10 {
			t.Errorf("workerIndex(%d) = %d out of range", chatID, idx)
		}
		if idx != workerIndex(chatID, 10) {
			t.Errorf("workerIndex(%d) is not stable", chatID)
		}
	}
}

func TestClient_SendRetriesNetworkErrors(t *testing.T) {
	api := &fakeAPI{sendErrs: []error{errors.New("read: connection reset by peer")}}
	client := NewClient(api)
	client.backoff = time.Millisecond

	ref, err := client.SendMessage(1, "hello", nil)
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if ref == 0 {
		t.Error("expected a message reference")
	}

	api.sendErrs = []error{errors.New("Bad Request: chat not found")}
	if _, err := client.SendMessage(1, "hello", nil); err == nil {
		t.Error("expected a non-network error to be returned")
	}
}

type botFixture struct {
	bot *Bot
	api *fakeAPI
}

func newBotFixture(t *testing.T, limit int) *botFixture {
	t.Helper()
	cfg := &config.Config{WorkerCount: 2}
	api := &fakeAPI{}
	client := NewClient(api)

	store := ledger.NewFileStore(filepath.Join(t.TempDir(), "scores.json"))
	l := ledger.Open(context.Background(), store)
	bank := questions.NewBank([]questions.Question{
		{Text: "2 + 2?", Options: [4]string{"3", "4", "5", "6"}, Correct: 1},
	})
	engine := quiz.NewEngine(quiz.NewRegistry(), bank, l, client)

	return &botFixture{
		bot: NewBot(cfg, nil, client, engine, middleware.NewRateLimiter(limit, time.Minute)),
		api: api,
	}
}

const groupID int64 = -100555

func command(userID int64, username, text string) tgbotapi.Update {
	name := strings.SplitN(text, " ", 2)[0]
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From:     &tgbotapi.User{ID: userID, UserName: username},
		Chat:     &tgbotapi.Chat{ID: groupID, Type: "supergroup"},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name)}},
	}}
}

func answer(id string, userID int64, username string, messageID int, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   id,
		From: &tgbotapi.User{ID: userID, UserName: username},
		Message: &tgbotapi.Message{
			MessageID: messageID,
			Chat:      &tgbotapi.Chat{ID: groupID, Type: "supergroup"},
		},
		Data: data,
	}}
}

func TestBot_FullRound(t *testing.T) {
	ctx := context.Background()
	f := newBotFixture(t, 100)

	f.bot.handleUpdate(ctx, command(1, "host", "/host@quiz_bot"))
	if !strings.Contains(f.api.lastText(), "Room created") {
		t.Fatalf("expected room created, got %q", f.api.lastText())
	}

	f.bot.handleUpdate(ctx, command(2, "alice", "/gabung"))
	if !strings.Contains(f.api.lastText(), "@alice joined") {
		t.Fatalf("expected join notice, got %q", f.api.lastText())
	}

	f.bot.handleUpdate(ctx, command(1, "host", "/startgame"))
	question := f.api.messages[len(f.api.messages)-1]
	if !strings.Contains(question.Text, "2 + 2?") {
		t.Fatalf("expected the question, got %q", question.Text)
	}
	if question.ParseMode != tgbotapi.ModeHTML {
		t.Errorf("expected HTML parse mode, got %q", question.ParseMode)
	}
	if _, ok := question.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup); !ok {
		t.Fatalf("expected an inline keyboard, got %T", question.ReplyMarkup)
	}
	questionID := f.api.nextID

	f.bot.handleUpdate(ctx, answer("q1", 2, "alice", questionID, EncodeAnswer(groupID, 1)))

	if len(f.api.edits) != 1 || f.api.edits[0].MessageID != questionID {
		t.Errorf("expected buttons removed from message %d, got %+v", questionID, f.api.edits)
	}
	if len(f.api.answers) != 1 || f.api.answers[0].CallbackQueryID != "q1" {
		t.Errorf("expected one callback answer, got %+v", f.api.answers)
	}
	if !strings.Contains(f.api.lastText(), "Quiz finished") {
		t.Errorf("expected the quiz to finish, got %q", f.api.lastText())
	}

	f.bot.handleUpdate(ctx, command(3, "", "/juara"))
	if !strings.Contains(f.api.lastText(), "1. @alice — 1 points") {
		t.Errorf("unexpected leaderboard %q", f.api.lastText())
	}
}

func TestBot_CallbacksAlwaysAnswered(t *testing.T) {
	ctx := context.Background()
	f := newBotFixture(t, 100)

	f.bot.handleUpdate(ctx, answer("u1", 2, "alice", 10, "something_else"))
	f.bot.handleUpdate(ctx, answer("u2", 2, "alice", 10, EncodeAnswer(groupID, 0)))

	if len(f.api.answers) != 2 {
		t.Fatalf("expected 2 callback answers, got %d", len(f.api.answers))
	}
	if f.api.answers[0].Text != "" {
		t.Errorf("unknown callbacks should be answered silently, got %q", f.api.answers[0].Text)
	}
}

func TestBot_RateLimited(t *testing.T) {
	ctx := context.Background()
	f := newBotFixture(t, 1)

	f.bot.handleUpdate(ctx, command(1, "host", "/host"))
	sent := len(f.api.messages)

	f.bot.handleUpdate(ctx, command(1, "host", "/help"))
	if len(f.api.messages) != sent {
		t.Error("rate-limited command should be dropped")
	}

	f.bot.handleUpdate(ctx, answer("r1", 1, "host", 1, EncodeAnswer(groupID, 0)))
	if len(f.api.answers) != 1 || !strings.Contains(f.api.answers[0].Text, "Slow down") {
		t.Fatalf("rate-limited selection should get a notice, got %+v", f.api.answers)
	}
	if f.api.answers[0].ShowAlert {
		t.Error("notices should be shown as a toast, not an alert")
	}
}

func TestBot_Allow(t *testing.T) {
	f := newBotFixture(t, 2)

	for i := 0; i < 2; i++ {
		if err := f.bot.allow(7); err != nil {
			t.Fatalf("allow() #%d error = %v", i+1, err)
		}
	}
	if err := f.bot.allow(7); !apperrors.IsCode(err, apperrors.ErrCodeRateLimitExceeded) {
		t.Errorf("allow() error = %v, want RATE_LIMIT_EXCEEDED", err)
	}
	if err := f.bot.allow(8); err != nil {
		t.Errorf("other users are limited separately, got %v", err)
	}
}

func TestClient_AcknowledgeIsToast(t *testing.T) {
	api := &fakeAPI{}
	if err := NewClient(api).Acknowledge("q9", "Wrong answer"); err != nil {
		t.Fatalf("Acknowledge failed: %v", err)
	}
	if len(api.answers) != 1 || api.answers[0].Text != "Wrong answer" || api.answers[0].ShowAlert {
		t.Errorf("unexpected callback answer %+v", api.answers)
	}
}

func TestBot_IgnoresPlainText(t *testing.T) {
	f := newBotFixture(t, 100)

	f.bot.handleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: 1},
		Chat: &tgbotapi.Chat{ID: groupID, Type: "group"},
		Text: "hello",
	}})
	if len(f.api.messages) != 0 {
		t.Errorf("expected no reply, got %d messages", len(f.api.messages))
	}
}

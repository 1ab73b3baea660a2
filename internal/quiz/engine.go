package quiz

import (
	"context"
	"fmt"
	"strings"

	"github.com/mroshb/quizbot/internal/ledger"
	"github.com/mroshb/quizbot/internal/questions"
	"github.com/mroshb/quizbot/internal/security"
	"github.com/mroshb/quizbot/pkg/errors"
	"github.com/mroshb/quizbot/pkg/logger"
	"github.com/mroshb/quizbot/pkg/utils"
)

// ChatKind is the transport's classification of a chat.
type ChatKind string

const (
	ChatPrivate    ChatKind = "private"
	ChatGroup      ChatKind = "group"
	ChatSupergroup ChatKind = "supergroup"
	ChatChannel    ChatKind = "channel"
)

// IsMultiParty reports whether a quiz can be hosted in the chat.
func (k ChatKind) IsMultiParty() bool {
	return k == ChatGroup || k == ChatSupergroup
}

// Choice is one selectable answer attached to a question message.
type Choice struct {
	Label  string
	RoomID int64
	Option int
}

// Messenger is the outbound side of the chat transport.
type Messenger interface {
	// SendMessage posts text to the chat with optional choices and returns
	// a reference to the sent message.
	SendMessage(chatID int64, text string, choices []Choice) (MessageRef, error)
	// RevokeChoices removes the choices from a sent message.
	RevokeChoices(chatID int64, ref MessageRef) error
	// Acknowledge answers a selection privately. Empty text closes the
	// pending selection without showing anything.
	Acknowledge(selectionID, text string) error
}

// Scoreboard is the ledger surface the engine needs.
type Scoreboard interface {
	AddScore(ctx context.Context, roomID, userID int64, displayName string, delta int64) (int64, error)
	TopRanked(roomID int64, limit int) ledger.Standings
}

// Command is an inbound chat command.
type Command struct {
	ChatID      int64
	ChatKind    ChatKind
	UserID      int64
	DisplayName string
}

// Selection is an inbound answer. RoomID and Option come from the choice
// payload; Message is the message the choice was attached to, or zero when
// the transport does not know it.
type Selection struct {
	ID          string
	ChatID      int64
	UserID      int64
	DisplayName string
	RoomID      int64
	Option      int
	Message     MessageRef
}

// Outcome is how a selection was handled.
type Outcome int

const (
	OutcomeInvalidPayload Outcome = iota + 1
	OutcomeNoRoom
	OutcomeNotJoined
	OutcomeNotRunning
	OutcomeStale
	OutcomeAlreadySolved
	OutcomeAlreadyAnswered
	OutcomeWrong
	OutcomeWon
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInvalidPayload:
		return "invalid_payload"
	case OutcomeNoRoom:
		return "no_room"
	case OutcomeNotJoined:
		return "not_joined"
	case OutcomeNotRunning:
		return "not_running"
	case OutcomeStale:
		return "stale"
	case OutcomeAlreadySolved:
		return "already_solved"
	case OutcomeAlreadyAnswered:
		return "already_answered"
	case OutcomeWrong:
		return "wrong"
	case OutcomeWon:
		return "won"
	}
	return "unknown"
}

// Err maps rejected outcomes to their error code. Accepted answers, right or
// wrong, return nil.
func (o Outcome) Err() error {
	switch o {
	case OutcomeInvalidPayload:
		return errors.New(errors.ErrCodeInvalidPayload, "selection does not belong to this chat")
	case OutcomeNoRoom:
		return errors.New(errors.ErrCodeNoRoom, "no room in this chat")
	case OutcomeNotJoined:
		return errors.New(errors.ErrCodeNotJoined, "player has not joined")
	case OutcomeNotRunning, OutcomeStale, OutcomeAlreadySolved:
		return errors.New(errors.ErrCodeAlreadySolved, "question is no longer open")
	case OutcomeAlreadyAnswered:
		return errors.New(errors.ErrCodeAlreadyAnswered, "player already answered")
	}
	return nil
}

// Option configures an Engine.
type Option func(*Engine)

// WithLeaderboardSize sets how many rows ShowLeaderboard prints.
func WithLeaderboardSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.leaderboardSize = n
		}
	}
}

// WithMessages replaces the built-in message catalog.
func WithMessages(m *Messages) Option {
	return func(e *Engine) {
		if m != nil {
			e.messages = m
		}
	}
}

// Engine runs quiz rooms. All room reads and writes go through the
// registry's per-chat lock so different chats proceed in parallel.
type Engine struct {
	registry        *Registry
	bank            *questions.Bank
	board           Scoreboard
	messenger       Messenger
	messages        *Messages
	leaderboardSize int
}

func NewEngine(registry *Registry, bank *questions.Bank, board Scoreboard, messenger Messenger, opts ...Option) *Engine {
	e := &Engine{
		registry:        registry,
		bank:            bank,
		board:           board,
		messenger:       messenger,
		messages:        DefaultMessages(),
		leaderboardSize: ledger.DefaultLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Messages returns the catalog in use.
func (e *Engine) Messages() *Messages {
	return e.messages
}

// CreateRoom opens a fresh room with the caller as host. A room already in
// the chat is replaced.
func (e *Engine) CreateRoom(ctx context.Context, cmd Command) error {
	if !cmd.ChatKind.IsMultiParty() {
		e.send(cmd.ChatID, e.messages.GroupOnly)
		return errors.New(errors.ErrCodeInvalidContext, "rooms can only be hosted in group chats")
	}

	e.registry.withChat(cmd.ChatID, func(s *chatSlot) {
		if stale := s.open(cmd.ChatID, cmd.UserID); stale != 0 {
			e.revoke(cmd.ChatID, stale)
		}
		logger.Info("Room created", "room_id", cmd.ChatID, "session_id", s.room.SessionID, "host_id", cmd.UserID)
		e.send(cmd.ChatID, e.messages.RoomCreated)
	})
	return nil
}

// Join adds the caller to the chat's room and records their name in the
// ledger with zero points.
func (e *Engine) Join(ctx context.Context, cmd Command) error {
	var err error
	e.registry.withChat(cmd.ChatID, func(s *chatSlot) {
		room := s.room
		if room == nil || room.State == StateFinished {
			e.send(cmd.ChatID, e.messages.NoRoom)
			err = errors.New(errors.ErrCodeNoRoom, "no open room in this chat")
			return
		}

		if !room.HasPlayer(cmd.UserID) {
			room.Players[cmd.UserID] = struct{}{}
			logger.Info("Player joined", "room_id", cmd.ChatID, "user_id", cmd.UserID, "players", len(room.Players))
		}

		// Failure is logged by the ledger; membership stands.
		_, _ = e.board.AddScore(ctx, cmd.ChatID, cmd.UserID, cmd.DisplayName, 0)

		e.send(cmd.ChatID, fmt.Sprintf(e.messages.Joined, security.SanitizeHTML(cmd.DisplayName)))
	})
	return err
}

// Start begins the quiz. Only the host may start, and only once per room.
func (e *Engine) Start(ctx context.Context, cmd Command) error {
	var err error
	e.registry.withChat(cmd.ChatID, func(s *chatSlot) {
		room := s.room
		switch {
		case room == nil:
			e.send(cmd.ChatID, e.messages.NoRoom)
			err = errors.New(errors.ErrCodeNoRoom, "no room in this chat")
			return
		case room.HostID != cmd.UserID:
			e.send(cmd.ChatID, e.messages.NotHost)
			err = errors.New(errors.ErrCodeNotHost, "only the host can start the quiz")
			return
		case room.State == StateInProgress:
			e.send(cmd.ChatID, e.messages.AlreadyStarted)
			err = errors.New(errors.ErrCodeAlreadyStarted, "quiz already running")
			return
		case room.State == StateFinished:
			e.send(cmd.ChatID, e.messages.QuizOver)
			err = errors.New(errors.ErrCodeQuizFinished, "quiz already finished")
			return
		}

		room.State = StateInProgress
		logger.Info("Quiz started", "room_id", cmd.ChatID, "session_id", room.SessionID, "players", len(room.Players), "questions", e.bank.Len())
		e.send(cmd.ChatID, e.messages.GameStarted)
		e.dispatch(room, 0)
	})
	return err
}

// ShowLeaderboard posts the chat's standings for the current period.
func (e *Engine) ShowLeaderboard(ctx context.Context, cmd Command) error {
	standings := e.board.TopRanked(cmd.ChatID, e.leaderboardSize)
	e.send(cmd.ChatID, e.renderStandings(standings))
	return nil
}

// SubmitAnswer arbitrates one answer. The first correct answer to a
// question wins it; every selection is acknowledged exactly once.
func (e *Engine) SubmitAnswer(ctx context.Context, sel Selection) Outcome {
	var (
		outcome Outcome
		notice  string
	)
	defer func() {
		e.acknowledge(sel.ID, notice)
	}()

	if sel.RoomID != sel.ChatID || sel.Option < 0 || sel.Option >= questions.OptionCount {
		logger.Debug("Ignoring foreign selection",
			"chat_id", sel.ChatID,
			"room_id", sel.RoomID,
			"option", sel.Option,
		)
		return OutcomeInvalidPayload
	}

	e.registry.withChat(sel.ChatID, func(s *chatSlot) {
		room := s.room
		switch {
		case room == nil:
			outcome = OutcomeNoRoom
			return
		case !room.HasPlayer(sel.UserID):
			outcome = OutcomeNotJoined
			notice = security.PlainText(e.messages.NotJoined)
			return
		case room.State != StateInProgress:
			outcome = OutcomeNotRunning
			return
		case sel.Message != 0 && sel.Message != room.ActiveMessage:
			outcome = OutcomeStale
			return
		case room.Solved:
			outcome = OutcomeAlreadySolved
			return
		case room.HasAnswered(sel.UserID):
			outcome = OutcomeAlreadyAnswered
			return
		}

		room.Answered[sel.UserID] = struct{}{}

		q, ok := e.bank.At(room.CurrentQuestion)
		if !ok {
			outcome = OutcomeNotRunning
			return
		}
		if sel.Option != q.Correct {
			outcome = OutcomeWrong
			notice = security.PlainText(e.messages.WrongAnswer)
			return
		}

		outcome = OutcomeWon
		room.Solved = true
		logger.Info("Question solved",
			"room_id", sel.ChatID,
			"user_id", sel.UserID,
			"question", room.CurrentQuestion,
		)

		_, _ = e.board.AddScore(ctx, sel.ChatID, sel.UserID, sel.DisplayName, 1)

		e.send(sel.ChatID, fmt.Sprintf(e.messages.Winner,
			security.SanitizeHTML(sel.DisplayName),
			utils.OptionLabel(q.Correct),
		))

		if room.ActiveMessage != 0 {
			e.revoke(sel.ChatID, room.ActiveMessage)
		}

		e.dispatch(room, room.CurrentQuestion+1)
	})

	return outcome
}

// dispatch sends question idx, or finishes the room past the end of the
// bank. The caller holds the room's lock.
func (e *Engine) dispatch(room *Room, idx int) {
	q, ok := e.bank.At(idx)
	if !ok {
		room.State = StateFinished
		room.CurrentQuestion = idx
		room.Solved = true
		room.ActiveMessage = 0
		logger.Info("Quiz finished", "room_id", room.ChatID, "session_id", room.SessionID, "questions", idx)
		e.send(room.ChatID, e.messages.Finished)
		return
	}

	room.startQuestion(idx)

	ref, err := e.messenger.SendMessage(room.ChatID, e.renderQuestion(idx, q), e.choices(room.ChatID))
	if err != nil {
		logger.Error("Failed to send question", "room_id", room.ChatID, "question", idx, "error", err)
		return
	}
	room.ActiveMessage = ref
	logger.Debug("Question dispatched", "room_id", room.ChatID, "question", idx, "message_id", int(ref))
}

func (e *Engine) choices(roomID int64) []Choice {
	out := make([]Choice, questions.OptionCount)
	for i := range out {
		out[i] = Choice{
			Label:  utils.OptionLabel(i),
			RoomID: roomID,
			Option: i,
		}
	}
	return out
}

func (e *Engine) renderQuestion(idx int, q questions.Question) string {
	return fmt.Sprintf(e.messages.Question,
		idx+1,
		security.SanitizeHTML(q.Text),
		security.SanitizeHTML(q.Options[0]),
		security.SanitizeHTML(q.Options[1]),
		security.SanitizeHTML(q.Options[2]),
		security.SanitizeHTML(q.Options[3]),
	)
}

func (e *Engine) renderStandings(st ledger.Standings) string {
	if st.NoScores {
		return e.messages.LeaderboardEmpty
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf(e.messages.LeaderboardTitle, e.leaderboardSize))
	for _, s := range st.Entries {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf(e.messages.LeaderboardLine, s.Rank, security.SanitizeHTML(s.DisplayName), s.Points))
	}
	return b.String()
}

func (e *Engine) send(chatID int64, text string) {
	if _, err := e.messenger.SendMessage(chatID, text, nil); err != nil {
		logger.Error("Failed to send message", "chat_id", chatID, "error", err)
	}
}

func (e *Engine) revoke(chatID int64, ref MessageRef) {
	if err := e.messenger.RevokeChoices(chatID, ref); err != nil {
		logger.Warn("Failed to revoke answer buttons", "chat_id", chatID, "message_id", int(ref), "error", err)
	}
}

func (e *Engine) acknowledge(selectionID, text string) {
	if selectionID == "" {
		return
	}
	if err := e.messenger.Acknowledge(selectionID, text); err != nil {
		logger.Debug("Failed to acknowledge selection", "selection_id", selectionID, "error", err)
	}
}

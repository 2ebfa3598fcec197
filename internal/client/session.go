package client

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ahmetk3436/companion/internal/apperr"
	"github.com/ahmetk3436/companion/internal/chat"
	"github.com/ahmetk3436/companion/internal/filter"
	"github.com/ahmetk3436/companion/internal/models"
	"github.com/ahmetk3436/companion/internal/store"
	"github.com/ahmetk3436/companion/internal/viewstate"
)

// ErrorReply replaces the AI turn when a chat request fails.
const ErrorReply = "Sorry, I encountered an error. Please try again."

// API is the part of the companion API a Session drives.
type API interface {
	ListCharacters(ctx context.Context, spec filter.Spec) ([]models.Character, error)
	CreateCharacter(ctx context.Context, in store.CreateInput) (*models.Character, error)
	Chat(ctx context.Context, transcript []chat.Turn, name, personality string) (string, error)
}

// Session runs the UI flows against the API and records their effects in a
// viewstate.State.
type Session struct {
	state *viewstate.State
	api   API
	now   func() time.Time
}

func NewSession(state *viewstate.State, api API) *Session {
	return &Session{state: state, api: api, now: time.Now}
}

func (s *Session) State() *viewstate.State { return s.state }

// LoadCharacters fetches the full catalog; filtering happens locally.
func (s *Session) LoadCharacters(ctx context.Context) error {
	characters, err := s.api.ListCharacters(ctx, filter.Spec{})
	if err != nil {
		slog.Error("Failed to fetch characters", "error", err)
		return err
	}
	s.state.SetCharacters(characters)
	return nil
}

// OpenChat selects c and enters the chat view with an empty transcript.
func (s *Session) OpenChat(c models.Character) {
	s.state.SetSelectedCharacter(&c)
	s.state.SetCurrentView(viewstate.ViewChat)
}

// Send appends the user's message, asks the API for a reply and appends it.
// On failure the reply is ErrorReply and the error is returned; nothing is
// retried. Blank input or a missing selection is a no-op.
func (s *Session) Send(ctx context.Context, text string) (*viewstate.Message, error) {
	selected := s.state.Snapshot().SelectedCharacter
	if strings.TrimSpace(text) == "" || selected == nil {
		return nil, nil
	}

	now := s.now()
	user := viewstate.Message{
		ID:          strconv.FormatInt(now.UnixMilli(), 10),
		Sender:      chat.SenderUser,
		Content:     text,
		ContentType: viewstate.ContentText,
		CreatedAt:   now,
	}

	transcript := toTurns(append(s.state.Messages(), user))
	s.state.AddMessage(user)

	s.state.SetTyping(true)
	defer s.state.SetTyping(false)

	reply, err := s.api.Chat(ctx, transcript, selected.Name, selected.Personality)

	done := s.now()
	ai := viewstate.Message{
		ID:          strconv.FormatInt(done.UnixMilli()+1, 10),
		Sender:      chat.SenderAI,
		Content:     reply,
		ContentType: viewstate.ContentText,
		CreatedAt:   done,
	}
	if err != nil {
		slog.Error("Chat error", "error", err, "character", selected.Name)
		ai.Content = ErrorReply
	}
	s.state.AddMessage(ai)
	return &ai, err
}

// CreateCharacter submits the form and, on success, returns to the gallery.
// Missing required fields are rejected before any request is made.
func (s *Session) CreateCharacter(ctx context.Context, in store.CreateInput) (*models.Character, error) {
	if in.Name == "" || in.Age.Raw == "" || in.Gender == "" || in.Personality == "" {
		return nil, apperr.New(apperr.Validation, "Please fill in all required fields")
	}

	character, err := s.api.CreateCharacter(ctx, in)
	if err != nil {
		slog.Error("Create character error", "error", err)
		return nil, err
	}

	s.state.SetCurrentView(viewstate.ViewCharacters)
	return character, nil
}

func toTurns(messages []viewstate.Message) []chat.Turn {
	turns := make([]chat.Turn, 0, len(messages))
	for _, m := range messages {
		turns = append(turns, chat.Turn{Sender: m.Sender, Content: m.Content})
	}
	return turns
}

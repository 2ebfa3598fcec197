// Package viewstate holds what the companion UI shows: the active view, the
// loaded catalog and selection, gallery filters, and the chat transcript.
package viewstate

import (
	"sync"
	"time"

	"github.com/ahmetk3436/companion/internal/filter"
	"github.com/ahmetk3436/companion/internal/models"
)

type View string

const (
	ViewLanding         View = "landing"
	ViewCharacters      View = "characters"
	ViewChat            View = "chat"
	ViewCreateCharacter View = "create-character"
	ViewPricing         View = "pricing"
)

type ContentType string

const (
	ContentText  ContentType = "text"
	ContentImage ContentType = "image"
	ContentVoice ContentType = "voice"
	ContentVideo ContentType = "video"
)

type Message struct {
	ID          string      `json:"id"`
	Sender      string      `json:"sender"` // user or ai
	Content     string      `json:"content"`
	ContentType ContentType `json:"contentType,omitempty"`
	ImageURL    string      `json:"imageUrl,omitempty"`
	AudioURL    string      `json:"audioUrl,omitempty"`
	VideoURL    string      `json:"videoUrl,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// FilterPatch is a partial filter update; nil fields are left unchanged.
type FilterPatch struct {
	Gender    *string
	Ethnicity *string
	Search    *string
}

// Snapshot is a copy of the state at one point in time.
type Snapshot struct {
	CurrentView       View
	Characters        []models.Character
	SelectedCharacter *models.Character
	Filters           filter.Spec
	Messages          []Message
	IsTyping          bool
}

// State is safe for concurrent use. All mutation goes through its setters.
type State struct {
	mu       sync.RWMutex
	view     View
	chars    []models.Character
	selected *models.Character
	filters  filter.Spec
	messages []Message
	typing   bool
}

func New() *State {
	return &State{
		view:     ViewLanding,
		chars:    []models.Character{},
		filters:  filter.DefaultSpec(),
		messages: []Message{},
	}
}

// SetCurrentView switches views. Entering the chat view starts a fresh
// transcript.
func (s *State) SetCurrentView(v View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
	if v == ViewChat {
		s.messages = []Message{}
	}
}

func (s *State) SetCharacters(characters []models.Character) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chars = append([]models.Character{}, characters...)
}

func (s *State) SetSelectedCharacter(c *models.Character) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c == nil {
		s.selected = nil
		return
	}
	cp := *c
	s.selected = &cp
}

// SetFilters merges the non-nil fields of p into the current filters.
func (s *State) SetFilters(p FilterPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Gender != nil {
		s.filters.Gender = *p.Gender
	}
	if p.Ethnicity != nil {
		s.filters.Ethnicity = *p.Ethnicity
	}
	if p.Search != nil {
		s.filters.Search = *p.Search
	}
}

// ResetFilters restores the "show everything" filters.
func (s *State) ResetFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = filter.DefaultSpec()
}

func (s *State) AddMessage(m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, m)
}

func (s *State) ClearMessages() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = []Message{}
}

func (s *State) SetTyping(typing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.typing = typing
}

func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		CurrentView: s.view,
		Characters:  append([]models.Character{}, s.chars...),
		Filters:     s.filters,
		Messages:    append([]Message{}, s.messages...),
		IsTyping:    s.typing,
	}
	if s.selected != nil {
		cp := *s.selected
		snap.SelectedCharacter = &cp
	}
	return snap
}

// Visible is the loaded catalog narrowed by the current filters.
func (s *State) Visible() []models.Character {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filter.Apply(s.chars, s.filters)
}

func (s *State) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Message{}, s.messages...)
}

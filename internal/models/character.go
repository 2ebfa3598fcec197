package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Voices are the speech voices a character may use; the first is the default.
var Voices = []string{"alloy", "echo", "fable", "onyx", "nova", "shimmer"}

const (
	DefaultVoice     = "alloy"
	DefaultEthnicity = "Mixed"
)

type Character struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Age         int       `gorm:"not null" json:"age"`
	Gender      string    `gorm:"not null;index" json:"gender"`
	Ethnicity   string    `gorm:"not null;default:'Mixed'" json:"ethnicity"`
	Personality string    `gorm:"not null" json:"personality"`
	Description string    `gorm:"type:text;not null;default:''" json:"description"`
	Avatar      *string   `json:"avatar,omitempty"`
	Tags        string    `gorm:"not null;default:''" json:"tags"` // comma-joined
	Voice       string    `gorm:"not null;default:'alloy'" json:"voice"`
	IsPremium   bool      `gorm:"not null;default:false" json:"isPremium"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BeforeCreate assigns the identifier so records are portable across drivers.
func (c *Character) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TagList splits the stored tags into trimmed, non-empty labels in join order.
func (c *Character) TagList() []string {
	return SplitTags(c.Tags)
}

func SplitTags(tags string) []string {
	out := []string{}
	for _, t := range strings.Split(tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func JoinTags(tags []string) string {
	return strings.Join(tags, ",")
}

func IsVoice(v string) bool {
	for _, voice := range Voices {
		if voice == v {
			return true
		}
	}
	return false
}

package store

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/ahmetk3436/companion/internal/apperr"
	"github.com/ahmetk3436/companion/internal/models"
)

// CreateInput is the body accepted when creating a character.
type CreateInput struct {
	Name        string   `json:"name" yaml:"name"`
	Age         Age      `json:"age" yaml:"age"`
	Gender      string   `json:"gender" yaml:"gender"`
	Ethnicity   string   `json:"ethnicity" yaml:"ethnicity"`
	Personality string   `json:"personality" yaml:"personality"`
	Description string   `json:"description" yaml:"description"`
	Avatar      string   `json:"avatar" yaml:"avatar"`
	Tags        TagInput `json:"tags" yaml:"tags"`
	Voice       string   `json:"voice" yaml:"voice"`
	IsPremium   bool     `json:"isPremium" yaml:"isPremium"`
}

// Normalize validates required fields and returns the record to insert.
func (in CreateInput) Normalize() (*models.Character, error) {
	name := strings.TrimSpace(in.Name)
	gender := strings.TrimSpace(in.Gender)
	personality := strings.TrimSpace(in.Personality)

	if name == "" || in.Age.Raw == "" || gender == "" || personality == "" {
		return nil, apperr.New(apperr.Validation, "Name, age, gender, and personality are required")
	}

	age, err := in.Age.Int()
	if err != nil || age <= 0 {
		return nil, apperr.New(apperr.Validation, "Age must be a positive integer")
	}

	voice := in.Voice
	if voice == "" {
		voice = models.DefaultVoice
	}
	if !models.IsVoice(voice) {
		return nil, apperr.Newf(apperr.Validation, "Unsupported voice. Use one of: %s", strings.Join(models.Voices, ", "))
	}

	ethnicity := in.Ethnicity
	if ethnicity == "" {
		ethnicity = models.DefaultEthnicity
	}

	c := &models.Character{
		Name:        name,
		Age:         age,
		Gender:      gender,
		Ethnicity:   ethnicity,
		Personality: personality,
		Description: in.Description,
		Tags:        in.Tags.Joined,
		Voice:       voice,
		IsPremium:   in.IsPremium,
	}
	if in.Avatar != "" {
		avatar := in.Avatar
		c.Avatar = &avatar
	}
	return c, nil
}

// Age accepts a JSON number or a numeric string. Raw is empty when the field
// was absent, null, zero or an empty string.
type Age struct {
	Raw string
}

func (a *Age) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		a.Raw = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		a.Raw = strings.TrimSpace(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return apperr.New(apperr.Validation, "Age must be a positive integer")
		}
		a.Raw = n.String()
	}
	if a.Raw == "0" {
		a.Raw = ""
	}
	return nil
}

func (a *Age) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	a.Raw = strings.TrimSpace(s)
	return nil
}

func (a Age) MarshalJSON() ([]byte, error) {
	if n, err := a.Int(); err == nil {
		return []byte(strconv.Itoa(n)), nil
	}
	return json.Marshal(a.Raw)
}

// Int parses the leading integer, so "24" and "24.0" are both 24.
func (a Age) Int() (int, error) {
	raw := a.Raw
	if i := strings.IndexByte(raw, '.'); i > 0 {
		raw = raw[:i]
	}
	return strconv.Atoi(raw)
}

func NewAge(n int) Age {
	return Age{Raw: strconv.Itoa(n)}
}

// TagInput accepts either a list of labels or a pre-joined string and keeps
// the comma-joined form.
type TagInput struct {
	Joined string
}

func (t *TagInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Joined = ""
		return nil
	}
	if data[0] == '[' {
		var tags []string
		if err := json.Unmarshal(data, &tags); err != nil {
			return apperr.New(apperr.Validation, "Tags must be a list of strings or a comma-separated string")
		}
		t.Joined = models.JoinTags(tags)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return apperr.New(apperr.Validation, "Tags must be a list of strings or a comma-separated string")
	}
	t.Joined = s
	return nil
}

func (t *TagInput) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var tags []string
	if err := unmarshal(&tags); err == nil {
		t.Joined = models.JoinTags(tags)
		return nil
	}
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	t.Joined = s
	return nil
}

func (t TagInput) MarshalJSON() ([]byte, error) {
	return json.Marshal(models.SplitTags(t.Joined))
}

func NewTags(tags ...string) TagInput {
	return TagInput{Joined: models.JoinTags(tags)}
}

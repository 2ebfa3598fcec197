package store

import (
	"context"
	"strings"

	"github.com/ahmetk3436/companion/internal/apperr"
	"github.com/ahmetk3436/companion/internal/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// AnyValue disables a gender or ethnicity constraint.
const AnyValue = "all"

// Filter narrows List results. Empty fields impose no constraint.
type Filter struct {
	Gender    string
	Ethnicity string
	Search    string // matched against name, personality and description
}

type CharacterStore struct {
	db *gorm.DB
}

func NewCharacterStore(db *gorm.DB) *CharacterStore {
	return &CharacterStore{db: db}
}

// List returns matching characters, newest first.
func (s *CharacterStore) List(ctx context.Context, f Filter) ([]models.Character, error) {
	query := s.db.WithContext(ctx).Model(&models.Character{})

	if f.Gender != "" && f.Gender != AnyValue {
		query = query.Where("gender = ?", f.Gender)
	}
	if f.Ethnicity != "" && f.Ethnicity != AnyValue {
		query = query.Where("ethnicity = ?", f.Ethnicity)
	}
	if f.Search != "" {
		like := "%" + escapeLike(strings.ToLower(f.Search)) + "%"
		query = query.Where(
			`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(personality) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`,
			like, like, like,
		)
	}

	characters := []models.Character{}
	if err := query.Order("created_at DESC").Find(&characters).Error; err != nil {
		return nil, errors.Wrap(err, "list characters")
	}
	return characters, nil
}

// Get looks a character up by id. Unknown and malformed ids are both NotFound.
func (s *CharacterStore) Get(ctx context.Context, id string) (*models.Character, error) {
	cid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.New(apperr.NotFound, "Character not found")
	}

	var character models.Character
	err = s.db.WithContext(ctx).First(&character, "id = ?", cid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, "Character not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "get character")
	}
	return &character, nil
}

// Create validates input, applies defaults and inserts the record.
func (s *CharacterStore) Create(ctx context.Context, in CreateInput) (*models.Character, error) {
	character, err := in.Normalize()
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(character).Error; err != nil {
		return nil, errors.Wrap(err, "create character")
	}
	return character, nil
}

// Seed replaces every character with the given set in one transaction.
func (s *CharacterStore) Seed(ctx context.Context, inputs []CreateInput) error {
	characters := make([]*models.Character, 0, len(inputs))
	for i, in := range inputs {
		c, err := in.Normalize()
		if err != nil {
			return errors.WithMessagef(err, "seed character %d", i)
		}
		characters = append(characters, c)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Character{}).Error; err != nil {
			return errors.Wrap(err, "clear characters")
		}
		for _, c := range characters {
			if err := tx.Create(c).Error; err != nil {
				return errors.Wrapf(err, "create character %s", c.Name)
			}
		}
		return nil
	})
}

func (s *CharacterStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Character{}).Count(&n).Error; err != nil {
		return 0, errors.Wrap(err, "count characters")
	}
	return n, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

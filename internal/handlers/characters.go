package handlers

import (
	"github.com/ahmetk3436/companion/internal/store"
	"github.com/gofiber/fiber/v2"
)

type CharacterHandler struct {
	store *store.CharacterStore
}

func NewCharacterHandler(s *store.CharacterStore) *CharacterHandler {
	return &CharacterHandler{store: s}
}

// ListCharacters returns characters, newest first, optionally filtered by
// gender, ethnicity and a search term.
func (h *CharacterHandler) ListCharacters(c *fiber.Ctx) error {
	characters, err := h.store.List(c.UserContext(), store.Filter{
		Gender:    c.Query("gender"),
		Ethnicity: c.Query("ethnicity"),
		Search:    c.Query("search"),
	})
	if err != nil {
		return fail(c, "Get characters error", err, "Failed to get characters")
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"characters": characters,
	})
}

func (h *CharacterHandler) GetCharacter(c *fiber.Ctx) error {
	character, err := h.store.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, "Get character error", err, "Failed to get character")
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"character": character,
	})
}

func (h *CharacterHandler) CreateCharacter(c *fiber.Ctx) error {
	var req store.CreateInput
	if err := bindJSON(c, &req); err != nil {
		return fail(c, "Create character error", err, "Invalid request body")
	}

	character, err := h.store.Create(c.UserContext(), req)
	if err != nil {
		return fail(c, "Create character error", err, "Failed to create character")
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"character": character,
	})
}

package handlers

import (
	"github.com/ahmetk3436/companion/internal/apperr"
	"github.com/ahmetk3436/companion/internal/chat"
	"github.com/ahmetk3436/companion/internal/metrics"
	"github.com/gofiber/fiber/v2"
)

type ChatHandler struct {
	completer chat.Completer
	metrics   *metrics.Metrics
}

func NewChatHandler(completer chat.Completer, m *metrics.Metrics) *ChatHandler {
	return &ChatHandler{completer: completer, metrics: m}
}

type chatRequest struct {
	Messages             *[]chat.Turn `json:"messages"`
	CharacterName        string       `json:"characterName"`
	CharacterPersonality string       `json:"characterPersonality"`
}

// Chat sends the whole transcript, behind the character's system prompt, to
// the completion API and returns the first reply.
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	var req chatRequest
	if err := bindJSON(c, &req); err != nil || req.Messages == nil {
		return badRequest(c, "Messages array is required")
	}

	prompt := chat.BuildPrompt(*req.Messages, req.CharacterName, req.CharacterPersonality)

	completion, err := h.completer.Complete(c.UserContext(), prompt)
	if err != nil {
		h.metrics.ObserveUpstreamFailure("chat")
		return fail(c, "Chat API error", apperr.Wrap(apperr.Upstream, err), "Failed to generate response")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": chat.ExtractReply(completion),
	})
}

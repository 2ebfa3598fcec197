package handlers

import (
	"encoding/json"
	"strings"

	"github.com/ahmetk3436/companion/internal/apperr"
	"github.com/ahmetk3436/companion/internal/media"
	"github.com/ahmetk3436/companion/internal/metrics"
	"github.com/ahmetk3436/companion/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

type MediaHandler struct {
	provider media.Provider
	assets   *media.AssetStore
	metrics  *metrics.Metrics
}

func NewMediaHandler(provider media.Provider, assets *media.AssetStore, m *metrics.Metrics) *MediaHandler {
	return &MediaHandler{provider: provider, assets: assets, metrics: m}
}

// ─── Image ──────────────────────────────────────────────────────────────────

func (h *MediaHandler) GenerateImage(c *fiber.Ctx) error {
	var req struct {
		Prompt string          `json:"prompt"`
		Size   json.RawMessage `json:"size"`
	}
	if err := bindJSON(c, &req); err != nil {
		return fail(c, "Image generation error", err, "Invalid request body")
	}

	if req.Prompt == "" {
		return badRequest(c, "Prompt is required")
	}
	size := optionalString(req.Size, media.DefaultImageSize)
	if !media.IsImageSize(size) {
		return badRequest(c, "Unsupported size. Use one of: "+strings.Join(media.ImageSizes, ", "))
	}

	img, err := h.provider.GenerateImage(c.UserContext(), req.Prompt, size)
	if err == nil && len(img) == 0 {
		err = media.ErrNoImageData
	}
	if err != nil {
		h.metrics.ObserveUpstreamFailure("image")
		return fail(c, "Image generation error", apperr.Wrap(apperr.Upstream, err), "Failed to generate image")
	}

	asset, err := h.assets.Save("img", "png", img)
	if err != nil {
		return fail(c, "Image generation error", err, "Failed to generate image")
	}
	h.metrics.ObserveGenerated("img", asset.Size)

	return c.JSON(fiber.Map{
		"success":  true,
		"imageUrl": asset.URL,
		"size":     size,
		"fileSize": asset.Size,
	})
}

// ─── Video ──────────────────────────────────────────────────────────────────

// CreateVideo starts an asynchronous generation task and returns at once.
func (h *MediaHandler) CreateVideo(c *fiber.Ctx) error {
	var req struct {
		Prompt string `json:"prompt"`
		Image  string `json:"image"`
	}
	if err := bindJSON(c, &req); err != nil {
		return fail(c, "Video generation error", err, "Invalid request body")
	}

	if req.Prompt == "" {
		return badRequest(c, "Prompt is required")
	}

	task, err := h.provider.CreateVideo(c.UserContext(), req.Prompt, req.Image)
	if err != nil {
		h.metrics.ObserveUpstreamFailure("video")
		return fail(c, "Video generation error", apperr.Wrap(apperr.Upstream, err), "Failed to create video generation task")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"taskId":  task.ID,
		"status":  task.Status,
		"message": "Video generation task created successfully",
	})
}

// VideoStatus reports the provider's current view of a task unchanged.
// Callers poll; nothing here waits for completion.
func (h *MediaHandler) VideoStatus(c *fiber.Ctx) error {
	taskID := c.Query("taskId")
	if taskID == "" {
		return badRequest(c, "Task ID is required")
	}

	task, err := h.provider.VideoStatus(c.UserContext(), taskID)
	if err != nil {
		h.metrics.ObserveUpstreamFailure("video")
		return fail(c, "Video status check error", apperr.Wrap(apperr.Upstream, err), "Failed to check video status")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"taskId":  task.ID,
		"status":  task.Status,
		"result":  task.Result,
		"error":   task.Error,
	})
}

// ─── Speech ─────────────────────────────────────────────────────────────────

func (h *MediaHandler) TextToSpeech(c *fiber.Ctx) error {
	var req struct {
		Text  string          `json:"text"`
		Voice json.RawMessage `json:"voice"`
	}
	if err := bindJSON(c, &req); err != nil {
		return fail(c, "Text-to-speech error", err, "Invalid request body")
	}

	if req.Text == "" {
		return badRequest(c, "Text is required")
	}
	voice := optionalString(req.Voice, models.DefaultVoice)
	if !models.IsVoice(voice) {
		return badRequest(c, "Unsupported voice. Use one of: "+strings.Join(models.Voices, ", "))
	}

	audio, err := h.provider.Speech(c.UserContext(), req.Text, voice)
	if err == nil && len(audio) == 0 {
		err = errors.New("Failed to generate speech")
	}
	if err != nil {
		h.metrics.ObserveUpstreamFailure("speech")
		return fail(c, "Text-to-speech error", apperr.Wrap(apperr.Upstream, err), "Failed to generate speech")
	}

	asset, err := h.assets.Save("audio", "mp3", audio)
	if err != nil {
		return fail(c, "Text-to-speech error", err, "Failed to generate speech")
	}
	h.metrics.ObserveGenerated("audio", asset.Size)

	return c.JSON(fiber.Map{
		"success":  true,
		"audioUrl": asset.URL,
		"voice":    voice,
		"fileSize": asset.Size,
	})
}

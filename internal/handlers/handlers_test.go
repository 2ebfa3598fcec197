package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ahmetk3436/companion/internal/chat"
	"github.com/ahmetk3436/companion/internal/media"
	"github.com/ahmetk3436/companion/internal/metrics"
	"github.com/ahmetk3436/companion/internal/models"
	"github.com/ahmetk3436/companion/internal/store"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeCompleter struct {
	got        []chat.PromptMessage
	completion *chat.Completion
	err        error
	calls      int
}

func (f *fakeCompleter) Complete(_ context.Context, messages []chat.PromptMessage) (*chat.Completion, error) {
	f.calls++
	f.got = messages
	return f.completion, f.err
}

type fakeProvider struct {
	image      []byte
	audio      []byte
	task       *media.VideoTask
	err        error
	calls      int
	lastSize   string
	lastTaskID string
}

func (f *fakeProvider) GenerateImage(_ context.Context, _, size string) ([]byte, error) {
	f.calls++
	f.lastSize = size
	return f.image, f.err
}

func (f *fakeProvider) Speech(context.Context, string, string) ([]byte, error) {
	f.calls++
	return f.audio, f.err
}

func (f *fakeProvider) CreateVideo(context.Context, string, string) (*media.VideoTask, error) {
	f.calls++
	return f.task, f.err
}

func (f *fakeProvider) VideoStatus(_ context.Context, taskID string) (*media.VideoTask, error) {
	f.calls++
	f.lastTaskID = taskID
	return f.task, f.err
}

type testEnv struct {
	app       *fiber.App
	db        *gorm.DB
	completer *fakeCompleter
	provider  *fakeProvider
	assetsDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "handlers.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Character{}))

	env := &testEnv{
		app:       fiber.New(),
		db:        db,
		completer: &fakeCompleter{},
		provider:  &fakeProvider{},
		assetsDir: filepath.Join(t.TempDir(), "generated"),
	}

	m := metrics.New()
	characters := store.NewCharacterStore(db)
	ch := NewCharacterHandler(characters)
	chatH := NewChatHandler(env.completer, m)
	mediaH := NewMediaHandler(env.provider, media.NewAssetStore(env.assetsDir, "/generated"), m)
	sys := NewSystemHandler(db, characters)

	env.app.Get("/api/health", sys.Health)
	env.app.Get("/api/characters", ch.ListCharacters)
	env.app.Post("/api/characters", ch.CreateCharacter)
	env.app.Get("/api/characters/:id", ch.GetCharacter)
	env.app.Post("/api/chat", chatH.Chat)
	env.app.Post("/api/generate-image", mediaH.GenerateImage)
	env.app.Post("/api/generate-video", mediaH.CreateVideo)
	env.app.Get("/api/generate-video", mediaH.VideoStatus)
	env.app.Post("/api/text-to-speech", mediaH.TextToSpeech)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func (e *testEnv) countFiles(t *testing.T) int {
	entries, err := os.ReadDir(e.assetsDir)
	if os.IsNotExist(err) {
		return 0
	}
	require.NoError(t, err)
	return len(entries)
}

// ─── Characters ─────────────────────────────────────────────────────────────

func TestCreateAndGetCharacter(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodPost, "/api/characters",
		`{"name":"Luna","age":"22","gender":"Female","personality":"Creative & Artistic","tags":["Creative","Dreamy"],"voice":"echo"}`)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, true, body["success"])

	created := body["character"].(map[string]interface{})
	assert.Equal(t, "Luna", created["name"])
	assert.Equal(t, float64(22), created["age"])
	assert.Equal(t, "Mixed", created["ethnicity"])
	assert.Equal(t, "Creative,Dreamy", created["tags"])
	assert.Equal(t, false, created["isPremium"])
	assert.NotEmpty(t, created["createdAt"])

	status, body = env.do(t, http.MethodGet, "/api/characters/"+created["id"].(string), "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Luna", body["character"].(map[string]interface{})["name"])
}

func TestCreateCharacterMissingField(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodPost, "/api/characters", `{"name":"Luna","age":22,"gender":"Female"}`)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Name, age, gender, and personality are required", body["error"])

	var n int64
	require.NoError(t, env.db.Model(&models.Character{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCreateCharacterMalformedBody(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodPost, "/api/characters", `{"name":`)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid request body", body["error"])
}

func TestGetCharacterNotFound(t *testing.T) {
	env := newTestEnv(t)

	for _, id := range []string{"4f0c8a8e-8a3c-4a0e-9c1b-000000000000", "nope"} {
		status, body := env.do(t, http.MethodGet, "/api/characters/"+id, "")
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "Character not found", body["error"])
	}
}

func TestListCharactersWithFilters(t *testing.T) {
	env := newTestEnv(t)
	for _, b := range []string{
		`{"name":"Sophia","age":24,"gender":"Female","ethnicity":"Caucasian","personality":"Adventurous & Spirited"}`,
		`{"name":"Ethan","age":25,"gender":"Male","ethnicity":"Caucasian","personality":"Charming & Confident"}`,
		`{"name":"Emma","age":27,"gender":"Female","ethnicity":"Asian","personality":"Intelligent & Thoughtful"}`,
	} {
		status, _ := env.do(t, http.MethodPost, "/api/characters", b)
		require.Equal(t, http.StatusOK, status)
	}

	status, body := env.do(t, http.MethodGet, "/api/characters?gender=Female&ethnicity=all&search=SOP", "")
	require.Equal(t, http.StatusOK, status)
	list := body["characters"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, "Sophia", list[0].(map[string]interface{})["name"])

	status, body = env.do(t, http.MethodGet, "/api/characters", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["characters"].([]interface{}), 3)
}

func TestListCharactersEmptyIsArray(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodGet, "/api/characters", "")

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []interface{}{}, body["characters"])
}

// ─── Chat ───────────────────────────────────────────────────────────────────

func TestChat(t *testing.T) {
	env := newTestEnv(t)
	env.completer.completion = &chat.Completion{Choices: []string{"Hi! I'm Luna 🌙"}}

	status, body := env.do(t, http.MethodPost, "/api/chat",
		`{"messages":[{"sender":"user","content":"hi"}],"characterName":"Luna","characterPersonality":"Creative & Artistic"}`)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Hi! I'm Luna 🌙", body["message"])

	require.Len(t, env.completer.got, 2)
	assert.Equal(t, "system", env.completer.got[0].Role)
	assert.Contains(t, env.completer.got[0].Content, "Luna")
	assert.Equal(t, chat.PromptMessage{Role: "user", Content: "hi"}, env.completer.got[1])
}

func TestChatFallbackReply(t *testing.T) {
	env := newTestEnv(t)
	env.completer.completion = &chat.Completion{}

	status, body := env.do(t, http.MethodPost, "/api/chat", `{"messages":[]}`)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, chat.FallbackReply, body["message"])
}

func TestChatRequiresMessagesArray(t *testing.T) {
	env := newTestEnv(t)

	for _, b := range []string{`{}`, `{"messages":"hi"}`, `{"messages":null}`, `not json`} {
		status, body := env.do(t, http.MethodPost, "/api/chat", b)
		assert.Equal(t, http.StatusBadRequest, status, b)
		assert.Equal(t, "Messages array is required", body["error"])
	}
	assert.Zero(t, env.completer.calls)
}

func TestChatUpstreamFailure(t *testing.T) {
	env := newTestEnv(t)
	env.completer.err = errors.New("429 Too Many Requests")

	status, body := env.do(t, http.MethodPost, "/api/chat", `{"messages":[{"sender":"user","content":"hi"}]}`)

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "429 Too Many Requests", body["error"])
	assert.Equal(t, 1, env.completer.calls)
}

// ─── Media ──────────────────────────────────────────────────────────────────

func TestGenerateImage(t *testing.T) {
	env := newTestEnv(t)
	env.provider.image = []byte("fake-png")

	status, body := env.do(t, http.MethodPost, "/api/generate-image", `{"prompt":"a portrait"}`)

	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "1024x1024", body["size"])
	assert.Equal(t, "1024x1024", env.provider.lastSize)
	assert.Equal(t, float64(8), body["fileSize"])
	url := body["imageUrl"].(string)
	assert.Regexp(t, `^/generated/img_[0-9a-f]{32}\.png$`, url)

	data, err := os.ReadFile(filepath.Join(env.assetsDir, strings.TrimPrefix(url, "/generated/")))
	require.NoError(t, err)
	assert.Equal(t, "fake-png", string(data))
}

func TestGenerateImageValidation(t *testing.T) {
	env := newTestEnv(t)
	env.provider.image = []byte("fake-png")

	status, body := env.do(t, http.MethodPost, "/api/generate-image", `{"size":"1024x1024"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Prompt is required", body["error"])

	status, body = env.do(t, http.MethodPost, "/api/generate-image", `{"prompt":"a portrait","size":"999x999"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Unsupported size. Use one of: 1024x1024, 768x1344, 864x1152, 1344x768, 1152x864, 1440x720, 720x1440", body["error"])

	assert.Zero(t, env.provider.calls)
	assert.Zero(t, env.countFiles(t))
}

func TestGenerateImageWithoutData(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodPost, "/api/generate-image", `{"prompt":"a portrait"}`)

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Failed to generate image", body["error"])
	assert.Zero(t, env.countFiles(t))
}

func TestGenerateImageWriteFailure(t *testing.T) {
	env := newTestEnv(t)
	env.provider.image = []byte("fake-png")
	require.NoError(t, os.WriteFile(env.assetsDir, []byte("blocking file"), 0o644))

	status, body := env.do(t, http.MethodPost, "/api/generate-image", `{"prompt":"a portrait"}`)

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.NotEmpty(t, body["error"])
	assert.Nil(t, body["imageUrl"])
}

func TestTextToSpeech(t *testing.T) {
	env := newTestEnv(t)
	env.provider.audio = []byte("mp3")

	status, body := env.do(t, http.MethodPost, "/api/text-to-speech", `{"text":"hello","voice":"nova"}`)

	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "nova", body["voice"])
	assert.Equal(t, float64(3), body["fileSize"])
	assert.Regexp(t, `^/generated/audio_[0-9a-f]{32}\.mp3$`, body["audioUrl"])
	assert.Equal(t, 1, env.countFiles(t))
}

func TestTextToSpeechValidation(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodPost, "/api/text-to-speech", `{"voice":"nova"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Text is required", body["error"])

	status, body = env.do(t, http.MethodPost, "/api/text-to-speech", `{"text":"hello","voice":"robot"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Unsupported voice. Use one of: alloy, echo, fable, onyx, nova, shimmer", body["error"])

	assert.Zero(t, env.provider.calls)
}

func TestExplicitEmptyOrNullOptionRejected(t *testing.T) {
	env := newTestEnv(t)
	env.provider.image = []byte("fake-png")
	env.provider.audio = []byte("mp3")

	for _, size := range []string{`""`, `null`, `512`} {
		status, body := env.do(t, http.MethodPost, "/api/generate-image", `{"prompt":"a portrait","size":`+size+`}`)
		assert.Equal(t, http.StatusBadRequest, status, size)
		assert.Contains(t, body["error"], "Unsupported size. Use one of: 1024x1024", size)
	}

	for _, voice := range []string{`""`, `null`} {
		status, body := env.do(t, http.MethodPost, "/api/text-to-speech", `{"text":"hello","voice":`+voice+`}`)
		assert.Equal(t, http.StatusBadRequest, status, voice)
		assert.Equal(t, "Unsupported voice. Use one of: alloy, echo, fable, onyx, nova, shimmer", body["error"], voice)
	}

	assert.Zero(t, env.provider.calls)
	assert.Zero(t, env.countFiles(t))
}

func TestAbsentOptionUsesDefault(t *testing.T) {
	env := newTestEnv(t)
	env.provider.audio = []byte("mp3")

	status, body := env.do(t, http.MethodPost, "/api/text-to-speech", `{"text":"hello"}`)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "alloy", body["voice"])
}

func TestTextToSpeechUpstreamFailure(t *testing.T) {
	env := newTestEnv(t)
	env.provider.err = errors.New("Invalid API key")

	status, body := env.do(t, http.MethodPost, "/api/text-to-speech", `{"text":"hello"}`)

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Invalid API key", body["error"])
	assert.Zero(t, env.countFiles(t))
}

func TestCreateVideo(t *testing.T) {
	env := newTestEnv(t)
	env.provider.task = &media.VideoTask{ID: "task-1", Status: "PROCESSING"}

	status, body := env.do(t, http.MethodPost, "/api/generate-video", `{"prompt":"ocean waves"}`)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "task-1", body["taskId"])
	assert.Equal(t, "PROCESSING", body["status"])
	assert.Equal(t, "Video generation task created successfully", body["message"])

	status, body = env.do(t, http.MethodPost, "/api/generate-video", `{"image":"https://x/y.png"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Prompt is required", body["error"])
}

func TestVideoStatus(t *testing.T) {
	env := newTestEnv(t)
	env.provider.task = &media.VideoTask{
		ID:     "task-1",
		Status: "SUCCESS",
		Result: json.RawMessage(`{"url":"https://cdn/v.mp4"}`),
	}

	status, body := env.do(t, http.MethodGet, "/api/generate-video?taskId=task-1", "")

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "task-1", env.provider.lastTaskID)
	assert.Equal(t, "SUCCESS", body["status"])
	assert.Equal(t, map[string]interface{}{"url": "https://cdn/v.mp4"}, body["result"])
	assert.Nil(t, body["error"])

	status, body = env.do(t, http.MethodGet, "/api/generate-video", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Task ID is required", body["error"])
}

// ─── System ─────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodGet, "/api/health", "")

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ok", body["db"])
	assert.Equal(t, float64(0), body["characters"])
}

// Package client is a typed client for the companion JSON API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ahmetk3436/companion/internal/chat"
	"github.com/ahmetk3436/companion/internal/filter"
	"github.com/ahmetk3436/companion/internal/models"
	"github.com/ahmetk3436/companion/internal/store"
	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
)

// APIError is a non-2xx answer carrying the server's {error} message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

type ImageResult struct {
	ImageURL string `json:"imageUrl"`
	Size     string `json:"size"`
	FileSize int    `json:"fileSize"`
}

type SpeechResult struct {
	AudioURL string `json:"audioUrl"`
	Voice    string `json:"voice"`
	FileSize int    `json:"fileSize"`
}

type VideoResult struct {
	TaskID  string          `json:"taskId"`
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
}

type Client struct {
	baseURL string
	timeout time.Duration
	http    *fasthttp.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http: &fasthttp.Client{
			Name:                "companion-client",
			MaxResponseBodySize: 16 * 1024 * 1024,
		},
	}
}

func (c *Client) ListCharacters(ctx context.Context, spec filter.Spec) ([]models.Character, error) {
	q := url.Values{}
	if spec.Gender != "" && spec.Gender != filter.Any {
		q.Set("gender", spec.Gender)
	}
	if spec.Ethnicity != "" && spec.Ethnicity != filter.Any {
		q.Set("ethnicity", spec.Ethnicity)
	}
	if spec.Search != "" {
		q.Set("search", spec.Search)
	}

	var out struct {
		Characters []models.Character `json:"characters"`
	}
	if err := c.do(ctx, fasthttp.MethodGet, "/api/characters", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Characters, nil
}

func (c *Client) GetCharacter(ctx context.Context, id string) (*models.Character, error) {
	var out struct {
		Character *models.Character `json:"character"`
	}
	if err := c.do(ctx, fasthttp.MethodGet, "/api/characters/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Character, nil
}

func (c *Client) CreateCharacter(ctx context.Context, in store.CreateInput) (*models.Character, error) {
	var out struct {
		Character *models.Character `json:"character"`
	}
	if err := c.do(ctx, fasthttp.MethodPost, "/api/characters", nil, in, &out); err != nil {
		return nil, err
	}
	return out.Character, nil
}

func (c *Client) Chat(ctx context.Context, transcript []chat.Turn, name, personality string) (string, error) {
	if transcript == nil {
		transcript = []chat.Turn{}
	}
	in := map[string]interface{}{
		"messages":             transcript,
		"characterName":        name,
		"characterPersonality": personality,
	}
	var out struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, fasthttp.MethodPost, "/api/chat", nil, in, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) GenerateImage(ctx context.Context, prompt, size string) (*ImageResult, error) {
	var out ImageResult
	in := map[string]string{"prompt": prompt}
	if size != "" {
		in["size"] = size
	}
	if err := c.do(ctx, fasthttp.MethodPost, "/api/generate-image", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) TextToSpeech(ctx context.Context, text, voice string) (*SpeechResult, error) {
	var out SpeechResult
	in := map[string]string{"text": text}
	if voice != "" {
		in["voice"] = voice
	}
	if err := c.do(ctx, fasthttp.MethodPost, "/api/text-to-speech", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateVideo(ctx context.Context, prompt, image string) (*VideoResult, error) {
	var out VideoResult
	in := map[string]string{"prompt": prompt}
	if image != "" {
		in["image"] = image
	}
	if err := c.do(ctx, fasthttp.MethodPost, "/api/generate-video", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VideoStatus(ctx context.Context, taskID string) (*VideoResult, error) {
	var out VideoResult
	if err := c.do(ctx, fasthttp.MethodGet, "/api/generate-video", url.Values{"taskId": {taskID}}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	uri := c.baseURL + path
	if len(query) > 0 {
		uri += "?" + query.Encode()
	}
	req.SetRequestURI(uri)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		req.Header.SetContentType("application/json")
		req.SetBody(b)
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}

	body := resp.Body()
	if code := resp.StatusCode(); code < 200 || code >= 300 {
		var envelope struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error == "" {
			envelope.Error = strings.TrimSpace(string(body))
		}
		return &APIError{Status: code, Message: envelope.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(err, "decode %s response", path)
	}
	return nil
}

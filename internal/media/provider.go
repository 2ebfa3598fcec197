package media

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/valyala/fasthttp"
)

const (
	DefaultImageSize = "1024x1024"

	speechModel = "tts-1"
	videoModel  = "runway-gen3"
)

// ImageSizes lists the sizes the image endpoint accepts.
var ImageSizes = []string{
	"1024x1024",
	"768x1344",
	"864x1152",
	"1344x768",
	"1152x864",
	"1440x720",
	"720x1440",
}

func IsImageSize(size string) bool {
	for _, s := range ImageSizes {
		if s == size {
			return true
		}
	}
	return false
}

// VideoTask is the provider's view of an asynchronous video generation.
// Result and Error are passed through as the provider sent them.
type VideoTask struct {
	ID     string
	Status string
	Result json.RawMessage
	Error  json.RawMessage
}

// Provider is the hosted generation API.
type Provider interface {
	GenerateImage(ctx context.Context, prompt, size string) ([]byte, error)
	Speech(ctx context.Context, text, voice string) ([]byte, error)
	CreateVideo(ctx context.Context, prompt, image string) (*VideoTask, error)
	VideoStatus(ctx context.Context, taskID string) (*VideoTask, error)
}

// ErrNoImageData is returned when the provider answered without image bytes.
var ErrNoImageData = errors.New("Failed to generate image")

// HTTPProvider talks to the generation API over HTTP with a bearer key.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	client  *fasthttp.Client
}

func NewHTTPProvider(baseURL, apiKey string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		client: &fasthttp.Client{
			Name:                "companion",
			MaxResponseBodySize: 64 * 1024 * 1024,
			ReadTimeout:         timeout,
			WriteTimeout:        30 * time.Second,
		},
	}
}

func (p *HTTPProvider) GenerateImage(ctx context.Context, prompt, size string) ([]byte, error) {
	body, err := p.do(ctx, fasthttp.MethodPost, "/images/generations", map[string]interface{}{
		"prompt": prompt,
		"size":   size,
	})
	if err != nil {
		return nil, err
	}

	encoded := gjson.GetBytes(body, "data.0.base64").String()
	if encoded == "" {
		encoded = gjson.GetBytes(body, "data.0.b64_json").String()
	}
	if encoded == "" {
		return nil, ErrNoImageData
	}

	img, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Wrap(err, "decode image data")
	}
	return img, nil
}

func (p *HTTPProvider) Speech(ctx context.Context, text, voice string) ([]byte, error) {
	return p.do(ctx, fasthttp.MethodPost, "/audio/speech", map[string]interface{}{
		"model": speechModel,
		"voice": voice,
		"input": text,
	})
}

func (p *HTTPProvider) CreateVideo(ctx context.Context, prompt, image string) (*VideoTask, error) {
	req := map[string]interface{}{
		"prompt": prompt,
		"model":  videoModel,
	}
	if image != "" {
		req["image"] = image
	}

	body, err := p.do(ctx, fasthttp.MethodPost, "/videos/generations", req)
	if err != nil {
		return nil, err
	}
	return parseVideoTask(body), nil
}

func (p *HTTPProvider) VideoStatus(ctx context.Context, taskID string) (*VideoTask, error) {
	body, err := p.do(ctx, fasthttp.MethodGet, "/videos/generations/"+url.PathEscape(taskID), nil)
	if err != nil {
		return nil, err
	}
	return parseVideoTask(body), nil
}

func parseVideoTask(body []byte) *VideoTask {
	task := &VideoTask{
		ID:     gjson.GetBytes(body, "id").String(),
		Status: gjson.GetBytes(body, "status").String(),
	}
	if r := gjson.GetBytes(body, "result"); r.Exists() {
		task.Result = json.RawMessage(r.Raw)
	}
	if e := gjson.GetBytes(body, "error"); e.Exists() {
		task.Error = json.RawMessage(e.Raw)
	}
	return task
}

// do performs one request. There are no retries; a non-2xx answer becomes an
// error carrying the provider's own message.
func (p *HTTPProvider) do(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(p.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(err, "encode request")
		}
		req.Header.SetContentType("application/json")
		req.SetBody(b)
	}

	timeout := p.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := p.client.DoTimeout(req, resp, timeout); err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}

	body := append([]byte(nil), resp.Body()...)
	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return nil, errors.New(upstreamMessage(code, body))
	}
	return body, nil
}

func upstreamMessage(code int, body []byte) string {
	for _, path := range []string{"error.message", "error", "message", "msg"} {
		if !gjson.ValidBytes(body) {
			break
		}
		if v := gjson.GetBytes(body, path); v.Exists() && v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 300 {
		return fmt.Sprintf("generation API returned %d: %s", code, text)
	}
	return fmt.Sprintf("generation API returned %d", code)
}

package sketch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/keyxmakerx/reverie/internal/sanitize"
)

// DefaultHuggingFaceURL is the SDXL text-to-image inference endpoint.
const DefaultHuggingFaceURL = "https://router.huggingface.co/hf-inference/models/stabilityai/stable-diffusion-xl-base-1.0"

// HuggingFace calls the Hugging Face inference API, which answers with the
// raw image bytes.
type HuggingFace struct {
	client *resty.Client
	url    string
}

// NewHuggingFace creates the provider. An empty url means
// DefaultHuggingFaceURL.
func NewHuggingFace(url, token string, timeout time.Duration) *HuggingFace {
	if url == "" {
		url = DefaultHuggingFaceURL
	}
	c := resty.New().
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "image/png, image/jpeg, application/json").
		SetTimeout(timeout)
	if token != "" {
		c.SetAuthToken(token)
	}
	return &HuggingFace{client: c, url: url}
}

type hfRequest struct {
	Inputs string `json:"inputs"`
}

// Generate posts {"inputs": prompt}. A failed call reports the API's
// "error" field when it has one, as plain text.
func (p *HuggingFace) Generate(ctx context.Context, prompt string) (Image, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(hfRequest{Inputs: prompt}).
		Post(p.url)
	if err != nil {
		return Image{}, fmt.Errorf("hugging face request: %w", err)
	}
	if resp.IsError() {
		var body struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(resp.Body(), &body) == nil && body.Error != "" {
			return Image{}, errors.New(sanitize.StripHTML(body.Error))
		}
		return Image{}, fmt.Errorf("API error: %d", resp.StatusCode())
	}
	return toImage(resp.Body())
}

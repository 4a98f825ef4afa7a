package sketch

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/keyxmakerx/reverie/internal/sanitize"
)

// DefaultImagenURL is the Imagen predict endpoint of the Gemini API.
const DefaultImagenURL = "https://generativelanguage.googleapis.com/v1beta/models/imagen-4.0-generate-001:predict"

// Imagen calls Google's Imagen predict API, which answers with base64
// images in JSON.
type Imagen struct {
	client *resty.Client
	url    string
	key    string
}

// NewImagen creates the provider. An empty url means DefaultImagenURL.
func NewImagen(url, key string, timeout time.Duration) *Imagen {
	if url == "" {
		url = DefaultImagenURL
	}
	c := resty.New().
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &Imagen{client: c, url: url, key: key}
}

type imagenRequest struct {
	Instances  []imagenInstance `json:"instances"`
	Parameters imagenParameters `json:"parameters"`
}

type imagenInstance struct {
	Prompt string `json:"prompt"`
}

type imagenParameters struct {
	SampleCount   int                 `json:"sampleCount"`
	AspectRatio   string              `json:"aspectRatio"`
	OutputOptions imagenOutputOptions `json:"outputOptions"`
}

type imagenOutputOptions struct {
	MimeType string `json:"mimeType"`
}

type imagenResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MimeType           string `json:"mimeType"`
	} `json:"predictions"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate asks for one square JPEG.
func (p *Imagen) Generate(ctx context.Context, prompt string) (Image, error) {
	body := imagenRequest{
		Instances: []imagenInstance{{Prompt: prompt}},
		Parameters: imagenParameters{
			SampleCount:   1,
			AspectRatio:   "1:1",
			OutputOptions: imagenOutputOptions{MimeType: "image/jpeg"},
		},
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("key", p.key).
		SetBody(body).
		Post(p.url)
	if err != nil {
		return Image{}, fmt.Errorf("imagen request: %w", err)
	}

	var out imagenResponse
	decodeErr := json.Unmarshal(resp.Body(), &out)
	if resp.IsError() {
		if decodeErr == nil && out.Error != nil && out.Error.Message != "" {
			return Image{}, errors.New(sanitize.StripHTML(out.Error.Message))
		}
		return Image{}, fmt.Errorf("API error: %d", resp.StatusCode())
	}
	if decodeErr != nil {
		return Image{}, fmt.Errorf("decoding imagen response: %w", decodeErr)
	}
	if len(out.Predictions) == 0 || out.Predictions[0].BytesBase64Encoded == "" {
		return Image{}, errors.New("no image in response")
	}

	data, err := base64.StdEncoding.DecodeString(out.Predictions[0].BytesBase64Encoded)
	if err != nil {
		return Image{}, fmt.Errorf("decoding imagen image: %w", err)
	}
	return toImage(data)
}

package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/bryanwahyu/offerguard/internal/domain/submission"
)

const analyzePath = "/analysis/analyze"

// textRequest is the JSON body for text submissions. All three keys are
// always sent; absent company fields go out as "".
type textRequest struct {
	Text           string `json:"text"`
	CompanyEmail   string `json:"company_email"`
	CompanyWebsite string `json:"company_website"`
}

// AuthHeader builds the Authorization value for a bearer token.
// No token gives an empty value and the service will reject it.
func AuthHeader(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	return "Bearer " + token
}

// NewAnalyzeRequest builds POST {baseURL}/analysis/analyze for the input's mode.
// It does no I/O.
func NewAnalyzeRequest(ctx context.Context, baseURL string, in submission.Input, token string) (*http.Request, error) {
	url := strings.TrimRight(baseURL, "/") + analyzePath

	var (
		body        bytes.Buffer
		contentType string
	)
	switch in.Mode {
	case submission.ModeFile:
		ct, err := writeMultipart(&body, in)
		if err != nil {
			return nil, fmt.Errorf("failed to build multipart body: %w", err)
		}
		contentType = ct
	case submission.ModeText:
		if err := json.NewEncoder(&body).Encode(textRequest{
			Text:           in.Text,
			CompanyEmail:   in.Company.Email,
			CompanyWebsite: in.Company.Website,
		}); err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		contentType = "application/json"
	default:
		return nil, fmt.Errorf("unknown input mode %q", in.Mode)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", AuthHeader(token))
	req.Header.Set("Content-Type", contentType)
	return req, nil
}

// writeMultipart writes file, then the company fields that are set.
// Returns the Content-Type including the boundary.
func writeMultipart(buf *bytes.Buffer, in submission.Input) (string, error) {
	w := multipart.NewWriter(buf)

	part, err := w.CreateFormFile("file", in.File.Filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(in.File.Content); err != nil {
		return "", err
	}
	if in.Company.Email != "" {
		if err := w.WriteField("company_email", in.Company.Email); err != nil {
			return "", err
		}
	}
	if in.Company.Website != "" {
		if err := w.WriteField("company_website", in.Company.Website); err != nil {
			return "", err
		}
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return w.FormDataContentType(), nil
}

package imagehost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Eih3/walking/internal/domain/entities"
	"github.com/Eih3/walking/internal/domain/providers"
	"github.com/Eih3/walking/internal/infrastructure/observability"
)

const (
	imgurUploadURL     = "https://api.imgur.com/3/image"
	defaultHTTPTimeout = 30 * time.Second
	imageField         = "image"
	metricTarget       = "image_host"
	maxResponseBytes   = 1 << 20
)

// ImgurProvider uploads images to an Imgur-compatible API using an
// anonymous client credential.
type ImgurProvider struct {
	clientID   string
	uploadURL  string
	httpClient *http.Client
	metrics    *observability.Metrics
}

// imgurResponse is the envelope the upload endpoint answers with.
type imgurResponse struct {
	Data struct {
		ID         string `json:"id"`
		Link       string `json:"link"`
		DeleteHash string `json:"deletehash"`
		Error      any    `json:"error"`
	} `json:"data"`
	Success bool `json:"success"`
	Status  int  `json:"status"`
}

// errorMessage flattens data.error, which the host sends either as a
// string or as an object with a message.
func (r *imgurResponse) errorMessage() string {
	switch v := r.Data.Error.(type) {
	case nil:
		return "unknown error"
	case string:
		return v
	case map[string]any:
		if msg, ok := v["message"].(string); ok && msg != "" {
			return msg
		}
	}
	encoded, err := json.Marshal(r.Data.Error)
	if err != nil {
		return fmt.Sprintf("%v", r.Data.Error)
	}
	return string(encoded)
}

// NewImgurProvider creates a provider for the public Imgur endpoint.
func NewImgurProvider(clientID string) (providers.ImageHostProvider, error) {
	return NewImgurProviderWithOptions(clientID, imgurUploadURL, nil, nil)
}

// NewImgurProviderWithOptions allows overriding upload URL, HTTP client and metrics (used for tests).
func NewImgurProviderWithOptions(clientID, uploadURL string, httpClient *http.Client, metrics *observability.Metrics) (providers.ImageHostProvider, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, fmt.Errorf("image host client id must be set")
	}
	if strings.TrimSpace(uploadURL) == "" {
		uploadURL = imgurUploadURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &ImgurProvider{
		clientID:   clientID,
		uploadURL:  uploadURL,
		httpClient: httpClient,
		metrics:    metrics,
	}, nil
}

// Upload posts the file as multipart form data and returns the hosted link.
func (p *ImgurProvider) Upload(ctx context.Context, upload entities.ImageUpload) (*entities.HostedImage, error) {
	if upload.Content == nil {
		return nil, fmt.Errorf("image content is required")
	}

	ctx, span := observability.StartSpan(ctx, "imagehost.upload")
	defer span.End()

	body, contentType, err := buildMultipart(upload)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.uploadURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+p.clientID)
	req.Header.Set("Content-Type", contentType)
	observability.SetSpanAttributes(span,
		attribute.String("image.file_name", upload.FileName),
		attribute.Int("image.payload_bytes", body.Len()),
	)

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		observability.RecordUpstreamMetric(ctx, p.metrics, metricTarget, "upload", 0, time.Since(start))
		observability.RecordError(span, err)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	observability.RecordUpstreamMetric(ctx, p.metrics, metricTarget, "upload", resp.StatusCode, time.Since(start))

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("image host error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(payload)))
		observability.RecordError(span, err)
		return nil, err
	}

	var parsed imgurResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if !parsed.Success {
		err := fmt.Errorf("image host rejected upload (status %d): %s", parsed.Status, parsed.errorMessage())
		observability.RecordError(span, err)
		return nil, err
	}
	if parsed.Data.Link == "" {
		err := fmt.Errorf("no image link in response")
		observability.RecordError(span, err)
		return nil, err
	}

	return &entities.HostedImage{
		ID:         parsed.Data.ID,
		Link:       parsed.Data.Link,
		DeleteHash: parsed.Data.DeleteHash,
	}, nil
}

func buildMultipart(upload entities.ImageUpload) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	fileName := filepath.Base(upload.FileName)
	if fileName == "." || fileName == string(filepath.Separator) || fileName == "" {
		fileName = "upload"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, imageField, fileName))
	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, upload.Content); err != nil {
		return nil, "", fmt.Errorf("failed to read image content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize form: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}

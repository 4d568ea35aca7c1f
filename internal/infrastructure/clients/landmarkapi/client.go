package landmarkapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Eih3/walking/internal/domain/entities"
	"github.com/Eih3/walking/internal/domain/providers"
	"github.com/Eih3/walking/internal/infrastructure/observability"
)

const (
	ratePath      = "/rate_landmark"
	notesPath     = "/notes_landmark"
	addImagePath  = "/add_image"
	favoritesPath = "/other_favorites"

	// RequestIDHeader is attached to every outbound request.
	RequestIDHeader = "X-Request-ID"

	// Structured reply statuses that carry their own message.
	statusUpdated = "updated"
	statusCreated = "created"

	maxReplyBytes = 1 << 20
	metricTarget  = "landmark_api"
)

// HTTPClient talks to the landmark server with the form encoding its
// endpoints expect.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
}

var _ providers.LandmarkAPI = (*HTTPClient)(nil)

// NewClient creates a landmark server client with the given timeout.
func NewClient(baseURL string, timeout time.Duration) *HTTPClient {
	return NewClientWithOptions(baseURL, &http.Client{Timeout: timeout}, nil)
}

// NewClientWithOptions allows overriding the HTTP client and attaching metrics.
func NewClientWithOptions(baseURL string, httpClient *http.Client, metrics *observability.Metrics) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		metrics:    metrics,
	}
}

func (c *HTTPClient) RateLandmark(ctx context.Context, rating entities.RatingSubmission) (*entities.ServerReply, error) {
	form := url.Values{}
	form.Set("landmark_id", rating.LandmarkID.String())
	form.Set("score", rating.Score)
	return c.postForm(ctx, "rate_landmark", ratePath, form)
}

func (c *HTTPClient) SaveNotes(ctx context.Context, review entities.ReviewSubmission) (*entities.ServerReply, error) {
	form := url.Values{}
	form.Set("landmark_id", review.LandmarkID.String())
	form.Set("notes", review.Notes)
	return c.postForm(ctx, "notes_landmark", notesPath, form)
}

func (c *HTTPClient) AddImage(ctx context.Context, image entities.ImagePersistence) error {
	form := url.Values{}
	form.Set("imageURL", image.ImageURL)
	form.Set("landmark_id", image.LandmarkID.String())
	_, err := c.postForm(ctx, "add_image", addImagePath, form)
	return err
}

func (c *HTTPClient) OtherFavorites(ctx context.Context, landmarkID entities.LandmarkID) ([]entities.Suggestion, error) {
	parsed, err := url.Parse(c.baseURL + favoritesPath)
	if err != nil {
		return nil, err
	}
	query := parsed.Query()
	query.Set("landmark_id", landmarkID.String())
	parsed.RawQuery = query.Encode()

	body, _, err := c.do(ctx, "other_favorites", http.MethodGet, parsed.String(), nil, "")
	if err != nil {
		return nil, err
	}

	var suggestions []entities.Suggestion
	if err := json.Unmarshal(body, &suggestions); err != nil {
		return nil, fmt.Errorf("failed to decode suggestions: %w", err)
	}
	return suggestions, nil
}

func (c *HTTPClient) postForm(ctx context.Context, operation, path string, form url.Values) (*entities.ServerReply, error) {
	body, contentType, err := c.do(ctx, operation, http.MethodPost, c.baseURL+path,
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return nil, err
	}
	return parseReply(body, contentType), nil
}

func (c *HTTPClient) do(ctx context.Context, operation, method, endpoint string, body io.Reader, contentType string) ([]byte, string, error) {
	ctx, span := observability.StartSpan(ctx, "landmarkapi."+operation)
	defer span.End()

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, "", err
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	requestID := uuid.New().String()
	httpReq.Header.Set(RequestIDHeader, requestID)
	observability.SetSpanAttributes(span,
		attribute.String("http.method", method),
		attribute.String("landmark_api.operation", operation),
		attribute.String("request.id", requestID),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		observability.RecordUpstreamMetric(ctx, c.metrics, metricTarget, operation, 0, time.Since(start))
		observability.RecordError(span, err)
		return nil, "", fmt.Errorf("landmark api %s request failed: %w", operation, err)
	}
	defer resp.Body.Close()
	observability.RecordUpstreamMetric(ctx, c.metrics, metricTarget, operation, resp.StatusCode, time.Since(start))
	observability.SetSpanAttributes(span, attribute.Int("http.status_code", resp.StatusCode))

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		observability.RecordError(span, err)
		return nil, "", fmt.Errorf("failed to read landmark api response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("landmark api returned status %d", resp.StatusCode)
		observability.RecordError(span, err)
		return nil, "", err
	}

	return payload, resp.Header.Get("Content-Type"), nil
}

// parseReply keeps the body verbatim for sentinel comparison and picks up
// a structured status when the server sends JSON. A JSON message replaces
// the body only alongside a recognised status.
func parseReply(body []byte, contentType string) *entities.ServerReply {
	reply := &entities.ServerReply{
		Body:        string(body),
		ContentType: contentType,
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "application/json" {
		return reply
	}

	var structured struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &structured); err != nil {
		return reply
	}
	reply.Status = strings.ToLower(strings.TrimSpace(structured.Status))
	switch reply.Status {
	case statusUpdated, statusCreated:
		if structured.Message != "" {
			reply.Body = structured.Message
		}
	}
	return reply
}

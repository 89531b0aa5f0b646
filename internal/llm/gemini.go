package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const defaultGeminiModel = "gemini-1.5-flash"

// rate limiter for Gemini API calls (50 requests/second with burst capacity of 10)
var geminiRateLimiter = rate.NewLimiter(50, 10)

type GeminiConfig struct {
	APIKey    string
	Model     string // e.g., "gemini-1.5-flash"
	MaxTokens int

	// used to download URL images, Gemini only accepts inline bytes
	HTTPClient *http.Client
}

type GeminiClient struct {
	config     GeminiConfig
	client     *genai.Client
	httpClient *http.Client
}

func NewGeminiClient(ctx context.Context, config GeminiConfig) (*GeminiClient, error) {
	if config.Model == "" {
		config.Model = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = newHTTPClient(defaultTimeout)
	}

	return &GeminiClient{
		config:     config,
		client:     client,
		httpClient: httpClient,
	}, nil
}

func (c *GeminiClient) Provider() Provider {
	return ProviderGemini
}

// closes the underlying Gemini client
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func (c *GeminiClient) Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	modelName := req.Model
	if !strings.HasPrefix(modelName, "gemini") {
		modelName = c.config.Model
	}

	model := c.client.GenerativeModel(modelName)

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.config.MaxTokens
	}

	if maxTokens > 0 {
		model.SetMaxOutputTokens(int32(maxTokens)) //nolint:gosec // G115: token caps are small
	}

	if req.Temperature > 0 {
		model.SetTemperature(req.Temperature)
	}

	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("no messages provided")
	}

	// only the last user turn is sent, as a single multi-part prompt
	last := req.Messages[len(req.Messages)-1]
	images := make([]Image, 0, len(last.Images))

	for _, img := range last.Images {
		fetched, err := fetchImage(ctx, c.httpClient, img)
		if err != nil {
			return nil, err
		}

		images = append(images, fetched)
	}

	last.Images = images

	parts := geminiParts(req.System, last)

	if err := geminiRateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, geminiError(err)
	}

	return fromGeminiResponse(modelName, resp), nil
}

// builds the prompt parts, system text first and images before the instruction
func geminiParts(system string, msg Message) []genai.Part {
	parts := make([]genai.Part, 0, len(msg.Images)+2)

	if system != "" {
		parts = append(parts, genai.Text(system))
	}

	for _, img := range msg.Images {
		parts = append(parts, genai.ImageData(imageFormat(img.MediaType), img.Data))
	}

	if msg.Content != "" {
		parts = append(parts, genai.Text(msg.Content))
	}

	return parts
}

// maps "image/png" to "png" as genai.ImageData expects
func imageFormat(mediaType string) string {
	format := strings.TrimPrefix(strings.ToLower(mediaType), "image/")
	if i := strings.IndexByte(format, ';'); i >= 0 {
		format = format[:i]
	}

	if format == "jpg" || format == "" {
		return "jpeg"
	}

	return format
}

func fromGeminiResponse(model string, resp *genai.GenerateContentResponse) *ChatResponse {
	out := &ChatResponse{
		Provider: ProviderGemini,
		Model:    model,
	}

	if resp == nil {
		return out
	}

	for _, candidate := range resp.Candidates {
		if candidate == nil {
			continue
		}

		var text strings.Builder

		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}

		out.Choices = append(out.Choices, Choice{
			Message:      Message{Role: "assistant", Content: text.String()},
			FinishReason: fmt.Sprint(candidate.FinishReason),
		})

		out.Usage.OutputTokens += int(candidate.TokenCount)
	}

	return out
}

// converts gRPC status failures into APIError so the status propagates
func geminiError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("gemini request failed: %w", err)
	}

	httpStatus := http.StatusInternalServerError

	switch st.Code() {
	case codes.InvalidArgument, codes.FailedPrecondition:
		httpStatus = http.StatusBadRequest
	case codes.Unauthenticated:
		httpStatus = http.StatusUnauthorized
	case codes.PermissionDenied:
		httpStatus = http.StatusForbidden
	case codes.NotFound:
		httpStatus = http.StatusNotFound
	case codes.ResourceExhausted:
		httpStatus = http.StatusTooManyRequests
	case codes.Unavailable:
		httpStatus = http.StatusServiceUnavailable
	case codes.DeadlineExceeded:
		httpStatus = http.StatusGatewayTimeout
	case codes.Canceled:
		return errors.Join(context.Canceled, err)
	}

	return &APIError{Provider: ProviderGemini, StatusCode: httpStatus, Body: st.Message()}
}

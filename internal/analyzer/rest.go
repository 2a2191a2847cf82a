package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/franckalain/dermscan/internal/models"
)

const defaultRESTTimeout = 90 * time.Second

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type restPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type restContent struct {
	Role  string     `json:"role,omitempty"`
	Parts []restPart `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string         `json:"response_mime_type,omitempty"`
	ResponseSchema   map[string]any `json:"response_schema,omitempty"`
}

type geminiRequest struct {
	SystemInstruction *restContent     `json:"system_instruction,omitempty"`
	GenerationConfig  generationConfig `json:"generationConfig,omitempty"`
	Contents          []restContent    `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text,omitempty"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// RESTAnalyzer implements Analyzer against the generativelanguage REST API,
// for deployments with a plain API key instead of a Vertex project.
type RESTAnalyzer struct {
	config RESTConfig
	http   *http.Client
}

// NewRESTAnalyzer creates a REST analyzer.
func NewRESTAnalyzer(config RESTConfig) *RESTAnalyzer {
	return &RESTAnalyzer{
		config: config,
		http:   &http.Client{Timeout: defaultRESTTimeout},
	}
}

func (a *RESTAnalyzer) Name() string { return "rest" }

// Load validates the configuration. The REST client needs no session setup.
func (a *RESTAnalyzer) Load(ctx context.Context) error {
	if a.config.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is not configured")
	}
	return nil
}

// Analyze sends one request to the generativelanguage API and parses the
// structured reply.
func (a *RESTAnalyzer) Analyze(ctx context.Context, text, image string) (*models.AnalysisResult, error) {
	parts, err := BuildParts(text, image)
	if err != nil {
		return nil, err
	}

	restParts := make([]restPart, 0, len(parts))
	for _, p := range parts {
		if p.Inline != nil {
			restParts = append(restParts, restPart{
				InlineData: &inlineData{MimeType: p.Inline.MIMEType, Data: p.Inline.Data},
			})
			continue
		}
		restParts = append(restParts, restPart{Text: p.Text})
	}

	body := geminiRequest{
		SystemInstruction: &restContent{
			Parts: []restPart{{Text: systemInstruction}},
		},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   schemaJSON(resultSchema()),
		},
		Contents: []restContent{
			{Role: "user", Parts: restParts},
		},
	}

	reply, err := a.generateContent(ctx, body)
	if err != nil {
		return nil, err
	}
	return ParseResult(reply)
}

func (a *RESTAnalyzer) generateContent(ctx context.Context, body geminiRequest) (string, error) {
	// try v1beta first, then v1
	endpoints := []string{
		fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s", a.config.Model, a.config.APIKey),
		fmt.Sprintf("https://generativelanguage.googleapis.com/v1/models/%s:generateContent?key=%s", a.config.Model, a.config.APIKey),
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for _, ep := range endpoints {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep, bytes.NewReader(data))
		if err != nil {
			lastErr = fmt.Errorf("%w: create request: %v", ErrModelCall, err)
			continue
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := a.http.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", ErrModelCall, err)
			continue
		}
		bodyBytes, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("%w: read response: %v", ErrModelCall, err)
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			lastErr = fmt.Errorf("%w: status %d: %s", ErrModelCall, resp.StatusCode, string(bodyBytes))
			continue
		}

		var gr geminiResponse
		if err := json.Unmarshal(bodyBytes, &gr); err != nil {
			lastErr = fmt.Errorf("%w: %v", ErrMalformedResponse, err)
			continue
		}
		if len(gr.Candidates) == 0 {
			lastErr = fmt.Errorf("%w: no candidates in response", ErrModelCall)
			continue
		}
		for _, p := range gr.Candidates[0].Content.Parts {
			if p.Text != "" {
				return p.Text, nil
			}
		}
		lastErr = fmt.Errorf("%w: no text part in response", ErrModelCall)
	}
	return "", lastErr
}

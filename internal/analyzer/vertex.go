package analyzer

import (
	"context"
	"encoding/base64"
	"fmt"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"

	"github.com/franckalain/dermscan/internal/models"
)

// VertexAnalyzer implements Analyzer on the Vertex AI SDK. The result
// schema is passed as a generation constraint so the response is JSON
// conforming to it.
type VertexAnalyzer struct {
	config VertexConfig
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewVertexAnalyzer creates an unloaded Vertex analyzer.
func NewVertexAnalyzer(config VertexConfig) *VertexAnalyzer {
	return &VertexAnalyzer{config: config}
}

func (a *VertexAnalyzer) Name() string { return "vertex" }

// Load initializes the Vertex client and configures the generative model
// with the result schema and the fixed system instruction.
func (a *VertexAnalyzer) Load(ctx context.Context) error {
	opts := []option.ClientOption{}
	if a.config.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(a.config.CredentialsFile))
	}

	client, err := genai.NewClient(ctx, a.config.ProjectID, a.config.Location, opts...)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	model := client.GenerativeModel(a.config.Model)
	model.GenerationConfig.ResponseMIMEType = "application/json"
	model.GenerationConfig.ResponseSchema = resultSchema()
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction)},
	}

	a.client = client
	a.model = model
	return nil
}

// Analyze sends one request to Vertex AI and parses the structured reply.
func (a *VertexAnalyzer) Analyze(ctx context.Context, text, image string) (*models.AnalysisResult, error) {
	if a.model == nil {
		return nil, fmt.Errorf("analyzer not loaded")
	}

	parts, err := BuildParts(text, image)
	if err != nil {
		return nil, err
	}

	genaiParts := make([]genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.Inline != nil {
			data, err := base64.StdEncoding.DecodeString(p.Inline.Data)
			if err != nil {
				return nil, fmt.Errorf("failed to decode image payload: %w", err)
			}
			genaiParts = append(genaiParts, genai.Blob{MIMEType: p.Inline.MIMEType, Data: data})
			continue
		}
		genaiParts = append(genaiParts, genai.Text(p.Text))
	}

	resp, err := a.model.GenerateContent(ctx, genaiParts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelCall, err)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates in response", ErrModelCall)
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: no content in response", ErrModelCall)
	}

	reply, ok := candidate.Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("%w: response part is not text", ErrMalformedResponse)
	}

	return ParseResult(string(reply))
}

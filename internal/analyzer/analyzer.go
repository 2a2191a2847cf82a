// Package analyzer calls a generative model with a fixed structured-output
// schema and returns parsed ingredient safety assessments.
package analyzer

import (
	"context"
	"errors"
	"fmt"

	"github.com/franckalain/dermscan/internal/models"
)

// Failure conditions, distinguishable with errors.Is. Both surface to the
// user identically; MalformedResponse is logged separately for diagnosis.
var (
	// ErrModelCall covers transport failures, non-2xx statuses and empty
	// responses from the external model.
	ErrModelCall = errors.New("model call failed")

	// ErrMalformedResponse means the model returned a body that does not
	// conform to the result schema.
	ErrMalformedResponse = errors.New("malformed model response")
)

// Analyzer produces a structured safety assessment for a submission.
// Implementations make a single external call per invocation; retry policy
// belongs to the caller. Implementations never touch conversation state.
type Analyzer interface {
	// Load initializes the analyzer with its configuration.
	Load(ctx context.Context) error
	// Analyze assesses the given ingredient text and/or data-URI image.
	Analyze(ctx context.Context, text, image string) (*models.AnalysisResult, error)
	// Name returns a short provider label for logging.
	Name() string
}

// New creates an analyzer of the given type. Supported types are "vertex"
// (Vertex AI SDK), "rest" (generativelanguage REST API) and "stub"
// (deterministic, no network; for tests and local runs).
func New(analyzerType, configPath string) (Analyzer, error) {
	base := BaseConfig{ConfigPath: configPath}

	switch analyzerType {
	case "vertex":
		cfg := VertexConfig{BaseConfig: base}
		if err := cfg.Load(); err != nil {
			return nil, fmt.Errorf("failed to load vertex config: %w", err)
		}
		return NewVertexAnalyzer(cfg), nil
	case "rest":
		cfg := RESTConfig{BaseConfig: base}
		if err := cfg.Load(); err != nil {
			return nil, fmt.Errorf("failed to load rest config: %w", err)
		}
		return NewRESTAnalyzer(cfg), nil
	case "stub":
		return NewStubAnalyzer(), nil
	default:
		return nil, fmt.Errorf("unsupported analyzer type: %s", analyzerType)
	}
}

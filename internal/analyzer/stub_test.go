package analyzer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubAnalyzer_SplitsCoListedIngredients(t *testing.T) {
	a := NewStubAnalyzer()
	require.NoError(t, a.Load(context.Background()))

	result, err := a.Analyze(context.Background(), "Phenoxyethanol and Ethylhexylglycerin, Water & Glycerin", "")
	require.NoError(t, err)

	names := make([]string, 0, len(result.Ingredients))
	for _, ing := range result.Ingredients {
		names = append(names, ing.Name)
	}
	assert.Equal(t, []string{"Phenoxyethanol", "Ethylhexylglycerin", "Water", "Glycerin"}, names)
}

func TestStubAnalyzer_Deterministic(t *testing.T) {
	a := NewStubAnalyzer()

	first, err := a.Analyze(context.Background(), "Niacinamide", "")
	require.NoError(t, err)
	second, err := a.Analyze(context.Background(), "Niacinamide", "")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestStubAnalyzer_ImageOnly(t *testing.T) {
	a := NewStubAnalyzer()

	result, err := a.Analyze(context.Background(), "", "data:image/jpeg;base64,Zm9v")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Ingredients)
	assert.NotEmpty(t, result.Summary)
}

func TestStubAnalyzer_RejectsEmptySubmission(t *testing.T) {
	a := NewStubAnalyzer()
	_, err := a.Analyze(context.Background(), "", "")
	require.ErrorIs(t, err, ErrEmptySubmission)
}

func TestNew_Factory(t *testing.T) {
	a, err := New("stub", "")
	require.NoError(t, err)
	assert.Equal(t, "stub", a.Name())

	_, err = New("mainframe", "")
	require.Error(t, err)
}

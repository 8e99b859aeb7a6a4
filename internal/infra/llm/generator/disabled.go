package generator

import (
	"context"

	"github.com/yanqian/content-interlinker/internal/domain/generation"
	apperrors "github.com/yanqian/content-interlinker/pkg/errors"
)

// Disabled stands in when no backend is configured. Every call fails, so
// suggestion operations return empty lists.
type Disabled struct{}

// Generate implements generation.Generator.
func (Disabled) Generate(context.Context, generation.Request) (string, error) {
	return "", apperrors.Wrap(apperrors.CodeLLM, "generation backend not configured", nil)
}

var _ generation.Generator = Disabled{}

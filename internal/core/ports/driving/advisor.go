package driving

import (
	"github.com/orbital-labs/corpus-cli/internal/core/domain"
)

// Advisor classifies a file set and proposes vertical configurations.
// Analysis performs no network or storage I/O.
type Advisor interface {
	// Analyze walks the given roots and classifies every regular file.
	Analyze(rootPaths []string) (*domain.CategoryReport, error)

	// SuggestVerticals ranks proposed configurations for a report:
	// descending by file count, ties broken by total size descending.
	SuggestVerticals(report *domain.CategoryReport) []domain.VerticalSuggestion
}

package services

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/orbital-labs/corpus-cli/internal/core/domain"
	"github.com/orbital-labs/corpus-cli/internal/core/ports/driving"
	"github.com/orbital-labs/corpus-cli/internal/logger"
)

// Chunking defaults for suggestions with no category profile: the
// combined suggestion and an unknown-dominated corpus.
const (
	fallbackChunkSize = 2000
	fallbackOverlap   = 100
)

// combinedThreshold is the number of distinct classified categories above
// which a single combined vertical stops being a sensible default and is
// offered alongside the per-category ones.
const combinedThreshold = 2

// CategorizationAdvisor classifies a file set by extension and proposes
// vertical configurations. Analysis walks the local filesystem only; the
// suggestion step is pure computation over the report.
type CategorizationAdvisor struct{}

var _ driving.Advisor = (*CategorizationAdvisor)(nil)

// NewCategorizationAdvisor creates an advisor.
func NewCategorizationAdvisor() *CategorizationAdvisor {
	return &CategorizationAdvisor{}
}

// Analyze walks the given roots and classifies every regular file.
// Unreadable entries are recorded as warnings rather than aborting the
// scan. Metadata sidecars are not corpus content and are skipped.
func (a *CategorizationAdvisor) Analyze(rootPaths []string) (*domain.CategoryReport, error) {
	if len(rootPaths) == 0 {
		return nil, fmt.Errorf("%w: no paths to analyse", domain.ErrInvalidInput)
	}

	report := &domain.CategoryReport{}
	aggregates := make(map[domain.Category]*domain.CategoryStat)
	extensions := make(map[domain.Category]map[string]bool)

	for _, root := range rootPaths {
		err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %v", path, err))
				if entry != nil && entry.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if entry.IsDir() || !entry.Type().IsRegular() {
				return nil
			}
			if domain.IsSidecarKey(path) {
				return nil
			}

			info, err := entry.Info()
			if err != nil {
				report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %v", path, err))
				return nil
			}

			ext := strings.ToLower(filepath.Ext(path))
			category := domain.Classify(ext)

			report.Files = append(report.Files, domain.FileStat{
				Path:      path,
				Extension: ext,
				Size:      info.Size(),
			})
			report.TotalFiles++
			report.TotalSize += info.Size()

			stat, ok := aggregates[category]
			if !ok {
				stat = &domain.CategoryStat{Category: category}
				aggregates[category] = stat
				extensions[category] = make(map[string]bool)
			}
			stat.FileCount++
			stat.TotalSize += info.Size()
			if ext != "" {
				extensions[category][ext] = true
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}

	for category, stat := range aggregates {
		for ext := range extensions[category] {
			stat.Extensions = append(stat.Extensions, ext)
		}
		sort.Strings(stat.Extensions)
		report.Stats = append(report.Stats, *stat)
	}
	sortByWeight(report.Stats, func(s domain.CategoryStat) (int, int64) {
		return s.FileCount, s.TotalSize
	})

	logger.Debug("Analysed %d files (%d bytes) across %d categories",
		report.TotalFiles, report.TotalSize, len(report.Stats))
	return report, nil
}

// SuggestVerticals proposes one vertical per classified category, plus a
// combined vertical over the whole classified corpus when the categories
// are too many to index separately with sensible defaults.
//
// Unknown files stay in the report but produce no suggestion unless they
// form the largest group. Results are ordered descending by file count,
// ties broken by total size descending.
func (a *CategorizationAdvisor) SuggestVerticals(report *domain.CategoryReport) []domain.VerticalSuggestion {
	if report == nil || report.TotalFiles == 0 {
		return nil
	}

	classified := 0
	for _, stat := range report.Stats {
		if stat.Category != domain.CategoryUnknown {
			classified++
		}
	}

	suggestions := make([]domain.VerticalSuggestion, 0, classified+1)

	if classified > combinedThreshold {
		combined := domain.VerticalSuggestion{
			Category:        domain.CategoryCombined,
			SuggestedPrefix: "all",
			ChunkSize:       fallbackChunkSize,
			Overlap:         fallbackOverlap,
			Description:     "All classified content in one vertical",
		}
		extSet := make(map[string]bool)
		for _, stat := range report.Stats {
			if stat.Category == domain.CategoryUnknown {
				continue
			}
			combined.FileCount += stat.FileCount
			combined.TotalSize += stat.TotalSize
			for _, ext := range stat.Extensions {
				extSet[ext] = true
			}
		}
		for ext := range extSet {
			combined.Extensions = append(combined.Extensions, ext)
		}
		sort.Strings(combined.Extensions)
		suggestions = append(suggestions, combined)
	}

	largest := largestCategory(report.Stats)
	for _, stat := range report.Stats {
		if stat.FileCount == 0 {
			continue
		}
		if stat.Category == domain.CategoryUnknown && stat.Category != largest {
			continue
		}
		suggestions = append(suggestions, suggestionFor(stat))
	}

	sortByWeight(suggestions, func(s domain.VerticalSuggestion) (int, int64) {
		return s.FileCount, s.TotalSize
	})
	return suggestions
}

// suggestionFor builds the per-category suggestion from its aggregate.
func suggestionFor(stat domain.CategoryStat) domain.VerticalSuggestion {
	suggestion := domain.VerticalSuggestion{
		Category:        stat.Category,
		SuggestedPrefix: prefixFor(stat.Category),
		FileCount:       stat.FileCount,
		TotalSize:       stat.TotalSize,
		Extensions:      stat.Extensions,
		ChunkSize:       fallbackChunkSize,
		Overlap:         fallbackOverlap,
	}
	if profile := domain.Profile(stat.Category); profile != nil {
		suggestion.ChunkSize = profile.ChunkSize
		suggestion.Overlap = profile.Overlap
		suggestion.Description = profile.Description
	}
	return suggestion
}

// prefixFor derives the short vertical prefix for a category.
func prefixFor(category domain.Category) string {
	name := string(category)
	if len(name) > 3 {
		name = name[:3]
	}
	return name
}

// largestCategory returns the category with the most files, ties broken
// by total size.
func largestCategory(stats []domain.CategoryStat) domain.Category {
	best := domain.Category("")
	bestCount, bestSize := -1, int64(-1)
	for _, stat := range stats {
		if stat.FileCount > bestCount || (stat.FileCount == bestCount && stat.TotalSize > bestSize) {
			best = stat.Category
			bestCount = stat.FileCount
			bestSize = stat.TotalSize
		}
	}
	return best
}

// sortByWeight orders entries descending by count, ties by size
// descending. The sort is stable so equal entries keep generation order.
func sortByWeight[T any](entries []T, weight func(T) (int, int64)) {
	sort.SliceStable(entries, func(i, j int) bool {
		ci, si := weight(entries[i])
		cj, sj := weight(entries[j])
		if ci != cj {
			return ci > cj
		}
		return si > sj
	})
}

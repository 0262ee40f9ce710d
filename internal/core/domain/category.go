package domain

// Category is a content classification bucket.
type Category string

const (
	CategoryCode         Category = "code"
	CategoryDocuments    Category = "documents"
	CategoryStructured   Category = "structured"
	CategorySpreadsheets Category = "spreadsheets"
	CategoryMedia        Category = "media"
	CategoryUnknown      Category = "unknown"
	CategoryCombined     Category = "combined"
)

// CategoryProfile describes a classification bucket: its extension set and
// the chunking defaults a vertical built for it should use.
type CategoryProfile struct {
	Category    Category
	Extensions  []string
	ChunkSize   int
	Overlap     int
	Description string
}

// CategoryProfiles is the fixed classification table, evaluated in order.
// An extension claimed by an earlier profile never reaches a later one,
// which is why ".csv" classifies as structured rather than spreadsheet.
var CategoryProfiles = []CategoryProfile{
	{
		Category:    CategoryCode,
		Extensions:  []string{".py", ".js", ".ts", ".java", ".cpp", ".cs", ".go", ".rb", ".php", ".html", ".css", ".scss"},
		ChunkSize:   3000,
		Overlap:     200,
		Description: "Source code files",
	},
	{
		Category:    CategoryDocuments,
		Extensions:  []string{".pdf", ".docx", ".pptx", ".txt", ".md", ".rtf"},
		ChunkSize:   2000,
		Overlap:     100,
		Description: "Office documents and text files",
	},
	{
		Category:    CategoryStructured,
		Extensions:  []string{".json", ".xml", ".yaml", ".yml", ".toml", ".ini", ".csv"},
		ChunkSize:   5000,
		Overlap:     0,
		Description: "Structured data files",
	},
	{
		Category:    CategorySpreadsheets,
		Extensions:  []string{".xlsx", ".xls"},
		ChunkSize:   4000,
		Overlap:     50,
		Description: "Spreadsheet files",
	},
	{
		Category:    CategoryMedia,
		Extensions:  []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".mp4", ".mp3"},
		ChunkSize:   0,
		Overlap:     0,
		Description: "Media files (images, video, audio)",
	},
}

// categoryByExtension is built once from CategoryProfiles.
var categoryByExtension = func() map[string]Category {
	m := make(map[string]Category)
	for _, p := range CategoryProfiles {
		for _, ext := range p.Extensions {
			if _, claimed := m[ext]; !claimed {
				m[ext] = p.Category
			}
		}
	}
	return m
}()

// Classify maps a lowercase file extension (with leading dot) to its
// category. Every extension maps to exactly one category or unknown.
func Classify(ext string) Category {
	if c, ok := categoryByExtension[ext]; ok {
		return c
	}
	return CategoryUnknown
}

// Profile returns the profile for a category, or nil for unknown/combined.
func Profile(c Category) *CategoryProfile {
	for i := range CategoryProfiles {
		if CategoryProfiles[i].Category == c {
			return &CategoryProfiles[i]
		}
	}
	return nil
}

// FileStat is one scanned file: the advisor's unit of input.
type FileStat struct {
	Path      string
	Extension string
	Size      int64
}

// CategoryStat aggregates the scanned files of one category.
type CategoryStat struct {
	Category   Category
	FileCount  int
	TotalSize  int64
	Extensions []string
}

// CategoryReport is the complete classification of a scanned file set.
type CategoryReport struct {
	TotalFiles int
	TotalSize  int64
	Files      []FileStat
	Stats      []CategoryStat
	Warnings   []string
}

// Stat returns the aggregate for a category, or nil if the report has no
// files in it.
func (r *CategoryReport) Stat(c Category) *CategoryStat {
	for i := range r.Stats {
		if r.Stats[i].Category == c {
			return &r.Stats[i]
		}
	}
	return nil
}

// VerticalSuggestion is a proposed pipeline configuration for a category
// or for the combined corpus. Suggestions never mutate source files.
type VerticalSuggestion struct {
	Category        Category
	SuggestedPrefix string
	FileCount       int
	TotalSize       int64
	ChunkSize       int
	Overlap         int
	Extensions      []string
	Description     string
}

// Config converts a suggestion into a vertical configuration for the
// given container. Structured suggestions produce structured verticals.
func (s *VerticalSuggestion) Config(container string) VerticalConfig {
	kind := KindGeneral
	if s.Category == CategoryStructured {
		kind = KindStructured
	}
	return VerticalConfig{
		Prefix:            s.SuggestedPrefix,
		Kind:              kind,
		Container:         container,
		ChunkSize:         s.ChunkSize,
		Overlap:           s.Overlap,
		IndexedExtensions: s.Extensions,
	}
}

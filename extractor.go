package sanpo

// Report is the transparency report for a single document.
type Report struct {
	Meta      ReportMeta `json:"meta"`
	Structure Structure  `json:"structure"`
	Semantic  Semantic   `json:"semantic"`
}

// ReportMeta holds document-level metadata. Nil fields are absent.
type ReportMeta struct {
	// Title is the trimmed text of the first <title> element.
	Title *string `json:"title,omitempty"`

	// UpdatedAt is taken verbatim from <time datetime> or
	// <meta property="article:modified_time">. It is not parsed.
	UpdatedAt *string `json:"updatedAt,omitempty"`

	// OperatorName is the first operator paragraph, not a cleaned entity name.
	OperatorName *string `json:"operatorName,omitempty"`
}

// Structure holds the headings and paragraphs of a document in document order.
type Structure struct {
	H1         []string `json:"h1"`
	H2         []string `json:"h2"`
	Paragraphs []string `json:"paragraphs"`
}

// Semantic holds paragraphs tagged by keyword. Each bucket is a subset of
// Structure.Paragraphs and a paragraph may appear in several buckets.
type Semantic struct {
	Risks        []string `json:"risks"`
	Costs        []string `json:"costs"`
	OperatorInfo []string `json:"operatorInfo"`
}

// ReportExtractor builds transparency reports from HTML.
type ReportExtractor interface {
	// Extract parses HTML and returns its transparency report.
	Extract(html string) (*Report, error)
}

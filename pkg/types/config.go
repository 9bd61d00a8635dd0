package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "papercrawl/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries is the number of retries on HTTP 429. Zero disables retries:
	// a failed fetch is terminal for that URL.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// ExtractorBackend identifies the PDF text extraction tool.
type ExtractorBackend string

const (
	ExtractorNative    ExtractorBackend = "native"
	ExtractorPdftotext ExtractorBackend = "pdftotext"
	ExtractorContainer ExtractorBackend = "container"
)

// CrawlConfig holds settings for the crawl stage.
type CrawlConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// PapersDir is the base directory for downloaded PDFs; each ingestion
	// day gets its own YYYY-MM-DD subdirectory.
	PapersDir string `json:"papers_dir" yaml:"papers_dir" mapstructure:"papers_dir"`

	// Parallel processes input URLs concurrently instead of in order.
	Parallel bool `json:"parallel" yaml:"parallel" mapstructure:"parallel"`

	// Extractor selects the PDF text backend: native, pdftotext, or
	// container (pdftotext run inside ExtractorImage).
	Extractor ExtractorBackend `json:"extractor" yaml:"extractor" mapstructure:"extractor"`

	// ExtractorImage is the poppler image for the container backend.
	ExtractorImage string `json:"extractor_image,omitempty" yaml:"extractor_image,omitempty" mapstructure:"extractor_image"`

	// MaxPages bounds PDF text extraction to the first N pages (default 5).
	MaxPages int `json:"max_pages" yaml:"max_pages" mapstructure:"max_pages"`

	// URLs are the listing pages crawled when none are given on the
	// command line.
	URLs []string `json:"urls" yaml:"urls" mapstructure:"urls"`
}

// StoreBackend identifies the record store implementation.
type StoreBackend string

const (
	StoreSQLite StoreBackend = "sqlite"
	StoreBleve  StoreBackend = "bleve"
	StoreBolt   StoreBackend = "bolt"
)

// StoreConfig holds settings for the record store.
type StoreConfig struct {
	// Backend selects the store: sqlite, bleve, or bolt.
	Backend StoreBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Path is the database file (sqlite, bolt) or index directory (bleve).
	// Empty selects an in-memory index for bleve and is an error otherwise.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// FilterConfig holds the paper filter criteria. Empty fields match everything.
type FilterConfig struct {
	Keywords  []string  `json:"keywords" yaml:"keywords" mapstructure:"keywords"`
	Authors   []string  `json:"authors" yaml:"authors" mapstructure:"authors"`
	StartDate time.Time `json:"start_date" yaml:"start_date" mapstructure:"start_date"`
	EndDate   time.Time `json:"end_date" yaml:"end_date" mapstructure:"end_date"`
}

// ScoreConfig holds settings for the scoring stage.
type ScoreConfig struct {
	// Model is the chat model identifier (e.g. "gpt-4o-mini").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the model API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL overrides the API endpoint (e.g. a compatible proxy).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// TopN is how many of the most recent records are scored (default 30).
	TopN int `json:"top_n" yaml:"top_n" mapstructure:"top_n"`

	// MinExcitement is the excitement threshold for the exported shortlist (default 7).
	MinExcitement int `json:"min_excitement" yaml:"min_excitement" mapstructure:"min_excitement"`

	// Temperature is the sampling temperature sent to the model.
	Temperature float32 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is a logrus level name (debug, info, warn, error).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is "text" or "json".
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Crawl CrawlConfig `json:"crawl" yaml:"crawl" mapstructure:"crawl"`
	Store StoreConfig `json:"store" yaml:"store" mapstructure:"store"`
	Score ScoreConfig `json:"score" yaml:"score" mapstructure:"score"`
	Log   LogConfig   `json:"log" yaml:"log" mapstructure:"log"`
}

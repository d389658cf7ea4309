package config

// Config is the top-level docskin configuration, corresponding to .docskin.yml.
type Config struct {
	SiteDir        string       `yaml:"site_dir" koanf:"site_dir"`
	OutputDir      string       `yaml:"output_dir" koanf:"output_dir"`
	Include        []string     `yaml:"include" koanf:"include"`
	Exclude        []string     `yaml:"exclude" koanf:"exclude"`
	DefaultMode    string       `yaml:"default_mode" koanf:"default_mode"`
	Modes          []ModeConfig `yaml:"modes" koanf:"modes"`
	IconBaseURL    string       `yaml:"icon_base_url" koanf:"icon_base_url"`
	FetchTimeout   int          `yaml:"fetch_timeout" koanf:"fetch_timeout"` // seconds
	MaxConcurrency int          `yaml:"max_concurrency" koanf:"max_concurrency"`
	Fonts          []string     `yaml:"fonts" koanf:"fonts"`
	Header         HeaderConfig `yaml:"header" koanf:"header"`
	EditLabel      string       `yaml:"edit_label" koanf:"edit_label"`
	FooterNote     string       `yaml:"footer_note" koanf:"footer_note"`
	Server         ServerConfig `yaml:"server" koanf:"server"`
}

// ModeConfig is one selectable color mode.
type ModeConfig struct {
	Name  string `yaml:"name" koanf:"name"`
	Value string `yaml:"value" koanf:"value"`
	Icon  string `yaml:"icon" koanf:"icon"`
}

// NavLinkConfig is a header link, or a dropdown when Items is set.
type NavLinkConfig struct {
	Name  string          `yaml:"name" koanf:"name"`
	Href  string          `yaml:"href,omitempty" koanf:"href"`
	Items []NavLinkConfig `yaml:"items,omitempty" koanf:"items"`
}

// HeaderConfig holds the unified header settings.
type HeaderConfig struct {
	HomeURL  string          `yaml:"home_url" koanf:"home_url"`
	DocsURL  string          `yaml:"docs_url" koanf:"docs_url"`
	Logo     string          `yaml:"logo" koanf:"logo"`
	NavLinks []NavLinkConfig `yaml:"nav_links" koanf:"nav_links"`
}

// ServerConfig holds settings for `docskin serve`.
type ServerConfig struct {
	Port     int    `yaml:"port" koanf:"port"`
	DataDir  string `yaml:"data_dir" koanf:"data_dir"`
	AllowAll bool   `yaml:"allow_all" koanf:"allow_all"`
}

package config

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = ".docskin.yml"

// DefaultExcludes are glob patterns, relative to the site directory, that
// are never customized. Sphinx copies sources and assets next to the pages.
var DefaultExcludes = []string{
	"_static/**",
	"_sources/**",
	"_images/**",
}

// DefaultModes are the color modes offered when none are configured.
var DefaultModes = []ModeConfig{
	{Name: "Light", Value: "light", Icon: "_static/img/icons/sun.svg"},
	{Name: "Dark", Value: "dark", Icon: "_static/img/icons/moon.svg"},
	{Name: "System", Value: "system", Icon: "_static/img/icons/system.svg"},
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		SiteDir:        "_build/html",
		Include:        []string{"**/*.html"},
		Exclude:        append([]string(nil), DefaultExcludes...),
		DefaultMode:    "system",
		Modes:          append([]ModeConfig(nil), DefaultModes...),
		FetchTimeout:   10,
		MaxConcurrency: 4,
		Fonts:          []string{"Helvetica.ttc"},
		EditLabel:      "Edit on GitHub",
		Server: ServerConfig{
			Port:    8000,
			DataDir: ".docskin",
		},
	}
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
)

// siteDirCandidates are the usual output directories of documentation
// builders, checked in order.
var siteDirCandidates = []string{
	"_build/html",
	"docs/_build/html",
	"build/html",
	"site",
}

// detectSiteDir returns the first candidate directory containing an
// index.html, or the default.
func detectSiteDir() string {
	for _, dir := range siteDirCandidates {
		if _, err := os.Stat(filepath.Join(dir, "index.html")); err == nil {
			return dir
		}
	}
	return DefaultConfig().SiteDir
}

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to docskin! Let's configure your site.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Site directory.
	siteDir := detectSiteDir()
	if _, err := os.Stat(filepath.Join(siteDir, "index.html")); err == nil {
		fmt.Printf("Detected built site: %s\n\n", siteDir)
	}
	sitePrompt := promptui.Prompt{
		Label:   "Built HTML site directory",
		Default: siteDir,
	}
	siteStr, err := sitePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("site dir: %w", err)
	}
	cfg.SiteDir = siteStr

	// 2. Output directory.
	outputPrompt := promptui.Prompt{
		Label:   "Output directory (leave blank to rewrite in place)",
		Default: "",
	}
	outputDir, err := outputPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("output dir: %w", err)
	}
	cfg.OutputDir = outputDir

	// 3. Default color mode.
	values := make([]string, len(cfg.Modes))
	for i, m := range cfg.Modes {
		values[i] = m.Value
	}
	modePrompt := promptui.Select{
		Label:     "Default color mode",
		Items:     values,
		CursorPos: len(values) - 1,
	}
	_, defaultMode, err := modePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("default mode: %w", err)
	}
	cfg.DefaultMode = defaultMode

	// 4. Icon location.
	iconPrompt := promptui.Prompt{
		Label:   "Icon base URL (leave blank to read icons from the site directory)",
		Default: "",
		Validate: func(s string) error {
			if s != "" && !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
				return fmt.Errorf("must be an http(s) URL")
			}
			return nil
		},
	}
	iconBase, err := iconPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("icon base url: %w", err)
	}
	cfg.IconBaseURL = iconBase

	// 5. Header links.
	homePrompt := promptui.Prompt{
		Label:   "Project home URL",
		Default: "",
	}
	home, err := homePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("home url: %w", err)
	}
	cfg.Header.HomeURL = home

	// 6. Extra exclude patterns.
	excludePrompt := promptui.Prompt{
		Label:   "Extra exclude patterns (comma-separated, leave blank for defaults)",
		Default: "",
	}
	excludeStr, err := excludePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}
	if excludeStr != "" {
		cfg.Exclude = append(cfg.Exclude, splitAndTrim(excludeStr)...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}

package site

import (
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ziadkadry99/docskin/internal/colormode"
	"github.com/ziadkadry99/docskin/internal/dom"
	"github.com/ziadkadry99/docskin/internal/icons"
	"github.com/ziadkadry99/docskin/internal/page"
)

const fixtureDir = "testdata/site"

func testModes(t *testing.T) *colormode.ModeSet {
	t.Helper()
	set, err := colormode.NewModeSet([]colormode.Mode{
		{Name: "Light", Value: "light", Icon: "_static/img/icons/sun.svg"},
		{Name: "Dark", Value: "dark", Icon: "_static/img/icons/moon.svg"},
		{Name: "System", Value: "system", Icon: "_static/img/icons/system.svg"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return set
}

func newTestCustomizer(t *testing.T, siteDir, outputDir string) (*Customizer, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	modes := testModes(t)
	c, err := New(Config{
		SiteDir:     siteDir,
		OutputDir:   outputDir,
		Include:     []string{"**/*.html"},
		Exclude:     []string{"_static/**", "_sources/**"},
		Modes:       modes,
		DefaultMode: "system",
		Source:      icons.SVGOnly(icons.FSSource{FS: os.DirFS(siteDir)}),
		Page: page.Options{
			Fonts:     []string{"Helvetica.ttc"},
			EditLabel: "Edit on GitHub",
			Header: page.HeaderOptions{
				HomeURL: "https://example.com",
				Modes:   modes.All(),
			},
		},
		Logger: log.New(&logs, "", 0),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, &logs
}

func parseFile(t *testing.T, path string) *dom.Document {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	doc, err := dom.Parse(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return doc
}

func TestNew_Validation(t *testing.T) {
	modes := testModes(t)
	tests := []struct {
		name string
		cfg  Config
	}{
		{"no site dir", Config{Modes: modes, DefaultMode: "light"}},
		{"no modes", Config{SiteDir: "x", DefaultMode: "light"}},
		{"unknown default", Config{SiteDir: "x", Modes: modes, DefaultMode: "sepia"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestApply_ToOutputDir(t *testing.T) {
	out := t.TempDir()
	c, _ := newTestCustomizer(t, fixtureDir, out)

	report, err := c.Apply(context.Background())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	// index.html, guide/install.html, plain.html
	if report.Pages != 3 {
		t.Errorf("Pages = %d, want 3", report.Pages)
	}
	if report.Skipped != 0 {
		t.Errorf("Skipped = %d, want 0", report.Skipped)
	}

	// The plain page lacks the theme structure and is reported.
	var plainWarned bool
	for _, w := range report.Warnings {
		if strings.HasPrefix(w, "plain.html: ") {
			plainWarned = true
		}
		if strings.HasPrefix(w, "index.html: ") {
			t.Errorf("unexpected warning for themed page: %s", w)
		}
	}
	if !plainWarned {
		t.Errorf("expected warnings for plain.html, got %v", report.Warnings)
	}

	doc := parseFile(t, filepath.Join(out, "index.html"))
	if !page.Customized(doc) {
		t.Error("index.html not marked customized")
	}
	if got, _ := doc.Find("html").Attr(page.ColorModeAttr); got != "system" {
		t.Errorf("%s = %q, want system", page.ColorModeAttr, got)
	}
	toggle := doc.Find("." + page.ThemeButtonClass + " ." + page.ColorToggleIconClass + " svg rect")
	if toggle.Length() != 1 {
		t.Error("toggle does not show the system icon")
	}
	if n := doc.Find("." + page.ModeChoiceIconClass + " svg").Length(); n != 3 {
		t.Errorf("item icons = %d, want 3", n)
	}
	if v, _ := doc.Find("." + page.ThemeDropdownMenuClass).Attr("aria-expanded"); v != "false" {
		t.Errorf("menu aria-expanded = %q, want false", v)
	}
	// Without a live session the widget is driven by the inline client.
	client := doc.Find("body > script[" + page.StaticClientAttr + "]")
	if client.Length() != 1 || !strings.Contains(client.Text(), "toggleMobileMenu") {
		t.Error("static client not injected into applied page")
	}

	nested := parseFile(t, filepath.Join(out, "guide", "install.html"))
	if href, _ := nested.Find("link[rel=preload]").Attr("href"); href != "../_static/fonts/Helvetica.ttc" {
		t.Errorf("nested font href = %q", href)
	}

	// Assets are copied, sources untouched.
	for _, rel := range []string{"_static/theme.css", "_static/img/icons/moon.svg", "_sources/index.rst.txt"} {
		if _, err := os.Stat(filepath.Join(out, filepath.FromSlash(rel))); err != nil {
			t.Errorf("asset %s not copied: %v", rel, err)
		}
	}
	orig := parseFile(t, filepath.Join(fixtureDir, "index.html"))
	if page.Customized(orig) {
		t.Fatal("fixture was modified in place")
	}
}

func TestApply_InPlaceIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	if err := copyTree(fixtureDir, dir, nil); err != nil {
		t.Fatalf("copy fixture: %v", err)
	}

	first, _ := newTestCustomizer(t, dir, "")
	report, err := first.Apply(context.Background())
	if err != nil {
		t.Fatalf("first Apply: %v", err)
	}
	if report.Pages != 3 {
		t.Fatalf("first run Pages = %d, want 3", report.Pages)
	}
	before, _ := os.ReadFile(filepath.Join(dir, "index.html"))

	second, _ := newTestCustomizer(t, dir, "")
	report, err = second.Apply(context.Background())
	if err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	if report.Pages != 0 || report.Skipped != 3 {
		t.Errorf("second run = %+v, want all skipped", report)
	}
	after, _ := os.ReadFile(filepath.Join(dir, "index.html"))
	if !bytes.Equal(before, after) {
		t.Error("second run rewrote an already customized page")
	}
}

func TestApply_MissingIconsAreWarnings(t *testing.T) {
	dir := t.TempDir()
	if err := copyTree(fixtureDir, dir, nil); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(dir, "_static", "img", "icons", "moon.svg")); err != nil {
		t.Fatal(err)
	}

	c, logs := newTestCustomizer(t, dir, t.TempDir())
	report, err := c.Apply(context.Background())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(report.Warnings) == 0 || !strings.HasPrefix(report.Warnings[0], "icons: ") {
		t.Errorf("expected icon warning first, got %v", report.Warnings)
	}
	if !strings.Contains(logs.String(), `"dark"`) {
		t.Errorf("fetch failure not logged: %s", logs.String())
	}
	if _, ok := c.Icons().Get("dark"); ok {
		t.Error("failed icon should stay unloaded")
	}
	if _, ok := c.Icons().Get("light"); !ok {
		t.Error("other icons should still load")
	}
}

func TestApply_CancelledContext(t *testing.T) {
	c, _ := newTestCustomizer(t, fixtureDir, t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Apply(ctx); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestRewritePage_SelectsMode(t *testing.T) {
	c, _ := newTestCustomizer(t, fixtureDir, t.TempDir())
	src, err := os.ReadFile(filepath.Join(fixtureDir, "guide", "install.html"))
	if err != nil {
		t.Fatal(err)
	}

	out, warnings, err := c.RewritePage(context.Background(), "guide/install.html", src, "dark")
	if err != nil {
		t.Fatalf("RewritePage: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}

	doc, err := dom.Parse(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := doc.Find("html").Attr(page.ColorModeAttr); got != "dark" {
		t.Errorf("%s = %q, want dark", page.ColorModeAttr, got)
	}
	if doc.Find("." + page.ColorToggleIconClass + " svg path").Length() != 1 {
		t.Error("toggle does not show the moon icon")
	}
	if href, _ := doc.Find("link[rel=preload]").Attr("href"); href != "../_static/fonts/Helvetica.ttc" {
		t.Errorf("font href = %q", href)
	}
}

func TestRewritePage_InvalidModeKeepsDefault(t *testing.T) {
	c, logs := newTestCustomizer(t, fixtureDir, t.TempDir())
	src, _ := os.ReadFile(filepath.Join(fixtureDir, "index.html"))

	out, warnings, err := c.RewritePage(context.Background(), "index.html", src, "sepia")
	if err != nil {
		t.Fatalf("RewritePage: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want one", warnings)
	}
	if _, ok := warnings[0].(*colormode.InvalidModeError); !ok {
		t.Errorf("warning type = %T, want *colormode.InvalidModeError", warnings[0])
	}
	if !strings.Contains(logs.String(), "sepia") {
		t.Error("invalid mode not logged")
	}
	if !strings.Contains(string(out), page.ColorModeAttr+`="system"`) {
		t.Error("default mode not kept")
	}
}

func TestRewritePage_AlreadyCustomized(t *testing.T) {
	c, _ := newTestCustomizer(t, fixtureDir, t.TempDir())
	src, _ := os.ReadFile(filepath.Join(fixtureDir, "index.html"))

	once, _, err := c.RewritePage(context.Background(), "index.html", src, "")
	if err != nil {
		t.Fatal(err)
	}
	twice, _, err := c.RewritePage(context.Background(), "index.html", once, "light")
	if err != nil {
		t.Fatal(err)
	}

	doc, _ := dom.Parse(bytes.NewReader(twice))
	if n := doc.Find(".unified-header").Length(); n != 1 {
		t.Errorf("headers = %d, want 1", n)
	}
	if got, _ := doc.Find("html").Attr(page.ColorModeAttr); got != "light" {
		t.Errorf("mode = %q, want light", got)
	}
	if doc.Find("." + page.ColorToggleIconClass + " svg circle").Length() != 1 {
		t.Error("toggle does not show the sun icon")
	}
}

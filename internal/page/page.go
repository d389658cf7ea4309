package page

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/ziadkadry99/docskin/internal/colormode"
	"github.com/ziadkadry99/docskin/internal/dom"
)

// NavLink is a header navigation entry: either a link (Href) or a dropdown
// (Items).
type NavLink struct {
	Name  string
	Href  string
	Items []NavLink
}

// HeaderOptions configures BuildHeader.
type HeaderOptions struct {
	HomeURL   string
	HomeLabel string
	DocsURL   string // the nav link pointing here is marked active
	LogoURL   string
	NavLinks  []NavLink
	Modes     []colormode.Mode
}

// Options configures Apply.
type Options struct {
	Root       string // relative path from the page to the site root, e.g. "../"
	Fonts      []string
	EditLabel  string
	FooterNote string // markdown; empty skips the note
	Header     HeaderOptions
	LiveScript string // when set, the live client is loaded instead of the static one
}

// MarkerName is the name of the meta tag Apply leaves in customized pages.
const MarkerName = "docskin"

// Customized reports whether Apply has already run on doc.
func Customized(doc *dom.Document) bool {
	return doc.Find(`head meta[name="`+MarkerName+`"]`).Length() > 0
}

// Apply runs every rewrite in order. A step whose selectors are missing is
// skipped; the errors of all skipped steps are returned joined. A page that
// is already customized is left alone.
func Apply(doc *dom.Document, opts Options) error {
	if Customized(doc) {
		return nil
	}

	var errs []error
	add := func(step string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", step, err))
		}
	}

	PreloadFonts(doc, opts.Fonts, path.Join(opts.Root, "_static/fonts"))
	add("rearrange", Rearrange(doc))
	add("flyover menu", UpdateFlyoverMenu(doc))
	add("clean search input", CleanSearchInput(doc))
	add("search separator", AddHRUnderSearchForm(doc))
	add("header", BuildHeader(doc, opts.Header))
	if opts.EditLabel != "" {
		add("edit button", UpdateEditButtonLabel(doc, opts.EditLabel))
	}
	if opts.FooterNote != "" {
		add("footer note", AddFooterNote(doc, opts.FooterNote))
	}
	UpdateFooterButtonIcons(doc)
	if opts.LiveScript != "" {
		InjectLiveClient(doc, opts.LiveScript)
	} else {
		InjectStaticClient(doc)
	}
	doc.Head().AppendNodes(dom.NewNode("meta", "name", MarkerName, "content", "customized"))

	return errors.Join(errs...)
}

// PreloadFonts adds a preload link to <head> for every font file.
func PreloadFonts(doc *dom.Document, fonts []string, base string) {
	head := doc.Head()
	for _, f := range fonts {
		head.AppendNodes(dom.NewNode("link",
			"rel", "preload",
			"as", "font",
			"href", path.Join(base, f),
			"crossorigin", "",
		))
	}
}

// Rearrange moves every top-level body div into a wrapper div, adds the
// backdrop, and lifts the content element out of its RTD wrapper into the
// navigation grid.
func Rearrange(doc *dom.Document) error {
	if doc.Find("body > div." + WrapperClass).Length() > 0 {
		return nil
	}

	body := doc.Body()
	divs := body.ChildrenFiltered("div")

	body.PrependNodes(dom.NewNode("div", "class", WrapperClass))
	wrapper := body.ChildrenFiltered("div." + WrapperClass).First()
	wrapper.AppendSelection(divs)
	wrapper.AppendSelection(doc.Find(".rst-versions"))
	wrapper.AppendNodes(dom.NewNode("div", "class", "backdrop"))

	content, err := doc.First(".wy-nav-content")
	if err != nil {
		return err
	}
	grid, err := doc.First(".wy-grid-for-nav")
	if err != nil {
		return err
	}
	content.SetAttr("id", "content")
	grid.AppendSelection(content)
	doc.Find("section.wy-nav-content-wrap").Remove()
	return nil
}

// UpdateEditButtonLabel relabels the "edit this page" link.
func UpdateEditButtonLabel(doc *dom.Document, label string) error {
	link, err := doc.First(".wy-breadcrumbs-aside a")
	if err != nil {
		return err
	}
	link.SetText(label)
	return nil
}

// CleanSearchInput removes the project link and version badge that precede
// the search box.
func CleanSearchInput(doc *dom.Document) error {
	search, err := doc.First(".wy-side-nav-search")
	if err != nil {
		return err
	}
	search.ChildrenFiltered("a").First().Remove()
	search.ChildrenFiltered("div.version").First().Remove()
	return nil
}

// AddHRUnderSearchForm inserts a rule between the search form and the
// navigation menu.
func AddHRUnderSearchForm(doc *dom.Document) error {
	menu, err := doc.First(".wy-menu-vertical[role=navigation]")
	if err != nil {
		return err
	}
	menu.BeforeNodes(dom.NewNode("hr"))
	return nil
}

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

// AddFooterNote renders note (markdown) into a p.footer-note placed after
// the content-info block. External links open in a new tab.
func AddFooterNote(doc *dom.Document, note string) error {
	info, err := doc.First("div[role=contentinfo]")
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(note), &buf); err != nil {
		return fmt.Errorf("rendering footer note: %w", err)
	}
	inner := unwrapParagraph(buf.String())

	info.AfterNodes(dom.NewNode("p", "class", "footer-note"))
	p := info.Next()
	if err := dom.NewElement(p, "p.footer-note").SetContent(inner); err != nil {
		return err
	}
	p.Find(`a[href^="http"]`).SetAttr("target", "_blank")
	return nil
}

// unwrapParagraph returns the inner HTML when rendered is a single <p>.
func unwrapParagraph(rendered string) string {
	tmp, err := goquery.NewDocumentFromReader(strings.NewReader(rendered))
	if err != nil {
		return rendered
	}
	children := tmp.Find("body").Children()
	if children.Length() != 1 || goquery.NodeName(children) != "p" {
		return rendered
	}
	inner, err := children.Html()
	if err != nil {
		return rendered
	}
	return inner
}

// UpdateFooterButtonIcons swaps the previous/next arrow icons for carets.
func UpdateFooterButtonIcons(doc *dom.Document) {
	doc.Find(".fa-arrow-circle-right").First().
		AddClass("fa-caret-right").
		RemoveClass("fa-arrow-circle-right")
	doc.Find(".fa-arrow-circle-left").First().
		AddClass("fa-caret-left").
		RemoveClass("fa-arrow-circle-left")
}

// UpdateFlyoverMenu relabels the Read the Docs version flyover as
// "RTD ▾ Latest".
func UpdateFlyoverMenu(doc *dom.Document) error {
	current, err := doc.First(".rst-current-version")
	if err != nil {
		return err
	}
	label := current.Find(".fa.fa-book").First()
	if label.Length() == 0 {
		return &dom.MissingSelectorError{Selector: ".rst-current-version .fa.fa-book"}
	}
	caret := current.Find(".fa.fa-caret-down").First()
	if caret.Length() == 0 {
		return &dom.MissingSelectorError{Selector: ".rst-current-version .fa.fa-caret-down"}
	}

	label.Remove().SetText("RTD")
	caret.Remove()
	current.Empty()
	current.AppendSelection(label)
	current.AppendSelection(caret)

	latest := dom.NewNode("span")
	latest.AppendChild(dom.Text("Latest"))
	current.AppendNodes(latest)
	return nil
}

type headerLink struct {
	Name     string
	Href     string
	Active   bool
	External bool
	Items    []headerLink
}

type headerData struct {
	HomeURL   string
	HomeLabel string
	LogoURL   string
	Links     []headerLink
	Modes     []colormode.Mode
	Chevron   template.HTML
	Arrow     template.HTML
	Hamburger template.HTML
}

// BuildHeader prepends the unified header to the wrapper: home link, skip
// link, navigation, the color-mode widget and the mobile menu button. The
// widget is empty; a colormode.Controller renders into it through
// ThemeMounts.
func BuildHeader(doc *dom.Document, opts HeaderOptions) error {
	wrapper, err := doc.First("." + WrapperClass)
	if err != nil {
		return err
	}
	if wrapper.ChildrenFiltered(".unified-header").Length() > 0 {
		return nil
	}

	data := headerData{
		HomeURL:   opts.HomeURL,
		HomeLabel: opts.HomeLabel,
		LogoURL:   opts.LogoURL,
		Modes:     opts.Modes,
		Chevron:   template.HTML(chevronDownSVG),
		Arrow:     template.HTML(neArrowSVG),
		Hamburger: template.HTML(hamburgerSVG),
	}
	if data.HomeLabel == "" {
		data.HomeLabel = "Project home"
	}
	for _, l := range opts.NavLinks {
		hl := headerLink{Name: l.Name, Href: l.Href}
		if len(l.Items) > 0 {
			for _, item := range l.Items {
				hl.Items = append(hl.Items, headerLink{
					Name:     item.Name,
					Href:     item.Href,
					External: strings.HasPrefix(item.Href, "http"),
				})
			}
		} else {
			hl.Active = l.Href == opts.DocsURL
			hl.External = strings.HasPrefix(l.Href, "http") && l.Href != opts.HomeURL
		}
		data.Links = append(data.Links, hl)
	}

	var buf bytes.Buffer
	if err := headerTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("rendering header: %w", err)
	}
	wrapper.PrependHtml(buf.String())
	return nil
}

// InjectLiveClient appends a deferred script tag loading src.
func InjectLiveClient(doc *dom.Document, src string) {
	doc.Body().AppendNodes(dom.NewNode("script", "src", src, "defer", ""))
}

// ThemeMounts returns the color-mode widget's mount points in doc.
func ThemeMounts(doc *dom.Document) dom.Mounts {
	return dom.Mounts{
		Doc:            doc,
		ToggleSelector: "." + ThemeButtonClass + " ." + ColorToggleIconClass,
		MenuSelector:   "." + ThemeDropdownMenuClass,
		ItemSelector: func(value string) string {
			return fmt.Sprintf(".%s[data-mode=%q] .%s", ThemeDropdownItemClass, value, ModeChoiceIconClass)
		},
	}
}

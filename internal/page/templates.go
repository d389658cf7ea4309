package page

import "html/template"

// Class names shared between the generated markup, the stylesheet and the
// live client.
const (
	WrapperClass            = "unified-wrapper"
	MenuOpenClass           = "menu-open"
	MobileMenuToggleClass   = "shift"
	ThemeButtonWrapperClass = "theme-button-wrapper"
	ThemeButtonClass        = "theme-button"
	ThemeDropdownMenuClass  = "theme-dropdown-menu"
	ThemeDropdownItemClass  = "theme-dropdown-item"
	ColorToggleIconClass    = "color-toggle-icon"
	ModeChoiceIconClass     = "mode-choice-icon"
	MobileMenuIconClass     = "mobile-menu-icon"
)

// ColorModeAttr on <html> carries the active mode value for the stylesheet.
const ColorModeAttr = "data-color-mode"

const chevronDownSVG = `<svg class="chevron-icon" width="12" height="12" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" aria-hidden="true"><polyline points="6 9 12 15 18 9"></polyline></svg>`

const neArrowSVG = `<svg class="external-link-icon" width="12" height="12" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" aria-hidden="true"><line x1="7" y1="17" x2="17" y2="7"></line><polyline points="7 7 17 7 17 17"></polyline></svg>`

const hamburgerSVG = `<svg width="24" height="24" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" aria-hidden="true"><line x1="3" y1="6" x2="21" y2="6"></line><line x1="3" y1="12" x2="21" y2="12"></line><line x1="3" y1="18" x2="21" y2="18"></line></svg>`

var headerTemplate = template.Must(template.New("header").Parse(`<div class="unified-header">
<div class="inner-header">
<a class="home-link" href="{{.HomeURL}}" aria-label="{{.HomeLabel}}">{{if .LogoURL}}<img class="home-logo" src="{{.LogoURL}}" alt="">{{end}}</a>
<a class="skip-to-content" href="#content">skip to content</a>
<nav class="nav-bar">
{{- range .Links}}
{{- if .Items}}
<div class="nav-dropdown" key="{{.Name}}">
<button class="nav-link dropdown-button" id="dropdown-button" key="{{.Name}}" aria-label="{{.Name}}" aria-haspopup="true" aria-expanded="false">{{.Name}}{{$.Chevron}}</button>
<div class="dropdown-items">
{{- range .Items}}
<a class="dropdown-item" key="{{.Name}}" href="{{.Href}}" aria-label="{{.Name}}"{{if .External}} target="_blank" rel="noopener noreferrer"{{end}}>{{.Name}}{{$.Arrow}}</a>
{{- end}}
</div>
</div>
{{- else}}
<a class="nav-link{{if .Active}} active{{end}}" key="{{.Name}}" href="{{.Href}}" aria-label="{{.Name}}"{{if .External}} target="_blank" rel="noopener noreferrer"{{end}}>{{.Name}}</a>
{{- end}}
{{- end}}
</nav>
<div class="nav-button-container">
<div class="` + ThemeButtonWrapperClass + `">
<button class="` + ThemeButtonClass + `" type="button" aria-label="Theme menu button" aria-haspopup="true"><span class="` + ColorToggleIconClass + `"></span></button>
<div class="` + ThemeDropdownMenuClass + `" aria-expanded="false" aria-label="Toggle theme menu">
{{- range .Modes}}
<button class="` + ThemeDropdownItemClass + `" type="button" key="{{.Value}}" data-mode="{{.Value}}"><span>{{.Name}}</span><div class="` + ModeChoiceIconClass + `"></div></button>
{{- end}}
</div>
</div>
<button class="mobile-menu-button" type="button" aria-label="Toggle menu" key="menu button"><span class="` + MobileMenuIconClass + `">{{.Hamburger}}</span></button>
</div>
</div>
</div>`))

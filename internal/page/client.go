package page

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ziadkadry99/docskin/internal/dom"
)

// StorageKey is the localStorage key the static client keeps the chosen
// mode under.
const StorageKey = "docskin-color-mode"

// StaticClientAttr marks the inline script added by InjectStaticClient.
const StaticClientAttr = "data-docskin-client"

// MobileMenuScript defines toggleMobileMenu(), which opens and closes the
// navigation on small screens. Both page clients include it.
var MobileMenuScript = strings.NewReplacer(
	"{{shift}}", MobileMenuToggleClass,
	"{{wrapper}}", WrapperClass,
	"{{menuOpen}}", MenuOpenClass,
).Replace(`function toggleMobileMenu() {
    document.querySelectorAll('[data-toggle="rst-versions"]').forEach(function (el) {
      el.classList.toggle("{{shift}}");
    });
    document.querySelectorAll('[data-toggle="wy-nav-shift"]').forEach(function (el) {
      el.classList.toggle("{{shift}}");
    });
    var wrapper = document.querySelector(".{{wrapper}}");
    if (wrapper) {
      wrapper.classList.toggle("{{menuOpen}}");
    }
  }`)

// staticClientScript drives the theme widget without a server: the button
// flips the menu, an item sets the mode, copies its icon into the toggle,
// remembers the choice and closes the menu.
var staticClientScript = strings.NewReplacer(
	"{{key}}", StorageKey,
	"{{modeAttr}}", ColorModeAttr,
	"{{button}}", ThemeButtonClass,
	"{{menu}}", ThemeDropdownMenuClass,
	"{{item}}", ThemeDropdownItemClass,
	"{{toggleIcon}}", ColorToggleIconClass,
	"{{choiceIcon}}", ModeChoiceIconClass,
	"{{mobileMenu}}", MobileMenuScript,
).Replace(`(function () {
  "use strict";

  function menu() {
    return document.querySelector(".{{menu}}");
  }

  function setMenu(open) {
    var m = menu();
    if (m) {
      m.setAttribute("aria-expanded", String(open));
    }
  }

  function setMode(value) {
    var item = document.querySelector('.{{item}}[data-mode="' + value + '"]');
    if (!item) {
      return;
    }
    document.documentElement.setAttribute("{{modeAttr}}", value);
    var icon = item.querySelector(".{{choiceIcon}}");
    var toggle = document.querySelector(".{{button}} .{{toggleIcon}}");
    if (icon && toggle) {
      toggle.innerHTML = icon.innerHTML;
    }
    try { localStorage.setItem("{{key}}", value); } catch (err) {}
  }

  {{mobileMenu}}

  try {
    var stored = localStorage.getItem("{{key}}");
    if (stored) { setMode(stored); }
  } catch (err) {}

  document.addEventListener("click", function (e) {
    var item = e.target.closest(".{{item}}");
    if (item) {
      setMode(item.getAttribute("data-mode"));
      setMenu(false);
      return;
    }
    if (e.target.closest(".{{button}}")) {
      var m = menu();
      setMenu(!(m && m.getAttribute("aria-expanded") === "true"));
      return;
    }
    if (e.target.closest(".mobile-menu-button")) {
      toggleMobileMenu();
      return;
    }
    if (!e.target.closest(".{{menu}}")) {
      setMenu(false);
    }
  });

  document.addEventListener("keydown", function (e) {
    if (e.key === "Escape") {
      setMenu(false);
    }
  });
})();
`)

// InjectStaticClient appends the inline client used by pages served without
// a live session.
func InjectStaticClient(doc *dom.Document) {
	script := &html.Node{
		Type:     html.ElementNode,
		Data:     "script",
		DataAtom: atom.Script,
		Attr:     []html.Attribute{{Key: StaticClientAttr, Val: "static"}},
	}
	script.AppendChild(dom.Text(staticClientScript))
	doc.Body().AppendNodes(script)
}

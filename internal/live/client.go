package live

import (
	"net/http"
	"strings"

	"github.com/ziadkadry99/docskin/internal/page"
)

// ScriptPath is where the browser client is served.
const ScriptPath = "/_docskin/live.js"

// SocketPath is the live session endpoint.
const SocketPath = "/ws/color-mode"

// ServeScript serves the browser client.
func ServeScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write([]byte(clientScript))
}

// clientScript applies patches from the live session to the theme widget
// and reports clicks back. It also drives the mobile menu, which has no
// server state.
var clientScript = strings.NewReplacer(
	"{{socket}}", SocketPath,
	"{{mobileMenu}}", page.MobileMenuScript,
	"{{button}}", page.ThemeButtonClass,
	"{{menu}}", page.ThemeDropdownMenuClass,
	"{{item}}", page.ThemeDropdownItemClass,
	"{{toggleIcon}}", page.ColorToggleIconClass,
	"{{choiceIcon}}", page.ModeChoiceIconClass,
	"{{modeAttr}}", page.ColorModeAttr,
).Replace(`(function () {
  "use strict";

  var socket = null;
  var retry = 500;

  function mountFor(msg) {
    switch (msg.mount) {
      case "toggle":
        return document.querySelector(".{{button}} .{{toggleIcon}}");
      case "menu":
        return document.querySelector(".{{menu}}");
      case "item":
        return document.querySelector('.{{item}}[data-mode="' + msg.value + '"] .{{choiceIcon}}');
    }
    return null;
  }

  function apply(msg) {
    if (msg.type === "mode") {
      document.documentElement.setAttribute("{{modeAttr}}", msg.mode);
      return;
    }
    if (msg.type === "error") {
      console.warn("docskin:", msg.error);
      return;
    }
    if (msg.type !== "patch") {
      return;
    }
    var el = mountFor(msg);
    if (!el) {
      return;
    }
    if (typeof msg.content === "string") {
      el.innerHTML = msg.content;
    }
    if (typeof msg.expanded === "boolean") {
      el.setAttribute("aria-expanded", String(msg.expanded));
    }
  }

  {{mobileMenu}}

  function send(ev) {
    if (socket && socket.readyState === WebSocket.OPEN) {
      socket.send(JSON.stringify(ev));
    }
  }

  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    socket = new WebSocket(proto + location.host + "{{socket}}");
    socket.onopen = function () { retry = 500; };
    socket.onmessage = function (e) {
      try { apply(JSON.parse(e.data)); } catch (err) { console.warn("docskin:", err); }
    };
    socket.onclose = function () {
      setTimeout(connect, retry);
      retry = Math.min(retry * 2, 10000);
    };
  }

  document.addEventListener("click", function (e) {
    var item = e.target.closest(".{{item}}");
    if (item) {
      send({ type: "select", mode: item.getAttribute("data-mode") });
      return;
    }
    if (e.target.closest(".{{button}}")) {
      send({ type: "toggle" });
      return;
    }
    if (e.target.closest(".mobile-menu-button")) {
      toggleMobileMenu();
      return;
    }
    if (!e.target.closest(".{{menu}}")) {
      send({ type: "close" });
    }
  });

  document.addEventListener("keydown", function (e) {
    if (e.key === "Escape") {
      send({ type: "close" });
    }
  });

  connect();
})();
`)

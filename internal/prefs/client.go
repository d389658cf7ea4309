package prefs

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// CookieName is the cookie carrying the anonymous client id.
const CookieName = "docskin_client"

const cookieMaxAge = 365 * 24 * time.Hour

// ClientID returns the client id from the request cookie. When the cookie
// is missing or malformed a new id is issued and set on w.
func ClientID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String()
		}
	}

	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

package state

import (
	"net/http"

	"github.com/google/uuid"
)

// ClientCookie identifies an anonymous browser.
const ClientCookie = "asg_client"

// ClientID returns the client id from the request cookie, issuing a new
// one on the response when the cookie is missing or malformed.
func ClientID(w http.ResponseWriter, r *http.Request, secure bool) string {
	if c, err := r.Cookie(ClientCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     ClientCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(DefaultTTL.Seconds()),
	})
	return id
}

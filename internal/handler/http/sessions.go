package http

import (
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/vasiliy-maslov/food-ordering/internal/auth"
	"github.com/vasiliy-maslov/food-ordering/internal/user"
)

const sessionName = "food-ordering-session"

// Sessions wraps the cookie store holding the logged-in identity.
// There is no cart without an authenticated session, so the cart store
// is keyed by the user id carried here.
type Sessions struct {
	store *sessions.CookieStore
}

func NewSessions(secret string) *Sessions {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{store: store}
}

func (s *Sessions) SignIn(w http.ResponseWriter, r *http.Request, u *user.User) error {
	session, _ := s.store.Get(r, sessionName)
	session.Values["user_id"] = u.ID
	session.Values["username"] = u.Username
	session.Values["is_admin"] = u.IsAdmin
	return session.Save(r, w)
}

func (s *Sessions) SignOut(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.store.Get(r, sessionName)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// Identity reads the signed-in identity from the session cookie.
func (s *Sessions) Identity(r *http.Request) (auth.Identity, bool) {
	session, _ := s.store.Get(r, sessionName)

	userID, ok := session.Values["user_id"].(int64)
	if !ok {
		return auth.Identity{}, false
	}
	username, _ := session.Values["username"].(string)
	isAdmin, _ := session.Values["is_admin"].(bool)

	return auth.Identity{UserID: userID, Username: username, IsAdmin: isAdmin}, true
}

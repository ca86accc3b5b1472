package httpserver

import (
	"net/http"
	"time"

	"github.com/Skotchmaster/auth_service/internal/token"
)

const RefreshCookieName = "refresh_token"

type CookieConfig struct {
	Secure bool
}

func (cc CookieConfig) CreateCookie(name, value string, expires time.Time, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   cc.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func (cc CookieConfig) RefreshCookie(value string, expires time.Time) *http.Cookie {
	return cc.CreateCookie(RefreshCookieName, value, expires, token.RefreshTTL)
}

func (cc CookieConfig) DeleteCookie(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cc.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

package config

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

type CookieSettings struct {
	Domain   string `env:"COOKIES_DOMAIN"`
	Secure   bool   `env:"COOKIES_SECURE" envDefault:"true"`
	SameSite string `env:"COOKIES_SAMESITE" envDefault:"STRICT"`
}

func (s CookieSettings) sameSite() http.SameSite {
	switch strings.ToUpper(s.SameSite) {
	case "DEFAULT":
		return http.SameSiteDefaultMode
	case "LAX":
		return http.SameSiteLaxMode
	case "NONE":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteStrictMode
	}
}

// Cookies splits a player token in two: the readable "auth" cookie carries
// header and payload, the http-only "sign" cookie carries the signature.
type Cookies struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
	jwt      *JWT
}

func NewCookies(settings CookieSettings, jwt *JWT) *Cookies {
	return &Cookies{
		Domain:   settings.Domain,
		Secure:   settings.Secure,
		SameSite: settings.sameSite(),
		jwt:      jwt,
	}
}

func (c *Cookies) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Path:     "/",
		Value:    value,
		Domain:   c.Domain,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	}
}

func (c *Cookies) Clear(w http.ResponseWriter) {
	for _, name := range []string{"auth", "sign"} {
		cookie := c.cookie(name, "delete")
		cookie.MaxAge = -1
		cookie.HttpOnly = name == "sign"
		http.SetCookie(w, cookie)
	}
}

func (c *Cookies) Refresh(w http.ResponseWriter, claims *PlayerClaims) error {
	token, err := c.jwt.Sign(claims)
	if err != nil {
		return fmt.Errorf("unable to sign player claims: %w", err)
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return fmt.Errorf("malformed JWT token generated")
	}
	expires := time.Now().Add(c.jwt.tokenLifetime)

	auth := c.cookie("auth", parts[0]+"."+parts[1])
	auth.Expires = expires
	http.SetCookie(w, auth)

	sign := c.cookie("sign", parts[2])
	sign.Expires = expires
	sign.HttpOnly = true
	http.SetCookie(w, sign)

	return nil
}

func (c *Cookies) ParsePlayerClaims(r *http.Request) (*PlayerClaims, error) {
	authCookie, err := r.Cookie("auth")
	if err != nil {
		return nil, err
	}
	signCookie, err := r.Cookie("sign")
	if err != nil {
		return nil, err
	}
	return c.jwt.ParsePlayerClaims(authCookie.Value + "." + signCookie.Value)
}

package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	authCookie = "auth"
	signCookie = "sign"
)

// Cookies carries a JWT split in two: header and payload in a cookie readable
// by scripts, the signature in an HttpOnly one.
type Cookies struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
	jwt      *JWT
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToUpper(s) {
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

func NewCookies(jwt *JWT) (*Cookies, error) {
	domain, ok := os.LookupEnv("COOKIES_DOMAIN")
	if !ok {
		return nil, fmt.Errorf("COOKIES_DOMAIN env variable is not set")
	}

	secure, ok := os.LookupEnv("COOKIES_SECURE")
	if !ok {
		return nil, fmt.Errorf("COOKIES_SECURE env variable is not set")
	}

	sameSite, ok := os.LookupEnv("COOKIES_SAMESITE")
	if !ok {
		return nil, fmt.Errorf("COOKIES_SAMESITE env variable is not set")
	}

	cookies := &Cookies{
		Domain:   domain,
		Secure:   secure != "0",
		SameSite: parseSameSite(sameSite),
		jwt:      jwt,
	}

	return cookies, nil
}

func (c *Cookies) set(w http.ResponseWriter, name, value string, httpOnly bool, maxAge int, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Path:     "/",
		Value:    value,
		MaxAge:   maxAge,
		Expires:  expires,
		HttpOnly: httpOnly,
		Domain:   c.Domain,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
}

func (c *Cookies) Clear(w http.ResponseWriter) {
	c.set(w, authCookie, "delete", false, -1, time.Time{})
	c.set(w, signCookie, "delete", true, -1, time.Time{})
}

// Refresh signs claims and stores the token in the response cookies.
func (c *Cookies) Refresh(w http.ResponseWriter, claims *PlayerClaims) error {
	token, err := c.jwt.Sign(claims)
	if err != nil {
		return fmt.Errorf("unable to sign player claims: %w", err)
	}
	header, payload, signature, err := splitToken(token)
	if err != nil {
		return err
	}
	expires := time.Now().Add(c.jwt.TokenLifetime)
	c.set(w, authCookie, header+"."+payload, false, 0, expires)
	c.set(w, signCookie, signature, true, 0, expires)
	return nil
}

func splitToken(token string) (header, payload, signature string, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("malformed JWT token generated")
	}
	return parts[0], parts[1], parts[2], nil
}

func (c *Cookies) ParsePlayerClaims(r *http.Request) (*PlayerClaims, error) {
	auth, err := r.Cookie(authCookie)
	if err != nil {
		return nil, err
	}
	sign, err := r.Cookie(signCookie)
	if err != nil {
		return nil, err
	}
	token, err := c.jwt.ParseWithClaims(
		auth.Value+"."+sign.Value, &PlayerClaims{},
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*PlayerClaims)
	if !ok {
		return nil, fmt.Errorf("malformed claims")
	}
	return claims, nil
}

package web

import (
	"net/http"
	"net/url"
	"strings"
	"unicode"
)

type FlashKind string

const (
	FlashNotice FlashKind = "notice"
	FlashError  FlashKind = "error"
)

// Flash is a one-shot message carried to the next page in the query string.
type Flash struct {
	Kind    FlashKind
	Message string
}

func (f Flash) Empty() bool { return f.Message == "" }

// FlashFromRequest reads ?notice= or ?error=, preferring the error.
func FlashFromRequest(r *http.Request) Flash {
	query := r.URL.Query()
	if msg := query.Get(string(FlashError)); msg != "" {
		return Flash{Kind: FlashError, Message: msg}
	}
	if msg := query.Get(string(FlashNotice)); msg != "" {
		return Flash{Kind: FlashNotice, Message: msg}
	}
	return Flash{}
}

// WithFlash appends a flash message to target, keeping any existing query
// and fragment.
func WithFlash(target string, kind FlashKind, message string) string {
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	query := u.Query()
	query.Del(string(FlashNotice))
	query.Del(string(FlashError))
	query.Set(string(kind), message)
	u.RawQuery = query.Encode()
	return u.String()
}

// SafeRedirect accepts only same-site absolute paths and falls back
// otherwise. Browsers drop tabs and newlines and treat backslashes as
// slashes, so any of those reject the target outright.
func SafeRedirect(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return fallback
	}
	if strings.ContainsFunc(next, func(r rune) bool { return r == '\\' || unicode.IsControl(r) }) {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return next
}

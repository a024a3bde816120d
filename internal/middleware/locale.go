package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type localeContextKey struct{}

var LocaleKey = localeContextKey{}

// CountryLookup resolves ISO country codes for an IP address. Used as a
// last-resort locale hint when headers carry nothing usable.
type CountryLookup func(ip string) (string, error)

var supportedLocales = []language.Tag{
	language.English,    // en: default
	language.Spanish,    // es
	language.French,     // fr
	language.German,     // de
	language.Japanese,   // ja
	language.Indonesian, // id
}

var localeMatcher = language.NewMatcher(supportedLocales)

// Locale resolves the request locale from the X-Locale override, the
// Accept-Language header, or the client's country, and stores it in the
// request context.
func Locale(defaultLocale string, lookup CountryLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := detectLocale(r, defaultLocale, lookup)
			ctx := context.WithValue(r.Context(), LocaleKey, locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func detectLocale(r *http.Request, fallback string, lookup CountryLookup) string {
	if v := strings.TrimSpace(r.Header.Get("X-Locale")); v != "" {
		if tag, err := language.Parse(v); err == nil {
			return matchLocale(tag)
		}
	}
	if header := r.Header.Get("Accept-Language"); header != "" {
		if tags, _, err := language.ParseAcceptLanguage(header); err == nil && len(tags) > 0 {
			return matchLocale(tags...)
		}
	}
	if lookup != nil {
		if ip := ClientIP(r); ip != "" {
			if country, err := lookup(ip); err == nil && country != "" {
				if tag, err := language.Parse("und-" + strings.ToUpper(country)); err == nil {
					return matchLocale(tag)
				}
			}
		}
	}
	if fallback != "" {
		return fallback
	}
	return "en"
}

func matchLocale(tags ...language.Tag) string {
	_, index, _ := localeMatcher.Match(tags...)
	base, _ := supportedLocales[index].Base()
	return base.String()
}

// ClientIP returns the best-effort client IP address for the request.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(LocaleKey).(string); ok {
		return v
	}
	return "en"
}

package backend

import (
	"context"
	"encoding/json"
	"net/http"
)

type ctxKey int

const (
	cookiesKey ctxKey = iota
	requestIDKey
)

// WithCookies returns a context whose backend calls replay cookies.
func WithCookies(ctx context.Context, cookies []*http.Cookie) context.Context {
	return context.WithValue(ctx, cookiesKey, cookies)
}

// Cookies returns the backend session cookies carried by ctx.
func Cookies(ctx context.Context) []*http.Cookie {
	cookies, _ := ctx.Value(cookiesKey).([]*http.Cookie)
	return cookies
}

// WithRequestID tags backend calls made with ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// storedCookie is the persisted form of a backend session cookie. Only
// what is needed to replay it is kept.
type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// EncodeCookies serializes cookies for the visitor's storage namespace.
func EncodeCookies(cookies []*http.Cookie) ([]byte, error) {
	stored := make([]storedCookie, 0, len(cookies))
	for _, ck := range cookies {
		stored = append(stored, storedCookie{Name: ck.Name, Value: ck.Value})
	}
	return json.Marshal(stored)
}

// DecodeCookies is the inverse of EncodeCookies.
func DecodeCookies(data []byte) ([]*http.Cookie, error) {
	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, s := range stored {
		cookies = append(cookies, &http.Cookie{Name: s.Name, Value: s.Value})
	}
	return cookies, nil
}

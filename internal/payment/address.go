package payment

import (
	"net/url"
	"strconv"
	"time"
)

// Return-address query parameters.
const (
	ParamStatus    = "payment"
	ParamToken     = "t"
	ParamAttempt   = "attempt"
	ParamSessionID = "session_id"

	StatusSuccess   = "success"
	StatusCancelled = "cancelled"
)

var returnParams = []string{ParamStatus, ParamToken, ParamAttempt, ParamSessionID}

// Location is the page the checkout returns to.
type Location struct {
	Origin string `yaml:"origin"`
	Path   string `yaml:"path"`
}

// ReturnURL builds the address checkout redirects to, carrying the outcome,
// a cache-busting token and the attempt id.
func (l Location) ReturnURL(status, attemptID string, at time.Time) string {
	q := url.Values{}
	q.Set(ParamStatus, status)
	q.Set(ParamToken, strconv.FormatInt(at.UnixMilli(), 10))
	q.Set(ParamAttempt, attemptID)
	path := l.Path
	if path == "" {
		path = "/"
	}
	return l.Origin + path + "?" + q.Encode()
}

// AddressCleaner removes query parameters from the visible address.
type AddressCleaner interface {
	StripParams(keys ...string)
}

// NoopAddress ignores strip requests; used where the caller rewrites the address itself.
type NoopAddress struct{}

func (NoopAddress) StripParams(...string) {}

// StripQuery removes keys from raw's query string. Unparseable input is returned unchanged.
func StripQuery(raw string, keys ...string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	for _, k := range keys {
		q.Del(k)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// StripReturnParams removes every return-address parameter from raw.
func StripReturnParams(raw string) string {
	return StripQuery(raw, returnParams...)
}

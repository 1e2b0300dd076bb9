package mongostore

import (
	"encoding/json"
	"time"
)

// Session is the opaque payload stored for one session id. The store never
// interprets it beyond the cookie expiry lookup on writes.
type Session = map[string]any

// Cookie carries the subset of session-cookie state the store inspects.
// Middleware that keeps its cookie as a richer type can store it as long as
// it exposes the JSON serialization the store converts on write.
type Cookie struct {
	Expires  time.Time `json:"expires,omitzero" bson:"expires,omitempty"`
	MaxAge   int       `json:"originalMaxAge,omitempty" bson:"originalMaxAge,omitempty"`
	Path     string    `json:"path,omitempty" bson:"path,omitempty"`
	Domain   string    `json:"domain,omitempty" bson:"domain,omitempty"`
	Secure   bool      `json:"secure,omitempty" bson:"secure,omitempty"`
	HTTPOnly bool      `json:"httpOnly,omitempty" bson:"httpOnly,omitempty"`
}

// Record is the persisted shape of one session: the caller-supplied id, the
// session payload, and the timestamp the TTL index expires the document at.
type Record struct {
	ID      string
	Session Session
	Expires time.Time
}

// newRecord prepares a session payload for persistence: shallow-copies it,
// converts a JSON-serializable cookie into its serialized form, and resolves
// the expiry from the cookie or the configured TTL.
func newRecord(id string, session Session, ttl time.Duration, now time.Time) (*Record, error) {
	copied := make(Session, len(session))
	for k, v := range session {
		copied[k] = v
	}

	if cookie, ok := copied["cookie"]; ok {
		converted, err := convertCookie(cookie)
		if err != nil {
			return nil, err
		}
		copied["cookie"] = converted
	}

	return &Record{
		ID:      id,
		Session: copied,
		Expires: resolveExpiry(copied, ttl, now),
	}, nil
}

// convertCookie replaces a cookie exposing a JSON serialization with its
// serialized form, mirroring the toJSON conversion session middlewares apply
// to their cookie objects. Anything else is stored as-is.
func convertCookie(cookie any) (any, error) {
	m, ok := cookie.(json.Marshaler)
	if !ok {
		return cookie, nil
	}

	raw, err := m.MarshalJSON()
	if err != nil {
		return nil, err
	}

	var converted map[string]any
	if err := json.Unmarshal(raw, &converted); err != nil {
		return nil, err
	}
	return converted, nil
}

// resolveExpiry prefers the expiry embedded in the session cookie and falls
// back to now+ttl, so every stored record has a resolvable expiry.
func resolveExpiry(session Session, ttl time.Duration, now time.Time) time.Time {
	if cookie, ok := session["cookie"]; ok {
		if expires, ok := cookieExpiry(cookie); ok {
			return expires
		}
	}
	return now.Add(ttl)
}

// cookieExpiry extracts the expiry from the cookie shapes the store accepts:
// the package's own Cookie type, or a map carrying "expires" as a time.Time
// or an RFC 3339 string (the JSON-serialized form).
func cookieExpiry(cookie any) (time.Time, bool) {
	switch c := cookie.(type) {
	case Cookie:
		if !c.Expires.IsZero() {
			return c.Expires, true
		}
	case *Cookie:
		if c != nil && !c.Expires.IsZero() {
			return c.Expires, true
		}
	case map[string]any:
		switch expires := c["expires"].(type) {
		case time.Time:
			if !expires.IsZero() {
				return expires, true
			}
		case string:
			if t, err := time.Parse(time.RFC3339, expires); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// expired reports whether the record's expiry has passed. Records without a
// recorded expiry never expire here; the TTL index does not apply to them
// either.
func (r *Record) expired(now time.Time) bool {
	return !r.Expires.IsZero() && r.Expires.Before(now)
}

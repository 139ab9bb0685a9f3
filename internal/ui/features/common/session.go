// Package common provides the session, selection and rendering helpers shared
// by the dashboard features.
package common

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/metroflow/internal/pipeline"
)

// SessionName is the cookie holding the dashboard session.
const SessionName = "metroflow"

const (
	keyClientID = "client_id"
	keyLine     = "line"
	keyYear     = "year"
	keyQuarter  = "quarter"
)

// Session wraps the gorilla session with typed accessors.
type Session struct {
	s *sessions.Session
}

// LoadSession returns the request's session. A session that fails to decode,
// for example after the secret changed, is replaced by a fresh one.
func LoadSession(store sessions.Store, r *http.Request) *Session {
	s, err := store.Get(r, SessionName)
	if err != nil || s == nil {
		s = sessions.NewSession(store, SessionName)
		s.IsNew = true
	}
	return &Session{s: s}
}

// ClientID returns the browser's id, assigning a new one if needed.
func (s *Session) ClientID() string {
	if id, ok := s.s.Values[keyClientID].(string); ok && id != "" {
		return id
	}
	id := uuid.NewString()
	s.s.Values[keyClientID] = id
	return id
}

// Selection returns the stored selection, or the default one.
func (s *Session) Selection() pipeline.Selection {
	str := func(key string) string {
		v, _ := s.s.Values[key].(string)
		return v
	}
	return pipeline.Selection{
		Line:    str(keyLine),
		Year:    str(keyYear),
		Quarter: str(keyQuarter),
	}.Normalize()
}

// SetSelection stores sel.
func (s *Session) SetSelection(sel pipeline.Selection) {
	sel = sel.Normalize()
	s.s.Values[keyLine] = sel.Line
	s.s.Values[keyYear] = sel.Year
	s.s.Values[keyQuarter] = sel.Quarter
}

// ClearSelection forgets the stored selection but keeps the client id.
func (s *Session) ClearSelection() {
	delete(s.s.Values, keyLine)
	delete(s.s.Values, keyYear)
	delete(s.s.Values, keyQuarter)
}

// Save writes the session cookie. It must run before the response body starts.
func (s *Session) Save(w http.ResponseWriter, r *http.Request) error {
	return s.s.Save(r, w)
}

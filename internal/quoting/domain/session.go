package domain

import "time"

// State is the conversation state of a session.
type State string

const (
	StateIdle                 State = "idle"
	StateWaitingGlaseo        State = "waiting_for_glaseo"
	StateWaitingFlete         State = "waiting_for_flete"
	StateWaitingMultiGlaseo   State = "waiting_for_multi_glaseo"
	StateWaitingMultiFlete    State = "waiting_for_multi_flete"
	StateWaitingLanguage      State = "waiting_for_language"
	StateWaitingMultiLanguage State = "waiting_for_multi_language"
)

// Valid reports whether s is a known conversation state.
func (s State) Valid() bool {
	switch s {
	case StateIdle, StateWaitingGlaseo, StateWaitingFlete,
		StateWaitingMultiGlaseo, StateWaitingMultiFlete,
		StateWaitingLanguage, StateWaitingMultiLanguage:
		return true
	}
	return false
}

func (s State) String() string { return string(s) }

// PendingData carries the partial work a session is waiting to finish.
// Single holds the one query being completed; Multi holds the detected
// lines of a multi-product request. Consolidated holds the computed
// multi-product result while the delivery language is still being asked.
type PendingData struct {
	Single       *Query             `json:"single,omitempty"`
	Multi        []Query            `json:"multi,omitempty"`
	Consolidated *ConsolidatedQuote `json:"consolidated,omitempty"`
	RequestText  string             `json:"requestText,omitempty"`
}

// LastQuote is the snapshot of the most recent delivered quote. The
// source queries are kept so a freight modification or a language switch
// can recompute or re-render without re-parsing anything.
type LastQuote struct {
	Queries   []Query            `json:"queries"`
	Single    *QuoteResult       `json:"single,omitempty"`
	Multi     *ConsolidatedQuote `json:"multi,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
}

// Session is the per-user conversation record. One session exists per
// user_id; mutations are serialized by the session lock manager.
type Session struct {
	UserID    string       `json:"userId"`
	State     State        `json:"state"`
	Pending   *PendingData `json:"pending,omitempty"`
	LastQuote *LastQuote   `json:"lastQuote,omitempty"`
	Language  Language     `json:"language,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// NewSession creates an idle session for the user.
func NewSession(userID string, now time.Time) *Session {
	return &Session{
		UserID:    userID,
		State:     StateIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clear resets the dialogue back to idle after a quote is delivered or
// abandoned. Language preference and the last quote always survive.
func (s *Session) Clear(now time.Time) {
	s.State = StateIdle
	s.Pending = nil
	s.UpdatedAt = now
}

// Touch bumps the activity timestamp that drives the 24h expiry.
func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now
}

// ExpiredAt reports whether the session has been idle past the cutoff.
func (s *Session) ExpiredAt(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.UpdatedAt) > ttl
}

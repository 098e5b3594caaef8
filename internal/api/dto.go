package api

import (
	"bytes"
	"encoding/json"

	"github.com/yourusername/flat-stake/internal/allocator"
	"github.com/yourusername/flat-stake/internal/display"
	"github.com/yourusername/flat-stake/internal/input"
	"github.com/yourusername/flat-stake/internal/models"
	"github.com/yourusername/flat-stake/internal/share"
)

// Result markers returned in every allocation response
const (
	ResultOK   = "ok"
	ResultNone = "none"
)

// Budget accepts a JSON number or string and coerces it like form input
type Budget int64

// UnmarshalJSON implements json.Unmarshaler
func (b *Budget) UnmarshalJSON(data []byte) error {
	*b = Budget(input.ParseBudget(rawText(data)))
	return nil
}

// Odds accepts a JSON number or string; anything unparsable becomes 0
type Odds float64

// UnmarshalJSON implements json.Unmarshaler
func (o *Odds) UnmarshalJSON(data []byte) error {
	*o = Odds(input.ParseOdds(rawText(data)))
	return nil
}

func rawText(data []byte) string {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			return s
		}
		return ""
	}
	if bytes.Equal(data, []byte("null")) {
		return ""
	}
	return string(data)
}

// OutcomeRequest is one outcome in an allocation request
type OutcomeRequest struct {
	ID    int  `json:"id" validate:"gt=0"`
	Label int  `json:"label"`
	Odds  Odds `json:"odds" validate:"lte=1000"`
}

// AllocateRequest is the body of POST /api/v1/allocate and /api/v1/share
type AllocateRequest struct {
	Budget   Budget           `json:"budget" validate:"lte=9007199254740992"`
	Outcomes []OutcomeRequest `json:"outcomes" validate:"unique=ID,dive"`
}

// State converts the request into an allocator snapshot
func (r AllocateRequest) State() models.State {
	outcomes := make([]models.Outcome, len(r.Outcomes))
	for i, o := range r.Outcomes {
		label := o.Label
		if label == 0 {
			label = i + 1
		}
		outcomes[i] = models.Outcome{ID: o.ID, Label: label, Odds: float64(o.Odds)}
	}
	return models.State{Budget: int64(r.Budget), Outcomes: outcomes}
}

// AllocateResponse is returned by POST /api/v1/allocate
type AllocateResponse struct {
	Result     string                `json:"result"`
	Allocation *allocator.Allocation `json:"allocation,omitempty"`
	View       display.View          `json:"view"`
	Warnings   []string              `json:"warnings,omitempty"`
}

// ShareResponse is returned by POST /api/v1/share
type ShareResponse struct {
	Result string      `json:"result"`
	Post   *share.Post `json:"post,omitempty"`
}

// ErrorResponse is returned for rejected requests
type ErrorResponse struct {
	Error string `json:"error"`
}

// ClientMessage is sent by a live session client
type ClientMessage struct {
	Type    string `json:"type"`
	ID      int    `json:"id,omitempty"`
	Value   string `json:"value,omitempty"`
	Confirm bool   `json:"confirm,omitempty"`
}

// ServerMessage is pushed to a live session client
type ServerMessage struct {
	Type      string        `json:"type"`
	SessionID string        `json:"session_id"`
	Operation string        `json:"operation,omitempty"`
	State     *models.State `json:"state,omitempty"`
	View      *display.View `json:"view,omitempty"`
	Post      *share.Post   `json:"post,omitempty"`
	Error     string        `json:"error,omitempty"`
}

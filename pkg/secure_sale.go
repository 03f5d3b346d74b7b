package pkg

import (
	"fmt"

	"ykjam/azulgw/pkg/azul/request"
	"ykjam/azulgw/pkg/azul/response"
)

// SecureIdParam is the query parameter carrying the session id on both
// callback urls. It is the only correlation token shared with the ACS,
// callbacks without it cannot be routed.
const SecureIdParam = "secure_id"

type SecureSaleRequest struct {
	// Transaction is pre-validated, amounts already in minor units.
	Transaction request.Transaction `json:"transaction"`
	// TermUrl and MethodNotificationUrl are the caller's callback url
	// templates, the session id is appended before they reach the gateway.
	TermUrl               string                  `json:"term_url"`
	MethodNotificationUrl string                  `json:"method_notification_url"`
	CardHolderInfo        *request.CardHolderInfo `json:"card_holder_info,omitempty"`
	ChallengeIndicator    string                  `json:"challenge_indicator,omitempty"`
}

// SecureResult is the normalized outward outcome of every coordinator step.
// Either Redirect is set and Html carries the next browser handoff, or
// Response carries the gateway's direct result.
type SecureResult struct {
	Redirect  bool              `json:"redirect"`
	SessionId string            `json:"session_id,omitempty"`
	Html      string            `json:"html,omitempty"`
	Message   string            `json:"message,omitempty"`
	Response  *response.Gateway `json:"response,omitempty"`
}

func (r SecureResult) String() string {
	return fmt.Sprintf("SecureResult {redirect: %v, session: %v, msg: %v}",
		r.Redirect, r.SessionId, r.Message)
}

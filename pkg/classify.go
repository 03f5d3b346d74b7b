package pkg

import (
	"ykjam/azulgw/pkg/azul/response"
)

type OutcomeKind int

const (
	// OutcomeUnexpected covers every response the vocabulary below does not
	// name. Never treated as success.
	OutcomeUnexpected OutcomeKind = iota
	OutcomeApproved
	OutcomeDeclined
	OutcomeMethodRequired
	OutcomeChallengeRequired
	OutcomeAlreadyProcessed
	OutcomeGatewayError
)

// ClassifyResponse is the single interpretation of the gateway response
// vocabulary. Every coordinator operation goes through it, the raw strings
// are never matched anywhere else.
func ClassifyResponse(resp *response.Gateway) OutcomeKind {
	switch resp.ResponseMessage {
	case response.MessageApproved:
		return OutcomeApproved
	case response.MessageDeclined:
		return OutcomeDeclined
	case response.MessageMethodRequired:
		if resp.HasMethodForm() {
			return OutcomeMethodRequired
		}
		return OutcomeUnexpected
	case response.MessageChallengeRequired:
		if resp.HasChallenge() {
			return OutcomeChallengeRequired
		}
		return OutcomeUnexpected
	case response.MessageAlreadyProcessed:
		return OutcomeAlreadyProcessed
	case response.MessageError:
		return OutcomeGatewayError
	default:
		return OutcomeUnexpected
	}
}

package response

// ResponseMessage values observed from the gateway.
const (
	MessageApproved          = "APROBADA"
	MessageDeclined          = "DECLINADA"
	MessageError             = "ERROR"
	MessageMethodRequired    = "3D_SECURE_2_METHOD"
	MessageChallengeRequired = "3D_SECURE_CHALLENGE"
)

// MessageAlreadyProcessed is synthesized locally when a duplicate method
// notification arrives, the gateway never returns it itself.
const MessageAlreadyProcessed = "ALREADY_PROCESSED"

const IsoCodeApproved = "00"

type ThreeDSMethod struct {
	// MethodForm is a ready to serve html snippet with a hidden iframe
	// that posts the browser fingerprint to the ACS.
	MethodForm string `json:"MethodForm,omitempty"`
}

type ThreeDSChallenge struct {
	CReq            string `json:"CReq,omitempty"`
	RedirectPostUrl string `json:"RedirectPostUrl,omitempty"`
}

type Gateway struct {
	ResponseMessage   string `json:"ResponseMessage,omitempty"`
	IsoCode           string `json:"IsoCode,omitempty"`
	ErrorDescription  string `json:"ErrorDescription,omitempty"`
	AuthorizationCode string `json:"AuthorizationCode,omitempty"`
	RRN               string `json:"RRN,omitempty"`
	AzulOrderId       string `json:"AzulOrderId,omitempty"`
	CustomOrderId     string `json:"CustomOrderId,omitempty"`
	OrderNumber       string `json:"OrderNumber,omitempty"`
	Ticket            string `json:"Ticket,omitempty"`
	// DataVault fields, only set on tokenization calls
	DataVaultToken string `json:"DataVaultToken,omitempty"`
	CardNumber     string `json:"CardNumber,omitempty"`
	Expiration     string `json:"Expiration,omitempty"`
	HasCVV         bool   `json:"HasCVV,omitempty"`

	ThreeDSMethod    *ThreeDSMethod    `json:"ThreeDSMethod,omitempty"`
	ThreeDSChallenge *ThreeDSChallenge `json:"ThreeDSChallenge,omitempty"`
}

func (g *Gateway) IsApproved() bool {
	return g.ResponseMessage == MessageApproved && g.IsoCode == IsoCodeApproved
}

func (g *Gateway) HasMethodForm() bool {
	return g.ThreeDSMethod != nil && g.ThreeDSMethod.MethodForm != ""
}

func (g *Gateway) HasChallenge() bool {
	return g.ThreeDSChallenge != nil && g.ThreeDSChallenge.CReq != "" &&
		g.ThreeDSChallenge.RedirectPostUrl != ""
}

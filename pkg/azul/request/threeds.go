package request

// MethodNotificationStatus values forwarded to the gateway after the ACS
// method callback. RECEIVED when the callback arrived, EXPECTED_BUT_NOT_RECEIVED
// when the merchant gave up waiting for it.
const (
	MethodStatusReceived    = "RECEIVED"
	MethodStatusNotReceived = "EXPECTED_BUT_NOT_RECEIVED"
)

// ThreedsMethod tells the gateway whether the ACS method callback arrived,
// unblocking the authentication flow for the given order.
type ThreedsMethod struct {
	Channel                  string `json:"Channel"`
	Store                    string `json:"Store"`
	AzulOrderId              string `json:"AzulOrderId"`
	MethodNotificationStatus string `json:"MethodNotificationStatus"`
}

// ThreedsChallenge submits the challenge result blob the ACS posted back
// to the TermUrl.
type ThreedsChallenge struct {
	Channel     string `json:"Channel"`
	Store       string `json:"Store"`
	AzulOrderId string `json:"AzulOrderId"`
	CRes        string `json:"CRes"`
}

package request

import (
	"github.com/shopspring/decimal"
)

const (
	ChannelEcommerce = "EC"

	PosInputModeEcommerce = "E-Commerce"

	TrxTypeSale   = "Sale"
	TrxTypeHold   = "Hold"
	TrxTypeRefund = "Refund"

	CurrencyPosCodeDefault = "$"
)

// ThreeDSAuth carries the two callback urls handed to the gateway when a
// transaction is submitted with 3-D Secure. Both urls must already contain
// the correlation parameter, the ACS echoes TermUrl back verbatim.
type ThreeDSAuth struct {
	TermUrl                     string `json:"TermUrl"`
	MethodNotificationUrl       string `json:"MethodNotificationUrl"`
	RequestorChallengeIndicator string `json:"RequestChallengeIndicator,omitempty"`
}

type CardHolderInfo struct {
	Name            string `json:"Name,omitempty"`
	Email           string `json:"Email,omitempty"`
	PhoneMobile     string `json:"PhoneMobile,omitempty"`
	BillingAddress  string `json:"BillingAddressLine1,omitempty"`
	BillingCity     string `json:"BillingAddressCity,omitempty"`
	BillingCountry  string `json:"BillingAddressCountry,omitempty"`
	ShippingAddress string `json:"ShippingAddressLine1,omitempty"`
}

// Transaction is the pre-validated payload for sale, hold and refund calls.
// Amounts are minor unit strings, use MinorUnits to build them.
type Transaction struct {
	Channel              string `json:"Channel"`
	Store                string `json:"Store"`
	PosInputMode         string `json:"PosInputMode"`
	TrxType              string `json:"TrxType"`
	Amount               string `json:"Amount"`
	Itbis                string `json:"Itbis,omitempty"`
	CurrencyPosCode      string `json:"CurrencyPosCode"`
	OrderNumber          string `json:"OrderNumber"`
	CustomOrderId        string `json:"CustomOrderId,omitempty"`
	CustomerServicePhone string `json:"CustomerServicePhone,omitempty"`
	ECommerceUrl         string `json:"ECommerceUrl,omitempty"`
	// AcquirerRefData is required on refunds, it carries the AzulOrderId of
	// the transaction being refunded.
	AcquirerRefData string `json:"AcquirerRefData,omitempty"`
	AzulOrderId     string `json:"AzulOrderId,omitempty"`

	CardNumber string `json:"CardNumber,omitempty"`
	Expiration string `json:"Expiration,omitempty"`
	CVC        string `json:"CVC,omitempty"`

	DataVaultToken  string `json:"DataVaultToken,omitempty"`
	SaveToDataVault string `json:"SaveToDataVault,omitempty"`

	ForceNo3DS     string          `json:"forceNo3DS,omitempty"`
	ThreeDSAuth    *ThreeDSAuth    `json:"ThreeDSAuth,omitempty"`
	CardHolderInfo *CardHolderInfo `json:"CardHolderInfo,omitempty"`
}

// MinorUnits renders a major unit amount as the minor unit integer string
// the gateway expects, e.g. 1,250.50 -> "125050".
func MinorUnits(amount decimal.Decimal) string {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).String()
}

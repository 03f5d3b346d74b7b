package pkg

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paymentPageFixture() (PaymentPageConfig, PaymentPageRequest) {
	conf := PaymentPageConfig{
		Url:          "https://pages.example/Default.aspx",
		MerchantId:   "39038540035",
		MerchantName: "Test Shop",
		MerchantType: "Ecommerce",
		AuthKey:      "auth-key",
	}
	req := PaymentPageRequest{
		OrderNumber: "order-0001",
		Amount:      decimal.RequireFromString("1250.50"),
		Itbis:       decimal.RequireFromString("225.09"),
		ApprovedUrl: "https://merchant.example/ok",
		DeclinedUrl: "https://merchant.example/ko",
		CancelUrl:   "https://merchant.example/cancel",
	}
	return conf, req
}

func TestBuildPaymentPage(t *testing.T) {
	conf, req := paymentPageFixture()
	html, err := BuildPaymentPage(conf, req)
	require.NoError(t, err)

	assert.Contains(t, html, `action="https://pages.example/Default.aspx"`)
	assert.Contains(t, html, `name="MerchantId" value="39038540035"`)
	assert.Contains(t, html, `name="Amount" value="125050"`)
	assert.Contains(t, html, `name="ITBIS" value="22509"`)
	assert.Contains(t, html, `name="UseCustomField1" value="0"`)
	assert.Contains(t, html, `name="AuthHash"`)
}

func TestBuildPaymentPageHashDeterministic(t *testing.T) {
	conf, req := paymentPageFixture()
	first, err := BuildPaymentPage(conf, req)
	require.NoError(t, err)
	second, err := BuildPaymentPage(conf, req)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	conf.AuthKey = "different-key"
	third, err := BuildPaymentPage(conf, req)
	require.NoError(t, err)
	assert.NotEqual(t, first, third, "hash must depend on the auth key")

	req.Amount = decimal.RequireFromString("1250.51")
	fourth, err := BuildPaymentPage(conf, req)
	require.NoError(t, err)
	assert.NotEqual(t, third, fourth, "hash must depend on the field values")
}

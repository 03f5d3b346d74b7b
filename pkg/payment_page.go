package pkg

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"html/template"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"ykjam/azulgw/pkg/azul/request"
)

// PaymentPageConfig holds the hosted payment page coordinates and the hash
// key, separate from the json api credentials.
type PaymentPageConfig struct {
	Url          string
	MerchantId   string
	MerchantName string
	MerchantType string
	AuthKey      string
}

type PaymentPageRequest struct {
	OrderNumber       string
	Amount            decimal.Decimal
	Itbis             decimal.Decimal
	CurrencyCode      string
	ApprovedUrl       string
	DeclinedUrl       string
	CancelUrl         string
	UseCustomField1   string
	CustomField1Label string
	CustomField1Value string
	UseCustomField2   string
	CustomField2Label string
	CustomField2Value string
}

var paymentPageTemplate = template.Must(template.New("payment-page").Parse(
	`<!DOCTYPE html>
<html>
<head><title>Redirecting</title></head>
<body onload="document.getElementById('payment-form').submit();">
<form id="payment-form" method="POST" action="{{.Action}}">
{{- range .Fields}}
<input type="hidden" name="{{.Name}}" value="{{.Value}}"/>
{{- end}}
<noscript><input type="submit" value="Continue"/></noscript>
</form>
</body>
</html>
`))

type paymentPageField struct {
	Name  string
	Value string
}

type paymentPageData struct {
	Action string
	Fields []paymentPageField
}

// BuildPaymentPage renders the auto-posting form for the gateway's hosted
// payment page. AuthHash covers every field in submission order, keyed with
// the merchant auth key, the page rejects mismatching hashes.
func BuildPaymentPage(conf PaymentPageConfig, req PaymentPageRequest) (string, error) {
	if req.CurrencyCode == "" {
		req.CurrencyCode = request.CurrencyPosCodeDefault
	}
	if req.UseCustomField1 == "" {
		req.UseCustomField1 = "0"
	}
	if req.UseCustomField2 == "" {
		req.UseCustomField2 = "0"
	}
	amount := request.MinorUnits(req.Amount)
	itbis := request.MinorUnits(req.Itbis)

	fields := []paymentPageField{
		{"MerchantId", conf.MerchantId},
		{"MerchantName", conf.MerchantName},
		{"MerchantType", conf.MerchantType},
		{"CurrencyCode", req.CurrencyCode},
		{"OrderNumber", req.OrderNumber},
		{"Amount", amount},
		{"ITBIS", itbis},
		{"ApprovedUrl", req.ApprovedUrl},
		{"DeclinedUrl", req.DeclinedUrl},
		{"CancelUrl", req.CancelUrl},
		{"UseCustomField1", req.UseCustomField1},
		{"CustomField1Label", req.CustomField1Label},
		{"CustomField1Value", req.CustomField1Value},
		{"UseCustomField2", req.UseCustomField2},
		{"CustomField2Label", req.CustomField2Label},
		{"CustomField2Value", req.CustomField2Value},
	}
	fields = append(fields, paymentPageField{"AuthHash", paymentPageHash(conf, fields)})

	var buf bytes.Buffer
	err := paymentPageTemplate.Execute(&buf, paymentPageData{
		Action: conf.Url,
		Fields: fields,
	})
	if err != nil {
		return "", errors.Wrap(err, "error rendering payment page form")
	}
	return buf.String(), nil
}

// paymentPageHash is hex encoded HMAC-SHA512 over the concatenated field
// values followed by the auth key itself.
func paymentPageHash(conf PaymentPageConfig, fields []paymentPageField) string {
	var plain bytes.Buffer
	for _, f := range fields {
		plain.WriteString(f.Value)
	}
	plain.WriteString(conf.AuthKey)
	mac := hmac.New(sha512.New, []byte(conf.AuthKey))
	mac.Write(plain.Bytes())
	return hex.EncodeToString(mac.Sum(nil))
}

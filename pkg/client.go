package pkg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"ykjam/azulgw/pkg/azul/response"
)

// Gateway operation routing suffixes. An empty operation hits the default
// payment processing endpoint.
const (
	OpProcessPayment          = ""
	OpProcessThreedsMethod    = "ProcessThreedsMethod"
	OpProcessThreedsChallenge = "ProcessThreedsChallenge"
	OpProcessVoid             = "ProcessVoid"
	OpProcessPost             = "ProcessPost"
	OpVerifyPayment           = "VerifyPayment"
	OpProcessDataVault        = "ProcessDatavault"
)

// Config holds the merchant credentials and gateway coordinates shared by
// every service in this package.
type Config struct {
	// BaseUrl is the gateway json endpoint, operations are appended as a
	// query suffix.
	BaseUrl string
	// Auth1 and Auth2 are the merchant credential headers.
	Auth1 string
	Auth2 string
	// Store is the merchant id used in every payload.
	Store   string
	Channel string
	Timeout time.Duration
	// TokenSaleRequiresCardNumber keeps the card number alongside the vault
	// token on 3DS token sales. The gateway docs and the live api disagree
	// on whether it is required, so it stays configurable.
	TokenSaleRequiresCardNumber bool
}

// GatewayClient is the opaque transport to the gateway. Everything above it
// depends only on this signature and the response vocabulary.
type GatewayClient interface {
	Send(ctx context.Context, payload interface{}, operation string) (*response.Gateway, error)
}

type gatewayClient struct {
	conf Config
}

func NewGatewayClient(conf Config) GatewayClient {
	if conf.Timeout == 0 {
		conf.Timeout = 30 * time.Second
	}
	return &gatewayClient{conf: conf}
}

func (c *gatewayClient) generateClient() *http.Client {
	return &http.Client{
		Timeout: c.conf.Timeout,
	}
}

func (c *gatewayClient) endpointUrl(operation string) string {
	if operation == OpProcessPayment {
		return c.conf.BaseUrl
	}
	return fmt.Sprintf("%s?%s", c.conf.BaseUrl, operation)
}

func (c *gatewayClient) Send(ctx context.Context, payload interface{}, operation string) (resp *response.Gateway, err error) {
	clog := log.WithFields(log.Fields{
		"operation": operation,
		"endpoint":  c.conf.BaseUrl,
	})
	var body []byte
	body, err = json.Marshal(payload)
	if err != nil {
		eMsg := "error encoding gateway payload"
		clog.WithError(err).Error(eMsg)
		err = errors.Wrap(err, eMsg)
		return
	}

	client := c.generateClient()
	var r *http.Request
	r, err = http.NewRequestWithContext(ctx, http.MethodPost, c.endpointUrl(operation), bytes.NewReader(body))
	if err != nil {
		eMsg := "error creating http request"
		clog.WithError(err).Error(eMsg)
		err = errors.Wrap(err, eMsg)
		return
	}
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("Auth1", c.conf.Auth1)
	r.Header.Set("Auth2", c.conf.Auth2)

	var res *http.Response
	res, err = client.Do(r)
	if err != nil {
		eMsg := "error making http request"
		clog.WithError(err).Error(eMsg)
		err = &TransportError{Cause: errors.Wrap(err, eMsg)}
		return
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		eMsg := fmt.Sprintf("invalid http status code: %d", res.StatusCode)
		clog.Error(eMsg)
		err = &TransportError{Cause: errors.New(eMsg)}
		return
	}
	var data []byte
	data, err = ioutil.ReadAll(res.Body)
	if err != nil {
		eMsg := "error reading http response"
		clog.WithError(err).Error(eMsg)
		err = &TransportError{Cause: errors.Wrap(err, eMsg)}
		return
	}
	clog.WithField("raw", string(data)).Debug("Response received")

	resp = &response.Gateway{}
	err = json.Unmarshal(data, resp)
	if err != nil {
		eMsg := "error parsing json response"
		clog.WithError(err).Error(eMsg)
		err = &TransportError{Cause: errors.Wrap(err, eMsg)}
		resp = nil
		return
	}
	return
}

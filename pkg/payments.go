package pkg

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"ykjam/azulgw/pkg/azul/request"
	"ykjam/azulgw/pkg/azul/response"
)

// PaymentService covers the plain, non 3-D Secure gateway operations. A
// declined transaction is a business result, not an error, errors are
// reserved for transport failures and gateway rejections.
type PaymentService interface {
	Sale(ctx context.Context, trx request.Transaction) (*response.Gateway, error)
	Hold(ctx context.Context, trx request.Transaction) (*response.Gateway, error)
	Refund(ctx context.Context, trx request.Transaction, azulOrderId string) (*response.Gateway, error)
	Void(ctx context.Context, azulOrderId string) (*response.Gateway, error)
	Post(ctx context.Context, azulOrderId, amount, itbis string) (*response.Gateway, error)
	Verify(ctx context.Context, customOrderId string) (*response.Gateway, error)
	CreateToken(ctx context.Context, cardNumber, expiration, cvc string) (*response.Gateway, error)
	DeleteToken(ctx context.Context, token string) (*response.Gateway, error)
}

type paymentService struct {
	conf   Config
	client GatewayClient
}

func NewPaymentService(conf Config, client GatewayClient) PaymentService {
	return &paymentService{conf: conf, client: client}
}

func (s *paymentService) applyDefaults(trx *request.Transaction) {
	if trx.Channel == "" {
		trx.Channel = s.conf.Channel
	}
	if trx.Store == "" {
		trx.Store = s.conf.Store
	}
	if trx.PosInputMode == "" {
		trx.PosInputMode = request.PosInputModeEcommerce
	}
	if trx.CurrencyPosCode == "" {
		trx.CurrencyPosCode = request.CurrencyPosCodeDefault
	}
}

func (s *paymentService) send(ctx context.Context, operation, name string, payload interface{}) (resp *response.Gateway, err error) {
	clog := log.WithField("operation", name)
	clog.Info("Processing")
	resp, err = s.client.Send(ctx, payload, operation)
	if err != nil {
		eMsg := "error calling gateway"
		clog.WithError(err).Error(eMsg)
		err = errors.Wrap(err, eMsg)
		return
	}
	switch ClassifyResponse(resp) {
	case OutcomeApproved:
		clog.WithField("azul-order-id", resp.AzulOrderId).Info("approved")
	case OutcomeDeclined:
		clog.WithField("iso-code", resp.IsoCode).Info("declined")
	case OutcomeGatewayError:
		eMsg := "gateway rejected request"
		clog.WithField("description", resp.ErrorDescription).Error(eMsg)
		err = &GatewayError{IsoCode: resp.IsoCode, Description: resp.ErrorDescription}
	default:
		eMsg := fmt.Sprintf("unexpected gateway response: %s", resp.ResponseMessage)
		clog.Error(eMsg)
		err = &GatewayError{IsoCode: resp.IsoCode, Description: eMsg}
	}
	return
}

func (s *paymentService) plainTransaction(ctx context.Context, trxType string, trx request.Transaction) (*response.Gateway, error) {
	trx.TrxType = trxType
	// 3DS is opt-in on this path
	if trx.ForceNo3DS == "" {
		trx.ForceNo3DS = "1"
	}
	s.applyDefaults(&trx)
	return s.send(ctx, OpProcessPayment, trxType, trx)
}

func (s *paymentService) Sale(ctx context.Context, trx request.Transaction) (*response.Gateway, error) {
	return s.plainTransaction(ctx, request.TrxTypeSale, trx)
}

func (s *paymentService) Hold(ctx context.Context, trx request.Transaction) (*response.Gateway, error) {
	return s.plainTransaction(ctx, request.TrxTypeHold, trx)
}

func (s *paymentService) Refund(ctx context.Context, trx request.Transaction, azulOrderId string) (*response.Gateway, error) {
	trx.AzulOrderId = azulOrderId
	trx.AcquirerRefData = azulOrderId
	return s.plainTransaction(ctx, request.TrxTypeRefund, trx)
}

func (s *paymentService) Void(ctx context.Context, azulOrderId string) (*response.Gateway, error) {
	payload := request.Void{
		Channel:     s.conf.Channel,
		Store:       s.conf.Store,
		AzulOrderId: azulOrderId,
	}
	return s.send(ctx, OpProcessVoid, "Void", payload)
}

func (s *paymentService) Post(ctx context.Context, azulOrderId, amount, itbis string) (*response.Gateway, error) {
	payload := request.Post{
		Channel:     s.conf.Channel,
		Store:       s.conf.Store,
		AzulOrderId: azulOrderId,
		Amount:      amount,
		Itbis:       itbis,
	}
	return s.send(ctx, OpProcessPost, "Post", payload)
}

func (s *paymentService) Verify(ctx context.Context, customOrderId string) (*response.Gateway, error) {
	payload := request.Verify{
		Channel:       s.conf.Channel,
		Store:         s.conf.Store,
		CustomOrderId: customOrderId,
	}
	return s.send(ctx, OpVerifyPayment, "Verify", payload)
}

func (s *paymentService) CreateToken(ctx context.Context, cardNumber, expiration, cvc string) (*response.Gateway, error) {
	payload := request.DataVault{
		Channel:    s.conf.Channel,
		Store:      s.conf.Store,
		TrxType:    request.DataVaultCreate,
		CardNumber: cardNumber,
		Expiration: expiration,
		CVC:        cvc,
	}
	return s.send(ctx, OpProcessDataVault, "DataVault Create", payload)
}

func (s *paymentService) DeleteToken(ctx context.Context, token string) (*response.Gateway, error) {
	payload := request.DataVault{
		Channel:        s.conf.Channel,
		Store:          s.conf.Store,
		TrxType:        request.DataVaultDelete,
		DataVaultToken: token,
	}
	return s.send(ctx, OpProcessDataVault, "DataVault Delete", payload)
}

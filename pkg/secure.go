package pkg

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"ykjam/azulgw/pkg/azul/request"
	"ykjam/azulgw/pkg/azul/response"
)

// SecureService coordinates 3-D Secure transactions across the method
// notification and challenge callbacks. The ACS delivers callbacks with no
// ordering or delivery-count guarantee, correctness rests on the session
// store and the idempotency guard, both safe under concurrent handlers.
type SecureService interface {
	SecureSale(ctx context.Context, req SecureSaleRequest) (SecureResult, error)
	SecureHold(ctx context.Context, req SecureSaleRequest) (SecureResult, error)
	ProcessMethodNotification(ctx context.Context, azulOrderId, notificationStatus string) (SecureResult, error)
	ProcessChallengeResponse(ctx context.Context, sessionId, cres string) (SecureResult, error)
	GetSessionInfo(sessionId string) (SessionData, bool)
}

type secureService struct {
	conf   Config
	client GatewayClient
	store  SessionStore
	guard  IdempotencyGuard

	// tolerance for the challenge callback landing before the method
	// notification path finished updating state
	stateRetryAttempts int
	stateRetryDelay    time.Duration
}

func NewSecureService(conf Config, client GatewayClient, store SessionStore, guard IdempotencyGuard) SecureService {
	return &secureService{
		conf:               conf,
		client:             client,
		store:              store,
		guard:              guard,
		stateRetryAttempts: 4,
		stateRetryDelay:    250 * time.Millisecond,
	}
}

func appendSecureId(rawUrl, sessionId string) (string, error) {
	u, err := url.Parse(rawUrl)
	if err != nil {
		return "", errors.Wrap(err, "error parsing callback url")
	}
	q := u.Query()
	q.Set(SecureIdParam, sessionId)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *secureService) applyDefaults(trx *request.Transaction) {
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

func (s *secureService) setState(sessionId string, state SessionState) {
	if sessionId == "" {
		return
	}
	s.store.Update(sessionId, func(d *SessionData) {
		d.State = state
	})
}

func (s *secureService) SecureSale(ctx context.Context, req SecureSaleRequest) (SecureResult, error) {
	return s.initiate(ctx, request.TrxTypeSale, req)
}

func (s *secureService) SecureHold(ctx context.Context, req SecureSaleRequest) (SecureResult, error) {
	return s.initiate(ctx, request.TrxTypeHold, req)
}

func (s *secureService) initiate(ctx context.Context, trxType string, req SecureSaleRequest) (res SecureResult, err error) {
	clog := log.WithFields(log.Fields{
		"operation":    fmt.Sprintf("Secure %s", trxType),
		"order-number": req.Transaction.OrderNumber,
	})
	clog.Info("Processing")

	trx := req.Transaction
	trx.TrxType = trxType
	s.applyDefaults(&trx)
	if trx.DataVaultToken != "" && !s.conf.TokenSaleRequiresCardNumber {
		// the live api accepts token sales without the card fields even
		// though the docs list them as required
		trx.CardNumber = ""
		trx.Expiration = ""
		trx.CVC = ""
	}
	trx.CardHolderInfo = req.CardHolderInfo

	sessionId := s.store.Create(SessionData{
		State:       SessionStateInitiated,
		Transaction: trx,
	})
	res.SessionId = sessionId
	clog = clog.WithField("session-id", sessionId)

	var termUrl, methodUrl string
	termUrl, err = appendSecureId(req.TermUrl, sessionId)
	if err != nil {
		eMsg := "error rewriting term url"
		clog.WithError(err).Error(eMsg)
		s.setState(sessionId, SessionStateError)
		err = errors.Wrap(err, eMsg)
		return
	}
	methodUrl, err = appendSecureId(req.MethodNotificationUrl, sessionId)
	if err != nil {
		eMsg := "error rewriting method notification url"
		clog.WithError(err).Error(eMsg)
		s.setState(sessionId, SessionStateError)
		err = errors.Wrap(err, eMsg)
		return
	}
	trx.ThreeDSAuth = &request.ThreeDSAuth{
		TermUrl:                     termUrl,
		MethodNotificationUrl:       methodUrl,
		RequestorChallengeIndicator: req.ChallengeIndicator,
	}
	s.store.Update(sessionId, func(d *SessionData) {
		d.TermUrl = termUrl
		d.MethodNotificationUrl = methodUrl
		d.Transaction = trx
	})

	var resp *response.Gateway
	resp, err = s.client.Send(ctx, trx, OpProcessPayment)
	if err != nil {
		eMsg := "error calling gateway"
		clog.WithError(err).Error(eMsg)
		s.setState(sessionId, SessionStateError)
		err = errors.Wrap(err, eMsg)
		return
	}
	if resp.AzulOrderId != "" {
		s.store.Update(sessionId, func(d *SessionData) {
			d.AzulOrderId = resp.AzulOrderId
		})
	}
	res.Response = resp

	switch ClassifyResponse(resp) {
	case OutcomeApproved:
		clog.WithField("azul-order-id", resp.AzulOrderId).Info("approved without authentication")
		s.setState(sessionId, SessionStateApproved)
	case OutcomeDeclined:
		clog.WithField("iso-code", resp.IsoCode).Info("declined without authentication")
		s.setState(sessionId, SessionStateDeclined)
	case OutcomeMethodRequired:
		clog.Info("method notification required, handing off browser")
		s.setState(sessionId, SessionStateMethodPending)
		res.Redirect = true
		res.Html = resp.ThreeDSMethod.MethodForm
		res.Message = "3ds method required"
	case OutcomeChallengeRequired:
		clog.Info("challenge required without method step, handing off browser")
		s.setState(sessionId, SessionStateChallengePending)
		res.Redirect = true
		res.Html = BuildChallengeForm(resp.ThreeDSChallenge.CReq, termUrl, resp.ThreeDSChallenge.RedirectPostUrl)
		res.Message = "3ds challenge required"
	case OutcomeGatewayError:
		eMsg := "gateway rejected transaction"
		clog.WithField("description", resp.ErrorDescription).Error(eMsg)
		s.setState(sessionId, SessionStateError)
		err = &GatewayError{IsoCode: resp.IsoCode, Description: resp.ErrorDescription}
	default:
		eMsg := fmt.Sprintf("unexpected gateway response: %s", resp.ResponseMessage)
		clog.Error(eMsg)
		s.setState(sessionId, SessionStateError)
		err = &GatewayError{IsoCode: resp.IsoCode, Description: eMsg}
	}
	return
}

func (s *secureService) ProcessMethodNotification(ctx context.Context, azulOrderId, notificationStatus string) (res SecureResult, err error) {
	clog := log.WithFields(log.Fields{
		"operation":     "Process Method Notification",
		"azul-order-id": azulOrderId,
		"status":        notificationStatus,
	})
	clog.Info("Processing")

	// dedup before the network call, the ACS retries at will and the
	// gateway rejects a duplicate process-method request
	if !s.guard.TryBegin(azulOrderId) {
		clog.Info("method notification already processed, short-circuiting")
		res.Response = &response.Gateway{
			ResponseMessage: response.MessageAlreadyProcessed,
			AzulOrderId:     azulOrderId,
		}
		return
	}

	sessionId, session, found := s.store.FindByOrderId(azulOrderId)
	if !found {
		clog.Warn("no session recorded for order, continuing without one")
	}
	res.SessionId = sessionId

	payload := request.ThreedsMethod{
		Channel:                  s.conf.Channel,
		Store:                    s.conf.Store,
		AzulOrderId:              azulOrderId,
		MethodNotificationStatus: notificationStatus,
	}
	var resp *response.Gateway
	resp, err = s.client.Send(ctx, payload, OpProcessThreedsMethod)
	if err != nil {
		eMsg := "error calling gateway, rolling back method marker"
		clog.WithError(err).Error(eMsg)
		s.guard.Rollback(azulOrderId)
		err = errors.Wrap(err, eMsg)
		return
	}
	res.Response = resp

	switch ClassifyResponse(resp) {
	case OutcomeApproved:
		clog.Info("approved after method notification")
		s.setState(sessionId, SessionStateApproved)
	case OutcomeDeclined:
		clog.WithField("iso-code", resp.IsoCode).Info("declined after method notification")
		s.setState(sessionId, SessionStateDeclined)
	case OutcomeChallengeRequired:
		if !found {
			eMsg := "challenge required but no session holds the term url"
			clog.Error(eMsg)
			err = errors.Wrap(ErrSessionNotFound, eMsg)
			return
		}
		clog.Info("challenge required, handing off browser")
		s.setState(sessionId, SessionStateChallengePending)
		res.Redirect = true
		res.Html = BuildChallengeForm(resp.ThreeDSChallenge.CReq, session.TermUrl, resp.ThreeDSChallenge.RedirectPostUrl)
		res.Message = "3ds challenge required"
	case OutcomeMethodRequired:
		// rare second method round, state stays METHOD_PENDING
		clog.Info("second method round requested")
		res.Redirect = true
		res.Html = resp.ThreeDSMethod.MethodForm
		res.Message = "3ds method required"
	case OutcomeGatewayError:
		eMsg := "gateway rejected method notification"
		clog.WithField("description", resp.ErrorDescription).Error(eMsg)
		s.setState(sessionId, SessionStateError)
		err = &GatewayError{IsoCode: resp.IsoCode, Description: resp.ErrorDescription}
	default:
		eMsg := fmt.Sprintf("unexpected gateway response: %s", resp.ResponseMessage)
		clog.Error(eMsg)
		s.setState(sessionId, SessionStateError)
		err = &GatewayError{IsoCode: resp.IsoCode, Description: eMsg}
	}
	return
}

// waitForChallengePending tolerates the race between the two independently
// arriving callbacks, the ACS may post the challenge result milliseconds
// before the method notification path finishes updating state.
func (s *secureService) waitForChallengePending(ctx context.Context, clog *log.Entry, sessionId string) (SessionData, bool) {
	for attempt := 0; attempt < s.stateRetryAttempts; attempt++ {
		session, found := s.store.Get(sessionId)
		if !found {
			return SessionData{}, false
		}
		if session.State == SessionStateChallengePending {
			return session, true
		}
		clog.WithFields(log.Fields{
			"state":   session.State,
			"attempt": attempt + 1,
		}).Warn("session not yet challenge pending, waiting")
		select {
		case <-ctx.Done():
			return session, session.State == SessionStateChallengePending
		case <-time.After(s.stateRetryDelay):
		}
	}
	session, found := s.store.Get(sessionId)
	return session, found && session.State == SessionStateChallengePending
}

func (s *secureService) ProcessChallengeResponse(ctx context.Context, sessionId, cres string) (res SecureResult, err error) {
	clog := log.WithFields(log.Fields{
		"operation":  "Process Challenge Response",
		"session-id": sessionId,
	})
	clog.Info("Processing")

	session, found := s.store.Get(sessionId)
	if !found {
		eMsg := "challenge response for unknown session"
		clog.Error(eMsg)
		err = errors.Wrap(ErrSessionNotFound, eMsg)
		return
	}
	res.SessionId = sessionId

	if session.State != SessionStateChallengePending {
		session, found = s.waitForChallengePending(ctx, clog, sessionId)
		if !found {
			eMsg := "session state never reached challenge pending"
			clog.Error(eMsg)
			err = &GatewayError{Description: MsgSessionExpired}
			return
		}
	}

	payload := request.ThreedsChallenge{
		Channel:     s.conf.Channel,
		Store:       s.conf.Store,
		AzulOrderId: session.AzulOrderId,
		CRes:        cres,
	}
	var resp *response.Gateway
	resp, err = s.client.Send(ctx, payload, OpProcessThreedsChallenge)
	if err != nil {
		eMsg := "error calling gateway"
		clog.WithError(err).Error(eMsg)
		err = errors.Wrap(err, eMsg)
		return
	}
	res.Response = resp

	switch ClassifyResponse(resp) {
	case OutcomeApproved:
		clog.WithField("authorization-code", resp.AuthorizationCode).Info("approved after challenge")
		s.setState(sessionId, SessionStateApproved)
	case OutcomeDeclined:
		clog.WithField("iso-code", resp.IsoCode).Info("declined after challenge")
		s.setState(sessionId, SessionStateDeclined)
	case OutcomeGatewayError:
		s.setState(sessionId, SessionStateError)
		if isStateConflict(resp.ErrorDescription) {
			clog.WithField("description", resp.ErrorDescription).Warn("transaction state conflict, remapping message")
			err = &GatewayError{IsoCode: resp.IsoCode, Description: MsgSessionExpired}
		} else {
			clog.WithField("description", resp.ErrorDescription).Error("gateway rejected challenge response")
			err = &GatewayError{IsoCode: resp.IsoCode, Description: resp.ErrorDescription}
		}
	default:
		eMsg := fmt.Sprintf("unexpected gateway response: %s", resp.ResponseMessage)
		clog.Error(eMsg)
		s.setState(sessionId, SessionStateError)
		err = &GatewayError{IsoCode: resp.IsoCode, Description: eMsg}
	}
	return
}

func (s *secureService) GetSessionInfo(sessionId string) (SessionData, bool) {
	return s.store.Get(sessionId)
}

package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"ykjam/azulgw/pkg"
	"ykjam/azulgw/pkg/azul/request"
)

// HandlerContext exposes the coordinator over http. The two callback
// handlers are the endpoints the ACS posts to, everything else is a thin
// demo surface for merchants integrating the package.
type HandlerContext interface {
	HandleUtilityEpoch(w http.ResponseWriter, r *http.Request)
	HandleUtilityIP(w http.ResponseWriter, r *http.Request)
	HandleSecureSale(w http.ResponseWriter, r *http.Request)
	HandleMethodNotification(w http.ResponseWriter, r *http.Request)
	HandleChallengeCallback(w http.ResponseWriter, r *http.Request)
	HandleSessionInfo(w http.ResponseWriter, r *http.Request)
}

type handlerContext struct {
	secure       pkg.SecureService
	rOrderNumber *regexp.Regexp
	rCardNumber  *regexp.Regexp
	rCardExpiry  *regexp.Regexp
	rCardCVC     *regexp.Regexp
}

type httpPostWithLog func(w http.ResponseWriter, r *http.Request, ctx context.Context, clog *log.Entry)

func GetRemoteAddress(r *http.Request) string {
	if val := r.Header.Get("X-Forwarded-For"); val != "" {
		return val
	} else if val := r.Header.Get("X-Real-IP"); val != "" {
		return val
	} else {
		return r.RemoteAddr
	}
}

func errorHandler(w http.ResponseWriter, status int) {
	w.WriteHeader(status)
	if status == http.StatusNotFound {
		_, _ = fmt.Fprint(w, "Page not found")
	} else {
		_, _ = fmt.Fprintf(w, "HTTP %d error", status)
	}
}

func errorHandlerWithError(w http.ResponseWriter, status int, err error) {
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, "HTTP %d error\nError %v", status, err)
}

func responseWithCodeAndMessage(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	_, _ = fmt.Fprintln(w, message)
}

func jsonResponse(clog *log.Entry, w http.ResponseWriter, response interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		clog.WithError(err).Error("error in json.Encode")
	}
}

func htmlResponse(clog *log.Entry, w http.ResponseWriter, html string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := fmt.Fprint(w, html)
	if err != nil {
		clog.WithError(err).Error("error writing html response")
	}
}

func (c *handlerContext) handleHttpPostWithLog(handleName string, w http.ResponseWriter, r *http.Request, f httpPostWithLog) {
	ctx := r.Context()
	clog := log.WithFields(log.Fields{
		"remote-addr": GetRemoteAddress(r),
		"uri":         r.RequestURI,
		"method":      r.Method,
		"handle":      handleName,
	}).WithContext(ctx)
	if r.Method == http.MethodPost {
		f(w, r, ctx, clog)
	} else {
		clog.Error("invalid request, method not allowed")
		errorHandler(w, http.StatusMethodNotAllowed)
	}
}

// secureId pulls the correlation parameter off an inbound callback. A
// callback without it cannot be routed and gets a client error.
func secureId(r *http.Request) string {
	return r.URL.Query().Get(pkg.SecureIdParam)
}

func (c *handlerContext) isCardValid(clog *log.Entry, cardNumber, cardExpiry, cvcCode string) bool {
	if !c.rCardNumber.MatchString(cardNumber) {
		clog.Error("card number validation failed")
		return false
	} else if !c.rCardExpiry.MatchString(cardExpiry) {
		clog.WithField("card-expiry", cardExpiry).Error("card expiry validation failed")
		return false
	} else if cvcCode != "" && !c.rCardCVC.MatchString(cvcCode) {
		clog.Error("cvc code validation failed")
		return false
	}
	return true
}

func (c *handlerContext) HandleSecureSale(w http.ResponseWriter, r *http.Request) {
	h := "handleSecureSale"
	c.handleHttpPostWithLog(h, w, r, func(w http.ResponseWriter, r *http.Request, ctx context.Context, clog *log.Entry) {
		orderNumber := r.FormValue("order-number")
		amountRaw := r.FormValue("amount")
		itbisRaw := r.FormValue("itbis")
		cardNumber := r.FormValue("card-number")
		cardExpiry := r.FormValue("card-expiry")
		cvcCode := r.FormValue("card-cvc")
		termUrl := r.FormValue("term-url")
		methodUrl := r.FormValue("method-url")

		if !c.rOrderNumber.MatchString(orderNumber) {
			clog.Warn("not valid order number, ignoring request")
			errorHandler(w, http.StatusBadRequest)
			return
		}
		if !c.isCardValid(clog, cardNumber, cardExpiry, cvcCode) {
			clog.Warn("not valid card details, ignoring request")
			errorHandler(w, http.StatusBadRequest)
			return
		}
		amount, err := decimal.NewFromString(amountRaw)
		if err != nil {
			clog.WithError(err).Warn("not valid amount, ignoring request")
			errorHandler(w, http.StatusBadRequest)
			return
		}
		itbis := decimal.Zero
		if itbisRaw != "" {
			itbis, err = decimal.NewFromString(itbisRaw)
			if err != nil {
				clog.WithError(err).Warn("not valid itbis, ignoring request")
				errorHandler(w, http.StatusBadRequest)
				return
			}
		}
		clog.WithField("order-number", orderNumber).Debug("request received")

		res, err := c.secure.SecureSale(ctx, pkg.SecureSaleRequest{
			Transaction: request.Transaction{
				OrderNumber: orderNumber,
				Amount:      request.MinorUnits(amount),
				Itbis:       request.MinorUnits(itbis),
				CardNumber:  cardNumber,
				Expiration:  cardExpiry,
				CVC:         cvcCode,
			},
			TermUrl:               termUrl,
			MethodNotificationUrl: methodUrl,
		})
		if err != nil {
			clog.WithError(err).Error("secure sale failed")
			errorHandlerWithError(w, http.StatusInternalServerError, err)
			return
		}
		if res.Redirect {
			htmlResponse(clog, w, res.Html)
			return
		}
		jsonResponse(clog, w, res)
	})
}

func (c *handlerContext) HandleMethodNotification(w http.ResponseWriter, r *http.Request) {
	h := "handleMethodNotification"
	c.handleHttpPostWithLog(h, w, r, func(w http.ResponseWriter, r *http.Request, ctx context.Context, clog *log.Entry) {
		sessionId := secureId(r)
		if sessionId == "" {
			clog.Warn("method notification without correlation parameter, rejecting")
			errorHandler(w, http.StatusBadRequest)
			return
		}
		session, found := c.secure.GetSessionInfo(sessionId)
		if !found {
			clog.Warn("method notification for unknown session, rejecting")
			errorHandler(w, http.StatusNotFound)
			return
		}
		if session.AzulOrderId == "" {
			clog.Warn("session has no gateway order id yet, rejecting")
			errorHandler(w, http.StatusConflict)
			return
		}
		res, err := c.secure.ProcessMethodNotification(ctx, session.AzulOrderId, request.MethodStatusReceived)
		if err != nil {
			clog.WithError(err).Error("process method notification failed")
			errorHandlerWithError(w, http.StatusInternalServerError, err)
			return
		}
		if res.Redirect {
			htmlResponse(clog, w, res.Html)
			return
		}
		jsonResponse(clog, w, res)
	})
}

func (c *handlerContext) HandleChallengeCallback(w http.ResponseWriter, r *http.Request) {
	h := "handleChallengeCallback"
	c.handleHttpPostWithLog(h, w, r, func(w http.ResponseWriter, r *http.Request, ctx context.Context, clog *log.Entry) {
		sessionId := secureId(r)
		if sessionId == "" {
			clog.Warn("challenge callback without correlation parameter, rejecting")
			errorHandler(w, http.StatusBadRequest)
			return
		}
		cres := r.FormValue("cres")
		if cres == "" {
			cres = r.FormValue("CRes")
		}
		if cres == "" {
			clog.Warn("challenge callback without cres, rejecting")
			errorHandler(w, http.StatusBadRequest)
			return
		}
		res, err := c.secure.ProcessChallengeResponse(ctx, sessionId, cres)
		if err != nil {
			if errors.Cause(err) == pkg.ErrSessionNotFound {
				clog.WithError(err).Warn("challenge callback for unknown session")
				errorHandler(w, http.StatusNotFound)
				return
			}
			clog.WithError(err).Error("process challenge response failed")
			errorHandlerWithError(w, http.StatusInternalServerError, err)
			return
		}
		jsonResponse(clog, w, res)
	})
}

func (c *handlerContext) HandleSessionInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clog := log.WithFields(log.Fields{
		"remote-addr": GetRemoteAddress(r),
		"uri":         r.RequestURI,
		"handle":      "handleSessionInfo",
	}).WithContext(ctx)
	sessionId := secureId(r)
	if sessionId == "" {
		clog.Warn("session info without correlation parameter, rejecting")
		errorHandler(w, http.StatusBadRequest)
		return
	}
	session, found := c.secure.GetSessionInfo(sessionId)
	if !found {
		errorHandler(w, http.StatusNotFound)
		return
	}
	jsonResponse(clog, w, session)
}

func (c *handlerContext) HandleUtilityEpoch(w http.ResponseWriter, _ *http.Request) {
	epoch := time.Now().Unix()
	responseWithCodeAndMessage(w, http.StatusOK, fmt.Sprintf("%d", epoch))
}

func (c *handlerContext) HandleUtilityIP(w http.ResponseWriter, r *http.Request) {
	remoteIp := GetRemoteAddress(r)
	responseWithCodeAndMessage(w, http.StatusOK, remoteIp)
}

func NewHandlerContext(secure pkg.SecureService) HandlerContext {
	return &handlerContext{
		secure:       secure,
		rOrderNumber: regexp.MustCompile(`(?i)^[a-z0-9\-]{1,32}$`),
		rCardNumber:  regexp.MustCompile(`^[0-9]{13,19}$`),
		rCardExpiry:  regexp.MustCompile(`^[0-9]{6}$`),
		rCardCVC:     regexp.MustCompile(`^[0-9]{3,4}$`),
	}
}

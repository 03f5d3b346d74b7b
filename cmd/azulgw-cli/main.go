package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"ykjam/azulgw/pkg"
	"ykjam/azulgw/pkg/azul/request"
)

func prompt(reader *bufio.Reader, label, current string) (string, error) {
	if current != "" {
		fmt.Printf("%s [%s] > ", label, current)
	} else {
		fmt.Printf("%s > ", label)
	}
	input, err := reader.ReadString('\n')
	if err != nil {
		eMsg := fmt.Sprintf("error reading %s, leaving", label)
		log.WithError(err).Error(eMsg)
		return "", errors.Wrap(err, eMsg)
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return current, nil
	}
	return input, nil
}

func run() error {
	log.Info("Starting Azul gateway CLI")

	var err error
	err = godotenv.Load()
	if err != nil {
		log.WithError(err).Error("error loading .env, ignoring")
	}
	reader := bufio.NewReader(os.Stdin)
	ctx := context.Background()

	gatewayUrl := os.Getenv("AZUL_GATEWAY_URL")
	auth1 := os.Getenv("AZUL_AUTH1")
	auth2 := os.Getenv("AZUL_AUTH2")
	store := os.Getenv("AZUL_STORE")
	cardNumber := os.Getenv("CARD_NUMBER")
	cardExpiry := os.Getenv("CARD_EXPIRY")

	for {
		gatewayUrl, err = prompt(reader, "gateway url", gatewayUrl)
		if err != nil {
			return err
		}
		if strings.HasPrefix(gatewayUrl, "https://") {
			break
		}
		fmt.Println("please verify gateway url")
	}
	if store, err = prompt(reader, "merchant store id", store); err != nil {
		return err
	}
	if cardNumber, err = prompt(reader, "card number", cardNumber); err != nil {
		return err
	}
	if cardExpiry, err = prompt(reader, "card expiry (YYYYMM)", cardExpiry); err != nil {
		return err
	}
	var cvc, orderNumber, amountRaw string
	if cvc, err = prompt(reader, "cvc", ""); err != nil {
		return err
	}
	if orderNumber, err = prompt(reader, "order number", ""); err != nil {
		return err
	}
	if amountRaw, err = prompt(reader, "amount", ""); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(amountRaw)
	if err != nil {
		eMsg := "error parsing amount"
		log.WithError(err).Error(eMsg)
		return errors.Wrap(err, eMsg)
	}

	conf := pkg.Config{
		BaseUrl: gatewayUrl,
		Auth1:   auth1,
		Auth2:   auth2,
		Store:   store,
		Channel: "EC",
		Timeout: 30 * time.Second,
	}
	client := pkg.NewGatewayClient(conf)
	payments := pkg.NewPaymentService(conf, client)
	log.Info("service initialized")

	resp, err := payments.Sale(ctx, request.Transaction{
		OrderNumber:   orderNumber,
		CustomOrderId: orderNumber,
		Amount:        request.MinorUnits(amount),
		CardNumber:    cardNumber,
		Expiration:    cardExpiry,
		CVC:           cvc,
	})
	if err != nil {
		eMsg := "error executing sale"
		log.WithError(err).Error(eMsg)
		return errors.Wrap(err, eMsg)
	}
	fmt.Printf("sale result: %s (iso %s), azul order id %s, auth code %s\n",
		resp.ResponseMessage, resp.IsoCode, resp.AzulOrderId, resp.AuthorizationCode)

	verify, err := payments.Verify(ctx, orderNumber)
	if err != nil {
		eMsg := "error verifying payment"
		log.WithError(err).Error(eMsg)
		return errors.Wrap(err, eMsg)
	}
	fmt.Printf("verify result: %s (iso %s)\n", verify.ResponseMessage, verify.IsoCode)
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

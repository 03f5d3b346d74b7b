package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"ykjam/azulgw/pkg"
	"ykjam/azulgw/pkg/web"
)

type config struct {
	ListenAddress string `json:"listen_address"`
	GatewayUrl    string `json:"gateway_url"`
	Auth1         string `json:"auth1"`
	Auth2         string `json:"auth2"`
	Store         string `json:"store"`
	Channel       string `json:"channel,omitempty"`
	// SessionTTLMinutes bounds how long an unfinished 3DS session stays
	// usable, ACS redirects rarely survive past 15 minutes.
	SessionTTLMinutes           int  `json:"session_ttl_minutes,omitempty"`
	TokenSaleRequiresCardNumber bool `json:"token_sale_requires_card_number,omitempty"`
}

func ReadConfig(source string) (c *config, err error) {
	var raw []byte
	raw, err = ioutil.ReadFile(source)
	if err != nil {
		eMsg := "error reading config from file"
		log.WithError(err).Error(eMsg)
		err = errors.Wrap(err, eMsg)
		return
	}
	err = json.Unmarshal(raw, &c)
	if err != nil {
		eMsg := "error parsing config from json"
		log.WithError(err).Error(eMsg)
		err = errors.Wrap(err, eMsg)
		c = nil
	}
	return
}

func run() error {
	log.Info("Starting Azul gateway daemon")
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	quitChan := make(chan interface{})

	var configFile string
	var conf *config
	var err error
	err = godotenv.Load()
	if err != nil {
		log.WithError(err).Error("error loading .env, ignoring")
	}
	configFile = os.Getenv("AZULGW_CONFIG_FILE")
	if configFile == "" {
		configFile = "config.json"
	}

	conf, err = ReadConfig(configFile)
	if err != nil {
		log.WithError(err).WithField("config-file", configFile).Error("error loading configuration")
		return err
	}
	if conf.Channel == "" {
		conf.Channel = "EC"
	}
	if conf.SessionTTLMinutes == 0 {
		conf.SessionTTLMinutes = 15
	}

	gwConf := pkg.Config{
		BaseUrl:                     conf.GatewayUrl,
		Auth1:                       conf.Auth1,
		Auth2:                       conf.Auth2,
		Store:                       conf.Store,
		Channel:                     conf.Channel,
		Timeout:                     30 * time.Second,
		TokenSaleRequiresCardNumber: conf.TokenSaleRequiresCardNumber,
	}
	client := pkg.NewGatewayClient(gwConf)
	store := pkg.NewMemorySessionStore(time.Duration(conf.SessionTTLMinutes) * time.Minute)
	guard := pkg.NewMemoryIdempotencyGuard()
	secure := pkg.NewSecureService(gwConf, client, store, guard)
	log.Info("services initialized")

	hc := web.NewHandlerContext(secure)

	sm := http.NewServeMux()
	sm.HandleFunc("/api/epoch", hc.HandleUtilityEpoch)
	sm.HandleFunc("/api/ip", hc.HandleUtilityIP)
	sm.HandleFunc("/api/v1/secure-sale", hc.HandleSecureSale)
	sm.HandleFunc("/api/v1/session-info", hc.HandleSessionInfo)
	sm.HandleFunc("/callback/method", hc.HandleMethodNotification)
	sm.HandleFunc("/callback/term", hc.HandleChallengeCallback)

	server := http.Server{
		Addr:              conf.ListenAddress,
		Handler:           sm,
		ReadTimeout:       60 * time.Second,
		ReadHeaderTimeout: 30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	var listener net.Listener
	listener, err = net.Listen("tcp", conf.ListenAddress)
	if err != nil {
		log.WithError(err).Error("error setting up listener")
		return err
	}
	log.WithField("listen", conf.ListenAddress).Info("Starting HTTP API server")
	go startServer(&server, listener)
	for {
		select {
		case <-quitChan:
			log.Warn("quit channel closed, closing listener")
			err = server.Shutdown(context.Background())
			if err != nil {
				log.WithError(err).Error("error during HTTP server shutdown")
				return err
			}
			return nil
		case sig := <-signalChan:
			switch sig {
			case os.Interrupt, syscall.SIGTERM:
				log.Info("interrupt signal received, sending Quit signal")
				close(quitChan)
			}
		}
	}
}

func startServer(srv *http.Server, listener net.Listener) {
	err := srv.Serve(listener)
	if err != nil {
		log.WithError(err).Error("HTTP API server error")
	}
	log.Warn("closing HTTP API server")
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

package pkg

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ykjam/azulgw/pkg/azul/request"
	"ykjam/azulgw/pkg/azul/response"
)

func TestGatewayClientSend(t *testing.T) {
	var gotAuth1, gotAuth2, gotQuery string
	var gotPayload request.Void
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth1 = r.Header.Get("Auth1")
		gotAuth2 = r.Header.Get("Auth2")
		gotQuery = r.URL.RawQuery
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response.Gateway{
			ResponseMessage: response.MessageApproved,
			IsoCode:         "00",
			AzulOrderId:     "12345",
		})
	}))
	defer server.Close()

	client := NewGatewayClient(Config{
		BaseUrl: server.URL,
		Auth1:   "merchant",
		Auth2:   "secret",
	})
	resp, err := client.Send(context.Background(), request.Void{
		Channel:     "EC",
		Store:       "39038540035",
		AzulOrderId: "12345",
	}, OpProcessVoid)
	require.NoError(t, err)
	assert.Equal(t, "12345", resp.AzulOrderId)
	assert.True(t, resp.IsApproved())
	assert.Equal(t, "merchant", gotAuth1)
	assert.Equal(t, "secret", gotAuth2)
	assert.Equal(t, OpProcessVoid, gotQuery)
	assert.Equal(t, "12345", gotPayload.AzulOrderId)
}

func TestGatewayClientDefaultOperationHitsBaseUrl(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode(response.Gateway{ResponseMessage: response.MessageApproved, IsoCode: "00"})
	}))
	defer server.Close()

	client := NewGatewayClient(Config{BaseUrl: server.URL})
	_, err := client.Send(context.Background(), request.Verify{}, OpProcessPayment)
	require.NoError(t, err)
	assert.Empty(t, gotQuery)
}

func TestGatewayClientNon200IsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewGatewayClient(Config{BaseUrl: server.URL})
	_, err := client.Send(context.Background(), request.Verify{}, OpVerifyPayment)
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
}

func TestGatewayClientMalformedJsonIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client := NewGatewayClient(Config{BaseUrl: server.URL})
	_, err := client.Send(context.Background(), request.Verify{}, OpVerifyPayment)
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
}

func TestGatewayClientUnreachableHost(t *testing.T) {
	client := NewGatewayClient(Config{BaseUrl: "http://127.0.0.1:1"})
	_, err := client.Send(context.Background(), request.Verify{}, OpVerifyPayment)
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
}

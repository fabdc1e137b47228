package remote

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentClientConfirm(t *testing.T) {
	var got ConfirmationRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/payments", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(confirmationResponse{Code: "00"})
	}))
	defer srv.Close()

	client := NewPaymentClient(srv.URL, 5*time.Second)
	err := client.Confirm(authedCtx(), &ConfirmationRequest{
		UserID:     "user-1",
		Currency:   "NGN",
		Total:      decimal.NewFromInt(300),
		Reference:  "ref-1",
		StatusCode: "s",
	})

	require.NoError(t, err)
	assert.Equal(t, "ref-1", got.Reference)
	assert.Equal(t, "s", got.StatusCode)
	assert.Equal(t, "300", got.Total.String())
}

func TestPaymentClientConfirm_RejectedCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(confirmationResponse{Code: "96", Message: "system malfunction"})
	}))
	defer srv.Close()

	client := NewPaymentClient(srv.URL, 5*time.Second)
	err := client.Confirm(authedCtx(), &ConfirmationRequest{Reference: "ref-1"})

	assert.ErrorIs(t, err, ErrConfirmationRejected)
}

func TestPaymentClientConfirm_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewPaymentClient(srv.URL, 5*time.Second)
	err := client.Confirm(authedCtx(), &ConfirmationRequest{Reference: "ref-1"})

	assert.ErrorIs(t, err, ErrConfirmationRejected)
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wanderly/models"
	"wanderly/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServer struct {
	chats     []models.ChatRequest
	callbacks []models.PaymentCallbackRequest
	resets    int
	auth      string
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/agent/chat", func(w http.ResponseWriter, r *http.Request) {
		f.auth = r.Header.Get("Authorization")
		var req models.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		f.chats = append(f.chats, req)

		resp := models.ChatResponse{ThreadID: req.ThreadID, Step: models.StepCollect,
			Replies: []models.Message{{Role: models.RoleAssistant, Content: "you said " + req.Message}}}
		if req.Message == "book it" {
			resp.Step = models.StepPaying
			resp.Interrupted = true
			resp.Next = "confirm_payment"
			resp.Booking = &models.BookingResult{PaymentID: "pi_sim_1", Amount: 420, Currency: "USD"}
		}
		writeJSON(w, http.StatusOK, resp)
	})
	mux.HandleFunc("/api/payments/callback", func(w http.ResponseWriter, r *http.Request) {
		var req models.PaymentCallbackRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		f.callbacks = append(f.callbacks, req)
		writeJSON(w, http.StatusOK, models.ChatResponse{ThreadID: req.ThreadID, Step: models.StepFinished,
			Replies: []models.Message{{Role: models.RoleAssistant, Content: "payment " + req.Status}}})
	})
	mux.HandleFunc("/api/agent/orders/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"thread_id": "t1", "orders": []models.Order{
			{ID: "o1", Kind: models.OrderKindFlight, Status: models.OrderConfirmed, Amount: 300, Currency: "USD",
				Flight: &models.FlightOption{Airline: "Aurora Air", FlightNumber: "AU100", Origin: "Berlin", Destination: "Lisbon"}},
			{ID: "o2", Kind: models.OrderKindHotel, Status: models.OrderConfirmed, Amount: 400, Currency: "USD",
				Hotel: &models.HotelOption{Name: "Harbour Inn", Location: "Lisbon"}},
		}})
	})
	mux.HandleFunc("/api/agent/state/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			f.resets++
			writeJSON(w, http.StatusOK, map[string]any{"reset": true})
			return
		}
		if strings.HasSuffix(r.URL.Path, "/missing") {
			writeJSON(w, http.StatusNotFound, utils.ErrorResponse{Message: "Could not load conversation", Details: "checkpoint not found"})
			return
		}
		writeJSON(w, http.StatusOK, models.NewTravelState("t1", ""))
	})
	return mux
}

func newTestREPL(t *testing.T) (*repl, *fakeServer, *bytes.Buffer) {
	f := &fakeServer{}
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	out := &bytes.Buffer{}
	return &repl{api: newAPIClient(srv.URL, "tok", 5*time.Second), threadID: "t1", out: out}, f, out
}

func TestREPLChatAndPay(t *testing.T) {
	r, f, out := newTestREPL(t)

	in := strings.NewReader("hello\nbook it\npay\n/quit\n")
	require.NoError(t, r.run(context.Background(), in))

	require.Len(t, f.chats, 2)
	assert.Equal(t, "hello", f.chats[0].Message)
	assert.Equal(t, "t1", f.chats[0].ThreadID)
	assert.Equal(t, "Bearer tok", f.auth)

	require.Len(t, f.callbacks, 1)
	assert.Equal(t, models.PaymentCallbackRequest{ThreadID: "t1", PaymentID: "pi_sim_1", Status: models.PaymentSucceeded}, f.callbacks[0])

	text := out.String()
	assert.Contains(t, text, "agent: you said hello")
	assert.Contains(t, text, "awaiting payment pi_sim_1")
	assert.Contains(t, text, "agent: payment succeeded")
}

func TestREPLFailWithReason(t *testing.T) {
	r, f, _ := newTestREPL(t)

	require.NoError(t, r.run(context.Background(), strings.NewReader("book it\nfail card declined\n")))
	require.Len(t, f.callbacks, 1)
	assert.Equal(t, models.PaymentFailed, f.callbacks[0].Status)
	assert.Equal(t, "card declined", f.callbacks[0].Reason)
}

func TestREPLPayIsChatWhenNotInterrupted(t *testing.T) {
	r, f, _ := newTestREPL(t)

	require.NoError(t, r.run(context.Background(), strings.NewReader("pay\n")))
	assert.Empty(t, f.callbacks)
	require.Len(t, f.chats, 1)
	assert.Equal(t, "pay", f.chats[0].Message)
}

func TestREPLStateAndReset(t *testing.T) {
	r, f, out := newTestREPL(t)

	require.NoError(t, r.run(context.Background(), strings.NewReader("/state\n/reset\n")))
	assert.Contains(t, out.String(), "step: collect")
	assert.Equal(t, 1, f.resets)
}

func TestClientSurfacesServerErrors(t *testing.T) {
	r, _, _ := newTestREPL(t)

	_, err := r.api.State(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Could not load conversation (404)")
}

func TestClientOrders(t *testing.T) {
	r, _, _ := newTestREPL(t)

	orders, err := r.api.Orders(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, orders, 2)

	out := &bytes.Buffer{}
	printOrders(out, orders)
	assert.Contains(t, out.String(), "Aurora Air AU100 Berlin->Lisbon")
	assert.Contains(t, out.String(), "Harbour Inn, Lisbon")

	out.Reset()
	printOrders(out, nil)
	assert.Equal(t, "no orders\n", out.String())
}

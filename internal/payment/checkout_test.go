package payment

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostedCheckoutAppendsRedirect(t *testing.T) {
	h := HostedCheckout{BaseURL: "https://buy.example.com/abc"}
	got, err := h.CheckoutURL(context.Background(), "https://kycrypto.test/?payment=success&t=1", "")
	require.NoError(t, err)

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "https://kycrypto.test/?payment=success&t=1", u.Query().Get("redirect_url"))

	_, err = HostedCheckout{}.CheckoutURL(context.Background(), "x", "")
	assert.Error(t, err)
}

func TestSessionCheckout(t *testing.T) {
	var req map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/create-checkout-session", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &req)
		_, _ = w.Write([]byte(`{"url":"https://checkout.example.com/cs_123"}`))
	}))
	defer srv.Close()

	s := NewSessionCheckout(srv.URL+"/", "price_1")
	got, err := s.CheckoutURL(context.Background(), "https://a/ok", "https://a/cancel")
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example.com/cs_123", got)
	assert.Equal(t, "price_1", req["priceId"])
	assert.Equal(t, "https://a/ok", req["successUrl"])
	assert.Equal(t, "https://a/cancel", req["cancelUrl"])
}

func TestSessionCheckoutErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewSessionCheckout(srv.URL, "p").CheckoutURL(context.Background(), "a", "b")
	assert.ErrorContains(t, err, "status 500")
}

func TestHTTPVerifier(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = nil
		_ = json.NewDecoder(r.Body).Decode(&got)
		ok := got["sessionId"] == "cs_live_1" || got["paymentStatus"] == "success"
		_ = json.NewEncoder(w).Encode(map[string]bool{"success": ok})
	}))
	defer srv.Close()

	v := NewHTTPVerifier(srv.URL)
	ok, err := v.Verify(context.Background(), "cs_live_1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "cs_live_1", got["sessionId"])

	ok, err = v.Verify(context.Background(), "success")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "success", got["paymentStatus"])

	ok, err = v.Verify(context.Background(), "cs_forged")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHTTPVerifierTransportError(t *testing.T) {
	v := NewHTTPVerifier("http://127.0.0.1:1")
	v.Client.Timeout = time.Second
	_, err := v.Verify(context.Background(), "success")
	assert.Error(t, err)
}

func TestReturnURLAndStrip(t *testing.T) {
	loc := Location{Origin: "https://kycrypto.test", Path: "/app"}
	raw := loc.ReturnURL(StatusSuccess, "a-1", time.UnixMilli(1700000000000))

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/app", u.Path)
	assert.Equal(t, "success", u.Query().Get(ParamStatus))
	assert.Equal(t, "1700000000000", u.Query().Get(ParamToken))
	assert.Equal(t, "a-1", u.Query().Get(ParamAttempt))

	assert.Equal(t, "https://kycrypto.test/app?keep=1", StripReturnParams(raw+"&keep=1&session_id=cs_1"))
}

func TestRemoteOpener(t *testing.T) {
	var o RemoteOpener
	assert.Nil(t, o.Current())
	s, ok := o.Open("https://pay", SurfaceName, CenteredFeatures(ScreenSize{Width: 480, Height: 700}))
	require.True(t, ok)
	assert.False(t, s.Closed())
	o.Current().MarkClosed()
	assert.True(t, s.Closed())
	assert.Equal(t, "width=480,height=700,left=0,top=0", o.Current().Features.String())
}

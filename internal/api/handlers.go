package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"KYCrypto/internal/logging"
	"KYCrypto/internal/model"
	"KYCrypto/internal/payment"
)

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(c *gin.Context, status int, err error) {
	c.JSON(status, ErrorResponse{Code: http.StatusText(status), Message: err.Error()})
}

type handlers struct {
	cfg     RouterConfig
	startAt time.Time
}

type healthResponse struct {
	Status          string     `json:"status"`
	Version         string     `json:"version,omitempty"`
	Uptime          string     `json:"uptime"`
	MarketFetchedAt *time.Time `json:"marketFetchedAt,omitempty"`
	PaymentState    string     `json:"paymentState,omitempty"`
}

func (h *handlers) health(c *gin.Context) {
	resp := healthResponse{
		Status:  "ok",
		Version: h.cfg.Version,
		Uptime:  time.Since(h.startAt).Round(time.Second).String(),
	}
	if h.cfg.Market != nil {
		if at := h.cfg.Market.FetchedAt(); !at.IsZero() {
			resp.MarketFetchedAt = &at
		}
	}
	if h.cfg.Payments != nil {
		resp.PaymentState = string(h.cfg.Payments.State())
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) recommendation(c *gin.Context) {
	var answers model.QuestionnaireAnswers
	if err := c.ShouldBindJSON(&answers); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	if err := answers.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, h.cfg.Recommender.Acquire(c.Request.Context(), answers))
}

type entitlementResponse struct {
	Active    bool       `json:"active"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func (h *handlers) entitlementStatus(c *gin.Context) {
	ctx := c.Request.Context()
	resp := entitlementResponse{Active: h.cfg.Entitlement.IsActive(ctx)}
	if resp.Active {
		if st, err := h.cfg.Entitlement.Status(ctx); err == nil {
			resp.ExpiresAt = st.ExpiresAt
		}
	}
	c.JSON(http.StatusOK, resp)
}

type checkoutResponse struct {
	Attempt    model.PaymentAttempt `json:"attempt"`
	WindowName string               `json:"windowName"`
	Features   string               `json:"features"`
}

func (h *handlers) checkout(c *gin.Context) {
	attempt, err := h.cfg.Payments.Initiate(c.Request.Context())
	switch {
	case errors.Is(err, model.ErrAttemptInFlight):
		writeError(c, http.StatusConflict, err)
		return
	case err != nil:
		writeError(c, http.StatusBadGateway, err)
		return
	}
	resp := checkoutResponse{Attempt: attempt, WindowName: payment.SurfaceName}
	if h.cfg.Surfaces != nil {
		if s := h.cfg.Surfaces.Current(); s != nil {
			resp.Features = s.Features.String()
		}
	}
	c.JSON(http.StatusOK, resp)
}

type closedRequest struct {
	AttemptID string `json:"attemptId" binding:"required"`
}

type resolutionResponse struct {
	Handled  bool                 `json:"handled"`
	State    model.PaymentState   `json:"state"`
	Result   *model.PaymentResult `json:"result,omitempty"`
	CleanURL string               `json:"cleanUrl,omitempty"`
}

func (h *handlers) checkoutClosed(c *gin.Context) {
	var req closedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	h.cfg.Payments.SurfaceClosed(c.Request.Context(), req.AttemptID)
	if h.cfg.Surfaces != nil {
		if s := h.cfg.Surfaces.Current(); s != nil {
			s.MarkClosed()
		}
	}

	resp := resolutionResponse{State: h.cfg.Payments.State()}
	if last, ok := h.cfg.Payments.LastResult(); ok && last.AttemptID == req.AttemptID {
		resp.Handled = true
		resp.Result = &last
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) paymentReturn(c *gin.Context) {
	ctx := c.Request.Context()
	params := c.Request.URL.Query()

	result, handled := h.cfg.Payments.ReturnDetected(ctx, params)
	// Only a landing for the attempt still awaiting checkout may leave a marker.
	if !handled && params.Get(payment.ParamStatus) == payment.StatusSuccess &&
		h.cfg.Payments.State() == model.PaymentAwaitingCheckout {
		if _, err := h.cfg.Payments.MarkPendingSuccess(ctx, params); err != nil {
			h.cfg.Logger.Warn("landing verification failed", logging.Err(err))
		}
	}

	resp := resolutionResponse{
		Handled:  handled,
		State:    h.cfg.Payments.State(),
		CleanURL: payment.StripReturnParams(c.Request.URL.String()),
	}
	if handled {
		resp.Result = &result
	}
	c.JSON(http.StatusOK, resp)
}

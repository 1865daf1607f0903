package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"KYCrypto/internal/model"
	"KYCrypto/internal/wizard"
)

type wizardResponse struct {
	Step      wizard.Step                `json:"step"`
	Answers   model.QuestionnaireAnswers `json:"answers"`
	Portfolio *model.Portfolio           `json:"portfolio,omitempty"`
}

type detailedViewResponse struct {
	Allowed bool                  `json:"allowed"`
	Attempt *model.PaymentAttempt `json:"attempt,omitempty"`
}

func registerWizard(r *gin.Engine, s *wizard.Session) {
	w := &wizardHandlers{s: s}
	g := r.Group("/api/wizard")
	g.GET("", w.state)
	g.POST("/start", w.step(s.Start))
	g.POST("/answers", w.answers)
	g.POST("/submit", w.submit)
	g.POST("/confirm", w.step(s.Confirm))
	g.POST("/back", w.step(s.Back))
	g.POST("/detailed", w.detailed)
	g.POST("/resume", w.resume)
}

type wizardHandlers struct {
	s *wizard.Session
}

func (w *wizardHandlers) render(c *gin.Context) {
	resp := wizardResponse{Step: w.s.Step(), Answers: w.s.Answers()}
	if p, ok := w.s.Allocation(); ok {
		resp.Portfolio = &p
	}
	c.JSON(http.StatusOK, resp)
}

func (w *wizardHandlers) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, wizard.ErrWrongStep), errors.Is(err, model.ErrAttemptInFlight):
		writeError(c, http.StatusConflict, err)
	case errors.Is(err, model.ErrInvalidAnswers):
		writeError(c, http.StatusBadRequest, err)
	default:
		writeError(c, http.StatusBadGateway, err)
	}
}

func (w *wizardHandlers) state(c *gin.Context) { w.render(c) }

func (w *wizardHandlers) step(action func() error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := action(); err != nil {
			w.fail(c, err)
			return
		}
		w.render(c)
	}
}

func (w *wizardHandlers) answers(c *gin.Context) {
	var partial model.QuestionnaireAnswers
	if err := c.ShouldBindJSON(&partial); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	if err := w.s.SetAnswers(partial); err != nil {
		w.fail(c, err)
		return
	}
	w.render(c)
}

func (w *wizardHandlers) submit(c *gin.Context) {
	if _, err := w.s.Submit(c.Request.Context()); err != nil {
		w.fail(c, err)
		return
	}
	w.render(c)
}

func (w *wizardHandlers) detailed(c *gin.Context) {
	allowed, attempt, err := w.s.RequestDetailedView(c.Request.Context())
	if err != nil {
		w.fail(c, err)
		return
	}
	resp := detailedViewResponse{Allowed: allowed}
	if !allowed {
		resp.Attempt = &attempt
	}
	c.JSON(http.StatusOK, resp)
}

func (w *wizardHandlers) resume(c *gin.Context) {
	if _, err := w.s.ResumeAfterRedirect(c.Request.Context()); err != nil {
		w.fail(c, err)
		return
	}
	w.render(c)
}

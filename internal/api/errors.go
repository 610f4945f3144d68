package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/yo-safe/terminal/internal/session"
	"github.com/yo-safe/terminal/internal/uistate"
)

var (
	errVaultNotFound = errors.New("vault not found")
	errFlowBusy      = errors.New("flow not started: a flow is already in progress or the request was rejected")
)

type errorResponse struct {
	Error string `json:"error"`
}

func badRequest(msg string) error {
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}

func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "internal error"

	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	case errors.Is(err, session.ErrNotFound), errors.Is(err, errVaultNotFound):
		code, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, errFlowBusy):
		code, msg = http.StatusConflict, err.Error()
	case errors.Is(err, session.ErrTooManySessions):
		code, msg = http.StatusTooManyRequests, err.Error()
	case errors.Is(err, uistate.ErrInvalid):
		code, msg = http.StatusBadRequest, err.Error()
	}

	if code >= http.StatusInternalServerError {
		s.logger.WithFields(logrus.Fields{
			"method": c.Request().Method,
			"path":   c.Path(),
		}).WithError(err).Error("request failed")
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, errorResponse{Error: msg})
	}
	if err != nil {
		s.logger.WithError(err).Error("failed to write error response")
	}
}

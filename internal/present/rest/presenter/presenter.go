package presenter

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clawdhub/clawdhub/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

// OK wraps a successful response.
func OK(c echo.Context, payload any) error {
	return c.JSON(http.StatusOK, payload)
}

func Created(c echo.Context, payload any) error {
	return c.JSON(http.StatusCreated, payload)
}

func BadRequestMessage(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

// Resolve maps a failed operation to its HTTP status. Unknown error kinds
// degrade to 500 without leaking internals.
func Resolve(c echo.Context, err error) error {

	var badRequest domain.BadRequestError
	if errors.As(err, &badRequest) {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: badRequest.Error(), Hint: badRequest.Hint})
	}

	var unauthenticated domain.UnauthenticatedError
	if errors.As(err, &unauthenticated) {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: unauthenticated.Error()})
	}

	var forbidden domain.ForbiddenError
	if errors.As(err, &forbidden) {
		return c.JSON(http.StatusForbidden, errorResponse{Error: forbidden.Error(), Hint: forbidden.Hint})
	}

	var notFound domain.NotFoundError
	if errors.As(err, &notFound) {
		// stable machine code; the resource phrase is advisory only
		return c.JSON(http.StatusNotFound, errorResponse{Error: "not_found", Hint: notFound.Error()})
	}

	var conflict domain.ConflictError
	if errors.As(err, &conflict) {
		return c.JSON(http.StatusConflict, errorResponse{Error: conflict.Error(), Hint: conflict.Hint})
	}

	var upstream domain.UpstreamError
	if errors.As(err, &upstream) {
		slog.Error("upstream failure", slog.String("error", err.Error()))
		code := upstream.Code
		if code == "" {
			code = "upstream error"
		}
		return c.JSON(http.StatusBadGateway, errorResponse{Error: code})
	}

	var misconfigured domain.MisconfiguredError
	if errors.As(err, &misconfigured) {
		slog.Error("configuration problem", slog.String("error", err.Error()))
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: misconfigured.Error(), Hint: misconfigured.Hint})
	}

	slog.Error("internal error", slog.String("error", err.Error()))
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

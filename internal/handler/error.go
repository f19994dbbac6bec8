package handler

import (
	"database/sql"
	"errors"
	"log"
	"net/http"

	"github.com/haatos/freestyle-multibranch/internal/criteria"
	"github.com/haatos/freestyle-multibranch/internal/multibranch"
	"github.com/haatos/freestyle-multibranch/internal/service"
	"github.com/haatos/freestyle-multibranch/internal/steps"
	"github.com/labstack/echo/v4"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	switch e := err.(type) {
	case *echo.HTTPError:
		if e.Internal != nil {
			c.Logger().Errorf(
				"handler internal error %s [%d]: %+v\n",
				c.Request().URL.Path, e.Code, e.Internal,
			)
		}
		message, ok := e.Message.(string)
		if !ok {
			message = http.StatusText(e.Code)
		}
		if err := c.JSON(e.Code, ErrorResponse{Message: message}); err != nil {
			log.Printf("err returning json: %+v\n", err)
		}
	default:
		c.Logger().Errorf("handler error: %+v\n", e)
		if err := c.JSON(
			http.StatusInternalServerError,
			ErrorResponse{Message: "something went terribly wrong"},
		); err != nil {
			log.Printf("err returning json: %+v\n", err)
		}
	}
}

func newError(c echo.Context, err error, status int, message string) error {
	e := echo.NewHTTPError(status, message)
	if err != nil {
		e = e.WithInternal(err)
	}
	return e
}

// domainError maps errors of the engine to an HTTP error, falling back to
// status with message.
func domainError(c echo.Context, err error, status int, message string) error {
	var (
		nodeErr    *multibranch.NodeDisconnectedError
		replaceErr *multibranch.TemplateReplaceError
		cfgErr     *criteria.ConfigurationError
		capErr     steps.CapabilityError
		kindErr    steps.UnknownKindError
		existsErr  *service.ErrProjectExists
	)
	switch {
	case errors.As(err, &nodeErr):
		return newError(c, err, http.StatusConflict, nodeErr.Error())
	case errors.As(err, &replaceErr):
		return newError(c, err, http.StatusUnprocessableEntity, replaceErr.Error())
	case errors.As(err, &cfgErr):
		return newError(c, err, http.StatusBadRequest, cfgErr.Error())
	case errors.As(err, &capErr):
		return newError(c, err, http.StatusBadRequest, capErr.Error())
	case errors.As(err, &kindErr):
		return newError(c, err, http.StatusBadRequest, kindErr.Error())
	case errors.As(err, &existsErr), isUniqueConstraintError(err):
		return newError(c, err, http.StatusConflict, "already exists")
	case errors.Is(err, service.ErrProjectNotFound),
		errors.Is(err, multibranch.ErrJobNotFound),
		errors.Is(err, service.ErrBuildNotRunning),
		errors.Is(err, sql.ErrNoRows):
		return newError(c, err, http.StatusNotFound, "not found")
	case errors.Is(err, multibranch.ErrNotBuildable):
		return newError(c, err, http.StatusConflict, err.Error())
	}
	return newError(c, err, status, message)
}

func isUniqueConstraintError(err error) bool {
	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		return sqErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

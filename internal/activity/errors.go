package activity

import (
	"context"
	"errors"
	"net/http"

	"go.temporal.io/sdk/temporal"

	"github.com/edvin/autosetup/internal/retry"
)

// httpStatusError is implemented by the HTTP client errors of the
// connector and portal packages.
type httpStatusError interface {
	HTTPStatus() int
}

// classify converts a collaborator error into a typed application error:
// 404 is NotFound, other 4xx (except 408 and 429) are client errors, and
// everything else, including network failures, is transient.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var statusErr httpStatusError
	if errors.As(err, &statusErr) {
		switch code := statusErr.HTTPStatus(); {
		case code == http.StatusNotFound:
			return retry.NotFound(op, err)
		case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests:
			return retry.Transient(op, err)
		case code >= 400 && code < 500:
			return retry.Client(op, err)
		}
	}
	return retry.Transient(op, err)
}

package activity

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edvin/autosetup/internal/edc"
	"github.com/edvin/autosetup/internal/portal"
	"github.com/edvin/autosetup/internal/retry"
)

func TestClassify(t *testing.T) {
	assert.NoError(t, classify("op", nil))

	assert.True(t, retry.IsNotFound(classify("op", &portal.StatusError{StatusCode: http.StatusNotFound})))
	assert.True(t, retry.IsTransient(classify("op", &edc.StatusError{StatusCode: http.StatusTooManyRequests})))
	assert.True(t, retry.IsTransient(classify("op", &edc.StatusError{StatusCode: http.StatusBadGateway})))
	assert.True(t, retry.IsTransient(classify("op", errors.New("dial tcp: connection refused"))))

	client := classify("op", &portal.StatusError{StatusCode: http.StatusForbidden})
	assert.False(t, retry.IsTransient(client))
	assert.False(t, retry.IsNotFound(client))

	assert.ErrorIs(t, classify("op", context.Canceled), context.Canceled)

	typed := retry.Precondition("missing", nil)
	assert.Same(t, typed, classify("op", typed))
}

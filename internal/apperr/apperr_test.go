package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	cases := map[error]int{
		Invalidf("bad id"):               http.StatusBadRequest,
		ErrUnauthorized:                  http.StatusUnauthorized,
		NotFoundf("student not found"):   http.StatusNotFound,
		Conflictf("duplicate username"):  http.StatusConflict,
		Unavailablef("mongo down"):       http.StatusServiceUnavailable,
		errors.New("disk exploded"):      http.StatusInternalServerError,
		fmt.Errorf("ctx: %w", ErrNotFound): http.StatusNotFound,
	}
	for err, want := range cases {
		assert.Equal(t, want, Status(err), "err=%v", err)
	}
}

func TestMessageHidesInternalDetail(t *testing.T) {
	assert.Equal(t, "internal server error", Message(errors.New("connection string leaked")))
	assert.Equal(t, "not found: student not found", Message(NotFoundf("student not found")))
}

package chaterrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeSurvivesWrapping(t *testing.T) {
	cases := map[error]string{
		ErrValidation:          "validation_error",
		ErrInvalidConversation: "invalid_conversation",
		ErrNotFound:            "not_found",
		ErrUnauthorized:        "unauthorized",
		ErrConflict:            "conflict_error",
		ErrNoSupportAvailable:  "no_support_available",
		ErrTransient:           "transient_error",
	}
	for sentinel, code := range cases {
		assert.Equal(t, code, Code(sentinel))
		assert.Equal(t, code, Code(fmt.Errorf("%w: detail", sentinel)))
	}
	assert.Equal(t, "internal_error", Code(errors.New("something else")))
}

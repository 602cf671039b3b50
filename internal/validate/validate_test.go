package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"projecthub/internal/apperr"
)

type sample struct {
	Email string `validate:"required,email"`
	Rank  int    `validate:"min=1"`
}

func TestStruct(t *testing.T) {
	assert.NoError(t, Struct(sample{Email: "a@example.com", Rank: 1}))

	err := Struct(sample{Email: "nope", Rank: 0})
	assert.ErrorIs(t, err, apperr.InvalidArgument(""))
	assert.Equal(t, "email must be a valid email address; rank must be at least 1", apperr.MessageOf(err))
}

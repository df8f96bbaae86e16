package validator

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type postPayload struct {
	Text string `validate:"required,min=1,max=300"`
}

type profilePayload struct {
	Phone string `validate:"omitempty,phone"`
}

type eventPayload struct {
	Deadline time.Time `validate:"required,future"`
}

func TestTextLengthGate(t *testing.T) {
	ctx := context.Background()

	assert.Error(t, Validate(ctx, postPayload{Text: ""}))
	assert.NoError(t, Validate(ctx, postPayload{Text: "a"}))
	assert.NoError(t, Validate(ctx, postPayload{Text: strings.Repeat("x", 300)}))

	err := Validate(ctx, postPayload{Text: strings.Repeat("x", 301)})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), ErrFieldExceedsMaxLen)
}

func TestPhoneValidation(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, Validate(ctx, profilePayload{Phone: ""}))
	assert.NoError(t, Validate(ctx, profilePayload{Phone: "+919876543210"}))
	assert.NoError(t, Validate(ctx, profilePayload{Phone: "9876543210"}))
	assert.Error(t, Validate(ctx, profilePayload{Phone: "not-a-phone"}))
	assert.Error(t, Validate(ctx, profilePayload{Phone: "123"}))
}

func TestFutureValidation(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, Validate(ctx, eventPayload{Deadline: time.Now().Add(time.Hour)}))
	assert.Error(t, Validate(ctx, eventPayload{Deadline: time.Now().Add(-time.Hour)}))
}

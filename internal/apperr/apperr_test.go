package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validationf("name cannot be blank"), Validation},
		{"wrapped forbidden", fmt.Errorf("respond: %w", Forbiddenf("nope")), Forbidden},
		{"plain error", errors.New("db is down"), Internal},
		{"nil", nil, Internal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, KindOf(tc.err))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Kind: Internal, Message: "load group", Err: errors.New("timeout")}
	assert.Equal(t, "load group: timeout", err.Error())
	assert.True(t, errors.Is(err, err.Err))

	assert.Equal(t, "Group not found.", NotFoundf("Group not found.").Error())
	assert.True(t, Is(Conflictf("x"), Conflict))
	assert.False(t, Is(nil, Conflict))
}

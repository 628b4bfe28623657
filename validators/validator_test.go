package validators

import (
	"testing"

	"github.com/anonto42/weabotalk/backend/internal/models"
	"github.com/anonto42/weabotalk/backend/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateItemisesFields(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&models.Profile{Username: "no spaces!", Bio: "ok"})
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
	require.Len(t, appErr.Fields, 1)
	assert.Equal(t, "username", appErr.Fields[0].Field)
	assert.Equal(t, "username can only contain letters, numbers, and underscores", appErr.Fields[0].Message)
}

func TestValidateMessages(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&models.SignupRequest{Email: "nope", Password: "short", PasswordConfirmation: "short"})
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{
		"email must be a valid email address",
		"password must be at least 8 characters long",
	}, appErr.Messages())
}

func TestValidateReaction(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Validate(&models.CreateReactionRequest{ReactionType: "🔥"}))

	appErr, ok := apperror.As(v.Validate(&models.CreateReactionRequest{ReactionType: "🍌"}))
	require.True(t, ok)
	assert.Equal(t, "reaction_type is not an allowed reaction", appErr.Fields[0].Message)
}

func TestValidatePlainText(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Validate(&models.Profile{Username: "rocker", Bio: "rock & roll, Tom's \"best\""}))

	appErr, ok := apperror.As(v.Validate(&models.Profile{Username: "rocker", Bio: "hi<script>alert(1)</script>"}))
	require.True(t, ok)
	require.Len(t, appErr.Fields, 1)
	assert.Equal(t, "bio must not contain HTML markup", appErr.Fields[0].Message)
}

package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confcenter/confcenter/internal/pkg/apperrors"
	"github.com/confcenter/confcenter/internal/pkg/token"
)

var testSecret = []byte("test-secret")

func newAuthService() (*AuthService, *fakeUserRepo) {
	repo := newFakeUserRepo()
	return NewAuthService(repo, testSecret), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService()

	userID, err := svc.Register("Alice", "a@x.com", "pw123456")
	require.NoError(t, err)
	assert.NotZero(t, userID)

	// duplicate registration fails with conflict regardless of password
	_, err = svc.Register("Alice Again", "A@X.com", "pw2-different")
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))

	// the second password never took effect
	_, _, err = svc.Login("a@x.com", "pw2-different")
	assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))

	tok, user, err := svc.Login("a@x.com", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	require.NotEmpty(t, tok)

	// token resolves back to the same user
	got, err := token.Verify(tok, testSecret)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthService()

	_, err := svc.Register("Alice", "a@x.com", "short")
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	_, err = svc.Register("Alice", "not-an-email", "pw123456")
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestLoginUnknownAndWrongAreIdenticalErrors(t *testing.T) {
	svc, _ := newAuthService()

	_, err := svc.Register("Alice", "a@x.com", "pw123456")
	require.NoError(t, err)

	_, _, errUnknown := svc.Login("nobody@x.com", "pw123456")
	_, _, errWrong := svc.Login("a@x.com", "wrong-password")

	require.Error(t, errUnknown)
	require.Error(t, errWrong)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
	assert.True(t, apperrors.Is(errUnknown, apperrors.KindUnauthorized))
	assert.True(t, apperrors.Is(errWrong, apperrors.KindUnauthorized))
}

func TestLoginProviderOnlyAccount(t *testing.T) {
	svc, repo := newAuthService()

	oauthSvc := NewOAuthService(repo, newFakeOAuthAccountRepo())
	_, err := oauthSvc.LinkOrCreateUser(ExternalProfile{
		Provider:       "google",
		ProviderUserID: "g-1",
		Email:          "oauth@x.com",
		Name:           "OAuth Olivia",
		EmailVerified:  true,
	})
	require.NoError(t, err)

	_, _, err = svc.Login("oauth@x.com", "anything")
	assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))
}

func TestAuthenticateToken(t *testing.T) {
	svc, _ := newAuthService()

	userID, err := svc.Register("Alice", "a@x.com", "pw123456")
	require.NoError(t, err)

	tok, _, err := svc.Login("a@x.com", "pw123456")
	require.NoError(t, err)

	user, err := svc.AuthenticateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, "a@x.com", user.Email)

	_, err = svc.AuthenticateToken("garbage")
	assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))

	// token for a deleted/unknown user is rejected too
	stray, err := svc.IssueToken(9999)
	require.NoError(t, err)
	_, err = svc.AuthenticateToken(stray)
	assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))
}

func TestGetUserByEmail(t *testing.T) {
	svc, _ := newAuthService()

	_, err := svc.Register("Alice", "a@x.com", "pw123456")
	require.NoError(t, err)

	user, err := svc.GetUserByEmail("A@X.com")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)

	_, err = svc.GetUserByEmail("missing@x.com")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

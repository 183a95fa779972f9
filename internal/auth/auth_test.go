package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/realtime-catalog/internal/account"
)

func newService(t *testing.T) (*Service, *account.Store) {
	t.Helper()
	accounts := account.New()
	return New(accounts, "test-secret", time.Hour), accounts
}

func TestRegisterIssuesVerifiableToken(t *testing.T) {
	svc, _ := newService(t)
	sess, err := svc.Register("a@example.com", "alice", "pw123456")
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)
	assert.Equal(t, "alice", sess.User.Username)

	actor, err := svc.Verify(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, actor)
}

func TestLoginRecordsActivityAndLastLogin(t *testing.T) {
	svc, accounts := newService(t)
	sess, err := svc.Register("a@example.com", "alice", "pw123456")
	require.NoError(t, err)

	_, err = svc.Login("a@example.com", "pw123456")
	require.NoError(t, err)

	acts, err := accounts.Activities(sess.User.ID)
	require.NoError(t, err)
	require.NotEmpty(t, acts)
	assert.Equal(t, "User logged in", acts[0])
	assert.Equal(t, 1, accounts.CountActiveSince(time.Now().Add(-time.Minute)))
}

func TestLoginBadCredentials(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Register("a@example.com", "alice", "pw123456")
	require.NoError(t, err)

	_, err = svc.Login("a@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login("nobody@example.com", "pw123456")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyRejectsGarbageAndExpired(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := New(account.New(), "test-secret", -time.Hour)
	sess, err := expired.Register("a@example.com", "alice", "pw")
	require.NoError(t, err)
	_, err = expired.Verify(sess.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	svc, _ := newService(t)
	sess, err := svc.Register("a@example.com", "alice", "pw")
	require.NoError(t, err)

	other := New(account.New(), "other-secret", time.Hour)
	_, err = other.Verify(sess.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

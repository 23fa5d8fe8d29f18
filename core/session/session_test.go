package session_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/brightspark/core/data"
	"github.com/trezcool/brightspark/core/session"
	"github.com/trezcool/brightspark/core/user"
	"github.com/trezcool/brightspark/storage/database/fixtures"
	testutil "github.com/trezcool/brightspark/tests"
)

const secret = "test-secret"

func openStore(t *testing.T, slot session.Slot) *session.Store {
	t.Helper()
	dir := data.NewDirectory(testutil.SeededStore(t))
	codec := session.NewTokenCodec(secret, "Brightspark", time.Hour)
	return session.Open(dir, slot, codec, testutil.NewLogger(t))
}

func TestStore_SignIn(t *testing.T) {
	tests := []struct {
		name    string
		creds   session.Credentials
		wantID  string
		wantErr error
	}{
		{name: "educator", creds: session.Credentials{Email: "teacher@brightspark.com", Password: fixtures.Password}, wantID: fixtures.EducatorSmithID},
		{name: "email is case insensitive", creds: session.Credentials{Email: " Parent@Brightspark.com", Password: fixtures.Password}, wantID: fixtures.GuardianBrownID},
		{name: "wrong password", creds: session.Credentials{Email: "teacher@brightspark.com", Password: "Password"}, wantErr: session.ErrAuthenticationFailed},
		{name: "unknown email", creds: session.Credentials{Email: "nobody@brightspark.com", Password: fixtures.Password}, wantErr: session.ErrAuthenticationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot := new(session.MemorySlot)
			s := openStore(t, slot)

			p, err := s.SignIn(context.Background(), tt.creds)
			cur, ok := s.Current()
			token, _ := slot.Load()
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "error = %v, want %v", err, tt.wantErr)
				assert.False(t, ok)
				assert.Empty(t, token)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, p.ID())
			assert.True(t, ok)
			assert.Equal(t, p, cur)
			assert.NotEmpty(t, token)
		})
	}
}

func TestStore_Rehydrate(t *testing.T) {
	slot := new(session.MemorySlot)
	s := openStore(t, slot)
	p, err := s.SignIn(context.Background(), session.Credentials{Email: "school@brightspark.com", Password: fixtures.Password})
	require.NoError(t, err)

	restarted := openStore(t, slot)
	cur, ok := restarted.Current()
	require.True(t, ok)
	assert.Equal(t, p, cur)
	org, _ := cur.OrgAffiliation()
	assert.Equal(t, "1", org)
	assert.Equal(t, user.RoleOrgAdmin, cur.Role())
}

func TestStore_RehydrateDiscardsBadTokens(t *testing.T) {
	admin := testutil.Principal(t, fixtures.PlatformAdminID)
	forger := session.NewTokenCodec("not-the-secret", "Brightspark", time.Hour)
	forged, err := forger.Issue(admin)
	require.NoError(t, err)

	expired, err := session.NewTokenCodec(secret, "Brightspark", -time.Minute).Issue(admin)
	require.NoError(t, err)

	for name, token := range map[string]string{"forged": forged, "expired": expired, "garbage": "not.a.token"} {
		t.Run(name, func(t *testing.T) {
			slot := new(session.MemorySlot)
			require.NoError(t, slot.Store([]byte(token)))

			s := openStore(t, slot)
			_, ok := s.Current()
			assert.False(t, ok)
			stored, _ := slot.Load()
			assert.Empty(t, stored, "bad tokens are cleared")
		})
	}
}

func TestStore_SignOut(t *testing.T) {
	slot := new(session.MemorySlot)
	s := openStore(t, slot)
	_, err := s.SignIn(context.Background(), session.Credentials{Email: "student@brightspark.com", Password: fixtures.Password})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		assert.NoError(t, s.SignOut())
		_, ok := s.Current()
		assert.False(t, ok)
	}
	token, _ := slot.Load()
	assert.Empty(t, token)

	_, ok := openStore(t, slot).Current()
	assert.False(t, ok)
}

func TestFileSlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session")
	slot := session.NewFileSlot(path)

	token, err := slot.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, slot.Store([]byte("abc")))
	token, err = slot.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", string(token))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, slot.Clear())
	require.NoError(t, slot.Clear())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestTokenCodec(t *testing.T) {
	codec := session.NewTokenCodec(secret, "Brightspark", time.Hour)
	p := testutil.Principal(t, fixtures.GuardianBrownID)

	token, err := codec.Issue(p)
	require.NoError(t, err)
	got, err := codec.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = session.NewTokenCodec(secret, "Other", time.Hour).Parse(token)
	assert.True(t, errors.Is(err, session.ErrInvalidToken))
}

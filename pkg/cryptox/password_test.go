package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "cryptox")
	if err != nil {
		panic(err)
	}
	SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func TestHashAndVerify(t *testing.T) {
	for _, password := range []string{"secret123", "", "pässwörd with spaces", strings.Repeat("x", 1000)} {
		hash, err := HashPassword(password)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=19456,t=2,p=1$"), hash)
		require.False(t, IsBcryptHash(hash))

		require.NoError(t, VerifyPassword(password, hash))
		require.ErrorIs(t, VerifyPassword(password+"!", hash), ErrPasswordMismatch)
	}
}

func TestHashPasswordSaltsEachHash(t *testing.T) {
	a, err := HashPassword("same-password")
	require.NoError(t, err)
	b, err := HashPassword("same-password")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestVerifyPasswordRejectsMalformedHashes(t *testing.T) {
	valid, err := HashPassword("secret123")
	require.NoError(t, err)
	parts := strings.Split(valid, "$")

	tests := map[string]string{
		"empty":          "",
		"too few parts":  "$argon2id$v=19$m=19456,t=2,p=1$salt",
		"wrong algo":     strings.Join([]string{"", "argon2i", parts[2], parts[3], parts[4], parts[5]}, "$"),
		"wrong version":  strings.Join([]string{"", "argon2id", "v=16", parts[3], parts[4], parts[5]}, "$"),
		"bad params":     strings.Join([]string{"", "argon2id", parts[2], "m=x", parts[4], parts[5]}, "$"),
		"bad salt":       strings.Join([]string{"", "argon2id", parts[2], parts[3], "!!", parts[5]}, "$"),
		"bad hash bytes": strings.Join([]string{"", "argon2id", parts[2], parts[3], parts[4], "!!"}, "$"),
	}
	for name, hash := range tests {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, VerifyPassword("secret123", hash), ErrInvalidHash)
		})
	}
}

func TestVerifyPasswordBcrypt(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("imported-password"), bcrypt.MinCost)
	require.NoError(t, err)
	require.True(t, IsBcryptHash(string(hash)))

	require.NoError(t, VerifyPassword("imported-password", string(hash)))
	require.ErrorIs(t, VerifyPassword("not-it", string(hash)), ErrPasswordMismatch)
	require.ErrorIs(t, VerifyPassword("imported-password", string(hash[:20])), ErrInvalidHash)
}

func TestLoadPepperReusesExistingFile(t *testing.T) {
	old := pepperPathForTest()
	t.Cleanup(func() { SetPepperPath(old) })

	path := filepath.Join(t.TempDir(), "nested", "pepper")
	SetPepperPath(path)
	require.NoError(t, LoadPepper())
	first := GetPepper()
	require.NotEmpty(t, first)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, first, string(raw))

	SetPepperPath(path)
	require.NoError(t, LoadPepper())
	require.Equal(t, first, GetPepper())
}

func TestPepperChangesTheHash(t *testing.T) {
	old := pepperPathForTest()
	t.Cleanup(func() { SetPepperPath(old) })

	hash, err := HashPassword("secret123")
	require.NoError(t, err)

	SetPepperPath(filepath.Join(t.TempDir(), "other-pepper"))
	require.NoError(t, LoadPepper())
	require.ErrorIs(t, VerifyPassword("secret123", hash), ErrPasswordMismatch)
}

func pepperPathForTest() string {
	pepperMu.RLock()
	defer pepperMu.RUnlock()
	return pepperFile
}

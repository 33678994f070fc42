package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSalt = "test-salt"

func TestSealOpen(t *testing.T) {
	v, err := New("correct horse", testSalt)
	require.NoError(t, err)

	sealed, err := v.Seal([]byte("api-secret"))
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "api-secret")

	plain, err := v.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "api-secret", string(plain))
}

func TestOpenWithWrongKeyFails(t *testing.T) {
	a, _ := New("one", testSalt)
	b, _ := New("two", testSalt)

	sealed, err := a.Seal([]byte("secret"))
	require.NoError(t, err)

	_, err = b.Open(sealed)
	assert.ErrorIs(t, err, ErrOpen)

	_, err = a.Open([]byte("short"))
	assert.ErrorIs(t, err, ErrOpen)
}

func TestNewRejectsEmptyKey(t *testing.T) {
	_, err := New("", testSalt)
	assert.Error(t, err)

	_, err = New("key", "")
	assert.Error(t, err)
}

func TestSaltChangesKey(t *testing.T) {
	a, err := New("same", "salt-a")
	require.NoError(t, err)
	b, err := New("same", "salt-b")
	require.NoError(t, err)
	assert.NotEqual(t, a.key, b.key)

	again, err := New("same", "salt-a")
	require.NoError(t, err)
	sealed, err := a.Seal([]byte("secret"))
	require.NoError(t, err)
	plain, err := again.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "secret", string(plain))

	_, err = b.Open(sealed)
	assert.ErrorIs(t, err, ErrOpen)
}

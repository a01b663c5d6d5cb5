package google

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenEncryption_RoundTrip(t *testing.T) {
	key, err := GenerateEncryptionKey()
	require.NoError(t, err)

	enc, err := NewTokenEncryption(key)
	require.NoError(t, err)
	assert.True(t, enc.Enabled())

	sealed, err := enc.Encrypt([]byte(`{"access_token":"abc"}`))
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "access_token")

	plain, err := enc.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, `{"access_token":"abc"}`, string(plain))
}

func TestTokenEncryption_NonceIsRandom(t *testing.T) {
	key, err := GenerateEncryptionKey()
	require.NoError(t, err)
	enc, err := NewTokenEncryption(key)
	require.NoError(t, err)

	a, err := enc.Encrypt([]byte("same"))
	require.NoError(t, err)
	b, err := enc.Encrypt([]byte("same"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestTokenEncryption_Disabled(t *testing.T) {
	enc, err := NewTokenEncryption(nil)
	require.NoError(t, err)
	assert.False(t, enc.Enabled())

	out, err := enc.Encrypt([]byte("plain"))
	require.NoError(t, err)
	assert.Equal(t, "plain", string(out))
}

func TestTokenEncryption_WrongKey(t *testing.T) {
	k1, _ := GenerateEncryptionKey()
	k2, _ := GenerateEncryptionKey()
	e1, err := NewTokenEncryption(k1)
	require.NoError(t, err)
	e2, err := NewTokenEncryption(k2)
	require.NoError(t, err)

	sealed, err := e1.Encrypt([]byte("secret"))
	require.NoError(t, err)
	_, err = e2.Decrypt(sealed)
	assert.Error(t, err)

	_, err = e1.Decrypt([]byte("!!not base64!!"))
	assert.Error(t, err)
}

func TestNewTokenEncryption_KeySize(t *testing.T) {
	_, err := NewTokenEncryption([]byte("short"))
	assert.Error(t, err)
}

func TestEncryptionKeyFromBase64(t *testing.T) {
	key, err := EncryptionKeyFromBase64("")
	require.NoError(t, err)
	assert.Nil(t, key)

	key, err = EncryptionKeyFromBase64("AAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8=")
	require.NoError(t, err)
	assert.Len(t, key, 32)

	_, err = EncryptionKeyFromBase64("c2hvcnQ=")
	assert.Error(t, err)

	_, err = EncryptionKeyFromBase64("not base64 at all")
	assert.Error(t, err)
}

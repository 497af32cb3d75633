package utils

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeyPair(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func TestSignRoundTrip(t *testing.T) {
	key := testKeyPair(t)

	now := time.Now()
	claims := &Claims{
		Sub:  "pat-1",
		Role: "patient",
		Name: "Jordan Rivera",
		Iat:  now.Unix(),
		Exp:  now.Add(time.Hour).Unix(),
	}

	token, err := GenerateSign(claims, key)
	require.NoError(t, err)

	parsed, err := ParseAndVerifySign(token, &key.PublicKey)
	require.NoError(t, err)
	assert.Equal(t, "pat-1", parsed.Sub)
	assert.Equal(t, "patient", parsed.Role)
	assert.Equal(t, "Jordan Rivera", parsed.Name)
}

func TestParseAndVerifySign_WrongKey(t *testing.T) {
	key := testKeyPair(t)
	otherKey := testKeyPair(t)

	now := time.Now()
	token, err := GenerateSign(&Claims{
		Sub: "pat-1", Role: "patient",
		Iat: now.Unix(), Exp: now.Add(time.Hour).Unix(),
	}, key)
	require.NoError(t, err)

	_, err = ParseAndVerifySign(token, &otherKey.PublicKey)
	assert.Error(t, err)
}

func TestParseAndVerifySign_Expired(t *testing.T) {
	key := testKeyPair(t)

	now := time.Now()
	token, err := GenerateSign(&Claims{
		Sub: "pat-1", Role: "patient",
		Iat: now.Add(-2 * time.Hour).Unix(), Exp: now.Add(-time.Hour).Unix(),
	}, key)
	require.NoError(t, err)

	_, err = ParseAndVerifySign(token, &key.PublicKey)
	assert.Error(t, err)
}

func TestParseUnverified(t *testing.T) {
	key := testKeyPair(t)

	now := time.Now()
	token, err := GenerateSign(&Claims{
		Sub: "doc-1", Role: "doctor", Name: "Sam Okafor",
		Iat: now.Unix(), Exp: now.Add(time.Hour).Unix(),
	}, key)
	require.NoError(t, err)

	claims, err := ParseUnverified(token)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", claims.Sub)
	assert.Equal(t, "doctor", claims.Role)
}

func TestParseUnverified_NoSubject(t *testing.T) {
	key := testKeyPair(t)

	now := time.Now()
	token, err := GenerateSign(&Claims{
		Role: "doctor",
		Iat:  now.Unix(), Exp: now.Add(time.Hour).Unix(),
	}, key)
	require.NoError(t, err)

	_, err = ParseUnverified(token)
	assert.Error(t, err)
}

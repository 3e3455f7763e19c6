package integrity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySymmetry(t *testing.T) {
	sender := NewVerifier("clave-compartida")
	receiver := NewVerifier("clave-compartida")

	msg := Fields(map[string]string{
		"producto_id": "77",
		"cantidad":    "30",
		"bodega_id":   "3",
	})

	digest := sender.HMAC(msg)
	assert.True(t, receiver.Verify(digest, msg))
}

func TestVerifyTamperedField(t *testing.T) {
	v := NewVerifier("clave-compartida")

	digest := v.HMAC(Fields(map[string]string{"cantidad": "30"}))
	tampered := Fields(map[string]string{"cantidad": "300"})

	assert.False(t, v.Verify(digest, tampered))
}

func TestVerifyDifferentSecrets(t *testing.T) {
	sender := NewVerifier("clave-a")
	receiver := NewVerifier("clave-b")

	msg := Fields(map[string]string{"cantidad": "30"})
	assert.False(t, receiver.Verify(sender.HMAC(msg), msg))
}

func TestVerifyMalformedDigest(t *testing.T) {
	v := NewVerifier("clave-compartida")
	msg := Fields(map[string]string{"cantidad": "30"})

	assert.False(t, v.Verify("", msg))
	assert.False(t, v.Verify("no-es-hex", msg))
	assert.False(t, v.Verify("deadbeef", msg))
}

func TestHMACDiffersFromPlainHash(t *testing.T) {
	v := NewVerifier("clave-compartida")
	msg := Fields(map[string]string{"cantidad": "30"})

	assert.NotEqual(t, v.Hash(msg), v.HMAC(msg))
	assert.Len(t, v.Hash(msg), 64)
	assert.Len(t, v.HMAC(msg), 64)
}

func TestEquivalentStructuresShareDigest(t *testing.T) {
	v := NewVerifier("clave-compartida")

	built := Mapping(map[string]Value{
		"a": Text(`1`),
		"b": String("x"),
	})
	parsed := Text(`{"b": "x", "a": 1}`)

	assert.Equal(t, v.HMAC(built), v.HMAC(parsed))
}

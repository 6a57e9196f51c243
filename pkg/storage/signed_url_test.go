package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret")
	token, err := signer.Generate("detailed_enquiries/enq-1/passport_document_1_p.pdf")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	key, err := signer.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "detailed_enquiries/enq-1/passport_document_1_p.pdf", key)
}

func TestSignedURLSignerTokensDoNotExpire(t *testing.T) {
	signer := NewSignedURLSigner("secret")
	token, err := signer.Generate("a/b.pdf")
	require.NoError(t, err)

	// a signer built later from the same secret, as after a restart
	key, err := NewSignedURLSigner("secret").Parse(token)
	require.NoError(t, err)
	require.Equal(t, "a/b.pdf", key)

	again, err := signer.Generate("a/b.pdf")
	require.NoError(t, err)
	require.Equal(t, token, again)
}

func TestSignedURLSignerRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret")
	token, err := signer.Generate("a/b.pdf")
	require.NoError(t, err)

	other, err := signer.Generate("a/c.pdf")
	require.NoError(t, err)
	swapped := strings.Split(other, ".")[0] + "." + strings.Split(token, ".")[1]
	_, err = signer.Parse(swapped)
	require.Error(t, err)

	_, err = NewSignedURLSigner("other").Parse(token)
	require.Error(t, err)

	_, err = signer.Parse("1700000000." + token)
	require.Error(t, err)

	_, err = NewSignedURLSigner("").Generate("a/b.pdf")
	require.Error(t, err)
	_, err = NewSignedURLSigner("").Parse(token)
	require.Error(t, err)
}

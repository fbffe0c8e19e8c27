package action

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForm_EncodeParse(t *testing.T) {
	f := NewForm(UpdateProject, FieldName, "Renamed", FieldDescription, "a & b")
	enc := f.Encode()
	assert.Equal(t, "_action=updateProject&description=a+%26+b&name=Renamed", enc)

	got, err := ParseForm(enc)
	require.NoError(t, err)
	assert.Equal(t, UpdateProject, got.Action)
	assert.Equal(t, "Renamed", got.Get(FieldName))
	assert.Equal(t, "a & b", got.Get(FieldDescription))
	assert.Empty(t, got.Get(FieldAction), "discriminator is lifted out of Values")
}

func TestForm_ActionFieldCannotBeSpoofed(t *testing.T) {
	f := NewForm(DeleteAPIKey, FieldAction, string(DeleteProject), FieldAPIKeyID, "key_1")
	got, err := ParseForm(f.Encode())
	require.NoError(t, err)
	assert.Equal(t, DeleteAPIKey, got.Action)
}

func TestParseForm_UnknownAction(t *testing.T) {
	for _, body := range []string{"", "_action=dropTables", "apiKeyId=1"} {
		_, err := ParseForm(body)
		assert.True(t, errors.Is(err, ErrUnknownAction), "body %q", body)
	}
}

func TestForm_ZeroValues(t *testing.T) {
	var f Form
	assert.Empty(t, f.Get(FieldName))
	assert.Equal(t, "_action=", f.Encode())
}

func TestForm_StringOmitsValues(t *testing.T) {
	f := NewForm(DeleteAPIKey, FieldAPIKeyID, "kc_live_secret")
	assert.Equal(t, "deleteAPIKey[apiKeyId]", f.String())
}

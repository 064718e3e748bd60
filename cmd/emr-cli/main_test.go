package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialsRoundTrip(t *testing.T) {
	snapshot := filepath.Join(t.TempDir(), "emr-patients.json")
	path := credPath(snapshot)

	require.NoError(t, saveCredentials(path, &credentials{Token: "tok123", Name: "Dr. Chris Diana Pius"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := loadCredentials(path)
	require.NoError(t, err)
	assert.Equal(t, "tok123", got.Token)
	assert.Equal(t, "Dr. Chris Diana Pius", got.Name)
}

func TestLoadCredentialsRejectsEmptyToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emr-credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"token":"","name":"x"}`), 0o600))

	_, err := loadCredentials(path)
	assert.Error(t, err)
}

func TestNewAppRestoresSignedInUser(t *testing.T) {
	snapshot := filepath.Join(t.TempDir(), "emr-patients.json")
	require.NoError(t, saveCredentials(credPath(snapshot), &credentials{Token: "tok123", Name: "Dr. Chris Diana Pius"}))

	a := newApp("http://localhost:5000", snapshot)

	assert.True(t, a.client.Authenticated())
	assert.Equal(t, "Dr. Chris Diana Pius", a.user)
}

func TestNewAppWithoutCredentialsIsAnonymous(t *testing.T) {
	snapshot := filepath.Join(t.TempDir(), "emr-patients.json")

	a := newApp("http://localhost:5000", snapshot)

	assert.False(t, a.client.Authenticated())
	assert.Empty(t, a.user)
}

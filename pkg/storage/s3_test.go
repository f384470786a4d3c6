package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	key := objectKey("/cars/", "image/webp")
	assert.True(t, strings.HasPrefix(key, "cars/"), key)
	assert.True(t, strings.HasSuffix(key, ".webp"), key)

	assert.True(t, strings.HasPrefix(objectKey("", "image/jpeg"), "uploads/"))
	assert.True(t, strings.HasSuffix(objectKey("x", "application/pdf"), ".bin"))
}

func TestKeyFromURL(t *testing.T) {
	key, err := keyFromURL("https://cdn.example.com", "https://cdn.example.com/cars/abc.webp")
	require.NoError(t, err)
	assert.Equal(t, "cars/abc.webp", key)

	_, err = keyFromURL("https://cdn.example.com", "https://evil.example.com/cars/abc.webp")
	assert.Error(t, err)

	_, err = keyFromURL("https://cdn.example.com", "https://cdn.example.com.evil/cars/abc.webp")
	assert.Error(t, err)

	_, err = keyFromURL("https://cdn.example.com", "https://cdn.example.com/")
	assert.Error(t, err)
}

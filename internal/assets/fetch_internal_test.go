package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"certforge/internal/config"
)

func TestAllowed(t *testing.T) {
	f := NewFetcher(config.Storage{AllowedDomain: "Example.co.uk"})
	assert.True(t, f.allowed("cdn.example.co.uk"))
	assert.True(t, f.allowed("example.co.uk"))
	assert.False(t, f.allowed("example.com"))
	assert.False(t, f.allowed("co.uk"))
	assert.False(t, f.allowed("127.0.0.1"))

	ip := NewFetcher(config.Storage{AllowedDomain: "127.0.0.1"})
	assert.True(t, ip.allowed("127.0.0.1"))

	open := NewFetcher(config.Storage{})
	assert.True(t, open.allowed("anything.example"))
}

func TestDecodeDataURL_Percent(t *testing.T) {
	b, err := decodeDataURL("data:text/plain,hello%20world")
	assert.NoError(t, err)
	assert.Equal(t, "hello world", string(b))
}

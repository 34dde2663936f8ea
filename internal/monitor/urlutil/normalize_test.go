package urlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStripsTrackingParams(t *testing.T) {
	t.Parallel()

	var n Normalizer
	a := n.Normalize("https://news.example.com/story?utm_source=tw&utm_campaign=x")
	b := n.Normalize("https://news.example.com/story?fbclid=abc123")
	c := n.Normalize("https://news.example.com/story")

	assert.Equal(t, c, a)
	assert.Equal(t, c, b)
}

func TestNormalizeHostAndSchemeCasing(t *testing.T) {
	t.Parallel()

	var n Normalizer
	assert.Equal(t,
		n.Normalize("https://News.Example.COM/story"),
		n.Normalize("HTTPS://news.example.com/story"),
	)
}

func TestNormalizeTrailingSlashAndFragment(t *testing.T) {
	t.Parallel()

	var n Normalizer
	assert.Equal(t,
		n.Normalize("https://example.com/story/"),
		n.Normalize("https://example.com/story#section-2"),
	)
}

func TestNormalizeDefaultPorts(t *testing.T) {
	t.Parallel()

	var n Normalizer
	assert.Equal(t,
		n.Normalize("https://example.com:443/story"),
		n.Normalize("https://example.com/story"),
	)
	assert.Equal(t,
		n.Normalize("http://example.com:80/story"),
		n.Normalize("http://example.com/story"),
	)
}

func TestNormalizeSortsRemainingParams(t *testing.T) {
	t.Parallel()

	var n Normalizer
	assert.Equal(t,
		n.Normalize("https://example.com/story?b=2&a=1"),
		n.Normalize("https://example.com/story?a=1&b=2"),
	)
}

func TestNormalizeKeepsMeaningfulParams(t *testing.T) {
	t.Parallel()

	var n Normalizer
	assert.NotEqual(t,
		n.Normalize("https://example.com/story?id=1"),
		n.Normalize("https://example.com/story?id=2"),
	)
}

func TestNormalizeExtraParams(t *testing.T) {
	t.Parallel()

	n := Normalizer{ExtraParams: []string{"ref"}}
	assert.Equal(t,
		n.Normalize("https://example.com/story?ref=homepage"),
		n.Normalize("https://example.com/story"),
	)
}

func TestNormalizeUnparseableInput(t *testing.T) {
	t.Parallel()

	var n Normalizer
	assert.Equal(t, "not a url", n.Normalize("  not a url "))
}

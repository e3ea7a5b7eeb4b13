package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubjectHasher(t *testing.T) {
	h := NewSubjectHasher([]byte("secret"))

	a := h.Hash("107012345")
	assert.Len(t, a, 64)
	assert.Equal(t, a, h.Hash("107012345"))
	assert.NotEqual(t, a, h.Hash("107012346"))
	assert.NotContains(t, a, "107012345")

	other := NewSubjectHasher([]byte("other"))
	assert.NotEqual(t, a, other.Hash("107012345"))
}

func TestSubjectHasher_LongSecretTruncated(t *testing.T) {
	h := NewSubjectHasher([]byte(strings.Repeat("k", 100)))
	assert.Len(t, h.Hash("x"), 64)
}

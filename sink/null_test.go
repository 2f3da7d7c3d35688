package sink

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvashisth/alog/record"
)

func TestNullDiscardsAndReleases(t *testing.T) {
	n := NewNull()
	rec := record.New(record.Info, time.Now(), 1, []byte("hello"))

	require.NoError(t, n.Write(rec))
	assert.Nil(t, rec.Payload, "Write must release the record back to its pool")

	assert.NoError(t, n.Flush())
	assert.NoError(t, n.Close())
}

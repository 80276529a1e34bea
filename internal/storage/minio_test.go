package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinio_Key(t *testing.T) {
	assert.Equal(t, "videos.csv", (&Minio{}).key("videos.csv"))
	assert.Equal(t, "exports/videos.csv", (&Minio{prefix: "exports"}).key("videos.csv"))
}

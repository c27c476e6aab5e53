package cache

import (
	"path"
	"testing"

	"github.com/stretchr/testify/assert"

	"lettersprint/internal/model"
)

// The room listing scans KEYS room:*; every other cache must stay out of
// that namespace or the scan reads values of the wrong Redis type.
func TestRoomScanMatchesOnlyRoomKeys(t *testing.T) {
	rc := &roomCache{}
	gc := &gameCache{}
	vc := &voteCache{}
	vd := &verdictCache{}

	foreign := []string{
		gc.key("AB12CD"),
		vc.key("req-1"),
		vc.roomSetKey("AB12CD"),
		vd.key(model.ValidationDictionary, "animals", "D", "dog"),
	}
	for _, key := range foreign {
		match, err := path.Match("room:*", key)
		assert.NoError(t, err)
		assert.False(t, match, "key %q collides with the room scan", key)
	}

	match, err := path.Match("room:*", rc.key("AB12CD"))
	assert.NoError(t, err)
	assert.True(t, match)
}

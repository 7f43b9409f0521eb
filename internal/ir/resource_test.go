package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		ref      string
		wantAddr string
		wantAttr string
		wantOK   bool
	}{
		{"ptr://experience/singleton/assetId", "experience/singleton", "assetId", true},
		{"ptr://experienceThumbnail/assets/a.png/assetId", "experienceThumbnail/assets/a.png", "assetId", true},
		{"ptr://experience/assetId", "", "", false},
		{"ptr://experience/singleton/", "", "", false},
		{"experience/singleton/assetId", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			addr, attr, ok := ParseRef(tt.ref)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantAddr, addr)
			assert.Equal(t, tt.wantAttr, attr)
		})
	}
}

func TestRefRoundTrip(t *testing.T) {
	ref := Ref("place", "start", "assetId")
	assert.Equal(t, "ptr://place/start/assetId", ref)

	addr, attr, ok := ParseRef(ref)
	assert.True(t, ok)
	assert.Equal(t, Address("place", "start"), addr)
	assert.Equal(t, "assetId", attr)

	typ, name, ok := SplitAddress("experienceThumbnail/assets/a.png")
	assert.True(t, ok)
	assert.Equal(t, "experienceThumbnail", typ)
	assert.Equal(t, "assets/a.png", name)
}

func TestStateFindRemove(t *testing.T) {
	s := &State{Resources: []*ResourceState{
		{Type: "place", Name: "start"},
		{Type: "place", Name: "arena"},
	}}

	assert.Equal(t, "arena", s.Find("place/arena").Name)
	assert.Nil(t, s.Find("place/lobby"))
	assert.True(t, s.Remove("place/start"))
	assert.False(t, s.Remove("place/start"))
	assert.Len(t, s.Resources, 1)
}

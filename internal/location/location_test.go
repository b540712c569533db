package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalogDefaultURLs(t *testing.T) {
	c := NewCatalog("")

	forum, ok := c.Lookup("forum")
	require.True(t, ok)
	assert.Equal(t, "Forum", forum.Name)
	assert.Equal(t, DefaultBaseURL+"forum/", forum.URL)

	atrium, ok := c.Lookup("atrium")
	require.True(t, ok)
	assert.Equal(t, DefaultBaseURL+"mensa-atrium-lippstadt/", atrium.URL)
	assert.Len(t, c.All(), 8)
}

func TestNewCatalogCustomBase(t *testing.T) {
	c := NewCatalog("http://127.0.0.1:8080/menus")

	zm2, ok := c.Lookup("zm2")
	require.True(t, ok)
	assert.Equal(t, "http://127.0.0.1:8080/menus/mensa-zm2/", zm2.URL)
}

func TestLookupNormalizesSeparators(t *testing.T) {
	c := NewCatalog("")

	for _, id := range []string{"bona-vista", "BonaVista", "bona_vista", " Bona Vista "} {
		t.Run(id, func(t *testing.T) {
			loc, ok := c.Lookup(id)
			require.True(t, ok)
			assert.Equal(t, "bona-vista", loc.ID)
		})
	}

	_, ok := c.Lookup("mensa-am-mond")
	assert.False(t, ok)
}

func TestResolve(t *testing.T) {
	c := NewCatalog("")

	tests := []struct {
		name    string
		ids     []string
		want    []string
		wantErr string
	}{
		{name: "single", ids: []string{"forum"}, want: []string{"forum"}},
		{name: "keeps first order", ids: []string{"academica", "forum"}, want: []string{"academica", "forum"}},
		{name: "comma separated", ids: []string{"forum,academica"}, want: []string{"forum", "academica"}},
		{name: "duplicates collapse", ids: []string{"forum", "Forum", "forum"}, want: []string{"forum"}},
		{name: "unknown", ids: []string{"forum", "nowhere"}, wantErr: "unknown location(s) nowhere"},
		{name: "empty", ids: []string{" ", ""}, wantErr: "no location selected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			locs, err := c.Resolve(tt.ids)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			got := make([]string, len(locs))
			for i, l := range locs {
				got[i] = l.ID
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAllReturnsCopy(t *testing.T) {
	c := NewCatalog("")
	all := c.All()
	all[0].Name = "changed"

	forum, _ := c.Lookup("forum")
	assert.Equal(t, "Forum", forum.Name)
	assert.Equal(t, 0, forum.Order)
}

package selection_test

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/photosweep/pkg/photosweep/analysis"
	"github.com/jamesainslie/photosweep/pkg/photosweep/catalog"
	"github.com/jamesainslie/photosweep/pkg/photosweep/media"
	"github.com/jamesainslie/photosweep/pkg/photosweep/selection"
	"github.com/jamesainslie/photosweep/pkg/photosweep/types"
)

var shotAt = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

func photo(id string, size int64) media.Record {
	return media.NewRecord(media.Attributes{
		ID: id, Size: size, CreatedAt: shotAt, Kind: media.KindPhoto,
		PixelWidth: 1080, PixelHeight: 1920,
	})
}

func snapshotOf(records ...media.Record) *catalog.Snapshot {
	c := catalog.New()
	c.Load(records)
	return c.Snapshot()
}

func TestZeroValueUsable(t *testing.T) {
	var s selection.Set
	assert.True(t, s.IsEmpty())
	assert.False(t, s.Contains("a"))
	s.Deselect("a")
	assert.True(t, s.Toggle("a"))
	assert.Equal(t, 1, s.Count())
}

func TestToggle(t *testing.T) {
	s := selection.New()

	assert.True(t, s.Toggle("a"))
	assert.True(t, s.Contains("a"))
	assert.False(t, s.Toggle("a"))
	assert.False(t, s.Contains("a"))
	assert.Equal(t, 0, s.Count())
}

func TestSelectAllAndClear(t *testing.T) {
	s := selection.New("z")
	s.SelectAll([]media.Record{photo("a", 10), photo("b", 20), photo("a", 10)})

	assert.Equal(t, []string{"a", "b", "z"}, s.IDs())
	assert.Equal(t, int64(30), s.CachedSize())

	s.Clear()
	assert.True(t, s.IsEmpty())
	assert.Zero(t, s.CachedSize())
	assert.Empty(t, s.IDs())
}

func TestSelectAllButFirstPerGroup_Scenario(t *testing.T) {
	tests := []struct {
		name     string
		records  []media.Record
		selected string
	}{
		{
			name:     "larger item second",
			records:  []media.Record{photo("two", 2*types.MiB), photo("three", 3*types.MiB)},
			selected: "three",
		},
		{
			name:     "larger item first",
			records:  []media.Record{photo("three", 3*types.MiB), photo("two", 2*types.MiB)},
			selected: "two",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := snapshotOf(tt.records...)
			groups := analysis.FindDuplicates(snap)
			require.Len(t, groups, 1)

			s := selection.New()
			s.SelectAllButFirstPerGroup(groups)
			assert.Equal(t, []string{tt.selected}, s.IDs())
		})
	}
}

func TestSelectAllButFirstPerGroup_SkipsShortGroups(t *testing.T) {
	s := selection.New()
	s.SelectAllButFirstPerGroup([]analysis.Group{
		{photo("only", 1)},
		{photo("keep", 1), photo("d1", 2), photo("d2", 3)},
		nil,
	})
	assert.Equal(t, []string{"d1", "d2"}, s.IDs())
}

func TestTotalSize_AgainstSnapshot(t *testing.T) {
	c := catalog.New()
	c.Load([]media.Record{photo("a", 100), photo("b", 200), photo("c", 400)})

	s := selection.New("a", "c", "ghost")
	assert.Equal(t, int64(500), s.TotalSize(c.Snapshot()))
	assert.Equal(t, 3, s.Count(), "absent IDs stay selected")

	c.RemoveByIDs([]string{"c"})
	assert.Equal(t, int64(100), s.TotalSize(c.Snapshot()))
	assert.Zero(t, s.TotalSize(nil))

	assert.Equal(t, []string{"a"}, idsOf(s.Resolved(c.Snapshot())))
}

func TestTotalSize_MatchesSelectedSumUnderToggles(t *testing.T) {
	var records []media.Record
	for i := range 25 {
		records = append(records, photo(fmt.Sprintf("r%02d", i), int64(i*i+1)))
	}
	snap := snapshotOf(records...)

	rng := rand.New(rand.NewSource(42))
	s := selection.New()
	want := make(map[string]bool)

	for range 500 {
		var id string
		if rng.Intn(5) == 0 {
			id = fmt.Sprintf("missing-%d", rng.Intn(3))
		} else {
			id = records[rng.Intn(len(records))].ID
		}
		want[id] = s.Toggle(id)

		var expected int64
		for sel, on := range want {
			if !on {
				continue
			}
			if r, ok := snap.Get(sel); ok {
				expected += r.Size
			}
		}
		require.Equal(t, expected, s.TotalSize(snap))
	}
}

func idsOf(records []media.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

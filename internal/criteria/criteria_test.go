package criteria

import (
	"bytes"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/haatos/freestyle-multibranch/internal/scm"
	"github.com/stretchr/testify/assert"
)

type countingProbe struct {
	scm.Probe
	stats int
}

func (p *countingProbe) Stat(name string) (scm.Stat, error) {
	p.stats++
	return p.Probe.Stat(name)
}

type failingProbe struct{}

func (failingProbe) Head() scm.Head { return scm.Head{Name: "broken"} }

func (failingProbe) Stat(string) (scm.Stat, error) {
	return scm.Stat{}, errors.New("connection reset")
}

func newProbe(files ...string) *countingProbe {
	fsys := fstest.MapFS{}
	for _, f := range files {
		fsys[f] = &fstest.MapFile{}
	}
	return &countingProbe{Probe: scm.NewFSProbe(scm.Head{Name: "master", Kind: scm.HeadBranch}, fsys)}
}

func TestCriteria_AlwaysInclude(t *testing.T) {
	t.Run("success - includes without probing", func(t *testing.T) {
		// arrange
		probe := newProbe()
		var log bytes.Buffer

		// act
		ok, err := AlwaysInclude{}.IsHead(probe, &log)

		// assert
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 0, probe.stats)
		assert.Empty(t, log.String())
	})
}

func TestCriteria_MarkerFile(t *testing.T) {
	t.Run("success - head with marker is included", func(t *testing.T) {
		// arrange
		probe := newProbe("marker.txt")
		var log bytes.Buffer

		// act
		ok, err := NewMarkerFile("marker.txt").IsHead(probe, &log)

		// assert
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "Checking for marker.txt\n", log.String())
	})
	t.Run("success - head without marker is excluded", func(t *testing.T) {
		// arrange
		probe := newProbe("README.md")

		// act
		ok, err := NewMarkerFile("marker.txt").IsHead(probe, nil)

		// assert
		assert.NoError(t, err)
		assert.False(t, ok)
	})
	t.Run("success - empty file name degrades to include all", func(t *testing.T) {
		// arrange
		probe := newProbe()

		// act
		ok, err := NewMarkerFile("").IsHead(probe, nil)

		// assert
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 0, probe.stats)
	})
	t.Run("success - repeated evaluation is stable", func(t *testing.T) {
		// arrange
		probe := newProbe("marker.txt")
		c := NewMarkerFile("marker.txt")

		// act
		first, err1 := c.IsHead(probe, nil)
		second, err2 := c.IsHead(probe, nil)

		// assert
		assert.NoError(t, err1)
		assert.NoError(t, err2)
		assert.Equal(t, first, second)
	})
	t.Run("failure - probe errors propagate", func(t *testing.T) {
		// act
		ok, err := NewMarkerFile("marker.txt").IsHead(failingProbe{}, nil)

		// assert
		assert.Error(t, err)
		assert.False(t, ok)
	})
}

func TestCriteria_Equality(t *testing.T) {
	t.Run("success - equal file names are interchangeable", func(t *testing.T) {
		// arrange
		a := Criteria(NewMarkerFile("marker.txt"))
		b := Criteria(NewMarkerFile("marker.txt"))
		cache := map[Criteria]int{a: 1}

		// assert
		assert.True(t, Equal(a, b))
		assert.Equal(t, 1, cache[b])
	})
	t.Run("success - different file names differ", func(t *testing.T) {
		assert.False(t, Equal(NewMarkerFile("a.txt"), NewMarkerFile("b.txt")))
	})
	t.Run("success - different variants differ", func(t *testing.T) {
		assert.False(t, Equal(AlwaysInclude{}, NewMarkerFile("")))
	})
	t.Run("success - nil only equals nil", func(t *testing.T) {
		assert.True(t, Equal(nil, nil))
		assert.False(t, Equal(nil, AlwaysInclude{}))
	})
}

func TestCriteria_IsAcceptAll(t *testing.T) {
	assert.True(t, IsAcceptAll(nil))
	assert.True(t, IsAcceptAll(AlwaysInclude{}))
	assert.True(t, IsAcceptAll(NewMarkerFile("")))
	assert.False(t, IsAcceptAll(NewMarkerFile("marker.txt")))
}

func TestCriteria_Describe(t *testing.T) {
	assert.Equal(t, "all heads", Describe(nil))
	assert.Equal(t, "heads containing marker.txt", Describe(NewMarkerFile("marker.txt")))
}

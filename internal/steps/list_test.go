package steps

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingOwner struct {
	saves int
	err   error
}

func (o *countingOwner) Save(context.Context) error {
	o.saves++
	return o.err
}

func TestList_ReplaceBy(t *testing.T) {
	t.Run("success - content replaced and owner notified once", func(t *testing.T) {
		// arrange
		owner := new(countingOwner)
		l := NewBuilderList(Default, owner)
		items := []Step{
			&ShellBuilder{Script: "make"},
			&ShellBuilder{Script: "make test"},
		}

		// act
		err := l.ReplaceBy(context.Background(), items)

		// assert
		assert.NoError(t, err)
		assert.Equal(t, 1, owner.saves)
		assert.Equal(t, items, l.Items())
	})
	t.Run("success - keyed list keeps first position and last value", func(t *testing.T) {
		// arrange
		l := NewPublisherList(Default, nil)
		items := []Step{
			&ArtifactPublisher{Pattern: "dist/**"},
			&NotifyPublisher{Recipients: []string{"dev@example.com"}},
			&ArtifactPublisher{Pattern: "build/**"},
		}

		// act
		err := l.ReplaceBy(context.Background(), items)

		// assert
		assert.NoError(t, err)
		got := l.Items()
		assert.Len(t, got, 2)
		assert.Equal(t, &ArtifactPublisher{Pattern: "build/**"}, got[0])
		assert.Equal(t, KindNotify, got[1].Kind())
	})
	t.Run("failure - wrong capability leaves list untouched", func(t *testing.T) {
		// arrange
		owner := new(countingOwner)
		l := NewWrapperList(Default, owner)
		assert.NoError(t, l.ReplaceBy(context.Background(), []Step{&EnvWrapper{}}))

		// act
		err := l.ReplaceBy(context.Background(), []Step{&ShellBuilder{Script: "make"}})

		// assert
		var capErr CapabilityError
		assert.True(t, errors.As(err, &capErr))
		assert.Equal(t, KindShell, capErr.Kind)
		assert.Equal(t, 1, owner.saves)
		assert.Equal(t, 1, l.Len())
	})
	t.Run("failure - typed nil step leaves list untouched", func(t *testing.T) {
		// arrange
		owner := new(countingOwner)
		l := NewBuilderList(Default, owner)
		assert.NoError(t, l.ReplaceBy(context.Background(), []Step{&ShellBuilder{Script: "make"}}))
		var missing *ShellBuilder

		// act
		var err error
		assert.NotPanics(t, func() {
			err = l.ReplaceBy(context.Background(), []Step{&ShellBuilder{Script: "make test"}, missing})
		})

		// assert
		var capErr CapabilityError
		assert.True(t, errors.As(err, &capErr))
		assert.Equal(t, "<nil>", capErr.Kind)
		assert.Equal(t, 1, owner.saves)
		assert.Equal(t, []Step{&ShellBuilder{Script: "make"}}, l.Items())
	})
	t.Run("failure - owner save error is returned", func(t *testing.T) {
		// arrange
		owner := &countingOwner{err: errors.New("disk full")}
		l := NewBuilderList(Default, owner)

		// act
		err := l.ReplaceBy(context.Background(), []Step{&ShellBuilder{Script: "make"}})

		// assert
		assert.EqualError(t, err, "disk full")
		assert.Equal(t, 1, l.Len())
	})
}

func TestList_Get(t *testing.T) {
	l := NewWrapperList(Default, nil)
	assert.NoError(t, l.ReplaceBy(context.Background(), []Step{&TimeoutWrapper{Minutes: 10}}))

	s, ok := l.Get(KindTimeout)
	assert.True(t, ok)
	assert.Equal(t, &TimeoutWrapper{Minutes: 10}, s)

	_, ok = l.Get(KindEnv)
	assert.False(t, ok)
}

func TestList_Detach(t *testing.T) {
	t.Run("success - replace while detached does not notify", func(t *testing.T) {
		// arrange
		owner := new(countingOwner)
		wrappers := NewWrapperList(Default, owner)
		builders := NewBuilderList(Default, owner)

		// act
		restore := Detach(wrappers, builders)
		assert.True(t, wrappers.IsDetached())
		assert.NoError(t, wrappers.ReplaceBy(context.Background(), []Step{&EnvWrapper{}}))
		assert.NoError(t, builders.ReplaceBy(context.Background(), []Step{&ShellBuilder{}}))
		restore()

		// assert
		assert.Equal(t, 0, owner.saves)
		assert.True(t, wrappers.Owner() == Saveable(owner))
		assert.True(t, builders.Owner() == Saveable(owner))
	})
	t.Run("success - owners restored after panic", func(t *testing.T) {
		// arrange
		owner := new(countingOwner)
		l := NewBuilderList(Default, owner)

		// act
		func() {
			defer func() { _ = recover() }()
			restore := Detach(l)
			defer restore()
			panic("replace blew up")
		}()

		// assert
		assert.False(t, l.IsDetached())
		assert.True(t, l.Owner() == Saveable(owner))
	})
}

func TestRegistry_Descriptors(t *testing.T) {
	wrappers := Default.Descriptors(CapabilityWrapper)
	assert.Len(t, wrappers, 2)
	assert.Equal(t, KindEnv, wrappers[0].Kind)
	assert.Equal(t, KindTimeout, wrappers[1].Kind)

	builders := Default.Descriptors(CapabilityBuilder)
	assert.Len(t, builders, 1)
	assert.Equal(t, KindShell, builders[0].Kind)
}

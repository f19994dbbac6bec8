package store

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/haatos/freestyle-multibranch/internal"
)

var ErrKindsNotRegistered = errors.New("record kinds are not registered")

type UnknownKindError struct {
	Kind     string
	Expected string
}

func (e UnknownKindError) Error() string {
	return fmt.Sprintf("record kind %q is not %q", e.Kind, e.Expected)
}

var (
	kindsOnce       sync.Once
	kindsRegistered atomic.Bool
	projectKind     string
	branchJobKind   string
)

// RegisterKinds fixes the type tags written to and expected from project and
// branch job rows. It must run once at startup before any record is read.
func RegisterKinds() {
	kindsOnce.Do(func() {
		projectKind = internal.ProjectKind
		branchJobKind = internal.BranchJobKind
		kindsRegistered.Store(true)
	})
}

func ProjectKind() (string, error) {
	if !kindsRegistered.Load() {
		return "", ErrKindsNotRegistered
	}
	return projectKind, nil
}

func BranchJobKind() (string, error) {
	if !kindsRegistered.Load() {
		return "", ErrKindsNotRegistered
	}
	return branchJobKind, nil
}

func checkKind(got string, expected func() (string, error)) error {
	want, err := expected()
	if err != nil {
		return err
	}
	if got != want {
		return UnknownKindError{Kind: got, Expected: want}
	}
	return nil
}

// Package criteria decides which discovered heads get a branch job.
//
// Criteria are comparable values. Two criteria that mean the same thing
// compare equal with == and hash to the same map key, which lets callers use
// them to detect configuration changes.
package criteria

import (
	"fmt"
	"io"

	"github.com/haatos/freestyle-multibranch/internal/scm"
)

const (
	TagAll    = "all"
	TagMarker = "marker"
)

// Criteria must not mutate anything reachable through the probe and must
// return the same answer for the same probe state.
type Criteria interface {
	IsHead(probe scm.Probe, log io.Writer) (bool, error)
	Tag() string
}

// AlwaysInclude accepts every head without touching the probe.
type AlwaysInclude struct{}

func (AlwaysInclude) IsHead(scm.Probe, io.Writer) (bool, error) {
	return true, nil
}

func (AlwaysInclude) Tag() string {
	return TagAll
}

// MarkerFile accepts heads whose tree contains FileName. An empty FileName
// accepts every head.
type MarkerFile struct {
	FileName string
}

func NewMarkerFile(fileName string) MarkerFile {
	return MarkerFile{FileName: fileName}
}

func (m MarkerFile) IsHead(probe scm.Probe, log io.Writer) (bool, error) {
	if m.FileName == "" {
		return true, nil
	}
	if log != nil {
		fmt.Fprintf(log, "Checking for %s\n", m.FileName)
	}
	st, err := probe.Stat(m.FileName)
	if err != nil {
		return false, err
	}
	return st.Exists, nil
}

func (MarkerFile) Tag() string {
	return TagMarker
}

// Equal reports whether a and b are interchangeable. Nil only equals nil.
func Equal(a, b Criteria) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a == b
}

// IsAcceptAll reports whether c lets every head through, either because it
// is nil or AlwaysInclude or a MarkerFile without a file name.
func IsAcceptAll(c Criteria) bool {
	switch v := c.(type) {
	case nil:
		return true
	case AlwaysInclude:
		return true
	case MarkerFile:
		return v.FileName == ""
	default:
		return false
	}
}

// Describe renders c for listings and logs.
func Describe(c Criteria) string {
	switch v := c.(type) {
	case nil:
		return "all heads"
	case AlwaysInclude:
		return "all heads"
	case MarkerFile:
		if v.FileName == "" {
			return "all heads"
		}
		return fmt.Sprintf("heads containing %s", v.FileName)
	default:
		return c.Tag()
	}
}

// Package scm models the heads an orchestrator discovers in a source
// repository and the read-only probes used to inspect them.
package scm

import (
	"slices"

	"github.com/haatos/freestyle-multibranch/internal/util"
)

type HeadKind string

const (
	HeadBranch HeadKind = "branch"
	HeadTag    HeadKind = "tag"
	HeadChange HeadKind = "change"
)

// Head is a named revision line as presented by the SCM connector.
type Head struct {
	Name string   `json:"name" yaml:"name"`
	Kind HeadKind `json:"kind" yaml:"kind"`
}

// Binding is the resolved SCM configuration used to check out a head. The
// zero value is the null SCM.
type Binding struct {
	Kind          string `json:"kind"           yaml:"kind"`
	Remote        string `json:"remote"         yaml:"remote"`
	Ref           string `json:"ref"            yaml:"ref"`
	CredentialsID string `json:"credentials_id" yaml:"credentials_id"`
}

func (b Binding) IsNull() bool {
	return b.Kind == ""
}

type Property struct {
	Name  string `json:"name"  yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Branch is one head plus its SCM binding and properties. Branches are
// values: compare them with Equal, never by pointer.
type Branch struct {
	Name       string     `json:"name"`
	Head       Head       `json:"head"`
	SCM        Binding    `json:"scm"`
	Properties []Property `json:"properties"`
	// Dead marks a branch whose head is gone and whose job awaits deletion.
	Dead bool `json:"dead"`
}

func NewBranch(name string, head Head, binding Binding, properties ...Property) Branch {
	return Branch{
		Name:       name,
		Head:       head,
		SCM:        binding,
		Properties: slices.Clone(properties),
	}
}

// EncodedName is the filesystem and URL safe form of the branch name.
func (b Branch) EncodedName() string {
	return util.SafeName(b.Name)
}

func (b Branch) IsBuildable() bool {
	return !b.Dead && !b.SCM.IsNull()
}

func (b Branch) Equal(o Branch) bool {
	return b.Name == o.Name &&
		b.Head == o.Head &&
		b.SCM == o.SCM &&
		b.Dead == o.Dead &&
		slices.Equal(b.Properties, o.Properties)
}

// Property returns the value of the first property called name.
func (b Branch) Property(name string) (string, bool) {
	for _, p := range b.Properties {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

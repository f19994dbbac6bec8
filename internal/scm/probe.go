package scm

import (
	"errors"
	"io/fs"
	"path"
)

// Stat describes one path in a probed head.
type Stat struct {
	Exists bool
	IsDir  bool
}

// Probe is a read-only handle on one head's repository tree at its latest
// revision.
type Probe interface {
	Head() Head
	Stat(name string) (Stat, error)
}

// FSProbe probes a checkout exposed as an fs.FS, typically os.DirFS.
type FSProbe struct {
	head Head
	fsys fs.FS
}

func NewFSProbe(head Head, fsys fs.FS) *FSProbe {
	return &FSProbe{head: head, fsys: fsys}
}

func (p *FSProbe) Head() Head {
	return p.head
}

func (p *FSProbe) Stat(name string) (Stat, error) {
	name = path.Clean(name)
	if !fs.ValidPath(name) {
		return Stat{}, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrInvalid}
	}
	info, err := fs.Stat(p.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Stat{}, nil
		}
		return Stat{}, err
	}
	return Stat{Exists: true, IsDir: info.IsDir()}, nil
}

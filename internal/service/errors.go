package service

import (
	"errors"
	"fmt"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrNoProbe         = errors.New("criteria needs a probe but the head has none")
	ErrBuildNotRunning = errors.New("build is not running")
)

type ErrProjectExists struct {
	Name string
}

func (e ErrProjectExists) Error() string {
	return fmt.Sprintf("project %s already exists", e.Name)
}

func NewErrProjectExists(name string) *ErrProjectExists {
	return &ErrProjectExists{Name: name}
}

package criteria

import (
	"fmt"
	"path"
	"slices"
	"strings"
)

type ConfigurationError struct {
	Tag     string
	Message string
}

func (e ConfigurationError) Error() string {
	if e.Tag == "" {
		return "criteria configuration: " + e.Message
	}
	return fmt.Sprintf("criteria configuration %q: %s", e.Tag, e.Message)
}

func NewConfigurationError(tag, format string, a ...any) *ConfigurationError {
	return &ConfigurationError{Tag: tag, Message: fmt.Sprintf(format, a...)}
}

// Binder builds a Criteria from submitted form values.
type Binder func(form map[string]string) (Criteria, error)

var binders = map[string]Binder{
	TagAll: func(map[string]string) (Criteria, error) {
		return AlwaysInclude{}, nil
	},
	TagMarker: bindMarker,
}

func bindMarker(form map[string]string) (Criteria, error) {
	fileName := strings.TrimSpace(form["file_name"])
	if fileName == "" {
		return MarkerFile{}, nil
	}
	clean := path.Clean(fileName)
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return nil, NewConfigurationError(TagMarker, "file_name %q must be relative to the repository root", fileName)
	}
	return MarkerFile{FileName: clean}, nil
}

// Bind resolves tag in the criteria registry and binds form into a value.
func Bind(tag string, form map[string]string) (Criteria, error) {
	binder, ok := binders[tag]
	if !ok {
		return nil, NewConfigurationError(tag, "unknown criteria type")
	}
	return binder(form)
}

// Form is the inverse of Bind, used to persist a criteria value.
func Form(c Criteria) (string, map[string]string) {
	switch v := c.(type) {
	case MarkerFile:
		return TagMarker, map[string]string{"file_name": v.FileName}
	case nil:
		return TagAll, map[string]string{}
	default:
		return c.Tag(), map[string]string{}
	}
}

// Tags lists the registered criteria types in a stable order.
func Tags() []string {
	tags := make([]string, 0, len(binders))
	for tag := range binders {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

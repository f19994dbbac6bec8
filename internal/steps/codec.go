package steps

import (
	"fmt"

	"github.com/goccy/go-yaml"
)

// Record is the persisted and wire form of a step.
type Record struct {
	Kind string `json:"kind" yaml:"kind"`
	Spec any    `json:"spec" yaml:"spec"`
}

type rawRecord struct {
	Kind string         `yaml:"kind"`
	Spec map[string]any `yaml:"spec"`
}

type UnknownKindError struct {
	Kind string
}

func (e UnknownKindError) Error() string {
	return fmt.Sprintf("unknown step kind %q", e.Kind)
}

func Records(items []Step) []Record {
	records := make([]Record, len(items))
	for i, s := range items {
		records[i] = Record{Kind: s.Kind(), Spec: s}
	}
	return records
}

func (r *Registry) Encode(items []Step) ([]byte, error) {
	return yaml.Marshal(Records(items))
}

func (r *Registry) Decode(data []byte) ([]Step, error) {
	var raws []rawRecord
	if err := yaml.Unmarshal(data, &raws); err != nil {
		return nil, err
	}
	items := make([]Step, 0, len(raws))
	for _, raw := range raws {
		spec, err := yaml.Marshal(raw.Spec)
		if err != nil {
			return nil, err
		}
		s, err := r.DecodeSpec(raw.Kind, spec)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, nil
}

// DecodeSpec builds a step of kind from a YAML or JSON document.
func (r *Registry) DecodeSpec(kind string, spec []byte) (Step, error) {
	d, ok := r.Lookup(kind)
	if !ok {
		return nil, UnknownKindError{Kind: kind}
	}
	s := d.New()
	if len(spec) > 0 {
		if err := yaml.Unmarshal(spec, s); err != nil {
			return nil, fmt.Errorf("decoding %s step: %w", kind, err)
		}
	}
	return s, nil
}

// Clone deep copies items through the codec so the copy shares no maps or
// slices with the original.
func (r *Registry) Clone(items []Step) ([]Step, error) {
	data, err := r.Encode(items)
	if err != nil {
		return nil, err
	}
	return r.Decode(data)
}

package store

import (
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/campusops/rostersync/pkg/entities"
)

// MarshalEntity serializes a record as a YAML envelope carrying its
// collection discriminator.
func MarshalEntity(e entities.Entity) ([]byte, error) {
	if e == nil {
		return nil, fmt.Errorf("cannot marshal nil record")
	}
	env := entities.Wrap(e)
	if env.Entity() == nil {
		return nil, fmt.Errorf("unknown record type %T", e)
	}
	data, err := yaml.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s record: %w", e.Collection(), err)
	}
	return data, nil
}

// UnmarshalEntity deserializes a YAML envelope back to its concrete
// record type.
func UnmarshalEntity(data []byte) (entities.Entity, error) {
	var env entities.Envelope
	if err := yaml.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshaling record envelope: %w", err)
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	e := env.Entity()
	if e == nil {
		return nil, fmt.Errorf("record envelope is empty")
	}
	return e, nil
}

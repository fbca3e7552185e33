package differ

import (
	"github.com/campusops/rostersync/pkg/entities"
)

// changeDoc is the serialized form of Change. Original and New are
// interface-typed, so they travel as envelopes with a collection
// discriminator.
type changeDoc struct {
	ID         string              `yaml:"id"`
	Collection entities.Collection `yaml:"collection"`
	Action     Action              `yaml:"action"`
	GroupKey   string              `yaml:"groupKey,omitempty"`
	TargetID   string              `yaml:"targetId,omitempty"`
	Original   *entities.Envelope  `yaml:"original,omitempty"`
	New        *entities.Envelope  `yaml:"new,omitempty"`
	Diff       []FieldEdit         `yaml:"diff,omitempty"`
}

// MarshalYAML implements custom YAML marshaling so the interface-typed
// entity fields survive serialization.
func (c *Change) MarshalYAML() (any, error) {
	doc := changeDoc{
		ID:         c.ID,
		Collection: c.Collection,
		Action:     c.Action,
		GroupKey:   c.GroupKey,
		TargetID:   c.TargetID,
		Diff:       c.Diff,
	}
	if c.Original != nil {
		env := entities.Wrap(c.Original)
		doc.Original = &env
	}
	if c.New != nil {
		env := entities.Wrap(c.New)
		doc.New = &env
	}
	return doc, nil
}

// UnmarshalYAML implements custom YAML unmarshaling, unboxing the
// entity envelopes back to their concrete types.
func (c *Change) UnmarshalYAML(unmarshal func(any) error) error {
	var doc changeDoc
	if err := unmarshal(&doc); err != nil {
		return err
	}
	c.ID = doc.ID
	c.Collection = doc.Collection
	c.Action = doc.Action
	c.GroupKey = doc.GroupKey
	c.TargetID = doc.TargetID
	c.Diff = doc.Diff
	if doc.Original != nil {
		if err := doc.Original.Validate(); err != nil {
			return err
		}
		c.Original = doc.Original.Entity()
	}
	if doc.New != nil {
		if err := doc.New.Validate(); err != nil {
			return err
		}
		c.New = doc.New.Entity()
	}
	return nil
}

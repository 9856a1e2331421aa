package stat

import "gopkg.in/yaml.v3"

// MarshalYAML serializes the Primary by canonical name.
func (p Primary) MarshalYAML() (interface{}, error) { return p.String(), nil }

// UnmarshalYAML parses a canonical primary name.
func (p *Primary) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParsePrimary(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalYAML serializes the Derived by canonical name.
func (d Derived) MarshalYAML() (interface{}, error) { return d.String(), nil }

// UnmarshalYAML parses a canonical derived name.
func (d *Derived) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseDerived(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalYAML serializes the ID by canonical name.
func (id ID) MarshalYAML() (interface{}, error) { return id.String(), nil }

// UnmarshalYAML parses a canonical stat name into an ID.
func (id *ID) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

package config

import (
	"errors"
	"math"
	"net/url"

	"gopkg.in/yaml.v3"
)

// mode controls how a wrongly typed value on the host entry is treated.
type mode int

const (
	strict  mode = iota // wrong type on the host entry fails resolution
	lenient             // wrong type on any tier counts as absent
)

// resolve merges one field across the host entry, the default entry and a
// constant. Out-of-range values fail on either tier; a wrongly typed default
// value always falls through to the constant.
func resolve[T any](host, def *yaml.Node, fallback T, m mode, parse func(*yaml.Node) (T, error)) (T, error) {
	var zero T
	if present(host) {
		v, err := parse(host)
		switch {
		case err == nil:
			return v, nil
		case m == lenient && errors.Is(err, ErrWrongType):
		default:
			return zero, err
		}
	}
	if present(def) {
		v, err := parse(def)
		switch {
		case err == nil:
			return v, nil
		case errors.Is(err, ErrWrongType):
		default:
			return zero, err
		}
	}
	return fallback, nil
}

func parseUint32(n *yaml.Node) (uint32, error) {
	if n.Kind != yaml.ScalarNode || n.ShortTag() != "!!int" {
		return 0, ErrWrongType
	}
	var i int64
	if err := n.Decode(&i); err != nil {
		// a valid int literal that does not fit int64 is still out of range
		return 0, ErrOutOfRange
	}
	if i < 0 || i > math.MaxUint32 {
		return 0, ErrOutOfRange
	}
	return uint32(i), nil
}

func parseBool(n *yaml.Node) (bool, error) {
	if n.Kind != yaml.ScalarNode || n.ShortTag() != "!!bool" {
		return false, ErrWrongType
	}
	var b bool
	if err := n.Decode(&b); err != nil {
		return false, ErrWrongType
	}
	return b, nil
}

func parseString(n *yaml.Node) (string, error) {
	if n.Kind != yaml.ScalarNode || n.ShortTag() != "!!str" {
		return "", ErrWrongType
	}
	return n.Value, nil
}

func parseOrigin(n *yaml.Node) (string, error) {
	s, err := parseString(n)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() {
		return "", ErrBadURL
	}
	return s, nil
}

// present reports whether n holds a value; YAML null counts as absent.
func present(n *yaml.Node) bool {
	return n != nil && !(n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null")
}

func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// lookup returns the value stored under key in a mapping node, or nil.
// Duplicate keys resolve to the last occurrence.
func lookup(m *yaml.Node, key string) *yaml.Node {
	m = deref(m)
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	var found *yaml.Node
	for i := 0; i+1 < len(m.Content); i += 2 {
		if k := deref(m.Content[i]); k.Kind == yaml.ScalarNode && k.Value == key {
			found = deref(m.Content[i+1])
		}
	}
	return found
}

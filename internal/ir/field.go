package ir

import (
	"fmt"
	"strings"
)

// fieldEnum is the constraint satisfied by every per-entity field enum.
type fieldEnum interface {
	~int
}

// fieldTable is the registration table for one entity's fields.
//
// The position of a name in names is the enum value it maps to, so the
// table is both the string form and the declaration order used for "*".
type fieldTable[F fieldEnum] struct {
	entity EntityKind
	names  []string
	index  map[string]F
}

// newFieldTable builds a table and panics if it is not a bijection over
// [0, count). Called from package init, so a broken table fails every test
// and every binary at startup.
func newFieldTable[F fieldEnum](entity EntityKind, count F, names ...string) *fieldTable[F] {
	if len(names) != int(count) {
		panic(fmt.Sprintf("ir: %s has %d fields but %d names registered", entity, int(count), len(names)))
	}
	t := &fieldTable[F]{
		entity: entity,
		names:  names,
		index:  make(map[string]F, len(names)),
	}
	for i, name := range names {
		if name == "" {
			panic(fmt.Sprintf("ir: %s field %d has no name", entity, i))
		}
		if name != strings.ToLower(name) {
			panic(fmt.Sprintf("ir: %s field %q is not lowercase", entity, name))
		}
		if _, dup := t.index[name]; dup {
			panic(fmt.Sprintf("ir: %s field %q registered twice", entity, name))
		}
		t.index[name] = F(i)
	}
	return t
}

// name returns the canonical string for f.
func (t *fieldTable[F]) name(f F) string {
	if int(f) < 0 || int(f) >= len(t.names) {
		return fmt.Sprintf("%s_field(%d)", t.entity, int(f))
	}
	return t.names[f]
}

// parse maps a field name (case-insensitive) to its enum value.
func (t *fieldTable[F]) parse(s string) (F, error) {
	f, ok := t.index[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, &FieldError{Entity: t.entity, Name: s}
	}
	return f, nil
}

// all returns every field in declaration order.
func (t *fieldTable[F]) all() []F {
	out := make([]F, len(t.names))
	for i := range t.names {
		out[i] = F(i)
	}
	return out
}

// FieldNames returns the canonical field names of an entity in declaration order.
func FieldNames(kind EntityKind) []string {
	var names []string
	switch kind {
	case KindAccount:
		names = accountFields.names
	case KindCheckpoint:
		names = checkpointFields.names
	case KindTransaction:
		names = transactionFields.names
	case KindCoin:
		names = coinFields.names
	case KindObject:
		names = objectFields.names
	}
	return append([]string(nil), names...)
}

// FieldError reports a field name that does not belong to an entity.
type FieldError struct {
	Entity EntityKind
	Name   string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s field %q", e.Entity, e.Name)
}

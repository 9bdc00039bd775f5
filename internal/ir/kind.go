package ir

import (
	"fmt"
	"strings"
)

// EntityKind names one of the queryable record kinds.
type EntityKind int

const (
	KindAccount EntityKind = iota
	KindCheckpoint
	KindTransaction
	KindCoin
	KindObject
)

var entityKindNames = []string{"account", "checkpoint", "tx", "coin", "object"}

// AllEntityKinds returns every entity kind in declaration order.
func AllEntityKinds() []EntityKind {
	return []EntityKind{KindAccount, KindCheckpoint, KindTransaction, KindCoin, KindObject}
}

// String returns the keyword used for the kind after FROM.
func (k EntityKind) String() string {
	if k < 0 || int(k) >= len(entityKindNames) {
		return fmt.Sprintf("entity(%d)", int(k))
	}
	return entityKindNames[k]
}

// ParseEntityKind maps a FROM keyword (case-insensitive) to its kind.
func ParseEntityKind(s string) (EntityKind, error) {
	lower := strings.ToLower(strings.TrimSpace(s))
	for i, name := range entityKindNames {
		if name == lower {
			return EntityKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown entity %q", s)
}

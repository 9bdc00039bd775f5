// Package ir provides the typed query model for suiql.
//
// This package contains the closed sets the rest of the module agrees on:
// expressions, entities, per-entity field enums, filter predicates and the
// typed identifiers (addresses, digests, object ids, checkpoint tags) that
// appear in a query. The compiler produces these values, the engine consumes
// them, and nothing here touches the network.
//
// Key design constraints:
//   - Expression, Entity and the per-entity filter unions are sealed
//     interfaces; only the types in this package implement them
//   - Every field enum is registered in a single table whose completeness is
//     checked when the package initializes
//   - Values are immutable once the compiler has built them
package ir

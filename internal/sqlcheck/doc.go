// Package sqlcheck verifies serialized SQL against a real SQLite engine.
//
// Statements are prepared, never executed, so a check needs only the
// schema. SQLite reports how many parameters the statement takes; a
// difference from the serializer's constant count means text and
// constants have drifted apart.
package sqlcheck

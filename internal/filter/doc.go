// Package filter compiles a small human-readable filter syntax into a
// parameterized key-value-store predicate.
//
// Supported forms:
//
//	Status=ACTIVE
//	attribute_exists(Email)
//	contains(Name, John)
//	begins_with(OrderId, "2024-")
//
// The compiled expression only ever contains placeholders (#attr0, :val0);
// real attribute names and values are carried in separate maps so user text
// never reaches the query language directly.
package filter

/*
Package schema provides typed state schemas for unit input/output contracts.

A StateSchema is an ordered set of uniquely named fields with declared types.
Each unit registers one schema for the fields it reads (input) and one for the
fields it writes (output), turning the data contract of every unit into an
explicit, inspectable interface instead of an emergent property of shared key
names.

# Usage

	in := schema.New().
		Field("cleaned", schema.Slice(schema.Int()))

	out := schema.New().
		Field("summary", schema.String()).
		Field("tag", schema.Slice(schema.String()))

Type expressions are also parseable from strings, which manifests and stored
configs use: "string", "int", "float", "bool", "[string]" (slice), "{int}"
(string-keyed map).
*/
package schema

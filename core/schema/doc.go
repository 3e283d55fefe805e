/*
Package schema defines the core types for declarative model definitions.

A model declares its base fields plus a set of capability toggles.
The composer (core/compose) merges the base fields with the fields
contributed by each enabled capability into one Composed schema with a
deterministic field and rule order.

# Model Declaration

A minimal model declaration in YAML:

	model: article

	capabilities: [visibility, tags, edition]

	schema:
	  id:      { type: uuid }
	  title:   { type: text, required: true }
	  email:   { type: text, format: email }
	  website: { type: text, nullable: true }

# Field Types

Supported field types:

  - text:      Text value
  - integer:   Integer value
  - float:     Floating-point value
  - bool:      Boolean value
  - timestamp: Date/time value, serialized as RFC 3339
  - uuid:      UUID
  - json:      JSON object
  - strings:   Array of strings
  - enum:      One of a set of values (requires values field)

# Capabilities

Capability toggles pull in cross-cutting columns without touching the
base declaration: namespace, visibility, tags, owner-id, maintainer-id
and edition. A disabled capability contributes nothing to the schema.

# Validation

Validation failures are never returned as errors; they accumulate into
a Report whose entries are addressable by field, so an API layer can
attribute each failure to the input field that caused it.
*/
package schema

package types

// StructuredResult is a validated model response after contract enforcement.
// The shape inside is declared by the endpoint's response schema; the
// enforcer only guarantees it is a JSON object carrying schema_version,
// user_id and datetime_utc.
type StructuredResult map[string]any

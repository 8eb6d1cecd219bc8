package domain

// SchemaVersion tags the structured-payload schema a stored version was
// written against. Invariant: the value must be one of the supported schema
// versions. Payload validation enforces the allowlist via IsValid so an
// unsupported version is recorded as a validation issue, not a decode error.
type SchemaVersion string

// Supported structured-payload schema versions.
const (
	SchemaVersion1 SchemaVersion = "1.0"
)

// validSchemaVersions is the single source of truth for accepted versions.
var validSchemaVersions = map[SchemaVersion]bool{
	SchemaVersion1: true,
}

// IsValid checks if the schema version is one of the supported values.
func (v SchemaVersion) IsValid() bool {
	return validSchemaVersions[v]
}

// String returns the string representation of the schema version.
func (v SchemaVersion) String() string {
	return string(v)
}

// CurrentSchemaVersion returns the version newly parsed payloads are tagged
// with.
func CurrentSchemaVersion() SchemaVersion {
	return SchemaVersion1
}

package domain

// SchemaIndex is the generated index document consumed by schema matchers.
// Entry order is discovery order: locally tracked schemas first, catalog
// entries appended after.
type SchemaIndex struct {
	Schemas []SchemaMeta `json:"schemas"`
}

// SchemaMeta describes a single schema document in the index. Title,
// Description and Updated serialize as JSON null when absent. URLHash is the
// lowercase hex SHA-256 digest of URL.
type SchemaMeta struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Updated     *string `json:"updated"`
	URL         string  `json:"url"`
	URLHash     string  `json:"urlHash"`
	ExtraInfo
}

// ExtraInfo carries consumer-specific annotations. Embedded so its fields
// flatten into the enclosing entry object.
type ExtraInfo struct {
	Authors  []string `json:"authors,omitempty"`
	Patterns []string `json:"patterns,omitempty"`
}

// SchemaDocument is the subset of a local schema file the generator reads.
// Unknown keys are ignored.
type SchemaDocument struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Extra       ExtraInfo `json:"x-index-info"`
}

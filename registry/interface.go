package registry

// SchemaRegistry manages JSON schemas for package metadata blocks.
type SchemaRegistry interface {
	// Register adds a schema for a block kind (e.g. "roundcube").
	// model can be a struct (to generate schema) or a JSON schema string/map.
	Register(kind string, model interface{}) error

	// GetSchema returns the JSON schema for a block kind.
	GetSchema(kind string) (string, bool)

	// List returns all registered block kinds, sorted.
	List() []string
}

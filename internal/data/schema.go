package data

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// CatalogSchema reflects the JSON schema of an item catalog document.
func CatalogSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}
	schema := reflector.Reflect(&CatalogDocument{})
	schema.Title = "Quantum Dungeon Item Catalog"
	schema.Description = "Item kinds: static stats, category tags, spawn weight, animation delays and Lua behaviour."
	return schema
}

// MarshalCatalogSchema renders CatalogSchema as indented JSON.
func MarshalCatalogSchema() ([]byte, error) {
	out, err := json.MarshalIndent(CatalogSchema(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal catalog schema: %w", err)
	}
	return append(out, '\n'), nil
}

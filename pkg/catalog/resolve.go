package catalog

import (
	"encoding/json"
	"os"
)

// Resolve returns the flattened document for the named bundled profile,
// merging its full inheritance chain oldest ancestor first so that each
// descendant's keys overwrite its ancestor's.
//
// An unknown name resolves to an empty document. A cycle in the inherits
// chain degrades to a partial merge: the name seen twice resolves to
// empty, which terminates the recursion without failing the request.
func (c *Catalog) Resolve(subdir, name string) map[string]any {
	return c.resolve(subdir, name, make(map[string]bool))
}

func (c *Catalog) resolve(subdir, name string, visited map[string]bool) map[string]any {
	if visited[name] {
		return map[string]any{}
	}
	visited[name] = true

	path, ok := c.Lookup(subdir, name)
	if !ok {
		return map[string]any{}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return map[string]any{}
	}
	var obj map[string]any
	if err := json.Unmarshal(b, &obj); err != nil {
		return map[string]any{}
	}

	parentName, _ := obj["inherits"].(string)
	if parentName == "" {
		return obj
	}

	merged := c.resolve(subdir, parentName, visited)
	for k, v := range obj {
		merged[k] = v
	}
	return merged
}

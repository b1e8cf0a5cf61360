package profile

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/printforge/slicerd/pkg/catalog"
)

// validFromValues are the provenance markers the engine recognizes. Any
// other value is replaced with the default user marker.
var validFromValues = map[string]bool{
	"system": true,
	"User":   true,
	"user":   true,
}

// defaultFrom is the provenance stamped onto user uploads.
const defaultFrom = "User"

// Normalize prepares an uploaded profile document for engine consumption.
//
// The authoring tool's GUI export omits the type field the engine CLI
// requires, so type is force-set to the category's engine vocabulary
// regardless of any pre-existing value. The from field is defaulted to
// "User" unless it already carries a recognized marker.
//
// When the document declares inherits, the named bundled base profile is
// resolved through the catalog and the document's own keys are overlaid
// onto the flattened base (document wins on collision). The inherits field
// is re-stamped to the immediate parent afterwards so the merge cannot
// leak the base profile's own lineage; the engine uses it for
// compatible-printer matching. An unresolvable inherits name leaves the
// document as uploaded and only logs a warning.
//
// Normalize does not touch the filesystem; the caller persists the
// returned bytes.
func Normalize(raw []byte, cat Category, sys *catalog.Catalog, logger *zap.Logger) ([]byte, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: document is not a JSON object", ErrInvalidDocument)
	}

	obj["type"] = cat.EngineType()

	if from, _ := obj["from"].(string); !validFromValues[from] {
		obj["from"] = defaultFrom
	}

	if inheritsName, _ := obj["inherits"].(string); inheritsName != "" && sys != nil {
		base := sys.Resolve(cat.Subdir(), inheritsName)
		if len(base) > 0 {
			for k, v := range obj {
				base[k] = v
			}
			obj = base
			obj["inherits"] = inheritsName
			logger.Info("Resolved profile inheritance",
				zap.String("category", string(cat)),
				zap.String("inherits", inheritsName),
				zap.Int("keys", len(obj)))
		} else {
			logger.Warn("Could not resolve profile inheritance",
				zap.String("category", string(cat)),
				zap.String("inherits", inheritsName))
		}
	}

	out, err := json.MarshalIndent(obj, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("serialize normalized profile: %w", err)
	}
	return out, nil
}

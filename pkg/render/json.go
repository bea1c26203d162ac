package render

import (
	"encoding/json"

	"github.com/relblock/relblock/pkg/layout"
)

// RenderJSON serializes layout geometry as indented JSON for API
// consumers and editor front ends.
func RenderJSON(res *layout.Result) ([]byte, error) {
	return json.MarshalIndent(res, "", "  ")
}

package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/relblock/relblock/pkg/graph"
	"github.com/relblock/relblock/pkg/layout"
	"github.com/relblock/relblock/pkg/observability"
)

// ComputeLayout runs the layout stage without caching. The collapsed
// gate set comes from opts.
func ComputeLayout(ctx context.Context, g *graph.Graph, opts Options) (*layout.Result, error) {
	if g == nil {
		return nil, fmt.Errorf("nil graph")
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid diagram: %w", err)
	}

	observability.Pipeline().OnLayoutStart(ctx, g.NodeCount())
	start := time.Now()

	var res *layout.Result
	if set := opts.CollapsedSet(); set != nil {
		res = layout.Compute(g, layout.WithCollapsed(set))
	} else {
		res = layout.Compute(g)
	}

	observability.Pipeline().OnLayoutComplete(ctx, g.NodeCount(), time.Since(start), nil)
	return res, nil
}

// marshalGraph serializes a graph to its canonical JSON form.
func marshalGraph(g *graph.Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := graph.WriteJSON(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// marshalLayout serializes layout geometry for the cache.
func marshalLayout(res *layout.Result) ([]byte, error) {
	return json.Marshal(res)
}

// unmarshalLayout restores cached layout geometry.
func unmarshalLayout(data []byte) (*layout.Result, error) {
	var res layout.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

package scan

import (
	"context"
	"log/slog"
	"sort"

	"github.com/dsyslab/tokenlens/pkg/document"
)

// groupedVariable pairs a resolved variable with its usage provenance.
type groupedVariable struct {
	variable *document.Variable
	nodeIDs  []string
}

// groupUsage resolves every used variable id to its record and groups
// the survivors by owning collection. Ids that fail to resolve
// (deleted variable, revoked access) are dropped, not surfaced:
// only the drop count makes it into the stats.
func groupUsage(ctx context.Context, oracle document.Oracle, used UsageMap, log *slog.Logger) (map[string][]groupedVariable, int, error) {
	grouped := make(map[string][]groupedVariable)
	dropped := 0

	// Resolution order does not matter for correctness; sorted ids
	// keep the output deterministic.
	for _, id := range used.IDs() {
		v, err := oracle.VariableByID(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return nil, 0, ctx.Err()
			}
			log.Debug("dropping unresolvable variable", "id", id, "error", err)
			dropped++
			continue
		}
		grouped[v.CollectionID] = append(grouped[v.CollectionID], groupedVariable{
			variable: v,
			nodeIDs:  used.NodeIDs(id),
		})
	}

	if dropped > 0 {
		log.Info("variables dropped during resolution", "count", dropped)
	}
	return grouped, dropped, nil
}

// fetchCollections resolves collection ids to records. Ids without a
// resolvable record are omitted silently, matching the grouper's drop
// policy. The returned order follows the sorted id order.
func fetchCollections(ctx context.Context, oracle document.Oracle, grouped map[string][]groupedVariable, log *slog.Logger) ([]*document.VariableCollection, error) {
	ids := make([]string, 0, len(grouped))
	for id := range grouped {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	collections := make([]*document.VariableCollection, 0, len(ids))
	for _, id := range ids {
		col, err := oracle.CollectionByID(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Debug("dropping unresolvable collection", "id", id, "error", err)
			continue
		}
		collections = append(collections, col)
	}
	return collections, nil
}

package scan

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/dsyslab/tokenlens/pkg/document"
)

// enrichCollections assembles the display-ready collection records:
// declared-mode values with one-hop alias rendering, remote library
// names, and ghost detection.
//
// Ghost policy: when the library enumeration itself fails, failClosed
// decides the default. Fail-open (false, the default) treats the
// collection as reachable and keeps it editable; fail-closed marks it
// a ghost.
func enrichCollections(
	ctx context.Context,
	oracle document.Oracle,
	collections []*document.VariableCollection,
	grouped map[string][]groupedVariable,
	failClosed bool,
	log *slog.Logger,
) ([]CollectionData, int) {
	libraries, libErr := oracle.LibraryKeys(ctx)
	if libErr != nil {
		log.Warn("library enumeration failed, ghost detection degraded",
			"failClosed", failClosed, "error", libErr)
	}

	out := make([]CollectionData, 0, len(collections))
	droppedCollections := 0

	for _, col := range collections {
		data := CollectionData{
			ID:     col.ID,
			Name:   col.Name,
			Modes:  col.Modes,
			Remote: col.Remote,
		}

		for _, gv := range grouped[col.ID] {
			vd, ok := enrichVariable(ctx, oracle, gv, col.Modes, log)
			if !ok {
				continue
			}
			data.Variables = append(data.Variables, vd)
		}

		// A collection is only fetched because it had used variables,
		// but a variable can still fail mid-enrichment. Empty
		// collections are dropped, never shown.
		if len(data.Variables) == 0 {
			log.Debug("dropping collection with no surviving variables", "id", col.ID)
			droppedCollections++
			continue
		}

		sort.Slice(data.Variables, func(i, j int) bool {
			return data.Variables[i].Name < data.Variables[j].Name
		})

		if col.Remote {
			data.LibraryName = libraryNameFromKey(col.Key)
			if libErr != nil {
				data.IsGhost = failClosed
			} else {
				_, available := libraries[col.Key]
				data.IsGhost = !available
			}
		}

		out = append(out, data)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, droppedCollections
}

// enrichVariable renders one variable's values across the collection's
// declared modes. Aliases resolve one hop to "→ name"; an alias whose
// target is missing renders UnknownAliasLabel, never an error.
func enrichVariable(
	ctx context.Context,
	oracle document.Oracle,
	gv groupedVariable,
	modes []document.Mode,
	log *slog.Logger,
) (VariableData, bool) {
	v := gv.variable
	values := make(map[string]any, len(modes))

	for _, mode := range modes {
		raw, ok := v.ValuesByMode[mode.ModeID]
		if !ok {
			continue
		}
		dv, err := document.DecodeModeValue(raw)
		if err != nil {
			log.Debug("skipping undecodable mode value",
				"variable", v.ID, "mode", mode.ModeID, "error", err)
			continue
		}
		if dv.Alias != nil {
			values[mode.ModeID] = renderAlias(ctx, oracle, *dv.Alias)
			continue
		}
		// Literal values pass through unchanged; consumers interpret
		// them per resolvedType.
		values[mode.ModeID] = dv.Literal
	}

	if len(values) == 0 && len(modes) > 0 {
		log.Debug("variable lost all mode values during enrichment", "variable", v.ID)
		return VariableData{}, false
	}

	return VariableData{
		ID:           v.ID,
		Name:         v.Name,
		ResolvedType: v.ResolvedType,
		ValuesByMode: values,
		NodeIDs:      gv.nodeIDs,
	}, true
}

// renderAlias resolves the alias target's name one indirection level.
// Deeper alias chains render the intermediate name, not the final
// literal; that mirrors what the display expects.
func renderAlias(ctx context.Context, oracle document.Oracle, a document.Alias) string {
	target, err := oracle.VariableByID(ctx, document.NormalizeVariableID(a.ID))
	if err != nil {
		return UnknownAliasLabel
	}
	return "→ " + target.Name
}

// libraryNameFromKey derives a display name from a collection's
// publish key: its last /-delimited segment.
func libraryNameFromKey(key string) string {
	if key == "" {
		return ""
	}
	parts := strings.Split(key, "/")
	return parts[len(parts)-1]
}

package scan

import (
	"github.com/dsyslab/tokenlens/pkg/colorhex"
	"github.com/dsyslab/tokenlens/pkg/ignore"
)

// filterUnbound returns the elements matching neither suppression
// list. Pure: O(elements × ignores), fine at the expected tens of
// entries.
func filterUnbound(elements []UnboundElement, byID []string, byValue []ignore.ValueIgnore) []UnboundElement {
	if len(byID) == 0 && len(byValue) == 0 {
		return elements
	}

	idSet := make(map[string]struct{}, len(byID))
	for _, id := range byID {
		idSet[id] = struct{}{}
	}

	kept := make([]UnboundElement, 0, len(elements))
	for _, el := range elements {
		if _, suppressed := idSet[el.ID]; suppressed {
			continue
		}
		if matchesValueIgnore(el, byValue) {
			continue
		}
		kept = append(kept, el)
	}
	return kept
}

// matchesValueIgnore applies the by-value rules. Color suppressions
// are flag-kind-specific: a stroke ignore only hits stroke flags and a
// fill ignore only fill flags, each on exact resolved hex. The text
// suppression is deliberately broader and covers both text flag kinds.
func matchesValueIgnore(el UnboundElement, byValue []ignore.ValueIgnore) bool {
	for _, vi := range byValue {
		switch vi.ValueType {
		case ignore.ValueTextNoStyle:
			if el.Type == UnboundTextNoStyle || el.Type == UnboundTextPartialStyle {
				return true
			}
		case ignore.ValueFill:
			if el.Type == UnboundFill && hexOf(el) == vi.Value {
				return true
			}
		case ignore.ValueStroke:
			if el.Type == UnboundStroke && hexOf(el) == vi.Value {
				return true
			}
		}
	}
	return false
}

func hexOf(el UnboundElement) string {
	hex, ok := colorhex.ExtractHex(el.Details)
	if !ok {
		return ""
	}
	return hex
}

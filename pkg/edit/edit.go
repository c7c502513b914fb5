// Package edit decides whether a variable edit should be permitted.
// The mutation itself is delegated to an external Applier; the core
// never writes to the document.
package edit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dsyslab/tokenlens/pkg/document"
)

// Applier performs the actual mutation. Implemented by the host-side
// collaborator, not by this module.
type Applier interface {
	ApplyVariableValue(ctx context.Context, variableID, modeID string, value json.RawMessage) error
}

// Decision is a policy outcome. A rejected edit carries the reason;
// rejection is not an error.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Policy evaluates edit permission against a collection's provenance:
// local collections are editable, and so are ghosts (their backing
// library is gone, so the local override is all there is). A live
// remote collection must be edited in its source library.
type Policy struct{}

// Check returns the decision for editing a variable owned by col.
// IsGhost on the data is expected to reflect the enricher's ghost
// determination, including its fail-open/fail-closed fallback.
func (Policy) Check(col *document.VariableCollection, isGhost bool) Decision {
	if !col.Remote {
		return Decision{Allowed: true}
	}
	if isGhost {
		return Decision{Allowed: true}
	}
	return Decision{
		Allowed: false,
		Reason:  fmt.Sprintf("%q is published from a connected library; edit it in the source file", col.Name),
	}
}

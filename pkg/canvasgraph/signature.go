package canvasgraph

import (
	"fmt"
	"strconv"
)

// StructuralSignature derives the cheap key used to gate builder reruns:
// project ID, version marker, node count, edge count. It is a proxy for
// "the graph actually changed server-side"; rebuilding on every call
// would reset in-progress drags and cause flicker. A nil project signs
// as empty so the first Sync always rebuilds.
func StructuralSignature(p *Project) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%s:%s:%d:%d",
		p.ID,
		strconv.FormatInt(p.UpdatedAt.UnixNano(), 10),
		len(p.Nodes),
		len(p.Edges),
	)
}

package cache

import (
	"encoding/json"
	"fmt"
)

// Key builds the cache fingerprint for a tool call. encoding/json writes map
// keys in sorted order, so two argument maps with the same contents produce
// the same fingerprint regardless of insertion order. The tool name prefix
// keeps tools with identical argument shapes from sharing entries, and the
// readable form is what makes glob invalidation possible.
func Key(toolName string, args map[string]interface{}) string {
	if len(args) == 0 {
		return toolName + ":{}"
	}

	data, err := json.Marshal(args)
	if err != nil {
		// Arguments have already passed validation, so they are plain
		// JSON-compatible values; a marshal failure here means a programming
		// error upstream.
		return fmt.Sprintf("%s:!unencodable", toolName)
	}

	return toolName + ":" + string(data)
}

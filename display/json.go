package display

import (
	"encoding/json"
	"flag"
	"os"
)

// MarshalJSON marshals with compact formatting when the output is consumed
// by a tool (MCP clients, agent harnesses), pretty formatting for humans.
func MarshalJSON(v interface{}) ([]byte, error) {
	// Test mode always pretty-prints so golden comparisons stay readable
	if flag.Lookup("test.v") != nil {
		return json.MarshalIndent(v, "", "  ")
	}

	if IsAgentEnvironment() {
		return json.Marshal(v)
	}

	return json.MarshalIndent(v, "", "  ")
}

// IsAgentEnvironment reports whether output is being consumed by a
// machine rather than a terminal user.
func IsAgentEnvironment() bool {
	if os.Getenv("CODEGRAPH_AGENT") != "" {
		return true
	}
	// MCP stdio serving always targets a machine consumer
	return os.Getenv("CODEGRAPH_MCP") != ""
}

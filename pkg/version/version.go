package version

// Version is the server version reported in the initialize response.
// Overridden at build time via -ldflags.
var Version = "0.3.0"

// ProtocolVersion is the newest MCP protocol revision this server speaks.
const ProtocolVersion = "2024-11-05"

// SupportedProtocolVersions lists every revision the server accepts from a
// client, newest first.
var SupportedProtocolVersions = []string{
	"2024-11-05",
	"2024-10-07",
}

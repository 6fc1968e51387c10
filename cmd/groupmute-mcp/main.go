package main

import "github.com/groupmute/groupmute/internal/cli"

// groupmute-mcp is the stdio MCP server, registered with MCP clients as a standalone binary
func main() {
	cli.ExecuteMCP()
}

// Package common provides shared utilities for MCP tool implementations:
// the dependencies tools share, argument helpers, and the instrumented
// handler wrapper every tool is registered through.
package common

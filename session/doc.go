/*
Package session keeps calculators for many concurrent clients.

Each session is a calculator.Calculator identified by a string ID. The
Manager serializes every operation on a session, so front ends like the HTTP
API and the MCP server may share one Manager across goroutines while each
calculator still sees a single writer. Sessions live only in memory.
*/
package session

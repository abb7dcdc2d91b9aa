// Command calculator evaluates expressions, runs an interactive keypad, and
// serves calculator sessions over HTTP or MCP.
package main

func main() {
	Execute()
}

// Command asgctl runs maintenance tasks against the AI Style Guide
// database and model providers.
package main

func main() {
	Execute()
}

// Command gcptrctl runs tracked-handle scenarios and dumps registry state.
package main

import "os"

func main() {
	os.Exit(execute())
}

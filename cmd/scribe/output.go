package main

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// printOutput renders a response body in the chosen format.
func printOutput(format string, data []byte) error {
	if format == "json" {
		var out bytes.Buffer
		if err := json.Indent(&out, data, "", "  "); err != nil {
			// non-JSON bodies pass through untouched
			fmt.Println(string(data))
			return nil
		}
		fmt.Println(out.String())
		return nil
	}
	fmt.Println(string(data))
	return nil
}

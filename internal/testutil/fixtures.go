package testutil

import "fmt"

// PlayerNames returns n display names P1..Pn.
func PlayerNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("P%d", i+1)
	}
	return names
}

package theme

import (
	"fmt"
)

// Banner returns the CLI banner.
func Banner() string {
	const cyan = "\033[36m"
	const blue = "\033[34m"
	const reset = "\033[0m"

	art := "" +
		"  ~ ~ ~   " + blue + "TIDEPOOL" + reset + "   ~ ~ ~\n" +
		cyan + "   ≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈≈\n" + reset +
		"   a live timeline client for the fediverse\n"
	return art
}

// PrintBanner prints the banner to stdout.
func PrintBanner() {
	fmt.Print(Banner())
}

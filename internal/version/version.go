// ABOUTME: Version and product identification
// ABOUTME: Reported in the control server greeting and the TUI header
package version

const (
	// Version is the release version
	Version = "0.3.0"
	// Product is the product name
	Product = "Melonix"
	// Manufacturer is the publisher name
	Manufacturer = "Melonix Audio"
)

// String returns the product and version, e.g. "Melonix 0.3.0"
func String() string {
	return Product + " " + Version
}

// ABOUTME: Version and product identification
// ABOUTME: Reported in the CLI banner and the TTS User-Agent header
package version

import "fmt"

const (
	Version      = "0.3.0"
	Product      = "smalltalk"
	Manufacturer = "smalltalk-tts"
)

// UserAgent returns the HTTP User-Agent for outgoing requests
func UserAgent() string {
	return fmt.Sprintf("%s/%s (+https://github.com/smalltalk-tts/smalltalk-go)", Product, Version)
}

// Package platform reports facts about the execution environment
package platform

// IsServerSide reports whether the code is running outside a browser host.
// Builds for the js target run inside a browser-like global context.
func IsServerSide() bool {
	return serverSide
}

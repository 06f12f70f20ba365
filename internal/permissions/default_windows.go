//go:build windows

package permissions

// RequiresCurrentSessionDirectory is true where the RCC setup of the
// scheduler's own session needs a dedicated working directory.
const RequiresCurrentSessionDirectory = true

// Default returns the platform's Granter.
func Default() Granter { return ICACLS{} }

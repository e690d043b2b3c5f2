// Package windows provides Windows platform support using the Win32 user32
// APIs for window management, robotgo for input synthesis and the system
// clipboard for text transfer. On other platforms the package compiles as a
// no-op stub and no provider is registered.
package windows

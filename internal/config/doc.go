// Package config defines the application configuration structures and the
// logic for loading them from the environment. Configuration is loaded once
// at startup and passed to components at construction time; nothing reads
// the environment after Load returns.
package config

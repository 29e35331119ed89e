// Package commands holds the integration tests of the dispenserd commands.
package commands

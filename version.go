package dispenser

// Version is set by build flags, `git describe --tags` in the Makefile.
var Version = "v0.1.0-dev"

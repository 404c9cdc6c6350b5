package launchplan

import _ "embed"

// Version is the release of the launchplan module.
//
//go:embed VERSION
var Version string

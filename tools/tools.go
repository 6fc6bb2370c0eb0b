//go:build tools

package tools

// Tool dependencies pinned in go.mod.

import (
	_ "github.com/pressly/goose/v3/cmd/goose"
)

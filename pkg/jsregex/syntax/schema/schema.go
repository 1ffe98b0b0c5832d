// Package schema embeds the JSON schema for serialized syntax trees.
package schema

import _ "embed"

//go:embed tree-schema.json
var TreeSchema []byte

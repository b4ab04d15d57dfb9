// Package oapi embeds the OpenAPI documents served by this module.
package oapi

import "embed"

const ProfileSpecPath = "openapi-profile.yaml"

//go:embed openapi-profile.yaml
var FS embed.FS

package docs

import _ "embed"

// SwaggerYAML is the OpenAPI 2.0 description served under /swagger.
//
//go:embed swagger.yaml
var SwaggerYAML []byte

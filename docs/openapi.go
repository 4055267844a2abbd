// Package docs embeds the OpenAPI description of the shell API and the page
// that renders it.
package docs

import _ "embed"

//go:embed openapi.yaml
var OpenAPISpec []byte

// SwaggerPage loads Swagger UI against /swagger/openapi.yaml.
//
//go:embed swagger.html
var SwaggerPage []byte

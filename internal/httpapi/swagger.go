//go:build swagger

package httpapi

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

// swaggerDoc is a minimal OpenAPI document for the two generation routes.
// Regenerate a full one from the annotations with `swag init -g cmd/sqlgen/docs.go`.
const swaggerDoc = `{
  "swagger": "2.0",
  "info": {"title": "sqlgen API", "version": "1.0", "description": "Generate and repair SQL statements with a language model backend."},
  "basePath": "/",
  "paths": {
    "/generate": {"post": {"summary": "Generate a SQL statement", "consumes": ["application/json"], "produces": ["application/json"],
      "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/types.GenerateRequest"}}],
      "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.GenerateResponse"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}, "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}}}},
    "/debug": {"post": {"summary": "Repair a SQL statement", "consumes": ["application/json"], "produces": ["application/json"],
      "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/types.GenerateRequest"}}],
      "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.GenerateResponse"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}, "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}}}}
  },
  "definitions": {
    "types.GenerateRequest": {"type": "object", "properties": {"prompt": {"type": "string"}}},
    "types.GenerateResponse": {"type": "object", "properties": {"statement": {"type": "string"}, "backend": {"type": "string"}}},
    "types.ErrorResponse": {"type": "object", "properties": {"error": {"type": "string"}, "code": {"type": "integer"}}}
  }
}`

type swaggerSpec struct{}

func (swaggerSpec) ReadDoc() string { return swaggerDoc }

func init() {
	swag.Register(swag.Name, swaggerSpec{})
}

// MountSwagger serves the UI at /swagger/ and the document at /swagger/doc.json.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

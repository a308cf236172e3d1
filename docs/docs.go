// Package docs registers the OpenAPI document served under /swagger.
// Regenerate with: swag init -g cmd/server/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/tests": {
            "get": {"tags": ["tests"], "summary": "List tests", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["tests"], "summary": "Create test", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}, "424": {"description": "Failed Dependency"}}}
        },
        "/tests/{test_id}": {
            "get": {"tags": ["tests"], "summary": "Get test", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["tests"], "summary": "Update test", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["tests"], "summary": "Delete test", "responses": {"204": {"description": "No Content"}, "424": {"description": "Failed Dependency"}}}
        },
        "/tests/{test_id}/files": {
            "get": {"tags": ["files"], "summary": "List files", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["files"], "summary": "Issue upload URL", "responses": {"200": {"description": "OK"}}}
        },
        "/tests/{test_id}/files/upload": {
            "post": {"tags": ["files"], "summary": "Upload file", "responses": {"201": {"description": "Created"}, "403": {"description": "Forbidden"}, "413": {"description": "Request Entity Too Large"}}}
        },
        "/tests/{test_id}/files/{file_id}": {
            "get": {"tags": ["files"], "summary": "Get file", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["files"], "summary": "Delete file", "responses": {"204": {"description": "No Content"}}}
        },
        "/tests/{test_id}/files/{file_id}/download": {
            "get": {"tags": ["files"], "summary": "Download file", "produces": ["application/octet-stream"], "responses": {"200": {"description": "OK"}}}
        },
        "/tests/{test_id}/logbook": {
            "get": {"tags": ["logbook"], "summary": "List logbook entries", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["logbook"], "summary": "Create logbook entry", "responses": {"201": {"description": "Created"}}}
        },
        "/tests/{test_id}/logbook/{entry_id}": {
            "get": {"tags": ["logbook"], "summary": "Get logbook entry", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["logbook"], "summary": "Update logbook entry", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["logbook"], "summary": "Delete logbook entry", "responses": {"204": {"description": "No Content"}}}
        },
        "/tests/{test_id}/logbook/{entry_id}/resync": {
            "post": {"tags": ["logbook"], "summary": "Resync logbook point", "responses": {"200": {"description": "OK"}}}
        },
        "/tests/{test_id}/links": {
            "get": {"tags": ["links"], "summary": "List links", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["links"], "summary": "Add link", "responses": {"201": {"description": "Created"}}}
        },
        "/tests/{test_id}/links/{link_id}": {
            "delete": {"tags": ["links"], "summary": "Delete link", "responses": {"204": {"description": "No Content"}}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Test Manager API",
	Description:      "Lab test tracking: tests, attached files, logbook and links.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// Package swagger registers the OpenAPI document served under /swagger.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/login": {"post": {"tags": ["auth"], "summary": "Login user", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/register": {"post": {"tags": ["auth"], "summary": "Register user", "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}},
        "/logout": {"post": {"tags": ["auth"], "summary": "Logout", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/me": {"get": {"tags": ["auth"], "summary": "Get current user", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/richieste": {
            "get": {"tags": ["requests"], "summary": "List purchase requests", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["requests"], "summary": "Create purchase request", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/richieste/pending/approve": {"get": {"tags": ["requests"], "summary": "List pending requests", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}},
        "/richieste/processed": {"get": {"tags": ["requests"], "summary": "List approved and rejected requests", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}},
        "/richieste/stats": {"get": {"tags": ["statistics"], "summary": "Request statistics", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/richieste/export": {"get": {"tags": ["statistics"], "summary": "Export requests", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/richieste/{id}": {
            "get": {"tags": ["requests"], "summary": "Get purchase request", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["requests"], "summary": "Update purchase request", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}},
            "delete": {"tags": ["requests"], "summary": "Delete purchase request", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}
        },
        "/richieste/{id}/approve": {"put": {"tags": ["requests"], "summary": "Approve purchase request", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}},
        "/richieste/{id}/reject": {"put": {"tags": ["requests"], "summary": "Reject purchase request", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}},
        "/richieste/{id}/status": {"put": {"tags": ["requests"], "summary": "Change request status", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/categorie": {
            "get": {"tags": ["categories"], "summary": "List categories", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["categories"], "summary": "Create category", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "403": {"description": "Forbidden"}}}
        },
        "/categorie/{id}": {
            "put": {"tags": ["categories"], "summary": "Update category", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["categories"], "summary": "Delete category", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}
        },
        "/audit-logs": {"get": {"tags": ["audit"], "summary": "Get audit logs", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3000",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Purchase Requests API",
	Description:      "Purchase request approvals and category catalog.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

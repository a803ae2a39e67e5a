// Package docs registers the OpenAPI description of the content API with
// swag so echo-swagger can serve it under /swagger/. Regenerate the template
// with `swag init -g cmd/server/main.go` after changing handler annotations.
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
        "/auth/signup": {"post": {"tags": ["auth"], "summary": "Create an account", "responses": {"201": {"description": "Created"}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Login", "responses": {"200": {"description": "OK"}}}},
        "/auth/verify": {"get": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Verify the current credential", "responses": {"200": {"description": "OK"}}}},
        "/auth/refresh": {"post": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Refresh the current credential", "responses": {"200": {"description": "OK"}}}},
        "/auth/logout": {"post": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Logout", "responses": {"204": {"description": "No Content"}}}},
        "/v1/me": {"get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Current actor and capabilities", "responses": {"200": {"description": "OK"}}}},
        "/v1/users/{id}/role": {"put": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Change a user's role", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/v1/users/{id}/active": {"put": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Activate or deactivate a user", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/v1/tools/embed": {"post": {"tags": ["tools"], "summary": "Resolve a video URL to its player URL", "responses": {"200": {"description": "OK"}}}},
        "/v1/tools/preview": {"post": {"tags": ["tools"], "summary": "Sanitize HTML and extract its preview", "responses": {"200": {"description": "OK"}}}},
        "/v1/{kind}": {
            "get": {"tags": ["content"], "summary": "List posts or sermons", "parameters": [{"enum": ["posts", "sermons"], "type": "string", "name": "kind", "in": "path", "required": true}, {"type": "string", "name": "category", "in": "query"}, {"type": "integer", "name": "page", "in": "query"}, {"type": "integer", "name": "limit", "in": "query"}], "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["content"], "summary": "Publish a post or sermon", "parameters": [{"enum": ["posts", "sermons"], "type": "string", "name": "kind", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}}}
        },
        "/v1/{kind}/{id}": {
            "get": {"tags": ["content"], "summary": "Get a post or sermon", "parameters": [{"enum": ["posts", "sermons"], "type": "string", "name": "kind", "in": "path", "required": true}, {"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["content"], "summary": "Edit a post or sermon", "parameters": [{"enum": ["posts", "sermons"], "type": "string", "name": "kind", "in": "path", "required": true}, {"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["content"], "summary": "Delete a post or sermon", "parameters": [{"enum": ["posts", "sermons"], "type": "string", "name": "kind", "in": "path", "required": true}, {"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}}}
        },
        "/v1/{kind}/{id}/pin": {"put": {"security": [{"BearerAuth": []}], "tags": ["content"], "summary": "Pin or unpin an item", "parameters": [{"enum": ["posts", "sermons"], "type": "string", "name": "kind", "in": "path", "required": true}, {"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "422": {"description": "Pinned item limit reached"}}}},
        "/health": {"get": {"tags": ["health"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}},
        "/health/ready": {"get": {"tags": ["health"], "summary": "Readiness probe", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Content Platform API",
	Description:      "Role-gated posts and sermons with sanitized rich text, video embeds and pinning.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

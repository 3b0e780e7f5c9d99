// Package docs registers the OpenAPI description served at /swagger/*.
// Regenerate the full description from the handler annotations with `swag init -g cmd/server/main.go`.
package docs

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
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Register a new user"}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Login user"}},
        "/auth/refresh": {"post": {"tags": ["auth"], "summary": "Refresh access token"}},
        "/auth/logout": {"post": {"tags": ["auth"], "summary": "Logout user"}},
        "/me": {"get": {"tags": ["users"], "summary": "Get my profile", "security": [{"BearerAuth": []}]}},
        "/books": {"get": {"tags": ["books"], "summary": "List books", "security": [{"BearerAuth": []}]}},
        "/books/search": {"get": {"tags": ["books"], "summary": "Search books", "security": [{"BearerAuth": []}]}},
        "/books/{id}": {"get": {"tags": ["books"], "summary": "Get book by ID", "security": [{"BearerAuth": []}]}},
        "/loans": {"get": {"tags": ["loans"], "summary": "List my open loans", "security": [{"BearerAuth": []}]}},
        "/loans/borrow": {"post": {"tags": ["loans"], "summary": "Borrow a book", "security": [{"BearerAuth": []}]}},
        "/loans/return": {"post": {"tags": ["loans"], "summary": "Return a borrowed book", "security": [{"BearerAuth": []}]}},
        "/loans/history": {"get": {"tags": ["loans"], "summary": "List all my loans including returned ones", "security": [{"BearerAuth": []}]}},
        "/loans/eligibility": {"get": {"tags": ["loans"], "summary": "Check whether I may borrow now", "security": [{"BearerAuth": []}]}},
        "/admin/books": {
            "get": {"tags": ["admin"], "summary": "List every book with borrowed counts", "security": [{"BearerAuth": []}]},
            "post": {"tags": ["admin"], "summary": "Add a book to the catalog", "security": [{"BearerAuth": []}]}
        },
        "/admin/books/{id}": {
            "put": {"tags": ["admin"], "summary": "Modify a book", "security": [{"BearerAuth": []}]},
            "delete": {"tags": ["admin"], "summary": "Delete a book and its loan records", "security": [{"BearerAuth": []}]}
        },
        "/admin/users": {"get": {"tags": ["admin"], "summary": "List users", "security": [{"BearerAuth": []}]}},
        "/admin/users/{username}/loans": {"get": {"tags": ["admin"], "summary": "List a user's open loans", "security": [{"BearerAuth": []}]}},
        "/admin/loans/overdue": {"get": {"tags": ["admin"], "summary": "List every overdue loan", "security": [{"BearerAuth": []}]}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{"http"},
	Title:            "Library Desk API",
	Description:      "Library catalog and loan ledger with JWT authentication.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

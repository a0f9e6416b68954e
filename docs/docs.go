// Package docs registers the splitledger OpenAPI description with swag so
// http-swagger can serve it at /swagger/*.
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
        "/users": {
            "post": {"tags": ["users"], "summary": "Create a new user", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}
        },
        "/users/me/friends": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "List my friends", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Add a friend", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}}
        },
        "/users/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Get user by ID", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/groups": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["groups"], "summary": "List my groups", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["groups"], "summary": "Create a new group", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/groups/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["groups"], "summary": "Get group by ID", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["groups"], "summary": "Update a group", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["groups"], "summary": "Archive a group", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}}}
        },
        "/groups/{id}/members": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["groups"], "summary": "Add member to group", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}}
        },
        "/groups/{id}/members/{userId}": {
            "delete": {"security": [{"BearerAuth": []}], "tags": ["groups"], "summary": "Remove member from group", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "string", "name": "userId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        },
        "/groups/{id}/expenses": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["groups"], "summary": "List group expenses", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        },
        "/groups/{id}/balances": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["groups"], "summary": "Get group balances", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        },
        "/expenses": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["expenses"], "summary": "List my expenses", "parameters": [{"type": "string", "name": "group_id", "in": "query"}], "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["expenses"], "summary": "Create a new expense", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}}}
        },
        "/expenses/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["expenses"], "summary": "Get expense by ID", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["expenses"], "summary": "Update an expense", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["expenses"], "summary": "Delete an expense", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}}
        },
        "/expenses/{id}/settle": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["expenses"], "summary": "Settle a share", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}}
        },
        "/balances": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["balances"], "summary": "Get my net balances", "responses": {"200": {"description": "OK"}}}
        },
        "/balances/{userId}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["balances"], "summary": "Get net balance with a user", "parameters": [{"type": "string", "name": "userId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
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
	Title:            "Splitledger API",
	Description:      "Shared expense ledger: expenses, splits, settlements and balances.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

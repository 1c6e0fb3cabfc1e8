// Package docs holds the OpenAPI 2.0 document served under /swagger. It is
// written to match the swag annotations on the user handlers and the router;
// go generate rewrites it from those annotations.
package docs

//go:generate swag init --dir .. --generalInfo internal/api/router.go --output . --outputTypes go

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
        "/api/v1/users": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns every non-deleted user ordered by first name, descending.",
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "List active users",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.listUsersResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "The target is selected by user_name; the stored id is always kept.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Update a user",
                "parameters": [
                    {"description": "User details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.updateUserRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.userResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "The account is always created enabled and mirrored to the identity provider.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Create a user",
                "parameters": [
                    {"description": "User details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.createUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.userResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/v1/users/roles/{role}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Role description is matched case-insensitively.",
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "List active users by role",
                "parameters": [
                    {"type": "string", "description": "Role description (e.g. Manager)", "name": "role", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.listUsersResponse"}}
                }
            }
        },
        "/api/v1/users/{username}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Get an active user by username",
                "parameters": [
                    {"type": "string", "description": "Username", "name": "username", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.userResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Managers with live projects and employees with live tasks cannot be deleted.",
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Soft-delete a user",
                "parameters": [
                    {"type": "string", "description": "Username", "name": "username", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.messageResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/v1/users/{username}/purge": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Administrative removal without eligibility checks or identity sync.",
                "tags": ["users"],
                "summary": "Permanently remove a user",
                "parameters": [
                    {"type": "string", "description": "Username", "name": "username", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        }
    },
    "definitions": {
        "handler.createUserRequest": {
            "type": "object",
            "required": ["first_name", "last_name", "password", "role", "user_name"],
            "properties": {
                "enabled": {"type": "boolean"},
                "first_name": {"type": "string"},
                "gender": {"type": "string", "enum": ["MALE", "FEMALE"]},
                "last_name": {"type": "string"},
                "password": {"type": "string", "minLength": 4},
                "phone": {"type": "string"},
                "role": {"$ref": "#/definitions/handler.roleRequest"},
                "user_name": {"type": "string"}
            }
        },
        "handler.errorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        },
        "handler.listUsersResponse": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/handler.userResponse"}},
                "total": {"type": "integer"}
            }
        },
        "handler.messageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "handler.roleRequest": {
            "type": "object",
            "required": ["description"],
            "properties": {
                "description": {"type": "string"},
                "id": {"type": "integer"}
            }
        },
        "handler.roleResponse": {
            "type": "object",
            "properties": {
                "description": {"type": "string"},
                "id": {"type": "integer"}
            }
        },
        "handler.updateUserRequest": {
            "type": "object",
            "required": ["first_name", "last_name", "role", "user_name"],
            "properties": {
                "enabled": {"type": "boolean"},
                "first_name": {"type": "string"},
                "gender": {"type": "string", "enum": ["MALE", "FEMALE"]},
                "id": {"type": "integer"},
                "last_name": {"type": "string"},
                "password": {"type": "string", "minLength": 4},
                "phone": {"type": "string"},
                "role": {"$ref": "#/definitions/handler.roleRequest"},
                "user_name": {"type": "string"}
            }
        },
        "handler.userResponse": {
            "type": "object",
            "properties": {
                "enabled": {"type": "boolean"},
                "first_name": {"type": "string"},
                "gender": {"type": "string"},
                "id": {"type": "integer"},
                "last_name": {"type": "string"},
                "phone": {"type": "string"},
                "role": {"$ref": "#/definitions/handler.roleResponse"},
                "user_name": {"type": "string"}
            }
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
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "User Service API",
	Description:      "User lifecycle management with governed deletion and identity provider sync.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

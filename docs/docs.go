// Package docs registers the OpenAPI document served under /swagger.
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
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Sign in",
                "parameters": [
                    {"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.AuthResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/auth/signup": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Create a member account in an existing tenant",
                "parameters": [
                    {"description": "New account", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.SignupRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/services.AuthResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/tenants/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["tenants"],
                "summary": "The caller's tenant",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.TenantView"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/tenants/{slug}/invite": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tenants"],
                "summary": "Invite a user into the caller's tenant",
                "parameters": [
                    {"type": "string", "description": "Tenant slug", "name": "slug", "in": "path", "required": true},
                    {"description": "Invitee", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.InviteRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/services.InviteResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/tenants/{slug}/upgrade": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["tenants"],
                "summary": "Upgrade the caller's tenant to the pro plan",
                "parameters": [
                    {"type": "string", "description": "Tenant slug", "name": "slug", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.UpgradeResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/notes": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["notes"],
                "summary": "List the tenant's notes",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Note"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["notes"],
                "summary": "Create a note",
                "parameters": [
                    {"description": "Note fields", "name": "body", "in": "body", "schema": {"$ref": "#/definitions/handlers.NoteFields"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Note"}},
                    "402": {"description": "Payment Required", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/notes/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["notes"],
                "summary": "Get a note",
                "parameters": [
                    {"type": "string", "description": "Note ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Note"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Only string-valued title and content fields are applied.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["notes"],
                "summary": "Update a note",
                "parameters": [
                    {"type": "string", "description": "Note ID", "name": "id", "in": "path", "required": true},
                    {"description": "Note fields", "name": "body", "in": "body", "schema": {"$ref": "#/definitions/handlers.NoteFields"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Note"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["notes"],
                "summary": "Delete a note",
                "parameters": [
                    {"type": "string", "description": "Note ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Note"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/stripe/config": {
            "get": {
                "produces": ["application/json"],
                "tags": ["billing"],
                "summary": "Payment integration settings",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.BillingConfig"}}
                }
            }
        },
        "/billing/checkout": {
            "post": {
                "description": "Returns a null url when payments are not configured; the admin upgrade endpoint completes the upgrade in that case.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["billing"],
                "summary": "Start a hosted checkout",
                "parameters": [
                    {"description": "Plan and tenant", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CheckoutRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.CheckoutResult"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/ping": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Connectivity check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "common.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "handlers.CheckoutRequest": {
            "type": "object",
            "properties": {"plan": {"type": "string", "enum": ["free", "pro"]}, "tenantSlug": {"type": "string"}}
        },
        "handlers.NoteFields": {
            "type": "object",
            "properties": {"title": {"type": "string"}, "content": {"type": "string"}}
        },
        "models.BillingConfig": {
            "type": "object",
            "properties": {
                "enabled": {"type": "boolean"},
                "paymentLinkBasic": {"type": "string"},
                "paymentLinkPro": {"type": "string"},
                "publishableKey": {"type": "string"}
            }
        },
        "models.CheckoutResult": {
            "type": "object",
            "properties": {"message": {"type": "string"}, "url": {"type": "string"}}
        },
        "models.Note": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "tenantId": {"type": "string"},
                "userId": {"type": "string"},
                "title": {"type": "string"},
                "content": {"type": "string"},
                "createdAt": {"type": "string", "format": "date-time"},
                "updatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "models.TenantView": {
            "type": "object",
            "properties": {"name": {"type": "string"}, "plan": {"type": "string", "enum": ["free", "pro"]}, "slug": {"type": "string"}}
        },
        "models.UserView": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "id": {"type": "string"}, "role": {"type": "string", "enum": ["admin", "member"]}}
        },
        "services.AuthResponse": {
            "type": "object",
            "properties": {
                "tenant": {"$ref": "#/definitions/models.TenantView"},
                "token": {"type": "string"},
                "user": {"$ref": "#/definitions/models.UserView"}
            }
        },
        "services.InviteRequest": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "role": {"type": "string", "enum": ["admin", "member"]}}
        },
        "services.InviteResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}, "user": {"$ref": "#/definitions/models.UserView"}}
        },
        "services.LoginRequest": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}, "tenantSlug": {"type": "string"}}
        },
        "services.SignupRequest": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}, "tenantSlug": {"type": "string"}}
        },
        "services.UpgradeResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}, "plan": {"type": "string", "enum": ["free", "pro"]}}
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
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Notes SaaS API",
	Description:      "Multi-tenant notes with role-based access and a free/pro plan gate.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

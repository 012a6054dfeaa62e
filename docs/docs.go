// Package docs registers the OpenAPI description served under /swagger/.
// Regenerate with: swag init -g cmd/onboarding/docs.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "E-Souk Support",
            "email": "support@esouk.example"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/onboarding": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Current wizard step, shop, added products and progress of the calling vendor",
                "produces": ["application/json"],
                "tags": ["Onboarding"],
                "summary": "Get onboarding state",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/api/onboarding/stream": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Server-sent events carrying the state after every change",
                "produces": ["text/event-stream"],
                "tags": ["Onboarding"],
                "summary": "Stream onboarding state",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/onboarding/progress": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Onboarding"],
                "summary": "Get onboarding progress",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/onboarding/shop": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Validates the shop and creates it on the backend in one call",
                "consumes": ["application/json", "multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Onboarding"],
                "summary": "Create shop",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Invalid shop"}, "409": {"description": "Conflict"}}
            }
        },
        "/api/onboarding/shop/prepare": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Onboarding"],
                "summary": "Stage shop data for confirmation",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid shop"}}
            }
        },
        "/api/onboarding/shop/confirm": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Onboarding"],
                "summary": "Create the staged shop",
                "responses": {"201": {"description": "Created"}, "409": {"description": "No pending shop"}}
            }
        },
        "/api/onboarding/product/variants": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Onboarding"],
                "summary": "Add a variant to the product being assembled",
                "responses": {"200": {"description": "OK"}, "409": {"description": "Duplicate variant"}}
            }
        },
        "/api/onboarding/product/images": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "tags": ["Onboarding"],
                "summary": "Attach an image to the product being assembled",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Invalid image"}}
            }
        },
        "/api/onboarding/product/submit": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Onboarding"],
                "summary": "Create the assembled product and its variants",
                "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}
            }
        },
        "/api/onboarding/step": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Onboarding"],
                "summary": "Move the wizard to a step",
                "responses": {"200": {"description": "OK"}, "409": {"description": "Invalid transition"}}
            }
        },
        "/api/onboarding/complete": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Onboarding"],
                "summary": "Finish onboarding",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}, "503": {"description": "State store unreachable"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the vendor JWT.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8084",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "E-Souk Onboarding Service API",
	Description:      "Guides a vendor through creating a shop and adding its first products",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

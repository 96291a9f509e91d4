// Package docs holds the OpenAPI description served under /swagger.
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/healthz": {
            "get": {
                "tags": ["health"],
                "summary": "Liveness check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/entries": {
            "get": {
                "produces": ["application/json"],
                "tags": ["entries"],
                "summary": "List journal entries",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.EntryListResult"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            },
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["capture"],
                "summary": "Capture a journal entry",
                "parameters": [
                    {"type": "file", "description": "Photo", "name": "photo", "in": "formData"},
                    {"type": "number", "description": "Latitude", "name": "latitude", "in": "formData"},
                    {"type": "number", "description": "Longitude", "name": "longitude", "in": "formData"},
                    {"type": "string", "description": "granted or denied", "name": "camera_permission", "in": "formData"},
                    {"type": "string", "description": "granted or denied", "name": "location_permission", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Entry"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            },
            "delete": {
                "tags": ["entries"],
                "summary": "Delete all journal entries",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/entries/retry": {
            "post": {
                "produces": ["application/json"],
                "tags": ["capture"],
                "summary": "Retry a failed save",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Entry"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/entries/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["entries"],
                "summary": "Get a journal entry",
                "parameters": [{"type": "string", "description": "Entry ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Entry"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            },
            "delete": {
                "tags": ["entries"],
                "summary": "Delete a journal entry",
                "parameters": [{"type": "string", "description": "Entry ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/entries/{id}/image": {
            "get": {
                "produces": ["application/octet-stream"],
                "tags": ["entries"],
                "summary": "Download the photo of a journal entry",
                "parameters": [{"type": "string", "description": "Entry ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "307": {"description": "Temporary Redirect"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/capture/state": {
            "get": {
                "produces": ["application/json"],
                "tags": ["capture"],
                "summary": "Capture pipeline state",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/service.CaptureState"}}}
            }
        },
        "/preferences": {
            "get": {
                "produces": ["application/json"],
                "tags": ["preferences"],
                "summary": "Get preferences",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Preferences"}}}
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["preferences"],
                "summary": "Update preferences",
                "parameters": [{"description": "Preferences", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.preferencesRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Preferences"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/preferences/toggle": {
            "post": {
                "produces": ["application/json"],
                "tags": ["preferences"],
                "summary": "Toggle dark mode",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Preferences"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        }
    },
    "definitions": {
        "handler.errorEnvelope": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "retryable": {"type": "boolean"}
            }
        },
        "handler.errorPayload": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/handler.errorEnvelope"},
                "request_id": {"type": "string"}
            }
        },
        "handler.preferencesRequest": {
            "type": "object",
            "required": ["dark_mode"],
            "properties": {"dark_mode": {"type": "boolean"}}
        },
        "model.Entry": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "image": {"type": "string"},
                "location": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        },
        "model.Preferences": {
            "type": "object",
            "properties": {"dark_mode": {"type": "boolean"}}
        },
        "service.CaptureState": {
            "type": "object",
            "properties": {
                "pending": {"type": "boolean"},
                "pending_image": {"type": "string"},
                "pending_location": {"type": "string"},
                "stage": {"type": "string"}
            }
        },
        "service.EntryListResult": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/model.Entry"}},
                "total": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Photo Journal API",
	Description:      "Capture photos into a location-tagged journal.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

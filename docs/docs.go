// Package docs registers the Swagger spec served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/catalogo": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Machine catalog",
                "parameters": [
                    {"type": "string", "name": "search", "in": "query"},
                    {"type": "string", "name": "capacity", "in": "query"},
                    {"type": "number", "name": "capacity_min", "in": "query"},
                    {"type": "number", "name": "capacity_max", "in": "query"},
                    {"type": "string", "name": "status", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/catalogo/api/disponibilidad/{machine_id}": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Check machine availability",
                "parameters": [
                    {"type": "integer", "name": "machine_id", "in": "path", "required": true},
                    {"type": "string", "name": "date", "in": "query", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            }
        },
        "/reservas/crear": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Reservations"],
                "summary": "Create reservation",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}
            }
        },
        "/reservas/{id}/cancelar": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Reservations"],
                "summary": "Cancel own reservation",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "422": {"description": "Unprocessable Entity"}}
            }
        },
        "/admin/pendientes/{id}/asignar": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Admin"],
                "summary": "Assign operator",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "422": {"description": "Unprocessable Entity"}}
            }
        },
        "/operator/reserva/{id}/entregar": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Operator"],
                "summary": "Deliver reservation",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "422": {"description": "Unprocessable Entity"}}
            }
        },
        "/operator/reserva/{id}/cancelar": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Operator"],
                "summary": "Cancel assigned reservation",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "422": {"description": "Unprocessable Entity"}}
            }
        },
        "/reportes/reservas.csv": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv"],
                "tags": ["Reports"],
                "summary": "Export reservations",
                "parameters": [
                    {"type": "string", "name": "start_date", "in": "query"},
                    {"type": "string", "name": "end_date", "in": "query"},
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "integer", "name": "user_id", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        }
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

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "WashTech Rental API",
	Description:      "Washing machine rental: catalog, reservations, operator workflow and admin oversight",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

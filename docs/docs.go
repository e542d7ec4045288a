// Package docs serves the swagger description of the book list api.
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
        "/status": {
            "get": {
                "produces": ["application/json"],
                "summary": "Service status with the number of saved books",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/books": {
            "get": {
                "produces": ["application/json"],
                "summary": "List books matching an optional search query",
                "parameters": [
                    {"type": "string", "name": "q", "in": "query", "description": "case-insensitive search on title, author and note"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Add a book on top of the list",
                "parameters": [
                    {"name": "book", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BookInput"}}
                ],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            },
            "delete": {
                "produces": ["application/json"],
                "summary": "Delete all books",
                "parameters": [
                    {"type": "boolean", "name": "confirm", "in": "query", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/v1/books/{id}": {
            "get": {
                "produces": ["application/json"],
                "summary": "Get one book",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Edit one book",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "book", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BookInput"}}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            },
            "delete": {
                "produces": ["application/json"],
                "summary": "Delete one book",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/v1/books/{id}/purchased": {
            "patch": {
                "produces": ["application/json"],
                "summary": "Flip the purchased flag of one book",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/v1/pick": {
            "get": {
                "produces": ["application/json"],
                "summary": "Pick one random book",
                "parameters": [
                    {"type": "string", "name": "q", "in": "query"},
                    {"type": "string", "name": "mode", "in": "query", "enum": ["all", "purchased-only", "unpurchased-only"]}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/v1/export": {
            "get": {
                "produces": ["application/json"],
                "summary": "Download the whole list as a json file",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/import/preview": {
            "post": {
                "consumes": ["application/json", "multipart/form-data"],
                "produces": ["application/json"],
                "summary": "Count existing and incoming books of an import file",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "413": {"description": "Request Entity Too Large"}, "429": {"description": "Too Many Requests"}}
            }
        },
        "/v1/import": {
            "post": {
                "consumes": ["application/json", "multipart/form-data"],
                "produces": ["application/json"],
                "summary": "Replace or merge the list with an import file",
                "parameters": [
                    {"type": "string", "name": "mode", "in": "query", "required": true, "enum": ["replace", "merge"]}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "413": {"description": "Request Entity Too Large"}, "429": {"description": "Too Many Requests"}}
            }
        }
    },
    "definitions": {
        "BookInput": {
            "type": "object",
            "required": ["title"],
            "properties": {
                "title": {"type": "string"},
                "author": {"type": "string"},
                "url": {"type": "string"},
                "note": {"type": "string"},
                "purchased": {"type": "boolean"}
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
	Title:            "Book List API",
	Description:      "Personal reading list with search, random pick and json import/export.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

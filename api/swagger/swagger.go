package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Edu CRM API",
        "description": "Detailed enquiry profile wizard for the overseas education CRM",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [
        {"BearerAuth": []}
    ],
    "tags": [
        {"name": "Wizard", "description": "Seven step detailed enquiry profile wizard"},
        {"name": "Catalog", "description": "Lookup lists used by the wizard"},
        {"name": "Files", "description": "Signed document downloads"}
    ],
    "paths": {
        "/wizards": {
            "post": {
                "tags": ["Wizard"],
                "summary": "Open a detailed enquiry wizard",
                "parameters": [
                    {"in": "body", "name": "payload", "required": false, "schema": {"$ref": "#/definitions/MountWizardRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/WizardStateEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/wizards/{id}": {
            "get": {
                "tags": ["Wizard"],
                "summary": "Get wizard state",
                "parameters": [
                    {"$ref": "#/parameters/SessionID"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/WizardStateEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Wizard"],
                "summary": "Close a wizard without saving",
                "parameters": [
                    {"$ref": "#/parameters/SessionID"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/wizards/{id}/reseed": {
            "post": {
                "tags": ["Wizard"],
                "summary": "Re-seed a wizard from a new source",
                "parameters": [
                    {"$ref": "#/parameters/SessionID"},
                    {"in": "body", "name": "payload", "required": false, "schema": {"$ref": "#/definitions/MountWizardRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/WizardStateEnvelope"}}
                }
            }
        },
        "/wizards/{id}/steps/{step}": {
            "get": {
                "tags": ["Wizard"],
                "summary": "Render one wizard step",
                "parameters": [
                    {"$ref": "#/parameters/SessionID"},
                    {"$ref": "#/parameters/Step"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Wizard"],
                "summary": "Edit the fields of the active step",
                "consumes": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/SessionID"},
                    {"$ref": "#/parameters/Step"},
                    {"in": "body", "name": "payload", "required": true, "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/WizardStateEnvelope"}},
                    "412": {"description": "Step is not active", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/wizards/{id}/touch": {
            "post": {
                "tags": ["Wizard"],
                "summary": "Mark fields as touched and validate them",
                "parameters": [
                    {"$ref": "#/parameters/SessionID"},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/TouchFieldsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/WizardStateEnvelope"}}
                }
            }
        },
        "/wizards/{id}/lists/{group}": {
            "post": {
                "tags": ["Wizard"],
                "summary": "Append an item to a repeatable group",
                "parameters": [
                    {"$ref": "#/parameters/SessionID"},
                    {"in": "path", "name": "group", "required": true, "type": "string", "enum": ["academics", "exams", "work_experiences", "refusals", "confirmed_services"]},
                    {"in": "body", "name": "payload", "required": false, "schema": {"$ref": "#/definitions/AppendItemRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/wizards/{id}/lists/{group}/{index}": {
            "delete": {
                "tags": ["Wizard"],
                "summary": "Remove an item from a repeatable group",
                "parameters": [
                    {"$ref": "#/parameters/SessionID"},
                    {"in": "path", "name": "group", "required": true, "type": "string"},
                    {"in": "path", "name": "index", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/WizardStateEnvelope"}}
                }
            }
        },
        "/wizards/{id}/next": {
            "post": {
                "tags": ["Wizard"],
                "summary": "Validate the active step and advance",
                "parameters": [
                    {"$ref": "#/parameters/SessionID"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/WizardStateEnvelope"}},
                    "422": {"description": "Step has invalid fields", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/wizards/{id}/prev": {
            "post": {
                "tags": ["Wizard"],
                "summary": "Go back one step",
                "parameters": [
                    {"$ref": "#/parameters/SessionID"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/WizardStateEnvelope"}}
                }
            }
        },
        "/wizards/{id}/documents/{field}": {
            "put": {
                "tags": ["Wizard"],
                "summary": "Stage a PDF for a document slot",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"$ref": "#/parameters/SessionID"},
                    {"$ref": "#/parameters/DocumentField"},
                    {"in": "formData", "name": "file", "required": true, "type": "file"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/WizardStateEnvelope"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "415": {"description": "Not a PDF", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Wizard"],
                "summary": "Clear a document slot",
                "parameters": [
                    {"$ref": "#/parameters/SessionID"},
                    {"$ref": "#/parameters/DocumentField"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/WizardStateEnvelope"}}
                }
            }
        },
        "/wizards/{id}/review": {
            "get": {
                "tags": ["Wizard"],
                "summary": "Read-only summary of the draft",
                "produces": ["application/json", "text/csv", "application/pdf"],
                "parameters": [
                    {"$ref": "#/parameters/SessionID"},
                    {"in": "query", "name": "format", "required": false, "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/wizards/{id}/submit": {
            "post": {
                "tags": ["Wizard"],
                "summary": "Upload staged documents and save the detailed profile",
                "parameters": [
                    {"$ref": "#/parameters/SessionID"}
                ],
                "responses": {
                    "200": {"description": "Profile updated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "201": {"description": "Profile created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Upload or persistence failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/catalog/services": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List active services",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/catalog/services/refresh": {
            "post": {
                "tags": ["Catalog"],
                "summary": "Drop the cached services list",
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/catalog/exam-types": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List exam types with their sub-scores",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/catalog/countries": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List countries for refusal history",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/catalog/enquiry-statuses": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List enquiry pipeline statuses",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/files/{key}": {
            "get": {
                "tags": ["Files"],
                "summary": "Download a stored document",
                "security": [],
                "produces": ["application/pdf"],
                "parameters": [
                    {"in": "path", "name": "key", "required": true, "type": "string"},
                    {"in": "query", "name": "token", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "403": {"description": "Invalid or expired token"},
                    "404": {"description": "Not Found"}
                }
            }
        }
    },
    "parameters": {
        "SessionID": {"in": "path", "name": "id", "required": true, "type": "string"},
        "Step": {"in": "path", "name": "step", "required": true, "type": "integer", "minimum": 1, "maximum": 7},
        "DocumentField": {
            "in": "path",
            "name": "field",
            "required": true,
            "type": "string",
            "enum": ["tenth_document", "twelfth_document", "graduation_marksheet", "graduation_certificate", "ug_marksheet", "ug_certificate", "work_experience_document", "passport_document", "offer_letter", "ielts_result", "toefl_result", "pte_result", "duolingo_result", "gre_result", "gmat_result"]
        }
    },
    "definitions": {
        "MountWizardRequest": {
            "type": "object",
            "properties": {
                "enquiryId": {"type": "string"},
                "profileId": {"type": "string"}
            }
        },
        "TouchFieldsRequest": {
            "type": "object",
            "required": ["fields"],
            "properties": {
                "fields": {"type": "array", "items": {"type": "string"}}
            }
        },
        "AppendItemRequest": {
            "type": "object",
            "properties": {
                "examType": {"type": "string", "enum": ["IELTS", "TOEFL", "PTE", "DUOLINGO", "GRE", "GMAT", "SAT"]}
            }
        },
        "WizardState": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "enquiryId": {"type": "string"},
                "profileId": {"type": "string"},
                "editing": {"type": "boolean"},
                "step": {"type": "integer"},
                "steps": {"type": "array", "items": {"type": "object"}},
                "data": {"type": "object"},
                "documents": {"type": "array", "items": {"type": "object"}},
                "view": {"type": "object"},
                "expiresAt": {"type": "string", "format": "date-time"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "Notification": {
            "type": "object",
            "properties": {
                "kind": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "notifications": {"type": "array", "items": {"$ref": "#/definitions/Notification"}},
                "meta": {"type": "object"}
            }
        },
        "WizardStateEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/WizardState"},
                "error": {"$ref": "#/definitions/APIError"},
                "notifications": {"type": "array", "items": {"$ref": "#/definitions/Notification"}}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}

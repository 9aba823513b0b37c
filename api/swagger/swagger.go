package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Lecturer Claims API",
        "description": "Submission, approval and monthly reporting of lecturer claims.",
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
        {"name": "Claims", "description": "Claim submission and approval"},
        {"name": "Summaries", "description": "Monthly lecturer and center reports"}
    ],
    "paths": {
        "/claims": {
            "get": {
                "tags": ["Claims"],
                "summary": "List visible claims",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "description": "comma separated PENDING,APPROVED,REJECTED"},
                    {"name": "claimType", "in": "query", "type": "string", "enum": ["TEACHING", "TRANSPORTATION", "THESIS_PROJECT"]},
                    {"name": "centerId", "in": "query", "type": "string"},
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "month", "in": "query", "type": "integer"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Claims"],
                "summary": "Submit a claim",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitClaimRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/claims/{id}": {
            "get": {
                "tags": ["Claims"],
                "summary": "Get a claim",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Claims"],
                "summary": "Delete a claim",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/claims/{id}/process": {
            "post": {
                "tags": ["Claims"],
                "summary": "Approve or reject a pending claim",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ProcessClaimRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already processed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/summaries/lecturers/{lecturerId}": {
            "get": {
                "tags": ["Summaries"],
                "summary": "Monthly summary for a lecturer",
                "parameters": [
                    {"name": "lecturerId", "in": "path", "required": true, "type": "string"},
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "month", "in": "query", "type": "integer"},
                    {"name": "claimType", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/summaries/lecturers/{lecturerId}/export": {
            "get": {
                "tags": ["Summaries"],
                "summary": "Export a lecturer summary",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "lecturerId", "in": "path", "required": true, "type": "string"},
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "month", "in": "query", "type": "integer"},
                    {"name": "claimType", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Document", "schema": {"type": "file"}}
                }
            }
        },
        "/summaries/centers": {
            "get": {
                "tags": ["Summaries"],
                "summary": "Monthly approved totals per center",
                "parameters": [
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "month", "in": "query", "type": "integer"},
                    {"name": "centerId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/summaries/centers/export": {
            "get": {
                "tags": ["Summaries"],
                "summary": "Export center totals",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "month", "in": "query", "type": "integer"},
                    {"name": "centerId", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Document", "schema": {"type": "file"}}
                }
            }
        }
    },
    "definitions": {
        "SubmitClaimRequest": {
            "type": "object",
            "properties": {
                "centerId": {"type": "string"},
                "claimType": {"type": "string", "enum": ["TEACHING", "TRANSPORTATION", "THESIS_PROJECT"]},
                "courseCode": {"type": "string"},
                "courseTitle": {"type": "string"},
                "teachingDate": {"type": "string", "format": "date"},
                "teachingStartTime": {"type": "string", "example": "09:00"},
                "teachingEndTime": {"type": "string", "example": "11:30"},
                "transport": {"$ref": "#/definitions/TeachingTransportRequest"},
                "transportType": {"type": "string", "enum": ["PRIVATE", "PUBLIC"]},
                "origin": {"type": "string"},
                "destination": {"type": "string"},
                "transportAmount": {"type": "number"},
                "registrationNumber": {"type": "string"},
                "cubicCapacity": {"type": "integer"},
                "thesisType": {"type": "string", "enum": ["SUPERVISION", "EXAMINATION"]},
                "supervisionRank": {"type": "string"},
                "students": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/SupervisedStudentRequest"}
                },
                "examCourseCode": {"type": "string"},
                "examDate": {"type": "string", "format": "date"}
            },
            "required": ["claimType"]
        },
        "TeachingTransportRequest": {
            "type": "object",
            "properties": {
                "outboundDate": {"type": "string", "format": "date"},
                "outboundFrom": {"type": "string"},
                "outboundTo": {"type": "string"},
                "returnDate": {"type": "string", "format": "date"},
                "returnFrom": {"type": "string"},
                "returnTo": {"type": "string"}
            }
        },
        "SupervisedStudentRequest": {
            "type": "object",
            "properties": {
                "studentName": {"type": "string"},
                "thesisTitle": {"type": "string"}
            }
        },
        "ProcessClaimRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["APPROVED", "REJECTED"]}
            },
            "required": ["status"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "field": {"type": "string"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
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

package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Workshop API",
        "description": "Workshop registration, attendance and completion rewards",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Workshops", "description": "Workshop lifecycle and capacity"},
        {"name": "Registrations", "description": "Interest, booking and cancellation"},
        {"name": "Attendance", "description": "Bulk attendance recording"},
        {"name": "Certificates", "description": "Issued completion certificates"},
        {"name": "JoyCoins", "description": "Reward ledger"}
    ],
    "paths": {
        "/workshops": {
            "get": {
                "tags": ["Workshops"],
                "summary": "List workshops",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "organizerId", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Workshops"],
                "summary": "Create workshop draft",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateWorkshopRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/workshops/{id}": {
            "get": {
                "tags": ["Workshops"],
                "summary": "Get workshop detail with seat usage",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Workshops"],
                "summary": "Update workshop details",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateWorkshopRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/workshops/{id}/status": {
            "patch": {
                "tags": ["Workshops"],
                "summary": "Move workshop along its lifecycle",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Invalid transition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/workshops/{id}/capacity": {
            "patch": {
                "tags": ["Workshops"],
                "summary": "Change workshop seat capacity",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CapacityRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Below seated count", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/workshops/{id}/interest": {
            "post": {
                "tags": ["Registrations"],
                "summary": "Register interest in a workshop",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/workshops/{id}/book": {
            "post": {
                "tags": ["Registrations"],
                "summary": "Book a seat in a workshop",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Workshop fully booked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/workshops/{id}/registration": {
            "delete": {
                "tags": ["Registrations"],
                "summary": "Cancel a registration",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/workshops/{id}/registrations": {
            "get": {
                "tags": ["Registrations"],
                "summary": "List registrations for a workshop",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/workshops/{id}/attendance": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Record attendance outcomes for a workshop",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkRecordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/workshops/{id}/attendance/{participantId}": {
            "delete": {
                "tags": ["Attendance"],
                "summary": "Revert an attended registration back to booked",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "participantId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Certificate already issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/workshops/{id}/attendance/{participantId}/issuance": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Re-run certificate and reward issuance for an attendee",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "participantId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Registration not attended", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/certificates/{number}": {
            "get": {
                "tags": ["Certificates"],
                "summary": "Verify a certificate by its number",
                "parameters": [
                    {"name": "number", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown certificate", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/participants/{participantId}/registrations": {
            "get": {
                "tags": ["Registrations"],
                "summary": "List a participant's registrations across workshops",
                "parameters": [
                    {"name": "participantId", "in": "path", "required": true, "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/participants/{participantId}/certificates": {
            "get": {
                "tags": ["Certificates"],
                "summary": "List a participant's certificates",
                "parameters": [
                    {"name": "participantId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/participants/{participantId}/joycoins": {
            "get": {
                "tags": ["JoyCoins"],
                "summary": "Get a participant's JoyCoin statement",
                "parameters": [
                    {"name": "participantId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/participants/{participantId}/joycoins/deductions": {
            "post": {
                "tags": ["JoyCoins"],
                "summary": "Deduct JoyCoins from a participant's balance",
                "parameters": [
                    {"name": "participantId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DeductRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Insufficient balance", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateWorkshopRequest": {
            "type": "object",
            "required": ["title", "organizer_id", "starts_at", "duration_minutes", "capacity"],
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "organizer_id": {"type": "string"},
                "starts_at": {"type": "string", "format": "date-time"},
                "duration_minutes": {"type": "integer"},
                "capacity": {"type": "integer"},
                "reward_amount": {"type": "integer"}
            }
        },
        "UpdateWorkshopRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "starts_at": {"type": "string", "format": "date-time"},
                "duration_minutes": {"type": "integer"},
                "reward_amount": {"type": "integer"}
            }
        },
        "StatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["DRAFT", "PUBLISHED", "COMPLETED", "CANCELLED"]}
            }
        },
        "CapacityRequest": {
            "type": "object",
            "required": ["capacity"],
            "properties": {
                "capacity": {"type": "integer"}
            }
        },
        "BulkRecordRequest": {
            "type": "object",
            "required": ["items"],
            "properties": {
                "items": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/AttendanceItem"}
                }
            }
        },
        "AttendanceItem": {
            "type": "object",
            "required": ["participant_id", "outcome"],
            "properties": {
                "participant_id": {"type": "string"},
                "outcome": {"type": "string", "enum": ["ATTENDED", "ABSENT"]},
                "duration_minutes": {"type": "integer"}
            }
        },
        "DeductRequest": {
            "type": "object",
            "required": ["amount"],
            "properties": {
                "amount": {"type": "integer"},
                "note": {"type": "string"}
            }
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
                "status": {"type": "integer"}
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

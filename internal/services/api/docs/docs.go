// Package docs holds the OpenAPI document of the feed import API and registers it with swag
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
  "openapi": "3.0.3",
  "info": {
    "title": "{{.Title}}",
    "description": "{{escape .Description}}",
    "version": "{{.Version}}"
  },
  "tags": [{"name": "Imports"}, {"name": "Meta"}],
  "paths": {
    "/feeds/imports": {
      "post": {
        "tags": ["Imports"],
        "summary": "Queue a feed import",
        "operationId": "enqueueImport",
        "requestBody": {
          "required": true,
          "content": {"application/json": {"schema": {"$ref": "#/components/schemas/EnqueueInput"}}}
        },
        "responses": {"202": {"$ref": "#/components/responses/Job"}}
      }
    },
    "/feeds/imports/{id}": {
      "get": {
        "tags": ["Imports"],
        "summary": "Import job state",
        "operationId": "getImport",
        "parameters": [{"$ref": "#/components/parameters/JobID"}],
        "responses": {"200": {"$ref": "#/components/responses/Job"}, "404": {"$ref": "#/components/responses/Error"}}
      }
    },
    "/feeds/imports/{id}/stats": {
      "get": {
        "tags": ["Imports"],
        "summary": "Import statistics",
        "operationId": "importStats",
        "parameters": [{"$ref": "#/components/parameters/JobID"}],
        "responses": {
          "200": {"description": "ok", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/StatsView"}}}},
          "404": {"$ref": "#/components/responses/Error"}
        }
      }
    },
    "/feeds/imports/{id}/errors": {
      "get": {
        "tags": ["Imports"],
        "summary": "Row error log of an import",
        "operationId": "importErrors",
        "parameters": [
          {"$ref": "#/components/parameters/JobID"},
          {"name": "cursor", "in": "query", "schema": {"type": "string"}},
          {"name": "limit", "in": "query", "schema": {"type": "integer", "minimum": 1, "maximum": 500}}
        ],
        "responses": {
          "200": {"description": "ok", "content": {"application/json": {"schema": {"type": "array", "items": {"$ref": "#/components/schemas/ErrorRow"}}}}},
          "404": {"$ref": "#/components/responses/Error"}
        }
      }
    },
    "/feeds/merchants/{merchantID}/probe": {
      "get": {
        "tags": ["Imports"],
        "summary": "Resolve feed compression",
        "operationId": "probeFeed",
        "parameters": [{"name": "merchantID", "in": "path", "required": true, "schema": {"type": "string"}}],
        "responses": {
          "200": {"description": "ok", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ProbeResult"}}}},
          "404": {"$ref": "#/components/responses/Error"}
        }
      }
    },
    "/meta/health": {"get": {"tags": ["Meta"], "summary": "Liveness", "responses": {"200": {"description": "ok"}}}},
    "/meta/ready": {"get": {"tags": ["Meta"], "summary": "Readiness of postgres, clickhouse and redis", "responses": {"200": {"description": "ok"}}}},
    "/meta/version": {"get": {"tags": ["Meta"], "summary": "Build version", "responses": {"200": {"description": "ok"}}}},
    "/meta/capabilities": {"get": {"tags": ["Meta"], "summary": "Supported variants, formats and compressions", "responses": {"200": {"description": "ok"}}}}
  },
  "components": {
    "parameters": {
      "JobID": {"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}
    },
    "responses": {
      "Job": {"description": "ok", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/JobView"}}}},
      "Error": {"description": "error", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ErrorEnvelope"}}}}
    },
    "schemas": {
      "EnqueueInput": {
        "type": "object",
        "required": ["merchant_id", "variant"],
        "properties": {
          "merchant_id": {"type": "string", "maxLength": 64, "example": "m-1001"},
          "variant": {"type": "string", "enum": ["PRIMARY_IMPORT", "UNMATCHED_REPROCESS", "primary", "unmatched"]}
        }
      },
      "JobView": {
        "type": "object",
        "properties": {
          "id": {"type": "string"},
          "merchant_id": {"type": "string"},
          "variant": {"type": "string"},
          "status": {"type": "string", "enum": ["queued", "running", "succeeded", "failed"]},
          "attempts": {"type": "integer"},
          "stats_id": {"type": "integer", "format": "int64"},
          "last_error": {"type": "string"},
          "error_kind": {"type": "string"},
          "retryable": {"type": "boolean"},
          "enqueued_at": {"type": "string", "format": "date-time"},
          "started_at": {"type": "string", "format": "date-time"},
          "finished_at": {"type": "string", "format": "date-time"}
        }
      },
      "StatsView": {
        "type": "object",
        "properties": {
          "id": {"type": "integer", "format": "int64"},
          "merchant_id": {"type": "string"},
          "kind": {"type": "string", "enum": ["primary", "unmatched"]},
          "processed": {"type": "integer", "format": "int64"},
          "failed": {"type": "integer", "format": "int64"},
          "successfully_processed": {"type": "boolean"},
          "critical_errors": {"type": "array", "items": {"type": "string"}},
          "abort_code": {"type": "string"},
          "finished_at": {"type": "string", "format": "date-time"}
        }
      },
      "ErrorRow": {
        "type": "object",
        "properties": {
          "id": {"type": "integer", "format": "int64"},
          "offer_id": {"type": "string"},
          "line": {"type": "integer"},
          "message": {"type": "string"},
          "context": {"type": "object"},
          "created_at": {"type": "string", "format": "date-time"}
        }
      },
      "ProbeResult": {
        "type": "object",
        "properties": {
          "merchant_id": {"type": "string"},
          "url": {"type": "string"},
          "declared": {"type": "string", "enum": ["none", "unknown", "gzip", "zip", "tar-gz"]},
          "resolved": {"type": "string", "enum": ["none", "unknown", "gzip", "zip", "tar-gz"]},
          "gzip_encoded": {"type": "boolean"}
        }
      }
    }
  }
}`

// SwaggerInfo is the registered spec; callers may adjust it before serving
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Title:            "Merchant Feed Import API",
	Description:      "Queue feed imports, read their statistics and error logs, probe feed compression",
	InfoInstanceName: "api",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

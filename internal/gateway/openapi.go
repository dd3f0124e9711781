package gateway

import "net/http"

// OpenAPI handles GET /api/openapi.json
func (h *Handler) OpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(openAPIDocument))
}

const openAPIDocument = `{
  "openapi": "3.0.3",
  "info": {
    "title": "Nutrition Gateway API",
    "description": "Turns free-form meal descriptions into structured nutrition estimates and nutrition history into coaching recommendations.",
    "version": "1.0"
  },
  "paths": {
    "/api/health": {
      "get": {
        "summary": "Liveness check",
        "responses": {
          "200": {"description": "Service is up"}
        }
      }
    },
    "/api/analyze-meal": {
      "post": {
        "summary": "Analyze a meal description and/or photo",
        "security": [{"bearerAuth": []}],
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "properties": {
                  "text": {"type": "string"},
                  "lang": {"type": "string", "default": "pt"}
                }
              }
            },
            "multipart/form-data": {
              "schema": {
                "type": "object",
                "properties": {
                  "text": {"type": "string"},
                  "lang": {"type": "string"},
                  "image": {"type": "string", "format": "binary"}
                }
              }
            }
          }
        },
        "responses": {
          "200": {"description": "Structured meal analysis"},
          "400": {"description": "Missing text and image"},
          "401": {"description": "Missing or invalid bearer token"},
          "413": {"description": "Request body exceeds the size cap"},
          "502": {"description": "Model returned invalid JSON"},
          "503": {"description": "Server not configured"}
        }
      }
    },
    "/api/recommendations": {
      "post": {
        "summary": "Generate coaching recommendations from nutrition history",
        "security": [{"bearerAuth": []}],
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {"type": "object"}
            }
          }
        },
        "responses": {
          "200": {"description": "Structured recommendations"},
          "401": {"description": "Missing or invalid bearer token"},
          "413": {"description": "Request body exceeds the size cap"},
          "502": {"description": "Model returned invalid JSON"},
          "503": {"description": "Server not configured"}
        }
      }
    }
  },
  "components": {
    "securitySchemes": {
      "bearerAuth": {"type": "http", "scheme": "bearer", "bearerFormat": "Google ID token"}
    }
  }
}`

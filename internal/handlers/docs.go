package handlers

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gin-gonic/gin"
)

//go:embed openapi.yaml
var openAPISpec []byte

const swaggerUIPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Target Manager API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.onload = function () {
      SwaggerUIBundle({ url: "/api/openapi.yaml", dom_id: "#swagger-ui" });
    };
  </script>
</body>
</html>`

// DocsHandler serves the OpenAPI document and a Swagger UI page
type DocsHandler struct {
	doc *openapi3.T
}

// NewDocsHandler loads and validates the embedded OpenAPI document
func NewDocsHandler() (*DocsHandler, error) {
	doc, err := LoadOpenAPI()
	if err != nil {
		return nil, err
	}
	return &DocsHandler{doc: doc}, nil
}

// LoadOpenAPI parses and validates the embedded OpenAPI document
func LoadOpenAPI() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openAPISpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI spec: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI spec: %w", err)
	}
	return doc, nil
}

// Version returns the API version declared in the document
func (h *DocsHandler) Version() string {
	return h.doc.Info.Version
}

// Spec serves the raw YAML document
// GET /api/openapi.yaml
func (h *DocsHandler) Spec(c *gin.Context) {
	c.Data(http.StatusOK, "application/yaml; charset=utf-8", openAPISpec)
}

// SpecJSON serves the document as JSON
// GET /api/openapi.json
func (h *DocsHandler) SpecJSON(c *gin.Context) {
	c.JSON(http.StatusOK, h.doc)
}

// UI serves the Swagger UI page
// GET /api/docs
func (h *DocsHandler) UI(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerUIPage))
}

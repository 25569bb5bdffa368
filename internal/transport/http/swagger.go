package http

import (
	"fmt"
	"net/http"

	"github.com/ghodss/yaml"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// RegisterSwagger serves the OpenAPI document converted from YAML once at
// startup, plus the Swagger UI under /swagger.
func RegisterSwagger(e *echo.Echo, specYAML []byte) error {
	jsonSpec, err := yaml.YAMLToJSON(specYAML)
	if err != nil {
		return fmt.Errorf("convert swagger spec: %w", err)
	}
	e.GET("/swagger/doc.json", func(c echo.Context) error {
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, jsonSpec)
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	return nil
}

// Package openapi serves the embedded API description.
package openapi

import (
	_ "embed"
	"net/http"
)

//go:embed openapi.yaml
var document []byte

// Handler serves openapi.yaml.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(document)
	}
}

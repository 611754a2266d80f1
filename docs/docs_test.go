package docs

import (
	"encoding/json"
	"testing"
)

func TestSwaggerInfoRegistered(t *testing.T) {
	if SwaggerInfo == nil {
		t.Fatal("swagger info not initialized")
	}
	if SwaggerInfo.Title != "GMEDASH API" {
		t.Fatalf("unexpected swagger title: %q", SwaggerInfo.Title)
	}
}

func TestSwaggerDocListsRoutes(t *testing.T) {
	var doc struct {
		Paths map[string]any `json:"paths"`
	}
	if err := json.Unmarshal([]byte(SwaggerInfo.ReadDoc()), &doc); err != nil {
		t.Fatalf("swagger doc is not valid json: %v", err)
	}
	for _, path := range []string{"/health", "/api/stock", "/api/historical", "/api/news", "/api/providers/health"} {
		if _, ok := doc.Paths[path]; !ok {
			t.Fatalf("swagger doc missing %s", path)
		}
	}
}

package transporthttp

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"eventfeedback/docs"
)

// embeddedDoc is a static document compiled into the binary.
type embeddedDoc struct {
	contentType string
	body        []byte
	etag        string
}

func newEmbeddedDoc(contentType string, body []byte) embeddedDoc {
	sum := sha256.Sum256(body)
	return embeddedDoc{
		contentType: contentType,
		body:        body,
		etag:        `"` + hex.EncodeToString(sum[:8]) + `"`,
	}
}

var (
	swaggerUI   = newEmbeddedDoc("text/html; charset=utf-8", docs.SwaggerPage)
	swaggerSpec = newEmbeddedDoc("application/yaml", docs.OpenAPISpec)
)

// ServeHTTP answers conditional requests with 304 since the body changes only with the binary.
func (d embeddedDoc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if len(d.body) == 0 || len(docs.OpenAPISpec) == 0 {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("ETag", d.etag)
	if r.Header.Get("If-None-Match") == d.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", d.contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(d.body)
}

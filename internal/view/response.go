package view

import (
	"net/http"
	"strconv"

	"github.com/yanizio/stencil/internal/etag"
)

// Response is the outcome of a build: either a full page plus its entity
// tag, or a bodyless "not modified" answer carrying the same tag.
type Response struct {
	body        string
	tag         etag.EntityTag
	notModified bool
	cached      bool
}

// NotModified reports whether the client copy is still valid.
func (r *Response) NotModified() bool { return r.notModified }

// Body is the (possibly minified) HTML.  Empty when NotModified.
func (r *Response) Body() string { return r.body }

// ETag is the fingerprint of the rendered, pre-minify bytes.
func (r *Response) ETag() etag.EntityTag { return r.tag }

// Cached reports whether the response was answered from the render cache.
func (r *Response) Cached() bool { return r.cached }

// ServeHTTP writes the response.  A not-modified answer is a 304 with the
// ETag header and no body.
func (r *Response) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	h := w.Header()
	if !r.tag.IsZero() {
		h.Set("ETag", r.tag.String())
	}
	if r.notModified {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("Content-Length", strconv.Itoa(len(r.body)))
	w.WriteHeader(http.StatusOK)
	if req.Method != http.MethodHead {
		_, _ = w.Write([]byte(r.body))
	}
}

func notModified(tag etag.EntityTag, cached bool) *Response {
	return &Response{tag: tag, notModified: true, cached: cached}
}

package middleware

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
)

// brotliWriter routes the response body through a brotli encoder.
type brotliWriter struct {
	http.ResponseWriter
	enc         io.WriteCloser
	wroteHeader bool
}

func (bw *brotliWriter) WriteHeader(code int) {
	if !bw.wroteHeader {
		bw.wroteHeader = true
		h := bw.Header()
		h.Del("Content-Length")
		h.Set("Content-Encoding", "br")
		h.Add("Vary", "Accept-Encoding")
	}
	bw.ResponseWriter.WriteHeader(code)
}

func (bw *brotliWriter) Write(p []byte) (int, error) {
	if !bw.wroteHeader {
		bw.WriteHeader(http.StatusOK)
	}
	return bw.enc.Write(p)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (bw *brotliWriter) Unwrap() http.ResponseWriter {
	return bw.ResponseWriter
}

// acceptsBrotli reports whether the client listed br in Accept-Encoding.
func acceptsBrotli(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if !strings.EqualFold(strings.TrimSpace(name), "br") {
			continue
		}
		q, ok := strings.CutPrefix(strings.TrimSpace(params), "q=")
		if !ok {
			return true
		}
		weight, err := strconv.ParseFloat(q, 64)
		return err == nil && weight > 0
	}
	return false
}

// Compress returns middleware that brotli-encodes responses for clients that
// accept it. HEAD requests and responses to clients without br support pass through.
func Compress(level int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead || !acceptsBrotli(r) {
				next.ServeHTTP(w, r)
				return
			}
			enc := brotli.NewWriterLevel(w, level)
			bw := &brotliWriter{ResponseWriter: w, enc: enc}
			defer func() {
				if bw.wroteHeader {
					enc.Close()
				}
			}()
			next.ServeHTTP(bw, r)
		})
	}
}

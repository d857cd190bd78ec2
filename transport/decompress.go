package transport

import (
	"compress/flate"
	"fmt"
	"io"
	"net/http"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
)

// decompressBody wraps resp.Body in the correct decompressor for its
// Content-Encoding header. The production endpoint advertises
// "gzip, deflate, br" in Accept-Encoding (client.ChromeOrderedHeaders), so
// all three must be handled even though GWT responses are small enough that
// the server usually only bothers compressing the landing page.
func decompressBody(resp *http.Response) (io.Reader, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		r, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return r, nil
	case "br":
		return brotli.NewReader(resp.Body), nil
	case "deflate":
		return flate.NewReader(resp.Body), nil
	default:
		return resp.Body, nil
	}
}

package ingest

import (
	"bufio"
	"fmt"
	"io"
	"net/http"

	"github.com/klauspost/compress/gzip"
)

// wrapBody decompresses a gzip-encoded response body transparently.
func wrapBody(resp *http.Response) io.ReadCloser {
	if resp.Header.Get("Content-Encoding") != "gzip" {
		return resp.Body
	}
	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		return resp.Body
	}
	return &gzipReadCloser{gz: gz, underlying: resp.Body}
}

type gzipReadCloser struct {
	gz         *gzip.Reader
	underlying io.ReadCloser
}

func (g *gzipReadCloser) Read(p []byte) (int, error) {
	return g.gz.Read(p)
}

func (g *gzipReadCloser) Close() error {
	gzErr := g.gz.Close()
	if err := g.underlying.Close(); err != nil {
		return err
	}
	return gzErr
}

// maybeGunzip sniffs the gzip magic bytes and wraps the reader when found,
// so gzipped CSV exports load without a separate code path.
func maybeGunzip(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil {
		// Too short to be gzipped; let the parser report the real problem.
		return br, nil //nolint:nilerr // intentional, see above
	}
	if magic[0] != 0x1f || magic[1] != 0x8b {
		return br, nil
	}
	gz, err := gzip.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("opening gzip stream: %w", err)
	}
	return gz, nil
}

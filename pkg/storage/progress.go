package storage

import (
	"bytes"
	"io"
)

// ProgressFunc receives the number of bytes sent so far and the total size.
type ProgressFunc = func(sent, total int64)

// progressReader reports read progress of an in-memory payload. It stays
// seekable so SDK clients can rewind it for retries and checksums.
type progressReader struct {
	r     *bytes.Reader
	total int64
	fn    ProgressFunc
}

func newProgressReader(data []byte, fn ProgressFunc) *progressReader {
	return &progressReader{r: bytes.NewReader(data), total: int64(len(data)), fn: fn}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.fn != nil {
		p.fn(p.total-int64(p.r.Len()), p.total)
	}
	return n, err
}

func (p *progressReader) Seek(offset int64, whence int) (int64, error) {
	return p.r.Seek(offset, whence)
}

var _ io.ReadSeeker = (*progressReader)(nil)

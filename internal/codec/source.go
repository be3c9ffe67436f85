package codec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/rm-hull/alphablend/internal/raster"
)

// Source is anything a pipeline can load an image from.
type Source interface {
	Load(ctx context.Context) (*raster.Buffer, error)
	String() string
}

// Fetcher retrieves remote image data.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

var ErrNoFetcher = errors.New("no fetcher configured for remote source")

type fileSource string

func FromFile(path string) Source {
	return fileSource(path)
}

func (s fileSource) Load(ctx context.Context) (*raster.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := imgio.Open(string(s))
	if err != nil {
		return nil, &DecodeError{Source: string(s), Err: err}
	}
	buf, err := FromImage(img)
	if err != nil {
		return nil, &DecodeError{Source: string(s), Err: err}
	}
	return buf, nil
}

func (s fileSource) String() string {
	return string(s)
}

type bytesSource []byte

// FromBytes decodes an in-memory encoded image.
func FromBytes(data []byte) Source {
	return bytesSource(data)
}

func (s bytesSource) Load(ctx context.Context) (*raster.Buffer, error) {
	buf, _, err := Decode(s.String(), bytes.NewReader(s))
	return buf, err
}

func (s bytesSource) String() string {
	return fmt.Sprintf("<%d bytes>", len(s))
}

type readerSource struct {
	name string
	r    io.Reader
}

// FromReader decodes from r on the first Load; subsequent loads see an exhausted reader.
func FromReader(name string, r io.Reader) Source {
	return &readerSource{name: name, r: r}
}

func (s *readerSource) Load(ctx context.Context) (*raster.Buffer, error) {
	buf, _, err := Decode(s.name, s.r)
	return buf, err
}

func (s *readerSource) String() string {
	return s.name
}

type bufferSource struct {
	buf *raster.Buffer
}

// FromBuffer uses an already decoded buffer. Buffers are never mutated by the pipeline
// so no copy is taken.
func FromBuffer(buf *raster.Buffer) Source {
	return bufferSource{buf: buf}
}

func (s bufferSource) Load(ctx context.Context) (*raster.Buffer, error) {
	return s.buf, nil
}

func (s bufferSource) String() string {
	return fmt.Sprintf("<%dx%d buffer>", s.buf.Width(), s.buf.Height())
}

type urlSource struct {
	url     string
	fetcher Fetcher
}

func FromURL(url string, fetcher Fetcher) Source {
	return urlSource{url: url, fetcher: fetcher}
}

func (s urlSource) Load(ctx context.Context) (*raster.Buffer, error) {
	if s.fetcher == nil {
		return nil, ErrNoFetcher
	}
	body, err := s.fetcher.Fetch(ctx, s.url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	buf, _, err := Decode(s.url, body)
	return buf, err
}

func (s urlSource) String() string {
	return s.url
}

// Open picks a remote source for http(s) references and a file source otherwise.
func Open(ref string, fetcher Fetcher) Source {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return FromURL(ref, fetcher)
	}
	return FromFile(ref)
}

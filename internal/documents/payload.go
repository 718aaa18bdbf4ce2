package documents

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"unicode/utf8"
)

// PathHeader carries the destination path for raw writes
const PathHeader = "X-File-Path"

var (
	// ErrMissingPath is returned when a raw write has no destination header
	ErrMissingPath = errors.New("missing " + PathHeader + " header")

	// ErrInvalidPathHeader is returned when the destination header is not text
	ErrInvalidPathHeader = errors.New(PathHeader + " header is not valid UTF-8")

	// ErrDecodePayload is returned when a structured body is not a byte array
	ErrDecodePayload = errors.New("failed to decode payload")

	// ErrMissingData is returned when a structured write carries no payload
	ErrMissingData = errors.New("missing data payload")
)

// ByteArray is a byte slice whose JSON form is an array of numbers
// (e.g. [37,80,68,70]) rather than base64. This is the structured
// encoding used by the front-end; it costs about four bytes of JSON per
// payload byte, so large documents should use the raw write path.
type ByteArray []byte

// MarshalJSON encodes the bytes as a JSON array of numbers.
func (b ByteArray) MarshalJSON() ([]byte, error) {
	// Worst case "255," per byte
	out := make([]byte, 0, 2+len(b)*4)
	out = append(out, '[')
	for i, v := range b {
		if i > 0 {
			out = append(out, ',')
		}
		out = strconv.AppendUint(out, uint64(v), 10)
	}
	out = append(out, ']')
	return out, nil
}

// UnmarshalJSON decodes a JSON array of integers in 0..255. A JSON null
// leaves b nil, which callers must treat as a missing payload.
func (b *ByteArray) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}
	var nums []int
	if err := json.Unmarshal(data, &nums); err != nil {
		return fmt.Errorf("%w: expected an array of integers: %v", ErrDecodePayload, err)
	}
	out := make([]byte, len(nums))
	for i, n := range nums {
		if n < 0 || n > 255 {
			return fmt.Errorf("%w: element %d out of byte range: %d", ErrDecodePayload, i, n)
		}
		out[i] = byte(n)
	}
	*b = out
	return nil
}

// RequireData reports ErrMissingData when a decoded payload was null or
// absent. An empty array is a valid zero-byte document.
func RequireData(b ByteArray) error {
	if b == nil {
		return ErrMissingData
	}
	return nil
}

// Payload is the body of a raw write request. It is one of RawBytes or
// LegacyEncoded.
type Payload interface {
	// open returns the bytes to write. Decoding errors are reported here,
	// before the destination file is touched.
	open() (io.Reader, error)
}

// RawBytes is an uninterpreted byte stream written as-is.
type RawBytes struct {
	Body io.Reader
}

func (p RawBytes) open() (io.Reader, error) {
	if p.Body == nil {
		return bytes.NewReader(nil), nil
	}
	return p.Body, nil
}

// LegacyEncoded is a JSON numeric-array body kept for callers that cannot
// send raw bodies yet.
type LegacyEncoded struct {
	Body io.Reader
}

// Decode reads the whole body and converts it to bytes.
func (p LegacyEncoded) Decode() ([]byte, error) {
	if p.Body == nil {
		return nil, fmt.Errorf("%w: empty body", ErrDecodePayload)
	}
	data, err := io.ReadAll(p.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodePayload, err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrDecodePayload)
	}
	var out ByteArray
	if err := out.UnmarshalJSON(trimmed); err != nil {
		return nil, err
	}
	return out, nil
}

func (p LegacyEncoded) open() (io.Reader, error) {
	data, err := p.Decode()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

// WriteRequest is a destination path plus the payload to store there.
type WriteRequest struct {
	Path    string
	Payload Payload
}

// NewWriteRequest builds a raw write request from transport headers and
// body. The path comes from the X-File-Path header. A JSON content type
// selects the legacy numeric-array decoding; anything else is raw bytes.
func NewWriteRequest(h http.Header, body io.Reader) (WriteRequest, error) {
	values := h.Values(PathHeader)
	if len(values) == 0 || values[0] == "" {
		return WriteRequest{}, ErrMissingPath
	}
	path := values[0]
	if !utf8.ValidString(path) {
		return WriteRequest{}, ErrInvalidPathHeader
	}

	req := WriteRequest{Path: path, Payload: RawBytes{Body: body}}
	if isJSON(h.Get("Content-Type")) {
		req.Payload = LegacyEncoded{Body: body}
	}
	return req, nil
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json"
}

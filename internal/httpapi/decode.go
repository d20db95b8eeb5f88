package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
)

// maxRequestBody caps JSON request bodies.  Face uploads have their own
// limit (Dependencies.MaxUploadBytes).
const maxRequestBody = 16 << 10

var errBadID = errors.New("path id must be a positive integer")

// readJSON decodes a size-capped JSON body into v, rejecting unknown
// fields.
func readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadID
	}
	return id, nil
}

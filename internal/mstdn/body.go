package mstdn

import (
	"io"
	"net/url"
	"strings"
)

// RequestBody describes how a call's payload is serialized. It is orthogonal
// to the endpoint path and method: query-string params, an urlencoded form,
// or nothing at all.
type RequestBody interface {
	// query returns extra query-string parameters, or nil.
	query() url.Values
	// reader returns the request body and its content type, or nil/"".
	reader() (io.Reader, string)
}

// EmptyRequestBody sends no payload.
type EmptyRequestBody struct{}

func (EmptyRequestBody) query() url.Values           { return nil }
func (EmptyRequestBody) reader() (io.Reader, string) { return nil, "" }

// SearchParamsBody encodes its entries into the query string. Empty values
// are dropped so optional parameters can be passed unconditionally.
type SearchParamsBody map[string]string

func (b SearchParamsBody) query() url.Values {
	v := url.Values{}
	for k, val := range b {
		if val != "" {
			v.Set(k, val)
		}
	}
	return v
}

func (SearchParamsBody) reader() (io.Reader, string) { return nil, "" }

// FormDataBody encodes its entries as an urlencoded form body.
type FormDataBody map[string]string

func (FormDataBody) query() url.Values { return nil }

func (b FormDataBody) reader() (io.Reader, string) {
	v := url.Values{}
	for k, val := range b {
		v.Set(k, val)
	}
	return strings.NewReader(v.Encode()), "application/x-www-form-urlencoded"
}

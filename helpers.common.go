package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"os"
	"strings"
)

type ContextKey string

const (
	RequestIDPrefix      string     = "r"
	ContextRequestID     ContextKey = "request.id"
	ContextRequestNumber ContextKey = "request.number"
	ConnContextKey       ContextKey = "http-conn"

	importFormField = "file"
)

// GetValueFromContext returns the value of a given key in the context
// if this key is not available, it returns an empty string.
func GetValueFromContext(ctx context.Context, contextKey ContextKey) string {
	if val, ok := ctx.Value(contextKey).(string); ok {
		return val
	}
	return ""
}

// GetRequestNumberFromContext returns the request number set in
// the context. if not previously set then it returns 0.
func GetRequestNumberFromContext(ctx context.Context) uint64 {
	if val, ok := ctx.Value(ContextRequestNumber).(uint64); ok {
		return val
	}
	return 0
}

// DecodeBookInputRequestBody reads the content of a book creation or update request.
func DecodeBookInputRequestBody(r *http.Request, in *BookInput) error {
	if r.Body == nil || r.Body == http.NoBody {
		return errors.New("empty book request body")
	}
	return json.NewDecoder(r.Body).Decode(in)
}

// ReadImportRequestBody returns the uploaded import file. It accepts a
// multipart form with the file under the `file` field or the raw JSON
// document as body. The read is bounded by limit bytes.
func ReadImportRequestBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, &MalformedInputError{Reason: "no file provided"}
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, &MalformedInputError{Reason: "failed to read file", Err: err}
		}
		return data, nil
	}

	if err := r.ParseMultipartForm(limit); err != nil {
		return nil, &MalformedInputError{Reason: "invalid multipart form", Err: err}
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}
	file, _, err := r.FormFile(importFormField)
	if err != nil {
		return nil, &MalformedInputError{Reason: fmt.Sprintf("missing %q form file", importFormField), Err: err}
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, &MalformedInputError{Reason: "failed to read file", Err: err}
	}
	return data, nil
}

// GetRequestSourceIP helps find the source IP of the caller.
func GetRequestSourceIP(r *http.Request) string {
	// Get IP from the X-REAL-IP header
	ip := r.Header.Get("X-REAL-IP")
	netIP := net.ParseIP(ip)
	if netIP != nil {
		return ip
	}

	// Get IP from X-FORWARDED-FOR header
	ips := r.Header.Get("X-FORWARDED-FOR")
	splitIps := strings.Split(ips, ",")
	for _, ip := range splitIps {
		ip = strings.TrimSpace(ip)
		netIP = net.ParseIP(ip)
		if netIP != nil {
			return ip
		}
	}

	return GetRemoteIP(r)
}

// GetRemoteIP returns the ip of the connected peer, ignoring any
// client supplied forwarding header.
func GetRemoteIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return ""
	}
	if net.ParseIP(ip) != nil {
		return ip
	}
	return ""
}

// IsAppRunningInDocker checks the existence of the .dockerenv
// file at the root directory and returns a boolean result.
func IsAppRunningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}

// SaveConnInContext is the hook used by the server under ConnContext.
// It keeps the connection in the request context so the response writer
// can move its write deadline for long downloads.
func SaveConnInContext(ctx context.Context, c net.Conn) context.Context {
	return context.WithValue(ctx, ConnContextKey, c)
}

// GetConnFromContext returns the connection saved into the context, or nil.
func GetConnFromContext(ctx context.Context) net.Conn {
	c, _ := ctx.Value(ConnContextKey).(net.Conn)
	return c
}

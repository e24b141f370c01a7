// Package httpx holds the transport plumbing shared by the Jira and
// SonarQube clients.
package httpx

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/lmarchal/worklens/internal/record"
)

const defaultTimeout = 30 * time.Second

// NewClient builds the http client used for every query. When certPath names
// a readable PEM bundle it becomes the trust root; the path itself is taken
// as-is from configuration and never validated here.
func NewClient(certPath string) *http.Client {
	client := &http.Client{Timeout: defaultTimeout}

	if certPath == "" {
		return client
	}
	pem, err := os.ReadFile(certPath)
	if err != nil {
		return client
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return client
	}
	client.Transport = &http.Transport{
		TLSClientConfig: &tls.Config{RootCAs: pool},
	}
	return client
}

// ClassifyTransport maps a failed round trip onto the fetch taxonomy.
func ClassifyTransport(url string, err error) *record.FetchError {
	kind := record.TransportFailure
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		kind = record.Timeout
	}
	return &record.FetchError{Kind: kind, URL: url, Err: err}
}

// ClassifyStatus maps a non-200 response onto the fetch taxonomy.
func ClassifyStatus(url string, status int) *record.FetchError {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return &record.FetchError{Kind: record.Unauthorized, Status: status, URL: url}
	}
	return &record.FetchError{Kind: record.ServerError, Status: status, URL: url}
}

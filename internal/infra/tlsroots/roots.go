// Package tlsroots builds the roots the CLI trusts for the marketplace
// API: the system pool plus any private CA bundles named by
// transport.cafile.
package tlsroots

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoCertsFound is returned for a bundle without CERTIFICATE blocks.
var ErrNoCertsFound = errors.New("tlsroots: no certificates found in PEM data")

// Roots is a set of trusted CAs.
type Roots struct {
	pool     *x509.CertPool
	subjects []string
}

// System starts from the host's trust store, or from an empty pool where
// the platform exposes none.
func System() *Roots {
	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}
	return &Roots{pool: pool}
}

// Empty starts from no trusted CAs.
func Empty() *Roots {
	return &Roots{pool: x509.NewCertPool()}
}

// AppendFile adds every certificate in a PEM bundle.
func (r *Roots) AppendFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("tlsroots: read %s: %w", path, err)
	}
	if err := r.AppendPEM(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// AppendPEM adds the CERTIFICATE blocks of data and skips any other block.
// Nothing is added when one of the certificates fails to parse.
func (r *Roots) AppendPEM(data []byte) error {
	var certs []*x509.Certificate
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return fmt.Errorf("tlsroots: parse certificate: %w", err)
		}
		certs = append(certs, cert)
	}
	if len(certs) == 0 {
		return ErrNoCertsFound
	}

	for _, cert := range certs {
		r.pool.AddCert(cert)
		r.subjects = append(r.subjects, cert.Subject.String())
	}
	return nil
}

// Added returns the subjects of the CAs appended on top of the base pool.
func (r *Roots) Added() []string {
	return append([]string(nil), r.subjects...)
}

// ClientConfig returns a TLS 1.2+ client config trusting r.
func (r *Roots) ClientConfig() *tls.Config {
	return &tls.Config{
		RootCAs:    r.pool,
		MinVersion: tls.VersionTLS12,
	}
}

// ClientConfig trusts the system roots plus each bundle in caFiles, a
// list separated by the OS path list separator. An empty list yields
// nil, leaving the transport default in place.
func ClientConfig(caFiles string) (*tls.Config, error) {
	var paths []string
	for _, p := range filepath.SplitList(caFiles) {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return nil, nil
	}

	roots := System()
	for _, p := range paths {
		if err := roots.AppendFile(p); err != nil {
			return nil, err
		}
	}
	return roots.ClientConfig(), nil
}

package config

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"

	temporalclient "go.temporal.io/sdk/client"
)

// TemporalOptions returns the options the API and the worker dial Temporal
// with. mTLS is set up only when a client cert and key are configured.
func (c *Config) TemporalOptions() (temporalclient.Options, error) {
	opts := temporalclient.Options{HostPort: c.TemporalAddress}
	if c.TemporalTLSCert == "" && c.TemporalTLSKey == "" {
		return opts, nil
	}
	tlsConfig, err := c.temporalTLS()
	if err != nil {
		return temporalclient.Options{}, err
	}
	opts.ConnectionOptions = temporalclient.ConnectionOptions{TLS: tlsConfig}
	return opts, nil
}

func (c *Config) temporalTLS() (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(c.TemporalTLSCert, c.TemporalTLSKey)
	if err != nil {
		return nil, fmt.Errorf("temporal mTLS: client key pair: %w", err)
	}
	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
		ServerName:   c.TemporalTLSServerName,
	}
	if c.TemporalTLSCACert == "" {
		return tlsConfig, nil
	}

	caPEM, err := os.ReadFile(c.TemporalTLSCACert)
	if err != nil {
		return nil, fmt.Errorf("temporal mTLS: read CA bundle: %w", err)
	}
	roots := x509.NewCertPool()
	if !roots.AppendCertsFromPEM(caPEM) {
		return nil, errors.New("temporal mTLS: CA bundle holds no PEM certificates")
	}
	tlsConfig.RootCAs = roots
	return tlsConfig, nil
}

// Copyright 2024-2025 NetCracker Technology Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package utils

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// NewStorageTLSConfig builds the TLS configuration for the object store client.
// crt is an optional PEM (plain or base64 encoded) CA certificate trusted on top of the system pool.
func NewStorageTLSConfig(crt string, insecure bool) (*tls.Config, error) {
	rootCAs := getSystemCertPool()

	if crt != "" {
		pemData, err := decodeCertificate(crt)
		if err != nil {
			return nil, err
		}
		if ok := rootCAs.AppendCertsFromPEM(pemData); !ok {
			return nil, fmt.Errorf("failed to parse object store certificate")
		}
		log.Debug("Custom object store certificate added to root CA pool")
	}

	return &tls.Config{
		RootCAs:            rootCAs,
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: insecure,
	}, nil
}

func decodeCertificate(crt string) ([]byte, error) {
	if strings.Contains(crt, "-----BEGIN") {
		return []byte(crt), nil
	}
	decoded, err := base64.StdEncoding.DecodeString(crt)
	if err != nil {
		return nil, fmt.Errorf("object store certificate is neither PEM nor base64: %w", err)
	}
	return decoded, nil
}

func getSystemCertPool() *x509.CertPool {
	pool, err := x509.SystemCertPool()
	if err != nil {
		log.Warnf("Failed to load system certificate pool, using empty pool: %v", err)
		return x509.NewCertPool()
	}
	return pool
}

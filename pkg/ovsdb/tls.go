package ovsdb

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/ibm/ovsdb-portctl/pkg/common"
)

// TLSOptions configures the connection to "ssl:" endpoints. The key and certificate authenticate the
// client, CACert verifies the server.
type TLSOptions struct {
	PrivateKey  string
	Certificate string
	CACert      string
	// Version pins the protocol version, e.g. "VersionTLS12"
	Version string
	// CipherSuite restricts the connection to one suite, e.g. "TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256"
	CipherSuite string
	ServerName  string
}

type tlsVersion struct {
	Name string
	ID   uint16
}

func (v tlsVersion) String() string {
	return fmt.Sprintf("'%s'", v.Name)
}

var tlsVersions = []tlsVersion{
	{"VersionTLS10", tls.VersionTLS10},
	{"VersionTLS11", tls.VersionTLS11},
	{"VersionTLS12", tls.VersionTLS12},
	{"VersionTLS13", tls.VersionTLS13},
}

func lookupVersion(name string) (tlsVersion, error) {
	for _, v := range tlsVersions {
		if v.Name == name {
			return v, nil
		}
	}
	return tlsVersion{}, fmt.Errorf("not supported ssl version %q. available ssl versions:%s", name, tlsVersions)
}

func lookupCipherSuite(name string) (*tls.CipherSuite, error) {
	var names []string
	for _, suite := range tls.CipherSuites() {
		if suite.Name == name {
			return suite, nil
		}
		names = append(names, suite.Name)
	}
	return nil, fmt.Errorf("not supported cipher suite %q. available cipher suites:%s", name, strings.Join(names, ","))
}

func cipherSuiteSupportsVersion(suite *tls.CipherSuite, version tlsVersion) bool {
	for _, id := range suite.SupportedVersions {
		if id == version.ID {
			return true
		}
	}
	return false
}

// suiteVersionRange returns the lowest and highest versions, not below floor, that suite supports.
func suiteVersionRange(suite *tls.CipherSuite, floor uint16) (uint16, uint16, bool) {
	var lowest, highest uint16
	for _, v := range tlsVersions {
		if v.ID < floor || !cipherSuiteSupportsVersion(suite, v) {
			continue
		}
		if lowest == 0 {
			lowest = v.ID
		}
		highest = v.ID
	}
	return lowest, highest, lowest != 0
}

func versionName(id uint16) string {
	for _, v := range tlsVersions {
		if v.ID == id {
			return v.Name
		}
	}
	return fmt.Sprintf("0x%04x", id)
}

// NewTLSConfig builds the client TLS configuration.
func NewTLSConfig(o TLSOptions) (*tls.Config, error) {
	conf := &tls.Config{ServerName: o.ServerName, MinVersion: tls.VersionTLS12}

	if (o.PrivateKey == "") != (o.Certificate == "") {
		return nil, errors.New("private key and certificate must be given together")
	}
	if o.PrivateKey != "" {
		certPEM, err := common.ReadFile(o.Certificate)
		if err != nil {
			return nil, err
		}
		keyPEM, err := common.ReadFile(o.PrivateKey)
		if err != nil {
			return nil, err
		}
		cert, err := tls.X509KeyPair(certPEM, keyPEM)
		if err != nil {
			return nil, errors.Wrap(err, "load client certificate")
		}
		conf.Certificates = []tls.Certificate{cert}
	}
	if o.CACert != "" {
		caPEM, err := common.ReadFile(o.CACert)
		if err != nil {
			return nil, err
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caPEM) {
			return nil, fmt.Errorf("no certificate found in %s", o.CACert)
		}
		conf.RootCAs = pool
	}

	if o.Version != "" {
		version, err := lookupVersion(o.Version)
		if err != nil {
			return nil, err
		}
		conf.MinVersion = version.ID
		conf.MaxVersion = version.ID
	}
	if o.CipherSuite != "" {
		suite, err := lookupCipherSuite(o.CipherSuite)
		if err != nil {
			return nil, err
		}
		if o.Version != "" {
			version, _ := lookupVersion(o.Version)
			if !cipherSuiteSupportsVersion(suite, version) {
				return nil, fmt.Errorf("cipher suite %s does not support ssl version %s", suite.Name, version)
			}
		} else {
			// TLS 1.3 ignores CipherSuites
			minVersion, maxVersion, ok := suiteVersionRange(suite, conf.MinVersion)
			if !ok {
				return nil, fmt.Errorf("cipher suite %s supports no ssl version from %s", suite.Name, versionName(conf.MinVersion))
			}
			conf.MinVersion = minVersion
			conf.MaxVersion = maxVersion
		}
		conf.CipherSuites = []uint16{suite.ID}
	}
	return conf, nil
}

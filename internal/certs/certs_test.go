package certs

import (
	"crypto/tls"
	"crypto/x509"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spent/internal/common"
)

var issuedAt = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

func leaf(t *testing.T, cert tls.Certificate) *x509.Certificate {
	t.Helper()
	require.Len(t, cert.Certificate, 1)
	parsed, err := x509.ParseCertificate(cert.Certificate[0])
	require.NoError(t, err)
	return parsed
}

func TestStoreIssuesCertificate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "certs")
	store := NewStore(dir, common.FixedClock{T: issuedAt})

	exists, err := store.Exists()
	require.NoError(t, err)
	assert.False(t, exists)

	cert, err := store.Certificate()
	require.NoError(t, err)

	parsed := leaf(t, cert)
	assert.Equal(t, Organization, parsed.Subject.Organization[0])
	assert.Contains(t, parsed.DNSNames, "localhost")
	assert.NoError(t, parsed.VerifyHostname("localhost"))
	assert.NoError(t, parsed.VerifyHostname("127.0.0.1"))
	assert.WithinDuration(t, issuedAt.Add(Validity), parsed.NotAfter, time.Second)

	exists, err = store.Exists()
	require.NoError(t, err)
	assert.True(t, exists)

	info, err := os.Stat(filepath.Join(dir, "localhost.key"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStoreReusesValidCertificate(t *testing.T) {
	dir := t.TempDir()

	first, err := NewStore(dir, common.FixedClock{T: issuedAt}).Certificate()
	require.NoError(t, err)

	later := common.FixedClock{T: issuedAt.Add(30 * 24 * time.Hour)}
	second, err := NewStore(dir, later).Certificate()
	require.NoError(t, err)

	assert.Equal(t, leaf(t, first).SerialNumber, leaf(t, second).SerialNumber)
}

func TestStoreReplacesCertificates(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, dir string)
		now   time.Time
	}{
		{
			name: "close to expiry",
			setup: func(t *testing.T, dir string) {
				t.Helper()
				_, err := NewStore(dir, common.FixedClock{T: issuedAt}).Certificate()
				require.NoError(t, err)
			},
			now: issuedAt.Add(Validity - RenewBefore + time.Hour),
		},
		{
			name: "issued in the future",
			setup: func(t *testing.T, dir string) {
				t.Helper()
				_, err := NewStore(dir, common.FixedClock{T: issuedAt.Add(48 * time.Hour)}).Certificate()
				require.NoError(t, err)
			},
			now: issuedAt,
		},
		{
			name: "corrupt files",
			setup: func(t *testing.T, dir string) {
				t.Helper()
				require.NoError(t, os.WriteFile(filepath.Join(dir, "localhost.crt"), []byte("not a cert"), 0o600))
				require.NoError(t, os.WriteFile(filepath.Join(dir, "localhost.key"), []byte("not a key"), 0o600))
			},
			now: issuedAt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tt.setup(t, dir)

			cert, err := NewStore(dir, common.FixedClock{T: tt.now}).Certificate()
			require.NoError(t, err)

			parsed := leaf(t, cert)
			assert.WithinDuration(t, tt.now.Add(Validity), parsed.NotAfter, time.Second)
		})
	}
}

func TestStoreExistsNeedsBothFiles(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  bool
	}{
		{name: "none", want: false},
		{name: "certificate only", files: []string{"localhost.crt"}, want: false},
		{name: "key only", files: []string{"localhost.key"}, want: false},
		{name: "both", files: []string{"localhost.crt", "localhost.key"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("x"), 0o600))
			}

			got, err := NewStore(dir, common.FixedClock{T: issuedAt}).Exists()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTLSConfig(t *testing.T) {
	store := NewStore(t.TempDir(), common.FixedClock{T: issuedAt})

	cfg, err := store.TLSConfig()
	require.NoError(t, err)
	require.Len(t, cfg.Certificates, 1)
	assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
	assert.FileExists(t, store.CertFile())
}

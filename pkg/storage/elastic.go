package storage

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"

	"github.com/gsbingo17/tms-migrate/pkg/attachment"
	"github.com/gsbingo17/tms-migrate/pkg/logger"
)

// ElasticTLSConfig represents TLS configuration for Elasticsearch
type ElasticTLSConfig struct {
	Enabled                bool   // Enable TLS/HTTPS
	CACertPath             string // Path to CA certificate file
	SkipVerify             bool   // Skip server certificate verification
	CertificateFingerprint string // Certificate fingerprint for verification
	ConnectionTimeout      int    // Connection timeout in seconds
	ResponseTimeout        int    // Response timeout in seconds
}

// ElasticStore persists attachments as documents of a single index, keyed
// by "<ownerId>:<attachmentId>" so owner scoping survives without a second
// field lookup.
type ElasticStore struct {
	client *elasticsearch.Client
	index  string
	log    *logger.Logger
}

// NewElasticStore creates an Elasticsearch-backed store
func NewElasticStore(addresses []string, username, password, apiKey, index string, tlsConfig *ElasticTLSConfig, log *logger.Logger) (*ElasticStore, error) {
	cfg := elasticsearch.Config{
		Addresses: addresses,
		Username:  username,
		Password:  password,
		APIKey:    apiKey,
	}

	// Log authentication method
	if apiKey != "" {
		log.Info("Using API key authentication for Elasticsearch")
	} else if username != "" && password != "" {
		log.Info("Using username/password authentication for Elasticsearch")
	} else {
		log.Info("No authentication provided for Elasticsearch")
	}

	// Configure timeouts
	connectionTimeout := 30 * time.Second
	responseTimeout := 60 * time.Second
	if tlsConfig != nil {
		if tlsConfig.ConnectionTimeout > 0 {
			connectionTimeout = time.Duration(tlsConfig.ConnectionTimeout) * time.Second
		}
		if tlsConfig.ResponseTimeout > 0 {
			responseTimeout = time.Duration(tlsConfig.ResponseTimeout) * time.Second
		}
	}

	transport := &http.Transport{
		DialContext:           (&net.Dialer{Timeout: connectionTimeout}).DialContext,
		ResponseHeaderTimeout: responseTimeout,
	}

	// Configure TLS if enabled
	if tlsConfig != nil && tlsConfig.Enabled {
		tlsClientConfig := &tls.Config{
			InsecureSkipVerify: tlsConfig.SkipVerify,
		}
		if tlsConfig.CACertPath != "" {
			caCert, err := os.ReadFile(tlsConfig.CACertPath)
			if err != nil {
				return nil, fmt.Errorf("failed to read CA certificate: %w", err)
			}
			cfg.CACert = caCert
		}
		if tlsConfig.CertificateFingerprint != "" {
			cfg.CertificateFingerprint = tlsConfig.CertificateFingerprint
		}
		transport.TLSClientConfig = tlsClientConfig
		log.Info("TLS is enabled for Elasticsearch connection")
	}
	cfg.Transport = transport

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	// Ping the Elasticsearch server to verify connection
	res, err := client.Ping()
	if err != nil {
		return nil, fmt.Errorf("failed to ping Elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("failed to ping Elasticsearch: %s", res.String())
	}

	return &ElasticStore{
		client: client,
		index:  index,
		log:    log,
	}, nil
}

func (s *ElasticStore) docID(ownerID, attachmentID string) string {
	return ownerID + ":" + attachmentID
}

// Put stores the attachment under the given owner
func (s *ElasticStore) Put(ctx context.Context, ownerID string, att attachment.Attachment) error {
	att.OwnerID = ownerID

	body, err := json.Marshal(att)
	if err != nil {
		return fmt.Errorf("failed to encode attachment %s: %w", att.ID, err)
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: s.docID(ownerID, att.ID),
		Body:       bytes.NewReader(body),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("failed to store attachment %s: %w", att.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("failed to store attachment %s: %s", att.ID, res.String())
	}
	return nil
}

// Get returns the attachment and whether it exists
func (s *ElasticStore) Get(ctx context.Context, ownerID, attachmentID string) (attachment.Attachment, bool, error) {
	req := esapi.GetRequest{
		Index:      s.index,
		DocumentID: s.docID(ownerID, attachmentID),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return attachment.Attachment{}, false, fmt.Errorf("failed to read attachment %s: %w", attachmentID, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return attachment.Attachment{}, false, nil
	}
	if res.IsError() {
		return attachment.Attachment{}, false, fmt.Errorf("failed to read attachment %s: %s", attachmentID, res.String())
	}

	var envelope struct {
		Found  bool                  `json:"found"`
		Source attachment.Attachment `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return attachment.Attachment{}, false, fmt.Errorf("failed to decode attachment %s: %w", attachmentID, err)
	}
	if !envelope.Found {
		return attachment.Attachment{}, false, nil
	}
	return envelope.Source, true, nil
}

// Delete removes the attachment
func (s *ElasticStore) Delete(ctx context.Context, ownerID, attachmentID string) error {
	req := esapi.DeleteRequest{
		Index:      s.index,
		DocumentID: s.docID(ownerID, attachmentID),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("failed to delete attachment %s: %w", attachmentID, err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("failed to delete attachment %s: %s", attachmentID, res.String())
	}
	return nil
}

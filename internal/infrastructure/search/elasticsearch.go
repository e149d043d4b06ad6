package search

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// NewESClient creates an Elasticsearch client with sane defaults and optional basic auth.
func NewESClient(addrs []string, username, password string) (*elasticsearch.Client, error) {
	cfg := elasticsearch.Config{
		Addresses: addrs,
		Username:  username,
		Password:  password,
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: 5 * time.Second,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		},
	}
	return elasticsearch.NewClient(cfg)
}

// UserDirectory indexes public user profiles for search.
type UserDirectory struct {
	es    *elasticsearch.Client
	index string
}

func NewUserDirectory(es *elasticsearch.Client, index string) *UserDirectory {
	return &UserDirectory{es: es, index: index}
}

type userDoc struct {
	ID          string `json:"id"`
	Handle      string `json:"handle"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
	CoverImage  string `json:"cover_image"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toDoc(u entity.PublicUser) userDoc {
	return userDoc{
		ID:          u.ID,
		Handle:      u.Handle,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Avatar:      u.AvatarURL,
		CoverImage:  u.CoverImageURL,
		CreatedAt:   u.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:   u.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func (d userDoc) toUser() entity.PublicUser {
	u := entity.PublicUser{
		ID:            d.ID,
		Handle:        d.Handle,
		Email:         d.Email,
		DisplayName:   d.DisplayName,
		AvatarURL:     d.Avatar,
		CoverImageURL: d.CoverImage,
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339Nano, d.CreatedAt)
	u.UpdatedAt, _ = time.Parse(time.RFC3339Nano, d.UpdatedAt)
	return u
}

func (d *UserDirectory) IndexUser(ctx context.Context, u entity.PublicUser) error {
	b, err := json.Marshal(toDoc(u))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: d.index, DocumentID: u.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, d.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("index user %s: %s", u.ID, res.Status())
	}
	return nil
}

// Search runs a multi_match over handle, display name and email.
func (d *UserDirectory) Search(ctx context.Context, q string, size int) ([]entity.PublicUser, error) {
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"handle^3", "display_name^2", "email"},
			},
		},
		"size": size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := d.es.Search(
		d.es.Search.WithContext(c),
		d.es.Search.WithIndex(d.index),
		d.es.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("search users: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source userDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]entity.PublicUser, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source.toUser())
	}
	return out, nil
}

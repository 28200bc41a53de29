package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/avatarctic/live-catalog/configs"
	"github.com/avatarctic/live-catalog/internal/core/domain/product"
	"github.com/sirupsen/logrus"
)

const firestoreBaseURL = "https://firestore.googleapis.com/v1"

// FirestoreStore talks to the Firestore REST API. The catalog documents keep
// price, stock and rating as string values; this driver owns the coercion in
// both directions so callers only ever see typed records.
type FirestoreStore struct {
	projectID  string
	apiKey     string
	collection string
	baseURL    string
	client     *http.Client
	logger     *logrus.Logger
	now        func() time.Time
}

func NewFirestoreStore(cfg *configs.FirestoreConfig, logger *logrus.Logger) *FirestoreStore {
	base := cfg.BaseURL
	if base == "" {
		base = firestoreBaseURL
	}
	return &FirestoreStore{
		projectID:  cfg.ProjectID,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		baseURL:    base,
		client:     &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
		now:        time.Now,
	}
}

// fsValue is the subset of Firestore's Value union the catalog uses.
type fsValue struct {
	StringValue    *string `json:"stringValue,omitempty"`
	TimestampValue *string `json:"timestampValue,omitempty"`
}

type fsDocument struct {
	Name   string             `json:"name,omitempty"`
	Fields map[string]fsValue `json:"fields"`
}

func strValue(s string) fsValue { return fsValue{StringValue: &s} }
func tsValue(t time.Time) fsValue {
	s := t.UTC().Format(time.RFC3339Nano)
	return fsValue{TimestampValue: &s}
}

func (v fsValue) str() string {
	if v.StringValue != nil {
		return *v.StringValue
	}
	return ""
}

func (s *FirestoreStore) documentsURL() string {
	return fmt.Sprintf("%s/projects/%s/databases/(default)/documents", s.baseURL, s.projectID)
}

func (s *FirestoreStore) List(ctx context.Context) ([]product.Product, error) {
	query := map[string]any{
		"structuredQuery": map[string]any{
			"from": []map[string]any{{"collectionId": s.collection}},
			"orderBy": []map[string]any{{
				"field":     map[string]string{"fieldPath": "createdAt"},
				"direction": "DESCENDING",
			}},
		},
	}
	var rows []struct {
		Document *fsDocument `json:"document"`
	}
	if err := s.do(ctx, http.MethodPost, s.documentsURL()+":runQuery", nil, query, &rows); err != nil {
		return nil, err
	}
	out := make([]product.Product, 0, len(rows))
	for _, row := range rows {
		// An empty result set still yields one row carrying only readTime.
		if row.Document == nil {
			continue
		}
		out = append(out, s.toProduct(row.Document))
	}
	return out, nil
}

func (s *FirestoreStore) Get(ctx context.Context, id string) (*product.Product, error) {
	var doc fsDocument
	docURL := fmt.Sprintf("%s/%s/%s", s.documentsURL(), s.collection, url.PathEscape(id))
	if err := s.do(ctx, http.MethodGet, docURL, nil, nil, &doc); err != nil {
		return nil, err
	}
	rec := s.toProduct(&doc)
	return &rec, nil
}

func (s *FirestoreStore) Create(ctx context.Context, p *product.Product) (*product.Product, error) {
	body := fsDocument{Fields: s.toFields(p, s.now())}
	var doc fsDocument
	colURL := fmt.Sprintf("%s/%s", s.documentsURL(), s.collection)
	if err := s.do(ctx, http.MethodPost, colURL, nil, body, &doc); err != nil {
		return nil, err
	}
	rec := s.toProduct(&doc)
	return &rec, nil
}

func (s *FirestoreStore) Update(ctx context.Context, id string, changes *product.Update) (*product.Product, error) {
	// Existence check first so a missing identifier is a clean not-found
	// rather than an implicit upsert.
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	fields := make(map[string]fsValue)
	var mask []string
	put := func(name, value string) {
		fields[name] = strValue(value)
		mask = append(mask, name)
	}
	if changes.Name != nil {
		put("name", *changes.Name)
	}
	if changes.Description != nil {
		put("description", *changes.Description)
	}
	if changes.Price != nil {
		put("price", formatFloat(*changes.Price))
	}
	if changes.Currency != nil {
		put("currency", *changes.Currency)
	}
	if changes.Stock != nil {
		put("stock", strconv.Itoa(*changes.Stock))
	}
	if changes.Category != nil {
		put("category", *changes.Category)
	}
	if changes.Brand != nil {
		put("brand", *changes.Brand)
	}
	if changes.Rating != nil {
		put("rating", formatFloat(*changes.Rating))
	}

	params := url.Values{}
	for _, f := range mask {
		params.Add("updateMask.fieldPaths", f)
	}
	// currentDocument.exists guards against the document vanishing between
	// the check above and the patch.
	params.Set("currentDocument.exists", "true")

	var doc fsDocument
	docURL := fmt.Sprintf("%s/%s/%s", s.documentsURL(), s.collection, url.PathEscape(id))
	if err := s.do(ctx, http.MethodPatch, docURL, params, fsDocument{Fields: fields}, &doc); err != nil {
		return nil, err
	}
	rec := s.toProduct(&doc)
	return &rec, nil
}

func (s *FirestoreStore) Delete(ctx context.Context, id string) (*product.Product, error) {
	snapshot, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	docURL := fmt.Sprintf("%s/%s/%s", s.documentsURL(), s.collection, url.PathEscape(id))
	if err := s.do(ctx, http.MethodDelete, docURL, nil, nil, nil); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// do issues one REST call. 404 maps to product.ErrNotFound; every other
// failure is wrapped in a product.StoreError.
func (s *FirestoreStore) do(ctx context.Context, method, rawURL string, params url.Values, body, out any) error {
	if params == nil {
		params = url.Values{}
	}
	if s.apiKey != "" {
		params.Set("key", s.apiKey)
	}
	if encoded := params.Encode(); encoded != "" {
		rawURL += "?" + encoded
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &product.StoreError{Op: method + " " + rawURL, Err: err}
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return &product.StoreError{Op: method + " " + rawURL, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return &product.StoreError{Op: method + " " + rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return product.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"method": method, "status": resp.StatusCode}).Warn("firestore request failed")
		}
		return &product.StoreError{
			Op:  method + " " + rawURL,
			Err: fmt.Errorf("unexpected status %d: %s", resp.StatusCode, msg),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &product.StoreError{Op: method + " " + rawURL, Err: err}
	}
	return nil
}

func (s *FirestoreStore) toFields(p *product.Product, createdAt time.Time) map[string]fsValue {
	return map[string]fsValue{
		"name":        strValue(p.Name),
		"description": strValue(p.Description),
		"price":       strValue(formatFloat(p.Price)),
		"currency":    strValue(p.Currency),
		"stock":       strValue(strconv.Itoa(p.Stock)),
		"category":    strValue(p.Category),
		"brand":       strValue(p.Brand),
		"rating":      strValue(formatFloat(p.Rating)),
		"createdAt":   tsValue(createdAt),
	}
}

func (s *FirestoreStore) toProduct(doc *fsDocument) product.Product {
	rec := product.Product{
		ID:          path.Base(doc.Name),
		Name:        doc.Fields["name"].str(),
		Description: doc.Fields["description"].str(),
		Price:       parseFloatOrZero(doc.Fields["price"].str()),
		Currency:    doc.Fields["currency"].str(),
		Stock:       parseIntOrZero(doc.Fields["stock"].str()),
		Category:    doc.Fields["category"].str(),
		Brand:       doc.Fields["brand"].str(),
		Rating:      parseFloatOrZero(doc.Fields["rating"].str()),
	}
	if ts := doc.Fields["createdAt"].TimestampValue; ts != nil {
		if t, err := time.Parse(time.RFC3339Nano, *ts); err == nil {
			rec.CreatedAt = t
		}
	}
	return rec
}

// Package metadataapi implements discovery.MetadataClient against an
// Atlas-style tenant metadata REST API: type definitions come from the
// typedefs endpoint, while domains, glossaries, and asset counts go through
// the index search endpoint. Type definition responses are cached with a TTL
// since they change rarely and several discovery components consult them.
package metadataapi

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/agentstation/canonmap/internal/transport"
	"github.com/agentstation/canonmap/pkg/discovery"
	"github.com/agentstation/canonmap/pkg/schema"
)

// Typedef endpoint category names.
const (
	typeEntity           = "entity"
	typeBusinessMetadata = "business_metadata"
	typeClassification   = "classification"
)

const (
	typedefsPath = "/api/meta/types/typedefs"
	searchPath   = "/api/meta/search/indexsearch"
)

// DefaultCacheTTL is how long typedef responses are reused before refetching.
const DefaultCacheTTL = 5 * time.Minute

// Client is the REST implementation of discovery.MetadataClient.
type Client struct {
	transport *transport.Client
	cache     *gocache.Cache
}

// Option configures a Client.
type Option func(*Client)

// WithCacheTTL sets the typedef cache TTL. A non-positive TTL disables
// caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl <= 0 {
			c.cache = nil
			return
		}
		c.cache = gocache.New(ttl, 2*ttl)
	}
}

// New creates a metadata API client over the given transport.
func New(t *transport.Client, opts ...Option) *Client {
	c := &Client{
		transport: t,
		cache:     gocache.New(DefaultCacheTTL, 2*DefaultCacheTTL),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// typedefsResponse is the combined shape of the typedefs endpoint; only the
// section matching the requested category is populated.
type typedefsResponse struct {
	EntityDefs           []discovery.EntityTypeDef     `json:"entityDefs"`
	BusinessMetadataDefs []discovery.CustomMetadataDef `json:"businessMetadataDefs"`
	ClassificationDefs   []discovery.ClassificationDef `json:"classificationDefs"`
}

func (c *Client) typedefs(ctx context.Context, category string) (*typedefsResponse, error) {
	if c.cache != nil {
		if cached, ok := c.cache.Get(category); ok {
			return cached.(*typedefsResponse), nil
		}
	}

	var resp typedefsResponse
	if err := c.transport.GetJSON(ctx, typedefsPath+"?type="+category, &resp); err != nil {
		return nil, err
	}
	if c.cache != nil {
		c.cache.Set(category, &resp, gocache.DefaultExpiration)
	}
	return &resp, nil
}

// EntityTypeDefs implements discovery.MetadataClient.
func (c *Client) EntityTypeDefs(ctx context.Context) ([]discovery.EntityTypeDef, error) {
	resp, err := c.typedefs(ctx, typeEntity)
	if err != nil {
		return nil, err
	}
	return resp.EntityDefs, nil
}

// CustomMetadataDefs implements discovery.MetadataClient.
func (c *Client) CustomMetadataDefs(ctx context.Context) ([]discovery.CustomMetadataDef, error) {
	resp, err := c.typedefs(ctx, typeBusinessMetadata)
	if err != nil {
		return nil, err
	}
	return resp.BusinessMetadataDefs, nil
}

// classificationDefsKey caches definitions enriched with usage counts.
const classificationDefsKey = "classification_defs"

// ClassificationDefs implements discovery.MetadataClient. The typedefs
// endpoint only describes classifications; usage counts come from one
// approximate-count search per classification. A failed count leaves that
// classification's count at zero rather than failing definition discovery.
func (c *Client) ClassificationDefs(ctx context.Context) ([]discovery.ClassificationDef, error) {
	if c.cache != nil {
		if cached, ok := c.cache.Get(classificationDefsKey); ok {
			return cached.([]discovery.ClassificationDef), nil
		}
	}

	resp, err := c.typedefs(ctx, typeClassification)
	if err != nil {
		return nil, err
	}

	defs := make([]discovery.ClassificationDef, len(resp.ClassificationDefs))
	copy(defs, resp.ClassificationDefs)
	for i := range defs {
		count, err := c.CountAssetsWithClassification(ctx, defs[i].Name)
		if err != nil {
			continue
		}
		defs[i].UsageCount = int(count)
	}

	if c.cache != nil {
		c.cache.Set(classificationDefsKey, defs, gocache.DefaultExpiration)
	}
	return defs, nil
}

// searchRequest is the index search query envelope.
type searchRequest struct {
	DSL searchDSL `json:"dsl"`
}

type searchDSL struct {
	Size  int            `json:"size"`
	Query map[string]any `json:"query"`
}

// searchEntity is one entity returned by index search.
type searchEntity struct {
	GUID       string         `json:"guid"`
	TypeName   string         `json:"typeName"`
	Attributes map[string]any `json:"attributes"`
}

type searchResponse struct {
	ApproximateCount int64          `json:"approximateCount"`
	Entities         []searchEntity `json:"entities"`
}

func termQuery(field, value string) map[string]any {
	return map[string]any{
		"term": map[string]any{field: value},
	}
}

func (c *Client) search(ctx context.Context, size int, query map[string]any) (*searchResponse, error) {
	var resp searchResponse
	req := searchRequest{DSL: searchDSL{Size: size, Query: query}}
	if err := c.transport.PostJSON(ctx, searchPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Domains implements discovery.MetadataClient.
func (c *Client) Domains(ctx context.Context) ([]schema.Domain, error) {
	resp, err := c.search(ctx, 100, termQuery("__typeName.keyword", "DataDomain"))
	if err != nil {
		return nil, err
	}

	domains := make([]schema.Domain, 0, len(resp.Entities))
	for _, e := range resp.Entities {
		domains = append(domains, schema.Domain{
			GUID:          e.GUID,
			Name:          stringAttr(e.Attributes, "name"),
			QualifiedName: stringAttr(e.Attributes, "qualifiedName"),
			ParentGUID:    stringAttr(e.Attributes, "parentDomainGuid"),
		})
	}
	return domains, nil
}

// Glossaries implements discovery.MetadataClient.
func (c *Client) Glossaries(ctx context.Context) ([]schema.Glossary, error) {
	resp, err := c.search(ctx, 100, termQuery("__typeName.keyword", "AtlasGlossary"))
	if err != nil {
		return nil, err
	}

	glossaries := make([]schema.Glossary, 0, len(resp.Entities))
	for _, e := range resp.Entities {
		glossaries = append(glossaries, schema.Glossary{
			GUID:          e.GUID,
			Name:          stringAttr(e.Attributes, "name"),
			QualifiedName: stringAttr(e.Attributes, "qualifiedName"),
			TermCount:     intAttr(e.Attributes, "termCount"),
		})
	}
	return glossaries, nil
}

// CountAssets implements discovery.MetadataClient.
func (c *Client) CountAssets(ctx context.Context, assetType string) (int64, error) {
	resp, err := c.search(ctx, 0, termQuery("__typeName.keyword", assetType))
	if err != nil {
		return 0, err
	}
	return resp.ApproximateCount, nil
}

// CountAssetsWithClassification returns the number of assets tagged with the
// given classification.
func (c *Client) CountAssetsWithClassification(ctx context.Context, name string) (int64, error) {
	resp, err := c.search(ctx, 0, termQuery("__traitNames", name))
	if err != nil {
		return 0, err
	}
	return resp.ApproximateCount, nil
}

// CountAssetsWithAttribute implements discovery.MetadataClient.
func (c *Client) CountAssetsWithAttribute(ctx context.Context, assetType, attribute string) (int64, error) {
	query := map[string]any{
		"bool": map[string]any{
			"filter": []map[string]any{
				termQuery("__typeName.keyword", assetType),
				{"exists": map[string]any{"field": attribute}},
			},
		},
	}
	resp, err := c.search(ctx, 0, query)
	if err != nil {
		return 0, err
	}
	return resp.ApproximateCount, nil
}

func stringAttr(attrs map[string]any, key string) string {
	if v, ok := attrs[key].(string); ok {
		return v
	}
	return ""
}

func intAttr(attrs map[string]any, key string) int {
	switch v := attrs[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		var n int
		_, _ = fmt.Sscanf(v, "%d", &n)
		return n
	}
	return 0
}

//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	api "github.com/oshokin/release-manifest/internal/api/grpc/manifest"
	"github.com/oshokin/release-manifest/internal/config"
	domain "github.com/oshokin/release-manifest/internal/domain/manifest"
)

// Client wraps the gRPC ManifestService client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the manifest server.
	conn *grpc.ClientConn
	// api is the ManifestService client stub.
	api *api.ManifestServiceClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
	// actor is announced to the server on every call.
	actor string
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithActor sets the "user@host" announced to the server.
func WithActor(actor string) Option {
	return func(c *Client) {
		c.actor = actor
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errNotConnected is returned by calls on a client without a connection.
	errNotConnected = errors.New("client is not connected")
)

// Dial establishes a gRPC connection to the manifest server.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy until native TLS is added.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial manifest server: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         api.NewManifestServiceClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// Generate assembles the manifest of a stored profile.
func (c *Client) Generate(ctx context.Context, id, swVersion string) (domain.Document, error) {
	return c.document(ctx, api.MethodGenerate, domain.Document{
		api.FieldPackageID: id,
		api.FieldSWVersion: swVersion,
	})
}

// ListProfiles returns every stored profile.
func (c *Client) ListProfiles(ctx context.Context) ([]domain.Document, error) {
	resp, err := c.document(ctx, api.MethodListProfiles, nil)
	if err != nil {
		return nil, err
	}

	return documents(resp.List(api.FieldProfiles)), nil
}

// GetProfile returns one stored profile.
func (c *Client) GetProfile(ctx context.Context, id string) (domain.Document, error) {
	return c.document(ctx, api.MethodGetProfile, domain.Document{api.FieldPackageID: id})
}

// PutProfile stores doc under id, or under its own sw_package_id when id is empty.
func (c *Client) PutProfile(ctx context.Context, id string, doc domain.Document) (bool, error) {
	resp, err := c.document(ctx, api.MethodUpsertProfile, domain.Document{
		api.FieldPackageID: id,
		api.FieldProfile:   map[string]any(doc),
	})
	if err != nil {
		return false, err
	}

	created, _ := resp[api.FieldCreated].(bool)

	return created, nil
}

// ReplaceProfiles overwrites the stored list and returns the stored count.
func (c *Client) ReplaceProfiles(ctx context.Context, docs []domain.Document) (int, error) {
	items := make([]any, 0, len(docs))
	for _, doc := range docs {
		items = append(items, map[string]any(doc))
	}

	resp, err := c.document(ctx, api.MethodReplaceProfiles, domain.Document{api.FieldProfiles: items})
	if err != nil {
		return 0, err
	}

	count, _ := resp[api.FieldCount].(float64)

	return int(count), nil
}

// DeleteProfile removes a stored profile.
func (c *Client) DeleteProfile(ctx context.Context, id string) (bool, error) {
	resp, err := c.document(ctx, api.MethodDeleteProfile, domain.Document{api.FieldPackageID: id})
	if err != nil {
		return false, err
	}

	deleted, _ := resp[api.FieldDeleted].(bool)

	return deleted, nil
}

// ResolveTag returns the browse URL of an exact tag.
func (c *Client) ResolveTag(ctx context.Context, project, tag string) (string, error) {
	resp, err := c.document(ctx, api.MethodResolveTag, domain.Document{
		api.FieldProject: project,
		api.FieldTag:     tag,
	})
	if err != nil {
		return "", err
	}

	return resp.String(api.FieldURL), nil
}

// ListTags returns the tags of a project.
func (c *Client) ListTags(ctx context.Context, project string) ([]domain.Document, error) {
	resp, err := c.document(ctx, api.MethodListTags, domain.Document{api.FieldProject: project})
	if err != nil {
		return nil, err
	}

	return documents(resp.List(api.FieldTags)), nil
}

// ResolveArtifact returns the location and checksum of a logical artifact.
func (c *Client) ResolveArtifact(ctx context.Context, name, swVersion string) (domain.Document, error) {
	return c.document(ctx, api.MethodResolveArtifact, domain.Document{
		api.FieldName:      name,
		api.FieldSWVersion: swVersion,
	})
}

// GetItem returns a CarWeaver item.
func (c *Client) GetItem(ctx context.Context, id string) (domain.Document, error) {
	return c.document(ctx, api.MethodGetItem, domain.Document{api.FieldItemID: id})
}

// document sends req to method and decodes the response.
func (c *Client) document(ctx context.Context, method string, req domain.Document) (domain.Document, error) {
	if c == nil || c.api == nil {
		return nil, errNotConnected
	}

	in, err := api.ToStruct(req)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", method, err)
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	var out *structpb.Struct

	out, err = c.api.Call(api.WithActor(callCtx, c.actor), method, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}

	return api.FromStruct(out), nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}

func documents(items []any) []domain.Document {
	docs := make([]domain.Document, 0, len(items))

	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			docs = append(docs, m)
		}
	}

	return docs
}

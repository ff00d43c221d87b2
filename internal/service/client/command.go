package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/release-manifest/internal/config"
	domain "github.com/oshokin/release-manifest/internal/domain/manifest"
	"github.com/oshokin/release-manifest/internal/logger"
	"github.com/oshokin/release-manifest/internal/service/common"
)

// Options configures how manifestctl reaches the server.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides server address from config when specified.
	ServerAddress string
	// Out receives command output, os.Stdout when nil.
	Out io.Writer
}

// Call is one client operation returning a printable result.
type Call func(ctx context.Context, client *common.Client) (any, error)

// Run connects to the server, performs call and prints its result.
func Run(ctx context.Context, opts *Options, call Call) error {
	ctx = logger.WithName(ctx, "manifestctl")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	actor, err := common.DetectActor()
	if err != nil {
		// The actor only feeds the server's audit log.
		logger.WarnKV(ctx, "Failed to detect actor", "error", err)
	}

	client, err := common.Dial(ctx, serverAddress,
		common.WithCallTimeout(cfg.Timeout),
		common.WithActor(actor),
	)
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	logger.DebugKV(ctx, "Calling manifest server", "server_address", serverAddress)

	result, err := call(ctx, client)
	if err != nil {
		return err
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	return Print(out, result)
}

// Generate returns the manifest of id at swVersion.
func Generate(id, swVersion string) Call {
	return func(ctx context.Context, c *common.Client) (any, error) {
		return c.Generate(ctx, id, swVersion)
	}
}

// ListProfiles returns every stored profile.
func ListProfiles() Call {
	return func(ctx context.Context, c *common.Client) (any, error) {
		return c.ListProfiles(ctx)
	}
}

// GetProfile returns one stored profile.
func GetProfile(id string) Call {
	return func(ctx context.Context, c *common.Client) (any, error) {
		return c.GetProfile(ctx, id)
	}
}

// PutProfile stores the profile read from path under id.
func PutProfile(id, path string) Call {
	return func(ctx context.Context, c *common.Client) (any, error) {
		value, err := ReadJSON(path)
		if err != nil {
			return nil, err
		}

		doc, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s must hold a JSON object", domain.ErrInvalidInput, path)
		}

		created, err := c.PutProfile(ctx, id, doc)
		if err != nil {
			return nil, err
		}

		return domain.Document{"created": created}, nil
	}
}

// ReplaceProfiles overwrites the stored list with the list read from path.
func ReplaceProfiles(path string) Call {
	return func(ctx context.Context, c *common.Client) (any, error) {
		value, err := ReadJSON(path)
		if err != nil {
			return nil, err
		}

		items, ok := value.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s must hold a JSON list", domain.ErrInvalidInput, path)
		}

		docs := make([]domain.Document, 0, len(items))

		for i, item := range items {
			doc, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: profile %d is not an object", domain.ErrInvalidInput, i)
			}

			docs = append(docs, doc)
		}

		count, err := c.ReplaceProfiles(ctx, docs)
		if err != nil {
			return nil, err
		}

		return domain.Document{"count": count}, nil
	}
}

// DeleteProfile removes a stored profile.
func DeleteProfile(id string) Call {
	return func(ctx context.Context, c *common.Client) (any, error) {
		deleted, err := c.DeleteProfile(ctx, id)
		if err != nil {
			return nil, err
		}

		return domain.Document{"deleted": deleted}, nil
	}
}

// ResolveTag returns the browse URL of an exact tag.
func ResolveTag(project, tag string) Call {
	return func(ctx context.Context, c *common.Client) (any, error) {
		return c.ResolveTag(ctx, project, tag)
	}
}

// ListTags returns the tags of a project.
func ListTags(project string) Call {
	return func(ctx context.Context, c *common.Client) (any, error) {
		return c.ListTags(ctx, project)
	}
}

// ResolveArtifact returns the location and checksum of a logical artifact.
func ResolveArtifact(name, swVersion string) Call {
	return func(ctx context.Context, c *common.Client) (any, error) {
		return c.ResolveArtifact(ctx, name, swVersion)
	}
}

// GetItem returns a CarWeaver item.
func GetItem(id string) Call {
	return func(ctx context.Context, c *common.Client) (any, error) {
		return c.GetItem(ctx, id)
	}
}

// ReadJSON reads a JSON object or list from path; "-" reads standard input.
func ReadJSON(path string) (any, error) {
	var (
		data []byte
		err  error
	)

	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(filepath.Clean(path))
	}

	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var value structpb.Value
	if err = protojson.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return value.AsInterface(), nil
}

// Print writes result to out: strings as plain lines, everything else as
// indented JSON.
func Print(out io.Writer, result any) error {
	if s, ok := result.(string); ok {
		_, err := fmt.Fprintln(out, s)

		return err
	}

	value, err := structpb.NewValue(plain(result))
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}

	data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}

	_, err = fmt.Fprintln(out, string(data))

	return err
}

// plain converts documents to the map and list types structpb accepts.
func plain(v any) any {
	switch t := v.(type) {
	case domain.Document:
		return map[string]any(t.Clone())
	case []domain.Document:
		items := make([]any, 0, len(t))
		for _, doc := range t {
			items = append(items, map[string]any(doc.Clone()))
		}

		return items
	default:
		return v
	}
}

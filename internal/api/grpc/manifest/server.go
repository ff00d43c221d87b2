package manifest

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/release-manifest/internal/client/carweaver"
	"github.com/oshokin/release-manifest/internal/client/gerrit"
	domain "github.com/oshokin/release-manifest/internal/domain/manifest"
	"github.com/oshokin/release-manifest/internal/service/resolver"
)

// Request and response field names.
const (
	FieldPackageID = domain.IDKey
	FieldSWVersion = "sw_version"
	FieldProfile   = "profile"
	FieldProfiles  = "profiles"
	FieldCreated   = "created"
	FieldDeleted   = "deleted"
	FieldCount     = "count"
	FieldProject   = "project"
	FieldTag       = "tag"
	FieldTags      = "tags"
	FieldURL       = "url"
	FieldName      = "name"
	FieldItemID    = "id"
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	Generate(ctx context.Context, id, swVersion string) (*domain.Manifest, error)
	ListProfiles(ctx context.Context) ([]domain.Document, error)
	GetProfile(ctx context.Context, id string) (domain.Document, error)
	UpsertProfile(ctx context.Context, id string, doc domain.Document) (bool, error)
	ReplaceProfiles(ctx context.Context, docs []domain.Document) error
	DeleteProfile(ctx context.Context, id string) (bool, error)
	ResolveTag(ctx context.Context, project, tag string) (string, error)
	ListTags(ctx context.Context, project string) ([]TagInfo, error)
	ResolveArtifact(ctx context.Context, name, swVersion string) (resolver.ResolvedArtifact, error)
	GetItem(ctx context.Context, id string) (*carweaver.Item, error)
}

// TagInfo is a tag together with its resolved browse URL.
type TagInfo struct {
	gerrit.Tag

	URL string
}

// Server implements ManifestService on top of a Service.
type Server struct {
	// service provides the business logic behind every method.
	service Service
}

var _ ManifestServiceServer = (*Server)(nil)

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// Generate assembles a manifest.
func (s *Server) Generate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	m, err := s.service.Generate(ctx, idField(req), stringField(req, FieldSWVersion))
	if err != nil {
		return nil, toStatus(err)
	}

	doc, err := m.Document()
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	return toStruct(doc)
}

// ListProfiles returns every stored profile.
func (s *Server) ListProfiles(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	docs, err := s.service.ListProfiles(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	return toStruct(domain.Document{FieldProfiles: documentList(docs)})
}

// GetProfile returns one stored profile.
func (s *Server) GetProfile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	doc, err := s.service.GetProfile(ctx, idField(req))
	if err != nil {
		return nil, toStatus(err)
	}

	return toStruct(doc)
}

// UpsertProfile stores the request's profile under the request's id.
func (s *Server) UpsertProfile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	doc := FromStruct(req.GetFields()[FieldProfile].GetStructValue())
	if doc == nil {
		return nil, status.Error(codes.InvalidArgument, "profile is required")
	}

	id := idField(req)

	created, err := s.service.UpsertProfile(ctx, id, doc)
	if err != nil {
		return nil, toStatus(err)
	}

	return toStruct(domain.Document{FieldPackageID: id, FieldCreated: created})
}

// ReplaceProfiles overwrites the whole profile list.
func (s *Server) ReplaceProfiles(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	list := req.GetFields()[FieldProfiles].GetListValue()
	if list == nil {
		return nil, status.Error(codes.InvalidArgument, "profiles list is required")
	}

	docs := make([]domain.Document, 0, len(list.GetValues()))

	for i, v := range list.GetValues() {
		doc := FromStruct(v.GetStructValue())
		if doc == nil {
			return nil, status.Errorf(codes.InvalidArgument, "profile %d is not an object", i)
		}

		docs = append(docs, doc)
	}

	if err := s.service.ReplaceProfiles(ctx, docs); err != nil {
		return nil, toStatus(err)
	}

	return toStruct(domain.Document{FieldCount: len(docs)})
}

// DeleteProfile removes a stored profile.
func (s *Server) DeleteProfile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	deleted, err := s.service.DeleteProfile(ctx, idField(req))
	if err != nil {
		return nil, toStatus(err)
	}

	return toStruct(domain.Document{FieldDeleted: deleted})
}

// ResolveTag returns the browse URL of an exact tag.
func (s *Server) ResolveTag(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	url, err := s.service.ResolveTag(ctx, stringField(req, FieldProject), stringField(req, FieldTag))
	if err != nil {
		return nil, toStatus(err)
	}

	return toStruct(domain.Document{FieldURL: url})
}

// ListTags returns the tags of a project.
func (s *Server) ListTags(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	tags, err := s.service.ListTags(ctx, stringField(req, FieldProject))
	if err != nil {
		return nil, toStatus(err)
	}

	items := make([]any, 0, len(tags))
	for _, tag := range tags {
		items = append(items, map[string]any{
			"ref":      tag.Ref,
			"revision": tag.Revision,
			"message":  tag.Message,
			FieldURL:   tag.URL,
		})
	}

	return toStruct(domain.Document{FieldTags: items})
}

// ResolveArtifact returns the location and checksum of a logical artifact.
func (s *Server) ResolveArtifact(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	resolved, err := s.service.ResolveArtifact(ctx, stringField(req, FieldName), stringField(req, FieldSWVersion))
	if err != nil {
		return nil, toStatus(err)
	}

	return toStruct(domain.Document{"location": resolved.URL, "sha256": resolved.SHA256})
}

// GetItem returns a CarWeaver item.
func (s *Server) GetItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	item, err := s.service.GetItem(ctx, stringField(req, FieldItemID))
	if err != nil {
		return nil, toStatus(err)
	}

	return toStruct(domain.Document{
		"id":            item.ID,
		"persistent_id": item.PersistentID,
		"version":       item.Version,
	})
}

// toStatus maps domain errors to gRPC status errors.
func toStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}

	code := codes.Internal

	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnknownArtifactName):
		code = codes.InvalidArgument
	case errors.Is(err, domain.ErrProfileNotFound),
		errors.Is(err, domain.ErrArtifactNotFound),
		errors.Is(err, domain.ErrTagNotFound):
		code = codes.NotFound
	case errors.Is(err, domain.ErrArtifactAmbiguous):
		code = codes.FailedPrecondition
	case errors.Is(err, domain.ErrNotConfigured):
		code = codes.Unimplemented
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	}

	return status.Error(code, err.Error())
}

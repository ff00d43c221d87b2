package manifest

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/release-manifest/internal/domain/manifest"
)

// toStruct encodes a document as a protobuf Struct.
func toStruct(doc domain.Document) (*structpb.Struct, error) {
	s, err := ToStruct(doc)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	return s, nil
}

// ToStruct encodes a document as a protobuf Struct. Nested documents are
// flattened to plain maps first because structpb only accepts those.
func ToStruct(doc domain.Document) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any(doc.Clone()))
}

// FromStruct decodes a protobuf Struct, returning nil for a nil message.
func FromStruct(s *structpb.Struct) domain.Document {
	if s == nil {
		return nil
	}

	return domain.Document(s.AsMap())
}

// idField reads sw_package_id as a string whether it was sent as a number or text.
func idField(req *structpb.Struct) string {
	v, ok := req.GetFields()[FieldPackageID]
	if !ok {
		return ""
	}

	return domain.IDString(v.AsInterface())
}

func stringField(req *structpb.Struct, key string) string {
	return req.GetFields()[key].GetStringValue()
}

func documentList(docs []domain.Document) []any {
	items := make([]any, 0, len(docs))
	for _, doc := range docs {
		items = append(items, map[string]any(doc.Clone()))
	}

	return items
}

// Package manifest implements the gRPC transport for the manifest service.
//
// Messages are google.protobuf.Struct documents, so the service descriptor is
// declared here instead of being generated from a .proto file. The server
// adapts those documents to a business-service interface and maps domain
// errors to gRPC status codes.
package manifest

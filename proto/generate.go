// Package proto holds the generated gRPC client/server stubs for the LLM
// sidecar contract defined in llm.proto.
package proto

//go:generate protoc --go_out=. --go_opt=paths=source_relative --go-grpc_out=. --go-grpc_opt=paths=source_relative llm.proto

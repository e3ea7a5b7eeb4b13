// Package client talks to the proxy over gRPC and owns the CLI's local
// sqlite database.
package client

// Package api exposes the bridge over HTTP. It resolves request paths inside
// the configured library, hands the opened descriptors to the bridge and
// translates outcomes to JSON or PNG responses.
package api

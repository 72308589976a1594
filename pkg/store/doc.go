// Package store keeps hydrated pages for serving.
//
// A page is addressed by its URL path. Paths are mapped to keys the way a
// static file server expects them:
//
//	/            -> index.html
//	/docs        -> docs/index.html
//	/docs/a.html -> docs/a.html
//
// With precompression enabled every Put also writes a brotli variant under
// "<key>.br", which Open returns when asked for EncodingBrotli.
package store

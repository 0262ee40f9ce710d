// Package graph implements the content source port against a Microsoft
// Graph style drive API: cursor-based delta listings, item fetches and
// client-credentials authentication.
package graph

// Package web embeds the live preview page served by the API server.
//
// The page lives in web/out/ and is embedded at compile time using
// go:embed. It talks to the server over /api/v1/ws.
//
// Usage in the API server:
//
//	import "github.com/seenimoa/notegraph/web"
//	fs := web.DistFS()  // returns io/fs.FS rooted at out/
package web

import (
	"embed"
	"io/fs"

	log "github.com/sirupsen/logrus"
)

//go:embed all:out
var dist embed.FS

// DistFS returns a filesystem rooted at the embedded out/ directory.
// This is ready to use with http.FileServerFS or http.FS.
func DistFS() fs.FS {
	sub, err := fs.Sub(dist, "out")
	if err != nil {
		log.Fatalf("web.DistFS: %v", err)
	}
	return sub
}

package main

import (
	"embed"
	"io/fs"
)

// webFS carries the calculator pages and stylesheet inside the binary, so the
// server needs nothing on disk besides an optional roles file.
//
//go:embed web/templates/*.tmpl web/static
var webFS embed.FS

// Templates returns the page templates (calculator, info and shared layout).
func Templates() fs.FS { return mustSub("web/templates") }

// Static returns the assets served under BASE_PATH/static/.
func Static() fs.FS { return mustSub("web/static") }

// mustSub panics on a bad directory name; both names are fixed above.
func mustSub(dir string) fs.FS {
	sub, err := fs.Sub(webFS, dir)
	if err != nil {
		panic("embedded web assets: " + err.Error())
	}
	return sub
}

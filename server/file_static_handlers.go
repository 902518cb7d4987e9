package server

import (
	"embed"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
)

//go:embed static/*
var embeddedStatic embed.FS

// staticFS is rooted at static/ so asset paths map straight onto it
var staticFS = mustSub(embeddedStatic, "static")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic("Failed to create sub filesystem: " + err.Error())
	}
	return sub
}

// StreamFile writes one embedded asset, typed by its extension
func StreamFile(w http.ResponseWriter, name string) error {
	data, err := fs.ReadFile(staticFS, name)
	if err != nil {
		return fmt.Errorf("[StreamFile] %s: %w", name, err)
	}

	w.Header().Set("Content-Type", assetContentType(name, data))
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("[StreamFile] write %s: %w", name, err)
	}
	return nil
}

func assetContentType(name string, data []byte) string {
	ctype := mime.TypeByExtension(strings.ToLower(path.Ext(name)))
	if ctype == "" {
		ctype = http.DetectContentType(data)
	}
	if strings.HasPrefix(ctype, "text/") && !strings.Contains(strings.ToLower(ctype), "charset=") {
		ctype += "; charset=utf-8"
	}
	return ctype
}

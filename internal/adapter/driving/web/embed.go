package web

import "embed"

// StaticFS holds the embedded static assets (stylesheet, page scripts).
//
//go:embed static/*
var StaticFS embed.FS

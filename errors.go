/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// Result classifies the outcome of an orchestration operation. Rejections
// are never fatal; callers decide whether a rejection is reported to the
// requester or silently dropped.
type Result int

const (
	Ok Result = iota
	Denied
	NotFound
	InvalidState
)

func (r Result) String() string {
	switch r {
	case Ok:
		return "ok"
	case Denied:
		return "denied"
	case NotFound:
		return "not found"
	case InvalidState:
		return "invalid state"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}

func logf(cfg *Config, format string, args ...any) {
	if cfg == nil || !cfg.verbose {
		return
	}

	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

func newPage(title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(`<meta charset="utf-8"><style>`)
	htmlBody.WriteString(`html,body{height:100%;width:100%;margin:0;font-family:sans-serif;}</style>`)
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", title))
	htmlBody.WriteString(fmt.Sprintf("<body><p>%s</p></body></html>", body))

	return htmlBody.String()
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesis

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderHTML converts a markdown report to an HTML fragment.
func RenderHTML(report string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(report), &buf); err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}
	return buf.String(), nil
}

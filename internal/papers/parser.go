// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package papers converts between the blank-line separated text blocks
// returned by the source fetchers and structured paper records.
//
// A block looks like:
//
//	Title (2024) by A. Author, B. Author
//	Abstract: ...
//	URL: https://...
//	PDF: https://...
package papers

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"

	"github.com/pdiddy/research-funnel/pkg/types"
)

var (
	yearRe     = regexp.MustCompile(`\s*\((\d{4}|N/A|[Uu]nknown)\)`)
	trailingRe = regexp.MustCompile(`\s*\((\d{4}|N/A|[Uu]nknown)\).*$`)
	spaceRe    = regexp.MustCompile(`\s+`)
	blankRe    = regexp.MustCompile(`\n[ \t\r]*\n`)
)

// IsMarker reports whether text is a fetcher marker rather than paper data:
// empty, "No papers found.", "No results", or an error message.
func IsMarker(text string) bool {
	s := strings.TrimSpace(text)
	return s == "" ||
		strings.EqualFold(s, types.NoPapersFound) ||
		strings.EqualFold(s, types.NoResults) ||
		strings.HasPrefix(s, types.ErrorPrefix)
}

// SplitBlocks splits a blob on blank lines and returns the trimmed,
// non-empty blocks in order. Markers yield no blocks.
func SplitBlocks(blob string) []string {
	if IsMarker(blob) {
		return nil
	}
	var blocks []string
	for _, b := range blankRe.Split(strings.ReplaceAll(blob, "\r\n", "\n"), -1) {
		if b = strings.TrimSpace(b); b != "" {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// fieldPrefixes start the lines of a block that carry a field rather than
// a header.
var fieldPrefixes = []string{"Abstract:", "URL:", "PDF:"}

func isFieldLine(line string) bool {
	for _, p := range fieldPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// Header parses a header line into its title, year and authors. Missing
// parts come back empty; a field line has no title.
func Header(line string) (title, year, authors string) {
	line = strings.TrimSpace(line)
	if isFieldLine(line) {
		return "", "", ""
	}
	if loc := yearRe.FindStringSubmatchIndex(line); loc != nil {
		title = strings.TrimSpace(line[:loc[0]])
		year = line[loc[2]:loc[3]]
		rest := strings.TrimSpace(line[loc[1]:])
		authors = strings.TrimSpace(strings.TrimPrefix(rest, "by "))
		if rest == "by" {
			authors = ""
		}
		return title, year, authors
	}
	if i := strings.LastIndex(line, " by "); i >= 0 {
		return strings.TrimSpace(line[:i]), "", strings.TrimSpace(line[i+4:])
	}
	return line, "", ""
}

// NormalizeTitle returns the deduplication key of a header line: the
// trailing "(YYYY) by ..." removed, whitespace collapsed, lower-cased.
func NormalizeTitle(headerLine string) string {
	s := trailingRe.ReplaceAllString(strings.TrimSpace(headerLine), "")
	return strings.ToLower(spaceRe.ReplaceAllString(strings.TrimSpace(s), " "))
}

// BlockKey returns the normalized title of a block's first line.
func BlockKey(block string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(block), "\n")
	return NormalizeTitle(first)
}

// Parse turns a blob into paper records in source order. Blocks without a
// title are dropped; parsing never fails.
func Parse(blob string, source types.Source) []types.Paper {
	var out []types.Paper
	for _, block := range SplitBlocks(blob) {
		if p, ok := parseBlock(block, len(out), source); ok {
			out = append(out, p)
		}
	}
	return out
}

func parseBlock(block string, position int, source types.Source) (types.Paper, bool) {
	lines := strings.Split(block, "\n")
	title, year, authors := Header(lines[0])
	if title == "" {
		return types.Paper{}, false
	}

	var abstract []string
	var url, pdf string
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case strings.HasPrefix(line, "Abstract:"):
			abstract = append(abstract, strings.TrimSpace(strings.TrimPrefix(line, "Abstract:")))
		case strings.HasPrefix(line, "URL:"):
			url = strings.TrimSpace(strings.TrimPrefix(line, "URL:"))
		case strings.HasPrefix(line, "PDF:"):
			pdf = strings.TrimSpace(strings.TrimPrefix(line, "PDF:"))
		case strings.HasPrefix(line, "by ") && authors == "":
			authors = strings.TrimSpace(line[3:])
		default:
			abstract = append(abstract, line)
		}
	}

	p := types.Paper{
		ID:       paperID(position, title),
		Title:    title,
		Year:     year,
		Authors:  authors,
		Abstract: strings.TrimSpace(strings.Join(abstract, " ")),
		URL:      url,
		PDFURL:   pdf,
		Source:   source,
	}
	if len(p.Year) != 4 || p.Year == "N/A" {
		p.Year = types.UnknownYear
	}
	if p.Authors == "" {
		p.Authors = types.UnknownAuthors
	}
	if p.Abstract == "" {
		p.Abstract = types.MissingAbstract
	}
	return p, true
}

func paperID(position int, title string) string {
	h := fnv.New32a()
	h.Write([]byte(title))
	return fmt.Sprintf("paper_%d_%04d", position, h.Sum32()%10000)
}

// Format serializes a paper back into block form.
func Format(p types.Paper) string {
	var sb strings.Builder
	year := p.Year
	if year == "" {
		year = types.UnknownYear
	}
	fmt.Fprintf(&sb, "%s (%s)", p.Title, year)
	if p.Authors != "" {
		fmt.Fprintf(&sb, " by %s", p.Authors)
	}
	if p.Abstract != "" {
		fmt.Fprintf(&sb, "\nAbstract: %s", p.Abstract)
	}
	if p.URL != "" {
		fmt.Fprintf(&sb, "\nURL: %s", p.URL)
	}
	if p.PDFURL != "" {
		fmt.Fprintf(&sb, "\nPDF: %s", p.PDFURL)
	}
	return sb.String()
}

// FormatAll serializes papers as blank-line separated blocks. No papers
// yields "No papers found.".
func FormatAll(ps []types.Paper) string {
	if len(ps) == 0 {
		return types.NoPapersFound
	}
	blocks := make([]string, len(ps))
	for i, p := range ps {
		blocks[i] = Format(p)
	}
	return strings.Join(blocks, "\n\n")
}

package service

import (
	"net/url"
	"strings"

	dom "merchantfeed/internal/services/feedimport/domain"
)

// extensionTable is checked in order, longest suffix first
var extensionTable = []struct {
	suffix string
	c      dom.Compression
}{
	{".tar.gz", dom.CompressionTarGz},
	{".zip", dom.CompressionZip},
	{".gz", dom.CompressionGzip},
}

// ResolveCompression decides the extraction strategy from the declared config
// it returns CompressionNone when nothing is declared or nothing could be guessed,
// which tells the planner to fall back to the transport probe
func ResolveCompression(feed *dom.FeedConfig, rawURL string) dom.Compression {
	if feed == nil || !feed.Compressed {
		return dom.CompressionNone
	}
	switch feed.Compression {
	case dom.CompressionTarGz, dom.CompressionZip, dom.CompressionGzip:
		return feed.Compression
	case dom.CompressionUnknown:
		return GuessByExtension(rawURL)
	}
	return dom.CompressionNone
}

// GuessByExtension maps the file extension of the url path to a compression
func GuessByExtension(rawURL string) dom.Compression {
	p := strings.Trim(rawURL, "'")
	if u, err := url.Parse(p); err == nil && u.Path != "" {
		p = u.Path
	}
	p = strings.ToLower(p)
	for _, e := range extensionTable {
		if strings.HasSuffix(p, e.suffix) {
			return e.c
		}
	}
	return dom.CompressionNone
}

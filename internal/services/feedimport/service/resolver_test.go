package service

import (
	"testing"

	dom "merchantfeed/internal/services/feedimport/domain"
)

func TestResolveCompression(t *testing.T) {
	cases := []struct {
		name string
		feed *dom.FeedConfig
		url  string
		want dom.Compression
	}{
		{"nil feed", nil, "http://x/a.gz", dom.CompressionNone},
		{"not declared ignores extension", &dom.FeedConfig{Compression: dom.CompressionZip}, "http://x/a.zip", dom.CompressionNone},
		{"declared gzip", &dom.FeedConfig{Compressed: true, Compression: dom.CompressionGzip}, "http://x/a.csv", dom.CompressionGzip},
		{"declared zip", &dom.FeedConfig{Compressed: true, Compression: dom.CompressionZip}, "http://x/a", dom.CompressionZip},
		{"declared tar", &dom.FeedConfig{Compressed: true, Compression: dom.CompressionTarGz}, "http://x/a", dom.CompressionTarGz},
		{"unknown tar.gz", &dom.FeedConfig{Compressed: true, Compression: dom.CompressionUnknown}, "https://x/feed.tar.gz", dom.CompressionTarGz},
		{"unknown zip", &dom.FeedConfig{Compressed: true, Compression: dom.CompressionUnknown}, "https://x/feed.ZIP?token=1", dom.CompressionZip},
		{"unknown gz", &dom.FeedConfig{Compressed: true, Compression: dom.CompressionUnknown}, "'https://x/feed.csv.gz'", dom.CompressionGzip},
		{"unknown unresolved", &dom.FeedConfig{Compressed: true, Compression: dom.CompressionUnknown}, "https://x/feed.csv", dom.CompressionNone},
		{"declared none", &dom.FeedConfig{Compressed: true, Compression: dom.CompressionNone}, "https://x/feed.gz", dom.CompressionNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveCompression(tc.feed, tc.url); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

package main

import (
	"errors"
	"testing"

	perr "merchantfeed/internal/platform/errors"
	fdom "merchantfeed/internal/services/feedimport/domain"
	dom "merchantfeed/internal/services/rowprocess/domain"
)

func TestExitStatus(t *testing.T) {
	cases := []struct {
		name string
		sum  dom.Summary
		want int
	}{
		{"clean", dom.Summary{Processed: 3}, 0},
		{"guard abort", dom.Summary{Aborted: true, Err: perr.InvalidFeedf("Max allowed file size of 10 bytes exceeded.")}, fdom.ExitInvalidFeed},
		{"export failure", dom.Summary{Aborted: true, Err: errors.New("connection reset")}, 1},
	}
	for _, c := range cases {
		if got := exitStatus(c.sum); got != c.want {
			t.Fatalf("%s: exit status %d want %d", c.name, got, c.want)
		}
	}
}

package service

import (
	"regexp"
	"strconv"

	perr "merchantfeed/internal/platform/errors"
	dom "merchantfeed/internal/services/feedimport/domain"
)

var (
	// fetchFailure is the only diagnostic shape the classifier understands
	fetchFailure = regexp.MustCompile(`.+/(wget\s).*(Exit-Code: \d).*`)
	exitCodeRe   = regexp.MustCompile(`Exit-Code: (\d)`)
)

// ExitStatusClassifier maps the diagnostic text of a failed fetch to a transport kind
// Exit codes are read as a single digit; anything wider is not a fetch failure we know
type ExitStatusClassifier struct{}

// CanClassify reports whether msg has the fetch failure shape
func (ExitStatusClassifier) CanClassify(msg string) bool {
	return fetchFailure.MatchString(msg)
}

// Classify extracts the exit digit from msg and maps it to a kind
// callers must check CanClassify first; a digit outside 1..8 is a defect
func (ExitStatusClassifier) Classify(msg string) (dom.TransportKind, error) {
	m := exitCodeRe.FindStringSubmatch(msg)
	if len(m) != 2 {
		return 0, perr.Internalf("no exit code in diagnostic: %q", msg)
	}
	code, _ := strconv.Atoi(m[1])
	kind, ok := dom.TransportKindFromExitCode(code)
	if !ok {
		return 0, perr.Internalf("Undefined wget exit code: %d", code)
	}
	return kind, nil
}

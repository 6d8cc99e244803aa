package pipeline

import (
	"os"
	"strings"
)

// Guidance is a non-fatal input problem reported back to the user instead of running.
type Guidance int

const (
	GuidanceNone Guidance = iota
	GuidanceMissingBoth
	GuidanceMissingDirectory
	GuidanceMissingQuestion
	GuidanceDirectoryNotFound
	GuidanceNoDocuments
)

var guidanceMessages = map[Guidance]string{
	GuidanceMissingBoth:       "directory and question missing: enter a document directory and write your question",
	GuidanceMissingDirectory:  "directory missing: enter the directory containing your documents",
	GuidanceMissingQuestion:   "question missing: the question cannot be empty",
	GuidanceDirectoryNotFound: "directory does not exist",
	GuidanceNoDocuments:       "no matching files found in the directory",
}

func (g Guidance) String() string {
	return guidanceMessages[g]
}

// CheckInput validates the raw inputs in the order the user should fix them.
// It does not list the directory.
func CheckInput(dir, question string) Guidance {
	dir = strings.TrimSpace(dir)
	question = strings.TrimSpace(question)

	switch {
	case dir == "" && question == "":
		return GuidanceMissingBoth
	case dir == "":
		return GuidanceMissingDirectory
	case question == "":
		return GuidanceMissingQuestion
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return GuidanceDirectoryNotFound
	}
	return GuidanceNone
}

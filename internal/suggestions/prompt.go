package suggestions

import (
	"fmt"
	"strings"
	"time"
)

const paraphraseSystem = "You are an expert academic writer helping to paraphrase text to avoid plagiarism while maintaining academic quality."

const citationSystem = "You are an expert in academic citations. Generate APA format citations."

func buildParaphrasePrompt(combined string, segmentCount int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Please rewrite each of the following %d text segments in a completely original way while maintaining the same meaning.\n", segmentCount)
	b.WriteString("Make them sound natural and academic. Ensure each rewrite is significantly different from the original to avoid plagiarism.\n")
	b.WriteString("The segments are separated by a line containing only \"---\".\n")
	fmt.Fprintf(&b, "Return exactly %d rewritten segments in the same order, separated by a line containing only \"---\". Do not add numbering or commentary.\n\n", segmentCount)
	b.WriteString("Segments:\n")
	b.WriteString(combined)
	return b.String()
}

// citationSource is one distinct URL with its title, in first-seen order.
type citationSource struct {
	URL   string
	Title string
}

func buildCitationPrompt(sources []citationSource, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a proper academic citation (APA format) for each of the following %d sources.\n", len(sources))
	b.WriteString("Return one citation per source in the same order, separated by a line containing only \"---\". Do not add numbering or commentary.\n\n")
	date := now.UTC().Format("2006-01-02")
	for i, src := range sources {
		fmt.Fprintf(&b, "Source %d:\nTitle: %s\nURL: %s\nDate: %s\n\n", i+1, src.Title, src.URL, date)
	}
	return b.String()
}

// fallbackCitation is used when a source's citation could not be parsed from
// the model output. Citation generation never fails the whole operation.
func fallbackCitation(url string) string {
	return "Retrieved from " + url
}

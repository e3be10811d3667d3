package classify

import (
	"strings"

	"github.com/sells-group/prospect-cli/internal/model"
)

// Accepted reports whether v admits a prospect: the model must call it
// qualified, it must not be a competitor, and its confidence must reach
// threshold regardless of what the model concluded.
func Accepted(v model.Verdict, threshold int) bool {
	return !v.Failed && v.IsQualifiedProspect && !v.IsCompetitor && v.Confidence >= threshold
}

// Categorize buckets a rejected verdict for the run's rejection tally.
// Failed verdicts count as errors; otherwise the rejection reason text is
// checked for geography then industry before falling back on confidence.
func Categorize(v model.Verdict, threshold int) model.RejectionReason {
	if v.Failed {
		return model.RejectError
	}
	reason := strings.ToLower(v.RejectionReason)
	switch {
	case strings.Contains(reason, "geograph"), strings.Contains(reason, "location"):
		return model.RejectWrongGeo
	case strings.Contains(reason, "industry"):
		return model.RejectWrongIndustry
	case v.Confidence < threshold:
		return model.RejectLowConfidence
	}
	return model.RejectNotBuyer
}

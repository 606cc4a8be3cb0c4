package core

import (
	"fmt"
	"strings"
)

// Select picks the first candidate, in catalog order, whose probe succeeded.
// Candidates without a result were never probed and are skipped. Failed probes
// ahead of the winner are carried on the selection as rejections.
func Select(ordered []TransportCandidate, results []ProbeResult) (SelectedTransport, error) {
	byID := make(map[string]ProbeResult, len(results))
	for _, result := range results {
		id := normalizeID(result.Candidate.ID)
		if _, exists := byID[id]; !exists {
			byID[id] = result
		}
	}

	rejected := make([]ProbeResult, 0, len(results))
	for _, candidate := range ordered {
		result, ok := byID[normalizeID(candidate.ID)]
		if !ok {
			continue
		}
		if !result.Available {
			rejected = append(rejected, result)
			continue
		}
		return SelectedTransport{
			candidate: candidate.clone(),
			reason:    result.Reason,
			rejected:  rejected,
		}, nil
	}

	if len(rejected) == 0 {
		return SelectedTransport{}, fmt.Errorf("%w: no candidate was probed", ErrNoUsableTransport)
	}
	reasons := make([]string, 0, len(rejected))
	for _, result := range rejected {
		reasons = append(reasons, result.Candidate.ID+": "+result.Reason)
	}
	return SelectedTransport{}, fmt.Errorf("%w: %s", ErrNoUsableTransport, strings.Join(reasons, "; "))
}

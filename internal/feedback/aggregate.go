package feedback

// Aggregate reduces a club's reports, in arrival order, into one summary.
// Feedback lists keep the first TopFeedbackLimit lines encountered across all
// events; they are not ranked. The input slice is not modified.
func Aggregate(reports []EventReport) ClubSummary {
	summary := ClubSummary{
		TopPositive: []string{},
		TopNegative: []string{},
		Events:      make([]EventRow, 0, len(reports)),
	}

	var positives, negatives []string
	for _, r := range reports {
		summary.TotalParticipation += r.Strength.Int()
		summary.SentimentTotals = summary.SentimentTotals.Add(r.SentimentCounts)
		positives = append(positives, r.TopFeedback.Positive...)
		negatives = append(negatives, r.TopFeedback.Negative...)
		summary.Events = append(summary.Events, EventRow{
			Event:    r.Event,
			Date:     r.Date,
			Strength: string(r.Strength),
		})
	}

	summary.TopPositive = append(summary.TopPositive, firstN(positives, TopFeedbackLimit)...)
	summary.TopNegative = append(summary.TopNegative, firstN(negatives, TopFeedbackLimit)...)
	return summary
}

func firstN(values []string, n int) []string {
	if len(values) > n {
		return values[:n]
	}
	return values
}

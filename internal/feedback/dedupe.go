package feedback

// Dedupe keeps the first report seen for every PDFPath and drops later ones.
// Duplicates come from resubmitted events and are not an error.
func Dedupe(reports []EventReport) []EventReport {
	seen := make(map[string]struct{}, len(reports))
	out := make([]EventReport, 0, len(reports))
	for _, r := range reports {
		if _, ok := seen[r.PDFPath]; ok {
			continue
		}
		seen[r.PDFPath] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Without returns a copy of reports minus every entry whose PDFPath matches.
func Without(reports []EventReport, pdfPath string) []EventReport {
	out := make([]EventReport, 0, len(reports))
	for _, r := range reports {
		if r.PDFPath == pdfPath {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Find returns the report stored under pdfPath.
func Find(reports []EventReport, pdfPath string) (EventReport, bool) {
	for _, r := range reports {
		if r.PDFPath == pdfPath {
			return r, true
		}
	}
	return EventReport{}, false
}

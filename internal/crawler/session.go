package crawler

// Session is the transient state of one Crawl call. It is never shared
// between calls.
type Session struct {
	Page    int
	Reason  Reason
	records []StudyRecord
	seen    map[string]struct{}

	fallbackIDs int
}

func newSession() *Session {
	return &Session{seen: make(map[string]struct{})}
}

// MarkIfNew records the normalized form of url and reports whether it was
// unseen in this session.
func (s *Session) MarkIfNew(url string) bool {
	key := NormalizeURL(url)
	if key == "" {
		return false
	}
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// Append adds the records whose URLs are new to the session and returns how
// many were added.
func (s *Session) Append(records []StudyRecord) int {
	added := 0
	for _, rec := range records {
		if !s.MarkIfNew(rec.URL) {
			continue
		}
		s.records = append(s.records, rec)
		added++
	}
	return added
}

// Records returns the accumulated records in first-seen order.
func (s *Session) Records() []StudyRecord {
	out := make([]StudyRecord, len(s.records))
	copy(out, s.records)
	return out
}

func (s *Session) result(err error) CrawlResult {
	res := CrawlResult{
		Success:     err == nil,
		Records:     s.Records(),
		PagesWalked: s.Page,
		Reason:      s.Reason,
	}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}

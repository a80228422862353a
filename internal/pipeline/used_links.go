package pipeline

// UsedLinkSet holds the links already chosen during one batch run. It is
// created per run and written only by the run loop.
type UsedLinkSet struct {
	links map[string]struct{}
}

func NewUsedLinkSet() *UsedLinkSet {
	return &UsedLinkSet{links: make(map[string]struct{})}
}

func (s *UsedLinkSet) Contains(link string) bool {
	_, ok := s.links[link]
	return ok
}

func (s *UsedLinkSet) Add(link string) {
	s.links[link] = struct{}{}
}

func (s *UsedLinkSet) Len() int {
	return len(s.links)
}

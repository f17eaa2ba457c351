package job

// CanMutate is the single ownership check applied before any read of a
// single job, update or delete.
func CanMutate(requesterID string, j Job) bool {
	return requesterID != "" && requesterID == j.OwnerID
}

type Stats struct {
	Total     int `json:"total"`
	Applied   int `json:"applied"`
	Interview int `json:"interview"`
	Offer     int `json:"offer"`
	Rejected  int `json:"rejected"`
}

func (s *Stats) Add(st Status, n int) {
	s.Total += n

	switch st {
	case StatusApplied:
		s.Applied += n
	case StatusInterview:
		s.Interview += n
	case StatusOffer:
		s.Offer += n
	case StatusRejected:
		s.Rejected += n
	}
}

func StatsOf(jobs []Job) Stats {
	var s Stats
	for _, j := range jobs {
		s.Add(j.Status, 1)
	}
	return s
}

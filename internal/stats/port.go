package stats

type StatsServiceAPI interface {
	GetStats(ownerID string) (*Stats, error)
}

package history

// Adapter bridges Store to the core HistoryStore port.
type Adapter struct {
	store *Store
	keep  int
}

// NewAdapter wraps store. When keep is positive older runs are pruned after
// every save.
func NewAdapter(store *Store, keep int) *Adapter {
	return &Adapter{store: store, keep: keep}
}

func (a *Adapter) SaveRun(run Run) (Run, error) {
	saved, err := a.store.SaveRun(run)
	if err != nil {
		return Run{}, err
	}
	if a.keep > 0 {
		if _, err := a.store.Prune(a.keep); err != nil {
			return saved, err
		}
	}
	return saved, nil
}

func (a *Adapter) RecentRuns(limit int) ([]Run, error) {
	return a.store.RecentRuns(limit)
}

func (a *Adapter) Close() error {
	return a.store.Close()
}

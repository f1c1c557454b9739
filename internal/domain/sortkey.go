package domain

// SortKey selects the ordering of the filtered collection view.
type SortKey string

const (
	SortByTitle     SortKey = "title"
	SortByPlatform  SortKey = "platform"
	SortByStatus    SortKey = "status"
	SortByUpdatedAt SortKey = "updatedAt"
)

func AllSortKeys() []SortKey {
	return []SortKey{SortByTitle, SortByPlatform, SortByStatus, SortByUpdatedAt}
}

func (k SortKey) Label() string {
	switch k {
	case SortByTitle:
		return "Nome"
	case SortByPlatform:
		return "Plataforma"
	case SortByStatus:
		return "Status"
	case SortByUpdatedAt:
		return "Recentes"
	}
	return string(k)
}

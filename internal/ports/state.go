package ports

// FlagStore persists a single boolean record.
type FlagStore interface {
	Get() (bool, error)
	Set() error
	Clear() error
}

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	Confirm(title, description string) (bool, error)
}

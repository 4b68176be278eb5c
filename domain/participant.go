package domain

// Participant is a registry snapshot entry: who is connected and since when.
type Participant struct {
	ID       ClientID
	JoinedAt Timestamp
}

package common

// Strategy is a deployed contract or vault whose users' transaction costs are aggregated.
type Strategy struct {
	Name     string  `json:"name"`
	Network  Network `json:"network"`
	GraphURL string  `json:"-"`
}

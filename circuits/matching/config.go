package matching

import "github.com/privmatch/zkmatch/config"

const (
	NS           = config.NS
	NC           = config.NC
	MaxPrefs     = config.MaxPrefs
	MaxCap       = config.MaxCap
	TotalCap     = config.TotalCap
	MerkleHeight = config.MerkleHeight
	Unmatched    = config.Unmatched
)

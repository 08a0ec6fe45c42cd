package kidney

import "github.com/privmatch/zkmatch/config"

// Local aliases of the shared sizing constants, for readability inside
// circuit code (mirrors circuits/matching/config.go).
const (
	MaxEdges     = config.MaxEdges
	MaxCycles    = config.MaxCycles
	MaxPairs     = config.MaxPairs
	MerkleHeight = config.MerkleHeight
	Unmatched    = config.Unmatched
)

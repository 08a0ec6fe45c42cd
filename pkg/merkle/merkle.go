// Package merkle builds and verifies the Merkle commitment tree over match
// records (spec component C5). Leaves are per-student commitment hashes;
// positions beyond the real participant count are padding, identified by a
// domain-separated zero-leaf hash so a verifier can tell "no student here"
// from "a student whose commitment happens to hash low".
package merkle

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"
	"runtime"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"
)

// MerkleNode represents a node in a classic (fully populated) binary Merkle
// tree.
type MerkleNode struct {
	Hash   *big.Int
	Left   *MerkleNode
	Right  *MerkleNode
	Parent *MerkleNode
	IsLeaf bool
}

// MerkleTree is a fully populated binary Merkle tree built from a known,
// small set of leaves whose count is not fixed in advance the way the
// student roster is.
type MerkleTree struct {
	Root      *MerkleNode
	Leaves    []*MerkleNode
	LeafCount int
}

// HashFunc hashes one leaf's data into a field element. Callers provide it
// so this package stays independent of which domain tag or preimage layout
// a given leaf kind uses.
type HashFunc func(data []byte) *big.Int

// NewMerkleNode creates a new Merkle tree node.
func NewMerkleNode(hash *big.Int, left, right *MerkleNode) *MerkleNode {
	node := &MerkleNode{
		Hash:   hash,
		Left:   left,
		Right:  right,
		IsLeaf: left == nil && right == nil,
	}

	if left != nil {
		left.Parent = node
	}
	if right != nil {
		right.Parent = node
	}

	return node
}

// SplitIntoItems groups raw data into itemSize-sized leaf items, zero-padding
// the final item so every returned slice has equal length. An empty input
// produces a single zero item.
func SplitIntoItems(data []byte, itemSize int) [][]byte {
	var items [][]byte

	for i := 0; i < len(data); i += itemSize {
		end := i + itemSize
		if end > len(data) {
			item := make([]byte, itemSize)
			copy(item, data[i:])
			items = append(items, item)
		} else {
			items = append(items, data[i:end])
		}
	}

	if len(items) == 0 {
		items = append(items, make([]byte, itemSize))
	}

	return items
}

// HashNodes hashes two node hashes together to produce their parent hash.
// Inputs are converted to canonical 32-byte fr.Element encoding so that a
// zero value writes 32 zero bytes (matching the in-circuit hasher) instead
// of the empty slice big.Int.Bytes() would return.
func HashNodes(left, right *big.Int) *big.Int {
	h := poseidon2.NewMerkleDamgardHasher()

	var lFr, rFr fr.Element
	lFr.SetBigInt(left)
	rFr.SetBigInt(right)

	lBytes := lFr.Bytes()
	rBytes := rFr.Bytes()
	h.Write(lBytes[:])
	h.Write(rBytes[:])

	return new(big.Int).SetBytes(h.Sum(nil))
}

// GenerateMerkleTree builds a fully populated Merkle tree from pre-split leaf
// items, padding to the next power of two by repeating existing items.
func GenerateMerkleTree(items [][]byte, hashLeaf HashFunc) *MerkleTree {
	if len(items) == 0 {
		items = [][]byte{{}}
	}

	items = padToPowerOfTwo(items)

	leaves := make([]*MerkleNode, len(items))
	for i, item := range items {
		leaves[i] = NewMerkleNode(hashLeaf(item), nil, nil)
	}

	currentLevel := leaves
	for len(currentLevel) > 1 {
		nextLevel := make([]*MerkleNode, 0, (len(currentLevel)+1)/2)
		for i := 0; i < len(currentLevel); i += 2 {
			left := currentLevel[i]
			var right *MerkleNode
			if i+1 < len(currentLevel) {
				right = currentLevel[i+1]
			} else {
				right = left
			}

			parent := NewMerkleNode(HashNodes(left.Hash, right.Hash), left, right)
			nextLevel = append(nextLevel, parent)
		}
		currentLevel = nextLevel
	}

	return &MerkleTree{
		Root:      currentLevel[0],
		Leaves:    leaves,
		LeafCount: len(items),
	}
}

// GetRoot returns the root hash of the Merkle tree.
func (mt *MerkleTree) GetRoot() *big.Int {
	if mt.Root == nil {
		return big.NewInt(0)
	}
	return mt.Root.Hash
}

// GetLeafCount returns the number of leaf nodes.
func (mt *MerkleTree) GetLeafCount() int {
	return len(mt.Leaves)
}

// GetHeight returns the height of the tree (number of levels).
func (mt *MerkleTree) GetHeight() int {
	if mt.Root == nil {
		return 0
	}
	return getNodeHeight(mt.Root)
}

func getNodeHeight(node *MerkleNode) int {
	if node == nil || node.IsLeaf {
		return 1
	}

	leftHeight := getNodeHeight(node.Left)
	rightHeight := getNodeHeight(node.Right)

	if leftHeight > rightHeight {
		return leftHeight + 1
	}
	return rightHeight + 1
}

// GetMerkleProof generates a Merkle proof for the leaf at the given index.
func (mt *MerkleTree) GetMerkleProof(leafIndex int) ([]*big.Int, []bool, error) {
	if leafIndex < 0 || leafIndex >= len(mt.Leaves) {
		return nil, nil, fmt.Errorf("invalid leaf index: %d", leafIndex)
	}

	var proof []*big.Int
	var directions []bool // true for right, false for left

	current := mt.Leaves[leafIndex]

	for current.Parent != nil {
		parent := current.Parent

		if parent.Left == current {
			if parent.Right != nil {
				proof = append(proof, parent.Right.Hash)
				directions = append(directions, true)
			}
		} else {
			if parent.Left != nil {
				proof = append(proof, parent.Left.Hash)
				directions = append(directions, false)
			}
		}

		current = parent
	}

	return proof, directions, nil
}

// VerifyMerkleProof verifies a Merkle proof for a given leaf hash.
func VerifyMerkleProof(leafHash *big.Int, proof []*big.Int, directions []bool, rootHash *big.Int) bool {
	if len(proof) != len(directions) {
		return false
	}

	current := leafHash

	for i := 0; i < len(proof); i++ {
		sibling := proof[i]
		if directions[i] {
			current = HashNodes(current, sibling)
		} else {
			current = HashNodes(sibling, current)
		}
	}

	return current.Cmp(rootHash) == 0
}

// String returns a string representation of the tree structure.
func (mt *MerkleTree) String() string {
	if mt.Root == nil {
		return "Empty tree"
	}

	var buf bytes.Buffer
	printNode(mt.Root, "", true, &buf)
	return buf.String()
}

func printNode(node *MerkleNode, prefix string, isLast bool, buf *bytes.Buffer) {
	if node == nil {
		return
	}

	connector := "├── "
	if isLast {
		connector = "└── "
	}

	nodeType := "Node"
	if node.IsLeaf {
		nodeType = "Leaf"
	}

	buf.WriteString(fmt.Sprintf("%s%s%s: %s\n", prefix, connector, nodeType, node.Hash.String()[:16]+"..."))

	childPrefix := prefix
	if isLast {
		childPrefix += "    "
	} else {
		childPrefix += "│   "
	}

	if node.Left != nil || node.Right != nil {
		if node.Left != nil {
			printNode(node.Left, childPrefix, node.Right == nil, buf)
		}
		if node.Right != nil {
			printNode(node.Right, childPrefix, true, buf)
		}
	}
}

// padToPowerOfTwo duplicates existing items until the slice length is at
// least two and then the next power of two. The minimum-two rule guarantees
// proof depth >= 1, so a single-item tree remains provable without allowing
// a 0-depth path.
func padToPowerOfTwo(items [][]byte) [][]byte {
	n := len(items)
	if n == 0 {
		return items
	}

	nextPow := 1
	for nextPow < n {
		nextPow <<= 1
	}
	if nextPow < 2 {
		nextPow = 2
	}

	for i := 0; len(items) < nextPow; i++ {
		items = append(items, items[i%n])
	}
	return items
}

// ---------------------------------------------------------------------------
// Sparse Merkle Tree (fixed depth, domain-separated padding leaves)
// ---------------------------------------------------------------------------

// SparseMerkleTree is a fixed-depth Merkle tree where only the real leaves
// (one per real participant, matched or not, in index order) are stored. Positions
// beyond NumLeaves use precomputed zero-subtree hashes, so MERKLE_HEIGHT can
// be sized for the worst-case roster without materializing empty branches.
type SparseMerkleTree struct {
	Root       *big.Int
	Depth      int
	NumLeaves  int                 // number of real (non-padding) leaves
	Levels     []map[int]*big.Int  // Levels[0] = leaves, Levels[Depth] holds the root
	ZeroHashes []*big.Int          // ZeroHashes[i] = hash of an all-zero subtree at level i
}

// PrecomputeZeroHashes builds the zero-subtree hash chain:
//
//	zeroHashes[0] = zeroLeafHash
//	zeroHashes[i] = HashNodes(zeroHashes[i-1], zeroHashes[i-1])
//
// The returned slice has length depth+1 (indices 0..depth).
func PrecomputeZeroHashes(depth int, zeroLeafHash *big.Int) []*big.Int {
	zh := make([]*big.Int, depth+1)
	zh[0] = new(big.Int).Set(zeroLeafHash)
	for i := 1; i <= depth; i++ {
		zh[i] = HashNodes(zh[i-1], zh[i-1])
	}
	return zh
}

// GenerateSparseMerkleTree builds a fixed-depth sparse Merkle tree from
// leaf items indexed 0..len(items)-1 in order; all other positions use the
// precomputed zero-subtree hashes.
//
// hashLeaf hashes a single item to produce its leaf value. zeroLeafHash is
// the domain-separated hash standing in for every absent leaf.
func GenerateSparseMerkleTree(items [][]byte, depth int, hashLeaf HashFunc, zeroLeafHash *big.Int) *SparseMerkleTree {
	zeroHashes := PrecomputeZeroHashes(depth, zeroLeafHash)

	levels := make([]map[int]*big.Int, depth+1)
	for i := range levels {
		levels[i] = make(map[int]*big.Int)
	}

	leafHashes := make([]*big.Int, len(items))
	numWorkers := runtime.NumCPU()
	if numWorkers > len(items) {
		numWorkers = len(items)
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	var wg sync.WaitGroup
	work := make(chan int, len(items))
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				leafHashes[i] = hashLeaf(items[i])
			}
		}()
	}
	for i := range items {
		work <- i
	}
	close(work)
	wg.Wait()

	for i, h := range leafHashes {
		levels[0][i] = h
	}

	for lvl := 0; lvl < depth; lvl++ {
		parentIndices := make(map[int]bool)
		for idx := range levels[lvl] {
			parentIndices[idx/2] = true
		}
		for parentIdx := range parentIndices {
			leftIdx := parentIdx * 2
			rightIdx := parentIdx*2 + 1

			left, ok := levels[lvl][leftIdx]
			if !ok {
				left = zeroHashes[lvl]
			}
			right, ok := levels[lvl][rightIdx]
			if !ok {
				right = zeroHashes[lvl]
			}

			levels[lvl+1][parentIdx] = HashNodes(left, right)
		}
	}

	root, ok := levels[depth][0]
	if !ok {
		root = zeroHashes[depth]
	}

	return &SparseMerkleTree{
		Root:       root,
		Depth:      depth,
		NumLeaves:  len(items),
		Levels:     levels,
		ZeroHashes: zeroHashes,
	}
}

// GetProof returns a fixed-size Merkle proof for the leaf at the given
// index. The proof has exactly smt.Depth elements. siblings[i] is the
// sibling hash at level i, and directions[i] is the circuit-format
// direction:
//
//	0 = current node is the left child  (sibling on the right)
//	1 = current node is the right child (sibling on the left)
func (smt *SparseMerkleTree) GetProof(leafIndex int) ([]*big.Int, []int) {
	siblings := make([]*big.Int, smt.Depth)
	directions := make([]int, smt.Depth)

	idx := leafIndex
	for lvl := 0; lvl < smt.Depth; lvl++ {
		var siblingIdx int
		if idx%2 == 0 {
			siblingIdx = idx + 1
			directions[lvl] = 0
		} else {
			siblingIdx = idx - 1
			directions[lvl] = 1
		}

		sib, ok := smt.Levels[lvl][siblingIdx]
		if !ok {
			sib = smt.ZeroHashes[lvl]
		}
		siblings[lvl] = sib

		idx /= 2
	}

	return siblings, directions
}

// GetLeafHash returns the hash at the given leaf index, using the zero leaf
// hash for positions beyond the real leaves.
func (smt *SparseMerkleTree) GetLeafHash(leafIndex int) *big.Int {
	h, ok := smt.Levels[0][leafIndex]
	if !ok {
		return smt.ZeroHashes[0]
	}
	return h
}

// ---------------------------------------------------------------------------
// SMT serialization (binary format for persistence)
// ---------------------------------------------------------------------------
//
// Format:
//   uint32(depth) | uint32(numLeaves)
//   For each level 0..depth:
//     uint32(count)
//     For each entry:
//       uint32(index) | [32]byte(hash as big-endian fr.Element)
//
// Zero hashes are not stored; they are recomputed from zeroLeafHash on load.

// Save writes the sparse Merkle tree to w in a deterministic binary format.
func (smt *SparseMerkleTree) Save(w io.Writer) error {
	if err := binary.Write(w, binary.BigEndian, uint32(smt.Depth)); err != nil {
		return fmt.Errorf("write depth: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, uint32(smt.NumLeaves)); err != nil {
		return fmt.Errorf("write numLeaves: %w", err)
	}

	for lvl := 0; lvl <= smt.Depth; lvl++ {
		m := smt.Levels[lvl]
		if err := binary.Write(w, binary.BigEndian, uint32(len(m))); err != nil {
			return fmt.Errorf("write level %d count: %w", lvl, err)
		}

		indices := make([]int, 0, len(m))
		for idx := range m {
			indices = append(indices, idx)
		}
		sortInts(indices)

		for _, idx := range indices {
			if err := binary.Write(w, binary.BigEndian, uint32(idx)); err != nil {
				return fmt.Errorf("write level %d index %d: %w", lvl, idx, err)
			}
			var elem fr.Element
			elem.SetBigInt(m[idx])
			b := elem.Bytes()
			if _, err := w.Write(b[:]); err != nil {
				return fmt.Errorf("write level %d hash %d: %w", lvl, idx, err)
			}
		}
	}

	return nil
}

// LoadSparseMerkleTree reads a sparse Merkle tree from r that was written by
// Save. zeroLeafHash is needed to recompute the zero-subtree hash chain.
func LoadSparseMerkleTree(r io.Reader, zeroLeafHash *big.Int) (*SparseMerkleTree, error) {
	var depth, numLeaves uint32
	if err := binary.Read(r, binary.BigEndian, &depth); err != nil {
		return nil, fmt.Errorf("read depth: %w", err)
	}
	if err := binary.Read(r, binary.BigEndian, &numLeaves); err != nil {
		return nil, fmt.Errorf("read numLeaves: %w", err)
	}

	zeroHashes := PrecomputeZeroHashes(int(depth), zeroLeafHash)

	levels := make([]map[int]*big.Int, depth+1)
	for lvl := 0; lvl <= int(depth); lvl++ {
		var count uint32
		if err := binary.Read(r, binary.BigEndian, &count); err != nil {
			return nil, fmt.Errorf("read level %d count: %w", lvl, err)
		}

		m := make(map[int]*big.Int, int(count))
		var hashBuf [32]byte
		for j := 0; j < int(count); j++ {
			var idx uint32
			if err := binary.Read(r, binary.BigEndian, &idx); err != nil {
				return nil, fmt.Errorf("read level %d index: %w", lvl, err)
			}
			if _, err := io.ReadFull(r, hashBuf[:]); err != nil {
				return nil, fmt.Errorf("read level %d hash: %w", lvl, err)
			}
			var elem fr.Element
			elem.SetBytes(hashBuf[:])
			m[int(idx)] = new(big.Int)
			elem.BigInt(m[int(idx)])
		}
		levels[lvl] = m
	}

	root, ok := levels[depth][0]
	if !ok {
		root = zeroHashes[depth]
	}

	return &SparseMerkleTree{
		Root:       root,
		Depth:      int(depth),
		NumLeaves:  int(numLeaves),
		Levels:     levels,
		ZeroHashes: zeroHashes,
	}, nil
}

// sortInts sorts a slice of ints in ascending order (insertion sort,
// suitable for the small per-level entry counts this tree holds).
func sortInts(s []int) {
	for i := 1; i < len(s); i++ {
		key := s[i]
		j := i - 1
		for j >= 0 && s[j] > key {
			s[j+1] = s[j]
			j--
		}
		s[j+1] = key
	}
}

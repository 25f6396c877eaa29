package board

// Zobrist keys for position hashing.
// Uses PRNG with fixed seed for reproducibility.
var (
	zobristCell       [squareCount][BoardCells]uint64 // [Square][Offset], zero for Empty and OffBoard
	zobristSideToMove uint64                          // XOR when black to move
)

func init() {
	initZobrist()
}

// Simple PRNG for reproducible Zobrist keys
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

// xorshift64* algorithm
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rng := newPRNG(0x98F107A2BEEF1234)

	for sq := WhitePawn; sq <= BlackKing; sq++ {
		for o := Offset(0); o < BoardCells; o++ {
			if o.IsValid() {
				zobristCell[sq][o] = rng.next()
			}
		}
	}

	zobristSideToMove = rng.next()
}

// computeKey hashes the board from scratch.
func (b *Board) computeKey() uint64 {
	var key uint64
	for o := Offset(firstCell); o <= lastCell; o++ {
		key ^= zobristCell[b.cells[o]][o]
	}
	if b.sideToMove == Black {
		key ^= zobristSideToMove
	}
	return key
}

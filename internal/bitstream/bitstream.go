package bitstream

import (
	"github.com/princeton-csl/bitgen/internal/bitvec"
	"github.com/princeton-csl/bitgen/internal/configdb"
)

// New allocates the device-wide configuration bit vector, sized from the
// database's header total_size extension (zero if the header carried
// none). It is mutated only by the placement and routing appliers.
func New(db *configdb.Database) *bitvec.Vector {
	return bitvec.New(int(db.TotalSize()))
}

package placement

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strconv"

	"github.com/princeton-csl/bitgen/internal/bitvec"
	"github.com/princeton-csl/bitgen/internal/configdb"
	"github.com/princeton-csl/bitgen/internal/packing"
	"github.com/princeton-csl/bitgen/internal/xlog"
)

var placementLineRE = regexp.MustCompile(`^(\S+)\s+(\d+)\s+(\d+)\s+(\d+)\s+#\d+$`)

// Apply reads the placement trace at path and, for every matched line,
// copies the named block instance's bit vector into dst at the fabric
// coordinate the database's placement actions describe. It returns
// ErrMismatchWithPackingResult if the number of successfully placed
// lines does not equal packMgr.NumBlockInstances().
func Apply(path string, db *configdb.Database, packMgr *packing.BitchainManager, dst *bitvec.Vector) error {
	if db == nil {
		return ErrNullConfigDB{}
	}
	if packMgr == nil {
		return ErrNullPackMgr{}
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrBadFile{err.Error()}
	}
	defer f.Close()

	placed, err := apply(f, db, packMgr, dst)
	if err != nil {
		return err
	}

	expected := packMgr.NumBlockInstances()
	if placed != expected {
		return ErrMismatchWithPackingResult{placed, expected}
	}
	return nil
}

func apply(r io.Reader, db *configdb.Database, packMgr *packing.BitchainManager, dst *bitvec.Vector) (int, error) {
	scanner := bufio.NewScanner(r)
	placed := 0
	for scanner.Scan() {
		line := scanner.Text()
		m := placementLineRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := m[1]
		x, _ := strconv.Atoi(m[2])
		y, _ := strconv.Atoi(m[3])
		subblock, _ := strconv.Atoi(m[4])

		src, ok := packMgr.BlockInstance(name)
		if !ok {
			return placed, ErrPlacingFailed{name}
		}

		for _, pa := range db.PlacementActions(uint32(x), uint32(y), uint32(subblock)) {
			for _, ra := range pa.Actions {
				if err := ra.Apply(dst, src); err != nil {
					return placed, err
				}
			}
		}
		placed++
	}
	if err := scanner.Err(); err != nil {
		return placed, ErrBadFile{err.Error()}
	}
	xlog.Logger.Debug().Int("placed", placed).Msg("placement trace applied")
	return placed, nil
}
